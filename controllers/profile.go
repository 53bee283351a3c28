package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"PetPal/middleware"
	"PetPal/pkg/response"
	"PetPal/pkg/services"
)

// Profile serves GET (current user summary) and PUT (profile names and avatar).
func Profile(svc AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		if c.Request.Method == http.MethodGet {
			v, err := svc.Profile(c.Request.Context(), uid)
			if err != nil {
				renderError(c, err)
				return
			}
			response.JSON(c, http.StatusOK, gin.H{"user": v})
			return
		}

		var body services.ProfileInput
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request")
			return
		}
		v, err := svc.UpdateProfile(c.Request.Context(), uid, body)
		if err != nil {
			renderError(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"user": v})
	}
}
