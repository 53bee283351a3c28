package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"PetPal/pkg/database"
	"PetPal/pkg/response"
)

func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx, db); err != nil {
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternal, "database unavailable")
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
