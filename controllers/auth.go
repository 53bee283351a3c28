package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"PetPal/middleware"
	"PetPal/models"
	"PetPal/pkg/response"
	"PetPal/pkg/services"
	"PetPal/pkg/validation"
)

type AccountService interface {
	Register(ctx context.Context, in validation.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in validation.LoginInput) (string, *models.User, error)
	Logout(ctx context.Context, p *services.Principal) error
	Profile(ctx context.Context, userID uint) (*services.ParticipantView, error)
	UpdateProfile(ctx context.Context, userID uint, in services.ProfileInput) (*services.ParticipantView, error)
}

func Register(svc AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body validation.RegisterInput
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request")
			return
		}
		u, err := svc.Register(c.Request.Context(), body)
		if err != nil {
			renderError(c, err)
			return
		}
		response.JSON(c, http.StatusCreated, gin.H{"user": services.NewParticipantView(u)})
	}
}

func Login(svc AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body validation.LoginInput
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request")
			return
		}
		tok, u, err := svc.Login(c.Request.Context(), body)
		if err != nil {
			renderError(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"accessToken": tok, "user": services.NewParticipantView(u)})
	}
}

func Logout(svc AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context(), middleware.CurrentPrincipal(c)); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Envelope{Success: true, Message: "logged out"})
	}
}
