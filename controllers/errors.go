package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"PetPal/pkg/logger"
	"PetPal/pkg/response"
	"PetPal/pkg/services"
)

// renderError translates a service error into the envelope and status.
// Unexpected errors are logged with the request logger and hidden from the client.
func renderError(c *gin.Context, err error) {
	if verr, ok := services.IsValidation(err); ok {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, verr.Message)
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFoundOrForbidden), errors.Is(err, services.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, errors.Cause(err).Error())
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthenticated, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		response.Error(c, http.StatusConflict, response.CodeConflict, err.Error())
	default:
		logger.FromContext(c.Request.Context()).Error("http - "+c.FullPath()+" - internal error", "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "internal server error")
	}
}

func badRequest(c *gin.Context, message string) {
	response.Error(c, http.StatusBadRequest, response.CodeValidation, message)
}
