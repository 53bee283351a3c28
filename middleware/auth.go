package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"PetPal/pkg/logger"
	"PetPal/pkg/response"
	"PetPal/pkg/services"
)

const (
	ContextUserIDKey    = "current_user_id"
	ContextPrincipalKey = "current_principal"
)

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*services.Principal, error)
}

// BearerToken reads "Authorization: Bearer <t>". With allowQuery it falls
// back to the token query parameter, which browsers need for websockets.
func BearerToken(r *http.Request, allowQuery bool) (string, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		return parts[1], true
	}
	if allowQuery {
		return strings.TrimSpace(r.URL.Query().Get("token")), true
	}
	return "", true
}

// Authenticate resolves the caller and stores it on the gin context. It is
// shared by the REST middleware and the socket handshake.
func Authenticate(c *gin.Context, auth Authenticator, allowQuery bool) (*services.Principal, bool) {
	raw, ok := BearerToken(c.Request, allowQuery)
	if !ok {
		response.Abort(c, http.StatusUnauthorized, response.CodeUnauthenticated, "invalid authorization header")
		return nil, false
	}
	p, err := auth.Authenticate(c.Request.Context(), raw)
	if err != nil {
		response.Abort(c, http.StatusUnauthorized, response.CodeUnauthenticated, err.Error())
		return nil, false
	}

	c.Set(ContextUserIDKey, p.UserID)
	c.Set(ContextPrincipalKey, p)
	l := logger.FromContext(c.Request.Context()).With("user_id", p.UserID)
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))
	return p, true
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Authenticate(c, auth, false); !ok {
			return
		}
		c.Next()
	}
}

func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get(ContextUserIDKey)
	id, _ := v.(uint)
	return id
}

func CurrentPrincipal(c *gin.Context) *services.Principal {
	v, _ := c.Get(ContextPrincipalKey)
	p, _ := v.(*services.Principal)
	return p
}
