package websocket

import (
	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"

	"PetPal/controllers"
	"PetPal/middleware"
	"PetPal/pkg/realtime"
)

// Register registers the chat socket. Auth happens inside the handler because
// browsers pass the token as a query parameter.
func Register(r *gin.Engine, auth middleware.Authenticator, gw *realtime.Gateway, opts realtime.ClientOptions, origins []string, limiter ratelimit.Store) {
	r.GET("/ws/chat", middleware.RateLimit(limiter), controllers.ChatWS(auth, gw, opts, origins))
}
