package conversation

import (
	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"

	"PetPal/controllers"
	"PetPal/middleware"
	"PetPal/pkg/metrics"
)

// Register registers conversation routes (protected)
func Register(g *gin.RouterGroup, svc controllers.ConversationService, bc controllers.Broadcaster, m *metrics.Metrics, limiter ratelimit.Store) {
	g.GET("/conversations", controllers.ListConversations(svc))
	g.POST("/conversations/provider/:user_id", middleware.RateLimit(limiter), controllers.StartConversation(svc))
	g.GET("/conversations/:conversation_id/messages", controllers.ListMessages(svc))
	g.POST("/conversations/:conversation_id/messages", middleware.RateLimit(limiter), controllers.SendMessage(svc, bc, m))
}
