package routes

import (
	"log/slog"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"PetPal/controllers"
	"PetPal/middleware"
	"PetPal/pkg/metrics"
	"PetPal/pkg/realtime"
	"PetPal/pkg/response"
	"PetPal/pkg/services"

	authRoutes "PetPal/routes/auth"
	convRoutes "PetPal/routes/conversation"
	profileRoutes "PetPal/routes/profile"
	websocketRoutes "PetPal/routes/websocket"
)

type Deps struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	Accounts      *services.AccountService
	Conversations *services.ConversationService
	Gateway       *realtime.Gateway
	Metrics       *metrics.Metrics
	Limiter       ratelimit.Store
	WS            realtime.ClientOptions
	CORSOrigins   []string
}

// NewRouter builds the engine with the shared middleware chain and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Envelope{Success: true, Message: "PetPal messaging backend running"})
	})
	r.GET("/healthz", controllers.Health(d.DB))
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	websocketRoutes.Register(r, d.Accounts, d.Gateway, d.WS, d.CORSOrigins, d.Limiter)
	authRoutes.RegisterPublic(r, d.Accounts, d.Limiter)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Accounts))
	authRoutes.RegisterProtected(protected, d.Accounts)
	profileRoutes.Register(protected, d.Accounts)
	convRoutes.Register(protected, d.Conversations, d.Gateway, d.Metrics, d.Limiter)
}
