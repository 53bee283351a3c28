package auth

import (
	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"

	"PetPal/controllers"
	"PetPal/middleware"
)

// RegisterPublic registers public auth routes: /register, /login
func RegisterPublic(r *gin.Engine, svc controllers.AccountService, limiter ratelimit.Store) {
	r.POST("/register", middleware.RateLimit(limiter), controllers.Register(svc))
	r.POST("/login", middleware.RateLimit(limiter), controllers.Login(svc))
}

// RegisterProtected registers protected auth routes (e.g. logout)
func RegisterProtected(g *gin.RouterGroup, svc controllers.AccountService) {
	g.POST("/logout", controllers.Logout(svc))
}
