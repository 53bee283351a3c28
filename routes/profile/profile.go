package profile

import (
	"github.com/gin-gonic/gin"

	"PetPal/controllers"
)

// Register registers protected profile routes on supplied router group
// expects the group to already have AuthMiddleware applied
func Register(g *gin.RouterGroup, svc controllers.AccountService) {
	g.GET("/profile", controllers.Profile(svc))
	g.PUT("/profile", controllers.Profile(svc))
}
