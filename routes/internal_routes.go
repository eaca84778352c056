package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/controllers"
	"github.com/retailkart/promokart/utils"
)

// initInternalRoutes initializes the service-to-service webhook routes the
// account service and purchase ledger call. Guarded by a shared token, not a
// customer or staff session.
func initInternalRoutes(router *gin.RouterGroup) {
	internal := router.Group("/internal")
	internal.Use(internalAuth())
	{
		internal.POST("/customers/registered", controllers.ReferredRegistered)
		internal.POST("/purchases/completed", controllers.PurchaseCompleted)
	}
}

func internalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := os.Getenv("INTERNAL_API_TOKEN")
		if token == "" || c.GetHeader("X-Internal-Token") != token {
			utils.LogError("Rejected internal call to %s", c.FullPath())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid internal token"})
			c.Abort()
			return
		}
		c.Next()
	}
}
