package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/utils"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": utils.AppName})
	})

	// API version group
	api := router.Group("/v1")
	{
		initCustomerRoutes(api)
		initStaffRoutes(api)
		initAdminRoutes(api)
		initInternalRoutes(api)
	}

	return router
}
