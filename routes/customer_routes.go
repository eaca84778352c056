package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/controllers"
	"github.com/retailkart/promokart/middleware"
)

// initCustomerRoutes initializes the customer app routes
func initCustomerRoutes(router *gin.RouterGroup) {
	// Public browsing
	router.GET("/campaigns", controllers.ListActiveCampaigns)

	// Authenticated customer routes
	customer := router.Group("")
	customer.Use(middleware.CustomerAuthMiddleware())
	{
		customer.GET("/campaigns/:id/eligibility", controllers.CheckEligibility)
		customer.POST("/campaigns/:id/claim", controllers.ClaimCampaign)
		customer.GET("/coupons", controllers.MyCoupons)

		customer.POST("/referrals", controllers.CreateReferral)
		customer.POST("/referrals/:id/claim-reward", controllers.ClaimReferralReward)
	}
}
