package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/controllers"
	"github.com/retailkart/promokart/middleware"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware())
	{
		// Campaign management
		admin.POST("/campaigns", controllers.CreateCampaign)
		admin.GET("/campaigns", controllers.ListCampaigns)
		admin.PUT("/campaigns/:id", controllers.UpdateCampaign)
		admin.PATCH("/campaigns/:id/status", controllers.ChangeCampaignStatus)
		admin.DELETE("/campaigns/:id", controllers.DeleteCampaign)

		// Referral oversight
		admin.GET("/referrals", controllers.ListReferrals)

		// Reports
		admin.GET("/reports/redemptions/excel", controllers.DownloadRedemptionReportExcel)
	}
}
