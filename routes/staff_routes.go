package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/controllers"
	"github.com/retailkart/promokart/middleware"
)

// initStaffRoutes initializes the store terminal routes
func initStaffRoutes(router *gin.RouterGroup) {
	staff := router.Group("/staff")
	{
		staff.POST("/login", controllers.StaffLogin)

		// Protected terminal routes
		staff.Use(middleware.StaffAuthMiddleware())
		{
			staff.POST("/redemptions/validate", controllers.ValidateCoupon)
			staff.POST("/redemptions/redeem", controllers.RedeemCoupon)
		}
	}
}
