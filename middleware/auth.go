package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/config"
	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
)

// CustomerAuthMiddleware authenticates a customer app session and places the
// customer record in the context.
func CustomerAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			return
		}

		customerIDVal, ok := claims["customer_id"].(float64)
		if !ok {
			utils.LogError("Token missing customer_id claim")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}
		customerID := uint(customerIDVal)

		var customer models.Customer
		if err := config.DB.First(&customer, customerID).Error; err != nil {
			utils.LogError("Customer %d not found: %v", customerID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Customer not found"})
			c.Abort()
			return
		}
		if customer.IsBlocked {
			utils.LogError("Blocked customer %d attempted access", customerID)
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
			c.Abort()
			return
		}

		c.Set("customer", customer)
		c.Next()
	}
}

// StaffAuthMiddleware authenticates a store terminal session and places the
// staff record in the context.
func StaffAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		staff, ok := staffFromToken(c)
		if !ok {
			return
		}
		c.Set("staff", *staff)
		c.Next()
	}
}

// AdminAuthMiddleware authenticates a staff session and additionally
// requires the ADMIN role.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		staff, ok := staffFromToken(c)
		if !ok {
			return
		}
		if staff.Role != models.StaffRoleAdmin {
			utils.LogError("Staff %d attempted admin access without role", staff.ID)
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Set("staff", *staff)
		c.Next()
	}
}

func staffFromToken(c *gin.Context) (*models.Staff, bool) {
	claims, ok := bearerClaims(c)
	if !ok {
		return nil, false
	}

	staffIDVal, ok := claims["staff_id"].(float64)
	if !ok {
		utils.LogError("Token missing staff_id claim")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		c.Abort()
		return nil, false
	}

	var staff models.Staff
	if err := config.DB.First(&staff, uint(staffIDVal)).Error; err != nil {
		utils.LogError("Staff %v not found: %v", staffIDVal, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Staff not found"})
		c.Abort()
		return nil, false
	}
	if !staff.Active {
		utils.LogError("Inactive staff %d attempted access", staff.ID)
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		c.Abort()
		return nil, false
	}
	return &staff, true
}

func bearerClaims(c *gin.Context) (map[string]interface{}, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please login for access"})
		c.Abort()
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.LogError("Invalid token: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please login for access"})
		c.Abort()
		return nil, false
	}
	return claims, true
}
