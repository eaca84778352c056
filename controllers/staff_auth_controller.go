package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/config"
	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
)

// StaffLoginRequest represents a terminal login request
type StaffLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// StaffLogin authenticates a store employee and issues the terminal JWT.
func StaffLogin(c *gin.Context) {
	utils.LogInfo("StaffLogin called")

	var req StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid login request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}
	utils.LogDebug("Processing login request for email: %s", req.Email)

	var staff models.Staff
	if err := config.DB.Where("email = ?", strings.ToLower(req.Email)).First(&staff).Error; err != nil {
		utils.LogError("Staff not found for email: %s: %v", req.Email, err)
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	if !staff.Active {
		utils.LogError("Inactive staff account attempted login: %s", staff.Email)
		utils.Forbidden(c, "Staff account is inactive")
		return
	}

	if !utils.CheckPassword(req.Password, staff.Password) {
		utils.LogError("Invalid password for staff: %s", staff.Email)
		utils.Unauthorized(c, "Invalid credentials")
		return
	}
	utils.LogDebug("Password verified for staff: %s", staff.Email)

	token, err := utils.GenerateStaffToken(staff.ID, staff.StoreID, string(staff.Role))
	if err != nil {
		utils.LogError("Failed to generate token for staff: %s: %v", staff.Email, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	utils.LogInfo("Staff login successful: %s", staff.Email)
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"staff": gin.H{
			"id":       staff.ID,
			"name":     staff.Name,
			"email":    staff.Email,
			"store_id": staff.StoreID,
			"role":     staff.Role,
		},
	})
}
