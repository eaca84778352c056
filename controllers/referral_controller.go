package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/services"
	"github.com/retailkart/promokart/utils"
)

// CreateReferralRequest starts a referral invitation.
type CreateReferralRequest struct {
	MinPurchaseAmount float64 `json:"min_purchase_amount"`
	ExpiresInDays     int     `json:"expires_in_days"`
}

// CreateReferral lets a customer invite a friend. The returned code is what
// the friend enters at signup.
func CreateReferral(c *gin.Context) {
	utils.LogInfo("CreateReferral called")

	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	var req CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if req.MinPurchaseAmount <= 0 {
		req.MinPurchaseAmount = utils.DefaultReferralMinPurchase
	}
	if req.ExpiresInDays <= 0 {
		req.ExpiresInDays = utils.DefaultReferralExpiryDays
	}

	code, err := services.NewCodeGenerator().Generate()
	if err != nil {
		utils.LogError("Failed to generate referral code: %v", err)
		utils.InternalServerError(c, "Failed to create referral", nil)
		return
	}

	referral := models.Referral{
		ReferrerKind:      models.ReferrerCustomer,
		ReferrerID:        customer.ID,
		ReferralCode:      code,
		Status:            models.ReferralStatusPending,
		MinPurchaseAmount: req.MinPurchaseAmount,
		ExpiresAt:         time.Now().AddDate(0, 0, req.ExpiresInDays),
	}
	if err := referralRepo.Create(c.Request.Context(), &referral); err != nil {
		utils.LogError("Failed to create referral for customer %d: %v", customer.ID, err)
		utils.InternalServerError(c, "Failed to create referral", nil)
		return
	}

	utils.LogInfo("Referral %d created by customer %d", referral.ID, customer.ID)
	utils.Created(c, "Referral created", gin.H{
		"referral_id":         referral.ID,
		"referral_code":       referral.ReferralCode,
		"min_purchase_amount": referral.MinPurchaseAmount,
		"expires_at":          referral.ExpiresAt,
	})
}

// ReferredRegisteredRequest is the internal trigger posted by the account
// service when a new customer signed up with a referral code.
type ReferredRegisteredRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
	CustomerID   uint   `json:"customer_id" binding:"required"`
}

// ReferredRegistered binds a freshly registered customer to the pending
// referral that recruited them.
func ReferredRegistered(c *gin.Context) {
	utils.LogInfo("ReferredRegistered called")

	var req ReferredRegisteredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	referral, err := referralRepo.GetByCode(c.Request.Context(), req.ReferralCode)
	if err != nil {
		utils.LogError("Failed to load referral by code %s: %v", req.ReferralCode, err)
		utils.InternalServerError(c, "Failed to load referral", nil)
		return
	}
	if referral == nil {
		utils.NotFound(c, "Referral code not found")
		return
	}
	if !referral.Status.CanTransitionTo(models.ReferralStatusRegistered) {
		utils.Conflict(c, "Referral is no longer open for registration", gin.H{"status": referral.Status})
		return
	}
	if referral.ExpiredAt(time.Now()) {
		if err := referralRepo.MarkExpired(c.Request.Context(), referral.ID); err != nil {
			utils.LogError("Failed to expire referral %d: %v", referral.ID, err)
		}
		utils.Conflict(c, "Referral has expired", gin.H{"status": models.ReferralStatusExpired})
		return
	}

	referral.ReferredCustomerID = req.CustomerID
	referral.Status = models.ReferralStatusRegistered
	if err := referralRepo.Save(c.Request.Context(), referral); err != nil {
		utils.LogError("Failed to register referred customer %d on referral %d: %v", req.CustomerID, referral.ID, err)
		utils.InternalServerError(c, "Failed to update referral", nil)
		return
	}

	utils.LogInfo("Referral %d moved to REGISTERED for customer %d", referral.ID, req.CustomerID)
	utils.Success(c, "Referral registered", gin.H{
		"referral_id": referral.ID,
		"status":      referral.Status,
	})
}

// PurchaseCompletedRequest is the internal trigger posted by the purchase
// ledger when an order is finalised.
type PurchaseCompletedRequest struct {
	CustomerID  uint    `json:"customer_id" binding:"required"`
	PurchaseID  uint    `json:"purchase_id" binding:"required"`
	FinalAmount float64 `json:"final_amount" binding:"required,gt=0"`
}

// PurchaseCompleted runs the referral reward cascade for a completed
// purchase. The trigger is idempotent: re-posting the same purchase reports
// ALREADY_COMPLETED instead of minting a second reward pair.
func PurchaseCompleted(c *gin.Context) {
	utils.LogInfo("PurchaseCompleted called")

	var req PurchaseCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	result, err := referralSvc.OnQualifyingPurchase(c.Request.Context(), req.CustomerID, req.PurchaseID, req.FinalAmount)
	if err != nil {
		utils.LogError("Referral cascade failed for customer %d purchase %d: %v", req.CustomerID, req.PurchaseID, err)
		respondServiceError(c, err)
		return
	}

	utils.LogInfo("Referral cascade outcome for customer %d: %s", req.CustomerID, result.Outcome)
	resp := gin.H{"outcome": result.Outcome}
	if result.Referral != nil {
		resp["referral_id"] = result.Referral.ID
		resp["referral_status"] = result.Referral.Status
	}
	if result.ReferrerEntitlement != nil {
		resp["referrer_coupon"] = result.ReferrerEntitlement.UniqueCode
	}
	if result.ReferredEntitlement != nil {
		resp["referred_coupon"] = result.ReferredEntitlement.UniqueCode
	}
	utils.Success(c, "Purchase processed", resp)
}

// ClaimReferralReward marks the caller's side of a referral reward CLAIMED.
func ClaimReferralReward(c *gin.Context) {
	utils.LogInfo("ClaimReferralReward called")

	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	referralID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid referral ID", nil)
		return
	}

	referral, err := referralRepo.GetByID(c.Request.Context(), uint(referralID))
	if err != nil {
		utils.LogError("Failed to load referral %d: %v", referralID, err)
		utils.InternalServerError(c, "Failed to load referral", nil)
		return
	}
	if referral == nil {
		utils.NotFound(c, "Referral not found")
		return
	}

	// Which side the caller may claim follows from their role in the
	// referral, never from the request body.
	var side services.RewardSide
	switch {
	case referral.ReferrerKind == models.ReferrerCustomer && referral.ReferrerID == customer.ID:
		side = services.RewardSideReferrer
	case referral.ReferredCustomerID == customer.ID:
		side = services.RewardSideReferred
	default:
		utils.Forbidden(c, "This referral does not belong to you")
		return
	}

	updated, err := referralSvc.ClaimReward(c.Request.Context(), uint(referralID), side)
	if err != nil {
		utils.LogError("Reward claim failed for referral %d side %s: %v", referralID, side, err)
		respondServiceError(c, err)
		return
	}

	reward := updated.ReferredReward
	if side == services.RewardSideReferrer {
		reward = updated.ReferrerReward
	}
	utils.Success(c, "Reward claimed", gin.H{
		"referral_id":    updated.ID,
		"side":           side,
		"reward_status":  reward.Status,
		"entitlement_id": reward.EntitlementID,
		"claimed_at":     reward.ClaimedAt,
	})
}
