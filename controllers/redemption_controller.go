package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/services"
	"github.com/retailkart/promokart/utils"
)

// ValidateCouponRequest carries the identifier scanned or typed at the
// terminal: either a signed QR payload or a manual RK code.
type ValidateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateCoupon previews whether a presented coupon could be redeemed right
// now. Nothing is mutated; the terminal shows the result to the cashier.
func ValidateCoupon(c *gin.Context) {
	utils.LogInfo("ValidateCoupon called")

	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	result, err := redemptionSvc.Validate(c.Request.Context(), req.Code)
	if err != nil {
		utils.LogError("Coupon validation failed: %v", err)
		respondServiceError(c, err)
		return
	}

	resp := gin.H{
		"valid":   result.Valid,
		"message": result.Message,
	}
	if result.Entitlement != nil {
		resp["entitlement"] = gin.H{
			"id":          result.Entitlement.ID,
			"code":        result.Entitlement.UniqueCode,
			"status":      result.Entitlement.Status,
			"valid_until": result.Entitlement.ValidUntil,
		}
	}
	if result.Customer != nil {
		resp["customer"] = gin.H{
			"id":   result.Customer.ID,
			"name": result.Customer.Name,
		}
	}
	if result.Campaign != nil {
		resp["campaign"] = gin.H{
			"id":                  result.Campaign.ID,
			"code":                result.Campaign.Code,
			"title":               result.Campaign.Title,
			"discount_kind":       result.Campaign.DiscountKind,
			"discount_value":      result.Campaign.DiscountValue,
			"max_discount":        result.Campaign.MaxDiscount,
			"min_purchase_amount": result.Campaign.MinPurchaseAmount,
		}
	}
	utils.Success(c, "Coupon validated", resp)
}

// RedeemCouponRequest is the commit call from the terminal. Store and staff
// identity come from the authenticated session, not the request body.
type RedeemCouponRequest struct {
	EntitlementID  uint    `json:"entitlement_id" binding:"required"`
	PurchaseID     uint    `json:"purchase_id"`
	PurchaseAmount float64 `json:"purchase_amount" binding:"required,gt=0"`
	AmountUsed     float64 `json:"amount_used"`
	Notes          string  `json:"notes"`
}

// RedeemCoupon atomically consumes an entitlement against the staff member's
// store. Double redemption attempts come back as conflicts, never as a second
// success.
func RedeemCoupon(c *gin.Context) {
	utils.LogInfo("RedeemCoupon called")

	staffVal, exists := c.Get("staff")
	if !exists {
		utils.Unauthorized(c, "Staff not found")
		return
	}
	staff := staffVal.(models.Staff)

	var req RedeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	result, err := redemptionSvc.Redeem(c.Request.Context(), services.RedeemRequest{
		EntitlementID:  req.EntitlementID,
		StoreID:        staff.StoreID,
		StaffID:        staff.ID,
		PurchaseID:     req.PurchaseID,
		PurchaseAmount: req.PurchaseAmount,
		AmountUsed:     req.AmountUsed,
		Notes:          req.Notes,
	})
	if err != nil {
		utils.LogError("Redemption failed for entitlement %d at store %d: %v", req.EntitlementID, staff.StoreID, err)
		respondServiceError(c, err)
		return
	}

	utils.LogInfo("Entitlement %d redeemed at store %d by staff %d", req.EntitlementID, staff.StoreID, staff.ID)
	resp := gin.H{
		"entitlement_id":  result.Entitlement.ID,
		"code":            result.Entitlement.UniqueCode,
		"campaign_code":   result.Campaign.Code,
		"discount_amount": result.DiscountAmount,
		"redeemed_at":     result.RedeemedAt,
	}
	if result.Store != nil {
		resp["store"] = gin.H{
			"id":   result.Store.ID,
			"name": result.Store.Name,
		}
	}
	utils.Success(c, "Coupon redeemed successfully", resp)
}
