package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
)

// ClaimCampaign issues an entitlement for the authenticated customer.
// Claiming twice returns the existing ACTIVE entitlement rather than a
// second one.
func ClaimCampaign(c *gin.Context) {
	utils.LogInfo("ClaimCampaign called")

	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	campaignID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid campaign ID", nil)
		return
	}

	entitlement, err := issuanceService.Claim(c.Request.Context(), customer.ID, uint(campaignID))
	if err != nil {
		utils.LogError("Claim failed for customer %d campaign %d: %v", customer.ID, campaignID, err)
		respondServiceError(c, err)
		return
	}

	utils.LogInfo("Entitlement %d issued to customer %d for campaign %d", entitlement.ID, customer.ID, campaignID)
	utils.Created(c, "Coupon claimed successfully", gin.H{
		"entitlement": entitlementResponse(entitlement),
	})
}

// MyCoupons lists the authenticated customer's entitlements, newest first.
func MyCoupons(c *gin.Context) {
	utils.LogInfo("MyCoupons called")

	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	entitlements, err := entitlementRepo.ListForCustomer(c.Request.Context(), customer.ID)
	if err != nil {
		utils.LogError("Failed to list entitlements for customer %d: %v", customer.ID, err)
		utils.InternalServerError(c, "Failed to retrieve coupons", nil)
		return
	}

	out := make([]gin.H, 0, len(entitlements))
	for i := range entitlements {
		out = append(out, entitlementResponse(&entitlements[i]))
	}
	utils.Success(c, "Coupons retrieved", gin.H{"coupons": out})
}

func entitlementResponse(e *models.Entitlement) gin.H {
	resp := gin.H{
		"id":          e.ID,
		"reference":   e.ReferenceID,
		"code":        e.UniqueCode,
		"qr_payload":  e.QRPayload,
		"status":      e.Status,
		"valid_from":  e.ValidFrom,
		"valid_until": e.ValidUntil,
	}
	if e.Campaign.ID != 0 {
		resp["campaign"] = gin.H{
			"id":             e.Campaign.ID,
			"code":           e.Campaign.Code,
			"title":          e.Campaign.Title,
			"discount_kind":  e.Campaign.DiscountKind,
			"discount_value": e.Campaign.DiscountValue,
		}
	}
	if e.Status == models.EntitlementStatusUsed && e.Redemption.RedeemedAt != nil {
		resp["redeemed_at"] = e.Redemption.RedeemedAt
		resp["store_id"] = e.Redemption.StoreID
	}
	return resp
}
