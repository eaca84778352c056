package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/utils"
)

// ListReferrals shows all referrals with their reward state for the admin
// dashboard.
func ListReferrals(c *gin.Context) {
	utils.LogInfo("ListReferrals called")

	page, limit := utils.GetPaginationParams(c)
	referrals, total, err := referralRepo.List(c.Request.Context(), page, limit)
	if err != nil {
		utils.LogError("Failed to list referrals: %v", err)
		utils.InternalServerError(c, "Failed to list referrals", nil)
		return
	}

	out := make([]gin.H, 0, len(referrals))
	for _, referral := range referrals {
		out = append(out, gin.H{
			"id":                   referral.ID,
			"referrer_kind":        referral.ReferrerKind,
			"referrer_id":          referral.ReferrerID,
			"referred_customer_id": referral.ReferredCustomerID,
			"referral_code":        referral.ReferralCode,
			"status":               referral.Status,
			"min_purchase_amount":  referral.MinPurchaseAmount,
			"expires_at":           referral.ExpiresAt,
			"completed_at":         referral.CompletedAt,
			"referrer_reward":      referral.ReferrerReward,
			"referred_reward":      referral.ReferredReward,
		})
	}
	utils.SuccessWithPagination(c, "Referrals retrieved", gin.H{"referrals": out}, total, page, limit)
}
