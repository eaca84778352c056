package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
)

// ListActiveCampaigns returns the campaigns a customer can browse: ACTIVE
// and currently inside their validity window.
func ListActiveCampaigns(c *gin.Context) {
	utils.LogInfo("ListActiveCampaigns called")

	campaigns, err := campaignRepo.ListActive(c.Request.Context())
	if err != nil {
		utils.LogError("Failed to list active campaigns: %v", err)
		utils.InternalServerError(c, "Failed to list campaigns", nil)
		return
	}

	out := make([]gin.H, 0, len(campaigns))
	for _, campaign := range campaigns {
		out = append(out, gin.H{
			"id":                  campaign.ID,
			"code":                campaign.Code,
			"title":               campaign.Title,
			"description":         campaign.Description,
			"discount_kind":       campaign.DiscountKind,
			"discount_value":      campaign.DiscountValue,
			"max_discount":        campaign.MaxDiscount,
			"min_purchase_amount": campaign.MinPurchaseAmount,
			"valid_until":         campaign.ValidUntil,
			"sold_out":            !campaign.UnderGlobalLimit(),
		})
	}
	utils.Success(c, "Active campaigns retrieved", out)
}

// CheckEligibility runs the evaluator for the authenticated customer against
// one campaign and returns the full verdict with reasons and conditions.
func CheckEligibility(c *gin.Context) {
	utils.LogInfo("CheckEligibility called")

	customerVal, exists := c.Get("customer")
	if !exists {
		utils.Unauthorized(c, "Customer not found")
		return
	}
	customer := customerVal.(models.Customer)

	campaign, ok := campaignFromPath(c)
	if !ok {
		return
	}

	verdict, err := evaluator.Evaluate(c.Request.Context(), &customer, campaign)
	if err != nil {
		utils.LogError("Eligibility evaluation failed for customer %d campaign %d: %v", customer.ID, campaign.ID, err)
		utils.InternalServerError(c, "Failed to evaluate eligibility", nil)
		return
	}

	utils.Success(c, "Eligibility evaluated", gin.H{
		"campaign_id": campaign.ID,
		"code":        campaign.Code,
		"eligible":    verdict.Eligible,
		"reasons":     verdict.Reasons,
		"conditions":  verdict.Conditions,
	})
}
