package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
)

// CreateCampaignRequest represents the request body for creating a campaign
type CreateCampaignRequest struct {
	Code        string `json:"code" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`

	DiscountKind      models.DiscountKind `json:"discount_kind" binding:"required,oneof=FIXED_AMOUNT PERCENTAGE FREE_ITEM"`
	DiscountValue     float64             `json:"discount_value"`
	MaxDiscount       float64             `json:"max_discount"`
	MinPurchaseAmount float64             `json:"min_purchase_amount"`

	Targeting   models.TargetingRule `json:"targeting" binding:"required"`
	ProductRule models.ProductRule   `json:"product_rule"`

	ValidFrom  time.Time `json:"valid_from" binding:"required"`
	ValidUntil time.Time `json:"valid_until" binding:"required"`

	MaxRedemptions int `json:"max_redemptions"`
	PerUserLimit   int `json:"per_user_limit"`
}

// CreateCampaign creates a new campaign in DRAFT status
func CreateCampaign(c *gin.Context) {
	utils.LogInfo("CreateCampaign called")

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request format: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	utils.LogInfo("Processing campaign creation with code: %s", req.Code)

	if err := utils.ValidateDiscountRule(req.DiscountKind, req.DiscountValue, req.MaxDiscount); err != nil {
		utils.BadRequest(c, err.Error(), nil)
		return
	}
	if err := utils.ValidateValidityWindow(req.ValidFrom, req.ValidUntil); err != nil {
		utils.BadRequest(c, err.Error(), nil)
		return
	}
	if err := utils.ValidateCampaignLimits(req.MaxRedemptions, req.PerUserLimit); err != nil {
		utils.BadRequest(c, err.Error(), nil)
		return
	}
	if err := req.Targeting.Validate(); err != nil {
		utils.BadRequest(c, err.Error(), nil)
		return
	}

	existing, err := campaignRepo.GetByCode(c.Request.Context(), req.Code)
	if err != nil {
		utils.LogError("Failed to check campaign code %s: %v", req.Code, err)
		utils.InternalServerError(c, "Failed to check campaign code", nil)
		return
	}
	if existing != nil {
		utils.BadRequest(c, "Campaign code already exists", nil)
		return
	}

	if req.ProductRule.Scope == "" {
		req.ProductRule.Scope = models.ProductScopeAll
	}
	campaign := models.Campaign{
		Code:              req.Code,
		Title:             req.Title,
		Description:       req.Description,
		DiscountKind:      req.DiscountKind,
		DiscountValue:     req.DiscountValue,
		MaxDiscount:       req.MaxDiscount,
		MinPurchaseAmount: req.MinPurchaseAmount,
		Targeting:         req.Targeting,
		ProductRule:       req.ProductRule,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		MaxRedemptions:    req.MaxRedemptions,
		PerUserLimit:      req.PerUserLimit,
		Status:            models.CampaignStatusDraft,
	}

	if err := campaignRepo.Create(c.Request.Context(), &campaign); err != nil {
		utils.LogError("Failed to create campaign %s: %v", req.Code, err)
		utils.InternalServerError(c, "Failed to create campaign", nil)
		return
	}

	utils.LogInfo("Created campaign %s with ID %d", campaign.Code, campaign.ID)
	utils.Created(c, "Campaign created successfully", campaign)
}

// UpdateCampaignRequest represents the editable campaign fields. Limits and
// the counter are deliberately absent: the counter is engine-owned and limit
// edits on a live campaign would break issued entitlements' expectations.
type UpdateCampaignRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	MaxDiscount       *float64   `json:"max_discount"`
	MinPurchaseAmount *float64   `json:"min_purchase_amount"`
	ValidUntil        *time.Time `json:"valid_until"`
}

// UpdateCampaign edits a campaign's descriptive fields
func UpdateCampaign(c *gin.Context) {
	utils.LogInfo("UpdateCampaign called")

	campaign, ok := campaignFromPath(c)
	if !ok {
		return
	}

	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if req.Title != nil {
		campaign.Title = *req.Title
	}
	if req.Description != nil {
		campaign.Description = *req.Description
	}
	if req.MaxDiscount != nil {
		campaign.MaxDiscount = *req.MaxDiscount
	}
	if req.MinPurchaseAmount != nil {
		campaign.MinPurchaseAmount = *req.MinPurchaseAmount
	}
	if req.ValidUntil != nil {
		if err := utils.ValidateValidityWindow(campaign.ValidFrom, *req.ValidUntil); err != nil {
			utils.BadRequest(c, err.Error(), nil)
			return
		}
		campaign.ValidUntil = *req.ValidUntil
	}

	if err := campaignRepo.Save(c.Request.Context(), campaign); err != nil {
		utils.LogError("Failed to update campaign %d: %v", campaign.ID, err)
		utils.InternalServerError(c, "Failed to update campaign", nil)
		return
	}

	utils.LogInfo("Updated campaign %d", campaign.ID)
	utils.Success(c, "Campaign updated successfully", campaign)
}

// ChangeCampaignStatusRequest asks for a lifecycle transition
type ChangeCampaignStatusRequest struct {
	Status models.CampaignStatus `json:"status" binding:"required,oneof=ACTIVE PAUSED EXPIRED DELETED"`
}

// ChangeCampaignStatus moves a campaign through its lifecycle, rejecting
// illegal transitions
func ChangeCampaignStatus(c *gin.Context) {
	utils.LogInfo("ChangeCampaignStatus called")

	campaign, ok := campaignFromPath(c)
	if !ok {
		return
	}

	var req ChangeCampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if !campaign.Status.CanTransitionTo(req.Status) {
		utils.LogError("Illegal campaign transition %s -> %s for campaign %d", campaign.Status, req.Status, campaign.ID)
		utils.BadRequest(c, "Illegal status transition", gin.H{
			"from": campaign.Status,
			"to":   req.Status,
		})
		return
	}

	campaign.Status = req.Status
	if err := campaignRepo.Save(c.Request.Context(), campaign); err != nil {
		utils.LogError("Failed to change campaign %d status: %v", campaign.ID, err)
		utils.InternalServerError(c, "Failed to change campaign status", nil)
		return
	}

	utils.LogInfo("Campaign %d moved to %s", campaign.ID, campaign.Status)
	utils.Success(c, "Campaign status updated", gin.H{
		"id":     campaign.ID,
		"code":   campaign.Code,
		"status": campaign.Status,
	})
}

// DeleteCampaign soft-deletes a campaign
func DeleteCampaign(c *gin.Context) {
	utils.LogInfo("DeleteCampaign called")

	campaign, ok := campaignFromPath(c)
	if !ok {
		return
	}
	if !campaign.Status.CanTransitionTo(models.CampaignStatusDeleted) {
		utils.BadRequest(c, "Campaign cannot be deleted from its current status", gin.H{"status": campaign.Status})
		return
	}

	campaign.Status = models.CampaignStatusDeleted
	if err := campaignRepo.Save(c.Request.Context(), campaign); err != nil {
		utils.LogError("Failed to mark campaign %d deleted: %v", campaign.ID, err)
		utils.InternalServerError(c, "Failed to delete campaign", nil)
		return
	}
	if err := campaignRepo.Delete(c.Request.Context(), campaign.ID); err != nil {
		utils.LogError("Failed to delete campaign %d: %v", campaign.ID, err)
		utils.InternalServerError(c, "Failed to delete campaign", nil)
		return
	}

	utils.LogInfo("Deleted campaign %d", campaign.ID)
	utils.Success(c, "Campaign deleted successfully", nil)
}

// ListCampaigns returns campaigns for the admin console with pagination
func ListCampaigns(c *gin.Context) {
	utils.LogInfo("ListCampaigns called")

	page, limit := utils.GetPaginationParams(c)
	status := models.CampaignStatus(strings.ToUpper(c.Query("status")))

	campaigns, total, err := campaignRepo.List(c.Request.Context(), status, page, limit)
	if err != nil {
		utils.LogError("Failed to list campaigns: %v", err)
		utils.InternalServerError(c, "Failed to list campaigns", nil)
		return
	}

	utils.SuccessWithPagination(c, "Campaigns retrieved", campaigns, total, page, limit)
}

// campaignFromPath resolves the :id path parameter to a campaign,
// responding on failure.
func campaignFromPath(c *gin.Context) (*models.Campaign, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid campaign id", nil)
		return nil, false
	}
	campaign, err := campaignRepo.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		utils.LogError("Failed to fetch campaign %d: %v", id, err)
		utils.InternalServerError(c, "Failed to fetch campaign", nil)
		return nil, false
	}
	if campaign == nil {
		utils.NotFound(c, "Campaign not found")
		return nil, false
	}
	return campaign, true
}
