package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/retailkart/promokart/models"
	"gorm.io/gorm"
)

// CampaignRepository is the gorm-backed campaign store.
type CampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository builds the repository over the given connection.
func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// GetByID fetches a campaign, returning (nil, nil) when it does not exist.
func (r *CampaignRepository) GetByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// GetByCode fetches a campaign by its canonical uppercase code.
func (r *CampaignRepository) GetByCode(ctx context.Context, code string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).Where("UPPER(code) = ?", strings.ToUpper(code)).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// Create persists a new campaign. Codes are stored uppercase.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.Code = strings.ToUpper(campaign.Code)
	return r.db.WithContext(ctx).Create(campaign).Error
}

// Save persists campaign edits. The redemption counter is deliberately not
// writable through Save; only ConsumeSlot and ReleaseSlot touch it.
func (r *CampaignRepository) Save(ctx context.Context, campaign *models.Campaign) error {
	return r.db.WithContext(ctx).Omit("current_redemptions").Save(campaign).Error
}

// Delete soft-deletes a campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Campaign{}, id).Error
}

// ConsumeSlot is the conditional counter increment: it only matches while
// the campaign is ACTIVE and under its ceiling, so under concurrent
// redemptions the counter can never pass max_redemptions.
func (r *CampaignRepository) ConsumeSlot(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND status = ? AND (max_redemptions = 0 OR current_redemptions < max_redemptions)",
			id, models.CampaignStatusActive).
		UpdateColumn("current_redemptions", gorm.Expr("current_redemptions + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSlot reverts one ConsumeSlot after a failed entitlement transition.
func (r *CampaignRepository) ReleaseSlot(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND current_redemptions > 0", id).
		UpdateColumn("current_redemptions", gorm.Expr("current_redemptions - 1")).Error
}

// List returns campaigns for the admin console, newest first.
func (r *CampaignRepository) List(ctx context.Context, status models.CampaignStatus, page, limit int) ([]models.Campaign, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Campaign{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var campaigns []models.Campaign
	err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&campaigns).Error
	if err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// ListActive returns campaigns a customer app can browse: ACTIVE and inside
// their validity window.
func (r *CampaignRepository) ListActive(ctx context.Context) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.WithContext(ctx).
		Where("status = ? AND valid_from <= NOW() AND valid_until >= NOW()", models.CampaignStatusActive).
		Order("valid_until ASC").
		Find(&campaigns).Error
	return campaigns, err
}
