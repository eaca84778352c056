package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/services"
	"gorm.io/gorm"
)

// EntitlementRepository is the gorm-backed entitlement store.
type EntitlementRepository struct {
	db *gorm.DB
}

// NewEntitlementRepository builds the repository over the given connection.
func NewEntitlementRepository(db *gorm.DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

// GetByID fetches an entitlement with its campaign preloaded, returning
// (nil, nil) when it does not exist.
func (r *EntitlementRepository) GetByID(ctx context.Context, id uint) (*models.Entitlement, error) {
	var entitlement models.Entitlement
	err := r.db.WithContext(ctx).Preload("Campaign").First(&entitlement, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entitlement, nil
}

// GetByReference fetches an entitlement by the uuid embedded in QR payloads.
func (r *EntitlementRepository) GetByReference(ctx context.Context, referenceID string) (*models.Entitlement, error) {
	var entitlement models.Entitlement
	err := r.db.WithContext(ctx).Preload("Campaign").Where("reference_id = ?", referenceID).First(&entitlement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entitlement, nil
}

// GetByCode fetches an entitlement by its human-typeable redemption code.
func (r *EntitlementRepository) GetByCode(ctx context.Context, code string) (*models.Entitlement, error) {
	var entitlement models.Entitlement
	err := r.db.WithContext(ctx).Preload("Campaign").Where("unique_code = ?", strings.ToUpper(code)).First(&entitlement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entitlement, nil
}

// FindForCustomer returns the customer's entitlements for a campaign in the
// given statuses, oldest first.
func (r *EntitlementRepository) FindForCustomer(ctx context.Context, customerID, campaignID uint, statuses []models.EntitlementStatus) ([]models.Entitlement, error) {
	var entitlements []models.Entitlement
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND campaign_id = ? AND status IN ?", customerID, campaignID, statuses).
		Order("created_at ASC").
		Find(&entitlements).Error
	return entitlements, err
}

// CountForCustomer counts the customer's entitlements for a campaign in the
// given statuses; the evaluator uses it for the per-user limit check.
func (r *EntitlementRepository) CountForCustomer(ctx context.Context, customerID, campaignID uint, statuses []models.EntitlementStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Entitlement{}).
		Where("customer_id = ? AND campaign_id = ? AND status IN ?", customerID, campaignID, statuses).
		Count(&count).Error
	return count, err
}

// ListForCustomer returns all of a customer's entitlements across campaigns,
// newest first, for the "my coupons" screen.
func (r *EntitlementRepository) ListForCustomer(ctx context.Context, customerID uint) ([]models.Entitlement, error) {
	var entitlements []models.Entitlement
	err := r.db.WithContext(ctx).Preload("Campaign").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&entitlements).Error
	return entitlements, err
}

// Create inserts a new entitlement, translating a unique-code collision into
// services.ErrDuplicateCode so the issuance retry loop can pick a new code.
func (r *EntitlementRepository) Create(ctx context.Context, entitlement *models.Entitlement) error {
	err := r.db.WithContext(ctx).Create(entitlement).Error
	if err != nil && isUniqueViolation(err) {
		return services.ErrDuplicateCode
	}
	return err
}

// Delete hard-deletes an entitlement; only cascade compensation uses this.
func (r *EntitlementRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Entitlement{}, id).Error
}

// MarkUsed is the conditional ACTIVE -> USED transition: the update only
// matches while the row is still ACTIVE, so the first redemption wins and
// every other concurrent attempt observes zero rows affected.
func (r *EntitlementRepository) MarkUsed(ctx context.Context, id uint, record models.RedemptionRecord) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Entitlement{}).
		Where("id = ? AND status = ?", id, models.EntitlementStatusActive).
		Updates(map[string]interface{}{
			"status":                 models.EntitlementStatusUsed,
			"redemption_store_id":    record.StoreID,
			"redemption_staff_id":    record.StaffID,
			"redemption_purchase_id": record.PurchaseID,
			"redemption_amount_used": record.AmountUsed,
			"redemption_notes":       record.Notes,
			"redemption_redeemed_at": record.RedeemedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListRedeemed returns USED entitlements in a window, newest first, for the
// admin redemption report.
func (r *EntitlementRepository) ListRedeemed(ctx context.Context, from, to time.Time) ([]models.Entitlement, error) {
	var entitlements []models.Entitlement
	err := r.db.WithContext(ctx).Preload("Campaign").
		Where("status = ? AND redemption_redeemed_at BETWEEN ? AND ?", models.EntitlementStatusUsed, from, to).
		Order("redemption_redeemed_at DESC").
		Find(&entitlements).Error
	return entitlements, err
}

// isUniqueViolation recognises the postgres unique-constraint error. SQLSTATE
// 23505 covers both the code and reference indexes.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505") || strings.Contains(err.Error(), "duplicate key value")
}
