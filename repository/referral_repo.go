package repository

import (
	"context"
	"errors"
	"time"

	"github.com/retailkart/promokart/models"
	"gorm.io/gorm"
)

// ReferralRepository is the gorm-backed referral store. The status moves are
// conditional updates keyed on the current status, which is what keeps the
// cascade idempotent when the purchase ledger retries its trigger.
type ReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository builds the repository over the given connection.
func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// GetByID fetches a referral, returning (nil, nil) when it does not exist.
func (r *ReferralRepository) GetByID(ctx context.Context, id uint) (*models.Referral, error) {
	var referral models.Referral
	if err := r.db.WithContext(ctx).First(&referral, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByReferred fetches the referral where the customer is the referred
// party. A customer is referred at most once.
func (r *ReferralRepository) GetByReferred(ctx context.Context, customerID uint) (*models.Referral, error) {
	var referral models.Referral
	err := r.db.WithContext(ctx).Where("referred_customer_id = ?", customerID).First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByCode fetches a referral by its invitation code.
func (r *ReferralRepository) GetByCode(ctx context.Context, code string) (*models.Referral, error) {
	var referral models.Referral
	err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// HasCompletedReferral reports whether the customer was referred and the
// referral completed; REFERRAL-targeted campaigns check this.
func (r *ReferralRepository) HasCompletedReferral(ctx context.Context, customerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("referred_customer_id = ? AND status = ?", customerID, models.ReferralStatusCompleted).
		Count(&count).Error
	return count > 0, err
}

// Create persists a new referral.
func (r *ReferralRepository) Create(ctx context.Context, referral *models.Referral) error {
	return r.db.WithContext(ctx).Create(referral).Error
}

// Save persists referral edits including the reward sub-records.
func (r *ReferralRepository) Save(ctx context.Context, referral *models.Referral) error {
	return r.db.WithContext(ctx).Save(referral).Error
}

// MarkFirstPurchase moves REGISTERED -> FIRST_PURCHASE, recording which
// purchase did it. Zero rows affected means the referral already moved on.
func (r *ReferralRepository) MarkFirstPurchase(ctx context.Context, id, purchaseID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("id = ? AND status = ?", id, models.ReferralStatusRegistered).
		Updates(map[string]interface{}{
			"status":            models.ReferralStatusFirstPurchase,
			"first_purchase_id": purchaseID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Complete is the single-shot gate: only one caller ever moves the row from
// FIRST_PURCHASE to COMPLETED.
func (r *ReferralRepository) Complete(ctx context.Context, id uint) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("id = ? AND status = ?", id, models.ReferralStatusFirstPurchase).
		Updates(map[string]interface{}{
			"status":       models.ReferralStatusCompleted,
			"completed_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Reopen compensates a failed reward cascade so the trigger can retry the
// whole unit.
func (r *ReferralRepository) Reopen(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("id = ? AND status = ?", id, models.ReferralStatusCompleted).
		Updates(map[string]interface{}{
			"status":       models.ReferralStatusFirstPurchase,
			"completed_at": nil,
		}).Error
}

// MarkExpired retires a referral whose window lapsed before completion.
func (r *ReferralRepository) MarkExpired(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("id = ? AND status NOT IN ?", id, []models.ReferralStatus{models.ReferralStatusCompleted, models.ReferralStatusExpired}).
		Update("status", models.ReferralStatusExpired).Error
}

// List returns referrals for the admin console, newest first.
func (r *ReferralRepository) List(ctx context.Context, page, limit int) ([]models.Referral, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Referral{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var referrals []models.Referral
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&referrals).Error
	return referrals, total, err
}
