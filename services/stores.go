package services

import (
	"context"
	"time"

	"github.com/retailkart/promokart/models"
)

// CampaignStore owns campaign definitions. ConsumeSlot and ReleaseSlot are
// the only permitted writes to the redemption counter; both must be
// conditional single-row updates at the datastore, never read-modify-write.
type CampaignStore interface {
	GetByID(ctx context.Context, id uint) (*models.Campaign, error)
	GetByCode(ctx context.Context, code string) (*models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) error
	Save(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id uint) error

	// ConsumeSlot atomically increments the redemption counter, but only
	// while the campaign is ACTIVE and under its global limit. Returns false
	// when the conditional update matched no row.
	ConsumeSlot(ctx context.Context, id uint) (bool, error)
	// ReleaseSlot reverts one ConsumeSlot after the entitlement-side update
	// lost its race.
	ReleaseSlot(ctx context.Context, id uint) error
}

// EntitlementStore owns issued coupons. Create must surface ErrDuplicateCode
// on a unique-code collision so issuance can retry; MarkUsed must be a
// conditional single-row update gated on status still being ACTIVE.
type EntitlementStore interface {
	GetByID(ctx context.Context, id uint) (*models.Entitlement, error)
	GetByReference(ctx context.Context, referenceID string) (*models.Entitlement, error)
	GetByCode(ctx context.Context, code string) (*models.Entitlement, error)
	FindForCustomer(ctx context.Context, customerID, campaignID uint, statuses []models.EntitlementStatus) ([]models.Entitlement, error)
	CountForCustomer(ctx context.Context, customerID, campaignID uint, statuses []models.EntitlementStatus) (int64, error)
	Create(ctx context.Context, entitlement *models.Entitlement) error
	Delete(ctx context.Context, id uint) error

	// MarkUsed transitions ACTIVE -> USED and records the redemption in one
	// conditional update. Returns false when the entitlement was no longer
	// ACTIVE, i.e. another redemption won.
	MarkUsed(ctx context.Context, id uint, record models.RedemptionRecord) (bool, error)
}

// ReferralStore owns referral records. The transition methods are
// conditional updates keyed on the current status so the cascade stays
// idempotent under concurrent triggers.
type ReferralStore interface {
	GetByID(ctx context.Context, id uint) (*models.Referral, error)
	GetByReferred(ctx context.Context, customerID uint) (*models.Referral, error)
	HasCompletedReferral(ctx context.Context, customerID uint) (bool, error)
	Create(ctx context.Context, referral *models.Referral) error
	Save(ctx context.Context, referral *models.Referral) error

	// MarkFirstPurchase moves REGISTERED -> FIRST_PURCHASE, recording the
	// purchase id. Returns false when the referral already left REGISTERED.
	MarkFirstPurchase(ctx context.Context, id, purchaseID uint) (bool, error)
	// Complete moves FIRST_PURCHASE -> COMPLETED. Returns false when another
	// trigger already completed (or expired) the referral.
	Complete(ctx context.Context, id uint) (bool, error)
	// Reopen compensates a failed cascade: COMPLETED -> FIRST_PURCHASE.
	Reopen(ctx context.Context, id uint) error
	// MarkExpired moves any non-terminal status to EXPIRED.
	MarkExpired(ctx context.Context, id uint) error
}

// PurchaseHistory is the read-only view of the external purchase ledger.
// since == nil means an unbounded lookback.
type PurchaseHistory interface {
	PurchasesSince(ctx context.Context, customerID uint, since *time.Time) ([]models.Purchase, error)
}

// CustomerDirectory resolves customer ids to profiles. Read-only, supplied
// by the account service.
type CustomerDirectory interface {
	GetCustomer(ctx context.Context, id uint) (*models.Customer, error)
}

// StoreDirectory resolves store ids to display metadata.
type StoreDirectory interface {
	GetStore(ctx context.Context, id uint) (*models.Store, error)
}

// Notifier dispatches a customer notification. Fire-and-forget: callers log
// failures and never let them affect the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, customerID uint, title, body string) error
}
