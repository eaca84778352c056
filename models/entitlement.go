package models

import (
	"time"

	"gorm.io/gorm"
)

// EntitlementStatus is the redemption state of an issued coupon.
type EntitlementStatus string

const (
	EntitlementStatusActive    EntitlementStatus = "ACTIVE"
	EntitlementStatusUsed      EntitlementStatus = "USED"
	EntitlementStatusExpired   EntitlementStatus = "EXPIRED"
	EntitlementStatusCancelled EntitlementStatus = "CANCELLED"
)

// CanTransitionTo reports whether moving from s to next is legal. ACTIVE is
// the only non-terminal state; USED, EXPIRED and CANCELLED are terminal.
func (s EntitlementStatus) CanTransitionTo(next EntitlementStatus) bool {
	if s != EntitlementStatusActive {
		return false
	}
	switch next {
	case EntitlementStatusUsed, EntitlementStatusExpired, EntitlementStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transitions.
func (s EntitlementStatus) Terminal() bool {
	return s != EntitlementStatusActive
}

// RedemptionRecord captures where, by whom and for how much an entitlement
// was consumed. Populated only on successful redemption.
type RedemptionRecord struct {
	StoreID    uint       `json:"store_id"`
	StaffID    uint       `json:"staff_id"`
	PurchaseID uint       `json:"purchase_id"`
	AmountUsed float64    `json:"amount_used"`
	Notes      string     `json:"notes"`
	RedeemedAt *time.Time `json:"redeemed_at"`
}

// Entitlement is one customer's claimed, redeemable instance of a campaign.
// The validity window is copied from the campaign at issuance so later
// campaign edits cannot retroactively shrink or extend an issued coupon.
type Entitlement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ReferenceID string `gorm:"uniqueIndex" json:"reference_id"`
	CampaignID  uint   `gorm:"index" json:"campaign_id"`
	CustomerID  uint   `gorm:"index" json:"customer_id"`

	UniqueCode string `gorm:"uniqueIndex" json:"unique_code"`
	QRPayload  string `json:"qr_payload"`

	Status     EntitlementStatus `gorm:"default:ACTIVE" json:"status"`
	ValidFrom  time.Time         `json:"valid_from"`
	ValidUntil time.Time         `json:"valid_until"`
	IssuedAt   time.Time         `json:"issued_at"`

	Redemption RedemptionRecord `gorm:"embedded;embeddedPrefix:redemption_" json:"redemption"`

	Campaign Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ExpiredAt reports whether the entitlement's own window has lapsed at now.
// Expiry is a derived read-time fact until a background sweep persists it.
func (e *Entitlement) ExpiredAt(now time.Time) bool {
	return now.After(e.ValidUntil)
}
