package models

import (
	"time"

	"gorm.io/gorm"
)

// ReferralStatus tracks a referral from invitation to reward.
type ReferralStatus string

const (
	ReferralStatusPending       ReferralStatus = "PENDING"
	ReferralStatusRegistered    ReferralStatus = "REGISTERED"
	ReferralStatusFirstPurchase ReferralStatus = "FIRST_PURCHASE"
	ReferralStatusCompleted     ReferralStatus = "COMPLETED"
	ReferralStatusExpired       ReferralStatus = "EXPIRED"
)

var referralTransitions = map[ReferralStatus][]ReferralStatus{
	ReferralStatusPending:       {ReferralStatusRegistered, ReferralStatusExpired},
	ReferralStatusRegistered:    {ReferralStatusFirstPurchase, ReferralStatusExpired},
	ReferralStatusFirstPurchase: {ReferralStatusCompleted, ReferralStatusExpired},
}

// CanTransitionTo reports whether moving from s to next is legal. COMPLETED
// and EXPIRED are terminal; COMPLETED is reachable only from FIRST_PURCHASE.
func (s ReferralStatus) CanTransitionTo(next ReferralStatus) bool {
	for _, allowed := range referralTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReferrerKind distinguishes customer referrers from staff referrers.
type ReferrerKind string

const (
	ReferrerCustomer ReferrerKind = "CUSTOMER"
	ReferrerStaff    ReferrerKind = "STAFF"
)

// RewardStatus tracks one side's reward through issuance and claiming.
type RewardStatus string

const (
	RewardStatusPending RewardStatus = "PENDING"
	RewardStatusIssued  RewardStatus = "ISSUED"
	RewardStatusClaimed RewardStatus = "CLAIMED"
)

// ReferralReward is one beneficiary's reward sub-record, pointing at the
// campaign and entitlement minted for it once issued.
type ReferralReward struct {
	Status        RewardStatus `gorm:"default:PENDING" json:"status"`
	CampaignID    uint         `json:"campaign_id"`
	EntitlementID uint         `json:"entitlement_id"`
	IssuedAt      *time.Time   `json:"issued_at"`
	ClaimedAt     *time.Time   `json:"claimed_at"`
}

// Referral links a referrer to a referred customer. Completion fires exactly
// once, from FIRST_PURCHASE, when the qualifying purchase meets the minimum
// amount; the cascade then mints one reward pair.
type Referral struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	ReferrerKind       ReferrerKind `gorm:"default:CUSTOMER" json:"referrer_kind"`
	ReferrerID         uint         `json:"referrer_id"`
	ReferredCustomerID uint         `gorm:"index" json:"referred_customer_id"`
	ReferralCode       string       `gorm:"index" json:"referral_code"`

	Status            ReferralStatus `gorm:"default:PENDING" json:"status"`
	MinPurchaseAmount float64        `json:"min_purchase_amount"`
	ExpiresAt         time.Time      `json:"expires_at"`

	FirstPurchaseID uint       `json:"first_purchase_id"`
	CompletedAt     *time.Time `json:"completed_at"`

	ReferrerReward ReferralReward `gorm:"embedded;embeddedPrefix:referrer_reward_" json:"referrer_reward"`
	ReferredReward ReferralReward `gorm:"embedded;embeddedPrefix:referred_reward_" json:"referred_reward"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ExpiredAt reports whether the referral lapsed before completing.
func (r *Referral) ExpiredAt(now time.Time) bool {
	return r.Status != ReferralStatusCompleted && now.After(r.ExpiresAt)
}
