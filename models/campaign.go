package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignStatusDraft   CampaignStatus = "DRAFT"
	CampaignStatusActive  CampaignStatus = "ACTIVE"
	CampaignStatusPaused  CampaignStatus = "PAUSED"
	CampaignStatusExpired CampaignStatus = "EXPIRED"
	CampaignStatusDeleted CampaignStatus = "DELETED"
)

// campaignTransitions lists the legal lifecycle moves. DRAFT campaigns can only
// be activated or deleted; ACTIVE campaigns can be paused, expired or deleted;
// PAUSED campaigns can resume or be retired.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:  {CampaignStatusActive, CampaignStatusDeleted},
	CampaignStatusActive: {CampaignStatusPaused, CampaignStatusExpired, CampaignStatusDeleted},
	CampaignStatusPaused: {CampaignStatusActive, CampaignStatusExpired, CampaignStatusDeleted},
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	for _, allowed := range campaignTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DiscountKind determines how a campaign's discount is computed.
type DiscountKind string

const (
	DiscountFixedAmount DiscountKind = "FIXED_AMOUNT"
	DiscountPercentage  DiscountKind = "PERCENTAGE"
	DiscountFreeItem    DiscountKind = "FREE_ITEM"
)

// TargetingType selects which customers may claim a campaign.
type TargetingType string

const (
	TargetAll             TargetingType = "ALL"
	TargetGeographic      TargetingType = "GEOGRAPHIC"
	TargetIndividual      TargetingType = "INDIVIDUAL"
	TargetPurchaseHistory TargetingType = "PURCHASE_HISTORY"
	TargetReferral        TargetingType = "REFERRAL"
)

// ProductScope restricts which products a campaign's discount applies to.
type ProductScope string

const (
	ProductScopeAll      ProductScope = "ALL_PRODUCTS"
	ProductScopeCategory ProductScope = "CATEGORY"
	ProductScopeProduct  ProductScope = "PRODUCT"
	ProductScopeBrand    ProductScope = "BRAND"
)

// TargetingRule carries the targeting mode and the fields for that mode.
// Only the field group matching Type is honoured; Validate rejects rules
// whose active mode is missing its required fields.
type TargetingRule struct {
	Type TargetingType `json:"type"`

	// GEOGRAPHIC: an empty set for a dimension means no restriction on it.
	Cities   []string `gorm:"serializer:json" json:"cities,omitempty"`
	Areas    []string `gorm:"serializer:json" json:"areas,omitempty"`
	StoreIDs []uint   `gorm:"serializer:json" json:"store_ids,omitempty"`

	// INDIVIDUAL
	CustomerIDs []uint `gorm:"serializer:json" json:"customer_ids,omitempty"`

	// PURCHASE_HISTORY: all sub-conditions optional, AND-combined when set.
	MinPurchases int      `json:"min_purchases,omitempty"`
	Categories   []string `gorm:"serializer:json" json:"categories,omitempty"`
	MinSpend     float64  `json:"min_spend,omitempty"`
	LookbackDays int      `json:"lookback_days,omitempty"`
}

// Validate checks the rule's active mode carries what it needs.
func (r TargetingRule) Validate() error {
	switch r.Type {
	case TargetAll, TargetReferral:
		return nil
	case TargetGeographic:
		if len(r.Cities) == 0 && len(r.Areas) == 0 && len(r.StoreIDs) == 0 {
			return fmt.Errorf("geographic targeting requires at least one city, area or store")
		}
		return nil
	case TargetIndividual:
		if len(r.CustomerIDs) == 0 {
			return fmt.Errorf("individual targeting requires at least one customer id")
		}
		return nil
	case TargetPurchaseHistory:
		if r.MinPurchases <= 0 && len(r.Categories) == 0 && r.MinSpend <= 0 {
			return fmt.Errorf("purchase history targeting requires at least one condition")
		}
		return nil
	default:
		return fmt.Errorf("unknown targeting type: %s", r.Type)
	}
}

// IncludesCustomer reports whether an INDIVIDUAL rule lists the customer.
func (r TargetingRule) IncludesCustomer(customerID uint) bool {
	for _, id := range r.CustomerIDs {
		if id == customerID {
			return true
		}
	}
	return false
}

// MatchesCity reports whether the rule's city set admits the given city.
// An empty set places no restriction on the city dimension.
func (r TargetingRule) MatchesCity(city string) bool {
	if len(r.Cities) == 0 {
		return true
	}
	for _, c := range r.Cities {
		if strings.EqualFold(c, city) {
			return true
		}
	}
	return false
}

// MatchesArea reports whether the rule's area set admits the given area.
func (r TargetingRule) MatchesArea(area string) bool {
	if len(r.Areas) == 0 {
		return true
	}
	for _, a := range r.Areas {
		if strings.EqualFold(a, area) {
			return true
		}
	}
	return false
}

// ProductRule restricts campaign applicability to a product subset.
type ProductRule struct {
	Scope      ProductScope `json:"scope"`
	Categories []string     `gorm:"serializer:json" json:"categories,omitempty"`
	ProductIDs []uint       `gorm:"serializer:json" json:"product_ids,omitempty"`
	Brands     []string     `gorm:"serializer:json" json:"brands,omitempty"`
}

// Campaign is a discount definition with targeting rules, limits and a
// validity window. Redemption counting happens against MaxRedemptions via
// conditional updates only; CurrentRedemptions must never be written from a
// read-modify-write in application code.
type Campaign struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"uniqueIndex:idx_campaigns_code" json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`

	DiscountKind      DiscountKind `json:"discount_kind"`
	DiscountValue     float64      `json:"discount_value"`
	MaxDiscount       float64      `json:"max_discount"`        // 0 = uncapped
	MinPurchaseAmount float64      `json:"min_purchase_amount"` // 0 = no minimum

	Targeting   TargetingRule `gorm:"embedded;embeddedPrefix:targeting_" json:"targeting"`
	ProductRule ProductRule   `gorm:"embedded;embeddedPrefix:product_" json:"product_rule"`

	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`

	MaxRedemptions     int `json:"max_redemptions"` // 0 = unlimited
	CurrentRedemptions int `json:"current_redemptions"`
	PerUserLimit       int `json:"per_user_limit"`

	Status CampaignStatus `gorm:"default:DRAFT" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WithinWindow reports whether now falls inside [ValidFrom, ValidUntil].
func (c *Campaign) WithinWindow(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}

// UnderGlobalLimit reports whether the campaign still has redemption slots.
// This is an optimistic read; the authoritative check is the conditional
// counter increment at redemption time.
func (c *Campaign) UnderGlobalLimit() bool {
	return c.MaxRedemptions == 0 || c.CurrentRedemptions < c.MaxRedemptions
}

// Redeemable reports whether the campaign can currently be redeemed against:
// ACTIVE, inside its validity window and under its global limit.
func (c *Campaign) Redeemable(now time.Time) bool {
	return c.Status == CampaignStatusActive && c.WithinWindow(now) && c.UnderGlobalLimit()
}

// DiscountFor computes the advisory discount for a purchase amount according
// to the campaign's discount rule. FREE_ITEM campaigns carry no monetary
// discount; the free item itself is applied by the point of sale.
func (c *Campaign) DiscountFor(purchaseAmount float64) float64 {
	switch c.DiscountKind {
	case DiscountFixedAmount:
		if c.DiscountValue > purchaseAmount {
			return purchaseAmount
		}
		return c.DiscountValue
	case DiscountPercentage:
		discount := purchaseAmount * c.DiscountValue / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
		return discount
	default:
		return 0
	}
}
