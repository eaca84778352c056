package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Purchase is a completed sale recorded by the purchase ledger. The engine
// only reads these: purchase-history targeting scans them and the referral
// cascade is triggered by the ledger when a first purchase completes.
type Purchase struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CustomerID  uint           `gorm:"index" json:"customer_id"`
	StoreID     uint           `json:"store_id"`
	FinalAmount float64        `json:"final_amount"`
	Items       []PurchaseItem `gorm:"foreignKey:PurchaseID" json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// PurchaseItem is one line of a purchase with the category and brand fields
// the eligibility evaluator matches against.
type PurchaseItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	PurchaseID uint    `gorm:"index" json:"purchase_id"`
	ProductID  uint    `json:"product_id"`
	Category   string  `json:"category"`
	Brand      string  `json:"brand"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// TouchesCategory reports whether any item of the purchase falls in one of
// the given categories. Matching is case-insensitive.
func (p *Purchase) TouchesCategory(categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	for _, item := range p.Items {
		for _, cat := range categories {
			if strings.EqualFold(item.Category, cat) {
				return true
			}
		}
	}
	return false
}
