package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is the directory view of a customer the engine needs: identity,
// contact details for notifications and the geo fields targeting rules match
// against. The full customer profile lives with the account service.
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	City      string         `json:"city"`
	Area      string         `json:"area"`
	IsBlocked bool           `json:"is_blocked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// StaffRole separates terminal operators from administrators.
type StaffRole string

const (
	StaffRoleStaff StaffRole = "STAFF"
	StaffRoleAdmin StaffRole = "ADMIN"
)

// Staff is a store employee who can validate and redeem coupons at a
// terminal. Admin-role staff additionally manage campaigns.
type Staff struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `json:"name"`
	Email     string         `gorm:"uniqueIndex" json:"email"`
	Password  string         `json:"-"`
	StoreID   uint           `json:"store_id"`
	Role      StaffRole      `gorm:"default:STAFF" json:"role"`
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Store is display metadata for a retail location.
type Store struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `json:"name"`
	City      string         `json:"city"`
	Area      string         `json:"area"`
	Address   string         `json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
