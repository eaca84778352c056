package repository

import (
	"context"
	"errors"
	"time"

	"github.com/retailkart/promokart/models"
	"gorm.io/gorm"
)

// CustomerRepository resolves customer ids against the replicated directory
// table. Read-only from this service's point of view; the account service
// owns the data.
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository builds the directory over the given connection.
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetCustomer fetches a customer profile, returning (nil, nil) when unknown.
func (r *CustomerRepository) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// StoreRepository resolves store ids to display metadata.
type StoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository builds the directory over the given connection.
func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// GetStore fetches store metadata, returning (nil, nil) when unknown.
func (r *StoreRepository) GetStore(ctx context.Context, id uint) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// PurchaseRepository is the read-only view over the purchase ledger tables.
type PurchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository builds the ledger view over the given connection.
func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// PurchasesSince returns the customer's purchases with items, newest first.
// since == nil means an unbounded lookback.
func (r *PurchaseRepository) PurchasesSince(ctx context.Context, customerID uint, since *time.Time) ([]models.Purchase, error) {
	query := r.db.WithContext(ctx).Preload("Items").Where("customer_id = ?", customerID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	var purchases []models.Purchase
	err := query.Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}
