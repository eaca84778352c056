package repository

import (
	"context"
	"fmt"

	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
	"gorm.io/gorm"
)

// EmailNotifier delivers customer notifications over email. It is the
// default Notifier wiring; push and SMS channels hang off the same interface
// when the delivery service comes online.
type EmailNotifier struct {
	db *gorm.DB
}

// NewEmailNotifier builds the notifier over the given connection.
func NewEmailNotifier(db *gorm.DB) *EmailNotifier {
	return &EmailNotifier{db: db}
}

// Notify resolves the customer's email and sends the message. Callers treat
// this as fire-and-forget; an error here never affects the triggering
// operation.
func (n *EmailNotifier) Notify(ctx context.Context, customerID uint, title, body string) error {
	var customer models.Customer
	if err := n.db.WithContext(ctx).First(&customer, customerID).Error; err != nil {
		return fmt.Errorf("failed to resolve customer %d: %w", customerID, err)
	}
	if customer.Email == "" {
		return fmt.Errorf("customer %d has no email address", customerID)
	}
	return utils.SendEmail(customer.Email, title, body)
}
