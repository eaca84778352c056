package utils

import (
	"fmt"
	"time"

	"github.com/retailkart/promokart/models"
)

// ValidateDiscountRule checks a campaign's discount fields against its kind.
func ValidateDiscountRule(kind models.DiscountKind, value, maxDiscount float64) error {
	switch kind {
	case models.DiscountFixedAmount:
		if value <= 0 {
			return fmt.Errorf("fixed discount value must be greater than 0")
		}
	case models.DiscountPercentage:
		if value <= 0 || value > 100 {
			return fmt.Errorf("percentage discount value must be between 1 and 100")
		}
	case models.DiscountFreeItem:
		// Value carries no meaning for free-item campaigns.
	default:
		return fmt.Errorf("unknown discount kind: %s", kind)
	}
	if maxDiscount < 0 {
		return fmt.Errorf("max discount cannot be negative")
	}
	return nil
}

// ValidateValidityWindow checks validFrom <= validUntil and that the window
// has not already closed.
func ValidateValidityWindow(validFrom, validUntil time.Time) error {
	if validUntil.Before(validFrom) {
		return fmt.Errorf("valid_until must not be before valid_from")
	}
	if validUntil.Before(time.Now()) {
		return fmt.Errorf("validity window is already in the past")
	}
	return nil
}

// ValidateCampaignLimits checks the redemption limits are coherent.
func ValidateCampaignLimits(maxRedemptions, perUserLimit int) error {
	if maxRedemptions < 0 {
		return fmt.Errorf("max_redemptions cannot be negative")
	}
	if perUserLimit < 0 {
		return fmt.Errorf("per_user_limit cannot be negative")
	}
	if maxRedemptions > 0 && perUserLimit > maxRedemptions {
		return fmt.Errorf("per_user_limit cannot exceed max_redemptions")
	}
	return nil
}
