package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntitlementStatusTransitions(t *testing.T) {
	terminal := []EntitlementStatus{EntitlementStatusUsed, EntitlementStatusExpired, EntitlementStatusCancelled}

	for _, next := range terminal {
		assert.True(t, EntitlementStatusActive.CanTransitionTo(next), "ACTIVE -> %s", next)
	}
	for _, from := range terminal {
		assert.True(t, from.Terminal())
		for _, next := range append(terminal, EntitlementStatusActive) {
			assert.False(t, from.CanTransitionTo(next), "%s -> %s", from, next)
		}
	}
	assert.False(t, EntitlementStatusActive.Terminal())
}

func TestEntitlementExpiredAt(t *testing.T) {
	now := time.Now()
	e := Entitlement{ValidUntil: now.Add(time.Hour)}

	assert.False(t, e.ExpiredAt(now))
	assert.True(t, e.ExpiredAt(now.Add(2*time.Hour)))
}

func TestReferralStatusTransitions(t *testing.T) {
	tests := []struct {
		from    ReferralStatus
		to      ReferralStatus
		allowed bool
	}{
		{ReferralStatusPending, ReferralStatusRegistered, true},
		{ReferralStatusPending, ReferralStatusFirstPurchase, false},
		{ReferralStatusRegistered, ReferralStatusFirstPurchase, true},
		{ReferralStatusRegistered, ReferralStatusCompleted, false},
		{ReferralStatusFirstPurchase, ReferralStatusCompleted, true},
		{ReferralStatusFirstPurchase, ReferralStatusExpired, true},
		{ReferralStatusCompleted, ReferralStatusExpired, false},
		{ReferralStatusExpired, ReferralStatusRegistered, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestReferralExpiredAt(t *testing.T) {
	now := time.Now()

	open := Referral{Status: ReferralStatusRegistered, ExpiresAt: now.Add(-time.Hour)}
	assert.True(t, open.ExpiredAt(now))

	// A completed referral never lapses retroactively.
	done := Referral{Status: ReferralStatusCompleted, ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, done.ExpiredAt(now))
}

func TestPurchaseTouchesCategory(t *testing.T) {
	p := Purchase{Items: []PurchaseItem{
		{Category: "Electronics"},
		{Category: "Grocery"},
	}}

	assert.True(t, p.TouchesCategory([]string{"electronics"}))
	assert.True(t, p.TouchesCategory(nil), "no restriction matches everything")
	assert.False(t, p.TouchesCategory([]string{"Fashion"}))
}
