package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailkart/promokart/models"
)

type redemptionFixture struct {
	campaigns    *fakeCampaignStore
	entitlements *fakeEntitlementStore
	customers    *fakeCustomerDirectory
	stores       *fakeStoreDirectory
	notifier     *fakeNotifier
	qr           *QRCodec
	svc          *RedemptionService
	now          time.Time
}

func newRedemptionFixture() *redemptionFixture {
	f := &redemptionFixture{
		campaigns:    newFakeCampaignStore(),
		entitlements: newFakeEntitlementStore(),
		customers:    newFakeCustomerDirectory(),
		stores:       newFakeStoreDirectory(),
		notifier:     &fakeNotifier{},
		qr:           NewQRCodec("test-secret"),
		now:          time.Now(),
	}
	f.svc = NewRedemptionService(f.campaigns, f.entitlements, f.customers, f.stores, f.qr, f.notifier)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *redemptionFixture) issue(t *testing.T, campaign *models.Campaign, customerID uint) *models.Entitlement {
	t.Helper()
	entitlement := &models.Entitlement{
		ReferenceID: "ref-" + campaign.Code + "-" + time.Now().Format("150405.000000000"),
		CampaignID:  campaign.ID,
		CustomerID:  customerID,
		UniqueCode:  "RK-TST-" + strings.ReplaceAll(time.Now().Format("05.000000000"), ".", ""),
		Status:      models.EntitlementStatusActive,
		ValidFrom:   campaign.ValidFrom,
		ValidUntil:  campaign.ValidUntil,
		IssuedAt:    f.now,
	}
	payload, err := f.qr.Encode(QRPayload{
		EntitlementRef: entitlement.ReferenceID,
		CustomerID:     customerID,
		CampaignID:     campaign.ID,
		UniqueCode:     entitlement.UniqueCode,
		IssuedAt:       f.now,
		Nonce:          "nonce",
	})
	require.NoError(t, err)
	entitlement.QRPayload = payload
	return f.entitlements.add(entitlement)
}

func TestValidateQRPayload(t *testing.T) {
	f := newRedemptionFixture()
	f.customers.add(&models.Customer{ID: 1, Name: "Asha"})
	campaign := f.campaigns.add(activeCampaign(f.now))
	entitlement := f.issue(t, campaign, 1)

	result, err := f.svc.Validate(context.Background(), entitlement.QRPayload)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, entitlement.ID, result.Entitlement.ID)
	assert.Equal(t, "Asha", result.Customer.Name)
	assert.Equal(t, campaign.Code, result.Campaign.Code)
}

func TestValidateManualCode(t *testing.T) {
	f := newRedemptionFixture()
	f.customers.add(&models.Customer{ID: 1})
	campaign := f.campaigns.add(activeCampaign(f.now))
	entitlement := f.issue(t, campaign, 1)

	result, err := f.svc.Validate(context.Background(), entitlement.UniqueCode)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = f.svc.Validate(context.Background(), "RK-NOP-EEEE")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "coupon not found", result.Message)
}

func TestValidateRejectsTamperedPayload(t *testing.T) {
	f := newRedemptionFixture()
	campaign := f.campaigns.add(activeCampaign(f.now))
	entitlement := f.issue(t, campaign, 1)

	tampered := "x" + entitlement.QRPayload
	_, err := f.svc.Validate(context.Background(), tampered)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestValidateRejectsForgedPayload(t *testing.T) {
	f := newRedemptionFixture()
	campaign := f.campaigns.add(activeCampaign(f.now))
	entitlement := f.issue(t, campaign, 1)

	// A correctly signed payload whose identity fields point at a different
	// customer must be rejected against the stored record.
	forged, err := f.qr.Encode(QRPayload{
		EntitlementRef: entitlement.ReferenceID,
		CustomerID:     99,
		CampaignID:     campaign.ID,
		UniqueCode:     entitlement.UniqueCode,
		IssuedAt:       f.now,
		Nonce:          "nonce",
	})
	require.NoError(t, err)

	result, err := f.svc.Validate(context.Background(), forged)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateReportsStatus(t *testing.T) {
	f := newRedemptionFixture()
	campaign := f.campaigns.add(activeCampaign(f.now))

	used := f.issue(t, campaign, 1)
	f.entitlements.entitlements[used.ID].Status = models.EntitlementStatusUsed

	result, err := f.svc.Validate(context.Background(), used.UniqueCode)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "this coupon was already used", result.Message)

	expired := f.issue(t, campaign, 2)
	f.entitlements.entitlements[expired.ID].ValidUntil = f.now.AddDate(0, 0, -1)

	result, err = f.svc.Validate(context.Background(), expired.UniqueCode)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Message, "expired")
}

func TestRedeemConsumesEntitlement(t *testing.T) {
	f := newRedemptionFixture()
	f.customers.add(&models.Customer{ID: 1})
	f.stores.add(&models.Store{ID: 5, Name: "Indiranagar Flagship"})
	campaign := activeCampaign(f.now)
	campaign.DiscountKind = models.DiscountFixedAmount
	campaign.DiscountValue = 100
	f.campaigns.add(campaign)
	entitlement := f.issue(t, campaign, 1)

	result, err := f.svc.Redeem(context.Background(), RedeemRequest{
		EntitlementID:  entitlement.ID,
		StoreID:        5,
		StaffID:        9,
		PurchaseID:     77,
		PurchaseAmount: 350,
		AmountUsed:     100,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.DiscountAmount)
	assert.Equal(t, models.EntitlementStatusUsed, result.Entitlement.Status)
	require.NotNil(t, result.Store)
	assert.Equal(t, "Indiranagar Flagship", result.Store.Name)

	stored := f.entitlements.entitlements[entitlement.ID]
	assert.Equal(t, models.EntitlementStatusUsed, stored.Status)
	assert.Equal(t, uint(5), stored.Redemption.StoreID)
	assert.Equal(t, uint(9), stored.Redemption.StaffID)
	assert.Equal(t, 1, f.campaigns.campaigns[campaign.ID].CurrentRedemptions)
	assert.Equal(t, 1, f.notifier.count())
}

func TestRedeemCapsFixedDiscountAtPurchaseAmount(t *testing.T) {
	f := newRedemptionFixture()
	f.customers.add(&models.Customer{ID: 1})
	campaign := activeCampaign(f.now)
	campaign.DiscountKind = models.DiscountFixedAmount
	campaign.DiscountValue = 100
	f.campaigns.add(campaign)
	entitlement := f.issue(t, campaign, 1)

	result, err := f.svc.Redeem(context.Background(), RedeemRequest{
		EntitlementID:  entitlement.ID,
		PurchaseAmount: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.DiscountAmount)
}

func TestRedeemBelowMinimumPurchase(t *testing.T) {
	f := newRedemptionFixture()
	campaign := activeCampaign(f.now)
	campaign.MinPurchaseAmount = 500
	f.campaigns.add(campaign)
	entitlement := f.issue(t, campaign, 1)

	_, err := f.svc.Redeem(context.Background(), RedeemRequest{
		EntitlementID:  entitlement.ID,
		PurchaseAmount: 300,
	})

	var ineligible *IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Zero(t, f.campaigns.campaigns[campaign.ID].CurrentRedemptions)
}

func TestRedeemTwiceConflicts(t *testing.T) {
	f := newRedemptionFixture()
	f.customers.add(&models.Customer{ID: 1})
	campaign := f.campaigns.add(activeCampaign(f.now))
	entitlement := f.issue(t, campaign, 1)

	_, err := f.svc.Redeem(context.Background(), RedeemRequest{EntitlementID: entitlement.ID, PurchaseAmount: 200})
	require.NoError(t, err)

	_, err = f.svc.Redeem(context.Background(), RedeemRequest{EntitlementID: entitlement.ID, PurchaseAmount: 200})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ConflictAlreadyUsed, conflict.Kind)
	assert.Equal(t, 1, f.campaigns.campaigns[campaign.ID].CurrentRedemptions)
}

func TestRedeemConcurrentSameEntitlement(t *testing.T) {
	f := newRedemptionFixture()
	f.customers.add(&models.Customer{ID: 1})
	campaign := f.campaigns.add(activeCampaign(f.now))
	entitlement := f.issue(t, campaign, 1)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Redeem(context.Background(), RedeemRequest{
				EntitlementID:  entitlement.ID,
				PurchaseAmount: 200,
			})
		}(i)
	}
	wg.Wait()

	var succeeded, alreadyUsed int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, ConflictAlreadyUsed, conflict.Kind)
		alreadyUsed++
	}
	assert.Equal(t, 1, succeeded, "exactly one terminal wins")
	assert.Equal(t, attempts-1, alreadyUsed)
	// The compensation kept the counter equal to the number of USED coupons.
	assert.Equal(t, 1, f.campaigns.campaigns[campaign.ID].CurrentRedemptions)
}

func TestRedeemConcurrentSharedCeiling(t *testing.T) {
	f := newRedemptionFixture()
	f.customers.add(&models.Customer{ID: 1})
	f.customers.add(&models.Customer{ID: 2})
	campaign := activeCampaign(f.now)
	campaign.MaxRedemptions = 1
	f.campaigns.add(campaign)

	first := f.issue(t, campaign, 1)
	second := f.issue(t, campaign, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = f.svc.Redeem(context.Background(), RedeemRequest{
				EntitlementID:  id,
				PurchaseAmount: 200,
			})
		}(i, id)
	}
	wg.Wait()

	var succeeded, limitReached int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, ConflictLimitReached, conflict.Kind)
		limitReached++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, limitReached)
	assert.Equal(t, 1, f.campaigns.campaigns[campaign.ID].CurrentRedemptions)
}

func TestRedeemExpiredEntitlement(t *testing.T) {
	f := newRedemptionFixture()
	campaign := f.campaigns.add(activeCampaign(f.now))
	entitlement := f.issue(t, campaign, 1)
	f.entitlements.entitlements[entitlement.ID].ValidUntil = f.now.AddDate(0, 0, -1)

	_, err := f.svc.Redeem(context.Background(), RedeemRequest{EntitlementID: entitlement.ID, PurchaseAmount: 200})

	var ineligible *IneligibleError
	require.ErrorAs(t, err, &ineligible)
}

func TestRedeemCancelledEntitlement(t *testing.T) {
	f := newRedemptionFixture()
	campaign := f.campaigns.add(activeCampaign(f.now))
	entitlement := f.issue(t, campaign, 1)
	f.entitlements.entitlements[entitlement.ID].Status = models.EntitlementStatusCancelled

	_, err := f.svc.Redeem(context.Background(), RedeemRequest{EntitlementID: entitlement.ID, PurchaseAmount: 200})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ConflictCancelled, conflict.Kind)
}
