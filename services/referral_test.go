package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailkart/promokart/models"
)

type referralFixture struct {
	referrals    *fakeReferralStore
	campaigns    *fakeCampaignStore
	entitlements *fakeEntitlementStore
	notifier     *fakeNotifier
	svc          *ReferralService
	now          time.Time
}

func newReferralFixture() *referralFixture {
	f := &referralFixture{
		referrals:    newFakeReferralStore(),
		campaigns:    newFakeCampaignStore(),
		entitlements: newFakeEntitlementStore(),
		notifier:     &fakeNotifier{},
		now:          time.Now(),
	}
	customers := newFakeCustomerDirectory()
	evaluator := testEvaluator(f.entitlements, f.referrals, newFakePurchaseHistory(), f.now)
	issuance := NewIssuanceService(f.campaigns, f.entitlements, customers, evaluator,
		NewCodeGenerator(), NewQRCodec("test-secret"), f.notifier)
	issuance.now = func() time.Time { return f.now }
	f.svc = NewReferralService(f.referrals, issuance, f.notifier)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *referralFixture) registeredReferral() *models.Referral {
	return f.referrals.add(&models.Referral{
		ReferrerKind:       models.ReferrerCustomer,
		ReferrerID:         10,
		ReferredCustomerID: 20,
		ReferralCode:       "RK-REF-TEST",
		Status:             models.ReferralStatusRegistered,
		MinPurchaseAmount:  500,
		ExpiresAt:          f.now.AddDate(0, 0, 30),
	})
}

func TestCascadeMintsBothRewards(t *testing.T) {
	f := newReferralFixture()
	f.registeredReferral()

	result, err := f.svc.OnQualifyingPurchase(context.Background(), 20, 101, 750)
	require.NoError(t, err)

	assert.Equal(t, CascadeCompleted, result.Outcome)
	require.NotNil(t, result.ReferrerEntitlement)
	require.NotNil(t, result.ReferredEntitlement)
	assert.Equal(t, uint(10), result.ReferrerEntitlement.CustomerID)
	assert.Equal(t, uint(20), result.ReferredEntitlement.CustomerID)

	stored, err := f.referrals.GetByID(context.Background(), result.Referral.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReferralStatusCompleted, stored.Status)
	assert.Equal(t, uint(101), stored.FirstPurchaseID)
	assert.Equal(t, models.RewardStatusIssued, stored.ReferrerReward.Status)
	assert.Equal(t, models.RewardStatusIssued, stored.ReferredReward.Status)

	// Each minted campaign is single-use and targeted at its beneficiary.
	assert.Len(t, f.campaigns.campaigns, 2)
	for _, c := range f.campaigns.campaigns {
		assert.Equal(t, 1, c.MaxRedemptions)
		assert.Equal(t, models.TargetIndividual, c.Targeting.Type)
	}
}

func TestCascadeIsIdempotent(t *testing.T) {
	f := newReferralFixture()
	f.registeredReferral()

	first, err := f.svc.OnQualifyingPurchase(context.Background(), 20, 101, 750)
	require.NoError(t, err)
	require.Equal(t, CascadeCompleted, first.Outcome)

	// A retried trigger must not mint a second reward pair.
	second, err := f.svc.OnQualifyingPurchase(context.Background(), 20, 101, 750)
	require.NoError(t, err)
	assert.Equal(t, CascadeAlreadyDone, second.Outcome)
	assert.Len(t, f.entitlements.entitlements, 2)
	assert.Len(t, f.campaigns.campaigns, 2)
}

func TestCascadeBelowThreshold(t *testing.T) {
	f := newReferralFixture()
	referral := f.registeredReferral()

	result, err := f.svc.OnQualifyingPurchase(context.Background(), 20, 101, 300)
	require.NoError(t, err)

	assert.Equal(t, CascadeBelowThreshold, result.Outcome)
	// The first purchase is still recorded so a later qualifying purchase
	// can complete the referral.
	stored, err := f.referrals.GetByID(context.Background(), referral.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReferralStatusFirstPurchase, stored.Status)
	assert.Empty(t, f.entitlements.entitlements)

	// The next purchase over the threshold completes it.
	result, err = f.svc.OnQualifyingPurchase(context.Background(), 20, 102, 900)
	require.NoError(t, err)
	assert.Equal(t, CascadeCompleted, result.Outcome)
}

func TestCascadeNoReferral(t *testing.T) {
	f := newReferralFixture()

	result, err := f.svc.OnQualifyingPurchase(context.Background(), 55, 101, 900)
	require.NoError(t, err)
	assert.Equal(t, CascadeNoReferral, result.Outcome)
}

func TestCascadeExpiredReferral(t *testing.T) {
	f := newReferralFixture()
	referral := f.registeredReferral()
	referral.ExpiresAt = f.now.AddDate(0, 0, -1)

	result, err := f.svc.OnQualifyingPurchase(context.Background(), 20, 101, 900)
	require.NoError(t, err)

	assert.Equal(t, CascadeExpired, result.Outcome)
	stored, err := f.referrals.GetByID(context.Background(), referral.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReferralStatusExpired, stored.Status)
	assert.Empty(t, f.entitlements.entitlements)
}

func TestCascadeCompensatesPartialMint(t *testing.T) {
	f := newReferralFixture()
	referral := f.registeredReferral()
	// The referrer's mint succeeds, the referred customer's fails.
	f.entitlements.failCreateAt = 2

	_, err := f.svc.OnQualifyingPurchase(context.Background(), 20, 101, 750)

	var internal *InternalError
	require.ErrorAs(t, err, &internal)

	// Compensation removed the half-minted pair and reopened the gate.
	assert.Empty(t, f.entitlements.entitlements)
	assert.Empty(t, f.campaigns.campaigns)
	stored, getErr := f.referrals.GetByID(context.Background(), referral.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.ReferralStatusFirstPurchase, stored.Status)

	// With the fault cleared the retried trigger completes the cascade.
	f.entitlements.failCreateAt = 0
	result, err := f.svc.OnQualifyingPurchase(context.Background(), 20, 101, 750)
	require.NoError(t, err)
	assert.Equal(t, CascadeCompleted, result.Outcome)
}

func TestCascadeSkipsReferrerRewardForStaff(t *testing.T) {
	f := newReferralFixture()
	f.referrals.add(&models.Referral{
		ReferrerKind:       models.ReferrerStaff,
		ReferrerID:         3,
		ReferredCustomerID: 20,
		Status:             models.ReferralStatusRegistered,
		MinPurchaseAmount:  500,
		ExpiresAt:          f.now.AddDate(0, 0, 30),
	})

	result, err := f.svc.OnQualifyingPurchase(context.Background(), 20, 101, 750)
	require.NoError(t, err)

	assert.Equal(t, CascadeCompleted, result.Outcome)
	assert.Nil(t, result.ReferrerEntitlement)
	require.NotNil(t, result.ReferredEntitlement)
	assert.Len(t, f.entitlements.entitlements, 1)
}

func TestClaimReward(t *testing.T) {
	f := newReferralFixture()
	referral := f.registeredReferral()

	_, err := f.svc.OnQualifyingPurchase(context.Background(), 20, 101, 750)
	require.NoError(t, err)

	updated, err := f.svc.ClaimReward(context.Background(), referral.ID, RewardSideReferred)
	require.NoError(t, err)
	assert.Equal(t, models.RewardStatusClaimed, updated.ReferredReward.Status)
	assert.NotNil(t, updated.ReferredReward.ClaimedAt)

	// Claiming twice conflicts.
	_, err = f.svc.ClaimReward(context.Background(), referral.ID, RewardSideReferred)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// The other side is untouched and still claimable.
	updated, err = f.svc.ClaimReward(context.Background(), referral.ID, RewardSideReferrer)
	require.NoError(t, err)
	assert.Equal(t, models.RewardStatusClaimed, updated.ReferrerReward.Status)
}
