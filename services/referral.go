package services

import (
	"context"
	"fmt"
	"time"

	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
)

// CascadeOutcome reports what the purchase trigger did for a referral.
type CascadeOutcome string

const (
	CascadeNoReferral     CascadeOutcome = "NO_REFERRAL"
	CascadeBelowThreshold CascadeOutcome = "BELOW_THRESHOLD"
	CascadeAlreadyDone    CascadeOutcome = "ALREADY_COMPLETED"
	CascadeExpired        CascadeOutcome = "EXPIRED"
	CascadeCompleted      CascadeOutcome = "COMPLETED"
)

// CascadeResult carries the outcome plus the minted entitlements when the
// referral completed.
type CascadeResult struct {
	Outcome             CascadeOutcome      `json:"outcome"`
	Referral            *models.Referral    `json:"referral,omitempty"`
	ReferrerEntitlement *models.Entitlement `json:"referrer_entitlement,omitempty"`
	ReferredEntitlement *models.Entitlement `json:"referred_entitlement,omitempty"`
}

// ReferralService drives the reward cascade: when a referred customer's
// first qualifying purchase completes, the referral is completed exactly
// once and a reward pair is minted through the issuance service's internal
// creation path.
type ReferralService struct {
	referrals      ReferralStore
	issuance       *IssuanceService
	notifier       Notifier
	referrerReward RewardSpec
	referredReward RewardSpec
	now            func() time.Time
}

// Default reward campaigns: a 10% coupon capped at 200 over a 100 minimum,
// valid for 30 days, for each side of the referral.
var (
	DefaultReferrerReward = RewardSpec{
		CodePrefix:        "REF",
		Title:             "Referral reward",
		Description:       "Thanks for referring a friend to RetailKart",
		DiscountKind:      models.DiscountPercentage,
		DiscountValue:     10,
		MaxDiscount:       200,
		MinPurchaseAmount: 100,
		ValidityDays:      30,
	}
	DefaultReferredReward = RewardSpec{
		CodePrefix:        "REF-NEW",
		Title:             "Welcome reward",
		Description:       "Welcome to RetailKart",
		DiscountKind:      models.DiscountPercentage,
		DiscountValue:     10,
		MaxDiscount:       200,
		MinPurchaseAmount: 100,
		ValidityDays:      30,
	}
)

// NewReferralService wires the cascade with the default reward specs.
func NewReferralService(referrals ReferralStore, issuance *IssuanceService, notifier Notifier) *ReferralService {
	return &ReferralService{
		referrals:      referrals,
		issuance:       issuance,
		notifier:       notifier,
		referrerReward: DefaultReferrerReward,
		referredReward: DefaultReferredReward,
		now:            time.Now,
	}
}

// OnQualifyingPurchase is the external trigger, invoked by the purchase
// ledger when a customer's first completed purchase is recorded. The whole
// cascade is one idempotent unit keyed by the referral id: the conditional
// FIRST_PURCHASE -> COMPLETED transition admits exactly one caller, and a
// partial mint is compensated in full before the error surfaces, so the
// trigger is safe to retry.
func (s *ReferralService) OnQualifyingPurchase(ctx context.Context, customerID, purchaseID uint, finalAmount float64) (*CascadeResult, error) {
	referral, err := s.referrals.GetByReferred(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return &CascadeResult{Outcome: CascadeNoReferral}, nil
	}

	now := s.now()
	switch referral.Status {
	case models.ReferralStatusCompleted, models.ReferralStatusExpired:
		return &CascadeResult{Outcome: CascadeAlreadyDone, Referral: referral}, nil
	case models.ReferralStatusPending:
		// Registration never landed; nothing to reward.
		return &CascadeResult{Outcome: CascadeNoReferral, Referral: referral}, nil
	}

	if referral.ExpiredAt(now) {
		if err := s.referrals.MarkExpired(ctx, referral.ID); err != nil {
			return nil, err
		}
		referral.Status = models.ReferralStatusExpired
		return &CascadeResult{Outcome: CascadeExpired, Referral: referral}, nil
	}

	if referral.Status == models.ReferralStatusRegistered {
		moved, err := s.referrals.MarkFirstPurchase(ctx, referral.ID, purchaseID)
		if err != nil {
			return nil, err
		}
		if moved {
			referral.Status = models.ReferralStatusFirstPurchase
			referral.FirstPurchaseID = purchaseID
		}
	}

	if finalAmount < referral.MinPurchaseAmount {
		utils.LogInfo("Referral %d purchase %.2f below threshold %.2f, staying at FIRST_PURCHASE", referral.ID, finalAmount, referral.MinPurchaseAmount)
		return &CascadeResult{Outcome: CascadeBelowThreshold, Referral: referral}, nil
	}

	// Single-shot completion gate. Losing it means another trigger already
	// ran the cascade.
	completed, err := s.referrals.Complete(ctx, referral.ID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return &CascadeResult{Outcome: CascadeAlreadyDone, Referral: referral}, nil
	}

	result, err := s.mintRewards(ctx, referral, now)
	if err != nil {
		// Compensation: the completion gate reopens so a retry can run the
		// whole cascade again.
		if reopenErr := s.referrals.Reopen(ctx, referral.ID); reopenErr != nil {
			utils.LogError("Failed to reopen referral %d after mint failure: %v", referral.ID, reopenErr)
		}
		return nil, &InternalError{Op: fmt.Sprintf("referral %d reward cascade", referral.ID), Err: err}
	}
	return result, nil
}

// mintRewards creates both reward pairs, tearing the first down if the
// second fails so the cascade never leaves one side rewarded.
func (s *ReferralService) mintRewards(ctx context.Context, referral *models.Referral, now time.Time) (*CascadeResult, error) {
	var referrerEnt *models.Entitlement
	if referral.ReferrerKind == models.ReferrerCustomer {
		campaign, ent, err := s.issuance.Mint(ctx, referral.ReferrerID, s.referrerReward)
		if err != nil {
			return nil, fmt.Errorf("referrer mint: %w", err)
		}
		referrerEnt = ent
		referral.ReferrerReward = models.ReferralReward{
			Status:        models.RewardStatusIssued,
			CampaignID:    campaign.ID,
			EntitlementID: ent.ID,
			IssuedAt:      &now,
		}
	}

	referredCampaign, referredEnt, err := s.issuance.Mint(ctx, referral.ReferredCustomerID, s.referredReward)
	if err != nil {
		s.unmint(ctx, referral.ReferrerReward)
		referral.ReferrerReward = models.ReferralReward{}
		return nil, fmt.Errorf("referred mint: %w", err)
	}
	referral.ReferredReward = models.ReferralReward{
		Status:        models.RewardStatusIssued,
		CampaignID:    referredCampaign.ID,
		EntitlementID: referredEnt.ID,
		IssuedAt:      &now,
	}

	referral.Status = models.ReferralStatusCompleted
	referral.CompletedAt = &now
	if err := s.referrals.Save(ctx, referral); err != nil {
		s.unmint(ctx, referral.ReferrerReward)
		s.unmint(ctx, referral.ReferredReward)
		return nil, fmt.Errorf("save rewards: %w", err)
	}

	if referral.ReferrerKind == models.ReferrerCustomer && referrerEnt != nil {
		s.notify(ctx, referral.ReferrerID, "Referral reward earned",
			fmt.Sprintf("Your friend made their first purchase. Coupon %s is waiting for you.", referrerEnt.UniqueCode))
	}
	s.notify(ctx, referral.ReferredCustomerID, "Welcome reward",
		fmt.Sprintf("Coupon %s is yours for completing your first purchase.", referredEnt.UniqueCode))

	utils.LogInfo("Referral %d completed: referrer reward %d, referred reward %d", referral.ID, referral.ReferrerReward.EntitlementID, referral.ReferredReward.EntitlementID)
	return &CascadeResult{
		Outcome:             CascadeCompleted,
		Referral:            referral,
		ReferrerEntitlement: referrerEnt,
		ReferredEntitlement: referredEnt,
	}, nil
}

// unmint deletes a minted campaign + entitlement pair during compensation.
func (s *ReferralService) unmint(ctx context.Context, reward models.ReferralReward) {
	if reward.EntitlementID != 0 {
		if err := s.issuance.entitlements.Delete(ctx, reward.EntitlementID); err != nil {
			utils.LogError("Failed to delete entitlement %d during cascade compensation: %v", reward.EntitlementID, err)
		}
	}
	if reward.CampaignID != 0 {
		if err := s.issuance.campaigns.Delete(ctx, reward.CampaignID); err != nil {
			utils.LogError("Failed to delete campaign %d during cascade compensation: %v", reward.CampaignID, err)
		}
	}
}

// RewardSide names which beneficiary's reward is being addressed.
type RewardSide string

const (
	RewardSideReferrer RewardSide = "REFERRER"
	RewardSideReferred RewardSide = "REFERRED"
)

// ClaimReward marks one side's reward CLAIMED once the customer opens it in
// the app. Only ISSUED rewards can be claimed, and only once.
func (s *ReferralService) ClaimReward(ctx context.Context, referralID uint, side RewardSide) (*models.Referral, error) {
	referral, err := s.referrals.GetByID(ctx, referralID)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, &NotFoundError{Resource: "referral", Key: fmt.Sprintf("%d", referralID)}
	}

	reward := &referral.ReferredReward
	if side == RewardSideReferrer {
		reward = &referral.ReferrerReward
	}
	switch reward.Status {
	case models.RewardStatusClaimed:
		return nil, &ConflictError{Kind: ConflictAlreadyUsed, Message: "this reward was already claimed"}
	case models.RewardStatusPending:
		return nil, &IneligibleError{Reasons: []string{"reward has not been issued yet"}}
	}

	now := s.now()
	reward.Status = models.RewardStatusClaimed
	reward.ClaimedAt = &now
	if err := s.referrals.Save(ctx, referral); err != nil {
		return nil, err
	}
	return referral, nil
}

func (s *ReferralService) notify(ctx context.Context, customerID uint, title, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, customerID, title, body); err != nil {
		utils.LogError("Failed to notify customer %d: %v", customerID, err)
	}
}
