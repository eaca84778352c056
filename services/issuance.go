package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
)

// maxCodeAttempts bounds the collision-retry loop. Exhausting it means the
// code space is badly undersized for the issue volume and is surfaced as an
// internal error rather than silently looping.
const maxCodeAttempts = 5

// IssuanceService turns campaigns into claimed entitlements.
type IssuanceService struct {
	campaigns    CampaignStore
	entitlements EntitlementStore
	customers    CustomerDirectory
	evaluator    *Evaluator
	codes        *CodeGenerator
	qr           *QRCodec
	notifier     Notifier
	now          func() time.Time
}

// NewIssuanceService wires the claim workflow.
func NewIssuanceService(campaigns CampaignStore, entitlements EntitlementStore, customers CustomerDirectory,
	evaluator *Evaluator, codes *CodeGenerator, qr *QRCodec, notifier Notifier) *IssuanceService {
	return &IssuanceService{
		campaigns:    campaigns,
		entitlements: entitlements,
		customers:    customers,
		evaluator:    evaluator,
		codes:        codes,
		qr:           qr,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Claim assigns the campaign to the customer, producing a redeemable
// entitlement. Claiming is idempotent: an existing ACTIVE entitlement for the
// pair is returned unchanged instead of creating a duplicate. Eligibility is
// re-evaluated here in full; an earlier evaluation is never trusted.
func (s *IssuanceService) Claim(ctx context.Context, customerID, campaignID uint) (*models.Entitlement, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, &NotFoundError{Resource: "campaign", Key: strconv.FormatUint(uint64(campaignID), 10)}
	}

	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, &NotFoundError{Resource: "customer", Key: strconv.FormatUint(uint64(customerID), 10)}
	}

	existing, err := s.entitlements.FindForCustomer(ctx, customerID, campaignID,
		[]models.EntitlementStatus{models.EntitlementStatusActive})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		utils.LogInfo("Claim for customer %d campaign %d is idempotent, returning entitlement %d", customerID, campaignID, existing[0].ID)
		return &existing[0], nil
	}

	verdict, err := s.evaluator.Evaluate(ctx, customer, campaign)
	if err != nil {
		return nil, err
	}
	if !verdict.Eligible {
		return nil, &IneligibleError{Reasons: verdict.Reasons}
	}

	entitlement, err := s.issue(ctx, customer.ID, campaign)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, customer.ID, "Coupon claimed",
		fmt.Sprintf("Your coupon %s for %s is ready. Show the QR code at any store before %s.",
			entitlement.UniqueCode, campaign.Title, entitlement.ValidUntil.Format("02 Jan 2006")))
	return entitlement, nil
}

// RewardSpec describes the campaign minted for one referral beneficiary.
type RewardSpec struct {
	CodePrefix        string
	Title             string
	Description       string
	DiscountKind      models.DiscountKind
	DiscountValue     float64
	MaxDiscount       float64
	MinPurchaseAmount float64
	ValidityDays      int
}

// Mint is the internal creation path used by the referral cascade: it builds
// a single-beneficiary INDIVIDUAL campaign plus its entitlement without
// running the eligibility evaluator. System-minted, not claimed.
func (s *IssuanceService) Mint(ctx context.Context, beneficiaryID uint, spec RewardSpec) (*models.Campaign, *models.Entitlement, error) {
	now := s.now()
	campaign := &models.Campaign{
		Code:        fmt.Sprintf("%s-%s", spec.CodePrefix, uuid.NewString()[:8]),
		Title:       spec.Title,
		Description: spec.Description,

		DiscountKind:      spec.DiscountKind,
		DiscountValue:     spec.DiscountValue,
		MaxDiscount:       spec.MaxDiscount,
		MinPurchaseAmount: spec.MinPurchaseAmount,

		Targeting: models.TargetingRule{
			Type:        models.TargetIndividual,
			CustomerIDs: []uint{beneficiaryID},
		},
		ProductRule: models.ProductRule{Scope: models.ProductScopeAll},

		ValidFrom:      now,
		ValidUntil:     now.AddDate(0, 0, spec.ValidityDays),
		MaxRedemptions: 1,
		PerUserLimit:   1,
		Status:         models.CampaignStatusActive,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, nil, err
	}

	entitlement, err := s.issue(ctx, beneficiaryID, campaign)
	if err != nil {
		// Keep the mint all-or-nothing: a campaign without its entitlement
		// is unreachable garbage.
		if delErr := s.campaigns.Delete(ctx, campaign.ID); delErr != nil {
			utils.LogError("Failed to delete campaign %d after mint failure: %v", campaign.ID, delErr)
		}
		return nil, nil, err
	}
	return campaign, entitlement, nil
}

// issue builds and persists the entitlement itself: unique code with
// collision retry, signed QR payload from the entitlement's own identity,
// validity window copied from the campaign at this moment.
func (s *IssuanceService) issue(ctx context.Context, customerID uint, campaign *models.Campaign) (*models.Entitlement, error) {
	now := s.now()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, &InternalError{Op: "generate code", Err: err}
		}

		entitlement := &models.Entitlement{
			ReferenceID: uuid.NewString(),
			CampaignID:  campaign.ID,
			CustomerID:  customerID,
			UniqueCode:  code,
			Status:      models.EntitlementStatusActive,
			ValidFrom:   campaign.ValidFrom,
			ValidUntil:  campaign.ValidUntil,
			IssuedAt:    now,
		}

		payload, err := s.qr.Encode(QRPayload{
			EntitlementRef: entitlement.ReferenceID,
			CustomerID:     customerID,
			CampaignID:     campaign.ID,
			UniqueCode:     code,
			IssuedAt:       now,
			Nonce:          uuid.NewString(),
		})
		if err != nil {
			return nil, &InternalError{Op: "encode qr payload", Err: err}
		}
		entitlement.QRPayload = payload

		err = s.entitlements.Create(ctx, entitlement)
		if err == nil {
			utils.LogInfo("Issued entitlement %s (code %s) for customer %d campaign %s", entitlement.ReferenceID, code, customerID, campaign.Code)
			return entitlement, nil
		}
		if errors.Is(err, ErrDuplicateCode) {
			utils.LogInfo("Code collision on %s, retrying (%d/%d)", code, attempt+1, maxCodeAttempts)
			continue
		}
		return nil, err
	}
	return nil, &InternalError{Op: "generate unique code", Err: fmt.Errorf("exhausted %d attempts, code space too small", maxCodeAttempts)}
}

// notify dispatches fire-and-forget: a delivery failure is logged and never
// rolls back the operation that triggered it.
func (s *IssuanceService) notify(ctx context.Context, customerID uint, title, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, customerID, title, body); err != nil {
		utils.LogError("Failed to notify customer %d: %v", customerID, err)
	}
}
