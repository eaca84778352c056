package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
)

// ValidationResult is the read-only preview a terminal shows before
// committing a redemption. Nothing is mutated during validation.
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	Message     string              `json:"message"`
	Entitlement *models.Entitlement `json:"entitlement,omitempty"`
	Customer    *models.Customer    `json:"customer,omitempty"`
	Campaign    *models.Campaign    `json:"campaign,omitempty"`
}

// RedeemRequest carries everything the terminal presents at commit time.
// PurchaseAmount drives the discount computation; AmountUsed is recorded as
// presented by the terminal.
type RedeemRequest struct {
	EntitlementID  uint    `json:"entitlement_id"`
	StoreID        uint    `json:"store_id"`
	StaffID        uint    `json:"staff_id"`
	PurchaseID     uint    `json:"purchase_id"`
	PurchaseAmount float64 `json:"purchase_amount"`
	AmountUsed     float64 `json:"amount_used"`
	Notes          string  `json:"notes"`
}

// RedeemResult reports a committed redemption. DiscountAmount is advisory:
// the point of sale applies it to the bill, this engine only records it.
type RedeemResult struct {
	Entitlement    *models.Entitlement `json:"entitlement"`
	Campaign       *models.Campaign    `json:"campaign"`
	Store          *models.Store       `json:"store,omitempty"`
	DiscountAmount float64             `json:"discount_amount"`
	RedeemedAt     time.Time           `json:"redeemed_at"`
}

// RedemptionService validates presented codes and atomically consumes them.
// The only transition it drives is ACTIVE -> USED; expiry and cancellation
// belong to the sweep job and administrators.
type RedemptionService struct {
	campaigns    CampaignStore
	entitlements EntitlementStore
	customers    CustomerDirectory
	stores       StoreDirectory
	qr           *QRCodec
	notifier     Notifier
	now          func() time.Time
}

// NewRedemptionService wires the redemption workflow.
func NewRedemptionService(campaigns CampaignStore, entitlements EntitlementStore, customers CustomerDirectory,
	stores StoreDirectory, qr *QRCodec, notifier Notifier) *RedemptionService {
	return &RedemptionService{
		campaigns:    campaigns,
		entitlements: entitlements,
		customers:    customers,
		stores:       stores,
		qr:           qr,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Validate decodes the presented identifier (QR payload or manual code) and
// reports whether it could be redeemed right now. Expected failures come back
// as Valid=false with a message, never as an error; errors are reserved for
// store failures and malformed QR payloads.
func (s *RedemptionService) Validate(ctx context.Context, presented string) (*ValidationResult, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, &ValidationError{Message: "no code presented"}
	}

	var entitlement *models.Entitlement
	if strings.Contains(presented, ".") {
		payload, err := s.qr.Decode(presented)
		if err != nil {
			return nil, err
		}
		entitlement, err = s.entitlements.GetByReference(ctx, payload.EntitlementRef)
		if err != nil {
			return nil, err
		}
		if entitlement == nil {
			return &ValidationResult{Valid: false, Message: "coupon not found"}, nil
		}
		// A payload whose embedded identity disagrees with the stored record
		// was forged or replayed against a different coupon. Reject it even
		// if the underlying entitlement is otherwise redeemable.
		if payload.CustomerID != entitlement.CustomerID ||
			payload.CampaignID != entitlement.CampaignID ||
			payload.UniqueCode != entitlement.UniqueCode {
			utils.LogError("QR payload mismatch for entitlement %s: payload customer=%d campaign=%d code=%s", entitlement.ReferenceID, payload.CustomerID, payload.CampaignID, payload.UniqueCode)
			return &ValidationResult{Valid: false, Message: "QR payload does not match the coupon it references"}, nil
		}
	} else {
		var err error
		entitlement, err = s.entitlements.GetByCode(ctx, strings.ToUpper(presented))
		if err != nil {
			return nil, err
		}
		if entitlement == nil {
			return &ValidationResult{Valid: false, Message: "coupon not found"}, nil
		}
	}

	if entitlement.Status != models.EntitlementStatusActive {
		return &ValidationResult{
			Valid:       false,
			Message:     statusMessage(entitlement.Status),
			Entitlement: entitlement,
		}, nil
	}
	if entitlement.ExpiredAt(s.now()) {
		return &ValidationResult{
			Valid:       false,
			Message:     fmt.Sprintf("coupon expired on %s", entitlement.ValidUntil.Format("02 Jan 2006")),
			Entitlement: entitlement,
		}, nil
	}

	campaign, err := s.campaigns.GetByID(ctx, entitlement.CampaignID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetCustomer(ctx, entitlement.CustomerID)
	if err != nil {
		return nil, err
	}

	return &ValidationResult{
		Valid:       true,
		Message:     "coupon is valid",
		Entitlement: entitlement,
		Customer:    customer,
		Campaign:    campaign,
	}, nil
}

// Redeem consumes the entitlement. Status and expiry are re-checked here
// regardless of any earlier Validate call, and the commit is two conditional
// updates: campaign counter first, then the entitlement transition, with the
// counter released if the entitlement side loses its race. The counter can
// therefore never exceed the ceiling and no entitlement is consumed twice.
func (s *RedemptionService) Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error) {
	entitlement, err := s.entitlements.GetByID(ctx, req.EntitlementID)
	if err != nil {
		return nil, err
	}
	if entitlement == nil {
		return nil, &NotFoundError{Resource: "entitlement", Key: strconv.FormatUint(uint64(req.EntitlementID), 10)}
	}

	if entitlement.Status != models.EntitlementStatusActive {
		return nil, conflictForStatus(entitlement.Status)
	}
	now := s.now()
	if entitlement.ExpiredAt(now) {
		return nil, &IneligibleError{Reasons: []string{fmt.Sprintf("coupon expired on %s", entitlement.ValidUntil.Format("02 Jan 2006"))}}
	}

	campaign, err := s.campaigns.GetByID(ctx, entitlement.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, &NotFoundError{Resource: "campaign", Key: strconv.FormatUint(uint64(entitlement.CampaignID), 10)}
	}
	if campaign.MinPurchaseAmount > 0 && req.PurchaseAmount < campaign.MinPurchaseAmount {
		return nil, &IneligibleError{Reasons: []string{fmt.Sprintf("purchase amount %.2f is below the campaign minimum %.2f", req.PurchaseAmount, campaign.MinPurchaseAmount)}}
	}

	// Counter side first. A zero-row conditional update means the campaign
	// is paused, out of window slots, or sold out.
	consumed, err := s.campaigns.ConsumeSlot(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, &ConflictError{Kind: ConflictLimitReached, Message: "campaign redemption limit reached"}
	}

	record := models.RedemptionRecord{
		StoreID:    req.StoreID,
		StaffID:    req.StaffID,
		PurchaseID: req.PurchaseID,
		AmountUsed: req.AmountUsed,
		Notes:      req.Notes,
		RedeemedAt: &now,
	}
	used, err := s.entitlements.MarkUsed(ctx, entitlement.ID, record)
	if err != nil {
		// Unknown outcome on the entitlement side: release the slot so the
		// counter stays consistent with the number of USED entitlements.
		s.releaseSlot(ctx, campaign.ID)
		return nil, err
	}
	if !used {
		// Another terminal won the ACTIVE -> USED race. Compensate the
		// counter increment and report the definitive loss.
		s.releaseSlot(ctx, campaign.ID)
		return nil, &ConflictError{Kind: ConflictAlreadyUsed, Message: "this coupon was already used"}
	}

	entitlement.Status = models.EntitlementStatusUsed
	entitlement.Redemption = record
	discount := campaign.DiscountFor(req.PurchaseAmount)
	store := s.lookupStore(ctx, req.StoreID)

	utils.LogInfo("Redeemed entitlement %d (campaign %s) at store %d by staff %d, discount %.2f", entitlement.ID, campaign.Code, req.StoreID, req.StaffID, discount)
	s.notifySuccess(ctx, entitlement, campaign, store, discount)

	return &RedeemResult{
		Entitlement:    entitlement,
		Campaign:       campaign,
		Store:          store,
		DiscountAmount: discount,
		RedeemedAt:     now,
	}, nil
}

// lookupStore is best effort: the redemption already committed, so a
// directory failure only costs display metadata.
func (s *RedemptionService) lookupStore(ctx context.Context, storeID uint) *models.Store {
	if s.stores == nil || storeID == 0 {
		return nil
	}
	store, err := s.stores.GetStore(ctx, storeID)
	if err != nil {
		utils.LogError("Failed to resolve store %d: %v", storeID, err)
		return nil
	}
	return store
}

func (s *RedemptionService) releaseSlot(ctx context.Context, campaignID uint) {
	if err := s.campaigns.ReleaseSlot(ctx, campaignID); err != nil {
		// The counter is now over-counted by one; this only makes the
		// campaign sell out early, never exceed its ceiling.
		utils.LogError("Failed to release redemption slot for campaign %d: %v", campaignID, err)
	}
}

func (s *RedemptionService) notifySuccess(ctx context.Context, entitlement *models.Entitlement, campaign *models.Campaign, store *models.Store, discount float64) {
	if s.notifier == nil {
		return
	}
	body := fmt.Sprintf("Your coupon %s was redeemed. You saved %.2f on this purchase.", entitlement.UniqueCode, discount)
	if store != nil {
		body = fmt.Sprintf("Your coupon %s was redeemed at %s. You saved %.2f on this purchase.", entitlement.UniqueCode, store.Name, discount)
	}
	if err := s.notifier.Notify(ctx, entitlement.CustomerID, "Coupon redeemed", body); err != nil {
		utils.LogError("Failed to notify customer %d about redemption: %v", entitlement.CustomerID, err)
	}
}

func statusMessage(status models.EntitlementStatus) string {
	switch status {
	case models.EntitlementStatusUsed:
		return "this coupon was already used"
	case models.EntitlementStatusExpired:
		return "this coupon has expired"
	case models.EntitlementStatusCancelled:
		return "this coupon was cancelled"
	default:
		return fmt.Sprintf("coupon is %s", strings.ToLower(string(status)))
	}
}

func conflictForStatus(status models.EntitlementStatus) error {
	switch status {
	case models.EntitlementStatusUsed:
		return &ConflictError{Kind: ConflictAlreadyUsed, Message: "this coupon was already used"}
	case models.EntitlementStatusCancelled:
		return &ConflictError{Kind: ConflictCancelled, Message: "this coupon was cancelled"}
	default:
		return &IneligibleError{Reasons: []string{statusMessage(status)}}
	}
}
