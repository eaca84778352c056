package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/retailkart/promokart/models"
	"github.com/retailkart/promokart/utils"
)

// Verdict is the outcome of an eligibility evaluation. Reasons collects every
// failed check, not just the first, so a caller can show the complete picture.
// Conditions surfaces the thresholds that applied so the app can render
// "why you qualify" / "what's missing".
type Verdict struct {
	Eligible   bool                   `json:"eligible"`
	Reasons    []string               `json:"reasons"`
	Conditions map[string]interface{} `json:"conditions"`
}

// Evaluator decides whether a customer qualifies for a campaign. It never
// mutates state and is safe to call concurrently.
type Evaluator struct {
	entitlements EntitlementStore
	referrals    ReferralStore
	purchases    PurchaseHistory
	now          func() time.Time
}

// NewEvaluator builds an evaluator over the given read interfaces.
func NewEvaluator(entitlements EntitlementStore, referrals ReferralStore, purchases PurchaseHistory) *Evaluator {
	return &Evaluator{
		entitlements: entitlements,
		referrals:    referrals,
		purchases:    purchases,
		now:          time.Now,
	}
}

// Evaluate runs every applicable check and returns the collected verdict.
// All checks run even after one fails; errors are returned only for store
// failures, never for ineligibility.
func (e *Evaluator) Evaluate(ctx context.Context, customer *models.Customer, campaign *models.Campaign) (*Verdict, error) {
	now := e.now()
	verdict := &Verdict{Conditions: map[string]interface{}{}}

	if campaign.Status != models.CampaignStatusActive {
		verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("campaign is %s, not active", strings.ToLower(string(campaign.Status))))
	}

	if now.Before(campaign.ValidFrom) {
		verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("campaign starts on %s", campaign.ValidFrom.Format("02 Jan 2006")))
	} else if now.After(campaign.ValidUntil) {
		verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("campaign expired on %s", campaign.ValidUntil.Format("02 Jan 2006")))
	}

	// Optimistic pre-check only; redemption re-checks the counter atomically.
	if !campaign.UnderGlobalLimit() {
		verdict.Reasons = append(verdict.Reasons, "campaign redemption limit reached")
	}

	if campaign.PerUserLimit > 0 {
		count, err := e.entitlements.CountForCustomer(ctx, customer.ID, campaign.ID,
			[]models.EntitlementStatus{models.EntitlementStatusActive, models.EntitlementStatusUsed})
		if err != nil {
			return nil, err
		}
		verdict.Conditions["per_user_limit"] = campaign.PerUserLimit
		verdict.Conditions["coupons_held"] = count
		if count >= int64(campaign.PerUserLimit) {
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("you have already claimed this campaign %d of %d times", count, campaign.PerUserLimit))
		}
	}

	if err := e.checkTargeting(ctx, customer, campaign, verdict); err != nil {
		return nil, err
	}

	verdict.Eligible = len(verdict.Reasons) == 0
	utils.LogDebug("Evaluated campaign %s for customer %d: eligible=%v reasons=%v", campaign.Code, customer.ID, verdict.Eligible, verdict.Reasons)
	return verdict, nil
}

func (e *Evaluator) checkTargeting(ctx context.Context, customer *models.Customer, campaign *models.Campaign, verdict *Verdict) error {
	rule := campaign.Targeting
	switch rule.Type {
	case models.TargetAll:
		return nil

	case models.TargetGeographic:
		if len(rule.Cities) > 0 {
			verdict.Conditions["cities"] = rule.Cities
		}
		if len(rule.Areas) > 0 {
			verdict.Conditions["areas"] = rule.Areas
		}
		if !rule.MatchesCity(customer.City) {
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("campaign is limited to %s", strings.Join(rule.Cities, ", ")))
		}
		if !rule.MatchesArea(customer.Area) {
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("campaign is limited to areas %s", strings.Join(rule.Areas, ", ")))
		}
		return nil

	case models.TargetIndividual:
		if !rule.IncludesCustomer(customer.ID) {
			verdict.Reasons = append(verdict.Reasons, "campaign is limited to selected customers")
		}
		return nil

	case models.TargetPurchaseHistory:
		return e.checkPurchaseHistory(ctx, customer, rule, verdict)

	case models.TargetReferral:
		completed, err := e.referrals.HasCompletedReferral(ctx, customer.ID)
		if err != nil {
			return err
		}
		verdict.Conditions["requires_completed_referral"] = true
		if !completed {
			verdict.Reasons = append(verdict.Reasons, "campaign requires a completed referral")
		}
		return nil

	default:
		verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("unknown targeting type %q", rule.Type))
		return nil
	}
}

func (e *Evaluator) checkPurchaseHistory(ctx context.Context, customer *models.Customer, rule models.TargetingRule, verdict *Verdict) error {
	var since *time.Time
	if rule.LookbackDays > 0 {
		s := e.now().AddDate(0, 0, -rule.LookbackDays)
		since = &s
		verdict.Conditions["lookback_days"] = rule.LookbackDays
	}

	purchases, err := e.purchases.PurchasesSince(ctx, customer.ID, since)
	if err != nil {
		return err
	}

	if rule.MinPurchases > 0 {
		verdict.Conditions["min_purchases"] = rule.MinPurchases
		verdict.Conditions["purchases_made"] = len(purchases)
		if len(purchases) < rule.MinPurchases {
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("requires %d purchases, you have %d", rule.MinPurchases, len(purchases)))
		}
	}

	if len(rule.Categories) > 0 {
		verdict.Conditions["categories"] = rule.Categories
		matched := false
		for i := range purchases {
			if purchases[i].TouchesCategory(rule.Categories) {
				matched = true
				break
			}
		}
		if !matched {
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("requires a purchase in %s", strings.Join(rule.Categories, ", ")))
		}
	}

	if rule.MinSpend > 0 {
		var spend float64
		for i := range purchases {
			spend += purchases[i].FinalAmount
		}
		verdict.Conditions["min_spend"] = rule.MinSpend
		verdict.Conditions["total_spend"] = spend
		if spend < rule.MinSpend {
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("requires total spend of %.2f, you have spent %.2f", rule.MinSpend, spend))
		}
	}

	return nil
}
