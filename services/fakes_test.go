package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/retailkart/promokart/models"
)

// In-memory stores backing the engine tests. The conditional updates hold
// their store mutex across the check and the write, mirroring the single-row
// conditional UPDATE the gorm repositories issue.

type fakeCampaignStore struct {
	mu        sync.Mutex
	campaigns map[uint]*models.Campaign
	nextID    uint
	createErr error
}

func newFakeCampaignStore() *fakeCampaignStore {
	return &fakeCampaignStore{campaigns: map[uint]*models.Campaign{}}
}

func (s *fakeCampaignStore) add(c *models.Campaign) *models.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.campaigns[c.ID] = c
	return c
}

func (s *fakeCampaignStore) GetByID(_ context.Context, id uint) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *fakeCampaignStore) GetByCode(_ context.Context, code string) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.campaigns {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeCampaignStore) Create(_ context.Context, campaign *models.Campaign) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.add(campaign)
	return nil
}

func (s *fakeCampaignStore) Save(_ context.Context, campaign *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.campaigns[campaign.ID]
	if !ok {
		return errors.New("campaign does not exist")
	}
	// The repository never writes the counter through Save.
	counter := existing.CurrentRedemptions
	cp := *campaign
	cp.CurrentRedemptions = counter
	s.campaigns[campaign.ID] = &cp
	return nil
}

func (s *fakeCampaignStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.campaigns, id)
	return nil
}

func (s *fakeCampaignStore) ConsumeSlot(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return false, nil
	}
	if c.Status != models.CampaignStatusActive {
		return false, nil
	}
	if c.MaxRedemptions > 0 && c.CurrentRedemptions >= c.MaxRedemptions {
		return false, nil
	}
	c.CurrentRedemptions++
	return true, nil
}

func (s *fakeCampaignStore) ReleaseSlot(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.campaigns[id]; ok && c.CurrentRedemptions > 0 {
		c.CurrentRedemptions--
	}
	return nil
}

type fakeEntitlementStore struct {
	mu           sync.Mutex
	entitlements map[uint]*models.Entitlement
	nextID       uint

	duplicateNext int   // next N creates fail with ErrDuplicateCode
	createErr     error // sticky create failure
	failCreateAt  int   // fail the Nth create (1-based); 0 disables
	creates       int
}

func newFakeEntitlementStore() *fakeEntitlementStore {
	return &fakeEntitlementStore{entitlements: map[uint]*models.Entitlement{}}
}

func (s *fakeEntitlementStore) add(e *models.Entitlement) *models.Entitlement {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.entitlements[e.ID] = e
	return e
}

func (s *fakeEntitlementStore) GetByID(_ context.Context, id uint) (*models.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entitlements[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *fakeEntitlementStore) GetByReference(_ context.Context, referenceID string) (*models.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entitlements {
		if e.ReferenceID == referenceID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeEntitlementStore) GetByCode(_ context.Context, code string) (*models.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entitlements {
		if e.UniqueCode == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeEntitlementStore) FindForCustomer(_ context.Context, customerID, campaignID uint, statuses []models.EntitlementStatus) ([]models.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Entitlement
	for _, e := range s.entitlements {
		if e.CustomerID == customerID && e.CampaignID == campaignID && statusIn(e.Status, statuses) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeEntitlementStore) CountForCustomer(ctx context.Context, customerID, campaignID uint, statuses []models.EntitlementStatus) (int64, error) {
	found, err := s.FindForCustomer(ctx, customerID, campaignID, statuses)
	return int64(len(found)), err
}

func (s *fakeEntitlementStore) Create(_ context.Context, entitlement *models.Entitlement) error {
	s.mu.Lock()
	s.creates++
	creates := s.creates
	if s.duplicateNext > 0 {
		s.duplicateNext--
		s.mu.Unlock()
		return ErrDuplicateCode
	}
	s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if s.failCreateAt > 0 && creates == s.failCreateAt {
		return errors.New("insert failed")
	}
	s.add(entitlement)
	return nil
}

func (s *fakeEntitlementStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entitlements, id)
	return nil
}

func (s *fakeEntitlementStore) MarkUsed(_ context.Context, id uint, record models.RedemptionRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entitlements[id]
	if !ok || e.Status != models.EntitlementStatusActive {
		return false, nil
	}
	e.Status = models.EntitlementStatusUsed
	e.Redemption = record
	return true, nil
}

func statusIn(status models.EntitlementStatus, statuses []models.EntitlementStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeReferralStore struct {
	mu        sync.Mutex
	referrals map[uint]*models.Referral
	nextID    uint
	saveErr   error
}

func newFakeReferralStore() *fakeReferralStore {
	return &fakeReferralStore{referrals: map[uint]*models.Referral{}}
}

func (s *fakeReferralStore) add(r *models.Referral) *models.Referral {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	s.referrals[r.ID] = r
	return r
}

func (s *fakeReferralStore) GetByID(_ context.Context, id uint) (*models.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.referrals[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *fakeReferralStore) GetByReferred(_ context.Context, customerID uint) (*models.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.referrals {
		if r.ReferredCustomerID == customerID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeReferralStore) HasCompletedReferral(_ context.Context, customerID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.referrals {
		if r.ReferredCustomerID == customerID && r.Status == models.ReferralStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReferralStore) Create(_ context.Context, referral *models.Referral) error {
	s.add(referral)
	return nil
}

func (s *fakeReferralStore) Save(_ context.Context, referral *models.Referral) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *referral
	s.referrals[referral.ID] = &cp
	return nil
}

func (s *fakeReferralStore) MarkFirstPurchase(_ context.Context, id, purchaseID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.referrals[id]
	if !ok || r.Status != models.ReferralStatusRegistered {
		return false, nil
	}
	r.Status = models.ReferralStatusFirstPurchase
	r.FirstPurchaseID = purchaseID
	return true, nil
}

func (s *fakeReferralStore) Complete(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.referrals[id]
	if !ok || r.Status != models.ReferralStatusFirstPurchase {
		return false, nil
	}
	r.Status = models.ReferralStatusCompleted
	now := time.Now()
	r.CompletedAt = &now
	return true, nil
}

func (s *fakeReferralStore) Reopen(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.referrals[id]
	if !ok || r.Status != models.ReferralStatusCompleted {
		return nil
	}
	r.Status = models.ReferralStatusFirstPurchase
	r.CompletedAt = nil
	return nil
}

func (s *fakeReferralStore) MarkExpired(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.referrals[id]
	if !ok || r.Status == models.ReferralStatusCompleted || r.Status == models.ReferralStatusExpired {
		return nil
	}
	r.Status = models.ReferralStatusExpired
	return nil
}

type fakePurchaseHistory struct {
	mu        sync.Mutex
	purchases map[uint][]models.Purchase
}

func newFakePurchaseHistory() *fakePurchaseHistory {
	return &fakePurchaseHistory{purchases: map[uint][]models.Purchase{}}
}

func (s *fakePurchaseHistory) add(customerID uint, p models.Purchase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CustomerID = customerID
	s.purchases[customerID] = append(s.purchases[customerID], p)
}

func (s *fakePurchaseHistory) PurchasesSince(_ context.Context, customerID uint, since *time.Time) ([]models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Purchase
	for _, p := range s.purchases[customerID] {
		if since != nil && p.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeCustomerDirectory struct {
	mu        sync.Mutex
	customers map[uint]*models.Customer
}

func newFakeCustomerDirectory() *fakeCustomerDirectory {
	return &fakeCustomerDirectory{customers: map[uint]*models.Customer{}}
}

func (s *fakeCustomerDirectory) add(c *models.Customer) *models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
	return c
}

func (s *fakeCustomerDirectory) GetCustomer(_ context.Context, id uint) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

type fakeStoreDirectory struct {
	mu     sync.Mutex
	stores map[uint]*models.Store
}

func newFakeStoreDirectory() *fakeStoreDirectory {
	return &fakeStoreDirectory{stores: map[uint]*models.Store{}}
}

func (s *fakeStoreDirectory) add(st *models.Store) *models.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[st.ID] = st
	return st
}

func (s *fakeStoreDirectory) GetStore(_ context.Context, id uint) (*models.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (n *fakeNotifier) Notify(_ context.Context, customerID uint, title, _ string) error {
	if n.fail {
		return errors.New("smtp unreachable")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, title)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
