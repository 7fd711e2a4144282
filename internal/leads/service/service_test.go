package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/leads/domain"
	"marketplace_backend/internal/leads/repository"
	"marketplace_backend/internal/leads/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	leads       map[uuid.UUID]*domain.Lead
	categories  map[uuid.UUID]map[string]bool
	sweepCutoff time.Time
	paid        map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		leads:      make(map[uuid.UUID]*domain.Lead),
		categories: make(map[uuid.UUID]map[string]bool),
		paid:       make(map[uuid.UUID]bool),
	}
}

func (f *fakeRepo) add(lead domain.Lead) uuid.UUID {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	copied := lead
	f.leads[lead.ID] = &copied
	return lead.ID
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (domain.Lead, error) {
	lead := domain.Lead{
		ID:         uuid.New(),
		CustomerID: params.CustomerID,
		ProviderID: params.ProviderID,
		ServiceID:  params.ServiceID,
		Content:    params.Content,
		Status:     domain.StatusDirect,
		Price:      params.Price,
		CreatedAt:  time.Now(),
	}
	f.leads[lead.ID] = &lead
	return lead, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return *lead, nil
}

func (f *fakeRepo) ListForProvider(_ context.Context, providerID uuid.UUID) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, lead := range f.leads {
		if lead.ProviderID == providerID || (lead.RespondedBy != nil && *lead.RespondedBy == providerID) {
			out = append(out, *lead)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListOpportunities(_ context.Context, providerID uuid.UUID) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, lead := range f.leads {
		if lead.Status == domain.StatusOpportunity && lead.CustomerID != providerID {
			out = append(out, *lead)
		}
	}
	return out, nil
}

func (f *fakeRepo) OffersCategory(_ context.Context, providerID uuid.UUID, category string) (bool, error) {
	return f.categories[providerID][category], nil
}

func (f *fakeRepo) Claim(ctx context.Context, leadID, providerID uuid.UUID) (repository.ClaimResult, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return repository.ClaimResult{}, apperr.NotFound("lead not found")
	}
	if lead.Status == domain.StatusResponded {
		return repository.ClaimResult{}, apperr.Conflict("lead already claimed")
	}
	if lead.Status == domain.StatusDirect && lead.ProviderID != providerID {
		return repository.ClaimResult{}, apperr.Forbidden("lead is reserved for another provider")
	}
	from := lead.Status
	now := time.Now()
	lead.Status = domain.StatusResponded
	lead.RespondedBy = &providerID
	lead.RespondedAt = &now
	return repository.ClaimResult{Lead: *lead, FromStatus: from}, nil
}

func (f *fakeRepo) ClaimOpenDirect(ctx context.Context, customerID, providerID uuid.UUID) ([]repository.ClaimResult, error) {
	var results []repository.ClaimResult
	for _, lead := range f.leads {
		if lead.Status == domain.StatusDirect && lead.CustomerID == customerID && lead.ProviderID == providerID {
			result, err := f.Claim(ctx, lead.ID, providerID)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
	}
	return results, nil
}

func (f *fakeRepo) SweepExpired(_ context.Context, cutoff time.Time) (int64, error) {
	f.sweepCutoff = cutoff
	var count int64
	for _, lead := range f.leads {
		if lead.Status == domain.StatusDirect && lead.CreatedAt.Before(cutoff) {
			lead.Status = domain.StatusOpportunity
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkPaid(_ context.Context, leadID uuid.UUID) error {
	lead, ok := f.leads[leadID]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	lead.Paid = true
	f.paid[leadID] = true
	return nil
}

// fakeFees records charges and refunds, optionally rejecting charges.
type fakeFees struct {
	charged  float64
	refunded float64
	reject   bool
}

func (f *fakeFees) ChargeLeadFee(_ context.Context, _ uuid.UUID, amount float64) error {
	if f.reject {
		return apperr.Conflict("insufficient lead balance")
	}
	f.charged += amount
	return nil
}

func (f *fakeFees) RefundLeadFee(_ context.Context, _ uuid.UUID, amount float64) error {
	f.refunded += amount
	return nil
}

type fakePricer struct{ price float64 }

func (f *fakePricer) ServicePrice(_ context.Context, _ uuid.UUID) (float64, error) {
	return f.price, nil
}

type fakeReply struct{ replies int }

func (f *fakeReply) WriteReply(_ context.Context, _, _ uuid.UUID, _ string) error {
	f.replies++
	return nil
}

// racingRepo lets another provider win the target lead right before each
// Claim call, simulating the lost race after the fee was charged.
type racingRepo struct {
	*fakeRepo
	winner uuid.UUID
	leadID uuid.UUID
}

func (r *racingRepo) Claim(ctx context.Context, leadID, providerID uuid.UUID) (repository.ClaimResult, error) {
	if leadID == r.leadID {
		if _, err := r.fakeRepo.Claim(ctx, leadID, r.winner); err != nil {
			return repository.ClaimResult{}, err
		}
	}
	return r.fakeRepo.Claim(ctx, leadID, providerID)
}

type policyConfig struct {
	window time.Duration
	sweep  time.Duration
}

func (c policyConfig) GetLeadExclusivityWindow() time.Duration { return c.window }
func (c policyConfig) GetLeadSweepInterval() time.Duration     { return c.sweep }

func newTestService(repo *fakeRepo, fees *fakeFees) (*Service, *fakeReply) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	svc := New(repo, fees, &fakePricer{price: 100}, bus, policyConfig{window: 3 * time.Hour, sweep: time.Minute}, log)
	reply := &fakeReply{}
	svc.SetReplyWriter(reply)
	return svc, reply
}

func TestSubmitSetsDirectStatusAndFee(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, &fakeFees{})

	customer := uuid.New()
	provider := uuid.New()
	serviceID := uuid.New()

	resp, err := svc.Submit(context.Background(), customer, transport.SubmitLeadRequest{
		ProviderID: provider,
		ServiceID:  &serviceID,
		Content:    "need my roof fixed",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if resp.Status != string(domain.StatusDirect) {
		t.Errorf("status = %s, want direct", resp.Status)
	}
	if resp.Price == nil || *resp.Price != 10.00 {
		t.Errorf("price = %v, want 10.00 (10%% of 100)", resp.Price)
	}
}

func TestSubmitToSelfRejected(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, &fakeFees{})

	user := uuid.New()
	_, err := svc.Submit(context.Background(), user, transport.SubmitLeadRequest{
		ProviderID: user,
		Content:    "hello me",
	})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("expected bad request, got %v", err)
	}
}

func TestRespondDirectLeadIsFree(t *testing.T) {
	repo := newFakeRepo()
	fees := &fakeFees{}
	svc, reply := newTestService(repo, fees)

	customer := uuid.New()
	provider := uuid.New()
	price := 10.0
	leadID := repo.add(domain.Lead{
		CustomerID: customer,
		ProviderID: provider,
		Status:     domain.StatusDirect,
		Price:      &price,
	})

	resp, err := svc.Respond(context.Background(), provider, leadID, transport.RespondRequest{Content: "on my way"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if resp.Status != string(domain.StatusResponded) {
		t.Errorf("status = %s, want responded", resp.Status)
	}
	if fees.charged != 0 {
		t.Errorf("direct claim charged %.2f, want 0", fees.charged)
	}
	if reply.replies != 1 {
		t.Errorf("replies = %d, want 1", reply.replies)
	}
}

func TestRespondOpportunityChargesFee(t *testing.T) {
	repo := newFakeRepo()
	fees := &fakeFees{}
	svc, _ := newTestService(repo, fees)

	customer := uuid.New()
	recipient := uuid.New()
	claimer := uuid.New()
	price := 10.0
	category := "plumbing"
	repo.categories[claimer] = map[string]bool{category: true}

	leadID := repo.add(domain.Lead{
		CustomerID: customer,
		ProviderID: recipient,
		Status:     domain.StatusOpportunity,
		Price:      &price,
		Category:   &category,
	})

	resp, err := svc.Respond(context.Background(), claimer, leadID, transport.RespondRequest{Content: "I can help"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if fees.charged != price {
		t.Errorf("charged %.2f, want %.2f", fees.charged, price)
	}
	if !resp.Paid {
		t.Error("claimed opportunity should be marked paid")
	}
}

func TestRespondOpportunityOutsideCategoryForbidden(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, &fakeFees{})

	category := "plumbing"
	leadID := repo.add(domain.Lead{
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
		Status:     domain.StatusOpportunity,
		Category:   &category,
	})

	_, err := svc.Respond(context.Background(), uuid.New(), leadID, transport.RespondRequest{Content: "hi"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestRespondAlreadyClaimedConflict(t *testing.T) {
	repo := newFakeRepo()
	fees := &fakeFees{}
	svc, _ := newTestService(repo, fees)

	winner := uuid.New()
	provider := uuid.New()
	leadID := repo.add(domain.Lead{
		CustomerID:  uuid.New(),
		ProviderID:  provider,
		Status:      domain.StatusResponded,
		RespondedBy: &winner,
	})

	_, err := svc.Respond(context.Background(), provider, leadID, transport.RespondRequest{Content: "too late"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestRespondLostRaceRefundsFee(t *testing.T) {
	repo := newFakeRepo()
	fees := &fakeFees{}
	svc, _ := newTestService(repo, fees)

	price := 10.0
	category := "cleaning"
	claimer := uuid.New()
	repo.categories[claimer] = map[string]bool{category: true}

	lead := domain.Lead{
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
		Status:     domain.StatusOpportunity,
		Price:      &price,
		Category:   &category,
	}
	leadID := repo.add(lead)

	// Another provider wins before the claimer's conditional update runs.
	// The fake keeps GetByID reporting the open state long enough for the
	// fee to be charged, mirroring the read-charge-claim interleaving.
	fees.reject = false
	winner := uuid.New()
	svc.repo = &racingRepo{fakeRepo: repo, winner: winner, leadID: leadID}

	_, err := svc.Respond(context.Background(), claimer, leadID, transport.RespondRequest{Content: "me too"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if fees.charged != fees.refunded {
		t.Errorf("charged %.2f but refunded %.2f; lost race must refund in full", fees.charged, fees.refunded)
	}
	if fees.refunded != price {
		t.Errorf("refunded %.2f, want %.2f", fees.refunded, price)
	}
}

func TestRespondInsufficientBalance(t *testing.T) {
	repo := newFakeRepo()
	fees := &fakeFees{reject: true}
	svc, _ := newTestService(repo, fees)

	price := 10.0
	category := "moving"
	claimer := uuid.New()
	repo.categories[claimer] = map[string]bool{category: true}

	leadID := repo.add(domain.Lead{
		CustomerID: uuid.New(),
		ProviderID: uuid.New(),
		Status:     domain.StatusOpportunity,
		Price:      &price,
		Category:   &category,
	})

	_, err := svc.Respond(context.Background(), claimer, leadID, transport.RespondRequest{Content: "pick me"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// The lead must stay open when the charge is rejected.
	lead, _ := repo.GetByID(context.Background(), leadID)
	if lead.Status != domain.StatusOpportunity {
		t.Errorf("lead status = %s, want opportunity", lead.Status)
	}
}

func TestClaimOpenLeadsClaimsOnlyMatching(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, &fakeFees{})

	customer := uuid.New()
	provider := uuid.New()
	other := uuid.New()

	matching := repo.add(domain.Lead{CustomerID: customer, ProviderID: provider, Status: domain.StatusDirect})
	otherProvider := repo.add(domain.Lead{CustomerID: customer, ProviderID: other, Status: domain.StatusDirect})
	opportunity := repo.add(domain.Lead{CustomerID: customer, ProviderID: provider, Status: domain.StatusOpportunity})

	if err := svc.ClaimOpenLeads(context.Background(), customer, provider); err != nil {
		t.Fatalf("ClaimOpenLeads: %v", err)
	}

	assertStatus := func(id uuid.UUID, want domain.Status) {
		t.Helper()
		lead, _ := repo.GetByID(context.Background(), id)
		if lead.Status != want {
			t.Errorf("lead %s status = %s, want %s", id, lead.Status, want)
		}
	}

	assertStatus(matching, domain.StatusResponded)
	assertStatus(otherProvider, domain.StatusDirect)
	// Opportunities require an explicit respond action.
	assertStatus(opportunity, domain.StatusOpportunity)
}

func TestSweepExpiredLeads(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, &fakeFees{})

	now := time.Now()
	svc.now = func() time.Time { return now }

	stale := repo.add(domain.Lead{
		CustomerID: uuid.New(), ProviderID: uuid.New(),
		Status: domain.StatusDirect, CreatedAt: now.Add(-4 * time.Hour),
	})
	fresh := repo.add(domain.Lead{
		CustomerID: uuid.New(), ProviderID: uuid.New(),
		Status: domain.StatusDirect, CreatedAt: now.Add(-1 * time.Hour),
	})
	responded := repo.add(domain.Lead{
		CustomerID: uuid.New(), ProviderID: uuid.New(),
		Status: domain.StatusResponded, CreatedAt: now.Add(-5 * time.Hour),
	})

	expired, err := svc.SweepExpiredLeads(context.Background())
	if err != nil {
		t.Fatalf("SweepExpiredLeads: %v", err)
	}
	if expired != 1 {
		t.Errorf("expired = %d, want 1", expired)
	}

	wantCutoff := now.Add(-3 * time.Hour)
	if !repo.sweepCutoff.Equal(wantCutoff) {
		t.Errorf("cutoff = %v, want %v", repo.sweepCutoff, wantCutoff)
	}

	leadStale, _ := repo.GetByID(context.Background(), stale)
	if leadStale.Status != domain.StatusOpportunity {
		t.Errorf("stale lead status = %s, want opportunity", leadStale.Status)
	}
	leadFresh, _ := repo.GetByID(context.Background(), fresh)
	if leadFresh.Status != domain.StatusDirect {
		t.Errorf("fresh lead status = %s, want direct", leadFresh.Status)
	}
	leadDone, _ := repo.GetByID(context.Background(), responded)
	if leadDone.Status != domain.StatusResponded {
		t.Errorf("responded lead status = %s, want responded", leadDone.Status)
	}

	// Second run over the same data is a no-op.
	expired, err = svc.SweepExpiredLeads(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if expired != 0 {
		t.Errorf("second sweep expired = %d, want 0", expired)
	}
}
