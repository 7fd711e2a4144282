package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/payments/repository"
	"marketplace_backend/internal/payments/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

type fakeRepo struct {
	intents  map[uuid.UUID]*repository.Intent
	methods  map[uuid.UUID]*repository.Method
	balances map[uuid.UUID]float64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		intents:  make(map[uuid.UUID]*repository.Intent),
		methods:  make(map[uuid.UUID]*repository.Method),
		balances: make(map[uuid.UUID]float64),
	}
}

func (f *fakeRepo) CreateIntent(_ context.Context, bookingID uuid.UUID, amount float64, clientSecret string) (repository.Intent, error) {
	intent := repository.Intent{
		ID:           uuid.New(),
		BookingID:    bookingID,
		Amount:       amount,
		Status:       repository.IntentPending,
		ClientSecret: clientSecret,
		CreatedAt:    time.Now(),
	}
	f.intents[intent.ID] = &intent
	return intent, nil
}

func (f *fakeRepo) GetIntent(_ context.Context, id uuid.UUID) (repository.Intent, error) {
	if i, ok := f.intents[id]; ok {
		return *i, nil
	}
	return repository.Intent{}, apperr.NotFound("payment intent not found")
}

func (f *fakeRepo) SettleIntent(_ context.Context, id uuid.UUID) (repository.Intent, bool, error) {
	i, ok := f.intents[id]
	if !ok {
		return repository.Intent{}, false, apperr.NotFound("payment intent not found")
	}
	if i.Status != repository.IntentPending {
		return *i, false, nil
	}
	now := time.Now()
	i.Status = repository.IntentSucceeded
	i.SettledAt = &now
	return *i, true, nil
}

func (f *fakeRepo) CreateMethod(_ context.Context, params repository.CreateMethodParams) (repository.Method, error) {
	isDefault := params.IsDefault
	existing := 0
	for _, m := range f.methods {
		if m.UserID == params.UserID {
			existing++
		}
	}
	if existing == 0 {
		isDefault = true
	}
	if isDefault {
		for _, m := range f.methods {
			if m.UserID == params.UserID {
				m.IsDefault = false
			}
		}
	}
	method := repository.Method{
		ID:        uuid.New(),
		UserID:    params.UserID,
		Type:      params.Type,
		IsDefault: isDefault,
		CreatedAt: time.Now(),
	}
	f.methods[method.ID] = &method
	return method, nil
}

func (f *fakeRepo) ListMethods(_ context.Context, userID uuid.UUID) ([]repository.Method, error) {
	var out []repository.Method
	for _, m := range f.methods {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteMethod(_ context.Context, userID, id uuid.UUID) error {
	if m, ok := f.methods[id]; ok && m.UserID == userID {
		delete(f.methods, id)
		return nil
	}
	return apperr.NotFound("payment method not found")
}

func (f *fakeRepo) SetDefaultMethod(_ context.Context, userID, id uuid.UUID) error {
	target, ok := f.methods[id]
	if !ok || target.UserID != userID {
		return apperr.NotFound("payment method not found")
	}
	for _, m := range f.methods {
		if m.UserID == userID {
			m.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

func (f *fakeRepo) GetBalance(_ context.Context, userID uuid.UUID) (float64, error) {
	return f.balances[userID], nil
}

func (f *fakeRepo) ChargeBalance(_ context.Context, userID uuid.UUID, amount float64) error {
	if f.balances[userID] < amount {
		return apperr.Conflict("insufficient lead balance")
	}
	f.balances[userID] -= amount
	return nil
}

func (f *fakeRepo) CreditBalance(_ context.Context, userID uuid.UUID, amount float64) error {
	f.balances[userID] += amount
	return nil
}

type fakeBookings struct {
	customerID uuid.UUID
	amount     float64
	payable    bool
	attached   map[uuid.UUID]uuid.UUID
}

func (f *fakeBookings) PayableInfo(_ context.Context, _ uuid.UUID) (PayableBooking, error) {
	return PayableBooking{CustomerID: f.customerID, Amount: f.amount, Payable: f.payable}, nil
}

func (f *fakeBookings) AttachIntent(_ context.Context, bookingID, intentID uuid.UUID) error {
	if f.attached == nil {
		f.attached = make(map[uuid.UUID]uuid.UUID)
	}
	f.attached[bookingID] = intentID
	return nil
}

type fakeScheduler struct {
	intentID uuid.UUID
	runAt    time.Time
	calls    int
}

func (f *fakeScheduler) SchedulePaymentSettlement(_ context.Context, intentID uuid.UUID, runAt time.Time) error {
	f.intentID = intentID
	f.runAt = runAt
	f.calls++
	return nil
}

// recordingBus captures events synchronously so tests avoid goroutine races.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) byName(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

type testConfig struct{ delay time.Duration }

func (c testConfig) GetPaymentSettleDelay() time.Duration { return c.delay }
func (c testConfig) GetStripePublishableKey() string      { return "pk_test_123" }

func newService(repo *fakeRepo, bookings *fakeBookings, sched *fakeScheduler, bus *recordingBus) *Service {
	log := logger.New("test")
	return New(repo, bookings, sched, bus, testConfig{delay: 2 * time.Second}, log)
}

func TestCreateIntentSchedulesDelayedSettlement(t *testing.T) {
	repo := newFakeRepo()
	customer := uuid.New()
	bookings := &fakeBookings{customerID: customer, amount: 150, payable: true}
	sched := &fakeScheduler{}
	bus := &recordingBus{}
	svc := newService(repo, bookings, sched, bus)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	bookingID := uuid.New()
	got, err := svc.CreateIntent(context.Background(), customer, transport.CreateIntentRequest{BookingID: bookingID})
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}

	if got.Status != repository.IntentPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.Amount != 150 {
		t.Errorf("amount = %v, want 150", got.Amount)
	}
	if got.ClientSecret == "" {
		t.Error("client secret missing from creation response")
	}
	if got.PublishableKey != "pk_test_123" {
		t.Errorf("publishable key = %q", got.PublishableKey)
	}
	if bookings.attached[bookingID] != got.ID {
		t.Error("intent not attached to booking")
	}
	if sched.calls != 1 {
		t.Fatalf("scheduler calls = %d, want 1", sched.calls)
	}
	wantRunAt := time.Date(2026, 3, 1, 12, 0, 2, 0, time.UTC)
	if !sched.runAt.Equal(wantRunAt) {
		t.Errorf("settlement runAt = %v, want %v", sched.runAt, wantRunAt)
	}
}

func TestCreateIntentWrongCustomerForbidden(t *testing.T) {
	repo := newFakeRepo()
	bookings := &fakeBookings{customerID: uuid.New(), amount: 100, payable: true}
	svc := newService(repo, bookings, &fakeScheduler{}, &recordingBus{})

	_, err := svc.CreateIntent(context.Background(), uuid.New(), transport.CreateIntentRequest{BookingID: uuid.New()})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("CreateIntent() error = %v, want forbidden", err)
	}
}

func TestCreateIntentUnpayableBookingConflict(t *testing.T) {
	repo := newFakeRepo()
	customer := uuid.New()
	bookings := &fakeBookings{customerID: customer, amount: 100, payable: false}
	svc := newService(repo, bookings, &fakeScheduler{}, &recordingBus{})

	_, err := svc.CreateIntent(context.Background(), customer, transport.CreateIntentRequest{BookingID: uuid.New()})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("CreateIntent() error = %v, want conflict", err)
	}
}

func TestSettleIntentIdempotent(t *testing.T) {
	repo := newFakeRepo()
	customer := uuid.New()
	bookings := &fakeBookings{customerID: customer, amount: 100, payable: true}
	bus := &recordingBus{}
	svc := newService(repo, bookings, &fakeScheduler{}, bus)

	created, err := svc.CreateIntent(context.Background(), customer, transport.CreateIntentRequest{BookingID: uuid.New()})
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}

	// Delayed task and explicit confirm both settle; only the first acts.
	for i := 0; i < 3; i++ {
		if err := svc.SettleIntent(context.Background(), created.ID); err != nil {
			t.Fatalf("SettleIntent() #%d error = %v", i+1, err)
		}
	}

	confirmed := bus.byName("payments.confirmed")
	if len(confirmed) != 1 {
		t.Fatalf("payments.confirmed published %d times, want 1", len(confirmed))
	}
	event := confirmed[0].(events.PaymentConfirmed)
	if event.IntentID != created.ID || event.Amount != 100 {
		t.Errorf("event = %+v, want intent %s amount 100", event, created.ID)
	}

	intent, _ := repo.GetIntent(context.Background(), created.ID)
	if intent.Status != repository.IntentSucceeded {
		t.Errorf("status = %q, want succeeded", intent.Status)
	}
}

func TestConfirmSettlesImmediately(t *testing.T) {
	repo := newFakeRepo()
	customer := uuid.New()
	bookings := &fakeBookings{customerID: customer, amount: 100, payable: true}
	bus := &recordingBus{}
	svc := newService(repo, bookings, &fakeScheduler{}, bus)

	created, err := svc.CreateIntent(context.Background(), customer, transport.CreateIntentRequest{BookingID: uuid.New()})
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}

	got, err := svc.Confirm(context.Background(), customer, created.ID)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if got.Status != repository.IntentSucceeded {
		t.Errorf("status = %q, want succeeded", got.Status)
	}
	if got.SettledAt == nil {
		t.Error("settledAt not set")
	}
	if got.ClientSecret != "" {
		t.Error("client secret leaked outside creation response")
	}
}

func TestChargeLeadFeeInsufficientBalance(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeBookings{}, &fakeScheduler{}, &recordingBus{})

	provider := uuid.New()
	repo.balances[provider] = 5

	err := svc.ChargeLeadFee(context.Background(), provider, 10)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("ChargeLeadFee() error = %v, want conflict", err)
	}
	if repo.balances[provider] != 5 {
		t.Errorf("balance = %v, want untouched 5", repo.balances[provider])
	}

	if err := svc.ChargeLeadFee(context.Background(), provider, 5); err != nil {
		t.Fatalf("ChargeLeadFee() error = %v", err)
	}
	if repo.balances[provider] != 0 {
		t.Errorf("balance = %v, want 0", repo.balances[provider])
	}
}

func TestFirstMethodBecomesDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeBookings{}, &fakeScheduler{}, &recordingBus{})

	userID := uuid.New()
	first, err := svc.CreateMethod(context.Background(), userID, transport.CreateMethodRequest{Type: "card"})
	if err != nil {
		t.Fatalf("CreateMethod() error = %v", err)
	}
	if !first.IsDefault {
		t.Error("first method not default")
	}

	second, err := svc.CreateMethod(context.Background(), userID, transport.CreateMethodRequest{Type: "bank", IsDefault: true})
	if err != nil {
		t.Fatalf("CreateMethod() error = %v", err)
	}
	if !second.IsDefault {
		t.Error("explicit default not honored")
	}

	methods, err := svc.ListMethods(context.Background(), userID)
	if err != nil {
		t.Fatalf("ListMethods() error = %v", err)
	}
	defaults := 0
	for _, m := range methods.Items {
		if m.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("default methods = %d, want exactly 1", defaults)
	}
}
