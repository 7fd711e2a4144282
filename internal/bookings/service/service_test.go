package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/bookings/domain"
	"marketplace_backend/internal/bookings/repository"
	"marketplace_backend/internal/bookings/transport"
	"marketplace_backend/internal/events"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	bookings      map[uuid.UUID]*domain.Booking
	completedJobs map[uuid.UUID]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bookings:      make(map[uuid.UUID]*domain.Booking),
		completedJobs: make(map[uuid.UUID]int),
	}
}

func (f *fakeRepo) add(b domain.Booking) uuid.UUID {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	copied := b
	f.bookings[b.ID] = &copied
	return b.ID
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (domain.Booking, error) {
	b := domain.Booking{
		ID:            uuid.New(),
		ServiceID:     params.ServiceID,
		CustomerID:    params.CustomerID,
		ProviderID:    params.ProviderID,
		Date:          params.Date,
		Time:          params.Time,
		DurationHours: params.DurationHours,
		Price:         params.Price,
		Notes:         params.Notes,
		Status:        domain.StatusUpcoming,
		CreatedAt:     time.Now(),
	}
	f.bookings[b.ID] = &b
	return b, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, apperr.NotFound("booking not found")
	}
	return *b, nil
}

func (f *fakeRepo) ListForCustomer(_ context.Context, customerID uuid.UUID) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListForProvider(_ context.Context, providerID uuid.UUID) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.ProviderID == providerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) Transition(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, apperr.NotFound("booking not found")
	}
	if b.Status != from {
		return domain.Booking{}, apperr.Conflict("booking status changed concurrently")
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return *b, nil
}

func (f *fakeRepo) AttachPaymentIntent(_ context.Context, id, intentID uuid.UUID, paymentStatus string) error {
	b, ok := f.bookings[id]
	if !ok {
		return apperr.NotFound("booking not found")
	}
	b.PaymentIntentID = &intentID
	b.PaymentStatus = &paymentStatus
	return nil
}

func (f *fakeRepo) SetPaymentStatus(_ context.Context, id uuid.UUID, paymentStatus string) error {
	b, ok := f.bookings[id]
	if !ok {
		return apperr.NotFound("booking not found")
	}
	b.PaymentStatus = &paymentStatus
	return nil
}

func (f *fakeRepo) IncrementCompletedJobs(_ context.Context, providerID uuid.UUID) error {
	f.completedJobs[providerID]++
	return nil
}

type fakeServices struct {
	providerID uuid.UUID
	price      float64
}

func (f *fakeServices) BookingInfo(_ context.Context, _ uuid.UUID) (BookedService, error) {
	return BookedService{ProviderID: f.providerID, Title: "Deep Clean", Price: f.price}, nil
}

func newTestService(repo *fakeRepo, services ServiceReader) *Service {
	log := logger.New("test")
	return New(repo, services, nil, events.NewInMemoryBus(log), log)
}

func TestCreateBooking(t *testing.T) {
	repo := newFakeRepo()
	provider := uuid.New()
	svc := newTestService(repo, &fakeServices{providerID: provider, price: 50})

	customer := uuid.New()
	resp, err := svc.Create(context.Background(), customer, transport.CreateBookingRequest{
		ServiceID:     uuid.New(),
		Date:          "2026-09-15",
		Time:          "10:00",
		DurationHours: 2,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if resp.Status != string(domain.StatusUpcoming) {
		t.Errorf("status = %s, want Upcoming", resp.Status)
	}
	if resp.Price != 100 {
		t.Errorf("price = %.2f, want 100 (50 x 2h)", resp.Price)
	}
	if resp.ProviderID != provider {
		t.Errorf("providerId = %s, want %s", resp.ProviderID, provider)
	}
}

func TestCreateOwnServiceRejected(t *testing.T) {
	repo := newFakeRepo()
	provider := uuid.New()
	svc := newTestService(repo, &fakeServices{providerID: provider, price: 50})

	_, err := svc.Create(context.Background(), provider, transport.CreateBookingRequest{
		ServiceID: uuid.New(),
		Date:      "2026-09-15",
		Time:      "10:00",
	})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("expected bad request, got %v", err)
	}
}

func TestUpdateStatusActorRules(t *testing.T) {
	customer := uuid.New()
	provider := uuid.New()
	stranger := uuid.New()

	tests := []struct {
		name     string
		userID   uuid.UUID
		isAdmin  bool
		from     domain.Status
		to       string
		wantKind apperr.Kind
		want     domain.Status
	}{
		{"provider confirms upcoming", provider, false, domain.StatusUpcoming, "Confirmed", 0, domain.StatusConfirmed},
		{"provider declines upcoming", provider, false, domain.StatusUpcoming, "Declined", 0, domain.StatusDeclined},
		{"provider completes confirmed", provider, false, domain.StatusConfirmed, "Completed", 0, domain.StatusCompleted},
		{"customer cancels upcoming", customer, false, domain.StatusUpcoming, "Cancelled", 0, domain.StatusCancelled},
		{"customer cannot confirm", customer, false, domain.StatusUpcoming, "Confirmed", apperr.KindForbidden, domain.StatusUpcoming},
		{"admin declines", stranger, true, domain.StatusUpcoming, "Declined", 0, domain.StatusDeclined},
		{"stranger sees not found", stranger, false, domain.StatusUpcoming, "Cancelled", apperr.KindNotFound, domain.StatusUpcoming},
		{"complete from upcoming is invalid", provider, false, domain.StatusUpcoming, "Completed", apperr.KindConflict, domain.StatusUpcoming},
		{"confirm a cancelled booking is invalid", provider, false, domain.StatusCancelled, "Confirmed", apperr.KindConflict, domain.StatusCancelled},
		{"cancel a completed booking is invalid", customer, false, domain.StatusCompleted, "Cancelled", apperr.KindConflict, domain.StatusCompleted},
		{"unknown status rejected", provider, false, domain.StatusUpcoming, "Paused", apperr.KindBadRequest, domain.StatusUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := newTestService(repo, &fakeServices{providerID: provider, price: 50})
			id := repo.add(domain.Booking{CustomerID: customer, ProviderID: provider, Status: tt.from})

			_, err := svc.UpdateStatus(context.Background(), tt.userID, tt.isAdmin, id, transport.UpdateStatusRequest{Status: tt.to})

			if tt.wantKind == apperr.KindUnknown {
				if err != nil {
					t.Fatalf("UpdateStatus: %v", err)
				}
			} else if !apperr.Is(err, tt.wantKind) {
				t.Fatalf("expected kind %v, got %v", tt.wantKind, err)
			}

			got, _ := repo.GetByID(context.Background(), id)
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
		})
	}
}

func TestCompleteIncrementsProviderJobs(t *testing.T) {
	repo := newFakeRepo()
	provider := uuid.New()
	svc := newTestService(repo, &fakeServices{providerID: provider, price: 50})

	id := repo.add(domain.Booking{CustomerID: uuid.New(), ProviderID: provider, Status: domain.StatusConfirmed})

	if _, err := svc.UpdateStatus(context.Background(), provider, false, id, transport.UpdateStatusRequest{Status: "Completed"}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if repo.completedJobs[provider] != 1 {
		t.Errorf("completedJobs = %d, want 1", repo.completedJobs[provider])
	}
}

func TestConfirmPaidAutoConfirmsUpcoming(t *testing.T) {
	repo := newFakeRepo()
	provider := uuid.New()
	svc := newTestService(repo, &fakeServices{providerID: provider, price: 50})

	id := repo.add(domain.Booking{CustomerID: uuid.New(), ProviderID: provider, Status: domain.StatusUpcoming})

	if err := svc.ConfirmPaid(context.Background(), id); err != nil {
		t.Fatalf("ConfirmPaid: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), id)
	if got.Status != domain.StatusConfirmed {
		t.Errorf("status = %s, want Confirmed", got.Status)
	}
	if got.PaymentStatus == nil || *got.PaymentStatus != "succeeded" {
		t.Errorf("paymentStatus = %v, want succeeded", got.PaymentStatus)
	}

	// Second settlement of the same intent is a no-op.
	if err := svc.ConfirmPaid(context.Background(), id); err != nil {
		t.Fatalf("repeat ConfirmPaid: %v", err)
	}
	got, _ = repo.GetByID(context.Background(), id)
	if got.Status != domain.StatusConfirmed {
		t.Errorf("status after repeat = %s, want Confirmed", got.Status)
	}
}

func TestConfirmPaidLeavesTerminalStatusAlone(t *testing.T) {
	repo := newFakeRepo()
	provider := uuid.New()
	svc := newTestService(repo, &fakeServices{providerID: provider, price: 50})

	id := repo.add(domain.Booking{CustomerID: uuid.New(), ProviderID: provider, Status: domain.StatusCancelled})

	if err := svc.ConfirmPaid(context.Background(), id); err != nil {
		t.Fatalf("ConfirmPaid: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), id)
	if got.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want Cancelled (payment never resurrects a booking)", got.Status)
	}
}
