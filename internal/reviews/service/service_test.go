package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/reviews/repository"
	"marketplace_backend/internal/reviews/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

type fakeRepo struct {
	reviews map[uuid.UUID]*repository.Review
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reviews: make(map[uuid.UUID]*repository.Review)}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Review, error) {
	for _, r := range f.reviews {
		if r.ServiceID == params.ServiceID && r.UserID == params.UserID {
			return repository.Review{}, apperr.Conflict("service already reviewed")
		}
	}
	review := repository.Review{
		ID:        uuid.New(),
		ServiceID: params.ServiceID,
		UserID:    params.UserID,
		UserName:  "reviewer",
		Rating:    params.Rating,
		Comment:   params.Comment,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.reviews[review.ID] = &review
	return review, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Review, error) {
	if r, ok := f.reviews[id]; ok {
		return *r, nil
	}
	return repository.Review{}, apperr.NotFound("review not found")
}

func (f *fakeRepo) ListForService(_ context.Context, serviceID uuid.UUID) ([]repository.Review, error) {
	var out []repository.Review
	for _, r := range f.reviews {
		if r.ServiceID == serviceID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) Aggregate(_ context.Context, serviceID uuid.UUID) (repository.Aggregate, error) {
	sum, count := 0, 0
	for _, r := range f.reviews {
		if r.ServiceID == serviceID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return repository.Aggregate{}, nil
	}
	return repository.Aggregate{Rating: float64(sum) / float64(count), ReviewCount: count}, nil
}

func (f *fakeRepo) Update(_ context.Context, params repository.UpdateParams) (repository.Review, error) {
	r, ok := f.reviews[params.ID]
	if !ok {
		return repository.Review{}, apperr.NotFound("review not found")
	}
	if params.Rating != nil {
		r.Rating = *params.Rating
	}
	if params.Comment != nil {
		r.Comment = *params.Comment
	}
	return *r, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.reviews[id]; !ok {
		return apperr.NotFound("review not found")
	}
	delete(f.reviews, id)
	return nil
}

type fakeRatings struct {
	serviceID uuid.UUID
	rating    float64
	count     int
	writes    int
}

func (f *fakeRatings) SetRating(_ context.Context, serviceID uuid.UUID, rating float64, count int) error {
	f.serviceID = serviceID
	f.rating = rating
	f.count = count
	f.writes++
	return nil
}

func newService(repo *fakeRepo, ratings *fakeRatings) *Service {
	log := logger.New("test")
	return New(repo, ratings, events.NewInMemoryBus(log), log)
}

func TestCreateRecomputesRating(t *testing.T) {
	repo := newFakeRepo()
	ratings := &fakeRatings{}
	svc := newService(repo, ratings)

	serviceID := uuid.New()

	if _, err := svc.Create(context.Background(), uuid.New(), transport.CreateReviewRequest{
		ServiceID: serviceID, Rating: 5, Comment: "great work",
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(context.Background(), uuid.New(), transport.CreateReviewRequest{
		ServiceID: serviceID, Rating: 3, Comment: "okay",
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if ratings.writes != 2 {
		t.Fatalf("rating writes = %d, want 2", ratings.writes)
	}
	if ratings.serviceID != serviceID {
		t.Errorf("rating written for %s, want %s", ratings.serviceID, serviceID)
	}
	if ratings.rating != 4 || ratings.count != 2 {
		t.Errorf("aggregate = (%.2f, %d), want (4.00, 2)", ratings.rating, ratings.count)
	}
}

func TestCreateSecondReviewRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeRatings{})

	serviceID := uuid.New()
	userID := uuid.New()

	if _, err := svc.Create(context.Background(), userID, transport.CreateReviewRequest{
		ServiceID: serviceID, Rating: 4,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := svc.Create(context.Background(), userID, transport.CreateReviewRequest{
		ServiceID: serviceID, Rating: 1,
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second Create() error = %v, want conflict", err)
	}
}

func TestUpdateByNonAuthorForbidden(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeRatings{})

	author := uuid.New()
	created, err := svc.Create(context.Background(), author, transport.CreateReviewRequest{
		ServiceID: uuid.New(), Rating: 4,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rating := 1
	_, err = svc.Update(context.Background(), uuid.New(), created.ID, transport.UpdateReviewRequest{Rating: &rating})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("Update() error = %v, want forbidden", err)
	}
}

func TestDeleteRecomputesRating(t *testing.T) {
	repo := newFakeRepo()
	ratings := &fakeRatings{}
	svc := newService(repo, ratings)

	serviceID := uuid.New()
	author := uuid.New()

	created, err := svc.Create(context.Background(), author, transport.CreateReviewRequest{
		ServiceID: serviceID, Rating: 5,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), author, created.ID, false); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ratings.rating != 0 || ratings.count != 0 {
		t.Errorf("aggregate after delete = (%.2f, %d), want (0, 0)", ratings.rating, ratings.count)
	}
}

func TestAdminCanDeleteAnyReview(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeRatings{})

	created, err := svc.Create(context.Background(), uuid.New(), transport.CreateReviewRequest{
		ServiceID: uuid.New(), Rating: 2, Comment: "spam",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), uuid.New(), created.ID, true); err != nil {
		t.Fatalf("admin Delete() error = %v", err)
	}
}
