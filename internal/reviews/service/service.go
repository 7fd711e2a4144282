package service

import (
	"context"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/reviews/repository"
	"marketplace_backend/internal/reviews/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

// RatingWriter updates the denormalized rating on the service listing.
// Implemented by the catalog module behind an adapter.
type RatingWriter interface {
	SetRating(ctx context.Context, serviceID uuid.UUID, rating float64, reviewCount int) error
}

// Service provides review business logic.
type Service struct {
	repo    repository.Repository
	ratings RatingWriter
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new reviews service.
func New(repo repository.Repository, ratings RatingWriter, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		ratings: ratings,
		bus:     bus,
		log:     log,
	}
}

// Create stores a review and recomputes the service's rating aggregate.
// A second review of the same service by the same user is rejected.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req transport.CreateReviewRequest) (transport.ReviewResponse, error) {
	review, err := s.repo.Create(ctx, repository.CreateParams{
		ServiceID: req.ServiceID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   sanitize.Text(req.Comment),
	})
	if err != nil {
		return transport.ReviewResponse{}, err
	}

	s.recomputeRating(ctx, review.ServiceID)

	s.bus.Publish(ctx, events.ReviewCreated{
		BaseEvent: events.NewBaseEvent(),
		ReviewID:  review.ID,
		ServiceID: review.ServiceID,
		UserID:    review.UserID,
		Rating:    review.Rating,
	})

	s.log.Info("review created", "reviewId", review.ID, "serviceId", review.ServiceID, "rating", review.Rating)
	return toResponse(review), nil
}

// Update modifies the author's review and recomputes the rating aggregate.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req transport.UpdateReviewRequest) (transport.ReviewResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ReviewResponse{}, err
	}
	if existing.UserID != userID {
		return transport.ReviewResponse{}, apperr.Forbidden("not the author of this review")
	}

	review, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:      id,
		Rating:  req.Rating,
		Comment: sanitize.TextPtr(req.Comment),
	})
	if err != nil {
		return transport.ReviewResponse{}, err
	}

	s.recomputeRating(ctx, review.ServiceID)
	return toResponse(review), nil
}

// Delete removes the author's review and recomputes the rating aggregate.
// Admins may remove any review (moderation).
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID, isAdmin bool) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID && !isAdmin {
		return apperr.Forbidden("not the author of this review")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recomputeRating(ctx, existing.ServiceID)
	s.log.Info("review deleted", "reviewId", id, "serviceId", existing.ServiceID)
	return nil
}

// ListForService returns all reviews for a service, newest first.
func (s *Service) ListForService(ctx context.Context, serviceID uuid.UUID) (transport.ReviewListResponse, error) {
	reviews, err := s.repo.ListForService(ctx, serviceID)
	if err != nil {
		return transport.ReviewListResponse{}, err
	}

	items := make([]transport.ReviewResponse, len(reviews))
	for i, review := range reviews {
		items[i] = toResponse(review)
	}
	return transport.ReviewListResponse{Items: items, Total: len(items)}, nil
}

// recomputeRating pushes the fresh aggregate to the listing. A stale rating
// is tolerable; the failure is logged and the review write stands.
func (s *Service) recomputeRating(ctx context.Context, serviceID uuid.UUID) {
	agg, err := s.repo.Aggregate(ctx, serviceID)
	if err != nil {
		s.log.Error("rating aggregate failed", "serviceId", serviceID, "error", err)
		return
	}
	if err := s.ratings.SetRating(ctx, serviceID, agg.Rating, agg.ReviewCount); err != nil {
		s.log.Error("rating write failed", "serviceId", serviceID, "error", err)
	}
}

func toResponse(r repository.Review) transport.ReviewResponse {
	return transport.ReviewResponse{
		ID:        r.ID,
		ServiceID: r.ServiceID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
