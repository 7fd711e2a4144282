package adapters

import (
	"context"

	"github.com/google/uuid"

	adminsvc "marketplace_backend/internal/admin/service"
	reviewsvc "marketplace_backend/internal/reviews/service"
)

// ReviewModerator implements admin's ReviewModerator port by deleting
// through the reviews service, so the listing's rating aggregate is
// recomputed rather than left stale.
type ReviewModerator struct {
	reviews *reviewsvc.Service
}

// NewReviewModerator creates the reviews-backed moderator.
func NewReviewModerator(reviews *reviewsvc.Service) *ReviewModerator {
	return &ReviewModerator{reviews: reviews}
}

var _ adminsvc.ReviewModerator = (*ReviewModerator)(nil)

// RemoveReview deletes any user's review with admin authority.
func (a *ReviewModerator) RemoveReview(ctx context.Context, reviewID uuid.UUID) error {
	return a.reviews.Delete(ctx, uuid.Nil, reviewID, true)
}
