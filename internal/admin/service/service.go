package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marketplace_backend/internal/admin/repository"
	"marketplace_backend/internal/admin/transport"
	"marketplace_backend/platform/logger"
)

// ReviewModerator removes a review through the reviews module so the
// listing's rating aggregate is recomputed on the way out.
type ReviewModerator interface {
	RemoveReview(ctx context.Context, reviewID uuid.UUID) error
}

// Service provides admin console business logic.
type Service struct {
	repo    repository.Repository
	reviews ReviewModerator
	log     *logger.Logger
}

// New creates a new admin service.
func New(repo repository.Repository, reviews ReviewModerator, log *logger.Logger) *Service {
	return &Service{repo: repo, reviews: reviews, log: log}
}

// Dashboard gathers the headline stats. The counters are independent
// queries, so they fan out concurrently and the first failure cancels
// the rest.
func (s *Service) Dashboard(ctx context.Context) (transport.DashboardResponse, error) {
	var resp transport.DashboardResponse

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.Users, err = s.repo.CountUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Providers, err = s.repo.CountProviders(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Services, err = s.repo.CountServices(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Bookings, err = s.repo.CountBookings(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Revenue, err = s.repo.TotalRevenue(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.LeadsByStatus, err = s.repo.LeadCountsByStatus(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return transport.DashboardResponse{}, err
	}
	if resp.LeadsByStatus == nil {
		resp.LeadsByStatus = map[string]int64{}
	}
	return resp, nil
}

// ListUsers returns the paginated account list.
func (s *Service) ListUsers(ctx context.Context, req transport.ListUsersRequest) (transport.UserListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	users, total, err := s.repo.ListUsers(ctx, repository.ListUsersParams{
		Search: req.Search,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return transport.UserListResponse{}, err
	}

	items := make([]transport.UserResponse, len(users))
	for i, u := range users {
		items[i] = transport.UserResponse{
			ID:            u.ID,
			Email:         u.Email,
			FullName:      u.FullName,
			IsProvider:    u.IsProvider,
			IsAdmin:       u.IsAdmin,
			CompletedJobs: u.CompletedJobs,
			LeadBalance:   u.LeadBalance,
			CreatedAt:     u.CreatedAt,
		}
	}
	return transport.UserListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// RemoveService takes a listing down (moderation).
func (s *Service) RemoveService(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.log.Info("service removed by admin", "serviceId", id)
	return nil
}

// RemoveReview takes a review down (moderation).
func (s *Service) RemoveReview(ctx context.Context, id uuid.UUID) error {
	if err := s.reviews.RemoveReview(ctx, id); err != nil {
		return err
	}
	s.log.Info("review removed by admin", "reviewId", id)
	return nil
}
