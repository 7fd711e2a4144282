package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRow is an account as listed in the admin console.
type UserRow struct {
	ID            uuid.UUID
	Email         string
	FullName      string
	IsProvider    bool
	IsAdmin       bool
	CompletedJobs int
	LeadBalance   float64
	CreatedAt     time.Time
}

// ListUsersParams filters the admin user list.
type ListUsersParams struct {
	Search string
	Limit  int
	Offset int
}

// StatsRepository provides the aggregate counters behind the dashboard.
// Each counter is a separate query so the service can fan them out.
type StatsRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountProviders(ctx context.Context) (int64, error)
	CountServices(ctx context.Context) (int64, error)
	CountBookings(ctx context.Context) (int64, error)
	// TotalRevenue sums the price of completed bookings.
	TotalRevenue(ctx context.Context) (float64, error)
	// LeadCountsByStatus buckets leads by their routing status.
	LeadCountsByStatus(ctx context.Context) (map[string]int64, error)
}

// ModerationRepository provides the admin console's direct operations.
type ModerationRepository interface {
	ListUsers(ctx context.Context, params ListUsersParams) ([]UserRow, int, error)
	// DeleteService removes a listing regardless of owner. Dependent rows
	// (bookings, reviews, portfolio links) cascade in the schema.
	DeleteService(ctx context.Context, id uuid.UUID) error
}

// Repository combines all admin repository operations.
type Repository interface {
	StatsRepository
	ModerationRepository
}
