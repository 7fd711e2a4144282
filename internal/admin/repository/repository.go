package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/platform/apperr"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new admin repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func (r *Repo) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *Repo) CountProviders(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE is_provider`)
}

func (r *Repo) CountServices(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM services`)
}

func (r *Repo) CountBookings(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bookings`)
}

// TotalRevenue sums the price of completed bookings.
func (r *Repo) TotalRevenue(ctx context.Context) (float64, error) {
	var revenue float64
	query := `SELECT COALESCE(SUM(price), 0) FROM bookings WHERE status = 'Completed'`
	if err := r.pool.QueryRow(ctx, query).Scan(&revenue); err != nil {
		return 0, fmt.Errorf("total revenue: %w", err)
	}
	return revenue, nil
}

// LeadCountsByStatus buckets leads by their routing status.
func (r *Repo) LeadCountsByStatus(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT lead_status, COUNT(*)
		FROM messages
		WHERE is_lead
		GROUP BY lead_status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("lead counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan lead count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead counts: %w", err)
	}
	return counts, nil
}

// ListUsers retrieves accounts with optional search, newest first.
func (r *Repo) ListUsers(ctx context.Context, params ListUsersParams) ([]UserRow, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	var total int
	countQuery := `
		SELECT COUNT(*) FROM users
		WHERE ($1::text IS NULL OR email ILIKE $1 OR full_name ILIKE $1)`
	if err := r.pool.QueryRow(ctx, countQuery, searchParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `
		SELECT id, email, full_name, is_provider, is_admin, completed_jobs, lead_balance, created_at
		FROM users
		WHERE ($1::text IS NULL OR email ILIKE $1 OR full_name ILIKE $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, searchParam, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []UserRow
	for rows.Next() {
		var u UserRow
		err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.IsProvider, &u.IsAdmin,
			&u.CompletedJobs, &u.LeadBalance, &u.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}

// DeleteService removes a listing regardless of owner.
func (r *Repo) DeleteService(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("service not found")
	}
	return nil
}

func (r *Repo) count(ctx context.Context, query string) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return count, nil
}
