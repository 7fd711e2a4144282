package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/platform/apperr"
)

const (
	profileNotFoundMessage   = "user not found"
	portfolioNotFoundMessage = "portfolio item not found"
)

const profileColumns = `
	id, email, full_name, phone, avatar_url, is_provider, is_admin, provider_bio,
	provider_since, completed_jobs, lead_balance, country, created_at, updated_at`

const portfolioColumns = `id, provider_id, service_id, title, description, image_url, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new profiles repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetProfile retrieves a profile by user ID.
func (r *Repo) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, apperr.NotFound(profileNotFoundMessage)
		}
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile updates a profile. Nil params leave columns unchanged.
// provider_since is stamped the first time is_provider turns on.
func (r *Repo) UpdateProfile(ctx context.Context, params UpdateProfileParams) (Profile, error) {
	query := `
		UPDATE users SET
			full_name = COALESCE($2, full_name),
			phone = COALESCE($3, phone),
			provider_bio = COALESCE($4, provider_bio),
			country = COALESCE($5, country),
			is_provider = COALESCE($6, is_provider),
			provider_since = CASE
				WHEN COALESCE($6, is_provider) AND provider_since IS NULL THEN CURRENT_DATE
				ELSE provider_since
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query,
		params.ID, params.FullName, params.Phone, params.ProviderBio, params.Country, params.IsProvider)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, apperr.NotFound(profileNotFoundMessage)
		}
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// SetAvatar stores the avatar URL.
func (r *Repo) SetAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $2, updated_at = now() WHERE id = $1`, id, avatarURL)
	if err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(profileNotFoundMessage)
	}
	return nil
}

// CreatePortfolioItem stores a portfolio entry.
func (r *Repo) CreatePortfolioItem(ctx context.Context, params CreatePortfolioParams) (PortfolioItem, error) {
	query := `
		INSERT INTO portfolio_items (provider_id, service_id, title, description, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + portfolioColumns

	row := r.pool.QueryRow(ctx, query,
		params.ProviderID, params.ServiceID, params.Title, params.Description, params.ImageURL)

	item, err := scanPortfolioItem(row)
	if err != nil {
		return PortfolioItem{}, fmt.Errorf("create portfolio item: %w", err)
	}
	return item, nil
}

// ListPortfolio retrieves a provider's portfolio, newest first.
func (r *Repo) ListPortfolio(ctx context.Context, providerID uuid.UUID) ([]PortfolioItem, error) {
	query := `
		SELECT ` + portfolioColumns + `
		FROM portfolio_items
		WHERE provider_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list portfolio: %w", err)
	}
	defer rows.Close()

	var items []PortfolioItem
	for rows.Next() {
		item, err := scanPortfolioItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolio: %w", err)
	}
	return items, nil
}

// GetPortfolioItem retrieves a portfolio entry by ID.
func (r *Repo) GetPortfolioItem(ctx context.Context, id uuid.UUID) (PortfolioItem, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolio_items WHERE id = $1`

	item, err := scanPortfolioItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PortfolioItem{}, apperr.NotFound(portfolioNotFoundMessage)
		}
		return PortfolioItem{}, fmt.Errorf("get portfolio item: %w", err)
	}
	return item, nil
}

// DeletePortfolioItem removes a portfolio entry.
func (r *Repo) DeletePortfolioItem(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM portfolio_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete portfolio item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(portfolioNotFoundMessage)
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.Phone, &p.AvatarURL, &p.IsProvider, &p.IsAdmin,
		&p.ProviderBio, &p.ProviderSince, &p.CompletedJobs, &p.LeadBalance, &p.Country,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func scanPortfolioItem(row pgx.Row) (PortfolioItem, error) {
	var p PortfolioItem
	err := row.Scan(&p.ID, &p.ProviderID, &p.ServiceID, &p.Title, &p.Description, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		return PortfolioItem{}, err
	}
	return p, nil
}
