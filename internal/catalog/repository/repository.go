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

const listingNotFoundMessage = "service not found"

const listingColumns = `
	sv.id, sv.provider_id, u.full_name, sv.title, sv.description, sv.price, sv.category,
	sv.image_url, sv.rating, sv.review_count, sv.location, sv.duration, sv.availability,
	sv.includes, sv.additional_info, sv.created_at, sv.updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create stores a new listing.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Listing, error) {
	query := `
		WITH inserted AS (
			INSERT INTO services (provider_id, title, description, price, category, image_url,
				location, duration, availability, includes, additional_info)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING *
		)
		SELECT ` + listingColumns + `
		FROM inserted sv
		JOIN users u ON u.id = sv.provider_id`

	row := r.pool.QueryRow(ctx, query,
		params.ProviderID, params.Title, params.Description, params.Price, params.Category,
		params.ImageURL, params.Location, params.Duration, params.Availability,
		params.Includes, params.AdditionalInfo,
	)

	listing, err := scanListing(row)
	if err != nil {
		return Listing{}, fmt.Errorf("create listing: %w", err)
	}
	return listing, nil
}

// GetByID retrieves a listing by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM services sv
		JOIN users u ON u.id = sv.provider_id
		WHERE sv.id = $1`

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, apperr.NotFound(listingNotFoundMessage)
		}
		return Listing{}, fmt.Errorf("get listing by id: %w", err)
	}
	return listing, nil
}

// List retrieves listings with category filter, ILIKE search and pagination.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Listing, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}
	var categoryParam interface{}
	if params.Category != "" {
		categoryParam = params.Category
	}
	var providerParam interface{}
	if params.ProviderID != nil {
		providerParam = *params.ProviderID
	}

	countQuery := `
		SELECT COUNT(*)
		FROM services sv
		WHERE ($1::text IS NULL OR sv.category = $1)
			AND ($2::text IS NULL OR sv.title ILIKE $2 OR sv.description ILIKE $2)
			AND ($3::uuid IS NULL OR sv.provider_id = $3)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, categoryParam, searchParam, providerParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	query := `
		SELECT ` + listingColumns + `
		FROM services sv
		JOIN users u ON u.id = sv.provider_id
		WHERE ($1::text IS NULL OR sv.category = $1)
			AND ($2::text IS NULL OR sv.title ILIKE $2 OR sv.description ILIKE $2)
			AND ($3::uuid IS NULL OR sv.provider_id = $3)
		ORDER BY sv.rating DESC, sv.created_at DESC
		LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query, categoryParam, searchParam, providerParam, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var results []Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan listing: %w", err)
		}
		results = append(results, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate listings: %w", err)
	}

	return results, total, nil
}

// Categories returns the distinct categories currently in use.
func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM services ORDER BY category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// Update updates a listing. Nil params leave columns unchanged.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Listing, error) {
	query := `
		WITH updated AS (
			UPDATE services SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				price = COALESCE($4, price),
				category = COALESCE($5, category),
				image_url = COALESCE($6, image_url),
				location = COALESCE($7, location),
				duration = COALESCE($8, duration),
				availability = COALESCE($9, availability),
				includes = COALESCE($10, includes),
				additional_info = COALESCE($11, additional_info),
				updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + listingColumns + `
		FROM updated sv
		JOIN users u ON u.id = sv.provider_id`

	row := r.pool.QueryRow(ctx, query,
		params.ID, params.Title, params.Description, params.Price, params.Category,
		params.ImageURL, params.Location, params.Duration, params.Availability,
		params.Includes, params.AdditionalInfo,
	)

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, apperr.NotFound(listingNotFoundMessage)
		}
		return Listing{}, fmt.Errorf("update listing: %w", err)
	}
	return listing, nil
}

// Delete removes a listing.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(listingNotFoundMessage)
	}
	return nil
}

// SetRating writes the denormalized rating aggregate.
func (r *Repo) SetRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	query := `UPDATE services SET rating = $2, review_count = $3, updated_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, rating, reviewCount)
	if err != nil {
		return fmt.Errorf("set listing rating: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(listingNotFoundMessage)
	}
	return nil
}

func scanListing(row pgx.Row) (Listing, error) {
	var l Listing
	err := row.Scan(
		&l.ID, &l.ProviderID, &l.ProviderName, &l.Title, &l.Description, &l.Price, &l.Category,
		&l.ImageURL, &l.Rating, &l.ReviewCount, &l.Location, &l.Duration, &l.Availability,
		&l.Includes, &l.AdditionalInfo, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return Listing{}, err
	}
	return l, nil
}
