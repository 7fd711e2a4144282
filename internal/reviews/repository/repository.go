package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/platform/apperr"
)

const reviewNotFoundMessage = "review not found"

const uniqueViolationCode = "23505"

const reviewColumns = `
	r.id, r.service_id, r.user_id, u.full_name, r.rating, r.comment, r.created_at, r.updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new reviews repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create stores a new review.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Review, error) {
	query := `
		WITH inserted AS (
			INSERT INTO reviews (service_id, user_id, rating, comment)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT ` + reviewColumns + `
		FROM inserted r
		JOIN users u ON u.id = r.user_id`

	row := r.pool.QueryRow(ctx, query, params.ServiceID, params.UserID, params.Rating, params.Comment)

	review, err := scanReview(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Review{}, apperr.Conflict("service already reviewed")
		}
		return Review{}, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

// GetByID retrieves a review by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1`

	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, apperr.NotFound(reviewNotFoundMessage)
		}
		return Review{}, fmt.Errorf("get review by id: %w", err)
	}
	return review, nil
}

// ListForService retrieves all reviews for a service, newest first.
func (r *Repo) ListForService(ctx context.Context, serviceID uuid.UUID) ([]Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.service_id = $1
		ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// Aggregate computes the rating average rounded to two decimals.
func (r *Repo) Aggregate(ctx context.Context, serviceID uuid.UUID) (Aggregate, error) {
	query := `
		SELECT COALESCE(ROUND(AVG(rating), 2), 0), COUNT(*)
		FROM reviews
		WHERE service_id = $1`

	var agg Aggregate
	if err := r.pool.QueryRow(ctx, query, serviceID).Scan(&agg.Rating, &agg.ReviewCount); err != nil {
		return Aggregate{}, fmt.Errorf("aggregate reviews: %w", err)
	}
	return agg, nil
}

// Update updates a review. Nil params leave columns unchanged.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Review, error) {
	query := `
		WITH updated AS (
			UPDATE reviews SET
				rating = COALESCE($2, rating),
				comment = COALESCE($3, comment),
				updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + reviewColumns + `
		FROM updated r
		JOIN users u ON u.id = r.user_id`

	review, err := scanReview(r.pool.QueryRow(ctx, query, params.ID, params.Rating, params.Comment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, apperr.NotFound(reviewNotFoundMessage)
		}
		return Review{}, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// Delete removes a review.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(reviewNotFoundMessage)
	}
	return nil
}

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	err := row.Scan(
		&r.ID, &r.ServiceID, &r.UserID, &r.UserName,
		&r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return Review{}, err
	}
	return r, nil
}
