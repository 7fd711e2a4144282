package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/internal/bookings/domain"
	"marketplace_backend/platform/apperr"
)

const bookingNotFoundMessage = "booking not found"

const bookingColumns = `
	b.id, b.service_id, s.title, b.user_id, b.provider_id,
	b.date, b.time, b.duration_hours, b.price, b.notes, b.status,
	b.payment_intent_id, b.payment_status, b.created_at, b.updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new bookings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create stores a new booking with status Upcoming.
func (r *Repo) Create(ctx context.Context, params CreateParams) (domain.Booking, error) {
	query := `
		WITH inserted AS (
			INSERT INTO bookings (service_id, user_id, provider_id, date, time, duration_hours, price, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		)
		SELECT ` + bookingColumns + `
		FROM inserted b
		JOIN services s ON s.id = b.service_id`

	row := r.pool.QueryRow(ctx, query,
		params.ServiceID, params.CustomerID, params.ProviderID,
		params.Date, params.Time, params.DurationHours, params.Price, params.Notes,
	)

	booking, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	return booking, nil
}

// GetByID retrieves a booking by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE b.id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, apperr.NotFound(bookingNotFoundMessage)
		}
		return domain.Booking{}, fmt.Errorf("get booking by id: %w", err)
	}
	return booking, nil
}

// ListForCustomer returns the customer's bookings, newest first.
func (r *Repo) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Booking, error) {
	return r.list(ctx, "b.user_id", customerID)
}

// ListForProvider returns the provider's bookings, newest first.
func (r *Repo) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Booking, error) {
	return r.list(ctx, "b.provider_id", providerID)
}

func (r *Repo) list(ctx context.Context, column string, id uuid.UUID) ([]domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE ` + column + ` = $1
		ORDER BY b.date DESC, b.created_at DESC`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var results []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		results = append(results, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return results, nil
}

// Transition applies the status change only when the current status still
// matches the expected one. Zero rows means a concurrent move.
func (r *Repo) Transition(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Booking, error) {
	query := `
		UPDATE bookings b
		SET status = $3, updated_at = now()
		FROM services s
		WHERE s.id = b.service_id AND b.id = $1 AND b.status = $2
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id, string(from), string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, r.classifyTransitionFailure(ctx, id, from)
		}
		return domain.Booking{}, fmt.Errorf("transition booking: %w", err)
	}
	return booking, nil
}

func (r *Repo) classifyTransitionFailure(ctx context.Context, id uuid.UUID, expected domain.Status) error {
	booking, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperr.Conflict(fmt.Sprintf("booking status changed concurrently: expected %s, now %s", expected, booking.Status))
}

// AttachPaymentIntent links a pending intent to the booking.
func (r *Repo) AttachPaymentIntent(ctx context.Context, id, intentID uuid.UUID, paymentStatus string) error {
	query := `UPDATE bookings SET payment_intent_id = $2, payment_status = $3, updated_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, intentID, paymentStatus)
	if err != nil {
		return fmt.Errorf("attach payment intent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(bookingNotFoundMessage)
	}
	return nil
}

// SetPaymentStatus records the settled state of the linked intent.
func (r *Repo) SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	query := `UPDATE bookings SET payment_status = $2, updated_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, paymentStatus)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(bookingNotFoundMessage)
	}
	return nil
}

// IncrementCompletedJobs bumps the provider's completed job counter.
func (r *Repo) IncrementCompletedJobs(ctx context.Context, providerID uuid.UUID) error {
	query := `UPDATE users SET completed_jobs = completed_jobs + 1, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, providerID); err != nil {
		return fmt.Errorf("increment completed jobs: %w", err)
	}
	return nil
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	var status string
	err := row.Scan(
		&b.ID, &b.ServiceID, &b.ServiceTitle, &b.CustomerID, &b.ProviderID,
		&b.Date, &b.Time, &b.DurationHours, &b.Price, &b.Notes, &status,
		&b.PaymentIntentID, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.Status(status)
	return b, nil
}
