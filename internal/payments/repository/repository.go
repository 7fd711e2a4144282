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
	intentNotFoundMessage = "payment intent not found"
	methodNotFoundMessage = "payment method not found"
)

const intentColumns = `id, booking_id, amount, status, client_secret, created_at, settled_at`

const methodColumns = `
	id, user_id, type, is_default, country, card_name, card_last4, expiry_date,
	account_name, account_number, bank_name, routing_number, phone_number, mobile_provider, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new payments repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateIntent stores a new pending intent.
func (r *Repo) CreateIntent(ctx context.Context, bookingID uuid.UUID, amount float64, clientSecret string) (Intent, error) {
	query := `
		INSERT INTO payment_intents (booking_id, amount, client_secret)
		VALUES ($1, $2, $3)
		RETURNING ` + intentColumns

	intent, err := scanIntent(r.pool.QueryRow(ctx, query, bookingID, amount, clientSecret))
	if err != nil {
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}
	return intent, nil
}

// GetIntent retrieves an intent by ID.
func (r *Repo) GetIntent(ctx context.Context, id uuid.UUID) (Intent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE id = $1`

	intent, err := scanIntent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Intent{}, apperr.NotFound(intentNotFoundMessage)
		}
		return Intent{}, fmt.Errorf("get payment intent: %w", err)
	}
	return intent, nil
}

// SettleIntent moves a pending intent to succeeded. The conditional UPDATE
// keyed on the pending status makes concurrent settlements race-safe: only
// one caller observes the transition.
func (r *Repo) SettleIntent(ctx context.Context, id uuid.UUID) (Intent, bool, error) {
	query := `
		UPDATE payment_intents
		SET status = $2, settled_at = now()
		WHERE id = $1 AND status = $3
		RETURNING ` + intentColumns

	intent, err := scanIntent(r.pool.QueryRow(ctx, query, id, IntentSucceeded, IntentPending))
	if err == nil {
		return intent, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Intent{}, false, fmt.Errorf("settle payment intent: %w", err)
	}

	// Zero rows: either the intent does not exist or it already settled.
	intent, err = r.GetIntent(ctx, id)
	if err != nil {
		return Intent{}, false, err
	}
	return intent, false, nil
}

// CreateMethod stores a payment method. The first method for a user becomes
// the default; an explicit default clears the previous one.
func (r *Repo) CreateMethod(ctx context.Context, params CreateMethodParams) (Method, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Method{}, fmt.Errorf("begin create method: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_methods WHERE user_id = $1`, params.UserID,
	).Scan(&existing); err != nil {
		return Method{}, fmt.Errorf("count payment methods: %w", err)
	}

	isDefault := params.IsDefault || existing == 0
	if isDefault && existing > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1`, params.UserID,
		); err != nil {
			return Method{}, fmt.Errorf("clear default method: %w", err)
		}
	}

	query := `
		INSERT INTO payment_methods (user_id, type, is_default, country, card_name, card_last4,
			expiry_date, account_name, account_number, bank_name, routing_number,
			phone_number, mobile_provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + methodColumns

	method, err := scanMethod(tx.QueryRow(ctx, query,
		params.UserID, params.Type, isDefault, params.Country, params.CardName, params.CardLast4,
		params.ExpiryDate, params.AccountName, params.AccountNumber, params.BankName,
		params.RoutingNumber, params.PhoneNumber, params.MobileProvider,
	))
	if err != nil {
		return Method{}, fmt.Errorf("create payment method: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Method{}, fmt.Errorf("commit create method: %w", err)
	}
	return method, nil
}

// ListMethods retrieves the user's payment methods, default first.
func (r *Repo) ListMethods(ctx context.Context, userID uuid.UUID) ([]Method, error) {
	query := `
		SELECT ` + methodColumns + `
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []Method
	for rows.Next() {
		method, err := scanMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, method)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment methods: %w", err)
	}
	return methods, nil
}

// DeleteMethod removes one of the user's payment methods.
func (r *Repo) DeleteMethod(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM payment_methods WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(methodNotFoundMessage)
	}
	return nil
}

// SetDefaultMethod marks one method default and clears the others.
func (r *Repo) SetDefaultMethod(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin set default method: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1`, userID,
	); err != nil {
		return fmt.Errorf("clear default method: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE payment_methods SET is_default = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("set default method: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(methodNotFoundMessage)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit set default method: %w", err)
	}
	return nil
}

// GetBalance returns the user's lead balance.
func (r *Repo) GetBalance(ctx context.Context, userID uuid.UUID) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx,
		`SELECT lead_balance FROM users WHERE id = $1`, userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound("user not found")
		}
		return 0, fmt.Errorf("get lead balance: %w", err)
	}
	return balance, nil
}

// ChargeBalance conditionally debits the lead balance. The balance check
// and the decrement are a single UPDATE, so concurrent charges can never
// drive the balance negative.
func (r *Repo) ChargeBalance(ctx context.Context, userID uuid.UUID, amount float64) error {
	query := `
		UPDATE users SET lead_balance = lead_balance - $2, updated_at = now()
		WHERE id = $1 AND lead_balance >= $2`

	result, err := r.pool.Exec(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("charge lead balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("insufficient lead balance")
	}
	return nil
}

// CreditBalance increments the lead balance.
func (r *Repo) CreditBalance(ctx context.Context, userID uuid.UUID, amount float64) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE users SET lead_balance = lead_balance + $2, updated_at = now() WHERE id = $1`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("credit lead balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func scanIntent(row pgx.Row) (Intent, error) {
	var i Intent
	err := row.Scan(&i.ID, &i.BookingID, &i.Amount, &i.Status, &i.ClientSecret, &i.CreatedAt, &i.SettledAt)
	if err != nil {
		return Intent{}, err
	}
	return i, nil
}

func scanMethod(row pgx.Row) (Method, error) {
	var m Method
	err := row.Scan(
		&m.ID, &m.UserID, &m.Type, &m.IsDefault, &m.Country, &m.CardName, &m.CardLast4,
		&m.ExpiryDate, &m.AccountName, &m.AccountNumber, &m.BankName, &m.RoutingNumber,
		&m.PhoneNumber, &m.MobileProvider, &m.CreatedAt,
	)
	if err != nil {
		return Method{}, err
	}
	return m, nil
}
