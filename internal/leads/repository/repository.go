package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/internal/leads/domain"
	"marketplace_backend/platform/apperr"
)

const (
	leadNotFoundMessage       = "lead not found"
	leadAlreadyClaimedMessage = "lead already claimed"
	leadNotEligibleMessage    = "lead is reserved for another provider"
)

const leadColumns = `
	m.id, m.sender_id, m.recipient_id, m.service_id, s.title, s.category,
	m.content, m.lead_status, m.lead_price, m.lead_paid,
	m.responded_by, m.responded_at, m.created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create stores a new lead as a flagged message with status direct.
func (r *Repo) Create(ctx context.Context, params CreateParams) (domain.Lead, error) {
	query := `
		WITH inserted AS (
			INSERT INTO messages (sender_id, recipient_id, service_id, content, is_lead, lead_status, lead_price)
			VALUES ($1, $2, $3, $4, TRUE, 'direct', $5)
			RETURNING *
		)
		SELECT ` + leadColumns + `
		FROM inserted m
		LEFT JOIN services s ON s.id = m.service_id`

	row := r.pool.QueryRow(ctx, query,
		params.CustomerID, params.ProviderID, params.ServiceID, params.Content, params.Price,
	)

	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// GetByID retrieves a lead by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM messages m
		LEFT JOIN services s ON s.id = m.service_id
		WHERE m.id = $1 AND m.is_lead`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return domain.Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// ListForProvider returns leads addressed to the provider plus leads the
// provider has won, newest first.
func (r *Repo) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM messages m
		LEFT JOIN services s ON s.id = m.service_id
		WHERE m.is_lead AND (m.recipient_id = $1 OR m.responded_by = $1)
		ORDER BY m.created_at DESC`

	rows, err := r.pool.Query(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list leads for provider: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// ListOpportunities returns open opportunities in categories the provider
// serves. Leads without a service attached are open to everyone.
func (r *Repo) ListOpportunities(ctx context.Context, providerID uuid.UUID) ([]domain.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM messages m
		LEFT JOIN services s ON s.id = m.service_id
		WHERE m.is_lead
			AND m.lead_status = 'opportunity'
			AND m.sender_id <> $1
			AND (m.service_id IS NULL OR s.category IN (
				SELECT category FROM services WHERE provider_id = $1
			))
		ORDER BY m.created_at DESC`

	rows, err := r.pool.Query(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// OffersCategory reports whether the provider has a service in the category.
func (r *Repo) OffersCategory(ctx context.Context, providerID uuid.UUID, category string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM services WHERE provider_id = $1 AND category = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, providerID, category).Scan(&exists); err != nil {
		return false, fmt.Errorf("check provider category: %w", err)
	}
	return exists, nil
}

// Claim transitions the lead to responded with a single conditional UPDATE.
// The predicate carries the whole policy: a responded lead never matches, a
// direct lead only matches its recipient. Zero rows means the caller lost.
func (r *Repo) Claim(ctx context.Context, leadID, providerID uuid.UUID) (ClaimResult, error) {
	query := `
		UPDATE messages m
		SET lead_status = 'responded', responded_by = $2, responded_at = now()
		FROM messages old
		LEFT JOIN services s ON s.id = old.service_id
		WHERE m.id = old.id
			AND m.id = $1
			AND m.is_lead
			AND m.lead_status <> 'responded'
			AND (m.lead_status = 'opportunity' OR m.recipient_id = $2)
			AND m.sender_id <> $2
		RETURNING m.id, m.sender_id, m.recipient_id, m.service_id, s.title, s.category,
			m.content, m.lead_status, m.lead_price, m.lead_paid,
			m.responded_by, m.responded_at, m.created_at, old.lead_status`

	row := r.pool.QueryRow(ctx, query, leadID, providerID)

	var lead domain.Lead
	var status, fromStatus string
	err := row.Scan(
		&lead.ID, &lead.CustomerID, &lead.ProviderID, &lead.ServiceID, &lead.ServiceTitle, &lead.Category,
		&lead.Content, &status, &lead.Price, &lead.Paid,
		&lead.RespondedBy, &lead.RespondedAt, &lead.CreatedAt, &fromStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ClaimResult{}, r.classifyClaimFailure(ctx, leadID, providerID)
		}
		return ClaimResult{}, fmt.Errorf("claim lead: %w", err)
	}

	lead.Status = domain.Status(status)
	return ClaimResult{Lead: lead, FromStatus: domain.Status(fromStatus)}, nil
}

// classifyClaimFailure turns a zero-row claim into the precise domain error.
func (r *Repo) classifyClaimFailure(ctx context.Context, leadID, providerID uuid.UUID) error {
	lead, err := r.GetByID(ctx, leadID)
	if err != nil {
		return err
	}

	if lead.Claimed() {
		return apperr.Conflict(leadAlreadyClaimedMessage)
	}
	if lead.Status == domain.StatusDirect && lead.ProviderID != providerID {
		return apperr.Forbidden(leadNotEligibleMessage)
	}
	if lead.CustomerID == providerID {
		return apperr.Forbidden("cannot respond to your own inquiry")
	}
	return apperr.Conflict(leadAlreadyClaimedMessage)
}

// ClaimOpenDirect claims every open direct lead from the customer to the
// provider. An ordinary reply counts as a response inside the window.
func (r *Repo) ClaimOpenDirect(ctx context.Context, customerID, providerID uuid.UUID) ([]ClaimResult, error) {
	query := `
		UPDATE messages m
		SET lead_status = 'responded', responded_by = $2, responded_at = now()
		FROM messages old
		LEFT JOIN services s ON s.id = old.service_id
		WHERE m.id = old.id
			AND m.is_lead
			AND m.lead_status = 'direct'
			AND m.sender_id = $1
			AND m.recipient_id = $2
		RETURNING m.id, m.sender_id, m.recipient_id, m.service_id, s.title, s.category,
			m.content, m.lead_status, m.lead_price, m.lead_paid,
			m.responded_by, m.responded_at, m.created_at, old.lead_status`

	rows, err := r.pool.Query(ctx, query, customerID, providerID)
	if err != nil {
		return nil, fmt.Errorf("claim open direct leads: %w", err)
	}
	defer rows.Close()

	var results []ClaimResult
	for rows.Next() {
		var lead domain.Lead
		var status, fromStatus string
		err := rows.Scan(
			&lead.ID, &lead.CustomerID, &lead.ProviderID, &lead.ServiceID, &lead.ServiceTitle, &lead.Category,
			&lead.Content, &status, &lead.Price, &lead.Paid,
			&lead.RespondedBy, &lead.RespondedAt, &lead.CreatedAt, &fromStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("scan claimed lead: %w", err)
		}
		lead.Status = domain.Status(status)
		results = append(results, ClaimResult{Lead: lead, FromStatus: domain.Status(fromStatus)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claimed leads: %w", err)
	}
	return results, nil
}

// SweepExpired moves stale direct leads to opportunity. The predicate makes
// the sweep idempotent: a second run over the same rows matches nothing.
func (r *Repo) SweepExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE messages
		SET lead_status = 'opportunity'
		WHERE is_lead AND lead_status = 'direct' AND created_at < $1`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep expired leads: %w", err)
	}
	return result.RowsAffected(), nil
}

// MarkPaid records that the lead fee was collected.
func (r *Repo) MarkPaid(ctx context.Context, leadID uuid.UUID) error {
	query := `UPDATE messages SET lead_paid = TRUE WHERE id = $1 AND is_lead`

	result, err := r.pool.Exec(ctx, query, leadID)
	if err != nil {
		return fmt.Errorf("mark lead paid: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var status string
	err := row.Scan(
		&lead.ID, &lead.CustomerID, &lead.ProviderID, &lead.ServiceID, &lead.ServiceTitle, &lead.Category,
		&lead.Content, &status, &lead.Price, &lead.Paid,
		&lead.RespondedBy, &lead.RespondedAt, &lead.CreatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.Status(status)
	return lead, nil
}

func scanLeads(rows pgx.Rows) ([]domain.Lead, error) {
	var results []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		results = append(results, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return results, nil
}
