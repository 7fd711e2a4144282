package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Contact is the name and email address a notification goes to.
type Contact struct {
	Name  string
	Email string
}

// BookingDetails resolves the parties and service behind a booking so
// event handlers can address their emails.
type BookingDetails struct {
	ServiceTitle string
	Date         string
	TimeSlot     string
	Price        float64
	Customer     Contact
	Provider     Contact
}

// Directory resolves recipients for domain events.
type Directory interface {
	UserContact(ctx context.Context, userID uuid.UUID) (Contact, error)
	BookingDetails(ctx context.Context, bookingID uuid.UUID) (BookingDetails, error)
}

type cachedContact struct {
	contact   Contact
	expiresAt time.Time
}

// PgDirectory looks up recipients in PostgreSQL. User contacts are
// cached with a short TTL since the same recipient shows up across
// bursts of related events.
type PgDirectory struct {
	pool  *pgxpool.Pool
	cache sync.Map // map[uuid.UUID]cachedContact
}

// NewPgDirectory creates a directory backed by the given pool.
func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

var _ Directory = (*PgDirectory)(nil)

const contactCacheTTL = 10 * time.Minute

func (d *PgDirectory) UserContact(ctx context.Context, userID uuid.UUID) (Contact, error) {
	if cached, ok := d.cache.Load(userID); ok {
		entry := cached.(cachedContact)
		if time.Now().Before(entry.expiresAt) {
			return entry.contact, nil
		}
		d.cache.Delete(userID)
	}

	var c Contact
	query := `SELECT full_name, email FROM users WHERE id = $1`
	if err := d.pool.QueryRow(ctx, query, userID).Scan(&c.Name, &c.Email); err != nil {
		return Contact{}, fmt.Errorf("user contact: %w", err)
	}

	d.cache.Store(userID, cachedContact{contact: c, expiresAt: time.Now().Add(contactCacheTTL)})
	return c, nil
}

func (d *PgDirectory) BookingDetails(ctx context.Context, bookingID uuid.UUID) (BookingDetails, error) {
	var det BookingDetails
	query := `
		SELECT s.title, b.date, b.time, b.price,
		       cu.full_name, cu.email, pu.full_name, pu.email
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		JOIN users cu ON cu.id = b.user_id
		JOIN users pu ON pu.id = b.provider_id
		WHERE b.id = $1`

	var date time.Time
	err := d.pool.QueryRow(ctx, query, bookingID).Scan(
		&det.ServiceTitle, &date, &det.TimeSlot, &det.Price,
		&det.Customer.Name, &det.Customer.Email,
		&det.Provider.Name, &det.Provider.Email,
	)
	if err != nil {
		return BookingDetails{}, fmt.Errorf("booking details: %w", err)
	}
	det.Date = date.Format("2006-01-02")
	return det, nil
}
