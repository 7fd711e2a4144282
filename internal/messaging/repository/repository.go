package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const messageColumns = `
	m.id, m.sender_id, m.recipient_id, m.service_id, m.content, m.read, m.is_lead, m.created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new messaging repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create appends a message to the log.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Message, error) {
	query := `
		INSERT INTO messages (sender_id, recipient_id, service_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sender_id, recipient_id, service_id, content, read, is_lead, created_at`

	row := r.pool.QueryRow(ctx, query, params.SenderID, params.RecipientID, params.ServiceID, params.Content)

	msg, err := scanMessage(row)
	if err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

// ListThread returns the full exchange between two users, oldest first.
func (r *Repo) ListThread(ctx context.Context, userID, otherID uuid.UUID) ([]Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
			OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thread: %w", err)
	}
	return messages, nil
}

// Conversations returns one row per counterpart, newest exchange first.
// The latest message per counterpart is picked with DISTINCT ON over the
// normalized counterpart column; unread counts come from a correlated
// subquery so a single round trip serves the whole list.
func (r *Repo) Conversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error) {
	query := `
		WITH latest AS (
			SELECT DISTINCT ON (counterpart_id)
				counterpart_id, sender_id, content, created_at
			FROM (
				SELECT m.sender_id, m.content, m.created_at,
					CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END AS counterpart_id
				FROM messages m
				WHERE m.sender_id = $1 OR m.recipient_id = $1
			) t
			ORDER BY counterpart_id, created_at DESC
		)
		SELECT l.counterpart_id, u.full_name, u.avatar_url, l.content, l.sender_id, l.created_at,
			(SELECT COUNT(*) FROM messages um
				WHERE um.sender_id = l.counterpart_id AND um.recipient_id = $1 AND NOT um.read)
		FROM latest l
		JOIN users u ON u.id = l.counterpart_id
		ORDER BY l.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var c Conversation
		err := rows.Scan(
			&c.CounterpartID, &c.CounterpartName, &c.CounterpartAvatar,
			&c.LastMessage, &c.LastSenderID, &c.LastMessageAt, &c.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return conversations, nil
}

// UnreadCount counts unread messages addressed to the user.
func (r *Repo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND NOT read`
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

// MarkThreadRead marks the reader's unread messages from the other user as read.
func (r *Repo) MarkThreadRead(ctx context.Context, readerID, otherID uuid.UUID) (int64, error) {
	query := `
		UPDATE messages SET read = TRUE
		WHERE recipient_id = $1 AND sender_id = $2 AND NOT read`

	result, err := r.pool.Exec(ctx, query, readerID, otherID)
	if err != nil {
		return 0, fmt.Errorf("mark thread read: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	err := row.Scan(
		&m.ID, &m.SenderID, &m.RecipientID, &m.ServiceID,
		&m.Content, &m.Read, &m.IsLead, &m.CreatedAt,
	)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}
