package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is a single entry in the append-only message log. Lead inquiries
// share this log; IsLead marks them.
type Message struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	ServiceID   *uuid.UUID
	Content     string
	Read        bool
	IsLead      bool
	CreatedAt   time.Time
}

// Conversation is the aggregate row for the conversation list: the latest
// message exchanged with a counterpart plus the reader's unread count.
type Conversation struct {
	CounterpartID     uuid.UUID
	CounterpartName   string
	CounterpartAvatar *string
	LastMessage       string
	LastSenderID      uuid.UUID
	LastMessageAt     time.Time
	UnreadCount       int
}

// CreateParams contains parameters for appending a message.
type CreateParams struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	ServiceID   *uuid.UUID
	Content     string
}

// MessageReader provides read operations for the message log.
type MessageReader interface {
	// ListThread returns the full exchange between two users, oldest first.
	ListThread(ctx context.Context, userID, otherID uuid.UUID) ([]Message, error)
	// Conversations returns one row per counterpart, newest exchange first.
	Conversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error)
	// UnreadCount counts unread messages addressed to the user.
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// MessageWriter provides write operations for the message log.
type MessageWriter interface {
	Create(ctx context.Context, params CreateParams) (Message, error)
	// MarkThreadRead marks the reader's unread messages from the other user
	// as read and returns how many rows changed.
	MarkThreadRead(ctx context.Context, readerID, otherID uuid.UUID) (int64, error)
}

// Repository combines all message repository operations.
type Repository interface {
	MessageReader
	MessageWriter
}
