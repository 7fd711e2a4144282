package transport

import (
	"time"

	"github.com/google/uuid"
)

// SendMessageRequest contains data for sending a message.
type SendMessageRequest struct {
	RecipientID uuid.UUID  `json:"recipientId" validate:"required"`
	ServiceID   *uuid.UUID `json:"serviceId,omitempty"`
	Content     string     `json:"content" validate:"required,min=1,max=4000"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"senderId"`
	RecipientID uuid.UUID  `json:"recipientId"`
	ServiceID   *uuid.UUID `json:"serviceId,omitempty"`
	Content     string     `json:"content"`
	Read        bool       `json:"read"`
	IsLead      bool       `json:"isLead"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ConversationResponse is one entry in the conversation list.
type ConversationResponse struct {
	CounterpartID     uuid.UUID `json:"counterpartId"`
	CounterpartName   string    `json:"counterpartName"`
	CounterpartAvatar *string   `json:"counterpartAvatar,omitempty"`
	LastMessage       string    `json:"lastMessage"`
	LastSenderID      uuid.UUID `json:"lastSenderId"`
	LastMessageAt     time.Time `json:"lastMessageAt"`
	UnreadCount       int       `json:"unreadCount"`
}

// ConversationListResponse wraps the conversation list.
type ConversationListResponse struct {
	Items []ConversationResponse `json:"items"`
	Total int                    `json:"total"`
}

// ThreadResponse wraps the messages exchanged with one counterpart.
type ThreadResponse struct {
	Items []MessageResponse `json:"items"`
	Total int               `json:"total"`
}

// UnreadCountResponse carries the unread badge count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
