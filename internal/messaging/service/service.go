package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/messaging/cache"
	"marketplace_backend/internal/messaging/repository"
	"marketplace_backend/internal/messaging/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

// LeadClaimer claims open direct leads when a provider replies through the
// ordinary message flow. Implemented by the leads module behind an adapter.
type LeadClaimer interface {
	ClaimOpenLeads(ctx context.Context, customerID, providerID uuid.UUID) error
}

// Service provides messaging business logic.
type Service struct {
	repo    repository.Repository
	unread  *cache.UnreadCache
	claimer LeadClaimer
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new messaging service.
func New(repo repository.Repository, unread *cache.UnreadCache, claimer LeadClaimer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		unread:  unread,
		claimer: claimer,
		bus:     bus,
		log:     log,
	}
}

// Send appends a message to the log. A reply from a provider implicitly
// claims any open direct leads the recipient has addressed to them; the
// reply itself is the response, so the claim writes no extra message.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, req transport.SendMessageRequest) (transport.MessageResponse, error) {
	if senderID == req.RecipientID {
		return transport.MessageResponse{}, apperr.BadRequest("cannot message yourself")
	}

	msg, err := s.repo.Create(ctx, repository.CreateParams{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		ServiceID:   req.ServiceID,
		Content:     sanitize.Text(req.Content),
	})
	if err != nil {
		return transport.MessageResponse{}, err
	}

	s.afterAppend(ctx, msg)

	if s.claimer != nil {
		if err := s.claimer.ClaimOpenLeads(ctx, req.RecipientID, senderID); err != nil {
			s.log.Error("auto-claim on reply failed", "senderId", senderID, "recipientId", req.RecipientID, "error", err)
		}
	}

	return toResponse(msg), nil
}

// WriteReply appends a winning lead reply to the message log (leads port).
// The claim already happened; no auto-claim runs here.
func (s *Service) WriteReply(ctx context.Context, senderID, recipientID uuid.UUID, content string) error {
	msg, err := s.repo.Create(ctx, repository.CreateParams{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	})
	if err != nil {
		return err
	}

	s.afterAppend(ctx, msg)
	return nil
}

// Conversations returns the user's conversation list, newest first.
func (s *Service) Conversations(ctx context.Context, userID uuid.UUID) (transport.ConversationListResponse, error) {
	rows, err := s.repo.Conversations(ctx, userID)
	if err != nil {
		return transport.ConversationListResponse{}, err
	}

	items := make([]transport.ConversationResponse, len(rows))
	for i, row := range rows {
		items[i] = transport.ConversationResponse{
			CounterpartID:     row.CounterpartID,
			CounterpartName:   row.CounterpartName,
			CounterpartAvatar: row.CounterpartAvatar,
			LastMessage:       row.LastMessage,
			LastSenderID:      row.LastSenderID,
			LastMessageAt:     row.LastMessageAt,
			UnreadCount:       row.UnreadCount,
		}
	}
	return transport.ConversationListResponse{Items: items, Total: len(items)}, nil
}

// Thread returns the exchange with one counterpart and marks the reader's
// unread messages read.
func (s *Service) Thread(ctx context.Context, userID, otherID uuid.UUID) (transport.ThreadResponse, error) {
	messages, err := s.repo.ListThread(ctx, userID, otherID)
	if err != nil {
		return transport.ThreadResponse{}, err
	}

	marked, err := s.repo.MarkThreadRead(ctx, userID, otherID)
	if err != nil {
		s.log.Error("failed to mark thread read", "userId", userID, "otherId", otherID, "error", err)
	} else if marked > 0 {
		if err := s.unread.Invalidate(ctx, userID); err != nil {
			s.log.Error("unread cache invalidation failed", "userId", userID, "error", err)
		}
	}

	items := make([]transport.MessageResponse, len(messages))
	for i, msg := range messages {
		read := msg.Read
		if msg.RecipientID == userID {
			read = true
		}
		items[i] = toResponse(msg)
		items[i].Read = read
	}
	return transport.ThreadResponse{Items: items, Total: len(items)}, nil
}

// UnreadCount returns the unread badge count, served from Redis with a
// database fallback that repopulates the cache.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (transport.UnreadCountResponse, error) {
	count, err := s.unread.Get(ctx, userID)
	if err == nil {
		return transport.UnreadCountResponse{Count: count}, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Error("unread cache read failed", "userId", userID, "error", err)
	}

	count, err = s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return transport.UnreadCountResponse{}, err
	}

	if err := s.unread.Set(ctx, userID, count); err != nil {
		s.log.Error("unread cache write failed", "userId", userID, "error", err)
	}
	return transport.UnreadCountResponse{Count: count}, nil
}

// afterAppend publishes the delivery event and bumps the recipient's cached
// unread counter. Cache failures never fail the send.
func (s *Service) afterAppend(ctx context.Context, msg repository.Message) {
	s.bus.Publish(ctx, events.MessageSent{
		BaseEvent:   events.NewBaseEvent(),
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		IsLead:      msg.IsLead,
	})

	if err := s.unread.Increment(ctx, msg.RecipientID); err != nil {
		s.log.Error("unread cache increment failed", "recipientId", msg.RecipientID, "error", err)
	}
}

func toResponse(m repository.Message) transport.MessageResponse {
	return transport.MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		ServiceID:   m.ServiceID,
		Content:     m.Content,
		Read:        m.Read,
		IsLead:      m.IsLead,
		CreatedAt:   m.CreatedAt,
	}
}
