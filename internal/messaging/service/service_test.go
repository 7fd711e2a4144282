package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/messaging/cache"
	"marketplace_backend/internal/messaging/repository"
	"marketplace_backend/internal/messaging/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

// fakeRepo keeps the message log in memory and mirrors the SQL aggregate
// semantics: latest message per counterpart, unread counted per recipient.
type fakeRepo struct {
	messages []repository.Message
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Message, error) {
	msg := repository.Message{
		ID:          uuid.New(),
		SenderID:    params.SenderID,
		RecipientID: params.RecipientID,
		ServiceID:   params.ServiceID,
		Content:     params.Content,
		CreatedAt:   time.Now().Add(time.Duration(len(f.messages)) * time.Millisecond),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeRepo) ListThread(_ context.Context, userID, otherID uuid.UUID) ([]repository.Message, error) {
	var out []repository.Message
	for _, m := range f.messages {
		if (m.SenderID == userID && m.RecipientID == otherID) ||
			(m.SenderID == otherID && m.RecipientID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) Conversations(_ context.Context, userID uuid.UUID) ([]repository.Conversation, error) {
	latest := make(map[uuid.UUID]repository.Message)
	unread := make(map[uuid.UUID]int)
	for _, m := range f.messages {
		var counterpart uuid.UUID
		switch {
		case m.SenderID == userID:
			counterpart = m.RecipientID
		case m.RecipientID == userID:
			counterpart = m.SenderID
		default:
			continue
		}
		if prev, ok := latest[counterpart]; !ok || m.CreatedAt.After(prev.CreatedAt) {
			latest[counterpart] = m
		}
		if m.RecipientID == userID && !m.Read {
			unread[counterpart]++
		}
	}

	var out []repository.Conversation
	for counterpart, m := range latest {
		out = append(out, repository.Conversation{
			CounterpartID:   counterpart,
			CounterpartName: "counterpart",
			LastMessage:     m.Content,
			LastSenderID:    m.SenderID,
			LastMessageAt:   m.CreatedAt,
			UnreadCount:     unread[counterpart],
		})
	}
	return out, nil
}

func (f *fakeRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, m := range f.messages {
		if m.RecipientID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkThreadRead(_ context.Context, readerID, otherID uuid.UUID) (int64, error) {
	var marked int64
	for i, m := range f.messages {
		if m.RecipientID == readerID && m.SenderID == otherID && !m.Read {
			f.messages[i].Read = true
			marked++
		}
	}
	return marked, nil
}

type fakeClaimer struct {
	calls      int
	customerID uuid.UUID
	providerID uuid.UUID
}

func (f *fakeClaimer) ClaimOpenLeads(_ context.Context, customerID, providerID uuid.UUID) error {
	f.calls++
	f.customerID = customerID
	f.providerID = providerID
	return nil
}

func newService(t *testing.T, repo *fakeRepo, claimer *fakeClaimer) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.New("test")
	return New(repo, cache.NewUnreadCache(client), claimer, events.NewInMemoryBus(log), log)
}

func seed(repo *fakeRepo, sender, recipient uuid.UUID, content string, read bool) {
	msg, _ := repo.Create(context.Background(), repository.CreateParams{
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
	})
	if read {
		for i := range repo.messages {
			if repo.messages[i].ID == msg.ID {
				repo.messages[i].Read = true
			}
		}
	}
}

func TestSendAutoClaimsOpenLeads(t *testing.T) {
	repo := &fakeRepo{}
	claimer := &fakeClaimer{}
	svc := newService(t, repo, claimer)

	provider := uuid.New()
	customer := uuid.New()

	_, err := svc.Send(context.Background(), provider, transport.SendMessageRequest{
		RecipientID: customer,
		Content:     "happy to help, what's the address?",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if claimer.calls != 1 {
		t.Fatalf("claimer calls = %d, want 1", claimer.calls)
	}
	if claimer.customerID != customer || claimer.providerID != provider {
		t.Errorf("claimed (%s, %s), want (%s, %s)", claimer.customerID, claimer.providerID, customer, provider)
	}
}

func TestSendToSelfRejected(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, &fakeClaimer{})

	userID := uuid.New()
	_, err := svc.Send(context.Background(), userID, transport.SendMessageRequest{
		RecipientID: userID,
		Content:     "note to self",
	})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("Send() error = %v, want bad request", err)
	}
	if len(repo.messages) != 0 {
		t.Errorf("message log has %d entries, want 0", len(repo.messages))
	}
}

func TestUnreadCountFallbackPopulatesCache(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, &fakeClaimer{})

	userID := uuid.New()
	sender := uuid.New()
	seed(repo, sender, userID, "first", false)
	seed(repo, sender, userID, "second", false)

	got, err := svc.UnreadCount(context.Background(), userID)
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if got.Count != 2 {
		t.Fatalf("count = %d, want 2", got.Count)
	}

	// Writes that bypass the service do not show up until invalidation.
	seed(repo, sender, userID, "third", false)

	got, err = svc.UnreadCount(context.Background(), userID)
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if got.Count != 2 {
		t.Errorf("count = %d, want cached 2", got.Count)
	}
}

func TestSendBumpsCachedUnreadCount(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, &fakeClaimer{})

	recipient := uuid.New()
	sender := uuid.New()
	seed(repo, sender, recipient, "hello", false)

	// Prime the cache, then send again.
	if got, _ := svc.UnreadCount(context.Background(), recipient); got.Count != 1 {
		t.Fatalf("primed count = %d, want 1", got.Count)
	}

	if _, err := svc.Send(context.Background(), sender, transport.SendMessageRequest{
		RecipientID: recipient,
		Content:     "still there?",
	}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	got, err := svc.UnreadCount(context.Background(), recipient)
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if got.Count != 2 {
		t.Errorf("count = %d, want 2", got.Count)
	}
}

func TestThreadMarksReadAndInvalidatesCache(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, &fakeClaimer{})

	reader := uuid.New()
	other := uuid.New()
	seed(repo, other, reader, "are you available", false)
	seed(repo, other, reader, "next tuesday?", false)

	// Prime the cache with the unread state.
	if got, _ := svc.UnreadCount(context.Background(), reader); got.Count != 2 {
		t.Fatalf("primed count = %d, want 2", got.Count)
	}

	thread, err := svc.Thread(context.Background(), reader, other)
	if err != nil {
		t.Fatalf("Thread() error = %v", err)
	}
	if thread.Total != 2 {
		t.Fatalf("thread total = %d, want 2", thread.Total)
	}
	for _, msg := range thread.Items {
		if !msg.Read {
			t.Errorf("message %s not marked read in response", msg.ID)
		}
	}

	got, err := svc.UnreadCount(context.Background(), reader)
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if got.Count != 0 {
		t.Errorf("count after read = %d, want 0", got.Count)
	}
}

func TestConversationsAggregation(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, &fakeClaimer{})

	user := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	seed(repo, alice, user, "hi", true)
	seed(repo, user, alice, "hello back", false)
	seed(repo, alice, user, "when can you start?", false)
	seed(repo, bob, user, "quote please", false)

	got, err := svc.Conversations(context.Background(), user)
	if err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	if got.Total != 2 {
		t.Fatalf("conversations = %d, want 2", got.Total)
	}

	byCounterpart := make(map[uuid.UUID]transport.ConversationResponse)
	for _, c := range got.Items {
		byCounterpart[c.CounterpartID] = c
	}

	aliceConvo, ok := byCounterpart[alice]
	if !ok {
		t.Fatal("no conversation with alice")
	}
	if aliceConvo.LastMessage != "when can you start?" {
		t.Errorf("alice last message = %q, want latest", aliceConvo.LastMessage)
	}
	if aliceConvo.UnreadCount != 1 {
		t.Errorf("alice unread = %d, want 1", aliceConvo.UnreadCount)
	}

	bobConvo, ok := byCounterpart[bob]
	if !ok {
		t.Fatal("no conversation with bob")
	}
	if bobConvo.UnreadCount != 1 {
		t.Errorf("bob unread = %d, want 1", bobConvo.UnreadCount)
	}
}

func TestWriteReplyAppendsWithoutAutoClaim(t *testing.T) {
	repo := &fakeRepo{}
	claimer := &fakeClaimer{}
	svc := newService(t, repo, claimer)

	provider := uuid.New()
	customer := uuid.New()

	if err := svc.WriteReply(context.Background(), provider, customer, "I can take this on"); err != nil {
		t.Fatalf("WriteReply() error = %v", err)
	}

	if len(repo.messages) != 1 {
		t.Fatalf("message log has %d entries, want 1", len(repo.messages))
	}
	if claimer.calls != 0 {
		t.Errorf("claimer calls = %d, want 0", claimer.calls)
	}
}
