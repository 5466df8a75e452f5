package chat

import (
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relogio-be/internal/models"
)

// fakeStore is an in-memory Store with the same resolve semantics as the
// Postgres implementation: the conversation ID is derived from the user ID
// and creation is an atomic first-writer-wins upsert.
type fakeStore struct {
	mu         sync.Mutex
	convs      map[string]models.Conversation
	msgs       map[string][]models.ChatMessage
	nextID     int64
	failAppend bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		convs: map[string]models.Conversation{},
		msgs:  map[string][]models.ChatMessage{},
	}
}

func (f *fakeStore) ResolveConversation(userID, customerName, customerPhone string) (models.Conversation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := "conv-" + userID
	if conv, ok := f.convs[id]; ok {
		return conv, false, nil
	}
	conv := models.Conversation{
		ID:            id,
		UserID:        userID,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	f.convs[id] = conv
	return conv, true, nil
}

func (f *fakeStore) GetConversationByID(id string) (models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.convs[id]
	if !ok {
		return models.Conversation{}, fmt.Errorf("conversation %s: %w", id, sql.ErrNoRows)
	}
	return conv, nil
}

func (f *fakeStore) ListConversations() ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Conversation
	for _, c := range f.convs {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) AppendMessage(conversationID, sender, body string) (models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend {
		return models.ChatMessage{}, fmt.Errorf("store unavailable")
	}
	f.nextID++
	msg := models.ChatMessage{
		ID:             f.nextID,
		ConversationID: conversationID,
		Sender:         sender,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	f.msgs[conversationID] = append(f.msgs[conversationID], msg)
	if conv, ok := f.convs[conversationID]; ok {
		conv.LastMessage = body
		conv.UpdatedAt = msg.CreatedAt
		f.convs[conversationID] = conv
	}
	return msg, nil
}

func (f *fakeStore) MessagesSince(conversationID string, afterID int64) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range f.msgs[conversationID] {
		if m.ID > afterID {
			out = append(out, m)
		}
	}
	return out, nil
}

func testCustomer(id string) models.User {
	return models.User{
		ID:    id,
		Name:  "Ana Clara",
		Email: id + "@example.com",
		Phone: sql.NullString{String: "+55 11 98888-0000", Valid: true},
	}
}

func TestResolveSeedsNewConversation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	conv, _, err := svc.Resolve(testCustomer("u1"))
	require.NoError(t, err)
	assert.Equal(t, "conv-u1", conv.ID)

	history, err := svc.History(conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 1, "exactly one seed message before any customer message")
	assert.Equal(t, models.SenderAdmin, history[0].Sender)
	assert.Equal(t, WelcomeMessage, history[0].Body)
}

func TestResolveReusesConversation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	first, created, err := svc.Resolve(testCustomer("u1"))
	require.NoError(t, err)
	second, created2, err := svc.Resolve(testCustomer("u1"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, created)
	assert.False(t, created2, "re-resolving is not a create")

	history, err := svc.History(first.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "re-resolving must not seed again")
}

func TestResolveConcurrentFirstOpens(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	const openers = 16
	ids := make(chan string, openers)
	var wg sync.WaitGroup
	for i := 0; i < openers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, _, err := svc.Resolve(testCustomer("u1"))
			assert.NoError(t, err)
			ids <- conv.ID
		}()
	}
	wg.Wait()
	close(ids)

	for id := range ids {
		assert.Equal(t, "conv-u1", id)
	}

	convs, err := svc.Inbox()
	require.NoError(t, err)
	assert.Len(t, convs, 1, "concurrent first opens must converge on one conversation")

	history, err := svc.History("conv-u1")
	require.NoError(t, err)
	assert.Len(t, history, 1, "only the winning open seeds the welcome")
}

func TestSendRejectsEmptyBodies(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	conv, _, err := svc.Resolve(testCustomer("u1"))
	require.NoError(t, err)

	for _, body := range []string{"", "   ", "\n\t  "} {
		_, errSend := svc.Send(conv.ID, models.SenderCustomer, body)
		assert.ErrorIs(t, errSend, ErrEmptyMessage, "body %q", body)
	}

	history, err := svc.History(conv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "empty sends must not create records")
}

func TestSendTrimsWhitespace(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	conv, _, err := svc.Resolve(testCustomer("u1"))
	require.NoError(t, err)

	msg, err := svc.Send(conv.ID, models.SenderCustomer, "  tem Rolex Submariner?  ")
	require.NoError(t, err)
	assert.Equal(t, "tem Rolex Submariner?", msg.Body)
}

func TestSendFailureIsReportedToSender(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	conv, _, err := svc.Resolve(testCustomer("u1"))
	require.NoError(t, err)

	sub, err := svc.Attach(conv.ID, 1)
	require.NoError(t, err)
	defer sub.Close()

	store.failAppend = true
	_, err = svc.Send(conv.ID, models.SenderCustomer, "oi")
	require.Error(t, err, "a failed send must be an explicit error, not silent loss")

	select {
	case m := <-sub.C:
		t.Fatalf("failed send must not reach the feed, got #%d", m.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoundTripThroughFeed(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	conv, _, err := svc.Resolve(testCustomer("u1"))
	require.NoError(t, err)

	sub, err := svc.Attach(conv.ID, 0)
	require.NoError(t, err)
	defer sub.Close()

	seed := receive(t, sub)
	assert.Equal(t, models.SenderAdmin, seed.Sender)

	sent, err := svc.Send(conv.ID, models.SenderCustomer, "qual o prazo de entrega?")
	require.NoError(t, err)

	got := receive(t, sub)
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, models.SenderCustomer, got.Sender)
	assert.Equal(t, "qual o prazo de entrega?", got.Body)
	assert.Greater(t, got.ID, seed.ID, "new message carries the greatest position in the log")
}

func TestAttachCursorReplaysOnlyUnseen(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	conv, _, err := svc.Resolve(testCustomer("u1"))
	require.NoError(t, err)

	first, err := svc.Send(conv.ID, models.SenderCustomer, "primeira")
	require.NoError(t, err)
	second, err := svc.Send(conv.ID, models.SenderAdmin, "segunda")
	require.NoError(t, err)

	sub, err := svc.Attach(conv.ID, first.ID)
	require.NoError(t, err)
	defer sub.Close()

	got := receive(t, sub)
	assert.Equal(t, second.ID, got.ID, "only messages past the cursor are replayed")

	select {
	case m := <-sub.C:
		t.Fatalf("unexpected extra message #%d", m.ID)
	default:
	}
}

func TestAttachUnknownConversation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.Attach("conv-missing", 0)
	assert.Error(t, err)
}
