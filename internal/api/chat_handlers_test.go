package api

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relogio-be/internal/chat"
	"relogio-be/internal/models"
)

// memChatStore is a minimal in-memory chat.Store for handler tests.
type memChatStore struct {
	mu       sync.Mutex
	convs    map[string]models.Conversation
	messages map[string][]models.ChatMessage
	nextID   int64
}

func newMemChatStore() *memChatStore {
	return &memChatStore{
		convs:    make(map[string]models.Conversation),
		messages: make(map[string][]models.ChatMessage),
	}
}

func (m *memChatStore) ResolveConversation(userID, customerName, customerPhone string) (models.Conversation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "conv-" + userID
	if conv, ok := m.convs[id]; ok {
		return conv, false, nil
	}
	conv := models.Conversation{ID: id, UserID: userID, CustomerName: customerName, CustomerPhone: customerPhone}
	m.convs[id] = conv
	return conv, true, nil
}

func (m *memChatStore) GetConversationByID(id string) (models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if !ok {
		return conv, fmt.Errorf("conversation %s not found", id)
	}
	return conv, nil
}

func (m *memChatStore) ListConversations() ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	convs := make([]models.Conversation, 0, len(m.convs))
	for _, c := range m.convs {
		convs = append(convs, c)
	}
	return convs, nil
}

func (m *memChatStore) AppendMessage(conversationID, sender, body string) (models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg := models.ChatMessage{
		ID:             m.nextID,
		ConversationID: conversationID,
		Sender:         sender,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	return msg, nil
}

func (m *memChatStore) MessagesSince(conversationID string, afterID int64) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatMessage
	for _, msg := range m.messages[conversationID] {
		if msg.ID > afterID {
			out = append(out, msg)
		}
	}
	return out, nil
}

// spyNotifier records staff notifications for assertions.
type spyNotifier struct {
	mu               sync.Mutex
	newConversations []string
	customerMessages []string
	newOrders        []string
}

func (n *spyNotifier) NewConversation(conv models.Conversation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newConversations = append(n.newConversations, conv.ID)
}

func (n *spyNotifier) CustomerMessage(conv models.Conversation, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.customerMessages = append(n.customerMessages, body)
}

func (n *spyNotifier) NewOrder(order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newOrders = append(n.newOrders, order.ID)
}

func newChatTestServer() (*server, *spyNotifier) {
	notifier := &spyNotifier{}
	s := &server{Deps{
		Chat:     chat.NewService(newMemChatStore()),
		Notifier: notifier,
	}}
	return s, notifier
}

func postChatSend(s *server, userID, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("POST", "/api/chat/send", strings.NewReader(fmt.Sprintf(`{"body":%q}`, body)))
	ctx := context.WithValue(r.Context(), UserContextKey, models.User{ID: userID, Name: "Ana Clara"})
	w := httptest.NewRecorder()
	s.SendChatMessage(w, r.WithContext(ctx))
	return w
}

func TestFirstSendAnnouncesNewConversation(t *testing.T) {
	s, notifier := newChatTestServer()

	// A customer whose very first action is a send, with no prior resolve,
	// still announces the conversation to staff.
	w := postChatSend(s, "u1", "tem Rolex Submariner?")
	require.Equal(t, 200, w.Code)

	assert.Equal(t, []string{"conv-u1"}, notifier.newConversations)
	assert.Equal(t, []string{"tem Rolex Submariner?"}, notifier.customerMessages)
}

func TestRepeatSendsAnnounceOnlyOnce(t *testing.T) {
	s, notifier := newChatTestServer()

	require.Equal(t, 200, postChatSend(s, "u1", "olá").Code)
	require.Equal(t, 200, postChatSend(s, "u1", "ainda tem estoque?").Code)

	assert.Len(t, notifier.newConversations, 1, "only the first send opens the conversation")
	assert.Len(t, notifier.customerMessages, 2)
}
