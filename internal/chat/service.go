package chat

import (
	"fmt"
	"log"
	"strings"

	"relogio-be/internal/models"
)

// WelcomeMessage is seeded as the first (admin-authored) message of every
// new conversation.
const WelcomeMessage = "Olá! Bem-vindo à LA Relógios Luxo. Como podemos ajudar?"

// ErrEmptyMessage is returned when a send carries no text after trimming.
var ErrEmptyMessage = fmt.Errorf("message body is empty")

// Store is the persistence surface the chat flow needs. *db.Store satisfies
// it; tests use an in-memory fake.
type Store interface {
	ResolveConversation(userID, customerName, customerPhone string) (models.Conversation, bool, error)
	GetConversationByID(id string) (models.Conversation, error)
	ListConversations() ([]models.Conversation, error)
	AppendMessage(conversationID, sender, body string) (models.ChatMessage, error)
	MessagesSince(conversationID string, afterID int64) ([]models.ChatMessage, error)
}

// Service composes the conversation resolver, the message store and the live
// feed. One instance is shared by the customer and admin sides.
type Service struct {
	store Store
	hub   *Hub
}

// NewService wires a chat service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		hub:   NewHub(),
	}
}

// Resolve returns the conversation of the given customer, creating and
// seeding it on first open. Concurrent first opens converge on the same
// conversation because the ID is derived from the customer ID. The second
// return reports whether this call created the conversation.
func (s *Service) Resolve(user models.User) (models.Conversation, bool, error) {
	conv, created, err := s.store.ResolveConversation(user.ID, user.Name, user.Phone.String)
	if err != nil {
		return models.Conversation{}, false, err
	}

	if created {
		// Seed the admin welcome before the customer can type anything. If
		// the seed fails the conversation still works, it just opens empty.
		msg, errSeed := s.store.AppendMessage(conv.ID, models.SenderAdmin, WelcomeMessage)
		if errSeed != nil {
			log.Printf("Resolve: error seeding welcome message for %s: %v", conv.ID, errSeed)
		} else {
			s.hub.Publish(msg)
		}
	}
	return conv, created, nil
}

// Send validates and appends one message, then fans it out to the live
// subscriptions. The committed message (with server-assigned ID and
// timestamp) is returned to the sender, so a failed send is an explicit
// error and never silent loss.
func (s *Service) Send(conversationID, sender, body string) (models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	msg, err := s.store.AppendMessage(conversationID, sender, body)
	if err != nil {
		return models.ChatMessage{}, err
	}
	s.hub.Publish(msg)
	return msg, nil
}

// History returns the full ordered log of a conversation.
func (s *Service) History(conversationID string) ([]models.ChatMessage, error) {
	return s.Messages(conversationID, 0)
}

// Messages returns the ordered log past the afterID cursor. The caller
// appends what it gets; it never rebuilds its view from scratch.
func (s *Service) Messages(conversationID string, afterID int64) ([]models.ChatMessage, error) {
	if _, err := s.store.GetConversationByID(conversationID); err != nil {
		return nil, err
	}
	return s.store.MessagesSince(conversationID, afterID)
}

// Attach opens a live subscription on a conversation. Messages past the
// afterID cursor are replayed from the store first, then new appends stream
// in; the subscriber reconstructs its view by appending, never by wholesale
// replacement. Callers must Close the subscription on teardown.
func (s *Service) Attach(conversationID string, afterID int64) (*Subscription, error) {
	if _, err := s.store.GetConversationByID(conversationID); err != nil {
		return nil, err
	}

	sub := s.hub.Subscribe(conversationID, afterID)
	backlog, err := s.store.MessagesSince(conversationID, afterID)
	if err != nil {
		sub.Close()
		return nil, err
	}
	sub.finishCatchUp(backlog)
	return sub, nil
}

// Inbox lists all conversations for the admin console, most recently active
// first.
func (s *Service) Inbox() ([]models.Conversation, error) {
	return s.store.ListConversations()
}

// Conversation loads one conversation by ID.
func (s *Service) Conversation(id string) (models.Conversation, error) {
	return s.store.GetConversationByID(id)
}
