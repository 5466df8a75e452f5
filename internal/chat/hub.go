package chat

import (
	"log"
	"sync"

	"relogio-be/internal/models"
)

// sendBuffer is the per-subscriber channel depth. A subscriber that stalls
// past it loses messages rather than blocking every other participant.
const sendBuffer = 64

// Hub fans appended messages out to the live subscriptions of each
// conversation. It holds no history; catch-up reads go to the store and the
// per-subscription cursor keeps the two paths from double-delivering.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: map[string]map[*Subscription]struct{}{},
	}
}

// Subscription is one attached chat surface. Messages arrive on C in
// (created_at, id) ascending order, starting after the cursor the
// subscription was opened with.
type Subscription struct {
	C chan models.ChatMessage

	hub            *Hub
	conversationID string

	mu         sync.Mutex
	lastID     int64 // cursor: highest message ID delivered so far
	catchingUp bool  // true until the backlog read has been replayed
	pending    []models.ChatMessage
	closed     bool
}

// Subscribe registers a new subscription for a conversation. The afterID
// cursor marks the last message the subscriber has already seen; only newer
// messages are delivered. The subscription buffers live messages until
// finishCatchUp replays the backlog, so nothing published in between is lost
// or duplicated.
func (h *Hub) Subscribe(conversationID string, afterID int64) *Subscription {
	sub := &Subscription{
		C:              make(chan models.ChatMessage, sendBuffer),
		hub:            h,
		conversationID: conversationID,
		lastID:         afterID,
		catchingUp:     true,
	}

	h.mu.Lock()
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = map[*Subscription]struct{}{}
	}
	h.subs[conversationID][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish delivers a freshly appended message to every live subscription of
// its conversation.
func (h *Hub) Publish(msg models.ChatMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[msg.ConversationID] {
		sub.deliver(msg)
	}
}

// Close tears the subscription down and releases its hub slot. Safe to call
// more than once. No events are buffered after teardown.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()

	s.hub.mu.Lock()
	if set, ok := s.hub.subs[s.conversationID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(s.hub.subs, s.conversationID)
		}
	}
	s.hub.mu.Unlock()

	close(s.C)
}

// deliver hands a live message to the subscriber, or parks it while the
// backlog is still being replayed.
func (s *Subscription) deliver(msg models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.catchingUp {
		s.pending = append(s.pending, msg)
		return
	}
	s.push(msg)
}

// finishCatchUp replays the backlog read from the store, then any live
// messages parked while it was loading, and switches the subscription to
// direct delivery. The cursor filter makes the merge idempotent.
func (s *Subscription) finishCatchUp(backlog []models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, msg := range backlog {
		s.push(msg)
	}
	for _, msg := range s.pending {
		s.push(msg)
	}
	s.pending = nil
	s.catchingUp = false
}

// push forwards one message if it is past the cursor. Callers hold s.mu.
func (s *Subscription) push(msg models.ChatMessage) {
	if msg.ID <= s.lastID {
		return
	}
	select {
	case s.C <- msg:
		s.lastID = msg.ID
	default:
		// Subscriber is not draining; drop rather than block the hub. The
		// client will re-sync from its cursor on reconnect.
		log.Printf("Hub: subscription of %s full, dropping message #%d", s.conversationID, msg.ID)
	}
}
