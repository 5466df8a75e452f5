package models

import "time"

// Message sender roles.
const (
	SenderCustomer = "customer"
	SenderAdmin    = "admin"
)

// Conversation identifies a single customer-to-support thread. Its ID is
// derived deterministically from the customer's user ID, so resolving a
// conversation is an idempotent upsert and a customer can never end up with
// two threads.
type Conversation struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	LastMessage   string    `json:"last_message"`
	UnreadByAdmin bool      `json:"unread_by_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChatMessage is one line of a conversation. Append-only; ordering is by
// (created_at, id) ascending and the ID doubles as the feed cursor.
type ChatMessage struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         string    `json:"sender"` // SenderCustomer or SenderAdmin
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}
