package db

import (
	"database/sql"
	"log"

	"relogio-be/internal/models"
)

// ConversationIDFor derives the conversation ID from the customer's user ID.
// Making the ID deterministic turns find-or-create into an idempotent upsert:
// two concurrent first opens race on the same primary key and exactly one
// row wins, so a customer can never end up with two threads.
func ConversationIDFor(userID string) string {
	return "conv-" + userID
}

// ResolveConversation returns the customer's conversation, creating it on
// first open. The created flag tells the caller whether to seed the welcome
// message.
func (s *Store) ResolveConversation(userID, customerName, customerPhone string) (models.Conversation, bool, error) {
	id := ConversationIDFor(userID)

	res, err := s.db.Exec(`
        INSERT INTO conversations (id, user_id, customer_name, customer_phone, last_message, unread_by_admin, created_at, updated_at)
        VALUES ($1, $2, $3, $4, '', FALSE, NOW(), NOW())
        ON CONFLICT (id) DO NOTHING`,
		id, userID, customerName, customerPhone)
	if err != nil {
		log.Printf("ResolveConversation: error upserting conversation for user %s: %v", userID, err)
		return models.Conversation{}, false, err
	}

	created := false
	if n, errRows := res.RowsAffected(); errRows == nil && n > 0 {
		created = true
		log.Printf("Conversation %s created for user %s", id, userID)
	}

	conv, err := s.GetConversationByID(id)
	if err != nil {
		return models.Conversation{}, false, err
	}
	return conv, created, nil
}

// GetConversationByID retrieves one conversation.
func (s *Store) GetConversationByID(id string) (models.Conversation, error) {
	var c models.Conversation
	err := s.db.QueryRow(`
        SELECT id, user_id, COALESCE(customer_name, ''), COALESCE(customer_phone, ''),
               COALESCE(last_message, ''), unread_by_admin, created_at, updated_at
        FROM conversations WHERE id=$1`, id).Scan(
		&c.ID, &c.UserID, &c.CustomerName, &c.CustomerPhone,
		&c.LastMessage, &c.UnreadByAdmin, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return c, ErrNotFound
		}
		log.Printf("GetConversationByID: error fetching conversation %s: %v", id, err)
		return c, err
	}
	return c, nil
}

// ListConversations returns all conversations for the admin inbox, most
// recently active first.
func (s *Store) ListConversations() ([]models.Conversation, error) {
	rows, err := s.db.Query(`
        SELECT id, user_id, COALESCE(customer_name, ''), COALESCE(customer_phone, ''),
               COALESCE(last_message, ''), unread_by_admin, created_at, updated_at
        FROM conversations
        ORDER BY updated_at DESC`)
	if err != nil {
		log.Printf("ListConversations: error querying conversations: %v", err)
		return nil, err
	}
	defer rows.Close()

	var conversations []models.Conversation
	for rows.Next() {
		var c models.Conversation
		errScan := rows.Scan(
			&c.ID, &c.UserID, &c.CustomerName, &c.CustomerPhone,
			&c.LastMessage, &c.UnreadByAdmin, &c.CreatedAt, &c.UpdatedAt)
		if errScan != nil {
			log.Printf("ListConversations: error scanning conversation row: %v", errScan)
			continue
		}
		conversations = append(conversations, c)
	}
	if err = rows.Err(); err != nil {
		log.Printf("ListConversations: error after row iteration: %v", err)
		return nil, err
	}
	return conversations, nil
}

// AppendMessage stores one message and returns it with the server-assigned
// ID and timestamp, so the caller can tell a committed write from a failed
// one. The conversation's preview and activity timestamp move with it.
func (s *Store) AppendMessage(conversationID, sender, body string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := s.db.QueryRow(`
        INSERT INTO chat_messages (conversation_id, sender, body, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at`,
		conversationID, sender, body).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		log.Printf("AppendMessage: error inserting message into %s (sender %s): %v", conversationID, sender, err)
		return msg, err
	}
	msg.ConversationID = conversationID
	msg.Sender = sender
	msg.Body = body

	// Customer messages flip the unread flag; the admin console currently
	// only writes it back, never reads it.
	_, err = s.db.Exec(`
        UPDATE conversations
        SET last_message=$1, unread_by_admin=(unread_by_admin OR $2), updated_at=NOW()
        WHERE id=$3`,
		body, sender == models.SenderCustomer, conversationID)
	if err != nil {
		// The message itself is committed; a stale preview is tolerable.
		log.Printf("AppendMessage: error updating preview of %s: %v", conversationID, err)
	}

	log.Printf("Message #%d appended to conversation %s", msg.ID, conversationID)
	return msg, nil
}

// MessagesSince returns the messages of a conversation with ID greater than
// the cursor, in (created_at, id) ascending order. A zero cursor returns the
// full log.
func (s *Store) MessagesSince(conversationID string, afterID int64) ([]models.ChatMessage, error) {
	rows, err := s.db.Query(`
        SELECT id, conversation_id, sender, body, created_at
        FROM chat_messages
        WHERE conversation_id = $1 AND id > $2
        ORDER BY created_at ASC, id ASC`, conversationID, afterID)
	if err != nil {
		log.Printf("MessagesSince: error querying messages of %s after %d: %v", conversationID, afterID, err)
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		errScan := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Sender, &msg.Body, &msg.CreatedAt)
		if errScan != nil {
			log.Printf("MessagesSince: error scanning message row of %s: %v", conversationID, errScan)
			continue
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		log.Printf("MessagesSince: error after row iteration of %s: %v", conversationID, err)
		return nil, err
	}
	return messages, nil
}
