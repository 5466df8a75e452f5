package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"relogio-be/internal/chat"
	"relogio-be/internal/db"
	"relogio-be/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = 30 * time.Second
)

// ResolveChat opens (or returns) the customer's conversation. Every
// customer has exactly one; re-resolving always lands on it.
func (s *server) ResolveChat(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	if user.IsAdmin {
		writeJSONError(w, http.StatusForbidden, "Admins answer conversations, they do not open them")
		return
	}

	conv, created, err := s.Chat.Resolve(user)
	if err != nil {
		log.Printf("ResolveChat: error resolving conversation for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not open conversation")
		return
	}
	if created {
		s.Notifier.NewConversation(conv)
	}
	writeJSONSuccess(w, "Conversation", conv)
}

// ChatHistory returns the customer's message log past the after cursor.
func (s *server) ChatHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	afterID, err := afterCursor(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid after cursor")
		return
	}

	messages, err := s.Chat.Messages(db.ConversationIDFor(user.ID), afterID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Conversation not opened yet")
			return
		}
		log.Printf("ChatHistory: error loading history for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load history")
		return
	}
	writeJSONSuccess(w, "Messages", messages)
}

type chatSendRequest struct {
	Body string `json:"body"`
}

// SendChatMessage appends one customer message and returns the committed
// record, so the client always knows whether the send took.
func (s *server) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	var req chatSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	conv, created, err := s.Chat.Resolve(user)
	if err != nil {
		log.Printf("SendChatMessage: error resolving conversation for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not open conversation")
		return
	}
	// A first send may be what opens the conversation; announce it the same
	// way ResolveChat does.
	if created {
		s.Notifier.NewConversation(conv)
	}

	msg, err := s.Chat.Send(conv.ID, models.SenderCustomer, req.Body)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeJSONError(w, http.StatusBadRequest, "Message body is empty")
			return
		}
		log.Printf("SendChatMessage: error appending message for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Message was not delivered, try again")
		return
	}
	s.Notifier.CustomerMessage(conv, msg.Body)
	writeJSONSuccess(w, "Message sent", msg)
}

// Inbox lists all conversations for the admin console.
func (s *server) Inbox(w http.ResponseWriter, r *http.Request) {
	convs, err := s.Chat.Inbox()
	if err != nil {
		log.Printf("Inbox: error listing conversations: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load conversations")
		return
	}
	writeJSONSuccess(w, "Conversations", convs)
}

// AdminChatHistory returns one conversation's log past the after cursor.
func (s *server) AdminChatHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	afterID, err := afterCursor(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid after cursor")
		return
	}

	messages, err := s.Chat.Messages(conversationID, afterID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("AdminChatHistory: error loading history for %s: %v", conversationID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load history")
		return
	}
	writeJSONSuccess(w, "Messages", messages)
}

// AdminSendMessage appends one admin reply to a conversation.
func (s *server) AdminSendMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	var req chatSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := s.Chat.Conversation(conversationID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("AdminSendMessage: error loading conversation %s: %v", conversationID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load conversation")
		return
	}

	msg, err := s.Chat.Send(conversationID, models.SenderAdmin, req.Body)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeJSONError(w, http.StatusBadRequest, "Message body is empty")
			return
		}
		log.Printf("AdminSendMessage: error appending message for %s: %v", conversationID, err)
		writeJSONError(w, http.StatusInternalServerError, "Message was not delivered, try again")
		return
	}
	writeJSONSuccess(w, "Message sent", msg)
}

// ChatSocket streams the customer's conversation over a websocket. Inbound
// frames are sends, outbound frames are committed messages (catch-up past
// the after cursor first, then live).
func (s *server) ChatSocket(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	if user.IsAdmin {
		writeJSONError(w, http.StatusForbidden, "Admins attach through the admin socket")
		return
	}

	conv, created, err := s.Chat.Resolve(user)
	if err != nil {
		log.Printf("ChatSocket: error resolving conversation for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not open conversation")
		return
	}
	if created {
		s.Notifier.NewConversation(conv)
	}
	s.serveChatSocket(w, r, conv, models.SenderCustomer)
}

// AdminChatSocket streams one conversation for the admin console.
func (s *server) AdminChatSocket(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	conv, err := s.Chat.Conversation(conversationID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.Printf("AdminChatSocket: error loading conversation %s: %v", conversationID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load conversation")
		return
	}
	s.serveChatSocket(w, r, conv, models.SenderAdmin)
}

// socketError is the outbound frame for a failed inbound send.
type socketError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (s *server) serveChatSocket(w http.ResponseWriter, r *http.Request, conv models.Conversation, sender string) {
	afterID, err := afterCursor(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid after cursor")
		return
	}

	sub, err := s.Chat.Attach(conv.ID, afterID)
	if err != nil {
		log.Printf("serveChatSocket: error attaching to %s: %v", conv.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not attach to conversation")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		log.Printf("serveChatSocket: upgrade failed for %s: %v", conv.ID, err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})

	// Error frames from the read loop and feed frames from the goroutine
	// below share the connection, so every write holds writeMu.
	var writeMu sync.Mutex
	writeJSON := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	// Writer: feed deliveries and keepalive pings.
	go func() {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case msg, open := <-sub.C:
				if !open {
					writeMu.Lock()
					conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
						time.Now().Add(writeWait))
					writeMu.Unlock()
					return
				}
				if err := writeJSON(msg); err != nil {
					return
				}
			case <-ticker.C:
				writeMu.Lock()
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Reader: inbound frames are sends. Failed sends come back as an error
	// frame instead of vanishing.
	for {
		var req chatSendRequest
		if err := conn.ReadJSON(&req); err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		msg, err := s.Chat.Send(conv.ID, sender, req.Body)
		if err != nil {
			reason := "Message was not delivered, try again"
			if errors.Is(err, chat.ErrEmptyMessage) {
				reason = "Message body is empty"
			} else {
				log.Printf("serveChatSocket: error appending message for %s: %v", conv.ID, err)
			}
			if errWrite := writeJSON(socketError{Type: "error", Message: reason}); errWrite != nil {
				break
			}
			continue
		}
		if sender == models.SenderCustomer {
			s.Notifier.CustomerMessage(conv, msg.Body)
		}
	}

	close(done)
	sub.Close()
	conn.Close()
}

// afterCursor parses the optional after query parameter, the ID of the last
// message the client already has.
func afterCursor(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("after")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
