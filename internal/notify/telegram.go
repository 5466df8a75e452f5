package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"relogio-be/internal/models"
	"relogio-be/internal/utils"
)

// Notifier pushes store events to the staff Telegram chat. A nil or
// unconfigured Notifier is a no-op, so callers never need to guard their
// calls; the store keeps working without it.
type Notifier struct {
	api         *tgbotapi.BotAPI
	staffChatID int64
}

// New initializes the Telegram notifier. An empty token or zero chat ID
// yields a disabled notifier and no error; a bad token is reported so main
// can warn and continue.
func New(token string, staffChatID int64) (*Notifier, error) {
	if token == "" || staffChatID == 0 {
		return &Notifier{}, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return &Notifier{}, fmt.Errorf("error initializing Telegram Bot API: %w", err)
	}
	log.Printf("Telegram notifier authorized as %s", api.Self.UserName)

	return &Notifier{api: api, staffChatID: staffChatID}, nil
}

// Enabled reports whether messages will actually be sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.api != nil
}

// NewConversation announces a customer opening a support chat for the
// first time.
func (n *Notifier) NewConversation(conv models.Conversation) {
	n.send(fmt.Sprintf("💬 Novo chat de %s (%s)", conv.CustomerName, conv.CustomerPhone))
}

// CustomerMessage relays a customer chat message to the staff chat.
func (n *Notifier) CustomerMessage(conv models.Conversation, body string) {
	n.send(fmt.Sprintf("💬 %s: %s", conv.CustomerName, body))
}

// NewOrder announces a checkout handoff.
func (n *Notifier) NewOrder(order models.Order) {
	n.send(fmt.Sprintf("🛒 Pedido %s de %s: %s (%d itens)",
		order.ID, order.Name, utils.FormatBRL(order.Total), len(order.Items)))
}

// send delivers one message, logging failures instead of propagating them:
// a broken notifier must never break a checkout or a chat send.
func (n *Notifier) send(text string) {
	if !n.Enabled() {
		return
	}
	msg := tgbotapi.NewMessage(n.staffChatID, text)
	if _, err := n.api.Send(msg); err != nil {
		log.Printf("Notifier: error sending Telegram message: %v", err)
	}
}
