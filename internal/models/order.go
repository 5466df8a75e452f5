package models

import "time"

// Order statuses. Payment settlement happens on the processor's side, so
// "pending" only means the customer was handed the payment link.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
)

// OrderStatusDisplayMap maps statuses to display names for exports.
var OrderStatusDisplayMap = map[string]string{
	OrderStatusPending:   "Aguardando pagamento",
	OrderStatusPaid:      "Pago",
	OrderStatusShipped:   "Enviado",
	OrderStatusDelivered: "Entregue",
	OrderStatusCanceled:  "Cancelado",
}

// OrderItem is one line of an order, snapshotted at checkout time so later
// price edits do not rewrite history.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order represents a checkout handed off to the payment processor.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	Total      float64     `json:"total"`
	Status     string      `json:"status"`
	Name       string      `json:"name"`
	Phone      string      `json:"phone"`
	Address    string      `json:"address"`
	PaymentURL string      `json:"payment_url"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
