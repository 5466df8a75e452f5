package db

import (
	"database/sql"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"relogio-be/internal/models"
)

// CreateOrder stores a checkout snapshot. Items are serialized as JSONB so
// later product edits never rewrite order history.
func (s *Store) CreateOrder(o models.Order) (models.Order, error) {
	o.ID = uuid.New().String()
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		log.Printf("CreateOrder: error marshaling items for user %s: %v", o.UserID, err)
		return models.Order{}, err
	}

	_, err = s.db.Exec(`
        INSERT INTO orders (id, user_id, items, total, status, name, phone, address, payment_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`,
		o.ID, o.UserID, itemsJSON, o.Total, o.Status, o.Name, o.Phone, o.Address, o.PaymentURL)
	if err != nil {
		log.Printf("CreateOrder: error inserting order for user %s: %v", o.UserID, err)
		return models.Order{}, err
	}
	log.Printf("Order %s created for user %s (total %.2f)", o.ID, o.UserID, o.Total)
	return s.GetOrderByID(o.ID)
}

// GetOrderByID retrieves one order.
func (s *Store) GetOrderByID(id string) (models.Order, error) {
	var o models.Order
	var itemsJSON []byte
	err := s.db.QueryRow(`
        SELECT id, user_id, items, total, status, COALESCE(name, ''), COALESCE(phone, ''),
               COALESCE(address, ''), COALESCE(payment_url, ''), created_at, updated_at
        FROM orders WHERE id=$1`, id).Scan(
		&o.ID, &o.UserID, &itemsJSON, &o.Total, &o.Status, &o.Name, &o.Phone,
		&o.Address, &o.PaymentURL, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return o, ErrNotFound
		}
		log.Printf("GetOrderByID: error fetching order %s: %v", id, err)
		return o, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		log.Printf("GetOrderByID: error unmarshaling items of order %s: %v", id, err)
		return o, err
	}
	return o, nil
}

// GetOrdersByUserID returns a customer's orders, newest first.
func (s *Store) GetOrdersByUserID(userID string) ([]models.Order, error) {
	return s.queryOrders("WHERE user_id=$1", userID)
}

// ListOrders returns all orders for the admin console, newest first.
func (s *Store) ListOrders() ([]models.Order, error) {
	return s.queryOrders("")
}

func (s *Store) queryOrders(where string, args ...interface{}) ([]models.Order, error) {
	query := `
        SELECT id, user_id, items, total, status, COALESCE(name, ''), COALESCE(phone, ''),
               COALESCE(address, ''), COALESCE(payment_url, ''), created_at, updated_at
        FROM orders ` + where + ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Printf("queryOrders: error querying orders: %v", err)
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var itemsJSON []byte
		errScan := rows.Scan(
			&o.ID, &o.UserID, &itemsJSON, &o.Total, &o.Status, &o.Name, &o.Phone,
			&o.Address, &o.PaymentURL, &o.CreatedAt, &o.UpdatedAt)
		if errScan != nil {
			log.Printf("queryOrders: error scanning order row: %v", errScan)
			continue
		}
		if errJSON := json.Unmarshal(itemsJSON, &o.Items); errJSON != nil {
			log.Printf("queryOrders: error unmarshaling items of order %s: %v", o.ID, errJSON)
			continue
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		log.Printf("queryOrders: error after row iteration: %v", err)
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus moves an order through its lifecycle.
func (s *Store) UpdateOrderStatus(id, status string) error {
	res, err := s.db.Exec("UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2", status, id)
	if err != nil {
		log.Printf("UpdateOrderStatus: error updating order %s to %s: %v", id, status, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	log.Printf("Order %s status updated to %s", id, status)
	return nil
}

// SetOrderPaymentURL stores the processor redirect once the handoff
// succeeds.
func (s *Store) SetOrderPaymentURL(id, paymentURL string) error {
	_, err := s.db.Exec("UPDATE orders SET payment_url=$1, updated_at=NOW() WHERE id=$2", paymentURL, id)
	if err != nil {
		log.Printf("SetOrderPaymentURL: error updating order %s: %v", id, err)
		return err
	}
	return nil
}
