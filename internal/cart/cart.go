package cart

import (
	"fmt"
	"log"
	"sync"

	"relogio-be/internal/models"
)

// ErrInvalidQuantity is returned for zero or negative quantities.
var ErrInvalidQuantity = fmt.Errorf("quantity must be positive")

// Manager keeps the per-customer carts. Carts are ephemeral working state:
// they live in memory, keyed by user ID, and are cleared on checkout. Safe
// for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	carts map[string][]models.CartItem // key: user ID
}

// NewManager creates an empty cart manager.
func NewManager() *Manager {
	return &Manager{
		carts: make(map[string][]models.CartItem),
	}
}

// Items returns a copy of the user's cart, in insertion order.
func (m *Manager) Items(userID string) []models.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]models.CartItem, len(m.carts[userID]))
	copy(items, m.carts[userID])
	return items
}

// Add puts a product into the cart, or bumps its quantity if it is already
// there.
func (m *Manager) Add(userID, productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.carts[userID] {
		if item.ProductID == productID {
			m.carts[userID][i].Quantity += quantity
			return nil
		}
	}
	m.carts[userID] = append(m.carts[userID], models.CartItem{ProductID: productID, Quantity: quantity})
	log.Printf("Cart of user %s: added product %s x%d", userID, productID, quantity)
	return nil
}

// SetQuantity overwrites the quantity of a cart line. Setting it on a
// product that is not in the cart adds it.
func (m *Manager) SetQuantity(userID, productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.carts[userID] {
		if item.ProductID == productID {
			m.carts[userID][i].Quantity = quantity
			return nil
		}
	}
	m.carts[userID] = append(m.carts[userID], models.CartItem{ProductID: productID, Quantity: quantity})
	return nil
}

// Remove drops one product from the cart. Removing an absent product is a
// no-op.
func (m *Manager) Remove(userID, productID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.carts[userID]
	for i, item := range items {
		if item.ProductID == productID {
			m.carts[userID] = append(items[:i], items[i+1:]...)
			return
		}
	}
}

// Clear empties the user's cart (checkout and explicit clear).
func (m *Manager) Clear(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
}
