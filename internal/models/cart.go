package models

// CartItem is one product reference inside a customer's cart. Carts hold
// only references and quantities; prices are joined in at read time.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartLine is a cart item joined with its product for display, with the
// line subtotal computed server-side (price times quantity).
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// CartView is the full cart as returned to the storefront drawer.
type CartView struct {
	Items []CartLine `json:"items"`
	Total float64    `json:"total"`
}
