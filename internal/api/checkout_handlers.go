package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"relogio-be/internal/db"
	"relogio-be/internal/models"
	"relogio-be/internal/utils"
)

type checkoutRequest struct {
	// Optional overrides; profile values are used when empty.
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type checkoutPayload struct {
	Order      models.Order `json:"order"`
	PaymentURL string       `json:"payment_url"`
}

// Checkout turns the cart into an order. The order snapshots the product
// data so later catalog edits never change what was sold. The cart is
// cleared once the order row exists; the payment link is requested after
// that, and its failure leaves a pending order the admin can follow up on.
func (s *server) Checkout(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := req.Name
	if name == "" {
		name = user.Name
	}
	phone := req.Phone
	if phone == "" {
		phone = user.Phone.String
	}
	address := req.Address
	if address == "" {
		address = user.Address.String
	}
	if phone == "" || address == "" {
		writeJSONError(w, http.StatusBadRequest, "Phone and delivery address are required")
		return
	}
	normalized, err := utils.ValidatePhoneNumber(phone)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.buildCartView(user.ID)
	if err != nil {
		log.Printf("Checkout: error building cart for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}
	if len(view.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	items := make([]models.OrderItem, 0, len(view.Items))
	for _, line := range view.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Brand:     line.Brand,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}

	order, err := s.Store.CreateOrder(models.Order{
		UserID:  user.ID,
		Items:   items,
		Total:   view.Total,
		Status:  models.OrderStatusPending,
		Name:    name,
		Phone:   normalized,
		Address: address,
	})
	if err != nil {
		log.Printf("Checkout: error creating order for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not create order")
		return
	}

	s.Carts.Clear(user.ID)
	s.Notifier.NewOrder(order)

	paymentURL, err := s.Payments.CreateCheckoutLink(r.Context(), order, name, user.Email, s.Config.CheckoutReturnURL)
	if err != nil {
		log.Printf("Checkout: error creating payment link for order %s: %v", order.ID, err)
		writeJSONSuccess(w, "Order recorded; the payment link is unavailable right now",
			checkoutPayload{Order: order})
		return
	}
	if err := s.Store.SetOrderPaymentURL(order.ID, paymentURL); err != nil {
		log.Printf("Checkout: error saving payment link for order %s: %v", order.ID, err)
	}
	order.PaymentURL = paymentURL

	writeJSONSuccess(w, "Order created", checkoutPayload{Order: order, PaymentURL: paymentURL})
}

// PaymentQR renders the order's payment link as a PNG QR code, for
// customers who want to pay from another device. Only the order's owner or
// an admin can fetch it.
func (s *server) PaymentQR(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	id := chi.URLParam(r, "id")

	order, err := s.Store.GetOrderByID(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Printf("PaymentQR: error loading order %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load order")
		return
	}
	if order.UserID != user.ID && !user.IsAdmin {
		writeJSONError(w, http.StatusForbidden, "This order belongs to another account")
		return
	}
	if order.PaymentURL == "" {
		writeJSONError(w, http.StatusNotFound, "Order has no payment link")
		return
	}

	png, err := utils.GeneratePaymentQR(order.PaymentURL)
	if err != nil {
		log.Printf("PaymentQR: error rendering QR for order %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// GetUserOrders lists the authenticated user's orders, newest first.
func (s *server) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	orders, err := s.Store.GetOrdersByUserID(user.ID)
	if err != nil {
		log.Printf("GetUserOrders: error listing orders for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load orders")
		return
	}
	writeJSONSuccess(w, "Orders", orders)
}

// GetOrder returns one order for the admin console.
func (s *server) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := s.Store.GetOrderByID(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Printf("GetOrder: error loading order %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load order")
		return
	}
	writeJSONSuccess(w, "Order", order)
}

// ListOrders lists every order for the admin console.
func (s *server) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Store.ListOrders()
	if err != nil {
		log.Printf("ListOrders: error listing orders: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load orders")
		return
	}
	writeJSONSuccess(w, "Orders", orders)
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order through its lifecycle.
func (s *server) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, ok := models.OrderStatusDisplayMap[req.Status]; !ok {
		writeJSONError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	if err := s.Store.UpdateOrderStatus(id, req.Status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Printf("UpdateOrderStatus: error updating order %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not update order")
		return
	}
	writeJSONSuccess(w, "Order status updated", nil)
}
