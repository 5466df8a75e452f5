package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"relogio-be/internal/cart"
	"relogio-be/internal/chat"
	"relogio-be/internal/config"
	"relogio-be/internal/db"
	"relogio-be/internal/models"
	"relogio-be/internal/payments"
)

// Notifier pushes store events to the staff; notify.Notifier is the real
// one.
type Notifier interface {
	NewConversation(conv models.Conversation)
	CustomerMessage(conv models.Conversation, body string)
	NewOrder(order models.Order)
}

// Deps carries the dependencies the HTTP handlers need. Everything is
// injected here; handlers never reach for globals.
type Deps struct {
	Config   *config.Config
	Store    *db.Store
	Chat     *chat.Service
	Carts    *cart.Manager
	Payments *payments.Client
	Notifier Notifier
}

type server struct {
	Deps
}

// SetupRoutes wires all API routes onto the router.
func SetupRoutes(r *chi.Mux, deps Deps) {
	s := &server{deps}

	// Public storefront routes.
	r.Post("/api/auth/register", s.Register)
	r.Post("/api/auth/login", s.Login)
	r.Post("/api/auth/admin-login", s.AdminLogin)
	r.Get("/api/products", s.ListProducts)
	r.Get("/api/products/{id}", s.GetProduct)
	r.Get("/api/media/{filename}", s.MediaProxy)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/api/user/profile", s.GetUserProfile)
		r.Put("/api/user/profile", s.UpdateUserProfile)
		r.Get("/api/user/orders", s.GetUserOrders)

		r.Get("/api/cart", s.GetCart)
		r.Post("/api/cart/items", s.AddToCart)
		r.Put("/api/cart/items/{productID}", s.UpdateCartItem)
		r.Delete("/api/cart/items/{productID}", s.RemoveCartItem)
		r.Delete("/api/cart", s.ClearCart)

		r.Post("/api/checkout", s.Checkout)
		r.Get("/api/checkout/{id}/qr", s.PaymentQR)

		r.Post("/api/chat/resolve", s.ResolveChat)
		r.Get("/api/chat/history", s.ChatHistory)
		r.Post("/api/chat/send", s.SendChatMessage)
		r.Get("/ws/chat", s.ChatSocket)

		// Admin console routes.
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(s.adminMiddleware)

			r.Post("/products", s.CreateProduct)
			r.Put("/products/{id}", s.UpdateProduct)
			r.Delete("/products/{id}", s.DeleteProduct)
			r.Post("/products/{id}/featured", s.SetProductFeatured)
			r.Post("/upload-media", s.UploadMedia)

			r.Get("/orders", s.ListOrders)
			r.Get("/orders/{id}", s.GetOrder)
			r.Post("/orders/{id}/status", s.UpdateOrderStatus)

			r.Get("/chat/conversations", s.Inbox)
			r.Get("/chat/{id}/history", s.AdminChatHistory)
			r.Post("/chat/{id}/send", s.AdminSendMessage)

			r.Get("/export/products", s.ExportProducts)
			r.Get("/export/orders", s.ExportOrders)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Get("/ws/admin/chat/{id}", s.AdminChatSocket)
		})
	})
}

// jsonResponse is the envelope for every JSON reply the API makes.
type jsonResponse struct {
	Status  string      `json:"status"` // "success" or "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}
