package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"relogio-be/internal/api"
	"relogio-be/internal/cart"
	"relogio-be/internal/chat"
	"relogio-be/internal/config"
	"relogio-be/internal/db"
	"relogio-be/internal/notify"
	"relogio-be/internal/payments"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: could not load .env file. Environment variables must be set another way.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fatal: could not load configuration: %v", err)
	}

	store, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Fatal: could not initialize the database: %v", err)
	}
	defer store.Close()

	notifier, err := notify.New(cfg.TelegramToken, cfg.StaffChatID)
	if err != nil {
		// The shop works without staff notifications.
		log.Printf("Warning: Telegram notifier disabled: %v", err)
	}

	deps := api.Deps{
		Config:   cfg,
		Store:    store,
		Chat:     chat.NewService(store),
		Carts:    cart.NewManager(),
		Payments: payments.NewClient(cfg.MercadoPagoToken),
		Notifier: notifier,
	}

	r := chi.NewRouter()

	// Global middlewares must come before api.SetupRoutes.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.SetupRoutes(r, deps)

	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Fatal: could not start HTTP server: %v", err)
	}
}
