package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// Config holds all application configuration parameters.
type Config struct {
	Port        int
	AppEnv      string
	DatabaseURL string
	JWTSecret   string

	// Payment handoff (Mercado Pago checkout preferences).
	MercadoPagoToken  string
	CheckoutReturnURL string

	// Optional staff notifications over Telegram.
	TelegramToken string
	StaffChatID   int64
}

// Load reads configuration from environment variables. DATABASE_URL and
// JWT_SECRET are required; everything else degrades to a warning.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              8080,
		AppEnv:            os.Getenv("ENV"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		MercadoPagoToken:  os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
		CheckoutReturnURL: os.Getenv("CHECKOUT_RETURN_URL"),
		TelegramToken:     os.Getenv("TELEGRAM_APITOKEN"),
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Warning: invalid PORT value %q: %v. Using default %d.", v, err, cfg.Port)
		} else {
			cfg.Port = p
		}
	}

	if v := os.Getenv("STAFF_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("Warning: invalid STAFF_CHAT_ID value %q: %v. Telegram notifications disabled.", v, err)
		} else {
			cfg.StaffChatID = id
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	if cfg.MercadoPagoToken == "" {
		log.Println("Warning: MERCADOPAGO_ACCESS_TOKEN is not set. Checkout handoff will fail.")
	}
	if cfg.CheckoutReturnURL == "" {
		cfg.CheckoutReturnURL = "https://larelogios.com.br/pedido-confirmado"
		log.Printf("Warning: CHECKOUT_RETURN_URL is not set, using default %s.", cfg.CheckoutReturnURL)
	}
	if cfg.TelegramToken == "" || cfg.StaffChatID == 0 {
		log.Println("Warning: TELEGRAM_APITOKEN/STAFF_CHAT_ID not set. Staff notifications disabled.")
	}

	log.Println("Configuration loaded.")
	return cfg, nil
}
