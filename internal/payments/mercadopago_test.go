package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relogio-be/internal/models"
)

func testOrder() models.Order {
	return models.Order{
		ID: "order-1",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Submariner", Brand: "Rolex", Price: 85000, Quantity: 1},
			{ProductID: "p2", Name: "Speedmaster", Brand: "Omega", Price: 42000, Quantity: 2},
		},
		Total: 169000,
	}
}

func TestCreateCheckoutLink(t *testing.T) {
	var got preferenceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"id":         "pref-123",
			"init_point": "https://mercadopago.example/checkout/pref-123",
		})
	}))
	defer srv.Close()

	c := NewClient("test-token")
	c.endpoint = srv.URL

	url, err := c.CreateCheckoutLink(context.Background(), testOrder(), "Ana", "ana@example.com", "https://loja.example/volta")
	require.NoError(t, err)
	assert.Equal(t, "https://mercadopago.example/checkout/pref-123", url)

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Rolex Submariner", got.Items[0].Title)
	assert.Equal(t, "BRL", got.Items[0].CurrencyID)
	assert.Equal(t, 2, got.Items[1].Quantity)
	assert.Equal(t, "order-1", got.ExternalReference)
	assert.Equal(t, "https://loja.example/volta", got.BackURLs.Success)
}

func TestCreateCheckoutLinkAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
			},
		},
		{
			name: "missing redirect URL",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(map[string]string{"id": "pref-123"})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient("test-token")
			c.endpoint = srv.URL

			_, err := c.CreateCheckoutLink(context.Background(), testOrder(), "Ana", "ana@example.com", "https://loja.example/volta")
			assert.Error(t, err)
		})
	}
}

func TestCreateCheckoutLinkWithoutToken(t *testing.T) {
	c := NewClient("")
	_, err := c.CreateCheckoutLink(context.Background(), testOrder(), "Ana", "ana@example.com", "https://loja.example/volta")
	assert.Error(t, err)
}
