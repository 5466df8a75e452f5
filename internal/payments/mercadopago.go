package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"relogio-be/internal/models"
)

// Mercado Pago checkout-preference API endpoint.
const defaultAPIEndpoint = "https://api.mercadopago.com/checkout/preferences"

// Client creates payment handoffs against the Mercado Pago API. The zero
// value is not usable; construct it with NewClient.
type Client struct {
	accessToken string
	endpoint    string
	httpClient  *http.Client
}

// NewClient builds a payment client. The access token may be empty, in
// which case every call fails with a clear error (checkout degraded, rest
// of the application unaffected).
func NewClient(accessToken string) *Client {
	return &Client{
		accessToken: accessToken,
		endpoint:    defaultAPIEndpoint,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// preferenceItem is one purchasable line in the checkout preference.
type preferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	CurrencyID string  `json:"currency_id"`
	UnitPrice  float64 `json:"unit_price"`
}

type preferencePayer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

// preferenceRequest is the request body for creating a checkout preference.
type preferenceRequest struct {
	Items               []preferenceItem   `json:"items"`
	Payer               preferencePayer    `json:"payer"`
	ExternalReference   string             `json:"external_reference"`
	BackURLs            preferenceBackURLs `json:"back_urls"`
	AutoReturn          string             `json:"auto_return"`
	StatementDescriptor string             `json:"statement_descriptor"`
}

// preferenceResponse carries the redirect URL the customer is sent to.
type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreateCheckoutLink registers a checkout preference for the order and
// returns the URL the customer must be redirected to. Nothing beyond the
// handoff happens here: capture, settlement and refunds all live on the
// processor's side.
func (c *Client) CreateCheckoutLink(ctx context.Context, order models.Order, payerName, payerEmail, returnURL string) (string, error) {
	if c.accessToken == "" {
		return "", fmt.Errorf("payment access token is not configured")
	}
	log.Printf("Creating Mercado Pago checkout preference for order %s", order.ID)

	items := make([]preferenceItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, preferenceItem{
			ID:         it.ProductID,
			Title:      fmt.Sprintf("%s %s", it.Brand, it.Name),
			Quantity:   it.Quantity,
			CurrencyID: "BRL",
			UnitPrice:  it.Price,
		})
	}

	requestBody := preferenceRequest{
		Items: items,
		Payer: preferencePayer{
			Name:  payerName,
			Email: payerEmail,
		},
		ExternalReference: order.ID,
		BackURLs: preferenceBackURLs{
			Success: returnURL,
			Pending: returnURL,
			Failure: returnURL,
		},
		AutoReturn:          "approved",
		StatementDescriptor: "LA RELOGIOS LUXO",
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		log.Printf("Error marshaling Mercado Pago request: %v", err)
		return "", fmt.Errorf("error preparing payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		log.Printf("Error building Mercado Pago HTTP request: %v", err)
		return "", fmt.Errorf("error building payment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Error calling Mercado Pago API: %v", err)
		return "", fmt.Errorf("error calling payment API: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading Mercado Pago response: %v", err)
		return "", fmt.Errorf("error reading payment API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("Mercado Pago API returned an error: status %d, body: %s", resp.StatusCode, string(responseBody))
		return "", fmt.Errorf("payment API returned status %d", resp.StatusCode)
	}

	var preference preferenceResponse
	if err := json.Unmarshal(responseBody, &preference); err != nil {
		log.Printf("Error unmarshaling Mercado Pago response: %v", err)
		return "", fmt.Errorf("error parsing payment API response: %w", err)
	}

	if preference.InitPoint == "" {
		log.Println("Mercado Pago API did not return a redirect URL.")
		return "", fmt.Errorf("payment API did not return a redirect URL")
	}

	log.Printf("Checkout preference %s created for order %s", preference.ID, order.ID)
	return preference.InitPoint, nil
}
