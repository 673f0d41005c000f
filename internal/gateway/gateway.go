// Package gateway talks to the payment gateway's REST API and decodes its
// webhook payloads.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Identity is recorded as the verifier on ledger entries created from
// gateway capture events.
const Identity = "gateway"

type Client struct {
	client    *http.Client
	baseURL   string
	keyID     string
	keySecret string
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// Order is the gateway's order descriptor returned at checkout creation.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type CreateOrderParams struct {
	Amount        int64
	Currency      string
	Receipt       string
	InvoiceNumber string
}

// CreateOrder registers a checkout order with the gateway. The invoice
// number rides in the order notes so the capture webhook can be resolved
// back to a document.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   params.Amount,
		"currency": params.Currency,
		"receipt":  params.Receipt,
		"notes": map[string]string{
			"invoice_number": params.InvoiceNumber,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gateway order creation returned %d: %s", resp.StatusCode, body)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decoding order: %w", err)
	}

	return &order, nil
}
