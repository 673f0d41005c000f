package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedEvent marks a payload that passed signature verification but
// does not decode as a webhook event. Redelivering it cannot help.
var ErrMalformedEvent = errors.New("malformed webhook event")

// EventPaymentCaptured is the only event type the reconciliation engine
// acts on. Everything else is acknowledged and ignored.
const EventPaymentCaptured = "payment.captured"

// WebhookEvent is the gateway's webhook payload. Decode it from the raw
// request body only after the body has been signature-verified byte-for-byte.
type WebhookEvent struct {
	Event   string `json:"event"`
	OrderID string `json:"order_id"`
	Payment struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"payment"`
	Notes map[string]string `json:"notes"`
}

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	return &evt, nil
}

// InvoiceNumber extracts the business reference the payer's checkout
// embedded in the order notes. Both key spellings the gateway emits are
// accepted.
func (e *WebhookEvent) InvoiceNumber() string {
	if n := e.Notes["invoice_number"]; n != "" {
		return n
	}

	return e.Notes["invoiceNumber"]
}
