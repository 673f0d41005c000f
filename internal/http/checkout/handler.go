package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightfold/portal/internal/document"
	"github.com/brightfold/portal/internal/gateway"
	"github.com/brightfold/portal/internal/signature"
)

type Handler struct {
	gw       *gateway.Client
	docs     *document.Service
	verifier *signature.Verifier
}

func NewHandler(gw *gateway.Client, docs *document.Service, verifier *signature.Verifier) *Handler {
	return &Handler{gw: gw, docs: docs, verifier: verifier}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Post("/verify", h.verify)
}

type createOrderRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	Receipt       string `json:"receipt"`
}

type orderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// createOrder registers a gateway order for an existing invoice. Amount and
// currency come from the document, never from the client.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.docs.GetByInvoiceNumber(r.Context(), req.InvoiceNumber)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	order, err := h.gw.CreateOrder(r.Context(), gateway.CreateOrderParams{
		Amount:        doc.Amount,
		Currency:      doc.Currency,
		Receipt:       req.Receipt,
		InvoiceNumber: doc.InvoiceNumber,
	})
	if err != nil {
		slog.Error("order creation failed", "invoice", req.InvoiceNumber, "error", err)
		http.Error(w, "gateway error", http.StatusBadGateway)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(orderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type verifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

// verify checks the client-side checkout confirmation. It acknowledges only;
// the authoritative state change arrives on the webhook path.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	verified := h.verifier.VerifyCheckout(req.OrderID, req.PaymentID, req.Signature) == nil

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(verifyResponse{Verified: verified}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
