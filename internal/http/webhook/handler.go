package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightfold/portal/internal/gateway"
	"github.com/brightfold/portal/internal/reconcile"
	"github.com/brightfold/portal/internal/signature"
)

// signatureHeader carries the gateway's HMAC over the request body.
const signatureHeader = "X-Razorpay-Signature"

const maxBodySize = 1 << 20

type Handler struct {
	svc *reconcile.Service
}

func NewHandler(svc *reconcile.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/gateway", h.receive)
}

type receiveResponse struct {
	Status   string `json:"status"`
	Replayed bool   `json:"replayed,omitempty"`
	Ignored  bool   `json:"ignored,omitempty"`
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	// The body must be read raw before any JSON handling: signature
	// verification runs over these exact bytes.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Reconcile(r.Context(), body, r.Header.Get(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, signature.ErrInvalidSignature):
			slog.Warn("webhook rejected: bad signature", "remote", r.RemoteAddr)
			http.Error(w, "invalid signature", http.StatusBadRequest)
		case errors.Is(err, gateway.ErrMalformedEvent):
			slog.Warn("webhook rejected: malformed event", "error", err)
			http.Error(w, "malformed event", http.StatusBadRequest)
		case errors.Is(err, reconcile.ErrDocumentNotFound):
			slog.Warn("webhook rejected: unknown invoice reference", "error", err)
			http.Error(w, "unknown invoice reference", http.StatusBadRequest)
		case errors.Is(err, reconcile.ErrAmountMismatch):
			// Redelivery cannot change the captured amount; surface loudly
			// and refuse rather than let the gateway retry forever.
			slog.Error("webhook rejected: amount mismatch", "error", err)
			http.Error(w, "amount mismatch", http.StatusBadRequest)
		default:
			// 5xx tells the gateway to redeliver; reconciliation is
			// idempotent so the retry is safe.
			slog.Error("webhook processing failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(receiveResponse{
		Status:   "ok",
		Replayed: result.Replayed,
		Ignored:  result.Ignored,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
