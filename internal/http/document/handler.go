package document

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightfold/portal/internal/document"
)

type Handler struct {
	svc *document.Service
}

func NewHandler(svc *document.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/sign", h.sign)
	r.Patch("/{id}/status", h.updateStatus)
}

type createDocumentRequest struct {
	ProjectID         uuid.UUID     `json:"project_id"`
	ClientID          uuid.UUID     `json:"client_id"`
	Type              document.Type `json:"type"`
	Title             string        `json:"title"`
	InvoiceNumber     string        `json:"invoice_number,omitempty"`
	Amount            int64         `json:"amount"`
	Currency          string        `json:"currency"`
	DueDate           *time.Time    `json:"due_date,omitempty"`
	RequiresSignature bool          `json:"requires_signature"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Type == document.TypeInvoice && req.InvoiceNumber == "" {
		http.Error(w, "invoice_number is required for invoices", http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Create(r.Context(), document.CreateParams{
		ProjectID:         req.ProjectID,
		ClientID:          req.ClientID,
		Type:              req.Type,
		Title:             req.Title,
		InvoiceNumber:     req.InvoiceNumber,
		Amount:            req.Amount,
		Currency:          req.Currency,
		DueDate:           req.DueDate,
		RequiresSignature: req.RequiresSignature,
	})
	if err != nil {
		if errors.Is(err, document.ErrNotSignable) {
			http.Error(w, "invoices cannot require a signature", http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := document.ListFilter{}

	if s := r.URL.Query().Get("project_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return
		}

		filter.ProjectID = &id
	}

	if s := r.URL.Query().Get("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid client_id", http.StatusBadRequest)
			return
		}

		filter.ClientID = &id
	}

	if s := r.URL.Query().Get("type"); s != "" {
		filter.Type = new(document.Type(s))
	}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(document.PaymentStatus(s))
	}

	docs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(docs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type signRequest struct {
	Actor string `json:"actor"`
}

func (h *Handler) sign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Sign(r.Context(), id, req.Actor, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, document.ErrNotFound):
			http.Error(w, "document not found", http.StatusNotFound)
		case errors.Is(err, document.ErrNotSignable),
			errors.Is(err, document.ErrSignatureNotRequired):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, document.ErrAlreadySigned):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateStatusRequest struct {
	Status document.PaymentStatus `json:"status"`
	Actor  string                 `json:"actor"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.svc.ApplyStatus(r.Context(), id, req.Status, req.Actor, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, document.ErrNotFound):
			http.Error(w, "document not found", http.StatusNotFound)
		case errors.Is(err, document.ErrInvalidStatusTransition),
			errors.Is(err, document.ErrNoBackingPayment):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
