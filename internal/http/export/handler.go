package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightfold/portal/internal/export"
	"github.com/brightfold/portal/internal/payment"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type statementRequest struct {
	ClientID *uuid.UUID      `json:"client_id,omitempty"`
	Status   *payment.Status `json:"status,omitempty"`
}

func (req statementRequest) filter() payment.ListFilter {
	return payment.ListFilter{
		ClientID: req.ClientID,
		Status:   req.Status,
	}
}

type recordResponse struct {
	ID            uuid.UUID      `json:"id"`
	Amount        int64          `json:"amount"`
	Currency      string         `json:"currency"`
	Method        payment.Method `json:"method"`
	Status        payment.Status `json:"status"`
	TransactionID string         `json:"transaction_id,omitempty"`
	VerifiedBy    string         `json:"verified_by,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type statementResponse struct {
	Records   []recordResponse `json:"records"`
	Totals    map[string]int64 `json:"settled_totals"`
	EmailBody string           `json:"email_body"`
}

func toRecordResponse(rec *payment.Record) recordResponse {
	return recordResponse{
		ID:            rec.ID,
		Amount:        rec.Amount,
		Currency:      rec.Currency,
		Method:        rec.Method,
		Status:        rec.Status,
		TransactionID: rec.TransactionID,
		VerifiedBy:    rec.VerifiedBy,
		Notes:         rec.Notes,
		CreatedAt:     rec.CreatedAt,
	}
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	var req statementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stmt, err := h.svc.Build(r.Context(), req.filter())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	records := make([]recordResponse, 0, len(stmt.Records))
	for _, rec := range stmt.Records {
		records = append(records, toRecordResponse(rec))
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(statementResponse{
		Records:   records,
		Totals:    stmt.Totals,
		EmailBody: h.svc.EmailBody(stmt),
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var req statementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stmt, err := h.svc.Build(r.Context(), req.filter())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"statement_%s.csv\"", time.Now().Format("20060102")))

	if err := h.svc.WriteCSV(stmt, w); err != nil {
		slog.Error("failed to write statement csv", "error", err)
	}
}
