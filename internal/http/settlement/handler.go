package settlement

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightfold/portal/internal/settlement"
)

const maxReportSize = 32 << 20

type Handler struct {
	svc *settlement.Service
}

func NewHandler(svc *settlement.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import", h.importReport)
}

type importResponse struct {
	Applied  int      `json:"applied"`
	Replayed int      `json:"replayed"`
	Failed   []string `json:"failed,omitempty"`
}

func (h *Handler) importReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxReportSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("report")
	if err != nil {
		http.Error(w, "report file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.svc.Import(r.Context(), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := importResponse{
		Applied:  result.Applied,
		Replayed: result.Replayed,
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, f.Row.PaymentID+": "+f.Err.Error())
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
