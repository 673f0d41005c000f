package project

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightfold/portal/internal/deliverable"
	"github.com/brightfold/portal/internal/project"
)

const maxUploadSize = 64 << 20

type Handler struct {
	svc          *project.Service
	deliverables *deliverable.Service
}

func NewHandler(svc *project.Service, deliverables *deliverable.Service) *Handler {
	return &Handler{svc: svc, deliverables: deliverables}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/cost", h.setCost)
	r.Get("/{id}/release", h.release)
	r.Post("/{id}/deliverables", h.uploadDeliverable)
}

type projectResponse struct {
	ID        uuid.UUID  `json:"id"`
	ClientID  uuid.UUID  `json:"client_id"`
	Name      string     `json:"name"`
	Cost      *int64     `json:"cost,omitempty"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:        p.ID,
		ClientID:  p.ClientID,
		Name:      p.Name,
		Cost:      p.Cost,
		Currency:  p.Currency,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type createProjectRequest struct {
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
	Cost     *int64    `json:"cost,omitempty"`
	Currency string    `json:"currency"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Create(r.Context(), project.CreateParams{
		ClientID: req.ClientID,
		Name:     req.Name,
		Cost:     req.Cost,
		Currency: req.Currency,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var clientID *uuid.UUID

	if s := r.URL.Query().Get("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid client_id", http.StatusBadRequest)
			return
		}

		clientID = &id
	}

	projects, err := h.svc.List(r.Context(), clientID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]projectResponse, len(projects))
	for i, p := range projects {
		resp[i] = toResponse(p)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			http.Error(w, "project not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type setCostRequest struct {
	Cost     int64  `json:"cost"`
	Currency string `json:"currency"`
}

func (h *Handler) setCost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req setCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Cost <= 0 || req.Currency == "" {
		http.Error(w, "cost and currency are required", http.StatusBadRequest)
		return
	}

	p, err := h.svc.SetCost(r.Context(), id, req.Cost, req.Currency)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			http.Error(w, "project not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type releaseResponse struct {
	Allowed   bool   `json:"allowed"`
	Remaining int64  `json:"remaining"`
	Currency  string `json:"currency"`
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	decision, err := h.svc.CanReleaseDeliverables(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrNotFound):
			http.Error(w, "project not found", http.StatusNotFound)
		case errors.Is(err, project.ErrCostNotSet),
			errors.Is(err, project.ErrMixedCurrency):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(releaseResponse{
		Allowed:   decision.Allowed,
		Remaining: decision.Remaining.Value,
		Currency:  decision.Remaining.Currency,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) uploadDeliverable(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	clientID, err := uuid.Parse(r.FormValue("client_id"))
	if err != nil {
		http.Error(w, "invalid client_id", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	doc, err := h.deliverables.Upload(r.Context(), deliverable.UploadParams{
		ProjectID: projectID,
		ClientID:  clientID,
		Title:     r.FormValue("title"),
		Filename:  header.Filename,
		Content:   file,
	})
	if err != nil {
		switch {
		case errors.Is(err, project.ErrNotFound):
			http.Error(w, "project not found", http.StatusNotFound)
		case errors.Is(err, deliverable.ErrReleaseBlocked),
			errors.Is(err, project.ErrCostNotSet),
			errors.Is(err, project.ErrMixedCurrency):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(map[string]any{
		"id":       doc.ID,
		"file_key": doc.FileKey,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
