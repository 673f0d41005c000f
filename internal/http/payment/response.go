package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightfold/portal/internal/payment"
)

type recordResponse struct {
	ID            uuid.UUID      `json:"id"`
	DocumentID    uuid.UUID      `json:"document_id"`
	ClientID      uuid.UUID      `json:"client_id"`
	Amount        int64          `json:"amount"`
	Currency      string         `json:"currency"`
	Method        payment.Method `json:"method"`
	Gateway       string         `json:"gateway,omitempty"`
	TransactionID string         `json:"transaction_id,omitempty"`
	Status        payment.Status `json:"status"`
	VerifiedBy    string         `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time     `json:"verified_at,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

func toResponse(rec *payment.Record) recordResponse {
	return recordResponse{
		ID:            rec.ID,
		DocumentID:    rec.DocumentID,
		ClientID:      rec.ClientID,
		Amount:        rec.Amount,
		Currency:      rec.Currency,
		Method:        rec.Method,
		Gateway:       rec.Gateway,
		TransactionID: rec.TransactionID,
		Status:        rec.Status,
		VerifiedBy:    rec.VerifiedBy,
		VerifiedAt:    rec.VerifiedAt,
		Notes:         rec.Notes,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func toResponseList(recs []*payment.Record) []recordResponse {
	resp := make([]recordResponse, len(recs))
	for i, rec := range recs {
		resp[i] = toResponse(rec)
	}

	return resp
}
