package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightfold/portal/internal/document"
)

type documentResponse struct {
	ID                uuid.UUID              `json:"id"`
	ProjectID         uuid.UUID              `json:"project_id"`
	ClientID          uuid.UUID              `json:"client_id"`
	Type              document.Type          `json:"type"`
	Title             string                 `json:"title"`
	InvoiceNumber     string                 `json:"invoice_number,omitempty"`
	Amount            int64                  `json:"amount"`
	Currency          string                 `json:"currency"`
	DueDate           *time.Time             `json:"due_date,omitempty"`
	PaymentStatus     document.PaymentStatus `json:"payment_status"`
	RequiresSignature bool                   `json:"requires_signature"`
	Signed            bool                   `json:"signed"`
	SignedBy          string                 `json:"signed_by,omitempty"`
	SignedAt          *time.Time             `json:"signed_at,omitempty"`
	VerifiedBy        string                 `json:"verified_by,omitempty"`
	VerifiedAt        *time.Time             `json:"verified_at,omitempty"`
	PaidAt            *time.Time             `json:"paid_at,omitempty"`
	GatewayTxnID      string                 `json:"gateway_txn_id,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         *time.Time             `json:"updated_at,omitempty"`
}

func toResponse(doc *document.Document) documentResponse {
	return documentResponse{
		ID:                doc.ID,
		ProjectID:         doc.ProjectID,
		ClientID:          doc.ClientID,
		Type:              doc.Type,
		Title:             doc.Title,
		InvoiceNumber:     doc.InvoiceNumber,
		Amount:            doc.Amount,
		Currency:          doc.Currency,
		DueDate:           doc.DueDate,
		PaymentStatus:     doc.PaymentStatus,
		RequiresSignature: doc.RequiresSignature,
		Signed:            doc.Signed,
		SignedBy:          doc.SignedBy,
		SignedAt:          doc.SignedAt,
		VerifiedBy:        doc.VerifiedBy,
		VerifiedAt:        doc.VerifiedAt,
		PaidAt:            doc.PaidAt,
		GatewayTxnID:      doc.GatewayTxnID,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}

func toResponseList(docs []*document.Document) []documentResponse {
	resp := make([]documentResponse, len(docs))
	for i, doc := range docs {
		resp[i] = toResponse(doc)
	}

	return resp
}
