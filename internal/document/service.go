package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=document
type Repository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Document, error)
	UpdateDocument(ctx context.Context, doc *Document) error
	ListDocuments(ctx context.Context, filter ListFilter) ([]*Document, error)

	// HasSettledPayment reports whether a payment record in a verified or
	// paid state references the document.
	HasSettledPayment(ctx context.Context, documentID uuid.UUID) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ProjectID         uuid.UUID
	ClientID          uuid.UUID
	Type              Type
	Title             string
	FileKey           string
	InvoiceNumber     string
	Amount            int64
	Currency          string
	DueDate           *time.Time
	RequiresSignature bool
}

type ListFilter struct {
	ProjectID *uuid.UUID
	ClientID  *uuid.UUID
	Type      *Type
	Status    *PaymentStatus
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Document, error) {
	if params.Type == TypeInvoice && params.RequiresSignature {
		return nil, ErrNotSignable
	}

	doc := &Document{
		ProjectID:         params.ProjectID,
		ClientID:          params.ClientID,
		Type:              params.Type,
		Title:             params.Title,
		FileKey:           params.FileKey,
		InvoiceNumber:     params.InvoiceNumber,
		Amount:            params.Amount,
		Currency:          params.Currency,
		DueDate:           params.DueDate,
		PaymentStatus:     StatusPending,
		RequiresSignature: params.RequiresSignature,
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetDocument(ctx, id)
}

func (s *Service) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Document, error) {
	return s.repo.GetByInvoiceNumber(ctx, invoiceNumber)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Document, error) {
	return s.repo.ListDocuments(ctx, filter)
}

// ApplyStatus moves a document one step through the payment lifecycle.
// Invalid moves fail with ErrInvalidStatusTransition and leave the document
// untouched. Entering paid additionally requires a settled payment record
// referencing the document, so the ledger can never lag behind the invoice.
func (s *Service) ApplyStatus(ctx context.Context, id uuid.UUID, newStatus PaymentStatus, actor string, ts time.Time) (*Document, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(doc.PaymentStatus, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, doc.PaymentStatus, newStatus)
	}

	if newStatus == StatusPaid {
		backed, err := s.repo.HasSettledPayment(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("checking backing payment: %w", err)
		}

		if !backed {
			return nil, ErrNoBackingPayment
		}

		doc.PaidAt = &ts
	}

	if newStatus == StatusVerified {
		doc.VerifiedBy = actor
		doc.VerifiedAt = &ts
	}

	doc.PaymentStatus = newStatus
	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// Sign records the client signature on a document. Invoices are never
// signable regardless of the requires-signature flag.
func (s *Service) Sign(ctx context.Context, id uuid.UUID, actor string, ts time.Time) (*Document, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.IsInvoice() {
		return nil, ErrNotSignable
	}

	if !doc.RequiresSignature {
		return nil, ErrSignatureNotRequired
	}

	if doc.Signed {
		return nil, ErrAlreadySigned
	}

	doc.Signed = true
	doc.SignedBy = actor
	doc.SignedAt = &ts

	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}
