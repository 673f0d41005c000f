package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	CreateRecord(ctx context.Context, rec *Record) error
	GetRecord(ctx context.Context, id uuid.UUID) (*Record, error)
	GetByTransactionID(ctx context.Context, gateway, transactionID string) (*Record, error)
	UpdateRecord(ctx context.Context, rec *Record) error
	ListRecords(ctx context.Context, filter ListFilter) ([]*Record, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	DocumentID    uuid.UUID
	ClientID      uuid.UUID
	Amount        int64
	Currency      string
	Method        Method
	Gateway       string
	TransactionID string
	Status        Status
	VerifiedBy    string
	VerifiedAt    *time.Time
	Notes         string
}

type ListFilter struct {
	ClientID   *uuid.UUID
	DocumentID *uuid.UUID
	Status     *Status
}

// Create appends a ledger entry. The store enforces transaction-id
// uniqueness, so a replayed capture surfaces as ErrDuplicateTransaction
// instead of a second credit.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Record, error) {
	status := params.Status
	if status == "" {
		status = StatusCreated
	}

	rec := &Record{
		DocumentID:    params.DocumentID,
		ClientID:      params.ClientID,
		Amount:        params.Amount,
		Currency:      params.Currency,
		Method:        params.Method,
		Gateway:       params.Gateway,
		TransactionID: params.TransactionID,
		Status:        status,
		VerifiedBy:    params.VerifiedBy,
		VerifiedAt:    params.VerifiedAt,
		Notes:         params.Notes,
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetRecord(ctx, id)
}

func (s *Service) GetByTransactionID(ctx context.Context, gateway, transactionID string) (*Record, error) {
	return s.repo.GetByTransactionID(ctx, gateway, transactionID)
}

// UpdateStatus applies an admin verification action. Terminal records never
// move to another status here; paid -> failed goes through the dispute
// resolution path on a non-terminal record.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, verifier, notes string, ts time.Time) (*Record, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, rec.Status)
	}

	if !CanTransition(rec.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, rec.Status, status)
	}

	rec.Status = status
	rec.VerifiedBy = verifier
	rec.VerifiedAt = &ts

	if notes != "" {
		rec.Notes = notes
	}

	if err := s.repo.UpdateRecord(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// Annotate updates accounting notes only. Allowed on terminal records.
func (s *Service) Annotate(ctx context.Context, id uuid.UUID, notes string) (*Record, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	rec.Notes = notes
	if err := s.repo.UpdateRecord(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Record, error) {
	return s.repo.ListRecords(ctx, ListFilter{ClientID: &clientID})
}

func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*Record, error) {
	return s.repo.ListRecords(ctx, ListFilter{Status: &status})
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	return s.repo.ListRecords(ctx, filter)
}
