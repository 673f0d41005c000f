package project

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brightfold/portal/internal/money"
)

// CurrencyTotal is the settled invoice sum for one currency.
type CurrencyTotal struct {
	Currency string
	Total    int64
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=project
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	ListProjects(ctx context.Context, clientID *uuid.UUID) ([]*Project, error)

	// SettledInvoiceTotals sums invoice amounts per currency for the
	// project's documents in verified or paid status.
	SettledInvoiceTotals(ctx context.Context, projectID uuid.UUID) ([]CurrencyTotal, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ClientID uuid.UUID
	Name     string
	Cost     *int64
	Currency string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
	p := &Project{
		ClientID: params.ClientID,
		Name:     params.Name,
		Cost:     params.Cost,
		Currency: params.Currency,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) List(ctx context.Context, clientID *uuid.UUID) ([]*Project, error) {
	return s.repo.ListProjects(ctx, clientID)
}

func (s *Service) SetCost(ctx context.Context, id uuid.UUID, cost int64, currency string) (*Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Cost = &cost
	p.Currency = currency

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// ReleaseDecision says whether deliverables may go out, and how much money
// is still outstanding when they may not.
type ReleaseDecision struct {
	Allowed   bool
	Remaining money.Amount
}

// CanReleaseDeliverables compares settled invoice totals against the agreed
// project cost. It fails closed: no cost means no release, and invoices in
// more than one currency are an error rather than a unit-blind sum.
func (s *Service) CanReleaseDeliverables(ctx context.Context, projectID uuid.UUID) (*ReleaseDecision, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if p.Cost == nil {
		return nil, ErrCostNotSet
	}

	totals, err := s.repo.SettledInvoiceTotals(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("summing settled invoices: %w", err)
	}

	var settled int64

	for _, t := range totals {
		if t.Currency != p.Currency {
			return nil, fmt.Errorf("%w: project in %s, invoices in %s", ErrMixedCurrency, p.Currency, t.Currency)
		}

		settled += t.Total
	}

	remaining := *p.Cost - settled
	if remaining < 0 {
		remaining = 0
	}

	return &ReleaseDecision{
		Allowed:   settled >= *p.Cost,
		Remaining: money.New(remaining, p.Currency),
	}, nil
}
