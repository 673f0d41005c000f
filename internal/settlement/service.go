package settlement

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/brightfold/portal/internal/gateway"
	"github.com/brightfold/portal/internal/reconcile"
)

// Reconciler replays capture events; satisfied by the reconcile service.
type Reconciler interface {
	ReplayCapture(ctx context.Context, evt *gateway.WebhookEvent) (*reconcile.Result, error)
}

// ImportResult summarizes one report import.
type ImportResult struct {
	Applied  int
	Replayed int
	Failed   []RowError
}

type RowError struct {
	Row Row
	Err error
}

type Service struct {
	parser     *Parser
	reconciler Reconciler
}

func NewService(reconciler Reconciler) *Service {
	return &Service{parser: NewParser(), reconciler: reconciler}
}

// Import parses a settlement report and replays every row through
// reconciliation. Rows already in the ledger count as replayed; rows that
// fail (unknown invoice reference, persistence errors) are collected so the
// operator can fix and re-import, which is safe at any time.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing settlement report: %w", err)
	}

	result := &ImportResult{}

	for _, row := range rows {
		evt := &gateway.WebhookEvent{
			Event:   gateway.EventPaymentCaptured,
			OrderID: row.OrderID,
			Notes:   map[string]string{"invoice_number": row.InvoiceNumber},
		}
		evt.Payment.ID = row.PaymentID
		evt.Payment.Amount = row.Amount
		evt.Payment.Currency = row.Currency

		res, err := s.reconciler.ReplayCapture(ctx, evt)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}

			result.Failed = append(result.Failed, RowError{Row: row, Err: err})

			continue
		}

		if res.Replayed {
			result.Replayed++
		} else {
			result.Applied++
		}
	}

	return result, nil
}
