package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/brightfold/portal/internal/money"
	"github.com/brightfold/portal/internal/payment"
)

// Service prepares payment ledger statements for the accountant.
type Service struct {
	payments *payment.Service
}

func NewService(payments *payment.Service) *Service {
	return &Service{payments: payments}
}

// Statement is the ledger slice handed to accounting, with per-currency
// totals over the settled records.
type Statement struct {
	Records []*payment.Record
	Totals  map[string]int64
}

// Build lists the matching ledger records and sums the settled ones per
// currency. Totals never mix currencies.
func (s *Service) Build(ctx context.Context, filter payment.ListFilter) (*Statement, error) {
	records, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing payment records: %w", err)
	}

	totals := make(map[string]int64)

	for _, rec := range records {
		if rec.Status == payment.StatusPaid {
			totals[rec.Currency] += rec.Amount
		}
	}

	return &Statement{Records: records, Totals: totals}, nil
}

// WriteCSV renders the statement in the layout the accountant's tooling
// expects. Amounts are decimal strings, not minor units.
func (s *Service) WriteCSV(stmt *Statement, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "transaction_id", "method", "status", "amount", "currency", "verified_by", "notes"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, rec := range stmt.Records {
		row := []string{
			rec.CreatedAt.Format("2006-01-02"),
			rec.TransactionID,
			string(rec.Method),
			string(rec.Status),
			formatDecimal(rec.Amount),
			rec.Currency,
			rec.VerifiedBy,
			rec.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// EmailBody creates a formatted summary to paste into the monthly mail to
// accounting.
func (s *Service) EmailBody(stmt *Statement) string {
	var sb strings.Builder

	for _, rec := range stmt.Records {
		date := rec.CreatedAt.Format("2006-01-02")
		amount := money.New(rec.Amount, rec.Currency)

		ref := rec.TransactionID
		if ref == "" {
			ref = string(rec.Method)
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s | %s\n", date, ref, amount, rec.Status))
	}

	for currency, total := range stmt.Totals {
		sb.WriteString(fmt.Sprintf("Settled total: %s\n", money.New(total, currency)))
	}

	return sb.String()
}

func formatDecimal(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
