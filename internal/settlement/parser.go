// Package settlement imports the gateway's settlement report CSV. A report
// row is the authoritative record of a capture, so importing one replays
// any webhook the portal missed; idempotent reconciliation makes re-imports
// harmless.
package settlement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brightfold/portal/internal/encoding"
)

const (
	colPaymentID     = "payment_id"
	colOrderID       = "order_id"
	colAmount        = "amount"
	colCurrency      = "currency"
	colInvoiceNumber = "invoice_number"
	colCapturedAt    = "captured_at"
)

// Row is one settled capture from the report.
type Row struct {
	PaymentID     string
	OrderID       string
	InvoiceNumber string
	Amount        int64 // minor units
	Currency      string
	CapturedAt    time.Time
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a settlement report. The gateway exports these in whatever
// encoding the operator's spreadsheet tool last saved, so the input is
// sniffed and normalized to UTF-8 first.
func (p *Parser) Parse(r io.Reader) ([]Row, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading settlement csv: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	idx := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		idx[strings.TrimSpace(strings.ToLower(col))] = i
	}

	for _, required := range []string{colPaymentID, colAmount, colCurrency, colInvoiceNumber} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("settlement csv missing column %q", required)
		}
	}

	var rows []Row

	for n, record := range records[1:] {
		row, err := parseRow(record, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(record []string, idx map[string]int) (Row, error) {
	field := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}

		return strings.TrimSpace(record[i])
	}

	paymentID := field(colPaymentID)
	if paymentID == "" {
		return Row{}, fmt.Errorf("empty %s", colPaymentID)
	}

	amount, err := parseAmount(field(colAmount))
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount: %w", err)
	}

	row := Row{
		PaymentID:     paymentID,
		OrderID:       field(colOrderID),
		InvoiceNumber: field(colInvoiceNumber),
		Amount:        amount,
		Currency:      strings.ToUpper(field(colCurrency)),
	}

	if ts := field(colCapturedAt); ts != "" {
		capturedAt, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return Row{}, fmt.Errorf("parsing captured_at: %w", err)
		}

		row.CapturedAt = capturedAt
	}

	return row, nil
}

// parseAmount converts a decimal amount string ("500.00") to minor units.
// Decimal string arithmetic keeps paise exact; float64 would not.
func parseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
