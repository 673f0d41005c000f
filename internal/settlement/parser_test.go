package settlement_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightfold/portal/internal/settlement"
)

func TestParser_Parse(t *testing.T) {
	report := strings.Join([]string{
		"payment_id,order_id,amount,currency,invoice_number,captured_at",
		"pay_001,order_100,500.00,inr,INV-001,2025-10-01T10:00:00Z",
		"pay_002,order_101,1250.50,INR,INV-002,",
	}, "\n")

	rows, err := settlement.NewParser().Parse(strings.NewReader(report))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "pay_001", rows[0].PaymentID)
	assert.Equal(t, "order_100", rows[0].OrderID)
	assert.Equal(t, "INV-001", rows[0].InvoiceNumber)
	assert.Equal(t, int64(50000), rows[0].Amount)
	assert.Equal(t, "INR", rows[0].Currency)
	assert.Equal(t, time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC), rows[0].CapturedAt)

	assert.Equal(t, int64(125050), rows[1].Amount)
	assert.True(t, rows[1].CapturedAt.IsZero())
}

func TestParser_Parse_ShuffledColumns(t *testing.T) {
	report := strings.Join([]string{
		"Invoice_Number, Amount ,payment_id,currency",
		"INV-003,42.00,pay_003,usd",
	}, "\n")

	rows, err := settlement.NewParser().Parse(strings.NewReader(report))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "INV-003", rows[0].InvoiceNumber)
	assert.Equal(t, int64(4200), rows[0].Amount)
	assert.Equal(t, "USD", rows[0].Currency)
}

func TestParser_Parse_MissingColumn(t *testing.T) {
	report := "payment_id,amount,currency\npay_001,10.00,INR"

	_, err := settlement.NewParser().Parse(strings.NewReader(report))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice_number")
}

func TestParser_Parse_BadAmount(t *testing.T) {
	report := strings.Join([]string{
		"payment_id,amount,currency,invoice_number",
		"pay_001,ten rupees,INR,INV-001",
	}, "\n")

	_, err := settlement.NewParser().Parse(strings.NewReader(report))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestParser_Parse_Empty(t *testing.T) {
	rows, err := settlement.NewParser().Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
