package export_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/brightfold/portal/internal/export"
	"github.com/brightfold/portal/internal/payment"
)

func ledger() []*payment.Record {
	created := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)

	return []*payment.Record{
		{
			ID:            uuid.New(),
			Amount:        50000,
			Currency:      "INR",
			Method:        payment.MethodGateway,
			TransactionID: "pay_001",
			Status:        payment.StatusPaid,
			VerifiedBy:    "gateway",
			CreatedAt:     created,
		},
		{
			ID:        uuid.New(),
			Amount:    30000,
			Currency:  "INR",
			Method:    payment.MethodBankTransfer,
			Status:    payment.StatusSubmitted,
			Notes:     "awaiting bank statement",
			CreatedAt: created.Add(24 * time.Hour),
		},
		{
			ID:            uuid.New(),
			Amount:        200,
			Currency:      "USD",
			Method:        payment.MethodGateway,
			TransactionID: "pay_002",
			Status:        payment.StatusPaid,
			VerifiedBy:    "gateway",
			CreatedAt:     created.Add(48 * time.Hour),
		},
	}
}

func newService(t *testing.T) *export.Service {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := payment.NewMockRepository(ctrl)
	repo.EXPECT().
		ListRecords(gomock.Any(), payment.ListFilter{}).
		Return(ledger(), nil)

	return export.NewService(payment.NewService(repo))
}

func TestService_Build(t *testing.T) {
	svc := newService(t)

	stmt, err := svc.Build(context.Background(), payment.ListFilter{})
	require.NoError(t, err)

	assert.Len(t, stmt.Records, 3)

	// Only settled records count, and currencies never merge.
	assert.Equal(t, int64(50000), stmt.Totals["INR"])
	assert.Equal(t, int64(200), stmt.Totals["USD"])
}

func TestService_WriteCSV(t *testing.T) {
	svc := newService(t)

	stmt, err := svc.Build(context.Background(), payment.ListFilter{})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, svc.WriteCSV(stmt, &sb))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "date,transaction_id,method,status,amount,currency,verified_by,notes", lines[0])
	assert.Equal(t, "2025-10-01,pay_001,gateway,paid,500.00,INR,gateway,", lines[1])
	assert.Equal(t, "2025-10-02,,bank_transfer,submitted,300.00,INR,,awaiting bank statement", lines[2])
	assert.Equal(t, "2025-10-03,pay_002,gateway,paid,2.00,USD,gateway,", lines[3])
}

func TestService_EmailBody(t *testing.T) {
	svc := newService(t)

	stmt, err := svc.Build(context.Background(), payment.ListFilter{})
	require.NoError(t, err)

	body := svc.EmailBody(stmt)

	assert.Contains(t, body, "* 2025-10-01 | pay_001 | INR 500.00 | paid")
	assert.Contains(t, body, "* 2025-10-02 | bank_transfer | INR 300.00 | submitted")
	assert.Contains(t, body, "Settled total: INR 500.00")
	assert.Contains(t, body, "Settled total: USD 2.00")
}
