package reconcile_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/brightfold/portal/internal/document"
	"github.com/brightfold/portal/internal/gateway"
	"github.com/brightfold/portal/internal/payment"
	"github.com/brightfold/portal/internal/reconcile"
	"github.com/brightfold/portal/internal/signature"
)

const webhookSecret = "whsec_test"

func capturedBody(t *testing.T, paymentID, invoiceNumber string, amount int64) []byte {
	t.Helper()

	evt := map[string]any{
		"event":    gateway.EventPaymentCaptured,
		"order_id": "order_777",
		"payment": map[string]any{
			"id":       paymentID,
			"amount":   amount,
			"currency": "INR",
		},
		"notes": map[string]string{"invoice_number": invoiceNumber},
	}

	body, err := json.Marshal(evt)
	require.NoError(t, err)

	return body
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}

func newService(repo reconcile.Repository) *reconcile.Service {
	return reconcile.NewService(signature.NewVerifier(webhookSecret), repo, nil)
}

func TestService_Reconcile_AppliesCapture(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	doc := &document.Document{
		ID:            uuid.New(),
		ClientID:      uuid.New(),
		Type:          document.TypeInvoice,
		InvoiceNumber: "INV-001",
		Amount:        50000,
		Currency:      "INR",
		PaymentStatus: document.StatusPending,
	}

	repo := reconcile.NewMockRepository(ctrl)
	tx := reconcile.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().
		GetRecordByTransactionID(gomock.Any(), gateway.Identity, "pay_001").
		Return(nil, payment.ErrNotFound)
	tx.EXPECT().GetDocumentByInvoiceNumber(gomock.Any(), "INV-001").Return(doc, nil)
	tx.EXPECT().
		CreateRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *payment.Record) error {
			rec.ID = uuid.New()
			return nil
		})
	tx.EXPECT().UpdateDocument(gomock.Any(), doc).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	svc := newService(repo)

	body := capturedBody(t, "pay_001", "INV-001", 50000)
	result, err := svc.Reconcile(context.Background(), body, signBody(body))

	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.False(t, result.Ignored)

	require.NotNil(t, result.Record)
	assert.Equal(t, payment.StatusPaid, result.Record.Status)
	assert.Equal(t, payment.MethodGateway, result.Record.Method)
	assert.Equal(t, "pay_001", result.Record.TransactionID)
	assert.Equal(t, int64(50000), result.Record.Amount)
	assert.Equal(t, doc.ID, result.Record.DocumentID)

	require.NotNil(t, result.Document)
	assert.Equal(t, document.StatusPaid, result.Document.PaymentStatus)
	assert.Equal(t, "pay_001", result.Document.GatewayTxnID)
	assert.NotNil(t, result.Document.PaidAt)
	assert.Equal(t, gateway.Identity, result.Document.VerifiedBy)
}

func TestService_Reconcile_RejectsMismatchedCapture(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
	}{
		{name: "partial amount", amount: 100, currency: "INR"},
		{name: "overpayment", amount: 60000, currency: "INR"},
		{name: "wrong currency", amount: 50000, currency: "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			doc := &document.Document{
				ID:            uuid.New(),
				ClientID:      uuid.New(),
				Type:          document.TypeInvoice,
				InvoiceNumber: "INV-001",
				Amount:        50000,
				Currency:      "INR",
				PaymentStatus: document.StatusPending,
			}

			repo := reconcile.NewMockRepository(ctrl)
			tx := reconcile.NewMockTx(ctrl)

			// No CreateRecord, no UpdateDocument: a capture that does not
			// match the invoice must leave everything untouched.
			repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
			tx.EXPECT().
				GetRecordByTransactionID(gomock.Any(), gateway.Identity, "pay_001").
				Return(nil, payment.ErrNotFound)
			tx.EXPECT().GetDocumentByInvoiceNumber(gomock.Any(), "INV-001").Return(doc, nil)
			tx.EXPECT().Rollback().Return(nil)

			svc := newService(repo)

			evt := &gateway.WebhookEvent{Event: gateway.EventPaymentCaptured}
			evt.Payment.ID = "pay_001"
			evt.Payment.Amount = tt.amount
			evt.Payment.Currency = tt.currency
			evt.Notes = map[string]string{"invoice_number": "INV-001"}

			result, err := svc.ReplayCapture(context.Background(), evt)

			assert.ErrorIs(t, err, reconcile.ErrAmountMismatch)
			assert.Nil(t, result)
			assert.Equal(t, document.StatusPending, doc.PaymentStatus)
			assert.Nil(t, doc.PaidAt)
		})
	}
}

func TestService_ReplayCapture_PaidDocumentKeepsSettlement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	firstPaid := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	doc := &document.Document{
		ID:            uuid.New(),
		ClientID:      uuid.New(),
		Type:          document.TypeInvoice,
		InvoiceNumber: "INV-001",
		Amount:        50000,
		Currency:      "INR",
		PaymentStatus: document.StatusPaid,
		GatewayTxnID:  "pay_001",
		PaidAt:        &firstPaid,
	}

	repo := reconcile.NewMockRepository(ctrl)
	tx := reconcile.NewMockTx(ctrl)

	// A second capture under a fresh transaction id is ledgered for the
	// books, but the document keeps its original settlement.
	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().
		GetRecordByTransactionID(gomock.Any(), gateway.Identity, "pay_002").
		Return(nil, payment.ErrNotFound)
	tx.EXPECT().GetDocumentByInvoiceNumber(gomock.Any(), "INV-001").Return(doc, nil)
	tx.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	svc := newService(repo)

	evt, err := gateway.ParseWebhookEvent(capturedBody(t, "pay_002", "INV-001", 50000))
	require.NoError(t, err)

	result, err := svc.ReplayCapture(context.Background(), evt)

	require.NoError(t, err)
	assert.Equal(t, "pay_001", doc.GatewayTxnID)
	require.NotNil(t, doc.PaidAt)
	assert.Equal(t, firstPaid, *doc.PaidAt)

	require.NotNil(t, result.Record)
	assert.Equal(t, "pay_002", result.Record.TransactionID)
}

func TestService_Reconcile_ReplayIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := &payment.Record{
		ID:            uuid.New(),
		TransactionID: "pay_001",
		Status:        payment.StatusPaid,
	}

	repo := reconcile.NewMockRepository(ctrl)
	svc := newService(repo)

	body := capturedBody(t, "pay_001", "INV-001", 50000)
	sig := signBody(body)

	// Deliver the same event several times; each delivery succeeds without
	// touching the document or the ledger again.
	for range 3 {
		tx := reconcile.NewMockTx(ctrl)
		repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
		tx.EXPECT().
			GetRecordByTransactionID(gomock.Any(), gateway.Identity, "pay_001").
			Return(existing, nil)
		tx.EXPECT().Rollback().Return(nil)

		result, err := svc.Reconcile(context.Background(), body, sig)

		require.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.Equal(t, existing, result.Record)
	}
}

func TestService_Reconcile_RaceLoserIsReplay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	doc := &document.Document{
		ID:            uuid.New(),
		InvoiceNumber: "INV-001",
		Amount:        50000,
		Currency:      "INR",
		PaymentStatus: document.StatusPending,
	}

	repo := reconcile.NewMockRepository(ctrl)
	tx := reconcile.NewMockTx(ctrl)

	// The pre-check misses the concurrent delivery; the unique index on the
	// transaction id catches it at insert time.
	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().
		GetRecordByTransactionID(gomock.Any(), gateway.Identity, "pay_001").
		Return(nil, payment.ErrNotFound)
	tx.EXPECT().GetDocumentByInvoiceNumber(gomock.Any(), "INV-001").Return(doc, nil)
	tx.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(payment.ErrDuplicateTransaction)
	tx.EXPECT().Rollback().Return(nil)

	svc := newService(repo)

	body := capturedBody(t, "pay_001", "INV-001", 50000)
	result, err := svc.Reconcile(context.Background(), body, signBody(body))

	require.NoError(t, err)
	assert.True(t, result.Replayed)
}

func TestService_Reconcile_BadSignatureTouchesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No repository expectations: a bad signature must fail before any
	// state is read or written.
	repo := reconcile.NewMockRepository(ctrl)
	svc := newService(repo)

	body := capturedBody(t, "pay_001", "INV-001", 50000)

	tampered := append([]byte{}, body...)
	tampered[len(tampered)-2] = 'X'

	result, err := svc.Reconcile(context.Background(), tampered, signBody(body))

	assert.ErrorIs(t, err, signature.ErrInvalidSignature)
	assert.Nil(t, result)
}

func TestService_Reconcile_IgnoresOtherEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconcile.NewMockRepository(ctrl)
	svc := newService(repo)

	body := []byte(`{"event":"payment.authorized","payment":{"id":"pay_001"}}`)
	result, err := svc.Reconcile(context.Background(), body, signBody(body))

	require.NoError(t, err)
	assert.True(t, result.Ignored)
}

func TestService_Reconcile_UnknownInvoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconcile.NewMockRepository(ctrl)
	tx := reconcile.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().
		GetRecordByTransactionID(gomock.Any(), gateway.Identity, "pay_001").
		Return(nil, payment.ErrNotFound)
	tx.EXPECT().GetDocumentByInvoiceNumber(gomock.Any(), "INV-404").Return(nil, document.ErrNotFound)
	tx.EXPECT().Rollback().Return(nil)

	svc := newService(repo)

	body := capturedBody(t, "pay_001", "INV-404", 50000)
	result, err := svc.Reconcile(context.Background(), body, signBody(body))

	assert.ErrorIs(t, err, reconcile.ErrDocumentNotFound)
	assert.Nil(t, result)
}

func TestService_Reconcile_MissingInvoiceReference(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := reconcile.NewMockRepository(ctrl)
	svc := newService(repo)

	body := []byte(`{"event":"payment.captured","payment":{"id":"pay_001","amount":100,"currency":"INR"},"notes":{}}`)
	result, err := svc.Reconcile(context.Background(), body, signBody(body))

	assert.ErrorIs(t, err, reconcile.ErrDocumentNotFound)
	assert.Nil(t, result)
}

func TestService_ReplayCapture_DisputedDocumentBlocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	doc := &document.Document{
		ID:            uuid.New(),
		InvoiceNumber: "INV-001",
		Amount:        50000,
		Currency:      "INR",
		PaymentStatus: document.StatusDisputed,
	}

	repo := reconcile.NewMockRepository(ctrl)
	tx := reconcile.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().
		GetRecordByTransactionID(gomock.Any(), gateway.Identity, "pay_001").
		Return(nil, payment.ErrNotFound)
	tx.EXPECT().GetDocumentByInvoiceNumber(gomock.Any(), "INV-001").Return(doc, nil)
	tx.EXPECT().
		CreateRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *payment.Record) error {
			rec.ID = uuid.New()
			return nil
		})
	tx.EXPECT().Rollback().Return(nil)

	svc := newService(repo)

	evt, err := gateway.ParseWebhookEvent(capturedBody(t, "pay_001", "INV-001", 50000))
	require.NoError(t, err)

	_, err = svc.ReplayCapture(context.Background(), evt)

	// A capture never resolves a dispute; an admin has to.
	assert.ErrorIs(t, err, reconcile.ErrUnreconcilable)
}

func TestService_ReplayCapture_SetsVerificationTimestamps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC)

	doc := &document.Document{
		ID:            uuid.New(),
		InvoiceNumber: "INV-001",
		Amount:        50000,
		Currency:      "INR",
		PaymentStatus: document.StatusSubmitted,
	}

	repo := reconcile.NewMockRepository(ctrl)
	tx := reconcile.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().
		GetRecordByTransactionID(gomock.Any(), gateway.Identity, "pay_001").
		Return(nil, payment.ErrNotFound)
	tx.EXPECT().GetDocumentByInvoiceNumber(gomock.Any(), "INV-001").Return(doc, nil)
	tx.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().UpdateDocument(gomock.Any(), doc).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	svc := newService(repo)
	reconcile.SetClock(svc, func() time.Time { return now })

	evt, err := gateway.ParseWebhookEvent(capturedBody(t, "pay_001", "INV-001", 50000))
	require.NoError(t, err)

	result, err := svc.ReplayCapture(context.Background(), evt)

	require.NoError(t, err)
	require.NotNil(t, result.Document.VerifiedAt)
	assert.Equal(t, now, *result.Document.VerifiedAt)
	require.NotNil(t, result.Document.PaidAt)
	assert.Equal(t, now, *result.Document.PaidAt)
	require.NotNil(t, result.Record.VerifiedAt)
	assert.Equal(t, now, *result.Record.VerifiedAt)
}
