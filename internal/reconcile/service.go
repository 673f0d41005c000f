package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightfold/portal/internal/document"
	"github.com/brightfold/portal/internal/gateway"
	"github.com/brightfold/portal/internal/notify"
	"github.com/brightfold/portal/internal/payment"
	"github.com/brightfold/portal/internal/signature"
)

var (
	ErrDocumentNotFound = errors.New("no document matches the invoice reference")
	ErrUnreconcilable   = errors.New("document cannot accept a capture in its current state")
	ErrAmountMismatch   = errors.New("capture does not match the invoice amount")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reconcile
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single reconciliation transaction. Both the ledger insert and the
// document update commit together or not at all; the store also enforces
// transaction-id uniqueness so two racing deliveries cannot both commit.
type Tx interface {
	GetRecordByTransactionID(ctx context.Context, gw, transactionID string) (*payment.Record, error)
	GetDocumentByInvoiceNumber(ctx context.Context, invoiceNumber string) (*document.Document, error)
	CreateRecord(ctx context.Context, rec *payment.Record) error
	UpdateDocument(ctx context.Context, doc *document.Document) error
	Commit() error
	Rollback() error
}

// Result reports what a reconciliation attempt did.
type Result struct {
	Replayed bool // event was already applied; nothing changed
	Ignored  bool // event type is not a capture
	Document *document.Document
	Record   *payment.Record
}

type Service struct {
	verifier   *signature.Verifier
	repo       Repository
	dispatcher *notify.Dispatcher
	now        func() time.Time
}

func NewService(verifier *signature.Verifier, repo Repository, dispatcher *notify.Dispatcher) *Service {
	return &Service{
		verifier:   verifier,
		repo:       repo,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Reconcile applies a captured-payment webhook delivery. The signature is
// checked over the raw body before anything else; a replayed transaction id
// is a successful no-op so the gateway can redeliver arbitrarily often.
func (s *Service) Reconcile(ctx context.Context, body []byte, sig string) (*Result, error) {
	if err := s.verifier.VerifyWebhook(body, sig); err != nil {
		return nil, err
	}

	evt, err := gateway.ParseWebhookEvent(body)
	if err != nil {
		return nil, err
	}

	return s.ReplayCapture(ctx, evt)
}

// ReplayCapture applies a capture event from an already-trusted source: the
// webhook path after signature verification, or a settlement report import.
func (s *Service) ReplayCapture(ctx context.Context, evt *gateway.WebhookEvent) (*Result, error) {
	if evt.Event != gateway.EventPaymentCaptured {
		return &Result{Ignored: true}, nil
	}

	invoiceNumber := evt.InvoiceNumber()
	if invoiceNumber == "" {
		return nil, fmt.Errorf("%w: event carries no invoice reference", ErrDocumentNotFound)
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning reconciliation: %w", err)
	}
	defer tx.Rollback()

	existing, err := tx.GetRecordByTransactionID(ctx, gateway.Identity, evt.Payment.ID)
	if err != nil && !errors.Is(err, payment.ErrNotFound) {
		return nil, fmt.Errorf("checking transaction id: %w", err)
	}

	if existing != nil && existing.Status.IsTerminal() {
		return &Result{Replayed: true, Record: existing}, nil
	}

	doc, err := tx.GetDocumentByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, invoiceNumber)
		}

		return nil, fmt.Errorf("resolving invoice %s: %w", invoiceNumber, err)
	}

	if evt.Payment.Amount != doc.Amount || evt.Payment.Currency != doc.Currency {
		return nil, fmt.Errorf("%w: captured %d %s, invoice %s is %d %s",
			ErrAmountMismatch, evt.Payment.Amount, evt.Payment.Currency,
			invoiceNumber, doc.Amount, doc.Currency)
	}

	now := s.now()

	rec := &payment.Record{
		DocumentID:    doc.ID,
		ClientID:      doc.ClientID,
		Amount:        evt.Payment.Amount,
		Currency:      evt.Payment.Currency,
		Method:        payment.MethodGateway,
		Gateway:       gateway.Identity,
		TransactionID: evt.Payment.ID,
		Status:        payment.StatusPaid,
		VerifiedBy:    gateway.Identity,
		VerifiedAt:    &now,
	}
	if err := tx.CreateRecord(ctx, rec); err != nil {
		if errors.Is(err, payment.ErrDuplicateTransaction) {
			// Lost the race against a concurrent delivery of the same event.
			return &Result{Replayed: true}, nil
		}

		return nil, fmt.Errorf("recording capture: %w", err)
	}

	// A document already settled under another transaction keeps its original
	// paid_at and gateway_txn_id; the duplicate capture is ledgered and left
	// for an admin to refund.
	if doc.PaymentStatus != document.StatusPaid {
		if err := advanceToPaid(doc, now); err != nil {
			return nil, err
		}

		doc.GatewayTxnID = evt.Payment.ID
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("updating document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing reconciliation: %w", err)
	}

	s.dispatcher.Dispatch(notify.Message{
		Subject: "Payment received",
		Body:    fmt.Sprintf("Invoice %s settled by gateway transaction %s.", invoiceNumber, evt.Payment.ID),
	})

	return &Result{Document: doc, Record: rec}, nil
}

// advanceToPaid walks the document through the payment lifecycle to paid.
// A capture is submission, verification and settlement in one event, so a
// pending invoice steps through the intermediate states rather than jumping.
func advanceToPaid(doc *document.Document, now time.Time) error {
	// Disputed is deliberately absent: disputes are resolved by an admin,
	// never by an incoming capture.
	steps := map[document.PaymentStatus]document.PaymentStatus{
		document.StatusPending:   document.StatusSubmitted,
		document.StatusSubmitted: document.StatusVerified,
		document.StatusVerified:  document.StatusPaid,
	}

	for doc.PaymentStatus != document.StatusPaid {
		next, ok := steps[doc.PaymentStatus]
		if !ok || !document.CanTransition(doc.PaymentStatus, next) {
			return fmt.Errorf("%w: status %s", ErrUnreconcilable, doc.PaymentStatus)
		}

		if next == document.StatusVerified {
			doc.VerifiedBy = gateway.Identity
			doc.VerifiedAt = &now
		}

		doc.PaymentStatus = next
	}

	doc.PaidAt = &now

	return nil
}
