package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/brightfold/portal/internal/document"
	"github.com/brightfold/portal/internal/payment"
	"github.com/brightfold/portal/internal/reconcile"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Begin opens one reconciliation transaction. Ledger insert and document
// update share it, so a partial reconciliation can never commit.
func (s *Store) Begin(ctx context.Context) (reconcile.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning reconcile tx: %w", err)
	}

	return &reconcileTx{tx: dbTx}, nil
}

type reconcileTx struct {
	tx *sql.Tx
}

func (rtx *reconcileTx) Commit() error   { return rtx.tx.Commit() }
func (rtx *reconcileTx) Rollback() error { return rtx.tx.Rollback() }

func (rtx *reconcileTx) GetRecordByTransactionID(ctx context.Context, gateway, transactionID string) (*payment.Record, error) {
	query := `
		SELECT p.id, p.document_id, p.client_id, p.amount, p.currency, p.status
		FROM payments p
		WHERE p.gateway = $1 AND p.transaction_id = $2
	`

	var rec payment.Record

	var statusStr string

	err := rtx.tx.QueryRowContext(ctx, query, gateway, transactionID).Scan(
		&rec.ID, &rec.DocumentID, &rec.ClientID, &rec.Amount, &rec.Currency, &statusStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrNotFound
		}

		return nil, fmt.Errorf("getting record by transaction id: %w", err)
	}

	rec.Gateway = gateway
	rec.TransactionID = transactionID
	rec.Status = payment.Status(statusStr)

	return &rec, nil
}

// GetDocumentByInvoiceNumber locks the document row for the rest of the
// transaction so two concurrent deliveries serialize on it.
func (rtx *reconcileTx) GetDocumentByInvoiceNumber(ctx context.Context, invoiceNumber string) (*document.Document, error) {
	query := `
		SELECT d.id, d.project_id, d.client_id, d.type, d.invoice_number,
			d.amount, d.currency, d.payment_status, d.verified_at, d.paid_at
		FROM documents d
		WHERE d.invoice_number = $1 AND d.deleted_at IS NULL
		FOR UPDATE
	`

	var doc document.Document

	var typeStr, statusStr string

	err := rtx.tx.QueryRowContext(ctx, query, invoiceNumber).Scan(
		&doc.ID, &doc.ProjectID, &doc.ClientID, &typeStr, &doc.InvoiceNumber,
		&doc.Amount, &doc.Currency, &statusStr, &doc.VerifiedAt, &doc.PaidAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, document.ErrNotFound
		}

		return nil, fmt.Errorf("getting document by invoice number: %w", err)
	}

	doc.Type = document.Type(typeStr)
	doc.PaymentStatus = document.PaymentStatus(statusStr)

	return &doc, nil
}

func (rtx *reconcileTx) CreateRecord(ctx context.Context, rec *payment.Record) error {
	query := `
		INSERT INTO payments (document_id, client_id, amount, currency, method, gateway,
			transaction_id, status, verified_by, verified_at, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at
	`

	err := rtx.tx.QueryRowContext(ctx, query,
		rec.DocumentID,
		rec.ClientID,
		rec.Amount,
		rec.Currency,
		rec.Method,
		rec.Gateway,
		rec.TransactionID,
		rec.Status,
		rec.VerifiedBy,
		rec.VerifiedAt,
		sql.NullString{String: rec.Notes, Valid: rec.Notes != ""},
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return payment.ErrDuplicateTransaction
		}

		return fmt.Errorf("creating payment record: %w", err)
	}

	return nil
}

func (rtx *reconcileTx) UpdateDocument(ctx context.Context, doc *document.Document) error {
	query := `
		UPDATE documents
		SET payment_status = $1, verified_by = $2, verified_at = $3, paid_at = $4,
			gateway_txn_id = $5, updated_at = NOW()
		WHERE id = $6 AND deleted_at IS NULL
	`

	_, err := rtx.tx.ExecContext(ctx, query,
		doc.PaymentStatus,
		sql.NullString{String: doc.VerifiedBy, Valid: doc.VerifiedBy != ""},
		doc.VerifiedAt,
		doc.PaidAt,
		sql.NullString{String: doc.GatewayTxnID, Valid: doc.GatewayTxnID != ""},
		doc.ID,
	)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}

	return nil
}
