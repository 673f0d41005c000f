package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/brightfold/portal/internal/document"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectDocumentColumns = `
	d.id, d.project_id, d.client_id, d.type, d.title, d.file_key, d.invoice_number,
	d.amount, d.currency, d.due_date, d.payment_status, d.requires_signature,
	d.signed, d.signed_by, d.signed_at, d.verified_by, d.verified_at, d.paid_at,
	d.gateway_txn_id, d.created_at, d.updated_at, d.deleted_at
`

func scanDocument(s scanner) (*document.Document, error) {
	var doc document.Document

	var typeStr, statusStr string

	var invoiceNumber, signedBy, verifiedBy, gatewayTxnID sql.NullString

	if err := s.Scan(
		&doc.ID, &doc.ProjectID, &doc.ClientID, &typeStr, &doc.Title, &doc.FileKey, &invoiceNumber,
		&doc.Amount, &doc.Currency, &doc.DueDate, &statusStr, &doc.RequiresSignature,
		&doc.Signed, &signedBy, &doc.SignedAt, &verifiedBy, &doc.VerifiedAt, &doc.PaidAt,
		&gatewayTxnID, &doc.CreatedAt, &doc.UpdatedAt, &doc.DeletedAt,
	); err != nil {
		return nil, err
	}

	doc.Type = document.Type(typeStr)
	doc.PaymentStatus = document.PaymentStatus(statusStr)
	doc.InvoiceNumber = invoiceNumber.String
	doc.SignedBy = signedBy.String
	doc.VerifiedBy = verifiedBy.String
	doc.GatewayTxnID = gatewayTxnID.String

	return &doc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) CreateDocument(ctx context.Context, doc *document.Document) error {
	query := `
		INSERT INTO documents (project_id, client_id, type, title, file_key, invoice_number,
			amount, currency, due_date, payment_status, requires_signature, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		doc.ProjectID,
		doc.ClientID,
		doc.Type,
		doc.Title,
		doc.FileKey,
		nullString(doc.InvoiceNumber),
		doc.Amount,
		doc.Currency,
		doc.DueDate,
		doc.PaymentStatus,
		doc.RequiresSignature,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}

	return nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + `
		FROM documents d
		WHERE d.id = $1 AND d.deleted_at IS NULL`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, document.ErrNotFound
		}

		return nil, fmt.Errorf("getting document: %w", err)
	}

	return doc, nil
}

func (s *Store) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + `
		FROM documents d
		WHERE d.invoice_number = $1 AND d.deleted_at IS NULL`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, invoiceNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, document.ErrNotFound
		}

		return nil, fmt.Errorf("getting document by invoice number: %w", err)
	}

	return doc, nil
}

func (s *Store) UpdateDocument(ctx context.Context, doc *document.Document) error {
	query := `
		UPDATE documents
		SET payment_status = $1, signed = $2, signed_by = $3, signed_at = $4,
			verified_by = $5, verified_at = $6, paid_at = $7, gateway_txn_id = $8,
			title = $9, file_key = $10, due_date = $11, updated_at = NOW()
		WHERE id = $12 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.PaymentStatus,
		doc.Signed,
		nullString(doc.SignedBy),
		doc.SignedAt,
		nullString(doc.VerifiedBy),
		doc.VerifiedAt,
		doc.PaidAt,
		nullString(doc.GatewayTxnID),
		doc.Title,
		doc.FileKey,
		doc.DueDate,
		doc.ID,
	)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}

	return nil
}

func (s *Store) ListDocuments(ctx context.Context, filter document.ListFilter) ([]*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + `
		FROM documents d
		WHERE d.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND d.project_id = $%d", argIdx)

		args = append(args, *filter.ProjectID)
		argIdx++
	}

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND d.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND d.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND d.payment_status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	query += " ORDER BY d.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.Document

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

func (s *Store) HasSettledPayment(ctx context.Context, documentID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE document_id = $1 AND status IN ('verified', 'paid')
		)
	`

	var backed bool
	if err := s.db.QueryRowContext(ctx, query, documentID).Scan(&backed); err != nil {
		return false, fmt.Errorf("checking settled payment: %w", err)
	}

	return backed, nil
}
