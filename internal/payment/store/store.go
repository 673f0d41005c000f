package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/brightfold/portal/internal/payment"
)

// uniqueViolation is the Postgres error code raised when the unique index
// on (gateway, transaction_id) rejects an insert. That index, not an
// application-level check, is what makes concurrent webhook replays safe.
const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectRecordColumns = `
	p.id, p.document_id, p.client_id, p.amount, p.currency, p.method, p.gateway,
	p.transaction_id, p.status, p.verified_by, p.verified_at, p.notes,
	p.created_at, p.updated_at
`

func scanRecord(s scanner) (*payment.Record, error) {
	var rec payment.Record

	var methodStr, statusStr string

	var gateway, transactionID, verifiedBy, notes sql.NullString

	if err := s.Scan(
		&rec.ID, &rec.DocumentID, &rec.ClientID, &rec.Amount, &rec.Currency, &methodStr, &gateway,
		&transactionID, &statusStr, &verifiedBy, &rec.VerifiedAt, &notes,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rec.Method = payment.Method(methodStr)
	rec.Status = payment.Status(statusStr)
	rec.Gateway = gateway.String
	rec.TransactionID = transactionID.String
	rec.VerifiedBy = verifiedBy.String
	rec.Notes = notes.String

	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) CreateRecord(ctx context.Context, rec *payment.Record) error {
	query := `
		INSERT INTO payments (document_id, client_id, amount, currency, method, gateway,
			transaction_id, status, verified_by, verified_at, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		rec.DocumentID,
		rec.ClientID,
		rec.Amount,
		rec.Currency,
		rec.Method,
		nullString(rec.Gateway),
		nullString(rec.TransactionID),
		rec.Status,
		nullString(rec.VerifiedBy),
		rec.VerifiedAt,
		nullString(rec.Notes),
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return payment.ErrDuplicateTransaction
		}

		return fmt.Errorf("creating payment record: %w", err)
	}

	return nil
}

func (s *Store) GetRecord(ctx context.Context, id uuid.UUID) (*payment.Record, error) {
	query := `SELECT ` + selectRecordColumns + `
		FROM payments p
		WHERE p.id = $1`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrNotFound
		}

		return nil, fmt.Errorf("getting payment record: %w", err)
	}

	return rec, nil
}

func (s *Store) GetByTransactionID(ctx context.Context, gateway, transactionID string) (*payment.Record, error) {
	query := `SELECT ` + selectRecordColumns + `
		FROM payments p
		WHERE p.gateway = $1 AND p.transaction_id = $2`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, gateway, transactionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrNotFound
		}

		return nil, fmt.Errorf("getting payment by transaction id: %w", err)
	}

	return rec, nil
}

func (s *Store) UpdateRecord(ctx context.Context, rec *payment.Record) error {
	query := `
		UPDATE payments
		SET status = $1, verified_by = $2, verified_at = $3, notes = $4, updated_at = NOW()
		WHERE id = $5
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.Status,
		nullString(rec.VerifiedBy),
		rec.VerifiedAt,
		nullString(rec.Notes),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating payment record: %w", err)
	}

	return nil
}

func (s *Store) ListRecords(ctx context.Context, filter payment.ListFilter) ([]*payment.Record, error) {
	query := `SELECT ` + selectRecordColumns + `
		FROM payments p
		WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND p.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.DocumentID != nil {
		query += fmt.Sprintf(" AND p.document_id = $%d", argIdx)

		args = append(args, *filter.DocumentID)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND p.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	query += " ORDER BY p.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payment records: %w", err)
	}
	defer rows.Close()

	var recs []*payment.Record

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment record: %w", err)
		}

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment records: %w", err)
	}

	return recs, nil
}
