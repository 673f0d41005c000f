package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/brightfold/portal/internal/project"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectProjectColumns = `
	pr.id, pr.client_id, pr.name, pr.cost, pr.currency, pr.created_at, pr.updated_at
`

func scanProject(s scanner) (*project.Project, error) {
	var p project.Project

	var cost sql.NullInt64

	if err := s.Scan(&p.ID, &p.ClientID, &p.Name, &cost, &p.Currency, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	if cost.Valid {
		p.Cost = &cost.Int64
	}

	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (client_id, name, cost, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	var cost sql.NullInt64
	if p.Cost != nil {
		cost = sql.NullInt64{Int64: *p.Cost, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query, p.ClientID, p.Name, cost, p.Currency).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	return nil
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + `
		FROM projects pr
		WHERE pr.id = $1`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, project.ErrNotFound
		}

		return nil, fmt.Errorf("getting project: %w", err)
	}

	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects
		SET name = $1, cost = $2, currency = $3, updated_at = NOW()
		WHERE id = $4
	`

	var cost sql.NullInt64
	if p.Cost != nil {
		cost = sql.NullInt64{Int64: *p.Cost, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query, p.Name, cost, p.Currency, p.ID)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}

	return nil
}

func (s *Store) ListProjects(ctx context.Context, clientID *uuid.UUID) ([]*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + `
		FROM projects pr`

	var args []any

	if clientID != nil {
		query += ` WHERE pr.client_id = $1`

		args = append(args, *clientID)
	}

	query += ` ORDER BY pr.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}

	return projects, nil
}

func (s *Store) SettledInvoiceTotals(ctx context.Context, projectID uuid.UUID) ([]project.CurrencyTotal, error) {
	query := `
		SELECT d.currency, COALESCE(SUM(d.amount), 0)
		FROM documents d
		WHERE d.project_id = $1
			AND d.type = 'invoice'
			AND d.payment_status IN ('verified', 'paid')
			AND d.deleted_at IS NULL
		GROUP BY d.currency
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("summing settled invoices: %w", err)
	}
	defer rows.Close()

	var totals []project.CurrencyTotal

	for rows.Next() {
		var t project.CurrencyTotal
		if err := rows.Scan(&t.Currency, &t.Total); err != nil {
			return nil, fmt.Errorf("scanning total: %w", err)
		}

		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating totals: %w", err)
	}

	return totals, nil
}
