package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brightfold/portal/internal/session"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*session.User, error) {
	query := `
		SELECT u.id, u.email, u.name, u.password_hash, u.role, u.created_at
		FROM users u
		WHERE u.email = $1
	`

	var user session.User

	var roleStr string

	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &roleStr, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, session.ErrUserNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	user.Role = session.Role(roleStr)

	return &user, nil
}
