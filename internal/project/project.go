package project

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("project not found")
	ErrCostNotSet    = errors.New("project cost is not set")
	ErrMixedCurrency = errors.New("invoices span multiple currencies")
)

// Project is a client engagement with an agreed cost. Cost is nil until the
// agency and client settle on a number; nothing can be delivered before
// that. Cost is in minor units of Currency.
type Project struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	Name      string
	Cost      *int64
	Currency  string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
