package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound             = errors.New("payment record not found")
	ErrDuplicateTransaction = errors.New("transaction id already recorded")
	ErrInvalidTransition    = errors.New("invalid payment status transition")
)

// Status is the lifecycle state of a payment record. paid and failed are
// terminal: once reached, only annotation fields may change. Moving between
// terminal states goes through the dispute flow, never a direct overwrite.
type Status string

const (
	StatusCreated   Status = "created"
	StatusSubmitted Status = "submitted"
	StatusVerified  Status = "verified"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
	StatusDisputed  Status = "disputed"
)

var transitions = map[Status][]Status{
	StatusCreated:   {StatusSubmitted, StatusPaid},
	StatusSubmitted: {StatusVerified, StatusFailed, StatusDisputed},
	StatusVerified:  {StatusPaid, StatusFailed, StatusDisputed},
	StatusDisputed:  {StatusVerified, StatusFailed},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusFailed
}

// Method records how the money moved.
type Method string

const (
	MethodGateway      Method = "gateway"
	MethodBankTransfer Method = "bank_transfer"
	MethodManual       Method = "manual"
)

// Record is one entry in the payment ledger. Exactly one record exists per
// successful gateway capture: TransactionID is unique per gateway at the
// persistence layer, so webhook replays cannot double-credit.
type Record struct {
	ID            uuid.UUID
	DocumentID    uuid.UUID
	ClientID      uuid.UUID
	Amount        int64 // minor units
	Currency      string
	Method        Method
	Gateway       string
	TransactionID string
	Status        Status
	VerifiedBy    string
	VerifiedAt    *time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
