package document

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound                = errors.New("document not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNoBackingPayment        = errors.New("no settled payment backs this document")
	ErrAlreadySigned           = errors.New("document already signed")
	ErrSignatureNotRequired    = errors.New("document does not require a signature")
	ErrNotSignable             = errors.New("invoices cannot be signed")
)

// Type classifies what a document is to the client.
type Type string

const (
	TypeInvoice     Type = "invoice"
	TypeContract    Type = "contract"
	TypeProposal    Type = "proposal"
	TypeDeliverable Type = "deliverable"
)

// PaymentStatus is the payment lifecycle of a document. The signature
// lifecycle (unsigned -> signed) is tracked separately and never interacts
// with it.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusSubmitted PaymentStatus = "submitted"
	StatusVerified  PaymentStatus = "verified"
	StatusPaid      PaymentStatus = "paid"
	StatusFailed    PaymentStatus = "failed"
	StatusDisputed  PaymentStatus = "disputed"
)

// transitions is the full set of allowed payment-status moves. Anything
// absent here is rejected. paid and failed are terminal; disputed is
// recoverable by admin resolution only.
var transitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:   {StatusSubmitted},
	StatusSubmitted: {StatusVerified, StatusFailed, StatusDisputed},
	StatusVerified:  {StatusPaid, StatusFailed, StatusDisputed},
	StatusDisputed:  {StatusVerified, StatusFailed},
}

// CanTransition reports whether moving from one payment status to another
// is allowed by the lifecycle table.
func CanTransition(from, to PaymentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// IsTerminal reports whether a status permits no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Document is an invoice or client-facing artifact tracked by the portal.
// Amount is in minor units (paise/cents).
type Document struct {
	ID                uuid.UUID
	ProjectID         uuid.UUID
	ClientID          uuid.UUID
	Type              Type
	Title             string
	FileKey           string
	InvoiceNumber     string
	Amount            int64
	Currency          string
	DueDate           *time.Time
	PaymentStatus     PaymentStatus
	RequiresSignature bool
	Signed            bool
	SignedBy          string
	SignedAt          *time.Time
	VerifiedBy        string
	VerifiedAt        *time.Time
	PaidAt            *time.Time
	GatewayTxnID      string
	CreatedAt         time.Time
	UpdatedAt         *time.Time
	DeletedAt         *time.Time
}

// IsInvoice reports whether the document carries an invoice identity.
func (d *Document) IsInvoice() bool {
	return d.Type == TypeInvoice
}
