package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status tags a billing record.
type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
	StatusPaid  Status = "paid"
)

// Valid reports whether the tag belongs to the finite status set.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid:
		return true
	}
	return false
}

// Item is one billed line. An order number can appear on at most one
// billing record across the system.
type Item struct {
	OrderNumber string          `json:"orderNumber"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Record is one client invoice.
type Record struct {
	ID         int64           `json:"id"`
	ClientName string          `json:"clientName"`
	Items      []Item          `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

var (
	// ErrNotFound indicates the billing record is absent.
	ErrNotFound = errors.New("billing: record not found")
	// ErrInvalidInput indicates malformed billing fields.
	ErrInvalidInput = errors.New("billing: invalid input")
	// ErrDuplicateOrder indicates an order number already billed elsewhere.
	ErrDuplicateOrder = errors.New("billing: order number already billed")
	// ErrInvalidStatus indicates an unknown status tag.
	ErrInvalidStatus = errors.New("billing: invalid status")
)
