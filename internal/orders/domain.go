package orders

import (
	"errors"
	"time"
)

// Status tags a standing order's lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDeleted    Status = "deleted"
)

// Valid reports whether the tag belongs to the finite status set.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusDeleted:
		return true
	}
	return false
}

// StandingOrder is a client's scheduled resin request. OrderNumber is
// the generated scoped identifier and is unique across the system.
// Orders are soft-deleted, never physically removed.
type StandingOrder struct {
	ID            int64     `json:"id"`
	ClientName    string    `json:"clientName"`
	ResinType     string    `json:"resinType"`
	Volume        float64   `json:"volume"`
	Unit          string    `json:"unit"`
	ScheduledDate time.Time `json:"scheduledDate"`
	OrderNumber   string    `json:"orderNumber"`
	Status        Status    `json:"status"`
	FulfilledQty  float64   `json:"fulfilledQty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateInput describes an order placement request.
type CreateInput struct {
	ClientName    string
	ResinType     string
	Volume        float64
	Unit          string
	ScheduledDate string
}

var (
	// ErrNotFound indicates the standing order is absent.
	ErrNotFound = errors.New("orders: order not found")
	// ErrInvalidInput indicates malformed order parameters.
	ErrInvalidInput = errors.New("orders: invalid input")
	// ErrInvalidDate indicates an unparseable scheduled date.
	ErrInvalidDate = errors.New("orders: invalid scheduled date")
	// ErrMissingLocation indicates the client has no usable district or
	// state, so no scope key can be derived for it.
	ErrMissingLocation = errors.New("orders: client has no usable location")
	// ErrInvalidStatus indicates an unknown status tag.
	ErrInvalidStatus = errors.New("orders: invalid status")
	// ErrUnknownClient indicates the client directory has no such client.
	ErrUnknownClient = errors.New("orders: unknown client")
)
