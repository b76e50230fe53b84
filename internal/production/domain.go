package production

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ako-polymers/resinworks/internal/formula"
)

// Status tags the production record state machine:
// pending -> in_progress -> done -> deployed, with deleted as the
// soft-delete terminal that returns materials to stock.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusDeployed   Status = "deployed"
	StatusDeleted    Status = "deleted"
)

// Valid reports whether the tag belongs to the finite status set.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusDeployed, StatusDeleted:
		return true
	}
	return false
}

// Record is one produced resin batch. MaterialsConsumed is the resolved
// requirement snapshot taken at production time; later formula edits do
// not touch it. Records are never hard-deleted so the debit can always
// be reversed.
type Record struct {
	ID                 int64                 `json:"id"`
	ResinType          string                `json:"resinType"`
	Volume             float64               `json:"volume"`
	Unit               string                `json:"unit"`
	ProducedAt         time.Time             `json:"producedAt"`
	MaterialsConsumed  []formula.Requirement `json:"materialsConsumed"`
	Status             Status                `json:"status"`
	ClientName         string                `json:"clientName,omitempty"`
	FromOrderID        *int64                `json:"fromOrderId,omitempty"`
	OrderNumber        string                `json:"orderNumber,omitempty"`
	DispatchedQuantity float64               `json:"dispatchedQuantity,omitempty"`
	DeployedAt         *time.Time            `json:"deployedAt,omitempty"`
	// OriginalProductionID links dispatch rows created by a partial
	// split back to the record they were cloned from.
	OriginalProductionID *int64    `json:"originalProductionId,omitempty"`
	FromSplit            bool      `json:"fromSplit"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// ProduceInput describes a production request.
type ProduceInput struct {
	ResinType string
	Volume    float64
	Unit      string
	OrderID   *int64
}

var (
	// ErrNotFound indicates the production record is absent.
	ErrNotFound = errors.New("production: record not found")
	// ErrAlreadyProduced guards the at-most-one production per standing order rule.
	ErrAlreadyProduced = errors.New("production: order has already been produced")
	// ErrInvalidInput indicates malformed produce parameters.
	ErrInvalidInput = errors.New("production: invalid input")
	// ErrInvalidStatus indicates an unknown status tag.
	ErrInvalidStatus = errors.New("production: invalid status")
)

// InsufficientStockError carries the shortfall material list for a
// rejected production request.
type InsufficientStockError struct {
	Materials []string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("production: insufficient stock: %s", strings.Join(e.Materials, ", "))
}
