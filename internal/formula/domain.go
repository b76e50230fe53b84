package formula

import (
	"errors"
	"time"
)

// Material is one component of a formula with its relative weight.
// Ratios are relative, they are not required to sum to any fixed total.
type Material struct {
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

// Formula is a named ratio table mapping raw materials to proportions.
type Formula struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Materials []Material `json:"materials"`
	Builtin   bool       `json:"builtin"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Requirement is an absolute material quantity resolved for a target volume.
type Requirement struct {
	Material    string  `json:"material"`
	RequiredQty float64 `json:"requiredQty"`
}

var (
	// ErrUnknownResin indicates no formula exists under the requested name.
	ErrUnknownResin = errors.New("formula: unknown resin")
	// ErrDegenerateFormula indicates an empty material list or zero total ratio.
	ErrDegenerateFormula = errors.New("formula: degenerate formula")
	// ErrDuplicateName indicates a formula already exists under the name.
	ErrDuplicateName = errors.New("formula: name already exists")
	// ErrNotFound indicates the formula row is absent.
	ErrNotFound = errors.New("formula: not found")
)
