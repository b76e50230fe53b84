package stock

import (
	"errors"
	"time"
)

// RawMaterial models on-hand quantity for one raw material. Rows are
// created lazily on first reference and never deleted.
type RawMaterial struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	TotalQuantity float64   `json:"totalQuantity"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Requirement mirrors a resolved formula line: the absolute quantity a
// workflow wants to debit or credit for one material.
type Requirement struct {
	Material    string  `json:"material"`
	RequiredQty float64 `json:"requiredQty"`
}

var (
	// ErrInvalidQuantity indicates a non-finite or negative top-up amount.
	ErrInvalidQuantity = errors.New("stock: invalid quantity")
	// ErrInsufficientStock indicates the ledger cannot cover a debit.
	ErrInsufficientStock = errors.New("stock: insufficient stock")
	// ErrMaterialNotFound indicates a missing material row.
	ErrMaterialNotFound = errors.New("stock: material not found")
)
