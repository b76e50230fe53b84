package suppliers

import (
	"errors"
	"time"
)

// Supplier provides raw materials to the plant.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Material  string    `json:"material"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound     = errors.New("suppliers: supplier not found")
	ErrInvalidInput = errors.New("suppliers: invalid input")
)
