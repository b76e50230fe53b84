package sellers

import (
	"errors"
	"time"
)

// Seller is a field sales agent who books client orders.
type Seller struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound     = errors.New("sellers: seller not found")
	ErrInvalidInput = errors.New("sellers: invalid input")
)
