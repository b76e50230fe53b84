package expenses

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is one bookkeeping entry for plant spend.
type Expense struct {
	ID          int64           `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IncurredOn  time.Time       `json:"incurredOn"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Overtime is one paid overtime entry. Amount is hours times rate.
type Overtime struct {
	ID           int64           `json:"id"`
	EmployeeName string          `json:"employeeName"`
	Hours        decimal.Decimal `json:"hours"`
	Rate         decimal.Decimal `json:"rate"`
	Amount       decimal.Decimal `json:"amount"`
	WorkedOn     time.Time       `json:"workedOn"`
	CreatedAt    time.Time       `json:"createdAt"`
}

var (
	ErrNotFound     = errors.New("expenses: entry not found")
	ErrInvalidInput = errors.New("expenses: invalid input")
)
