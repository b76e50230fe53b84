package expenses

import (
	"context"
	"fmt"
	"strings"
)

// Service owns expense and overtime bookkeeping.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AddExpense(ctx context.Context, e Expense) (Expense, error) {
	if strings.TrimSpace(e.Category) == "" {
		return Expense{}, fmt.Errorf("%w: category required", ErrInvalidInput)
	}
	if e.Amount.Sign() <= 0 {
		return Expense{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if e.IncurredOn.IsZero() {
		return Expense{}, fmt.Errorf("%w: incurred date required", ErrInvalidInput)
	}
	return s.repo.InsertExpense(ctx, e)
}

func (s *Service) ListExpenses(ctx context.Context) ([]Expense, error) {
	return s.repo.ListExpenses(ctx)
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	return s.repo.DeleteExpense(ctx, id)
}

// AddOvertime books an overtime entry; the amount is derived from
// hours and rate.
func (s *Service) AddOvertime(ctx context.Context, o Overtime) (Overtime, error) {
	if strings.TrimSpace(o.EmployeeName) == "" {
		return Overtime{}, fmt.Errorf("%w: employee name required", ErrInvalidInput)
	}
	if o.Hours.Sign() <= 0 || o.Rate.Sign() <= 0 {
		return Overtime{}, fmt.Errorf("%w: hours and rate must be positive", ErrInvalidInput)
	}
	if o.WorkedOn.IsZero() {
		return Overtime{}, fmt.Errorf("%w: worked date required", ErrInvalidInput)
	}
	o.Amount = o.Hours.Mul(o.Rate)
	return s.repo.InsertOvertime(ctx, o)
}

func (s *Service) ListOvertime(ctx context.Context) ([]Overtime, error) {
	return s.repo.ListOvertime(ctx)
}

func (s *Service) DeleteOvertime(ctx context.Context, id int64) error {
	return s.repo.DeleteOvertime(ctx, id)
}
