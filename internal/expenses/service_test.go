package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	expenses map[int64]Expense
	overtime map[int64]Overtime
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{expenses: map[int64]Expense{}, overtime: map[int64]Overtime{}, nextID: 1}
}

func (r *memoryRepo) InsertExpense(_ context.Context, e Expense) (Expense, error) {
	e.ID = r.nextID
	r.nextID++
	e.CreatedAt = time.Now().UTC()
	r.expenses[e.ID] = e
	return e, nil
}

func (r *memoryRepo) ListExpenses(_ context.Context) ([]Expense, error) {
	out := make([]Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepo) DeleteExpense(_ context.Context, id int64) error {
	if _, ok := r.expenses[id]; !ok {
		return ErrNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r *memoryRepo) InsertOvertime(_ context.Context, o Overtime) (Overtime, error) {
	o.ID = r.nextID
	r.nextID++
	o.CreatedAt = time.Now().UTC()
	r.overtime[o.ID] = o
	return o, nil
}

func (r *memoryRepo) ListOvertime(_ context.Context) ([]Overtime, error) {
	out := make([]Overtime, 0, len(r.overtime))
	for _, o := range r.overtime {
		out = append(out, o)
	}
	return out, nil
}

func (r *memoryRepo) DeleteOvertime(_ context.Context, id int64) error {
	if _, ok := r.overtime[id]; !ok {
		return ErrNotFound
	}
	delete(r.overtime, id)
	return nil
}

func TestAddOvertimeDerivesAmount(t *testing.T) {
	svc := NewService(newMemoryRepo())

	entry, err := svc.AddOvertime(context.Background(), Overtime{
		EmployeeName: "R. Nair",
		Hours:        decimal.RequireFromString("7.5"),
		Rate:         decimal.RequireFromString("120.40"),
		WorkedOn:     time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.True(t, entry.Amount.Equal(decimal.RequireFromString("903")), "got %s", entry.Amount)
}

func TestAddExpenseValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	_, err := svc.AddExpense(context.Background(), Expense{
		Category: "  ", Amount: decimal.NewFromInt(100), IncurredOn: day,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddExpense(context.Background(), Expense{
		Category: "Transport", Amount: decimal.Zero, IncurredOn: day,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddExpense(context.Background(), Expense{
		Category: "Transport", Amount: decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	e, err := svc.AddExpense(context.Background(), Expense{
		Category: "Transport", Description: "godown haulage",
		Amount: decimal.RequireFromString("2150.75"), IncurredOn: day,
	})
	require.NoError(t, err)
	require.NotZero(t, e.ID)
}

func TestAddOvertimeValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.AddOvertime(context.Background(), Overtime{
		EmployeeName: "R. Nair",
		Hours:        decimal.Zero,
		Rate:         decimal.NewFromInt(100),
		WorkedOn:     time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}
