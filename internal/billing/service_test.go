package billing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	nextID  int64
	records map[int64]Record
	billed  map[string]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, records: make(map[int64]Record), billed: make(map[string]bool)}
}

func (m *memoryRepo) Insert(_ context.Context, rec Record) (Record, error) {
	for _, item := range rec.Items {
		if m.billed[item.OrderNumber] {
			return Record{}, ErrDuplicateOrder
		}
	}
	for _, item := range rec.Items {
		m.billed[item.OrderNumber] = true
	}
	rec.ID = m.nextID
	m.nextID++
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memoryRepo) List(_ context.Context) ([]Record, error) {
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	m.records[id] = rec
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	for _, item := range rec.Items {
		delete(m.billed, item.OrderNumber)
	}
	delete(m.records, id)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateComputesExactTotals(t *testing.T) {
	svc := NewService(newMemoryRepo())

	rec, err := svc.Create(context.Background(), CreateInput{
		ClientName: "Sharma Paints",
		Items: []ItemInput{
			{OrderNumber: "AKO-PUN-29082026-000001", Quantity: dec("12.5"), Rate: dec("310.40")},
			{OrderNumber: "AKO-PUN-29082026-000002", Quantity: dec("3"), Rate: dec("0.10")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, rec.Status)
	require.True(t, rec.Items[0].Amount.Equal(dec("3880.00")), rec.Items[0].Amount.String())
	require.True(t, rec.Items[1].Amount.Equal(dec("0.30")), rec.Items[1].Amount.String())
	require.True(t, rec.Total.Equal(dec("3880.30")), rec.Total.String())
}

func TestCreateRejectsAlreadyBilledOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		ClientName: "Sharma Paints",
		Items:      []ItemInput{{OrderNumber: "AKO-PUN-29082026-000001", Quantity: dec("1"), Rate: dec("100")}},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		ClientName: "Deccan Coatings",
		Items:      []ItemInput{{OrderNumber: "AKO-PUN-29082026-000001", Quantity: dec("2"), Rate: dec("90")}},
	})
	require.ErrorIs(t, err, ErrDuplicateOrder)

	// Repeated within one request is caught before storage.
	_, err = svc.Create(context.Background(), CreateInput{
		ClientName: "Deccan Coatings",
		Items: []ItemInput{
			{OrderNumber: "AKO-HYD-01082026-000003", Quantity: dec("1"), Rate: dec("50")},
			{OrderNumber: "AKO-HYD-01082026-000003", Quantity: dec("1"), Rate: dec("50")},
		},
	})
	require.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestDeleteFreesOrderNumbers(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	rec, err := svc.Create(context.Background(), CreateInput{
		ClientName: "Sharma Paints",
		Items:      []ItemInput{{OrderNumber: "AKO-PUN-29082026-000001", Quantity: dec("1"), Rate: dec("100")}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), rec.ID))

	_, err = svc.Create(context.Background(), CreateInput{
		ClientName: "Deccan Coatings",
		Items:      []ItemInput{{OrderNumber: "AKO-PUN-29082026-000001", Quantity: dec("1"), Rate: dec("100")}},
	})
	require.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateInput{ClientName: " "})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateInput{ClientName: "Sharma Paints"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), CreateInput{
		ClientName: "Sharma Paints",
		Items:      []ItemInput{{OrderNumber: "AKO-PUN-29082026-000001", Quantity: dec("0"), Rate: dec("100")}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}
