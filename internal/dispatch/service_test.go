package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ako-polymers/resinworks/internal/formula"
	"github.com/ako-polymers/resinworks/internal/production"
)

type memoryRepo struct {
	nextID  int64
	records map[int64]production.Record
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, records: make(map[int64]production.Record)}
}

func (m *memoryRepo) seed(rec production.Record) production.Record {
	created, _ := m.Insert(context.Background(), rec)
	return created
}

func (m *memoryRepo) Get(_ context.Context, id int64) (production.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return production.Record{}, production.ErrNotFound
	}
	return rec, nil
}

func (m *memoryRepo) Insert(_ context.Context, rec production.Record) (production.Record, error) {
	rec.ID = m.nextID
	m.nextID++
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memoryRepo) ApplyDispatch(_ context.Context, id int64, volume, dispatchedQty float64, deployedAt time.Time) error {
	rec, ok := m.records[id]
	if !ok {
		return production.ErrNotFound
	}
	rec.Volume = volume
	rec.DispatchedQuantity = dispatchedQty
	rec.Status = production.StatusDeployed
	rec.DeployedAt = &deployedAt
	m.records[id] = rec
	return nil
}

func (m *memoryRepo) ListByOriginal(_ context.Context, originalID int64) ([]production.Record, error) {
	var out []production.Record
	for id := int64(1); id < m.nextID; id++ {
		rec, ok := m.records[id]
		if !ok || rec.Status != production.StatusDeployed {
			continue
		}
		if rec.ID == originalID || (rec.OriginalProductionID != nil && *rec.OriginalProductionID == originalID) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListSplitGroups(_ context.Context) ([]int64, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, rec := range m.records {
		if rec.Status == production.StatusDeployed && rec.OriginalProductionID != nil && !seen[*rec.OriginalProductionID] {
			seen[*rec.OriginalProductionID] = true
			ids = append(ids, *rec.OriginalProductionID)
		}
	}
	return ids, nil
}

func (m *memoryRepo) SetOrderNumber(_ context.Context, id int64, orderNumber string, fromSplit bool) error {
	rec, ok := m.records[id]
	if !ok {
		return production.ErrNotFound
	}
	rec.OrderNumber = orderNumber
	rec.FromSplit = fromSplit
	m.records[id] = rec
	return nil
}

func doneRecord(orderNumber string, volume float64) production.Record {
	return production.Record{
		ResinType:  "Epoxy",
		Volume:     volume,
		Unit:       "litres",
		ProducedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		MaterialsConsumed: []formula.Requirement{
			{Material: "Bisphenol-A", RequiredQty: volume / 11.2},
		},
		Status:      production.StatusDone,
		ClientName:  "Sharma Paints",
		OrderNumber: orderNumber,
	}
}

func TestDeployFullDispatch(t *testing.T) {
	repo := newMemoryRepo()
	rec := repo.seed(doneRecord("AKO-PUN-20082026-000004", 100))
	svc := NewService(repo, nil, nil)

	result, err := svc.Deploy(context.Background(), rec.ID, nil)
	require.NoError(t, err)
	require.Nil(t, result.GodownRecord)
	require.Equal(t, production.StatusDeployed, result.Record.Status)
	require.InDelta(t, 100, result.Record.Volume, 1e-9)
	require.InDelta(t, 100, result.Record.DispatchedQuantity, 1e-9)
	require.NotNil(t, result.Record.DeployedAt)
	// A lone deployed row keeps its bare order number.
	require.Equal(t, "AKO-PUN-20082026-000004", result.Record.OrderNumber)
	require.False(t, result.Record.FromSplit)
}

func TestDeployPartialSplitsToGodown(t *testing.T) {
	repo := newMemoryRepo()
	rec := repo.seed(doneRecord("AKO-PUN-20082026-000004", 100))
	svc := NewService(repo, nil, nil)

	qty := 30.0
	result, err := svc.Deploy(context.Background(), rec.ID, &qty)
	require.NoError(t, err)

	require.InDelta(t, 30, result.Record.Volume, 1e-9)
	require.Equal(t, production.StatusDeployed, result.Record.Status)
	require.Equal(t, "AKO-PUN-20082026-000004S1", result.Record.OrderNumber)
	require.True(t, result.Record.FromSplit)

	godown := result.GodownRecord
	require.NotNil(t, godown)
	require.InDelta(t, 70, godown.Volume, 1e-9)
	require.Equal(t, GodownClient, godown.ClientName)
	require.Equal(t, production.StatusDeployed, godown.Status)
	require.Equal(t, "AKO-PUN-20082026-000004S2", godown.OrderNumber)
	require.True(t, godown.FromSplit)
	require.Equal(t, rec.ID, *godown.OriginalProductionID)
	// The remainder shares the original's snapshot and timestamp.
	require.Equal(t, rec.ProducedAt, godown.ProducedAt)
	require.Equal(t, rec.MaterialsConsumed, godown.MaterialsConsumed)
}

func TestDeployPreconditions(t *testing.T) {
	repo := newMemoryRepo()
	pending := doneRecord("AKO-PUN-20082026-000005", 50)
	pending.Status = production.StatusPending
	notReady := repo.seed(pending)
	ready := repo.seed(doneRecord("AKO-PUN-20082026-000006", 50))
	svc := NewService(repo, nil, nil)

	_, err := svc.Deploy(context.Background(), notReady.ID, nil)
	require.ErrorIs(t, err, ErrInvalidState)

	over := 51.0
	_, err = svc.Deploy(context.Background(), ready.ID, &over)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	zero := 0.0
	_, err = svc.Deploy(context.Background(), ready.ID, &zero)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Deploy(context.Background(), 999, nil)
	require.ErrorIs(t, err, production.ErrNotFound)

	// Preconditions reject without mutation.
	rec, err := repo.Get(context.Background(), ready.ID)
	require.NoError(t, err)
	require.Equal(t, production.StatusDone, rec.Status)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	rec := repo.seed(doneRecord("AKO-HYD-01082026-000002", 80))
	svc := NewService(repo, nil, nil)

	qty := 50.0
	_, err := svc.Deploy(context.Background(), rec.ID, &qty)
	require.NoError(t, err)

	snapshot := func() map[int64]production.Record {
		out := make(map[int64]production.Record, len(repo.records))
		for id, r := range repo.records {
			out[id] = r
		}
		return out
	}

	before := snapshot()
	require.NoError(t, svc.Normalize(context.Background()))
	require.NoError(t, svc.Normalize(context.Background()))
	require.Equal(t, before, snapshot())
}

func TestNormalizeRepairsSuffixes(t *testing.T) {
	repo := newMemoryRepo()
	deployed := doneRecord("AKO-HYD-01082026-000002S1", 50)
	deployed.Status = production.StatusDeployed
	client := repo.seed(deployed)

	remainder := doneRecord("AKO-HYD-01082026-000002", 30)
	remainder.Status = production.StatusDeployed
	remainder.ClientName = GodownClient
	remainder.OriginalProductionID = &client.ID
	godown := repo.seed(remainder)

	svc := NewService(repo, nil, nil)
	require.NoError(t, svc.Normalize(context.Background()))

	got, err := repo.Get(context.Background(), client.ID)
	require.NoError(t, err)
	require.Equal(t, "AKO-HYD-01082026-000002S1", got.OrderNumber)
	require.True(t, got.FromSplit)

	got, err = repo.Get(context.Background(), godown.ID)
	require.NoError(t, err)
	require.Equal(t, "AKO-HYD-01082026-000002S2", got.OrderNumber)
	require.True(t, got.FromSplit)
}

func TestBaseOrderNumber(t *testing.T) {
	cases := map[string]string{
		"AKO-PUN-20082026-000004":   "AKO-PUN-20082026-000004",
		"AKO-PUN-20082026-000004S1": "AKO-PUN-20082026-000004",
		"AKO-PUN-20082026-000004S2": "AKO-PUN-20082026-000004",
		"20082026000123":            "20082026000123",
		"20082026000123S2":          "20082026000123",
	}
	for in, want := range cases {
		got, ok := baseOrderNumber(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
	_, ok := baseOrderNumber("")
	require.False(t, ok)
}
