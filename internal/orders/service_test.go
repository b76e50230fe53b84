package orders

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]StandingOrder
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, orders: make(map[int64]StandingOrder)}
}

func (m *memoryRepo) Insert(_ context.Context, order StandingOrder) (StandingOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order.ID = m.nextID
	m.nextID++
	m.orders[order.ID] = order
	return order, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (StandingOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return StandingOrder{}, ErrNotFound
	}
	return order, nil
}

func (m *memoryRepo) List(_ context.Context) ([]StandingOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StandingOrder, 0, len(m.orders))
	for _, order := range m.orders {
		if order.Status != StatusDeleted {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	m.orders[id] = order
	return nil
}

func (m *memoryRepo) SetFulfilled(_ context.Context, id int64, qty float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.FulfilledQty = qty
	m.orders[id] = order
	return nil
}

// memoryCounter mirrors the single-statement upsert: increment and read
// under one lock.
type memoryCounter struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{seqs: make(map[string]int64)}
}

func (m *memoryCounter) Next(_ context.Context, scopeKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqs[scopeKey]++
	return m.seqs[scopeKey], nil
}

type fakeDirectory struct {
	clients map[string]ClientLocation
}

func (f *fakeDirectory) Lookup(_ context.Context, name string) (ClientLocation, error) {
	client, ok := f.clients[name]
	if !ok {
		return ClientLocation{}, ErrUnknownClient
	}
	return client, nil
}

func newTestService(repo *memoryRepo, counter *memoryCounter, clients map[string]ClientLocation) *Service {
	return NewService(repo, counter, &fakeDirectory{clients: clients}, nil)
}

func TestCreateGeneratesScopedOrderNumbers(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newMemoryCounter(), map[string]ClientLocation{
		"Sharma Paints": {Name: "Sharma Paints", District: "Pune", State: "Maharashtra"},
	})

	first, err := svc.Create(context.Background(), CreateInput{
		ClientName: "Sharma Paints", ResinType: "Epoxy", Volume: 50, ScheduledDate: "2026-08-29",
	})
	require.NoError(t, err)
	require.Equal(t, "AKO-PUN-29082026-000001", first.OrderNumber)
	require.Equal(t, StatusPending, first.Status)
	require.Equal(t, "litres", first.Unit)

	second, err := svc.Create(context.Background(), CreateInput{
		ClientName: "Sharma Paints", ResinType: "Alkyd", Volume: 20, ScheduledDate: "29-08-2026",
	})
	require.NoError(t, err)
	require.Equal(t, "AKO-PUN-29082026-000002", second.OrderNumber)

	// A different day is a different scope with its own sequence.
	third, err := svc.Create(context.Background(), CreateInput{
		ClientName: "Sharma Paints", ResinType: "Epoxy", Volume: 10, ScheduledDate: "2026-08-30",
	})
	require.NoError(t, err)
	require.Equal(t, "AKO-PUN-30082026-000001", third.OrderNumber)
}

func TestLocationCodeDerivation(t *testing.T) {
	code, err := locationCode(ClientLocation{Name: "a", District: "New Delhi"})
	require.NoError(t, err)
	require.Equal(t, "NEW", code)

	// Non-letters are skipped.
	code, err = locationCode(ClientLocation{Name: "b", District: "24 Parganas"})
	require.NoError(t, err)
	require.Equal(t, "PAR", code)

	// Accented letters fold to their base form.
	code, err = locationCode(ClientLocation{Name: "e", District: "Amānst"})
	require.NoError(t, err)
	require.Equal(t, "AMA", code)

	// Falls back to state when the district is too short.
	code, err = locationCode(ClientLocation{Name: "c", District: "X1", State: "Goa"})
	require.NoError(t, err)
	require.Equal(t, "GOA", code)

	_, err = locationCode(ClientLocation{Name: "d", District: "ab", State: "x9"})
	require.ErrorIs(t, err, ErrMissingLocation)
}

func TestCreateFailureModes(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newMemoryCounter(), map[string]ClientLocation{
		"Nomad Traders": {Name: "Nomad Traders"},
	})

	_, err := svc.Create(context.Background(), CreateInput{
		ClientName: "Sharma Paints", ResinType: "Epoxy", Volume: 50, ScheduledDate: "2026-08-29",
	})
	require.ErrorIs(t, err, ErrUnknownClient)

	_, err = svc.Create(context.Background(), CreateInput{
		ClientName: "Nomad Traders", ResinType: "Epoxy", Volume: 50, ScheduledDate: "soon",
	})
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.Create(context.Background(), CreateInput{
		ClientName: "Nomad Traders", ResinType: "Epoxy", Volume: 50, ScheduledDate: "2026-08-29",
	})
	require.ErrorIs(t, err, ErrMissingLocation)

	_, err = svc.Create(context.Background(), CreateInput{
		ClientName: "Nomad Traders", ResinType: "Epoxy", Volume: 0, ScheduledDate: "2026-08-29",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestNextOrderIDConcurrentCallersGetDistinctSerials(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newMemoryCounter(), nil)
	scheduled := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	const n = 64
	var (
		mu  sync.Mutex
		ids = make(map[string]bool, n)
	)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			id, err := svc.NextOrderID(context.Background(), "PUN", scheduled)
			if err != nil {
				return err
			}
			mu.Lock()
			ids[id] = true
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Len(t, ids, n)

	// Gapless: serials are exactly 1..n.
	var serials []string
	for id := range ids {
		serials = append(serials, id)
	}
	sort.Strings(serials)
	require.Equal(t, "AKO-PUN-29082026-000001", serials[0])
	require.Equal(t, "AKO-PUN-29082026-000064", serials[n-1])
}

func TestProductionLifecycleHooks(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, newMemoryCounter(), map[string]ClientLocation{
		"Deccan Coatings": {Name: "Deccan Coatings", District: "Hyderabad"},
	})

	order, err := svc.Create(context.Background(), CreateInput{
		ClientName: "Deccan Coatings", ResinType: "Phenolic", Volume: 40, ScheduledDate: "2026-08-01",
	})
	require.NoError(t, err)

	info, err := svc.GetInfo(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, "Deccan Coatings", info.ClientName)
	require.Equal(t, order.OrderNumber, info.OrderNumber)

	require.NoError(t, svc.MarkInProgress(context.Background(), order.ID))
	got, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, got.Status)

	require.NoError(t, svc.Complete(context.Background(), order.ID, 40))
	got, err = svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)
	require.InDelta(t, 40, got.FulfilledQty, 1e-9)

	require.NoError(t, svc.SoftDelete(context.Background(), order.ID))
	_, err = svc.GetInfo(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
