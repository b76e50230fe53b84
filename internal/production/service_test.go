package production

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ako-polymers/resinworks/internal/formula"
	"github.com/ako-polymers/resinworks/internal/stock"
)

type memoryRepo struct {
	nextID    int64
	records   map[int64]Record
	insertErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, records: make(map[int64]Record)}
}

func (m *memoryRepo) Insert(_ context.Context, rec Record) (Record, error) {
	if m.insertErr != nil {
		return Record{}, m.insertErr
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
		if rec.Status != StatusDeleted {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryRepo) FindActiveByOrderID(_ context.Context, orderID int64) (Record, error) {
	for _, rec := range m.records {
		if rec.FromOrderID != nil && *rec.FromOrderID == orderID && rec.Status != StatusDeleted {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
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

type fakeFormulas struct{}

func (fakeFormulas) Resolve(_ context.Context, resinName string, targetVolume float64) ([]formula.Requirement, error) {
	if resinName == "Unobtainium" {
		return nil, formula.ErrUnknownResin
	}
	return []formula.Requirement{
		{Material: "Phenol", RequiredQty: targetVolume / 3},
		{Material: "Formaldehyde", RequiredQty: 2 * targetVolume / 3},
	}, nil
}

// fakeLedger mirrors the stock service contract: Consume either debits
// everything or nothing.
type fakeLedger struct {
	levels       map[string]float64
	consumeCalls int
	creditCalls  int
	creditErr    error
}

func (f *fakeLedger) Consume(_ context.Context, reqs []stock.Requirement) ([]string, error) {
	f.consumeCalls++
	var short []string
	for _, r := range reqs {
		if f.levels[r.Material] < r.RequiredQty {
			short = append(short, r.Material)
		}
	}
	if len(short) > 0 {
		return short, stock.ErrInsufficientStock
	}
	for _, r := range reqs {
		f.levels[r.Material] -= r.RequiredQty
	}
	return nil, nil
}

func (f *fakeLedger) CreditAll(_ context.Context, reqs []stock.Requirement) error {
	f.creditCalls++
	if f.creditErr != nil {
		return f.creditErr
	}
	for _, r := range reqs {
		f.levels[r.Material] += r.RequiredQty
	}
	return nil
}

type fakeOrders struct {
	info           map[int64]OrderInfo
	inProgress     map[int64]bool
	markInProgress int
}

func (f *fakeOrders) GetInfo(_ context.Context, orderID int64) (OrderInfo, error) {
	info, ok := f.info[orderID]
	if !ok {
		return OrderInfo{}, errors.New("orders: not found")
	}
	return info, nil
}

func (f *fakeOrders) MarkInProgress(_ context.Context, orderID int64) error {
	f.markInProgress++
	f.inProgress[orderID] = true
	return nil
}

func newTestService(repo *memoryRepo, ledger *fakeLedger, orders *fakeOrders) *Service {
	var op OrdersPort
	if orders != nil {
		op = orders
	}
	return NewService(repo, fakeFormulas{}, ledger, op, nil, nil)
}

func TestProduceDebitsStockAndQueuesPending(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &fakeLedger{levels: map[string]float64{"Phenol": 100, "Formaldehyde": 200}}
	svc := newTestService(repo, ledger, nil)

	result, err := svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 30})
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Record.Status)
	require.Equal(t, "litres", result.Record.Unit)
	require.Len(t, result.Requirements, 2)
	require.InDelta(t, 90, ledger.levels["Phenol"], 1e-9)
	require.InDelta(t, 180, ledger.levels["Formaldehyde"], 1e-9)
	require.Len(t, result.Record.MaterialsConsumed, 2)
}

func TestProduceCopiesOrderInfoWithoutCompletingOrder(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &fakeLedger{levels: map[string]float64{"Phenol": 100, "Formaldehyde": 200}}
	orders := &fakeOrders{
		info:       map[int64]OrderInfo{7: {ID: 7, ClientName: "Sharma Paints", OrderNumber: "AKO-PUN-29082026-000001"}},
		inProgress: make(map[int64]bool),
	}
	svc := newTestService(repo, ledger, orders)

	orderID := int64(7)
	result, err := svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 10, OrderID: &orderID})
	require.NoError(t, err)
	require.Equal(t, "Sharma Paints", result.Record.ClientName)
	require.Equal(t, "AKO-PUN-29082026-000001", result.Record.OrderNumber)
	require.Equal(t, StatusPending, result.Record.Status)
	require.True(t, orders.inProgress[7])
}

func TestProduceRejectsSecondRunForSameOrder(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &fakeLedger{levels: map[string]float64{"Phenol": 100, "Formaldehyde": 200}}
	orders := &fakeOrders{
		info:       map[int64]OrderInfo{3: {ID: 3, ClientName: "Deccan Coatings", OrderNumber: "AKO-HYD-01082026-000002"}},
		inProgress: make(map[int64]bool),
	}
	svc := newTestService(repo, ledger, orders)

	orderID := int64(3)
	_, err := svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 9, OrderID: &orderID})
	require.NoError(t, err)

	_, err = svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 9, OrderID: &orderID})
	require.ErrorIs(t, err, ErrAlreadyProduced)

	// The guard fires before the debit, so stock is consumed once.
	require.Equal(t, 1, ledger.consumeCalls)
	require.InDelta(t, 97, ledger.levels["Phenol"], 1e-9)
}

func TestProduceInsufficientStockMutatesNothing(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &fakeLedger{levels: map[string]float64{"Phenol": 100, "Formaldehyde": 1}}
	svc := newTestService(repo, ledger, nil)

	_, err := svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 30})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, []string{"Formaldehyde"}, insufficient.Materials)

	require.Empty(t, repo.records)
	require.InDelta(t, 100, ledger.levels["Phenol"], 1e-9)
	require.InDelta(t, 1, ledger.levels["Formaldehyde"], 1e-9)
}

func TestProduceValidatesInput(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &fakeLedger{levels: map[string]float64{}}, nil)

	_, err := svc.Produce(context.Background(), ProduceInput{ResinType: " ", Volume: 10})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Produce(context.Background(), ProduceInput{ResinType: "Epoxy", Volume: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Produce(context.Background(), ProduceInput{ResinType: "Unobtainium", Volume: 10})
	require.ErrorIs(t, err, formula.ErrUnknownResin)
}

func TestUpdateStatusRejectsUnknownTag(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &fakeLedger{levels: map[string]float64{"Phenol": 100, "Formaldehyde": 200}}
	svc := newTestService(repo, ledger, nil)

	result, err := svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 3})
	require.NoError(t, err)

	require.ErrorIs(t, svc.UpdateStatus(context.Background(), result.Record.ID, Status("shipped")), ErrInvalidStatus)

	require.NoError(t, svc.UpdateStatus(context.Background(), result.Record.ID, StatusDone))
	rec, err := svc.Get(context.Background(), result.Record.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDone, rec.Status)
}

func TestSoftDeleteCreditsSnapshotOnce(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &fakeLedger{levels: map[string]float64{"Phenol": 100, "Formaldehyde": 200}}
	svc := newTestService(repo, ledger, nil)

	result, err := svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 30})
	require.NoError(t, err)
	require.InDelta(t, 90, ledger.levels["Phenol"], 1e-9)

	require.NoError(t, svc.SoftDelete(context.Background(), result.Record.ID))
	require.InDelta(t, 100, ledger.levels["Phenol"], 1e-9)
	require.InDelta(t, 200, ledger.levels["Formaldehyde"], 1e-9)

	// Idempotent: the second delete must not credit again.
	require.NoError(t, svc.SoftDelete(context.Background(), result.Record.ID))
	require.Equal(t, 1, ledger.creditCalls)
	require.InDelta(t, 100, ledger.levels["Phenol"], 1e-9)

	records, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestProduceRestocksAfterInsertFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.insertErr = errors.New("records table unreachable")
	ledger := &fakeLedger{levels: map[string]float64{"Phenol": 100, "Formaldehyde": 200}}
	svc := newTestService(repo, ledger, nil)

	_, err := svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 30})
	require.ErrorIs(t, err, repo.insertErr)

	// The debit was rolled back, so nothing went missing.
	require.Equal(t, 1, ledger.creditCalls)
	require.InDelta(t, 100, ledger.levels["Phenol"], 1e-9)
	require.InDelta(t, 200, ledger.levels["Formaldehyde"], 1e-9)
}

func TestProduceSurfacesFailedRestock(t *testing.T) {
	repo := newMemoryRepo()
	repo.insertErr = errors.New("records table unreachable")
	ledger := &fakeLedger{
		levels:    map[string]float64{"Phenol": 100, "Formaldehyde": 200},
		creditErr: errors.New("ledger unreachable"),
	}
	svc := newTestService(repo, ledger, nil)

	_, err := svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 30})
	require.ErrorIs(t, err, repo.insertErr)
	// The failed credit must surface alongside the original cause so an
	// out-of-balance ledger is never silent.
	require.ErrorIs(t, err, ledger.creditErr)
	require.ErrorContains(t, err, "restock after failure")
}

func TestSoftDeleteRevertsTagWhenRestockFails(t *testing.T) {
	repo := newMemoryRepo()
	ledger := &fakeLedger{levels: map[string]float64{"Phenol": 100, "Formaldehyde": 200}}
	svc := newTestService(repo, ledger, nil)

	result, err := svc.Produce(context.Background(), ProduceInput{ResinType: "Phenolic", Volume: 30})
	require.NoError(t, err)

	ledger.creditErr = errors.New("ledger unreachable")
	err = svc.SoftDelete(context.Background(), result.Record.ID)
	require.ErrorIs(t, err, ledger.creditErr)

	// The delete tag was rolled back, so the record is still live and a
	// retry starts from scratch.
	rec, err := svc.Get(context.Background(), result.Record.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, rec.Status)

	ledger.creditErr = nil
	require.NoError(t, svc.SoftDelete(context.Background(), result.Record.ID))
	require.InDelta(t, 100, ledger.levels["Phenol"], 1e-9)
	require.InDelta(t, 200, ledger.levels["Formaldehyde"], 1e-9)
}
