package formula

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	byName map[string]Formula
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byName: make(map[string]Formula)}
}

func (r *memoryRepo) GetByName(ctx context.Context, name string) (Formula, error) {
	if f, ok := r.byName[name]; ok {
		return f, nil
	}
	return Formula{}, ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context) ([]Formula, error) {
	var out []Formula
	for _, f := range r.byName {
		out = append(out, f)
	}
	return out, nil
}

func (r *memoryRepo) Create(ctx context.Context, f Formula) (Formula, error) {
	if _, ok := r.byName[f.Name]; ok {
		return Formula{}, ErrDuplicateName
	}
	r.nextID++
	f.ID = r.nextID
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	r.byName[f.Name] = f
	return f, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, f Formula) (Formula, error) {
	for name, existing := range r.byName {
		if existing.ID == id {
			delete(r.byName, name)
			f.ID = id
			r.byName[f.Name] = f
			return f, nil
		}
	}
	return Formula{}, ErrNotFound
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	for name, existing := range r.byName {
		if existing.ID == id {
			delete(r.byName, name)
			return nil
		}
	}
	return ErrNotFound
}

func TestResolveEpoxyExample(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	reqs, err := svc.Resolve(ctx, "Epoxy Resin", 112)
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	require.Equal(t, "Bisphenol-A", reqs[0].Material)
	require.InDelta(t, 10.0, reqs[0].RequiredQty, 1e-9)
	require.Equal(t, "Epichlorohydrin", reqs[1].Material)
	require.InDelta(t, 100.0, reqs[1].RequiredQty, 1e-9)
	require.Equal(t, "NaOH", reqs[2].Material)
	require.InDelta(t, 2.0, reqs[2].RequiredQty, 1e-9)
}

func TestResolveConservesVolume(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	for _, f := range Catalog {
		for _, volume := range []float64{0.5, 1, 112, 25000} {
			reqs, err := svc.Resolve(ctx, f.Name, volume)
			require.NoError(t, err)
			var sum float64
			for _, req := range reqs {
				sum += req.RequiredQty
			}
			require.InDelta(t, volume, sum, 1e-6, "formula %s volume %v", f.Name, volume)
		}
	}
}

func TestResolveOverridePrecedence(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, Formula{
		Name:      "Epoxy Resin",
		Materials: []Material{{Name: "Bisphenol-A", Ratio: 1}, {Name: "Epichlorohydrin", Ratio: 1}},
	})
	require.NoError(t, err)

	reqs, err := svc.Resolve(ctx, "Epoxy Resin", 100)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	require.InDelta(t, 50.0, reqs[0].RequiredQty, 1e-9)
}

func TestResolveUnknownResin(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Resolve(context.Background(), "Mystery Resin", 10)
	require.ErrorIs(t, err, ErrUnknownResin)
}

func TestResolveDegenerateFormula(t *testing.T) {
	repo := newMemoryRepo()
	repo.byName["Zero Resin"] = Formula{
		ID:        99,
		Name:      "Zero Resin",
		Materials: []Material{{Name: "A", Ratio: 0}, {Name: "B", Ratio: 0}},
	}
	svc := NewService(repo)

	_, err := svc.Resolve(context.Background(), "Zero Resin", 10)
	require.ErrorIs(t, err, ErrDegenerateFormula)
}

func TestCreateRejectsDuplicateAndDegenerate(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	valid := Formula{Name: "Custom", Materials: []Material{{Name: "A", Ratio: 2}}}
	_, err := svc.Create(ctx, valid)
	require.NoError(t, err)

	_, err = svc.Create(ctx, valid)
	require.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Create(ctx, Formula{Name: "Empty"})
	require.ErrorIs(t, err, ErrDegenerateFormula)
}

func TestListMergesCatalogWithOverrides(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Formula{
		Name:      "Alkyd Resin",
		Materials: []Material{{Name: "Phthalic Anhydride", Ratio: 1}},
	})
	require.NoError(t, err)

	formulas, err := svc.List(ctx)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, f := range formulas {
		seen[f.Name]++
	}
	require.Equal(t, 1, seen["Alkyd Resin"], "override must replace the catalog entry")
	require.Equal(t, 1, seen["Epoxy Resin"])
}
