package formula

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service resolves formulas and manages the override store.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve computes the absolute material quantities required to produce
// targetVolume of the named resin. The override store takes precedence
// over the built-in catalog. Material ordering follows the formula.
func (s *Service) Resolve(ctx context.Context, resinName string, targetVolume float64) ([]Requirement, error) {
	f, err := s.lookup(ctx, resinName)
	if err != nil {
		return nil, err
	}

	if len(f.Materials) == 0 {
		return nil, fmt.Errorf("%w: %q has no materials", ErrDegenerateFormula, resinName)
	}
	var totalRatio float64
	for _, m := range f.Materials {
		totalRatio += m.Ratio
	}
	if totalRatio == 0 {
		return nil, fmt.Errorf("%w: %q ratios sum to zero", ErrDegenerateFormula, resinName)
	}

	requirements := make([]Requirement, 0, len(f.Materials))
	for _, m := range f.Materials {
		requirements = append(requirements, Requirement{
			Material:    m.Name,
			RequiredQty: (m.Ratio / totalRatio) * targetVolume,
		})
	}
	return requirements, nil
}

// Get returns the formula visible under the name, override first.
func (s *Service) Get(ctx context.Context, resinName string) (Formula, error) {
	return s.lookup(ctx, resinName)
}

func (s *Service) lookup(ctx context.Context, resinName string) (Formula, error) {
	f, err := s.repo.GetByName(ctx, resinName)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Formula{}, err
	}
	if f, ok := catalogLookup(resinName); ok {
		return f, nil
	}
	return Formula{}, fmt.Errorf("%w: %q", ErrUnknownResin, resinName)
}

// List merges the catalog with override rows; overrides win by name.
func (s *Service) List(ctx context.Context) ([]Formula, error) {
	overrides, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	overridden := make(map[string]bool, len(overrides))
	for _, f := range overrides {
		overridden[f.Name] = true
	}
	merged := make([]Formula, 0, len(Catalog)+len(overrides))
	for _, f := range Catalog {
		if !overridden[f.Name] {
			merged = append(merged, f)
		}
	}
	merged = append(merged, overrides...)
	return merged, nil
}

// Create adds an override formula. Past production records keep their own
// resolved material snapshots, so later edits never rewrite history.
func (s *Service) Create(ctx context.Context, f Formula) (Formula, error) {
	if err := validate(f); err != nil {
		return Formula{}, err
	}
	return s.repo.Create(ctx, f)
}

// Update replaces an override formula.
func (s *Service) Update(ctx context.Context, id int64, f Formula) (Formula, error) {
	if err := validate(f); err != nil {
		return Formula{}, err
	}
	return s.repo.Update(ctx, id, f)
}

// Delete removes an override formula.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(f Formula) error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("formula: name is required")
	}
	if len(f.Materials) == 0 {
		return fmt.Errorf("%w: material list is empty", ErrDegenerateFormula)
	}
	var total float64
	for _, m := range f.Materials {
		if strings.TrimSpace(m.Name) == "" {
			return errors.New("formula: material name is required")
		}
		if m.Ratio < 0 {
			return fmt.Errorf("formula: material %q has negative ratio", m.Name)
		}
		total += m.Ratio
	}
	if total == 0 {
		return fmt.Errorf("%w: ratios sum to zero", ErrDegenerateFormula)
	}
	return nil
}
