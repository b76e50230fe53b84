package stock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ako-polymers/resinworks/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the ledger of on-hand raw material quantities. Workflow
// debits keep every quantity non-negative; administrative overwrites
// bypass that check.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	allowNeg bool
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	AllowNegativeStock bool
}

// NewService builds a Service.
func NewService(repo RepositoryPort, audit AuditPort, cfg ServiceConfig) *Service {
	return &Service{repo: repo, audit: audit, allowNeg: cfg.AllowNegativeStock}
}

// Get returns one material row.
func (s *Service) Get(ctx context.Context, name string) (RawMaterial, error) {
	return s.repo.Get(ctx, name)
}

// List returns all material rows.
func (s *Service) List(ctx context.Context) ([]RawMaterial, error) {
	return s.repo.List(ctx)
}

// Credit adds delta to a material, creating the row on first reference.
func (s *Service) Credit(ctx context.Context, name string, delta float64) (RawMaterial, error) {
	if strings.TrimSpace(name) == "" {
		return RawMaterial{}, errors.New("stock: material name required")
	}
	if !isFinite(delta) || delta < 0 {
		return RawMaterial{}, fmt.Errorf("%w: credit delta %v", ErrInvalidQuantity, delta)
	}

	var result RawMaterial
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, name)
		if err != nil && !errors.Is(err, ErrMaterialNotFound) {
			return err
		}
		if errors.Is(err, ErrMaterialNotFound) {
			current = RawMaterial{Name: name}
		}
		current.TotalQuantity += delta
		current.UpdatedAt = time.Now().UTC()
		result = current
		return tx.Upsert(ctx, current)
	})
	if err != nil {
		return RawMaterial{}, err
	}
	s.recordAudit(ctx, "stock:credit", name, map[string]any{"delta": delta, "quantity": result.TotalQuantity})
	return result, nil
}

// SetAbsolute overwrites a material quantity unconditionally. This is the
// manual stock audit path and deliberately skips the sufficiency check.
func (s *Service) SetAbsolute(ctx context.Context, name string, value float64) (RawMaterial, error) {
	if strings.TrimSpace(name) == "" {
		return RawMaterial{}, errors.New("stock: material name required")
	}
	if !isFinite(value) {
		return RawMaterial{}, fmt.Errorf("%w: absolute value %v", ErrInvalidQuantity, value)
	}

	result := RawMaterial{Name: name, TotalQuantity: value, UpdatedAt: time.Now().UTC()}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if existing, err := tx.GetForUpdate(ctx, name); err == nil {
			result.ID = existing.ID
		} else if !errors.Is(err, ErrMaterialNotFound) {
			return err
		}
		return tx.Upsert(ctx, result)
	})
	if err != nil {
		return RawMaterial{}, err
	}
	s.recordAudit(ctx, "stock:set", name, map[string]any{"quantity": value})
	return result, nil
}

// CheckSufficiency evaluates every requirement against current stock and
// returns the names of materials that fall short. An empty result means
// the ledger can cover the whole requirement set.
func (s *Service) CheckSufficiency(ctx context.Context, requirements []Requirement) ([]string, error) {
	var shortfall []string
	for _, req := range requirements {
		material, err := s.repo.Get(ctx, req.Material)
		if errors.Is(err, ErrMaterialNotFound) {
			shortfall = append(shortfall, req.Material)
			continue
		}
		if err != nil {
			return nil, err
		}
		if material.TotalQuantity < req.RequiredQty {
			shortfall = append(shortfall, req.Material)
		}
	}
	return shortfall, nil
}

// Consume atomically re-checks sufficiency and debits every requirement
// in list order within one transaction. On any shortfall nothing is
// debited and the shortfall list is returned alongside
// ErrInsufficientStock.
func (s *Service) Consume(ctx context.Context, requirements []Requirement) ([]string, error) {
	var shortfall []string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		materials := make([]RawMaterial, len(requirements))
		for i, req := range requirements {
			material, err := tx.GetForUpdate(ctx, req.Material)
			if errors.Is(err, ErrMaterialNotFound) {
				material = RawMaterial{Name: req.Material}
			} else if err != nil {
				return err
			}
			if !s.allowNeg && material.TotalQuantity < req.RequiredQty {
				shortfall = append(shortfall, req.Material)
			}
			materials[i] = material
		}
		// Every requirement is evaluated before the first debit.
		if len(shortfall) > 0 {
			return ErrInsufficientStock
		}
		now := time.Now().UTC()
		for i, req := range requirements {
			materials[i].TotalQuantity -= req.RequiredQty
			materials[i].UpdatedAt = now
			if err := tx.Upsert(ctx, materials[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return shortfall, err
	}
	s.recordAudit(ctx, "stock:consume", "batch", map[string]any{"requirements": len(requirements)})
	return nil, nil
}

// DebitAll applies every requirement as a debit. Callers must have run
// CheckSufficiency first; Consume is the combined form used by the
// production workflow.
func (s *Service) DebitAll(ctx context.Context, requirements []Requirement) error {
	return s.applyAll(ctx, requirements, -1)
}

// CreditAll reverses a prior debit, returning every requirement quantity
// back to the ledger. Used when a production record is soft-deleted.
func (s *Service) CreditAll(ctx context.Context, requirements []Requirement) error {
	if err := s.applyAll(ctx, requirements, +1); err != nil {
		return err
	}
	s.recordAudit(ctx, "stock:restore", "batch", map[string]any{"requirements": len(requirements)})
	return nil
}

func (s *Service) applyAll(ctx context.Context, requirements []Requirement, sign float64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		now := time.Now().UTC()
		// Deterministic order: requirement list order, so partial-failure
		// recovery is reproducible.
		for _, req := range requirements {
			material, err := tx.GetForUpdate(ctx, req.Material)
			if errors.Is(err, ErrMaterialNotFound) {
				material = RawMaterial{Name: req.Material}
			} else if err != nil {
				return err
			}
			material.TotalQuantity += sign * req.RequiredQty
			material.UpdatedAt = now
			if err := tx.Upsert(ctx, material); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) recordAudit(ctx context.Context, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if actor := shared.ActorFromContext(ctx); actor != nil {
		actorID = actor.ID
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "raw_material",
		EntityID: entityID,
		Meta:     meta,
	})
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
