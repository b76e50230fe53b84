package production

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ako-polymers/resinworks/internal/formula"
	"github.com/ako-polymers/resinworks/internal/shared"
	"github.com/ako-polymers/resinworks/internal/stock"
)

// FormulaPort resolves resin formulas into material requirements.
type FormulaPort interface {
	Resolve(ctx context.Context, resinName string, targetVolume float64) ([]formula.Requirement, error)
}

// StockPort is the slice of the stock ledger the workflow uses.
type StockPort interface {
	Consume(ctx context.Context, requirements []stock.Requirement) ([]string, error)
	CreditAll(ctx context.Context, requirements []stock.Requirement) error
}

// OrderInfo is the standing order detail copied onto a linked record.
type OrderInfo struct {
	ID          int64
	ClientName  string
	OrderNumber string
}

// OrdersPort looks up and transitions standing orders.
type OrdersPort interface {
	GetInfo(ctx context.Context, orderID int64) (OrderInfo, error)
	MarkInProgress(ctx context.Context, orderID int64) error
}

// LockPort serializes critical sections per resource.
type LockPort interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the production workflow.
type Service struct {
	repo     RepositoryPort
	formulas FormulaPort
	ledger   StockPort
	orders   OrdersPort
	locker   LockPort
	audit    AuditPort
}

// NewService builds a Service. orders, locker and audit may be nil.
func NewService(repo RepositoryPort, formulas FormulaPort, ledger StockPort, orders OrdersPort, locker LockPort, audit AuditPort) *Service {
	return &Service{repo: repo, formulas: formulas, ledger: ledger, orders: orders, locker: locker, audit: audit}
}

// ProduceResult is what a successful production returns.
type ProduceResult struct {
	Record       Record                `json:"record"`
	Requirements []formula.Requirement `json:"requiredMaterials"`
}

// Produce fulfils a production request: resolve the formula, guard
// against double production from the same standing order, debit stock
// atomically, then insert the record in the pending queue. Producing
// against an order never completes that order.
func (s *Service) Produce(ctx context.Context, input ProduceInput) (ProduceResult, error) {
	if strings.TrimSpace(input.ResinType) == "" {
		return ProduceResult{}, fmt.Errorf("%w: resin type required", ErrInvalidInput)
	}
	if input.Volume <= 0 {
		return ProduceResult{}, fmt.Errorf("%w: volume must be positive", ErrInvalidInput)
	}
	if input.Unit == "" {
		input.Unit = "litres"
	}

	var result ProduceResult
	run := func(ctx context.Context) error {
		requirements, err := s.formulas.Resolve(ctx, input.ResinType, input.Volume)
		if err != nil {
			return err
		}

		if input.OrderID != nil {
			_, err := s.repo.FindActiveByOrderID(ctx, *input.OrderID)
			if err == nil {
				return ErrAlreadyProduced
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		rec := Record{
			ResinType:         input.ResinType,
			Volume:            input.Volume,
			Unit:              input.Unit,
			ProducedAt:        time.Now().UTC(),
			MaterialsConsumed: requirements,
			Status:            StatusPending,
			FromOrderID:       input.OrderID,
		}

		// Look the order up before touching stock so a missing order
		// fails without needing any compensation.
		if input.OrderID != nil && s.orders != nil {
			info, err := s.orders.GetInfo(ctx, *input.OrderID)
			if err != nil {
				return err
			}
			rec.ClientName = info.ClientName
			rec.OrderNumber = info.OrderNumber
		}

		shortfall, err := s.ledger.Consume(ctx, toStockRequirements(requirements))
		if err != nil {
			if errors.Is(err, stock.ErrInsufficientStock) {
				return &InsufficientStockError{Materials: shortfall}
			}
			return err
		}

		if input.OrderID != nil && s.orders != nil {
			if err := s.orders.MarkInProgress(ctx, *input.OrderID); err != nil {
				return s.restock(ctx, requirements, err)
			}
		}

		created, err := s.repo.Insert(ctx, rec)
		if err != nil {
			return s.restock(ctx, requirements, err)
		}
		result = ProduceResult{Record: created, Requirements: requirements}
		return nil
	}

	var err error
	if s.locker != nil {
		err = s.locker.WithLock(ctx, shared.ProductionLockKey(input.ResinType), run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return ProduceResult{}, err
	}
	s.recordAudit(ctx, "production:produce", result.Record.ID, map[string]any{
		"resin":  input.ResinType,
		"volume": input.Volume,
	})
	return result, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	return s.repo.Get(ctx, id)
}

// List returns all non-deleted records.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// UpdateStatus applies a direct status tag transition.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.recordAudit(ctx, "production:status", id, map[string]any{"status": string(status)})
	return nil
}

// SoftDelete tags a record deleted and returns its consumed materials to
// stock. Idempotent: a second call on an already-deleted record credits
// nothing.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	run := func(ctx context.Context) error {
		rec, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if rec.Status == StatusDeleted {
			return nil
		}
		// Tag the record first so every credit sits behind a delete
		// transition. If the credit fails the tag is rolled back, and
		// a retry starts over without double-crediting.
		if err := s.repo.UpdateStatus(ctx, id, StatusDeleted); err != nil {
			return err
		}
		if len(rec.MaterialsConsumed) > 0 {
			if err := s.ledger.CreditAll(ctx, toStockRequirements(rec.MaterialsConsumed)); err != nil {
				if revertErr := s.repo.UpdateStatus(ctx, id, rec.Status); revertErr != nil {
					return errors.Join(err, fmt.Errorf("production: revert delete after failed restock: %w", revertErr))
				}
				return err
			}
		}
		return nil
	}

	var err error
	if s.locker != nil {
		err = s.locker.WithLock(ctx, shared.RecordLockKey(id), run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "production:soft_delete", id, nil)
	return nil
}

// restock returns the debited materials after a failed produce step.
// If the credit itself fails both errors surface so the caller sees the
// ledger is out of balance instead of a silent loss.
func (s *Service) restock(ctx context.Context, reqs []formula.Requirement, cause error) error {
	if err := s.ledger.CreditAll(ctx, toStockRequirements(reqs)); err != nil {
		return errors.Join(cause, fmt.Errorf("production: restock after failure: %w", err))
	}
	return cause
}

func toStockRequirements(reqs []formula.Requirement) []stock.Requirement {
	out := make([]stock.Requirement, len(reqs))
	for i, r := range reqs {
		out[i] = stock.Requirement{Material: r.Material, RequiredQty: r.RequiredQty}
	}
	return out
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64, meta map[string]any) {
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
		Entity:   "production_record",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}
