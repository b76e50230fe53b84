package dispatch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ako-polymers/resinworks/internal/production"
	"github.com/ako-polymers/resinworks/internal/shared"
)

// GodownClient is the warehouse pseudo-client that receives the
// undispatched remainder of a partial split.
const GodownClient = "Godown"

var (
	// ErrInvalidState indicates the record is not ready for dispatch.
	ErrInvalidState = errors.New("dispatch: record is not in done state")
	// ErrInvalidQuantity indicates the dispatch quantity is out of range.
	ErrInvalidQuantity = errors.New("dispatch: invalid dispatch quantity")
)

// splitSuffixRe strips an S1/S2 split suffix from an order number. The
// base is either the dash-delimited id ending in its 6-digit serial or a
// legacy all-numeric id.
var splitSuffixRe = regexp.MustCompile(`^(.+?-\d{6}|\d{12,14})(?:S[12])?$`)

// RepositoryPort is the slice of production persistence the split
// engine needs. The production repository satisfies it.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (production.Record, error)
	Insert(ctx context.Context, rec production.Record) (production.Record, error)
	ApplyDispatch(ctx context.Context, id int64, volume, dispatchedQty float64, deployedAt time.Time) error
	ListByOriginal(ctx context.Context, originalID int64) ([]production.Record, error)
	ListSplitGroups(ctx context.Context) ([]int64, error)
	SetOrderNumber(ctx context.Context, id int64, orderNumber string, fromSplit bool) error
}

// LockPort serializes critical sections per resource.
type LockPort interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// Service is the dispatch/split engine.
type Service struct {
	repo   RepositoryPort
	locker LockPort
	audit  production.AuditPort
	now    func() time.Time
}

// NewService builds a Service. locker and audit may be nil.
func NewService(repo RepositoryPort, locker LockPort, audit production.AuditPort) *Service {
	return &Service{repo: repo, locker: locker, audit: audit, now: time.Now}
}

// DeployResult reports the outcome of a dispatch.
type DeployResult struct {
	Record       production.Record  `json:"record"`
	GodownRecord *production.Record `json:"godownRecord,omitempty"`
}

// Deploy dispatches a done production record. A nil dispatchQty means
// full dispatch. A partial dispatch clones the remainder onto a godown
// record sharing the original's consumption snapshot and producedAt,
// then shrinks the original to the dispatched volume. Both rows end up
// deployed and the group's order-number suffixes are normalized.
func (s *Service) Deploy(ctx context.Context, productionID int64, dispatchQty *float64) (DeployResult, error) {
	var result DeployResult
	run := func(ctx context.Context) error {
		rec, err := s.repo.Get(ctx, productionID)
		if err != nil {
			return err
		}
		if rec.Status != production.StatusDone {
			return fmt.Errorf("%w: status is %q", ErrInvalidState, rec.Status)
		}

		available := rec.Volume
		qty := available
		if dispatchQty != nil {
			qty = *dispatchQty
		}
		if qty <= 0 || qty > available {
			return fmt.Errorf("%w: %g of %g available", ErrInvalidQuantity, qty, available)
		}

		deployedAt := s.now().UTC()
		if qty < available {
			godown := rec
			godown.ID = 0
			godown.Volume = available - qty
			godown.ClientName = GodownClient
			godown.Status = production.StatusDeployed
			godown.DispatchedQuantity = 0
			godown.DeployedAt = &deployedAt
			godown.OriginalProductionID = &rec.ID
			created, err := s.repo.Insert(ctx, godown)
			if err != nil {
				return err
			}
			result.GodownRecord = &created
		}

		if err := s.repo.ApplyDispatch(ctx, rec.ID, qty, qty, deployedAt); err != nil {
			return err
		}
		if err := s.normalizeGroup(ctx, rec.ID); err != nil {
			return err
		}

		updated, err := s.repo.Get(ctx, rec.ID)
		if err != nil {
			return err
		}
		result.Record = updated
		if result.GodownRecord != nil {
			refreshed, err := s.repo.Get(ctx, result.GodownRecord.ID)
			if err != nil {
				return err
			}
			result.GodownRecord = &refreshed
		}
		return nil
	}

	var err error
	if s.locker != nil {
		err = s.locker.WithLock(ctx, shared.RecordLockKey(productionID), run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return DeployResult{}, err
	}
	s.recordAudit(ctx, productionID, dispatchQty)
	return result, nil
}

// Normalize repairs split suffixes across every dispatch group. Safe to
// re-run any number of times.
func (s *Service) Normalize(ctx context.Context) error {
	ids, err := s.repo.ListSplitGroups(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.normalizeGroup(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// normalizeGroup enforces the suffix invariant for one split group: a
// lone row carries the bare base number, a client/godown pair carries
// S1/S2. Already-correct rows are left untouched.
func (s *Service) normalizeGroup(ctx context.Context, originalID int64) error {
	rows, err := s.repo.ListByOriginal(ctx, originalID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	base := ""
	for _, row := range rows {
		if b, ok := baseOrderNumber(row.OrderNumber); ok {
			base = b
			break
		}
	}
	if base == "" {
		return nil
	}

	if len(rows) == 1 {
		return s.apply(ctx, rows[0], base, false)
	}

	var client, godown *production.Record
	for i := range rows {
		if rows[i].ClientName == GodownClient {
			godown = &rows[i]
		} else {
			client = &rows[i]
		}
	}
	if client == nil || godown == nil || len(rows) != 2 {
		// Ambiguous group; leave it for manual review.
		return nil
	}
	if err := s.apply(ctx, *client, base+"S1", true); err != nil {
		return err
	}
	return s.apply(ctx, *godown, base+"S2", true)
}

func (s *Service) apply(ctx context.Context, rec production.Record, orderNumber string, fromSplit bool) error {
	if rec.OrderNumber == orderNumber && rec.FromSplit == fromSplit {
		return nil
	}
	return s.repo.SetOrderNumber(ctx, rec.ID, orderNumber, fromSplit)
}

// baseOrderNumber strips any S1/S2 suffix from an order number.
func baseOrderNumber(orderNumber string) (string, bool) {
	m := splitSuffixRe.FindStringSubmatch(orderNumber)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (s *Service) recordAudit(ctx context.Context, id int64, qty *float64) {
	if s.audit == nil {
		return
	}
	meta := map[string]any{}
	if qty != nil {
		meta["dispatchQty"] = *qty
	}
	var actorID int64
	if actor := shared.ActorFromContext(ctx); actor != nil {
		actorID = actor.ID
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "dispatch:deploy",
		Entity:   "production_record",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}
