package orders

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ako-polymers/resinworks/internal/production"
	"github.com/ako-polymers/resinworks/internal/shared"
)

// scheduledDateLayouts are the accepted wire formats for a scheduled
// date, tried in order.
var scheduledDateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006"}

// ClientLocation is the slice of a client record the generator needs.
type ClientLocation struct {
	Name     string
	District string
	State    string
}

// ClientDirectory looks up clients by name, case-insensitively.
type ClientDirectory interface {
	Lookup(ctx context.Context, name string) (ClientLocation, error)
}

// Service places standing orders and generates their scoped ids.
type Service struct {
	repo    RepositoryPort
	counter CounterPort
	clients ClientDirectory
	audit   production.AuditPort
}

// NewService builds a Service. audit may be nil.
func NewService(repo RepositoryPort, counter CounterPort, clients ClientDirectory, audit production.AuditPort) *Service {
	return &Service{repo: repo, counter: counter, clients: clients, audit: audit}
}

// Create places a standing order: derive the client's location scope,
// draw the next sequence for that scope and day, and insert the order
// in pending state.
func (s *Service) Create(ctx context.Context, input CreateInput) (StandingOrder, error) {
	if strings.TrimSpace(input.ClientName) == "" {
		return StandingOrder{}, fmt.Errorf("%w: client name required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.ResinType) == "" {
		return StandingOrder{}, fmt.Errorf("%w: resin type required", ErrInvalidInput)
	}
	if input.Volume <= 0 {
		return StandingOrder{}, fmt.Errorf("%w: volume must be positive", ErrInvalidInput)
	}
	if input.Unit == "" {
		input.Unit = "litres"
	}

	scheduled, err := parseScheduledDate(input.ScheduledDate)
	if err != nil {
		return StandingOrder{}, err
	}

	client, err := s.clients.Lookup(ctx, input.ClientName)
	if err != nil {
		return StandingOrder{}, fmt.Errorf("%w: %q", ErrUnknownClient, input.ClientName)
	}

	code, err := locationCode(client)
	if err != nil {
		return StandingOrder{}, err
	}

	orderNumber, err := s.NextOrderID(ctx, code, scheduled)
	if err != nil {
		return StandingOrder{}, err
	}

	order, err := s.repo.Insert(ctx, StandingOrder{
		ClientName:    client.Name,
		ResinType:     input.ResinType,
		Volume:        input.Volume,
		Unit:          input.Unit,
		ScheduledDate: scheduled,
		OrderNumber:   orderNumber,
		Status:        StatusPending,
	})
	if err != nil {
		return StandingOrder{}, err
	}
	s.recordAudit(ctx, "orders:create", order.ID, map[string]any{"orderNumber": orderNumber})
	return order, nil
}

// NextOrderID draws the next identifier for a location and day. The
// scope counter increment is a single atomic statement, so concurrent
// callers in the same scope always receive distinct serials.
func (s *Service) NextOrderID(ctx context.Context, locationCode string, scheduled time.Time) (string, error) {
	scopeKey := fmt.Sprintf("AKO-%s-%s", locationCode, scheduled.Format("02012006"))
	seq, err := s.counter.Next(ctx, scopeKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", scopeKey, seq), nil
}

// Get returns one standing order.
func (s *Service) Get(ctx context.Context, id int64) (StandingOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns all non-deleted orders.
func (s *Service) List(ctx context.Context) ([]StandingOrder, error) {
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
	s.recordAudit(ctx, "orders:status", id, map[string]any{"status": string(status)})
	return nil
}

// Complete marks an order fulfilled with the dispatched quantity.
func (s *Service) Complete(ctx context.Context, id int64, fulfilledQty float64) error {
	if fulfilledQty < 0 {
		return fmt.Errorf("%w: fulfilled quantity must be non-negative", ErrInvalidInput)
	}
	if err := s.repo.SetFulfilled(ctx, id, fulfilledQty); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCompleted); err != nil {
		return err
	}
	s.recordAudit(ctx, "orders:complete", id, map[string]any{"fulfilledQty": fulfilledQty})
	return nil
}

// SoftDelete tags an order deleted.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	if err := s.repo.UpdateStatus(ctx, id, StatusDeleted); err != nil {
		return err
	}
	s.recordAudit(ctx, "orders:soft_delete", id, nil)
	return nil
}

// GetInfo exposes order details to the production workflow.
func (s *Service) GetInfo(ctx context.Context, orderID int64) (production.OrderInfo, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return production.OrderInfo{}, err
	}
	if order.Status == StatusDeleted {
		return production.OrderInfo{}, ErrNotFound
	}
	return production.OrderInfo{
		ID:          order.ID,
		ClientName:  order.ClientName,
		OrderNumber: order.OrderNumber,
	}, nil
}

// MarkInProgress transitions an order to in_progress when production
// against it starts. Production never completes the order.
func (s *Service) MarkInProgress(ctx context.Context, orderID int64) error {
	return s.repo.UpdateStatus(ctx, orderID, StatusInProgress)
}

// locationCode derives the 3-letter scope code from the client's
// district, falling back to its state. Names are NFD-decomposed so
// accented letters fold to their base form before uppercasing; fewer
// than three letters means the order must be rejected rather than risk
// colliding scopes across unrelated clients.
func locationCode(client ClientLocation) (string, error) {
	for _, source := range []string{client.District, client.State} {
		var letters []rune
		for _, r := range norm.NFD.String(source) {
			if unicode.Is(unicode.Mn, r) {
				continue
			}
			if unicode.IsLetter(r) {
				letters = append(letters, unicode.ToUpper(r))
				if len(letters) == 3 {
					return string(letters), nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrMissingLocation, client.Name)
}

func parseScheduledDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range scheduledDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
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
		Entity:   "standing_order",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}

var _ production.OrdersPort = (*Service)(nil)
