package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateInput describes an invoice request. Amounts are derived, never
// taken from the caller.
type CreateInput struct {
	ClientName string
	Items      []ItemInput
}

// ItemInput is one requested line.
type ItemInput struct {
	OrderNumber string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// Service owns invoice creation and lifecycle.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create builds an invoice from its lines. Each line's amount is
// quantity times rate; the record total is the exact decimal sum.
func (s *Service) Create(ctx context.Context, input CreateInput) (Record, error) {
	if strings.TrimSpace(input.ClientName) == "" {
		return Record{}, fmt.Errorf("%w: client name required", ErrInvalidInput)
	}
	if len(input.Items) == 0 {
		return Record{}, fmt.Errorf("%w: at least one item required", ErrInvalidInput)
	}

	seen := make(map[string]bool, len(input.Items))
	items := make([]Item, 0, len(input.Items))
	total := decimal.Zero
	for _, in := range input.Items {
		orderNumber := strings.TrimSpace(in.OrderNumber)
		if orderNumber == "" {
			return Record{}, fmt.Errorf("%w: item order number required", ErrInvalidInput)
		}
		if seen[orderNumber] {
			return Record{}, fmt.Errorf("%w: %s", ErrDuplicateOrder, orderNumber)
		}
		seen[orderNumber] = true
		if in.Quantity.Sign() <= 0 || in.Rate.Sign() < 0 {
			return Record{}, fmt.Errorf("%w: quantity must be positive and rate non-negative", ErrInvalidInput)
		}
		amount := in.Quantity.Mul(in.Rate)
		total = total.Add(amount)
		items = append(items, Item{
			OrderNumber: orderNumber,
			Description: in.Description,
			Quantity:    in.Quantity,
			Rate:        in.Rate,
			Amount:      amount,
		})
	}

	return s.repo.Insert(ctx, Record{
		ClientName: input.ClientName,
		Items:      items,
		Total:      total,
		Status:     StatusDraft,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
