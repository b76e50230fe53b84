package sellers

import (
	"context"
	"fmt"
	"strings"
)

// Service owns the seller directory.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, search string) ([]Seller, error) {
	return s.repo.List(ctx, search)
}

func (s *Service) Get(ctx context.Context, id int64) (Seller, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, seller Seller) (Seller, error) {
	if strings.TrimSpace(seller.Name) == "" {
		return Seller{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	return s.repo.Create(ctx, seller)
}

func (s *Service) Update(ctx context.Context, id int64, seller Seller) error {
	if strings.TrimSpace(seller.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	return s.repo.Update(ctx, id, seller)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
