package reports

import (
	"context"
	"fmt"
	"time"
)

// Service serves aggregated business reports through the versioned
// cache.
type Service struct {
	repo  RepositoryPort
	cache *Cache
}

// NewService builds a Service. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// OrdersByLocation reports order count and volume per location code.
func (s *Service) OrdersByLocation(ctx context.Context) ([]LocationOrders, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "location-orders")
	if err != nil {
		return nil, err
	}
	var out []LocationOrders
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.OrdersByLocation(ctx)
	})
	return out, err
}

// DispatchedByResin reports client-bound dispatched volume per resin.
func (s *Service) DispatchedByResin(ctx context.Context) ([]ResinDispatch, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "dispatched-by-resin")
	if err != nil {
		return nil, err
	}
	var out []ResinDispatch
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.DispatchedByResin(ctx)
	})
	return out, err
}

// InactiveClients reports clients without an order in the given window.
func (s *Service) InactiveClients(ctx context.Context, days int) ([]InactiveClient, error) {
	if days <= 0 {
		days = 90
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	key, err := s.cache.BuildKey(ctx, "reports", "inactive-clients", fmt.Sprintf("%d", days))
	if err != nil {
		return nil, err
	}
	var out []InactiveClient
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.InactiveClients(ctx, since)
	})
	return out, err
}

// Invalidate bumps the cache version after writes that affect reports.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
