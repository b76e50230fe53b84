package orders

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterPort hands out monotonic sequence numbers per scope key.
type CounterPort interface {
	Next(ctx context.Context, scopeKey string) (int64, error)
}

// CounterRepository backs the order counter with an order_counters row
// per scope key.
type CounterRepository struct {
	pool *pgxpool.Pool
}

// NewCounterRepository constructs a CounterRepository.
func NewCounterRepository(pool *pgxpool.Pool) *CounterRepository {
	return &CounterRepository{pool: pool}
}

// Next increments and returns the counter for the scope key. The upsert
// is a single statement, so two concurrent callers can never observe
// the same sequence value.
func (r *CounterRepository) Next(ctx context.Context, scopeKey string) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO order_counters (scope_key, seq)
		 VALUES ($1, 1)
		 ON CONFLICT (scope_key) DO UPDATE SET seq = order_counters.seq + 1
		 RETURNING seq`,
		scopeKey,
	).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

var _ CounterPort = (*CounterRepository)(nil)
