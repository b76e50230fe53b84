package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationOrders aggregates standing orders per location scope code.
type LocationOrders struct {
	LocationCode string  `json:"locationCode"`
	OrderCount   int64   `json:"orderCount"`
	TotalVolume  float64 `json:"totalVolume"`
}

// ResinDispatch aggregates client-bound dispatched volume per resin.
type ResinDispatch struct {
	ResinType       string  `json:"resinType"`
	DispatchedTotal float64 `json:"dispatchedTotal"`
	RecordCount     int64   `json:"recordCount"`
}

// InactiveClient is a client with no order since the cutoff.
type InactiveClient struct {
	Name          string     `json:"name"`
	District      string     `json:"district"`
	State         string     `json:"state"`
	LastOrderedAt *time.Time `json:"lastOrderedAt,omitempty"`
}

// RepositoryPort abstracts the report aggregation queries.
type RepositoryPort interface {
	OrdersByLocation(ctx context.Context) ([]LocationOrders, error)
	DispatchedByResin(ctx context.Context) ([]ResinDispatch, error)
	InactiveClients(ctx context.Context, since time.Time) ([]InactiveClient, error)
}

// Repository runs the aggregations against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// OrdersByLocation groups live standing orders by the location segment
// of their order number (AKO-<LOC>-...).
func (r *Repository) OrdersByLocation(ctx context.Context) ([]LocationOrders, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT split_part(order_number, '-', 2) AS location_code,
		        COUNT(*), COALESCE(SUM(volume), 0)
		 FROM standing_orders
		 WHERE status <> 'deleted'
		 GROUP BY location_code
		 ORDER BY location_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LocationOrders
	for rows.Next() {
		var row LocationOrders
		if err := rows.Scan(&row.LocationCode, &row.OrderCount, &row.TotalVolume); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DispatchedByResin sums deployed volume per resin. Godown remainder
// rows stay in the warehouse, so they are excluded.
func (r *Repository) DispatchedByResin(ctx context.Context) ([]ResinDispatch, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT resin_type, COALESCE(SUM(volume), 0), COUNT(*)
		 FROM production_records
		 WHERE status = 'deployed' AND client_name <> 'Godown'
		 GROUP BY resin_type
		 ORDER BY resin_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResinDispatch
	for rows.Next() {
		var row ResinDispatch
		if err := rows.Scan(&row.ResinType, &row.DispatchedTotal, &row.RecordCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// InactiveClients lists clients whose latest order predates the cutoff
// (or who never ordered). The godown pseudo-client is skipped.
func (r *Repository) InactiveClients(ctx context.Context, since time.Time) ([]InactiveClient, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.name, c.district, c.state, MAX(o.created_at) AS last_ordered_at
		 FROM clients c
		 LEFT JOIN standing_orders o ON lower(o.client_name) = lower(c.name) AND o.status <> 'deleted'
		 WHERE c.name <> 'Godown'
		 GROUP BY c.name, c.district, c.state
		 HAVING MAX(o.created_at) IS NULL OR MAX(o.created_at) < $1
		 ORDER BY c.name`,
		since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InactiveClient
	for rows.Next() {
		var row InactiveClient
		if err := rows.Scan(&row.Name, &row.District, &row.State, &row.LastOrderedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
