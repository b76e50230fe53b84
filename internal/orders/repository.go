package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort abstracts standing-order persistence.
type RepositoryPort interface {
	Insert(ctx context.Context, order StandingOrder) (StandingOrder, error)
	Get(ctx context.Context, id int64) (StandingOrder, error)
	List(ctx context.Context) ([]StandingOrder, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	SetFulfilled(ctx context.Context, id int64, qty float64) error
}

// Repository persists standing orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, client_name, resin_type, volume, unit, scheduled_date,
 order_number, status, fulfilled_qty, created_at, updated_at`

func scanOrder(row pgx.Row) (StandingOrder, error) {
	var order StandingOrder
	err := row.Scan(
		&order.ID, &order.ClientName, &order.ResinType, &order.Volume, &order.Unit,
		&order.ScheduledDate, &order.OrderNumber, &order.Status, &order.FulfilledQty,
		&order.CreatedAt, &order.UpdatedAt,
	)
	return order, err
}

func (r *Repository) Insert(ctx context.Context, order StandingOrder) (StandingOrder, error) {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	err := r.pool.QueryRow(ctx,
		`INSERT INTO standing_orders
		 (client_name, resin_type, volume, unit, scheduled_date, order_number, status, fulfilled_qty, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING id`,
		order.ClientName, order.ResinType, order.Volume, order.Unit, order.ScheduledDate,
		order.OrderNumber, order.Status, order.FulfilledQty, now,
	).Scan(&order.ID)
	if err != nil {
		return StandingOrder{}, err
	}
	return order, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (StandingOrder, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM standing_orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return StandingOrder{}, ErrNotFound
	}
	return order, err
}

// List returns non-deleted orders, soonest schedule first.
func (r *Repository) List(ctx context.Context) ([]StandingOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM standing_orders WHERE status <> $1 ORDER BY scheduled_date, id`,
		StatusDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []StandingOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE standing_orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetFulfilled(ctx context.Context, id int64, qty float64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE standing_orders SET fulfilled_qty = $1, updated_at = $2 WHERE id = $3`,
		qty, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
