package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ako-polymers/resinworks/internal/platform/db"
)

// RepositoryPort abstracts billing persistence.
type RepositoryPort interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	List(ctx context.Context) ([]Record, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
}

// Repository persists billing records in PostgreSQL. Line items live in
// billing_items with a unique order_number, which is what enforces the
// once-per-order billing guard.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes the record and its items in one transaction. A
// conflicting order number rolls everything back.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO billing_records (client_name, total, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $4)
			 RETURNING id`,
			rec.ClientName, rec.Total, rec.Status, now,
		).Scan(&rec.ID)
		if err != nil {
			return err
		}
		for _, item := range rec.Items {
			_, err := tx.Exec(ctx,
				`INSERT INTO billing_items (billing_id, order_number, description, quantity, rate, amount)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				rec.ID, item.OrderNumber, item.Description, item.Quantity, item.Rate, item.Amount)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23505" {
					return ErrDuplicateOrder
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx,
		`SELECT id, client_name, total, status, created_at, updated_at
		 FROM billing_records WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.ClientName, &rec.Total, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return Record{}, err
	}
	rec.Items = items
	return rec, nil
}

func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, client_name, total, status, created_at, updated_at
		 FROM billing_records ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ClientName, &rec.Total, &rec.Status,
			&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range records {
		items, err := r.itemsFor(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Items = items
	}
	return records, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE billing_records SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record and its items. Freed order numbers become
// billable again.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM billing_items WHERE billing_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM billing_records WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Repository) itemsFor(ctx context.Context, billingID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT order_number, description, quantity, rate, amount
		 FROM billing_items WHERE billing_id = $1 ORDER BY id`, billingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.OrderNumber, &item.Description, &item.Quantity,
			&item.Rate, &item.Amount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
