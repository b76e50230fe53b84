package production

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort abstracts persistence for the workflow service.
type RepositoryPort interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	List(ctx context.Context) ([]Record, error)
	FindActiveByOrderID(ctx context.Context, orderID int64) (Record, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// Repository persists production records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, resin_type, volume, unit, produced_at, materials_consumed, status,
 client_name, from_order_id, order_number, dispatched_quantity, deployed_at,
 original_production_id, from_split, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec Record
		raw []byte
	)
	err := row.Scan(
		&rec.ID, &rec.ResinType, &rec.Volume, &rec.Unit, &rec.ProducedAt, &raw, &rec.Status,
		&rec.ClientName, &rec.FromOrderID, &rec.OrderNumber, &rec.DispatchedQuantity, &rec.DeployedAt,
		&rec.OriginalProductionID, &rec.FromSplit, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec.MaterialsConsumed); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	raw, err := json.Marshal(rec.MaterialsConsumed)
	if err != nil {
		return Record{}, err
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	err = r.pool.QueryRow(ctx,
		`INSERT INTO production_records
		 (resin_type, volume, unit, produced_at, materials_consumed, status, client_name,
		  from_order_id, order_number, dispatched_quantity, deployed_at,
		  original_production_id, from_split, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		 RETURNING id`,
		rec.ResinType, rec.Volume, rec.Unit, rec.ProducedAt, raw, rec.Status, rec.ClientName,
		rec.FromOrderID, rec.OrderNumber, rec.DispatchedQuantity, rec.DeployedAt,
		rec.OriginalProductionID, rec.FromSplit, now,
	).Scan(&rec.ID)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM production_records WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// List returns non-deleted records, newest production first.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM production_records WHERE status <> $1 ORDER BY produced_at DESC`,
		StatusDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FindActiveByOrderID returns the non-deleted record referencing the
// standing order, if any.
func (r *Repository) FindActiveByOrderID(ctx context.Context, orderID int64) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM production_records WHERE from_order_id = $1 AND status <> $2 LIMIT 1`,
		orderID, StatusDeleted))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE production_records SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyDispatch rewrites the dispatch fields of a record after a deploy.
func (r *Repository) ApplyDispatch(ctx context.Context, id int64, volume, dispatchedQty float64, deployedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE production_records
		 SET volume = $1, dispatched_quantity = $2, status = $3, deployed_at = $4, updated_at = $5
		 WHERE id = $6`,
		volume, dispatchedQty, StatusDeployed, deployedAt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOriginal returns deployed rows cloned from the given record,
// plus the record itself when deployed. Used by suffix normalization.
func (r *Repository) ListByOriginal(ctx context.Context, originalID int64) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM production_records
		 WHERE status = $1 AND (original_production_id = $2 OR id = $2)
		 ORDER BY id`,
		StatusDeployed, originalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListSplitGroups returns the ids of records that deployed rows point at
// through original_production_id.
func (r *Repository) ListSplitGroups(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT original_production_id FROM production_records
		 WHERE status = $1 AND original_production_id IS NOT NULL`,
		StatusDeployed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetOrderNumber rewrites the order number suffix fields of one record.
func (r *Repository) SetOrderNumber(ctx context.Context, id int64, orderNumber string, fromSplit bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE production_records SET order_number = $1, from_split = $2, updated_at = $3 WHERE id = $4`,
		orderNumber, fromSplit, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
