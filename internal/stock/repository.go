package stock

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRepository exposes row-locked operations used inside a ledger transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, name string) (RawMaterial, error)
	Upsert(ctx context.Context, material RawMaterial) error
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, name string) (RawMaterial, error)
	List(ctx context.Context) ([]RawMaterial, error)
}

// Repository persists raw material rows in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, name string) (RawMaterial, error) {
	var m RawMaterial
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, total_quantity, updated_at FROM raw_materials WHERE name = $1`,
		name,
	).Scan(&m.ID, &m.Name, &m.TotalQuantity, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RawMaterial{}, ErrMaterialNotFound
		}
		return RawMaterial{}, err
	}
	return m, nil
}

func (r *Repository) List(ctx context.Context) ([]RawMaterial, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, total_quantity, updated_at FROM raw_materials ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []RawMaterial
	for rows.Next() {
		var m RawMaterial
		if err := rows.Scan(&m.ID, &m.Name, &m.TotalQuantity, &m.UpdatedAt); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (r *txRepo) GetForUpdate(ctx context.Context, name string) (RawMaterial, error) {
	var m RawMaterial
	err := r.tx.QueryRow(ctx,
		`SELECT id, name, total_quantity, updated_at FROM raw_materials WHERE name = $1 FOR UPDATE`,
		name,
	).Scan(&m.ID, &m.Name, &m.TotalQuantity, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RawMaterial{}, ErrMaterialNotFound
		}
		return RawMaterial{}, err
	}
	return m, nil
}

func (r *txRepo) Upsert(ctx context.Context, material RawMaterial) error {
	if material.UpdatedAt.IsZero() {
		material.UpdatedAt = time.Now().UTC()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO raw_materials (name, total_quantity, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET total_quantity = EXCLUDED.total_quantity, updated_at = EXCLUDED.updated_at`,
		material.Name, material.TotalQuantity, material.UpdatedAt,
	)
	return err
}
