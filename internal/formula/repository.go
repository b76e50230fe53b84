package formula

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists formula overrides in PostgreSQL. Material lists are
// stored as a jsonb column in the normalized {name, ratio} shape; no
// alternate field names survive past this boundary.
type Repository interface {
	GetByName(ctx context.Context, name string) (Formula, error)
	List(ctx context.Context) ([]Formula, error)
	Create(ctx context.Context, f Formula) (Formula, error)
	Update(ctx context.Context, id int64, f Formula) (Formula, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetByName(ctx context.Context, name string) (Formula, error) {
	var (
		f   Formula
		raw []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, materials, created_at, updated_at FROM resin_formulas WHERE name = $1`,
		name,
	).Scan(&f.ID, &f.Name, &raw, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Formula{}, ErrNotFound
		}
		return Formula{}, err
	}
	if err := json.Unmarshal(raw, &f.Materials); err != nil {
		return Formula{}, err
	}
	return f, nil
}

func (r *repository) List(ctx context.Context) ([]Formula, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, materials, created_at, updated_at FROM resin_formulas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var formulas []Formula
	for rows.Next() {
		var (
			f   Formula
			raw []byte
		)
		if err := rows.Scan(&f.ID, &f.Name, &raw, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &f.Materials); err != nil {
			return nil, err
		}
		formulas = append(formulas, f)
	}
	return formulas, rows.Err()
}

func (r *repository) Create(ctx context.Context, f Formula) (Formula, error) {
	raw, err := json.Marshal(f.Materials)
	if err != nil {
		return Formula{}, err
	}
	now := time.Now().UTC()
	err = r.pool.QueryRow(ctx,
		`INSERT INTO resin_formulas (name, materials, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id`,
		f.Name, raw, now,
	).Scan(&f.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Formula{}, ErrDuplicateName
		}
		return Formula{}, err
	}
	f.CreatedAt = now
	f.UpdatedAt = now
	return f, nil
}

func (r *repository) Update(ctx context.Context, id int64, f Formula) (Formula, error) {
	raw, err := json.Marshal(f.Materials)
	if err != nil {
		return Formula{}, err
	}
	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx,
		`UPDATE resin_formulas SET name = $1, materials = $2, updated_at = $3 WHERE id = $4`,
		f.Name, raw, now, id,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Formula{}, ErrDuplicateName
		}
		return Formula{}, err
	}
	if tag.RowsAffected() == 0 {
		return Formula{}, ErrNotFound
	}
	f.ID = id
	f.UpdatedAt = now
	return f, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resin_formulas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
