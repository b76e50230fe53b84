package sellers

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts seller persistence.
type Repository interface {
	List(ctx context.Context, search string) ([]Seller, error)
	Get(ctx context.Context, id int64) (Seller, error)
	Create(ctx context.Context, seller Seller) (Seller, error)
	Update(ctx context.Context, id int64, seller Seller) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const sellerColumns = `id, name, region, email, phone, created_at, updated_at`

func scanSeller(row pgx.Row) (Seller, error) {
	var s Seller
	err := row.Scan(&s.ID, &s.Name, &s.Region, &s.Email, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *repository) List(ctx context.Context, search string) ([]Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers`
	args := []any{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR region ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Seller
	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Seller, error) {
	s, err := scanSeller(r.db.QueryRow(ctx,
		`SELECT `+sellerColumns+` FROM sellers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Seller{}, ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, seller Seller) (Seller, error) {
	now := time.Now().UTC()
	seller.CreatedAt = now
	seller.UpdatedAt = now
	err := r.db.QueryRow(ctx,
		`INSERT INTO sellers (name, region, email, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id`,
		seller.Name, seller.Region, seller.Email, seller.Phone, now,
	).Scan(&seller.ID)
	if err != nil {
		return Seller{}, err
	}
	return seller, nil
}

func (r *repository) Update(ctx context.Context, id int64, seller Seller) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sellers SET name = $1, region = $2, email = $3, phone = $4, updated_at = $5 WHERE id = $6`,
		seller.Name, seller.Region, seller.Email, seller.Phone, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sellers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
