package clients

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts client persistence.
type Repository interface {
	List(ctx context.Context, search string) ([]Client, error)
	Get(ctx context.Context, id int64) (Client, error)
	GetByName(ctx context.Context, name string) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, id int64, client Client) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const clientColumns = `id, name, contact_person, email, phone, address, district, state, created_at, updated_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.ContactPerson, &c.Email, &c.Phone, &c.Address,
		&c.District, &c.State, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, search string) ([]Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	args := []any{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR district ILIKE $1 OR state ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

// GetByName matches the name case-insensitively.
func (r *repository) GetByName(ctx context.Context, name string) (Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE lower(name) = lower($1)`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, client Client) (Client, error) {
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	err := r.db.QueryRow(ctx,
		`INSERT INTO clients (name, contact_person, email, phone, address, district, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 RETURNING id`,
		client.Name, client.ContactPerson, client.Email, client.Phone, client.Address,
		client.District, client.State, now,
	).Scan(&client.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Client{}, ErrDuplicateName
		}
		return Client{}, err
	}
	return client, nil
}

func (r *repository) Update(ctx context.Context, id int64, client Client) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE clients SET name = $1, contact_person = $2, email = $3, phone = $4,
		 address = $5, district = $6, state = $7, updated_at = $8
		 WHERE id = $9`,
		client.Name, client.ContactPerson, client.Email, client.Phone, client.Address,
		client.District, client.State, time.Now().UTC(), id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
