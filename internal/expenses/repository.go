package expenses

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts expense and overtime persistence.
type Repository interface {
	InsertExpense(ctx context.Context, e Expense) (Expense, error)
	ListExpenses(ctx context.Context) ([]Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	InsertOvertime(ctx context.Context, o Overtime) (Overtime, error)
	ListOvertime(ctx context.Context) ([]Overtime, error)
	DeleteOvertime(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) InsertExpense(ctx context.Context, e Expense) (Expense, error) {
	e.CreatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx,
		`INSERT INTO expenses (category, description, amount, incurred_on, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		e.Category, e.Description, e.Amount, e.IncurredOn, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (r *repository) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, category, description, amount, incurred_on, created_at
		 FROM expenses ORDER BY incurred_on DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.IncurredOn, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) DeleteExpense(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertOvertime(ctx context.Context, o Overtime) (Overtime, error) {
	o.CreatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx,
		`INSERT INTO overtime_entries (employee_name, hours, rate, amount, worked_on, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		o.EmployeeName, o.Hours, o.Rate, o.Amount, o.WorkedOn, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return Overtime{}, err
	}
	return o, nil
}

func (r *repository) ListOvertime(ctx context.Context) ([]Overtime, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, employee_name, hours, rate, amount, worked_on, created_at
		 FROM overtime_entries ORDER BY worked_on DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Overtime
	for rows.Next() {
		var o Overtime
		if err := rows.Scan(&o.ID, &o.EmployeeName, &o.Hours, &o.Rate, &o.Amount, &o.WorkedOn, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repository) DeleteOvertime(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM overtime_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
