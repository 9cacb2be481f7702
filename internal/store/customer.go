package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/snapreward/apiserver/types"
)

// CustomerRepository handles persistence for customer contacts.
type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) List(ctx context.Context) ([]types.Customer, error) {
	const query = `
		SELECT id, name, phone, email, created_at
		FROM customers
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]types.Customer, 0)
	for rows.Next() {
		var customer types.Customer
		if err := rows.Scan(
			&customer.ID,
			&customer.Name,
			&customer.Phone,
			&customer.Email,
			&customer.CreatedAt,
		); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return customers, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int) (types.Customer, error) {
	const query = `
		SELECT id, name, phone, email, created_at
		FROM customers
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (types.Customer, error) {
	const query = `
		SELECT id, name, phone, email, created_at
		FROM customers
		WHERE phone = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, phone))
}

func (r *CustomerRepository) Create(ctx context.Context, customer types.Customer) (types.Customer, error) {
	customer.CreatedAt = time.Now()

	const query = `
		INSERT INTO customers (name, phone, email, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.CreatedAt,
	).Scan(&customer.ID); err != nil {
		return types.Customer{}, translateError(err)
	}
	return customer, nil
}

func (r *CustomerRepository) Update(ctx context.Context, customer types.Customer) (types.Customer, error) {
	const query = `
		UPDATE customers
		SET name = $1,
			phone = $2,
			email = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(
		ctx,
		query,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.ID,
	)
	if err != nil {
		return types.Customer{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Customer{}, err
	}
	if affected == 0 {
		return types.Customer{}, ErrNotFound
	}
	return customer, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM customers WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert inserts the customer or, when the phone already exists,
// overwrites the existing record's mutable fields. Used by bulk import,
// which merges duplicates instead of rejecting them.
func (r *CustomerRepository) Upsert(ctx context.Context, customer types.Customer) (types.Customer, error) {
	customer.CreatedAt = time.Now()

	const query = `
		INSERT INTO customers (name, phone, email, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone) DO UPDATE
		SET name = EXCLUDED.name,
			email = EXCLUDED.email
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.CreatedAt,
	).Scan(&customer.ID, &customer.CreatedAt); err != nil {
		return types.Customer{}, err
	}
	return customer, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM customers`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *CustomerRepository) scanOne(row *sql.Row) (types.Customer, error) {
	var customer types.Customer
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.Email,
		&customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Customer{}, ErrNotFound
		}
		return types.Customer{}, err
	}
	return customer, nil
}
