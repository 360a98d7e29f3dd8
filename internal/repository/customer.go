package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/petrobahia/internal/domain/customer"
)

const (
	createCustomerSQL = `INSERT INTO customers (tax_id, name, email, created_at) VALUES ($1, $2, $3, $4)`

	getCustomerSQL = `SELECT tax_id, name, email, created_at FROM customers WHERE tax_id = $1`

	listCustomersSQL = `SELECT tax_id, name, email, created_at FROM customers ORDER BY created_at, tax_id`
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	_, err := r.pool.Exec(ctx, createCustomerSQL, c.TaxID, c.Name, c.Email, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return customer.ErrAlreadyExists
		}
		return fmt.Errorf("creating customer %q: %w", c.TaxID, err)
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, taxID string) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerSQL, taxID)
	if err != nil {
		return nil, fmt.Errorf("getting customer %q: %w", taxID, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", taxID, err)
	}
	return &c, nil
}

// List returns customers in registration order.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.TaxID, &c.Name, &c.Email, &c.CreatedAt)
	return c, err
}
