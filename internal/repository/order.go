package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/order"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

const (
	createOrderSQL = `INSERT INTO orders (id, customer_tax_id, lines, gross, discounts, total, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	findOrdersByCustomerSQL = `SELECT o.id, o.lines, o.created_at, c.tax_id, c.name, c.email, c.created_at
	FROM orders o JOIN customers c ON c.tax_id = o.customer_tax_id
	WHERE o.customer_tax_id = $1
	ORDER BY o.created_at, o.id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save persists an order. Lines are stored as priced snapshots in a JSONB
// column; totals are denormalized for reporting only.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	c := o.Customer()
	if c == nil {
		return fmt.Errorf("creating order %q: no customer", o.ID())
	}

	snapshots := make([]pricing.LineSnapshot, 0, o.Len())
	for _, l := range o.Lines() {
		snapshots = append(snapshots, l.Snapshot())
	}
	linesJSON, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("marshaling order lines: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID(), c.TaxID, linesJSON, o.Gross(), o.Discounts(), o.Total(), o.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID(), err)
	}

	return nil
}

// FindByCustomer returns the customer's orders oldest first. Stored lines are
// restored as priced; they are not re-priced against the current catalog.
func (r *OrderRepository) FindByCustomer(ctx context.Context, taxID string) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, findOrdersByCustomerSQL, taxID)
	if err != nil {
		return nil, fmt.Errorf("finding orders of %q: %w", taxID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (*order.Order, error) {
	var (
		id        string
		linesJSON []byte
		createdAt time.Time
		c         customer.Customer
	)
	if err := row.Scan(&id, &linesJSON, &createdAt, &c.TaxID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
		return nil, err
	}

	var snapshots []pricing.LineSnapshot
	if err := json.Unmarshal(linesJSON, &snapshots); err != nil {
		return nil, fmt.Errorf("decoding lines of order %q: %w", id, err)
	}
	lines := make([]pricing.LineItem, 0, len(snapshots))
	for _, s := range snapshots {
		l, err := pricing.RestoreLineItem(s)
		if err != nil {
			return nil, fmt.Errorf("restoring line of order %q: %w", id, err)
		}
		lines = append(lines, l)
	}

	return order.Restore(id, &c, lines, createdAt), nil
}
