package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/petrobahia/internal/catalog"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

const (
	listProductsSQL = `SELECT kind, unit_price, policy FROM products WHERE active = TRUE ORDER BY kind`

	upsertProductSQL = `INSERT INTO products (kind, unit_price, policy, active, updated_at)
		VALUES ($1, $2, $3, TRUE, now())
		ON CONFLICT (kind) DO UPDATE
		SET unit_price = EXCLUDED.unit_price, policy = EXCLUDED.policy, active = TRUE, updated_at = now()`
)

var _ pricing.Provider = (*ProductRepository)(nil)

// ProductRepository stores the product catalog. Each product row keeps its
// discount policy as a JSON policy spec.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all active products ordered by kind.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Catalog loads and validates the active products. A stored product with an
// invalid policy fails the whole load.
func (r *ProductRepository) Catalog(ctx context.Context) (*pricing.Catalog, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	c, err := catalog.BuildCatalog(products)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	return c, nil
}

// Upsert inserts or replaces products in one transaction.
func (r *ProductRepository) Upsert(ctx context.Context, products ...catalog.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, p := range products {
			policy, err := json.Marshal(p.Policy)
			if err != nil {
				return fmt.Errorf("marshaling policy of %q: %w", p.Kind, err)
			}
			if _, err := tx.Exec(ctx, upsertProductSQL, pricing.ParseKind(string(p.Kind)), p.UnitPrice, policy); err != nil {
				return fmt.Errorf("upserting product %q: %w", p.Kind, err)
			}
		}
		return nil
	})
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p      catalog.Product
		kind   string
		price  decimal.Decimal
		policy []byte
	)
	if err := row.Scan(&kind, &price, &policy); err != nil {
		return p, err
	}
	p.Kind = pricing.Kind(kind)
	p.UnitPrice = price
	if err := json.Unmarshal(policy, &p.Policy); err != nil {
		return p, fmt.Errorf("decoding policy of %q: %w", kind, err)
	}
	return p, nil
}
