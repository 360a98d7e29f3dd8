package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/petrobahia/internal/domain/pricing"
)

const (
	listCouponsSQL = `SELECT code, coupon_type, value, kind FROM coupons WHERE active = TRUE ORDER BY code`

	upsertCouponSQL = `INSERT INTO coupons (code, coupon_type, value, kind, active)
		VALUES (UPPER($1), $2, $3, $4, TRUE)
		ON CONFLICT (code) DO UPDATE
		SET coupon_type = EXCLUDED.coupon_type, value = EXCLUDED.value, kind = EXCLUDED.kind, active = TRUE`

	deactivateCouponSQL = `UPDATE coupons SET active = FALSE WHERE code = UPPER($1)`
)

// CouponRepository stores the coupon table.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// ListRules returns the active coupon rules ordered by code.
func (r *CouponRepository) ListRules(ctx context.Context) ([]pricing.CouponRule, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCouponRule)
}

// Resolver builds a coupon resolver from the active rules.
func (r *CouponRepository) Resolver(ctx context.Context) (*pricing.Resolver, error) {
	rules, err := r.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	res, err := pricing.NewResolver(rules...)
	if err != nil {
		return nil, fmt.Errorf("building coupon table: %w", err)
	}
	return res, nil
}

// Upsert inserts or replaces rules using a single batch.
func (r *CouponRepository) Upsert(ctx context.Context, rules ...pricing.CouponRule) error {
	batch := &pgx.Batch{}
	for _, rule := range rules {
		batch.Queue(upsertCouponSQL, pricing.NormalizeCode(rule.Code), string(rule.Type), rule.Value, string(rule.Kind))
	}
	br := r.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for _, rule := range rules {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upserting coupon %q: %w", rule.Code, err)
		}
	}
	return br.Close()
}

// Deactivate withdraws a code; it resolves to no discount from then on.
func (r *CouponRepository) Deactivate(ctx context.Context, code string) error {
	if _, err := r.pool.Exec(ctx, deactivateCouponSQL, code); err != nil {
		return fmt.Errorf("deactivating coupon %q: %w", code, err)
	}
	return nil
}

func scanCouponRule(row pgx.CollectableRow) (pricing.CouponRule, error) {
	var (
		rule       pricing.CouponRule
		couponType string
		value      decimal.Decimal
		kind       string
	)
	err := row.Scan(&rule.Code, &couponType, &value, &kind)
	rule.Type = pricing.CouponType(couponType)
	rule.Value = value
	rule.Kind = pricing.Kind(kind)
	return rule, err
}
