package repository

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/xenking/petrobahia/internal/catalog"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// SaveTables upserts every product of t.Catalog and every rule of
// t.Resolver. Rows not present in t are left untouched.
func SaveTables(ctx context.Context, products *ProductRepository, coupons *CouponRepository, t *catalog.Tables) error {
	if err := products.Upsert(ctx, lo.Map(t.Catalog.Entries(), func(e pricing.Entry, _ int) catalog.Product {
		return catalog.ProductOf(e)
	})...); err != nil {
		return fmt.Errorf("saving products: %w", err)
	}
	if err := coupons.Upsert(ctx, t.Resolver.Rules()...); err != nil {
		return fmt.Errorf("saving coupons: %w", err)
	}
	return nil
}
