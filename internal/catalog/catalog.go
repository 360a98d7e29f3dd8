// Package catalog provides the pricing tables: the product catalog and the
// coupon table, from built-in defaults, a YAML file or a store, optionally
// cached.
package catalog

import (
	"context"

	"github.com/xenking/petrobahia/internal/domain/pricing"
)

var (
	_ pricing.Provider = (*Static)(nil)
	_ pricing.Provider = (*Cached)(nil)
)

// Static always returns the same catalog.
type Static struct {
	catalog *pricing.Catalog
}

func NewStatic(c *pricing.Catalog) *Static {
	return &Static{catalog: c}
}

func (s *Static) Catalog(context.Context) (*pricing.Catalog, error) {
	return s.catalog, nil
}

// Tables is a built catalog together with the coupon resolver that goes with
// it.
type Tables struct {
	Catalog  *pricing.Catalog
	Resolver *pricing.Resolver
}

// Defaults returns the built-in fuel catalog and coupon table.
func Defaults() *Tables {
	return &Tables{
		Catalog:  pricing.DefaultCatalog(),
		Resolver: pricing.DefaultResolver(),
	}
}
