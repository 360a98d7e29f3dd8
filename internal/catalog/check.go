package catalog

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// Check returns a readiness check failing when p cannot load a catalog or
// the catalog has no products. Orders cannot be priced in either case.
func Check(p pricing.Provider) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		c, err := p.Catalog(ctx)
		if err != nil {
			return errors.Wrap(err, "load catalog")
		}
		if c.Len() == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	}
}
