package pricing

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"
)

// Entry binds a product kind to its unit price and volume discount policy.
type Entry struct {
	kind      Kind
	unitPrice decimal.Decimal
	policy    DiscountPolicy
}

// NewEntry validates and builds a catalog entry. The kind is normalized with
// ParseKind.
func NewEntry(kind Kind, unitPrice decimal.Decimal, policy DiscountPolicy) (Entry, error) {
	kind = ParseKind(string(kind))
	if kind.IsZero() {
		return Entry{}, configErr("catalog entry", "product kind required")
	}
	if unitPrice.IsNegative() {
		return Entry{}, configErr("catalog entry", "negative unit price %s for %s", unitPrice, kind)
	}
	if policy == nil {
		return Entry{}, configErr("catalog entry", "discount policy required for %s", kind)
	}
	return Entry{kind: kind, unitPrice: unitPrice, policy: policy}, nil
}

func (e Entry) Kind() Kind                 { return e.kind }
func (e Entry) UnitPrice() decimal.Decimal { return e.unitPrice }
func (e Entry) Policy() DiscountPolicy     { return e.policy }

// Catalog is an immutable set of entries keyed by kind.
type Catalog struct {
	entries map[Kind]Entry
}

// NewCatalog indexes entries by kind. Duplicate kinds are rejected.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	byKind := make(map[Kind]Entry, len(entries))
	for _, e := range entries {
		if e.kind.IsZero() || e.policy == nil {
			return nil, configErr("catalog", "uninitialized entry")
		}
		if _, dup := byKind[e.kind]; dup {
			return nil, configErr("catalog", "duplicate product kind %s", e.kind)
		}
		byKind[e.kind] = e
	}
	return &Catalog{entries: byKind}, nil
}

// Lookup finds the entry for kind. The kind is normalized first.
func (c *Catalog) Lookup(kind Kind) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.entries[ParseKind(string(kind))]
	return e, ok
}

// Kinds lists the catalog's kinds in lexical order.
func (c *Catalog) Kinds() []Kind {
	if c == nil {
		return nil
	}
	kinds := make([]Kind, 0, len(c.entries))
	for k := range c.entries {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Entries lists the catalog's entries ordered by kind.
func (c *Catalog) Entries() []Entry {
	kinds := c.Kinds()
	out := make([]Entry, len(kinds))
	for i, k := range kinds {
		out[i] = c.entries[k]
	}
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// DefaultCatalog is the fuel price list the stations started with.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Entry{kind: KindDiesel, unitPrice: decimal.RequireFromString("5.50"), policy: DieselPolicy()},
		Entry{kind: KindGasoline, unitPrice: decimal.RequireFromString("6.20"), policy: GasolinePolicy()},
		Entry{kind: KindEthanol, unitPrice: decimal.RequireFromString("4.80"), policy: EthanolPolicy()},
		Entry{kind: KindLubricant, unitPrice: decimal.RequireFromString("35.00"), policy: NoDiscount{}},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Provider supplies the current catalog. Returned catalogs must not be
// mutated by callers or providers.
type Provider interface {
	Catalog(ctx context.Context) (*Catalog, error)
}
