package order

import (
	"fmt"
	"strings"

	"github.com/xenking/petrobahia/internal/domain/customer"
	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// LineRequest is one raw line of an order request. Quantity is a pointer so
// an omitted quantity can be told apart from zero.
type LineRequest struct {
	Kind       string
	Quantity   *int
	CouponCode string
}

// Line is a convenience constructor for a complete LineRequest.
func Line(kind string, quantity int, couponCode string) LineRequest {
	return LineRequest{Kind: kind, Quantity: &quantity, CouponCode: couponCode}
}

// Builder prices raw line requests against a catalog and assembles validated
// orders. It holds no mutable state and may be shared.
type Builder struct {
	resolver *pricing.Resolver
}

// NewBuilder creates a Builder resolving coupon codes with resolver. A nil
// resolver knows no codes.
func NewBuilder(resolver *pricing.Resolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build prices every request and returns the validated order. Nothing is
// returned unless every line prices: the first failing line aborts the build.
//
// Errors: *MissingFieldError for an absent customer, an empty request list or
// a request without kind or quantity; *UnknownProductError for a kind not in
// catalog; *pricing.InvalidQuantityError for non-positive quantities;
// *ValidationError if the assembled order breaks an order-level rule.
func (b *Builder) Build(c *customer.Customer, reqs []LineRequest, catalog *pricing.Catalog) (*Order, error) {
	if c == nil {
		return nil, &MissingFieldError{Field: "customer"}
	}
	if len(reqs) == 0 {
		return nil, &MissingFieldError{Field: "lines"}
	}
	if catalog == nil {
		return nil, &MissingFieldError{Field: "catalog"}
	}

	lines := make([]pricing.LineItem, 0, len(reqs))
	for i, req := range reqs {
		line, err := b.price(i, req, catalog)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	o := New(c, lines)
	if err := Validate(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (b *Builder) price(i int, req LineRequest, catalog *pricing.Catalog) (pricing.LineItem, error) {
	if strings.TrimSpace(req.Kind) == "" {
		return pricing.LineItem{}, &MissingFieldError{Field: fmt.Sprintf("lines[%d].kind", i)}
	}
	if req.Quantity == nil {
		return pricing.LineItem{}, &MissingFieldError{Field: fmt.Sprintf("lines[%d].quantity", i)}
	}

	kind := pricing.ParseKind(req.Kind)
	entry, ok := catalog.Lookup(kind)
	if !ok {
		return pricing.LineItem{}, &UnknownProductError{Kind: kind}
	}
	return pricing.NewLineItem(entry, *req.Quantity, b.resolver.Resolve(req.CouponCode))
}
