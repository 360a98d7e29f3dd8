package pricing

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Resolver maps coupon codes to strategies. Its table is fixed at
// construction, so a Resolver can be shared freely.
type Resolver struct {
	byCode map[string]Coupon
}

// NewResolver builds the code table from rules. Codes are matched after
// trimming and upper-casing, and must be unique under that normalization.
func NewResolver(rules ...CouponRule) (*Resolver, error) {
	byCode := make(map[string]Coupon, len(rules))
	for _, rule := range rules {
		c, err := NewCoupon(rule)
		if err != nil {
			return nil, err
		}
		if _, dup := byCode[c.Code()]; dup {
			return nil, configErr("coupon resolver", "duplicate code %s", c.Code())
		}
		byCode[c.Code()] = c
	}
	return &Resolver{byCode: byCode}, nil
}

// Resolve returns the strategy registered for code. Empty and unknown codes
// resolve to NoCoupon; Resolve never fails. A nil Resolver knows no codes.
func (r *Resolver) Resolve(code string) Coupon {
	if r == nil {
		return NoCoupon{}
	}
	if c, ok := r.byCode[NormalizeCode(code)]; ok {
		return c
	}
	return NoCoupon{}
}

// Rules describes the table, ordered by code.
func (r *Resolver) Rules() []CouponRule {
	if r == nil {
		return nil
	}
	out := make([]CouponRule, 0, len(r.byCode))
	for _, c := range r.byCode {
		if rule, ok := RuleOf(c); ok {
			out = append(out, rule)
		}
	}
	slices.SortFunc(out, func(a, b CouponRule) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// DefaultCouponRules is the coupon table the stations have always honored.
func DefaultCouponRules() []CouponRule {
	return []CouponRule{
		{Code: "MEGA10", Type: CouponPercentage, Value: decimal.RequireFromString("0.10")},
		{Code: "NOVO5", Type: CouponPercentage, Value: decimal.RequireFromString("0.05")},
		{Code: "LUB2", Type: CouponKindFixed, Value: decimal.NewFromInt(2), Kind: KindLubricant},
	}
}

// DefaultResolver resolves DefaultCouponRules.
func DefaultResolver() *Resolver {
	r, err := NewResolver(DefaultCouponRules()...)
	if err != nil {
		panic(err)
	}
	return r
}
