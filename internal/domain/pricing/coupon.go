package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Coupon computes the discount a coupon grants on one line. Discounts are
// never negative and are computed against the gross amount of the line.
type Coupon interface {
	Discount(gross decimal.Decimal, kind Kind) decimal.Decimal
	// Code is the code the coupon was resolved from, empty for coupons built
	// directly.
	Code() string
}

// NoCoupon grants nothing. It is what unknown and empty codes resolve to.
type NoCoupon struct{}

func (NoCoupon) Discount(decimal.Decimal, Kind) decimal.Decimal { return decimal.Zero }
func (NoCoupon) Code() string                                   { return "" }

// Percentage takes a share of the gross amount.
type Percentage struct {
	rate decimal.Decimal
}

// NewPercentage returns a Percentage coupon. rate must lie in [0, 1].
func NewPercentage(rate decimal.Decimal) (*Percentage, error) {
	if err := checkRate("percentage coupon", rate); err != nil {
		return nil, err
	}
	return &Percentage{rate: rate}, nil
}

func (c *Percentage) Discount(gross decimal.Decimal, _ Kind) decimal.Decimal {
	return gross.Mul(c.rate)
}

func (*Percentage) Code() string { return "" }

// Rate returns the configured share.
func (c *Percentage) Rate() decimal.Decimal { return c.rate }

// FixedAmount takes a fixed value off, capped at the gross amount.
type FixedAmount struct {
	value decimal.Decimal
}

func NewFixedAmount(value decimal.Decimal) (*FixedAmount, error) {
	if value.IsNegative() {
		return nil, configErr("fixed amount coupon", "negative value %s", value)
	}
	return &FixedAmount{value: value}, nil
}

func (c *FixedAmount) Discount(gross decimal.Decimal, _ Kind) decimal.Decimal {
	return decimal.Min(c.value, gross)
}

func (*FixedAmount) Code() string { return "" }

// Value returns the configured amount.
func (c *FixedAmount) Value() decimal.Decimal { return c.value }

// KindRestrictedFixedAmount behaves like FixedAmount on lines of one product
// kind and grants nothing elsewhere. Kinds are compared case-insensitively.
type KindRestrictedFixedAmount struct {
	value decimal.Decimal
	kind  Kind
}

func NewKindRestrictedFixedAmount(value decimal.Decimal, kind Kind) (*KindRestrictedFixedAmount, error) {
	if value.IsNegative() {
		return nil, configErr("kind restricted coupon", "negative value %s", value)
	}
	kind = ParseKind(string(kind))
	if kind.IsZero() {
		return nil, configErr("kind restricted coupon", "product kind required")
	}
	return &KindRestrictedFixedAmount{value: value, kind: kind}, nil
}

func (c *KindRestrictedFixedAmount) Discount(gross decimal.Decimal, kind Kind) decimal.Decimal {
	if !strings.EqualFold(strings.TrimSpace(string(kind)), string(c.kind)) {
		return decimal.Zero
	}
	return decimal.Min(c.value, gross)
}

func (*KindRestrictedFixedAmount) Code() string { return "" }

// Value returns the configured amount.
func (c *KindRestrictedFixedAmount) Value() decimal.Decimal { return c.value }

// Kind returns the product kind the coupon is restricted to.
func (c *KindRestrictedFixedAmount) Kind() Kind { return c.kind }

// CouponType enumerates the coupon strategies a CouponRule can describe.
type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
	CouponKindFixed  CouponType = "kind_fixed"
)

// CouponRule binds a code to a coupon strategy. Kind is only read for
// CouponKindFixed rules.
type CouponRule struct {
	Code  string          `json:"code" yaml:"code"`
	Type  CouponType      `json:"type" yaml:"type"`
	Value decimal.Decimal `json:"value" yaml:"value"`
	Kind  Kind            `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// NewCoupon builds the strategy a rule describes. The returned coupon carries
// the rule's normalized code.
func NewCoupon(rule CouponRule) (Coupon, error) {
	code := NormalizeCode(rule.Code)
	if code == "" {
		return nil, configErr("coupon", "code required")
	}

	var (
		strategy Coupon
		err      error
	)
	switch rule.Type {
	case CouponPercentage:
		strategy, err = orNilCoupon(NewPercentage(rule.Value))
	case CouponFixed:
		strategy, err = orNilCoupon(NewFixedAmount(rule.Value))
	case CouponKindFixed:
		strategy, err = orNilCoupon(NewKindRestrictedFixedAmount(rule.Value, rule.Kind))
	default:
		return nil, configErr("coupon", "unsupported coupon type %q for code %s", rule.Type, code)
	}
	if err != nil {
		return nil, err
	}
	return coded{Coupon: strategy, code: code}, nil
}

// RuleOf describes a coupon built by this package. The second result is false
// for NoCoupon and foreign implementations.
func RuleOf(c Coupon) (CouponRule, bool) {
	code := c.Code()
	if cc, ok := c.(coded); ok {
		c = cc.Coupon
	}
	switch c := c.(type) {
	case *Percentage:
		return CouponRule{Code: code, Type: CouponPercentage, Value: c.rate}, true
	case *FixedAmount:
		return CouponRule{Code: code, Type: CouponFixed, Value: c.value}, true
	case *KindRestrictedFixedAmount:
		return CouponRule{Code: code, Type: CouponKindFixed, Value: c.value, Kind: c.kind}, true
	default:
		return CouponRule{}, false
	}
}

// NormalizeCode trims and upper-cases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// coded labels a strategy with the code that selected it.
type coded struct {
	Coupon
	code string
}

func (c coded) Code() string { return c.code }

func orNilCoupon[C Coupon](c C, err error) (Coupon, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
