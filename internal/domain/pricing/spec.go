package pricing

import "github.com/shopspring/decimal"

// PolicyType enumerates the discount policies that can be described in stored
// or file-based catalogs.
type PolicyType string

const (
	// PolicyNone never discounts.
	PolicyNone PolicyType = "none"
	// PolicyTieredPercentage applies the rate of the highest tier exceeded.
	PolicyTieredPercentage PolicyType = "tiered_percentage"
	// PolicyFlatAboveThreshold takes a fixed amount off above the threshold.
	PolicyFlatAboveThreshold PolicyType = "flat_above_threshold"
	// PolicyPercentageAboveThreshold takes a rate of gross off above the threshold.
	PolicyPercentageAboveThreshold PolicyType = "percentage_above_threshold"
)

// PolicySpec is the serializable description of a DiscountPolicy.
type PolicySpec struct {
	Type      PolicyType      `json:"type" yaml:"type"`
	Tiers     []Tier          `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	Threshold int             `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Rate      decimal.Decimal `json:"rate" yaml:"rate,omitempty"`
	Amount    decimal.Decimal `json:"amount" yaml:"amount,omitempty"`
}

// BuildPolicy turns a spec into a policy. An empty type means PolicyNone.
func BuildPolicy(spec PolicySpec) (DiscountPolicy, error) {
	switch spec.Type {
	case PolicyNone, "":
		return NoDiscount{}, nil
	case PolicyTieredPercentage:
		return orNil(NewTieredPercentage(spec.Tiers...))
	case PolicyFlatAboveThreshold:
		return orNil(NewFlatAboveThreshold(spec.Threshold, spec.Amount))
	case PolicyPercentageAboveThreshold:
		return orNil(NewPercentageAboveThreshold(spec.Threshold, spec.Rate))
	default:
		return nil, configErr("discount policy", "unsupported policy type %q", spec.Type)
	}
}

// SpecOf describes a policy built by this package. The second result is false
// for foreign DiscountPolicy implementations.
func SpecOf(p DiscountPolicy) (PolicySpec, bool) {
	switch p := p.(type) {
	case NoDiscount:
		return PolicySpec{Type: PolicyNone}, true
	case *TieredPercentage:
		return PolicySpec{Type: PolicyTieredPercentage, Tiers: p.Tiers()}, true
	case *FlatAboveThreshold:
		return PolicySpec{Type: PolicyFlatAboveThreshold, Threshold: p.threshold, Amount: p.amount}, true
	case *PercentageAboveThreshold:
		return PolicySpec{Type: PolicyPercentageAboveThreshold, Threshold: p.threshold, Rate: p.rate}, true
	default:
		return PolicySpec{}, false
	}
}

// orNil keeps a failed constructor from leaking a typed nil pointer into a
// non-nil DiscountPolicy interface.
func orNil[P DiscountPolicy](p P, err error) (DiscountPolicy, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
