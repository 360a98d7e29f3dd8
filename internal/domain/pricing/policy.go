package pricing

import (
	"slices"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// DiscountPolicy computes the volume discount for a catalog entry. The result
// is never negative. It may exceed the gross amount; the line item clamps the
// net figure at zero.
type DiscountPolicy interface {
	Discount(unitPrice decimal.Decimal, quantity int) decimal.Decimal
}

// NoDiscount never discounts.
type NoDiscount struct{}

func (NoDiscount) Discount(decimal.Decimal, int) decimal.Decimal { return decimal.Zero }

// Tier is one step of a TieredPercentage policy: quantities strictly above
// Above earn Rate of the gross amount.
type Tier struct {
	Above int             `json:"above" yaml:"above"`
	Rate  decimal.Decimal `json:"rate" yaml:"rate"`
}

// TieredPercentage applies the rate of the highest tier whose threshold the
// quantity exceeds. Tiers are mutually exclusive.
type TieredPercentage struct {
	tiers []Tier // highest threshold first
}

// NewTieredPercentage validates the tiers and orders them from the highest
// threshold to the lowest.
func NewTieredPercentage(tiers ...Tier) (*TieredPercentage, error) {
	if len(tiers) == 0 {
		return nil, configErr("tiered percentage policy", "at least one tier required")
	}
	sorted := slices.Clone(tiers)
	for _, t := range sorted {
		if t.Above < 0 {
			return nil, configErr("tiered percentage policy", "negative threshold %d", t.Above)
		}
		if err := checkRate("tiered percentage policy", t.Rate); err != nil {
			return nil, err
		}
	}
	slices.SortFunc(sorted, func(a, b Tier) int { return b.Above - a.Above })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Above == sorted[i-1].Above {
			return nil, configErr("tiered percentage policy", "duplicate threshold %d", sorted[i].Above)
		}
	}
	return &TieredPercentage{tiers: sorted}, nil
}

func (p *TieredPercentage) Discount(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	for _, t := range p.tiers {
		if quantity > t.Above {
			return gross(unitPrice, quantity).Mul(t.Rate)
		}
	}
	return decimal.Zero
}

// Tiers returns a copy of the tiers, highest threshold first.
func (p *TieredPercentage) Tiers() []Tier { return slices.Clone(p.tiers) }

// FlatAboveThreshold takes a fixed amount off once the quantity exceeds the
// threshold.
type FlatAboveThreshold struct {
	threshold int
	amount    decimal.Decimal
}

func NewFlatAboveThreshold(threshold int, amount decimal.Decimal) (*FlatAboveThreshold, error) {
	if threshold < 0 {
		return nil, configErr("flat above threshold policy", "negative threshold %d", threshold)
	}
	if amount.IsNegative() {
		return nil, configErr("flat above threshold policy", "negative amount %s", amount)
	}
	return &FlatAboveThreshold{threshold: threshold, amount: amount}, nil
}

func (p *FlatAboveThreshold) Discount(_ decimal.Decimal, quantity int) decimal.Decimal {
	if quantity > p.threshold {
		return p.amount
	}
	return decimal.Zero
}

// PercentageAboveThreshold takes a share of the gross amount once the quantity
// exceeds the threshold.
type PercentageAboveThreshold struct {
	threshold int
	rate      decimal.Decimal
}

func NewPercentageAboveThreshold(threshold int, rate decimal.Decimal) (*PercentageAboveThreshold, error) {
	if threshold < 0 {
		return nil, configErr("percentage above threshold policy", "negative threshold %d", threshold)
	}
	if err := checkRate("percentage above threshold policy", rate); err != nil {
		return nil, err
	}
	return &PercentageAboveThreshold{threshold: threshold, rate: rate}, nil
}

func (p *PercentageAboveThreshold) Discount(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if quantity > p.threshold {
		return gross(unitPrice, quantity).Mul(p.rate)
	}
	return decimal.Zero
}

// DieselPolicy is 10% above 1000 units, 5% above 500.
func DieselPolicy() DiscountPolicy {
	return &TieredPercentage{tiers: []Tier{
		{Above: 1000, Rate: decimal.RequireFromString("0.10")},
		{Above: 500, Rate: decimal.RequireFromString("0.05")},
	}}
}

// GasolinePolicy is 100 off above 200 units.
func GasolinePolicy() DiscountPolicy {
	return &FlatAboveThreshold{threshold: 200, amount: decimal.NewFromInt(100)}
}

// EthanolPolicy is 3% above 80 units.
func EthanolPolicy() DiscountPolicy {
	return &PercentageAboveThreshold{threshold: 80, rate: decimal.RequireFromString("0.03")}
}

func gross(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func checkRate(component string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(one) {
		return configErr(component, "rate %s outside [0, 1]", rate)
	}
	return nil
}
