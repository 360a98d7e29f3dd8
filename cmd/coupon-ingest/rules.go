package main

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/xenking/petrobahia/internal/domain/pricing"
)

// defaultRate applies to campaign codes without a dedicated rule.
var defaultRate = decimal.RequireFromString("0.02")

// rulesFor maps codes to coupon rules. Codes of the built-in coupon table
// keep their rule; any other code gets a 2% percentage discount.
func rulesFor(codes []string) []pricing.CouponRule {
	known := lo.KeyBy(pricing.DefaultCouponRules(), func(r pricing.CouponRule) string { return r.Code })
	return lo.Map(codes, func(code string, _ int) pricing.CouponRule {
		if rule, ok := known[code]; ok {
			return rule
		}
		return pricing.CouponRule{Code: code, Type: pricing.CouponPercentage, Value: defaultRate}
	})
}
