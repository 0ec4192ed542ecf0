package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PercentToRate converts a whole percentage (4.5) to a fraction (0.045).
// Used only where a human types percentages, such as CLI flags.
func PercentToRate(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}

// RateToPercent converts a fraction (0.045) to a whole percentage (4.5).
func RateToPercent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}
