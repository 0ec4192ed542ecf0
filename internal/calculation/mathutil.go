package calculation

import "github.com/shopspring/decimal"

// compoundPrecision bounds intermediate digits when raising to integer powers;
// decimal.Pow keeps every digit, which grows without limit over long terms.
const compoundPrecision = 20

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// GrowthFactor returns (1+rate)^periods for periods >= 0.
func GrowthFactor(rate decimal.Decimal, periods int) decimal.Decimal {
	if periods <= 0 {
		return one
	}
	base := one.Add(rate)
	result := one
	for periods > 0 {
		if periods&1 == 1 {
			result = result.Mul(base).Round(compoundPrecision)
		}
		base = base.Mul(base).Round(compoundPrecision)
		periods >>= 1
	}
	return result
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(v, lo), hi)
}

// NonNegative returns v, or zero when v is negative.
func NonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// SafeDiv returns a/b, or zero when b is not positive.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return a.Div(b)
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
