package protection

import (
	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AdequacyBand labels an adequacy score for display
type AdequacyBand struct {
	Label  string `json:"label"`
	Colour string `json:"colour"`
}

var (
	BandExcellent = AdequacyBand{Label: "Excellent", Colour: "green"}
	BandGood      = AdequacyBand{Label: "Good", Colour: "blue"}
	BandFair      = AdequacyBand{Label: "Fair", Colour: "amber"}
	BandCritical  = AdequacyBand{Label: "Critical", Colour: "red"}
)

// BandFor maps a score to its band
func BandFor(score int) AdequacyBand {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandFair
	default:
		return BandCritical
	}
}

// coverageRatio is 100 × (need − gap) / need clamped to 0-100, unrounded.
// No need counts as fully covered.
func coverageRatio(need, gap decimal.Decimal) decimal.Decimal {
	if need.LessThanOrEqual(decimal.Zero) {
		return hundred
	}
	pct := need.Sub(gap).Mul(hundred).Div(need)
	return calculation.Clamp(pct, decimal.Zero, hundred)
}

// CoveragePercentage reports the coverage ratio to two decimal places
func CoveragePercentage(need, gap decimal.Decimal) decimal.Decimal {
	return coverageRatio(need, gap).Round(2)
}

// AdequacyScore rounds the unrounded coverage ratio to a whole score, so the
// two-place percentage never feeds a second rounding.
func AdequacyScore(need, gap decimal.Decimal) int {
	return int(coverageRatio(need, gap).Round(0).IntPart())
}

// ScoreNeed scores cover against a single need
func ScoreNeed(need, cover decimal.Decimal) (gap decimal.Decimal, score int) {
	gap = calculation.NonNegative(need.Sub(cover))
	return gap, AdequacyScore(need, gap)
}
