package portfolio

import (
	"strings"

	"github.com/rgehrsitz/ukplan/internal/domain"
)

// Asset categories used by the default correlation table.
const (
	Equities     = "equities"
	Bonds        = "bonds"
	Cash         = "cash"
	Alternatives = "alternatives"
)

// defaultCorrelations holds long-run pairwise correlations between asset
// categories. Keys are built by pairKey so lookups are order-independent.
var defaultCorrelations = map[string]float64{
	pairKey(Equities, Equities):         0.80,
	pairKey(Bonds, Bonds):               0.70,
	pairKey(Cash, Cash):                 0.90,
	pairKey(Alternatives, Alternatives): 0.50,
	pairKey(Equities, Bonds):            0.20,
	pairKey(Equities, Cash):             0.00,
	pairKey(Equities, Alternatives):     0.60,
	pairKey(Bonds, Cash):                0.10,
	pairKey(Bonds, Alternatives):        0.30,
	pairKey(Cash, Alternatives):         0.00,
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{Equities, []string{"equit", "stock", "share", "ftse", "s&p"}},
	{Bonds, []string{"bond", "gilt", "fixed income", "credit"}},
	{Cash, []string{"cash", "money market", "deposit"}},
	{Alternatives, []string{"property", "reit", "commodit", "gold", "alternative", "hedge", "infrastructure"}},
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// CategoryOf returns the asset's explicit category, or one inferred from its
// name. Unknown assets have an empty category.
func CategoryOf(asset domain.AssetClass) string {
	if asset.Category != "" {
		return strings.ToLower(asset.Category)
	}
	name := strings.ToLower(asset.Name)
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(name, w) {
				return ck.category
			}
		}
	}
	return ""
}

// Correlation returns the correlation between two asset classes: 1 for the same
// class, then an explicit value from either side's correlation map, then the
// category table, then the engine's fallback.
func (e *Engine) Correlation(a, b domain.AssetClass) float64 {
	if a.Name == b.Name {
		return 1
	}
	if rho, ok := a.Correlations[b.Name]; ok {
		return rho
	}
	if rho, ok := b.Correlations[a.Name]; ok {
		return rho
	}
	ca, cb := CategoryOf(a), CategoryOf(b)
	if ca != "" && cb != "" {
		if rho, ok := defaultCorrelations[pairKey(ca, cb)]; ok {
			return rho
		}
	}
	return e.opts.DefaultCorrelation
}
