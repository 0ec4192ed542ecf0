// Package protection sizes life, critical illness and income protection needs,
// sets them against existing policies and recommends cover for the gaps.
package protection

import (
	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Need categories, in the order existing cover is allocated to them.
const (
	NeedDebt          = "debt"
	NeedFinalExpenses = "final_expenses"
	NeedEducation     = "education"
	NeedHumanCapital  = "human_capital"
)

// ProtectionNeeds is the cover a household needs on death
type ProtectionNeeds struct {
	HumanCapital   decimal.Decimal `json:"humanCapital"`
	DebtProtection decimal.Decimal `json:"debtProtection"`
	Education      decimal.Decimal `json:"education"`
	FinalExpenses  decimal.Decimal `json:"finalExpenses"`
	Total          decimal.Decimal `json:"total"`
}

// byPriority returns the need amounts in allocation order
func (n ProtectionNeeds) byPriority() []struct {
	name   string
	amount decimal.Decimal
} {
	return []struct {
		name   string
		amount decimal.Decimal
	}{
		{NeedDebt, n.DebtProtection},
		{NeedFinalExpenses, n.FinalExpenses},
		{NeedEducation, n.Education},
		{NeedHumanCapital, n.HumanCapital},
	}
}

// GapEngine compares protection needs with existing cover
type GapEngine struct {
	Assumptions domain.PlanningAssumptions
}

// NewGapEngine creates an engine for one tax year's planning assumptions
func NewGapEngine(cfg *domain.TaxYearConfig) *GapEngine {
	return &GapEngine{Assumptions: cfg.PlanningAssumptions}
}

// CalculateHumanCapital values future earnings as income × multiplier × the
// working years left, capped at HumanCapitalMaxYears.
func (g *GapEngine) CalculateHumanCapital(income decimal.Decimal, age, retirementAge int) decimal.Decimal {
	years := retirementAge - age
	if years < 0 {
		years = 0
	}
	if years > g.Assumptions.HumanCapitalMaxYears {
		years = g.Assumptions.HumanCapitalMaxYears
	}
	return income.Mul(g.Assumptions.HumanCapitalMultiplier).Mul(decimal.NewFromInt(int64(years))).Round(2)
}

// CalculateDebtProtectionNeed is the debt to clear on death
func (g *GapEngine) CalculateDebtProtectionNeed(mortgageBalance, otherDebts decimal.Decimal) decimal.Decimal {
	return mortgageBalance.Add(otherDebts).Round(2)
}

// CalculateEducationFunding costs each remaining year of education for every
// child until EducationEndAge.
func (g *GapEngine) CalculateEducationFunding(childrenAges []int) decimal.Decimal {
	total := decimal.Zero
	for _, age := range childrenAges {
		if years := g.Assumptions.EducationEndAge - age; years > 0 {
			total = total.Add(g.Assumptions.EducationCostPerYear.Mul(decimal.NewFromInt(int64(years))))
		}
	}
	return total.Round(2)
}

// CalculateFinalExpenses returns the configured funeral and estate costs
func (g *GapEngine) CalculateFinalExpenses() decimal.Decimal {
	return g.Assumptions.FinalExpenses
}

// CalculateProtectionNeeds sums every need for a profile
func (g *GapEngine) CalculateProtectionNeeds(p domain.ProtectionProfile) ProtectionNeeds {
	n := ProtectionNeeds{
		HumanCapital:   g.CalculateHumanCapital(p.AnnualIncome, p.Age, p.RetirementAge),
		DebtProtection: g.CalculateDebtProtectionNeed(p.MortgageBalance, p.OtherDebts),
		Education:      g.CalculateEducationFunding(p.DependentsAges),
		FinalExpenses:  g.CalculateFinalExpenses(),
	}
	n.Total = decimal.Sum(n.HumanCapital, n.DebtProtection, n.Education, n.FinalExpenses)
	return n
}

// annualBenefit converts a regular benefit to an annual amount
func annualBenefit(amount decimal.Decimal, freq domain.BenefitFrequency) decimal.Decimal {
	switch freq {
	case domain.Monthly:
		return amount.Mul(decimal.NewFromInt(12))
	case domain.Weekly:
		return amount.Mul(decimal.NewFromInt(52))
	default:
		return amount
	}
}

// CoverageSummary is existing cover by kind. Income protection is annualised.
type CoverageSummary struct {
	LifeCover             decimal.Decimal `json:"lifeCover"`
	CriticalIllnessCover  decimal.Decimal `json:"criticalIllnessCover"`
	IncomeProtectionCover decimal.Decimal `json:"incomeProtectionCover"`
	Total                 decimal.Decimal `json:"total"`
	MonthlyPremiums       decimal.Decimal `json:"monthlyPremiums"`
}

// CalculateTotalCoverage aggregates policies. Lump-sum policies count their sum
// assured; income replacement policies count their annualised benefit.
func (g *GapEngine) CalculateTotalCoverage(policies []domain.PolicyCoverage) CoverageSummary {
	c := CoverageSummary{
		LifeCover:             decimal.Zero,
		CriticalIllnessCover:  decimal.Zero,
		IncomeProtectionCover: decimal.Zero,
		MonthlyPremiums:       decimal.Zero,
	}
	for _, p := range policies {
		switch {
		case p.Type.IsIncomeReplacement():
			c.IncomeProtectionCover = c.IncomeProtectionCover.Add(annualBenefit(p.BenefitAmount, p.BenefitFrequency))
		case p.Type == domain.CriticalIllnessPolicy:
			c.CriticalIllnessCover = c.CriticalIllnessCover.Add(p.SumAssured)
		default:
			c.LifeCover = c.LifeCover.Add(p.SumAssured)
		}
		c.MonthlyPremiums = c.MonthlyPremiums.Add(p.MonthlyPremium)
	}
	c.Total = decimal.Sum(c.LifeCover, c.CriticalIllnessCover, c.IncomeProtectionCover).Round(2)
	c.IncomeProtectionCover = c.IncomeProtectionCover.Round(2)
	return c
}

// CoverageGap is the shortfall between needs and cover. Surplus is reported
// separately so over-cover is distinguishable from an exact match.
type CoverageGap struct {
	TotalNeed          decimal.Decimal            `json:"totalNeed"`
	TotalCoverage      decimal.Decimal            `json:"totalCoverage"`
	TotalGap           decimal.Decimal            `json:"totalGap"`
	Surplus            decimal.Decimal            `json:"surplus"`
	GapsByCategory     map[string]decimal.Decimal `json:"gapsByCategory"`
	CoveragePercentage decimal.Decimal            `json:"coveragePercentage"`
	AdequacyScore      int                        `json:"adequacyScore"`
	Adequacy           AdequacyBand               `json:"adequacy"`
}

// CalculateCoverageGap allocates cover to needs in priority order (debt, final
// expenses, education, human capital) so category gaps add up to the total gap.
func (g *GapEngine) CalculateCoverageGap(needs ProtectionNeeds, coverage CoverageSummary) CoverageGap {
	gap := calculation.NonNegative(needs.Total.Sub(coverage.Total))
	result := CoverageGap{
		TotalNeed:      needs.Total,
		TotalCoverage:  coverage.Total,
		TotalGap:       gap,
		Surplus:        calculation.NonNegative(coverage.Total.Sub(needs.Total)),
		GapsByCategory: make(map[string]decimal.Decimal, 4),
	}

	remaining := coverage.Total
	for _, need := range needs.byPriority() {
		applied := decimal.Min(remaining, need.amount)
		result.GapsByCategory[need.name] = need.amount.Sub(applied)
		remaining = remaining.Sub(applied)
	}

	result.CoveragePercentage = CoveragePercentage(needs.Total, gap)
	result.AdequacyScore = AdequacyScore(needs.Total, gap)
	result.Adequacy = BandFor(result.AdequacyScore)
	return result
}
