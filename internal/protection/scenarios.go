package protection

import (
	"fmt"

	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Scenario names
const (
	ScenarioDeath           = "death"
	ScenarioCriticalIllness = "critical_illness"
	ScenarioDisability      = "disability"
)

// ScenarioResult judges cover against the need arising from one event
type ScenarioResult struct {
	Name      string          `json:"name"`
	Need      decimal.Decimal `json:"need"`
	Coverage  decimal.Decimal `json:"coverage"`
	Gap       decimal.Decimal `json:"gap"`
	Score     int             `json:"score"`
	Adequacy  AdequacyBand    `json:"adequacy"`
	Narrative string          `json:"narrative"`
}

func newScenario(name string, need, cover decimal.Decimal, describe func(gap decimal.Decimal) string) ScenarioResult {
	gap, score := ScoreNeed(need, cover)
	return ScenarioResult{
		Name:      name,
		Need:      need,
		Coverage:  cover,
		Gap:       gap,
		Score:     score,
		Adequacy:  BandFor(score),
		Narrative: describe(gap),
	}
}

// ModelDeathScenario sets life cover against every protection need
func (g *GapEngine) ModelDeathScenario(needs ProtectionNeeds, coverage CoverageSummary) ScenarioResult {
	return newScenario(ScenarioDeath, needs.Total, coverage.LifeCover, func(gap decimal.Decimal) string {
		if gap.IsZero() {
			return "Life cover would clear debts and replace income for your dependants."
		}
		return fmt.Sprintf("On death your family would be £%s short of clearing debts, funding education and replacing income.", gap.StringFixed(0))
	})
}

// ModelCriticalIllnessScenario needs debts cleared plus CriticalIllnessIncomeYears
// of income while recovering.
func (g *GapEngine) ModelCriticalIllnessScenario(profile domain.ProtectionProfile, needs ProtectionNeeds, coverage CoverageSummary) ScenarioResult {
	years := decimal.NewFromInt(int64(g.Assumptions.CriticalIllnessIncomeYears))
	need := needs.DebtProtection.Add(profile.AnnualIncome.Mul(years)).Round(2)
	return newScenario(ScenarioCriticalIllness, need, coverage.CriticalIllnessCover, func(gap decimal.Decimal) string {
		if gap.IsZero() {
			return "Critical illness cover would clear debts and fund your recovery period."
		}
		return fmt.Sprintf("A serious illness would leave a £%s shortfall against debts and %d years of income.", gap.StringFixed(0), g.Assumptions.CriticalIllnessIncomeYears)
	})
}

// ModelDisabilityScenario compares annual income protection benefit with the
// insurable share of income.
func (g *GapEngine) ModelDisabilityScenario(profile domain.ProtectionProfile, coverage CoverageSummary) ScenarioResult {
	need := profile.AnnualIncome.Mul(g.Assumptions.IncomeProtectionReplacementRate).Round(2)
	return newScenario(ScenarioDisability, need, coverage.IncomeProtectionCover, func(gap decimal.Decimal) string {
		if gap.IsZero() {
			return "Income protection would replace the insurable share of your income."
		}
		return fmt.Sprintf("If unable to work you would be £%s a month short of the insurable income.", gap.Div(decimal.NewFromInt(12)).StringFixed(0))
	})
}

// Premium affordability levels
const (
	Affordable   = "affordable"
	Manageable   = "manageable"
	Unaffordable = "unaffordable"
)

// PremiumChangeResult shows premiums after a proportional change
type PremiumChangeResult struct {
	ChangeRate            decimal.Decimal `json:"changeRate"`
	CurrentMonthlyPremium decimal.Decimal `json:"currentMonthlyPremium"`
	NewMonthlyPremium     decimal.Decimal `json:"newMonthlyPremium"`
	AnnualCost            decimal.Decimal `json:"annualCost"`
	IncomeRatio           decimal.Decimal `json:"incomeRatio"`
	Affordability         string          `json:"affordability"`
}

// ModelPremiumChange applies changeRate (0.2 = +20%) to the monthly premiums and
// rates the new annual cost against income.
func (g *GapEngine) ModelPremiumChange(coverage CoverageSummary, annualIncome, changeRate decimal.Decimal) PremiumChangeResult {
	current := coverage.MonthlyPremiums
	newPremium := current.Mul(decimal.NewFromInt(1).Add(changeRate)).Round(2)
	annual := newPremium.Mul(decimal.NewFromInt(12))
	ratio := calculation.SafeDiv(annual, annualIncome).Round(4)

	level := Unaffordable
	switch {
	case annualIncome.LessThanOrEqual(decimal.Zero) && annual.IsZero():
		level = Affordable
	case annualIncome.LessThanOrEqual(decimal.Zero):
	case ratio.LessThanOrEqual(g.Assumptions.PremiumAffordability.Affordable):
		level = Affordable
	case ratio.LessThanOrEqual(g.Assumptions.PremiumAffordability.Manageable):
		level = Manageable
	}

	return PremiumChangeResult{
		ChangeRate:            changeRate,
		CurrentMonthlyPremium: current,
		NewMonthlyPremium:     newPremium,
		AnnualCost:            annual,
		IncomeRatio:           ratio,
		Affordability:         level,
	}
}
