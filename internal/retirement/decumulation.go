package retirement

import (
	"fmt"

	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// WithdrawalScenario is the outcome of drawing at one test rate
type WithdrawalScenario struct {
	Rate              decimal.Decimal `json:"rate"`
	InitialWithdrawal decimal.Decimal `json:"initialWithdrawal"`
	FinalBalance      decimal.Decimal `json:"finalBalance"`
	TotalWithdrawn    decimal.Decimal `json:"totalWithdrawn"`
	YearsSustained    int             `json:"yearsSustained"`
	Survives          bool            `json:"survives"`
}

// SustainableWithdrawalResult compares the configured test rates
type SustainableWithdrawalResult struct {
	PotValue        decimal.Decimal      `json:"potValue"`
	Years           int                  `json:"years"`
	GrowthRate      decimal.Decimal      `json:"growthRate"`
	InflationRate   decimal.Decimal      `json:"inflationRate"`
	Scenarios       []WithdrawalScenario `json:"scenarios"`
	RecommendedRate decimal.Decimal      `json:"recommendedRate"`
	HasSustainable  bool                 `json:"hasSustainable"`
}

// AnnuityComparison sets an indicative annuity against drawdown
type AnnuityComparison struct {
	PotValue       decimal.Decimal `json:"potValue"`
	Age            int             `json:"age"`
	SpouseBenefit  bool            `json:"spouseBenefit"`
	AnnuityRate    decimal.Decimal `json:"annuityRate"`
	AnnuityIncome  decimal.Decimal `json:"annuityIncome"`
	DrawdownRate   decimal.Decimal `json:"drawdownRate"`
	DrawdownIncome decimal.Decimal `json:"drawdownIncome"`
	Difference     decimal.Decimal `json:"difference"`
	HigherIncome   string          `json:"higherIncome"`
}

// PCLSStrategy is the tax-free lump sum and the income from what remains
type PCLSStrategy struct {
	PotValue      decimal.Decimal `json:"potValue"`
	LumpSum       decimal.Decimal `json:"lumpSum"`
	LumpSumCapped bool            `json:"lumpSumCapped"`
	RemainingPot  decimal.Decimal `json:"remainingPot"`
	AnnualIncome  decimal.Decimal `json:"annualIncome"`
}

// IncomePhase is one stage of retirement income
type IncomePhase struct {
	Name         string          `json:"name"`
	FromAge      int             `json:"fromAge"`
	ToAge        int             `json:"toAge,omitempty"`
	Sources      []string        `json:"sources"`
	AnnualIncome decimal.Decimal `json:"annualIncome"`
	Guidance     string          `json:"guidance"`
}

// SolverResult is the outcome of the withdrawal rate search
type SolverResult struct {
	Rate       decimal.Decimal `json:"rate"`
	Iterations int             `json:"iterations"`
	Converged  bool            `json:"converged"`
}

// SolverOptions configures the bisection search
type SolverOptions struct {
	MinRate       decimal.Decimal
	MaxRate       decimal.Decimal
	Tolerance     decimal.Decimal
	MaxIterations int
}

// DefaultSolverOptions searches 0-100% to a hundredth of a percent
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MinRate:       decimal.Zero,
		MaxRate:       one,
		Tolerance:     decimal.NewFromFloat(0.0001),
		MaxIterations: 50,
	}
}

// DecumulationPlanner models drawing retirement income from DC pots
type DecumulationPlanner struct {
	Assumptions     domain.PlanningAssumptions
	Pension         domain.PensionConfig
	StatePensionAge int
	Options         SolverOptions
}

// NewDecumulationPlanner creates a planner for one tax year
func NewDecumulationPlanner(cfg *domain.TaxYearConfig) *DecumulationPlanner {
	return &DecumulationPlanner{
		Assumptions:     cfg.PlanningAssumptions,
		Pension:         cfg.Pension,
		StatePensionAge: cfg.StatePension.StatePensionAge,
		Options:         DefaultSolverOptions(),
	}
}

// CalculateSustainableWithdrawalRate simulates each configured test rate with
// inflation-indexed withdrawals and recommends the highest rate that lasts.
func (dp *DecumulationPlanner) CalculateSustainableWithdrawalRate(pot decimal.Decimal, years int, growthRate decimal.Decimal) SustainableWithdrawalResult {
	result := SustainableWithdrawalResult{
		PotValue:        pot,
		Years:           years,
		GrowthRate:      growthRate,
		InflationRate:   dp.Assumptions.InflationRate,
		RecommendedRate: decimal.Zero,
	}

	for _, rate := range dp.Assumptions.WithdrawalTestRates {
		strategy := NewInflationIndexedWithdrawal(pot, rate, dp.Assumptions.InflationRate)
		sim := Simulate(pot, years, growthRate, strategy)
		result.Scenarios = append(result.Scenarios, WithdrawalScenario{
			Rate:              rate,
			InitialWithdrawal: strategy.FirstWithdrawalAmount.Round(2),
			FinalBalance:      sim.FinalBalance,
			TotalWithdrawn:    sim.TotalWithdrawn,
			YearsSustained:    sim.YearsSustained,
			Survives:          sim.Survives,
		})
		if sim.Survives && rate.GreaterThan(result.RecommendedRate) {
			result.RecommendedRate = rate
			result.HasSustainable = true
		}
	}
	return result
}

// SolveMaxWithdrawalRate bisects for the highest inflation-indexed initial
// rate that lasts the given number of years
func (dp *DecumulationPlanner) SolveMaxWithdrawalRate(pot decimal.Decimal, years int, growthRate decimal.Decimal) SolverResult {
	low, high := dp.Options.MinRate, dp.Options.MaxRate
	survives := func(rate decimal.Decimal) bool {
		strategy := NewInflationIndexedWithdrawal(pot, rate, dp.Assumptions.InflationRate)
		return Simulate(pot, years, growthRate, strategy).Survives
	}

	if pot.LessThanOrEqual(decimal.Zero) || years <= 0 || !survives(low) {
		return SolverResult{Rate: decimal.Zero}
	}
	if survives(high) {
		return SolverResult{Rate: high, Converged: true}
	}

	two := decimal.NewFromInt(2)
	iterations := 0
	for iterations < dp.Options.MaxIterations {
		iterations++
		mid := low.Add(high).Div(two)
		if survives(mid) {
			low = mid
		} else {
			high = mid
		}
		if high.Sub(low).LessThan(dp.Options.Tolerance) {
			return SolverResult{Rate: low.Round(4), Iterations: iterations, Converged: true}
		}
	}
	return SolverResult{Rate: low.Round(4), Iterations: iterations}
}

// AnnuityRateForAge returns the indicative annuity rate for a purchase age
func (dp *DecumulationPlanner) AnnuityRateForAge(age int) decimal.Decimal {
	for _, band := range dp.Assumptions.AnnuityRates {
		if age >= band.MinAge && (band.MaxAge == 0 || age <= band.MaxAge) {
			return band.Rate
		}
	}
	return decimal.Zero
}

// CompareAnnuityVsDrawdown compares an age-banded annuity (reduced when a
// spouse benefit is bought) with drawing at the safe withdrawal rate
func (dp *DecumulationPlanner) CompareAnnuityVsDrawdown(pot decimal.Decimal, age int, spouseBenefit bool) AnnuityComparison {
	annuityRate := dp.AnnuityRateForAge(age)
	if spouseBenefit {
		annuityRate = annuityRate.Mul(one.Sub(dp.Assumptions.SpouseAnnuityReduction))
	}
	annuity := pot.Mul(annuityRate).Round(2)
	drawdown := pot.Mul(dp.Assumptions.SafeWithdrawalRate).Round(2)

	higher := "drawdown"
	if annuity.GreaterThan(drawdown) {
		higher = "annuity"
	}
	return AnnuityComparison{
		PotValue:       pot,
		Age:            age,
		SpouseBenefit:  spouseBenefit,
		AnnuityRate:    annuityRate,
		AnnuityIncome:  annuity,
		DrawdownRate:   dp.Assumptions.SafeWithdrawalRate,
		DrawdownIncome: drawdown,
		Difference:     annuity.Sub(drawdown),
		HigherIncome:   higher,
	}
}

// CalculatePCLSStrategy takes the tax-free fraction, capped by the lump sum
// allowance, and draws on the rest at the safe withdrawal rate
func (dp *DecumulationPlanner) CalculatePCLSStrategy(pot decimal.Decimal) PCLSStrategy {
	lumpSum := pot.Mul(dp.Assumptions.PCLSFraction)
	capped := false
	if lsa := dp.Pension.LumpSumAllowance; lsa.GreaterThan(decimal.Zero) && lumpSum.GreaterThan(lsa) {
		lumpSum = lsa
		capped = true
	}
	remaining := pot.Sub(lumpSum)
	return PCLSStrategy{
		PotValue:      pot,
		LumpSum:       lumpSum.Round(2),
		LumpSumCapped: capped,
		RemainingPot:  remaining.Round(2),
		AnnualIncome:  remaining.Mul(dp.Assumptions.SafeWithdrawalRate).Round(2),
	}
}

// ModelIncomePhasing describes how income sources change through retirement:
// before State Pension age, from it, and in later life.
func (dp *DecumulationPlanner) ModelIncomePhasing(profile domain.RetirementProfile, projection calculation.RetirementIncomeProjection) []IncomePhase {
	retireAge := profile.TargetRetirementAge
	spa := dp.StatePensionAge
	lateLife := dp.Assumptions.PhasingLateLifeAge

	private := projection.DCIncome.Add(projection.DBIncome)
	var phases []IncomePhase

	if retireAge < spa {
		phases = append(phases, IncomePhase{
			Name:         "bridge",
			FromAge:      retireAge,
			ToAge:        spa - 1,
			Sources:      []string{"dc_drawdown", "db_pension"},
			AnnualIncome: private,
			Guidance:     fmt.Sprintf("Draw from private pensions for %d years until State Pension age %d; consider using tax-free cash to cover the gap.", spa-retireAge, spa),
		})
	}

	from := spa
	if retireAge > spa {
		from = retireAge
	}
	if from < lateLife {
		phases = append(phases, IncomePhase{
			Name:         "state_pension",
			FromAge:      from,
			ToAge:        lateLife - 1,
			Sources:      []string{"state_pension", "dc_drawdown", "db_pension"},
			AnnualIncome: projection.Total,
			Guidance:     "State Pension starts; reduce drawdown to keep withdrawals within the basic rate band.",
		})
	}

	later := lateLife
	if from > lateLife {
		later = from
	}
	phases = append(phases, IncomePhase{
		Name:         "later_life",
		FromAge:      later,
		Sources:      []string{"state_pension", "db_pension", "annuity"},
		AnnualIncome: projection.Total,
		Guidance:     fmt.Sprintf("From age %d consider buying an annuity with part of the remaining pot for secure lifetime income.", later),
	})
	return phases
}
