package retirement

import (
	"testing"

	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/rgehrsitz/ukplan/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCheckEmployerMatch(t *testing.T) {
	co := NewContributionOptimizer(testutil.TaxYear2025())

	under := co.CheckEmployerMatch(domain.DCPension{
		EmployeeContributionRate: dec("0.03"),
		EmployerContributionRate: dec("0.05"),
	}, dec("50000"))
	assert.True(t, under.IsUnderContributing)
	assert.True(t, under.ShortfallRate.Equal(dec("0.02")))
	assert.True(t, under.UnclaimedEmployerMatch.Equal(dec("1000")))

	full := co.CheckEmployerMatch(domain.DCPension{EmployeeContributionRate: dec("0.06")}, dec("50000"))
	assert.False(t, full.IsUnderContributing)
	assert.True(t, full.UnclaimedEmployerMatch.IsZero())
}

func TestCalculateRequiredContribution(t *testing.T) {
	co := NewContributionOptimizer(testutil.TaxYear2025())
	profile := domain.RetirementProfile{
		CurrentAge:             45,
		TargetRetirementAge:    65,
		TargetRetirementIncome: dec("20000"),
	}

	t.Run("no existing pot", func(t *testing.T) {
		r := co.CalculateRequiredContribution(profile, domain.Pensions{}, dec("0.05"))
		assert.True(t, r.TargetPot.Equal(dec("500000")))
		assert.Equal(t, 20, r.YearsToRetirement)
		assert.True(t, r.AnnualContribution.Equal(dec("14401.23")), "got %s", r.AnnualContribution)
		assert.True(t, r.MonthlyContribution.Equal(dec("1200.1")), "got %s", r.MonthlyContribution)
	})

	t.Run("existing pot grows towards target", func(t *testing.T) {
		pensions := domain.Pensions{DC: []domain.DCPension{
			{CurrentFundValue: dec("100000"), MonthlyContributionAmount: dec("300")},
		}}
		r := co.CalculateRequiredContribution(profile, pensions, dec("0.05"))
		assert.True(t, r.ProjectedPot.Equal(dec("265329.77")), "got %s", r.ProjectedPot)
		assert.True(t, r.Gap.Equal(dec("234670.23")))
		assert.True(t, r.AnnualContribution.Equal(dec("6759.08")), "got %s", r.AnnualContribution)
	})

	t.Run("non-positive growth returns zero", func(t *testing.T) {
		r := co.CalculateRequiredContribution(profile, domain.Pensions{}, decimal.Zero)
		assert.True(t, r.AnnualContribution.IsZero())
		assert.True(t, r.Gap.Equal(dec("500000")))
	})

	t.Run("already retired returns zero", func(t *testing.T) {
		retired := profile
		retired.CurrentAge = 66
		r := co.CalculateRequiredContribution(retired, domain.Pensions{}, dec("0.05"))
		assert.Equal(t, 0, r.YearsToRetirement)
		assert.True(t, r.AnnualContribution.IsZero())
	})
}

func TestCalculateTaxRelief(t *testing.T) {
	co := NewContributionOptimizer(testutil.TaxYear2025())

	higher := co.CalculateTaxRelief(dec("10000"), dec("60000"))
	assert.Equal(t, "higher", higher.Band)
	assert.True(t, higher.ReliefAtSource.Equal(dec("2000")))
	assert.True(t, higher.AdditionalReliefClaimable.Equal(dec("2000")))
	assert.True(t, higher.TotalRelief.Equal(dec("4000")))
	assert.True(t, higher.NetCost.Equal(dec("6000")))

	basic := co.CalculateTaxRelief(dec("10000"), dec("30000"))
	assert.Equal(t, "basic", basic.Band)
	assert.True(t, basic.AdditionalReliefClaimable.IsZero())
	assert.True(t, basic.NetCost.Equal(dec("8000")))
}

func TestCalculateSustainableWithdrawalRate(t *testing.T) {
	dp := NewDecumulationPlanner(testutil.TaxYear2025())

	r := dp.CalculateSustainableWithdrawalRate(dec("100000"), 30, dec("0.05"))

	require.Len(t, r.Scenarios, 3)
	assert.True(t, r.Scenarios[0].Survives)
	assert.True(t, r.Scenarios[1].Survives)
	assert.False(t, r.Scenarios[2].Survives)
	assert.Equal(t, 26, r.Scenarios[2].YearsSustained)
	assert.True(t, r.Scenarios[2].FinalBalance.IsZero())
	assert.True(t, r.HasSustainable)
	assert.True(t, r.RecommendedRate.Equal(dec("0.04")))
}

func TestSolveMaxWithdrawalRate(t *testing.T) {
	dp := NewDecumulationPlanner(testutil.TaxYear2025())

	r := dp.SolveMaxWithdrawalRate(dec("100000"), 30, dec("0.05"))

	assert.True(t, r.Converged)
	rate, _ := r.Rate.Float64()
	assert.InDelta(t, 0.0463, rate, 0.0002)

	empty := dp.SolveMaxWithdrawalRate(decimal.Zero, 30, dec("0.05"))
	assert.True(t, empty.Rate.IsZero())
}

func TestSimulate_PercentageOfBalanceNeverDepletes(t *testing.T) {
	sim := Simulate(dec("100000"), 40, dec("0.02"), NewPercentageOfBalanceWithdrawal(dec("0.10")))

	assert.Equal(t, "percentage_of_balance", sim.Strategy)
	assert.True(t, sim.Survives)
	assert.Equal(t, 40, sim.YearsSustained)
	assert.True(t, sim.FinalBalance.GreaterThan(decimal.Zero))
}

func TestCompareAnnuityVsDrawdown(t *testing.T) {
	dp := NewDecumulationPlanner(testutil.TaxYear2025())

	tests := []struct {
		name   string
		age    int
		spouse bool
		income string
		winner string
	}{
		{"single life at 66", 66, false, "13200", "annuity"},
		{"spouse benefit reduces rate", 66, true, "11220", "annuity"},
		{"under 60", 55, false, "10000", "annuity"},
		{"open top band", 80, false, "17000", "annuity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := dp.CompareAnnuityVsDrawdown(dec("200000"), tt.age, tt.spouse)
			assert.True(t, c.AnnuityIncome.Equal(dec(tt.income)), "got %s", c.AnnuityIncome)
			assert.True(t, c.DrawdownIncome.Equal(dec("8000")))
			assert.Equal(t, tt.winner, c.HigherIncome)
		})
	}
}

func TestCalculatePCLSStrategy(t *testing.T) {
	dp := NewDecumulationPlanner(testutil.TaxYear2025())

	normal := dp.CalculatePCLSStrategy(dec("400000"))
	assert.True(t, normal.LumpSum.Equal(dec("100000")))
	assert.False(t, normal.LumpSumCapped)
	assert.True(t, normal.RemainingPot.Equal(dec("300000")))
	assert.True(t, normal.AnnualIncome.Equal(dec("12000")))

	capped := dp.CalculatePCLSStrategy(dec("2000000"))
	assert.True(t, capped.LumpSumCapped)
	assert.True(t, capped.LumpSum.Equal(dec("268275")))
	assert.True(t, capped.RemainingPot.Equal(dec("1731725")))
	assert.True(t, capped.AnnualIncome.Equal(dec("69269")))
}

func TestModelIncomePhasing(t *testing.T) {
	dp := NewDecumulationPlanner(testutil.TaxYear2025())
	projection := calculation.RetirementIncomeProjection{
		DCIncome:    dec("8000"),
		DBIncome:    dec("4000"),
		StateIncome: dec("11973"),
		Total:       dec("23973"),
	}

	early := dp.ModelIncomePhasing(domain.RetirementProfile{TargetRetirementAge: 60}, projection)
	require.Len(t, early, 3)
	assert.Equal(t, "bridge", early[0].Name)
	assert.Equal(t, 66, early[0].ToAge)
	assert.True(t, early[0].AnnualIncome.Equal(dec("12000")))
	assert.Equal(t, 67, early[1].FromAge)
	assert.Equal(t, 75, early[2].FromAge)

	late := dp.ModelIncomePhasing(domain.RetirementProfile{TargetRetirementAge: 70}, projection)
	require.Len(t, late, 2)
	assert.Equal(t, 70, late[0].FromAge)

	veryLate := dp.ModelIncomePhasing(domain.RetirementProfile{TargetRetirementAge: 80}, projection)
	require.Len(t, veryLate, 1)
	assert.Equal(t, 80, veryLate[0].FromAge)
}

func TestCalculateReadinessScore(t *testing.T) {
	tests := []struct {
		projected string
		target    string
		score     int
		category  ReadinessCategory
	}{
		{"28000", "35000", 80, ReadinessGood},
		{"35000", "35000", 100, ReadinessExcellent},
		{"50000", "35000", 100, ReadinessExcellent},
		{"31325", "35000", 90, ReadinessExcellent},
		{"0", "35000", 0, ReadinessCritical},
		{"20000", "0", 0, ReadinessCritical},
	}

	for _, tt := range tests {
		t.Run(tt.projected+"/"+tt.target, func(t *testing.T) {
			score := CalculateReadinessScore(dec(tt.projected), dec(tt.target))
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.category, Category(score))
		})
	}
}

func TestCategoryBoundaries(t *testing.T) {
	assert.Equal(t, ReadinessExcellent, Category(90))
	assert.Equal(t, ReadinessGood, Category(89))
	assert.Equal(t, ReadinessGood, Category(70))
	assert.Equal(t, ReadinessFair, Category(69))
	assert.Equal(t, ReadinessFair, Category(50))
	assert.Equal(t, ReadinessCritical, Category(49))
}

func TestAssess(t *testing.T) {
	rs := NewReadinessScorer(testutil.TaxYear2025())
	profile := domain.RetirementProfile{
		CurrentAge:             57,
		TargetRetirementAge:    67,
		TargetRetirementIncome: dec("25000"),
		CurrentAnnualSalary:    dec("50000"),
	}
	pensions := domain.Pensions{
		DC:    []domain.DCPension{{CurrentFundValue: dec("100000"), PlatformFeeRate: dec("0.01")}},
		DB:    []domain.DBPension{{AccruedAnnualPension: dec("5000")}},
		State: &domain.StatePension{NIYearsCompleted: 35, NIYearsRequired: 35},
	}

	a := rs.Assess(profile, pensions)

	assert.True(t, a.Projection.Total.Equal(dec("22893.98")), "got %s", a.Projection.Total)
	assert.Equal(t, 92, a.Score)
	assert.Equal(t, ReadinessExcellent, a.Category)
	assert.True(t, a.IncomeGap.Equal(dec("2106.02")))
	assert.Equal(t, "0.4579", a.ReplacementRatio.StringFixed(4))
}
