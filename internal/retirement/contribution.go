// Package retirement plans pension contributions, decumulation and readiness
// on top of the pension calculators.
package retirement

import (
	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// EmployerMatchCheck reports whether an employee contributes enough to
// receive the full employer match
type EmployerMatchCheck struct {
	EmployeeRate           decimal.Decimal `json:"employeeRate"`
	EmployerRate           decimal.Decimal `json:"employerRate"`
	MatchThreshold         decimal.Decimal `json:"matchThreshold"`
	IsUnderContributing    bool            `json:"isUnderContributing"`
	ShortfallRate          decimal.Decimal `json:"shortfallRate"`
	UnclaimedEmployerMatch decimal.Decimal `json:"unclaimedEmployerMatch"`
}

// RequiredContribution is the saving needed to reach the target pot
type RequiredContribution struct {
	TargetPot           decimal.Decimal `json:"targetPot"`
	ProjectedPot        decimal.Decimal `json:"projectedPot"`
	Gap                 decimal.Decimal `json:"gap"`
	YearsToRetirement   int             `json:"yearsToRetirement"`
	GrowthRate          decimal.Decimal `json:"growthRate"`
	AnnualContribution  decimal.Decimal `json:"annualContribution"`
	MonthlyContribution decimal.Decimal `json:"monthlyContribution"`
}

// TaxRelief is the income tax relief earned by a pension contribution
type TaxRelief struct {
	Contribution              decimal.Decimal `json:"contribution"`
	MarginalRate              decimal.Decimal `json:"marginalRate"`
	Band                      string          `json:"band"`
	ReliefAtSource            decimal.Decimal `json:"reliefAtSource"`
	AdditionalReliefClaimable decimal.Decimal `json:"additionalReliefClaimable"`
	TotalRelief               decimal.Decimal `json:"totalRelief"`
	NetCost                   decimal.Decimal `json:"netCost"`
}

// ContributionOptimizer checks and sizes pension contributions
type ContributionOptimizer struct {
	Assumptions domain.PlanningAssumptions
	projector   *calculation.PensionProjector
	incomeTax   *calculation.IncomeTaxCalculator
}

// NewContributionOptimizer creates an optimizer for one tax year
func NewContributionOptimizer(cfg *domain.TaxYearConfig) *ContributionOptimizer {
	return &ContributionOptimizer{
		Assumptions: cfg.PlanningAssumptions,
		projector:   calculation.NewPensionProjector(cfg),
		incomeTax:   calculation.NewIncomeTaxCalculator(cfg),
	}
}

// CheckEmployerMatch flags contributions below the employer match threshold.
// The unclaimed match assumes the employer matches pound for pound up to it.
func (co *ContributionOptimizer) CheckEmployerMatch(p domain.DCPension, salary decimal.Decimal) EmployerMatchCheck {
	threshold := co.Assumptions.EmployerMatchThreshold
	shortfall := calculation.NonNegative(threshold.Sub(p.EmployeeContributionRate))
	return EmployerMatchCheck{
		EmployeeRate:           p.EmployeeContributionRate,
		EmployerRate:           p.EmployerContributionRate,
		MatchThreshold:         threshold,
		IsUnderContributing:    shortfall.GreaterThan(decimal.Zero),
		ShortfallRate:          shortfall,
		UnclaimedEmployerMatch: shortfall.Mul(salary).Round(2),
	}
}

// CalculateRequiredContribution solves the annuity-due payment that closes the
// gap between the safe-withdrawal target pot and the grown value of today's DC
// pots. A non-positive growth rate or no years left gives a zero payment.
func (co *ContributionOptimizer) CalculateRequiredContribution(profile domain.RetirementProfile, pensions domain.Pensions, growthRate decimal.Decimal) RequiredContribution {
	years := profile.YearsToRetirement()
	target := calculation.SafeDiv(profile.TargetRetirementIncome, co.Assumptions.SafeWithdrawalRate)

	projected := decimal.Zero
	for _, dc := range pensions.DC {
		dc.MonthlyContributionAmount = decimal.Zero
		projected = projected.Add(co.projector.ProjectDC(dc, years, growthRate))
	}
	gap := calculation.NonNegative(target.Sub(projected))

	result := RequiredContribution{
		TargetPot:           target.Round(2),
		ProjectedPot:        projected,
		Gap:                 gap.Round(2),
		YearsToRetirement:   years,
		GrowthRate:          growthRate,
		AnnualContribution:  decimal.Zero,
		MonthlyContribution: decimal.Zero,
	}
	if years <= 0 || growthRate.LessThanOrEqual(decimal.Zero) || gap.IsZero() {
		return result
	}

	factor := calculation.GrowthFactor(growthRate, years)
	annual := gap.Mul(growthRate).Div(factor.Sub(one).Mul(one.Add(growthRate)))
	result.AnnualContribution = annual.Round(2)
	result.MonthlyContribution = annual.Div(twelve).Round(2)
	return result
}

// CalculateTaxRelief splits relief into the basic rate added at source and the
// extra relief higher and additional rate taxpayers claim back.
func (co *ContributionOptimizer) CalculateTaxRelief(contribution, totalIncome decimal.Decimal) TaxRelief {
	rate, band := co.incomeTax.MarginalRate(totalIncome)
	basic := contribution.Mul(co.incomeTax.BasicRate())
	total := contribution.Mul(rate)
	return TaxRelief{
		Contribution:              contribution,
		MarginalRate:              rate,
		Band:                      band,
		ReliefAtSource:            basic.Round(2),
		AdditionalReliefClaimable: calculation.NonNegative(total.Sub(basic)).Round(2),
		TotalRelief:               total.Round(2),
		NetCost:                   contribution.Sub(total).Round(2),
	}
}
