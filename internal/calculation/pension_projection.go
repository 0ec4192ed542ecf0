package calculation

import (
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// RetirementIncomeProjection is the annual income expected at retirement
type RetirementIncomeProjection struct {
	CurrentDCValue decimal.Decimal `json:"currentDcValue"`
	DCPot          decimal.Decimal `json:"dcPot"`
	DCIncome       decimal.Decimal `json:"dcIncome"`
	DBIncome       decimal.Decimal `json:"dbIncome"`
	StateIncome    decimal.Decimal `json:"stateIncome"`
	Total          decimal.Decimal `json:"total"`
}

// PensionProjector projects DC, DB and State Pension income
type PensionProjector struct {
	StatePension       domain.StatePensionConfig
	SafeWithdrawalRate decimal.Decimal
}

// NewPensionProjector creates a projector for one tax year
func NewPensionProjector(cfg *domain.TaxYearConfig) *PensionProjector {
	return &PensionProjector{
		StatePension:       cfg.StatePension,
		SafeWithdrawalRate: cfg.PlanningAssumptions.SafeWithdrawalRate,
	}
}

// ProjectDC returns the fund value after years of growth net of platform
// fees, including level annual contributions paid at year end.
func (pp *PensionProjector) ProjectDC(p domain.DCPension, years int, growthRate decimal.Decimal) decimal.Decimal {
	if years <= 0 {
		return money(p.CurrentFundValue)
	}
	netRate := growthRate.Sub(p.PlatformFeeRate)
	factor := GrowthFactor(netRate, years)

	fvCurrent := p.CurrentFundValue.Mul(factor)
	annual := p.AnnualContribution()
	var fvContributions decimal.Decimal
	if netRate.IsZero() {
		fvContributions = annual.Mul(decimal.NewFromInt(int64(years)))
	} else {
		fvContributions = annual.Mul(factor.Sub(one)).Div(netRate)
	}
	return money(fvCurrent.Add(fvContributions))
}

// ProjectDB returns the accrued pension unchanged; revaluation is not modelled
func (pp *PensionProjector) ProjectDB(p domain.DBPension) decimal.Decimal {
	return money(p.AccruedAnnualPension)
}

// ProjectStatePension returns the forecast if one is held, otherwise the full
// State Pension pro-rated by qualifying years.
func (pp *PensionProjector) ProjectStatePension(sp *domain.StatePension) decimal.Decimal {
	if sp == nil {
		return decimal.Zero
	}
	if sp.ForecastAnnual != nil {
		return money(*sp.ForecastAnnual)
	}
	required := sp.NIYearsRequired
	if required <= 0 {
		required = pp.StatePension.QualifyingYears
	}
	if required <= 0 {
		return decimal.Zero
	}
	ratio := decimal.NewFromInt(int64(sp.NIYearsCompleted)).Div(decimal.NewFromInt(int64(required)))
	ratio = Clamp(ratio, decimal.Zero, one)
	return money(pp.StatePension.FullAnnualAmount.Mul(ratio))
}

// ProjectTotalRetirementIncome combines every pension into annual income.
// DC pots are drawn at the safe withdrawal rate.
func (pp *PensionProjector) ProjectTotalRetirementIncome(pensions domain.Pensions, years int, growthRate decimal.Decimal) RetirementIncomeProjection {
	pot := decimal.Zero
	for _, dc := range pensions.DC {
		pot = pot.Add(pp.ProjectDC(dc, years, growthRate))
	}
	db := decimal.Zero
	for _, p := range pensions.DB {
		db = db.Add(pp.ProjectDB(p))
	}
	state := pp.ProjectStatePension(pensions.State)
	dcIncome := money(pot.Mul(pp.SafeWithdrawalRate))

	return RetirementIncomeProjection{
		CurrentDCValue: pensions.TotalDCValue(),
		DCPot:          pot,
		DCIncome:       dcIncome,
		DBIncome:       db,
		StateIncome:    state,
		Total:          dcIncome.Add(db).Add(state),
	}
}

// IncomeReplacementRatio returns projected income as a fraction of salary
func (pp *PensionProjector) IncomeReplacementRatio(projectedIncome, salary decimal.Decimal) decimal.Decimal {
	return SafeDiv(projectedIncome, salary).Round(4)
}
