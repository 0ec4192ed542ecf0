// Package planner runs every calculator for one household against the active
// tax year and assembles the results into a single report.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/config"
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/rgehrsitz/ukplan/internal/portfolio"
	"github.com/rgehrsitz/ukplan/internal/protection"
	"github.com/rgehrsitz/ukplan/internal/retirement"
	"github.com/shopspring/decimal"
)

// Logger is a minimal logging interface so callers can plug in their own logger
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}

// Options tunes the parts of a run that are not tax-year parameters
type Options struct {
	// FrontierPortfolios is the number of random portfolios sampled for the frontier.
	FrontierPortfolios int
	// PremiumChangeRate is the premium increase tested for affordability.
	PremiumChangeRate decimal.Decimal
	// DefaultLifeExpectancy is used when the household gives none.
	DefaultLifeExpectancy int
	Portfolio             portfolio.Options
}

// DefaultOptions returns the options used by the CLI
func DefaultOptions() Options {
	return Options{
		FrontierPortfolios:    200,
		PremiumChangeRate:     decimal.NewFromFloat(0.10),
		DefaultLifeExpectancy: 90,
		Portfolio:             portfolio.DefaultOptions(),
	}
}

// Engine orchestrates a full household report
type Engine struct {
	Provider config.Provider
	Options  Options
	Logger   Logger
}

// NewEngine creates an engine reading tax years from provider
func NewEngine(provider config.Provider) *Engine {
	return &Engine{
		Provider: provider,
		Options:  DefaultOptions(),
		Logger:   NopLogger{},
	}
}

// SetLogger replaces the engine logger; nil restores the no-op logger
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// MortgageReport summarises the remaining schedule of one mortgage
type MortgageReport struct {
	Lender            string                     `json:"lender"`
	Type              domain.MortgageType        `json:"type"`
	MonthlyPayment    decimal.Decimal            `json:"monthlyPayment"`
	RemainingPayments int                        `json:"remainingPayments"`
	TotalInterest     decimal.Decimal            `json:"totalInterest"`
	TotalPayments     decimal.Decimal            `json:"totalPayments"`
	BalloonPayment    decimal.Decimal            `json:"balloonPayment"`
	AnnualEquity      []calculation.AnnualEquity `json:"annualEquity"`
}

// PropertyReport collects the per-property results
type PropertyReport struct {
	Name      string                       `json:"name"`
	Type      domain.PropertyType          `json:"type"`
	Equity    calculation.PropertyEquity   `json:"equity"`
	Rental    *calculation.RentalTaxResult `json:"rental,omitempty"`
	Mortgages []MortgageReport             `json:"mortgages"`
}

// AllowanceReport is the pension annual allowance position for the year
type AllowanceReport struct {
	ThresholdIncome decimal.Decimal                `json:"thresholdIncome"`
	AdjustedIncome  decimal.Decimal                `json:"adjustedIncome"`
	Allowance       calculation.AllowanceResult    `json:"allowance"`
	CarryForward    calculation.CarryForwardResult `json:"carryForward"`
	MPAA            calculation.MPAAStatus         `json:"mpaa"`
}

// RetirementReport bundles readiness with the decumulation views
type RetirementReport struct {
	Readiness       retirement.ReadinessAssessment         `json:"readiness"`
	YearsInDrawdown int                                    `json:"yearsInDrawdown"`
	Withdrawal      retirement.SustainableWithdrawalResult `json:"withdrawal"`
	MaxRate         retirement.SolverResult                `json:"maxRate"`
	PCLS            retirement.PCLSStrategy                `json:"pcls"`
	Annuity         retirement.AnnuityComparison           `json:"annuity"`
	Phases          []retirement.IncomePhase               `json:"phases"`
	EmployerMatch   []retirement.EmployerMatchCheck        `json:"employerMatch"`
}

// PortfolioReport holds the current allocation statistics and the frontier
type PortfolioReport struct {
	Current  portfolio.Statistics `json:"current"`
	Frontier *portfolio.Frontier  `json:"frontier"`
}

// Report is the complete output of a planning run
type Report struct {
	ID          string                      `json:"id"`
	Household   string                      `json:"household"`
	TaxYear     string                      `json:"taxYear"`
	AsOf        time.Time                   `json:"asOf"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	NetIncome   calculation.NetIncomeResult `json:"netIncome"`
	Properties  []PropertyReport            `json:"properties"`
	Allowance   AllowanceReport             `json:"allowance"`
	Retirement  RetirementReport            `json:"retirement"`
	Protection  protection.Analysis         `json:"protection"`
	Portfolio   *PortfolioReport            `json:"portfolio,omitempty"`
}

// Run loads the active tax year once and runs every calculator for the
// household. Provider errors are returned unwrapped so callers can match
// the configuration sentinels.
func (e *Engine) Run(ctx context.Context, h *domain.Household, asOf time.Time) (*Report, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: household is required", domain.ErrInvalidInput)
	}
	cfg, err := e.Provider.ActiveConfig()
	if err != nil {
		e.Logger.Errorf("planner: no usable tax configuration: %v", err)
		return nil, err
	}
	e.Logger.Infof("planner: running %q against tax year %s", h.Name, cfg.TaxYear)

	report := &Report{
		ID:          uuid.NewString(),
		Household:   h.Name,
		TaxYear:     cfg.TaxYear,
		AsOf:        asOf,
		GeneratedAt: time.Now().UTC(),
	}

	report.NetIncome = calculation.NewIncomeTaxCalculator(cfg).CalculateNetIncome(h.Income)
	e.Logger.Debugf("planner: net income %s on gross %s", report.NetIncome.NetIncome.StringFixed(2), report.NetIncome.Gross.StringFixed(2))

	report.Properties = e.properties(cfg, h, asOf)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Allowance = e.allowance(cfg, h)
	report.Retirement = e.retirement(cfg, h)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Protection = protection.NewGapEngine(cfg).Analyze(h.Protection, h.Policies, e.Options.PremiumChangeRate)
	e.Logger.Debugf("planner: protection score %d", report.Protection.Gap.AdequacyScore)

	if h.Portfolio != nil && len(h.Portfolio.AssetClasses) > 0 {
		pr, err := e.portfolio(h.Portfolio)
		if err != nil {
			return nil, fmt.Errorf("portfolio analysis failed: %w", err)
		}
		report.Portfolio = pr
	}

	e.Logger.Infof("planner: report %s complete", report.ID)
	return report, nil
}

func (e *Engine) properties(cfg *domain.TaxYearConfig, h *domain.Household, asOf time.Time) []PropertyReport {
	ptc := calculation.NewPropertyTaxCalculator(cfg)
	amortizer := calculation.NewMortgageAmortizer()

	reports := make([]PropertyReport, 0, len(h.Properties))
	for _, p := range h.Properties {
		pr := PropertyReport{
			Name:   p.Name,
			Type:   p.Type,
			Equity: ptc.CalculatePropertyEquity(p),
		}
		if p.Type == domain.BuyToLet || p.MonthlyRentalIncome.IsPositive() {
			rental := ptc.CalculateRentalIncomeTax(p, h.Income)
			pr.Rental = &rental
		}
		for _, m := range p.Mortgages {
			schedule := amortizer.GenerateAmortizationSchedule(m, asOf)
			pr.Mortgages = append(pr.Mortgages, MortgageReport{
				Lender:            m.Lender,
				Type:              schedule.Type,
				MonthlyPayment:    schedule.MonthlyPayment,
				RemainingPayments: schedule.PaymentCount,
				TotalInterest:     schedule.TotalInterest,
				TotalPayments:     schedule.TotalPayments,
				BalloonPayment:    schedule.BalloonPayment,
				AnnualEquity:      amortizer.CalculateAnnualEquityBuild(schedule),
			})
		}
		e.Logger.Debugf("planner: property %q equity %s", p.Name, pr.Equity.Equity.StringFixed(2))
		reports = append(reports, pr)
	}
	return reports
}

// allowance treats total income as threshold income and adds employer
// contributions to reach adjusted income.
func (e *Engine) allowance(cfg *domain.TaxYearConfig, h *domain.Household) AllowanceReport {
	aac := calculation.NewAnnualAllowanceCalculator(cfg)

	salary := h.Retirement.CurrentAnnualSalary
	if salary.IsZero() {
		salary = h.Income.Employment
	}
	employee, employer := decimal.Zero, decimal.Zero
	for _, dc := range h.Pensions.DC {
		employee = employee.Add(dc.AnnualContribution())
		employer = employer.Add(salary.Mul(dc.EmployerContributionRate))
	}

	threshold := h.Income.Total()
	adjusted := threshold.Add(employer)
	carry := aac.CalculateCarryForward(h.ContributionHistory)

	return AllowanceReport{
		ThresholdIncome: threshold,
		AdjustedIncome:  adjusted,
		Allowance:       aac.CheckAnnualAllowance(employee.Add(employer), threshold, adjusted, carry.TotalUnused),
		CarryForward:    carry,
		MPAA:            aac.CheckMPAA(h.Pensions.AccessEvents),
	}
}

func (e *Engine) retirement(cfg *domain.TaxYearConfig, h *domain.Household) RetirementReport {
	profile := h.Retirement
	if profile.CurrentAnnualSalary.IsZero() {
		profile.CurrentAnnualSalary = h.Income.Employment
	}

	assessment := retirement.NewReadinessScorer(cfg).Assess(profile, h.Pensions)
	dp := retirement.NewDecumulationPlanner(cfg)
	co := retirement.NewContributionOptimizer(cfg)

	lifeExpectancy := profile.LifeExpectancy
	if lifeExpectancy <= 0 {
		lifeExpectancy = e.Options.DefaultLifeExpectancy
	}
	years := lifeExpectancy - profile.TargetRetirementAge
	if years < 1 {
		years = 1
	}

	pot := assessment.Projection.DCPot
	growth := cfg.PlanningAssumptions.DefaultGrowthRate

	matches := make([]retirement.EmployerMatchCheck, 0, len(h.Pensions.DC))
	for _, dc := range h.Pensions.DC {
		matches = append(matches, co.CheckEmployerMatch(dc, profile.CurrentAnnualSalary))
	}

	e.Logger.Debugf("planner: readiness %d (%s), pot %s over %d years", assessment.Score, assessment.Category, pot.StringFixed(2), years)

	return RetirementReport{
		Readiness:       assessment,
		YearsInDrawdown: years,
		Withdrawal:      dp.CalculateSustainableWithdrawalRate(pot, years, growth),
		MaxRate:         dp.SolveMaxWithdrawalRate(pot, years, growth),
		PCLS:            dp.CalculatePCLSStrategy(pot),
		Annuity:         dp.CompareAnnuityVsDrawdown(pot, profile.TargetRetirementAge, profile.IncludeSpouseBenefit),
		Phases:          dp.ModelIncomePhasing(profile, assessment.Projection),
		EmployerMatch:   matches,
	}
}

func (e *Engine) portfolio(p *domain.Portfolio) (*PortfolioReport, error) {
	engine := portfolio.NewEngine(e.Options.Portfolio)

	report := &PortfolioReport{}
	if len(p.Allocation) > 0 {
		stats, err := engine.CalculateStatistics(p.Allocation, p.AssetClasses, p.RiskFreeRate)
		if err != nil {
			return nil, err
		}
		report.Current = stats
	}

	frontier, err := engine.CalculateEfficientFrontier(p.AssetClasses, e.Options.FrontierPortfolios, p.RiskFreeRate)
	if err != nil {
		return nil, err
	}
	report.Frontier = frontier
	e.Logger.Debugf("planner: frontier has %d efficient portfolios", len(frontier.Efficient))
	return report, nil
}
