package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/ukplan/internal/config"
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/rgehrsitz/ukplan/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Debugf(string, ...interface{}) {}
func (l *recordingLogger) Infof(format string, args ...interface{}) {
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Warnf(string, ...interface{}) {}
func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

type failingProvider struct{ err error }

func (p failingProvider) ActiveConfig() (*domain.TaxYearConfig, error) { return nil, p.err }

func testHousehold() *domain.Household {
	return &domain.Household{
		Name:   "Planner Test",
		Income: domain.IncomeProfile{Employment: decimal.NewFromInt(50000)},
		Properties: []domain.Property{
			{
				Name:          "Home",
				Type:          domain.MainResidence,
				CurrentValue:  decimal.NewFromInt(400000),
				PurchasePrice: decimal.NewFromInt(300000),
				Mortgages: []domain.Mortgage{{
					Lender:              "Bank",
					OriginalLoanAmount:  decimal.NewFromInt(240000),
					OutstandingBalance:  decimal.NewFromInt(200000),
					InterestRate:        decimal.NewFromFloat(0.045),
					Type:                domain.Repayment,
					StartDate:           time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
					RemainingTermMonths: 240,
				}},
			},
			{
				Name:                "Flat",
				Type:                domain.BuyToLet,
				CurrentValue:        decimal.NewFromInt(200000),
				PurchasePrice:       decimal.NewFromInt(150000),
				MonthlyRentalIncome: decimal.NewFromInt(900),
			},
		},
		Pensions: domain.Pensions{
			DC: []domain.DCPension{{
				Provider:                  "Workplace",
				CurrentFundValue:          decimal.NewFromInt(80000),
				MonthlyContributionAmount: decimal.NewFromInt(400),
				EmployerContributionRate:  decimal.NewFromFloat(0.05),
			}},
			State: &domain.StatePension{NIYearsCompleted: 20, NIYearsRequired: 35},
		},
		Retirement: domain.RetirementProfile{
			CurrentAge:             40,
			TargetRetirementAge:    65,
			TargetRetirementIncome: decimal.NewFromInt(30000),
		},
		Protection: domain.ProtectionProfile{
			Age:             40,
			AnnualIncome:    decimal.NewFromInt(50000),
			MortgageBalance: decimal.NewFromInt(200000),
			RetirementAge:   67,
		},
		Policies: []domain.PolicyCoverage{
			{Type: domain.LifePolicy, SumAssured: decimal.NewFromInt(250000), MonthlyPremium: decimal.NewFromInt(25)},
		},
		Portfolio: &domain.Portfolio{
			RiskFreeRate: 0.02,
			AssetClasses: []domain.AssetClass{
				{Name: "UK Equities", ExpectedReturn: 0.07, Volatility: 0.15},
				{Name: "Gilts", ExpectedReturn: 0.03, Volatility: 0.05},
			},
			Allocation: domain.PortfolioAllocation{"UK Equities": 0.6, "Gilts": 0.4},
		},
	}
}

func newTestEngine() *Engine {
	return NewEngine(config.NewStaticProvider(*testutil.TaxYear2025()))
}

func TestRun_FullReport(t *testing.T) {
	engine := newTestEngine()
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	report, err := engine.Run(context.Background(), testHousehold(), asOf)
	require.NoError(t, err)

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err, "report id should be a uuid")
	assert.Equal(t, "2025/26", report.TaxYear)
	assert.Equal(t, "Planner Test", report.Household)
	assert.Equal(t, asOf, report.AsOf)
	assert.False(t, report.GeneratedAt.IsZero())

	assert.True(t, report.NetIncome.Gross.Equal(decimal.NewFromInt(50000)))
	assert.True(t, report.NetIncome.NetIncome.LessThan(report.NetIncome.Gross))

	require.Len(t, report.Properties, 2)
	home, flat := report.Properties[0], report.Properties[1]
	assert.Nil(t, home.Rental, "a main residence with no rent has no rental tax")
	require.Len(t, home.Mortgages, 1)
	assert.True(t, home.Mortgages[0].MonthlyPayment.IsPositive())
	assert.NotEmpty(t, home.Mortgages[0].AnnualEquity)
	assert.True(t, home.Equity.Equity.Equal(decimal.NewFromInt(200000)))
	require.NotNil(t, flat.Rental)
	assert.True(t, flat.Rental.GrossRentalIncome.Equal(decimal.NewFromInt(10800)))

	assert.True(t, report.Allowance.ThresholdIncome.Equal(decimal.NewFromInt(50000)))
	assert.True(t, report.Allowance.AdjustedIncome.Equal(decimal.NewFromInt(52500)))
	assert.False(t, report.Allowance.Allowance.IsTapered)
	assert.False(t, report.Allowance.MPAA.IsTriggered)

	assert.Equal(t, 25, report.Retirement.YearsInDrawdown, "falls back to the default life expectancy")
	assert.True(t, report.Retirement.Readiness.Projection.DCPot.GreaterThan(decimal.NewFromInt(80000)))
	assert.NotEmpty(t, report.Retirement.Phases)
	require.Len(t, report.Retirement.EmployerMatch, 1)

	assert.Len(t, report.Protection.Scenarios, 3)
	assert.True(t, report.Protection.Coverage.LifeCover.Equal(decimal.NewFromInt(250000)))

	require.NotNil(t, report.Portfolio)
	assert.InDelta(t, 0.054, report.Portfolio.Current.ExpectedReturn, 1e-9)
	require.NotNil(t, report.Portfolio.Frontier)
	assert.Equal(t, 200, report.Portfolio.Frontier.Sampled)
	assert.NotEmpty(t, report.Portfolio.Frontier.Efficient)
}

func TestRun_WithoutPortfolio(t *testing.T) {
	h := testHousehold()
	h.Portfolio = nil

	report, err := newTestEngine().Run(context.Background(), h, time.Now())
	require.NoError(t, err)
	assert.Nil(t, report.Portfolio)
}

func TestRun_ReportIDsAreUnique(t *testing.T) {
	engine := newTestEngine()
	h := testHousehold()
	h.Portfolio = nil

	first, err := engine.Run(context.Background(), h, time.Now())
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), h, time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestRun_ConfigurationErrorsPropagate(t *testing.T) {
	for _, sentinel := range []error{domain.ErrConfigurationNotFound, domain.ErrMultipleActiveConfigurations} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			logger := &recordingLogger{}
			engine := NewEngine(failingProvider{err: sentinel})
			engine.SetLogger(logger)

			report, err := engine.Run(context.Background(), testHousehold(), time.Now())

			assert.Nil(t, report)
			assert.True(t, errors.Is(err, sentinel))
			assert.Len(t, logger.errors, 1)
		})
	}
}

func TestRun_NilHousehold(t *testing.T) {
	_, err := newTestEngine().Run(context.Background(), nil, time.Now())
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine().Run(ctx, testHousehold(), time.Now())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSetLogger(t *testing.T) {
	engine := newTestEngine()
	assert.IsType(t, NopLogger{}, engine.Logger)

	logger := &recordingLogger{}
	engine.SetLogger(logger)
	h := testHousehold()
	h.Portfolio = nil
	_, err := engine.Run(context.Background(), h, time.Now())
	require.NoError(t, err)
	assert.Len(t, logger.infos, 2)
	assert.Contains(t, logger.infos[0], "2025/26")

	engine.SetLogger(nil)
	assert.IsType(t, NopLogger{}, engine.Logger)
}
