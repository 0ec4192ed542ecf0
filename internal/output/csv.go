package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/ukplan/internal/planner"
	"github.com/shopspring/decimal"
)

// CSVFormatter flattens the headline figures into section,item,metric,value rows
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *planner.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Section", "Item", "Metric", "Value"}); err != nil {
		return nil, err
	}

	rows := [][]string{
		{"report", report.Household, "tax_year", report.TaxYear},
		{"report", report.Household, "id", report.ID},
	}
	money := func(section, item, metric string, v decimal.Decimal) {
		rows = append(rows, []string{section, item, metric, v.StringFixed(2)})
	}
	rate := func(section, item, metric string, v decimal.Decimal) {
		rows = append(rows, []string{section, item, metric, v.StringFixed(4)})
	}
	integer := func(section, item, metric string, v int) {
		rows = append(rows, []string{section, item, metric, strconv.Itoa(v)})
	}
	float := func(section, item, metric string, v float64) {
		rows = append(rows, []string{section, item, metric, strconv.FormatFloat(v, 'f', 6, 64)})
	}

	ni := report.NetIncome
	money("income", "household", "gross", ni.Gross)
	money("income", "household", "income_tax", ni.IncomeTax)
	money("income", "household", "national_insurance", ni.NationalInsurance)
	money("income", "household", "net_income", ni.NetIncome)
	rate("income", "household", "effective_rate", ni.EffectiveRate)

	for _, p := range report.Properties {
		money("property", p.Name, "equity", p.Equity.Equity)
		rate("property", p.Name, "loan_to_value", p.Equity.LoanToValue)
		if p.Rental != nil {
			money("property", p.Name, "rental_tax", p.Rental.TaxLiability)
			money("property", p.Name, "net_rental_income", p.Rental.NetRentalIncome)
		}
		for _, m := range p.Mortgages {
			money("mortgage", m.Lender, "monthly_payment", m.MonthlyPayment)
			integer("mortgage", m.Lender, "remaining_payments", m.RemainingPayments)
			money("mortgage", m.Lender, "total_interest", m.TotalInterest)
		}
	}

	a := report.Allowance.Allowance
	money("allowance", "pension", "available", a.AvailableAllowance)
	money("allowance", "pension", "contributions", a.TotalContributions)
	money("allowance", "pension", "excess", a.ExcessContributions)
	money("allowance", "pension", "carry_forward", report.Allowance.CarryForward.TotalUnused)

	r := report.Retirement
	integer("retirement", "readiness", "score", r.Readiness.Score)
	money("retirement", "readiness", "projected_income", r.Readiness.Projection.Total)
	money("retirement", "readiness", "income_gap", r.Readiness.IncomeGap)
	rate("retirement", "drawdown", "recommended_rate", r.Withdrawal.RecommendedRate)
	rate("retirement", "drawdown", "max_rate", r.MaxRate.Rate)
	money("retirement", "pcls", "lump_sum", r.PCLS.LumpSum)
	money("retirement", "annuity", "income", r.Annuity.AnnuityIncome)

	g := report.Protection.Gap
	money("protection", "total", "need", g.TotalNeed)
	money("protection", "total", "coverage", g.TotalCoverage)
	money("protection", "total", "gap", g.TotalGap)
	integer("protection", "total", "adequacy_score", g.AdequacyScore)
	for _, s := range report.Protection.Scenarios {
		money("protection", s.Name, "gap", s.Gap)
		integer("protection", s.Name, "score", s.Score)
	}

	if report.Portfolio != nil {
		s := report.Portfolio.Current
		float("portfolio", "current", "expected_return", s.ExpectedReturn)
		float("portfolio", "current", "volatility", s.Volatility)
		float("portfolio", "current", "sharpe_ratio", s.SharpeRatio)
		float("portfolio", "current", "var_95", s.VaR95)
		if f := report.Portfolio.Frontier; f != nil {
			integer("portfolio", "frontier", "efficient_portfolios", len(f.Efficient))
			float("portfolio", "max_sharpe", "sharpe_ratio", f.MaxSharpe.Statistics.SharpeRatio)
		}
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
