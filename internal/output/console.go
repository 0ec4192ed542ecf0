package output

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/planner"
	"github.com/rgehrsitz/ukplan/internal/portfolio"
	"github.com/rgehrsitz/ukplan/internal/protection"
)

var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorMuted   = lipgloss.Color("#626262")
	ColorBorder  = lipgloss.Color("#3C3C3C")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 2)
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			MarginTop(1)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle = lipgloss.NewStyle().Bold(true)
)

// adequacyColours maps the protection band colours onto terminal colours
var adequacyColours = map[string]lipgloss.Color{
	"green": lipgloss.Color("#04B575"),
	"blue":  lipgloss.Color("#3C9DFF"),
	"amber": lipgloss.Color("#FFB000"),
	"red":   lipgloss.Color("#FF4672"),
}

// AdequacyStyle colours text by adequacy band
func AdequacyStyle(band protection.AdequacyBand) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if c, ok := adequacyColours[band.Colour]; ok {
		style = style.Foreground(c)
	}
	return style
}

// ConsoleFormatter renders a styled, human-readable report
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *planner.Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, TitleStyle.Render(fmt.Sprintf("UK FINANCIAL PLAN: %s", report.Household)))
	line(&buf, "Tax year", report.TaxYear)
	line(&buf, "As of", report.AsOf.Format("2006-01-02"))
	line(&buf, "Report", report.ID)

	WriteNetIncome(&buf, report.NetIncome)

	for _, p := range report.Properties {
		section(&buf, "PROPERTY: "+p.Name)
		line(&buf, "Value (your share)", FormatCurrency(p.Equity.Value))
		line(&buf, "Outstanding mortgage", FormatCurrency(p.Equity.OutstandingMortgage))
		line(&buf, "Equity", FormatCurrency(p.Equity.Equity))
		line(&buf, "Loan to value", FormatPercentage(p.Equity.LoanToValue))
		if p.Rental != nil {
			line(&buf, "Gross rent", FormatCurrency(p.Rental.GrossRentalIncome))
			line(&buf, "Rental tax", FormatCurrency(p.Rental.TaxLiability))
			line(&buf, "Net rental income", FormatCurrency(p.Rental.NetRentalIncome))
		}
		for _, m := range p.Mortgages {
			line(&buf, "Mortgage ("+m.Lender+")", fmt.Sprintf("%s/month, %d payments left, %s interest to pay",
				FormatCurrency(m.MonthlyPayment), m.RemainingPayments, FormatCurrency(m.TotalInterest)))
			if m.BalloonPayment.IsPositive() {
				line(&buf, "Balloon payment", FormatCurrency(m.BalloonPayment))
			}
		}
	}

	WriteAllowance(&buf, report.Allowance.Allowance, report.Allowance.CarryForward, report.Allowance.MPAA)

	r := report.Retirement
	section(&buf, "RETIREMENT")
	line(&buf, "Projected income", FormatCurrency(r.Readiness.Projection.Total))
	line(&buf, "Target income", FormatCurrency(r.Readiness.TargetIncome))
	line(&buf, "Readiness", fmt.Sprintf("%d/100 (%s)", r.Readiness.Score, r.Readiness.Category))
	line(&buf, "DC pot at retirement", FormatCurrency(r.Readiness.Projection.DCPot))
	if r.Readiness.RequiredContribution.AnnualContribution.IsPositive() {
		line(&buf, "Required saving", FormatCurrency(r.Readiness.RequiredContribution.AnnualContribution)+"/year")
	}
	if r.Withdrawal.HasSustainable {
		line(&buf, "Sustainable withdrawal", FormatPercentage(r.Withdrawal.RecommendedRate))
	} else {
		line(&buf, "Sustainable withdrawal", "none of the tested rates lasts")
	}
	line(&buf, "Maximum withdrawal rate", FormatPercentage(r.MaxRate.Rate))
	line(&buf, "Tax-free lump sum", FormatCurrency(r.PCLS.LumpSum))
	line(&buf, "Annuity vs drawdown", fmt.Sprintf("%s vs %s (%s higher)",
		FormatCurrency(r.Annuity.AnnuityIncome), FormatCurrency(r.Annuity.DrawdownIncome), r.Annuity.HigherIncome))
	for _, ph := range r.Phases {
		line(&buf, "Phase: "+ph.Name, fmt.Sprintf("from %d, %s (%s)", ph.FromAge, FormatCurrency(ph.AnnualIncome), strings.Join(ph.Sources, ", ")))
	}
	for _, m := range r.EmployerMatch {
		if m.IsUnderContributing {
			line(&buf, "Unclaimed employer match", FormatCurrency(m.UnclaimedEmployerMatch))
		}
	}

	WriteProtection(&buf, report.Protection)

	if report.Portfolio != nil {
		section(&buf, "PORTFOLIO")
		WriteStatistics(&buf, report.Portfolio.Current)
		if report.Portfolio.Frontier != nil {
			WriteFrontier(&buf, report.Portfolio.Frontier)
		}
	}

	return buf.Bytes(), nil
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w, SectionStyle.Render(title))
}

func line(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render(fmt.Sprintf("%-26s", label+":")), ValueStyle.Render(value))
}

// WriteNetIncome renders a net income calculation
func WriteNetIncome(w io.Writer, r calculation.NetIncomeResult) {
	section(w, "NET INCOME")
	line(w, "Gross income", FormatCurrency(r.Gross))
	line(w, "Personal allowance", FormatCurrency(r.Breakdown.PersonalAllowance))
	for _, b := range r.Breakdown.Bands {
		line(w, "  "+b.Band+" @ "+FormatPercentage(b.Rate), FormatCurrency(b.Tax))
	}
	if r.Breakdown.DividendTax.IsPositive() {
		line(w, "Dividend tax", FormatCurrency(r.Breakdown.DividendTax))
	}
	line(w, "Income tax", FormatCurrency(r.IncomeTax))
	line(w, "National Insurance", FormatCurrency(r.NationalInsurance))
	line(w, "Net income", FormatCurrency(r.NetIncome))
	line(w, "Effective rate", FormatPercentage(r.EffectiveRate))
}

// WriteSDLT renders a stamp duty calculation
func WriteSDLT(w io.Writer, r calculation.SDLTResult) {
	section(w, "STAMP DUTY LAND TAX")
	line(w, "Purchase price", FormatCurrency(r.PurchasePrice))
	line(w, "Band set", r.BandSet)
	for _, b := range r.Bands {
		upper := "and above"
		if b.To.IsPositive() {
			upper = "to " + FormatCurrency(b.To)
		}
		line(w, fmt.Sprintf("  %s %s", FormatCurrency(b.From), upper), fmt.Sprintf("%s @ %s", FormatCurrency(b.Tax), FormatPercentage(b.Rate)))
	}
	line(w, "Total SDLT", FormatCurrency(r.TotalSDLT))
	line(w, "Effective rate", FormatPercentage(r.EffectiveRate))
}

// WriteMortgage renders a schedule summary and its yearly equity build
func WriteMortgage(w io.Writer, s calculation.AmortizationSchedule, years []calculation.AnnualEquity) {
	section(w, "MORTGAGE")
	if s.Lender != "" {
		line(w, "Lender", s.Lender)
	}
	line(w, "Monthly payment", FormatCurrency(s.MonthlyPayment))
	line(w, "Payments", fmt.Sprintf("%d", s.PaymentCount))
	line(w, "Total interest", FormatCurrency(s.TotalInterest))
	line(w, "Total paid", FormatCurrency(s.TotalPayments))
	if s.BalloonPayment.IsPositive() {
		line(w, "Balloon payment", FormatCurrency(s.BalloonPayment))
	}
	for _, y := range years {
		line(w, fmt.Sprintf("  %d", y.Year), fmt.Sprintf("principal %s, interest %s, balance %s",
			FormatCurrency(y.Principal), FormatCurrency(y.Interest), FormatCurrency(y.ClosingBalance)))
	}
}

// WriteAllowance renders the pension annual allowance position
func WriteAllowance(w io.Writer, a calculation.AllowanceResult, carry calculation.CarryForwardResult, mpaa calculation.MPAAStatus) {
	section(w, "PENSION ANNUAL ALLOWANCE")
	line(w, "Standard allowance", FormatCurrency(a.StandardAllowance))
	if a.IsTapered {
		line(w, "Taper reduction", FormatCurrency(a.TaperReduction))
	}
	line(w, "Carry forward", FormatCurrency(carry.TotalUnused))
	line(w, "Available allowance", FormatCurrency(a.AvailableAllowance))
	line(w, "Contributions", FormatCurrency(a.TotalContributions))
	if a.HasExcess {
		line(w, "Excess contributions", FormatCurrency(a.ExcessContributions))
	}
	if mpaa.IsTriggered {
		line(w, "MPAA", FormatCurrency(mpaa.MPAAAmount)+" (triggered by "+string(mpaa.TriggerKind)+")")
	}
}

// WriteProtection renders the protection review with adequacy colours
func WriteProtection(w io.Writer, a protection.Analysis) {
	section(w, "PROTECTION")
	line(w, "Total need", FormatCurrency(a.Gap.TotalNeed))
	line(w, "Total cover", FormatCurrency(a.Gap.TotalCoverage))
	line(w, "Gap", FormatCurrency(a.Gap.TotalGap))
	if a.Gap.Surplus.IsPositive() {
		line(w, "Surplus cover", FormatCurrency(a.Gap.Surplus))
	}
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render(fmt.Sprintf("%-26s", "Adequacy:")),
		AdequacyStyle(a.Gap.Adequacy).Render(fmt.Sprintf("%d/100 %s", a.Gap.AdequacyScore, a.Gap.Adequacy.Label)))

	categories := make([]string, 0, len(a.Gap.GapsByCategory))
	for k := range a.Gap.GapsByCategory {
		categories = append(categories, k)
	}
	sort.Strings(categories)
	for _, k := range categories {
		line(w, "  gap: "+k, FormatCurrency(a.Gap.GapsByCategory[k]))
	}

	for _, s := range a.Scenarios {
		fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render(fmt.Sprintf("%-26s", s.Name+":")),
			AdequacyStyle(s.Adequacy).Render(fmt.Sprintf("%d/100", s.Score))+" "+s.Narrative)
	}
	if a.PremiumChange.Affordability != "" {
		line(w, "Premiums after change", fmt.Sprintf("%s/month (%s)", FormatCurrency(a.PremiumChange.NewMonthlyPremium), a.PremiumChange.Affordability))
	}
	for _, r := range a.Recommendations {
		line(w, "Recommend ("+r.Priority+")", fmt.Sprintf("%s %s %s: %s", r.PolicyType, FormatCurrency(r.Amount), r.Frequency, r.Reason))
	}
}

// WriteStatistics renders portfolio risk and return figures
func WriteStatistics(w io.Writer, s portfolio.Statistics) {
	line(w, "Expected return", FormatFloatPercentage(s.ExpectedReturn))
	line(w, "Volatility", FormatFloatPercentage(s.Volatility))
	line(w, "Sharpe ratio", fmt.Sprintf("%.3f", s.SharpeRatio))
	line(w, "Sortino ratio", fmt.Sprintf("%.3f", s.SortinoRatio))
	line(w, "VaR (95%)", FormatFloatPercentage(s.VaR95))
	line(w, "CVaR (95%)", FormatFloatPercentage(s.CVaR95))
	line(w, "Max drawdown estimate", FormatFloatPercentage(s.MaxDrawdownEstimate))
	line(w, "Diversification ratio", fmt.Sprintf("%.3f", s.DiversificationRatio))
}

// WriteFrontier renders the efficient frontier
func WriteFrontier(w io.Writer, f *portfolio.Frontier) {
	line(w, "Portfolios sampled", fmt.Sprintf("%d", f.Sampled))
	line(w, "Efficient portfolios", fmt.Sprintf("%d", len(f.Efficient)))
	line(w, "Max Sharpe", describePortfolio(f.MaxSharpe))
	line(w, "Min variance", describePortfolio(f.MinVariance))
	for _, p := range f.Efficient {
		line(w, "  frontier", fmt.Sprintf("return %s, volatility %s",
			FormatFloatPercentage(p.Statistics.ExpectedReturn), FormatFloatPercentage(p.Statistics.Volatility)))
	}
}

func describePortfolio(p portfolio.WeightedPortfolio) string {
	names := make([]string, 0, len(p.Weights))
	for n := range p.Weights {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s %.0f%%", n, p.Weights[n]*100))
	}
	return fmt.Sprintf("return %s, volatility %s [%s]",
		FormatFloatPercentage(p.Statistics.ExpectedReturn), FormatFloatPercentage(p.Statistics.Volatility), strings.Join(parts, ", "))
}
