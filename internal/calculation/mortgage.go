package calculation

import (
	"time"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// AmortizationRow is one monthly payment
type AmortizationRow struct {
	Period         int             `json:"period"`
	PaymentDate    time.Time       `json:"paymentDate"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Payment        decimal.Decimal `json:"payment"`
	Interest       decimal.Decimal `json:"interest"`
	Principal      decimal.Decimal `json:"principal"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// AmortizationSchedule is the remaining life of a mortgage from an as-of date
type AmortizationSchedule struct {
	Lender         string              `json:"lender"`
	Type           domain.MortgageType `json:"type"`
	MonthlyRate    decimal.Decimal     `json:"monthlyRate"`
	MonthlyPayment decimal.Decimal     `json:"monthlyPayment"`
	StartBalance   decimal.Decimal     `json:"startBalance"`
	ElapsedMonths  int                 `json:"elapsedMonths"`
	Rows           []AmortizationRow   `json:"rows"`
	TotalInterest  decimal.Decimal     `json:"totalInterest"`
	TotalPrincipal decimal.Decimal     `json:"totalPrincipal"`
	TotalPayments  decimal.Decimal     `json:"totalPayments"`
	PaymentCount   int                 `json:"paymentCount"`
	BalloonPayment decimal.Decimal     `json:"balloonPayment"`
}

// AnnualEquity aggregates a schedule by calendar year
type AnnualEquity struct {
	Year           int             `json:"year"`
	Payments       decimal.Decimal `json:"payments"`
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// MortgageAmortizer computes mortgage payments and schedules
type MortgageAmortizer struct{}

// NewMortgageAmortizer creates a new amortizer
func NewMortgageAmortizer() *MortgageAmortizer {
	return &MortgageAmortizer{}
}

// CalculateMonthlyPayment returns the level monthly payment, rounded to pence.
// Interest-only loans pay interest alone. A zero rate repays in straight line.
func (ma *MortgageAmortizer) CalculateMonthlyPayment(loan, annualRate decimal.Decimal, termMonths int, mortgageType domain.MortgageType) decimal.Decimal {
	if loan.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	monthlyRate := annualRate.Div(twelve)
	if mortgageType == domain.InterestOnly {
		return money(loan.Mul(monthlyRate))
	}
	if termMonths <= 0 {
		return decimal.Zero
	}
	if monthlyRate.IsZero() {
		return money(loan.Div(decimal.NewFromInt(int64(termMonths))))
	}

	factor := GrowthFactor(monthlyRate, termMonths)
	return money(loan.Mul(monthlyRate).Mul(factor).Div(factor.Sub(one)))
}

// GenerateAmortizationSchedule projects the mortgage forward from asOf for its
// remaining term. The balance never increases; the final repayment period
// clears whatever is left, and the schedule stops once the balance reaches zero.
func (ma *MortgageAmortizer) GenerateAmortizationSchedule(m domain.Mortgage, asOf time.Time) AmortizationSchedule {
	monthlyRate := m.InterestRate.Div(twelve)
	start := m.StartDate
	if start.IsZero() {
		start = asOf
	}
	elapsed := monthsBetween(start, asOf)

	remaining := m.RemainingTermMonths
	if remaining <= 0 && !m.MaturityDate.IsZero() {
		remaining = monthsBetween(asOf, m.MaturityDate)
	}

	payment := m.MonthlyPayment
	if payment.LessThanOrEqual(decimal.Zero) {
		payment = ma.CalculateMonthlyPayment(m.OutstandingBalance, m.InterestRate, remaining, m.Type)
	}

	schedule := AmortizationSchedule{
		Lender:         m.Lender,
		Type:           m.Type,
		MonthlyRate:    monthlyRate,
		MonthlyPayment: payment,
		StartBalance:   m.OutstandingBalance,
		ElapsedMonths:  elapsed,
		TotalInterest:  decimal.Zero,
		TotalPrincipal: decimal.Zero,
		TotalPayments:  decimal.Zero,
	}

	balance := m.OutstandingBalance
	for i := 1; i <= remaining && balance.GreaterThan(decimal.Zero); i++ {
		interest := money(balance.Mul(monthlyRate))
		principal := decimal.Zero
		if m.Type != domain.InterestOnly {
			principal = NonNegative(payment.Sub(interest))
			if principal.GreaterThan(balance) || i == remaining {
				principal = balance
			}
		}

		row := AmortizationRow{
			Period:         elapsed + i,
			PaymentDate:    addMonths(start, elapsed+i),
			OpeningBalance: balance,
			Payment:        interest.Add(principal),
			Interest:       interest,
			Principal:      principal,
		}
		balance = balance.Sub(principal)
		row.ClosingBalance = balance
		schedule.Rows = append(schedule.Rows, row)

		schedule.TotalInterest = schedule.TotalInterest.Add(interest)
		schedule.TotalPrincipal = schedule.TotalPrincipal.Add(principal)
		schedule.TotalPayments = schedule.TotalPayments.Add(row.Payment)
	}

	schedule.PaymentCount = len(schedule.Rows)
	if m.Type == domain.InterestOnly {
		schedule.BalloonPayment = balance
	}
	return schedule
}

// CalculateAnnualEquityBuild groups a schedule by calendar year of payment
func (ma *MortgageAmortizer) CalculateAnnualEquityBuild(schedule AmortizationSchedule) []AnnualEquity {
	var years []AnnualEquity
	for _, row := range schedule.Rows {
		year := row.PaymentDate.Year()
		if len(years) == 0 || years[len(years)-1].Year != year {
			years = append(years, AnnualEquity{
				Year:      year,
				Payments:  decimal.Zero,
				Principal: decimal.Zero,
				Interest:  decimal.Zero,
			})
		}
		current := &years[len(years)-1]
		current.Payments = current.Payments.Add(row.Payment)
		current.Principal = current.Principal.Add(row.Principal)
		current.Interest = current.Interest.Add(row.Interest)
		current.ClosingBalance = row.ClosingBalance
	}
	return years
}

// addMonths moves t forward n calendar months, keeping its day of month but
// clamping it to the last day of a shorter target month.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := min(t.Day(), lastDay)
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// monthsBetween counts whole months from a to b, never negative
func monthsBetween(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
