package calculation

import (
	"testing"
	"time"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	ma := NewMortgageAmortizer()

	tests := []struct {
		name     string
		loan     string
		rate     string
		term     int
		mtype    domain.MortgageType
		expected string
	}{
		{"repayment 4% over 25 years", "200000", "0.04", 300, domain.Repayment, "1055.67"},
		{"zero rate is straight line", "120000", "0", 240, domain.Repayment, "500"},
		{"interest only", "200000", "0.04", 300, domain.InterestOnly, "666.67"},
		{"no term", "200000", "0.04", 0, domain.Repayment, "0"},
		{"no loan", "0", "0.04", 300, domain.Repayment, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ma.CalculateMonthlyPayment(dec(tt.loan), dec(tt.rate), tt.term, tt.mtype)
			assert.True(t, got.Equal(dec(tt.expected)), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestGenerateAmortizationSchedule_FullTerm(t *testing.T) {
	ma := NewMortgageAmortizer()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := domain.Mortgage{
		OriginalLoanAmount:  dec("200000"),
		OutstandingBalance:  dec("200000"),
		InterestRate:        dec("0.04"),
		Type:                domain.Repayment,
		StartDate:           start,
		RemainingTermMonths: 300,
	}

	s := ma.GenerateAmortizationSchedule(m, start)

	require.Len(t, s.Rows, 300)
	assert.Equal(t, 300, s.PaymentCount)
	assert.True(t, s.MonthlyPayment.Equal(dec("1055.67")))

	first := s.Rows[0]
	assert.True(t, first.Interest.Equal(dec("666.67")), "got %s", first.Interest)
	assert.True(t, first.Principal.Equal(dec("389")), "got %s", first.Principal)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), first.PaymentDate)

	last := s.Rows[len(s.Rows)-1]
	assert.True(t, last.ClosingBalance.IsZero())
	assert.True(t, s.TotalPrincipal.Equal(dec("200000")), "principal %s", s.TotalPrincipal)
	assert.True(t, s.TotalPayments.Equal(s.TotalPrincipal.Add(s.TotalInterest)))

	previous := s.StartBalance
	for _, row := range s.Rows {
		assert.True(t, row.ClosingBalance.LessThanOrEqual(previous), "balance increased in period %d", row.Period)
		assert.True(t, row.OpeningBalance.Sub(row.Principal).Equal(row.ClosingBalance))
		previous = row.ClosingBalance
	}
}

func TestGenerateAmortizationSchedule_ElapsedMonths(t *testing.T) {
	ma := NewMortgageAmortizer()
	m := domain.Mortgage{
		OutstandingBalance:  dec("150000"),
		InterestRate:        dec("0.05"),
		Type:                domain.Repayment,
		StartDate:           time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
		RemainingTermMonths: 120,
	}

	s := ma.GenerateAmortizationSchedule(m, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 62, s.ElapsedMonths)
	require.NotEmpty(t, s.Rows)
	assert.Equal(t, 63, s.Rows[0].Period)
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), s.Rows[0].PaymentDate)
	assert.True(t, s.Rows[len(s.Rows)-1].ClosingBalance.IsZero())
}

func TestGenerateAmortizationSchedule_MonthEndStart(t *testing.T) {
	ma := NewMortgageAmortizer()
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	m := domain.Mortgage{
		OutstandingBalance:  dec("12000"),
		InterestRate:        dec("0.04"),
		Type:                domain.Repayment,
		StartDate:           start,
		RemainingTermMonths: 12,
	}

	s := ma.GenerateAmortizationSchedule(m, start)

	require.Len(t, s.Rows, 12)
	expected := []time.Time{
		time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
	}
	for i, want := range expected {
		assert.Equal(t, want, s.Rows[i].PaymentDate, "row %d", i)
	}
	for i, row := range s.Rows {
		wantMonth := time.Month((int(time.January)+i)%12 + 1)
		assert.Equal(t, wantMonth, row.PaymentDate.Month(), "one payment per month, row %d", i)
	}
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), s.Rows[11].PaymentDate)

	years := ma.CalculateAnnualEquityBuild(s)
	require.Len(t, years, 2)
	assert.Equal(t, 2025, years[0].Year)
	assert.Equal(t, 2026, years[1].Year)
}

func TestAddMonths_LeapYear(t *testing.T) {
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), addMonths(time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), 1))
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), addMonths(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 12))
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), addMonths(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), 63))
}

func TestGenerateAmortizationSchedule_InterestOnly(t *testing.T) {
	ma := NewMortgageAmortizer()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := domain.Mortgage{
		OutstandingBalance:  dec("100000"),
		InterestRate:        dec("0.06"),
		Type:                domain.InterestOnly,
		StartDate:           start,
		RemainingTermMonths: 12,
	}

	s := ma.GenerateAmortizationSchedule(m, start)

	require.Len(t, s.Rows, 12)
	for _, row := range s.Rows {
		assert.True(t, row.Interest.Equal(dec("500")))
		assert.True(t, row.Principal.IsZero())
	}
	assert.True(t, s.TotalInterest.Equal(dec("6000")))
	assert.True(t, s.BalloonPayment.Equal(dec("100000")))
}

func TestGenerateAmortizationSchedule_StopsWhenRepaid(t *testing.T) {
	ma := NewMortgageAmortizer()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := domain.Mortgage{
		OutstandingBalance:  dec("100000"),
		InterestRate:        decimal.Zero,
		MonthlyPayment:      dec("60000"),
		Type:                domain.Repayment,
		StartDate:           start,
		RemainingTermMonths: 12,
	}

	s := ma.GenerateAmortizationSchedule(m, start)

	require.Len(t, s.Rows, 2)
	assert.True(t, s.Rows[1].Payment.Equal(dec("40000")), "final payment is clamped to the balance")
	assert.True(t, s.Rows[1].ClosingBalance.IsZero())
}

func TestCalculateAnnualEquityBuild(t *testing.T) {
	ma := NewMortgageAmortizer()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := domain.Mortgage{
		OutstandingBalance:  dec("2400"),
		InterestRate:        decimal.Zero,
		Type:                domain.Repayment,
		StartDate:           start,
		RemainingTermMonths: 24,
	}

	years := ma.CalculateAnnualEquityBuild(ma.GenerateAmortizationSchedule(m, start))

	require.Len(t, years, 3)
	assert.Equal(t, 2025, years[0].Year)
	assert.True(t, years[0].Principal.Equal(dec("1100")))
	assert.True(t, years[1].Principal.Equal(dec("1200")))
	assert.True(t, years[2].Principal.Equal(dec("100")))
	assert.True(t, years[2].ClosingBalance.IsZero())
}
