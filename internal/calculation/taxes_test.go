package calculation

import (
	"testing"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/rgehrsitz/ukplan/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateNetIncome_EmploymentOnly(t *testing.T) {
	calc := NewIncomeTaxCalculator(testutil.TaxYear2025())

	result := calc.CalculateNetIncome(domain.IncomeProfile{Employment: dec("60000")})

	assert.True(t, result.IncomeTax.Equal(dec("11432")), "income tax: got %s", result.IncomeTax)
	assert.True(t, result.NationalInsurance.Equal(dec("3210.6")), "NI: got %s", result.NationalInsurance)
	assert.True(t, result.TotalDeductions.Equal(dec("14642.6")), "deductions: got %s", result.TotalDeductions)
	assert.True(t, result.NetIncome.Equal(dec("45357.4")), "net: got %s", result.NetIncome)
	assert.Equal(t, "0.2440", result.EffectiveRate.StringFixed(4))

	require.Len(t, result.Breakdown.Bands, 2)
	assert.Equal(t, "basic", result.Breakdown.Bands[0].Band)
	assert.True(t, result.Breakdown.Bands[0].Taxable.Equal(dec("37700")))
	assert.True(t, result.Breakdown.Bands[0].Tax.Equal(dec("7540")))
	assert.Equal(t, "higher", result.Breakdown.Bands[1].Band)
	assert.True(t, result.Breakdown.Bands[1].Taxable.Equal(dec("9730")))
	assert.True(t, result.Breakdown.Bands[1].Tax.Equal(dec("3892")))
}

func TestCalculateNetIncome_ZeroAndBelowAllowance(t *testing.T) {
	calc := NewIncomeTaxCalculator(testutil.TaxYear2025())

	zero := calc.CalculateNetIncome(domain.IncomeProfile{})
	assert.True(t, zero.EffectiveRate.IsZero())
	assert.True(t, zero.NetIncome.IsZero())

	low := calc.CalculateNetIncome(domain.IncomeProfile{Employment: dec("12000")})
	assert.True(t, low.IncomeTax.IsZero())
	assert.True(t, low.NationalInsurance.IsZero())
	assert.True(t, low.NetIncome.Equal(dec("12000")))
}

func TestCalculateIncomeTax_PersonalAllowanceTaper(t *testing.T) {
	calc := NewIncomeTaxCalculator(testutil.TaxYear2025())

	tests := []struct {
		name       string
		employment string
		allowance  string
		tax        string
	}{
		{"below taper", "100000", "12570", "27432"},
		{"partially tapered", "110000", "7570", "33432"},
		{"allowance fully withdrawn", "125140", "0", "42516"},
		{"additional rate", "150000", "0", "53703"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := calc.CalculateIncomeTax(domain.IncomeProfile{Employment: dec(tt.employment)})
			assert.True(t, b.PersonalAllowance.Equal(dec(tt.allowance)), "allowance: got %s", b.PersonalAllowance)
			assert.True(t, b.NonDividendTax.Equal(dec(tt.tax)), "tax: got %s", b.NonDividendTax)
		})
	}
}

func TestCalculateIncomeTax_DividendsStraddleBands(t *testing.T) {
	calc := NewIncomeTaxCalculator(testutil.TaxYear2025())

	b := calc.CalculateIncomeTax(domain.IncomeProfile{
		Employment: dec("40000"),
		Dividend:   dec("20000"),
	})

	assert.True(t, b.NonDividendTax.Equal(dec("5486")), "got %s", b.NonDividendTax)
	assert.True(t, b.DividendAllowanceUsed.Equal(dec("500")))
	assert.True(t, b.TaxableDividends.Equal(dec("19500")))
	require.Len(t, b.DividendBands, 2)
	assert.True(t, b.DividendBands[0].Taxable.Equal(dec("9770")))
	assert.True(t, b.DividendBands[0].Tax.Equal(dec("854.88")))
	assert.True(t, b.DividendBands[1].Taxable.Equal(dec("9730")))
	assert.True(t, b.DividendBands[1].Tax.Equal(dec("3283.88")))
	assert.True(t, b.DividendTax.Equal(dec("4138.76")), "got %s", b.DividendTax)
}

func TestCalculateIncomeTax_UnusedAllowanceOffsetsDividends(t *testing.T) {
	calc := NewIncomeTaxCalculator(testutil.TaxYear2025())

	covered := calc.CalculateIncomeTax(domain.IncomeProfile{Dividend: dec("10000")})
	assert.True(t, covered.DividendTax.IsZero())

	b := calc.CalculateIncomeTax(domain.IncomeProfile{Dividend: dec("15000")})
	assert.True(t, b.TaxableDividends.Equal(dec("1930")), "got %s", b.TaxableDividends)
	assert.True(t, b.DividendTax.Equal(dec("168.88")), "got %s", b.DividendTax)
}

func TestNationalInsurance(t *testing.T) {
	calc := NewIncomeTaxCalculator(testutil.TaxYear2025())

	assert.True(t, calc.CalculateClass1NI(dec("12570")).IsZero())
	assert.True(t, calc.CalculateClass1NI(dec("30000")).Equal(dec("1394.4")))
	assert.True(t, calc.CalculateClass4NI(dec("30000")).Equal(dec("1045.8")))
	assert.True(t, calc.CalculateClass4NI(dec("60000")).Equal(dec("2456.6")))
}

func TestMarginalRate(t *testing.T) {
	calc := NewIncomeTaxCalculator(testutil.TaxYear2025())

	tests := []struct {
		income string
		rate   string
		band   string
	}{
		{"10000", "0.20", "basic"},
		{"50270", "0.20", "basic"},
		{"50271", "0.40", "higher"},
		{"125140", "0.40", "higher"},
		{"125141", "0.45", "additional"},
	}

	for _, tt := range tests {
		t.Run(tt.income, func(t *testing.T) {
			rate, band := calc.MarginalRate(dec(tt.income))
			assert.True(t, rate.Equal(dec(tt.rate)), "got %s", rate)
			assert.Equal(t, tt.band, band)
		})
	}
}

func TestIncomeTax_BandSlicesSumAndMonotonic(t *testing.T) {
	calc := NewIncomeTaxCalculator(testutil.TaxYear2025())

	previous := decimal.Zero
	for income := int64(0); income <= 200000; income += 997 {
		b := calc.CalculateIncomeTax(domain.IncomeProfile{Employment: decimal.NewFromInt(income)})

		sum := decimal.Zero
		for _, s := range b.Bands {
			sum = sum.Add(s.Tax)
		}
		assert.True(t, sum.Equal(b.NonDividendTax), "income %d: slices %s != tax %s", income, sum, b.NonDividendTax)
		assert.True(t, b.NonDividendTax.GreaterThanOrEqual(previous), "tax decreased at income %d", income)
		previous = b.NonDividendTax
	}
}

func TestIncomeTax_ContinuousAtBandEdges(t *testing.T) {
	calc := NewIncomeTaxCalculator(testutil.TaxYear2025())

	for _, edge := range []string{"12570", "50270", "100000", "125140"} {
		at := calc.CalculateIncomeTax(domain.IncomeProfile{Employment: dec(edge)})
		above := calc.CalculateIncomeTax(domain.IncomeProfile{Employment: dec(edge).Add(dec("1"))})
		step := above.NonDividendTax.Sub(at.NonDividendTax)
		assert.True(t, step.LessThanOrEqual(dec("1")), "jump of %s at %s", step, edge)
	}
}
