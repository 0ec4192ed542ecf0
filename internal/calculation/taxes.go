package calculation

import (
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Band edges, rates and allowances come only from the TaxYearConfig.
// 2. Adjusted net income for the personal allowance taper is approximated by
//    total gross income (no relief for pension contributions or gift aid).
// 3. Unused personal allowance is set against dividends before the dividend
//    allowance. The dividend allowance uses band space.
// 4. Savings income and the starting rate for savings are not modelled.

// BandSlice is the portion of income taxed within one band
type BandSlice struct {
	Band    string          `json:"band"`
	Rate    decimal.Decimal `json:"rate"`
	Taxable decimal.Decimal `json:"taxable"`
	Tax     decimal.Decimal `json:"tax"`
}

// IncomeTaxBreakdown itemises a net income calculation
type IncomeTaxBreakdown struct {
	PersonalAllowance     decimal.Decimal `json:"personalAllowance"`
	TaxableNonDividend    decimal.Decimal `json:"taxableNonDividend"`
	NonDividendTax        decimal.Decimal `json:"nonDividendTax"`
	Bands                 []BandSlice     `json:"bands"`
	DividendAllowanceUsed decimal.Decimal `json:"dividendAllowanceUsed"`
	TaxableDividends      decimal.Decimal `json:"taxableDividends"`
	DividendTax           decimal.Decimal `json:"dividendTax"`
	DividendBands         []BandSlice     `json:"dividendBands"`
	Class1NI              decimal.Decimal `json:"class1NI"`
	Class4NI              decimal.Decimal `json:"class4NI"`
}

// NetIncomeResult is the outcome of CalculateNetIncome
type NetIncomeResult struct {
	Gross             decimal.Decimal    `json:"gross"`
	IncomeTax         decimal.Decimal    `json:"incomeTax"`
	NationalInsurance decimal.Decimal    `json:"nationalInsurance"`
	TotalDeductions   decimal.Decimal    `json:"totalDeductions"`
	NetIncome         decimal.Decimal    `json:"netIncome"`
	EffectiveRate     decimal.Decimal    `json:"effectiveRate"`
	Breakdown         IncomeTaxBreakdown `json:"breakdown"`
}

// IncomeTaxCalculator handles UK income tax and National Insurance
type IncomeTaxCalculator struct {
	IncomeTax   domain.IncomeTaxConfig
	Dividend    domain.DividendTaxConfig
	NI          domain.NationalInsuranceConfig
}

// NewIncomeTaxCalculator creates a calculator for one tax year
func NewIncomeTaxCalculator(cfg *domain.TaxYearConfig) *IncomeTaxCalculator {
	return &IncomeTaxCalculator{
		IncomeTax: cfg.IncomeTax,
		Dividend:  cfg.DividendTax,
		NI:        cfg.NationalInsurance,
	}
}

// CalculateNetIncome computes income tax, NI and net income from the five income streams
func (itc *IncomeTaxCalculator) CalculateNetIncome(income domain.IncomeProfile) NetIncomeResult {
	breakdown := itc.CalculateIncomeTax(income)
	breakdown.Class1NI = itc.CalculateClass1NI(income.Employment)
	breakdown.Class4NI = itc.CalculateClass4NI(income.SelfEmployment)

	gross := income.Total()
	incomeTax := breakdown.NonDividendTax.Add(breakdown.DividendTax)
	ni := breakdown.Class1NI.Add(breakdown.Class4NI)
	deductions := incomeTax.Add(ni)

	return NetIncomeResult{
		Gross:             money(gross),
		IncomeTax:         incomeTax,
		NationalInsurance: ni,
		TotalDeductions:   deductions,
		NetIncome:         money(gross.Sub(deductions)),
		EffectiveRate:     SafeDiv(deductions, gross).Round(4),
		Breakdown:         breakdown,
	}
}

// AdjustedPersonalAllowance applies the high-income taper to the personal allowance
func (itc *IncomeTaxCalculator) AdjustedPersonalAllowance(totalIncome decimal.Decimal) decimal.Decimal {
	pa := itc.IncomeTax.PersonalAllowance
	taper := itc.IncomeTax.PersonalAllowanceTaper
	if taper.IncomeLimit.IsZero() || totalIncome.LessThanOrEqual(taper.IncomeLimit) {
		return pa
	}
	reduction := totalIncome.Sub(taper.IncomeLimit).Mul(taper.ReductionRate)
	return NonNegative(pa.Sub(reduction))
}

// CalculateIncomeTax computes income tax on non-dividend and dividend income.
// Dividends sit on top of other income, so their rate depends on total income.
func (itc *IncomeTaxCalculator) CalculateIncomeTax(income domain.IncomeProfile) IncomeTaxBreakdown {
	pa := itc.AdjustedPersonalAllowance(income.Total())

	nonDividend := income.NonDividend()
	allowanceUsed := decimal.Min(pa, nonDividend)
	taxableNonDividend := nonDividend.Sub(allowanceUsed)
	allowanceLeft := pa.Sub(allowanceUsed)

	slices, nonDividendTax := itc.applyBands(decimal.Zero, taxableNonDividend, func(i int, band domain.IncomeTaxBand) decimal.Decimal {
		return band.Rate
	})

	dividends := NonNegative(income.Dividend.Sub(allowanceLeft))
	dividendAllowanceUsed := decimal.Min(itc.Dividend.Allowance, dividends)
	taxableDividends := dividends.Sub(dividendAllowanceUsed)

	dividendSlices, dividendTax := itc.applyBands(taxableNonDividend.Add(dividendAllowanceUsed), taxableDividends, itc.dividendRate)

	return IncomeTaxBreakdown{
		PersonalAllowance:     money(pa),
		TaxableNonDividend:    money(taxableNonDividend),
		NonDividendTax:        nonDividendTax,
		Bands:                 slices,
		DividendAllowanceUsed: money(dividendAllowanceUsed),
		TaxableDividends:      money(taxableDividends),
		DividendTax:           dividendTax,
		DividendBands:         dividendSlices,
	}
}

// applyBands taxes the slice [start, start+amount) of taxable income. Each
// band covers [previous ThresholdMax, ThresholdMax). Slice taxes are rounded
// to the penny and the total is their sum.
func (itc *IncomeTaxCalculator) applyBands(start, amount decimal.Decimal, rateFor func(int, domain.IncomeTaxBand) decimal.Decimal) ([]BandSlice, decimal.Decimal) {
	var slices []BandSlice
	total := decimal.Zero
	if amount.LessThanOrEqual(decimal.Zero) {
		return slices, total
	}

	end := start.Add(amount)
	lower := decimal.Zero
	for i, band := range itc.IncomeTax.Bands {
		upper := end
		if !band.IsUnbounded() {
			upper = decimal.Min(end, band.ThresholdMax)
		}
		from := decimal.Max(start, lower)
		if upper.GreaterThan(from) {
			taxable := upper.Sub(from)
			rate := rateFor(i, band)
			tax := money(taxable.Mul(rate))
			slices = append(slices, BandSlice{Band: band.Name, Rate: rate, Taxable: money(taxable), Tax: tax})
			total = total.Add(tax)
		}
		if band.IsUnbounded() || band.ThresholdMax.GreaterThanOrEqual(end) {
			break
		}
		lower = band.ThresholdMax
	}
	return slices, total
}

// dividendRate maps income tax band positions onto the dividend rates
func (itc *IncomeTaxCalculator) dividendRate(i int, _ domain.IncomeTaxBand) decimal.Decimal {
	switch i {
	case 0:
		return itc.Dividend.BasicRate
	case 1:
		return itc.Dividend.HigherRate
	default:
		return itc.Dividend.AdditionalRate
	}
}

// CalculateClass1NI calculates employee Class 1 National Insurance
func (itc *IncomeTaxCalculator) CalculateClass1NI(earnings decimal.Decimal) decimal.Decimal {
	c := itc.NI.Class1
	return niOnBand(earnings, c.PrimaryThreshold, c.UpperEarningsLimit, c.MainRate, c.AdditionalRate)
}

// CalculateClass4NI calculates self-employed Class 4 National Insurance
func (itc *IncomeTaxCalculator) CalculateClass4NI(profits decimal.Decimal) decimal.Decimal {
	c := itc.NI.Class4
	return niOnBand(profits, c.LowerProfitsLimit, c.UpperProfitsLimit, c.MainRate, c.AdditionalRate)
}

// niOnBand charges mainRate between lower and upper and additionalRate above upper
func niOnBand(amount, lower, upper, mainRate, additionalRate decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(lower) {
		return decimal.Zero
	}
	main := decimal.Min(amount, upper).Sub(lower).Mul(mainRate)
	additional := NonNegative(amount.Sub(upper)).Mul(additionalRate)
	return money(main.Add(additional))
}

// BandIndexForIncome returns the band a gross total income falls in, comparing
// it with the (tapered) personal allowance + each band's upper edge. Income at
// or below a threshold stays in the lower band.
func (itc *IncomeTaxCalculator) BandIndexForIncome(totalIncome decimal.Decimal) int {
	pa := itc.AdjustedPersonalAllowance(totalIncome)
	for i := range itc.IncomeTax.Bands {
		upper, bounded := itc.IncomeTax.AbsoluteBandThreshold(i, pa)
		if !bounded || totalIncome.LessThanOrEqual(upper) {
			return i
		}
	}
	return len(itc.IncomeTax.Bands) - 1
}

// MarginalRate returns the income tax rate and band name for a gross total income
func (itc *IncomeTaxCalculator) MarginalRate(totalIncome decimal.Decimal) (decimal.Decimal, string) {
	if len(itc.IncomeTax.Bands) == 0 {
		return decimal.Zero, ""
	}
	band := itc.IncomeTax.Bands[itc.BandIndexForIncome(totalIncome)]
	return band.Rate, band.Name
}

// BasicRate returns the first band's rate
func (itc *IncomeTaxCalculator) BasicRate() decimal.Decimal {
	return itc.IncomeTax.BasicRateBand().Rate
}
