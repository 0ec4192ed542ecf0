package calculation

import (
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SDLT band set names reported on SDLTResult
const (
	SDLTStandard             = "standard"
	SDLTAdditionalProperties = "additional_properties"
	SDLTFirstTimeBuyer       = "first_time_buyers"
)

// SDLTBandSlice is the part of a purchase price charged in one band
type SDLTBandSlice struct {
	From    decimal.Decimal `json:"from"`
	To      decimal.Decimal `json:"to"`
	Rate    decimal.Decimal `json:"rate"`
	Taxable decimal.Decimal `json:"taxable"`
	Tax     decimal.Decimal `json:"tax"`
}

// SDLTResult is the Stamp Duty Land Tax due on a purchase
type SDLTResult struct {
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	BandSet       string          `json:"bandSet"`
	Bands         []SDLTBandSlice `json:"bands"`
	TotalSDLT     decimal.Decimal `json:"totalSdlt"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
}

// CGTResult is the capital gains tax due on disposing of a property share
type CGTResult struct {
	DisposalPrice      decimal.Decimal `json:"disposalPrice"`
	AcquisitionCost    decimal.Decimal `json:"acquisitionCost"`
	DisposalCosts      decimal.Decimal `json:"disposalCosts"`
	OwnershipShare     decimal.Decimal `json:"ownershipShare"`
	Gain               decimal.Decimal `json:"gain"`
	AnnualExemptAmount decimal.Decimal `json:"annualExemptAmount"`
	TaxableGain        decimal.Decimal `json:"taxableGain"`
	Rate               decimal.Decimal `json:"rate"`
	IsHigherRate       bool            `json:"isHigherRate"`
	CGTLiability       decimal.Decimal `json:"cgtLiability"`
	NetProceeds        decimal.Decimal `json:"netProceeds"`
}

// RentalTaxResult is the annual income tax on a let property
type RentalTaxResult struct {
	GrossRentalIncome      decimal.Decimal `json:"grossRentalIncome"`
	AllowableExpenses      decimal.Decimal `json:"allowableExpenses"`
	TaxableProfit          decimal.Decimal `json:"taxableProfit"`
	MarginalRate           decimal.Decimal `json:"marginalRate"`
	Band                   string          `json:"band"`
	TaxBeforeCredit        decimal.Decimal `json:"taxBeforeCredit"`
	MortgageInterest       decimal.Decimal `json:"mortgageInterest"`
	MortgageInterestCredit decimal.Decimal `json:"mortgageInterestCredit"`
	TaxLiability           decimal.Decimal `json:"taxLiability"`
	NetRentalIncome        decimal.Decimal `json:"netRentalIncome"`
}

// PropertyEquity is the owner's equity position in a property
type PropertyEquity struct {
	Value               decimal.Decimal `json:"value"`
	OutstandingMortgage decimal.Decimal `json:"outstandingMortgage"`
	Equity              decimal.Decimal `json:"equity"`
	LoanToValue         decimal.Decimal `json:"loanToValue"`
}

// PropertyTaxCalculator computes SDLT, CGT and rental income tax
type PropertyTaxCalculator struct {
	StampDuty   domain.StampDutyConfig
	CapitalGain domain.CapitalGainsTaxConfig
	incomeTax   *IncomeTaxCalculator
}

// NewPropertyTaxCalculator creates a calculator for one tax year
func NewPropertyTaxCalculator(cfg *domain.TaxYearConfig) *PropertyTaxCalculator {
	return &PropertyTaxCalculator{
		StampDuty:   cfg.StampDuty,
		CapitalGain: cfg.CapitalGainsTax,
		incomeTax:   NewIncomeTaxCalculator(cfg),
	}
}

// CalculateSDLT applies the band set for the purchase. Additional properties
// always use the surcharge bands. First-time buyer relief applies only up to
// the maximum property value; above it the standard bands apply in full.
func (ptc *PropertyTaxCalculator) CalculateSDLT(price decimal.Decimal, propertyType domain.PropertyType, firstTimeBuyer bool) SDLTResult {
	res := ptc.StampDuty.Residential
	bandSet, bands := SDLTStandard, res.Standard.Bands
	switch {
	case propertyType.IsAdditional():
		bandSet, bands = SDLTAdditionalProperties, res.AdditionalProperties.Bands
	case firstTimeBuyer && len(res.FirstTimeBuyers.Bands) > 0 && price.LessThanOrEqual(res.FirstTimeBuyers.MaxPropertyValue):
		bandSet, bands = SDLTFirstTimeBuyer, res.FirstTimeBuyers.Bands
	}

	result := SDLTResult{PurchasePrice: price, BandSet: bandSet}
	total := decimal.Zero
	for i, band := range bands {
		if price.LessThanOrEqual(band.Threshold) {
			break
		}
		upper := price
		if i+1 < len(bands) {
			upper = decimal.Min(price, bands[i+1].Threshold)
		}
		taxable := upper.Sub(band.Threshold)
		tax := taxable.Mul(band.Rate)
		result.Bands = append(result.Bands, SDLTBandSlice{
			From:    band.Threshold,
			To:      upper,
			Rate:    band.Rate,
			Taxable: taxable,
			Tax:     money(tax),
		})
		total = total.Add(tax)
	}

	result.TotalSDLT = money(total)
	result.EffectiveRate = SafeDiv(total, price).Round(4)
	return result
}

// CalculateCGT computes the gain on disposal and the tax on the owner's share.
// The rate depends on whether total income exceeds the basic rate threshold.
func (ptc *PropertyTaxCalculator) CalculateCGT(property domain.Property, disposalPrice, disposalCosts decimal.Decimal, income domain.IncomeProfile) CGTResult {
	share := property.Share()
	acquisition := property.PurchasePrice.Add(property.SDLTPaid)
	gain := disposalPrice.Sub(acquisition).Sub(disposalCosts).Mul(share)

	exempt := ptc.CapitalGain.AnnualExemptAmount
	taxable := NonNegative(gain.Sub(exempt))

	rates := ptc.CapitalGain.Rates.Residential
	higher := ptc.incomeTax.BandIndexForIncome(income.Total()) > 0
	rate := rates.BasicRate
	if higher {
		rate = rates.HigherRate
	}
	liability := money(taxable.Mul(rate))

	return CGTResult{
		DisposalPrice:      disposalPrice,
		AcquisitionCost:    acquisition,
		DisposalCosts:      disposalCosts,
		OwnershipShare:     share,
		Gain:               money(gain),
		AnnualExemptAmount: exempt,
		TaxableGain:        money(taxable),
		Rate:               rate,
		IsHigherRate:       higher,
		CGTLiability:       liability,
		NetProceeds:        money(disposalPrice.Sub(disposalCosts).Mul(share).Sub(liability)),
	}
}

// CalculateRentalIncomeTax computes the annual tax on the owner's share of
// rental profit. Mortgage interest is not deducted from profit; it earns a
// basic rate tax credit instead.
func (ptc *PropertyTaxCalculator) CalculateRentalIncomeTax(property domain.Property, income domain.IncomeProfile) RentalTaxResult {
	share := property.Share()
	gross := property.MonthlyRentalIncome.Mul(twelve).Mul(property.Occupancy()).Mul(share)
	expenses := property.Costs.Total().Mul(twelve).Mul(share)
	profit := NonNegative(gross.Sub(expenses))

	rate, band := ptc.incomeTax.MarginalRate(income.Total())
	taxBeforeCredit := profit.Mul(rate)

	interest := decimal.Zero
	for _, m := range property.Mortgages {
		interest = interest.Add(m.AnnualInterest())
	}
	interest = interest.Mul(share)
	credit := interest.Mul(ptc.incomeTax.BasicRate())

	liability := NonNegative(taxBeforeCredit.Sub(credit))

	return RentalTaxResult{
		GrossRentalIncome:      money(gross),
		AllowableExpenses:      money(expenses),
		TaxableProfit:          money(profit),
		MarginalRate:           rate,
		Band:                   band,
		TaxBeforeCredit:        money(taxBeforeCredit),
		MortgageInterest:       money(interest),
		MortgageInterestCredit: money(credit),
		TaxLiability:           money(liability),
		NetRentalIncome:        money(gross.Sub(expenses).Sub(interest).Sub(liability)),
	}
}

// CalculatePropertyEquity returns the owner's share of value net of mortgages
func (ptc *PropertyTaxCalculator) CalculatePropertyEquity(property domain.Property) PropertyEquity {
	share := property.Share()
	debt := decimal.Zero
	for _, m := range property.Mortgages {
		debt = debt.Add(m.OutstandingBalance)
	}
	return PropertyEquity{
		Value:               money(property.CurrentValue.Mul(share)),
		OutstandingMortgage: money(debt.Mul(share)),
		Equity:              money(property.CurrentValue.Sub(debt).Mul(share)),
		LoanToValue:         SafeDiv(debt, property.CurrentValue).Round(4),
	}
}
