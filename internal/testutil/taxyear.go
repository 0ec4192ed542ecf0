// Package testutil provides tax-year fixtures for calculator tests.
package testutil

import (
	"time"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TaxYear2025 returns the 2025/26 parameters used throughout the tests. It
// matches configs/tax-years.yaml.
func TaxYear2025() *domain.TaxYearConfig {
	return &domain.TaxYearConfig{
		TaxYear:       "2025/26",
		IsActive:      true,
		EffectiveFrom: time.Date(2025, 4, 6, 0, 0, 0, 0, time.UTC),
		EffectiveTo:   time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		IncomeTax: domain.IncomeTaxConfig{
			PersonalAllowance: d("12570"),
			PersonalAllowanceTaper: domain.AllowanceTaperConfig{
				IncomeLimit:   d("100000"),
				ReductionRate: d("0.5"),
			},
			Bands: []domain.IncomeTaxBand{
				{Name: "basic", ThresholdMax: d("37700"), Rate: d("0.20")},
				{Name: "higher", ThresholdMax: d("125140"), Rate: d("0.40")},
				{Name: "additional", ThresholdMax: decimal.Zero, Rate: d("0.45")},
			},
		},
		NationalInsurance: domain.NationalInsuranceConfig{
			Class1: domain.Class1Config{
				PrimaryThreshold:   d("12570"),
				UpperEarningsLimit: d("50270"),
				MainRate:           d("0.08"),
				AdditionalRate:     d("0.02"),
			},
			Class4: domain.Class4Config{
				LowerProfitsLimit: d("12570"),
				UpperProfitsLimit: d("50270"),
				MainRate:          d("0.06"),
				AdditionalRate:    d("0.02"),
			},
		},
		ISA: domain.ISAConfig{
			AnnualAllowance: d("20000"),
			LifetimeISA:     domain.LifetimeISAConfig{AnnualAllowance: d("4000"), BonusRate: d("0.25"), MaxOpeningAge: 39},
			JuniorISA:       domain.JuniorISAConfig{AnnualAllowance: d("9000")},
		},
		Pension: domain.PensionConfig{
			AnnualAllowance: d("60000"),
			MPAA:            d("10000"),
			TaperedAnnualAllowance: domain.TaperedAnnualAllowanceConfig{
				ThresholdIncome:         d("200000"),
				AdjustedIncomeThreshold: d("260000"),
				MinimumAllowance:        d("10000"),
				ReductionRate:           d("0.5"),
			},
			CarryForwardYears: 3,
			LumpSumAllowance:  d("268275"),
		},
		StatePension: domain.StatePensionConfig{
			FullAnnualAmount: d("11973"),
			QualifyingYears:  35,
			StatePensionAge:  67,
		},
		InheritanceTax: domain.InheritanceTaxConfig{
			NilRateBand:          d("325000"),
			ResidenceNilRateBand: d("175000"),
			TaperThreshold:       d("2000000"),
			StandardRate:         d("0.40"),
			ReducedRate:          d("0.36"),
		},
		CapitalGainsTax: domain.CapitalGainsTaxConfig{
			AnnualExemptAmount: d("3000"),
			Rates: domain.CGTRates{
				Residential: domain.CGTRatePair{BasicRate: d("0.18"), HigherRate: d("0.24")},
				Other:       domain.CGTRatePair{BasicRate: d("0.18"), HigherRate: d("0.24")},
			},
		},
		DividendTax: domain.DividendTaxConfig{
			Allowance:      d("500"),
			BasicRate:      d("0.0875"),
			HigherRate:     d("0.3375"),
			AdditionalRate: d("0.3935"),
		},
		StampDuty: domain.StampDutyConfig{
			Residential: domain.ResidentialSDLTConfig{
				Standard: domain.SDLTBandSet{Bands: []domain.SDLTBand{
					{Threshold: d("0"), Rate: d("0")},
					{Threshold: d("125000"), Rate: d("0.02")},
					{Threshold: d("250000"), Rate: d("0.05")},
					{Threshold: d("925000"), Rate: d("0.10")},
					{Threshold: d("1500000"), Rate: d("0.12")},
				}},
				AdditionalProperties: domain.SDLTBandSet{Bands: []domain.SDLTBand{
					{Threshold: d("0"), Rate: d("0.05")},
					{Threshold: d("125000"), Rate: d("0.07")},
					{Threshold: d("250000"), Rate: d("0.10")},
					{Threshold: d("925000"), Rate: d("0.15")},
					{Threshold: d("1500000"), Rate: d("0.17")},
				}},
				FirstTimeBuyers: domain.FirstTimeBuyerSDLTConfig{
					MaxPropertyValue: d("500000"),
					NilRateThreshold: d("300000"),
					Bands: []domain.SDLTBand{
						{Threshold: d("0"), Rate: d("0")},
						{Threshold: d("300000"), Rate: d("0.05")},
					},
				},
			},
		},
		GiftingExemptions: domain.GiftingExemptionsConfig{
			AnnualExemption:  d("3000"),
			SmallGiftLimit:   d("250"),
			WeddingGiftChild: d("5000"),
		},
		PlanningAssumptions: domain.PlanningAssumptions{
			SafeWithdrawalRate:     d("0.04"),
			DefaultGrowthRate:      d("0.05"),
			InflationRate:          d("0.025"),
			EmployerMatchThreshold: d("0.05"),
			PCLSFraction:           d("0.25"),
			WithdrawalTestRates:    []decimal.Decimal{d("0.03"), d("0.04"), d("0.05")},
			AnnuityRates: []domain.AnnuityRateBand{
				{MinAge: 0, MaxAge: 59, Rate: d("0.050")},
				{MinAge: 60, MaxAge: 64, Rate: d("0.058")},
				{MinAge: 65, MaxAge: 69, Rate: d("0.066")},
				{MinAge: 70, MaxAge: 74, Rate: d("0.075")},
				{MinAge: 75, MaxAge: 0, Rate: d("0.085")},
			},
			SpouseAnnuityReduction:          d("0.15"),
			PhasingLateLifeAge:              75,
			HumanCapitalMultiplier:          d("10"),
			HumanCapitalMaxYears:            10,
			EducationCostPerYear:            d("9000"),
			EducationEndAge:                 21,
			FinalExpenses:                   d("7500"),
			CriticalIllnessIncomeYears:      2,
			IncomeProtectionReplacementRate: d("0.6"),
			PremiumAffordability: domain.PremiumAffordability{
				Affordable: d("0.05"),
				Manageable: d("0.10"),
			},
		},
	}
}
