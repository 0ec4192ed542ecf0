package config

import (
	"fmt"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// ValidateTaxYear checks a tax year once at load time so calculators can rely
// on typed, well-formed fields.
func ValidateTaxYear(cfg *domain.TaxYearConfig) error {
	if cfg.TaxYear == "" {
		return &domain.ValidationError{Field: "tax_year", Reason: "is required"}
	}
	if !cfg.EffectiveFrom.IsZero() && !cfg.EffectiveTo.IsZero() && cfg.EffectiveTo.Before(cfg.EffectiveFrom) {
		return &domain.ValidationError{Field: "effective_to", Reason: "cannot be before effective_from"}
	}
	if err := validateIncomeTax(&cfg.IncomeTax); err != nil {
		return fmt.Errorf("income_tax: %w", err)
	}
	if err := validateNationalInsurance(&cfg.NationalInsurance); err != nil {
		return fmt.Errorf("national_insurance: %w", err)
	}
	if err := validatePension(&cfg.Pension); err != nil {
		return fmt.Errorf("pension: %w", err)
	}
	if cfg.StatePension.FullAnnualAmount.LessThanOrEqual(decimal.Zero) {
		return &domain.ValidationError{Field: "state_pension.full_annual_amount", Reason: "must be positive"}
	}
	if err := validateRatePair("capital_gains_tax.rates.residential", cfg.CapitalGainsTax.Rates.Residential); err != nil {
		return err
	}
	if err := validateDividendTax(&cfg.DividendTax); err != nil {
		return fmt.Errorf("dividend_tax: %w", err)
	}
	if err := validateStampDuty(&cfg.StampDuty); err != nil {
		return fmt.Errorf("stamp_duty: %w", err)
	}
	if err := validatePlanningAssumptions(&cfg.PlanningAssumptions); err != nil {
		return fmt.Errorf("planning_assumptions: %w", err)
	}
	return nil
}

func validateIncomeTax(it *domain.IncomeTaxConfig) error {
	if it.PersonalAllowance.IsNegative() {
		return &domain.ValidationError{Field: "personal_allowance", Reason: "cannot be negative"}
	}
	if len(it.Bands) == 0 {
		return &domain.ValidationError{Field: "bands", Reason: "at least one band is required"}
	}
	previous := decimal.Zero
	for i, band := range it.Bands {
		if err := validateRate(fmt.Sprintf("bands[%d].rate", i), band.Rate); err != nil {
			return err
		}
		if band.IsUnbounded() {
			if i != len(it.Bands)-1 {
				return &domain.ValidationError{Field: fmt.Sprintf("bands[%d].threshold_max", i), Reason: "only the last band may be unbounded"}
			}
			continue
		}
		if band.ThresholdMax.LessThanOrEqual(previous) {
			return &domain.ValidationError{Field: fmt.Sprintf("bands[%d].threshold_max", i), Reason: "bands must be in ascending order"}
		}
		previous = band.ThresholdMax
	}
	if !it.PersonalAllowanceTaper.IncomeLimit.IsZero() {
		if err := validateRate("personal_allowance_taper.reduction_rate", it.PersonalAllowanceTaper.ReductionRate); err != nil {
			return err
		}
	}
	return nil
}

func validateNationalInsurance(ni *domain.NationalInsuranceConfig) error {
	if ni.Class1.UpperEarningsLimit.LessThan(ni.Class1.PrimaryThreshold) {
		return &domain.ValidationError{Field: "class_1.upper_earnings_limit", Reason: "cannot be below primary_threshold"}
	}
	if ni.Class4.UpperProfitsLimit.LessThan(ni.Class4.LowerProfitsLimit) {
		return &domain.ValidationError{Field: "class_4.upper_profits_limit", Reason: "cannot be below lower_profits_limit"}
	}
	for field, rate := range map[string]decimal.Decimal{
		"class_1.main_rate":       ni.Class1.MainRate,
		"class_1.additional_rate": ni.Class1.AdditionalRate,
		"class_4.main_rate":       ni.Class4.MainRate,
		"class_4.additional_rate": ni.Class4.AdditionalRate,
	} {
		if err := validateRate(field, rate); err != nil {
			return err
		}
	}
	return nil
}

func validatePension(p *domain.PensionConfig) error {
	if p.AnnualAllowance.LessThanOrEqual(decimal.Zero) {
		return &domain.ValidationError{Field: "annual_allowance", Reason: "must be positive"}
	}
	taper := p.TaperedAnnualAllowance
	if taper.MinimumAllowance.GreaterThan(p.AnnualAllowance) {
		return &domain.ValidationError{Field: "tapered_annual_allowance.minimum_allowance", Reason: "cannot exceed annual_allowance"}
	}
	if taper.ReductionRate.LessThanOrEqual(decimal.Zero) || taper.ReductionRate.GreaterThan(one) {
		return &domain.ValidationError{Field: "tapered_annual_allowance.reduction_rate", Reason: "must be between 0 and 1"}
	}
	if p.CarryForwardYears < 0 {
		return &domain.ValidationError{Field: "carry_forward_years", Reason: "cannot be negative"}
	}
	return nil
}

func validateDividendTax(dt *domain.DividendTaxConfig) error {
	if dt.Allowance.IsNegative() {
		return &domain.ValidationError{Field: "allowance", Reason: "cannot be negative"}
	}
	for field, rate := range map[string]decimal.Decimal{
		"basic_rate":      dt.BasicRate,
		"higher_rate":     dt.HigherRate,
		"additional_rate": dt.AdditionalRate,
	} {
		if err := validateRate(field, rate); err != nil {
			return err
		}
	}
	return nil
}

func validateStampDuty(sd *domain.StampDutyConfig) error {
	res := sd.Residential
	if err := validateSDLTBands("residential.standard.bands", res.Standard.Bands); err != nil {
		return err
	}
	if err := validateSDLTBands("residential.additional_properties.bands", res.AdditionalProperties.Bands); err != nil {
		return err
	}
	if len(res.FirstTimeBuyers.Bands) > 0 {
		if err := validateSDLTBands("residential.first_time_buyers.bands", res.FirstTimeBuyers.Bands); err != nil {
			return err
		}
		if res.FirstTimeBuyers.MaxPropertyValue.LessThanOrEqual(decimal.Zero) {
			return &domain.ValidationError{Field: "residential.first_time_buyers.max_property_value", Reason: "must be positive"}
		}
	}
	return nil
}

func validateSDLTBands(field string, bands []domain.SDLTBand) error {
	if len(bands) == 0 {
		return &domain.ValidationError{Field: field, Reason: "at least one band is required"}
	}
	if !bands[0].Threshold.IsZero() {
		return &domain.ValidationError{Field: field + "[0].threshold", Reason: "first band must start at 0"}
	}
	for i, band := range bands {
		if err := validateRate(fmt.Sprintf("%s[%d].rate", field, i), band.Rate); err != nil {
			return err
		}
		if i > 0 && band.Threshold.LessThanOrEqual(bands[i-1].Threshold) {
			return &domain.ValidationError{Field: fmt.Sprintf("%s[%d].threshold", field, i), Reason: "bands must be in ascending order"}
		}
	}
	return nil
}

func validatePlanningAssumptions(pa *domain.PlanningAssumptions) error {
	if pa.SafeWithdrawalRate.LessThanOrEqual(decimal.Zero) || pa.SafeWithdrawalRate.GreaterThan(one) {
		return &domain.ValidationError{Field: "safe_withdrawal_rate", Reason: "must be between 0 and 1"}
	}
	if err := validateRate("pcls_fraction", pa.PCLSFraction); err != nil {
		return err
	}
	if err := validateRate("employer_match_threshold", pa.EmployerMatchThreshold); err != nil {
		return err
	}
	if err := validateRate("spouse_annuity_reduction", pa.SpouseAnnuityReduction); err != nil {
		return err
	}
	if pa.DefaultGrowthRate.LessThan(decimal.NewFromInt(-1)) {
		return &domain.ValidationError{Field: "default_growth_rate", Reason: "cannot be less than -100%"}
	}
	for i, band := range pa.AnnuityRates {
		if band.MaxAge != 0 && band.MaxAge < band.MinAge {
			return &domain.ValidationError{Field: fmt.Sprintf("annuity_rates[%d]", i), Reason: "max_age cannot be below min_age"}
		}
		if err := validateRate(fmt.Sprintf("annuity_rates[%d].rate", i), band.Rate); err != nil {
			return err
		}
	}
	if pa.HumanCapitalMaxYears < 0 || pa.EducationEndAge < 0 || pa.CriticalIllnessIncomeYears < 0 {
		return &domain.ValidationError{Field: "planning_assumptions", Reason: "year counts cannot be negative"}
	}
	if pa.FinalExpenses.IsNegative() || pa.EducationCostPerYear.IsNegative() {
		return &domain.ValidationError{Field: "planning_assumptions", Reason: "costs cannot be negative"}
	}
	return nil
}

func validateRatePair(field string, pair domain.CGTRatePair) error {
	if err := validateRate(field+".basic_rate", pair.BasicRate); err != nil {
		return err
	}
	return validateRate(field+".higher_rate", pair.HigherRate)
}

func validateRate(field string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(one) {
		return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("rate %s must be between 0 and 1", rate.String())}
	}
	return nil
}
