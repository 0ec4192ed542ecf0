package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxConfigurationSet is the on-disk representation of every known tax year.
// Exactly one entry is expected to be active.
type TaxConfigurationSet struct {
	TaxYears []TaxYearConfig `yaml:"tax_years" json:"tax_years"`
}

// TaxYearConfig contains all statutory parameters for a single UK tax year.
// Calculators receive one snapshot per call and never mix years.
type TaxYearConfig struct {
	TaxYear       string    `yaml:"tax_year" json:"tax_year"`
	IsActive      bool      `yaml:"is_active" json:"is_active"`
	EffectiveFrom time.Time `yaml:"effective_from" json:"effective_from"`
	EffectiveTo   time.Time `yaml:"effective_to" json:"effective_to"`

	IncomeTax           IncomeTaxConfig         `yaml:"income_tax" json:"income_tax"`
	NationalInsurance   NationalInsuranceConfig `yaml:"national_insurance" json:"national_insurance"`
	ISA                 ISAConfig               `yaml:"isa" json:"isa"`
	Pension             PensionConfig           `yaml:"pension" json:"pension"`
	StatePension        StatePensionConfig      `yaml:"state_pension" json:"state_pension"`
	InheritanceTax      InheritanceTaxConfig    `yaml:"inheritance_tax" json:"inheritance_tax"`
	CapitalGainsTax     CapitalGainsTaxConfig   `yaml:"capital_gains_tax" json:"capital_gains_tax"`
	DividendTax         DividendTaxConfig       `yaml:"dividend_tax" json:"dividend_tax"`
	StampDuty           StampDutyConfig         `yaml:"stamp_duty" json:"stamp_duty"`
	GiftingExemptions   GiftingExemptionsConfig `yaml:"gifting_exemptions" json:"gifting_exemptions"`
	PropertyOwnership   PropertyOwnershipConfig `yaml:"property_ownership" json:"property_ownership"`
	PlanningAssumptions PlanningAssumptions     `yaml:"planning_assumptions" json:"planning_assumptions"`
}

// IncomeTaxConfig holds the personal allowance and the ordered bands above it.
// Band ThresholdMax values are measured in taxable income (after the personal
// allowance). A zero ThresholdMax marks the open-ended top band.
type IncomeTaxConfig struct {
	PersonalAllowance      decimal.Decimal      `yaml:"personal_allowance" json:"personal_allowance"`
	PersonalAllowanceTaper AllowanceTaperConfig `yaml:"personal_allowance_taper" json:"personal_allowance_taper"`
	Bands                  []IncomeTaxBand      `yaml:"bands" json:"bands"`
}

// AllowanceTaperConfig reduces the personal allowance by ReductionRate for
// every pound of income above IncomeLimit. A zero IncomeLimit disables it.
type AllowanceTaperConfig struct {
	IncomeLimit   decimal.Decimal `yaml:"income_limit" json:"income_limit"`
	ReductionRate decimal.Decimal `yaml:"reduction_rate" json:"reduction_rate"`
}

// IncomeTaxBand is one progressive band.
type IncomeTaxBand struct {
	Name         string          `yaml:"name" json:"name"`
	ThresholdMax decimal.Decimal `yaml:"threshold_max" json:"threshold_max"`
	Rate         decimal.Decimal `yaml:"rate" json:"rate"`
}

// IsUnbounded reports whether the band has no upper limit.
func (b IncomeTaxBand) IsUnbounded() bool {
	return b.ThresholdMax.IsZero()
}

// NationalInsuranceConfig contains Class 1 (employee) and Class 4 (self-employed) rules.
type NationalInsuranceConfig struct {
	Class1 Class1Config `yaml:"class_1" json:"class_1"`
	Class4 Class4Config `yaml:"class_4" json:"class_4"`
}

// Class1Config holds annual employee thresholds.
type Class1Config struct {
	PrimaryThreshold   decimal.Decimal `yaml:"primary_threshold" json:"primary_threshold"`
	UpperEarningsLimit decimal.Decimal `yaml:"upper_earnings_limit" json:"upper_earnings_limit"`
	MainRate           decimal.Decimal `yaml:"main_rate" json:"main_rate"`
	AdditionalRate     decimal.Decimal `yaml:"additional_rate" json:"additional_rate"`
}

// Class4Config holds annual self-employed profit limits.
type Class4Config struct {
	LowerProfitsLimit decimal.Decimal `yaml:"lower_profits_limit" json:"lower_profits_limit"`
	UpperProfitsLimit decimal.Decimal `yaml:"upper_profits_limit" json:"upper_profits_limit"`
	MainRate          decimal.Decimal `yaml:"main_rate" json:"main_rate"`
	AdditionalRate    decimal.Decimal `yaml:"additional_rate" json:"additional_rate"`
}

// ISAConfig contains ISA subscription limits.
type ISAConfig struct {
	AnnualAllowance decimal.Decimal   `yaml:"annual_allowance" json:"annual_allowance"`
	LifetimeISA     LifetimeISAConfig `yaml:"lifetime_isa" json:"lifetime_isa"`
	JuniorISA       JuniorISAConfig   `yaml:"junior_isa" json:"junior_isa"`
}

type LifetimeISAConfig struct {
	AnnualAllowance decimal.Decimal `yaml:"annual_allowance" json:"annual_allowance"`
	BonusRate       decimal.Decimal `yaml:"bonus_rate" json:"bonus_rate"`
	MaxOpeningAge   int             `yaml:"max_opening_age" json:"max_opening_age"`
}

type JuniorISAConfig struct {
	AnnualAllowance decimal.Decimal `yaml:"annual_allowance" json:"annual_allowance"`
}

// PensionConfig contains annual allowance, taper and MPAA rules.
type PensionConfig struct {
	AnnualAllowance        decimal.Decimal              `yaml:"annual_allowance" json:"annual_allowance"`
	MPAA                   decimal.Decimal              `yaml:"mpaa" json:"mpaa"`
	TaperedAnnualAllowance TaperedAnnualAllowanceConfig `yaml:"tapered_annual_allowance" json:"tapered_annual_allowance"`
	CarryForwardYears      int                          `yaml:"carry_forward_years" json:"carry_forward_years"`
	LumpSumAllowance       decimal.Decimal              `yaml:"lump_sum_allowance" json:"lump_sum_allowance"`
}

// TaperedAnnualAllowanceConfig holds the high-earner taper.
type TaperedAnnualAllowanceConfig struct {
	ThresholdIncome         decimal.Decimal `yaml:"threshold_income" json:"threshold_income"`
	AdjustedIncomeThreshold decimal.Decimal `yaml:"adjusted_income_threshold" json:"adjusted_income_threshold"`
	MinimumAllowance        decimal.Decimal `yaml:"minimum_allowance" json:"minimum_allowance"`
	ReductionRate           decimal.Decimal `yaml:"reduction_rate" json:"reduction_rate"`
}

// StatePensionConfig holds the full new State Pension for the year.
type StatePensionConfig struct {
	FullAnnualAmount decimal.Decimal `yaml:"full_annual_amount" json:"full_annual_amount"`
	QualifyingYears  int             `yaml:"qualifying_years" json:"qualifying_years"`
	StatePensionAge  int             `yaml:"state_pension_age" json:"state_pension_age"`
}

// InheritanceTaxConfig holds IHT bands. Carried for completeness of the year.
type InheritanceTaxConfig struct {
	NilRateBand          decimal.Decimal `yaml:"nil_rate_band" json:"nil_rate_band"`
	ResidenceNilRateBand decimal.Decimal `yaml:"residence_nil_rate_band" json:"residence_nil_rate_band"`
	TaperThreshold       decimal.Decimal `yaml:"taper_threshold" json:"taper_threshold"`
	StandardRate         decimal.Decimal `yaml:"standard_rate" json:"standard_rate"`
	ReducedRate          decimal.Decimal `yaml:"reduced_rate" json:"reduced_rate"`
}

// CapitalGainsTaxConfig holds the annual exempt amount and rates.
type CapitalGainsTaxConfig struct {
	AnnualExemptAmount decimal.Decimal `yaml:"annual_exempt_amount" json:"annual_exempt_amount"`
	Rates              CGTRates        `yaml:"rates" json:"rates"`
}

type CGTRates struct {
	Residential CGTRatePair `yaml:"residential" json:"residential"`
	Other       CGTRatePair `yaml:"other" json:"other"`
}

type CGTRatePair struct {
	BasicRate  decimal.Decimal `yaml:"basic_rate" json:"basic_rate"`
	HigherRate decimal.Decimal `yaml:"higher_rate" json:"higher_rate"`
}

// DividendTaxConfig holds the dividend allowance and the three dividend rates.
type DividendTaxConfig struct {
	Allowance      decimal.Decimal `yaml:"allowance" json:"allowance"`
	BasicRate      decimal.Decimal `yaml:"basic_rate" json:"basic_rate"`
	HigherRate     decimal.Decimal `yaml:"higher_rate" json:"higher_rate"`
	AdditionalRate decimal.Decimal `yaml:"additional_rate" json:"additional_rate"`
}

// StampDutyConfig holds SDLT band sets.
type StampDutyConfig struct {
	Residential ResidentialSDLTConfig `yaml:"residential" json:"residential"`
}

type ResidentialSDLTConfig struct {
	Standard             SDLTBandSet              `yaml:"standard" json:"standard"`
	AdditionalProperties SDLTBandSet              `yaml:"additional_properties" json:"additional_properties"`
	FirstTimeBuyers      FirstTimeBuyerSDLTConfig `yaml:"first_time_buyers" json:"first_time_buyers"`
}

type SDLTBandSet struct {
	Bands []SDLTBand `yaml:"bands" json:"bands"`
}

type FirstTimeBuyerSDLTConfig struct {
	MaxPropertyValue decimal.Decimal `yaml:"max_property_value" json:"max_property_value"`
	NilRateThreshold decimal.Decimal `yaml:"nil_rate_threshold" json:"nil_rate_threshold"`
	Bands            []SDLTBand      `yaml:"bands" json:"bands"`
}

// SDLTBand starts at Threshold and runs to the next band's threshold.
type SDLTBand struct {
	Threshold decimal.Decimal `yaml:"threshold" json:"threshold"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
}

type GiftingExemptionsConfig struct {
	AnnualExemption  decimal.Decimal `yaml:"annual_exemption" json:"annual_exemption"`
	SmallGiftLimit   decimal.Decimal `yaml:"small_gift_limit" json:"small_gift_limit"`
	WeddingGiftChild decimal.Decimal `yaml:"wedding_gift_child" json:"wedding_gift_child"`
}

type PropertyOwnershipConfig struct {
	JointOwnershipTypes []string              `yaml:"joint_ownership_types" json:"joint_ownership_types"`
	LeaseholdReform     LeaseholdReformConfig `yaml:"leasehold_reform" json:"leasehold_reform"`
}

type LeaseholdReformConfig struct {
	MarriageValueThresholdYears int             `yaml:"marriage_value_threshold_years" json:"marriage_value_threshold_years"`
	GroundRentCap               decimal.Decimal `yaml:"ground_rent_cap" json:"ground_rent_cap"`
}

// PlanningAssumptions are non-statutory modelling inputs that still need to
// version with the tax year (withdrawal rates, education costs, ...).
type PlanningAssumptions struct {
	SafeWithdrawalRate              decimal.Decimal      `yaml:"safe_withdrawal_rate" json:"safe_withdrawal_rate"`
	DefaultGrowthRate               decimal.Decimal      `yaml:"default_growth_rate" json:"default_growth_rate"`
	InflationRate                   decimal.Decimal      `yaml:"inflation_rate" json:"inflation_rate"`
	EmployerMatchThreshold          decimal.Decimal      `yaml:"employer_match_threshold" json:"employer_match_threshold"`
	PCLSFraction                    decimal.Decimal      `yaml:"pcls_fraction" json:"pcls_fraction"`
	WithdrawalTestRates             []decimal.Decimal    `yaml:"withdrawal_test_rates" json:"withdrawal_test_rates"`
	AnnuityRates                    []AnnuityRateBand    `yaml:"annuity_rates" json:"annuity_rates"`
	SpouseAnnuityReduction          decimal.Decimal      `yaml:"spouse_annuity_reduction" json:"spouse_annuity_reduction"`
	PhasingLateLifeAge              int                  `yaml:"phasing_late_life_age" json:"phasing_late_life_age"`
	HumanCapitalMultiplier          decimal.Decimal      `yaml:"human_capital_multiplier" json:"human_capital_multiplier"`
	HumanCapitalMaxYears            int                  `yaml:"human_capital_max_years" json:"human_capital_max_years"`
	EducationCostPerYear            decimal.Decimal      `yaml:"education_cost_per_year" json:"education_cost_per_year"`
	EducationEndAge                 int                  `yaml:"education_end_age" json:"education_end_age"`
	FinalExpenses                   decimal.Decimal      `yaml:"final_expenses" json:"final_expenses"`
	CriticalIllnessIncomeYears      int                  `yaml:"critical_illness_income_years" json:"critical_illness_income_years"`
	IncomeProtectionReplacementRate decimal.Decimal      `yaml:"income_protection_replacement_rate" json:"income_protection_replacement_rate"`
	PremiumAffordability            PremiumAffordability `yaml:"premium_affordability" json:"premium_affordability"`
}

// AnnuityRateBand gives an indicative single-life level annuity rate for
// purchase ages in [MinAge, MaxAge]. A zero MaxAge is open-ended.
type AnnuityRateBand struct {
	MinAge int             `yaml:"min_age" json:"min_age"`
	MaxAge int             `yaml:"max_age" json:"max_age"`
	Rate   decimal.Decimal `yaml:"rate" json:"rate"`
}

// PremiumAffordability expresses premium-to-income ratios.
type PremiumAffordability struct {
	Affordable decimal.Decimal `yaml:"affordable" json:"affordable"`
	Manageable decimal.Decimal `yaml:"manageable" json:"manageable"`
}

// BasicRateBand returns the first income tax band, used wherever a
// "basic rate" is needed (relief at source, mortgage interest credit).
func (c IncomeTaxConfig) BasicRateBand() IncomeTaxBand {
	if len(c.Bands) == 0 {
		return IncomeTaxBand{}
	}
	return c.Bands[0]
}

// AbsoluteBandThreshold returns personalAllowance + the upper edge of band i
// in gross-income terms. The flag is false for an unbounded or missing band.
func (c IncomeTaxConfig) AbsoluteBandThreshold(i int, personalAllowance decimal.Decimal) (decimal.Decimal, bool) {
	if i < 0 || i >= len(c.Bands) || c.Bands[i].IsUnbounded() {
		return decimal.Zero, false
	}
	return personalAllowance.Add(c.Bands[i].ThresholdMax), true
}
