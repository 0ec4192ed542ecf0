package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeProfile holds annual gross income by source.
type IncomeProfile struct {
	Employment     decimal.Decimal `yaml:"employment" json:"employment"`
	SelfEmployment decimal.Decimal `yaml:"self_employment" json:"self_employment"`
	Rental         decimal.Decimal `yaml:"rental" json:"rental"`
	Dividend       decimal.Decimal `yaml:"dividend" json:"dividend"`
	Other          decimal.Decimal `yaml:"other" json:"other"`
}

// Total returns the sum of all five income streams.
func (ip IncomeProfile) Total() decimal.Decimal {
	return decimal.Sum(ip.Employment, ip.SelfEmployment, ip.Rental, ip.Dividend, ip.Other)
}

// NonDividend returns every stream taxed on the ordinary income bands.
func (ip IncomeProfile) NonDividend() decimal.Decimal {
	return decimal.Sum(ip.Employment, ip.SelfEmployment, ip.Rental, ip.Other)
}

// PropertyType drives the SDLT band set.
type PropertyType string

const (
	MainResidence      PropertyType = "main_residence"
	SecondaryResidence PropertyType = "secondary_residence"
	BuyToLet           PropertyType = "buy_to_let"
)

// IsAdditional reports whether the surcharge band set applies.
func (pt PropertyType) IsAdditional() bool {
	return pt == SecondaryResidence || pt == BuyToLet
}

// Property is a residential property with its monthly running costs.
// OwnershipShare and OccupancyRate are fractions (0-1).
type Property struct {
	Name           string          `yaml:"name" json:"name"`
	Type           PropertyType    `yaml:"type" json:"type"`
	CurrentValue   decimal.Decimal `yaml:"current_value" json:"current_value"`
	PurchasePrice  decimal.Decimal `yaml:"purchase_price" json:"purchase_price"`
	PurchaseDate   time.Time       `yaml:"purchase_date" json:"purchase_date"`
	SDLTPaid       decimal.Decimal `yaml:"sdlt_paid" json:"sdlt_paid"`
	OwnershipShare decimal.Decimal `yaml:"ownership_share" json:"ownership_share"`
	OccupancyRate  decimal.Decimal `yaml:"occupancy_rate" json:"occupancy_rate"`

	MonthlyRentalIncome decimal.Decimal `yaml:"monthly_rental_income" json:"monthly_rental_income"`
	Costs               MonthlyCosts    `yaml:"monthly_costs" json:"monthly_costs"`
	Mortgages           []Mortgage      `yaml:"mortgages" json:"mortgages"`
}

// Share returns the ownership share, treating an unset share as sole ownership.
func (p Property) Share() decimal.Decimal {
	if p.OwnershipShare.IsZero() {
		return decimal.NewFromInt(1)
	}
	return p.OwnershipShare
}

// Occupancy returns the occupancy rate, treating an unset rate as fully let.
func (p Property) Occupancy() decimal.Decimal {
	if p.OccupancyRate.IsZero() {
		return decimal.NewFromInt(1)
	}
	return p.OccupancyRate
}

// MonthlyCosts are the recurring running costs of a property.
type MonthlyCosts struct {
	CouncilTax         decimal.Decimal `yaml:"council_tax" json:"council_tax"`
	Gas                decimal.Decimal `yaml:"gas" json:"gas"`
	Electricity        decimal.Decimal `yaml:"electricity" json:"electricity"`
	Water              decimal.Decimal `yaml:"water" json:"water"`
	BuildingInsurance  decimal.Decimal `yaml:"building_insurance" json:"building_insurance"`
	ContentsInsurance  decimal.Decimal `yaml:"contents_insurance" json:"contents_insurance"`
	ServiceCharge      decimal.Decimal `yaml:"service_charge" json:"service_charge"`
	MaintenanceReserve decimal.Decimal `yaml:"maintenance_reserve" json:"maintenance_reserve"`
	Other              decimal.Decimal `yaml:"other" json:"other"`
}

// Total returns the sum of all monthly costs.
func (mc MonthlyCosts) Total() decimal.Decimal {
	return decimal.Sum(mc.CouncilTax, mc.Gas, mc.Electricity, mc.Water,
		mc.BuildingInsurance, mc.ContentsInsurance, mc.ServiceCharge,
		mc.MaintenanceReserve, mc.Other)
}

// MortgageType selects how principal is repaid.
type MortgageType string

const (
	Repayment    MortgageType = "repayment"
	InterestOnly MortgageType = "interest_only"
)

// Mortgage is a loan secured on a property. InterestRate is an annual fraction.
type Mortgage struct {
	Lender              string          `yaml:"lender" json:"lender"`
	OriginalLoanAmount  decimal.Decimal `yaml:"original_loan_amount" json:"original_loan_amount"`
	OutstandingBalance  decimal.Decimal `yaml:"outstanding_balance" json:"outstanding_balance"`
	InterestRate        decimal.Decimal `yaml:"interest_rate" json:"interest_rate"`
	MonthlyPayment      decimal.Decimal `yaml:"monthly_payment" json:"monthly_payment"`
	Type                MortgageType    `yaml:"type" json:"type"`
	StartDate           time.Time       `yaml:"start_date" json:"start_date"`
	MaturityDate        time.Time       `yaml:"maturity_date" json:"maturity_date"`
	RemainingTermMonths int             `yaml:"remaining_term_months" json:"remaining_term_months"`
}

// AnnualInterest approximates a year of interest on the outstanding balance.
func (m Mortgage) AnnualInterest() decimal.Decimal {
	return m.OutstandingBalance.Mul(m.InterestRate)
}

// DCPension is a defined-contribution pot. PlatformFeeRate is an annual fraction.
type DCPension struct {
	Provider                  string          `yaml:"provider" json:"provider"`
	CurrentFundValue          decimal.Decimal `yaml:"current_fund_value" json:"current_fund_value"`
	MonthlyContributionAmount decimal.Decimal `yaml:"monthly_contribution_amount" json:"monthly_contribution_amount"`
	EmployeeContributionRate  decimal.Decimal `yaml:"employee_contribution_rate" json:"employee_contribution_rate"`
	EmployerContributionRate  decimal.Decimal `yaml:"employer_contribution_rate" json:"employer_contribution_rate"`
	PlatformFeeRate           decimal.Decimal `yaml:"platform_fee_rate" json:"platform_fee_rate"`
	RetirementAge             int             `yaml:"retirement_age" json:"retirement_age"`
}

// AnnualContribution returns twelve monthly contributions.
func (p DCPension) AnnualContribution() decimal.Decimal {
	return p.MonthlyContributionAmount.Mul(decimal.NewFromInt(12))
}

// DBPension is a defined-benefit scheme; only the already-accrued pension is modelled.
type DBPension struct {
	Scheme               string          `yaml:"scheme" json:"scheme"`
	AccruedAnnualPension decimal.Decimal `yaml:"accrued_annual_pension" json:"accrued_annual_pension"`
	NormalPensionAge     int             `yaml:"normal_pension_age" json:"normal_pension_age"`
}

// StatePension records National Insurance qualifying years.
type StatePension struct {
	NIYearsCompleted int              `yaml:"ni_years_completed" json:"ni_years_completed"`
	NIYearsRequired  int              `yaml:"ni_years_required" json:"ni_years_required"`
	ForecastAnnual   *decimal.Decimal `yaml:"forecast_annual,omitempty" json:"forecast_annual,omitempty"`
}

// PensionAccessKind enumerates flexible-access events that trigger the MPAA.
type PensionAccessKind string

const (
	FlexiAccessDrawdownIncome PensionAccessKind = "flexi_access_drawdown_income"
	UncrystallisedLumpSum     PensionAccessKind = "ufpls"
	FlexibleAnnuity           PensionAccessKind = "flexible_annuity"
	TaxFreeCashOnly           PensionAccessKind = "tax_free_cash_only"
)

// TriggersMPAA reports whether the access kind flexibly accesses a pension.
func (k PensionAccessKind) TriggersMPAA() bool {
	switch k {
	case FlexiAccessDrawdownIncome, UncrystallisedLumpSum, FlexibleAnnuity:
		return true
	default:
		return false
	}
}

// PensionAccessEvent is one recorded pension access.
type PensionAccessEvent struct {
	Date time.Time         `yaml:"date" json:"date"`
	Kind PensionAccessKind `yaml:"kind" json:"kind"`
}

// Pensions groups every pension a person holds.
type Pensions struct {
	DC           []DCPension          `yaml:"dc" json:"dc"`
	DB           []DBPension          `yaml:"db" json:"db"`
	State        *StatePension        `yaml:"state,omitempty" json:"state,omitempty"`
	AccessEvents []PensionAccessEvent `yaml:"access_events,omitempty" json:"access_events,omitempty"`
}

// TotalDCValue returns the combined current value of all DC pots.
func (p Pensions) TotalDCValue() decimal.Decimal {
	total := decimal.Zero
	for _, dc := range p.DC {
		total = total.Add(dc.CurrentFundValue)
	}
	return total
}

// AnnualContributionHistory is one year of pension input, used for carry-forward.
type AnnualContributionHistory struct {
	TaxYear       string          `yaml:"tax_year" json:"tax_year"`
	Allowance     decimal.Decimal `yaml:"allowance" json:"allowance"`
	Contributions decimal.Decimal `yaml:"contributions" json:"contributions"`
}

// RetirementProfile contains retirement targets.
type RetirementProfile struct {
	CurrentAge             int             `yaml:"current_age" json:"current_age"`
	TargetRetirementAge    int             `yaml:"target_retirement_age" json:"target_retirement_age"`
	TargetRetirementIncome decimal.Decimal `yaml:"target_retirement_income" json:"target_retirement_income"`
	CurrentAnnualSalary    decimal.Decimal `yaml:"current_annual_salary" json:"current_annual_salary"`
	IncludeSpouseBenefit   bool            `yaml:"include_spouse_benefit" json:"include_spouse_benefit"`
	LifeExpectancy         int             `yaml:"life_expectancy" json:"life_expectancy"`
}

// YearsToRetirement returns the years until the target age, never negative.
func (rp RetirementProfile) YearsToRetirement() int {
	if years := rp.TargetRetirementAge - rp.CurrentAge; years > 0 {
		return years
	}
	return 0
}

// ProtectionProfile contains the facts used for protection needs.
type ProtectionProfile struct {
	Age                int             `yaml:"age" json:"age"`
	AnnualIncome       decimal.Decimal `yaml:"annual_income" json:"annual_income"`
	MortgageBalance    decimal.Decimal `yaml:"mortgage_balance" json:"mortgage_balance"`
	OtherDebts         decimal.Decimal `yaml:"other_debts" json:"other_debts"`
	NumberOfDependents int             `yaml:"number_of_dependents" json:"number_of_dependents"`
	DependentsAges     []int           `yaml:"dependents_ages" json:"dependents_ages"`
	RetirementAge      int             `yaml:"retirement_age" json:"retirement_age"`
	MonthlyExpenditure decimal.Decimal `yaml:"monthly_expenditure" json:"monthly_expenditure"`
	Smoker             bool            `yaml:"smoker" json:"smoker"`
}

// PolicyType distinguishes the protection policy variants.
type PolicyType string

const (
	LifePolicy             PolicyType = "life"
	CriticalIllnessPolicy  PolicyType = "critical_illness"
	IncomeProtectionPolicy PolicyType = "income_protection"
	DisabilityPolicy       PolicyType = "disability"
	SicknessIllnessPolicy  PolicyType = "sickness_illness"
)

// IsIncomeReplacement reports whether the policy pays a regular benefit.
func (pt PolicyType) IsIncomeReplacement() bool {
	return pt == IncomeProtectionPolicy || pt == DisabilityPolicy || pt == SicknessIllnessPolicy
}

// BenefitFrequency describes how a benefit amount is paid.
type BenefitFrequency string

const (
	Monthly  BenefitFrequency = "monthly"
	Weekly   BenefitFrequency = "weekly"
	Annually BenefitFrequency = "annually"
	LumpSum  BenefitFrequency = "lump_sum"
)

// PolicyCoverage is an existing protection policy.
type PolicyCoverage struct {
	Provider         string           `yaml:"provider" json:"provider"`
	Type             PolicyType       `yaml:"type" json:"type"`
	SumAssured       decimal.Decimal  `yaml:"sum_assured" json:"sum_assured"`
	BenefitAmount    decimal.Decimal  `yaml:"benefit_amount" json:"benefit_amount"`
	BenefitFrequency BenefitFrequency `yaml:"benefit_frequency" json:"benefit_frequency"`
	MonthlyPremium   decimal.Decimal  `yaml:"monthly_premium" json:"monthly_premium"`
	TermYears        int              `yaml:"term_years" json:"term_years"`
}

// AssetClass describes one investable asset class. Returns and volatility are
// annual fractions.
type AssetClass struct {
	Name           string             `yaml:"name" json:"name"`
	Category       string             `yaml:"category,omitempty" json:"category,omitempty"`
	ExpectedReturn float64            `yaml:"expected_return" json:"expected_return"`
	Volatility     float64            `yaml:"volatility" json:"volatility"`
	Correlations   map[string]float64 `yaml:"correlations,omitempty" json:"correlations,omitempty"`
}

// PortfolioAllocation maps asset-class name to weight.
type PortfolioAllocation map[string]float64

// Sum returns the total weight.
func (pa PortfolioAllocation) Sum() float64 {
	var s float64
	for _, w := range pa {
		s += w
	}
	return s
}

// Normalized returns a copy whose weights sum to 1. A zero-weight allocation is
// returned unchanged.
func (pa PortfolioAllocation) Normalized() PortfolioAllocation {
	sum := pa.Sum()
	out := make(PortfolioAllocation, len(pa))
	for k, w := range pa {
		if sum > 0 {
			out[k] = w / sum
		} else {
			out[k] = w
		}
	}
	return out
}

// Portfolio groups the allocation with the asset-class assumptions.
type Portfolio struct {
	RiskFreeRate float64             `yaml:"risk_free_rate" json:"risk_free_rate"`
	AssetClasses []AssetClass        `yaml:"asset_classes" json:"asset_classes"`
	Allocation   PortfolioAllocation `yaml:"allocation" json:"allocation"`
}

// Household bundles every record the calculators need for one user.
type Household struct {
	Name                string                      `yaml:"name" json:"name"`
	Income              IncomeProfile               `yaml:"income" json:"income"`
	Properties          []Property                  `yaml:"properties" json:"properties"`
	Pensions            Pensions                    `yaml:"pensions" json:"pensions"`
	ContributionHistory []AnnualContributionHistory `yaml:"contribution_history" json:"contribution_history"`
	Retirement          RetirementProfile           `yaml:"retirement" json:"retirement"`
	Protection          ProtectionProfile           `yaml:"protection" json:"protection"`
	Policies            []PolicyCoverage            `yaml:"policies" json:"policies"`
	Portfolio           *Portfolio                  `yaml:"portfolio,omitempty" json:"portfolio,omitempty"`
}
