package config

import (
	"fmt"
	"math"
	"os"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of household input files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a household from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Household, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a household document
func (ip *InputParser) Parse(data []byte) (*domain.Household, error) {
	var household domain.Household
	if err := yaml.Unmarshal(data, &household); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateHousehold(&household); err != nil {
		return nil, fmt.Errorf("household validation failed: %w", err)
	}

	return &household, nil
}

// ValidateHousehold validates the loaded household
func (ip *InputParser) ValidateHousehold(h *domain.Household) error {
	if err := ip.validateIncome(&h.Income); err != nil {
		return fmt.Errorf("income validation failed: %w", err)
	}
	for i := range h.Properties {
		if err := ip.validateProperty(&h.Properties[i]); err != nil {
			return fmt.Errorf("property %d (%s) validation failed: %w", i, h.Properties[i].Name, err)
		}
	}
	if err := ip.validatePensions(&h.Pensions); err != nil {
		return fmt.Errorf("pension validation failed: %w", err)
	}
	if err := ip.validateRetirement(&h.Retirement); err != nil {
		return fmt.Errorf("retirement validation failed: %w", err)
	}
	if err := ip.validateProtection(&h.Protection); err != nil {
		return fmt.Errorf("protection validation failed: %w", err)
	}
	for i := range h.Policies {
		if err := ip.validatePolicy(&h.Policies[i]); err != nil {
			return fmt.Errorf("policy %d validation failed: %w", i, err)
		}
	}
	if h.Portfolio != nil {
		if err := ip.validatePortfolio(h.Portfolio); err != nil {
			return fmt.Errorf("portfolio validation failed: %w", err)
		}
	}
	return nil
}

func (ip *InputParser) validateIncome(income *domain.IncomeProfile) error {
	for name, v := range map[string]decimal.Decimal{
		"employment":      income.Employment,
		"self_employment": income.SelfEmployment,
		"rental":          income.Rental,
		"dividend":        income.Dividend,
		"other":           income.Other,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s income cannot be negative", name)
		}
	}
	return nil
}

func (ip *InputParser) validateProperty(p *domain.Property) error {
	switch p.Type {
	case domain.MainResidence, domain.SecondaryResidence, domain.BuyToLet:
	default:
		return fmt.Errorf("property type must be 'main_residence', 'secondary_residence' or 'buy_to_let'")
	}
	if p.CurrentValue.IsNegative() || p.PurchasePrice.IsNegative() {
		return fmt.Errorf("property values cannot be negative")
	}
	if p.OwnershipShare.IsNegative() || p.OwnershipShare.GreaterThan(one) {
		return fmt.Errorf("ownership share must be between 0 and 1")
	}
	if p.OccupancyRate.IsNegative() || p.OccupancyRate.GreaterThan(one) {
		return fmt.Errorf("occupancy rate must be between 0 and 1")
	}
	for i := range p.Mortgages {
		if err := ip.validateMortgage(&p.Mortgages[i]); err != nil {
			return fmt.Errorf("mortgage %d: %w", i, err)
		}
	}
	return nil
}

func (ip *InputParser) validateMortgage(m *domain.Mortgage) error {
	if m.Type != domain.Repayment && m.Type != domain.InterestOnly {
		return fmt.Errorf("mortgage type must be 'repayment' or 'interest_only'")
	}
	if m.OutstandingBalance.IsNegative() {
		return fmt.Errorf("outstanding balance cannot be negative")
	}
	if !m.OriginalLoanAmount.IsZero() && m.OutstandingBalance.GreaterThan(m.OriginalLoanAmount) {
		return fmt.Errorf("outstanding balance cannot exceed the original loan amount")
	}
	if m.InterestRate.IsNegative() {
		return fmt.Errorf("interest rate cannot be negative")
	}
	if m.InterestRate.GreaterThan(one) {
		return fmt.Errorf("interest rate must be a fraction (0.045 for 4.5%%)")
	}
	if m.RemainingTermMonths < 0 {
		return fmt.Errorf("remaining term cannot be negative")
	}
	if !m.MaturityDate.IsZero() && m.MaturityDate.Before(m.StartDate) {
		return fmt.Errorf("maturity date cannot be before start date")
	}
	return nil
}

func (ip *InputParser) validatePensions(p *domain.Pensions) error {
	for i, dc := range p.DC {
		if dc.CurrentFundValue.IsNegative() || dc.MonthlyContributionAmount.IsNegative() {
			return fmt.Errorf("dc pension %d: values cannot be negative", i)
		}
		if dc.PlatformFeeRate.IsNegative() || dc.PlatformFeeRate.GreaterThan(one) {
			return fmt.Errorf("dc pension %d: platform fee rate must be between 0 and 1", i)
		}
		if dc.EmployeeContributionRate.GreaterThan(one) || dc.EmployerContributionRate.GreaterThan(one) {
			return fmt.Errorf("dc pension %d: contribution rates must be fractions", i)
		}
	}
	for i, db := range p.DB {
		if db.AccruedAnnualPension.IsNegative() {
			return fmt.Errorf("db pension %d: accrued pension cannot be negative", i)
		}
	}
	if p.State != nil {
		if p.State.NIYearsCompleted < 0 || p.State.NIYearsRequired < 0 {
			return fmt.Errorf("state pension NI years cannot be negative")
		}
	}
	return nil
}

func (ip *InputParser) validateRetirement(r *domain.RetirementProfile) error {
	if r.CurrentAge < 0 || r.CurrentAge > 120 {
		return fmt.Errorf("current age must be between 0 and 120")
	}
	if r.TargetRetirementIncome.IsNegative() || r.CurrentAnnualSalary.IsNegative() {
		return fmt.Errorf("income figures cannot be negative")
	}
	return nil
}

func (ip *InputParser) validateProtection(p *domain.ProtectionProfile) error {
	if p.AnnualIncome.IsNegative() || p.MortgageBalance.IsNegative() || p.OtherDebts.IsNegative() {
		return fmt.Errorf("protection amounts cannot be negative")
	}
	for _, age := range p.DependentsAges {
		if age < 0 {
			return fmt.Errorf("dependent ages cannot be negative")
		}
	}
	return nil
}

func (ip *InputParser) validatePolicy(p *domain.PolicyCoverage) error {
	switch p.Type {
	case domain.LifePolicy, domain.CriticalIllnessPolicy, domain.IncomeProtectionPolicy,
		domain.DisabilityPolicy, domain.SicknessIllnessPolicy:
	default:
		return fmt.Errorf("unknown policy type: %s", p.Type)
	}
	switch p.BenefitFrequency {
	case "", domain.Monthly, domain.Weekly, domain.Annually, domain.LumpSum:
	default:
		return fmt.Errorf("benefit frequency must be 'monthly', 'weekly', 'annually' or 'lump_sum'")
	}
	if p.SumAssured.IsNegative() || p.BenefitAmount.IsNegative() || p.MonthlyPremium.IsNegative() {
		return fmt.Errorf("policy amounts cannot be negative")
	}
	return nil
}

func (ip *InputParser) validatePortfolio(p *domain.Portfolio) error {
	known := make(map[string]bool, len(p.AssetClasses))
	for _, ac := range p.AssetClasses {
		if ac.Name == "" {
			return fmt.Errorf("asset class name is required")
		}
		if ac.Volatility < 0 {
			return fmt.Errorf("asset class %s: volatility cannot be negative", ac.Name)
		}
		known[ac.Name] = true
	}
	for name, w := range p.Allocation {
		if !known[name] {
			return fmt.Errorf("allocation references unknown asset class: %s", name)
		}
		if w < 0 {
			return fmt.Errorf("allocation weight for %s cannot be negative", name)
		}
	}
	// weights are rescaled to sum to 1, never reinterpreted as percentages
	if len(p.Allocation) > 0 {
		sum := p.Allocation.Sum()
		if sum <= 0 {
			return fmt.Errorf("allocation weights must not all be zero")
		}
		if math.Abs(sum-1) > 1e-9 {
			p.Allocation = p.Allocation.Normalized()
		}
	}
	return nil
}
