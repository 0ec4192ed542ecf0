package calculation

import (
	"sort"
	"time"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// AllowanceResult is the outcome of an annual allowance check
type AllowanceResult struct {
	StandardAllowance   decimal.Decimal `json:"standardAllowance"`
	AvailableAllowance  decimal.Decimal `json:"availableAllowance"`
	IsTapered           bool            `json:"isTapered"`
	TaperReduction      decimal.Decimal `json:"taperReduction"`
	CarryForward        decimal.Decimal `json:"carryForward"`
	TotalContributions  decimal.Decimal `json:"totalContributions"`
	ExcessContributions decimal.Decimal `json:"excessContributions"`
	HasExcess           bool            `json:"hasExcess"`
}

// MPAAStatus reports whether the money purchase annual allowance applies
type MPAAStatus struct {
	IsTriggered bool                     `json:"isTriggered"`
	MPAAAmount  decimal.Decimal          `json:"mpaaAmount"`
	TriggeredOn *time.Time               `json:"triggeredOn,omitempty"`
	TriggerKind domain.PensionAccessKind `json:"triggerKind,omitempty"`
}

// CarryForwardYear is the unused allowance from one earlier tax year
type CarryForwardYear struct {
	TaxYear       string          `json:"taxYear"`
	Allowance     decimal.Decimal `json:"allowance"`
	Contributions decimal.Decimal `json:"contributions"`
	Unused        decimal.Decimal `json:"unused"`
}

// CarryForwardResult sums unused allowance available to carry forward
type CarryForwardResult struct {
	Years       []CarryForwardYear `json:"years"`
	TotalUnused decimal.Decimal    `json:"totalUnused"`
}

// AnnualAllowanceCalculator applies the pension annual allowance rules
type AnnualAllowanceCalculator struct {
	Pension domain.PensionConfig
}

// NewAnnualAllowanceCalculator creates a calculator for one tax year
func NewAnnualAllowanceCalculator(cfg *domain.TaxYearConfig) *AnnualAllowanceCalculator {
	return &AnnualAllowanceCalculator{Pension: cfg.Pension}
}

// CalculateTapering returns the allowance after the high-earner taper. The
// taper applies only when both threshold income and adjusted income exceed
// their limits; the result never falls below the minimum allowance.
func (aac *AnnualAllowanceCalculator) CalculateTapering(thresholdIncome, adjustedIncome decimal.Decimal) (decimal.Decimal, bool) {
	standard := aac.Pension.AnnualAllowance
	taper := aac.Pension.TaperedAnnualAllowance
	if !thresholdIncome.GreaterThan(taper.ThresholdIncome) || !adjustedIncome.GreaterThan(taper.AdjustedIncomeThreshold) {
		return standard, false
	}
	reduction := adjustedIncome.Sub(taper.AdjustedIncomeThreshold).Mul(taper.ReductionRate)
	return decimal.Max(taper.MinimumAllowance, standard.Sub(reduction)), true
}

// CheckAnnualAllowance compares contributions with the (tapered) allowance plus carry-forward
func (aac *AnnualAllowanceCalculator) CheckAnnualAllowance(totalContributions, thresholdIncome, adjustedIncome, carryForward decimal.Decimal) AllowanceResult {
	available, tapered := aac.CalculateTapering(thresholdIncome, adjustedIncome)
	carryForward = NonNegative(carryForward)
	excess := NonNegative(totalContributions.Sub(available.Add(carryForward)))

	return AllowanceResult{
		StandardAllowance:   aac.Pension.AnnualAllowance,
		AvailableAllowance:  money(available),
		IsTapered:           tapered,
		TaperReduction:      money(aac.Pension.AnnualAllowance.Sub(available)),
		CarryForward:        money(carryForward),
		TotalContributions:  money(totalContributions),
		ExcessContributions: money(excess),
		HasExcess:           excess.GreaterThan(decimal.Zero),
	}
}

// CheckMPAA looks for a flexible-access event in the supplied ledger. With no
// ledger entries the MPAA is never triggered.
func (aac *AnnualAllowanceCalculator) CheckMPAA(events []domain.PensionAccessEvent) MPAAStatus {
	status := MPAAStatus{MPAAAmount: aac.Pension.MPAA}
	for _, e := range events {
		if !e.Kind.TriggersMPAA() {
			continue
		}
		if status.TriggeredOn == nil || e.Date.Before(*status.TriggeredOn) {
			date := e.Date
			status.TriggeredOn = &date
			status.TriggerKind = e.Kind
		}
	}
	status.IsTriggered = status.TriggeredOn != nil
	return status
}

// CalculateCarryForward sums the unused allowance of the most recent
// carry-forward years. Entries without an allowance use the current standard one.
func (aac *AnnualAllowanceCalculator) CalculateCarryForward(history []domain.AnnualContributionHistory) CarryForwardResult {
	sorted := make([]domain.AnnualContributionHistory, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TaxYear > sorted[j].TaxYear })
	if len(sorted) > aac.Pension.CarryForwardYears {
		sorted = sorted[:aac.Pension.CarryForwardYears]
	}

	result := CarryForwardResult{TotalUnused: decimal.Zero}
	for _, h := range sorted {
		allowance := h.Allowance
		if allowance.IsZero() {
			allowance = aac.Pension.AnnualAllowance
		}
		unused := NonNegative(allowance.Sub(h.Contributions))
		result.Years = append(result.Years, CarryForwardYear{
			TaxYear:       h.TaxYear,
			Allowance:     allowance,
			Contributions: h.Contributions,
			Unused:        unused,
		})
		result.TotalUnused = result.TotalUnused.Add(unused)
	}
	return result
}
