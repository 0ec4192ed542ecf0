package retirement

import (
	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ReadinessCategory labels a readiness score
type ReadinessCategory string

const (
	ReadinessExcellent ReadinessCategory = "Excellent"
	ReadinessGood      ReadinessCategory = "Good"
	ReadinessFair      ReadinessCategory = "Fair"
	ReadinessCritical  ReadinessCategory = "Critical"
)

// ReadinessAssessment combines the income projection with the score
type ReadinessAssessment struct {
	Projection           calculation.RetirementIncomeProjection `json:"projection"`
	TargetIncome         decimal.Decimal                        `json:"targetIncome"`
	IncomeGap            decimal.Decimal                        `json:"incomeGap"`
	Score                int                                    `json:"score"`
	Category             ReadinessCategory                      `json:"category"`
	ReplacementRatio     decimal.Decimal                        `json:"replacementRatio"`
	RequiredContribution RequiredContribution                   `json:"requiredContribution"`
}

// ReadinessScorer scores how close projected income is to the target
type ReadinessScorer struct {
	GrowthRate decimal.Decimal
	projector  *calculation.PensionProjector
	optimizer  *ContributionOptimizer
}

// NewReadinessScorer creates a scorer for one tax year
func NewReadinessScorer(cfg *domain.TaxYearConfig) *ReadinessScorer {
	return &ReadinessScorer{
		GrowthRate: cfg.PlanningAssumptions.DefaultGrowthRate,
		projector:  calculation.NewPensionProjector(cfg),
		optimizer:  NewContributionOptimizer(cfg),
	}
}

// CalculateReadinessScore returns min(100, round(projected/target*100)), or
// zero when there is no positive target.
func CalculateReadinessScore(projected, target decimal.Decimal) int {
	if target.LessThanOrEqual(decimal.Zero) || projected.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	score := projected.Div(target).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if score > 100 {
		return 100
	}
	return int(score)
}

// Category maps a score onto its readiness band
func Category(score int) ReadinessCategory {
	switch {
	case score >= 90:
		return ReadinessExcellent
	case score >= 70:
		return ReadinessGood
	case score >= 50:
		return ReadinessFair
	default:
		return ReadinessCritical
	}
}

// Assess projects retirement income for a profile and scores it
func (rs *ReadinessScorer) Assess(profile domain.RetirementProfile, pensions domain.Pensions) ReadinessAssessment {
	years := profile.YearsToRetirement()
	projection := rs.projector.ProjectTotalRetirementIncome(pensions, years, rs.GrowthRate)
	score := CalculateReadinessScore(projection.Total, profile.TargetRetirementIncome)

	return ReadinessAssessment{
		Projection:           projection,
		TargetIncome:         profile.TargetRetirementIncome,
		IncomeGap:            calculation.NonNegative(profile.TargetRetirementIncome.Sub(projection.Total)),
		Score:                score,
		Category:             Category(score),
		ReplacementRatio:     rs.projector.IncomeReplacementRatio(projection.Total, profile.CurrentAnnualSalary),
		RequiredContribution: rs.optimizer.CalculateRequiredContribution(profile, pensions, rs.GrowthRate),
	}
}
