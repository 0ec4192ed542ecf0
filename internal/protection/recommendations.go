package protection

import (
	"fmt"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Recommendation priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation suggests cover for one gap
type Recommendation struct {
	PolicyType domain.PolicyType `json:"policyType,omitempty"`
	Priority   string            `json:"priority"`
	Amount     decimal.Decimal   `json:"amount"`
	Frequency  string            `json:"frequency"`
	Reason     string            `json:"reason"`
}

// Analysis is the complete protection review for one household
type Analysis struct {
	Needs           ProtectionNeeds     `json:"needs"`
	Coverage        CoverageSummary     `json:"coverage"`
	Gap             CoverageGap         `json:"gap"`
	Scenarios       []ScenarioResult    `json:"scenarios"`
	PremiumChange   PremiumChangeResult `json:"premiumChange"`
	Recommendations []Recommendation    `json:"recommendations"`
}

func priorityFor(score int) string {
	switch {
	case score < 40:
		return PriorityHigh
	case score < 60:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// GenerateRecommendations turns scenario gaps into cover suggestions and flags
// premiums that are no longer manageable.
func (g *GapEngine) GenerateRecommendations(scenarios []ScenarioResult, premium PremiumChangeResult) []Recommendation {
	var recs []Recommendation
	for _, s := range scenarios {
		if s.Gap.IsZero() {
			continue
		}
		switch s.Name {
		case ScenarioDeath:
			recs = append(recs, Recommendation{
				PolicyType: domain.LifePolicy,
				Priority:   priorityFor(s.Score),
				Amount:     s.Gap,
				Frequency:  string(domain.LumpSum),
				Reason:     fmt.Sprintf("Life cover meets %d%% of the need on death.", s.Score),
			})
		case ScenarioCriticalIllness:
			recs = append(recs, Recommendation{
				PolicyType: domain.CriticalIllnessPolicy,
				Priority:   priorityFor(s.Score),
				Amount:     s.Gap,
				Frequency:  string(domain.LumpSum),
				Reason:     fmt.Sprintf("Critical illness cover meets %d%% of debts and recovery income.", s.Score),
			})
		case ScenarioDisability:
			recs = append(recs, Recommendation{
				PolicyType: domain.IncomeProtectionPolicy,
				Priority:   priorityFor(s.Score),
				Amount:     s.Gap.Div(decimal.NewFromInt(12)).Round(2),
				Frequency:  string(domain.Monthly),
				Reason:     fmt.Sprintf("Income protection replaces %d%% of insurable income.", s.Score),
			})
		}
	}

	if premium.Affordability == Unaffordable {
		recs = append(recs, Recommendation{
			Priority:  PriorityMedium,
			Amount:    premium.AnnualCost,
			Frequency: string(domain.Annually),
			Reason:    fmt.Sprintf("Premiums would take %s%% of income; review policy terms.", domain.RateToPercent(premium.IncomeRatio).StringFixed(1)),
		})
	}
	return recs
}

// Analyze runs the full protection review: needs, cover, gap, the event
// scenarios, a premium change of premiumChangeRate and recommendations.
func (g *GapEngine) Analyze(profile domain.ProtectionProfile, policies []domain.PolicyCoverage, premiumChangeRate decimal.Decimal) Analysis {
	needs := g.CalculateProtectionNeeds(profile)
	coverage := g.CalculateTotalCoverage(policies)

	scenarios := []ScenarioResult{
		g.ModelDeathScenario(needs, coverage),
		g.ModelCriticalIllnessScenario(profile, needs, coverage),
		g.ModelDisabilityScenario(profile, coverage),
	}
	premium := g.ModelPremiumChange(coverage, profile.AnnualIncome, premiumChangeRate)

	return Analysis{
		Needs:           needs,
		Coverage:        coverage,
		Gap:             g.CalculateCoverageGap(needs, coverage),
		Scenarios:       scenarios,
		PremiumChange:   premium,
		Recommendations: g.GenerateRecommendations(scenarios, premium),
	}
}
