// Package portfolio computes mean-variance statistics for asset allocations and
// samples an approximate efficient frontier.
package portfolio

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/ukplan/internal/domain"
)

// Options tunes the approximations and sampling used by the engine
type Options struct {
	Seed                int64
	MaxPortfolios       int
	OptimizationSamples int

	// DownsideFactor approximates downside deviation as a share of volatility.
	DownsideFactor float64
	// CVaRMultiplier approximates expected shortfall from VaR.
	CVaRMultiplier     float64
	DefaultCorrelation float64
	VaRConfidence      float64
}

// DefaultOptions returns the standard engine settings
func DefaultOptions() Options {
	return Options{
		Seed:                42,
		MaxPortfolios:       10000,
		OptimizationSamples: 500,
		DownsideFactor:      0.7,
		CVaRMultiplier:      1.2,
		DefaultCorrelation:  0.30,
		VaRConfidence:       0.95,
	}
}

// Statistics are the risk and return figures of one allocation
type Statistics struct {
	ExpectedReturn       float64 `json:"expectedReturn"`
	Volatility           float64 `json:"volatility"`
	SharpeRatio          float64 `json:"sharpeRatio"`
	SortinoRatio         float64 `json:"sortinoRatio"`
	DownsideDeviation    float64 `json:"downsideDeviation"`
	VaR95                float64 `json:"var95"`
	CVaR95               float64 `json:"cvar95"`
	MaxDrawdownEstimate  float64 `json:"maxDrawdownEstimate"`
	DiversificationRatio float64 `json:"diversificationRatio"`
}

// Engine evaluates allocations. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Options returns the engine settings
func (e *Engine) Options() Options {
	return e.opts
}

// CalculateStatistics computes the statistics of an allocation. Weights are
// used as given; an allocation naming an unknown asset class is rejected.
func (e *Engine) CalculateStatistics(allocation domain.PortfolioAllocation, assets []domain.AssetClass, riskFreeRate float64) (Statistics, error) {
	if len(assets) == 0 {
		return Statistics{}, fmt.Errorf("no asset classes: %w", domain.ErrInvalidInput)
	}
	index := make(map[string]int, len(assets))
	for i, a := range assets {
		index[a.Name] = i
	}
	weights := make([]float64, len(assets))
	for name, w := range allocation {
		i, ok := index[name]
		if !ok {
			return Statistics{}, fmt.Errorf("allocation references unknown asset class %q: %w", name, domain.ErrInvalidInput)
		}
		weights[i] = w
	}
	return e.statistics(weights, assets, riskFreeRate), nil
}

func (e *Engine) statistics(weights []float64, assets []domain.AssetClass, riskFreeRate float64) Statistics {
	var ret, variance, weightedVol float64
	for i, a := range assets {
		ret += weights[i] * a.ExpectedReturn
		weightedVol += weights[i] * a.Volatility
		for j, b := range assets {
			variance += weights[i] * weights[j] * a.Volatility * b.Volatility * e.Correlation(a, b)
		}
	}
	vol := math.Sqrt(math.Max(variance, 0))

	s := Statistics{
		ExpectedReturn:      ret,
		Volatility:          vol,
		DownsideDeviation:   vol * e.opts.DownsideFactor,
		VaR95:               ValueAtRisk(ret, vol, e.opts.VaRConfidence),
		MaxDrawdownEstimate: math.Min(1, 2*vol),
	}
	s.CVaR95 = s.VaR95 * e.opts.CVaRMultiplier
	if vol > 0 {
		s.SharpeRatio = (ret - riskFreeRate) / vol
		s.DiversificationRatio = weightedVol / vol
	}
	if s.DownsideDeviation > 0 {
		s.SortinoRatio = (ret - riskFreeRate) / s.DownsideDeviation
	}
	return s
}

// ZScore returns the one-tailed normal quantile for the supported confidence
// levels (90%, 95%, 99%). Other levels round to the nearest of those.
func ZScore(confidence float64) float64 {
	switch {
	case confidence < 0.925:
		return 1.28
	case confidence < 0.97:
		return 1.645
	default:
		return 2.326
	}
}

// ValueAtRisk is the parametric one-year VaR, |return - z*volatility|
func ValueAtRisk(expectedReturn, volatility, confidence float64) float64 {
	return math.Abs(expectedReturn - ZScore(confidence)*volatility)
}
