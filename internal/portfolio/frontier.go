package portfolio

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rgehrsitz/ukplan/internal/domain"
)

// WeightedPortfolio is one sampled allocation and its statistics
type WeightedPortfolio struct {
	Weights    domain.PortfolioAllocation `json:"weights"`
	Statistics Statistics                 `json:"statistics"`
}

// Frontier is the outcome of sampling random allocations
type Frontier struct {
	Sampled     int                 `json:"sampled"`
	Efficient   []WeightedPortfolio `json:"efficient"`
	MaxSharpe   WeightedPortfolio   `json:"maxSharpe"`
	MinVariance WeightedPortfolio   `json:"minVariance"`
}

// TargetKind selects what an optimal portfolio is matched on
type TargetKind string

const (
	TargetReturn TargetKind = "return"
	TargetRisk   TargetKind = "risk"
)

// Target is the return or volatility an optimal portfolio should be closest to
type Target struct {
	Kind  TargetKind `json:"kind"`
	Value float64    `json:"value"`
}

// GenerateRandomPortfolios draws n allocations with independent uniform weights
// normalised to sum to one. n is capped at Options.MaxPortfolios. Sampling is
// seeded from Options.Seed, so equal inputs give equal portfolios.
func (e *Engine) GenerateRandomPortfolios(assets []domain.AssetClass, n int, riskFreeRate float64) ([]WeightedPortfolio, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("no asset classes: %w", domain.ErrInvalidInput)
	}
	if n <= 0 {
		return nil, fmt.Errorf("number of portfolios must be positive, got %d: %w", n, domain.ErrInvalidInput)
	}
	if e.opts.MaxPortfolios > 0 && n > e.opts.MaxPortfolios {
		n = e.opts.MaxPortfolios
	}

	rng := rand.New(rand.NewSource(e.opts.Seed))
	portfolios := make([]WeightedPortfolio, 0, n)
	weights := make([]float64, len(assets))
	for k := 0; k < n; k++ {
		var sum float64
		for i := range weights {
			weights[i] = rng.Float64()
			sum += weights[i]
		}
		alloc := make(domain.PortfolioAllocation, len(assets))
		for i, a := range assets {
			if sum > 0 {
				weights[i] /= sum
			} else {
				weights[i] = 1 / float64(len(assets))
			}
			alloc[a.Name] = weights[i]
		}
		portfolios = append(portfolios, WeightedPortfolio{
			Weights:    alloc,
			Statistics: e.statistics(weights, assets, riskFreeRate),
		})
	}
	return portfolios, nil
}

// EfficientSet keeps the portfolios on the upper edge of the sample: ordered by
// volatility, each kept portfolio has a strictly higher return than every
// portfolio before it.
func EfficientSet(portfolios []WeightedPortfolio) []WeightedPortfolio {
	sorted := make([]WeightedPortfolio, len(portfolios))
	copy(sorted, portfolios)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sorted[i].Statistics, sorted[j].Statistics
		if si.Volatility != sj.Volatility {
			return si.Volatility < sj.Volatility
		}
		return si.ExpectedReturn > sj.ExpectedReturn
	})

	efficient := make([]WeightedPortfolio, 0)
	best := math.Inf(-1)
	for _, p := range sorted {
		if p.Statistics.ExpectedReturn > best {
			efficient = append(efficient, p)
			best = p.Statistics.ExpectedReturn
		}
	}
	return efficient
}

// CalculateEfficientFrontier samples n portfolios and returns the efficient set
// together with the highest-Sharpe and lowest-volatility samples.
func (e *Engine) CalculateEfficientFrontier(assets []domain.AssetClass, n int, riskFreeRate float64) (*Frontier, error) {
	portfolios, err := e.GenerateRandomPortfolios(assets, n, riskFreeRate)
	if err != nil {
		return nil, err
	}

	frontier := &Frontier{
		Sampled:     len(portfolios),
		Efficient:   EfficientSet(portfolios),
		MaxSharpe:   portfolios[0],
		MinVariance: portfolios[0],
	}
	for _, p := range portfolios[1:] {
		if p.Statistics.SharpeRatio > frontier.MaxSharpe.Statistics.SharpeRatio {
			frontier.MaxSharpe = p
		}
		if p.Statistics.Volatility < frontier.MinVariance.Statistics.Volatility {
			frontier.MinVariance = p
		}
	}
	return frontier, nil
}

// CalculateOptimalPortfolio picks, from an Options.OptimizationSamples frontier,
// the efficient portfolio whose return or volatility is nearest the target.
func (e *Engine) CalculateOptimalPortfolio(assets []domain.AssetClass, target Target, riskFreeRate float64) (WeightedPortfolio, error) {
	var measure func(Statistics) float64
	switch target.Kind {
	case TargetReturn:
		measure = func(s Statistics) float64 { return s.ExpectedReturn }
	case TargetRisk:
		measure = func(s Statistics) float64 { return s.Volatility }
	default:
		return WeightedPortfolio{}, fmt.Errorf("unknown optimisation target %q: %w", target.Kind, domain.ErrInvalidInput)
	}

	frontier, err := e.CalculateEfficientFrontier(assets, e.opts.OptimizationSamples, riskFreeRate)
	if err != nil {
		return WeightedPortfolio{}, err
	}

	best := frontier.Efficient[0]
	bestDiff := math.Abs(measure(best.Statistics) - target.Value)
	for _, p := range frontier.Efficient[1:] {
		if d := math.Abs(measure(p.Statistics) - target.Value); d < bestDiff {
			best, bestDiff = p, d
		}
	}
	return best, nil
}
