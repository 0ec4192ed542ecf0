package portfolio

import (
	"errors"
	"math"
	"testing"

	"github.com/rgehrsitz/ukplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAssets() []domain.AssetClass {
	return []domain.AssetClass{
		{Name: "UK Equities", ExpectedReturn: 0.07, Volatility: 0.15},
		{Name: "Gilts", ExpectedReturn: 0.03, Volatility: 0.05},
	}
}

func TestCalculateStatistics_SixtyForty(t *testing.T) {
	e := NewEngine(DefaultOptions())

	s, err := e.CalculateStatistics(domain.PortfolioAllocation{"UK Equities": 0.6, "Gilts": 0.4}, testAssets(), 0.02)
	require.NoError(t, err)

	// variance = 0.36*0.0225 + 0.16*0.0025 + 2*0.6*0.4*0.15*0.05*0.20
	vol := math.Sqrt(0.00922)
	assert.InDelta(t, 0.054, s.ExpectedReturn, 1e-12)
	assert.InDelta(t, vol, s.Volatility, 1e-12)
	assert.InDelta(t, 0.034/vol, s.SharpeRatio, 1e-9)
	assert.InDelta(t, 0.7*vol, s.DownsideDeviation, 1e-12)
	assert.InDelta(t, 0.034/(0.7*vol), s.SortinoRatio, 1e-9)
	assert.InDelta(t, math.Abs(0.054-1.645*vol), s.VaR95, 1e-12)
	assert.InDelta(t, 1.2*s.VaR95, s.CVaR95, 1e-12)
	assert.InDelta(t, 2*vol, s.MaxDrawdownEstimate, 1e-12)
	assert.InDelta(t, 0.11/vol, s.DiversificationRatio, 1e-9)
}

func TestCalculateStatistics_ExplicitCorrelationWins(t *testing.T) {
	e := NewEngine(DefaultOptions())
	assets := testAssets()
	assets[1].Correlations = map[string]float64{"UK Equities": -0.2}

	s, err := e.CalculateStatistics(domain.PortfolioAllocation{"UK Equities": 0.6, "Gilts": 0.4}, assets, 0.02)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.00778), s.Volatility, 1e-12)
}

func TestCalculateStatistics_SingleAsset(t *testing.T) {
	e := NewEngine(DefaultOptions())

	s, err := e.CalculateStatistics(domain.PortfolioAllocation{"UK Equities": 1}, testAssets(), 0.02)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, s.Volatility, 1e-12)
	assert.InDelta(t, 1.0, s.DiversificationRatio, 1e-12)
}

func TestCalculateStatistics_ZeroVolatility(t *testing.T) {
	e := NewEngine(DefaultOptions())
	assets := []domain.AssetClass{{Name: "Cash", ExpectedReturn: 0.04}}

	s, err := e.CalculateStatistics(domain.PortfolioAllocation{"Cash": 1}, assets, 0.02)
	require.NoError(t, err)
	assert.Zero(t, s.Volatility)
	assert.Zero(t, s.SharpeRatio)
	assert.Zero(t, s.SortinoRatio)
	assert.Zero(t, s.DiversificationRatio)
	assert.InDelta(t, 0.04, s.VaR95, 1e-12)
}

func TestCalculateStatistics_Errors(t *testing.T) {
	e := NewEngine(DefaultOptions())

	_, err := e.CalculateStatistics(domain.PortfolioAllocation{"Crypto": 1}, testAssets(), 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = e.CalculateStatistics(domain.PortfolioAllocation{}, nil, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCorrelation(t *testing.T) {
	e := NewEngine(DefaultOptions())
	eq := domain.AssetClass{Name: "Global Equities"}
	us := domain.AssetClass{Name: "US Stocks"}
	gilt := domain.AssetClass{Name: "Index-linked Gilts"}
	cash := domain.AssetClass{Name: "Cash"}
	reit := domain.AssetClass{Name: "Commercial Property"}
	odd := domain.AssetClass{Name: "Fine Wine"}
	tagged := domain.AssetClass{Name: "Fine Wine", Category: "Alternatives"}

	assert.Equal(t, 1.0, e.Correlation(eq, eq))
	assert.Equal(t, 0.80, e.Correlation(eq, us))
	assert.Equal(t, 0.20, e.Correlation(gilt, eq))
	assert.Equal(t, 0.20, e.Correlation(eq, gilt))
	assert.Equal(t, 0.0, e.Correlation(eq, cash))
	assert.Equal(t, 0.60, e.Correlation(eq, reit))
	assert.Equal(t, 0.30, e.Correlation(eq, odd))
	assert.Equal(t, 0.60, e.Correlation(eq, tagged))
}

func TestValueAtRisk(t *testing.T) {
	tests := []struct {
		confidence float64
		z          float64
	}{
		{0.90, 1.28},
		{0.95, 1.645},
		{0.99, 2.326},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.z, ZScore(tt.confidence))
		assert.InDelta(t, math.Abs(0.06-tt.z*0.1), ValueAtRisk(0.06, 0.1, tt.confidence), 1e-12)
	}
}

func TestGenerateRandomPortfolios_WeightsSumToOne(t *testing.T) {
	e := NewEngine(DefaultOptions())
	assets := append(testAssets(),
		domain.AssetClass{Name: "Cash", ExpectedReturn: 0.04, Volatility: 0.01},
		domain.AssetClass{Name: "Property", ExpectedReturn: 0.06, Volatility: 0.12},
	)

	portfolios, err := e.GenerateRandomPortfolios(assets, 200, 0.02)
	require.NoError(t, err)
	require.Len(t, portfolios, 200)
	for _, p := range portfolios {
		assert.InDelta(t, 1.0, p.Weights.Sum(), 1e-9)
		assert.Len(t, p.Weights, 4)
		for _, w := range p.Weights {
			assert.GreaterOrEqual(t, w, 0.0)
		}
	}
}

func TestGenerateRandomPortfolios_SeededAndCapped(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPortfolios = 10
	e := NewEngine(opts)

	a, err := e.GenerateRandomPortfolios(testAssets(), 50, 0.02)
	require.NoError(t, err)
	b, err := e.GenerateRandomPortfolios(testAssets(), 50, 0.02)
	require.NoError(t, err)

	assert.Len(t, a, 10)
	assert.Equal(t, a, b)

	_, err = e.GenerateRandomPortfolios(testAssets(), 0, 0.02)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestEfficientSet(t *testing.T) {
	p := func(vol, ret float64) WeightedPortfolio {
		return WeightedPortfolio{Statistics: Statistics{Volatility: vol, ExpectedReturn: ret}}
	}
	in := []WeightedPortfolio{p(0.10, 0.05), p(0.05, 0.03), p(0.08, 0.02), p(0.10, 0.06), p(0.12, 0.06), p(0.15, 0.07)}

	out := EfficientSet(in)

	require.Len(t, out, 3)
	assert.Equal(t, p(0.05, 0.03), out[0])
	assert.Equal(t, p(0.10, 0.06), out[1])
	assert.Equal(t, p(0.15, 0.07), out[2])
}

func TestCalculateEfficientFrontier(t *testing.T) {
	e := NewEngine(DefaultOptions())

	f, err := e.CalculateEfficientFrontier(testAssets(), 300, 0.02)
	require.NoError(t, err)
	assert.Equal(t, 300, f.Sampled)
	require.NotEmpty(t, f.Efficient)

	for i := 1; i < len(f.Efficient); i++ {
		prev, cur := f.Efficient[i-1].Statistics, f.Efficient[i].Statistics
		assert.Greater(t, cur.Volatility, prev.Volatility)
		assert.Greater(t, cur.ExpectedReturn, prev.ExpectedReturn)
	}

	assert.Equal(t, f.Efficient[0].Statistics.Volatility, f.MinVariance.Statistics.Volatility)
	for _, p := range f.Efficient {
		assert.LessOrEqual(t, p.Statistics.SharpeRatio, f.MaxSharpe.Statistics.SharpeRatio)
	}
}

func TestCalculateOptimalPortfolio(t *testing.T) {
	e := NewEngine(DefaultOptions())

	byReturn, err := e.CalculateOptimalPortfolio(testAssets(), Target{Kind: TargetReturn, Value: 0.05}, 0.02)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, byReturn.Statistics.ExpectedReturn, 0.002)

	byRisk, err := e.CalculateOptimalPortfolio(testAssets(), Target{Kind: TargetRisk, Value: 0.10}, 0.02)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, byRisk.Statistics.Volatility, 0.005)

	_, err = e.CalculateOptimalPortfolio(testAssets(), Target{Kind: "sharpe"}, 0.02)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
