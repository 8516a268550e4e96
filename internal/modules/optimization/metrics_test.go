package optimization

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bwillia13x/epv-pm/internal/domain"
	"github.com/Bwillia13x/epv-pm/pkg/formulas"
)

func priceSeries(symbol string, start time.Time, prices []float64) []domain.MarketData {
	series := make([]domain.MarketData, len(prices))
	for i, p := range prices {
		series[i] = domain.MarketData{Symbol: symbol, Date: start.AddDate(0, 0, i), Price: p}
	}
	return series
}

func TestPortfolioMetrics_NoHistory(t *testing.T) {
	opt := newTestOptimizer()

	positions := []domain.Position{{Symbol: "AAA", Shares: 100, MarketValue: 1_000}}

	_, err := opt.PortfolioMetrics(positions, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrNoHistory))

	single := map[string][]domain.MarketData{
		"AAA": priceSeries("AAA", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), []float64{10}),
	}
	_, err = opt.PortfolioMetrics(positions, single, nil)
	assert.True(t, errors.Is(err, domain.ErrNoHistory), "one observation is no history")
}

func TestPortfolioMetrics_SinglePosition(t *testing.T) {
	opt := newTestOptimizer()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	positions := []domain.Position{
		{Symbol: "AAA", Shares: 100, CurrentPrice: 13, MarketValue: 1_300, EPVPerShare: 16, MarginOfSafety: 23.1},
	}
	history := map[string][]domain.MarketData{
		"AAA": priceSeries("AAA", start, []float64{10, 11, 12, 11, 13}),
	}

	metrics, err := opt.PortfolioMetrics(positions, history, nil)
	require.NoError(t, err)

	assert.Equal(t, 1_300.0, metrics.PortfolioValue)
	assert.InDelta(t, 0.30, metrics.TotalReturn, 1e-9, "1000 to 1300 over the window")
	assert.Greater(t, metrics.AnnualizedReturn, metrics.TotalReturn, "five days annualizes upward")
	assert.Greater(t, metrics.Volatility, 0.0)
	// Peak 1200 to trough 1100.
	assert.InDelta(t, -1.0/12.0, metrics.MaxDrawdown, 1e-9)

	assert.Equal(t, 1.0, metrics.PortfolioBeta, "no benchmark defaults beta to 1")
	assert.Nil(t, metrics.TrackingError)

	assert.InDelta(t, 16.0, metrics.WeightedEPV, 1e-9)
	assert.InDelta(t, 23.1, metrics.WeightedMarginOfSafety, 1e-9)
	assert.InDelta(t, 16.0/13.0, metrics.EPVToMarketRatio, 1e-9)
}

func TestPortfolioMetrics_TwoPositionsWeighting(t *testing.T) {
	opt := newTestOptimizer()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	positions := []domain.Position{
		{Symbol: "AAA", Shares: 100, CurrentPrice: 10, MarketValue: 1_000, EPVPerShare: 14},
		{Symbol: "BBB", Shares: 10, CurrentPrice: 300, MarketValue: 3_000, EPVPerShare: 330},
	}
	history := map[string][]domain.MarketData{
		"AAA": priceSeries("AAA", start, []float64{10, 10.5, 10.2, 10.8}),
		"BBB": priceSeries("BBB", start, []float64{290, 295, 300, 305}),
	}

	metrics, err := opt.PortfolioMetrics(positions, history, nil)
	require.NoError(t, err)

	assert.Equal(t, 4_000.0, metrics.PortfolioValue)
	// 25/75 weighting of EPV per share.
	assert.InDelta(t, 14*0.25+330*0.75, metrics.WeightedEPV, 1e-9)
	assert.Greater(t, metrics.EPVToMarketRatio, 1.0, "both names trade below EPV")
}

func TestPortfolioMetrics_BenchmarkStatistics(t *testing.T) {
	opt := newTestOptimizer()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	positions := []domain.Position{
		{Symbol: "AAA", Shares: 100, CurrentPrice: 13, MarketValue: 1_300},
	}
	prices := []float64{10, 11, 12, 11, 13}
	history := map[string][]domain.MarketData{
		"AAA": priceSeries("AAA", start, prices),
	}

	// Benchmark identical to the portfolio's own daily returns.
	benchmark := formulas.Returns([]float64{1000, 1100, 1200, 1100, 1300})

	metrics, err := opt.PortfolioMetrics(positions, history, benchmark)
	require.NoError(t, err)

	// Sample covariance over population variance: n/(n-1) for an
	// identical series of four returns.
	assert.InDelta(t, 4.0/3.0, metrics.PortfolioBeta, 1e-9)

	require.NotNil(t, metrics.TrackingError)
	assert.InDelta(t, 0.0, *metrics.TrackingError, 1e-12, "tracking the benchmark exactly")
}

func TestPortfolioMetrics_MismatchedBenchmarkIgnored(t *testing.T) {
	opt := newTestOptimizer()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	positions := []domain.Position{{Symbol: "AAA", Shares: 100, CurrentPrice: 13, MarketValue: 1_300}}
	history := map[string][]domain.MarketData{
		"AAA": priceSeries("AAA", start, []float64{10, 11, 12, 11, 13}),
	}

	metrics, err := opt.PortfolioMetrics(positions, history, []float64{0.01, 0.02})
	require.NoError(t, err)

	assert.Equal(t, 1.0, metrics.PortfolioBeta, "length mismatch falls back to the default beta")
	assert.Nil(t, metrics.TrackingError)
}
