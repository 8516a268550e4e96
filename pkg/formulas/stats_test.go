package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil), "empty series has no deviation")
	assert.Equal(t, 0.0, StdDev([]float64{5.0}), "single point has no deviation")

	// Sample std of {2,4,4,4,5,5,7,9} is 2.138...
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.1381, StdDev(data), 1e-4)
}

func TestPopStdDev(t *testing.T) {
	// Population std of {2,4,4,4,5,5,7,9} is exactly 2.
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.0, PopStdDev(data), 1e-10)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{1, 3, 5}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}), "even-length median averages the middle pair")
}

func TestPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	assert.Equal(t, 1.0, Percentile(data, 0))
	assert.Equal(t, 5.0, Percentile(data, 100))
	assert.Equal(t, 3.0, Percentile(data, 50))

	// Linear interpolation between ranks: 25th percentile of 5 points
	// sits at rank 1.0 exactly, 10th at rank 0.4.
	assert.Equal(t, 2.0, Percentile(data, 25))
	assert.InDelta(t, 1.4, Percentile(data, 10), 1e-10)

	assert.Equal(t, 0.0, Percentile(nil, 50))
}

func TestReturns(t *testing.T) {
	assert.Empty(t, Returns([]float64{100}))

	returns := Returns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-10)
	assert.InDelta(t, -0.10, returns[1], 1e-10)
}

func TestReturns_ZeroPrice(t *testing.T) {
	returns := Returns([]float64{0, 100})
	require.Len(t, returns, 1)
	assert.Equal(t, 0.0, returns[0], "division by a zero price is suppressed")
}

func TestAnnualizedVolatility(t *testing.T) {
	daily := []float64{0.01, -0.02, 0.015, 0.005, -0.01}
	expected := PopStdDev(daily) * math.Sqrt(252)
	assert.InDelta(t, expected, AnnualizedVolatility(daily), 1e-12)
	assert.Equal(t, 0.0, AnnualizedVolatility(nil))
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	assert.InDelta(t, 1.0, Correlation(x, y), 1e-10, "perfectly linear series correlate at 1")

	inverse := []float64{10, 8, 6, 4, 2}
	assert.InDelta(t, -1.0, Correlation(x, inverse), 1e-10)

	assert.Equal(t, 0.0, Correlation(x, []float64{1, 2}), "mismatched lengths yield zero")
}

func TestMaxDrawdown(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown(nil))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 110, 120}), "monotonic rise has no drawdown")

	// Peak 120, trough 90: drawdown -25%.
	values := []float64{100, 120, 90, 110}
	assert.InDelta(t, -0.25, MaxDrawdown(values), 1e-10)
}
