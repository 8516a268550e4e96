package formulas

import "math"

// RiskMetrics holds the single-series risk summary produced by Risk.
type RiskMetrics struct {
	VaR99  float64 `json:"var99"`
	Sharpe float64 `json:"sharpe"`
	Alpha  float64 `json:"alpha"`
}

// PortfolioRiskMetrics holds the aggregate risk summary produced by
// PortfolioRisk.
type PortfolioRiskMetrics struct {
	VaR99      float64 `json:"var99"`
	Volatility float64 `json:"volatility"`
}

// Risk computes risk metrics from a raw price series: VaR99 is the 1st
// percentile of simple returns, Sharpe the mean return over its sample
// standard deviation (zero risk-free rate), and Alpha the mean return.
// Degenerate series (fewer than two points) yield all-zero metrics.
func Risk(prices []float64) RiskMetrics {
	if len(prices) < 2 {
		return RiskMetrics{}
	}

	returns := Returns(prices)
	if len(returns) == 0 {
		return RiskMetrics{}
	}

	meanReturn := Mean(returns)
	stdReturn := StdDev(returns)

	sharpe := 0.0
	if stdReturn != 0 {
		sharpe = meanReturn / stdReturn
	}

	return RiskMetrics{
		VaR99:  Percentile(returns, 1),
		Sharpe: sharpe,
		Alpha:  meanReturn,
	}
}

// PortfolioRisk aggregates per-asset return series into a weighted
// portfolio return series and computes percentile VaR and volatility.
// returnsMatrix rows are assets, columns are time periods; weights must
// align with the rows.
func PortfolioRisk(weights []float64, returnsMatrix [][]float64) PortfolioRiskMetrics {
	if len(weights) == 0 || len(returnsMatrix) == 0 {
		return PortfolioRiskMetrics{}
	}

	periods := len(returnsMatrix[0])
	portfolioReturns := make([]float64, periods)
	for t := 0; t < periods; t++ {
		for i, assetReturns := range returnsMatrix {
			if i < len(weights) && t < len(assetReturns) {
				portfolioReturns[t] += weights[i] * assetReturns[t]
			}
		}
	}

	return PortfolioRiskMetrics{
		VaR99:      Percentile(portfolioReturns, 1),
		Volatility: StdDev(portfolioReturns),
	}
}

// CorrelationMatrix computes the pairwise Pearson correlation matrix of
// multiple return series. NaN entries are sanitized to zero, which also
// applies to the diagonal: a constant series has undefined correlation
// with itself and reports 0 rather than 1.
func CorrelationMatrix(returnsMatrix [][]float64) [][]float64 {
	n := len(returnsMatrix)
	if n == 0 {
		return [][]float64{}
	}

	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		if StdDev(returnsMatrix[i]) > 0 {
			corr[i][i] = 1.0
		}
	}
	if n == 1 {
		return corr
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := Correlation(returnsMatrix[i], returnsMatrix[j])
			if math.IsNaN(c) {
				c = 0
			}
			corr[i][j] = c
			corr[j][i] = c
		}
	}
	return corr
}
