package optimization

import (
	"math"
	"sort"
	"time"

	"github.com/Bwillia13x/epv-pm/internal/domain"
	"github.com/Bwillia13x/epv-pm/pkg/formulas"
)

// PortfolioMetrics computes performance and risk statistics for the
// positions over their shared price history. The benchmark return
// series is optional; without one beta defaults to 1.0 and tracking
// error is omitted.
func (o *Optimizer) PortfolioMetrics(
	positions []domain.Position,
	historicalPrices map[string][]domain.MarketData,
	benchmarkReturns []float64,
) (*domain.PortfolioMetrics, error) {
	o.log.Info().
		Int("positions", len(positions)).
		Msg("Calculating portfolio metrics")

	var totalValue float64
	for _, pos := range positions {
		totalValue += pos.MarketValue
	}
	weights := make([]float64, len(positions))
	if totalValue > 0 {
		for i, pos := range positions {
			weights[i] = pos.MarketValue / totalValue
		}
	}

	portfolioValues := portfolioValueSeries(positions, historicalPrices)
	if len(portfolioValues) == 0 {
		return nil, domain.ErrNoHistory
	}

	var totalReturn float64
	if len(portfolioValues) > 1 {
		totalReturn = (portfolioValues[len(portfolioValues)-1] - portfolioValues[0]) / portfolioValues[0]
	}

	days := float64(len(portfolioValues))
	annualizedReturn := math.Pow(1+totalReturn, formulas.TradingDaysPerYear/days) - 1

	dailyReturns := formulas.Returns(portfolioValues)

	var volatility float64
	if len(dailyReturns) > 1 {
		volatility = formulas.AnnualizedVolatility(dailyReturns)
	}

	var sharpeRatio float64
	if volatility > 0 {
		sharpeRatio = (annualizedReturn - o.cfg.RiskFreeRate) / volatility
	}

	maxDrawdown := formulas.MaxDrawdown(portfolioValues)

	var var5, expectedShortfall float64
	if len(dailyReturns) > 0 {
		p5 := formulas.Percentile(dailyReturns, 5)
		var5 = p5 * math.Sqrt(formulas.TradingDaysPerYear)

		var tail []float64
		for _, r := range dailyReturns {
			if r <= p5 {
				tail = append(tail, r)
			}
		}
		if len(tail) > 0 {
			expectedShortfall = formulas.Mean(tail) * math.Sqrt(formulas.TradingDaysPerYear)
		}
	}

	var weightedEPV, weightedMarginOfSafety, weightedMarketPrice float64
	for i, pos := range positions {
		weightedEPV += pos.EPVPerShare * weights[i]
		weightedMarginOfSafety += pos.MarginOfSafety * weights[i]
		weightedMarketPrice += pos.CurrentPrice * weights[i]
	}
	var epvToMarket float64
	if weightedMarketPrice > 0 {
		epvToMarket = weightedEPV / weightedMarketPrice
	}

	return &domain.PortfolioMetrics{
		PortfolioValue:    totalValue,
		TotalReturn:       totalReturn,
		AnnualizedReturn:  annualizedReturn,
		Volatility:        volatility,
		SharpeRatio:       sharpeRatio,
		MaxDrawdown:       maxDrawdown,
		PortfolioBeta:     portfolioBeta(dailyReturns, benchmarkReturns),
		TrackingError:     trackingError(dailyReturns, benchmarkReturns),
		ValueAtRisk5Pct:   var5,
		ExpectedShortfall: expectedShortfall,

		WeightedEPV:            weightedEPV,
		WeightedMarginOfSafety: weightedMarginOfSafety,
		// Per-position quality is not tracked in holdings.
		WeightedQualityScore: 0.7,
		EPVToMarketRatio:     epvToMarket,
	}, nil
}

// portfolioValueSeries re-prices the positions across the union of
// observation dates, keeping days where at least one holding priced.
func portfolioValueSeries(
	positions []domain.Position,
	historicalPrices map[string][]domain.MarketData,
) []float64 {
	if len(historicalPrices) == 0 {
		return nil
	}

	dateSet := make(map[time.Time]struct{})
	for _, series := range historicalPrices {
		for _, md := range series {
			dateSet[md.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	if len(dates) < 2 {
		return nil
	}

	var values []float64
	for _, d := range dates {
		var dayValue float64
		for _, pos := range positions {
			series, ok := historicalPrices[pos.Symbol]
			if !ok {
				continue
			}
			for _, md := range series {
				if md.Date.Equal(d) {
					dayValue += pos.Shares * md.Price
					break
				}
			}
		}
		if dayValue > 0 {
			values = append(values, dayValue)
		}
	}
	return values
}

// portfolioBeta estimates beta from the benchmark: sample covariance
// over benchmark variance, defaulting to 1.0 when the benchmark is
// absent or mismatched.
func portfolioBeta(portfolioReturns, benchmarkReturns []float64) float64 {
	if len(benchmarkReturns) == 0 || len(benchmarkReturns) != len(portfolioReturns) {
		return 1.0
	}
	if len(portfolioReturns) < 2 {
		return 1.0
	}

	benchmarkStd := formulas.PopStdDev(benchmarkReturns)
	benchmarkVariance := benchmarkStd * benchmarkStd
	if benchmarkVariance <= 0 {
		return 1.0
	}
	return formulas.Covariance(portfolioReturns, benchmarkReturns) / benchmarkVariance
}

// trackingError is the annualized standard deviation of excess returns
// over the benchmark, nil when no comparable benchmark exists.
func trackingError(portfolioReturns, benchmarkReturns []float64) *float64 {
	if len(benchmarkReturns) == 0 || len(benchmarkReturns) != len(portfolioReturns) {
		return nil
	}
	if len(portfolioReturns) < 2 {
		return nil
	}

	excess := make([]float64, len(portfolioReturns))
	for i := range portfolioReturns {
		excess[i] = portfolioReturns[i] - benchmarkReturns[i]
	}
	te := formulas.PopStdDev(excess) * math.Sqrt(formulas.TradingDaysPerYear)
	return &te
}
