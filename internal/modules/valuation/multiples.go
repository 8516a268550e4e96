package valuation

import (
	"fmt"
	"time"

	"github.com/Bwillia13x/epv-pm/internal/domain"
	"github.com/Bwillia13x/epv-pm/pkg/formulas"
)

// MarketMultiples computes a valuation from trailing multiples against
// the sector's benchmark table. Unknown sectors fall back to the
// Default bucket. Each implied value is only produced when the
// underlying metric is available; the mean and median summarize
// whichever estimates exist.
func (e *Engine) MarketMultiples(
	symbol string,
	income []domain.IncomeStatement,
	balance []domain.BalanceSheet,
	currentPrice *float64,
	sector string,
) (*domain.MultiplesResult, error) {
	e.log.Info().Str("symbol", symbol).Str("sector", sector).Msg("Calculating market multiples valuation")

	latestIncome := latestIncomeStatement(income)
	latestBS := latestBalanceSheet(balance)
	if latestIncome == nil || latestBS == nil {
		return nil, fmt.Errorf("%w: need at least one income statement and one balance sheet", domain.ErrInsufficientHistory)
	}

	shares, _ := e.sharesOutstanding(income)
	benchmark := e.multiples.ForSector(sector)

	result := &domain.MultiplesResult{
		Symbol:          symbol,
		CalculationDate: time.Now().UTC(),
		Sector:          sector,
		IndustryMultiples: map[string]float64{
			"pe":        benchmark.PE,
			"pb":        benchmark.PB,
			"ps":        benchmark.PS,
			"ev_ebitda": benchmark.EVEBITDA,
		},
	}

	// Observed trailing multiples, when price data allows
	var marketCap *float64
	if currentPrice != nil && shares > 0 {
		mc := *currentPrice * shares
		marketCap = &mc
	}

	if currentPrice != nil && latestIncome.EPS != nil && *latestIncome.EPS > 0 {
		pe := *currentPrice / *latestIncome.EPS
		result.TrailingPE = &pe
	}
	if currentPrice != nil && latestBS.TotalEquity != nil && shares > 0 {
		bookValuePerShare := *latestBS.TotalEquity / shares
		if bookValuePerShare > 0 {
			pb := *currentPrice / bookValuePerShare
			result.PriceToBook = &pb
		}
	}
	if marketCap != nil && latestIncome.Revenue != nil && *latestIncome.Revenue > 0 {
		ps := *marketCap / *latestIncome.Revenue
		result.PriceToSales = &ps
	}

	// Implied values from benchmark multiples
	var estimates []float64

	if latestIncome.EPS != nil && *latestIncome.EPS > 0 {
		v := *latestIncome.EPS * benchmark.PE
		result.PEBasedValue = &v
		estimates = append(estimates, v)
	}
	if latestBS.TotalEquity != nil && shares > 0 {
		v := *latestBS.TotalEquity / shares * benchmark.PB
		result.PBBasedValue = &v
		estimates = append(estimates, v)
	}
	if latestIncome.Revenue != nil && shares > 0 {
		v := *latestIncome.Revenue / shares * benchmark.PS
		result.PSBasedValue = &v
		estimates = append(estimates, v)
	}

	if len(estimates) > 0 {
		result.AverageValue = formulas.Mean(estimates)
		result.MedianValue = formulas.Median(estimates)
	}

	return result, nil
}
