// Package valuation implements the multi-method valuation engine: DCF,
// asset-based, and market-multiples valuations, plus a Monte Carlo
// simulation for valuation uncertainty. The methods are independent of
// the EPV calculation and are combined externally for blended reporting.
package valuation

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/Bwillia13x/epv-pm/internal/config"
	"github.com/Bwillia13x/epv-pm/internal/domain"
)

// sharesOutstandingFallback is used when neither an explicit share count
// nor an EPS-derived estimate exists in the income history.
const sharesOutstandingFallback = 1e6

// Engine computes valuations from historical financial statements.
// Every method produces a fresh result per call; nothing is cached.
type Engine struct {
	cfg       config.AnalysisConfig
	multiples config.MultiplesTable
	log       zerolog.Logger
}

// NewEngine creates a valuation engine.
func NewEngine(cfg config.AnalysisConfig, multiples config.MultiplesTable, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		multiples: multiples,
		log:       log.With().Str("component", "valuation").Logger(),
	}
}

// sharesOutstanding resolves the share count from the income history:
// most recent explicit figure, else derived from net income and EPS,
// else a fallback that keeps division well-defined.
func (e *Engine) sharesOutstanding(income []domain.IncomeStatement) (float64, bool) {
	sorted := make([]domain.IncomeStatement, len(income))
	copy(sorted, income)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FiscalYear > sorted[j].FiscalYear })

	for _, stmt := range sorted {
		if stmt.SharesOutstanding != nil && *stmt.SharesOutstanding > 0 {
			return *stmt.SharesOutstanding, true
		}
	}
	for _, stmt := range sorted {
		if stmt.EPS != nil && stmt.NetIncome != nil && *stmt.EPS != 0 {
			return *stmt.NetIncome / *stmt.EPS, true
		}
	}
	return sharesOutstandingFallback, false
}

func latestIncomeStatement(income []domain.IncomeStatement) *domain.IncomeStatement {
	var latest *domain.IncomeStatement
	for i := range income {
		if latest == nil || income[i].FiscalYear > latest.FiscalYear {
			latest = &income[i]
		}
	}
	return latest
}

func latestBalanceSheet(balance []domain.BalanceSheet) *domain.BalanceSheet {
	var latest *domain.BalanceSheet
	for i := range balance {
		if latest == nil || balance[i].FiscalYear > latest.FiscalYear {
			latest = &balance[i]
		}
	}
	return latest
}
