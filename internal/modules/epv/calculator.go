// Package epv implements earnings power valuation: a company's
// sustainable earnings capitalized at its cost of capital, with no
// growth assumed. The approach follows Bruce Greenwald's methodology.
package epv

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/Bwillia13x/epv-pm/internal/config"
	"github.com/Bwillia13x/epv-pm/internal/domain"
	"github.com/Bwillia13x/epv-pm/pkg/formulas"
)

// sharesOutstandingFallback is used when neither an explicit share count
// nor an EPS-derived estimate is available. The resulting valuation is
// marked degraded.
const sharesOutstandingFallback = 1e9

// Calculator computes Earnings Power Value from historical statements.
type Calculator struct {
	cfg config.AnalysisConfig
	log zerolog.Logger
}

// NewCalculator creates an EPV calculator with the given market assumptions.
func NewCalculator(cfg config.AnalysisConfig, log zerolog.Logger) *Calculator {
	return &Calculator{
		cfg: cfg,
		log: log.With().Str("component", "epv").Logger(),
	}
}

// CalculateEPV computes the earnings power valuation for a company.
//
// Returns domain.ErrNoEarnings when no income statement carries a usable
// net income. Numeric instabilities (loss-making history, missing share
// counts) never fail: they resolve to conservative floors and mark the
// result degraded.
func (c *Calculator) CalculateEPV(
	symbol string,
	income []domain.IncomeStatement,
	balance []domain.BalanceSheet,
	cashflow []domain.CashFlowStatement,
	ratios []domain.FinancialRatios,
	currentPrice *float64,
) (*domain.EPVResult, error) {
	c.log.Info().Str("symbol", symbol).Int("income_statements", len(income)).Msg("Calculating EPV")

	result := &domain.EPVResult{
		Symbol:          symbol,
		CalculationDate: time.Now().UTC(),
	}

	normalized, err := c.normalizedEarnings(income, result)
	if err != nil {
		return nil, err
	}
	result.NormalizedEarnings = normalized

	shares := c.sharesOutstanding(income, result)
	result.SharesOutstanding = shares

	qualityScore, components := c.assessQuality(income, balance, ratios)
	result.QualityScore = qualityScore
	result.QualityComponents = components

	costOfCapital := c.costOfCapital(balance, qualityScore)
	result.CostOfCapital = costOfCapital

	result.EarningsPerShare = normalized / shares
	result.EPVTotal = normalized / costOfCapital
	result.EPVPerShare = result.EPVTotal / shares
	result.GrowthScenarios = c.growthScenarios(normalized, costOfCapital, shares)

	if currentPrice != nil && *currentPrice > 0 {
		result.CurrentPrice = currentPrice
		mos := (result.EPVPerShare - *currentPrice) / *currentPrice
		result.MarginOfSafety = &mos
	}

	c.log.Debug().
		Str("symbol", symbol).
		Float64("normalized_earnings", normalized).
		Float64("cost_of_capital", costOfCapital).
		Float64("epv_per_share", result.EPVPerShare).
		Bool("degraded", result.Degraded).
		Msg("EPV calculation complete")

	return result, nil
}

// normalizedEarnings blends several sustainable-earnings estimates:
// simple mean, recency-weighted mean (most recent year weighted 2x the
// oldest), median, and a discounted operating income figure when one is
// available. The blend is haircut by the configured conservatism factor
// and floored for loss-makers rather than failed.
func (c *Calculator) normalizedEarnings(income []domain.IncomeStatement, result *domain.EPVResult) (float64, error) {
	type earningRecord struct {
		year            int
		netIncome       float64
		operatingIncome *float64
	}

	records := make([]earningRecord, 0, len(income))
	for _, stmt := range income {
		if stmt.NetIncome == nil {
			continue
		}
		records = append(records, earningRecord{
			year:            stmt.FiscalYear,
			netIncome:       *stmt.NetIncome,
			operatingIncome: stmt.OperatingIncome,
		})
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: symbol %s", domain.ErrNoEarnings, result.Symbol)
	}

	// Most recent first
	sort.Slice(records, func(i, j int) bool { return records[i].year > records[j].year })

	netIncomes := make([]float64, len(records))
	for i, r := range records {
		netIncomes[i] = r.netIncome
	}
	meanNetIncome := formulas.Mean(netIncomes)

	weightedMean := meanNetIncome
	if len(netIncomes) >= 3 {
		weightedMean = recencyWeightedMean(netIncomes)
	}

	medianEarnings := formulas.Median(netIncomes)

	var operatingIncomes []float64
	for _, r := range records {
		if r.operatingIncome != nil {
			operatingIncomes = append(operatingIncomes, *r.operatingIncome)
		}
	}
	meanOperatingIncome := formulas.Mean(operatingIncomes)

	var normalized float64
	if meanOperatingIncome > 0 {
		// Operating income is more stable across the cycle; haircut it
		// to approximate after-tax earnings power.
		normalized = 0.6*(meanOperatingIncome*0.7) + 0.4*weightedMean
	} else {
		normalized = 0.6*weightedMean + 0.4*medianEarnings
	}

	normalized *= c.cfg.ConservatismFactor

	if normalized <= 0 {
		c.log.Warn().Str("symbol", result.Symbol).Msg("Normalized earnings non-positive, applying loss-maker floor")
		normalized = math.Max(meanNetIncome, 0) * 0.5
		result.Degraded = true
		result.Warnings = append(result.Warnings,
			"normalized earnings non-positive: floored at half of mean net income; EPV is not meaningful for loss-makers")
	}

	return normalized, nil
}

// recencyWeightedMean weights the most recent observation at 1.0 and the
// oldest at 0.5, linearly in between. Input must be ordered most recent
// first.
func recencyWeightedMean(values []float64) float64 {
	n := len(values)
	if n == 1 {
		return values[0]
	}

	var weightedSum, totalWeight float64
	for i, v := range values {
		w := 1.0 - 0.5*float64(i)/float64(n-1)
		weightedSum += v * w
		totalWeight += w
	}
	return weightedSum / totalWeight
}

// sharesOutstanding resolves the share count: most recent explicit
// figure, else derived from net income and EPS, else a large fallback
// that flags the result as degraded.
func (c *Calculator) sharesOutstanding(income []domain.IncomeStatement, result *domain.EPVResult) float64 {
	sorted := make([]domain.IncomeStatement, len(income))
	copy(sorted, income)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FiscalYear > sorted[j].FiscalYear })

	for _, stmt := range sorted {
		if stmt.SharesOutstanding != nil && *stmt.SharesOutstanding > 0 {
			return *stmt.SharesOutstanding
		}
	}

	for _, stmt := range sorted {
		if stmt.EPS != nil && stmt.NetIncome != nil && *stmt.EPS != 0 {
			return *stmt.NetIncome / *stmt.EPS
		}
	}

	c.log.Warn().Str("symbol", result.Symbol).Msg("Shares outstanding unavailable, using fallback share count")
	result.Degraded = true
	result.Warnings = append(result.Warnings, "shares outstanding unavailable: using fallback share count")
	return sharesOutstandingFallback
}

// costOfCapital approximates WACC: CAPM-style cost of equity with a
// quality tier adjustment, blended with after-tax cost of debt when
// leverage data exists. Floored at 6% (levered) or 8% (unlevered).
func (c *Calculator) costOfCapital(balance []domain.BalanceSheet, qualityScore float64) float64 {
	baseCostOfEquity := c.cfg.RiskFreeRate + c.cfg.MarketRiskPremium

	var qualityAdjustment float64
	switch {
	case qualityScore > 0.7:
		qualityAdjustment = -0.01
	case qualityScore < 0.3:
		qualityAdjustment = 0.03
	default:
		qualityAdjustment = 0.01
	}
	costOfEquity := baseCostOfEquity + qualityAdjustment

	latest := latestBalanceSheet(balance)
	if latest != nil && latest.LongTermDebt != nil && latest.TotalEquity != nil {
		debt := *latest.LongTermDebt
		equity := *latest.TotalEquity
		totalCapital := debt + equity

		if totalCapital > 0 {
			const taxRate = 0.25
			costOfDebt := c.cfg.RiskFreeRate + 0.02

			debtWeight := debt / totalCapital
			equityWeight := equity / totalCapital
			wacc := equityWeight*costOfEquity + debtWeight*costOfDebt*(1-taxRate)
			return math.Max(wacc, 0.06)
		}
	}

	return math.Max(costOfEquity, 0.08)
}

// growthScenarios computes per-share value under zero growth plus
// Gordon-growth variants. Scenarios where the growth rate reaches the
// cost of capital are omitted: the denominator degenerates.
func (c *Calculator) growthScenarios(normalized, costOfCapital, shares float64) map[string]float64 {
	scenarios := map[string]float64{
		"zero_growth": normalized / costOfCapital / shares,
	}

	for _, growth := range []float64{0.01, 0.02, 0.03, 0.05} {
		if growth >= costOfCapital {
			continue
		}
		value := normalized * (1 + growth) / (costOfCapital - growth) / shares
		scenarios[fmt.Sprintf("%.0f%%_growth", growth*100)] = value
	}

	return scenarios
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
