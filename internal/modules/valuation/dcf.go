package valuation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Bwillia13x/epv-pm/internal/domain"
	"github.com/Bwillia13x/epv-pm/pkg/formulas"
)

// Revenue growth clamps for projections.
const (
	minProjectedGrowth = 0.02
	maxProjectedGrowth = 0.15

	// minTerminalSpread keeps the Gordon denominator away from zero when
	// terminal growth approaches the discount rate.
	minTerminalSpread = 0.005
)

// DCFOptions controls a DCF valuation. Zero values select defaults:
// five projection years, the configured terminal growth rate, and an
// estimated discount rate.
type DCFOptions struct {
	ProjectionYears    int
	TerminalGrowthRate float64
	DiscountRate       *float64
}

// DCF computes a discounted cash flow valuation.
//
// Revenues are projected from historical growth, blending the recent
// three-year average toward the full-history average with an 0.8^year
// decay and clamping each year to [2%,15%]. Free cash flow follows the
// historical FCF margin (or net margin x 0.8 when no FCF history
// exists) with a 10% conservatism discount.
//
// Returns domain.ErrInsufficientHistory when fewer than three years of
// usable revenue exist.
func (e *Engine) DCF(
	symbol string,
	income []domain.IncomeStatement,
	balance []domain.BalanceSheet,
	cashflow []domain.CashFlowStatement,
	opts DCFOptions,
) (*domain.DCFResult, error) {
	e.log.Info().Str("symbol", symbol).Msg("Calculating DCF valuation")

	projectionYears := opts.ProjectionYears
	if projectionYears <= 0 {
		projectionYears = 5
	}
	terminalGrowth := opts.TerminalGrowthRate
	if terminalGrowth == 0 {
		terminalGrowth = e.cfg.DefaultTerminalGrowth
	}

	result := &domain.DCFResult{
		Symbol:          symbol,
		CalculationDate: time.Now().UTC(),
		ProjectionYears: projectionYears,
	}

	var discountRate float64
	if opts.DiscountRate != nil {
		discountRate = *opts.DiscountRate
	} else {
		discountRate = e.estimateDiscountRate(balance)
	}

	// Keep the Gordon denominator stable
	if terminalGrowth >= discountRate-minTerminalSpread {
		clamped := discountRate - minTerminalSpread
		e.log.Warn().
			Str("symbol", symbol).
			Float64("terminal_growth", terminalGrowth).
			Float64("discount_rate", discountRate).
			Float64("clamped_growth", clamped).
			Msg("Terminal growth too close to discount rate, clamping")
		result.Degraded = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("terminal growth %.3f clamped to %.3f to keep it below the discount rate", terminalGrowth, clamped))
		terminalGrowth = clamped
	}
	result.DiscountRate = discountRate
	result.TerminalGrowthRate = terminalGrowth

	revenueProjections, err := e.projectRevenues(income, projectionYears)
	if err != nil {
		return nil, err
	}
	result.RevenueProjections = revenueProjections

	fcfProjections := e.projectFreeCashFlows(income, cashflow, revenueProjections)
	result.FCFProjections = fcfProjections

	var presentValueFCF float64
	for i, fcf := range fcfProjections {
		presentValueFCF += fcf / math.Pow(1+discountRate, float64(i+1))
	}
	result.PresentValueFCF = presentValueFCF

	terminalFCF := fcfProjections[len(fcfProjections)-1] * (1 + terminalGrowth)
	terminalValue := terminalFCF / (discountRate - terminalGrowth)
	terminalPV := terminalValue / math.Pow(1+discountRate, float64(projectionYears))
	result.TerminalValue = terminalPV

	result.EnterpriseValue = presentValueFCF + terminalPV

	var netCash float64
	if latest := latestBalanceSheet(balance); latest != nil &&
		latest.CashAndEquivalents != nil && latest.LongTermDebt != nil {
		netCash = *latest.CashAndEquivalents - *latest.LongTermDebt
	}
	result.EquityValue = result.EnterpriseValue + netCash

	shares, explicit := e.sharesOutstanding(income)
	if !explicit {
		result.Degraded = true
		result.Warnings = append(result.Warnings, "shares outstanding unavailable: using fallback share count")
	}
	result.DCFPerShare = result.EquityValue / shares

	result.DiscountRateSensitivity, result.TerminalGrowthSensitivity = e.sensitivityAnalysis(
		fcfProjections, terminalFCF, shares, discountRate, terminalGrowth, netCash)

	e.log.Debug().
		Str("symbol", symbol).
		Float64("equity_value", result.EquityValue).
		Float64("dcf_per_share", result.DCFPerShare).
		Msg("DCF calculation complete")

	return result, nil
}

// projectRevenues projects revenue forward by blending the recent
// three-year growth average into the full-history average with an
// exponential 0.8^year decay.
func (e *Engine) projectRevenues(income []domain.IncomeStatement, years int) ([]float64, error) {
	type yearRevenue struct {
		year    int
		revenue float64
	}
	var revenues []yearRevenue
	for _, stmt := range income {
		if stmt.Revenue != nil && *stmt.Revenue > 0 {
			revenues = append(revenues, yearRevenue{stmt.FiscalYear, *stmt.Revenue})
		}
	}
	if len(revenues) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 years of revenue, have %d", domain.ErrInsufficientHistory, len(revenues))
	}
	sort.Slice(revenues, func(i, j int) bool { return revenues[i].year < revenues[j].year })

	growthRates := make([]float64, 0, len(revenues)-1)
	for i := 1; i < len(revenues); i++ {
		growthRates = append(growthRates, (revenues[i].revenue-revenues[i-1].revenue)/revenues[i-1].revenue)
	}

	recentGrowth := formulas.Mean(growthRates)
	if len(growthRates) >= 3 {
		recentGrowth = formulas.Mean(growthRates[len(growthRates)-3:])
	}
	longTermGrowth := formulas.Mean(growthRates)

	baseRevenue := revenues[len(revenues)-1].revenue
	projections := make([]float64, 0, years)
	for year := 0; year < years; year++ {
		decay := math.Pow(0.8, float64(year))
		growth := recentGrowth*decay + longTermGrowth*(1-decay)
		growth = math.Max(growth, minProjectedGrowth)
		growth = math.Min(growth, maxProjectedGrowth)

		if year == 0 {
			projections = append(projections, baseRevenue*(1+growth))
		} else {
			projections = append(projections, projections[year-1]*(1+growth))
		}
	}
	return projections, nil
}

// projectFreeCashFlows applies the historical FCF margin to projected
// revenue. When no direct FCF history exists, the net income margin
// discounted by 20% stands in. A further 10% conservatism haircut is
// applied either way.
func (e *Engine) projectFreeCashFlows(
	income []domain.IncomeStatement,
	cashflow []domain.CashFlowStatement,
	revenueProjections []float64,
) []float64 {
	incomeByYear := make(map[int]*domain.IncomeStatement, len(income))
	for i := range income {
		incomeByYear[income[i].FiscalYear] = &income[i]
	}

	var fcfMargins []float64
	for _, cf := range cashflow {
		if cf.FreeCashFlow == nil {
			continue
		}
		matching, ok := incomeByYear[cf.FiscalYear]
		if !ok || matching.Revenue == nil || *matching.Revenue <= 0 {
			continue
		}
		fcfMargins = append(fcfMargins, *cf.FreeCashFlow / *matching.Revenue)
	}

	if len(fcfMargins) == 0 {
		var netMargins []float64
		for _, stmt := range income {
			if stmt.Revenue != nil && stmt.NetIncome != nil && *stmt.Revenue > 0 {
				netMargins = append(netMargins, *stmt.NetIncome / *stmt.Revenue)
			}
		}
		avgNetMargin := 0.1
		if len(netMargins) > 0 {
			avgNetMargin = formulas.Mean(netMargins)
		}
		fcfMargins = []float64{avgNetMargin * 0.8}
	}

	conservativeMargin := formulas.Mean(fcfMargins) * 0.9

	projections := make([]float64, len(revenueProjections))
	for i, revenue := range revenueProjections {
		projections[i] = revenue * conservativeMargin
	}
	return projections
}

// estimateDiscountRate builds a WACC-like rate from the market
// assumptions plus size and leverage adjustments, floored at 8%.
func (e *Engine) estimateDiscountRate(balance []domain.BalanceSheet) float64 {
	baseRate := e.cfg.RiskFreeRate + e.cfg.MarketRiskPremium

	latest := latestBalanceSheet(balance)

	sizeAdjustment := 0.02
	if latest != nil && latest.TotalAssets != nil {
		switch {
		case *latest.TotalAssets < 1e9:
			sizeAdjustment = 0.02
		case *latest.TotalAssets < 10e9:
			sizeAdjustment = 0.01
		default:
			sizeAdjustment = 0
		}
	}

	leverageAdjustment := 0.0
	if latest != nil && latest.LongTermDebt != nil && latest.TotalEquity != nil && *latest.TotalEquity != 0 {
		debtToEquity := *latest.LongTermDebt / *latest.TotalEquity
		switch {
		case debtToEquity > 1.0:
			leverageAdjustment = 0.01
		case debtToEquity > 0.5:
			leverageAdjustment = 0.005
		}
	}

	return math.Max(baseRate+sizeAdjustment+leverageAdjustment, 0.08)
}

// sensitivityAnalysis recomputes the per-share value over a discount
// rate grid (+-1pp) and a terminal growth grid (+-0.5pp). Combinations
// where growth would reach the discount rate are skipped entirely.
func (e *Engine) sensitivityAnalysis(
	fcfProjections []float64,
	terminalFCF float64,
	shares float64,
	baseDiscountRate float64,
	baseTerminalGrowth float64,
	netCash float64,
) (map[string]float64, map[string]float64) {
	perShareValue := func(discountRate, terminalGrowth float64) float64 {
		var pvFCF float64
		for i, fcf := range fcfProjections {
			pvFCF += fcf / math.Pow(1+discountRate, float64(i+1))
		}
		terminalValue := terminalFCF / (discountRate - terminalGrowth) /
			math.Pow(1+discountRate, float64(len(fcfProjections)))
		equityValue := pvFCF + terminalValue + netCash
		if shares <= 0 {
			return 0
		}
		return equityValue / shares
	}

	discountSensitivity := make(map[string]float64)
	for _, dr := range []float64{baseDiscountRate - 0.01, baseDiscountRate, baseDiscountRate + 0.01} {
		if baseTerminalGrowth >= dr {
			continue
		}
		discountSensitivity[fmt.Sprintf("%.1f%%", dr*100)] = perShareValue(dr, baseTerminalGrowth)
	}

	growthSensitivity := make(map[string]float64)
	for _, gr := range []float64{baseTerminalGrowth - 0.005, baseTerminalGrowth, baseTerminalGrowth + 0.005} {
		if gr >= baseDiscountRate {
			continue
		}
		growthSensitivity[fmt.Sprintf("%.1f%%", gr*100)] = perShareValue(baseDiscountRate, gr)
	}

	return discountSensitivity, growthSensitivity
}
