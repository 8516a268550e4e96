// Package main exercises the valuation engine end to end with synthetic
// financial data: EPV calculation with quality scoring, the DCF,
// asset-based, multiples, and Monte Carlo valuations, portfolio
// optimization under a risk budget, and a rebalancing check. It takes
// no arguments and touches no network or disk.
package main

import (
	"os"
	"time"

	"github.com/Bwillia13x/epv-pm/internal/config"
	"github.com/Bwillia13x/epv-pm/internal/domain"
	"github.com/Bwillia13x/epv-pm/internal/modules/epv"
	"github.com/Bwillia13x/epv-pm/internal/modules/optimization"
	"github.com/Bwillia13x/epv-pm/internal/modules/valuation"
	"github.com/Bwillia13x/epv-pm/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})
	logger.SetGlobalLogger(log)

	calculator := epv.NewCalculator(cfg.Analysis, log)
	engine := valuation.NewEngine(cfg.Analysis, cfg.Multiples, log)
	optimizer := optimization.NewOptimizer(cfg.RiskModel, log)
	cache := epv.NewSnapshotCache(time.Hour)

	company := sampleCompany("DEMO")
	price := domain.Float(45.0)

	epvResult, err := calculator.CalculateEPVCached(
		cache, company.symbol, company.income, company.balance, company.cashflow, company.ratios, price,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("EPV calculation failed")
	}
	log.Info().
		Str("symbol", epvResult.Symbol).
		Float64("epv_per_share", epvResult.EPVPerShare).
		Float64("quality_score", epvResult.QualityScore).
		Float64("cost_of_capital", epvResult.CostOfCapital).
		Bool("degraded", epvResult.Degraded).
		Msg("EPV result")
	if epvResult.MarginOfSafety != nil {
		log.Info().Float64("margin_of_safety", *epvResult.MarginOfSafety).Msg("Margin of safety vs current price")
	}

	dcf, err := engine.DCF(company.symbol, company.income, company.balance, company.cashflow, valuation.DCFOptions{})
	if err != nil {
		log.Fatal().Err(err).Msg("DCF valuation failed")
	}
	log.Info().
		Float64("dcf_per_share", dcf.DCFPerShare).
		Float64("discount_rate", dcf.DiscountRate).
		Float64("terminal_growth", dcf.TerminalGrowthRate).
		Msg("DCF result")

	assetBased, err := engine.AssetBased(company.symbol, company.balance, company.income)
	if err != nil {
		log.Fatal().Err(err).Msg("Asset-based valuation failed")
	}
	log.Info().
		Float64("adjusted_book_value_ps", assetBased.AdjustedBookValuePerShare).
		Float64("liquidation_value_ps", assetBased.LiquidationValuePerShare).
		Msg("Asset-based result")

	multiples, err := engine.MarketMultiples(company.symbol, company.income, company.balance, price, "Technology")
	if err != nil {
		log.Fatal().Err(err).Msg("Multiples valuation failed")
	}
	log.Info().
		Float64("average_value", multiples.AverageValue).
		Float64("median_value", multiples.MedianValue).
		Msg("Market multiples result")

	seed := uint64(42)
	mc, err := engine.MonteCarlo(company.symbol, dcf.DCFPerShare, valuation.VolatilityAssumptions{}, 5000, valuation.MonteCarloOptions{Seed: &seed})
	if err != nil {
		log.Fatal().Err(err).Msg("Monte Carlo simulation failed")
	}
	log.Info().
		Float64("mean_value", mc.MeanValue).
		Float64("probability_of_loss", mc.ProbabilityOfLoss).
		Float64("upside_potential", mc.UpsidePotential).
		Msg("Monte Carlo result")

	candidates := []domain.Candidate{
		{Symbol: "DEMO", Sector: "Technology", EPVPerShare: epvResult.EPVPerShare, CurrentPrice: *price, QualityScore: epvResult.QualityScore, CurrentWeight: 0.30},
		{Symbol: "HLTH", Sector: "Healthcare", EPVPerShare: 80.0, CurrentPrice: 62.0, QualityScore: 0.72, CurrentWeight: 0.40},
		{Symbol: "INDL", Sector: "Industrial", EPVPerShare: 55.0, CurrentPrice: 50.0, QualityScore: 0.61, CurrentWeight: 0.30},
	}

	budget := optimization.NewRiskBudget(0.15, 0.40, 0.50)
	optResult, err := optimizer.Optimize(candidates, 1_000_000, budget, optimization.ObjectiveMaxEPVQuality)
	if err != nil {
		log.Fatal().Err(err).Msg("Portfolio optimization failed")
	}
	for _, alloc := range optResult.Allocations {
		log.Info().
			Str("symbol", alloc.Symbol).
			Float64("target_weight", alloc.TargetWeight).
			Str("action", string(alloc.Action)).
			Float64("conviction", alloc.Conviction).
			Msg("Allocation")
	}

	positions := []domain.Position{
		{Symbol: "DEMO", Shares: 6000, CurrentPrice: 45.0, MarketValue: 270000, EPVPerShare: epvResult.EPVPerShare},
		{Symbol: "HLTH", Shares: 6500, CurrentPrice: 62.0, MarketValue: 403000, EPVPerShare: 80.0},
		{Symbol: "INDL", Shares: 6540, CurrentPrice: 50.0, MarketValue: 327000, EPVPerShare: 55.0},
	}
	plan, err := optimizer.RebalancingPlan(positions, optResult.Allocations, 0.05, 0.001)
	if err != nil {
		log.Fatal().Err(err).Msg("Rebalancing plan failed")
	}
	if plan == nil {
		log.Info().Msg("Portfolio within rebalancing tolerance")
	} else {
		log.Info().
			Str("plan_id", plan.PlanID).
			Int("trades", len(plan.Trades)).
			Float64("cost", plan.RebalancingCost).
			Str("reason", plan.TriggerReason).
			Msg("Rebalancing plan")
	}
}

type sampleData struct {
	symbol   string
	income   []domain.IncomeStatement
	balance  []domain.BalanceSheet
	cashflow []domain.CashFlowStatement
	ratios   []domain.FinancialRatios
}

// sampleCompany builds five years of steady, profitable statements.
func sampleCompany(symbol string) sampleData {
	data := sampleData{symbol: symbol}
	baseRevenue := 1_000_000_000.0
	for i := 0; i < 5; i++ {
		year := 2021 + i
		growth := 1.0 + 0.06*float64(i)
		revenue := baseRevenue * growth
		netIncome := revenue * 0.12
		fcf := revenue * 0.10

		data.income = append(data.income, domain.IncomeStatement{
			Statement:         domain.Statement{Symbol: symbol, Period: domain.PeriodAnnual, FiscalYear: year},
			Revenue:           domain.Float(revenue),
			OperatingIncome:   domain.Float(revenue * 0.15),
			NetIncome:         domain.Float(netIncome),
			EPS:               domain.Float(netIncome / 30_000_000),
			SharesOutstanding: domain.Float(30_000_000),
		})
		data.balance = append(data.balance, domain.BalanceSheet{
			Statement:          domain.Statement{Symbol: symbol, Period: domain.PeriodAnnual, FiscalYear: year},
			TotalAssets:        domain.Float(revenue * 1.2),
			CurrentAssets:      domain.Float(revenue * 0.5),
			CashAndEquivalents: domain.Float(revenue * 0.2),
			Inventory:          domain.Float(revenue * 0.08),
			Receivables:        domain.Float(revenue * 0.1),
			TotalLiabilities:   domain.Float(revenue * 0.5),
			CurrentLiabilities: domain.Float(revenue * 0.25),
			LongTermDebt:       domain.Float(revenue * 0.2),
			TotalEquity:        domain.Float(revenue * 0.7),
		})
		data.cashflow = append(data.cashflow, domain.CashFlowStatement{
			Statement:           domain.Statement{Symbol: symbol, Period: domain.PeriodAnnual, FiscalYear: year},
			OperatingCashFlow:   domain.Float(revenue * 0.14),
			FreeCashFlow:        domain.Float(fcf),
			CapitalExpenditures: domain.Float(revenue * 0.04),
		})
		data.ratios = append(data.ratios, domain.FinancialRatios{
			Symbol:          symbol,
			CalculationDate: time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
			ROE:             domain.Float(17.0),
			NetMargin:       domain.Float(12.0),
			CurrentRatio:    domain.Float(2.0),
			DebtToEquity:    domain.Float(0.3),
		})
	}
	return data
}
