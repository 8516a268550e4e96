package valuation

import (
	"fmt"
	"math"
	"time"

	"github.com/Bwillia13x/epv-pm/internal/domain"
)

// Haircuts applied by the asset-based valuation.
const (
	intangiblesShareOfAssets = 0.10
	inventoryMarkdownRate    = 0.10
	receivablesProvisionRate = 0.05
	offBalanceSheetRate      = 0.02
	liquidationDiscount      = 0.70
	replacementPremium       = 1.20
)

// AssetBased computes an asset-based valuation from the latest balance
// sheet: tangible book value net of an intangibles heuristic, markdowns
// for inventory and receivables, an off-balance-sheet liability
// estimate, and derived liquidation and replacement values.
//
// The calculation is fully deterministic: identical inputs always yield
// bit-identical output.
func (e *Engine) AssetBased(
	symbol string,
	balance []domain.BalanceSheet,
	income []domain.IncomeStatement,
) (*domain.AssetBasedResult, error) {
	e.log.Info().Str("symbol", symbol).Msg("Calculating asset-based valuation")

	latest := latestBalanceSheet(balance)
	if latest == nil {
		return nil, fmt.Errorf("%w: no balance sheets supplied", domain.ErrInsufficientHistory)
	}

	result := &domain.AssetBasedResult{
		Symbol:               symbol,
		CalculationDate:      time.Now().UTC(),
		AssetAdjustments:     make(map[string]float64),
		LiabilityAdjustments: make(map[string]float64),
	}

	shares, explicit := e.sharesOutstanding(income)
	if !explicit {
		result.Degraded = true
		result.Warnings = append(result.Warnings, "shares outstanding unavailable: using fallback share count")
	}

	var totalEquity float64
	if latest.TotalEquity != nil {
		totalEquity = *latest.TotalEquity
		result.BookValuePerShare = totalEquity / shares
	} else {
		result.Degraded = true
		result.Warnings = append(result.Warnings, "total equity unavailable: book value treated as zero")
	}

	// Intangibles approximated as a fixed share of total assets
	var intangibles float64
	if latest.TotalAssets != nil && latest.TotalEquity != nil {
		intangibles = math.Max(0, *latest.TotalAssets*intangiblesShareOfAssets)
	}
	tangibleBookValue := totalEquity - intangibles
	result.TangibleBookValuePerShare = tangibleBookValue / shares

	if latest.Inventory != nil {
		result.AssetAdjustments["inventory_markdown"] = -*latest.Inventory * inventoryMarkdownRate
	}
	if latest.Receivables != nil {
		result.AssetAdjustments["receivables_provision"] = -*latest.Receivables * receivablesProvisionRate
	}
	if latest.TotalAssets != nil {
		result.LiabilityAdjustments["off_balance_sheet_estimate"] = *latest.TotalAssets * offBalanceSheetRate
	}

	var totalAssetAdjustments, totalLiabilityAdjustments float64
	for _, adj := range result.AssetAdjustments {
		totalAssetAdjustments += adj
	}
	for _, adj := range result.LiabilityAdjustments {
		totalLiabilityAdjustments += adj
	}

	result.AdjustedBookValue = totalEquity + totalAssetAdjustments - totalLiabilityAdjustments
	result.AdjustedBookValuePerShare = result.AdjustedBookValue / shares

	result.LiquidationValue = result.AdjustedBookValue * liquidationDiscount
	result.LiquidationValuePerShare = result.LiquidationValue / shares
	result.ReplacementCost = result.AdjustedBookValue * replacementPremium

	return result, nil
}
