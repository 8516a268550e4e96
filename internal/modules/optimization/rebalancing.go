package optimization

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Bwillia13x/epv-pm/internal/domain"
)

// Rebalancing defaults.
const (
	defaultRebalancingThreshold = 0.05
	defaultTransactionCostRate  = 0.001

	// rebalancingBenefitRate is the assumed annual benefit per unit of
	// absolute allocation deviation removed.
	rebalancingBenefitRate = 0.02
)

// RebalancingPlan compares current positions against target allocations
// and, when the largest weight deviation reaches the threshold, produces
// a trade plan closing the breaching gaps.
//
// Returns (nil, nil) when the portfolio is within tolerance. A zero
// threshold or cost rate selects the defaults (5%, 10bps).
func (o *Optimizer) RebalancingPlan(
	currentPositions []domain.Position,
	targetAllocations []domain.Allocation,
	threshold float64,
	transactionCostRate float64,
) (*domain.RebalancingPlan, error) {
	if threshold <= 0 {
		threshold = defaultRebalancingThreshold
	}
	if transactionCostRate <= 0 {
		transactionCostRate = defaultTransactionCostRate
	}

	var totalValue float64
	for _, pos := range currentPositions {
		totalValue += pos.MarketValue
	}
	if totalValue <= 0 {
		return nil, domain.ErrNoPortfolioValue
	}

	currentWeights := make(map[string]float64, len(currentPositions))
	for _, pos := range currentPositions {
		currentWeights[pos.Symbol] = pos.MarketValue / totalValue
	}

	targetWeights := make(map[string]float64, len(targetAllocations))
	for _, alloc := range targetAllocations {
		targetWeights[alloc.Symbol] = alloc.TargetWeight
	}

	var maxDeviation float64
	for symbol, current := range currentWeights {
		deviation := math.Abs(current - targetWeights[symbol])
		if deviation > maxDeviation {
			maxDeviation = deviation
		}
	}
	for symbol, target := range targetWeights {
		deviation := math.Abs(target - currentWeights[symbol])
		if deviation > maxDeviation {
			maxDeviation = deviation
		}
	}

	if maxDeviation < threshold {
		o.log.Info().
			Float64("max_deviation", maxDeviation).
			Float64("threshold", threshold).
			Msg("No rebalancing needed")
		return nil, nil
	}

	var trades []domain.Allocation
	var totalTradeValue float64

	for _, alloc := range targetAllocations {
		currentWeight := currentWeights[alloc.Symbol]
		weightDiff := alloc.TargetWeight - currentWeight

		if math.Abs(weightDiff) <= threshold {
			continue
		}

		dollarAmount := math.Abs(weightDiff) * totalValue
		totalTradeValue += dollarAmount

		action := domain.ActionSell
		if weightDiff > 0 {
			action = domain.ActionBuy
		}
		var sharesToTrade float64
		if alloc.CurrentPrice > 0 {
			sharesToTrade = dollarAmount / alloc.CurrentPrice
		}

		trades = append(trades, domain.Allocation{
			Symbol:         alloc.Symbol,
			TargetWeight:   alloc.TargetWeight,
			CurrentWeight:  currentWeight,
			Action:         action,
			SharesToTrade:  sharesToTrade,
			DollarAmount:   dollarAmount,
			EPVPerShare:    alloc.EPVPerShare,
			CurrentPrice:   alloc.CurrentPrice,
			MarginOfSafety: alloc.MarginOfSafety,
			QualityScore:   alloc.QualityScore,
			Conviction:     alloc.Conviction,
		})
	}

	var totalDeviation float64
	for symbol, current := range currentWeights {
		totalDeviation += math.Abs(targetWeights[symbol] - current)
	}
	for symbol, target := range targetWeights {
		if _, held := currentWeights[symbol]; !held {
			totalDeviation += math.Abs(target)
		}
	}

	plan := &domain.RebalancingPlan{
		PlanID:              uuid.NewString(),
		RebalanceDate:       time.Now().UTC(),
		CurrentAllocations:  currentWeights,
		TargetAllocations:   targetWeights,
		Trades:              trades,
		CurrentDeviation:    maxDeviation,
		RebalancingCost:     totalTradeValue * transactionCostRate,
		ExpectedImprovement: totalDeviation * rebalancingBenefitRate,
		TriggerReason: fmt.Sprintf(
			"Maximum deviation (%.1f%%) exceeds threshold (%.1f%%)",
			maxDeviation*100, threshold*100,
		),
	}

	o.log.Info().
		Str("plan_id", plan.PlanID).
		Int("trades", len(trades)).
		Float64("max_deviation", maxDeviation).
		Msg("Rebalancing plan generated")

	return plan, nil
}
