package domain

import "time"

// Action classifies a recommended trade direction.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// RiskBudget is an immutable constraint set supplied to the optimizer.
type RiskBudget struct {
	TotalRiskBudget   float64            `json:"total_risk_budget"`
	SectorAllocations map[string]float64 `json:"sector_allocations"`

	PositionLimits      map[string]float64 `json:"position_limits"`
	ConcentrationLimits map[string]float64 `json:"concentration_limits"`

	MaxPositionSize    float64  `json:"max_position_size"`
	MaxSectorExposure  float64  `json:"max_sector_exposure"`
	MaxSingleStockRisk float64  `json:"max_single_stock_risk"`
	TargetTrackingErr  *float64 `json:"target_tracking_error,omitempty"`
}

// Allocation is a recommended portfolio weight for a single candidate.
//
// Invariants across a successful optimization: target weights sum to 1
// within tolerance and each weight respects the risk budget's maximum
// position size. Conviction = TargetWeight * QualityScore.
type Allocation struct {
	Symbol        string  `json:"symbol"`
	TargetWeight  float64 `json:"target_weight"`
	CurrentWeight float64 `json:"current_weight"`
	Action        Action  `json:"action"`
	SharesToTrade float64 `json:"shares_to_trade"`
	DollarAmount  float64 `json:"dollar_amount"`

	EPVPerShare    float64 `json:"epv_per_share"`
	CurrentPrice   float64 `json:"current_price"`
	MarginOfSafety float64 `json:"margin_of_safety"`
	QualityScore   float64 `json:"quality_score"`
	Conviction     float64 `json:"conviction"`
}

// OptimizationResult wraps the allocation list with solver diagnostics.
type OptimizationResult struct {
	Allocations []Allocation `json:"allocations"`
	Objective   string       `json:"objective"`

	// Fallback is set when the solver failed to converge and the result
	// is the equal-weight fallback rather than a solved optimum.
	Fallback bool     `json:"fallback"`
	Warnings []string `json:"warnings,omitempty"`
}

// RebalancingPlan is an ephemeral set of trades produced when the
// portfolio drifts beyond the rebalancing threshold.
type RebalancingPlan struct {
	PlanID        string    `json:"plan_id"`
	RebalanceDate time.Time `json:"rebalance_date"`

	CurrentAllocations map[string]float64 `json:"current_allocations"`
	TargetAllocations  map[string]float64 `json:"target_allocations"`
	Trades             []Allocation       `json:"trades"`

	CurrentDeviation    float64 `json:"current_deviation"`
	RebalancingCost     float64 `json:"rebalancing_cost"`
	ExpectedImprovement float64 `json:"expected_improvement"`

	TriggerReason string `json:"trigger_reason"`
}

// PortfolioMetrics holds performance and risk statistics for a set of
// positions over a shared price history.
type PortfolioMetrics struct {
	PortfolioValue   float64 `json:"portfolio_value"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`

	PortfolioBeta     float64  `json:"portfolio_beta"`
	TrackingError     *float64 `json:"tracking_error,omitempty"`
	ValueAtRisk5Pct   float64  `json:"value_at_risk_5pct"`
	ExpectedShortfall float64  `json:"expected_shortfall"`

	WeightedEPV            float64 `json:"weighted_epv"`
	WeightedMarginOfSafety float64 `json:"weighted_margin_of_safety"`
	WeightedQualityScore   float64 `json:"weighted_quality_score"`
	EPVToMarketRatio       float64 `json:"epv_to_market_ratio"`
}

// Candidate is an investment candidate fed into the optimizer, carrying
// the outputs of the EPV calculation alongside market context.
type Candidate struct {
	Symbol        string  `json:"symbol"`
	Sector        string  `json:"sector,omitempty"`
	EPVPerShare   float64 `json:"epv_per_share"`
	CurrentPrice  float64 `json:"current_price"`
	QualityScore  float64 `json:"quality_score"`
	CurrentWeight float64 `json:"current_weight"`
}
