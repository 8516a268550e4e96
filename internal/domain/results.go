package domain

import "time"

// EPVResult holds the output of an earnings power valuation.
//
// Invariants: EPVPerShare = NormalizedEarnings / CostOfCapital /
// SharesOutstanding, CostOfCapital >= 0.06, QualityScore in [0,1].
type EPVResult struct {
	Symbol          string    `json:"symbol"`
	CalculationDate time.Time `json:"calculation_date"`

	NormalizedEarnings float64 `json:"normalized_earnings"`
	SharesOutstanding  float64 `json:"shares_outstanding"`
	CostOfCapital      float64 `json:"cost_of_capital"`

	EarningsPerShare float64 `json:"earnings_per_share"`
	EPVPerShare      float64 `json:"epv_per_share"`
	EPVTotal         float64 `json:"epv_total"`

	CurrentPrice   *float64 `json:"current_price,omitempty"`
	MarginOfSafety *float64 `json:"margin_of_safety,omitempty"`

	QualityScore      float64            `json:"quality_score"`
	QualityComponents map[string]float64 `json:"quality_components"`

	// GrowthScenarios maps a scenario label ("zero_growth", "2%_growth")
	// to a per-share value. Gordon-growth scenarios are only present when
	// the growth rate is below the cost of capital.
	GrowthScenarios map[string]float64 `json:"growth_scenarios"`

	// Degraded is set when a numeric guard fired (negative normalized
	// earnings floored, shares-outstanding fallback, ...). The value is
	// still usable but carries lower confidence. Warnings lists the
	// guards that fired.
	Degraded bool     `json:"degraded"`
	Warnings []string `json:"warnings,omitempty"`
}

// DCFResult holds a discounted cash flow valuation. Produced fresh on
// every call, never cached.
type DCFResult struct {
	Symbol          string    `json:"symbol"`
	CalculationDate time.Time `json:"calculation_date"`

	ProjectionYears    int       `json:"projection_years"`
	RevenueProjections []float64 `json:"revenue_projections"`
	FCFProjections     []float64 `json:"fcf_projections"`

	TerminalGrowthRate float64 `json:"terminal_growth_rate"`
	DiscountRate       float64 `json:"discount_rate"`

	PresentValueFCF float64 `json:"present_value_fcf"`
	TerminalValue   float64 `json:"terminal_value"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
	DCFPerShare     float64 `json:"dcf_per_share"`

	// Sensitivity maps grid labels ("9.0%", "2.0%") to per-share values.
	// Combinations where terminal growth >= discount rate are skipped.
	DiscountRateSensitivity   map[string]float64 `json:"discount_rate_sensitivity"`
	TerminalGrowthSensitivity map[string]float64 `json:"terminal_growth_sensitivity"`

	Degraded bool     `json:"degraded"`
	Warnings []string `json:"warnings,omitempty"`
}

// AssetBasedResult holds an asset-based valuation. Deterministic: two
// calls with identical inputs produce bit-identical results.
type AssetBasedResult struct {
	Symbol          string    `json:"symbol"`
	CalculationDate time.Time `json:"calculation_date"`

	BookValuePerShare         float64 `json:"book_value_per_share"`
	TangibleBookValuePerShare float64 `json:"tangible_book_value_per_share"`

	AssetAdjustments     map[string]float64 `json:"asset_adjustments"`
	LiabilityAdjustments map[string]float64 `json:"liability_adjustments"`

	AdjustedBookValue         float64 `json:"adjusted_book_value"`
	AdjustedBookValuePerShare float64 `json:"adjusted_book_value_per_share"`
	LiquidationValue          float64 `json:"liquidation_value"`
	LiquidationValuePerShare  float64 `json:"liquidation_value_per_share"`
	ReplacementCost           float64 `json:"replacement_cost"`

	Degraded bool     `json:"degraded"`
	Warnings []string `json:"warnings,omitempty"`
}

// MultiplesResult holds a market multiples valuation.
type MultiplesResult struct {
	Symbol          string    `json:"symbol"`
	CalculationDate time.Time `json:"calculation_date"`

	Sector string `json:"sector"`

	TrailingPE   *float64 `json:"trailing_pe,omitempty"`
	PriceToBook  *float64 `json:"price_to_book,omitempty"`
	PriceToSales *float64 `json:"price_to_sales,omitempty"`

	IndustryMultiples map[string]float64 `json:"industry_multiples"`

	PEBasedValue *float64 `json:"pe_based_value,omitempty"`
	PBBasedValue *float64 `json:"pb_based_value,omitempty"`
	PSBasedValue *float64 `json:"ps_based_value,omitempty"`

	AverageValue float64 `json:"average_value"`
	MedianValue  float64 `json:"median_value"`
}

// MonteCarloResult holds the outcome of a valuation uncertainty
// simulation. ValueDistribution always has exactly NumSimulations
// entries, in draw order.
type MonteCarloResult struct {
	RunID          string    `json:"run_id"`
	Symbol         string    `json:"symbol"`
	SimulationDate time.Time `json:"simulation_date"`

	NumSimulations int       `json:"num_simulations"`
	BaseValuation  float64   `json:"base_valuation"`
	Confidences    []float64 `json:"confidences"`

	ValueDistribution []float64 `json:"value_distribution"`
	MeanValue         float64   `json:"mean_value"`
	MedianValue       float64   `json:"median_value"`
	StdDeviation      float64   `json:"std_deviation"`

	// ValueAtRisk maps a confidence level (0.05, 0.25, 0.75, 0.95) to the
	// corresponding percentile of the simulated distribution.
	ValueAtRisk map[float64]float64 `json:"value_at_risk"`

	// ProbabilityOfLoss is the fraction of draws below 80% of the base
	// valuation; UpsidePotential the fraction above 120%.
	ProbabilityOfLoss float64 `json:"probability_of_loss"`
	UpsidePotential   float64 `json:"upside_potential"`
}
