package epv

import (
	"math"
	"sort"

	"github.com/Bwillia13x/epv-pm/internal/domain"
	"github.com/Bwillia13x/epv-pm/pkg/formulas"
)

// QualityReport accompanies a standalone quality score with the
// component breakdown, a plain-language interpretation, and follow-up
// recommendations.
type QualityReport struct {
	OverallScore    float64            `json:"overall_score"`
	Components      map[string]float64 `json:"components"`
	Interpretation  string             `json:"interpretation"`
	Recommendations []string           `json:"recommendations"`
}

// QualityScore computes the standalone quality assessment. It is a pure
// function over the supplied statements and is reused by the valuation
// and portfolio layers.
func (c *Calculator) QualityScore(
	income []domain.IncomeStatement,
	balance []domain.BalanceSheet,
	ratios []domain.FinancialRatios,
) (float64, *QualityReport) {
	score, components := c.assessQuality(income, balance, ratios)

	return score, &QualityReport{
		OverallScore:    score,
		Components:      components,
		Interpretation:  interpretQualityScore(score),
		Recommendations: qualityRecommendations(components),
	}
}

// assessQuality scores five dimensions of business quality, each in
// [0,1], and combines them with the configured weights. Components with
// no weight entry receive the default weight; the final score is
// normalized by total weight and clamped to [0,1].
func (c *Calculator) assessQuality(
	income []domain.IncomeStatement,
	balance []domain.BalanceSheet,
	ratios []domain.FinancialRatios,
) (float64, map[string]float64) {
	components := make(map[string]float64)

	// Earnings stability: coefficient of variation of net income.
	if len(income) > 0 {
		var earnings []float64
		for _, stmt := range income {
			if stmt.NetIncome != nil {
				earnings = append(earnings, *stmt.NetIncome)
			}
		}
		if len(earnings) >= 3 {
			mean := formulas.Mean(earnings)
			cv := 1.0
			if mean > 0 {
				cv = formulas.PopStdDev(earnings) / mean
			}
			components["earnings_stability"] = math.Max(0, 1-cv)
		} else {
			components["earnings_stability"] = 0.5
		}
	}

	// Return on equity, in percentage points: 5% scores 0, 25% scores 1.
	if len(ratios) > 0 {
		var roes []float64
		for _, r := range ratios {
			if r.ROE != nil && *r.ROE > 0 {
				roes = append(roes, *r.ROE)
			}
		}
		if len(roes) > 0 {
			avgROE := formulas.Mean(roes)
			components["roe_quality"] = clamp01((avgROE - 5) / 20)
		} else {
			components["roe_quality"] = 0.3
		}
	}

	// Balance sheet strength: leverage and liquidity from the latest sheet.
	if latest := latestBalanceSheet(balance); latest != nil {
		if latest.LongTermDebt != nil && latest.TotalEquity != nil && *latest.TotalEquity != 0 {
			debtToEquity := *latest.LongTermDebt / *latest.TotalEquity
			components["leverage_quality"] = math.Max(0, 1-math.Min(1, debtToEquity/2))
		} else {
			// No debt data reads as low leverage
			components["leverage_quality"] = 0.8
		}

		if latest.CurrentAssets != nil && latest.CurrentLiabilities != nil && *latest.CurrentLiabilities != 0 {
			currentRatio := *latest.CurrentAssets / *latest.CurrentLiabilities
			switch {
			case currentRatio >= 1.5 && currentRatio <= 3.0:
				components["liquidity_quality"] = 1.0
			case currentRatio > 3.0:
				// Hoarded cash is inefficient capital
				components["liquidity_quality"] = 0.8
			default:
				components["liquidity_quality"] = math.Max(0, currentRatio/1.5)
			}
		} else {
			components["liquidity_quality"] = 0.5
		}
	}

	components["growth_quality"] = growthQuality(income)

	// Weighted overall score
	var overall, totalWeight float64
	for component, score := range components {
		weight, ok := c.cfg.QualityWeights[component]
		if !ok {
			weight = c.defaultQualityWeight()
		}
		overall += score * weight
		totalWeight += weight
	}
	if totalWeight > 0 {
		overall /= totalWeight
	}

	return clamp01(overall), components
}

// growthQuality rewards non-negative mean revenue growth with volatility
// below 20%; volatile or shrinking revenue scores down from 0.5.
func growthQuality(income []domain.IncomeStatement) float64 {
	if len(income) < 3 {
		return 0.5
	}

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
		return 0.5
	}
	sort.Slice(revenues, func(i, j int) bool { return revenues[i].year < revenues[j].year })

	growthRates := make([]float64, 0, len(revenues)-1)
	for i := 1; i < len(revenues); i++ {
		growthRates = append(growthRates, (revenues[i].revenue-revenues[i-1].revenue)/revenues[i-1].revenue)
	}

	avgGrowth := formulas.Mean(growthRates)
	growthVolatility := formulas.PopStdDev(growthRates)

	if avgGrowth >= 0 && growthVolatility < 0.2 {
		return math.Min(1.0, 0.5+avgGrowth*2)
	}
	return math.Max(0, 0.5-growthVolatility)
}

func (c *Calculator) defaultQualityWeight() float64 {
	return 0.1
}

func interpretQualityScore(score float64) string {
	switch {
	case score >= 0.8:
		return "Excellent quality - Very predictable earnings, strong competitive position"
	case score >= 0.6:
		return "Good quality - Reasonably stable business with solid fundamentals"
	case score >= 0.4:
		return "Average quality - Some concerns about consistency or competitive position"
	default:
		return "Poor quality - Significant risks to earnings sustainability"
	}
}

func qualityRecommendations(components map[string]float64) []string {
	var recommendations []string

	if components["earnings_stability"] < 0.5 {
		recommendations = append(recommendations, "Monitor earnings volatility - consider if cyclical factors explain variation")
	}
	if components["roe_quality"] < 0.5 {
		recommendations = append(recommendations, "Low return on equity - investigate capital allocation efficiency")
	}
	if components["leverage_quality"] < 0.5 {
		recommendations = append(recommendations, "High leverage - assess debt sustainability and refinancing risks")
	}
	if components["liquidity_quality"] < 0.5 {
		recommendations = append(recommendations, "Liquidity concerns - monitor working capital and cash flow")
	}
	if components["growth_quality"] < 0.5 {
		recommendations = append(recommendations, "Volatile revenue growth - understand market dynamics and competitive position")
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Strong financial profile across key quality metrics")
	}
	return recommendations
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
