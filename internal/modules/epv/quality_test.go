package epv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bwillia13x/epv-pm/internal/domain"
)

func yearlyStatements(symbol string, revenueByYear, earningsByYear map[int]float64) []domain.IncomeStatement {
	var income []domain.IncomeStatement
	for year, revenue := range revenueByYear {
		stmt := domain.IncomeStatement{
			Statement: domain.Statement{Symbol: symbol, Period: domain.PeriodAnnual, FiscalYear: year},
			Revenue:   domain.Float(revenue),
		}
		if e, ok := earningsByYear[year]; ok {
			stmt.NetIncome = domain.Float(e)
		}
		income = append(income, stmt)
	}
	return income
}

func TestQualityScore_NoData(t *testing.T) {
	calc := newTestCalculator()

	score, report := calc.QualityScore(nil, nil, nil)

	// Only the neutral growth component exists without statements.
	assert.InDelta(t, 0.5, score, 1e-12)
	require.NotNil(t, report)
	assert.Len(t, report.Components, 1)
	assert.Contains(t, report.Components, "growth_quality")
}

func TestQualityScore_StrongCompany(t *testing.T) {
	calc := newTestCalculator()

	income := yearlyStatements("STRONG",
		map[int]float64{2019: 1_000, 2020: 1_080, 2021: 1_160, 2022: 1_250, 2023: 1_350},
		map[int]float64{2019: 100, 2020: 108, 2021: 116, 2022: 125, 2023: 135},
	)
	balance := []domain.BalanceSheet{
		{
			Statement:          domain.Statement{Symbol: "STRONG", Period: domain.PeriodAnnual, FiscalYear: 2023},
			LongTermDebt:       domain.Float(100),
			TotalEquity:        domain.Float(900),
			CurrentAssets:      domain.Float(400),
			CurrentLiabilities: domain.Float(200),
		},
	}
	ratios := []domain.FinancialRatios{
		{Symbol: "STRONG", ROE: domain.Float(22.0)},
		{Symbol: "STRONG", ROE: domain.Float(24.0)},
	}

	score, report := calc.QualityScore(income, balance, ratios)

	assert.GreaterOrEqual(t, score, 0.6, "steady grower with clean balance sheet scores well")
	assert.LessOrEqual(t, score, 1.0)

	for name, component := range report.Components {
		assert.GreaterOrEqual(t, component, 0.0, "component %s out of range", name)
		assert.LessOrEqual(t, component, 1.0, "component %s out of range", name)
	}
	assert.Contains(t, report.Recommendations[0], "Strong financial profile")
}

func TestQualityScore_WeakCompany(t *testing.T) {
	calc := newTestCalculator()

	// Erratic revenue, heavy leverage, thin liquidity, weak returns.
	income := yearlyStatements("WEAK",
		map[int]float64{2020: 1_000, 2021: 600, 2022: 1_400, 2023: 700},
		map[int]float64{2020: 50, 2021: -80, 2022: 120, 2023: -30},
	)
	balance := []domain.BalanceSheet{
		{
			Statement:          domain.Statement{Symbol: "WEAK", Period: domain.PeriodAnnual, FiscalYear: 2023},
			LongTermDebt:       domain.Float(1_800),
			TotalEquity:        domain.Float(400),
			CurrentAssets:      domain.Float(100),
			CurrentLiabilities: domain.Float(200),
		},
	}
	ratios := []domain.FinancialRatios{
		{Symbol: "WEAK", ROE: domain.Float(3.0)},
	}

	score, report := calc.QualityScore(income, balance, ratios)

	assert.Less(t, score, 0.5)
	assert.NotEmpty(t, report.Recommendations)
	assert.NotContains(t, report.Recommendations[0], "Strong financial profile")
}

func TestAssessQuality_LeverageComponent(t *testing.T) {
	calc := newTestCalculator()

	// Debt twice equity saturates the penalty.
	balance := []domain.BalanceSheet{
		{
			Statement:    domain.Statement{Symbol: "L", Period: domain.PeriodAnnual, FiscalYear: 2023},
			LongTermDebt: domain.Float(2_000),
			TotalEquity:  domain.Float(1_000),
		},
	}
	_, components := calc.assessQuality(nil, balance, nil)
	assert.Equal(t, 0.0, components["leverage_quality"])

	// No debt data reads as low leverage.
	balance[0].LongTermDebt = nil
	_, components = calc.assessQuality(nil, balance, nil)
	assert.Equal(t, 0.8, components["leverage_quality"])
}

func TestAssessQuality_LiquidityComponent(t *testing.T) {
	calc := newTestCalculator()

	cases := []struct {
		name      string
		assets    float64
		liability float64
		expected  float64
	}{
		{"healthy band", 400, 200, 1.0},
		{"hoarding cash", 700, 200, 0.8},
		{"thin coverage", 150, 200, (150.0 / 200.0) / 1.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			balance := []domain.BalanceSheet{
				{
					Statement:          domain.Statement{Symbol: "LIQ", Period: domain.PeriodAnnual, FiscalYear: 2023},
					CurrentAssets:      domain.Float(tc.assets),
					CurrentLiabilities: domain.Float(tc.liability),
				},
			}
			_, components := calc.assessQuality(nil, balance, nil)
			assert.InDelta(t, tc.expected, components["liquidity_quality"], 1e-12)
		})
	}
}

func TestGrowthQuality(t *testing.T) {
	// Fewer than three usable revenue years is neutral.
	assert.Equal(t, 0.5, growthQuality(nil))

	steady := yearlyStatements("G", map[int]float64{2021: 100, 2022: 110, 2023: 121}, nil)
	assert.InDelta(t, 0.7, growthQuality(steady), 1e-9, "10% steady growth scores 0.5 + 2*g")

	volatile := yearlyStatements("V", map[int]float64{2021: 100, 2022: 250, 2023: 80}, nil)
	assert.Less(t, growthQuality(volatile), 0.5)
}

func TestInterpretQualityScore(t *testing.T) {
	assert.Contains(t, interpretQualityScore(0.85), "Excellent")
	assert.Contains(t, interpretQualityScore(0.65), "Good")
	assert.Contains(t, interpretQualityScore(0.45), "Average")
	assert.Contains(t, interpretQualityScore(0.2), "Poor")
}
