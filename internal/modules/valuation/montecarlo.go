package valuation

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Bwillia13x/epv-pm/internal/domain"
	"github.com/Bwillia13x/epv-pm/pkg/formulas"
)

// Default parameter volatilities for the Monte Carlo shocks.
const (
	defaultRevenueGrowthVol = 0.05
	defaultMarginVol        = 0.02
	defaultMultipleVol      = 0.15
)

// Thresholds for the loss/gain probabilities relative to the base case.
const (
	lossThreshold = 0.8
	gainThreshold = 1.2
)

// monteCarloConfidences are the reported VaR percentile levels.
var monteCarloConfidences = []float64{0.05, 0.25, 0.75, 0.95}

// VolatilityAssumptions parameterizes the Monte Carlo shocks. Zero
// fields select the defaults (revenue growth 5%, margin 2%, multiple 15%).
type VolatilityAssumptions struct {
	RevenueGrowth float64 `json:"revenue_growth"`
	Margin        float64 `json:"margin"`
	Multiple      float64 `json:"multiple"`
}

// MonteCarloOptions controls the simulation. A nil Seed uses a
// time-derived seed, so unseeded runs vary; supply a seed for
// reproducible output.
type MonteCarloOptions struct {
	Seed *uint64
}

// MonteCarlo perturbs a base valuation with independent normal shocks
// on revenue growth, margin, and multiple assumptions, producing a
// value distribution with percentile VaR and threshold probabilities.
//
// Fails fast when numSimulations < 1. The distribution always holds
// exactly numSimulations draws.
func (e *Engine) MonteCarlo(
	symbol string,
	baseValuation float64,
	assumptions VolatilityAssumptions,
	numSimulations int,
	opts MonteCarloOptions,
) (*domain.MonteCarloResult, error) {
	if numSimulations < 1 {
		return nil, fmt.Errorf("num_simulations must be at least 1, got %d", numSimulations)
	}

	e.log.Info().
		Str("symbol", symbol).
		Int("num_simulations", numSimulations).
		Float64("base_valuation", baseValuation).
		Msg("Running Monte Carlo simulation")

	revenueVol := assumptions.RevenueGrowth
	if revenueVol == 0 {
		revenueVol = defaultRevenueGrowthVol
	}
	marginVol := assumptions.Margin
	if marginVol == 0 {
		marginVol = defaultMarginVol
	}
	multipleVol := assumptions.Multiple
	if multipleVol == 0 {
		multipleVol = defaultMultipleVol
	}

	seed := uint64(time.Now().UnixNano())
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	src := rand.NewPCG(seed, seed+1)

	revenueShock := distuv.Normal{Mu: 0, Sigma: revenueVol, Src: src}
	marginShock := distuv.Normal{Mu: 0, Sigma: marginVol, Src: src}
	multipleShock := distuv.Normal{Mu: 0, Sigma: multipleVol, Src: src}

	distribution := make([]float64, numSimulations)
	for i := 0; i < numSimulations; i++ {
		combined := 1 + revenueShock.Rand() + marginShock.Rand() + multipleShock.Rand()
		distribution[i] = baseValuation * combined
	}

	valueAtRisk := make(map[float64]float64, len(monteCarloConfidences))
	for _, confidence := range monteCarloConfidences {
		valueAtRisk[confidence] = formulas.Percentile(distribution, confidence*100)
	}

	var losses, gains int
	for _, v := range distribution {
		if v < baseValuation*lossThreshold {
			losses++
		}
		if v > baseValuation*gainThreshold {
			gains++
		}
	}

	return &domain.MonteCarloResult{
		RunID:             uuid.NewString(),
		Symbol:            symbol,
		SimulationDate:    time.Now().UTC(),
		NumSimulations:    numSimulations,
		BaseValuation:     baseValuation,
		Confidences:       monteCarloConfidences,
		ValueDistribution: distribution,
		MeanValue:         formulas.Mean(distribution),
		MedianValue:       formulas.Median(distribution),
		StdDeviation:      formulas.PopStdDev(distribution),
		ValueAtRisk:       valueAtRisk,
		ProbabilityOfLoss: float64(losses) / float64(numSimulations),
		UpsidePotential:   float64(gains) / float64(numSimulations),
	}, nil
}
