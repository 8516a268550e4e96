// Package optimization implements EPV-driven portfolio construction:
// mean-variance optimization over investment candidates, drift-triggered
// rebalancing plans, and portfolio performance metrics.
package optimization

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/Bwillia13x/epv-pm/internal/config"
	"github.com/Bwillia13x/epv-pm/internal/domain"
)

// Optimization objectives.
const (
	ObjectiveMaxEPVQuality = "max_epv_quality"
	ObjectiveMaxSharpe     = "max_sharpe"
	ObjectiveMinVariance   = "min_variance"
)

// minAllocationWeight is the materiality cutoff: solved weights at or
// below it are dropped from the recommendation.
const minAllocationWeight = 0.01

// actionHysteresis is the dead band around the current weight inside
// which the recommendation is HOLD rather than BUY or SELL.
const actionHysteresis = 0.01

// Optimizer builds portfolio allocations from EPV-based candidates.
type Optimizer struct {
	cfg    config.RiskModelConfig
	risk   *riskModel
	solver Solver
	log    zerolog.Logger
}

// NewOptimizer creates an optimizer with the default gonum solver.
func NewOptimizer(cfg config.RiskModelConfig, log zerolog.Logger) *Optimizer {
	return NewOptimizerWithSolver(cfg, NewSolver(), log)
}

// NewOptimizerWithSolver creates an optimizer with a caller-supplied
// solver.
func NewOptimizerWithSolver(cfg config.RiskModelConfig, solver Solver, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		cfg:    cfg,
		risk:   &riskModel{cfg: cfg},
		solver: solver,
		log:    log.With().Str("component", "optimization").Logger(),
	}
}

// Optimize solves for target portfolio weights over the candidates under
// the given risk budget and objective.
//
// Expected returns derive from the EPV discount: max(0, (epv-price)/price).
// On solver non-convergence the result falls back to equal weights with
// the Fallback flag set; it is never returned as an error.
func (o *Optimizer) Optimize(
	candidates []domain.Candidate,
	portfolioValue float64,
	riskBudget domain.RiskBudget,
	objective string,
) (*domain.OptimizationResult, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoCandidates
	}

	o.log.Info().
		Int("candidates", len(candidates)).
		Str("objective", objective).
		Msg("Optimizing portfolio")

	n := len(candidates)
	expectedReturns := make([]float64, n)
	qualityScores := make([]float64, n)
	for i, c := range candidates {
		if c.CurrentPrice > 0 {
			expectedReturns[i] = math.Max(0, (c.EPVPerShare-c.CurrentPrice)/c.CurrentPrice)
		}
		qualityScores[i] = c.QualityScore
	}

	cov := o.risk.covarianceMatrix(candidates)

	objectiveFn, err := o.buildObjective(objective, expectedReturns, qualityScores, cov)
	if err != nil {
		return nil, err
	}

	result := &domain.OptimizationResult{Objective: objective}

	weights, err := o.solver.Solve(objectiveFn, n, riskBudget.MaxPositionSize)
	if err != nil {
		o.log.Warn().Err(err).Msg("Solver failed to converge, falling back to equal weights")
		weights = make([]float64, n)
		for i := range weights {
			weights[i] = 1.0 / float64(n)
		}
		result.Fallback = true
		result.Warnings = append(result.Warnings, fmt.Sprintf("solver fallback to equal weights: %v", err))
	}

	for i, c := range candidates {
		weight := weights[i]
		if weight <= minAllocationWeight {
			continue
		}

		dollarAmount := portfolioValue * weight
		var sharesToTrade float64
		if c.CurrentPrice > 0 {
			sharesToTrade = dollarAmount / c.CurrentPrice
		}

		action := domain.ActionHold
		switch {
		case weight > c.CurrentWeight+actionHysteresis:
			action = domain.ActionBuy
		case weight < c.CurrentWeight-actionHysteresis:
			action = domain.ActionSell
		}

		var marginOfSafety float64
		if c.CurrentPrice > 0 {
			marginOfSafety = (c.EPVPerShare - c.CurrentPrice) / c.CurrentPrice * 100
		}

		result.Allocations = append(result.Allocations, domain.Allocation{
			Symbol:         c.Symbol,
			TargetWeight:   weight,
			CurrentWeight:  c.CurrentWeight,
			Action:         action,
			SharesToTrade:  math.Abs(sharesToTrade),
			DollarAmount:   math.Abs(dollarAmount),
			EPVPerShare:    c.EPVPerShare,
			CurrentPrice:   c.CurrentPrice,
			MarginOfSafety: marginOfSafety,
			QualityScore:   c.QualityScore,
			Conviction:     weight * c.QualityScore,
		})
	}

	sort.Slice(result.Allocations, func(i, j int) bool {
		return result.Allocations[i].Conviction > result.Allocations[j].Conviction
	})

	o.log.Info().
		Int("positions", len(result.Allocations)).
		Bool("fallback", result.Fallback).
		Msg("Portfolio optimization complete")

	return result, nil
}

// buildObjective returns the minimization objective for the named
// strategy. The solver handles the budget constraints; the objective
// only scores a candidate weight vector.
func (o *Optimizer) buildObjective(
	objective string,
	expectedReturns, qualityScores []float64,
	cov *mat.SymDense,
) (Objective, error) {
	switch objective {
	case ObjectiveMaxEPVQuality:
		return func(w []float64) float64 {
			portfolioReturn := dot(w, expectedReturns)
			portfolioQuality := dot(w, qualityScores)
			portfolioRisk := math.Sqrt(quadraticForm(w, cov))
			return -(portfolioReturn*portfolioQuality - o.cfg.RiskAversion*portfolioRisk)
		}, nil
	case ObjectiveMaxSharpe:
		return func(w []float64) float64 {
			portfolioReturn := dot(w, expectedReturns)
			portfolioRisk := math.Sqrt(math.Max(quadraticForm(w, cov), 1e-10))
			return -(portfolioReturn - o.cfg.RiskFreeRate) / portfolioRisk
		}, nil
	case ObjectiveMinVariance:
		return func(w []float64) float64 {
			return quadraticForm(w, cov)
		}, nil
	default:
		return nil, fmt.Errorf("unknown optimization objective: %s", objective)
	}
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// quadraticForm computes w' * sigma * w.
func quadraticForm(w []float64, sigma *mat.SymDense) float64 {
	var total float64
	for i := range w {
		for j := range w {
			total += w[i] * w[j] * sigma.At(i, j)
		}
	}
	return total
}
