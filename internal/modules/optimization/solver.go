package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// Objective is a scalar function of portfolio weights to be minimized.
// Implementations receive weights already projected into bounds.
type Objective func(weights []float64) float64

// Solver finds the weight vector minimizing an objective subject to the
// long-only budget constraints (sum to 1, each weight in [0, maxWeight]).
// Separating the solve from objective construction lets tests substitute
// a deterministic solver.
type Solver interface {
	Solve(objective Objective, numAssets int, maxWeight float64) ([]float64, error)
}

// penaltySolver enforces the sum-to-one constraint as a quadratic
// penalty and the bounds by projection, then minimizes with the
// gradient-free NelderMead, retrying with BFGS on finite-difference
// gradients when it fails to converge.
type penaltySolver struct{}

// NewSolver returns the default gonum-backed solver.
func NewSolver() Solver {
	return &penaltySolver{}
}

const penaltyWeight = 1000.0

func (s *penaltySolver) Solve(objective Objective, numAssets int, maxWeight float64) ([]float64, error) {
	if numAssets == 0 {
		return nil, fmt.Errorf("no assets provided")
	}
	if maxWeight <= 0 || maxWeight > 1 {
		maxWeight = 1.0
	}

	penalized := func(x []float64) float64 {
		xProj := projectToBounds(x, maxWeight)

		obj := objective(xProj)

		sum := 0.0
		for i := range xProj {
			sum += xProj[i]
		}
		obj += penaltyWeight * (sum - 1.0) * (sum - 1.0)

		return obj
	}

	// The objective is opaque to the solver, so BFGS gets a
	// finite-difference gradient of the penalized function.
	problem := optimize.Problem{
		Func: penalized,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, penalized, x, nil)
		},
	}

	initial := make([]float64, numAssets)
	for i := range initial {
		initial[i] = 1.0 / float64(numAssets)
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil || !converged(result.Status) {
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
		if err != nil {
			return nil, fmt.Errorf("optimization failed: %w", err)
		}
		if !converged(result.Status) {
			return nil, fmt.Errorf("optimization did not converge: status=%v", result.Status)
		}
	}

	// Project the solution back into bounds and normalize to sum to 1.
	weights := projectToBounds(result.X, maxWeight)
	sum := 0.0
	for i := range weights {
		sum += weights[i]
	}
	for i := range weights {
		weights[i] = math.Max(0.0, weights[i]/math.Max(sum, 1e-10))
	}

	sum = 0.0
	for i := range weights {
		sum += weights[i]
	}
	if sum > 0 {
		for i := range weights {
			weights[i] /= sum
		}
	}

	return weights, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	}
	return false
}

func projectToBounds(x []float64, maxWeight float64) []float64 {
	proj := make([]float64, len(x))
	for i := range x {
		proj[i] = math.Max(0.0, math.Min(maxWeight, x[i]))
	}
	return proj
}
