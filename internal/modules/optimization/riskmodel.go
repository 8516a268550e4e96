package optimization

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Bwillia13x/epv-pm/internal/config"
	"github.com/Bwillia13x/epv-pm/internal/domain"
)

// riskModel derives covariance estimates from sector heuristics rather
// than historical prices: assumed intra/cross-sector correlations and a
// per-sector volatility table.
type riskModel struct {
	cfg config.RiskModelConfig
}

// correlationMatrix builds the heuristic correlation matrix: 1.0 on the
// diagonal, the intra-sector assumption for candidate pairs in the same
// sector, the cross-sector assumption otherwise. Candidates without a
// sector form their own bucket, so two unlabeled candidates correlate
// at the intra-sector level.
func (r *riskModel) correlationMatrix(candidates []domain.Candidate) *mat.SymDense {
	n := len(candidates)
	corr := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		corr.SetSym(i, i, 1.0)
		for j := i + 1; j < n; j++ {
			rho := r.cfg.CrossSectorCorrelation
			if candidates[i].Sector == candidates[j].Sector {
				rho = r.cfg.IntraSectorCorrelation
			}
			corr.SetSym(i, j, rho)
		}
	}
	return corr
}

// volatilities looks up each candidate's sector volatility, falling back
// to the default for unknown sectors.
func (r *riskModel) volatilities(candidates []domain.Candidate) []float64 {
	vols := make([]float64, len(candidates))
	for i, c := range candidates {
		vols[i] = r.cfg.VolatilityFor(c.Sector)
	}
	return vols
}

// covarianceMatrix returns sigma_ij = vol_i * vol_j * corr_ij.
func (r *riskModel) covarianceMatrix(candidates []domain.Candidate) *mat.SymDense {
	vols := r.volatilities(candidates)
	corr := r.correlationMatrix(candidates)

	n := len(candidates)
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, vols[i]*vols[j]*corr.At(i, j))
		}
	}
	return cov
}
