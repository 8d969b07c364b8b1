package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fields are the latent random effects, owned by the calling optimizer
// or Laplace integrator and supplied fresh on every evaluation.
type Fields struct {
	Spatial        *mat.VecDense // one value per mesh node
	SpatioTemporal *mat.Dense    // mesh nodes by time steps
}

// Result is the outcome of one likelihood evaluation. It has no identity
// beyond the call that produced it.
type Result struct {
	DataTerm                float64
	SpatialPriorTerm        float64
	SpatioTemporalPriorTerm float64
	JointNegLogLik          float64

	// LogDensity is the fitted log-density at every mesh node and time
	// step, beta0 + spatial + spatiotemporal.
	LogDensity *mat.Dense

	// Closed-form transforms of the hyperparameters.
	Range               float64
	SigmaSpatial        float64
	SigmaSpatioTemporal float64
}

// Evaluate computes the joint negative log-likelihood of the counts
// given hyperparameters and latent fields. It is a pure function of its
// arguments and the model's immutable inputs: no state is retained
// between calls, so concurrent evaluations on one model are safe as long
// as each call owns its Params and Fields.
//
// Numerical degeneracy (a precision matrix that is not positive definite
// for the current LogKappa, or overflow in the exponentials) surfaces as
// non-finite terms in the Result, never as an error, so the calling
// optimizer can reject the step and continue.
func (m *Model) Evaluate(p Params, f Fields) (Result, error) {
	nS, nT := m.basis.Dim(), m.nT
	if f.Spatial == nil || f.Spatial.Len() != nS {
		return Result{}, fmt.Errorf("%w: spatial field has %d nodes, want %d",
			ErrMalformed, vecLen(f.Spatial), nS)
	}
	if f.SpatioTemporal == nil {
		return Result{}, fmt.Errorf("%w: spatiotemporal field is nil", ErrMalformed)
	}
	if r, c := f.SpatioTemporal.Dims(); r != nS || c != nT {
		return Result{}, fmt.Errorf("%w: spatiotemporal field is %d-by-%d, want %d-by-%d",
			ErrMalformed, r, c, nS, nT)
	}

	var res Result
	q := m.basis.Precision(p.LogKappa)

	// Priors. Both fields share Q; the taus only rescale the marginal
	// variance, so each density carries its Jacobian correction inside
	// ScaledNegLogDensity. Time slices of the spatiotemporal field are
	// independent draws from the same spatial GMRF.
	omega := make([]float64, nS)
	for s := 0; s < nS; s++ {
		omega[s] = f.Spatial.AtVec(s)
	}
	res.SpatialPriorTerm = q.ScaledNegLogDensity(omega, 1/math.Exp(p.LogTauSpatial))
	scaleE := 1 / math.Exp(p.LogTauSpatioTemporal)
	col := make([]float64, nS)
	for t := 0; t < nT; t++ {
		mat.Col(col, t, f.SpatioTemporal)
		res.SpatioTemporalPriorTerm += q.ScaledNegLogDensity(col, scaleE)
	}

	// Fitted log-density at every node and time step, needed in full
	// both for the data term and for reporting.
	res.LogDensity = mat.NewDense(nS, nT, nil)
	for t := 0; t < nT; t++ {
		for s := 0; s < nS; s++ {
			res.LogDensity.Set(s, t, p.Beta0+f.Spatial.AtVec(s)+f.SpatioTemporal.At(s, t))
		}
	}

	// Data term: Poisson negative log-mass at the fitted mean for every
	// available count. NaN marks a count as missing and contributes
	// exactly zero.
	for i, c := range m.obs.Counts {
		if math.IsNaN(c) {
			continue
		}
		pois := distuv.Poisson{Lambda: math.Exp(res.LogDensity.At(m.obs.Sites[i], m.obs.Times[i]))}
		res.DataTerm -= pois.LogProb(c)
	}

	res.Range = math.Sqrt(8) / math.Exp(p.LogKappa)
	res.SigmaSpatial = 1 / math.Sqrt(4*math.Pi*math.Exp(2*p.LogTauSpatial)*math.Exp(2*p.LogKappa))
	res.SigmaSpatioTemporal = 1 / math.Sqrt(4*math.Pi*math.Exp(2*p.LogTauSpatioTemporal)*math.Exp(2*p.LogKappa))
	res.JointNegLogLik = res.DataTerm + res.SpatialPriorTerm + res.SpatioTemporalPriorTerm
	return res, nil
}

func vecLen(v *mat.VecDense) int {
	if v == nil {
		return 0
	}
	return v.Len()
}
