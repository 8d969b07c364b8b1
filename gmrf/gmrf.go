// Package gmrf evaluates Gaussian Markov random field densities on a
// spatial mesh discretised by the stochastic-PDE approach: the field's
// precision matrix is a weighted combination of the mesh mass and
// stiffness operators, and densities come from its sparse Cholesky
// factorisation.
package gmrf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/meganwinton/Loggerhead-densities/sparse"
)

// Basis holds the three mesh operator matrices M0, M1, M2 together with
// the precompiled assembly plan and symbolic factorisation for precision
// matrices on their union pattern. A Basis is built once per mesh and is
// read-only afterwards, so it may be shared across concurrent
// evaluations.
type Basis struct {
	n   int
	sum *sparse.Sum
	sym *sparse.Symbolic
}

// NewBasis validates that the operator matrices share one dimension and
// precomputes the union sparsity pattern and its symbolic factorisation.
func NewBasis(m0, m1, m2 *sparse.Matrix) (*Basis, error) {
	sum, err := sparse.NewSum(m0, m1, m2)
	if err != nil {
		return nil, fmt.Errorf("gmrf: mesh operators: %w", err)
	}
	return &Basis{
		n:   sum.Dim(),
		sum: sum,
		sym: sparse.NewSymbolic(sum.Eval([]float64{1, 1, 1})),
	}, nil
}

// Dim returns the number of mesh nodes.
func (b *Basis) Dim() int { return b.n }

// Precision assembles
//
//	Q = exp(4 kappa) M0 + 2 exp(2 kappa) M1 + M2
//
// on the fixed union pattern; only the coefficients change between
// calls. A non-finite kappa flows through to non-finite entries of Q and
// from there to non-finite densities, never to a panic, so an optimizer
// probing a bad step sees a rejectable value.
func (b *Basis) Precision(logKappa float64) *Precision {
	return &Precision{
		basis: b,
		m:     b.sum.Eval([]float64{math.Exp(4 * logKappa), 2 * math.Exp(2 * logKappa), 1}),
	}
}

// Precision is one assembled precision matrix Q. The Cholesky factor is
// computed on first use and reused for every density evaluated against
// the same Q; a Precision is intended for single-goroutine use within
// one likelihood evaluation.
type Precision struct {
	basis    *Basis
	m        *sparse.Matrix
	chol     *sparse.Cholesky
	ok       bool
	factored bool
}

// Matrix returns the assembled Q.
func (q *Precision) Matrix() *sparse.Matrix { return q.m }

func (q *Precision) factor() {
	if !q.factored {
		q.chol, q.ok = q.basis.sym.Factorize(q.m)
		q.factored = true
	}
}

// NegLogDensity returns the negative log-density of a zero-mean Gaussian
// with precision Q at x:
//
//	1/2 x'Qx - 1/2 log|Q| + n/2 log(2 pi)
//
// log|Q| comes from the diagonal of the sparse Cholesky factor. A Q that
// is not positive definite yields NaN.
func (q *Precision) NegLogDensity(x []float64) float64 {
	if len(x) != q.basis.n {
		panic(sparse.ErrDimension)
	}
	q.factor()
	if !q.ok {
		return math.NaN()
	}
	n := float64(q.basis.n)
	return 0.5*q.m.Quad(x) - 0.5*q.chol.LogDet() + 0.5*n*math.Log(2*math.Pi)
}

// ScaledNegLogDensity evaluates the density of x under precision Q/s^2,
// i.e. the base field rescaled by s: the base density at x/s plus the
// n log(s) Jacobian of the rescaling. The Jacobian term is what makes
// the scale behave as a marginal standard-deviation multiplier; without
// it the density would not integrate to one over the scaled variable.
func (q *Precision) ScaledNegLogDensity(x []float64, scale float64) float64 {
	if len(x) != q.basis.n {
		panic(sparse.ErrDimension)
	}
	y := make([]float64, len(x))
	floats.ScaleTo(y, 1/scale, x)
	return q.NegLogDensity(y) + float64(len(x))*math.Log(scale)
}
