// Package markov estimates a stationary site-use distribution from
// observed site-to-site transition counts. It is a descriptive
// comparison utility, independent of the likelihood engine and not
// differentiable.
package markov

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotSquare       = errors.New("markov: transition counts must be square")
	ErrNoTransitions   = errors.New("markov: state has no outgoing transitions")
	ErrNoDecomposition = errors.New("markov: eigendecomposition failed")
)

// StationaryDistribution row-normalises a square matrix of transition
// counts into a transition-probability matrix and returns its stationary
// distribution, the left eigenvector with eigenvalue one rescaled to sum
// to one.
func StationaryDistribution(counts *mat.Dense) ([]float64, error) {
	n, c := counts.Dims()
	if n != c {
		return nil, fmt.Errorf("%w: got %d-by-%d", ErrNotSquare, n, c)
	}
	// Build the transpose of the row-normalised chain so the stationary
	// vector becomes an ordinary right eigenvector.
	pt := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		total := 0.0
		for j := 0; j < n; j++ {
			total += counts.At(i, j)
		}
		if !(total > 0) {
			return nil, fmt.Errorf("%w: state %d", ErrNoTransitions, i)
		}
		for j := 0; j < n; j++ {
			pt.Set(j, i, counts.At(i, j)/total)
		}
	}
	var eig mat.Eigen
	if !eig.Factorize(pt, mat.EigenRight) {
		return nil, ErrNoDecomposition
	}
	values := eig.Values(nil)
	lead := 0
	for k, v := range values {
		if cmplx.Abs(v-1) < cmplx.Abs(values[lead]-1) {
			lead = k
		}
	}
	var vecs mat.CDense
	eig.VectorsTo(&vecs)
	pi := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		pi[i] = real(vecs.At(i, lead))
		total += pi[i]
	}
	// Dividing by the sum also fixes the eigenvector's arbitrary sign.
	for i := range pi {
		pi[i] /= total
	}
	return pi, nil
}
