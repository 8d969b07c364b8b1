// Package sparse provides the small sparse linear-algebra kernel used by
// the spatial model: square compressed-row matrices, fixed-pattern linear
// combinations and a Cholesky factorisation whose symbolic analysis is
// done once per sparsity pattern.
package sparse

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrDimension  = errors.New("sparse: dimension mismatch")
	ErrIndexRange = errors.New("sparse: index out of range")
)

// Matrix is a square sparse matrix in compressed-row form. Matrices are
// immutable once constructed; code in this package produces new matrices
// that share a pattern rather than rewriting values in place.
type Matrix struct {
	n      int
	rowPtr []int
	colInd []int
	values []float64
}

// NewFromTriplets builds an n-by-n matrix from coordinate triplets.
// Duplicate coordinates are summed.
func NewFromTriplets(n int, rows, cols []int, values []float64) (*Matrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative dimension %d", ErrDimension, n)
	}
	if len(rows) != len(values) || len(cols) != len(values) {
		return nil, fmt.Errorf("%w: triplet slices have lengths %d, %d, %d",
			ErrDimension, len(rows), len(cols), len(values))
	}
	type entry struct {
		col int
		val float64
	}
	byRow := make([][]entry, n)
	for k, i := range rows {
		j := cols[k]
		if i < 0 || i >= n || j < 0 || j >= n {
			return nil, fmt.Errorf("%w: triplet %d at (%d, %d) outside %d-by-%d",
				ErrIndexRange, k, i, j, n, n)
		}
		byRow[i] = append(byRow[i], entry{j, values[k]})
	}
	m := &Matrix{n: n, rowPtr: make([]int, n+1)}
	for i, es := range byRow {
		sort.Slice(es, func(a, b int) bool { return es[a].col < es[b].col })
		for k, e := range es {
			if k > 0 && e.col == m.colInd[len(m.colInd)-1] {
				m.values[len(m.values)-1] += e.val
				continue
			}
			m.colInd = append(m.colInd, e.col)
			m.values = append(m.values, e.val)
		}
		m.rowPtr[i+1] = len(m.colInd)
	}
	return m, nil
}

// Identity returns the n-by-n identity matrix.
func Identity(n int) *Matrix {
	m := &Matrix{
		n:      n,
		rowPtr: make([]int, n+1),
		colInd: make([]int, n),
		values: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		m.rowPtr[i+1] = i + 1
		m.colInd[i] = i
		m.values[i] = 1
	}
	return m
}

// Dim returns the number of rows (and columns).
func (m *Matrix) Dim() int { return m.n }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.colInd) }

// At returns the entry at (i, j), zero when the position is not stored.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(ErrIndexRange)
	}
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	p := lo + sort.SearchInts(m.colInd[lo:hi], j)
	if p < hi && m.colInd[p] == j {
		return m.values[p]
	}
	return 0
}

// MulVec computes dst = M x.
func (m *Matrix) MulVec(dst, x []float64) {
	if len(dst) != m.n || len(x) != m.n {
		panic(ErrDimension)
	}
	for i := 0; i < m.n; i++ {
		acc := 0.0
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			acc += m.values[p] * x[m.colInd[p]]
		}
		dst[i] = acc
	}
}

// Quad computes the quadratic form x' M x.
func (m *Matrix) Quad(x []float64) float64 {
	if len(x) != m.n {
		panic(ErrDimension)
	}
	acc := 0.0
	for i := 0; i < m.n; i++ {
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			acc += x[i] * m.values[p] * x[m.colInd[p]]
		}
	}
	return acc
}

// Dense expands the matrix into a gonum dense matrix, mainly for
// cross-checking against dense factorisations.
func (m *Matrix) Dense() *mat.Dense {
	d := mat.NewDense(m.n, m.n, nil)
	for i := 0; i < m.n; i++ {
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			d.Set(i, m.colInd[p], m.values[p])
		}
	}
	return d
}
