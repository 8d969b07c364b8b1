package sparse

import (
	"fmt"
	"sort"
)

// Sum is a precompiled linear combination over a fixed set of matrices.
// The union sparsity pattern and the slot of every term entry within it
// are computed once; Eval then only writes coefficient-weighted values,
// so re-evaluating with new coefficients never changes the pattern and
// never densifies.
type Sum struct {
	n      int
	rowPtr []int
	colInd []int
	slots  [][]int     // slots[k][p]: union position of term k's p-th entry
	vals   [][]float64 // term k's values, aligned with slots[k]
}

// NewSum analyses the union pattern of the given matrices. All terms must
// share one dimension.
func NewSum(terms ...*Matrix) (*Sum, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: no terms", ErrDimension)
	}
	n := terms[0].n
	for k, t := range terms {
		if t.n != n {
			return nil, fmt.Errorf("%w: term %d is %d-by-%d, want %d-by-%d",
				ErrDimension, k, t.n, t.n, n, n)
		}
	}
	s := &Sum{
		n:      n,
		rowPtr: make([]int, n+1),
		slots:  make([][]int, len(terms)),
		vals:   make([][]float64, len(terms)),
	}
	for k, t := range terms {
		s.slots[k] = make([]int, 0, t.NNZ())
		s.vals[k] = t.values
	}
	seen := make([]bool, n)
	cols := make([]int, 0, 16)
	for i := 0; i < n; i++ {
		cols = cols[:0]
		for _, t := range terms {
			for p := t.rowPtr[i]; p < t.rowPtr[i+1]; p++ {
				if j := t.colInd[p]; !seen[j] {
					seen[j] = true
					cols = append(cols, j)
				}
			}
		}
		sort.Ints(cols)
		base := len(s.colInd)
		s.colInd = append(s.colInd, cols...)
		s.rowPtr[i+1] = len(s.colInd)
		for _, j := range cols {
			seen[j] = false
		}
		row := s.colInd[base:]
		for k, t := range terms {
			for p := t.rowPtr[i]; p < t.rowPtr[i+1]; p++ {
				s.slots[k] = append(s.slots[k], base+sort.SearchInts(row, t.colInd[p]))
			}
		}
	}
	return s, nil
}

// Dim returns the shared dimension of the terms.
func (s *Sum) Dim() int { return s.n }

// Eval returns sum_k coefs[k] * term_k. The result shares the union
// pattern; only its value buffer is fresh.
func (s *Sum) Eval(coefs []float64) *Matrix {
	if len(coefs) != len(s.slots) {
		panic(ErrDimension)
	}
	values := make([]float64, len(s.colInd))
	for k, slots := range s.slots {
		c := coefs[k]
		tv := s.vals[k]
		for p, pos := range slots {
			values[pos] += c * tv[p]
		}
	}
	return &Matrix{n: s.n, rowPtr: s.rowPtr, colInd: s.colInd, values: values}
}
