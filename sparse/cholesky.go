package sparse

import "math"

// Symbolic is the value-independent part of a sparse Cholesky
// factorisation: the elimination tree of the pattern, the nonzero pattern
// of every row of the factor L (in topological order, ready for the
// sparse triangular solve) and the column layout of L. It is computed
// once per sparsity pattern and shared by every numeric factorisation of
// matrices on that pattern.
type Symbolic struct {
	n      int
	parent []int
	rows   [][]int // rows[k]: pattern of row k of L, diagonal excluded
	colPtr []int   // column pointers of L (compressed-column, diagonal first)
}

// NewSymbolic analyses the pattern of the symmetric matrix a. Only the
// pattern is read; the values of a are irrelevant.
func NewSymbolic(a *Matrix) *Symbolic {
	n := a.n
	s := &Symbolic{
		n:      n,
		parent: make([]int, n),
		rows:   make([][]int, n),
		colPtr: make([]int, n+1),
	}

	// Elimination tree: parent[i] is the smallest k > i with L(k,i) != 0.
	ancestor := make([]int, n)
	for k := 0; k < n; k++ {
		s.parent[k] = -1
		ancestor[k] = -1
		for p := a.rowPtr[k]; p < a.rowPtr[k+1]; p++ {
			for i := a.colInd[p]; i != -1 && i < k; {
				next := ancestor[i]
				ancestor[i] = k
				if next == -1 {
					s.parent[i] = k
				}
				i = next
			}
		}
	}

	// Row patterns: the reach of row k's entries through the tree,
	// truncated at k. Paths are stacked so that the final order is
	// topological (every column appears before the columns it updates).
	marked := make([]bool, n)
	path := make([]int, n)
	stack := make([]int, n)
	count := make([]int, n)
	for k := 0; k < n; k++ {
		top := n
		marked[k] = true
		for p := a.rowPtr[k]; p < a.rowPtr[k+1]; p++ {
			i := a.colInd[p]
			if i >= k {
				continue
			}
			ln := 0
			for !marked[i] {
				path[ln] = i
				ln++
				marked[i] = true
				i = s.parent[i]
			}
			for ln > 0 {
				ln--
				top--
				stack[top] = path[ln]
			}
		}
		s.rows[k] = append([]int(nil), stack[top:]...)
		marked[k] = false
		for _, j := range s.rows[k] {
			marked[j] = false
			count[j]++
		}
		count[k]++ // diagonal
	}
	for j := 0; j < n; j++ {
		s.colPtr[j+1] = s.colPtr[j] + count[j]
	}
	return s
}

// Cholesky is a numeric factor L with A = L L'. Columns are stored
// compressed with the diagonal entry first.
type Cholesky struct {
	sym    *Symbolic
	rowInd []int
	values []float64
}

// Factorize computes the numeric factor of a matrix sharing the analysed
// pattern, up-looking one row of L at a time. ok is false when the matrix
// is not positive definite (including any non-finite pivot); the factor
// is unusable in that case.
func (s *Symbolic) Factorize(a *Matrix) (f *Cholesky, ok bool) {
	if a.n != s.n {
		panic(ErrDimension)
	}
	n := s.n
	f = &Cholesky{
		sym:    s,
		rowInd: make([]int, s.colPtr[n]),
		values: make([]float64, s.colPtr[n]),
	}
	next := append([]int(nil), s.colPtr[:n]...) // first free slot per column
	x := make([]float64, n)
	for k := 0; k < n; k++ {
		// Scatter row k of A below the diagonal into x.
		d := 0.0
		for p := a.rowPtr[k]; p < a.rowPtr[k+1]; p++ {
			switch j := a.colInd[p]; {
			case j < k:
				x[j] = a.values[p]
			case j == k:
				d = a.values[p]
			}
		}
		// Solve L[0:k,0:k] y = A[0:k,k] along the row pattern.
		for _, j := range s.rows[k] {
			lkj := x[j] / f.values[s.colPtr[j]]
			x[j] = 0
			for p := s.colPtr[j] + 1; p < next[j]; p++ {
				x[f.rowInd[p]] -= f.values[p] * lkj
			}
			d -= lkj * lkj
			f.rowInd[next[j]] = k
			f.values[next[j]] = lkj
			next[j]++
		}
		if !(d > 0) {
			return f, false
		}
		f.rowInd[next[k]] = k
		f.values[next[k]] = math.Sqrt(d)
		next[k]++
	}
	return f, true
}

// LogDet returns log|A| = 2 sum_j log L(j,j).
func (f *Cholesky) LogDet() float64 {
	acc := 0.0
	for j := 0; j < f.sym.n; j++ {
		acc += math.Log(f.values[f.sym.colPtr[j]])
	}
	return 2 * acc
}
