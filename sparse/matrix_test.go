package sparse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromTriplets(t *testing.T) {
	t.Parallel()

	t.Run("builds and sums duplicates", func(t *testing.T) {
		t.Parallel()
		m, err := NewFromTriplets(3,
			[]int{0, 2, 1, 0, 2},
			[]int{0, 1, 1, 0, 2},
			[]float64{1, 4, 2, 0.5, 3})
		require.NoError(t, err)
		assert.Equal(t, 3, m.Dim())
		assert.Equal(t, 4, m.NNZ())
		assert.Equal(t, 1.5, m.At(0, 0)) // duplicate (0,0) summed
		assert.Equal(t, 2.0, m.At(1, 1))
		assert.Equal(t, 4.0, m.At(2, 1))
		assert.Equal(t, 3.0, m.At(2, 2))
		assert.Equal(t, 0.0, m.At(0, 2))
	})

	t.Run("empty matrix", func(t *testing.T) {
		t.Parallel()
		m, err := NewFromTriplets(2, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, m.NNZ())
		assert.Equal(t, 0.0, m.At(1, 0))
	})

	t.Run("rejects negative dimension", func(t *testing.T) {
		t.Parallel()
		_, err := NewFromTriplets(-1, nil, nil, nil)
		assert.ErrorIs(t, err, ErrDimension)
	})

	t.Run("rejects mismatched slices", func(t *testing.T) {
		t.Parallel()
		_, err := NewFromTriplets(2, []int{0}, []int{0, 1}, []float64{1})
		assert.ErrorIs(t, err, ErrDimension)
	})

	t.Run("rejects out-of-range coordinates", func(t *testing.T) {
		t.Parallel()
		_, err := NewFromTriplets(2, []int{2}, []int{0}, []float64{1})
		assert.ErrorIs(t, err, ErrIndexRange)
		_, err = NewFromTriplets(2, []int{0}, []int{-1}, []float64{1})
		assert.ErrorIs(t, err, ErrIndexRange)
	})
}

func TestMatrixOps(t *testing.T) {
	t.Parallel()

	// | 2 1 0 |
	// | 1 3 0 |
	// | 0 0 4 |
	m, err := NewFromTriplets(3,
		[]int{0, 0, 1, 1, 2},
		[]int{0, 1, 0, 1, 2},
		[]float64{2, 1, 1, 3, 4})
	require.NoError(t, err)

	t.Run("mulvec", func(t *testing.T) {
		t.Parallel()
		dst := make([]float64, 3)
		m.MulVec(dst, []float64{1, 2, 3})
		assert.Equal(t, []float64{4, 7, 12}, dst)
	})

	t.Run("quad matches x'Mx", func(t *testing.T) {
		t.Parallel()
		x := []float64{1, -1, 2}
		// 2 - 1 - 1 + 3 + 16
		assert.InDelta(t, 19.0, m.Quad(x), 1e-12)
	})

	t.Run("dense round trip", func(t *testing.T) {
		t.Parallel()
		d := m.Dense()
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				assert.Equal(t, m.At(i, j), d.At(i, j))
			}
		}
	})

	t.Run("identity", func(t *testing.T) {
		t.Parallel()
		id := Identity(4)
		x := []float64{1, 2, 3, 4}
		dst := make([]float64, 4)
		id.MulVec(dst, x)
		assert.Equal(t, x, dst)
		assert.InDelta(t, 30.0, id.Quad(x), 1e-12)
	})
}

func TestMatrixPanics(t *testing.T) {
	t.Parallel()
	m := Identity(2)
	assert.Panics(t, func() { m.At(2, 0) })
	assert.Panics(t, func() { m.MulVec(make([]float64, 3), make([]float64, 2)) })
	assert.Panics(t, func() { m.Quad(make([]float64, 1)) })
	assert.False(t, math.IsNaN(m.At(1, 1)))
}
