// SPDX-License-Identifier: MIT

package centering_test

import (
	"testing"

	"github.com/katalvlaran/ktest/centering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func blockSums(v *mat.VecDense, n1 int) (float64, float64) {
	n := v.Len()
	return mat.Sum(v.SliceVec(0, n1)), mat.Sum(v.SliceVec(n1, n))
}

func TestContrastVector_Sums(t *testing.T) {
	for _, sz := range [][2]int{{1, 1}, {3, 3}, {2, 7}, {11, 4}} {
		w, err := centering.ContrastVector(sz[0], sz[1])
		require.NoError(t, err)
		require.Equal(t, sz[0]+sz[1], w.Len())

		s1, s2 := blockSums(w, sz[0])
		assert.InDelta(t, -1, s1, tol)
		assert.InDelta(t, 1, s2, tol)
		assert.InDelta(t, 0, s1+s2, tol)
	}

	_, err := centering.ContrastVector(0, 2)
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
}

func TestQuantizedContrastVector(t *testing.T) {
	w, err := centering.QuantizedContrastVector([]int{3, 1}, []int{2, 0, 6})
	require.NoError(t, err)
	require.Equal(t, 5, w.Len())

	assert.InDelta(t, -0.75, w.AtVec(0), tol)
	assert.InDelta(t, -0.25, w.AtVec(1), tol)
	assert.InDelta(t, 0.25, w.AtVec(2), tol)
	assert.Equal(t, 0.0, w.AtVec(3))
	assert.InDelta(t, 0.75, w.AtVec(4), tol)

	s1, s2 := blockSums(w, 2)
	assert.InDelta(t, -1, s1, tol)
	assert.InDelta(t, 1, s2, tol)

	_, err = centering.QuantizedContrastVector([]int{0, 0}, []int{1})
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
	_, err = centering.QuantizedContrastVector([]int{1, -1}, []int{1})
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
	_, err = centering.QuantizedContrastVector(nil, []int{1})
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
}

func TestSingleGroupWeightVector(t *testing.T) {
	w, err := centering.SingleGroupWeightVector(4)
	require.NoError(t, err)
	assert.InDelta(t, 1, mat.Sum(w), tol)
	assert.InDelta(t, 0.25, w.AtVec(3), tol)

	_, err = centering.SingleGroupWeightVector(-2)
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
}
