// SPDX-License-Identifier: MIT

package kernel_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/ktest/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSquaredDistances(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{0, 0, 1, 1})
	y := mat.NewDense(1, 2, []float64{3, 1})

	d, err := kernel.SquaredDistances(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 10, d.At(0, 0), 1e-12)
	assert.InDelta(t, 4, d.At(1, 0), 1e-12)

	_, err = kernel.SquaredDistances(x, mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, kernel.ErrDimensionMismatch)
}

func TestLinear(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	k, err := kernel.Linear{}.Gram(x, x)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{5, 11, 11, 25}), k))
}

func TestGaussian(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{0, 1, 3})
	k, err := kernel.Gaussian{Sigma: 2}.Gram(x, x)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1, k.At(i, i), 1e-15)
	}
	assert.InDelta(t, math.Exp(-1.0/8), k.At(0, 1), 1e-15)
	assert.InDelta(t, math.Exp(-9.0/8), k.At(2, 0), 1e-15)

	_, err = kernel.Gaussian{}.Gram(x, x)
	assert.ErrorIs(t, err, kernel.ErrInvalidBandwidth)
}

func TestMedianHeuristic(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{0, 1})
	y := mat.NewDense(1, 1, []float64{3})

	// squared distances 0,0,0,1,1,4,4,9,9: lower median is 1
	m, err := kernel.MedianHeuristic(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1, m, 1e-12)

	g, err := kernel.NewGaussianMedian(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1, g.Sigma, 1e-12)

	same := mat.NewDense(2, 1, []float64{5, 5})
	_, err = kernel.NewGaussianMedian(same, same)
	assert.ErrorIs(t, err, kernel.ErrInvalidBandwidth)
}
