// SPDX-License-Identifier: MIT

package spectral_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/ktest/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func mustEntry(t *testing.T, values []float64) spectral.Entry {
	t.Helper()
	n := len(values)
	v := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		v.Set(i, i, 1)
	}
	e, err := spectral.NewEntry(values, v)
	require.NoError(t, err)
	return e
}

func TestNewEntry_Validation(t *testing.T) {
	_, err := spectral.NewEntry([]float64{3, 1}, mat.NewDense(3, 2, nil))
	require.NoError(t, err)

	_, err = spectral.NewEntry([]float64{1, 3}, mat.NewDense(2, 2, nil))
	assert.ErrorIs(t, err, spectral.ErrInvalidEntry, "ascending")

	_, err = spectral.NewEntry([]float64{3, 1}, mat.NewDense(2, 3, nil))
	assert.ErrorIs(t, err, spectral.ErrInvalidEntry, "column count")

	_, err = spectral.NewEntry([]float64{math.NaN()}, mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, spectral.ErrInvalidEntry, "NaN")

	_, err = spectral.NewEntry([]float64{1}, nil)
	assert.ErrorIs(t, err, spectral.ErrInvalidEntry, "nil")

	// ties are allowed
	_, err = spectral.NewEntry([]float64{2, 2, 1}, mat.NewDense(3, 3, nil))
	assert.NoError(t, err)
}

func TestEntry_CheckPositive(t *testing.T) {
	e := mustEntry(t, []float64{4, 1, 1e-13, -1e-15})

	assert.NoError(t, e.CheckPositive(2, 1e-12))
	assert.ErrorIs(t, e.CheckPositive(3, 1e-12), spectral.ErrNumericDegeneracy)
	assert.NoError(t, e.CheckPositive(3, 0))
	assert.ErrorIs(t, e.CheckPositive(4, 0), spectral.ErrNumericDegeneracy)
	assert.ErrorIs(t, e.CheckPositive(4, -1), spectral.ErrNumericDegeneracy, "negative floor still rejects λ ≤ 0")
	assert.ErrorIs(t, e.CheckPositive(5, 0), spectral.ErrTruncation)
}

func TestEntry_TruncateAndClamp(t *testing.T) {
	e := mustEntry(t, []float64{5, 3, 2})

	vals, vecs, err := e.Truncate(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 3}, vals)
	r, c := vecs.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)

	_, _, err = e.Truncate(0)
	assert.ErrorIs(t, err, spectral.ErrTruncation)
	_, _, err = e.Truncate(4)
	assert.ErrorIs(t, err, spectral.ErrTruncation)

	assert.Equal(t, 3, e.ClampTruncation(0))
	assert.Equal(t, 3, e.ClampTruncation(-2))
	assert.Equal(t, 3, e.ClampTruncation(10))
	assert.Equal(t, 2, e.ClampTruncation(2))
	assert.InDelta(t, 10, e.Trace(), 1e-15)
}
