// SPDX-License-Identifier: MIT

package centering_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/ktest/approx"
	"github.com/katalvlaran/ktest/centering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const tol = 1e-12

// requireIdempotent asserts P·P == P.
func requireIdempotent(t *testing.T, p *mat.Dense) {
	t.Helper()
	var pp mat.Dense
	pp.Mul(p, p)
	require.True(t, mat.EqualApprox(&pp, p, tol), "P·P != P:\n%v", mat.Formatted(&pp))
}

func requireSymmetric(t *testing.T, p *mat.Dense) {
	t.Helper()
	require.True(t, mat.EqualApprox(p, p.T(), tol))
}

func TestGroupAverageBlock(t *testing.T) {
	j, err := centering.GroupAverageBlock(4)
	require.NoError(t, err)
	r, c := j.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 4, c)
	assert.InDelta(t, 0.25, j.At(2, 3), tol)
	requireIdempotent(t, j)

	_, err = centering.GroupAverageBlock(0)
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
}

func TestBlockDiagonalGroupAverage(t *testing.T) {
	sizes := []int{2, 3, 1}
	b, err := centering.BlockDiagonalGroupAverage(sizes)
	require.NoError(t, err)

	requireSymmetric(t, b)
	requireIdempotent(t, b)

	// off-block entries are zero, in-block entries are 1/size
	assert.Equal(t, 0.0, b.At(0, 2))
	assert.InDelta(t, 1.0/3, b.At(3, 4), tol)
	assert.Equal(t, 1.0, b.At(5, 5))

	// (I − B) kills a constant vector restricted to any group
	var ib mat.Dense
	ib.Sub(identity(6), b)
	off := 0
	for _, s := range sizes {
		ones := mat.NewVecDense(6, nil)
		for i := off; i < off+s; i++ {
			ones.SetVec(i, 1)
		}
		var out mat.VecDense
		out.MulVec(&ib, ones)
		for i := 0; i < 6; i++ {
			assert.InDelta(t, 0, out.AtVec(i), tol)
		}
		off += s
	}

	_, err = centering.BlockDiagonalGroupAverage(nil)
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
	_, err = centering.BlockDiagonalGroupAverage([]int{2, -1})
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
}

func TestWithinGroupBiCentering(t *testing.T) {
	p, err := centering.WithinGroupBiCentering(2, 3)
	require.NoError(t, err)

	requireSymmetric(t, p)
	requireIdempotent(t, p)
	assert.InDelta(t, 0.5, p.At(0, 0), tol)
	assert.InDelta(t, -0.5, p.At(0, 1), tol)
	assert.InDelta(t, 2.0/3, p.At(2, 2), tol)
	assert.Equal(t, 0.0, p.At(1, 2))

	single, err := centering.SingleCentering(3)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(single, p.Slice(2, 5, 2, 5), tol))

	_, err = centering.WithinGroupBiCentering(0, 3)
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
}

func TestQuantizedBiCentering(t *testing.T) {
	counts1 := []float64{3, 1}
	counts2 := []float64{2, 2, 1}
	a1 := sqrtAll(counts1)
	a2 := sqrtAll(counts2)

	t.Run("group denominator is a projector", func(t *testing.T) {
		p, err := centering.QuantizedBiCentering(a1, a2, 4, 5, centering.DenominatorGroup)
		require.NoError(t, err)
		requireSymmetric(t, p)
		requireIdempotent(t, p)
	})

	t.Run("total denominator", func(t *testing.T) {
		p, err := centering.QuantizedBiCentering(a1, a2, 4, 5, centering.DenominatorTotal)
		require.NoError(t, err)
		requireSymmetric(t, p)
		// I − a aᵀ / 9
		assert.InDelta(t, 1-3.0/9, p.At(0, 0), tol)
		assert.InDelta(t, -math.Sqrt(3)/9, p.At(0, 1), tol)
		assert.InDelta(t, -2.0/9, p.At(2, 3), tol)
		assert.Equal(t, 0.0, p.At(1, 2))
	})

	_, err := centering.QuantizedBiCentering(a1, a2, 4, 5, centering.Denominator(7))
	assert.ErrorIs(t, err, centering.ErrInvalidDenominator)
	_, err = centering.QuantizedBiCentering(nil, a2, 4, 5, centering.DenominatorTotal)
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
}

func TestLandmarkCenteringMatrix(t *testing.T) {
	cases := []struct {
		name   string
		basis  approx.AnchorBasis
		sample approx.Sample
		want   func() *mat.Dense
	}{
		{"K xy", approx.BasisK, approx.XY, func() *mat.Dense { return identity(5) }},
		{"K x", approx.BasisK, approx.X, func() *mat.Dense { return identity(2) }},
		{"S y", approx.BasisS, approx.Y, func() *mat.Dense { p, _ := centering.SingleCentering(3); return p }},
		{"S xy", approx.BasisS, approx.XY, func() *mat.Dense { p, _ := centering.SingleCentering(5); return p }},
		{"W xy", approx.BasisW, approx.XY, func() *mat.Dense { p, _ := centering.WithinGroupBiCentering(2, 3); return p }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := centering.LandmarkCenteringMatrix(tc.basis, tc.sample, 2, 3)
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(tc.want(), got, tol))
		})
	}

	_, err := centering.LandmarkCenteringMatrix(approx.BasisW, approx.X, 2, 3)
	assert.ErrorIs(t, err, centering.ErrUnsupportedBasis)

	_, err = centering.LandmarkCenteringMatrix(approx.AnchorBasis(9), approx.XY, 2, 3)
	assert.ErrorIs(t, err, approx.ErrUnknownAnchorBasis)

	// only the requested group is validated
	_, err = centering.LandmarkCenteringMatrix(approx.BasisS, approx.X, 2, 0)
	assert.NoError(t, err)
	_, err = centering.LandmarkCenteringMatrix(approx.BasisS, approx.Y, 2, 0)
	assert.ErrorIs(t, err, centering.ErrInvalidSize)
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func sqrtAll(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Sqrt(v)
	}
	return out
}
