// SPDX-License-Identifier: MIT

package session_test

import (
	"testing"

	"github.com/katalvlaran/ktest/approx"
	"github.com/katalvlaran/ktest/centering"
	"github.com/katalvlaran/ktest/kernel"
	"github.com/katalvlaran/ktest/session"
	"github.com/katalvlaran/ktest/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func samples() (*mat.Dense, *mat.Dense) {
	x := mat.NewDense(4, 2, []float64{
		0.0, 0.1,
		0.4, -0.3,
		-0.2, 0.5,
		0.3, 0.2,
	})
	y := mat.NewDense(4, 2, []float64{
		1.2, 0.9,
		0.8, 1.4,
		1.5, 1.1,
		1.0, 0.6,
	})
	return x, y
}

func TestNew_Validation(t *testing.T) {
	x, y := samples()

	_, err := session.New(nil, y)
	assert.ErrorIs(t, err, session.ErrEmptySample)

	_, err = session.New(x, mat.NewDense(2, 3, nil))
	assert.ErrorIs(t, err, kernel.ErrDimensionMismatch)

	_, err = session.New(x, y, session.WithOutlierFilter("short", []bool{true}))
	assert.ErrorIs(t, err, centering.ErrShapeMismatch)

	zx := mat.NewDense(2, 2, nil)
	zy := mat.NewDense(1, 2, nil)
	_, err = session.New(x, y, session.WithLandmarks(zx, zy, []int{0, 1, 0, 2}, []int{0, 0, 0, 0}))
	assert.ErrorIs(t, err, session.ErrInvalidLandmarks)

	assert.Panics(t, func() { session.WithKernel(nil) })
	assert.Panics(t, func() { session.WithOutlierFilter("", nil) })
}

func TestSession_FiltersAndSizes(t *testing.T) {
	x, y := samples()
	s, err := session.New(x, y,
		session.WithKernel(kernel.Linear{}),
		session.WithOutlierFilter("drop", []bool{false, true, false, false, true, true, false, false}),
		session.WithOutlierFilter("allx", []bool{true, true, true, true, false, false, false, false}),
	)
	require.NoError(t, err)

	n1, n2, err := s.GroupSizes(false, "")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4}, []int{n1, n2})

	n1, n2, err = s.GroupSizes(false, "drop")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, []int{n1, n2})

	_, _, err = s.GroupSizes(false, "nope")
	assert.ErrorIs(t, err, session.ErrUnknownFilter)

	_, err = s.Gram("allx")
	assert.ErrorIs(t, err, session.ErrEmptySample)

	k, err := s.Gram("drop")
	require.NoError(t, err)
	r, c := k.Dims()
	assert.Equal(t, []int{5, 5}, []int{r, c})
	// kept rows: x0 x2 x3 y2 y3
	assert.InDelta(t, 0.0*1.5+0.1*1.1, k.At(0, 3), 1e-12)

	again, err := s.Gram("drop")
	require.NoError(t, err)
	assert.Same(t, k, again)
}

func TestSession_DefaultLandmarksAreObservations(t *testing.T) {
	x, y := samples()
	s, err := session.New(x, y, session.WithKernel(kernel.Linear{}))
	require.NoError(t, err)
	require.NoError(t, s.EnsureLandmarks(""))

	m1, m2, err := s.GroupSizes(true, "")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4}, []int{m1, m2})

	counts, err := s.QuantizationCounts(approx.XY, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 1}, counts)

	k, err := s.Gram("")
	require.NoError(t, err)
	kz, err := s.LandmarkGram("")
	require.NoError(t, err)
	kzx, err := s.CrossGram(approx.XY, "")
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(k, kz, 1e-12))
	assert.True(t, mat.EqualApprox(k, kzx, 1e-12))
}

func TestSession_SuppliedLandmarks(t *testing.T) {
	x, y := samples()
	zx := mat.NewDense(2, 2, []float64{0, 0, 0.3, 0})
	zy := mat.NewDense(1, 2, []float64{1, 1})
	s, err := session.New(x, y,
		session.WithKernel(kernel.Linear{}),
		session.WithLandmarks(zx, zy, []int{0, 1, 0, 0}, []int{0, 0, 0, 0}),
		session.WithOutlierFilter("first", []bool{true, false, false, false, false, false, false, false}),
	)
	require.NoError(t, err)

	counts, err := s.QuantizationCounts(approx.XY, "")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 4}, counts)

	counts, err = s.QuantizationCounts(approx.X, "first")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, counts)

	w, err := s.QuantizationWeights(approx.Y, 0.5, "")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2}, w, 1e-12)

	kx, err := s.CrossGram(approx.X, "first")
	require.NoError(t, err)
	r, c := kx.Dims()
	assert.Equal(t, []int{2, 3}, []int{r, c})
}

func TestSession_StandardSpectrum(t *testing.T) {
	x, y := samples()
	s, err := session.New(x, y, session.WithSolver(spectral.NewJacobiSolver()))
	require.NoError(t, err)
	require.NoError(t, s.EnsureSpectrum(approx.CovStandard, approx.BasisW, ""))
	require.NoError(t, s.EnsureSpectrum(approx.CovStandard, approx.BasisS, ""))

	entries, anchors := s.Cache().Len()
	assert.Equal(t, 1, entries, "basis is irrelevant to the standard spectrum")
	assert.Zero(t, anchors)

	e, err := s.Cache().Lookup(spectral.NewKey(approx.XY, approx.CovStandard, approx.BasisK, ""))
	require.NoError(t, err)

	k, err := s.Gram("")
	require.NoError(t, err)
	pbi, err := centering.WithinGroupBiCentering(4, 4)
	require.NoError(t, err)
	var a mat.Dense
	a.Product(pbi, k, pbi)
	a.Scale(1.0/8, &a)

	assert.Equal(t, 6, e.Len(), "two null directions from the group means")
	for p := 0; p < e.Len(); p++ {
		v := e.Vectors.ColView(p)
		var av mat.VecDense
		av.MulVec(&a, v)
		for i := 0; i < 8; i++ {
			assert.InDelta(t, e.Values[p]*v.AtVec(i), av.AtVec(i), 1e-9)
		}
	}
}

func TestSession_NystromSpectrumBuildsAnchors(t *testing.T) {
	x, y := samples()
	s, err := session.New(x, y)
	require.NoError(t, err)

	require.NoError(t, s.EnsureSpectrum(approx.CovNystrom3, approx.BasisW, ""))
	entries, anchors := s.Cache().Len()
	assert.Equal(t, 1, entries)
	assert.Equal(t, 1, anchors)

	a, err := s.Cache().LookupAnchors(spectral.AnchorKey{Sample: approx.XY, Basis: approx.BasisW})
	require.NoError(t, err)
	e, err := s.Cache().Lookup(spectral.NewKey(approx.XY, approx.CovNystrom3, approx.BasisW, ""))
	require.NoError(t, err)
	// every observation is a landmark: Ψ·Pbi·Ψᵀ = diag(λ_anchors)
	require.Equal(t, a.Len(), e.Len())
	for p := range e.Values {
		assert.InDelta(t, a.Values[p]/8, e.Values[p], 1e-9)
	}

	err = s.EnsureAnchors(approx.X, approx.BasisW, "")
	assert.ErrorIs(t, err, centering.ErrUnsupportedBasis)
	require.NoError(t, s.EnsureAnchors(approx.X, approx.BasisS, ""))
}

func TestSession_EffectCentering(t *testing.T) {
	x, y := samples()
	md := centering.MapMetadata{"batch": {"a", "b", "a", "b", "a", "b", "a", "b"}}
	spec := centering.CenterBy("batch")
	s, err := session.New(x, y, session.WithKernel(kernel.Linear{}), session.WithEffectCentering(spec, md))
	require.NoError(t, err)

	got, err := s.Gram("")
	require.NoError(t, err)

	pe, err := centering.EffectCenteringMatrix(8, spec, md)
	require.NoError(t, err)
	pooled := &mat.Dense{}
	pooled.Stack(x, y)
	var k, want mat.Dense
	k.Mul(pooled, pooled.T())
	want.Product(pe, &k, pe)
	assert.True(t, mat.EqualApprox(&want, got, 1e-12))

	_, err = session.New(x, y, session.WithEffectCentering(centering.CenterBy("donor"), md))
	require.NoError(t, err, "columns are read lazily")
}

func TestSession_ClearAndEngine(t *testing.T) {
	x, y := samples()
	s, err := session.New(x, y)
	require.NoError(t, err)

	eng, err := s.Engine()
	require.NoError(t, err)
	name, err := eng.Run(0, "", "")
	require.NoError(t, err)
	assert.Equal(t, "standardstandard", name)
	assert.Equal(t, []string{"standardstandard"}, s.Store().Names("df_kfdat"))

	s.Clear()
	assert.Empty(t, s.Store().Names("df_kfdat"))
	entries, anchors := s.Cache().Len()
	assert.Zero(t, entries+anchors)
}

func TestSession_MinEigenvalueGuardsInversions(t *testing.T) {
	assert.Panics(t, func() { session.WithMinEigenvalue(-1) })

	x, y := samples()
	s, err := session.New(x, y,
		session.WithSolver(spectral.GonumSolver{Cutoff: -1}),
		session.WithMinEigenvalue(1e6))
	require.NoError(t, err)

	err = s.EnsureSpectrum(approx.CovNystrom1, approx.BasisW, "")
	assert.ErrorIs(t, err, spectral.ErrNumericDegeneracy)
	_, anchors := s.Cache().Len()
	assert.Equal(t, 1, anchors, "anchors are cached, the covariance is not")

	eng, err := s.Engine()
	require.NoError(t, err)
	_, err = eng.Run(0, "", "")
	assert.ErrorIs(t, err, spectral.ErrNumericDegeneracy, "engines inherit the floor")
}
