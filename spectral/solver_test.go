// SPDX-License-Identifier: MIT

package spectral_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/ktest/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// randomSPD returns BᵀB + shift·I for a seeded random B.
func randomSPD(n int, seed int64, shift float64) *mat.SymDense {
	rng := rand.New(rand.NewSource(seed))
	b := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b.Set(i, j, rng.NormFloat64())
		}
	}
	s := mat.NewSymDense(n, nil)
	s.SymOuterK(1, b.T())
	for i := 0; i < n; i++ {
		s.SetSym(i, i, s.At(i, i)+shift)
	}
	return s
}

func requireEigenpairs(t *testing.T, a mat.Matrix, e spectral.Entry) {
	t.Helper()
	n := e.Dim()
	for p := 0; p < e.Len(); p++ {
		v := e.Vectors.ColView(p)
		var av mat.VecDense
		av.MulVec(a, v)
		for i := 0; i < n; i++ {
			require.InDelta(t, e.Values[p]*v.AtVec(i), av.AtVec(i), 1e-9, "pair %d row %d", p, i)
		}
		require.InDelta(t, 1, mat.Norm(v, 2), 1e-10)
	}
	for p := 1; p < e.Len(); p++ {
		require.GreaterOrEqual(t, e.Values[p-1], e.Values[p])
	}
}

func TestSolvers_AgreeOnSPD(t *testing.T) {
	a := randomSPD(8, 11, 0.5)

	g, err := spectral.NewGonumSolver().Decompose(a)
	require.NoError(t, err)
	j, err := spectral.NewJacobiSolver().Decompose(a)
	require.NoError(t, err)

	require.Equal(t, 8, g.Len())
	require.Equal(t, 8, j.Len())
	requireEigenpairs(t, a, g)
	requireEigenpairs(t, a, j)

	for p := 0; p < 8; p++ {
		assert.InDelta(t, g.Values[p], j.Values[p], 1e-9)
		// eigenvectors agree up to sign
		d := mat.Dot(g.Vectors.ColView(p), j.Vectors.ColView(p))
		assert.InDelta(t, 1, math.Abs(d), 1e-8)
	}
}

func TestSolvers_DropNullDirections(t *testing.T) {
	// within-group centering of sizes 2 and 3: eigenvalue 1 (×3) and 0 (×2)
	p := mat.NewSymDense(5, []float64{
		0.5, -0.5, 0, 0, 0,
		-0.5, 0.5, 0, 0, 0,
		0, 0, 2.0 / 3, -1.0 / 3, -1.0 / 3,
		0, 0, -1.0 / 3, 2.0 / 3, -1.0 / 3,
		0, 0, -1.0 / 3, -1.0 / 3, 2.0 / 3,
	})
	for name, s := range map[string]spectral.Solver{
		"gonum":  spectral.NewGonumSolver(),
		"jacobi": spectral.NewJacobiSolver(),
	} {
		t.Run(name, func(t *testing.T) {
			e, err := s.Decompose(p)
			require.NoError(t, err)
			require.Equal(t, 3, e.Len())
			assert.Equal(t, 5, e.Dim())
			for _, v := range e.Values {
				assert.InDelta(t, 1, v, 1e-10)
			}
			requireEigenpairs(t, p, e)
		})
	}

	keepAll, err := spectral.GonumSolver{Cutoff: -1}.Decompose(p)
	require.NoError(t, err)
	assert.Equal(t, 5, keepAll.Len())
}

func TestSolvers_AllZeroIsDegenerate(t *testing.T) {
	_, err := spectral.NewGonumSolver().Decompose(mat.NewSymDense(3, nil))
	assert.ErrorIs(t, err, spectral.ErrNumericDegeneracy)
	_, err = spectral.NewJacobiSolver().Decompose(mat.NewSymDense(3, nil))
	assert.ErrorIs(t, err, spectral.ErrNumericDegeneracy)
}

func TestSymmetrize(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2 + 1e-12, 2, 3})
	s, err := spectral.Symmetrize(a, spectral.DefaultSymmetryTolerance)
	require.NoError(t, err)
	assert.InDelta(t, 2+5e-13, s.At(0, 1), 1e-15)

	_, err = spectral.Symmetrize(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), spectral.DefaultSymmetryTolerance)
	assert.ErrorIs(t, err, spectral.ErrNotSymmetric)
	_, err = spectral.Symmetrize(mat.NewDense(2, 3, nil), spectral.DefaultSymmetryTolerance)
	assert.ErrorIs(t, err, spectral.ErrNotSymmetric)
}
