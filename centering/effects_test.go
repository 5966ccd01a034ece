// SPDX-License-Identifier: MIT

package centering_test

import (
	"testing"

	"github.com/katalvlaran/ktest/centering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// nineObservations has a 3-category effect "cat" and a 2-category effect
// "sexe", both interleaved so alignment actually permutes.
func nineObservations() centering.MapMetadata {
	return centering.MapMetadata{
		"cat":  {"0", "1", "1", "2", "0", "0", "1", "2", "2"},
		"sexe": {"M", "M", "W", "W", "M", "W", "W", "M", "W"},
	}
}

// directAverage builds P[i][j] = 1/|g| when i and j share category g,
// straight from the definition.
func directAverage(col []string) *mat.Dense {
	n := len(col)
	count := map[string]int{}
	for _, v := range col {
		count[v]++
	}
	p := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if col[i] == col[j] {
				p.Set(i, j, 1/float64(count[col[i]]))
			}
		}
	}
	return p
}

func TestEffectCenteringMatrix_Combination(t *testing.T) {
	md := nineObservations()
	spec, err := centering.ParseEffectSpec("#-cat_+sexe")
	require.NoError(t, err)

	got, err := centering.EffectCenteringMatrix(9, spec, md)
	require.NoError(t, err)

	var want mat.Dense
	want.Sub(identity(9), directAverage(md["cat"]))
	want.Add(&want, directAverage(md["sexe"]))
	assert.True(t, mat.EqualApprox(&want, got, tol))
}

func TestEffectCenteringMatrix_SingleColumn(t *testing.T) {
	md := nineObservations()
	spec, err := centering.ParseEffectSpec("cat")
	require.NoError(t, err)
	assert.Equal(t, centering.CenterBy("cat"), spec)

	got, err := centering.EffectCenteringMatrix(9, spec, md)
	require.NoError(t, err)

	var want mat.Dense
	want.Sub(identity(9), directAverage(md["cat"]))
	assert.True(t, mat.EqualApprox(&want, got, tol))
	requireIdempotent(t, got)

	// each row of a centered-by-category projector sums to zero
	for i := 0; i < 9; i++ {
		assert.InDelta(t, 0, mat.Sum(got.RowView(i)), tol)
	}
}

func TestEffectCenteringMatrix_Errors(t *testing.T) {
	md := nineObservations()

	_, err := centering.EffectCenteringMatrix(9, centering.CenterBy("patient"), md)
	assert.ErrorIs(t, err, centering.ErrMissingMetadataColumn)

	_, err = centering.EffectCenteringMatrix(8, centering.CenterBy("cat"), md)
	assert.ErrorIs(t, err, centering.ErrShapeMismatch)

	_, err = centering.EffectCenteringMatrix(9, centering.EffectSpec{}, md)
	assert.ErrorIs(t, err, centering.ErrInvalidEffectSpec)
}

func TestParseEffectSpec(t *testing.T) {
	spec, err := centering.ParseEffectSpec("#-celltype_+patient")
	require.NoError(t, err)
	assert.Equal(t, []centering.EffectTerm{
		{Sign: centering.Remove, Column: "celltype"},
		{Sign: centering.Restore, Column: "patient"},
	}, spec.Terms)
	assert.Equal(t, "#-celltype_+patient", spec.String())
	assert.Equal(t, "patient", centering.CenterBy("patient").String())

	for _, bad := range []string{"", "#", "#celltype", "#-celltype_", "#-a_*b"} {
		_, err := centering.ParseEffectSpec(bad)
		assert.ErrorIs(t, err, centering.ErrInvalidEffectSpec, bad)
	}
}
