// SPDX-License-Identifier: MIT

package approx_test

import (
	"testing"

	"github.com/katalvlaran/ktest/approx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	for _, c := range []approx.Covariance{
		approx.CovStandard, approx.CovNystrom1, approx.CovNystrom2, approx.CovNystrom3, approx.CovQuantization,
	} {
		got, err := approx.ParseCovariance(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	for _, d := range []approx.Discrepancy{approx.MMDStandard, approx.MMDNystrom, approx.MMDQuantization} {
		got, err := approx.ParseDiscrepancy(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	for _, b := range []approx.AnchorBasis{approx.BasisK, approx.BasisS, approx.BasisW} {
		got, err := approx.ParseAnchorBasis(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	for _, s := range []approx.Sample{approx.X, approx.Y, approx.XY} {
		got, err := approx.ParseSample(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestParse_CaseInsensitive(t *testing.T) {
	b, err := approx.ParseAnchorBasis("w")
	require.NoError(t, err)
	assert.Equal(t, approx.BasisW, b)

	c, err := approx.ParseCovariance("Nystrom3")
	require.NoError(t, err)
	assert.Equal(t, approx.CovNystrom3, c)
}

func TestParse_Unknown(t *testing.T) {
	_, err := approx.ParseAnchorBasis("q")
	assert.ErrorIs(t, err, approx.ErrUnknownAnchorBasis)

	_, err = approx.ParseCovariance("nystrom4")
	assert.ErrorIs(t, err, approx.ErrUnknownCovariance)

	_, err = approx.ParseDiscrepancy("nystrom1")
	assert.ErrorIs(t, err, approx.ErrUnknownDiscrepancy)

	_, err = approx.ParseSample("z")
	assert.ErrorIs(t, err, approx.ErrUnknownSample)
}

func TestCovariance_Exponent(t *testing.T) {
	cases := map[approx.Covariance]int{
		approx.CovStandard:     2,
		approx.CovNystrom1:     2,
		approx.CovQuantization: 2,
		approx.CovNystrom2:     3,
		approx.CovNystrom3:     1,
	}
	for c, want := range cases {
		got, err := approx.Covariance.Exponent(c)
		require.NoError(t, err, c.String())
		assert.Equal(t, want, got, c.String())
	}

	_, err := approx.Covariance(42).Exponent()
	assert.ErrorIs(t, err, approx.ErrUnknownCovariance)
	assert.False(t, approx.Covariance(42).Valid())
	assert.Equal(t, "Covariance(42)", approx.Covariance(42).String())
}

func TestCovariance_IsNystrom(t *testing.T) {
	assert.False(t, approx.CovStandard.IsNystrom())
	assert.True(t, approx.CovNystrom1.IsNystrom())
	assert.True(t, approx.CovNystrom2.IsNystrom())
	assert.True(t, approx.CovNystrom3.IsNystrom())
	assert.False(t, approx.CovQuantization.IsNystrom())
}
