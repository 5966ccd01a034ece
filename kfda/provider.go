// SPDX-License-Identifier: MIT

package kfda

import (
	"github.com/katalvlaran/ktest/approx"
	"gonum.org/v1/gonum/mat"
)

// Provider supplies everything the engine does not compute itself: group
// sizes, Gram blocks, quantization weights, and the side effects that
// populate the spectral cache. filter names an outlier filter, "" for none;
// every block must be restricted to the same observations for a given filter.
type Provider interface {
	// GroupSizes returns (n1, n2) for observations, or (m1, m2) for
	// landmarks when landmarks is true.
	GroupSizes(landmarks bool, filter string) (n1, n2 int, err error)

	// Gram returns the n×n data Gram matrix, X rows before Y rows.
	Gram(filter string) (*mat.Dense, error)

	// LandmarkGram returns the m×m landmark Gram matrix, X landmarks first.
	LandmarkGram(filter string) (*mat.Dense, error)

	// CrossGram returns the landmark×observation block of sample: m×n for XY,
	// m1×n1 for X, m2×n2 for Y.
	CrossGram(sample approx.Sample, filter string) (*mat.Dense, error)

	// QuantizationWeights returns cluster size^power per landmark of sample.
	QuantizationWeights(sample approx.Sample, power float64, filter string) ([]float64, error)

	// QuantizationCounts returns the number of observations per landmark of sample.
	QuantizationCounts(sample approx.Sample, filter string) ([]int, error)

	// EnsureLandmarks makes landmarks (and their assignments) available.
	EnsureLandmarks(filter string) error

	// EnsureAnchors stores the landmark spectrum under
	// spectral.AnchorKey{sample, basis, filter} unless already present.
	EnsureAnchors(sample approx.Sample, basis approx.AnchorBasis, filter string) error

	// EnsureSpectrum stores the XY covariance spectrum under
	// spectral.NewKey(approx.XY, cov, basis, filter) unless already present.
	EnsureSpectrum(cov approx.Covariance, basis approx.AnchorBasis, filter string) error
}
