// SPDX-License-Identifier: MIT

package centering

import (
	"fmt"

	"github.com/katalvlaran/ktest/approx"
	"gonum.org/v1/gonum/mat"
)

// Denominator selects the normaliser of the quantized bi-centering blocks.
type Denominator int

const (
	// DenominatorTotal divides every block by the pooled observation count n.
	DenominatorTotal Denominator = iota
	// DenominatorGroup divides block i by its own observation count nᵢ, which
	// makes each block an orthogonal projector when a = √counts.
	DenominatorGroup
)

// DefaultDenominator is the behaviour the statistics were calibrated with.
const DefaultDenominator = DenominatorTotal

// String returns "total" or "group".
func (d Denominator) String() string {
	switch d {
	case DenominatorTotal:
		return "total"
	case DenominatorGroup:
		return "group"
	default:
		return fmt.Sprintf("Denominator(%d)", int(d))
	}
}

// GroupAverageBlock returns the n×n matrix J/n (every entry 1/n).
func GroupAverageBlock(n int) (*mat.Dense, error) {
	if err := validateSizes(n); err != nil {
		return nil, centeringErrorf(opGroupAverage, err)
	}

	return groupAverage(n), nil
}

func groupAverage(n int) *mat.Dense {
	data := make([]float64, n*n)
	v := 1 / float64(n)
	for i := range data {
		data[i] = v
	}

	return mat.NewDense(n, n, data)
}

// BlockDiagonalGroupAverage returns diag(J_{s0}/s0, J_{s1}/s1, …) of size Σ sizes.
// The result is an orthogonal projector: symmetric and idempotent.
func BlockDiagonalGroupAverage(sizes []int) (*mat.Dense, error) {
	if len(sizes) == 0 {
		return nil, centeringErrorf(opBlockDiagonal, fmt.Errorf("no groups: %w", ErrInvalidSize))
	}
	if err := validateSizes(sizes...); err != nil {
		return nil, centeringErrorf(opBlockDiagonal, err)
	}
	blocks := make([]mat.Matrix, len(sizes))
	for i, s := range sizes {
		blocks[i] = groupAverage(s)
	}

	return blockDiag(blocks...), nil
}

// WithinGroupBiCentering returns diag(I_{n1} − J_{n1}/n1, I_{n2} − J_{n2}/n2).
//
// P·K·P/n then has the spectrum of the within-group covariance operator.
func WithinGroupBiCentering(n1, n2 int) (*mat.Dense, error) {
	if err := validateSizes(n1, n2); err != nil {
		return nil, centeringErrorf(opWithin, err)
	}

	return blockDiag(singleCentering(n1), singleCentering(n2)), nil
}

// SingleCentering returns I_n − J_n/n, the one-sample centering projector.
func SingleCentering(n int) (*mat.Dense, error) {
	if err := validateSizes(n); err != nil {
		return nil, centeringErrorf(opSingle, err)
	}

	return singleCentering(n), nil
}

func singleCentering(n int) *mat.Dense {
	p := groupAverage(n)
	p.Scale(-1, p)
	for i := 0; i < n; i++ {
		p.Set(i, i, p.At(i, i)+1)
	}

	return p
}

// QuantizedBiCentering is the landmark-quantization variant of
// WithinGroupBiCentering. Block i is I − d⁻¹·aᵢaᵢᵀ where aᵢ are the per-landmark
// weights of group i (typically √cluster size) and d is n1+n2 under
// DenominatorTotal or nᵢ under DenominatorGroup. n1 and n2 are observation
// counts, not landmark counts.
func QuantizedBiCentering(a1, a2 []float64, n1, n2 int, denom Denominator) (*mat.Dense, error) {
	if err := validateSizes(len(a1), len(a2), n1, n2); err != nil {
		return nil, centeringErrorf(opQuantized, err)
	}
	var d1, d2 float64
	switch denom {
	case DenominatorTotal:
		d1, d2 = float64(n1+n2), float64(n1+n2)
	case DenominatorGroup:
		d1, d2 = float64(n1), float64(n2)
	default:
		return nil, centeringErrorf(opQuantized, fmt.Errorf("%v: %w", denom, ErrInvalidDenominator))
	}

	return blockDiag(rankOneCentering(a1, d1), rankOneCentering(a2, d2)), nil
}

// rankOneCentering returns I − (1/d)·a aᵀ.
func rankOneCentering(a []float64, d float64) *mat.Dense {
	m := len(a)
	v := mat.NewVecDense(m, append([]float64(nil), a...))
	p := mat.NewDense(m, m, nil)
	p.Outer(-1/d, v, v)
	for i := 0; i < m; i++ {
		p.Set(i, i, p.At(i, i)+1)
	}

	return p
}

// LandmarkCenteringMatrix returns the landmark-space centering for basis:
//
//	K → I (no centering)
//	S → I − J/m over the requested landmark set
//	W → diag(I − J_{m1}/m1, I − J_{m2}/m2), only for sample XY
//
// The requested set has size m1 (X), m2 (Y) or m1+m2 (XY); only that size is
// validated.
func LandmarkCenteringMatrix(basis approx.AnchorBasis, sample approx.Sample, m1, m2 int) (*mat.Dense, error) {
	var m int
	switch sample {
	case approx.X:
		m = m1
	case approx.Y:
		m = m2
	case approx.XY:
		if err := validateSizes(m1, m2); err != nil {
			return nil, centeringErrorf(opLandmark, err)
		}
		m = m1 + m2
	default:
		return nil, centeringErrorf(opLandmark, fmt.Errorf("%v: %w", sample, approx.ErrUnknownSample))
	}
	if err := validateSizes(m); err != nil {
		return nil, centeringErrorf(opLandmark, err)
	}

	switch basis {
	case approx.BasisK:
		return identity(m), nil
	case approx.BasisS:
		return singleCentering(m), nil
	case approx.BasisW:
		if sample != approx.XY {
			return nil, centeringErrorf(opLandmark, fmt.Errorf("basis %v, sample %v: %w", basis, sample, ErrUnsupportedBasis))
		}
		return blockDiag(singleCentering(m1), singleCentering(m2)), nil
	default:
		return nil, centeringErrorf(opLandmark, fmt.Errorf("%v: %w", basis, approx.ErrUnknownAnchorBasis))
	}
}

func identity(n int) *mat.Dense {
	p := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		p.Set(i, i, 1)
	}

	return p
}

// blockDiag places square blocks along the diagonal of a zero matrix.
func blockDiag(blocks ...mat.Matrix) *mat.Dense {
	n := 0
	for _, b := range blocks {
		r, _ := b.Dims()
		n += r
	}
	out := mat.NewDense(n, n, nil)
	off := 0
	for _, b := range blocks {
		r, c := b.Dims()
		out.Slice(off, off+r, off, off+c).(*mat.Dense).Copy(b)
		off += r
	}

	return out
}
