// SPDX-License-Identifier: MIT

// Package approx declares the closed sets of approximation strategies used by
// the kernel two-sample statistics.
//
// Three independent axes drive every branch of the statistic engine:
//
//   - Covariance: how the within-group covariance operator is approximated
//     (Standard, Nystrom1, Nystrom2, Nystrom3, Quantization).
//   - Discrepancy: how the mean-difference / MMD term is approximated
//     (Standard, Nystrom, Quantization).
//   - AnchorBasis: which centering is applied in landmark space (K, S, W).
//
// Each axis is a small integer enum with String/Parse round-tripping, so
// callers switch exhaustively instead of comparing free-form strings.
//
// Sample names the observation group an operation targets (X, Y or the pooled XY).
package approx

import (
	"fmt"
	"strings"
)

// Covariance selects the covariance-operator approximation.
type Covariance int

const (
	// CovStandard uses the full n×n Gram matrix.
	CovStandard Covariance = iota
	// CovNystrom1 substitutes the Nyström Gram approximation (1/m² prefactor).
	CovNystrom1
	// CovNystrom2 uses the chained double-sided projection (1/m³, λ^-½ scaling).
	CovNystrom2
	// CovNystrom3 uses the single-sided landmark feature map (1/m).
	CovNystrom3
	// CovQuantization uses k-means landmarks weighted by cluster size.
	CovQuantization
)

// Discrepancy selects the mean-embedding / MMD approximation.
type Discrepancy int

const (
	// MMDStandard uses the full Gram matrix.
	MMDStandard Discrepancy = iota
	// MMDNystrom projects through the anchor eigenpairs.
	MMDNystrom
	// MMDQuantization uses the landmark Gram matrix with cluster-size weights.
	MMDQuantization
)

// AnchorBasis selects the centering applied to landmark-space computations.
type AnchorBasis int

const (
	// BasisK is the raw kernel basis (identity centering).
	BasisK AnchorBasis = iota
	// BasisS centers with the single global landmark mean.
	BasisS
	// BasisW centers each landmark group on its own mean.
	BasisW
)

// Sample tags the group of observations an operation refers to.
type Sample int

const (
	// XY is the pooled two-sample set.
	XY Sample = iota
	// X is the first sample.
	X
	// Y is the second sample.
	Y
)

var (
	covNames    = [...]string{"standard", "nystrom1", "nystrom2", "nystrom3", "quantization"}
	mmdNames    = [...]string{"standard", "nystrom", "quantization"}
	basisNames  = [...]string{"K", "S", "W"}
	sampleNames = [...]string{"xy", "x", "y"}
)

// String returns the canonical lower-case name ("standard", "nystrom1", …).
func (c Covariance) String() string {
	if c < 0 || int(c) >= len(covNames) {
		return fmt.Sprintf("Covariance(%d)", int(c))
	}
	return covNames[c]
}

// Valid reports whether c is one of the declared variants.
func (c Covariance) Valid() bool { return c >= 0 && int(c) < len(covNames) }

// IsNystrom reports whether c relies on anchor eigenpairs.
func (c Covariance) IsNystrom() bool {
	return c == CovNystrom1 || c == CovNystrom2 || c == CovNystrom3
}

// Exponent is the power applied to n and λ_p in each per-direction
// contribution. It counts the inverse-eigenvalue factors introduced by the
// derivation of each approximation.
func (c Covariance) Exponent() (int, error) {
	switch c {
	case CovStandard, CovNystrom1, CovQuantization:
		return 2, nil
	case CovNystrom2:
		return 3, nil
	case CovNystrom3:
		return 1, nil
	default:
		return 0, fmt.Errorf("Exponent(%d): %w", int(c), ErrUnknownCovariance)
	}
}

// String returns the canonical lower-case name.
func (d Discrepancy) String() string {
	if d < 0 || int(d) >= len(mmdNames) {
		return fmt.Sprintf("Discrepancy(%d)", int(d))
	}
	return mmdNames[d]
}

// Valid reports whether d is one of the declared variants.
func (d Discrepancy) Valid() bool { return d >= 0 && int(d) < len(mmdNames) }

// String returns "K", "S" or "W".
func (b AnchorBasis) String() string {
	if b < 0 || int(b) >= len(basisNames) {
		return fmt.Sprintf("AnchorBasis(%d)", int(b))
	}
	return basisNames[b]
}

// Valid reports whether b is one of the declared bases.
func (b AnchorBasis) Valid() bool { return b >= 0 && int(b) < len(basisNames) }

// String returns "xy", "x" or "y".
func (s Sample) String() string {
	if s < 0 || int(s) >= len(sampleNames) {
		return fmt.Sprintf("Sample(%d)", int(s))
	}
	return sampleNames[s]
}

// Valid reports whether s is X, Y or XY.
func (s Sample) Valid() bool { return s >= 0 && int(s) < len(sampleNames) }

// ParseCovariance maps a case-insensitive name to its Covariance variant.
func ParseCovariance(s string) (Covariance, error) {
	for i, name := range covNames {
		if strings.EqualFold(s, name) {
			return Covariance(i), nil
		}
	}
	return 0, fmt.Errorf("ParseCovariance(%q): %w", s, ErrUnknownCovariance)
}

// ParseDiscrepancy maps a case-insensitive name to its Discrepancy variant.
func ParseDiscrepancy(s string) (Discrepancy, error) {
	for i, name := range mmdNames {
		if strings.EqualFold(s, name) {
			return Discrepancy(i), nil
		}
	}
	return 0, fmt.Errorf("ParseDiscrepancy(%q): %w", s, ErrUnknownDiscrepancy)
}

// ParseAnchorBasis maps "k", "s" or "w" (any case) to its AnchorBasis.
func ParseAnchorBasis(s string) (AnchorBasis, error) {
	for i, name := range basisNames {
		if strings.EqualFold(s, name) {
			return AnchorBasis(i), nil
		}
	}
	return 0, fmt.Errorf("ParseAnchorBasis(%q): %w", s, ErrUnknownAnchorBasis)
}

// ParseSample maps "x", "y" or "xy" to its Sample.
func ParseSample(s string) (Sample, error) {
	for i, name := range sampleNames {
		if strings.EqualFold(s, name) {
			return Sample(i), nil
		}
	}
	return 0, fmt.Errorf("ParseSample(%q): %w", s, ErrUnknownSample)
}
