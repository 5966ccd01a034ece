// SPDX-License-Identifier: MIT

package approx

import "errors"

var (
	// ErrUnknownCovariance is returned when a covariance approximation name or
	// value is outside the declared set.
	ErrUnknownCovariance = errors.New("approx: unknown covariance approximation")

	// ErrUnknownDiscrepancy is returned for an unknown discrepancy approximation.
	ErrUnknownDiscrepancy = errors.New("approx: unknown discrepancy approximation")

	// ErrUnknownAnchorBasis is a configuration error: the anchor basis is not K, S or W.
	// Callers must treat it as fatal.
	ErrUnknownAnchorBasis = errors.New("approx: invalid anchor basis")

	// ErrUnknownSample is returned for a sample tag other than x, y or xy.
	ErrUnknownSample = errors.New("approx: unknown sample")
)
