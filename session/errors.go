// SPDX-License-Identifier: MIT

package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySample indicates a sample with no observations, before or
	// after filtering.
	ErrEmptySample = errors.New("session: empty sample")

	// ErrUnknownFilter indicates a filter name that was never registered.
	ErrUnknownFilter = errors.New("session: unknown outlier filter")

	// ErrInvalidLandmarks indicates landmarks or assignments inconsistent
	// with the observations.
	ErrInvalidLandmarks = errors.New("session: invalid landmarks")
)

const (
	opNew       = "New"
	opGram      = "Gram"
	opLandmarks = "EnsureLandmarks"
	opAnchors   = "EnsureAnchors"
	opSpectrum  = "EnsureSpectrum"
	opQuant     = "Quantization"
)

// sessionErrorf tags err with the failing operation.
func sessionErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
