// SPDX-License-Identifier: MIT

package centering

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/ktest/partition"
)

var (
	// ErrShapeMismatch is shared with package partition so a single errors.Is
	// check covers both layers.
	ErrShapeMismatch = partition.ErrShapeMismatch

	// ErrInvalidSize indicates a group (or landmark group) size ≤ 0.
	ErrInvalidSize = errors.New("centering: group size must be positive")

	// ErrMissingMetadataColumn indicates an effect column absent from the metadata.
	ErrMissingMetadataColumn = errors.New("centering: missing metadata column")

	// ErrInvalidEffectSpec indicates malformed effect syntax.
	ErrInvalidEffectSpec = errors.New("centering: invalid effect specification")

	// ErrUnsupportedBasis indicates a known anchor basis that cannot serve the
	// requested sample (W needs both landmark groups).
	ErrUnsupportedBasis = errors.New("centering: anchor basis unsupported for sample")

	// ErrInvalidDenominator indicates an unknown quantization denominator policy.
	ErrInvalidDenominator = errors.New("centering: invalid quantization denominator")
)

const (
	opGroupAverage     = "GroupAverageBlock"
	opBlockDiagonal    = "BlockDiagonalGroupAverage"
	opEffect           = "EffectCenteringMatrix"
	opParseEffect      = "ParseEffectSpec"
	opWithin           = "WithinGroupBiCentering"
	opQuantized        = "QuantizedBiCentering"
	opSingle           = "SingleCentering"
	opLandmark         = "LandmarkCenteringMatrix"
	opContrast         = "ContrastVector"
	opQuantizedOmega   = "QuantizedContrastVector"
	opSingleGroupOmega = "SingleGroupWeightVector"
)

// centeringErrorf tags err with the failing operation.
func centeringErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// validateSizes rejects any non-positive group size.
func validateSizes(sizes ...int) error {
	for i, s := range sizes {
		if s <= 0 {
			return fmt.Errorf("size[%d]=%d: %w", i, s, ErrInvalidSize)
		}
	}

	return nil
}
