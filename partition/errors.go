// SPDX-License-Identifier: MIT

package partition

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch indicates a matrix whose dimensions disagree with the
	// column or permutation length it is paired with.
	ErrShapeMismatch = errors.New("partition: shape mismatch")

	// ErrNotPermutation indicates a slice that is not a bijection of 0..n-1.
	ErrNotPermutation = errors.New("partition: not a permutation")
)

const (
	opAlign    = "Align"
	opApply    = "Apply"
	opValidate = "Validate"
)

// partitionErrorf tags err with the failing operation.
func partitionErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
