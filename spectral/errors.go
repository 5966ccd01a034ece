// SPDX-License-Identifier: MIT

package spectral

import (
	"errors"
	"fmt"
)

var (
	// ErrEntryExists indicates a second write to an already-populated key.
	ErrEntryExists = errors.New("spectral: entry already cached")

	// ErrNotFound indicates a read of a key that was never populated.
	ErrNotFound = errors.New("spectral: entry not cached")

	// ErrNumericDegeneracy indicates an eigenvalue at or below the configured
	// floor where it is about to be inverted.
	ErrNumericDegeneracy = errors.New("spectral: degenerate eigenvalue")

	// ErrInvalidEntry indicates mismatched dimensions, unsorted or non-finite
	// eigenvalues.
	ErrInvalidEntry = errors.New("spectral: invalid entry")

	// ErrNotSymmetric indicates a solver input that is not square and symmetric.
	ErrNotSymmetric = errors.New("spectral: matrix is not symmetric")

	// ErrNoConvergence indicates the eigen solver gave up.
	ErrNoConvergence = errors.New("spectral: eigen decomposition did not converge")

	// ErrTruncation indicates a truncation level outside 1..Len().
	ErrTruncation = errors.New("spectral: truncation out of range")
)

const (
	opNewEntry      = "NewEntry"
	opCheckPositive = "CheckPositive"
	opTruncate      = "Truncate"
	opPut           = "Put"
	opGet           = "Get"
	opCompute       = "GetOrCompute"
	opGonum         = "GonumSolver.Decompose"
	opJacobi        = "JacobiSolver.Decompose"
)

// spectralErrorf tags err with the failing operation.
func spectralErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
