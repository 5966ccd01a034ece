// SPDX-License-Identifier: MIT

package kfda

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/ktest/centering"
)

var (
	// ErrUnsupportedApproximationCombination indicates a (covariance,
	// discrepancy, anchors) combination with no defined algebra.
	ErrUnsupportedApproximationCombination = errors.New("kfda: unsupported approximation combination")

	// ErrShapeMismatch is shared with packages partition and centering.
	ErrShapeMismatch = centering.ErrShapeMismatch

	// ErrNilDependency indicates a nil provider, cache or store.
	ErrNilDependency = errors.New("kfda: nil dependency")

	// ErrUnknownRun indicates a reordering request for a name with no stored
	// contributions.
	ErrUnknownRun = errors.New("kfda: unknown run")
)

const (
	opNew        = "NewEngine"
	opPKM        = "ProjectedWeightVector"
	opUPK        = "ProjectionCoefficients"
	opKFDAT      = "TruncatedStatistic"
	opReorder    = "ReorderedStatistic"
	opProject    = "Project"
	opExplained  = "ExplainedVariance"
	opTrace      = "Trace"
	opRun        = "Run"
	opMMD        = "SquaredDiscrepancy"
	opDiscrepant = "Discrepancy"
)

// kfdaErrorf tags err with the failing operation.
func kfdaErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
