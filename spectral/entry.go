// SPDX-License-Identifier: MIT

package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Entry is an ordered eigen-decomposition: Values[0] ≥ Values[1] ≥ … and
// column p of Vectors is the eigenvector of Values[p].
//
// Vectors may have more rows than columns when near-null directions were
// dropped by the solver.
type Entry struct {
	Values  []float64
	Vectors *mat.Dense
}

// NewEntry validates and wraps a decomposition. It copies neither slice nor
// matrix; the caller hands over ownership.
func NewEntry(values []float64, vectors *mat.Dense) (Entry, error) {
	if vectors == nil {
		return Entry{}, spectralErrorf(opNewEntry, fmt.Errorf("nil vectors: %w", ErrInvalidEntry))
	}
	_, c := vectors.Dims()
	if c != len(values) {
		return Entry{}, spectralErrorf(opNewEntry,
			fmt.Errorf("%d values, %d vectors: %w", len(values), c, ErrInvalidEntry))
	}
	for p, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Entry{}, spectralErrorf(opNewEntry, fmt.Errorf("value[%d]=%v: %w", p, v, ErrInvalidEntry))
		}
		if p > 0 && v > values[p-1] {
			return Entry{}, spectralErrorf(opNewEntry,
				fmt.Errorf("value[%d]=%v > value[%d]=%v: %w", p, v, p-1, values[p-1], ErrInvalidEntry))
		}
	}

	return Entry{Values: values, Vectors: vectors}, nil
}

// Len is the number of eigenpairs.
func (e Entry) Len() int { return len(e.Values) }

// Dim is the length of each eigenvector.
func (e Entry) Dim() int {
	if e.Vectors == nil {
		return 0
	}
	r, _ := e.Vectors.Dims()

	return r
}

// ClampTruncation resolves a requested truncation: t ≤ 0 or t > Len() means
// the whole spectrum.
func (e Entry) ClampTruncation(t int) int {
	if t <= 0 || t > e.Len() {
		return e.Len()
	}

	return t
}

// CheckPositive returns ErrNumericDegeneracy if any of the first t
// eigenvalues is ≤ floor. floor ≤ 0 still rejects zero and negative values.
func (e Entry) CheckPositive(t int, floor float64) error {
	if t < 0 || t > e.Len() {
		return spectralErrorf(opCheckPositive, fmt.Errorf("t=%d of %d: %w", t, e.Len(), ErrTruncation))
	}
	if floor < 0 {
		floor = 0
	}
	for p := 0; p < t; p++ {
		if e.Values[p] <= floor {
			return spectralErrorf(opCheckPositive,
				fmt.Errorf("λ[%d]=%g ≤ %g: %w", p, e.Values[p], floor, ErrNumericDegeneracy))
		}
	}

	return nil
}

// Truncate returns the leading t eigenvalues and a view on the matching
// eigenvector columns. The view shares storage with the entry and must not
// be written to.
func (e Entry) Truncate(t int) ([]float64, *mat.Dense, error) {
	if t < 1 || t > e.Len() {
		return nil, nil, spectralErrorf(opTruncate, fmt.Errorf("t=%d of %d: %w", t, e.Len(), ErrTruncation))
	}
	r := e.Dim()

	return e.Values[:t], e.Vectors.Slice(0, r, 0, t).(*mat.Dense), nil
}

// Trace is Σ λ_p over the stored spectrum.
func (e Entry) Trace() float64 { return floats.Sum(e.Values) }
