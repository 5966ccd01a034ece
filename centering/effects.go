// SPDX-License-Identifier: MIT

package centering

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/ktest/partition"
	"gonum.org/v1/gonum/mat"
)

// Metadata resolves a named categorical column to one value per observation,
// in observation order. Implementations return an error wrapping
// ErrMissingMetadataColumn for unknown names.
type Metadata interface {
	Column(name string) ([]string, error)
}

// MapMetadata is an in-memory Metadata keyed by column name.
type MapMetadata map[string][]string

// Column implements Metadata.
func (md MapMetadata) Column(name string) ([]string, error) {
	col, ok := md[name]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", name, ErrMissingMetadataColumn)
	}

	return col, nil
}

// Sign is the direction an effect term is applied in.
type Sign int

const (
	// Remove subtracts the aligned group average (centers on the effect).
	Remove Sign = -1
	// Restore adds the aligned group average back.
	Restore Sign = +1
)

// EffectTerm is one signed column of an effect model.
type EffectTerm struct {
	Sign   Sign
	Column string
}

// EffectSpec is an ordered list of signed columns. The centering matrix is
// I + Σ sign·J_column, each J aligned to observation order.
//
// A single column c is the spec {Remove c}: I − J_c.
type EffectSpec struct {
	Terms []EffectTerm
}

// CenterBy returns the single-column spec I − J_column.
func CenterBy(column string) EffectSpec {
	return EffectSpec{Terms: []EffectTerm{{Sign: Remove, Column: column}}}
}

// String renders the spec in the textual syntax accepted by ParseEffectSpec.
func (e EffectSpec) String() string {
	if len(e.Terms) == 1 && e.Terms[0].Sign == Remove {
		return e.Terms[0].Column
	}
	var b strings.Builder
	b.WriteByte('#')
	for i, t := range e.Terms {
		if i > 0 {
			b.WriteByte('_')
		}
		if t.Sign == Restore {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
		}
		b.WriteString(t.Column)
	}

	return b.String()
}

// ParseEffectSpec accepts either a bare column name ("patient") or a signed
// combination introduced by '#', terms separated by '_', each starting with
// '+' or '-': "#-celltype_+patient". Column names inside a combination
// therefore cannot contain '_'.
func ParseEffectSpec(s string) (EffectSpec, error) {
	if s == "" {
		return EffectSpec{}, centeringErrorf(opParseEffect, fmt.Errorf("empty: %w", ErrInvalidEffectSpec))
	}
	if s[0] != '#' {
		return CenterBy(s), nil
	}

	parts := strings.Split(s[1:], "_")
	terms := make([]EffectTerm, 0, len(parts))
	for _, part := range parts {
		if len(part) < 2 {
			return EffectSpec{}, centeringErrorf(opParseEffect, fmt.Errorf("term %q: %w", part, ErrInvalidEffectSpec))
		}
		var sign Sign
		switch part[0] {
		case '-':
			sign = Remove
		case '+':
			sign = Restore
		default:
			return EffectSpec{}, centeringErrorf(opParseEffect, fmt.Errorf("term %q: want +/- prefix: %w", part, ErrInvalidEffectSpec))
		}
		terms = append(terms, EffectTerm{Sign: sign, Column: part[1:]})
	}

	return EffectSpec{Terms: terms}, nil
}

// EffectCenteringMatrix builds I + Σ sign·J_column for the n observations
// described by md.
//
// Implementation:
//   - Stage 1: start from I_n.
//   - Stage 2: per term, read the column, build the block-diagonal group
//     average over its categories (first-occurrence order) and align it to
//     observation order with partition.Align.
//   - Stage 3: add or subtract it.
//
// Complexity: O(T·n²) time for T terms, O(n²) space.
//
// A single Remove term yields an orthogonal projector. Mixed combinations
// such as "#-celltype_+patient" are projectors only when the effects are
// nested.
func EffectCenteringMatrix(n int, spec EffectSpec, md Metadata) (*mat.Dense, error) {
	if err := validateSizes(n); err != nil {
		return nil, centeringErrorf(opEffect, err)
	}
	if len(spec.Terms) == 0 {
		return nil, centeringErrorf(opEffect, fmt.Errorf("no terms: %w", ErrInvalidEffectSpec))
	}

	// Stage 1
	pw := identity(n)

	for _, term := range spec.Terms {
		// Stage 2
		col, err := md.Column(term.Column)
		if err != nil {
			return nil, centeringErrorf(opEffect, err)
		}
		if len(col) != n {
			return nil, centeringErrorf(opEffect,
				fmt.Errorf("column %q has %d values, want %d: %w", term.Column, len(col), n, ErrShapeMismatch))
		}
		block, err := BlockDiagonalGroupAverage(partition.GroupSizes(col))
		if err != nil {
			return nil, centeringErrorf(opEffect, err)
		}
		aligned, err := partition.Align(block, col)
		if err != nil {
			return nil, centeringErrorf(opEffect, err)
		}

		// Stage 3
		switch term.Sign {
		case Remove:
			pw.Sub(pw, aligned)
		case Restore:
			pw.Add(pw, aligned)
		default:
			return nil, centeringErrorf(opEffect, fmt.Errorf("sign %d: %w", term.Sign, ErrInvalidEffectSpec))
		}
	}

	return pw, nil
}
