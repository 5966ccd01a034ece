// SPDX-License-Identifier: MIT

package partition

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Permutation maps observation positions to block-order positions:
// p[i] is the block-order row that ends up at observation position i.
type Permutation []int

// Categories returns the distinct values of col in first-occurrence order.
func Categories[T comparable](col []T) []T {
	seen := make(map[T]struct{})
	out := make([]T, 0)
	for _, v := range col {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

// GroupSizes returns the number of occurrences of each category, in the
// order given by Categories. The sizes sum to len(col).
func GroupSizes[T comparable](col []T) []int {
	_, sizes := encode(col)

	return sizes
}

// encode labels every observation with the rank of its category and counts
// the categories.
func encode[T comparable](col []T) (codes, sizes []int) {
	index := make(map[T]int)
	codes = make([]int, len(col))
	sizes = make([]int, 0)
	for i, v := range col {
		k, ok := index[v]
		if !ok {
			k = len(sizes)
			index[v] = k
			sizes = append(sizes, 0)
		}
		codes[i] = k
		sizes[k]++
	}

	return codes, sizes
}

// AlignmentPermutation returns the permutation that sends block-ordered rows
// back to observation order.
//
// Implementation:
//   - Stage 1: compute the offset of each category block (cumulative sizes).
//   - Stage 2: walk col; the j-th observation of category k receives
//     block-order index offset[k]+j.
//
// The result is stable: within a category, observations keep their relative
// order.
func AlignmentPermutation[T comparable](col []T) Permutation {
	codes, sizes := encode(col)

	// Stage 1: block offsets
	next := make([]int, len(sizes))
	acc := 0
	for k, s := range sizes {
		next[k] = acc
		acc += s
	}

	// Stage 2: assign positions
	p := make(Permutation, len(col))
	for i, k := range codes {
		p[i] = next[k]
		next[k]++
	}

	return p
}

// Align reorders a block-ordered n×n matrix into observation order, where
// n = len(col). The input is not modified.
func Align[T comparable](block *mat.Dense, col []T) (*mat.Dense, error) {
	out, err := AlignmentPermutation(col).Apply(block)
	if err != nil {
		return nil, partitionErrorf(opAlign, err)
	}

	return out, nil
}

// Validate reports ErrNotPermutation unless p is a bijection of 0..len(p)-1.
func (p Permutation) Validate() error {
	seen := make([]bool, len(p))
	for i, v := range p {
		if v < 0 || v >= len(p) || seen[v] {
			return partitionErrorf(opValidate, fmt.Errorf("p[%d]=%d: %w", i, v, ErrNotPermutation))
		}
		seen[v] = true
	}

	return nil
}

// Inverse returns q with q[p[i]] = i, so that q.Apply(p.Apply(M)) = M.
func (p Permutation) Inverse() Permutation {
	q := make(Permutation, len(p))
	for i, v := range p {
		q[v] = i
	}

	return q
}

// Apply returns M[p,:][:,p] as a new matrix. M must be square with
// len(p) rows.
func (p Permutation) Apply(m *mat.Dense) (*mat.Dense, error) {
	r, c := m.Dims()
	if r != c || r != len(p) {
		return nil, partitionErrorf(opApply,
			fmt.Errorf("matrix %dx%d, permutation %d: %w", r, c, len(p), ErrShapeMismatch))
	}
	if err := p.Validate(); err != nil {
		return nil, partitionErrorf(opApply, err)
	}

	out := mat.DenseCopyOf(m)
	// PermuteRows/Cols may scribble on their index slice while working.
	idx := append([]int(nil), p...)
	out.PermuteRows(idx, false)
	out.PermuteCols(idx, false)

	return out, nil
}
