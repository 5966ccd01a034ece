// SPDX-License-Identifier: MIT

// Package partition turns a categorical column into group sizes and into the
// index permutation that maps block-ordered matrices back onto the original
// observation order.
//
// Categories are ordered by first occurrence in the column. A block-diagonal
// matrix assembled group by group (first category first) lives in "block
// order"; AlignmentPermutation returns p such that Apply(M) = M[p,:][:,p]
// carries it into "observation order", where row i belongs to observation i.
//
// Example:
//
//	col := []string{"b", "a", "b"}
//	partition.GroupSizes(col)           // [2 1]   ("b" first, then "a")
//	partition.AlignmentPermutation(col) // [0 2 1]
//
// Complexity: GroupSizes/Categories/AlignmentPermutation are O(n) time and
// O(k) extra space for k categories. Apply is O(n²).
package partition
