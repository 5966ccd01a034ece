// SPDX-License-Identifier: MIT

// Package kernel evaluates Gram matrices for the analysis session.
//
// Observations are rows of a *mat.Dense. Two kernels are provided:
//
//   - Gaussian: k(x,y) = exp(−‖x−y‖² / (2σ²)).
//   - Linear:   k(x,y) = ⟨x,y⟩.
//
// MedianHeuristic returns the lower median of all pairwise squared distances
// of the pooled sample (diagonal zeros included); NewGaussianMedian uses that
// value directly as σ.
package kernel
