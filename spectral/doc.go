// SPDX-License-Identifier: MIT

// Package spectral stores the ordered eigen-decompositions the statistics
// consume and computes them on demand.
//
// What:
//   - Entry: eigenvalues in non-increasing order with eigenvectors as the
//     matching columns. Entries are validated on construction and are
//     read-only afterwards.
//   - Cache: two maps, one keyed by Key (sample, covariance approximation,
//     anchor basis, outlier filter) for covariance operators, one keyed by
//     AnchorKey (sample, anchor basis, filter) for landmark Gram matrices.
//     Each key is written at most once.
//   - Solver: turns a symmetric matrix into an Entry. GonumSolver wraps
//     LAPACK via gonum's EigenSym; JacobiSolver is a dependency-free cyclic
//     rotation solver producing bit-identical results run to run.
//
// Concurrency:
//   - Reads take a shared lock. GetOrCompute runs the compute function at
//     most once per key even under concurrent callers (singleflight), and
//     callers arriving while it runs receive the same result.
//
// Numeric guard:
//   - Every eigenvalue used as a divisor must pass Entry.CheckPositive first;
//     a non-positive or tiny eigenvalue surfaces as ErrNumericDegeneracy
//     instead of propagating Inf/NaN into the statistic.
package spectral
