// SPDX-License-Identifier: MIT

package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Solver produces an ordered eigen-decomposition of a symmetric matrix.
type Solver interface {
	Decompose(a mat.Symmetric) (Entry, error)
}

const (
	// DefaultCutoff drops eigenpairs with λ ≤ DefaultCutoff·λ_max. Centered Gram
	// matrices are rank deficient by construction and their null directions
	// come back as ±1e-16 noise.
	DefaultCutoff = 1e-10

	// DefaultSymmetryTolerance is the relative asymmetry Symmetrize accepts.
	DefaultSymmetryTolerance = 1e-8

	// DefaultJacobiTolerance stops the Jacobi solver once every off-diagonal
	// entry is below this fraction of the Frobenius norm.
	DefaultJacobiTolerance = 1e-14

	// DefaultJacobiRotations caps the rotation count at this multiple of n².
	DefaultJacobiRotations = 50
)

// Symmetrize checks that a is square and symmetric within a relative tol and
// returns (a + aᵀ)/2. Products like P·K·P are symmetric only up to rounding.
func Symmetrize(a mat.Matrix, tol float64) (*mat.SymDense, error) {
	r, c := a.Dims()
	if r != c || r == 0 {
		return nil, fmt.Errorf("%dx%d: %w", r, c, ErrNotSymmetric)
	}
	scale := math.Max(1, mat.Norm(a, math.Inf(1)))
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			aij, aji := a.At(i, j), a.At(j, i)
			if math.Abs(aij-aji) > tol*scale {
				return nil, fmt.Errorf("|a[%d,%d]-a[%d,%d]|=%g: %w", i, j, j, i, math.Abs(aij-aji), ErrNotSymmetric)
			}
			s.SetSym(i, j, (aij+aji)/2)
		}
	}

	return s, nil
}

// GonumSolver decomposes with LAPACK through gonum's EigenSym.
type GonumSolver struct {
	// Cutoff is the relative eigenvalue floor; negative keeps every pair.
	Cutoff float64
}

// NewGonumSolver returns a GonumSolver with DefaultCutoff.
func NewGonumSolver() GonumSolver { return GonumSolver{Cutoff: DefaultCutoff} }

// Decompose implements Solver.
func (s GonumSolver) Decompose(a mat.Symmetric) (Entry, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(a, true); !ok {
		return Entry{}, spectralErrorf(opGonum, ErrNoConvergence)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	e, err := ordered(values, &vectors, s.Cutoff)
	if err != nil {
		return Entry{}, spectralErrorf(opGonum, err)
	}

	return e, nil
}

// JacobiSolver is a classical Jacobi rotation solver. It is slower than
// LAPACK but has no platform-dependent code path, so results are identical
// across machines.
type JacobiSolver struct {
	Cutoff    float64 // relative eigenvalue floor; negative keeps every pair
	Tolerance float64 // relative off-diagonal threshold
	Rotations int     // cap on rotations, as a multiple of n²
}

// NewJacobiSolver returns a JacobiSolver with default settings.
func NewJacobiSolver() JacobiSolver {
	return JacobiSolver{Cutoff: DefaultCutoff, Tolerance: DefaultJacobiTolerance, Rotations: DefaultJacobiRotations}
}

// Decompose implements Solver.
//
// Implementation:
//   - Stage 1: copy a into a dense working matrix A and set Q = I.
//   - Stage 2: repeatedly pick the off-diagonal pivot (p,q) of largest
//     magnitude (row-major scan), rotate A so that A[p,q] = 0 and accumulate
//     the rotation into Q.
//   - Stage 3: stop when max |A[p,q]| ≤ Tolerance·‖a‖₂; diag(A) holds the
//     eigenvalues and Q's columns the eigenvectors.
//   - Stage 4: order descending and drop pairs under the cutoff.
//
// Complexity: O(n²) per pivot search, O(n) per rotation; typically O(n⁴) total.
func (s JacobiSolver) Decompose(a mat.Symmetric) (Entry, error) {
	n := a.SymmetricDim()
	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultJacobiTolerance
	}
	rot := s.Rotations
	if rot <= 0 {
		rot = DefaultJacobiRotations
	}

	// Stage 1
	work := mat.DenseCopyOf(a)
	q := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		q.Set(i, i, 1)
	}
	A := work.RawMatrix()
	Q := q.RawMatrix()
	threshold := tol * mat.Norm(work, 2)

	var (
		i, p, qq     int
		maxOff, off  float64
		app, aqq     float64
		apq          float64
		aip, aiq     float64
		theta, t     float64
		c, sn        float64
		converged    bool
		maxRotations = rot * n * n
	)
	for iter := 0; iter <= maxRotations; iter++ {
		// Stage 2: pivot search
		maxOff = 0
		for i = 0; i < n; i++ {
			row := A.Data[i*A.Stride : i*A.Stride+n]
			for j := i + 1; j < n; j++ {
				if off = math.Abs(row[j]); off > maxOff {
					maxOff, p, qq = off, i, j
				}
			}
		}
		// Stage 3: convergence
		if maxOff <= threshold {
			converged = true
			break
		}

		app = A.Data[p*A.Stride+p]
		aqq = A.Data[qq*A.Stride+qq]
		apq = A.Data[p*A.Stride+qq]
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1 / math.Sqrt(t*t+1)
		sn = t * c

		for i = 0; i < n; i++ {
			if i == p || i == qq {
				continue
			}
			aip = A.Data[i*A.Stride+p]
			aiq = A.Data[i*A.Stride+qq]
			A.Data[i*A.Stride+p] = c*aip - sn*aiq
			A.Data[p*A.Stride+i] = c*aip - sn*aiq
			A.Data[i*A.Stride+qq] = sn*aip + c*aiq
			A.Data[qq*A.Stride+i] = sn*aip + c*aiq
		}
		A.Data[p*A.Stride+p] = app - t*apq
		A.Data[qq*A.Stride+qq] = aqq + t*apq
		A.Data[p*A.Stride+qq] = 0
		A.Data[qq*A.Stride+p] = 0

		for i = 0; i < n; i++ {
			aip = Q.Data[i*Q.Stride+p]
			aiq = Q.Data[i*Q.Stride+qq]
			Q.Data[i*Q.Stride+p] = c*aip - sn*aiq
			Q.Data[i*Q.Stride+qq] = sn*aip + c*aiq
		}
	}
	if !converged {
		return Entry{}, spectralErrorf(opJacobi, fmt.Errorf("off-diagonal %g after %d rotations: %w", maxOff, maxRotations, ErrNoConvergence))
	}

	values := make([]float64, n)
	for i = 0; i < n; i++ {
		values[i] = A.Data[i*A.Stride+i]
	}

	// Stage 4
	e, err := ordered(values, q, s.Cutoff)
	if err != nil {
		return Entry{}, spectralErrorf(opJacobi, err)
	}

	return e, nil
}

// ordered sorts eigenpairs by descending eigenvalue and drops those at or
// below cutoff·λ_max. A negative cutoff keeps everything.
func ordered(values []float64, vectors *mat.Dense, cutoff float64) (Entry, error) {
	n := len(values)
	neg := make([]float64, n)
	floats.ScaleTo(neg, -1, values)
	inds := make([]int, n)
	floats.Argsort(neg, inds)

	keep := n
	if cutoff >= 0 && n > 0 {
		floor := cutoff * values[inds[0]]
		keep = 0
		for _, k := range inds {
			if values[k] <= floor || values[k] <= 0 {
				break
			}
			keep++
		}
	}
	if keep == 0 {
		return Entry{}, fmt.Errorf("no eigenvalue above cutoff %g: %w", cutoff, ErrNumericDegeneracy)
	}

	r, _ := vectors.Dims()
	outVals := make([]float64, keep)
	outVecs := mat.NewDense(r, keep, nil)
	col := make([]float64, r)
	for p := 0; p < keep; p++ {
		outVals[p] = values[inds[p]]
		mat.Col(col, inds[p], vectors)
		outVecs.SetCol(p, col)
	}

	return NewEntry(outVals, outVecs)
}
