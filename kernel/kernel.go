// SPDX-License-Identifier: MIT

package kernel

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrDimensionMismatch indicates samples with different feature counts.
	ErrDimensionMismatch = errors.New("kernel: feature dimension mismatch")

	// ErrInvalidBandwidth indicates σ ≤ 0, NaN or Inf.
	ErrInvalidBandwidth = errors.New("kernel: invalid bandwidth")

	// ErrEmpty indicates a sample with no observations.
	ErrEmpty = errors.New("kernel: empty sample")
)

// Kernel evaluates k(xᵢ, yⱼ) for every row i of x and row j of y.
type Kernel interface {
	Gram(x, y mat.Matrix) (*mat.Dense, error)
}

// Gaussian is the radial basis kernel with bandwidth Sigma.
type Gaussian struct {
	Sigma float64
}

// Gram implements Kernel.
func (g Gaussian) Gram(x, y mat.Matrix) (*mat.Dense, error) {
	if g.Sigma <= 0 || math.IsNaN(g.Sigma) || math.IsInf(g.Sigma, 0) {
		return nil, fmt.Errorf("Gaussian.Gram: σ=%v: %w", g.Sigma, ErrInvalidBandwidth)
	}
	d, err := SquaredDistances(x, y)
	if err != nil {
		return nil, fmt.Errorf("Gaussian.Gram: %w", err)
	}
	s := 2 * g.Sigma * g.Sigma
	d.Apply(func(_, _ int, v float64) float64 { return math.Exp(-v / s) }, d)

	return d, nil
}

// Linear is the inner-product kernel.
type Linear struct{}

// Gram implements Kernel.
func (Linear) Gram(x, y mat.Matrix) (*mat.Dense, error) {
	if err := compatible(x, y); err != nil {
		return nil, fmt.Errorf("Linear.Gram: %w", err)
	}
	var k mat.Dense
	k.Mul(x, y.T())

	return &k, nil
}

// SquaredDistances returns D with D[i,j] = ‖xᵢ − yⱼ‖².
func SquaredDistances(x, y mat.Matrix) (*mat.Dense, error) {
	if err := compatible(x, y); err != nil {
		return nil, err
	}
	nx, _ := x.Dims()
	ny, _ := y.Dims()

	var d mat.Dense
	d.Mul(x, y.T())
	d.Scale(-2, &d)
	xx := rowSquares(x)
	yy := rowSquares(y)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			// rounding can push identical rows slightly below zero
			d.Set(i, j, math.Max(0, d.At(i, j)+xx[i]+yy[j]))
		}
	}

	return &d, nil
}

// MedianHeuristic returns the lower median of the squared distances between
// every pair of rows of the pooled sample [x; y].
func MedianHeuristic(x, y mat.Matrix) (float64, error) {
	if err := compatible(x, y); err != nil {
		return 0, fmt.Errorf("MedianHeuristic: %w", err)
	}
	nx, p := x.Dims()
	ny, _ := y.Dims()
	pooled := mat.NewDense(nx+ny, p, nil)
	pooled.Slice(0, nx, 0, p).(*mat.Dense).Copy(x)
	pooled.Slice(nx, nx+ny, 0, p).(*mat.Dense).Copy(y)

	d, err := SquaredDistances(pooled, pooled)
	if err != nil {
		return 0, fmt.Errorf("MedianHeuristic: %w", err)
	}
	all := append([]float64(nil), d.RawMatrix().Data...)
	sort.Float64s(all)

	return stat.Quantile(0.5, stat.Empirical, all, nil), nil
}

// NewGaussianMedian returns a Gaussian whose σ is MedianHeuristic(x, y).
func NewGaussianMedian(x, y mat.Matrix) (Gaussian, error) {
	m, err := MedianHeuristic(x, y)
	if err != nil {
		return Gaussian{}, err
	}
	if m <= 0 {
		return Gaussian{}, fmt.Errorf("NewGaussianMedian: median %v: %w", m, ErrInvalidBandwidth)
	}

	return Gaussian{Sigma: m}, nil
}

func compatible(x, y mat.Matrix) error {
	nx, px := x.Dims()
	ny, py := y.Dims()
	if nx == 0 || ny == 0 {
		return ErrEmpty
	}
	if px != py {
		return fmt.Errorf("%d vs %d features: %w", px, py, ErrDimensionMismatch)
	}

	return nil
}

func rowSquares(x mat.Matrix) []float64 {
	n, p := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < p; j++ {
			v := x.At(i, j)
			s += v * v
		}
		out[i] = s
	}

	return out
}
