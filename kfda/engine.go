// SPDX-License-Identifier: MIT

package kfda

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ktest/approx"
	"github.com/katalvlaran/ktest/centering"
	"github.com/katalvlaran/ktest/results"
	"github.com/katalvlaran/ktest/spectral"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Engine computes the statistics for one (covariance, discrepancy, basis)
// configuration over a session's provider, cache and result store.
type Engine struct {
	provider Provider
	cache    *spectral.Cache
	store    *results.Store
	opts     options
}

// NewEngine wires an engine. All three dependencies are required.
func NewEngine(p Provider, c *spectral.Cache, s *results.Store, opts ...Option) (*Engine, error) {
	if p == nil || c == nil || s == nil {
		return nil, kfdaErrorf(opNew, ErrNilDependency)
	}

	return &Engine{provider: p, cache: c, store: s, opts: gatherOptions(opts...)}, nil
}

// Covariance returns the configured covariance approximation.
func (e *Engine) Covariance() approx.Covariance { return e.opts.cov }

// DiscrepancyApproximation returns the configured discrepancy approximation.
func (e *Engine) DiscrepancyApproximation() approx.Discrepancy { return e.opts.mmd }

// AnchorBasis returns the configured anchor basis.
func (e *Engine) AnchorBasis() approx.AnchorBasis { return e.opts.basis }

// spectrumKey is the cache key of the active XY covariance spectrum.
func (e *Engine) spectrumKey(filter string) spectral.Key {
	return spectral.NewKey(approx.XY, e.opts.cov, e.opts.basis, filter)
}

// spectrum reads the active covariance spectrum.
func (e *Engine) spectrum(filter string) (spectral.Entry, error) {
	return e.cache.Lookup(e.spectrumKey(filter))
}

// anchorSet bundles an anchor spectrum with the landmark centering it was
// computed under.
type anchorSet struct {
	m       int
	u       *mat.Dense     // Uz, m×r
	inv     *mat.DiagDense // Lz  = diag(λ⁻¹)
	invSqrt *mat.DiagDense // Lz½ = diag(λ^-½)
	p       *mat.Dense     // Pi
}

// anchors loads the anchor spectrum of sample and validates every eigenvalue
// against the floor, since all of them are inverted.
func (e *Engine) anchors(sample approx.Sample, filter string) (anchorSet, error) {
	m1, m2, err := e.provider.GroupSizes(true, filter)
	if err != nil {
		return anchorSet{}, err
	}
	entry, err := e.cache.LookupAnchors(spectral.AnchorKey{Sample: sample, Basis: e.opts.basis, Filter: filter})
	if err != nil {
		return anchorSet{}, err
	}
	if err = entry.CheckPositive(entry.Len(), e.opts.minEig); err != nil {
		return anchorSet{}, err
	}
	pi, err := centering.LandmarkCenteringMatrix(e.opts.basis, sample, m1, m2)
	if err != nil {
		return anchorSet{}, err
	}
	m, _ := pi.Dims()
	if entry.Dim() != m {
		return anchorSet{}, fmt.Errorf("anchors %v: %d-dim eigenvectors for %d landmarks: %w", sample, entry.Dim(), m, ErrShapeMismatch)
	}

	r := entry.Len()
	inv := make([]float64, r)
	invSqrt := make([]float64, r)
	for p, l := range entry.Values {
		inv[p] = 1 / l
		invSqrt[p] = 1 / math.Sqrt(l)
	}

	return anchorSet{
		m:       m,
		u:       entry.Vectors,
		inv:     mat.NewDiagDense(r, inv),
		invSqrt: mat.NewDiagDense(r, invSqrt),
		p:       pi,
	}, nil
}

// dataSizes returns (n1, n2, n) for observations.
func (e *Engine) dataSizes(filter string) (int, int, int, error) {
	n1, n2, err := e.provider.GroupSizes(false, filter)
	if err != nil {
		return 0, 0, 0, err
	}

	return n1, n2, n1 + n2, nil
}

// biCentering returns Pbi: the n×n within-group bi-centering, or its m×m
// quantized counterpart under CovQuantization.
func (e *Engine) biCentering(filter string) (*mat.Dense, error) {
	n1, n2, _, err := e.dataSizes(filter)
	if err != nil {
		return nil, err
	}
	if e.opts.cov != approx.CovQuantization {
		return centering.WithinGroupBiCentering(n1, n2)
	}
	a1, err := e.provider.QuantizationWeights(approx.X, 0.5, filter)
	if err != nil {
		return nil, err
	}
	a2, err := e.provider.QuantizationWeights(approx.Y, 0.5, filter)
	if err != nil {
		return nil, err
	}

	return centering.QuantizedBiCentering(a1, a2, n1, n2, e.opts.denom)
}

// omega returns the data contrast vector ω.
func (e *Engine) omega(filter string) (*mat.VecDense, error) {
	n1, n2, _, err := e.dataSizes(filter)
	if err != nil {
		return nil, err
	}

	return centering.ContrastVector(n1, n2)
}

// quantizedOmega returns the landmark contrast vector ω_q.
func (e *Engine) quantizedOmega(filter string) (*mat.VecDense, error) {
	c1, err := e.provider.QuantizationCounts(approx.X, filter)
	if err != nil {
		return nil, err
	}
	c2, err := e.provider.QuantizationCounts(approx.Y, filter)
	if err != nil {
		return nil, err
	}

	return centering.QuantizedContrastVector(c1, c2)
}

// sqrtWeights returns A = diag(cluster size^½) over all landmarks.
func (e *Engine) sqrtWeights(filter string) (*mat.DiagDense, error) {
	a, err := e.provider.QuantizationWeights(approx.XY, 0.5, filter)
	if err != nil {
		return nil, err
	}
	if len(a) == 0 {
		return nil, fmt.Errorf("no quantization weights: %w", ErrShapeMismatch)
	}

	return mat.NewDiagDense(len(a), append([]float64(nil), a...)), nil
}

// chain returns ms[0]·ms[1]·…·ms[k-1]·v, multiplying right to left so only
// matrix-vector products are formed.
func chain(v mat.Vector, ms ...mat.Matrix) (*mat.VecDense, error) {
	cur := mat.VecDenseCopyOf(v)
	for i := len(ms) - 1; i >= 0; i-- {
		r, c := ms[i].Dims()
		if c != cur.Len() {
			return nil, fmt.Errorf("factor %d is %dx%d, operand has %d rows: %w", i, r, c, cur.Len(), ErrShapeMismatch)
		}
		next := mat.NewVecDense(r, nil)
		next.MulVec(ms[i], cur)
		cur = next
	}

	return cur, nil
}

// product returns ms[0]·ms[1]·…·ms[k-1], left to right.
func product(ms ...mat.Matrix) (*mat.Dense, error) {
	cur := mat.DenseCopyOf(ms[0])
	for i := 1; i < len(ms); i++ {
		r, c := cur.Dims()
		r2, c2 := ms[i].Dims()
		if c != r2 {
			return nil, fmt.Errorf("%dx%d times factor %d (%dx%d): %w", r, c, i, r2, c2, ErrShapeMismatch)
		}
		next := mat.NewDense(r, c2, nil)
		next.Mul(cur, ms[i])
		cur = next
	}

	return cur, nil
}

// resolveName applies the default run name: the filter when set, otherwise
// covariance followed by discrepancy ("standardstandard").
func (e *Engine) resolveName(name, filter string) string {
	switch {
	case name != "":
		return name
	case filter != "":
		return filter
	default:
		return e.opts.cov.String() + e.opts.mmd.String()
	}
}

func (e *Engine) runInfo(filter string, t int) results.Run {
	info := results.Run{
		Covariance:  e.opts.cov.String(),
		Discrepancy: e.opts.mmd.String(),
		Filter:      filter,
		Truncation:  t,
	}
	if e.opts.cov.IsNystrom() || e.opts.mmd == approx.MMDNystrom {
		info.Basis = e.opts.basis.String()
	}

	return info
}

func (e *Engine) logFields(filter string) []zap.Field {
	return []zap.Field{
		zap.Stringer("cov", e.opts.cov),
		zap.Stringer("mmd", e.opts.mmd),
		zap.Stringer("basis", e.opts.basis),
		zap.String("filter", filter),
	}
}
