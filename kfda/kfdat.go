// SPDX-License-Identifier: MIT

package kfda

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ktest/approx"
	"github.com/katalvlaran/ktest/partition"
	"github.com/katalvlaran/ktest/results"
	"github.com/katalvlaran/ktest/spectral"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// TruncatedStatistic computes the per-direction contributions
//
//	c_p = n1·n2 / (n^e · λ_p^e) · (v_pᵀ·pkm)²,  p = 1…t
//
// of the active covariance spectrum and stores their running sum (kfdat_t,
// non-decreasing in t) in df_kfdat and the contributions themselves in
// df_kfdat_contributions under the resolved name, which is returned.
//
// maxT ≤ 0 selects the whole spectrum; larger values are clamped to it. An
// empty name defaults to the filter, then to covariance+discrepancy
// ("standardstandard"). Existing entries are overwritten with a warning.
//
// Implementation:
//   - Stage 1: load the spectrum and reject λ_p ≤ floor for p ≤ t.
//   - Stage 2: pkm and its projections Vᵀ·pkm.
//   - Stage 3: contributions, cumulative sum, store.
//
// Complexity: dominated by pkm (see ProjectedWeightVector) plus O(t·dim).
func (e *Engine) TruncatedStatistic(maxT int, name, filter string) (string, error) {
	name = e.resolveName(name, filter)
	contrib, err := e.contributions(maxT, filter)
	if err != nil {
		return "", kfdaErrorf(opKFDAT, err)
	}
	cum := make([]float64, len(contrib))
	floats.CumSum(cum, contrib)

	run := e.store.PutStatistic(name, cum, contrib, e.runInfo(filter, len(contrib)))
	e.opts.logger.Debug("kfdat computed",
		append(e.logFields(filter),
			zap.String("name", name),
			zap.Int("t", len(contrib)),
			zap.Float64("kfdat", cum[len(cum)-1]),
			zap.Stringer("run", run.ID))...)

	return name, nil
}

func (e *Engine) contributions(maxT int, filter string) ([]float64, error) {
	entry, err := e.spectrum(filter)
	if err != nil {
		return nil, err
	}
	t := entry.ClampTruncation(maxT)
	if t == 0 {
		return nil, fmt.Errorf("empty spectrum: %w", spectral.ErrTruncation)
	}
	if err = entry.CheckPositive(t, e.opts.minEig); err != nil {
		return nil, err
	}
	exp, err := e.opts.cov.Exponent()
	if err != nil {
		return nil, err
	}
	n1, n2, n, err := e.dataSizes(filter)
	if err != nil {
		return nil, err
	}
	proj, err := e.directionProjections(entry.Vectors, t, filter)
	if err != nil {
		return nil, err
	}

	contrib := make([]float64, t)
	for p := range contrib {
		d := proj.AtVec(p)
		contrib[p] = float64(n1*n2) / math.Pow(float64(n)*entry.Values[p], float64(exp)) * d * d
	}

	return contrib, nil
}

// Directions describes the stored directions of one run, in spectral order.
type Directions struct {
	Eigenvalues   []float64
	Contributions []float64
	Exponent      int
}

// Ordering reorders directions before accumulation.
type Ordering interface {
	// Suffix is appended to the run name as name_suffix.
	Suffix() string
	// Order returns a permutation of the direction indices.
	Order(d Directions) []int
}

// BetweenOrdering ranks directions by how much of the mean difference they
// carry: ⟨e_p, μ2−μ1⟩² ∝ c_p·λ_p^(e−1), largest first. Ties keep spectral
// order.
type BetweenOrdering struct{}

// Suffix returns "between".
func (BetweenOrdering) Suffix() string { return "between" }

// Order sorts directions by decreasing between-group weight.
func (BetweenOrdering) Order(d Directions) []int {
	key := make([]float64, len(d.Contributions))
	for p, c := range d.Contributions {
		key[p] = -c * math.Pow(d.Eigenvalues[p], float64(d.Exponent-1))
	}
	idx := make([]int, len(key))
	floats.ArgsortStable(key, idx)

	return idx
}

// ReorderedStatistic accumulates the stored contributions of name in the
// order chosen by ord and stores the series in df_kfdat as name_suffix,
// which is returned. The spectrum the run was computed from must still be
// cached.
func (e *Engine) ReorderedStatistic(name string, ord Ordering) (string, error) {
	out, err := e.reorder(name, ord)
	if err != nil {
		return "", kfdaErrorf(opReorder, err)
	}

	return out, nil
}

func (e *Engine) reorder(name string, ord Ordering) (string, error) {
	contrib, ok := e.store.Contributions(name)
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownRun)
	}
	info, _ := e.store.Run(results.TableContributions, name)
	cov, err := approx.ParseCovariance(info.Covariance)
	if err != nil {
		return "", err
	}
	basis := approx.BasisK
	if info.Basis != "" {
		if basis, err = approx.ParseAnchorBasis(info.Basis); err != nil {
			return "", err
		}
	}
	entry, err := e.cache.Lookup(spectral.NewKey(approx.XY, cov, basis, info.Filter))
	if err != nil {
		return "", err
	}
	if len(contrib) > entry.Len() {
		return "", fmt.Errorf("%d contributions, %d eigenvalues: %w", len(contrib), entry.Len(), ErrShapeMismatch)
	}
	exp, err := cov.Exponent()
	if err != nil {
		return "", err
	}

	order := partition.Permutation(ord.Order(Directions{
		Eigenvalues:   entry.Values[:len(contrib)],
		Contributions: contrib,
		Exponent:      exp,
	}))
	if len(order) != len(contrib) {
		return "", fmt.Errorf("ordering of %d for %d directions: %w", len(order), len(contrib), ErrShapeMismatch)
	}
	if err = order.Validate(); err != nil {
		return "", err
	}
	cum := make([]float64, len(order))
	acc := 0.0
	for i, p := range order {
		acc += contrib[p]
		cum[i] = acc
	}

	out := name + "_" + ord.Suffix()
	info.Truncation = len(cum)
	e.store.PutCumulative(out, cum, info)
	e.opts.logger.Debug("kfdat reordered", zap.String("name", out), zap.String("from", name))

	return out, nil
}

// ExplainedVariance returns the cumulative share of the trace carried by the
// first p directions of the active spectrum, p = 1…len.
func (e *Engine) ExplainedVariance(filter string) ([]float64, error) {
	entry, err := e.spectrum(filter)
	if err != nil {
		return nil, kfdaErrorf(opExplained, err)
	}
	tr := entry.Trace()
	if tr <= 0 {
		return nil, kfdaErrorf(opExplained, fmt.Errorf("trace %g: %w", tr, spectral.ErrNumericDegeneracy))
	}
	out := make([]float64, entry.Len())
	floats.CumSum(out, entry.Values)
	floats.Scale(1/tr, out)

	return out, nil
}

// Trace returns Σ λ_p of the active spectrum.
func (e *Engine) Trace(filter string) (float64, error) {
	entry, err := e.spectrum(filter)
	if err != nil {
		return 0, kfdaErrorf(opTrace, err)
	}

	return entry.Trace(), nil
}

// Run makes sure every input of the statistic is available through the
// provider, then computes it. When name (resolved as in TruncatedStatistic)
// already holds a statistic nothing is recomputed.
func (e *Engine) Run(maxT int, name, filter string) (string, error) {
	name = e.resolveName(name, filter)
	if e.store.Has(results.TableStatistic, name) {
		e.opts.logger.Debug("kfdat already computed", zap.String("name", name))
		return name, nil
	}
	if err := e.prepare(filter); err != nil {
		return "", kfdaErrorf(opRun, err)
	}
	if err := e.provider.EnsureSpectrum(e.opts.cov, e.opts.basis, filter); err != nil {
		return "", kfdaErrorf(opRun, err)
	}

	return e.TruncatedStatistic(maxT, name, filter)
}

// prepare ensures the landmarks and shared anchors the configuration reads.
func (e *Engine) prepare(filter string) error {
	cov, mmd := e.opts.cov, e.opts.mmd
	if cov.IsNystrom() && e.opts.separateCovAnchors {
		return fmt.Errorf("%v with per-sample anchors: %w", cov, ErrUnsupportedApproximationCombination)
	}
	landmarks := cov.IsNystrom() || cov == approx.CovQuantization ||
		mmd == approx.MMDNystrom || mmd == approx.MMDQuantization
	if landmarks {
		if err := e.provider.EnsureLandmarks(filter); err != nil {
			return err
		}
	}
	if cov.IsNystrom() || mmd == approx.MMDNystrom {
		return e.provider.EnsureAnchors(approx.XY, e.opts.basis, filter)
	}

	return nil
}
