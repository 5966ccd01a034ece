// SPDX-License-Identifier: MIT

package kfda

import (
	"math"

	"github.com/katalvlaran/ktest/approx"
	"github.com/katalvlaran/ktest/centering"
	"go.uber.org/zap"
)

// Defaults applied by NewEngine.
const (
	DefaultCovariance  = approx.CovStandard
	DefaultDiscrepancy = approx.MMDStandard
	DefaultAnchorBasis = approx.BasisW

	// DefaultMinEigenvalue is the floor every inverted eigenvalue must exceed.
	DefaultMinEigenvalue = 1e-12

	// DefaultQuantizationDenominator keeps the calibrated 1/n normaliser.
	DefaultQuantizationDenominator = centering.DenominatorTotal
)

const (
	panicCovariance  = "kfda: WithCovariance: unknown covariance approximation"
	panicDiscrepancy = "kfda: WithDiscrepancy: unknown discrepancy approximation"
	panicBasis       = "kfda: WithAnchorBasis: unknown anchor basis"
	panicMinEig      = "kfda: WithMinEigenvalue: floor must be finite and non-negative"
	panicDenominator = "kfda: WithQuantizationDenominator: unknown denominator"
	panicLogger      = "kfda: WithLogger: nil logger"
)

// Option configures an Engine. Constructors panic only on values that can
// never be valid.
type Option func(*options)

type options struct {
	cov                approx.Covariance
	mmd                approx.Discrepancy
	basis              approx.AnchorBasis
	minEig             float64
	denom              centering.Denominator
	separateCovAnchors bool
	logger             *zap.Logger
}

func defaultOptions() options {
	return options{
		cov:    DefaultCovariance,
		mmd:    DefaultDiscrepancy,
		basis:  DefaultAnchorBasis,
		minEig: DefaultMinEigenvalue,
		denom:  DefaultQuantizationDenominator,
		logger: zap.NewNop(),
	}
}

func gatherOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithCovariance selects the covariance approximation.
func WithCovariance(c approx.Covariance) Option {
	if !c.Valid() {
		panic(panicCovariance)
	}

	return func(o *options) { o.cov = c }
}

// WithDiscrepancy selects the mean-difference / MMD approximation.
func WithDiscrepancy(d approx.Discrepancy) Option {
	if !d.Valid() {
		panic(panicDiscrepancy)
	}

	return func(o *options) { o.mmd = d }
}

// WithAnchorBasis selects the landmark centering used by every Nyström term.
// Covariance and discrepancy branches always share it.
func WithAnchorBasis(b approx.AnchorBasis) Option {
	if !b.Valid() {
		panic(panicBasis)
	}

	return func(o *options) { o.basis = b }
}

// WithMinEigenvalue sets the floor below which an eigenvalue is treated as
// degenerate. Zero still rejects non-positive eigenvalues.
func WithMinEigenvalue(floor float64) Option {
	if floor < 0 || math.IsNaN(floor) || math.IsInf(floor, 0) {
		panic(panicMinEig)
	}

	return func(o *options) { o.minEig = floor }
}

// WithQuantizationDenominator selects 1/n or 1/nᵢ in the quantized
// bi-centering blocks.
func WithQuantizationDenominator(d centering.Denominator) Option {
	if d != centering.DenominatorTotal && d != centering.DenominatorGroup {
		panic(panicDenominator)
	}

	return func(o *options) { o.denom = d }
}

// WithSeparateCovarianceAnchors requests per-sample anchors on the
// covariance side. No Nyström covariance supports it; such engines fail
// with ErrUnsupportedApproximationCombination.
func WithSeparateCovarianceAnchors() Option {
	return func(o *options) { o.separateCovAnchors = true }
}

// WithLogger attaches a logger; runs are logged at DEBUG.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic(panicLogger)
	}

	return func(o *options) { o.logger = l }
}

// MMDOption configures one SquaredDiscrepancy call.
type MMDOption func(*mmdOptions)

type mmdOptions struct {
	unbiased    bool
	separate    bool
	singlePower bool
	filter      string
	name        string
}

// Unbiased zeroes the Gram diagonal before the standard inner product.
// With the default double power the result is still not unbiased.
func Unbiased() MMDOption { return func(o *mmdOptions) { o.unbiased = true } }

// SeparateAnchors uses one anchor set per sample instead of a shared one.
func SeparateAnchors() MMDOption { return func(o *mmdOptions) { o.separate = true } }

// SinglePower returns the inner-product estimator itself rather than its square.
func SinglePower() MMDOption { return func(o *mmdOptions) { o.singlePower = true } }

// WithMMDFilter restricts the computation to an outlier filter.
func WithMMDFilter(filter string) MMDOption { return func(o *mmdOptions) { o.filter = filter } }

// WithMMDName overrides the stored name.
func WithMMDName(name string) MMDOption { return func(o *mmdOptions) { o.name = name } }
