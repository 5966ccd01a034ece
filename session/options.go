// SPDX-License-Identifier: MIT

package session

import (
	"math"

	"github.com/katalvlaran/ktest/centering"
	"github.com/katalvlaran/ktest/kernel"
	"github.com/katalvlaran/ktest/kfda"
	"github.com/katalvlaran/ktest/spectral"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const (
	panicKernel      = "session: WithKernel: nil kernel"
	panicSolver      = "session: WithSolver: nil solver"
	panicLogger      = "session: WithLogger: nil logger"
	panicFilterName  = "session: WithOutlierFilter: empty filter name"
	panicLandmarks   = "session: WithLandmarks: nil landmark matrix"
	panicEffect      = "session: WithEffectCentering: nil metadata"
	panicDenominator = "session: WithQuantizationDenominator: unknown denominator"
	panicMinEig      = "session: WithMinEigenvalue: floor must be finite and non-negative"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	kernel  kernel.Kernel
	solver  spectral.Solver
	logger  *zap.Logger
	denom   centering.Denominator
	minEig  float64
	filters map[string][]bool

	zx, zy *mat.Dense
	ax, ay []int

	effect   *centering.EffectSpec
	metadata centering.Metadata
}

func gatherOptions(opts ...Option) options {
	o := options{
		solver:  spectral.NewGonumSolver(),
		logger:  zap.NewNop(),
		denom:   centering.DenominatorTotal,
		minEig:  kfda.DefaultMinEigenvalue,
		filters: make(map[string][]bool),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithKernel sets the kernel. The default is a Gaussian kernel with the
// median heuristic bandwidth of the pooled sample.
func WithKernel(k kernel.Kernel) Option {
	if k == nil {
		panic(panicKernel)
	}

	return func(o *options) { o.kernel = k }
}

// WithSolver sets the eigen solver (default spectral.NewGonumSolver()).
func WithSolver(s spectral.Solver) Option {
	if s == nil {
		panic(panicSolver)
	}

	return func(o *options) { o.solver = s }
}

// WithLogger attaches a logger, shared with the cache and the store.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic(panicLogger)
	}

	return func(o *options) { o.logger = l }
}

// WithQuantizationDenominator selects the denominator of the quantized
// bi-centering used by the quantization spectrum. Engines built with
// Session.Engine inherit it.
func WithQuantizationDenominator(d centering.Denominator) Option {
	if d != centering.DenominatorTotal && d != centering.DenominatorGroup {
		panic(panicDenominator)
	}

	return func(o *options) { o.denom = d }
}

// WithMinEigenvalue sets the floor every inverted anchor eigenvalue must
// exceed while building Nyström spectra. Engines built with Session.Engine
// inherit it.
func WithMinEigenvalue(floor float64) Option {
	if floor < 0 || math.IsNaN(floor) || math.IsInf(floor, 0) {
		panic(panicMinEig)
	}

	return func(o *options) { o.minEig = floor }
}

// WithOutlierFilter registers a filter: outlier[i] excludes pooled
// observation i (X rows first) from every computation run under name.
func WithOutlierFilter(name string, outlier []bool) Option {
	if name == "" {
		panic(panicFilterName)
	}

	return func(o *options) { o.filters[name] = append([]bool(nil), outlier...) }
}

// WithLandmarks supplies landmarks per sample. ax[i] is the row of zx that
// observation i of X is assigned to, likewise ay for Y.
func WithLandmarks(zx, zy *mat.Dense, ax, ay []int) Option {
	if zx == nil || zy == nil {
		panic(panicLandmarks)
	}

	return func(o *options) {
		o.zx, o.zy = zx, zy
		o.ax = append([]int(nil), ax...)
		o.ay = append([]int(nil), ay...)
	}
}

// WithEffectCentering centers observation embeddings by spec, reading the
// metadata columns (one value per pooled observation) from md.
func WithEffectCentering(spec centering.EffectSpec, md centering.Metadata) Option {
	if md == nil {
		panic(panicEffect)
	}

	return func(o *options) {
		o.effect = &spec
		o.metadata = md
	}
}
