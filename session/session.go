// SPDX-License-Identifier: MIT

package session

import (
	"fmt"
	"sync"

	"github.com/katalvlaran/ktest/centering"
	"github.com/katalvlaran/ktest/kernel"
	"github.com/katalvlaran/ktest/kfda"
	"github.com/katalvlaran/ktest/results"
	"github.com/katalvlaran/ktest/spectral"
	"gonum.org/v1/gonum/mat"
)

var _ kfda.Provider = (*Session)(nil)

// Session holds one two-sample analysis. Its methods are safe for
// concurrent use.
type Session struct {
	x, y  *mat.Dense
	opts  options
	cache *spectral.Cache
	store *results.Store

	mu        sync.Mutex
	grams     map[string]*mat.Dense
	landmarks map[string]landmarkSet
}

// landmarkSet is the landmark configuration of one filter.
type landmarkSet struct {
	zx, zy *mat.Dense
	ax, ay []int // landmark of each kept observation
}

// New validates the samples and options and returns an empty session.
func New(x, y *mat.Dense, opts ...Option) (*Session, error) {
	if x == nil || y == nil || x.IsEmpty() || y.IsEmpty() {
		return nil, sessionErrorf(opNew, ErrEmptySample)
	}
	n1, d := x.Dims()
	n2, dy := y.Dims()
	if d != dy {
		return nil, sessionErrorf(opNew, fmt.Errorf("%d vs %d features: %w", d, dy, kernel.ErrDimensionMismatch))
	}

	o := gatherOptions(opts...)
	if o.kernel == nil {
		g, err := kernel.NewGaussianMedian(x, y)
		if err != nil {
			return nil, sessionErrorf(opNew, err)
		}
		o.kernel = g
	}
	for name, mask := range o.filters {
		if len(mask) != n1+n2 {
			return nil, sessionErrorf(opNew,
				fmt.Errorf("filter %q: %d flags for %d observations: %w", name, len(mask), n1+n2, centering.ErrShapeMismatch))
		}
	}
	if o.zx != nil {
		if err := validateLandmarks(o.zx, o.ax, n1, d); err != nil {
			return nil, sessionErrorf(opNew, fmt.Errorf("x: %w", err))
		}
		if err := validateLandmarks(o.zy, o.ay, n2, d); err != nil {
			return nil, sessionErrorf(opNew, fmt.Errorf("y: %w", err))
		}
	}

	return &Session{
		x:         x,
		y:         y,
		opts:      o,
		cache:     spectral.NewCache(spectral.WithLogger(o.logger)),
		store:     results.NewStore(results.WithLogger(o.logger)),
		grams:     make(map[string]*mat.Dense),
		landmarks: make(map[string]landmarkSet),
	}, nil
}

func validateLandmarks(z *mat.Dense, assign []int, n, d int) error {
	m, dz := z.Dims()
	if dz != d {
		return fmt.Errorf("%d landmark features for %d: %w", dz, d, ErrInvalidLandmarks)
	}
	if len(assign) != n {
		return fmt.Errorf("%d assignments for %d observations: %w", len(assign), n, ErrInvalidLandmarks)
	}
	for i, a := range assign {
		if a < 0 || a >= m {
			return fmt.Errorf("assignment[%d]=%d of %d landmarks: %w", i, a, m, ErrInvalidLandmarks)
		}
	}

	return nil
}

// Cache returns the session's spectral cache.
func (s *Session) Cache() *spectral.Cache { return s.cache }

// Store returns the session's result store.
func (s *Session) Store() *results.Store { return s.store }

// Kernel returns the kernel in use.
func (s *Session) Kernel() kernel.Kernel { return s.opts.kernel }

// Engine builds a statistic engine over the session. The session's logger,
// quantization denominator and eigenvalue floor come first so opts can
// override them.
func (s *Session) Engine(opts ...kfda.Option) (*kfda.Engine, error) {
	base := []kfda.Option{
		kfda.WithLogger(s.opts.logger),
		kfda.WithQuantizationDenominator(s.opts.denom),
		kfda.WithMinEigenvalue(s.opts.minEig),
	}

	return kfda.NewEngine(s, s.cache, s.store, append(base, opts...)...)
}

// Clear drops every cached spectrum, Gram matrix, landmark set and result.
func (s *Session) Clear() {
	s.cache.Clear()
	s.store.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grams = make(map[string]*mat.Dense)
	s.landmarks = make(map[string]landmarkSet)
}

// kept returns the row indices of X and Y retained by filter.
func (s *Session) kept(filter string) ([]int, []int, error) {
	n1, _ := s.x.Dims()
	n2, _ := s.y.Dims()
	var mask []bool
	if filter != "" {
		m, ok := s.opts.filters[filter]
		if !ok {
			return nil, nil, fmt.Errorf("%q: %w", filter, ErrUnknownFilter)
		}
		mask = m
	}

	ix := make([]int, 0, n1)
	for i := 0; i < n1; i++ {
		if mask == nil || !mask[i] {
			ix = append(ix, i)
		}
	}
	iy := make([]int, 0, n2)
	for i := 0; i < n2; i++ {
		if mask == nil || !mask[n1+i] {
			iy = append(iy, i)
		}
	}
	if len(ix) == 0 || len(iy) == 0 {
		return nil, nil, fmt.Errorf("filter %q keeps %d+%d observations: %w", filter, len(ix), len(iy), ErrEmptySample)
	}

	return ix, iy, nil
}

// observations returns the kept rows of X, Y and the pooled [X; Y].
func (s *Session) observations(filter string) (x, y, xy *mat.Dense, err error) {
	ix, iy, err := s.kept(filter)
	if err != nil {
		return nil, nil, nil, err
	}
	x, y = rows(s.x, ix), rows(s.y, iy)

	return x, y, stack(x, y), nil
}

// landmarksOf resolves (and memoises) the landmarks of filter.
func (s *Session) landmarksOf(filter string) (landmarkSet, error) {
	s.mu.Lock()
	ls, ok := s.landmarks[filter]
	s.mu.Unlock()
	if ok {
		return ls, nil
	}

	ix, iy, err := s.kept(filter)
	if err != nil {
		return landmarkSet{}, err
	}
	if s.opts.zx == nil {
		ls = landmarkSet{zx: rows(s.x, ix), zy: rows(s.y, iy), ax: seq(len(ix)), ay: seq(len(iy))}
	} else {
		ls = landmarkSet{zx: s.opts.zx, zy: s.opts.zy, ax: pick(s.opts.ax, ix), ay: pick(s.opts.ay, iy)}
	}

	s.mu.Lock()
	s.landmarks[filter] = ls
	s.mu.Unlock()

	return ls, nil
}

// effectCentering returns P_e over the kept observations, or nil.
func (s *Session) effectCentering(filter string) (*mat.Dense, error) {
	if s.opts.effect == nil {
		return nil, nil
	}
	ix, iy, err := s.kept(filter)
	if err != nil {
		return nil, err
	}
	n1, _ := s.x.Dims()
	keep := append([]int(nil), ix...)
	for _, i := range iy {
		keep = append(keep, n1+i)
	}

	return centering.EffectCenteringMatrix(len(keep), *s.opts.effect, filteredMetadata{md: s.opts.metadata, keep: keep})
}

// filteredMetadata restricts every column to the kept pooled rows.
type filteredMetadata struct {
	md   centering.Metadata
	keep []int
}

func (f filteredMetadata) Column(name string) ([]string, error) {
	col, err := f.md.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(f.keep))
	for j, i := range f.keep {
		if i >= len(col) {
			return nil, fmt.Errorf("column %q has %d values: %w", name, len(col), centering.ErrShapeMismatch)
		}
		out[j] = col[i]
	}

	return out, nil
}

func rows(m *mat.Dense, idx []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for j, i := range idx {
		out.SetRow(j, m.RawRowView(i))
	}

	return out
}

func stack(a, b *mat.Dense) *mat.Dense {
	out := &mat.Dense{}
	out.Stack(a, b)

	return out
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

func pick(src, idx []int) []int {
	out := make([]int, len(idx))
	for j, i := range idx {
		out[j] = src[i]
	}

	return out
}

// mul returns the left-to-right product of ms.
func mul(ms ...mat.Matrix) *mat.Dense {
	cur := mat.DenseCopyOf(ms[0])
	for _, m := range ms[1:] {
		next := &mat.Dense{}
		next.Mul(cur, m)
		cur = next
	}

	return cur
}
