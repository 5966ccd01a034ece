// SPDX-License-Identifier: MIT

package session

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ktest/approx"
	"gonum.org/v1/gonum/mat"
)

// GroupSizes returns the kept observation counts, or the landmark counts.
func (s *Session) GroupSizes(landmarks bool, filter string) (int, int, error) {
	if landmarks {
		ls, err := s.landmarksOf(filter)
		if err != nil {
			return 0, 0, err
		}
		m1, _ := ls.zx.Dims()
		m2, _ := ls.zy.Dims()
		return m1, m2, nil
	}
	ix, iy, err := s.kept(filter)
	if err != nil {
		return 0, 0, err
	}

	return len(ix), len(iy), nil
}

// Gram returns K over the kept observations, effect-centered when
// configured. The matrix is memoised per filter and must not be modified.
func (s *Session) Gram(filter string) (*mat.Dense, error) {
	s.mu.Lock()
	k, ok := s.grams[filter]
	s.mu.Unlock()
	if ok {
		return k, nil
	}

	_, _, xy, err := s.observations(filter)
	if err != nil {
		return nil, sessionErrorf(opGram, err)
	}
	k, err = s.opts.kernel.Gram(xy, xy)
	if err != nil {
		return nil, sessionErrorf(opGram, err)
	}
	pe, err := s.effectCentering(filter)
	if err != nil {
		return nil, sessionErrorf(opGram, err)
	}
	if pe != nil {
		k = mul(pe, k, pe)
	}

	s.mu.Lock()
	s.grams[filter] = k
	s.mu.Unlock()

	return k, nil
}

// LandmarkGram returns Kz over [Zx; Zy].
func (s *Session) LandmarkGram(filter string) (*mat.Dense, error) {
	ls, err := s.landmarksOf(filter)
	if err != nil {
		return nil, err
	}
	z := stack(ls.zx, ls.zy)

	return s.opts.kernel.Gram(z, z)
}

// sampleLandmarkGram returns the landmark Gram matrix of one sample.
func (s *Session) sampleLandmarkGram(sample approx.Sample, filter string) (*mat.Dense, error) {
	ls, err := s.landmarksOf(filter)
	if err != nil {
		return nil, err
	}
	switch sample {
	case approx.X:
		return s.opts.kernel.Gram(ls.zx, ls.zx)
	case approx.Y:
		return s.opts.kernel.Gram(ls.zy, ls.zy)
	case approx.XY:
		return s.LandmarkGram(filter)
	default:
		return nil, fmt.Errorf("%v: %w", sample, approx.ErrUnknownSample)
	}
}

// CrossGram returns the landmark×observation block of sample. The pooled
// block is right-multiplied by the effect centering when configured.
func (s *Session) CrossGram(sample approx.Sample, filter string) (*mat.Dense, error) {
	ls, err := s.landmarksOf(filter)
	if err != nil {
		return nil, err
	}
	x, y, xy, err := s.observations(filter)
	if err != nil {
		return nil, err
	}
	switch sample {
	case approx.X:
		return s.opts.kernel.Gram(ls.zx, x)
	case approx.Y:
		return s.opts.kernel.Gram(ls.zy, y)
	case approx.XY:
	default:
		return nil, fmt.Errorf("%v: %w", sample, approx.ErrUnknownSample)
	}

	kzx, err := s.opts.kernel.Gram(stack(ls.zx, ls.zy), xy)
	if err != nil {
		return nil, err
	}
	pe, err := s.effectCentering(filter)
	if err != nil {
		return nil, err
	}
	if pe != nil {
		kzx = mul(kzx, pe)
	}

	return kzx, nil
}

// QuantizationCounts returns how many kept observations each landmark of
// sample represents.
func (s *Session) QuantizationCounts(sample approx.Sample, filter string) ([]int, error) {
	ls, err := s.landmarksOf(filter)
	if err != nil {
		return nil, sessionErrorf(opQuant, err)
	}
	m1, _ := ls.zx.Dims()
	m2, _ := ls.zy.Dims()
	cx, cy := make([]int, m1), make([]int, m2)
	for _, a := range ls.ax {
		cx[a]++
	}
	for _, a := range ls.ay {
		cy[a]++
	}

	switch sample {
	case approx.X:
		return cx, nil
	case approx.Y:
		return cy, nil
	case approx.XY:
		return append(cx, cy...), nil
	default:
		return nil, sessionErrorf(opQuant, fmt.Errorf("%v: %w", sample, approx.ErrUnknownSample))
	}
}

// QuantizationWeights returns count^power per landmark of sample.
func (s *Session) QuantizationWeights(sample approx.Sample, power float64, filter string) ([]float64, error) {
	counts, err := s.QuantizationCounts(sample, filter)
	if err != nil {
		return nil, err
	}
	w := make([]float64, len(counts))
	for i, c := range counts {
		w[i] = math.Pow(float64(c), power)
	}

	return w, nil
}
