// SPDX-License-Identifier: MIT

package session

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ktest/approx"
	"github.com/katalvlaran/ktest/centering"
	"github.com/katalvlaran/ktest/spectral"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// EnsureLandmarks resolves the landmarks of filter.
func (s *Session) EnsureLandmarks(filter string) error {
	if _, err := s.landmarksOf(filter); err != nil {
		return sessionErrorf(opLandmarks, err)
	}

	return nil
}

// EnsureAnchors caches eig((1/m_S) Pi·Kz_S·Pi) for sample S.
func (s *Session) EnsureAnchors(sample approx.Sample, basis approx.AnchorBasis, filter string) error {
	key := spectral.AnchorKey{Sample: sample, Basis: basis, Filter: filter}
	_, err := s.cache.GetOrComputeAnchors(key, func() (spectral.Entry, error) {
		m1, m2, err := s.GroupSizes(true, filter)
		if err != nil {
			return spectral.Entry{}, err
		}
		pi, err := centering.LandmarkCenteringMatrix(basis, sample, m1, m2)
		if err != nil {
			return spectral.Entry{}, err
		}
		kz, err := s.sampleLandmarkGram(sample, filter)
		if err != nil {
			return spectral.Entry{}, err
		}
		a := mul(pi, kz, pi)
		m, _ := pi.Dims()
		a.Scale(1/float64(m), a)

		return s.decompose(key.String(), a)
	})
	if err != nil {
		return sessionErrorf(opAnchors, err)
	}

	return nil
}

// EnsureSpectrum caches the XY covariance spectrum of cov, computing the
// landmarks and anchors it depends on first.
func (s *Session) EnsureSpectrum(cov approx.Covariance, basis approx.AnchorBasis, filter string) error {
	if !cov.Valid() {
		return sessionErrorf(opSpectrum, fmt.Errorf("%v: %w", cov, approx.ErrUnknownCovariance))
	}
	if cov.IsNystrom() {
		if err := s.EnsureAnchors(approx.XY, basis, filter); err != nil {
			return sessionErrorf(opSpectrum, err)
		}
	}

	key := spectral.NewKey(approx.XY, cov, basis, filter)
	_, err := s.cache.GetOrCompute(key, func() (spectral.Entry, error) {
		a, err := s.covarianceOperator(cov, basis, filter)
		if err != nil {
			return spectral.Entry{}, err
		}

		return s.decompose(key.String(), a)
	})
	if err != nil {
		return sessionErrorf(opSpectrum, err)
	}

	return nil
}

// covarianceOperator builds the matrix whose spectrum is cached for cov.
func (s *Session) covarianceOperator(cov approx.Covariance, basis approx.AnchorBasis, filter string) (*mat.Dense, error) {
	n1, n2, err := s.GroupSizes(false, filter)
	if err != nil {
		return nil, err
	}
	n := float64(n1 + n2)

	var a *mat.Dense
	switch cov {
	case approx.CovStandard:
		k, err := s.Gram(filter)
		if err != nil {
			return nil, err
		}
		pbi, err := centering.WithinGroupBiCentering(n1, n2)
		if err != nil {
			return nil, err
		}
		a = mul(pbi, k, pbi)

	case approx.CovNystrom1, approx.CovNystrom2, approx.CovNystrom3:
		pbi, err := centering.WithinGroupBiCentering(n1, n2)
		if err != nil {
			return nil, err
		}
		m1, m2, err := s.GroupSizes(true, filter)
		if err != nil {
			return nil, err
		}
		m := float64(m1 + m2)
		pi, err := centering.LandmarkCenteringMatrix(basis, approx.XY, m1, m2)
		if err != nil {
			return nil, err
		}
		entry, err := s.cache.LookupAnchors(spectral.AnchorKey{Sample: approx.XY, Basis: basis, Filter: filter})
		if err != nil {
			return nil, err
		}
		if err = entry.CheckPositive(entry.Len(), s.opts.minEig); err != nil {
			return nil, err
		}
		if entry.Dim() != m1+m2 {
			return nil, fmt.Errorf("%d-dim anchors for %d landmarks: %w", entry.Dim(), m1+m2, centering.ErrShapeMismatch)
		}
		kzx, err := s.CrossGram(approx.XY, filter)
		if err != nil {
			return nil, err
		}
		u := entry.Vectors
		if cov == approx.CovNystrom1 {
			inv := diag(entry.Values, -1)
			khat := mul(kzx.T(), pi, u, inv, u.T(), pi, kzx)
			khat.Scale(1/(m*m), khat)
			a = mul(pbi, khat, pbi)
			break
		}
		psi := mul(diag(entry.Values, -0.5), u.T(), pi, kzx)
		psi.Scale(1/m, psi)
		a = mul(psi, pbi, psi.T())

	case approx.CovQuantization:
		a1, err := s.QuantizationWeights(approx.X, 0.5, filter)
		if err != nil {
			return nil, err
		}
		a2, err := s.QuantizationWeights(approx.Y, 0.5, filter)
		if err != nil {
			return nil, err
		}
		pbq, err := centering.QuantizedBiCentering(a1, a2, n1, n2, s.opts.denom)
		if err != nil {
			return nil, err
		}
		kz, err := s.LandmarkGram(filter)
		if err != nil {
			return nil, err
		}
		w := mat.NewDiagDense(len(a1)+len(a2), append(append([]float64(nil), a1...), a2...))
		a = mul(pbq, w, kz, w, pbq)

	default:
		return nil, fmt.Errorf("%v: %w", cov, approx.ErrUnknownCovariance)
	}
	a.Scale(1/n, a)

	return a, nil
}

// decompose symmetrises a and hands it to the solver.
func (s *Session) decompose(what string, a *mat.Dense) (spectral.Entry, error) {
	sym, err := spectral.Symmetrize(a, spectral.DefaultSymmetryTolerance)
	if err != nil {
		return spectral.Entry{}, err
	}
	entry, err := s.opts.solver.Decompose(sym)
	if err != nil {
		return spectral.Entry{}, err
	}
	s.opts.logger.Debug("spectrum computed",
		zap.String("key", what),
		zap.Int("dim", entry.Dim()),
		zap.Int("rank", entry.Len()),
		zap.Float64("trace", entry.Trace()))

	return entry, nil
}

// diag returns diag(v^power).
func diag(v []float64, power float64) *mat.DiagDense {
	d := make([]float64, len(v))
	for i, x := range v {
		d[i] = math.Pow(x, power)
	}

	return mat.NewDiagDense(len(d), d)
}
