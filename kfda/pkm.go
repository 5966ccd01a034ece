// SPDX-License-Identifier: MIT

package kfda

import (
	"fmt"

	"github.com/katalvlaran/ktest/approx"
	"gonum.org/v1/gonum/mat"
)

// blocks fetches Gram blocks from the provider on first use.
type blocks struct {
	provider Provider
	filter   string
	k        *mat.Dense
	kz       *mat.Dense
	kzx      *mat.Dense
}

func (b *blocks) gram() (*mat.Dense, error) {
	if b.k == nil {
		k, err := b.provider.Gram(b.filter)
		if err != nil {
			return nil, err
		}
		b.k = k
	}

	return b.k, nil
}

func (b *blocks) landmarkGram() (*mat.Dense, error) {
	if b.kz == nil {
		kz, err := b.provider.LandmarkGram(b.filter)
		if err != nil {
			return nil, err
		}
		b.kz = kz
	}

	return b.kz, nil
}

func (b *blocks) cross() (*mat.Dense, error) {
	if b.kzx == nil {
		kzx, err := b.provider.CrossGram(approx.XY, b.filter)
		if err != nil {
			return nil, err
		}
		b.kzx = kzx
	}

	return b.kzx, nil
}

// ProjectedWeightVector computes pkm, the centered mean-difference vector
// P·K·ω or its landmark substitute for the configured pair.
//
// Branches (m landmarks; see the package doc for symbols):
//
//	cov \ mmd   standard / nystrom                          quantization
//	standard    Pbi·K·ω  /  (1/m) Pbi·Kzxᵀ·Pi·Uz·Lz·Uzᵀ·Pi·Kzx·ω    Pbi·Kzxᵀ·ω_q
//	nystrom1    (1/m²) Pbi·Kzxᵀ·Pi·Uz·Lz·Uzᵀ·Pi·Kzx·ω              (1/m²) Pbi·Kzxᵀ·Uz·Lz·Uzᵀ·Kz·ω_q
//	nystrom2    (1/m³) Lz½·Uzᵀ·Pi·Kzx·Pbi·Kzxᵀ·Pi·Uz·Lz·Uzᵀ·Pi·Kzx·ω  (1/m³) Lz½·Uzᵀ·Kzx·Pbi·Kzxᵀ·Uz·Lz·Uzᵀ·Kz·ω_q
//	nystrom3    (1/m) Lz½·Uzᵀ·Pi·Kzx·ω                        (1/m) Lz½·Uzᵀ·Pi·Kz·ω_q
//	quantization Pbi·A·Kzx·ω  /  (1/m) Pbi·A·Kz·Uz·Lz·Uzᵀ·Pi·Kzx·ω     Pbi·A·Kz·ω_q
//
// The quantization column substitutes the landmark embedding of ω_q for that
// of ω: K·ω becomes Kzxᵀ·ω_q and Kzx·ω becomes Kz·ω_q. Pi·Uz = Uz, so Pi may
// be dropped next to Uz.
//
// The result has length n for standard and nystrom1, r (anchors) for
// nystrom2 and nystrom3, and m for quantization, matching the eigenvectors of
// the corresponding covariance spectrum.
func (e *Engine) ProjectedWeightVector(filter string) (*mat.VecDense, error) {
	v, err := e.pkm(filter)
	if err != nil {
		return nil, kfdaErrorf(opPKM, err)
	}

	return v, nil
}

func (e *Engine) pkm(filter string) (*mat.VecDense, error) {
	cov, mmd := e.opts.cov, e.opts.mmd
	if cov.IsNystrom() && e.opts.separateCovAnchors {
		return nil, fmt.Errorf("%v with per-sample anchors: %w", cov, ErrUnsupportedApproximationCombination)
	}

	pbi, err := e.biCentering(filter)
	if err != nil {
		return nil, err
	}
	var w *mat.VecDense
	if mmd == approx.MMDQuantization {
		w, err = e.quantizedOmega(filter)
	} else {
		w, err = e.omega(filter)
	}
	if err != nil {
		return nil, err
	}
	var an anchorSet
	if cov.IsNystrom() || mmd == approx.MMDNystrom {
		if an, err = e.anchors(approx.XY, filter); err != nil {
			return nil, err
		}
	}
	b := &blocks{provider: e.provider, filter: filter}
	m := float64(an.m)

	var (
		v     *mat.VecDense
		scale = 1.0
		k     *mat.Dense
		kz    *mat.Dense
		kzx   *mat.Dense
	)
	switch cov {
	case approx.CovStandard:
		switch mmd {
		case approx.MMDStandard:
			if k, err = b.gram(); err != nil {
				return nil, err
			}
			v, err = chain(w, pbi, k)
		case approx.MMDNystrom:
			if kzx, err = b.cross(); err != nil {
				return nil, err
			}
			v, err = chain(w, pbi, kzx.T(), an.p, an.u, an.inv, an.u.T(), an.p, kzx)
			scale = 1 / m
		case approx.MMDQuantization:
			if kzx, err = b.cross(); err != nil {
				return nil, err
			}
			v, err = chain(w, pbi, kzx.T())
		default:
			return nil, unsupported(cov, mmd)
		}

	case approx.CovNystrom1:
		if kzx, err = b.cross(); err != nil {
			return nil, err
		}
		switch mmd {
		case approx.MMDStandard, approx.MMDNystrom:
			v, err = chain(w, pbi, kzx.T(), an.p, an.u, an.inv, an.u.T(), an.p, kzx)
		case approx.MMDQuantization:
			if kz, err = b.landmarkGram(); err != nil {
				return nil, err
			}
			v, err = chain(w, pbi, kzx.T(), an.u, an.inv, an.u.T(), kz)
		default:
			return nil, unsupported(cov, mmd)
		}
		scale = 1 / (m * m)

	case approx.CovNystrom2:
		if kzx, err = b.cross(); err != nil {
			return nil, err
		}
		switch mmd {
		case approx.MMDStandard, approx.MMDNystrom:
			v, err = chain(w, an.invSqrt, an.u.T(), an.p, kzx, pbi, kzx.T(), an.p, an.u, an.inv, an.u.T(), an.p, kzx)
		case approx.MMDQuantization:
			if kz, err = b.landmarkGram(); err != nil {
				return nil, err
			}
			v, err = chain(w, an.invSqrt, an.u.T(), kzx, pbi, kzx.T(), an.u, an.inv, an.u.T(), kz)
		default:
			return nil, unsupported(cov, mmd)
		}
		scale = 1 / (m * m * m)

	case approx.CovNystrom3:
		if kzx, err = b.cross(); err != nil {
			return nil, err
		}
		switch mmd {
		case approx.MMDStandard, approx.MMDNystrom:
			v, err = chain(w, an.invSqrt, an.u.T(), an.p, kzx)
			scale = 1 / m
		case approx.MMDQuantization:
			if kz, err = b.landmarkGram(); err != nil {
				return nil, err
			}
			v, err = chain(w, an.invSqrt, an.u.T(), an.p, kz)
			scale = 1 / m
		default:
			return nil, unsupported(cov, mmd)
		}

	case approx.CovQuantization:
		a, err := e.sqrtWeights(filter)
		if err != nil {
			return nil, err
		}
		switch mmd {
		case approx.MMDStandard:
			if kzx, err = b.cross(); err != nil {
				return nil, err
			}
			v, err = chain(w, pbi, a, kzx)
		case approx.MMDNystrom:
			if kzx, err = b.cross(); err != nil {
				return nil, err
			}
			if kz, err = b.landmarkGram(); err != nil {
				return nil, err
			}
			v, err = chain(w, pbi, a, kz, an.u, an.inv, an.u.T(), an.p, kzx)
			scale = 1 / m
		case approx.MMDQuantization:
			if kz, err = b.landmarkGram(); err != nil {
				return nil, err
			}
			v, err = chain(w, pbi, a, kz)
		default:
			return nil, unsupported(cov, mmd)
		}
		if err != nil {
			return nil, err
		}

	default:
		return nil, unsupported(cov, mmd)
	}
	if err != nil {
		return nil, err
	}
	if scale != 1 {
		v.ScaleVec(scale, v)
	}

	return v, nil
}

func unsupported(cov approx.Covariance, mmd approx.Discrepancy) error {
	return fmt.Errorf("cov %v, mmd %v: %w", cov, mmd, ErrUnsupportedApproximationCombination)
}
