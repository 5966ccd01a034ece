// SPDX-License-Identifier: MIT

package kfda

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ktest/approx"
	"gonum.org/v1/gonum/mat"
)

// ProjectionCoefficients returns upk, the n×t matrix whose column p holds
// every observation's coordinate on the p-th covariance eigenfunction
// (up to √(nλ_p)):
//
//	standard      K·Pbi·v_p
//	nystrom1      (1/m²) Kzxᵀ·Pi·Uz·Lz·Uzᵀ·Pi·Kzx·Pbi·v_p
//	nystrom2      (1/m³) Kzxᵀ·Pi·Uz·Lz·Uzᵀ·Pi·Kzx·Pbi·Kzxᵀ·Pi·Uz·Lz½·v_p
//	nystrom3      (1/m) Kzxᵀ·Pi·Uz·Lz½·v_p
//	quantization  Kzxᵀ·A·Pbi·v_p
//
// The prefactors mirror those of ProjectedWeightVector, so that Project
// combines both with the contribution weights.
//
// t ≤ 0 or t > len(spectrum) selects the whole spectrum.
func (e *Engine) ProjectionCoefficients(t int, filter string) (*mat.Dense, error) {
	upk, err := e.upk(t, filter)
	if err != nil {
		return nil, kfdaErrorf(opUPK, err)
	}

	return upk, nil
}

func (e *Engine) upk(t int, filter string) (*mat.Dense, error) {
	if e.opts.cov.IsNystrom() && e.opts.separateCovAnchors {
		return nil, fmt.Errorf("%v with per-sample anchors: %w", e.opts.cov, ErrUnsupportedApproximationCombination)
	}
	entry, err := e.spectrum(filter)
	if err != nil {
		return nil, err
	}
	_, v, err := entry.Truncate(entry.ClampTruncation(t))
	if err != nil {
		return nil, err
	}
	b := &blocks{provider: e.provider, filter: filter}

	switch cov := e.opts.cov; cov {
	case approx.CovStandard:
		k, err := b.gram()
		if err != nil {
			return nil, err
		}
		pbi, err := e.biCentering(filter)
		if err != nil {
			return nil, err
		}
		return product(k, pbi, v)

	case approx.CovNystrom1, approx.CovNystrom2, approx.CovNystrom3:
		an, err := e.anchors(approx.XY, filter)
		if err != nil {
			return nil, err
		}
		kzx, err := b.cross()
		if err != nil {
			return nil, err
		}
		m := float64(an.m)
		var (
			out   *mat.Dense
			scale float64
		)
		switch cov {
		case approx.CovNystrom1:
			pbi, err := e.biCentering(filter)
			if err != nil {
				return nil, err
			}
			out, err = product(kzx.T(), an.p, an.u, an.inv, an.u.T(), an.p, kzx, pbi, v)
			if err != nil {
				return nil, err
			}
			scale = 1 / (m * m)
		case approx.CovNystrom2:
			pbi, err := e.biCentering(filter)
			if err != nil {
				return nil, err
			}
			out, err = product(kzx.T(), an.p, an.u, an.inv, an.u.T(), an.p, kzx, pbi, kzx.T(), an.p, an.u, an.invSqrt, v)
			if err != nil {
				return nil, err
			}
			scale = 1 / (m * m * m)
		default:
			out, err = product(kzx.T(), an.p, an.u, an.invSqrt, v)
			if err != nil {
				return nil, err
			}
			scale = 1 / m
		}
		out.Scale(scale, out)
		return out, nil

	case approx.CovQuantization:
		kzx, err := b.cross()
		if err != nil {
			return nil, err
		}
		a, err := e.sqrtWeights(filter)
		if err != nil {
			return nil, err
		}
		pbi, err := e.biCentering(filter)
		if err != nil {
			return nil, err
		}
		return product(kzx.T(), a, pbi, v)

	default:
		return nil, unsupported(cov, e.opts.mmd)
	}
}

// Project returns the position of every observation on the discriminant
// axis of the first t directions:
//
//	h_t(x_i) = Σ_{p≤t} n1·n2 / (n·λ_p)^e · (v_pᵀ·pkm) · upk_p(i)
func (e *Engine) Project(t int, filter string) (*mat.VecDense, error) {
	out, err := e.project(t, filter)
	if err != nil {
		return nil, kfdaErrorf(opProject, err)
	}

	return out, nil
}

func (e *Engine) project(t int, filter string) (*mat.VecDense, error) {
	entry, err := e.spectrum(filter)
	if err != nil {
		return nil, err
	}
	t = entry.ClampTruncation(t)
	if err = entry.CheckPositive(t, e.opts.minEig); err != nil {
		return nil, err
	}
	proj, err := e.directionProjections(entry.Vectors, t, filter)
	if err != nil {
		return nil, err
	}
	upk, err := e.upk(t, filter)
	if err != nil {
		return nil, err
	}
	n1, n2, n, err := e.dataSizes(filter)
	if err != nil {
		return nil, err
	}
	exp, err := e.opts.cov.Exponent()
	if err != nil {
		return nil, err
	}

	w := make([]float64, t)
	for p := range w {
		w[p] = float64(n1*n2) / math.Pow(float64(n)*entry.Values[p], float64(exp)) * proj.AtVec(p)
	}
	rows, _ := upk.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(upk, mat.NewVecDense(t, w))

	return out, nil
}

// directionProjections returns v_pᵀ·pkm for the first t eigenvectors.
func (e *Engine) directionProjections(vectors *mat.Dense, t int, filter string) (*mat.VecDense, error) {
	pkm, err := e.pkm(filter)
	if err != nil {
		return nil, err
	}
	r, _ := vectors.Dims()
	if r != pkm.Len() {
		return nil, fmt.Errorf("%d-dim eigenvectors, pkm of length %d: %w", r, pkm.Len(), ErrShapeMismatch)
	}
	v := vectors.Slice(0, r, 0, t)
	proj := mat.NewVecDense(t, nil)
	proj.MulVec(v.T(), pkm)

	return proj, nil
}
