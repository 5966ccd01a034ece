// SPDX-License-Identifier: MIT

package kfda

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ktest/approx"
	"github.com/katalvlaran/ktest/centering"
	"github.com/katalvlaran/ktest/results"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Discrepancy run names.
const (
	NameMMDStandard      = "standard"
	NameMMDNystromShared = "nystromshared"
	NameMMDNystromDiff   = "nystromdiff"
	NameMMDQuantization  = "quantization"
)

// SquaredDiscrepancy estimates the kernel mean discrepancy between the two
// samples with the configured discrepancy approximation, stores it in
// dict_mmd and returns the name and value. The default name is the mode name
// followed by the filter, if any. The estimators are
//
//	standard        s = ωᵀ·K·ω                       (Unbiased zeroes diag K)
//	nystrom shared  s = ψᵀψ,  ψ = m^-½ Lz½·Uzᵀ·Pi·Kzx·ω
//	quantization    s = ω_qᵀ·Kz·ω_q
//
// and for SeparateAnchors, with anchors computed per sample,
//
//	s = ψxᵀψx + ψyᵀψy − 2·ψxᵀ·Cψy
//
// The stored value is s², or s with SinglePower. Under SeparateAnchors
// without SinglePower only the two self terms are squared.
func (e *Engine) SquaredDiscrepancy(opts ...MMDOption) (string, float64, error) {
	o := gatherMMDOptions(opts...)
	name := e.mmdName(o)
	v, err := e.squaredDiscrepancy(o)
	if err != nil {
		return "", 0, kfdaErrorf(opMMD, err)
	}

	info := results.Run{Discrepancy: e.opts.mmd.String(), Filter: o.filter}
	if e.opts.mmd == approx.MMDNystrom {
		info.Basis = e.opts.basis.String()
	}
	run := e.store.PutDiscrepancy(name, v, info)
	e.opts.logger.Debug("mmd computed",
		zap.Stringer("mmd", e.opts.mmd),
		zap.Bool("unbiased", o.unbiased),
		zap.Bool("separate", o.separate),
		zap.String("name", name),
		zap.Float64("value", v),
		zap.Stringer("run", run.ID))

	return name, v, nil
}

func gatherMMDOptions(opts ...MMDOption) mmdOptions {
	var o mmdOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// mmdName resolves the stored name: the explicit name, otherwise the mode
// name followed by the filter ("standard", "standarddrop").
func (e *Engine) mmdName(o mmdOptions) string {
	if o.name != "" {
		return o.name
	}
	var base string
	switch e.opts.mmd {
	case approx.MMDNystrom:
		base = NameMMDNystromShared
		if o.separate {
			base = NameMMDNystromDiff
		}
	case approx.MMDQuantization:
		base = NameMMDQuantization
	default:
		base = NameMMDStandard
	}

	return base + o.filter
}

func (e *Engine) squaredDiscrepancy(o mmdOptions) (float64, error) {
	square := func(s float64) float64 {
		if o.singlePower {
			return s
		}
		return s * s
	}

	switch e.opts.mmd {
	case approx.MMDStandard:
		k, err := e.provider.Gram(o.filter)
		if err != nil {
			return 0, err
		}
		if o.unbiased {
			k = mat.DenseCopyOf(k)
			n, _ := k.Dims()
			for i := 0; i < n; i++ {
				k.Set(i, i, 0)
			}
		}
		w, err := e.omega(o.filter)
		if err != nil {
			return 0, err
		}
		if r, _ := k.Dims(); r != w.Len() {
			return 0, fmt.Errorf("%d×%d Gram, %d weights: %w", r, r, w.Len(), ErrShapeMismatch)
		}
		return square(mat.Inner(w, k, w)), nil

	case approx.MMDNystrom:
		if o.separate {
			return e.separateDiscrepancy(o.filter, o.singlePower)
		}
		an, err := e.anchors(approx.XY, o.filter)
		if err != nil {
			return 0, err
		}
		kzx, err := e.provider.CrossGram(approx.XY, o.filter)
		if err != nil {
			return 0, err
		}
		w, err := e.omega(o.filter)
		if err != nil {
			return 0, err
		}
		psi, err := chain(w, an.invSqrt, an.u.T(), an.p, kzx)
		if err != nil {
			return 0, err
		}
		return square(mat.Dot(psi, psi) / float64(an.m)), nil

	case approx.MMDQuantization:
		kz, err := e.provider.LandmarkGram(o.filter)
		if err != nil {
			return 0, err
		}
		w, err := e.quantizedOmega(o.filter)
		if err != nil {
			return 0, err
		}
		if r, _ := kz.Dims(); r != w.Len() {
			return 0, fmt.Errorf("%d×%d landmark Gram, %d weights: %w", r, r, w.Len(), ErrShapeMismatch)
		}
		return square(mat.Inner(w, kz, w)), nil

	default:
		return 0, fmt.Errorf("mmd %v: %w", e.opts.mmd, ErrUnsupportedApproximationCombination)
	}
}

// separateDiscrepancy evaluates the per-sample anchor estimator:
//
//	ψx  = m1^-½ Lx½·Uxᵀ·Px·Kxz·mx
//	ψy  = m2^-½ Ly½·Uyᵀ·Py·Kyz·my
//	Cψy = m1^-½ m2⁻¹ Lx½·Uxᵀ·Px·Kz[X,Y]·Py·Uy·Ly·Uyᵀ·Py·Kyz·my
//
// with mx, my the uniform weights of each sample and Kz[X,Y] the X-by-Y
// block of the landmark Gram matrix.
func (e *Engine) separateDiscrepancy(filter string, singlePower bool) (float64, error) {
	ax, err := e.anchors(approx.X, filter)
	if err != nil {
		return 0, err
	}
	ay, err := e.anchors(approx.Y, filter)
	if err != nil {
		return 0, err
	}
	n1, n2, _, err := e.dataSizes(filter)
	if err != nil {
		return 0, err
	}
	kxz, err := e.provider.CrossGram(approx.X, filter)
	if err != nil {
		return 0, err
	}
	kyz, err := e.provider.CrossGram(approx.Y, filter)
	if err != nil {
		return 0, err
	}
	kz, err := e.provider.LandmarkGram(filter)
	if err != nil {
		return 0, err
	}
	if r, c := kz.Dims(); r != ax.m+ay.m || c != r {
		return 0, fmt.Errorf("%d×%d landmark Gram for %d+%d landmarks: %w", r, c, ax.m, ay.m, ErrShapeMismatch)
	}
	kxy := kz.Slice(0, ax.m, ax.m, ax.m+ay.m)

	mx, err := centering.SingleGroupWeightVector(n1)
	if err != nil {
		return 0, err
	}
	my, err := centering.SingleGroupWeightVector(n2)
	if err != nil {
		return 0, err
	}

	psiX, err := chain(mx, ax.invSqrt, ax.u.T(), ax.p, kxz)
	if err != nil {
		return 0, err
	}
	psiX.ScaleVec(1/math.Sqrt(float64(ax.m)), psiX)
	psiY, err := chain(my, ay.invSqrt, ay.u.T(), ay.p, kyz)
	if err != nil {
		return 0, err
	}
	psiY.ScaleVec(1/math.Sqrt(float64(ay.m)), psiY)
	cPsiY, err := chain(my, ax.invSqrt, ax.u.T(), ax.p, kxy, ay.p, ay.u, ay.inv, ay.u.T(), ay.p, kyz)
	if err != nil {
		return 0, err
	}
	cPsiY.ScaleVec(1/(math.Sqrt(float64(ax.m))*float64(ay.m)), cPsiY)

	xx, yy, xy := mat.Dot(psiX, psiX), mat.Dot(psiY, psiY), mat.Dot(psiX, cPsiY)
	if singlePower {
		return xx + yy - 2*xy, nil
	}

	return xx*xx + yy*yy - 2*xy, nil
}

// Discrepancy makes sure the landmarks and anchors the configured
// discrepancy reads are available, then computes it. When the resolved name
// already holds a value it is returned without recomputation.
func (e *Engine) Discrepancy(opts ...MMDOption) (string, float64, error) {
	o := gatherMMDOptions(opts...)
	name := e.mmdName(o)
	if v, ok := e.store.Discrepancy(name); ok {
		e.opts.logger.Debug("mmd already computed", zap.String("name", name))
		return name, v, nil
	}

	switch e.opts.mmd {
	case approx.MMDNystrom:
		if err := e.provider.EnsureLandmarks(o.filter); err != nil {
			return "", 0, kfdaErrorf(opDiscrepant, err)
		}
		samples := []approx.Sample{approx.XY}
		if o.separate {
			samples = []approx.Sample{approx.X, approx.Y}
		}
		for _, s := range samples {
			if err := e.provider.EnsureAnchors(s, e.opts.basis, o.filter); err != nil {
				return "", 0, kfdaErrorf(opDiscrepant, err)
			}
		}
	case approx.MMDQuantization:
		if err := e.provider.EnsureLandmarks(o.filter); err != nil {
			return "", 0, kfdaErrorf(opDiscrepant, err)
		}
	}

	return e.SquaredDiscrepancy(opts...)
}
