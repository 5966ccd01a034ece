// SPDX-License-Identifier: MIT

package centering

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ContrastVector returns ω = [−1/n1 (n1 times), +1/n2 (n2 times)], so that
// Kω is the embedding of mean(Y) − mean(X). The blocks sum to −1 and +1.
func ContrastVector(n1, n2 int) (*mat.VecDense, error) {
	if err := validateSizes(n1, n2); err != nil {
		return nil, centeringErrorf(opContrast, err)
	}
	w := make([]float64, n1+n2)
	for i := 0; i < n1; i++ {
		w[i] = -1 / float64(n1)
	}
	for i := n1; i < n1+n2; i++ {
		w[i] = 1 / float64(n2)
	}

	return mat.NewVecDense(n1+n2, w), nil
}

// QuantizedContrastVector is ContrastVector over landmarks: landmark j of
// group i carries cᵢⱼ/nᵢ observations, with nᵢ = Σⱼ cᵢⱼ. Signs and block
// masses match ContrastVector. Empty clusters are allowed; empty groups are not.
func QuantizedContrastVector(c1, c2 []int) (*mat.VecDense, error) {
	if err := validateSizes(len(c1), len(c2)); err != nil {
		return nil, centeringErrorf(opQuantizedOmega, err)
	}
	w1, err := clusterMass(c1)
	if err != nil {
		return nil, centeringErrorf(opQuantizedOmega, err)
	}
	w2, err := clusterMass(c2)
	if err != nil {
		return nil, centeringErrorf(opQuantizedOmega, err)
	}
	floats.Scale(-1, w1)

	return mat.NewVecDense(len(w1)+len(w2), append(w1, w2...)), nil
}

// clusterMass normalises counts to sum to one.
func clusterMass(counts []int) ([]float64, error) {
	w := make([]float64, len(counts))
	for j, c := range counts {
		if c < 0 {
			return nil, fmt.Errorf("count[%d]=%d: %w", j, c, ErrInvalidSize)
		}
		w[j] = float64(c)
	}
	total := floats.Sum(w)
	if total == 0 {
		return nil, fmt.Errorf("all clusters empty: %w", ErrInvalidSize)
	}
	floats.Scale(1/total, w)

	return w, nil
}

// SingleGroupWeightVector returns the uniform vector 1/n of length n.
func SingleGroupWeightVector(n int) (*mat.VecDense, error) {
	if err := validateSizes(n); err != nil {
		return nil, centeringErrorf(opSingleGroupOmega, err)
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}

	return mat.NewVecDense(n, w), nil
}
