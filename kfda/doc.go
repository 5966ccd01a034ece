// SPDX-License-Identifier: MIT

// Package kfda assembles the truncated kernel Fisher discriminant statistic
// (kfdat) and the squared kernel mean discrepancy (MMD) from Gram blocks,
// centering matrices, contrast vectors and cached spectra.
//
// Notation (n = n1+n2 observations, m = m1+m2 landmarks, r anchors):
//
//	K    n×n Gram matrix           Kz   m×m landmark Gram matrix
//	Kzx  m×n landmark×data block   ω    contrast vector (centering.ContrastVector)
//	Pbi  within-group bi-centering (quantized m×m variant under CovQuantization)
//	Pi   landmark centering for the anchor basis (K, S or W)
//	Uz   anchor eigenvectors        Lz = diag(λ⁻¹), Lz½ = diag(λ^-½)
//	A    diag(√cluster size)
//
// The statistic with eigenpairs (λ_p, v_p) of the active covariance spectrum:
//
//	c_p    = n1·n2 / (n^e · λ_p^e) · (v_pᵀ·pkm)²
//	kfdat_t = Σ_{p≤t} c_p
//
// with e = 2 for standard, nystrom1 and quantization, 3 for nystrom2 and 1 for
// nystrom3. pkm (ProjectedWeightVector) is P·K·ω or its landmark substitute;
// each (covariance, discrepancy) pair is one explicit branch.
//
// Spectra are never computed here. The Provider populates the spectral.Cache
// (EnsureSpectrum/EnsureAnchors) and the engine reads it, validating every
// eigenvalue it inverts against the configured floor (ErrNumericDegeneracy).
//
// Results go to a results.Store under a run name: TruncatedStatistic writes
// df_kfdat and df_kfdat_contributions, ReorderedStatistic writes
// df_kfdat with an ordering suffix, SquaredDiscrepancy writes dict_mmd.
//
// An Engine is not safe for concurrent reconfiguration but its methods may
// run concurrently; the cache and store are synchronised.
package kfda
