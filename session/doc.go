// SPDX-License-Identifier: MIT

// Package session is an in-memory two-sample analysis: it owns the
// observations, the kernel, optional landmarks and outlier filters, the
// spectral cache and the result store, and implements kfda.Provider on top
// of them.
//
// Observations are the rows of two *mat.Dense (X then Y). Every block a
// filter produces is restricted to the observations the filter keeps, in
// their original order.
//
// Landmarks:
//   - WithLandmarks supplies landmark rows per sample and the landmark each
//     observation is assigned to (used by quantization).
//   - Without them every kept observation is its own landmark, which makes
//     every Nyström term exact.
//
// Spectra (all normalised so that the kfda branches read them directly):
//
//	anchors(S)     eig((1/m_S) Pi·Kz_S·Pi)
//	standard       eig((1/n) Pbi·K·Pbi)
//	nystrom1       eig((1/n) Pbi·K̃·Pbi),  K̃ = (1/m²) Kzxᵀ·Pi·Uz·Lz·Uzᵀ·Pi·Kzx
//	nystrom2/3     eig((1/n) Ψ·Pbi·Ψᵀ),    Ψ = (1/m) Lz½·Uzᵀ·Pi·Kzx
//	quantization   eig((1/n) Pbi_q·A·Kz·A·Pbi_q)
//
// Each spectrum is computed once per key through spectral.Cache and is
// shared by every engine built from the session.
//
// Effect centering (WithEffectCentering) replaces the observation embeddings
// by P_e·φ, so the data Gram matrix becomes P_e·K·P_e and the landmark cross
// block Kzx·P_e. Per-sample blocks are left uncentered.
package session
