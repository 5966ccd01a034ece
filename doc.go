// SPDX-License-Identifier: MIT

// Package ktest is a kernel two-sample test toolkit: the truncated kernel
// Fisher discriminant statistic (kfdat) and the kernel mean discrepancy
// (MMD), with exact, Nyström and quantized approximations.
//
// Layout:
//
//	approx/     closed variant sets: covariance, discrepancy, anchor basis, sample
//	partition/  group sizes and block-alignment permutations
//	centering/  centering matrices, effect centering, contrast vectors
//	spectral/   ordered eigen-decompositions, solvers, write-once cache
//	results/    named result tables (df_kfdat, df_kfdat_contributions, dict_mmd)
//	kernel/     Gaussian and linear kernels, median bandwidth heuristic
//	kfda/       statistic and discrepancy engines over a Provider
//	session/    in-memory Provider: observations, landmarks, filters, spectra
//
// Quick start:
//
//	s, _ := session.New(x, y)                       // rows are observations
//	e, _ := s.Engine(kfda.WithCovariance(approx.CovNystrom1))
//	name, _ := e.Run(0, "", "")                     // all directions
//	cum, _ := s.Store().Statistic(name)             // kfdat_t, t = 1…T
//
// Every matrix is a gonum *mat.Dense; every failure is a wrapped package
// sentinel matched with errors.Is.
package ktest
