// SPDX-License-Identifier: MIT

// Package results is the session-owned store for named statistic runs.
//
// It keeps three tables, named after the data frames they replace:
//
//	df_kfdat                cumulative truncated statistic per run
//	df_kfdat_contributions  per-direction contributions per run
//	dict_mmd                squared discrepancy per run
//
// Writing an existing name overwrites it and logs a warning; nothing is ever
// refused. Every write is stamped with a fresh run ID so downstream consumers
// can tell two runs under the same name apart. Clear resets the session.
package results
