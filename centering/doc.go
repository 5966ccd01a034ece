// SPDX-License-Identifier: MIT

// Package centering builds the centering projectors and contrast weight
// vectors that the kernel statistics are assembled from.
//
// Under the kernel trick every quantity of interest is either K·ω (a weight
// vector ω applied to a Gram matrix) or P·K·P (a Gram matrix sandwiched by a
// centering matrix P). This package owns the P's and ω's:
//
//   - GroupAverageBlock / BlockDiagonalGroupAverage: the "average inside each
//     group" operators J/n, block by block.
//   - EffectCenteringMatrix: I minus (or plus) aligned group averages for one
//     or several metadata columns, e.g. "#-celltype_+patient" gives
//     I − J_celltype + J_patient.
//   - WithinGroupBiCentering, QuantizedBiCentering, SingleCentering: the
//     projectors whose sandwich P·K·P shares its spectrum with the within-group
//     covariance operator.
//   - LandmarkCenteringMatrix: the same, in landmark space, for anchor basis
//     K, S or W.
//   - ContrastVector, QuantizedContrastVector, SingleGroupWeightVector: the
//     mean-difference and mean directions.
//
// All returned matrices are freshly allocated gonum values; callers own them.
//
// Errors:
//   - ErrInvalidSize on a non-positive group size.
//   - ErrShapeMismatch when a metadata column or weight vector disagrees with
//     the declared size.
//   - ErrMissingMetadataColumn when an effect names an absent column.
//   - ErrInvalidEffectSpec for malformed effect syntax.
//   - ErrUnsupportedBasis / approx.ErrUnknownAnchorBasis for landmark centering.
package centering
