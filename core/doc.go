// Package core defines the physical data model shared by every linking
// component: time points, detected positions, the image resolution used
// for pixel→micrometer conversion, and the shape contract fulfilled by
// an external detection source.
//
// All types in this package are immutable values. A Position never
// changes its coordinates or time point after construction; conversions
// and arithmetic return new values.
//
// Two distance metrics are provided:
//
//   - Position.DistanceSquaredPixels - fast, anisotropy-weighted squared
//     pixel distance. Used for candidate search, where only relative
//     ordering matters and sqrt can be avoided.
//   - Position.DistanceUm - physical distance in micrometers via a
//     Resolution. Used for scoring and validation thresholds.
//
// Errors:
//
//	ErrNoTimePoint       - operation requires a position with a time point.
//	ErrTimePointMismatch - attempt to reassign a position's time point.
//	ErrBadResolution     - non-positive pixel size or time interval.
package core
