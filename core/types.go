package core

import (
	"errors"
	"math"
)

// Sentinel errors for the core data model.
var (
	// ErrNoTimePoint indicates a position without a time point was passed
	// to an operation that requires one.
	ErrNoTimePoint = errors.New("core: position has no time point")

	// ErrTimePointMismatch indicates an attempt to reassign the time point
	// of a position that already carries a different one.
	ErrTimePointMismatch = errors.New("core: position time point cannot be reassigned")

	// ErrBadResolution indicates a resolution with a non-positive pixel
	// size or time interval.
	ErrBadResolution = errors.New("core: resolution values must be positive")

	// ErrSameTimePoint indicates two positions share a time point where
	// different time points were required (e.g. interpolation endpoints).
	ErrSameTimePoint = errors.New("core: positions share the same time point")
)

// TimePoint is the index of a single frame in a time-lapse sequence.
type TimePoint int

// TimePointUnset marks a position whose time point has not been assigned yet.
const TimePointUnset TimePoint = math.MinInt32

// DefaultZFactor is the anisotropy multiplier applied to the z axis in
// squared pixel distances. Confocal stacks typically have a much coarser
// z resolution than xy, so a z step counts for more.
const DefaultZFactor = 3.0

// coordinateTolerance is the maximum per-axis difference (in pixels) for
// two positions to still be considered the same detection.
const coordinateTolerance = 0.01
