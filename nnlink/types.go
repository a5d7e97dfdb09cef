package nnlink

import (
	"errors"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/avisser/celltrack/core"
)

// ErrBadTolerance is returned when the tolerance is below 1. A value
// below 1 would discard even the nearest neighbor, which is always a
// caller mistake.
var ErrBadTolerance = errors.New("nnlink: tolerance must be at least 1")

// Defaults applied by Link when the corresponding option is zero.
const (
	DefaultTolerance     = 1.0
	DefaultMaxCandidates = 5

	// Defaults for the drift refinement: neighborhood radius in pixels.
	DefaultFlowRadiusXY = 50.0
	DefaultFlowRadiusZ  = 2.0
)

// Options configures candidate graph construction. The zero value (or a
// nil pointer) selects pure nearest-neighbor linking with the default
// z anisotropy factor.
type Options struct {
	// Tolerance keeps candidates within sqrt(Tolerance²) of the nearest
	// squared distance. Must be >= 1; 0 means DefaultTolerance.
	Tolerance float64

	// ZFactor weights the z axis in squared pixel distances.
	// 0 means core.DefaultZFactor.
	ZFactor float64

	// MaxCandidates caps the candidates kept per query. 0 means
	// DefaultMaxCandidates.
	MaxCandidates int

	// Workers bounds the number of concurrently processed time-point
	// pairs. 0 means GOMAXPROCS.
	Workers int

	// Logger receives progress output. The zero value is silent.
	Logger zerolog.Logger
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Tolerance == 0 {
		out.Tolerance = DefaultTolerance
	}
	if out.ZFactor == 0 {
		out.ZFactor = core.DefaultZFactor
	}
	if out.MaxCandidates == 0 {
		out.MaxCandidates = DefaultMaxCandidates
	}
	if out.Workers == 0 {
		out.Workers = runtime.GOMAXPROCS(0)
	}
	return out
}

// FlowOptions configures RefineWithFlow.
type FlowOptions struct {
	// RadiusXY and RadiusZ bound, in pixels, the neighborhood whose
	// established links contribute to the local flow estimate.
	// 0 means the package defaults.
	RadiusXY float64
	RadiusZ  float64

	// ZFactor weights the z axis when re-picking the nearest candidate.
	// 0 means core.DefaultZFactor.
	ZFactor float64

	// Logger receives progress output. The zero value is silent.
	Logger zerolog.Logger
}

func (o *FlowOptions) withDefaults() FlowOptions {
	var out FlowOptions
	if o != nil {
		out = *o
	}
	if out.RadiusXY == 0 {
		out.RadiusXY = DefaultFlowRadiusXY
	}
	if out.RadiusZ == 0 {
		out.RadiusZ = DefaultFlowRadiusZ
	}
	if out.ZFactor == 0 {
		out.ZFactor = core.DefaultZFactor
	}
	return out
}
