package consistency

import "github.com/rs/zerolog"

// Defaults applied by Annotate when the corresponding option is zero.
const (
	// DefaultMinAgeForDivision is the minimal number of time points
	// between two divisions of the same cell.
	DefaultMinAgeForDivision = 5

	// DefaultMaxDistanceUm is the largest plausible displacement in
	// micrometers between two consecutive time points.
	DefaultMaxDistanceUm = 10.0

	// DefaultShrinkRatio is the parent/child volume ratio above which
	// a cell shrunk suspiciously.
	DefaultShrinkRatio = 3.0
)

// Options configures the annotation thresholds. The zero value (or a
// nil pointer) selects the defaults.
type Options struct {
	MinAgeForDivision int
	MaxDistanceUm     float64
	ShrinkRatio       float64

	// Logger receives a summary per run. The zero value is silent.
	Logger zerolog.Logger
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.MinAgeForDivision == 0 {
		out.MinAgeForDivision = DefaultMinAgeForDivision
	}
	if out.MaxDistanceUm == 0 {
		out.MaxDistanceUm = DefaultMaxDistanceUm
	}
	if out.ShrinkRatio == 0 {
		out.ShrinkRatio = DefaultShrinkRatio
	}
	return out
}
