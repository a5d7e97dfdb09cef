package resolver

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/avisser/celltrack/core"
)

// ErrBadPasses is returned when the number of passes is negative.
var ErrBadPasses = errors.New("resolver: passes must not be negative")

// Defaults applied by Resolve when the corresponding option is zero.
const (
	DefaultPasses = 2

	// DefaultScoreMargin is the score difference below which two
	// competing mothers are considered indistinguishable.
	DefaultScoreMargin = 2.0

	// DefaultSwapImprovement is the minimal score ratio a new daughter
	// pair must reach over the current pair before it replaces it.
	DefaultSwapImprovement = 4.0 / 3.0
)

// Options configures the repair passes. The zero value (or a nil
// pointer) selects the defaults.
type Options struct {
	// Passes is the number of repair passes. 0 means DefaultPasses.
	// Two passes settle nearly all graphs; later passes see the
	// repairs of earlier ones.
	Passes int

	// ScoreMargin flags competing mothers as uncertain when their
	// score totals differ by at most this much. 0 means
	// DefaultScoreMargin.
	ScoreMargin float64

	// SwapImprovement is the minimal newScore/currentScore ratio for a
	// daughter swap. 0 means DefaultSwapImprovement.
	SwapImprovement float64

	// ZFactor weights the z axis in nearest-candidate searches.
	// 0 means core.DefaultZFactor.
	ZFactor float64

	// Logger receives repair diagnostics. The zero value is silent.
	Logger zerolog.Logger
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Passes == 0 {
		out.Passes = DefaultPasses
	}
	if out.ScoreMargin == 0 {
		out.ScoreMargin = DefaultScoreMargin
	}
	if out.SwapImprovement == 0 {
		out.SwapImprovement = DefaultSwapImprovement
	}
	if out.ZFactor == 0 {
		out.ZFactor = core.DefaultZFactor
	}
	return out
}
