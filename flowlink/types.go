package flowlink

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/avisser/celltrack/core"
)

var (
	// ErrEmptyProblem is returned when the candidate graph holds no
	// positions to link.
	ErrEmptyProblem = errors.New("flowlink: empty problem")

	// ErrBadWeights is returned when a weight is negative.
	ErrBadWeights = errors.New("flowlink: weights must not be negative")

	// ErrSolveAborted signals that the solve was cancelled or timed
	// out before producing a result. No partial assignment is ever
	// returned. Use errors.As with *SolveError for the problem
	// statistics.
	ErrSolveAborted = errors.New("flowlink: solve aborted")
)

// SolveError carries the problem statistics of a failed solve, so a
// timeout on a huge experiment can be diagnosed without re-building
// the problem.
type SolveError struct {
	Nodes int // network nodes
	Arcs  int // network arcs
	Err   error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%v (nodes=%d arcs=%d): %v", ErrSolveAborted, e.Nodes, e.Arcs, e.Err)
}

func (e *SolveError) Unwrap() error { return ErrSolveAborted }

// MinDivisionScore is the mother score total above which a position is
// offered a division arc and its outgoing links count as likely
// mother-daughter pairs.
const MinDivisionScore = 0.05

// Weights are the externally tunable cost multipliers of the flow
// network. Higher Link makes links more expensive; higher Detection
// makes omitting a real detection more expensive; higher Division
// makes divisions cheaper to accept; higher Appearance and
// Disappearance penalize tracks starting or ending mid-experiment.
type Weights struct {
	Link          float64
	Detection     float64
	Division      float64
	Appearance    float64
	Disappearance float64
}

// DefaultWeights returns the multipliers that work well for organoid
// recordings.
func DefaultWeights() Weights {
	return Weights{
		Link:          10,
		Detection:     150,
		Division:      30,
		Appearance:    150,
		Disappearance: 100,
	}
}

func (w Weights) validate() error {
	if w.Link < 0 || w.Detection < 0 || w.Division < 0 || w.Appearance < 0 || w.Disappearance < 0 {
		return ErrBadWeights
	}
	return nil
}

// Detection is one segmentation hypothesis of the flow problem.
type Detection struct {
	// ID is the stable integer handle of the position for this solve.
	// IDs start at 2; 0 and 1 are reserved for the source and sink.
	ID int

	TimePoint core.TimePoint

	// AppearancePenalty and DisappearancePenalty are 1 except at the
	// experiment boundary, where starting or ending a track is free.
	AppearancePenalty    float64
	DisappearancePenalty float64

	// MayDivide is set when the best mother score of the position
	// clears MinDivisionScore; DivisionScore then holds that total.
	MayDivide     bool
	DivisionScore float64
}

// LinkHypothesis is one candidate link of the flow problem, past
// position first.
type LinkHypothesis struct {
	Src, Dest int
	Cost      float64
}

// Problem is a fully built flow problem: the segmentation and linking
// hypotheses plus the weight vector, with a bijective position-ID map
// valid for the duration of one solve.
type Problem struct {
	Detections []Detection
	Links      []LinkHypothesis
	Weights    Weights

	byID map[int]core.Position
}

// Position resolves an ID from this problem back to its position.
func (p *Problem) Position(id int) (core.Position, bool) {
	pos, ok := p.byID[id]
	return pos, ok
}

// Assignment is the integral optimal flow, translated to hypothesis
// level: which detections carry flow, which links carry flow, and
// which used detections divide, i.e. feed two used outgoing links.
type Assignment struct {
	UsedDetections []int
	UsedLinks      [][2]int
	Divisions      []int
}

// Solver computes an optimal assignment for a problem. Cancellation
// via ctx must abandon the whole solve and report ErrSolveAborted; a
// solver never returns partial results.
type Solver interface {
	Solve(ctx context.Context, problem *Problem) (*Assignment, error)
}

// Options configures Run.
type Options struct {
	// Weights override DefaultWeights when any field is set.
	Weights *Weights

	// Solver overrides the built-in successive-shortest-path solver.
	Solver Solver

	// Logger receives solve statistics. The zero value is silent.
	Logger zerolog.Logger
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Weights == nil {
		w := DefaultWeights()
		out.Weights = &w
	}
	if out.Solver == nil {
		out.Solver = NewSSPSolver()
	}
	return out
}
