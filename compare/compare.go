package compare

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/rs/zerolog"

	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
)

// ErrNoLinks is returned when either graph has no links at all;
// comparing an empty link set says nothing.
var ErrNoLinks = errors.New("compare: graph has no links")

// DefaultMaxDistanceUm is the default movement agreement threshold.
const DefaultMaxDistanceUm = 5.0

// Options configures CompareLinks. The zero value (or a nil pointer)
// selects the defaults.
type Options struct {
	// MaxDistanceUm is the largest distance in micrometers at which a
	// ground-truth position and a candidate position still count as
	// the same cell. 0 means DefaultMaxDistanceUm.
	MaxDistanceUm float64

	// StartRadiusUm bounds the lineage start alignment. 0 means
	// unlimited: every ground-truth start claims its nearest unclaimed
	// candidate start, and drift is then reported as movement
	// disagreement instead of as a missed lineage.
	StartRadiusUm float64

	// Logger receives a summary per comparison. The zero value is
	// silent.
	Logger zerolog.Logger
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.MaxDistanceUm == 0 {
		out.MaxDistanceUm = DefaultMaxDistanceUm
	}
	return out
}

// CompareLinks walks the lineages of both graphs in lock-step and
// returns the structured diff. groundTruth is the reference; candidate
// is the link set under evaluation. Both graphs must describe the same
// recording.
func CompareLinks(groundTruth, candidate *linkgraph.Graph, resolution core.Resolution, opts *Options) (*Report, error) {
	if groundTruth.EdgeCount() == 0 || candidate.EdgeCount() == 0 {
		return nil, ErrNoLinks
	}
	o := opts.withDefaults()
	report := NewReport("Links comparison")

	c := &comparing{
		groundTruth: groundTruth,
		candidate:   candidate,
		resolution:  resolution,
		o:           o,
	}

	// 1) Align lineage starts greedily: each ground-truth start claims
	//    at most one candidate start, nearest first.
	candidateStarts := appearedPositions(candidate)
	claimed := roaring.New()
	aligned := 0
	for _, start := range appearedPositions(groundTruth) {
		match, ok := c.claimClosestStart(candidateStarts, claimed, start)
		if !ok {
			report.Add(LineageStartFalseNegatives, start, "")
			continue
		}
		report.Add(LineageStartTruePositives, start, "")
		aligned++

		// 2) Walk the aligned lineage pair.
		c.compareLineages(report, start, match)
	}

	o.Logger.Info().
		Int("lineages", aligned).
		Int("categories", len(report.Categories())).
		Msg("link graphs compared")
	return report, nil
}

type comparing struct {
	groundTruth *linkgraph.Graph
	candidate   *linkgraph.Graph
	resolution  core.Resolution
	o           Options
}

func (c *comparing) claimClosestStart(starts []core.Position, claimed *roaring.Bitmap,
	search core.Position) (core.Position, bool) {
	var closest core.Position
	closestDistance := math.Inf(1)
	found := false
	for _, start := range starts {
		if start.T != search.T {
			continue
		}
		id, ok := c.candidate.IDOf(start)
		if !ok || claimed.Contains(uint32(id)) {
			continue
		}
		distance := search.DistanceUm(start, c.resolution)
		if c.o.StartRadiusUm > 0 && distance >= c.o.StartRadiusUm {
			continue
		}
		if distance < closestDistance {
			closest = start
			closestDistance = distance
			found = true
		}
	}
	if !found {
		return core.Position{}, false
	}
	id, _ := c.candidate.IDOf(closest)
	claimed.Add(uint32(id))
	return closest, true
}

// lineagePair is one pending walk position in both graphs.
type lineagePair struct {
	gt   core.Position
	cand core.Position
}

// compareLineages walks one aligned lineage pair, division branches
// included, with an explicit work stack. Deep lineages must not
// recurse.
func (c *comparing) compareLineages(report *Report, gt, cand core.Position) {
	stack := []lineagePair{{gt: gt, cand: cand}}
	for len(stack) > 0 {
		pair := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.walkPair(report, pair, func(next lineagePair) {
			stack = append(stack, next)
		})
	}
}

func (c *comparing) walkPair(report *Report, pair lineagePair, push func(lineagePair)) {
	gt, cand := pair.gt, pair.cand
	for {
		nextGT := c.groundTruth.Futures(gt)
		nextCand := c.candidate.Futures(cand)

		if len(nextGT) == 0 {
			if len(nextCand) != 0 {
				report.Add(LineageEndFalseNegatives, gt, "")
			} else {
				report.Add(LineageEndTruePositives, gt, "")
			}
			return
		}

		if len(nextGT) > 1 {
			if len(nextCand) != 2 {
				report.Add(DivisionFalseNegatives, gt, "")
				return
			}
			report.Add(DivisionTruePositives, gt, "")
			// Pair daughters by distance and follow both branches.
			straight := nextGT[0].DistanceUm(nextCand[0], c.resolution)
			crossed := nextGT[0].DistanceUm(nextCand[1], c.resolution)
			if straight < crossed {
				push(lineagePair{gt: nextGT[0], cand: nextCand[0]})
				push(lineagePair{gt: nextGT[1], cand: nextCand[1]})
			} else {
				push(lineagePair{gt: nextGT[0], cand: nextCand[1]})
				push(lineagePair{gt: nextGT[1], cand: nextCand[0]})
			}
			return
		}

		if len(nextCand) > 1 {
			report.Add(DivisionFalsePositives, gt,
				fmt.Sprintf("moves to %v but was detected as dividing", nextGT[0]))
			return
		}
		if len(nextCand) == 0 {
			report.Add(LineageEndFalsePositives, gt, "")
			return
		}

		gt, cand = nextGT[0], nextCand[0]

		// The candidate data may skip time points; catch the ground
		// truth up before measuring distances.
		for cand.T > gt.T {
			skipped := c.groundTruth.Futures(gt)
			if len(skipped) == 0 {
				report.Add(LineageEndFalseNegatives, gt, "")
				return
			}
			if len(skipped) > 1 {
				report.Add(DivisionFalseNegatives, gt, "")
				return
			}
			gt = skipped[0]
		}

		if distance := gt.DistanceUm(cand, c.resolution); distance > c.o.MaxDistanceUm {
			report.Add(MovementDisagreement, gt,
				fmt.Sprintf("too far from detected position %v, difference is %.1f um", cand, distance))
			return
		}
		report.Add(MovementTruePositives, gt, "")
	}
}

// appearedPositions returns the positions without any past link, in
// insertion order.
func appearedPositions(graph *linkgraph.Graph) []core.Position {
	var out []core.Position
	for _, pos := range graph.Positions() {
		if len(graph.Pasts(pos)) == 0 {
			out = append(out, pos)
		}
	}
	return out
}
