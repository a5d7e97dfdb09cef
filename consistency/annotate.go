package consistency

import (
	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
	"github.com/avisser/celltrack/scoring"
)

// Annotate recomputes the anomaly tag of every position in the graph.
// Future-side and past-side rules are evaluated independently; when
// both sides produce a tag, the more severe one is kept, with ties
// going to the future side. Missing shapes or scores make the specific
// check skip, never fail. Review tags left by the resolver survive on
// nodes no rule fires for.
func Annotate(graph *linkgraph.Graph, shapes core.ShapeSource, scores *scoring.Collection,
	resolution core.Resolution, opts *Options) error {
	o := opts.withDefaults()

	positions := graph.Positions()
	if len(positions) == 0 {
		return nil
	}
	first, last := positions[0].T, positions[0].T
	for _, pos := range positions[1:] {
		if pos.T < first {
			first = pos.T
		}
		if pos.T > last {
			last = pos.T
		}
	}

	tagged := 0
	for _, pos := range positions {
		futureTag := futureSideTag(graph, scores, pos, last, o)
		pastTag := pastSideTag(graph, shapes, pos, first, resolution, o)

		tag := futureTag
		if pastTag.Severity() > futureTag.Severity() {
			tag = pastTag
		}
		if tag == linkgraph.TagNone {
			if current := graph.ErrorTagOf(pos); current == linkgraph.TagUncertainMother ||
				current == linkgraph.TagWrongDaughters {
				continue // keep the resolver's review tag
			}
			graph.ClearErrorTag(pos)
			continue
		}
		if err := graph.SetErrorTag(pos, tag); err != nil {
			return err
		}
		tagged++
	}
	o.Logger.Info().
		Int("positions", len(positions)).
		Int("tagged", tagged).
		Msg("consistency annotated")
	return nil
}

func futureSideTag(graph *linkgraph.Graph, scores *scoring.Collection, pos core.Position,
	last core.TimePoint, o Options) linkgraph.ErrorTag {
	futures := graph.Futures(pos)
	switch {
	case len(futures) > 2:
		return linkgraph.TagTooManyDaughters
	case len(futures) == 0:
		if pos.T < last && graph.EndMarkOf(pos) == linkgraph.EndNone {
			return linkgraph.TagNoFuturePosition
		}
	case len(futures) == 2:
		if scores.HasScores() {
			family, err := scoring.NewFamily(pos, futures[0], futures[1])
			if err == nil {
				score, ok := scores.OfFamily(family)
				if !ok || score.IsUnlikelyMother() {
					return linkgraph.TagLowMotherScore
				}
			}
		}
		if age, known := divisionAge(graph, pos); known && age < o.MinAgeForDivision {
			return linkgraph.TagYoungMother
		}
	}
	return linkgraph.TagNone
}

func pastSideTag(graph *linkgraph.Graph, shapes core.ShapeSource, pos core.Position,
	first core.TimePoint, resolution core.Resolution, o Options) linkgraph.ErrorTag {
	pasts := graph.Pasts(pos)
	switch {
	case len(pasts) == 0:
		if pos.T > first && graph.StartMarkOf(pos) == linkgraph.StartNone {
			return linkgraph.TagNoPastPosition
		}
	case len(pasts) >= 2:
		return linkgraph.TagCellMerge
	default:
		parent := pasts[0]

		shape := shapes.Shape(pos)
		if !shape.IsUnknown() && len(graph.Futures(parent)) == 1 {
			parentShape := shapes.Shape(parent)
			// Daughters halve in volume, so only non-dividing parents
			// are held to the shrink rule.
			if !parentShape.IsUnknown() && parentShape.Volume()/(shape.Volume()+0.0001) > o.ShrinkRatio {
				return linkgraph.TagShrunkALot
			}
		}

		if parent.DistanceUm(pos, resolution) > o.MaxDistanceUm {
			// A dying cell may be shed fast; that movement is real.
			if end := graph.EndMarkOf(pos); end != linkgraph.EndDead && end != linkgraph.EndShed {
				return linkgraph.TagMovedTooFast
			}
		}
	}
	return linkgraph.TagNone
}

// divisionAge walks the preferred past links of pos back to the most
// recent division. The age is 0 for an immediate daughter. False when
// the walk reaches an appearance or an ambiguous past instead of a
// division.
func divisionAge(graph *linkgraph.Graph, pos core.Position) (int, bool) {
	age := 0
	current := pos
	for {
		pasts := graph.PreferredPasts(current)
		if len(pasts) != 1 {
			return 0, false
		}
		parent := pasts[0]
		if len(graph.PreferredFutures(parent)) >= 2 {
			return age, true
		}
		current = parent
		age++
	}
}
