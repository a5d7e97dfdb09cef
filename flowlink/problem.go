package flowlink

import (
	"math"

	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
	"github.com/avisser/celltrack/scoring"
)

// BuildProblem turns a candidate graph into a flow problem. Appearance
// and disappearance penalties are waived at the first and last time
// point; a division arc is offered to every position whose best mother
// score clears MinDivisionScore. Link costs are physical distances in
// micrometers plus a volume-difference penalty when both shapes are
// known, halved for links out of a likely mother.
func BuildProblem(graph *linkgraph.Graph, shapes core.ShapeSource, scores *scoring.Collection,
	resolution core.Resolution, weights Weights) (*Problem, error) {
	if err := weights.validate(); err != nil {
		return nil, err
	}
	positions := graph.Positions()
	if len(positions) == 0 {
		return nil, ErrEmptyProblem
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

	problem := &Problem{
		Detections: make([]Detection, 0, len(positions)),
		Weights:    weights,
		byID:       make(map[int]core.Position, len(positions)),
	}
	// IDs 0 and 1 stay reserved for the solver's source and sink.
	idOf := make(map[core.Key]int, len(positions))
	for _, pos := range positions {
		id := len(problem.byID) + 2
		idOf[pos.Key()] = id
		problem.byID[id] = pos

		detection := Detection{ID: id, TimePoint: pos.T}
		if pos.T > first {
			detection.AppearancePenalty = 1
		}
		if pos.T < last {
			detection.DisappearancePenalty = 1
		}
		if best, ok := scores.BestOfMother(pos); ok && best.Score.Total() > MinDivisionScore {
			detection.MayDivide = true
			detection.DivisionScore = best.Score.Total()
		}
		problem.Detections = append(problem.Detections, detection)
	}

	for _, edge := range graph.Edges() {
		past := graph.PositionAt(edge.Past)
		future := graph.PositionAt(edge.Future)

		cost := past.DistanceUm(future, resolution)
		pastShape, futureShape := shapes.Shape(past), shapes.Shape(future)
		if !pastShape.IsUnknown() && !futureShape.IsUnknown() {
			cost += math.Cbrt(math.Abs(pastShape.Volume() - futureShape.Volume()))
		}
		if best, ok := scores.BestOfMother(past); ok && best.Score.Total() > MinDivisionScore {
			// Daughters end up further from their mother than a
			// regular displacement; do not punish likely divisions.
			cost /= 2
		}
		problem.Links = append(problem.Links, LinkHypothesis{
			Src:  idOf[past.Key()],
			Dest: idOf[future.Key()],
			Cost: cost,
		})
	}
	return problem, nil
}
