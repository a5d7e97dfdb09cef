package flowlink

import (
	"context"

	"github.com/google/uuid"

	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
	"github.com/avisser/celltrack/scoring"
)

// Run links the candidate graph globally: it builds the flow problem,
// solves it and translates the optimal assignment back into a link
// graph. Only positions and links that carry flow survive; everything
// in the result is definitionally selected, so all edges come back
// preferred.
func Run(ctx context.Context, graph *linkgraph.Graph, shapes core.ShapeSource, scores *scoring.Collection,
	resolution core.Resolution, opts *Options) (*linkgraph.Graph, error) {
	o := opts.withDefaults()
	logger := o.Logger.With().Stringer("solve", uuid.New()).Logger()

	problem, err := BuildProblem(graph, shapes, scores, resolution, *o.Weights)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("detections", len(problem.Detections)).
		Int("links", len(problem.Links)).
		Msg("flow problem built")

	assignment, err := o.Solver.Solve(ctx, problem)
	if err != nil {
		logger.Error().Err(err).Msg("flow solve failed")
		return nil, err
	}

	out := linkgraph.New()
	for _, id := range assignment.UsedDetections {
		pos, ok := problem.Position(id)
		if !ok {
			continue
		}
		if _, err := out.AddPosition(pos); err != nil {
			return nil, err
		}
	}
	for _, link := range assignment.UsedLinks {
		past, okPast := problem.Position(link[0])
		future, okFuture := problem.Position(link[1])
		if !okPast || !okFuture {
			continue
		}
		if err := out.AddEdge(past, future, true); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Int("positions", out.NodeCount()).
		Int("links", out.EdgeCount()).
		Int("divisions", len(assignment.Divisions)).
		Msg("flow assignment translated")
	return out, nil
}
