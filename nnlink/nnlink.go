package nnlink

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
)

// edgeRec is one candidate edge produced by a pair worker. Workers
// never touch the shared graph; batches are merged afterwards.
type edgeRec struct {
	from, to  core.Position
	preferred bool
}

// Link builds the candidate graph over every consecutive time-point
// pair of the collection. Every position becomes a node, including
// isolated ones; every position with at least one neighbor in the
// previous time point receives candidate edges, the closest marked
// preferred.
//
// Complexity: O(N log N) per time point for tree build and queries.
func Link(ctx context.Context, positions *core.PositionCollection, opts *Options) (*linkgraph.Graph, error) {
	o := opts.withDefaults()
	if o.Tolerance < 1 {
		return nil, ErrBadTolerance
	}

	graph := linkgraph.New()
	for _, pos := range positions.All() {
		if _, err := graph.AddPosition(pos); err != nil {
			return nil, err
		}
	}

	timePoints := positions.TimePoints()
	if len(timePoints) < 2 {
		return graph, nil
	}

	// 1) Fan pairs out over workers; each writes its own batch.
	batches := make([][]edgeRec, len(timePoints)-1)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(o.Workers)
	for i := 0; i < len(timePoints)-1; i++ {
		i := i
		previous := positions.OfTimePoint(timePoints[i])
		current := positions.OfTimePoint(timePoints[i+1])
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			batches[i] = linkPair(previous, current, o)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// 2) Merge the disjoint batches into the shared graph.
	for _, batch := range batches {
		for _, rec := range batch {
			if err := graph.AddEdge(rec.from, rec.to, rec.preferred); err != nil {
				return nil, err
			}
		}
	}

	o.Logger.Info().
		Int("positions", graph.NodeCount()).
		Int("candidates", graph.EdgeCount()).
		Float64("tolerance", o.Tolerance).
		Msg("nearest-neighbor candidate graph built")
	return graph, nil
}

// linkPair produces the candidate edges between one pair of consecutive
// time points.
func linkPair(previous, current []core.Position, o Options) []edgeRec {
	var batch []edgeRec
	previousTree := newSearchTree(previous, o.ZFactor)
	currentTree := newSearchTree(current, o.ZFactor)

	// Backward pass: each position claims candidates in the previous
	// time point, nearest first.
	for _, pos := range current {
		preferred := true
		for _, hit := range previousTree.nearestWithTolerance(pos, o.ZFactor, o.Tolerance, o.MaxCandidates) {
			batch = append(batch, edgeRec{from: pos, to: hit.pos, preferred: preferred})
			preferred = false
		}
	}

	// Forward safety net: candidates the backward pass may have missed,
	// never preferred. Merging keeps existing preferred flags intact.
	for _, pos := range previous {
		for _, hit := range currentTree.nearestWithTolerance(pos, o.ZFactor, o.Tolerance, o.MaxCandidates) {
			batch = append(batch, edgeRec{from: pos, to: hit.pos, preferred: false})
		}
	}
	return batch
}
