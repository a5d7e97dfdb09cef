package nnlink

import (
	"math"

	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
)

// RefineWithFlow re-picks every preferred past link using the local
// tissue flow: the preferred displacements of nearby cells in the same
// time point, estimated from the already-linked initial graph, tell in
// which direction a cell is probably moving. The candidate nearest to
// "position minus flow" wins. This corrects whole-tissue drift that
// confuses plain nearest-neighbor linking.
//
// The initial graph is not modified; the returned graph has the same
// candidate edges with freshly chosen preferred flags.
func RefineWithFlow(initial *linkgraph.Graph, positions *core.PositionCollection, opts *FlowOptions) *linkgraph.Graph {
	o := opts.withDefaults()

	refined := initial.Clone()
	refined.DowngradeAllPreferred()

	repicked := 0
	for _, t := range positions.TimePoints() {
		for _, pos := range positions.OfTimePoint(t) {
			pasts := refined.Pasts(pos)
			if len(pasts) == 0 {
				continue
			}
			flow := flowToPrevious(initial, positions.OfTimePoint(t), pos, o)
			target := pos.Add(flow)

			best := pasts[0]
			bestDist := target.DistanceSquaredPixels(best, o.ZFactor)
			for _, past := range pasts[1:] {
				if d := target.DistanceSquaredPixels(past, o.ZFactor); d < bestDist {
					best, bestDist = past, d
				}
			}
			// The edge exists in the clone, so this cannot fail.
			if err := refined.SetPreferred(pos, best, true); err == nil {
				repicked++
			}
		}
	}

	o.Logger.Info().Int("links", repicked).Msg("flow-refined preferred links")
	return refined
}

// flowToPrevious averages, over the neighborhood of center, the
// displacement of cells with exactly one preferred past link. Returns
// the zero vector when no neighbor qualifies.
func flowToPrevious(initial *linkgraph.Graph, sameTimePoint []core.Position, center core.Position, o FlowOptions) core.Position {
	var sum core.Position
	count := 0
	for _, pos := range sameTimePoint {
		if pos.Equal(center) || isFarAway(center, pos, o.RadiusXY, o.RadiusZ) {
			continue
		}
		pasts := initial.PreferredPasts(pos)
		if len(pasts) != 1 {
			continue
		}
		sum = sum.Add(pasts[0].Sub(pos))
		count++
	}
	if count == 0 {
		return core.Position{T: center.T}
	}
	flow := sum.Scale(1 / float64(count))
	flow.T = center.T
	return flow
}

func isFarAway(center, pos core.Position, radiusXY, radiusZ float64) bool {
	return math.Abs(pos.X-center.X) > radiusXY ||
		math.Abs(pos.Y-center.Y) > radiusXY ||
		math.Abs(pos.Z-center.Z) > radiusZ
}
