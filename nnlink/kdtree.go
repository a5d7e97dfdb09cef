package nnlink

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/avisser/celltrack/core"
)

// point is a position lifted into anisotropy-corrected search space:
// the z coordinate is pre-multiplied by the z factor so that the tree's
// plain squared Euclidean metric matches DistanceSquaredPixels.
type point struct {
	vec [3]float64
	pos core.Position
}

func makePoint(pos core.Position, zFactor float64) point {
	return point{vec: [3]float64{pos.X, pos.Y, pos.Z * zFactor}, pos: pos}
}

// Compare implements kdtree.Comparable.
func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	return p.vec[d] - q.vec[d]
}

// Dims implements kdtree.Comparable.
func (p point) Dims() int { return 3 }

// Distance implements kdtree.Comparable; it returns the squared
// Euclidean distance in search space.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	var sum float64
	for i := range p.vec {
		d := p.vec[i] - q.vec[i]
		sum += d * d
	}
	return sum
}

// points implements kdtree.Interface over a slice of point.
type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{Dim: d, points: p}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane is the kdtree.SortSlicer over one splitting dimension.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	return p.points[i].vec[p.Dim] < p.points[j].vec[p.Dim]
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

// searchTree wraps a k-d tree over the positions of one time point.
type searchTree struct {
	tree *kdtree.Tree
}

func newSearchTree(list []core.Position, zFactor float64) *searchTree {
	if len(list) == 0 {
		return &searchTree{}
	}
	data := make(points, len(list))
	for i, pos := range list {
		data[i] = makePoint(pos, zFactor)
	}
	return &searchTree{tree: kdtree.New(data, false)}
}

// candidate is a search hit with its squared search-space distance.
type candidate struct {
	pos   core.Position
	dist2 float64
}

// nearestWithTolerance returns all positions whose squared distance to
// around is at most tolerance² times the minimal one, sorted ascending,
// capped at maxCandidates. Returns nil when the time point is empty.
func (t *searchTree) nearestWithTolerance(around core.Position, zFactor, tolerance float64, maxCandidates int) []candidate {
	if t.tree == nil {
		return nil
	}
	query := makePoint(around, zFactor)
	_, dMin2 := t.tree.Nearest(query)

	keeper := kdtree.NewDistKeeper(dMin2 * tolerance * tolerance)
	t.tree.NearestSet(keeper, query)

	out := make([]candidate, 0, keeper.Len())
	for _, hit := range keeper.Heap {
		if hit.Comparable == nil {
			continue // the keeper's bounding sentinel
		}
		out = append(out, candidate{pos: hit.Comparable.(point).pos, dist2: hit.Dist})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].dist2 != out[j].dist2 {
			return out[i].dist2 < out[j].dist2
		}
		// Deterministic order among exact ties.
		return keyLess(out[i].pos.Key(), out[j].pos.Key())
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

func keyLess(a, b core.Key) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
