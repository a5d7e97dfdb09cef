package tracks

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
)

// Track is one maximal linear run of positions. Every interior
// position has exactly one preferred past and one preferred future
// link; the run ends where the lineage divides, merges or stops.
type Track struct {
	positions []core.Position
}

// Positions returns the track's positions in time order. The returned
// slice is owned by the track; do not modify it.
func (t *Track) Positions() []core.Position { return t.positions }

// First returns the earliest position of the track.
func (t *Track) First() core.Position { return t.positions[0] }

// Last returns the latest position of the track.
func (t *Track) Last() core.Position { return t.positions[len(t.positions)-1] }

// Len returns the number of positions in the track.
func (t *Track) Len() int { return len(t.positions) }

func (t *Track) String() string {
	return fmt.Sprintf("Track(%v..%v, %d positions)", t.First(), t.Last(), t.Len())
}

// Forest is the result of a decomposition: all tracks plus the
// mother-daughter relations between them.
type Forest struct {
	tracks    []*Track
	daughters map[int][]int
	mothers   map[int]int
	trackOf   map[core.Key]int
}

// Tracks returns all tracks, in discovery order: appearances first,
// then division daughters as they are reached.
func (f *Forest) Tracks() []*Track { return f.tracks }

// Daughters returns the indices of the tracks that start at the
// division ending track i. Empty when the track does not divide.
func (f *Forest) Daughters(i int) []int { return f.daughters[i] }

// Mother returns the index of the track whose division produced track
// i. False when track i starts at an appearance.
func (f *Forest) Mother(i int) (int, bool) {
	mother, ok := f.mothers[i]
	return mother, ok
}

// TrackOf returns the index of the track containing pos.
func (f *Forest) TrackOf(pos core.Position) (int, bool) {
	i, ok := f.trackOf[pos.Key()]
	return i, ok
}

type trackStart struct {
	id     linkgraph.NodeID
	mother int // mother track index, -1 for appearances
}

// Decompose splits the graph into tracks along its preferred links.
// Walks start at every position without a preferred past; a division
// enqueues each daughter as a new track start, a merge target starts
// its own track, and isolated positions become tracks of length one.
// The tracks partition the graph's positions.
func Decompose(graph *linkgraph.Graph) *Forest {
	forest := &Forest{
		daughters: make(map[int][]int),
		mothers:   make(map[int]int),
		trackOf:   make(map[core.Key]int),
	}
	n := graph.NodeCount()
	visited := roaring.New()
	queued := roaring.New()
	var queue []trackStart

	enqueue := func(id linkgraph.NodeID, mother int) {
		if queued.Contains(uint32(id)) {
			return
		}
		queued.Add(uint32(id))
		queue = append(queue, trackStart{id: id, mother: mother})
	}
	drain := func() {
		for len(queue) > 0 {
			start := queue[0]
			queue = queue[1:]
			forest.walk(graph, start, visited, func(id linkgraph.NodeID, mother int) {
				enqueue(id, mother)
			})
		}
	}

	// 1) Walk every lineage from its appearance.
	for id := 0; id < n; id++ {
		if len(graph.NeighborIDs(linkgraph.NodeID(id), false, true)) == 0 {
			enqueue(linkgraph.NodeID(id), -1)
		}
	}
	drain()

	// 2) Sweep up whatever the lineage walks could not reach, so the
	//    partition property holds even on anomalous graphs.
	for id := 0; id < n; id++ {
		if !visited.Contains(uint32(id)) {
			enqueue(linkgraph.NodeID(id), -1)
			drain()
		}
	}
	return forest
}

func (f *Forest) walk(graph *linkgraph.Graph, start trackStart, visited *roaring.Bitmap,
	enqueue func(linkgraph.NodeID, int)) {
	if visited.Contains(uint32(start.id)) {
		return
	}
	index := len(f.tracks)
	if start.mother >= 0 {
		f.daughters[start.mother] = append(f.daughters[start.mother], index)
		f.mothers[index] = start.mother
	}

	track := &Track{}
	current := start.id
	for {
		visited.Add(uint32(current))
		pos := graph.PositionAt(current)
		f.trackOf[pos.Key()] = index
		track.positions = append(track.positions, pos)

		futures := graph.NeighborIDs(current, true, true)
		if len(futures) == 1 {
			next := futures[0]
			if !visited.Contains(uint32(next)) && len(graph.NeighborIDs(next, false, true)) == 1 {
				current = next
				continue
			}
			// Merge target; it starts a track of its own.
			enqueue(next, -1)
			break
		}
		for _, daughter := range futures {
			enqueue(daughter, index)
		}
		break
	}
	f.tracks = append(f.tracks, track)
}
