package linkgraph

import (
	"sync"

	"github.com/avisser/celltrack/core"
)

type halfEdge struct {
	peer      NodeID
	preferred bool
}

type node struct {
	pos   core.Position
	edges []halfEdge
	tag   ErrorTag
	start StartMark
	end   EndMark
}

// Graph is the temporal link graph. Safe for concurrent reads; writes
// must come from a single goroutine at a time (guarded internally, but
// the linking pipeline is designed to mutate from one place anyway).
type Graph struct {
	mu    sync.RWMutex
	nodes []node
	index map[core.Key]NodeID
	edges int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[core.Key]NodeID)}
}

// AddPosition inserts pos as a node, or returns the existing node when
// the position is already present. Positions without a time point are
// rejected with core.ErrNoTimePoint.
func (g *Graph) AddPosition(pos core.Position) (NodeID, error) {
	if !pos.HasTimePoint() {
		return 0, core.ErrNoTimePoint
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addLocked(pos), nil
}

func (g *Graph) addLocked(pos core.Position) NodeID {
	if id, ok := g.index[pos.Key()]; ok {
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{pos: pos})
	g.index[pos.Key()] = id
	return id
}

// IDOf returns the node holding pos.
func (g *Graph) IDOf(pos core.Position) (NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.index[pos.Key()]
	return id, ok
}

// PositionAt returns the position stored at id. IDs always come from
// this graph, so out-of-range access is a programming error and panics.
func (g *Graph) PositionAt(id NodeID) core.Position {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[id].pos
}

// HasPosition reports whether pos is a node of the graph.
func (g *Graph) HasPosition(pos core.Position) bool {
	_, ok := g.IDOf(pos)
	return ok
}

// NodeCount returns the number of nodes. Valid NodeIDs are
// 0..NodeCount()-1.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges
}

// Positions returns all positions in insertion order.
func (g *Graph) Positions() []core.Position {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]core.Position, len(g.nodes))
	for i := range g.nodes {
		out[i] = g.nodes[i].pos
	}
	return out
}

// AddEdge links a and b, inserting either position as a node first if
// needed. Adding an existing edge merges idempotently: the edge stays
// unique and becomes preferred if either the old or the new record says
// so. Same-time-point endpoints are rejected with ErrSameTimePoint.
func (g *Graph) AddEdge(a, b core.Position, preferred bool) error {
	if !a.HasTimePoint() || !b.HasTimePoint() {
		return core.ErrNoTimePoint
	}
	if a.T == b.T {
		return ErrSameTimePoint
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	idA := g.addLocked(a)
	idB := g.addLocked(b)
	if half := g.findHalf(idA, idB); half != nil {
		merged := half.preferred || preferred
		half.preferred = merged
		g.findHalf(idB, idA).preferred = merged
		return nil
	}
	g.nodes[idA].edges = append(g.nodes[idA].edges, halfEdge{peer: idB, preferred: preferred})
	g.nodes[idB].edges = append(g.nodes[idB].edges, halfEdge{peer: idA, preferred: preferred})
	g.edges++
	return nil
}

func (g *Graph) findHalf(from, to NodeID) *halfEdge {
	edges := g.nodes[from].edges
	for i := range edges {
		if edges[i].peer == to {
			return &edges[i]
		}
	}
	return nil
}

// HasEdge reports whether a and b are linked.
func (g *Graph) HasEdge(a, b core.Position) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	idA, okA := g.index[a.Key()]
	idB, okB := g.index[b.Key()]
	return okA && okB && g.findHalf(idA, idB) != nil
}

// IsPreferred reports whether the edge a-b is preferred.
func (g *Graph) IsPreferred(a, b core.Position) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	half, err := g.lookupHalf(a, b)
	if err != nil {
		return false, err
	}
	return half.preferred, nil
}

// SetPreferred flips the preferred flag of an existing edge.
func (g *Graph) SetPreferred(a, b core.Position, preferred bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	half, err := g.lookupHalf(a, b)
	if err != nil {
		return err
	}
	idA := g.index[a.Key()]
	idB := g.index[b.Key()]
	half.preferred = preferred
	g.findHalf(idB, idA).preferred = preferred
	return nil
}

func (g *Graph) lookupHalf(a, b core.Position) (*halfEdge, error) {
	idA, okA := g.index[a.Key()]
	idB, okB := g.index[b.Key()]
	if !okA || !okB {
		return nil, ErrPositionNotFound
	}
	half := g.findHalf(idA, idB)
	if half == nil {
		return nil, ErrEdgeNotFound
	}
	return half, nil
}

// RemoveEdge deletes the edge a-b.
func (g *Graph) RemoveEdge(a, b core.Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	idA, okA := g.index[a.Key()]
	idB, okB := g.index[b.Key()]
	if !okA || !okB {
		return ErrPositionNotFound
	}
	if !g.removeHalf(idA, idB) {
		return ErrEdgeNotFound
	}
	g.removeHalf(idB, idA)
	g.edges--
	return nil
}

func (g *Graph) removeHalf(from, to NodeID) bool {
	edges := g.nodes[from].edges
	for i := range edges {
		if edges[i].peer == to {
			g.nodes[from].edges = append(edges[:i], edges[i+1:]...)
			return true
		}
	}
	return false
}

// Pasts returns all neighbors of pos in earlier time points.
func (g *Graph) Pasts(pos core.Position) []core.Position {
	return g.neighbors(pos, false, false)
}

// Futures returns all neighbors of pos in later time points.
func (g *Graph) Futures(pos core.Position) []core.Position {
	return g.neighbors(pos, true, false)
}

// PreferredPasts returns the preferred neighbors of pos in earlier time
// points.
func (g *Graph) PreferredPasts(pos core.Position) []core.Position {
	return g.neighbors(pos, false, true)
}

// PreferredFutures returns the preferred neighbors of pos in later time
// points.
func (g *Graph) PreferredFutures(pos core.Position) []core.Position {
	return g.neighbors(pos, true, true)
}

func (g *Graph) neighbors(pos core.Position, future, preferredOnly bool) []core.Position {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.index[pos.Key()]
	if !ok {
		return nil
	}
	var out []core.Position
	for _, half := range g.nodes[id].edges {
		if preferredOnly && !half.preferred {
			continue
		}
		peer := g.nodes[half.peer].pos
		if future == (peer.T > g.nodes[id].pos.T) {
			out = append(out, peer)
		}
	}
	return out
}

// NeighborIDs returns the IDs of the neighbors on one time side of id.
// Used by callers that track visited sets by NodeID.
func (g *Graph) NeighborIDs(id NodeID, future, preferredOnly bool) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []NodeID
	t := g.nodes[id].pos.T
	for _, half := range g.nodes[id].edges {
		if preferredOnly && !half.preferred {
			continue
		}
		if future == (g.nodes[half.peer].pos.T > t) {
			out = append(out, half.peer)
		}
	}
	return out
}

// DowngradePastEdges clears the preferred flag on every edge from pos
// towards the past. Used when a node is about to get a new mother.
func (g *Graph) DowngradePastEdges(pos core.Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.index[pos.Key()]
	if !ok {
		return ErrPositionNotFound
	}
	t := g.nodes[id].pos.T
	for i := range g.nodes[id].edges {
		half := &g.nodes[id].edges[i]
		if g.nodes[half.peer].pos.T < t && half.preferred {
			half.preferred = false
			g.findHalf(half.peer, id).preferred = false
		}
	}
	return nil
}

// DowngradeAllPreferred clears the preferred flag on every edge.
func (g *Graph) DowngradeAllPreferred() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.nodes {
		for j := range g.nodes[i].edges {
			g.nodes[i].edges[j].preferred = false
		}
	}
}

// Edges returns every edge once, past endpoint first.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, 0, g.edges)
	for id := range g.nodes {
		t := g.nodes[id].pos.T
		for _, half := range g.nodes[id].edges {
			if g.nodes[half.peer].pos.T > t {
				out = append(out, Edge{Past: NodeID(id), Future: half.peer, Preferred: half.preferred})
			}
		}
	}
	return out
}

// Clone returns a deep copy of the graph, tags and markers included.
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := &Graph{
		nodes: make([]node, len(g.nodes)),
		index: make(map[core.Key]NodeID, len(g.index)),
		edges: g.edges,
	}
	for i := range g.nodes {
		copied := g.nodes[i]
		copied.edges = append([]halfEdge(nil), g.nodes[i].edges...)
		out.nodes[i] = copied
	}
	for key, id := range g.index {
		out.index[key] = id
	}
	return out
}

// WithOnlyPreferredEdges returns a copy containing every node but only
// the preferred edges, all still marked preferred. This is the final
// pruning step of the heuristic resolver.
func (g *Graph) WithOnlyPreferredEdges() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := &Graph{
		nodes: make([]node, len(g.nodes)),
		index: make(map[core.Key]NodeID, len(g.index)),
	}
	for i := range g.nodes {
		copied := g.nodes[i]
		copied.edges = nil
		for _, half := range g.nodes[i].edges {
			if half.preferred {
				copied.edges = append(copied.edges, half)
			}
		}
		out.nodes[i] = copied
	}
	for key, id := range g.index {
		out.index[key] = id
	}
	for i := range out.nodes {
		t := out.nodes[i].pos.T
		for _, half := range out.nodes[i].edges {
			if out.nodes[half.peer].pos.T > t {
				out.edges++
			}
		}
	}
	return out
}
