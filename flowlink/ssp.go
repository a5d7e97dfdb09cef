package flowlink

import (
	"context"
	"math"
)

// SSPSolver is the built-in min-cost-flow solver. It augments unit
// flow along successive shortest source-sink paths for as long as the
// shortest path has negative total cost; every augmenting path is one
// whole track from appearance to disappearance, and re-routing through
// residual arcs lets later tracks correct earlier ones.
//
// The initial network is a DAG (all arcs point forward in time), so
// the shortest-path invariant keeps the residual network free of
// negative cycles and the label-correcting search terminates.
//
// A division is a state of a used detection, not a hypothesis of its
// own: its arc takes part in the search only while the mother's
// detection arc carries flow, and the detection cannot be released
// again while the division uses it.
type SSPSolver struct{}

// NewSSPSolver returns a ready solver. The solver is stateless and
// safe for concurrent use.
func NewSSPSolver() *SSPSolver { return &SSPSolver{} }

type sspArc struct {
	to       int
	rev      int // index of the reverse arc in arcs[to]
	capacity int
	cost     float64
}

// arcKey addresses one forward arc by its tail node and slot.
type arcKey struct{ from, idx int }

type sspNetwork struct {
	arcs [][]sspArc
	narc int

	// gate maps a gated arc to the arc that must be saturated before
	// the gated arc opens; lockedBy maps the gate's residual to the
	// gated arc whose flow pins it shut.
	gate     map[arcKey]arcKey
	lockedBy map[arcKey]arcKey
}

func newSSPNetwork(nodes int) *sspNetwork {
	return &sspNetwork{
		arcs:     make([][]sspArc, nodes),
		gate:     make(map[arcKey]arcKey),
		lockedBy: make(map[arcKey]arcKey),
	}
}

// add inserts a unit-capacity arc pair and returns (from, index) of
// the forward arc so callers can read its final flow.
func (n *sspNetwork) add(from, to int, cost float64) (int, int) {
	n.arcs[from] = append(n.arcs[from], sspArc{to: to, rev: len(n.arcs[to]), capacity: 1, cost: cost})
	n.arcs[to] = append(n.arcs[to], sspArc{to: from, rev: len(n.arcs[from]) - 1, capacity: 0, cost: -cost})
	n.narc++
	return from, len(n.arcs[from]) - 1
}

// addGated inserts an arc that may carry flow only while the gate arc
// does. While the gated arc is in use, the gate's residual stays shut
// so the two cannot be decoupled by a later re-routing.
func (n *sspNetwork) addGated(from, to int, cost float64, gate arcKey) (int, int) {
	f, i := n.add(from, to, cost)
	forward := n.arcs[gate.from][gate.idx]
	n.gate[arcKey{f, i}] = gate
	n.lockedBy[arcKey{forward.to, forward.rev}] = arcKey{f, i}
	return f, i
}

func (n *sspNetwork) used(from, idx int) bool {
	return n.arcs[from][idx].capacity == 0
}

const (
	sspSource = 0
	sspSink   = 1

	costEps = 1e-9
)

// Solve implements Solver.
func (s *SSPSolver) Solve(ctx context.Context, problem *Problem) (*Assignment, error) {
	if len(problem.Detections) == 0 {
		return nil, ErrEmptyProblem
	}
	if err := problem.Weights.validate(); err != nil {
		return nil, err
	}
	w := problem.Weights

	// 1) Build the network: every detection is split into an in and an
	//    out node so the detection arc between them can carry cost.
	nodes := 2 + 2*len(problem.Detections)
	network := newSSPNetwork(nodes)
	inOf := make(map[int]int, len(problem.Detections))
	outOf := make(map[int]int, len(problem.Detections))

	detectionArcs := make([]arcKey, len(problem.Detections))
	divisionArcs := make(map[int]arcKey)
	linkArcs := make([]arcKey, len(problem.Links))

	for k, detection := range problem.Detections {
		in, out := 2+2*k, 3+2*k
		inOf[detection.ID], outOf[detection.ID] = in, out

		// Using a detection earns back the omission penalty.
		from, idx := network.add(in, out, -w.Detection)
		detectionArcs[k] = arcKey{from, idx}

		network.add(sspSource, in, w.Appearance*detection.AppearancePenalty)
		network.add(out, sspSink, w.Disappearance*detection.DisappearancePenalty)

		if detection.MayDivide {
			// A second unit entering the out node lets the detection
			// feed two links. Gated on the detection arc: the division
			// bonus only exists for a mother that is actually tracked.
			from, idx = network.addGated(sspSource, out,
				-w.Division*detection.DivisionScore, detectionArcs[k])
			divisionArcs[detection.ID] = arcKey{from, idx}
		}
	}
	for l, link := range problem.Links {
		from, idx := network.add(outOf[link.Src], inOf[link.Dest], w.Link*link.Cost)
		linkArcs[l] = arcKey{from, idx}
	}

	// 2) Augment unit flow along the cheapest source-sink path while
	//    that path still lowers the total cost.
	abort := func(err error) error {
		return &SolveError{Nodes: nodes, Arcs: network.narc, Err: err}
	}
	prevNode := make([]int, nodes)
	prevIdx := make([]int, nodes)
	dist := make([]float64, nodes)
	inQueue := make([]bool, nodes)
	for {
		if err := ctx.Err(); err != nil {
			return nil, abort(err)
		}
		if !network.shortestPath(dist, prevNode, prevIdx, inQueue) {
			break
		}
		if dist[sspSink] >= -costEps {
			break
		}
		for node := sspSink; node != sspSource; node = prevNode[node] {
			arc := &network.arcs[prevNode[node]][prevIdx[node]]
			arc.capacity--
			network.arcs[node][arc.rev].capacity++
		}
	}

	// 3) Read the flow back at hypothesis level. A division is only
	//    reported when the mother really feeds two used links.
	assignment := &Assignment{}
	usedOut := make(map[int]int)
	for l, link := range problem.Links {
		if network.used(linkArcs[l].from, linkArcs[l].idx) {
			assignment.UsedLinks = append(assignment.UsedLinks, [2]int{link.Src, link.Dest})
			usedOut[link.Src]++
		}
	}
	for k, detection := range problem.Detections {
		if network.used(detectionArcs[k].from, detectionArcs[k].idx) {
			assignment.UsedDetections = append(assignment.UsedDetections, detection.ID)
		}
		ref, ok := divisionArcs[detection.ID]
		if ok && network.used(ref.from, ref.idx) && usedOut[detection.ID] >= 2 {
			assignment.Divisions = append(assignment.Divisions, detection.ID)
		}
	}
	return assignment, nil
}

// shortestPath runs a label-correcting search from the source over the
// residual network, filling dist and the predecessor arrays. Returns
// false when the sink is unreachable.
func (n *sspNetwork) shortestPath(dist []float64, prevNode, prevIdx []int, inQueue []bool) bool {
	for i := range dist {
		dist[i] = math.Inf(1)
		inQueue[i] = false
	}
	dist[sspSource] = 0
	queue := []int{sspSource}
	inQueue[sspSource] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		inQueue[node] = false
		for idx := range n.arcs[node] {
			arc := &n.arcs[node][idx]
			if arc.capacity == 0 {
				continue
			}
			if gate, ok := n.gate[arcKey{node, idx}]; ok && n.arcs[gate.from][gate.idx].capacity != 0 {
				continue // opens only once the gate arc is saturated
			}
			if pinned, ok := n.lockedBy[arcKey{node, idx}]; ok && n.arcs[pinned.from][pinned.idx].capacity == 0 {
				continue // the gate stays in place while the gated arc flows
			}
			next := dist[node] + arc.cost
			if next >= dist[arc.to]-costEps {
				continue
			}
			dist[arc.to] = next
			prevNode[arc.to] = node
			prevIdx[arc.to] = idx
			if !inQueue[arc.to] {
				queue = append(queue, arc.to)
				inQueue[arc.to] = true
			}
		}
	}
	return !math.IsInf(dist[sspSink], 1)
}
