// Package linkgraph implements the temporal Link Graph: an undirected
// graph whose nodes are detected positions and whose edges connect
// positions in different time points. It is the shared mutable state of
// the linking pipeline - the candidate builder fills it, the resolvers
// prune it, the consistency annotator tags it.
//
// Node storage is an arena keyed by a stable uint32 NodeID; edges are
// adjacency lists carrying a typed {preferred bool} record; each node
// has a single-slot optional error tag plus externally-set start/end
// markers. There are no dynamic attribute maps anywhere.
//
// An edge is "preferred" when a resolver selected it among the
// candidates; the global flow linker instead outputs a graph whose
// every edge is preferred. The direction of an edge is implicit: the
// endpoint with the lower time point is the past side.
//
// Invariant: an edge never connects two positions in the same time
// point; AddEdge rejects the attempt with ErrSameTimePoint.
//
// Errors:
//
//	ErrSameTimePoint    - edge endpoints share a time point.
//	ErrPositionNotFound - operation referenced an unknown position.
//	ErrEdgeNotFound     - operation referenced a non-existent edge.
package linkgraph
