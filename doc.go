// Package celltrack links cell detections across the time points of a
// 3D time-lapse recording into tracks and lineage trees.
//
// The pipeline runs in stages, each its own subpackage:
//
//	core/        - positions, resolutions, shapes & detection collections
//	linkgraph/   - the temporal link graph: candidate and preferred edges,
//	               anomaly tags, track start/end markers
//	scoring/     - mother/daughter scoring abstraction and score storage
//	nnlink/      - tolerance-pruned nearest-neighbor candidate linking,
//	               plus local-flow drift refinement
//	resolver/    - score-driven repair of the preferred edge set
//	flowlink/    - global min-cost-flow linking over all hypotheses
//	consistency/ - rule-based anomaly annotation of a finished graph
//	tracks/      - decomposition of the graph into tracks and lineages
//	compare/     - structured diff of two link graphs against each other
//	persist/     - snapshot save/load of the complete linking state
//	config/      - defaults, file-loadable settings and logger setup
//
// A typical run builds candidates with nnlink, repairs them with
// resolver or solves globally with flowlink, annotates the result with
// consistency, and decomposes it with tracks. compare measures a
// computed graph against a manually verified one.
package celltrack
