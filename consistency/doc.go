// Package consistency annotates a resolved link graph with anomaly
// tags. The rules are topological and biological sanity checks: a cell
// cannot have three daughters, cannot result from two cells, should
// not vanish mid-experiment without an end marker, should not shrink
// to a third of its size in one step and should not move faster than
// cells physically move.
//
// Anomalies are annotations, not errors: a bad node never stops the
// analysis of the rest of the graph. Annotate is stateless and can be
// re-run after any edit; it recomputes every tag from the current
// graph, keeping only the review tags left by the resolver on nodes no
// rule fires for.
package consistency
