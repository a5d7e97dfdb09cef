// Package nnlink builds the candidate link graph: for every position it
// finds the nearest positions in the neighboring time point and records
// them as candidate edges, the closest one marked preferred.
//
// The search is tolerance-based. With tolerance 1.0 only the single
// nearest neighbor is kept; with tolerance 1.05 every candidate within
// 5% of the nearest distance survives, leaving near-ties for a resolver
// to settle. Distances are squared pixel distances with the z axis
// weighted by a configurable anisotropy factor.
//
// Each (T, T+1) pair is independent, so pairs are fanned out over an
// errgroup; workers write disjoint edge batches that are merged into
// one graph afterwards. Queries run on a k-d tree per time point.
//
// RefineWithFlow is an optional second pass that corrects systematic
// drift: it re-picks each preferred past link using the average
// displacement of the surrounding cells.
package nnlink
