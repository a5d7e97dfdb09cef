// Package scoring defines the mother-daughter likelihood model: the
// Family triple, the Score value it is judged by, a per-experiment score
// Collection, and the pluggable System that produces scores.
//
// The linking components never build scores themselves. They ask a
// System for an opinion and must tolerate "no opinion" (the ok result is
// false): a missing score means insufficient evidence, never zero.
// Callers that act on a score repeatedly must cache the first one they
// obtained for a Family, since a System backed by a stochastic model is
// not required to be deterministic across calls.
package scoring
