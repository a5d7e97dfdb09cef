// Package tracks decomposes a resolved link graph into maximal linear
// tracks and the lineage forest connecting them. A track runs from an
// appearance or a division daughter to a disappearance or the next
// division; every position of the graph belongs to exactly one track.
// Tracks are a derived, read-only view: recompute them after editing
// the graph instead of mutating them.
package tracks
