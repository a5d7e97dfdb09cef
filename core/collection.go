package core

import "sort"

// PositionCollection groups detected positions by time point. It is the
// hand-over format from the external detector to the linking components.
// Not safe for concurrent mutation.
type PositionCollection struct {
	byTime map[TimePoint][]Position
	count  int
}

// NewPositionCollection returns an empty collection.
func NewPositionCollection() *PositionCollection {
	return &PositionCollection{byTime: make(map[TimePoint][]Position)}
}

// Add stores a position under its own time point. Positions without a
// time point are rejected with ErrNoTimePoint.
func (c *PositionCollection) Add(pos Position) error {
	if !pos.HasTimePoint() {
		return ErrNoTimePoint
	}
	c.byTime[pos.T] = append(c.byTime[pos.T], pos)
	c.count++
	return nil
}

// OfTimePoint returns the positions detected at t. The returned slice is
// owned by the collection and must not be modified.
func (c *PositionCollection) OfTimePoint(t TimePoint) []Position {
	return c.byTime[t]
}

// FirstTimePoint returns the lowest time point holding positions.
// The second result is false for an empty collection.
func (c *PositionCollection) FirstTimePoint() (TimePoint, bool) {
	return c.boundary(func(t, best TimePoint) bool { return t < best })
}

// LastTimePoint returns the highest time point holding positions.
// The second result is false for an empty collection.
func (c *PositionCollection) LastTimePoint() (TimePoint, bool) {
	return c.boundary(func(t, best TimePoint) bool { return t > best })
}

func (c *PositionCollection) boundary(better func(t, best TimePoint) bool) (TimePoint, bool) {
	first := true
	var best TimePoint
	for t := range c.byTime {
		if first || better(t, best) {
			best = t
			first = false
		}
	}
	return best, !first
}

// TimePoints returns all time points holding positions, ascending.
func (c *PositionCollection) TimePoints() []TimePoint {
	out := make([]TimePoint, 0, len(c.byTime))
	for t := range c.byTime {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the total number of stored positions.
func (c *PositionCollection) Len() int { return c.count }

// All returns every position, ordered by time point then insertion order.
func (c *PositionCollection) All() []Position {
	out := make([]Position, 0, c.count)
	for _, t := range c.TimePoints() {
		out = append(out, c.byTime[t]...)
	}
	return out
}
