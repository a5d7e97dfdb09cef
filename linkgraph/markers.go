package linkgraph

import "github.com/avisser/celltrack/core"

// SetErrorTag stores the anomaly tag of pos, replacing any earlier tag.
// Only the consistency annotator should call this; everything else
// reads.
func (g *Graph) SetErrorTag(pos core.Position, tag ErrorTag) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.index[pos.Key()]
	if !ok {
		return ErrPositionNotFound
	}
	g.nodes[id].tag = tag
	return nil
}

// ErrorTagOf returns the current tag of pos, TagNone when the position
// is unknown or untagged.
func (g *Graph) ErrorTagOf(pos core.Position) ErrorTag {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.index[pos.Key()]
	if !ok {
		return TagNone
	}
	return g.nodes[id].tag
}

// ClearErrorTag removes the tag of pos, if any.
func (g *Graph) ClearErrorTag(pos core.Position) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.index[pos.Key()]; ok {
		g.nodes[id].tag = TagNone
	}
}

// TaggedPositions returns all positions carrying a tag, in insertion
// order.
func (g *Graph) TaggedPositions() []core.Position {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []core.Position
	for i := range g.nodes {
		if g.nodes[i].tag != TagNone {
			out = append(out, g.nodes[i].pos)
		}
	}
	return out
}

// SetStartMark records why a track deliberately starts at pos.
func (g *Graph) SetStartMark(pos core.Position, mark StartMark) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.index[pos.Key()]
	if !ok {
		return ErrPositionNotFound
	}
	g.nodes[id].start = mark
	return nil
}

// StartMarkOf returns the start marker of pos, StartNone by default.
func (g *Graph) StartMarkOf(pos core.Position) StartMark {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.index[pos.Key()]
	if !ok {
		return StartNone
	}
	return g.nodes[id].start
}

// SetEndMark records why a track deliberately ends at pos.
func (g *Graph) SetEndMark(pos core.Position, mark EndMark) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.index[pos.Key()]
	if !ok {
		return ErrPositionNotFound
	}
	g.nodes[id].end = mark
	return nil
}

// EndMarkOf returns the end marker of pos, EndNone by default.
func (g *Graph) EndMarkOf(pos core.Position) EndMark {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.index[pos.Key()]
	if !ok {
		return EndNone
	}
	return g.nodes[id].end
}
