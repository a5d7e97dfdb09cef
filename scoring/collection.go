package scoring

import "github.com/avisser/celltrack/core"

// Collection stores the score obtained for each evaluated family,
// grouped by the mother's time point. It is the cache that keeps the
// resolver's view of a family stable even when the underlying System is
// stochastic. Not safe for concurrent mutation.
type Collection struct {
	byTime map[core.TimePoint]map[FamilyKey]ScoredFamily
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{byTime: make(map[core.TimePoint]map[FamilyKey]ScoredFamily)}
}

// Set records the score of a family, replacing any earlier entry.
func (c *Collection) Set(family Family, score Score) {
	t := family.Mother.T
	families := c.byTime[t]
	if families == nil {
		families = make(map[FamilyKey]ScoredFamily)
		c.byTime[t] = families
	}
	families[family.Key()] = ScoredFamily{Family: family, Score: score}
}

// OfFamily returns the recorded score for the family. The second result
// is false when the family was never scored ("no opinion").
func (c *Collection) OfFamily(family Family) (Score, bool) {
	entry, ok := c.byTime[family.Mother.T][family.Key()]
	return entry.Score, ok
}

// OfMother returns all scored families in which pos is the mother.
func (c *Collection) OfMother(pos core.Position) []ScoredFamily {
	var out []ScoredFamily
	for _, entry := range c.byTime[pos.T] {
		if entry.Family.Mother.Equal(pos) {
			out = append(out, entry)
		}
	}
	return out
}

// OfTimePoint returns all scored families whose mother lives at t.
func (c *Collection) OfTimePoint(t core.TimePoint) []ScoredFamily {
	out := make([]ScoredFamily, 0, len(c.byTime[t]))
	for _, entry := range c.byTime[t] {
		out = append(out, entry)
	}
	return out
}

// BestOfMother returns the highest-scoring family of the given mother.
// The second result is false when the mother has no scored family.
func (c *Collection) BestOfMother(pos core.Position) (ScoredFamily, bool) {
	var best ScoredFamily
	found := false
	for _, entry := range c.OfMother(pos) {
		if !found || entry.Score.Total() > best.Score.Total() {
			best = entry
			found = true
		}
	}
	return best, found
}

// HasScores reports whether anything has been recorded at all. The
// consistency annotator skips score-based checks on an empty collection.
func (c *Collection) HasScores() bool {
	for _, families := range c.byTime {
		if len(families) > 0 {
			return true
		}
	}
	return false
}
