package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/avisser/celltrack/core"
)

// Sentinel errors for family construction.
var (
	// ErrSameDaughter indicates the two daughters are the same detection.
	ErrSameDaughter = errors.New("scoring: daughters must be distinct")

	// ErrBadGeneration indicates a mother that is not strictly earlier in
	// time than both daughters.
	ErrBadGeneration = errors.New("scoring: mother must precede both daughters")
)

// Thresholds applied by Score.IsLikelyMother / Score.IsUnlikelyMother.
const (
	likelyMotherTotal   = 5.0
	unlikelyMotherTotal = 3.0
)

// Family is a candidate division: one mother and two daughters. The
// daughter order is irrelevant; two families with swapped daughters are
// equal and share a map key. Construct with NewFamily.
type Family struct {
	Mother    core.Position
	Daughter1 core.Position
	Daughter2 core.Position
}

// NewFamily validates and returns a family. The daughters are stored in
// a canonical order so that equality ignores the order they were given in.
func NewFamily(mother, daughter1, daughter2 core.Position) (Family, error) {
	if daughter1.Equal(daughter2) {
		return Family{}, ErrSameDaughter
	}
	if !mother.HasTimePoint() || !daughter1.HasTimePoint() || !daughter2.HasTimePoint() {
		return Family{}, core.ErrNoTimePoint
	}
	if mother.T >= daughter1.T || mother.T >= daughter2.T {
		return Family{}, ErrBadGeneration
	}
	if keyLess(daughter2.Key(), daughter1.Key()) {
		daughter1, daughter2 = daughter2, daughter1
	}
	return Family{Mother: mother, Daughter1: daughter1, Daughter2: daughter2}, nil
}

// FamilyKey is the comparable identity of a Family.
type FamilyKey struct {
	Mother, Daughter1, Daughter2 core.Key
}

// Key returns the map-key identity of this family.
func (f Family) Key() FamilyKey {
	return FamilyKey{Mother: f.Mother.Key(), Daughter1: f.Daughter1.Key(), Daughter2: f.Daughter2.Key()}
}

// HasDaughter reports whether pos is one of the two daughters.
func (f Family) HasDaughter(pos core.Position) bool {
	return f.Daughter1.Equal(pos) || f.Daughter2.Equal(pos)
}

// String implements fmt.Stringer.
func (f Family) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.0f) %d---> (%.2f, %.2f, %.0f) and (%.2f, %.2f, %.0f)",
		f.Mother.X, f.Mother.Y, f.Mother.Z, f.Mother.T,
		f.Daughter1.X, f.Daughter1.Y, f.Daughter1.Z,
		f.Daughter2.X, f.Daughter2.Y, f.Daughter2.Z)
}

func keyLess(a, b core.Key) bool {
	if a.T != b.T {
		return a.T < b.T
	}
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// Score is a named bag of numeric features with a derived total. Scores
// are immutable once constructed; NewScore copies the feature map.
type Score struct {
	features map[string]float64
}

// NewScore returns a score over a copy of the given features. A nil map
// yields an empty score with total 0.
func NewScore(features map[string]float64) Score {
	copied := make(map[string]float64, len(features))
	for name, value := range features {
		copied[name] = value
	}
	return Score{features: copied}
}

// Total returns the sum of all features.
func (s Score) Total() float64 {
	var total float64
	for _, value := range s.features {
		total += value
	}
	return total
}

// Get returns the named feature, or 0 if it was never set.
func (s Score) Get(name string) float64 { return s.features[name] }

// Keys returns the feature names, sorted.
func (s Score) Keys() []string {
	keys := make([]string, 0, len(s.features))
	for name := range s.features {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// IsLikelyMother applies the fixed threshold: total above 5.
func (s Score) IsLikelyMother() bool { return s.Total() > likelyMotherTotal }

// IsUnlikelyMother applies the fixed threshold: total of 3 or below.
func (s Score) IsUnlikelyMother() bool { return s.Total() <= unlikelyMotherTotal }

// String implements fmt.Stringer.
func (s Score) String() string {
	parts := make([]string, 0, len(s.features))
	for _, name := range s.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%g", name, s.features[name]))
	}
	return fmt.Sprintf("%g (based on %s)", s.Total(), strings.Join(parts, " "))
}

// ScoredFamily pairs a family with the score it received.
type ScoredFamily struct {
	Family Family
	Score  Score
}
