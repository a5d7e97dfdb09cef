package scoring

import "github.com/avisser/celltrack/core"

// System scores a putative mother with two daughters. Implementations
// range from rule-based scorers to neural networks living outside this
// module. Returning ok=false means the system has no opinion on this
// family; callers must skip the family, not treat it as score zero.
type System interface {
	Calculate(shapes core.ShapeSource, family Family) (score Score, ok bool)
}

// VolumeSystem is a rule-based scorer using only fitted shape volumes.
// A dividing mother should be roughly as large as her two daughters
// combined, and the daughters should have similar sizes.
type VolumeSystem struct{}

// Calculate implements System. Families whose mother shape is unknown
// get the worst-case mother_volume penalty; unknown daughter shapes
// leave the penalty in place as well (too close to the image edge).
func (VolumeSystem) Calculate(shapes core.ShapeSource, family Family) (Score, bool) {
	features := map[string]float64{"mother_volume": -10}

	motherShape := shapes.Shape(family.Mother)
	if motherShape.IsUnknown() {
		return NewScore(features), true
	}
	d1Shape := shapes.Shape(family.Daughter1)
	d2Shape := shapes.Shape(family.Daughter2)
	if d1Shape.IsUnknown() || d2Shape.IsUnknown() {
		return NewScore(features), true
	}

	volume1, volume2 := d1Shape.Volume(), d2Shape.Volume()
	if motherShape.Volume()/(volume1+volume2) > 0.95 {
		// A mother cell, or at least a big one.
		features["mother_volume"] = 0
	}

	// Daughters of a real division have near-identical volumes.
	larger, smaller := volume1, volume2
	if smaller > larger {
		larger, smaller = smaller, larger
	}
	if smaller > 0 && larger/smaller < 1.5 {
		features["daughter_symmetry"] = 2
	}

	return NewScore(features), true
}

// FixedSystem is a testing scorer that reports a fixed high score for
// families in a known ground-truth set and a fixed low score otherwise.
type FixedSystem struct {
	families map[FamilyKey]struct{}

	// HighTotal and LowTotal override the defaults (10 and -10) when
	// non-zero.
	HighTotal float64
	LowTotal  float64
}

// NewFixedSystem returns a scorer that approves exactly the given
// families.
func NewFixedSystem(families ...Family) *FixedSystem {
	known := make(map[FamilyKey]struct{}, len(families))
	for _, family := range families {
		known[family.Key()] = struct{}{}
	}
	return &FixedSystem{families: known}
}

// Calculate implements System.
func (s *FixedSystem) Calculate(_ core.ShapeSource, family Family) (Score, bool) {
	high, low := s.HighTotal, s.LowTotal
	if high == 0 {
		high = 10
	}
	if low == 0 {
		low = -10
	}
	if _, ok := s.families[family.Key()]; ok {
		return NewScore(map[string]float64{"ground_truth": high}), true
	}
	return NewScore(map[string]float64{"ground_truth": low}), true
}

// NoOpinionSystem declines to score anything. Useful for exercising the
// "missing score" paths in tests.
type NoOpinionSystem struct{}

// Calculate implements System; it always reports no opinion.
func (NoOpinionSystem) Calculate(core.ShapeSource, Family) (Score, bool) {
	return Score{}, false
}
