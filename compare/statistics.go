package compare

import (
	"gonum.org/v1/gonum/floats"

	"github.com/avisser/celltrack/core"
)

// Statistics holds per-time-point detection quality derived from a
// true-positive, false-positive and false-negative category. Slice
// index i corresponds to time point FirstTimePoint+i; time points
// without data yield NaN ratios.
type Statistics struct {
	FirstTimePoint core.TimePoint

	TruePositives  []float64
	FalsePositives []float64
	FalseNegatives []float64

	Precision []float64
	Recall    []float64
	F1        []float64

	PrecisionOverall float64
	RecallOverall    float64
	F1Overall        float64
}

// Statistics computes detection quality over time from three of the
// report's categories. The second result is false when none of the
// three categories received any data.
func (r *Report) Statistics(truePositives, falsePositives, falseNegatives Category) (*Statistics, bool) {
	first, last, ok := r.timePointRange(truePositives, falsePositives, falseNegatives)
	if !ok {
		return nil, false
	}

	count := int(last-first) + 1
	s := &Statistics{
		FirstTimePoint: first,
		TruePositives:  make([]float64, count),
		FalsePositives: make([]float64, count),
		FalseNegatives: make([]float64, count),
		Precision:      make([]float64, count),
		Recall:         make([]float64, count),
		F1:             make([]float64, count),
	}
	for _, entry := range r.entries[truePositives] {
		s.TruePositives[entry.Position.T-first]++
	}
	for _, entry := range r.entries[falsePositives] {
		s.FalsePositives[entry.Position.T-first]++
	}
	for _, entry := range r.entries[falseNegatives] {
		s.FalseNegatives[entry.Position.T-first]++
	}

	for i := 0; i < count; i++ {
		s.Precision[i] = s.TruePositives[i] / (s.TruePositives[i] + s.FalsePositives[i])
		s.Recall[i] = s.TruePositives[i] / (s.TruePositives[i] + s.FalseNegatives[i])
		s.F1[i] = 2 * s.Precision[i] * s.Recall[i] / (s.Precision[i] + s.Recall[i])
	}

	tp := floats.Sum(s.TruePositives)
	fp := floats.Sum(s.FalsePositives)
	fn := floats.Sum(s.FalseNegatives)
	s.PrecisionOverall = tp / (tp + fp)
	s.RecallOverall = tp / (tp + fn)
	s.F1Overall = 2 * s.PrecisionOverall * s.RecallOverall / (s.PrecisionOverall + s.RecallOverall)
	return s, true
}

func (r *Report) timePointRange(categories ...Category) (core.TimePoint, core.TimePoint, bool) {
	var first, last core.TimePoint
	found := false
	for _, category := range categories {
		for _, entry := range r.entries[category] {
			if !found || entry.Position.T < first {
				first = entry.Position.T
			}
			if !found || entry.Position.T > last {
				last = entry.Position.T
			}
			found = true
		}
	}
	return first, last, found
}
