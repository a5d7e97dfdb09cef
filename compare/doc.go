// Package compare diffs two independently produced link graphs over
// the same position set, ground truth against candidate. The result is
// a structured report, not a single scalar: a missed division is a
// qualitatively different failure than excess drift, and collapsing
// them into one number hides exactly the information a tracking
// pipeline needs to improve.
//
// CompareLinks aligns the lineage starts of both graphs greedily, then
// walks every aligned lineage pair in lock-step, classifying each step
// into fixed categories. Per-category counts can be turned into
// per-time-point precision, recall and F1 with Report.Statistics.
package compare
