package compare

import (
	"fmt"
	"strings"

	"github.com/avisser/celltrack/core"
)

// Category names one qualitative outcome of the comparison.
type Category string

// The fixed categories of a link comparison.
const (
	LineageStartTruePositives  Category = "Correctly detected lineage starts"
	LineageStartFalseNegatives Category = "Missed lineage starts"
	LineageEndTruePositives    Category = "Correctly detected lineage ends"
	LineageEndFalsePositives   Category = "Made up lineage ends"
	LineageEndFalseNegatives   Category = "Missed lineage ends"
	DivisionTruePositives      Category = "Correctly detected cell divisions"
	DivisionFalsePositives     Category = "Made up cell divisions"
	DivisionFalseNegatives     Category = "Missed cell divisions"
	MovementTruePositives      Category = "Correctly detected moving cells"
	MovementDisagreement       Category = "Distance between cells became too large"
)

// maxShownEntries bounds the per-category listing of Report.String.
const maxShownEntries = 15

// Entry is one recorded data point: the ground-truth position it
// concerns and an optional free-form detail.
type Entry struct {
	Position core.Position
	Detail   string
}

// Report collects comparison outcomes per category, keeping insertion
// order of both categories and entries.
type Report struct {
	Title string

	order   []Category
	entries map[Category][]Entry
}

// NewReport returns an empty report.
func NewReport(title string) *Report {
	return &Report{Title: title, entries: make(map[Category][]Entry)}
}

// Add records a data point.
func (r *Report) Add(category Category, pos core.Position, detail string) {
	if _, ok := r.entries[category]; !ok {
		r.order = append(r.order, category)
	}
	r.entries[category] = append(r.entries[category], Entry{Position: pos, Detail: detail})
}

// Count returns the number of entries in the category.
func (r *Report) Count(category Category) int { return len(r.entries[category]) }

// Entries returns the entries of the category in insertion order.
func (r *Report) Entries(category Category) []Entry { return r.entries[category] }

// Categories returns the categories that received data, in first-use
// order.
func (r *Report) Categories() []Category { return r.order }

// String renders the report for a terminal, listing at most
// maxShownEntries positions per category.
func (r *Report) String() string {
	var b strings.Builder
	b.WriteString(r.Title + "\n")
	b.WriteString(strings.Repeat("=", len(r.Title)) + "\n")

	for _, category := range r.order {
		entries := r.entries[category]
		header := fmt.Sprintf("%s: (%d)", category, len(entries))
		b.WriteString("\n" + header + "\n" + strings.Repeat("-", len(header)) + "\n")
		for i, entry := range entries {
			if i >= maxShownEntries {
				fmt.Fprintf(&b, "... %d entries not shown\n", len(entries)-maxShownEntries)
				break
			}
			if entry.Detail != "" {
				fmt.Fprintf(&b, "* %v - %s\n", entry.Position, entry.Detail)
			} else {
				fmt.Fprintf(&b, "* %v\n", entry.Position)
			}
		}
	}
	return b.String()
}
