package linkgraph

import "errors"

// Sentinel errors for link graph operations.
var (
	// ErrSameTimePoint indicates an edge between two positions in the
	// same time point, which the model forbids.
	ErrSameTimePoint = errors.New("linkgraph: edge endpoints share a time point")

	// ErrPositionNotFound indicates an operation referenced a position
	// that is not part of the graph.
	ErrPositionNotFound = errors.New("linkgraph: position not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("linkgraph: edge not found")
)

// NodeID identifies a node within one Graph. IDs are assigned densely
// in insertion order and stay valid for the lifetime of the graph.
type NodeID uint32

// Severity classifies an ErrorTag.
type Severity int

const (
	// SeverityNone is the severity of TagNone.
	SeverityNone Severity = iota

	// SeverityWarning marks anomalies that are suspicious but possible.
	SeverityWarning

	// SeverityError marks topological or biological impossibilities.
	SeverityError
)

// ErrorTag is the single-slot anomaly annotation a node can carry.
// Tags are data, not errors: they are surfaced to downstream reports
// and never halt processing.
type ErrorTag int

const (
	// TagNone means no anomaly was found.
	TagNone ErrorTag = iota

	// TagTooManyDaughters: a node with more than two future links.
	TagTooManyDaughters

	// TagNoFuturePosition: the cell vanishes before the last time point
	// without an end marker.
	TagNoFuturePosition

	// TagLowMotherScore: a division whose mother score is below the
	// plausibility threshold.
	TagLowMotherScore

	// TagYoungMother: a cell dividing again too soon after its previous
	// division.
	TagYoungMother

	// TagNoPastPosition: the cell appears out of nowhere after the first
	// time point without a start marker.
	TagNoPastPosition

	// TagCellMerge: a node with two or more preferred past links. One
	// cell cannot result from two.
	TagCellMerge

	// TagShrunkALot: the cell lost more than two thirds of its volume in
	// one step without dividing.
	TagShrunkALot

	// TagMovedTooFast: the cell moved further than the distance
	// threshold in one step and is not marked as dying.
	TagMovedTooFast

	// TagUncertainMother: two nearby candidate mothers scored too close
	// together for the resolver to decide between them.
	TagUncertainMother

	// TagWrongDaughters: a better daughter pair existed but the margin
	// was too small to swap automatically.
	TagWrongDaughters
)

// Severity returns the severity class of the tag.
func (t ErrorTag) Severity() Severity {
	switch t {
	case TagNone:
		return SeverityNone
	case TagTooManyDaughters, TagYoungMother, TagNoPastPosition, TagCellMerge:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// String implements fmt.Stringer.
func (t ErrorTag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagTooManyDaughters:
		return "too-many-daughter-cells"
	case TagNoFuturePosition:
		return "no-future-position"
	case TagLowMotherScore:
		return "low-mother-score"
	case TagYoungMother:
		return "young-mother"
	case TagNoPastPosition:
		return "no-past-position"
	case TagCellMerge:
		return "cell-merge"
	case TagShrunkALot:
		return "shrunk-a-lot"
	case TagMovedTooFast:
		return "moved-too-fast"
	case TagUncertainMother:
		return "uncertain-mother"
	case TagWrongDaughters:
		return "potentially-wrong-daughters"
	default:
		return "unknown"
	}
}

// StartMark records why a track legitimately starts at a node. Set by
// external tooling (or a human curator), read by the consistency
// annotator.
type StartMark int

const (
	// StartNone: no explicit start marker.
	StartNone StartMark = iota

	// StartGoesIntoView: the cell moved into the imaged volume.
	StartGoesIntoView
)

// EndMark records why a track legitimately ends at a node. The dead and
// shed variants suppress the fast-movement check, since dying cells are
// often launched out of the tissue.
type EndMark int

const (
	// EndNone: no explicit end marker.
	EndNone EndMark = iota

	// EndDead: the cell died in view.
	EndDead

	// EndShed: the cell was shed into the lumen.
	EndShed

	// EndOutOfView: the cell left the imaged volume.
	EndOutOfView
)

// Edge is one link between two positions, reported with the earlier
// position first.
type Edge struct {
	Past      NodeID
	Future    NodeID
	Preferred bool
}
