package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
)

// Sentinel errors for snapshot handling.
var (
	// ErrBadVersion indicates a snapshot written by an incompatible
	// format revision.
	ErrBadVersion = errors.New("persist: unsupported snapshot version")

	// ErrBadEdge indicates an edge record referencing a position index
	// outside the snapshot.
	ErrBadEdge = errors.New("persist: edge references a position outside the snapshot")
)

// snapshotVersion is stamped into every file; Load rejects others.
const snapshotVersion = 1

// PositionRecord is one saved position. The index of a record doubles
// as its identifier in EdgeRecord.
type PositionRecord struct {
	X float64        `json:"x"`
	Y float64        `json:"y"`
	Z float64        `json:"z"`
	T core.TimePoint `json:"t"`

	// VolumePx3 is the fitted shape volume in pixel³, nil when the
	// detector fitted no shape here.
	VolumePx3 *float64 `json:"volume_px3,omitempty"`

	Tag       linkgraph.ErrorTag  `json:"tag,omitempty"`
	StartMark linkgraph.StartMark `json:"start_mark,omitempty"`
	EndMark   linkgraph.EndMark   `json:"end_mark,omitempty"`
}

// EdgeRecord is one saved link, by position index, earlier side first.
type EdgeRecord struct {
	Past      int  `json:"past"`
	Future    int  `json:"future"`
	Preferred bool `json:"preferred,omitempty"`
}

// Snapshot is the complete saved linking state of one experiment.
type Snapshot struct {
	Version    int              `json:"version"`
	Resolution core.Resolution  `json:"resolution"`
	Positions  []PositionRecord `json:"positions"`
	Edges      []EdgeRecord     `json:"edges"`
}

// FromGraph captures the graph, its shapes and the dataset resolution
// into a snapshot. shapes may be nil when no shapes are known.
func FromGraph(graph *linkgraph.Graph, shapes core.ShapeSource, resolution core.Resolution) *Snapshot {
	s := &Snapshot{Version: snapshotVersion, Resolution: resolution}

	// 1) Positions in node order, so edge records can use plain indexes.
	for _, pos := range graph.Positions() {
		record := PositionRecord{
			X: pos.X, Y: pos.Y, Z: pos.Z, T: pos.T,
			Tag:       graph.ErrorTagOf(pos),
			StartMark: graph.StartMarkOf(pos),
			EndMark:   graph.EndMarkOf(pos),
		}
		if shapes != nil {
			if shape := shapes.Shape(pos); !shape.IsUnknown() {
				volume := shape.Volume()
				record.VolumePx3 = &volume
			}
		}
		s.Positions = append(s.Positions, record)
	}

	// 2) Edges by node id, which equals the position index above.
	for _, edge := range graph.Edges() {
		s.Edges = append(s.Edges, EdgeRecord{
			Past:      int(edge.Past),
			Future:    int(edge.Future),
			Preferred: edge.Preferred,
		})
	}
	return s
}

// Graph rebuilds the link graph described by the snapshot.
func (s *Snapshot) Graph() (*linkgraph.Graph, error) {
	g := linkgraph.New()

	positions := make([]core.Position, len(s.Positions))
	for i, record := range s.Positions {
		pos := core.At(record.X, record.Y, record.Z, record.T)
		positions[i] = pos
		if _, err := g.AddPosition(pos); err != nil {
			return nil, fmt.Errorf("persist: position %d: %w", i, err)
		}
		if record.Tag != linkgraph.TagNone {
			if err := g.SetErrorTag(pos, record.Tag); err != nil {
				return nil, fmt.Errorf("persist: position %d: %w", i, err)
			}
		}
		if record.StartMark != linkgraph.StartNone {
			if err := g.SetStartMark(pos, record.StartMark); err != nil {
				return nil, fmt.Errorf("persist: position %d: %w", i, err)
			}
		}
		if record.EndMark != linkgraph.EndNone {
			if err := g.SetEndMark(pos, record.EndMark); err != nil {
				return nil, fmt.Errorf("persist: position %d: %w", i, err)
			}
		}
	}

	for _, edge := range s.Edges {
		if edge.Past < 0 || edge.Past >= len(positions) ||
			edge.Future < 0 || edge.Future >= len(positions) {
			return nil, fmt.Errorf("%w: %d-%d of %d positions",
				ErrBadEdge, edge.Past, edge.Future, len(positions))
		}
		if err := g.AddEdge(positions[edge.Past], positions[edge.Future], edge.Preferred); err != nil {
			return nil, fmt.Errorf("persist: edge %d-%d: %w", edge.Past, edge.Future, err)
		}
	}
	return g, nil
}

// Shapes rebuilds the shape map of the snapshot. Positions saved
// without a volume are simply absent, so the map reports UnknownShape
// for them.
func (s *Snapshot) Shapes() *core.ShapeMap {
	m := core.NewShapeMap()
	for _, record := range s.Positions {
		if record.VolumePx3 == nil {
			continue
		}
		m.Set(core.At(record.X, record.Y, record.Z, record.T),
			core.VolumeShape{VolumePx3: *record.VolumePx3})
	}
	return m
}

// Save writes the snapshot to w as zstd-compressed JSON.
func Save(w io.Writer, s *Snapshot) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("persist: open compressor: %w", err)
	}
	stamped := *s
	stamped.Version = snapshotVersion
	if err := json.NewEncoder(zw).Encode(&stamped); err != nil {
		zw.Close()
		return fmt.Errorf("persist: encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("persist: flush compressor: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(r io.Reader) (*Snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("persist: open decompressor: %w", err)
	}
	defer zr.Close()

	var s Snapshot
	if err := json.NewDecoder(zr).Decode(&s); err != nil {
		return nil, fmt.Errorf("persist: decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadVersion, s.Version, snapshotVersion)
	}
	return &s, nil
}
