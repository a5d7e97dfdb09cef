package core

import "math"

// Shape is the contract an external detection source fulfils for each
// position: an estimated volume in pixel³ and whether the detector was
// able to fit a shape at all.
type Shape interface {
	// Volume returns the shape volume in pixel³.
	Volume() float64

	// IsUnknown reports whether the detector failed to fit a shape here.
	// Checks that need a volume must be skipped for unknown shapes.
	IsUnknown() bool
}

// UnknownShape is the shape of a position the detector could not fit.
type UnknownShape struct{}

// Volume returns 0; unknown shapes have no usable volume.
func (UnknownShape) Volume() float64 { return 0 }

// IsUnknown always reports true.
func (UnknownShape) IsUnknown() bool { return true }

// SphereShape approximates a cell as a sphere with the given radius in
// pixels. Mostly useful for tests and synthetic data.
type SphereShape struct {
	Radius float64
}

// Volume returns the sphere volume in pixel³.
func (s SphereShape) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

// IsUnknown always reports false.
func (SphereShape) IsUnknown() bool { return false }

// VolumeShape is a shape known only by its volume, as restored from a
// saved snapshot or reported by a detector without a geometric model.
type VolumeShape struct {
	VolumePx3 float64
}

// Volume returns the stored volume in pixel³.
func (s VolumeShape) Volume() float64 { return s.VolumePx3 }

// IsUnknown always reports false.
func (VolumeShape) IsUnknown() bool { return false }

// ShapeSource resolves the shape fitted at a position. Implementations
// must return UnknownShape{} rather than nil when no shape is known.
type ShapeSource interface {
	Shape(pos Position) Shape
}

// ShapeMap is a ShapeSource backed by a map. The zero value is not
// usable; use NewShapeMap.
type ShapeMap struct {
	shapes map[Key]Shape
}

// NewShapeMap returns an empty shape map.
func NewShapeMap() *ShapeMap {
	return &ShapeMap{shapes: make(map[Key]Shape)}
}

// Set records the shape fitted at pos.
func (m *ShapeMap) Set(pos Position, shape Shape) {
	m.shapes[pos.Key()] = shape
}

// Shape returns the recorded shape, or UnknownShape{} when absent.
func (m *ShapeMap) Shape(pos Position) Shape {
	if s, ok := m.shapes[pos.Key()]; ok {
		return s
	}
	return UnknownShape{}
}
