package core

import (
	"fmt"
	"math"
)

// Position is a single detected cell location: 3D coordinates in pixel
// units plus the time point it was detected in. The zero value has all
// coordinates at the origin and no time point.
//
// Positions are values; all "mutating" operations return a new Position.
type Position struct {
	X, Y, Z float64
	T       TimePoint
}

// NewPosition returns a position at the given pixel coordinates with no
// time point assigned.
func NewPosition(x, y, z float64) Position {
	return Position{X: x, Y: y, Z: z, T: TimePointUnset}
}

// At returns a position at the given pixel coordinates and time point.
func At(x, y, z float64, t TimePoint) Position {
	return Position{X: x, Y: y, Z: z, T: t}
}

// HasTimePoint reports whether a time point has been assigned.
func (p Position) HasTimePoint() bool { return p.T != TimePointUnset }

// AttachTimePoint returns a copy of p placed at time point t.
// A position keeps its time point for life: if p already carries a
// different time point, ErrTimePointMismatch is returned.
func (p Position) AttachTimePoint(t TimePoint) (Position, error) {
	if p.HasTimePoint() && p.T != t {
		return Position{}, fmt.Errorf("%w: have %d, got %d", ErrTimePointMismatch, p.T, t)
	}
	p.T = t
	return p, nil
}

// Equal reports whether the two positions denote the same detection:
// the same time point and coordinates within 0.01 px on every axis.
func (p Position) Equal(o Position) bool {
	if p.T != o.T {
		return false
	}
	return math.Abs(p.X-o.X) <= coordinateTolerance &&
		math.Abs(p.Y-o.Y) <= coordinateTolerance &&
		math.Abs(p.Z-o.Z) <= coordinateTolerance
}

// Key is a comparable identity for use as a map key, built from the
// coordinates rounded to 0.01 px and the time point.
type Key struct {
	X, Y, Z int64
	T       TimePoint
}

// Key returns the map-key identity of this position.
func (p Position) Key() Key {
	return Key{
		X: int64(math.Round(p.X / coordinateTolerance)),
		Y: int64(math.Round(p.Y / coordinateTolerance)),
		Z: int64(math.Round(p.Z / coordinateTolerance)),
		T: p.T,
	}
}

// DistanceSquaredPixels returns the squared distance in pixel units,
// with the z difference multiplied by zFactor before squaring. Pass
// DefaultZFactor unless the dataset says otherwise.
func (p Position) DistanceSquaredPixels(o Position, zFactor float64) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := (p.Z - o.Z) * zFactor
	return dx*dx + dy*dy + dz*dz
}

// DistanceSquaredUm returns the squared physical distance in µm².
// Working with squared distances avoids the sqrt call in hot loops.
func (p Position) DistanceSquaredUm(o Position, res Resolution) float64 {
	dx := (p.X - o.X) * res.PixelSizeXUm
	dy := (p.Y - o.Y) * res.PixelSizeYUm
	dz := (p.Z - o.Z) * res.PixelSizeZUm
	return dx*dx + dy*dy + dz*dz
}

// DistanceUm returns the physical distance in micrometers.
func (p Position) DistanceUm(o Position, res Resolution) float64 {
	return math.Sqrt(p.DistanceSquaredUm(o, res))
}

// Sub returns p - o coordinate-wise. The result keeps p's time point.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z, T: p.T}
}

// Add returns p + o coordinate-wise. The result keeps p's time point.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z, T: p.T}
}

// Scale returns p with each coordinate multiplied by f. The time point
// is unaffected.
func (p Position) Scale(f float64) Position {
	return Position{X: p.X * f, Y: p.Y * f, Z: p.Z * f, T: p.T}
}

// Interpolate returns the time-interpolated chain of positions from the
// earlier of p, o to the later one, inclusive. With n time points in
// between, the result has n+2 elements. Returns ErrSameTimePoint if the
// positions share a time point, ErrNoTimePoint if either has none.
func (p Position) Interpolate(o Position) ([]Position, error) {
	if !p.HasTimePoint() || !o.HasTimePoint() {
		return nil, ErrNoTimePoint
	}
	from, to := p, o
	if to.T < from.T {
		from, to = to, from
	}
	deltaT := int(to.T - from.T)
	if deltaT == 0 {
		return nil, ErrSameTimePoint
	}
	out := make([]Position, 0, deltaT+1)
	out = append(out, from)
	for i := 1; i < deltaT; i++ {
		f := float64(i) / float64(deltaT)
		mid := to.Scale(f).Add(from.Scale(1 - f))
		mid.T = from.T + TimePoint(i)
		out = append(out, mid)
	}
	out = append(out, to)
	return out, nil
}

// String implements fmt.Stringer.
func (p Position) String() string {
	if !p.HasTimePoint() {
		return fmt.Sprintf("cell at (%.2f, %.2f, %.2f)", p.X, p.Y, p.Z)
	}
	return fmt.Sprintf("cell at (%.2f, %.2f, %.2f) at time point %d", p.X, p.Y, p.Z, p.T)
}
