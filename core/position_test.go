package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avisser/celltrack/core"
)

func TestPositionEquality(t *testing.T) {
	a := core.At(10, 20, 3, 5)
	b := core.At(10.005, 19.996, 3, 5)
	require.True(t, a.Equal(b), "coordinates within 0.01 px are the same detection")

	c := core.At(10.5, 20, 3, 5)
	require.False(t, a.Equal(c), "half a pixel apart is a different detection")

	d := core.At(10, 20, 3, 6)
	require.False(t, a.Equal(d), "same place, different time point")
}

func TestPositionKeyRoundsCoordinates(t *testing.T) {
	a := core.At(10.001, 20, 3, 5)
	b := core.At(10.002, 20, 3, 5)
	require.Equal(t, a.Key(), b.Key(), "sub-tolerance jitter maps to the same key")

	c := core.At(10.1, 20, 3, 5)
	require.NotEqual(t, a.Key(), c.Key())
}

func TestAttachTimePoint(t *testing.T) {
	p := core.NewPosition(1, 2, 3)
	require.False(t, p.HasTimePoint())

	placed, err := p.AttachTimePoint(7)
	require.NoError(t, err)
	require.Equal(t, core.TimePoint(7), placed.T)

	// Attaching the same time point again is fine.
	same, err := placed.AttachTimePoint(7)
	require.NoError(t, err)
	require.Equal(t, placed, same)

	// Reassignment is a contract violation.
	_, err = placed.AttachTimePoint(8)
	require.True(t, errors.Is(err, core.ErrTimePointMismatch))
}

func TestDistanceSquaredPixelsWeighsZ(t *testing.T) {
	a := core.At(0, 0, 0, 1)
	b := core.At(0, 0, 2, 1)
	require.InDelta(t, 36.0, a.DistanceSquaredPixels(b, core.DefaultZFactor), 1e-9,
		"dz=2 with factor 3 counts as 6 pixels")

	c := core.At(3, 4, 0, 1)
	require.InDelta(t, 25.0, a.DistanceSquaredPixels(c, core.DefaultZFactor), 1e-9)
}

func TestDistanceUm(t *testing.T) {
	res, err := core.NewResolution(2.0, 0.5, 0.5, 12)
	require.NoError(t, err)

	a := core.At(0, 0, 0, 1)
	b := core.At(4, 0, 1, 1) // 2 µm in x, 2 µm in z
	require.InDelta(t, 8.0, a.DistanceSquaredUm(b, res), 1e-9)
	require.InDelta(t, 2.8284271, a.DistanceUm(b, res), 1e-6)
}

func TestBadResolution(t *testing.T) {
	_, err := core.NewResolution(0, 1, 1, 1)
	require.True(t, errors.Is(err, core.ErrBadResolution))
	_, err = core.NewResolution(1, 1, 1, -5)
	require.True(t, errors.Is(err, core.ErrBadResolution))
}

func TestInterpolate(t *testing.T) {
	a := core.At(0, 0, 0, 2)
	b := core.At(3, 6, 0, 5)

	chain, err := a.Interpolate(b)
	require.NoError(t, err)
	require.Len(t, chain, 4)
	require.Equal(t, core.TimePoint(3), chain[1].T)
	require.InDelta(t, 1.0, chain[1].X, 1e-9)
	require.InDelta(t, 4.0, chain[2].Y, 1e-9)

	// Order of the endpoints does not matter.
	reversed, err := b.Interpolate(a)
	require.NoError(t, err)
	require.Equal(t, chain, reversed)

	_, err = a.Interpolate(core.At(1, 1, 1, 2))
	require.True(t, errors.Is(err, core.ErrSameTimePoint))
}

func TestPositionCollection(t *testing.T) {
	c := core.NewPositionCollection()
	_, ok := c.FirstTimePoint()
	require.False(t, ok, "empty collection has no first time point")

	require.NoError(t, c.Add(core.At(1, 1, 0, 3)))
	require.NoError(t, c.Add(core.At(2, 2, 0, 1)))
	require.NoError(t, c.Add(core.At(3, 3, 0, 1)))

	first, ok := c.FirstTimePoint()
	require.True(t, ok)
	require.Equal(t, core.TimePoint(1), first)
	last, _ := c.LastTimePoint()
	require.Equal(t, core.TimePoint(3), last)

	require.Len(t, c.OfTimePoint(1), 2)
	require.Len(t, c.OfTimePoint(2), 0)
	require.Equal(t, 3, c.Len())
	require.Equal(t, []core.TimePoint{1, 3}, c.TimePoints())

	err := c.Add(core.NewPosition(0, 0, 0))
	require.True(t, errors.Is(err, core.ErrNoTimePoint))
}

func TestShapes(t *testing.T) {
	m := core.NewShapeMap()
	pos := core.At(5, 5, 1, 2)
	require.True(t, m.Shape(pos).IsUnknown(), "missing shape is unknown, never nil")

	m.Set(pos, core.SphereShape{Radius: 3})
	s := m.Shape(pos)
	require.False(t, s.IsUnknown())
	require.InDelta(t, 113.0973355, s.Volume(), 1e-4)
}
