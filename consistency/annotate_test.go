package consistency_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avisser/celltrack/consistency"
	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
	"github.com/avisser/celltrack/scoring"
)

func isotropic(t *testing.T) core.Resolution {
	t.Helper()
	resolution, err := core.IsotropicResolution(1, 10)
	require.NoError(t, err)
	return resolution
}

func annotate(t *testing.T, g *linkgraph.Graph, shapes core.ShapeSource, scores *scoring.Collection) {
	t.Helper()
	if shapes == nil {
		shapes = core.NewShapeMap()
	}
	if scores == nil {
		scores = scoring.NewCollection()
	}
	require.NoError(t, consistency.Annotate(g, shapes, scores, isotropic(t), nil))
}

func link(t *testing.T, g *linkgraph.Graph, pairs ...[2]core.Position) {
	t.Helper()
	for _, pair := range pairs {
		require.NoError(t, g.AddEdge(pair[0], pair[1], true))
	}
}

func TestTooManyDaughters(t *testing.T) {
	m := core.At(0, 0, 0, 1)
	g := linkgraph.New()
	link(t, g,
		[2]core.Position{m, core.At(0, 0, 0, 2)},
		[2]core.Position{m, core.At(1, 0, 0, 2)},
		[2]core.Position{m, core.At(2, 0, 0, 2)})

	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagTooManyDaughters, g.ErrorTagOf(m))
}

func TestNoFuturePosition(t *testing.T) {
	a := core.At(0, 0, 0, 1)
	b := core.At(1, 0, 0, 2)
	c := core.At(5, 5, 0, 1) // dead end at time point 1
	g := linkgraph.New()
	link(t, g, [2]core.Position{a, b})
	_, err := g.AddPosition(c)
	require.NoError(t, err)

	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagNoFuturePosition, g.ErrorTagOf(c))
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(b), "the last time point ends every track")

	// An end marker explains the dead end.
	require.NoError(t, g.SetEndMark(c, linkgraph.EndDead))
	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(c))
}

func TestNoPastPosition(t *testing.T) {
	a := core.At(0, 0, 0, 1)
	b := core.At(1, 0, 0, 2)
	x := core.At(5, 5, 0, 2) // pops up mid-experiment
	g := linkgraph.New()
	link(t, g, [2]core.Position{a, b})
	_, err := g.AddPosition(x)
	require.NoError(t, err)

	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagNoPastPosition, g.ErrorTagOf(x))
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(a), "the first time point starts every track")

	// A start marker explains the appearance.
	require.NoError(t, g.SetStartMark(x, linkgraph.StartGoesIntoView))
	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(x))
}

func TestCellMergeExactlyOnTwoPasts(t *testing.T) {
	a1 := core.At(0, 0, 0, 1)
	a2 := core.At(2, 0, 0, 1)
	b := core.At(1, 0, 0, 2)
	g := linkgraph.New()
	link(t, g, [2]core.Position{a1, b}, [2]core.Position{a2, b})

	annotate(t, g, nil, nil)
	for _, pos := range g.Positions() {
		if len(g.Pasts(pos)) >= 2 {
			require.Equal(t, linkgraph.TagCellMerge, g.ErrorTagOf(pos))
		} else {
			require.NotEqual(t, linkgraph.TagCellMerge, g.ErrorTagOf(pos))
		}
	}
}

func TestLowMotherScore(t *testing.T) {
	m := core.At(0, 0, 0, 1)
	d1 := core.At(1, 0, 0, 2)
	d2 := core.At(-1, 0, 0, 2)
	g := linkgraph.New()
	link(t, g, [2]core.Position{m, d1}, [2]core.Position{m, d2})

	family, err := scoring.NewFamily(m, d1, d2)
	require.NoError(t, err)

	// An unlikely score fires the warning.
	scores := scoring.NewCollection()
	scores.Set(family, scoring.NewScore(map[string]float64{"total": 2}))
	annotate(t, g, nil, scores)
	require.Equal(t, linkgraph.TagLowMotherScore, g.ErrorTagOf(m))

	// So does a scored experiment where this family was never scored.
	other := core.At(10, 0, 0, 1)
	otherFamily, err := scoring.NewFamily(other, core.At(10, 1, 0, 2), core.At(10, -1, 0, 2))
	require.NoError(t, err)
	scores = scoring.NewCollection()
	scores.Set(otherFamily, scoring.NewScore(map[string]float64{"total": 9}))
	annotate(t, g, nil, scores)
	require.Equal(t, linkgraph.TagLowMotherScore, g.ErrorTagOf(m))

	// A likely score clears it; without any scores the check skips.
	scores = scoring.NewCollection()
	scores.Set(family, scoring.NewScore(map[string]float64{"total": 9}))
	annotate(t, g, nil, scores)
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(m))

	annotate(t, g, nil, scoring.NewCollection())
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(m))
}

func TestYoungMother(t *testing.T) {
	// g divides at time point 1; a divides again one step later.
	grandmother := core.At(0, 0, 0, 1)
	a := core.At(1, 0, 0, 2)
	b := core.At(-1, 0, 0, 2)
	c := core.At(2, 0, 0, 3)
	d := core.At(0, 0, 0, 3)
	g := linkgraph.New()
	link(t, g,
		[2]core.Position{grandmother, a},
		[2]core.Position{grandmother, b},
		[2]core.Position{a, c},
		[2]core.Position{a, d})

	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagYoungMother, g.ErrorTagOf(a))
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(grandmother),
		"age of a first-time mother is unknown, not young")
}

func TestMotherOldEnoughIsClean(t *testing.T) {
	// Division, then a 5 step track, then a second division.
	g := linkgraph.New()
	mother := core.At(0, 0, 0, 1)
	link(t, g,
		[2]core.Position{mother, core.At(1, 0, 0, 2)},
		[2]core.Position{mother, core.At(-1, 0, 0, 2)})
	chain := []core.Position{core.At(1, 0, 0, 2)}
	for i := 3; i <= 7; i++ {
		next := core.At(1, 0, 0, core.TimePoint(i))
		link(t, g, [2]core.Position{chain[len(chain)-1], next})
		chain = append(chain, next)
	}
	last := chain[len(chain)-1] // age 5 at time point 7
	link(t, g,
		[2]core.Position{last, core.At(2, 0, 0, 8)},
		[2]core.Position{last, core.At(0, 0, 0, 8)})

	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(last))
}

func TestShrunkALot(t *testing.T) {
	parent := core.At(0, 0, 0, 1)
	child := core.At(1, 0, 0, 2)
	g := linkgraph.New()
	link(t, g, [2]core.Position{parent, child})

	shapes := core.NewShapeMap()
	shapes.Set(parent, core.SphereShape{Radius: 3})
	shapes.Set(child, core.SphereShape{Radius: 2}) // volume ratio 3.375

	annotate(t, g, shapes, nil)
	require.Equal(t, linkgraph.TagShrunkALot, g.ErrorTagOf(child))

	// Unknown shapes give insufficient evidence.
	annotate(t, g, core.NewShapeMap(), nil)
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(child))
}

func TestShrinkAllowedAfterDivision(t *testing.T) {
	mother := core.At(0, 0, 0, 1)
	d1 := core.At(1, 0, 0, 2)
	d2 := core.At(-1, 0, 0, 2)
	g := linkgraph.New()
	link(t, g, [2]core.Position{mother, d1}, [2]core.Position{mother, d2})

	shapes := core.NewShapeMap()
	shapes.Set(mother, core.SphereShape{Radius: 3})
	shapes.Set(d1, core.SphereShape{Radius: 2})
	shapes.Set(d2, core.SphereShape{Radius: 2})

	annotate(t, g, shapes, nil)
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(d1))
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(d2))
}

func TestMovedTooFast(t *testing.T) {
	parent := core.At(0, 0, 0, 1)
	child := core.At(11, 0, 0, 2) // 11 um at 1 um/px
	g := linkgraph.New()
	link(t, g, [2]core.Position{parent, child})

	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagMovedTooFast, g.ErrorTagOf(child))

	// Shed cells are launched out fast; that movement is real.
	require.NoError(t, g.SetEndMark(child, linkgraph.EndShed))
	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagNone, g.ErrorTagOf(child))
}

func TestMostSevereTagWins(t *testing.T) {
	// b merges (past-side error) and also dead-ends mid-experiment
	// (future-side warning): the error wins.
	a1 := core.At(0, 0, 0, 1)
	a2 := core.At(2, 0, 0, 1)
	b := core.At(1, 0, 0, 2)
	far := core.At(50, 50, 0, 2)
	c := core.At(50, 50, 0, 3)
	g := linkgraph.New()
	link(t, g, [2]core.Position{a1, b}, [2]core.Position{a2, b}, [2]core.Position{far, c})

	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagCellMerge, g.ErrorTagOf(b))
}

func TestWarningTieKeepsFutureSide(t *testing.T) {
	// d moved too fast (past-side warning) and dead-ends (future-side
	// warning): the future-side tag is kept.
	parent := core.At(0, 0, 0, 1)
	d := core.At(11, 0, 0, 2)
	far := core.At(50, 50, 0, 2)
	c := core.At(50, 50, 0, 3)
	g := linkgraph.New()
	link(t, g, [2]core.Position{parent, d}, [2]core.Position{far, c})

	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagNoFuturePosition, g.ErrorTagOf(d))
}

func TestAnnotateIsIdempotent(t *testing.T) {
	a1 := core.At(0, 0, 0, 1)
	a2 := core.At(2, 0, 0, 1)
	b := core.At(1, 0, 0, 2)
	g := linkgraph.New()
	link(t, g, [2]core.Position{a1, b}, [2]core.Position{a2, b})

	annotate(t, g, nil, nil)
	first := map[core.Key]linkgraph.ErrorTag{}
	for _, pos := range g.Positions() {
		first[pos.Key()] = g.ErrorTagOf(pos)
	}
	annotate(t, g, nil, nil)
	for _, pos := range g.Positions() {
		require.Equal(t, first[pos.Key()], g.ErrorTagOf(pos))
	}
}

func TestResolverReviewTagsSurvive(t *testing.T) {
	a := core.At(0, 0, 0, 1)
	b := core.At(1, 0, 0, 2)
	g := linkgraph.New()
	link(t, g, [2]core.Position{a, b})
	require.NoError(t, g.SetErrorTag(a, linkgraph.TagUncertainMother))

	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagUncertainMother, g.ErrorTagOf(a),
		"no rule fired for a, the review tag stays")

	// When a rule does fire, it takes precedence.
	require.NoError(t, g.SetErrorTag(b, linkgraph.TagWrongDaughters))
	require.NoError(t, g.RemoveEdge(a, b))
	annotate(t, g, nil, nil)
	require.Equal(t, linkgraph.TagNoPastPosition, g.ErrorTagOf(b))
}
