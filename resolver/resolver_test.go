package resolver_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
	"github.com/avisser/celltrack/resolver"
	"github.com/avisser/celltrack/scoring"
)

// mapSystem scores exactly the families it knows and has no opinion on
// anything else.
type mapSystem map[scoring.FamilyKey]float64

func (m mapSystem) Calculate(_ core.ShapeSource, family scoring.Family) (scoring.Score, bool) {
	total, ok := m[family.Key()]
	if !ok {
		return scoring.Score{}, false
	}
	return scoring.NewScore(map[string]float64{"fixed": total}), true
}

func family(t *testing.T, mother, d1, d2 core.Position) scoring.Family {
	t.Helper()
	f, err := scoring.NewFamily(mother, d1, d2)
	require.NoError(t, err)
	return f
}

func addEdges(t *testing.T, g *linkgraph.Graph, edges ...[3]interface{}) {
	t.Helper()
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0].(core.Position), e[1].(core.Position), e[2].(bool)))
	}
}

func TestBadPassesRejected(t *testing.T) {
	_, _, err := resolver.Resolve(linkgraph.New(), core.NewShapeMap(), scoring.NoOpinionSystem{},
		&resolver.Options{Passes: -1})
	require.True(t, errors.Is(err, resolver.ErrBadPasses))

	// Zero is not an error; it selects the default pass count.
	_, _, err = resolver.Resolve(linkgraph.New(), core.NewShapeMap(), scoring.NoOpinionSystem{},
		&resolver.Options{Passes: 0})
	require.NoError(t, err)
}

func TestScoreFamiliesSkipsNoOpinion(t *testing.T) {
	mother := core.At(0, 0, 0, 1)
	d1 := core.At(0, 1, 0, 2)
	d2 := core.At(1, 0, 0, 2)
	g := linkgraph.New()
	addEdges(t, g, [3]interface{}{mother, d1, true}, [3]interface{}{mother, d2, false})

	scores := resolver.ScoreFamilies(g, core.NewShapeMap(), scoring.NoOpinionSystem{})
	require.False(t, scores.HasScores())

	scores = resolver.ScoreFamilies(g, core.NewShapeMap(), scoring.NewFixedSystem())
	_, ok := scores.OfFamily(family(t, mother, d1, d2))
	require.True(t, ok)
}

func TestReviveDeadEnd(t *testing.T) {
	// a has no preferred future; its only candidate b currently belongs
	// to c, who also keeps d and can afford the loss.
	c := core.At(0, 0, 0, 1)
	a := core.At(5, 0, 0, 1)
	b := core.At(0, 0, 0, 2)
	d := core.At(1, 0, 0, 2)
	g := linkgraph.New()
	addEdges(t, g,
		[3]interface{}{c, b, true},
		[3]interface{}{c, d, true},
		[3]interface{}{a, b, false})

	resolved, _, err := resolver.Resolve(g, core.NewShapeMap(), scoring.NoOpinionSystem{}, nil)
	require.NoError(t, err)

	require.Equal(t, []core.Position{b}, resolved.Futures(a))
	require.Equal(t, []core.Position{d}, resolved.Futures(c))
	require.Equal(t, []core.Position{a}, resolved.Pasts(b))
}

func TestReviveRefusesToKillMother(t *testing.T) {
	// b is c's only future, so stealing it would leave c dead. The
	// repair must leave the graph unchanged.
	c := core.At(0, 0, 0, 1)
	a := core.At(5, 0, 0, 1)
	b := core.At(0, 0, 0, 2)
	g := linkgraph.New()
	addEdges(t, g,
		[3]interface{}{c, b, true},
		[3]interface{}{a, b, false})

	resolved, _, err := resolver.Resolve(g, core.NewShapeMap(), scoring.NoOpinionSystem{}, nil)
	require.NoError(t, err)

	require.Empty(t, resolved.Futures(a))
	require.Equal(t, []core.Position{b}, resolved.Futures(c))
}

func TestMotherStealsDaughterFromWorseMother(t *testing.T) {
	m1 := core.At(0, 0, 0, 1)
	m2 := core.At(10, 0, 0, 1)
	d1 := core.At(0, 1, 0, 2)
	d2 := core.At(5, 0, 0, 2)
	f := core.At(10, 1, 0, 2)
	g := linkgraph.New()
	addEdges(t, g,
		[3]interface{}{m1, d1, true},
		[3]interface{}{m1, d2, true},
		[3]interface{}{m2, f, true},
		[3]interface{}{m2, d2, false})

	system := mapSystem{
		family(t, m2, f, d2).Key():  10,
		family(t, m1, d1, d2).Key(): -10,
	}
	resolved, scores, err := resolver.Resolve(g, core.NewShapeMap(), system, nil)
	require.NoError(t, err)
	require.True(t, scores.HasScores())

	require.ElementsMatch(t, []core.Position{f, d2}, resolved.Futures(m2))
	require.Equal(t, []core.Position{d1}, resolved.Futures(m1))
	require.Empty(t, resolved.TaggedPositions(), "a 20 point margin is not uncertain")
}

func TestEqualMothersGetUncertainTag(t *testing.T) {
	m1 := core.At(0, 0, 0, 1)
	m2 := core.At(10, 0, 0, 1)
	d1 := core.At(0, 1, 0, 2)
	d2 := core.At(5, 0, 0, 2)
	f := core.At(10, 1, 0, 2)
	g := linkgraph.New()
	addEdges(t, g,
		[3]interface{}{m1, d1, true},
		[3]interface{}{m1, d2, true},
		[3]interface{}{m2, f, true},
		[3]interface{}{m2, d2, false})

	system := mapSystem{
		family(t, m2, f, d2).Key():  4,
		family(t, m1, d1, d2).Key(): 3,
	}
	resolved, _, err := resolver.Resolve(g, core.NewShapeMap(), system, nil)
	require.NoError(t, err)

	// Scores 4 vs 3: the higher scorer still wins the daughter, but
	// the margin is too small to trust, so the new mother is tagged.
	require.ElementsMatch(t, []core.Position{f, d2}, resolved.Futures(m2))
	require.Equal(t, []core.Position{d1}, resolved.Futures(m1))
	require.Equal(t, linkgraph.TagUncertainMother, resolved.ErrorTagOf(m2))
}

func TestDaughterSwap(t *testing.T) {
	m := core.At(0, 0, 0, 1)
	p := core.At(10, 0, 0, 1)
	dA := core.At(0, 0, 0, 2)
	dB := core.At(4, 0, 0, 2)
	dC := core.At(6, 0, 0, 2)
	g := linkgraph.New()
	addEdges(t, g,
		[3]interface{}{m, dA, true},
		[3]interface{}{m, dB, true},
		[3]interface{}{m, dC, false},
		[3]interface{}{p, dC, true})

	system := mapSystem{
		family(t, m, dA, dB).Key(): 3,
		family(t, m, dA, dC).Key(): 8, // 8/3 clears the 4/3 bar
	}
	resolved, _, err := resolver.Resolve(g, core.NewShapeMap(), system, nil)
	require.NoError(t, err)

	require.ElementsMatch(t, []core.Position{dA, dC}, resolved.Futures(m))
	require.Equal(t, []core.Position{dB}, resolved.Futures(p), "old mother gets the discarded daughter")
	require.Equal(t, linkgraph.TagWrongDaughters, resolved.ErrorTagOf(m))
}

func TestDaughterSwapIgnoresNegativeScores(t *testing.T) {
	// Volume scoring can put whole families below zero. A ratio bar
	// makes no sense there: a marginally less bad pair must only be
	// flagged for review, never swapped in.
	m := core.At(0, 0, 0, 1)
	p := core.At(10, 0, 0, 1)
	dA := core.At(0, 0, 0, 2)
	dB := core.At(4, 0, 0, 2)
	dC := core.At(6, 0, 0, 2)
	g := linkgraph.New()
	addEdges(t, g,
		[3]interface{}{m, dA, true},
		[3]interface{}{m, dB, true},
		[3]interface{}{m, dC, false},
		[3]interface{}{p, dC, true})

	system := mapSystem{
		family(t, m, dA, dB).Key(): -3,
		family(t, m, dA, dC).Key(): -2.9,
	}
	resolved, _, err := resolver.Resolve(g, core.NewShapeMap(), system, nil)
	require.NoError(t, err)

	require.ElementsMatch(t, []core.Position{dA, dB}, resolved.Futures(m))
	require.Equal(t, []core.Position{dC}, resolved.Futures(p))
	require.Equal(t, linkgraph.TagWrongDaughters, resolved.ErrorTagOf(m))
}

func TestDaughterSwapBelowBarOnlyTags(t *testing.T) {
	m := core.At(0, 0, 0, 1)
	p := core.At(10, 0, 0, 1)
	dA := core.At(0, 0, 0, 2)
	dB := core.At(4, 0, 0, 2)
	dC := core.At(6, 0, 0, 2)
	g := linkgraph.New()
	addEdges(t, g,
		[3]interface{}{m, dA, true},
		[3]interface{}{m, dB, true},
		[3]interface{}{m, dC, false},
		[3]interface{}{p, dC, true})

	system := mapSystem{
		family(t, m, dA, dB).Key(): 6,
		family(t, m, dA, dC).Key(): 7, // better, but 7/6 < 4/3
	}
	resolved, _, err := resolver.Resolve(g, core.NewShapeMap(), system, nil)
	require.NoError(t, err)

	require.ElementsMatch(t, []core.Position{dA, dB}, resolved.Futures(m))
	require.Equal(t, linkgraph.TagWrongDaughters, resolved.ErrorTagOf(m))
}

func TestResolveIsStable(t *testing.T) {
	// Resolving an already-resolved graph changes nothing: without
	// non-preferred candidates there is nothing left to repair.
	c := core.At(0, 0, 0, 1)
	a := core.At(5, 0, 0, 1)
	b := core.At(0, 0, 0, 2)
	d := core.At(1, 0, 0, 2)
	g := linkgraph.New()
	addEdges(t, g,
		[3]interface{}{c, b, true},
		[3]interface{}{c, d, true},
		[3]interface{}{a, b, false})

	first, _, err := resolver.Resolve(g, core.NewShapeMap(), scoring.NoOpinionSystem{}, nil)
	require.NoError(t, err)
	second, _, err := resolver.Resolve(first, core.NewShapeMap(), scoring.NoOpinionSystem{}, nil)
	require.NoError(t, err)

	require.Equal(t, first.NodeCount(), second.NodeCount())
	require.ElementsMatch(t, first.Edges(), second.Edges())
}

func TestInputGraphUntouched(t *testing.T) {
	c := core.At(0, 0, 0, 1)
	a := core.At(5, 0, 0, 1)
	b := core.At(0, 0, 0, 2)
	d := core.At(1, 0, 0, 2)
	g := linkgraph.New()
	addEdges(t, g,
		[3]interface{}{c, b, true},
		[3]interface{}{c, d, true},
		[3]interface{}{a, b, false})

	_, _, err := resolver.Resolve(g, core.NewShapeMap(), scoring.NoOpinionSystem{}, nil)
	require.NoError(t, err)

	preferred, err := g.IsPreferred(c, b)
	require.NoError(t, err)
	require.True(t, preferred, "input keeps its original flags")
	require.Equal(t, 3, g.EdgeCount())
}
