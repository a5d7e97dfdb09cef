package resolver

import (
	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/linkgraph"
	"github.com/avisser/celltrack/scoring"
)

// ScoreFamilies evaluates every candidate family of the graph: each
// position with at least two future candidates is tried as a mother of
// every pair of them. Families the system has no opinion on are left
// out of the collection.
func ScoreFamilies(graph *linkgraph.Graph, shapes core.ShapeSource, system scoring.System) *scoring.Collection {
	scores := scoring.NewCollection()
	for _, pos := range graph.Positions() {
		futures := graph.Futures(pos)
		if len(futures) < 2 {
			continue
		}
		for i := 0; i < len(futures); i++ {
			for j := i + 1; j < len(futures); j++ {
				family, err := scoring.NewFamily(pos, futures[i], futures[j])
				if err != nil {
					continue
				}
				if score, ok := system.Calculate(shapes, family); ok {
					scores.Set(family, score)
				}
			}
		}
	}
	return scores
}

// Resolve repairs the preferred-edge choices of the candidate graph and
// returns a pruned copy containing only the surviving preferred edges,
// together with the family scores it used. The input graph is not
// modified.
func Resolve(graph *linkgraph.Graph, shapes core.ShapeSource, system scoring.System, opts *Options) (*linkgraph.Graph, *scoring.Collection, error) {
	o := opts.withDefaults()
	if o.Passes < 0 {
		return nil, nil, ErrBadPasses
	}

	scores := ScoreFamilies(graph, shapes, system)
	f := &fixer{graph: graph.Clone(), scores: scores, o: o}

	for pass := 0; pass < o.Passes; pass++ {
		positions := f.graph.Positions()
		for _, pos := range positions {
			if err := f.fixNoFuture(pos); err != nil {
				return nil, nil, err
			}
		}
		for _, pos := range positions {
			if err := f.fixMother(pos); err != nil {
				return nil, nil, err
			}
		}
		for _, pos := range positions {
			if err := f.fixDaughters(pos); err != nil {
				return nil, nil, err
			}
		}
		o.Logger.Debug().Int("pass", pass+1).Msg("repair pass done")
	}

	resolved := f.graph.WithOnlyPreferredEdges()
	o.Logger.Info().
		Int("positions", resolved.NodeCount()).
		Int("links", resolved.EdgeCount()).
		Msg("preferred edges resolved")
	return resolved, scores, nil
}

type fixer struct {
	graph  *linkgraph.Graph
	scores *scoring.Collection
	o      Options
}

// fixNoFuture revives a dead end: a position without a preferred future
// link gets its best remaining candidate promoted, taking that
// candidate away from its current mother.
func (f *fixer) fixNoFuture(pos core.Position) error {
	if len(f.graph.PreferredFutures(pos)) > 0 {
		return nil
	}
	candidate, ok, err := f.closestStealable(f.graph.Futures(pos), pos)
	if err != nil || !ok {
		return err
	}
	if err := f.graph.DowngradePastEdges(candidate); err != nil {
		return err
	}
	f.graph.ClearErrorTag(candidate)
	f.o.Logger.Debug().
		Stringer("position", pos).
		Stringer("revived_to", candidate).
		Msg("promoted candidate for dead end")
	return f.graph.SetPreferred(pos, candidate, true)
}

// fixMother checks whether pos would make a better mother than a nearby
// cell currently holding one of its candidate daughters. When the
// scores are within ScoreMargin of each other the loser is tagged
// uncertain instead of rewired.
func (f *fixer) fixMother(pos core.Position) error {
	futures := f.graph.Futures(pos)
	preferred := f.graph.PreferredFutures(pos)
	if len(futures) < 2 || len(preferred) == 0 {
		return nil
	}
	if len(preferred) > 2 {
		return f.graph.SetErrorTag(pos, linkgraph.TagTooManyDaughters)
	}

	daughter1, daughter2, ok, err := f.twoDaughters(pos, preferred, futures)
	if err != nil || !ok {
		return err
	}
	if containsPosition(preferred, daughter2) {
		return nil // already a mother of both, nothing to steal
	}

	currentMother, ok := f.preferredPast(daughter2)
	if !ok {
		return nil
	}
	children := f.graph.PreferredFutures(currentMother)
	if len(children) < 2 {
		f.o.Logger.Warn().
			Stringer("mother", currentMother).
			Msg("competing mother lost her daughters mid-repair")
		return nil
	}
	children = children[:2]

	family, err := scoring.NewFamily(pos, daughter1, daughter2)
	if err != nil {
		return nil
	}
	currentFamily, err := scoring.NewFamily(currentMother, children[0], children[1])
	if err != nil {
		return nil
	}
	score, ok1 := f.scores.OfFamily(family)
	currentScore, ok2 := f.scores.OfFamily(currentFamily)
	if !ok1 || !ok2 {
		return nil // no opinion, leave the graph alone
	}

	total, currentTotal := score.Total(), currentScore.Total()
	diff := total - currentTotal
	if diff <= f.o.ScoreMargin && diff >= -f.o.ScoreMargin {
		// Too close to call. Tag whoever ends up being the mother.
		standing := currentMother
		if total > currentTotal {
			standing = pos
		}
		if err := f.graph.SetErrorTag(standing, linkgraph.TagUncertainMother); err != nil {
			return err
		}
	} else {
		// The margin is clear now, so earlier uncertainty tags are stale.
		if f.graph.ErrorTagOf(pos) == linkgraph.TagUncertainMother {
			f.graph.ClearErrorTag(pos)
		}
		if f.graph.ErrorTagOf(currentMother) == linkgraph.TagUncertainMother {
			f.graph.ClearErrorTag(currentMother)
		}
	}

	if total > currentTotal {
		f.o.Logger.Debug().
			Stringer("new_mother", pos).
			Stringer("old_mother", currentMother).
			Float64("score", total).
			Float64("old_score", currentTotal).
			Msg("stole daughter from worse mother")
		if err := f.graph.DowngradePastEdges(daughter2); err != nil {
			return err
		}
		f.graph.ClearErrorTag(daughter2)
		return f.graph.SetPreferred(pos, daughter2, true)
	}
	return nil
}

// fixDaughters retries the daughter pairing of an established mother:
// every pair of future candidates sharing exactly one daughter with the
// current pair is scored, and a clearly better pair replaces it. The
// discarded daughter goes back to the new daughter's previous mother.
func (f *fixer) fixDaughters(pos core.Position) error {
	preferred := f.graph.PreferredFutures(pos)
	futures := f.graph.Futures(pos)
	if len(preferred) != 2 || len(futures) <= 2 {
		return nil
	}

	currentFamily, err := scoring.NewFamily(pos, preferred[0], preferred[1])
	if err != nil {
		return nil
	}
	currentScore, ok := f.scores.OfFamily(currentFamily)
	if !ok {
		return nil
	}
	currentTotal := currentScore.Total()

	bestTotal := currentTotal
	var bestFamily scoring.Family
	found := false
	for i := 0; i < len(futures); i++ {
		for j := i + 1; j < len(futures); j++ {
			shared := 0
			if currentFamily.HasDaughter(futures[i]) {
				shared++
			}
			if currentFamily.HasDaughter(futures[j]) {
				shared++
			}
			if shared != 1 {
				continue // exactly one daughter must be new
			}
			if f.hasSister(futures[i]) && f.hasSister(futures[j]) {
				continue // two nearby divisions, do not recombine
			}
			family, err := scoring.NewFamily(pos, futures[i], futures[j])
			if err != nil {
				continue
			}
			score, ok := f.scores.OfFamily(family)
			if !ok {
				continue
			}
			if total := score.Total(); total > bestTotal {
				bestTotal = total
				bestFamily = family
				found = true
			}
		}
	}
	if !found {
		return nil
	}

	// The ratio bar only orders positive totals; for a non-positive
	// current pair it inverts and would wave any improvement through.
	if currentTotal > 0 && bestTotal >= currentTotal*f.o.SwapImprovement {
		if err := f.swapDaughter(pos, currentFamily, bestFamily, bestTotal, currentTotal); err != nil {
			return err
		}
	}
	// A better pair exists either way; leave a review tag.
	return f.graph.SetErrorTag(pos, linkgraph.TagWrongDaughters)
}

func (f *fixer) swapDaughter(pos core.Position, current, best scoring.Family, bestTotal, currentTotal float64) error {
	remaining := current.Daughter1
	removed := current.Daughter2
	if !best.HasDaughter(remaining) {
		remaining, removed = removed, remaining
	}
	newDaughter := best.Daughter1
	if newDaughter.Equal(remaining) {
		newDaughter = best.Daughter2
	}
	oldParent, ok := f.preferredPast(newDaughter)
	if !ok {
		return nil
	}

	// Hand the discarded daughter to the new daughter's old mother.
	if err := f.graph.SetPreferred(oldParent, newDaughter, false); err != nil {
		return err
	}
	if err := f.graph.SetPreferred(pos, newDaughter, true); err != nil {
		return err
	}
	if err := f.graph.SetPreferred(pos, removed, false); err != nil {
		return err
	}
	if err := f.graph.AddEdge(removed, oldParent, true); err != nil {
		return err
	}
	f.o.Logger.Debug().
		Stringer("mother", pos).
		Stringer("new_daughter", newDaughter).
		Stringer("old_daughter", removed).
		Float64("score", bestTotal).
		Float64("old_score", currentTotal).
		Msg("swapped daughter")
	return nil
}

// closestStealable returns the candidate nearest to center whose
// current mother can afford to lose it, meaning she keeps at least one
// preferred future link. Candidates without exactly one preferred past
// stop the search, matching the conservative original behavior.
func (f *fixer) closestStealable(candidates []core.Position, center core.Position) (core.Position, bool, error) {
	remaining := append([]core.Position(nil), candidates...)
	for len(remaining) > 0 {
		nearest := 0
		nearestDist := center.DistanceSquaredPixels(remaining[0], f.o.ZFactor)
		for i := 1; i < len(remaining); i++ {
			if d := center.DistanceSquaredPixels(remaining[i], f.o.ZFactor); d < nearestDist {
				nearest, nearestDist = i, d
			}
		}
		candidate := remaining[nearest]

		mother, ok := f.preferredPast(candidate)
		if !ok {
			return core.Position{}, false, nil
		}
		// Simulate the steal and check the mother survives it.
		if err := f.graph.SetPreferred(mother, candidate, false); err != nil {
			return core.Position{}, false, err
		}
		survives := len(f.graph.PreferredFutures(mother)) > 0
		if err := f.graph.SetPreferred(mother, candidate, true); err != nil {
			return core.Position{}, false, err
		}
		if survives {
			return candidate, true, nil
		}
		remaining = append(remaining[:nearest], remaining[nearest+1:]...)
	}
	return core.Position{}, false, nil
}

// twoDaughters picks the two daughters of a putative mother: preferred
// links first, then the closest stealable candidates.
func (f *fixer) twoDaughters(mother core.Position, preferred, futures []core.Position) (core.Position, core.Position, bool, error) {
	result := append([]core.Position(nil), preferred...)
	var consideration []core.Position
	for _, pos := range futures {
		if !containsPosition(preferred, pos) {
			consideration = append(consideration, pos)
		}
	}
	for len(result) < 2 {
		nearest, ok, err := f.closestStealable(consideration, mother)
		if err != nil || !ok {
			return core.Position{}, core.Position{}, false, err
		}
		result = append(result, nearest)
		consideration = removePosition(consideration, nearest)
	}
	return result[0], result[1], true, nil
}

// preferredPast returns the single preferred past link of pos. False
// when the position appeared from nothing or has conflicting pasts.
func (f *fixer) preferredPast(pos core.Position) (core.Position, bool) {
	pasts := f.graph.PreferredPasts(pos)
	if len(pasts) != 1 {
		return core.Position{}, false
	}
	return pasts[0], true
}

// hasSister reports whether the mother of pos has another preferred
// daughter besides pos.
func (f *fixer) hasSister(pos core.Position) bool {
	mother, ok := f.preferredPast(pos)
	if !ok {
		return false
	}
	return len(f.graph.PreferredFutures(mother)) >= 2
}

func containsPosition(list []core.Position, pos core.Position) bool {
	for _, p := range list {
		if p.Equal(pos) {
			return true
		}
	}
	return false
}

func removePosition(list []core.Position, pos core.Position) []core.Position {
	for i, p := range list {
		if p.Equal(pos) {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
