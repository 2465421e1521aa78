package planner

import (
	"slices"

	"github.com/myrjola/fitplan/internal/catalog"
)

// Ranking tiers, best first.
const (
	tierCompoundPrimary = iota
	tierIsolationPrimary
	tierCompoundSecondary
	tierIsolationSecondary
	tierOffFocus
)

func rankTier(e catalog.Entry, focus Focus) int {
	switch {
	case e.Trains(focus.Primary()...) && e.Compound:
		return tierCompoundPrimary
	case e.Trains(focus.Primary()...):
		return tierIsolationPrimary
	case e.Trains(focus.Secondary()...) && e.Compound:
		return tierCompoundSecondary
	case e.Trains(focus.Secondary()...):
		return tierIsolationSecondary
	default:
		return tierOffFocus
	}
}

// rank orders entries by tier. The sort is stable so catalog declaration order breaks ties.
func rank(entries []catalog.Entry, focus Focus) []catalog.Entry {
	slices.SortStableFunc(entries, func(a, b catalog.Entry) int {
		return rankTier(a, focus) - rankTier(b, focus)
	})
	return entries
}

// selectCandidates filters the catalog down to the entries usable for the focus and ranks them.
//
// When nothing qualifies, the universal bodyweight subset is returned with [DiagnosticFallback]. When that is empty
// too, no candidates are returned with [DiagnosticNoCandidates].
func selectCandidates(c *catalog.Catalog, focus Focus, p Profile) ([]catalog.Entry, []Diagnostic) {
	available := p.EquipmentSet()

	var candidates []catalog.Entry
	for _, e := range c.Entries() {
		if !e.UsableWith(available) {
			continue
		}
		if p.Goal == GoalMuscleGain && e.Conditioning && !focus.TrainsCardio() {
			continue
		}
		if rankTier(e, focus) == tierOffFocus {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) > 0 {
		return rank(candidates, focus), nil
	}

	universal := c.Universal()
	if len(universal) == 0 {
		return nil, []Diagnostic{DiagnosticNoCandidates}
	}
	return rank(universal, focus), []Diagnostic{DiagnosticFallback}
}
