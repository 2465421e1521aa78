package planner

import (
	"slices"
)

// Session is the outcome of packing prescribed exercises into a day.
type Session struct {
	Exercises    []PrescribedExercise
	TotalMinutes int
	Diagnostics  []Diagnostic
}

func (s *Session) add(pe PrescribedExercise) {
	s.Exercises = append(s.Exercises, pe)
	s.TotalMinutes += pe.EstimatedMinutes
}

// SessionBuilder packs ranked candidates into a session of roughly targetMinutes.
type SessionBuilder interface {
	Build(candidates []PrescribedExercise, targetMinutes int) Session
}

// GreedyBuilder fills a session greedily in rank order and repairs overflows by reducing sets.
//
// Candidates are added while the total stays within the upper bound of the tolerance band. When the next
// candidate does not fit, building stops if the lower bound is already reached. Otherwise the builder tries the
// same candidate with fewer sets and moves on to the next one if no variant fits. When even the single set variant
// of the first candidate exceeds the upper bound, that variant is included anyway so the day is never empty.
//
// A session holding a lone exercise that misses the band gets [DiagnosticOverBudget]. A session that ends below the
// lower bound gets [DiagnosticUnderBudget].
type GreedyBuilder struct {
	Tolerance Tolerance
}

func (b GreedyBuilder) Build(candidates []PrescribedExercise, targetMinutes int) Session {
	var (
		band    = b.Tolerance.Band(targetMinutes)
		session Session
	)

	for _, c := range candidates {
		if session.TotalMinutes+c.EstimatedMinutes <= band.Upper {
			session.add(c)
			continue
		}
		if session.TotalMinutes >= band.Lower {
			break
		}
		v, ok := shorterVariant(c, band.Upper-session.TotalMinutes)
		switch {
		case ok:
			session.add(v)
		case len(session.Exercises) == 0:
			session.add(c.withSets(1))
		}
		if session.TotalMinutes >= band.Lower {
			break
		}
	}

	if len(session.Exercises) == 1 && !band.Contains(session.TotalMinutes) {
		session.Diagnostics = append(session.Diagnostics, DiagnosticOverBudget)
	}
	if session.TotalMinutes < band.Lower {
		session.Diagnostics = append(session.Diagnostics, DiagnosticUnderBudget)
	}

	orderCompoundFirst(session.Exercises)
	return session
}

// shorterVariant returns c with the most sets that still fit in budget minutes.
func shorterVariant(c PrescribedExercise, budget int) (PrescribedExercise, bool) {
	for sets := c.Sets - 1; sets >= 1; sets-- {
		if v := c.withSets(sets); v.EstimatedMinutes <= budget {
			return v, true
		}
	}
	return PrescribedExercise{}, false //nolint:exhaustruct // nothing fits.
}

// orderCompoundFirst moves compound movements before isolation movements and otherwise keeps the rank order.
func orderCompoundFirst(exercises []PrescribedExercise) {
	slices.SortStableFunc(exercises, func(a, b PrescribedExercise) int {
		switch {
		case a.Compound == b.Compound:
			return 0
		case a.Compound:
			return -1
		default:
			return 1
		}
	})
}
