package planner

import (
	"math"

	"github.com/myrjola/fitplan/internal/catalog"
)

// prescribe assigns sets, reps or duration, and rest to an entry.
//
// The entry's level defaults are the baseline. The goal scales reps and rest, the level decides the number of sets,
// and rest never drops below the policy floor.
func (p Policy) prescribe(e catalog.Entry, goal Goal, level catalog.Level) PrescribedExercise {
	base := e.Defaults[level]
	gv := p.Goals.For(goal)

	pe := PrescribedExercise{
		ExerciseID:        e.ID,
		Name:              e.Name,
		Compound:          e.Compound,
		Equipment:         append([]catalog.Equipment{}, e.Equipment...),
		Sets:              p.Sets.For(level) + gv.ExtraSets,
		MinReps:           0,
		MaxReps:           0,
		DurationSeconds:   0,
		TempoSeconds:      0,
		RestSeconds:       max(p.MinRestSeconds, roundInt(float64(base.RestSeconds)*gv.RestFactor)),
		EstimatedMinutes:  0,
		EstimatedCalories: 0,
	}
	if e.Timed {
		pe.DurationSeconds = max(1, roundInt(float64(base.DurationSeconds)*gv.RepsFactor))
	} else {
		pe.MinReps = max(1, roundInt(float64(base.MinReps)*gv.RepsFactor))
		pe.MaxReps = max(pe.MinReps, roundInt(float64(base.MaxReps)*gv.RepsFactor))
		pe.TempoSeconds = e.TempoSeconds
	}
	return pe.withSets(pe.Sets)
}

// workSeconds is the time under load of a single set.
func (pe PrescribedExercise) workSeconds() int {
	if pe.DurationSeconds > 0 {
		return pe.DurationSeconds
	}
	return pe.MaxReps * pe.TempoSeconds
}

// withSets returns the exercise with the given number of sets and the matching time estimate. The estimate is
// rounded up to whole minutes and is never zero.
func (pe PrescribedExercise) withSets(sets int) PrescribedExercise {
	pe.Sets = sets
	seconds := sets * (pe.workSeconds() + pe.RestSeconds)
	pe.EstimatedMinutes = max(1, int(math.Ceil(float64(seconds)/60))) //nolint:mnd // seconds in a minute.
	return pe
}

func roundInt(f float64) int {
	return int(math.Round(f))
}
