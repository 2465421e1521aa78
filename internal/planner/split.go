package planner

import (
	"github.com/myrjola/fitplan/internal/catalog"
)

// Focus is the muscular theme of a training day.
type Focus string

const (
	FocusFullBody       Focus = "full-body"
	FocusPush           Focus = "push"
	FocusPull           Focus = "pull"
	FocusLegs           Focus = "legs"
	FocusUpper          Focus = "upper"
	FocusLower          Focus = "lower"
	FocusCardioStrength Focus = "cardio-strength"
)

// Primary returns the muscle groups the focus is built around.
func (f Focus) Primary() []catalog.MuscleGroup {
	switch f {
	case FocusFullBody:
		return []catalog.MuscleGroup{
			catalog.MuscleQuadriceps, catalog.MuscleGlutes, catalog.MuscleHamstrings,
			catalog.MuscleChest, catalog.MuscleBack, catalog.MuscleShoulders,
		}
	case FocusPush:
		return []catalog.MuscleGroup{catalog.MuscleChest, catalog.MuscleShoulders, catalog.MuscleTriceps}
	case FocusPull:
		return []catalog.MuscleGroup{catalog.MuscleBack, catalog.MuscleBiceps}
	case FocusLegs, FocusLower:
		return []catalog.MuscleGroup{catalog.MuscleQuadriceps, catalog.MuscleHamstrings, catalog.MuscleGlutes}
	case FocusUpper:
		return []catalog.MuscleGroup{catalog.MuscleChest, catalog.MuscleBack, catalog.MuscleShoulders}
	case FocusCardioStrength:
		return []catalog.MuscleGroup{catalog.MuscleCardio, catalog.MuscleQuadriceps, catalog.MuscleGlutes}
	}
	return nil
}

// Secondary returns the muscle groups trained after the primary ones.
func (f Focus) Secondary() []catalog.MuscleGroup {
	switch f {
	case FocusFullBody:
		return []catalog.MuscleGroup{
			catalog.MuscleCore, catalog.MuscleBiceps, catalog.MuscleTriceps, catalog.MuscleCalves,
		}
	case FocusPush:
		return []catalog.MuscleGroup{catalog.MuscleCore}
	case FocusPull:
		return []catalog.MuscleGroup{catalog.MuscleShoulders, catalog.MuscleCore}
	case FocusLegs, FocusLower:
		return []catalog.MuscleGroup{catalog.MuscleCalves, catalog.MuscleCore}
	case FocusUpper:
		return []catalog.MuscleGroup{catalog.MuscleBiceps, catalog.MuscleTriceps, catalog.MuscleCore}
	case FocusCardioStrength:
		return []catalog.MuscleGroup{
			catalog.MuscleCore, catalog.MuscleShoulders, catalog.MuscleHamstrings, catalog.MuscleChest,
		}
	}
	return nil
}

// TrainsCardio reports whether conditioning work belongs to the focus.
func (f Focus) TrainsCardio() bool {
	for _, g := range append(f.Primary(), f.Secondary()...) {
		if g == catalog.MuscleCardio {
			return true
		}
	}
	return false
}

// rotation returns the repeating sequence of day foci for a goal. Beginners and bodyweight-only trainees get
// full body sessions for goals that would otherwise split the body.
func rotation(goal Goal, level catalog.Level, bodyweightOnly bool) []Focus {
	simple := level == catalog.LevelBeginner || bodyweightOnly
	switch goal {
	case GoalMuscleGain:
		if simple {
			return []Focus{FocusFullBody}
		}
		return []Focus{FocusPush, FocusPull, FocusLegs}
	case GoalFatLoss:
		return []Focus{FocusFullBody, FocusCardioStrength}
	case GoalEndurance:
		return []Focus{FocusCardioStrength, FocusLegs, FocusCardioStrength, FocusUpper}
	case GoalGeneralFitness:
		if simple {
			return []Focus{FocusFullBody}
		}
		return []Focus{FocusUpper, FocusLower, FocusFullBody}
	}
	return []Focus{FocusFullBody}
}

// selectSplit resolves the training frequency and the focus of each day. The rotation repeats from its start when
// it does not divide the number of days evenly.
func selectSplit(p Profile, pol Policy) []Focus {
	days := pol.DaysPerWeek.For(p.Level)
	if p.DaysPerWeek != nil {
		days = min(max(*p.DaysPerWeek, pol.MinDaysPerWeek), pol.MaxDaysPerWeek)
	}

	r := rotation(p.Goal, p.Level, len(p.Equipment) == 0)
	split := make([]Focus, days)
	for i := range split {
		split[i] = r[i%len(r)]
	}
	return split
}
