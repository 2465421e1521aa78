package planner

import (
	"testing"

	"github.com/myrjola/fitplan/internal/catalog"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	return c
}

func sameForAllLevels(p catalog.Prescription) map[catalog.Level]catalog.Prescription {
	m := make(map[catalog.Level]catalog.Prescription)
	for _, level := range catalog.Levels() {
		m[level] = p
	}
	return m
}

func fixtureEntry(id string, groups []catalog.MuscleGroup, equipment ...catalog.Equipment) catalog.Entry {
	return catalog.Entry{
		ID:                  id,
		Name:                id,
		DescriptionMarkdown: "",
		MuscleGroups:        groups,
		Equipment:           equipment,
		MET:                 5,
		Compound:            false,
		Universal:           false,
		Conditioning:        false,
		Timed:               false,
		TempoSeconds:        catalog.DefaultTempoSeconds,
		Defaults:            sameForAllLevels(catalog.Prescription{MinReps: 8, MaxReps: 10, DurationSeconds: 0, RestSeconds: 60}),
	}
}

func timedFixtureEntry(id string, durationSeconds, restSeconds int, groups ...catalog.MuscleGroup) catalog.Entry {
	e := fixtureEntry(id, groups)
	e.Timed = true
	e.Universal = true
	e.Defaults = sameForAllLevels(catalog.Prescription{
		MinReps: 0, MaxReps: 0, DurationSeconds: durationSeconds, RestSeconds: restSeconds,
	})
	return e
}

func fixtureCatalog(t *testing.T, entries ...catalog.Entry) *catalog.Catalog {
	t.Helper()
	var groups []catalog.MuscleGroup
	seen := make(map[catalog.MuscleGroup]bool)
	for _, e := range entries {
		for _, g := range e.MuscleGroups {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	c, err := catalog.New("fixture", groups, entries)
	if err != nil {
		t.Fatalf("new fixture catalog: %v", err)
	}
	return c
}

func profile(goal Goal, level catalog.Level, minutes int, equipment ...catalog.Equipment) Profile {
	return Profile{
		Goal:           goal,
		Level:          level,
		Equipment:      equipment,
		WorkoutMinutes: minutes,
		WeightKg:       70,
		DaysPerWeek:    nil,
	}
}
