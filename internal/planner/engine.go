// Package planner generates multi-day workout plans from a trainee profile and an exercise catalog.
//
// Generation is a pure function of the profile, the catalog, and the policy. An [Engine] holds no mutable state and
// can be shared between goroutines.
package planner

import (
	"fmt"
	"time"

	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/errors"
)

// ErrNoCatalog is returned when an engine is constructed without catalog contents.
var ErrNoCatalog = errors.NewSentinel("no exercise catalog")

// Engine generates plans over a single catalog version.
type Engine struct {
	catalog *catalog.Catalog
	policy  Policy
	builder SessionBuilder
	now     func() time.Time
}

// New creates an Engine bound to c. A new catalog version needs a new Engine.
func New(c *catalog.Catalog, policy Policy) (*Engine, error) {
	if c == nil || c.Len() == 0 {
		return nil, ErrNoCatalog
	}
	if err := policy.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate policy")
	}
	return &Engine{
		catalog: c,
		policy:  policy,
		builder: GreedyBuilder{Tolerance: policy.Tolerance},
		now:     time.Now,
	}, nil
}

// Catalog returns the catalog the engine selects exercises from.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// GeneratePlan validates raw and generates a plan for it. Validation failures are returned as [*ValidationError]
// and no plan is produced.
func (e *Engine) GeneratePlan(raw RawProfile) (Plan, error) {
	profile, warnings, err := Validate(raw, e.policy)
	if err != nil {
		return Plan{}, err //nolint:exhaustruct // no plan on error.
	}

	split := selectSplit(profile, e.policy)
	plan := Plan{
		Goal:           profile.Goal,
		Level:          profile.Level,
		Equipment:      append([]catalog.Equipment{}, profile.Equipment...),
		DaysPerWeek:    len(split),
		WorkoutMinutes: profile.WorkoutMinutes,
		WeightKg:       profile.WeightKg,
		Days:           make([]Day, 0, len(split)),
		TotalMinutes:   0,
		TotalCalories:  0,
		CatalogVersion: e.catalog.Version(),
		CreatedAt:      e.now().UTC(),
		Warnings:       warnings,
	}
	for i, focus := range split {
		day := e.buildDay(i, focus, profile)
		plan.Days = append(plan.Days, day)
		plan.TotalMinutes += day.TotalMinutes
		plan.TotalCalories = roundTenth(plan.TotalCalories + day.TotalCalories)
	}
	return plan, nil
}

func (e *Engine) buildDay(i int, focus Focus, p Profile) Day {
	day := Day{
		ID:            fmt.Sprintf("day-%d", i+1),
		Focus:         focus,
		Exercises:     []PrescribedExercise{},
		TotalMinutes:  0,
		TotalCalories: 0,
		Diagnostics:   nil,
	}

	entries, diagnostics := selectCandidates(e.catalog, focus, p)
	day.Diagnostics = append(day.Diagnostics, diagnostics...)
	if len(entries) == 0 {
		return day
	}

	met := make(map[string]float64, len(entries))
	candidates := make([]PrescribedExercise, 0, len(entries))
	for _, entry := range entries {
		met[entry.ID] = entry.MET
		candidates = append(candidates, e.policy.prescribe(entry, p.Goal, p.Level))
	}

	session := e.builder.Build(candidates, p.WorkoutMinutes)
	day.Diagnostics = append(day.Diagnostics, session.Diagnostics...)
	for _, pe := range session.Exercises {
		pe.EstimatedCalories = estimateCalories(met[pe.ExerciseID], p.WeightKg, pe.EstimatedMinutes)
		day.Exercises = append(day.Exercises, pe)
		day.TotalMinutes += pe.EstimatedMinutes
		day.TotalCalories = roundTenth(day.TotalCalories + pe.EstimatedCalories)
	}
	return day
}
