package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/myrjola/fitplan/internal/catalog"
)

// Diagnostic flags a day that did not come out as intended.
type Diagnostic string

const (
	// DiagnosticFallback means no exercise matched the focus and the universal bodyweight subset was used.
	DiagnosticFallback Diagnostic = "fallback"
	// DiagnosticNoCandidates means the day is empty because not even the universal subset was available.
	DiagnosticNoCandidates Diagnostic = "no-candidates"
	// DiagnosticOverBudget means the day holds a single exercise whose estimate does not fit the time budget.
	DiagnosticOverBudget Diagnostic = "over-budget"
	// DiagnosticUnderBudget means the candidates ran out before the session reached the time budget.
	DiagnosticUnderBudget Diagnostic = "under-budget"
)

// PrescribedExercise is a catalog entry with its assigned volume.
type PrescribedExercise struct {
	ExerciseID string              `json:"exercise_id"`
	Name       string              `json:"name"`
	Compound   bool                `json:"compound"`
	Equipment  []catalog.Equipment `json:"equipment"`
	Sets       int                 `json:"sets"`
	// MinReps and MaxReps are zero for timed exercises.
	MinReps int `json:"min_reps,omitempty"`
	MaxReps int `json:"max_reps,omitempty"`
	// DurationSeconds is the work time of one set of a timed exercise.
	DurationSeconds int `json:"duration_seconds,omitempty"`
	// TempoSeconds is the time one repetition takes. Zero for timed exercises.
	TempoSeconds      int     `json:"tempo_seconds,omitempty"`
	RestSeconds       int     `json:"rest_seconds"`
	EstimatedMinutes  int     `json:"estimated_minutes"`
	EstimatedCalories float64 `json:"estimated_calories"`
}

// Day is a single training session of a plan.
type Day struct {
	ID            string               `json:"id"`
	Focus         Focus                `json:"focus"`
	Exercises     []PrescribedExercise `json:"exercises"`
	TotalMinutes  int                  `json:"total_minutes"`
	TotalCalories float64              `json:"total_calories"`
	Diagnostics   []Diagnostic         `json:"diagnostics,omitempty"`
}

// Degraded reports whether the day missed its time budget or had to fall back to the universal subset.
func (d Day) Degraded() bool {
	return len(d.Diagnostics) > 0
}

// Plan is a generated multi-day training plan. It has no identity, storing and naming it is up to the caller.
type Plan struct {
	Goal           Goal                `json:"goal"`
	Level          catalog.Level       `json:"level"`
	Equipment      []catalog.Equipment `json:"equipment"`
	DaysPerWeek    int                 `json:"days_per_week"`
	WorkoutMinutes int                 `json:"workout_minutes"`
	WeightKg       float64             `json:"weight_kg"`
	Days           []Day               `json:"days"`
	TotalMinutes   int                 `json:"total_minutes"`
	TotalCalories  float64             `json:"total_calories"`
	CatalogVersion string              `json:"catalog_version"`
	CreatedAt      time.Time           `json:"created_at"`
	Warnings       []string            `json:"warnings,omitempty"`
}

// Name returns a default display name such as "Muscle-gain 30m 3-Day".
func (p Plan) Name() string {
	goal := string(p.Goal)
	if goal != "" {
		goal = strings.ToUpper(goal[:1]) + goal[1:]
	}
	return fmt.Sprintf("%s %dm %d-Day", goal, p.WorkoutMinutes, p.DaysPerWeek)
}

// DegradedDays returns the ids of the days carrying diagnostics.
func (p Plan) DegradedDays() []string {
	var ids []string
	for _, d := range p.Days {
		if d.Degraded() {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
