package planner

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/errors"
)

// Goal is the trainee's objective. It drives the split, exercise selection, and volume.
type Goal string

const (
	GoalFatLoss        Goal = "fat-loss"
	GoalMuscleGain     Goal = "muscle-gain"
	GoalEndurance      Goal = "endurance"
	GoalGeneralFitness Goal = "general-fitness"
)

// Goals returns every supported goal.
func Goals() []Goal {
	return []Goal{GoalFatLoss, GoalMuscleGain, GoalEndurance, GoalGeneralFitness}
}

// RawProfile is the unvalidated input as submitted by a form or an API client.
type RawProfile struct {
	Goal           string   `json:"goal"            yaml:"goal"`
	Level          string   `json:"level"           yaml:"level"`
	Equipment      []string `json:"equipment"       yaml:"equipment"`
	WorkoutMinutes int      `json:"workout_minutes" yaml:"workout_minutes"`
	WeightKg       float64  `json:"weight_kg"       yaml:"weight_kg"`
	// DaysPerWeek overrides the level based training frequency when set.
	DaysPerWeek *int `json:"days_per_week,omitempty" yaml:"days_per_week,omitempty"`
}

// Profile is a validated RawProfile.
type Profile struct {
	Goal  Goal
	Level catalog.Level
	// Equipment is deduplicated and ordered like [catalog.AllEquipment]. Empty means bodyweight only.
	Equipment      []catalog.Equipment
	WorkoutMinutes int
	WeightKg       float64
	DaysPerWeek    *int
}

// EquipmentSet returns the available equipment as a set.
func (p Profile) EquipmentSet() map[catalog.Equipment]bool {
	set := make(map[catalog.Equipment]bool, len(p.Equipment))
	for _, e := range p.Equipment {
		set[e] = true
	}
	return set
}

// ErrInvalidProfile is wrapped by [ValidationError].
var ErrInvalidProfile = errors.NewSentinel("invalid profile")

// FieldError describes why a single profile field was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every rejected profile field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidProfile
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	return slices.ContainsFunc(e.Fields, func(f FieldError) bool { return f.Field == field })
}

// Profile field names used in [FieldError].
const (
	FieldGoal           = "goal"
	FieldLevel          = "level"
	FieldWorkoutMinutes = "workout_minutes"
	FieldWeightKg       = "weight_kg"
	FieldDaysPerWeek    = "days_per_week"
)

//nolint:gochecknoglobals // lookup table.
var equipmentAliases = map[string]catalog.Equipment{
	"dumbbell":        catalog.EquipmentDumbbells,
	"barbells":        catalog.EquipmentBarbell,
	"benches":         catalog.EquipmentBench,
	"kettlebells":     catalog.EquipmentKettlebell,
	"pullup-bar":      catalog.EquipmentPullUpBar,
	"pull-up":         catalog.EquipmentPullUpBar,
	"pullup":          catalog.EquipmentPullUpBar,
	"band":            catalog.EquipmentResistanceBands,
	"bands":           catalog.EquipmentResistanceBands,
	"resistance-band": catalog.EquipmentResistanceBands,
	"cable":           catalog.EquipmentCableMachine,
	"cables":          catalog.EquipmentCableMachine,
	"jumprope":        catalog.EquipmentJumpRope,
	"skipping-rope":   catalog.EquipmentJumpRope,
}

func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "-")
}

// Validate normalizes raw and checks it against the bounds in pol.
//
// Every violation is collected into a single [*ValidationError]. Unrecognized equipment tags are not violations:
// they are dropped and reported in the returned warnings.
func Validate(raw RawProfile, pol Policy) (Profile, []string, error) {
	var (
		fields   []FieldError
		warnings []string
		profile  Profile
	)
	reject := func(field, format string, args ...any) {
		fields = append(fields, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	goal := Goal(normalizeTag(raw.Goal))
	switch {
	case goal == "":
		reject(FieldGoal, "is required")
	case !slices.Contains(Goals(), goal):
		reject(FieldGoal, "%q is not one of %s", raw.Goal, joinValues(Goals()))
	default:
		profile.Goal = goal
	}

	level := normalizeTag(raw.Level)
	if l, ok := catalog.ParseLevel(level); ok {
		profile.Level = l
	} else if level == "" {
		reject(FieldLevel, "is required")
	} else {
		reject(FieldLevel, "%q is not one of %s", raw.Level, joinValues(catalog.Levels()))
	}

	switch {
	case raw.WorkoutMinutes <= 0:
		reject(FieldWorkoutMinutes, "must be positive")
	case raw.WorkoutMinutes < pol.MinWorkoutMinutes || raw.WorkoutMinutes > pol.MaxWorkoutMinutes:
		reject(FieldWorkoutMinutes, "must be between %d and %d", pol.MinWorkoutMinutes, pol.MaxWorkoutMinutes)
	default:
		profile.WorkoutMinutes = raw.WorkoutMinutes
	}

	switch {
	case math.IsNaN(raw.WeightKg) || math.IsInf(raw.WeightKg, 0) || raw.WeightKg <= 0:
		reject(FieldWeightKg, "must be positive")
	case raw.WeightKg < pol.MinWeightKg || raw.WeightKg > pol.MaxWeightKg:
		reject(FieldWeightKg, "must be between %g and %g", pol.MinWeightKg, pol.MaxWeightKg)
	default:
		profile.WeightKg = raw.WeightKg
	}

	if raw.DaysPerWeek != nil {
		days := *raw.DaysPerWeek
		clamped := min(max(days, pol.MinDaysPerWeek), pol.MaxDaysPerWeek)
		if clamped != days {
			warnings = append(warnings, fmt.Sprintf("days_per_week %d was clamped to %d", days, clamped))
		}
		profile.DaysPerWeek = &clamped
	}

	available := make(map[catalog.Equipment]bool)
	for _, tag := range raw.Equipment {
		normalized := normalizeTag(tag)
		if normalized == "" || normalized == "bodyweight" || normalized == "none" {
			continue
		}
		eq, ok := catalog.ParseEquipment(normalized)
		if !ok {
			eq, ok = equipmentAliases[normalized]
		}
		if !ok {
			warnings = append(warnings, fmt.Sprintf("equipment %q is not recognized and was ignored", tag))
			continue
		}
		available[eq] = true
	}
	for _, eq := range catalog.AllEquipment() {
		if available[eq] {
			profile.Equipment = append(profile.Equipment, eq)
		}
	}

	if len(fields) > 0 {
		return Profile{}, warnings, &ValidationError{Fields: fields}
	}
	return profile, warnings, nil
}

func joinValues[T ~string](values []T) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}
