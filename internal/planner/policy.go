package planner

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/errors"
	"gopkg.in/yaml.v3"
)

// ByLevel holds one value per experience level.
type ByLevel[T any] struct {
	Beginner     T `yaml:"beginner"`
	Intermediate T `yaml:"intermediate"`
	Advanced     T `yaml:"advanced"`
}

// For returns the value for level.
func (b ByLevel[T]) For(level catalog.Level) T {
	switch level {
	case catalog.LevelBeginner:
		return b.Beginner
	case catalog.LevelIntermediate:
		return b.Intermediate
	case catalog.LevelAdvanced:
		return b.Advanced
	}
	panic(fmt.Sprintf("unknown level %q", level))
}

// ByGoal holds one value per training goal.
type ByGoal[T any] struct {
	FatLoss        T `yaml:"fat-loss"`
	MuscleGain     T `yaml:"muscle-gain"`
	Endurance      T `yaml:"endurance"`
	GeneralFitness T `yaml:"general-fitness"`
}

// For returns the value for goal.
func (b ByGoal[T]) For(goal Goal) T {
	switch goal {
	case GoalFatLoss:
		return b.FatLoss
	case GoalMuscleGain:
		return b.MuscleGain
	case GoalEndurance:
		return b.Endurance
	case GoalGeneralFitness:
		return b.GeneralFitness
	}
	panic(fmt.Sprintf("unknown goal %q", goal))
}

// GoalVolume scales the catalog's level defaults for a goal.
type GoalVolume struct {
	// RepsFactor multiplies the rep range and the duration of timed exercises.
	RepsFactor float64 `yaml:"reps_factor"`
	// RestFactor multiplies the rest between sets.
	RestFactor float64 `yaml:"rest_factor"`
	// ExtraSets is added to the level's set count.
	ExtraSets int `yaml:"extra_sets"`
}

// Tolerance defines the band a session's estimated minutes must land in.
type Tolerance struct {
	LowerFactor     float64 `yaml:"lower_factor"`
	UpperFactor     float64 `yaml:"upper_factor"`
	MinSlackMinutes int     `yaml:"min_slack_minutes"`
}

// Band is an inclusive range of session minutes.
type Band struct {
	Lower int
	Upper int
}

// Contains reports whether minutes is within the band.
func (b Band) Contains(minutes int) bool {
	return minutes >= b.Lower && minutes <= b.Upper
}

// Band returns the accepted session length for target minutes. The bounds are rounded inwards to whole minutes.
func (t Tolerance) Band(target int) Band {
	// Absorbs float error such as 1.15*180 evaluating just below 207.
	const epsilon = 1e-9
	upper := math.Max(t.UpperFactor*float64(target), float64(target+t.MinSlackMinutes))
	return Band{
		Lower: int(math.Ceil(t.LowerFactor*float64(target) - epsilon)),
		Upper: int(math.Floor(upper + epsilon)),
	}
}

// Policy holds every tunable constant of plan generation.
type Policy struct {
	MinWorkoutMinutes int     `yaml:"min_workout_minutes"`
	MaxWorkoutMinutes int     `yaml:"max_workout_minutes"`
	MinWeightKg       float64 `yaml:"min_weight_kg"`
	MaxWeightKg       float64 `yaml:"max_weight_kg"`
	MinDaysPerWeek    int     `yaml:"min_days_per_week"`
	MaxDaysPerWeek    int     `yaml:"max_days_per_week"`

	DaysPerWeek    ByLevel[int]       `yaml:"days_per_week"`
	Sets           ByLevel[int]       `yaml:"sets"`
	Goals          ByGoal[GoalVolume] `yaml:"goals"`
	MinRestSeconds int                `yaml:"min_rest_seconds"`
	Tolerance      Tolerance          `yaml:"tolerance"`
}

// DefaultPolicy returns the policy used unless overridden.
//
//nolint:mnd // policy constants.
func DefaultPolicy() Policy {
	return Policy{
		MinWorkoutMinutes: 10,
		MaxWorkoutMinutes: 180,
		MinWeightKg:       30,
		MaxWeightKg:       300,
		MinDaysPerWeek:    2,
		MaxDaysPerWeek:    6,
		DaysPerWeek:       ByLevel[int]{Beginner: 3, Intermediate: 4, Advanced: 5},
		Sets:              ByLevel[int]{Beginner: 2, Intermediate: 3, Advanced: 4},
		Goals: ByGoal[GoalVolume]{
			// Circuit style: more reps, short rest.
			FatLoss:        GoalVolume{RepsFactor: 1.5, RestFactor: 0.5, ExtraSets: 0},
			MuscleGain:     GoalVolume{RepsFactor: 1, RestFactor: 1.5, ExtraSets: 1},
			Endurance:      GoalVolume{RepsFactor: 1.75, RestFactor: 0.5, ExtraSets: 0},
			GeneralFitness: GoalVolume{RepsFactor: 1.2, RestFactor: 1, ExtraSets: 0},
		},
		MinRestSeconds: 15,
		Tolerance: Tolerance{
			LowerFactor:     0.85,
			UpperFactor:     1.15,
			MinSlackMinutes: 5,
		},
	}
}

// ParsePolicy overlays a YAML document on [DefaultPolicy]. Fields missing from the document keep their defaults.
func ParsePolicy(data []byte) (Policy, error) {
	pol := DefaultPolicy()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pol); err != nil {
		return Policy{}, errors.Wrap(err, "decode policy")
	}
	if err := pol.Validate(); err != nil {
		return Policy{}, err
	}
	return pol, nil
}

// LoadPolicy reads a policy override file.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, errors.Wrap(err, "read policy file", slog.String("path", path))
	}
	pol, err := ParsePolicy(data)
	if err != nil {
		return Policy{}, errors.Wrap(err, "parse policy file", slog.String("path", path))
	}
	return pol, nil
}

// ErrInvalidPolicy is returned when policy constants are inconsistent.
var ErrInvalidPolicy = errors.NewSentinel("invalid policy")

// Validate checks that the constants describe a usable policy.
func (p Policy) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidPolicy}, args...)...))
		}
	}

	check(p.MinWorkoutMinutes > 0 && p.MinWorkoutMinutes <= p.MaxWorkoutMinutes,
		"workout minutes range %d-%d", p.MinWorkoutMinutes, p.MaxWorkoutMinutes)
	check(p.MinWeightKg > 0 && p.MinWeightKg <= p.MaxWeightKg,
		"weight range %g-%g", p.MinWeightKg, p.MaxWeightKg)
	check(p.MinDaysPerWeek > 0 && p.MinDaysPerWeek <= p.MaxDaysPerWeek && p.MaxDaysPerWeek <= 7, //nolint:mnd // week
		"days per week range %d-%d", p.MinDaysPerWeek, p.MaxDaysPerWeek)
	prevSets := 0
	for _, level := range catalog.Levels() {
		days := p.DaysPerWeek.For(level)
		check(days >= p.MinDaysPerWeek && days <= p.MaxDaysPerWeek, "%s days per week %d", level, days)
		sets := p.Sets.For(level)
		check(sets > 0, "%s sets %d", level, sets)
		check(sets >= prevSets, "%s sets %d are fewer than the previous level's %d", level, sets, prevSets)
		prevSets = sets
	}
	for _, goal := range Goals() {
		v := p.Goals.For(goal)
		check(v.RepsFactor > 0 && v.RestFactor > 0, "%s factors must be positive", goal)
		check(v.ExtraSets >= 0, "%s extra sets %d", goal, v.ExtraSets)
	}
	check(p.MinRestSeconds >= 0, "min rest seconds %d", p.MinRestSeconds)
	check(p.Tolerance.LowerFactor > 0 && p.Tolerance.LowerFactor <= 1,
		"tolerance lower factor %g", p.Tolerance.LowerFactor)
	check(p.Tolerance.UpperFactor >= 1, "tolerance upper factor %g", p.Tolerance.UpperFactor)
	check(p.Tolerance.MinSlackMinutes >= 0, "tolerance slack %d", p.Tolerance.MinSlackMinutes)

	return errors.Join(errs...)
}
