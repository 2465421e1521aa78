// Package catalog holds the immutable exercise catalog the plan generator selects from.
//
// A Catalog is validated once on construction with [New] and never changes afterwards. Accessors return copies so
// that concurrent readers can share a single Catalog without locking.
package catalog

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/myrjola/fitplan/internal/errors"
)

// Level is the self-reported experience level of the trainee.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels returns the levels from the least to the most experienced.
func Levels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// ParseLevel returns the Level matching s.
func ParseLevel(s string) (Level, bool) {
	l := Level(s)
	return l, slices.Contains(Levels(), l)
}

// Equipment is a piece of gear an exercise requires. An exercise requiring no equipment is bodyweight only.
type Equipment string

const (
	EquipmentDumbbells       Equipment = "dumbbells"
	EquipmentBarbell         Equipment = "barbell"
	EquipmentBench           Equipment = "bench"
	EquipmentKettlebell      Equipment = "kettlebell"
	EquipmentPullUpBar       Equipment = "pull-up-bar"
	EquipmentResistanceBands Equipment = "resistance-bands"
	EquipmentCableMachine    Equipment = "cable-machine"
	EquipmentJumpRope        Equipment = "jump-rope"
)

// AllEquipment returns every known equipment tag.
func AllEquipment() []Equipment {
	return []Equipment{
		EquipmentDumbbells,
		EquipmentBarbell,
		EquipmentBench,
		EquipmentKettlebell,
		EquipmentPullUpBar,
		EquipmentResistanceBands,
		EquipmentCableMachine,
		EquipmentJumpRope,
	}
}

// ParseEquipment returns the Equipment matching s.
func ParseEquipment(s string) (Equipment, bool) {
	e := Equipment(s)
	return e, slices.Contains(AllEquipment(), e)
}

// MuscleGroup is a body region an exercise trains. Cardio stands for conditioning work.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleQuadriceps MuscleGroup = "quadriceps"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleCalves     MuscleGroup = "calves"
	MuscleCore       MuscleGroup = "core"
	MuscleCardio     MuscleGroup = "cardio"
)

// AllMuscleGroups returns every known muscle group.
func AllMuscleGroups() []MuscleGroup {
	return []MuscleGroup{
		MuscleChest,
		MuscleBack,
		MuscleShoulders,
		MuscleBiceps,
		MuscleTriceps,
		MuscleQuadriceps,
		MuscleHamstrings,
		MuscleGlutes,
		MuscleCalves,
		MuscleCore,
		MuscleCardio,
	}
}

// DefaultTempoSeconds is the time one repetition takes when the entry does not say otherwise.
const DefaultTempoSeconds = 3

// Prescription is the baseline volume of an exercise for one level.
// Rep based entries use MinReps and MaxReps, timed entries use DurationSeconds.
type Prescription struct {
	MinReps         int
	MaxReps         int
	DurationSeconds int
	RestSeconds     int
}

// Entry is a single exercise in the catalog.
type Entry struct {
	ID                  string
	Name                string
	DescriptionMarkdown string
	MuscleGroups        []MuscleGroup
	// Equipment lists everything the exercise needs. Empty means bodyweight only.
	Equipment []Equipment
	// MET is the metabolic equivalent used for calorie estimates.
	MET          float64
	Compound     bool
	Universal    bool
	Conditioning bool
	Timed        bool
	TempoSeconds int
	Defaults     map[Level]Prescription
}

// Trains reports whether the entry trains any of the given muscle groups.
func (e Entry) Trains(groups ...MuscleGroup) bool {
	for _, g := range groups {
		if slices.Contains(e.MuscleGroups, g) {
			return true
		}
	}
	return false
}

// UsableWith reports whether everything the entry requires is in available.
func (e Entry) UsableWith(available map[Equipment]bool) bool {
	for _, eq := range e.Equipment {
		if !available[eq] {
			return false
		}
	}
	return true
}

// Bodyweight reports whether the entry needs no equipment.
func (e Entry) Bodyweight() bool {
	return len(e.Equipment) == 0
}

func (e Entry) clone() Entry {
	e.MuscleGroups = slices.Clone(e.MuscleGroups)
	e.Equipment = slices.Clone(e.Equipment)
	e.Defaults = maps.Clone(e.Defaults)
	return e
}

var (
	// ErrIntegrity is wrapped by [IntegrityError].
	ErrIntegrity = errors.NewSentinel("catalog integrity")
	// ErrMalformedDocument is returned by [Parse] when the document is not valid catalog YAML.
	ErrMalformedDocument = errors.NewSentinel("malformed catalog document")
)

// IntegrityError lists every problem found while validating catalog contents.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("catalog integrity: %s", strings.Join(e.Problems, "; "))
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}

// Catalog is an ordered, immutable collection of exercise entries. Declaration order is significant because the
// exercise selector breaks ranking ties with it.
type Catalog struct {
	version      string
	muscleGroups []MuscleGroup
	entries      []Entry
	byID         map[string]int
}

// New validates the entries and returns a Catalog. The returned error is an [*IntegrityError] listing every problem.
//
// muscleGroups declares the groups the catalog must cover. When empty, all known muscle groups are declared.
func New(version string, muscleGroups []MuscleGroup, entries []Entry) (*Catalog, error) {
	if len(muscleGroups) == 0 {
		muscleGroups = AllMuscleGroups()
	}
	c := &Catalog{
		version:      version,
		muscleGroups: slices.Clone(muscleGroups),
		entries:      make([]Entry, 0, len(entries)),
		byID:         make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		e = e.clone()
		if e.TempoSeconds == 0 {
			e.TempoSeconds = DefaultTempoSeconds
		}
		c.entries = append(c.entries, e)
	}

	if problems := c.check(); len(problems) > 0 {
		return nil, &IntegrityError{Problems: problems}
	}
	for i, e := range c.entries {
		c.byID[e.ID] = i
	}
	return c, nil
}

func (c *Catalog) check() []string {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.version) == "" {
		addf("version is required")
	}
	if len(c.entries) == 0 {
		addf("catalog has no exercises")
	}

	declared := make(map[MuscleGroup]bool, len(c.muscleGroups))
	for _, g := range c.muscleGroups {
		if !slices.Contains(AllMuscleGroups(), g) {
			addf("unknown declared muscle group %q", g)
		}
		declared[g] = true
	}

	seen := make(map[string]bool, len(c.entries))
	for i, e := range c.entries {
		name := e.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
			addf("exercise %s: id is required", name)
		} else if seen[e.ID] {
			addf("exercise %s: duplicate id", name)
		}
		seen[e.ID] = true

		if strings.TrimSpace(e.Name) == "" {
			addf("exercise %s: name is required", name)
		}
		if len(e.MuscleGroups) == 0 {
			addf("exercise %s: no muscle groups", name)
		}
		for _, g := range e.MuscleGroups {
			if !declared[g] {
				addf("exercise %s: unknown muscle group %q", name, g)
			}
		}
		for _, eq := range e.Equipment {
			if _, ok := ParseEquipment(string(eq)); !ok {
				addf("exercise %s: unknown equipment %q", name, eq)
			}
		}
		if e.MET <= 0 {
			addf("exercise %s: MET must be positive", name)
		}
		if e.TempoSeconds < 0 {
			addf("exercise %s: tempo must be positive", name)
		}
		if e.Universal && !e.Bodyweight() {
			addf("exercise %s: universal exercise must not require equipment", name)
		}
		problems = append(problems, checkDefaults(name, e)...)
	}

	covered := make(map[MuscleGroup]bool)
	universalCovered := make(map[MuscleGroup]bool)
	hasUniversal := false
	for _, e := range c.entries {
		for _, g := range e.MuscleGroups {
			covered[g] = true
			if e.Universal {
				universalCovered[g] = true
			}
		}
		hasUniversal = hasUniversal || e.Universal
	}
	for _, g := range c.muscleGroups {
		if !covered[g] {
			addf("muscle group %q is not trained by any exercise", g)
		}
		if hasUniversal && !universalCovered[g] {
			addf("muscle group %q is not trained by any universal exercise", g)
		}
	}

	return problems
}

func checkDefaults(name string, e Entry) []string {
	var problems []string
	prevRest := -1
	for _, level := range Levels() {
		p, ok := e.Defaults[level]
		if !ok {
			problems = append(problems, fmt.Sprintf("exercise %s: missing %s defaults", name, level))
			continue
		}
		if e.Timed && p.DurationSeconds <= 0 {
			problems = append(problems, fmt.Sprintf("exercise %s: %s duration must be positive", name, level))
		}
		if !e.Timed && (p.MinReps <= 0 || p.MaxReps < p.MinReps) {
			problems = append(problems, fmt.Sprintf("exercise %s: %s rep range %d-%d is invalid",
				name, level, p.MinReps, p.MaxReps))
		}
		if p.RestSeconds < 0 {
			problems = append(problems, fmt.Sprintf("exercise %s: %s rest must not be negative", name, level))
		}
		if prevRest >= 0 && p.RestSeconds > prevRest {
			problems = append(problems, fmt.Sprintf("exercise %s: %s rest %ds exceeds the previous level's %ds",
				name, level, p.RestSeconds, prevRest))
		}
		prevRest = p.RestSeconds
	}
	return problems
}

// Version identifies the catalog contents.
func (c *Catalog) Version() string {
	return c.version
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// MuscleGroups returns the declared muscle groups.
func (c *Catalog) MuscleGroups() []MuscleGroup {
	return slices.Clone(c.muscleGroups)
}

// Entries returns a copy of all entries in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Lookup returns the entry with the given id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false //nolint:exhaustruct // not found.
	}
	return c.entries[i].clone(), true
}

// Universal returns the universal bodyweight subset in declaration order.
func (c *Catalog) Universal() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Universal {
			out = append(out, e.clone())
		}
	}
	return out
}
