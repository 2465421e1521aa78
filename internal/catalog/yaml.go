package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/myrjola/fitplan/internal/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDocument []byte

type prescriptionDocument struct {
	MinReps  int `yaml:"min_reps"`
	MaxReps  int `yaml:"max_reps"`
	Duration int `yaml:"duration"`
	Rest     int `yaml:"rest"`
}

type entryDocument struct {
	ID           string                          `yaml:"id"`
	Name         string                          `yaml:"name"`
	Description  string                          `yaml:"description"`
	MuscleGroups []string                        `yaml:"muscle_groups"`
	Equipment    []string                        `yaml:"equipment"`
	MET          float64                         `yaml:"met"`
	Compound     bool                            `yaml:"compound"`
	Universal    bool                            `yaml:"universal"`
	Conditioning bool                            `yaml:"conditioning"`
	Timed        bool                            `yaml:"timed"`
	Tempo        int                             `yaml:"tempo"`
	Defaults     map[string]prescriptionDocument `yaml:"defaults"`
}

type document struct {
	Version       string                          `yaml:"version"`
	MuscleGroups  []string                        `yaml:"muscle_groups"`
	Defaults      map[string]prescriptionDocument `yaml:"defaults"`
	TimedDefaults map[string]prescriptionDocument `yaml:"timed_defaults"`
	Exercises     []entryDocument                 `yaml:"exercises"`
}

// Parse decodes a YAML catalog document and validates it with [New].
//
// Level defaults are resolved per entry: the entry's own defaults win, then timed_defaults for timed entries, then
// the document wide defaults.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: %w", ErrMalformedDocument, err), "decode catalog document")
	}

	var problems []string
	problems = append(problems, checkLevelKeys("defaults", doc.Defaults)...)
	problems = append(problems, checkLevelKeys("timed_defaults", doc.TimedDefaults)...)

	groups := make([]MuscleGroup, 0, len(doc.MuscleGroups))
	for _, g := range doc.MuscleGroups {
		groups = append(groups, MuscleGroup(g))
	}

	entries := make([]Entry, 0, len(doc.Exercises))
	for _, ed := range doc.Exercises {
		problems = append(problems, checkLevelKeys("exercise "+ed.ID+" defaults", ed.Defaults)...)
		e := Entry{
			ID:                  ed.ID,
			Name:                ed.Name,
			DescriptionMarkdown: ed.Description,
			MuscleGroups:        make([]MuscleGroup, 0, len(ed.MuscleGroups)),
			Equipment:           make([]Equipment, 0, len(ed.Equipment)),
			MET:                 ed.MET,
			Compound:            ed.Compound,
			Universal:           ed.Universal,
			Conditioning:        ed.Conditioning,
			Timed:               ed.Timed,
			TempoSeconds:        ed.Tempo,
			Defaults:            make(map[Level]Prescription, len(Levels())),
		}
		for _, g := range ed.MuscleGroups {
			e.MuscleGroups = append(e.MuscleGroups, MuscleGroup(g))
		}
		for _, eq := range ed.Equipment {
			e.Equipment = append(e.Equipment, Equipment(eq))
		}
		fallback := doc.Defaults
		if ed.Timed {
			fallback = doc.TimedDefaults
		}
		for _, level := range Levels() {
			pd, ok := ed.Defaults[string(level)]
			if !ok {
				pd, ok = fallback[string(level)]
			}
			if ok {
				e.Defaults[level] = Prescription{
					MinReps:         pd.MinReps,
					MaxReps:         pd.MaxReps,
					DurationSeconds: pd.Duration,
					RestSeconds:     pd.Rest,
				}
			}
		}
		entries = append(entries, e)
	}

	c, err := New(doc.Version, groups, entries)
	var integrityErr *IntegrityError
	if errors.As(err, &integrityErr) {
		problems = append(problems, integrityErr.Problems...)
	} else if err != nil {
		return nil, errors.Wrap(err, "new catalog")
	}
	if len(problems) > 0 {
		return nil, &IntegrityError{Problems: problems}
	}
	return c, nil
}

func checkLevelKeys(section string, m map[string]prescriptionDocument) []string {
	var problems []string
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if _, ok := ParseLevel(key); !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown level %q", section, key))
		}
	}
	return problems
}

// LoadFile reads and parses the catalog document at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog file", slog.String("path", path))
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse catalog file", slog.String("path", path))
	}
	return c, nil
}

// DefaultDocument returns the YAML document of the catalog shipped with the binary.
func DefaultDocument() []byte {
	return bytes.Clone(defaultDocument)
}

// Default parses the catalog shipped with the binary.
func Default() (*Catalog, error) {
	c, err := Parse(defaultDocument)
	if err != nil {
		return nil, errors.Wrap(err, "parse default catalog")
	}
	return c, nil
}
