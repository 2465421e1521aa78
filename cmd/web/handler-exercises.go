package main

import (
	"bytes"
	"net/http"
	"slices"

	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/errors"
)

type exerciseSummary struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	MuscleGroups []catalog.MuscleGroup `json:"muscle_groups"`
	Equipment    []catalog.Equipment   `json:"equipment"`
	MET          float64               `json:"met"`
	Compound     bool                  `json:"compound"`
	Universal    bool                  `json:"universal"`
	Timed        bool                  `json:"timed"`
}

type prescriptionResponse struct {
	MinReps         int `json:"min_reps,omitempty"`
	MaxReps         int `json:"max_reps,omitempty"`
	DurationSeconds int `json:"duration_seconds,omitempty"`
	RestSeconds     int `json:"rest_seconds"`
}

type exerciseDetail struct {
	exerciseSummary
	DescriptionMarkdown string                                 `json:"description_markdown"`
	DescriptionHTML     string                                 `json:"description_html"`
	TempoSeconds        int                                    `json:"tempo_seconds"`
	Defaults            map[catalog.Level]prescriptionResponse `json:"defaults"`
}

type exerciseListResponse struct {
	CatalogVersion string            `json:"catalog_version"`
	Exercises      []exerciseSummary `json:"exercises"`
}

func summarize(e catalog.Entry) exerciseSummary {
	return exerciseSummary{
		ID:           e.ID,
		Name:         e.Name,
		MuscleGroups: e.MuscleGroups,
		Equipment:    e.Equipment,
		MET:          e.MET,
		Compound:     e.Compound,
		Universal:    e.Universal,
		Timed:        e.Timed,
	}
}

// exercisesGET lists the catalog in declaration order.
//
// Optional query parameters narrow the listing: muscle_group keeps entries training that group and
// repeated equipment parameters keep entries usable with that equipment.
func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	c := app.engine.Engine().Catalog()
	query := r.URL.Query()

	var muscleGroup catalog.MuscleGroup
	if v := query.Get("muscle_group"); v != "" {
		muscleGroup = catalog.MuscleGroup(v)
		if !slices.Contains(c.MuscleGroups(), muscleGroup) {
			app.errorJSON(w, r, http.StatusBadRequest, "unknown muscle_group "+v)
			return
		}
	}

	var available map[catalog.Equipment]bool
	if query.Has("equipment") {
		available = make(map[catalog.Equipment]bool)
		for _, v := range query["equipment"] {
			equipment, ok := catalog.ParseEquipment(v)
			if !ok {
				app.errorJSON(w, r, http.StatusBadRequest, "unknown equipment "+v)
				return
			}
			available[equipment] = true
		}
	}

	resp := exerciseListResponse{CatalogVersion: c.Version(), Exercises: []exerciseSummary{}}
	for _, e := range c.Entries() {
		if muscleGroup != "" && !e.Trains(muscleGroup) {
			continue
		}
		if available != nil && !e.UsableWith(available) {
			continue
		}
		resp.Exercises = append(resp.Exercises, summarize(e))
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

// exerciseGET shows a single exercise with its description rendered to HTML.
func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	e, ok := app.engine.Engine().Catalog().Lookup(r.PathValue("id"))
	if !ok {
		app.notFound(w, r)
		return
	}

	var description bytes.Buffer
	if err := app.markdown.Convert([]byte(e.DescriptionMarkdown), &description); err != nil {
		app.serverError(w, r, errors.Wrap(err, "render description"))
		return
	}

	defaults := make(map[catalog.Level]prescriptionResponse, len(e.Defaults))
	for level, p := range e.Defaults {
		defaults[level] = prescriptionResponse{
			MinReps:         p.MinReps,
			MaxReps:         p.MaxReps,
			DurationSeconds: p.DurationSeconds,
			RestSeconds:     p.RestSeconds,
		}
	}

	app.writeJSON(w, r, http.StatusOK, exerciseDetail{
		exerciseSummary:     summarize(e),
		DescriptionMarkdown: e.DescriptionMarkdown,
		DescriptionHTML:     description.String(),
		TempoSeconds:        e.TempoSeconds,
		Defaults:            defaults,
	})
}
