package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/errors"
	"github.com/myrjola/fitplan/internal/planner"
	"github.com/myrjola/fitplan/internal/sqlite"
)

type catalogResponse struct {
	Version           string                `json:"version"`
	Exercises         int                   `json:"exercises"`
	UniversalSubset   int                   `json:"universal_subset"`
	MuscleGroups      []catalog.MuscleGroup `json:"muscle_groups"`
	MinWorkoutMinutes int                   `json:"min_workout_minutes"`
	MaxWorkoutMinutes int                   `json:"max_workout_minutes"`
	MinDaysPerWeek    int                   `json:"min_days_per_week"`
	MaxDaysPerWeek    int                   `json:"max_days_per_week"`
}

type catalogErrorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func (app *application) describeEngine(e *planner.Engine) catalogResponse {
	c, policy := e.Catalog(), e.Policy()
	return catalogResponse{
		Version:           c.Version(),
		Exercises:         c.Len(),
		UniversalSubset:   len(c.Universal()),
		MuscleGroups:      c.MuscleGroups(),
		MinWorkoutMinutes: policy.MinWorkoutMinutes,
		MaxWorkoutMinutes: policy.MaxWorkoutMinutes,
		MinDaysPerWeek:    policy.MinDaysPerWeek,
		MaxDaysPerWeek:    policy.MaxDaysPerWeek,
	}
}

// catalogGET describes the catalog and policy currently used for plan generation.
func (app *application) catalogGET(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.describeEngine(app.engine.Engine()))
}

func (app *application) catalogVersionsGET(w http.ResponseWriter, r *http.Request) {
	versions, err := app.store.Versions(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list catalog versions"))
		return
	}
	if versions == nil {
		versions = []sqlite.CatalogVersion{}
	}
	app.writeJSON(w, r, http.StatusOK, versions)
}

// catalogPUT imports the YAML catalog document in the request body and, unless ?activate=false, serves it.
func (app *application) catalogPUT(w http.ResponseWriter, r *http.Request) {
	version := r.PathValue("version")
	document, ok := app.readBody(w, r)
	if !ok {
		return
	}

	c, err := app.store.Import(r.Context(), version, document)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	if r.URL.Query().Get("activate") == "false" {
		app.writeJSON(w, r, http.StatusCreated, app.describeCatalog(c))
		return
	}
	app.activate(w, r, c, http.StatusCreated)
}

// catalogActivatePOST serves a previously imported catalog version.
func (app *application) catalogActivatePOST(w http.ResponseWriter, r *http.Request) {
	version := r.PathValue("version")
	document, err := app.store.Document(r.Context(), version)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	c, err := catalog.Parse(document)
	if err != nil {
		app.catalogError(w, r, errors.Wrap(err, "parse stored catalog", slog.String("version", version)))
		return
	}
	app.activate(w, r, c, http.StatusOK)
}

// catalogReloadPOST rebuilds the engine from the active catalog in the store.
func (app *application) catalogReloadPOST(w http.ResponseWriter, r *http.Request) {
	c, err := app.store.LoadActive(r.Context())
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.activate(w, r, c, http.StatusOK)
}

// activate builds an engine for c, marks c active in the store and swaps the served engine.
// The previous engine keeps serving when any step fails.
func (app *application) activate(w http.ResponseWriter, r *http.Request, c *catalog.Catalog, status int) {
	ctx := r.Context()
	engine, err := planner.New(c, app.policy)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "new engine", slog.String("version", c.Version())))
		return
	}
	app.activateMu.Lock()
	defer app.activateMu.Unlock()
	if err = app.store.Activate(ctx, c.Version()); err != nil {
		app.catalogError(w, r, err)
		return
	}
	previous := app.engine.Swap(engine)
	app.logger.LogAttrs(ctx, slog.LevelInfo, "swapped engine",
		slog.String("version", c.Version()),
		slog.String("previousVersion", previous.Catalog().Version()),
		slog.Int("exercises", c.Len()))
	app.writeJSON(w, r, status, app.describeEngine(engine))
}

// describeCatalog describes an imported but inactive catalog with the current policy.
func (app *application) describeCatalog(c *catalog.Catalog) catalogResponse {
	resp := app.describeEngine(app.engine.Engine())
	resp.Version = c.Version()
	resp.Exercises = c.Len()
	resp.UniversalSubset = len(c.Universal())
	resp.MuscleGroups = c.MuscleGroups()
	return resp
}

func (app *application) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	var integrityErr *catalog.IntegrityError
	switch {
	case errors.As(err, &integrityErr):
		app.writeJSON(w, r, http.StatusUnprocessableEntity,
			catalogErrorResponse{Error: catalog.ErrIntegrity.Error(), Problems: integrityErr.Problems})
	case errors.Is(err, catalog.ErrMalformedDocument), errors.Is(err, sqlite.ErrVersionMismatch):
		app.writeJSON(w, r, http.StatusUnprocessableEntity, catalogErrorResponse{Error: err.Error(), Problems: nil})
	case errors.Is(err, sqlite.ErrVersionConflict):
		app.writeJSON(w, r, http.StatusConflict, catalogErrorResponse{Error: sqlite.ErrVersionConflict.Error(), Problems: nil})
	case errors.Is(err, sqlite.ErrNotFound):
		app.notFound(w, r)
	default:
		app.serverError(w, r, err)
	}
}
