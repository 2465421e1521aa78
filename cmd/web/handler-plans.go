package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/myrjola/fitplan/internal/errors"
	"github.com/myrjola/fitplan/internal/planner"
)

type planResponse struct {
	Name string `json:"name"`
	planner.Plan
}

type validationResponse struct {
	Errors []planner.FieldError `json:"errors"`
}

// plansPOST generates a plan for the profile in the request body.
func (app *application) plansPOST(w http.ResponseWriter, r *http.Request) {
	var raw planner.RawProfile
	if !app.decodeJSON(w, r, &raw) {
		return
	}

	ctx := r.Context()
	plan, err := app.engine.GeneratePlan(raw)
	var validationErr *planner.ValidationError
	switch {
	case errors.As(err, &validationErr):
		app.logger.LogAttrs(ctx, slog.LevelDebug, "rejected profile", slog.String("reason", validationErr.Error()))
		app.writeJSON(w, r, http.StatusUnprocessableEntity, validationResponse{Errors: validationErr.Fields})
		return
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "generate plan"))
		return
	}

	for _, warning := range plan.Warnings {
		app.logger.LogAttrs(ctx, slog.LevelInfo, "profile warning", slog.String("warning", warning))
	}
	if degraded := plan.DegradedDays(); len(degraded) > 0 {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "plan has degraded days",
			slog.String("days", strings.Join(degraded, ",")),
			slog.String("goal", string(plan.Goal)),
			slog.String("level", string(plan.Level)),
			slog.Int("workoutMinutes", plan.WorkoutMinutes),
			slog.String("catalogVersion", plan.CatalogVersion))
	}

	app.writeJSON(w, r, http.StatusCreated, planResponse{Name: plan.Name(), Plan: plan})
}
