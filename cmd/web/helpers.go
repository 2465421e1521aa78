package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/myrjola/fitplan/internal/errors"
	"github.com/myrjola/fitplan/internal/planner"
)

// maxBodyBytes bounds request bodies. Catalog documents are the largest payloads.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("marshal response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(data); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "failed to write response", errors.SlogError(err))
	}
}

func (app *application) errorJSON(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, errorResponse{Error: message})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.errorJSON(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.errorJSON(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// readBody reads at most maxBodyBytes and responds with an error when the body is larger or unreadable.
func (app *application) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			app.errorJSON(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		app.errorJSON(w, r, http.StatusBadRequest, "could not read request body")
		return nil, false
	}
	return body, true
}

// decodeJSON decodes the request body into v and responds with 400 Bad Request on malformed input. A field of the
// wrong type is answered with 422 Unprocessable Entity and the same error list profile validation produces.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, ok := app.readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			app.writeJSON(w, r, http.StatusUnprocessableEntity, validationResponse{
				Errors: []planner.FieldError{{Field: typeErr.Field, Reason: typeReason(typeErr)}},
			})
			return false
		}
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "malformed request body", slog.Any("error", err))
		app.errorJSON(w, r, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

func typeReason(err *json.UnmarshalTypeError) string {
	switch err.Type.Kind() { //nolint:exhaustive // request fields are strings, numbers and lists.
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("must be a whole number, got %s", err.Value)
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("must be a number, got %s", err.Value)
	case reflect.String:
		return fmt.Sprintf("must be a string, got %s", err.Value)
	case reflect.Slice:
		return fmt.Sprintf("must be a list, got %s", err.Value)
	default:
		return fmt.Sprintf("has the wrong type, got %s", err.Value)
	}
}
