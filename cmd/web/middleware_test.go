package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/fitplan/internal/contexthelpers"
	"github.com/myrjola/fitplan/internal/testhelpers"
)

func Test_application_timeout(t *testing.T) {
	tests := []struct {
		name     string
		sleep    time.Duration
		isAdmin  bool
		timesOut bool
	}{
		{name: "completes within timeout", sleep: 500 * time.Millisecond, isAdmin: false, timesOut: false},
		{name: "times out for regular request", sleep: 3 * time.Second, isAdmin: false, timesOut: true},
		{name: "admin gets longer timeout", sleep: 9 * time.Second, isAdmin: true, timesOut: false},
		{name: "admin times out", sleep: 11 * time.Second, isAdmin: true, timesOut: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				app := &application{ //nolint:exhaustruct // this is a test
					logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
				}
				handler := app.timeout(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-time.After(tt.sleep):
						w.WriteHeader(http.StatusOK)
					case <-r.Context().Done():
					}
				}))

				req := httptest.NewRequest(http.MethodGet, "/api/healthy", nil)
				if tt.isAdmin {
					req = contexthelpers.AuthorizeAdmin(req)
				}
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				if tt.timesOut {
					if w.Code != http.StatusServiceUnavailable {
						t.Errorf("Expected status 503 on timeout, got %d", w.Code)
					}
					if !strings.Contains(w.Body.String(), "timed out") {
						t.Errorf("Expected timeout message in response body, got: %s", w.Body.String())
					}
				} else if w.Code != http.StatusOK {
					t.Errorf("Expected status 200, got %d", w.Code)
				}
			})
		})
	}
}

func Test_application_middleware(t *testing.T) {
	app := &application{ //nolint:exhaustruct // this is a test
		logger:     testhelpers.Logger(t),
		adminToken: "",
	}

	t.Run("recovers panics and traces requests", func(t *testing.T) {
		handler := app.recoverPanic(app.logAndTraceRequest(secureHeaders(
			http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("boom")
			}))))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plans", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if got := w.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		if _, err := uuid.Parse(w.Header().Get("X-Trace-Id")); err != nil {
			t.Errorf("X-Trace-Id is not a uuid: %v", err)
		}
		if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
		}
	})

	t.Run("hides admin endpoints without token", func(t *testing.T) {
		handler := app.mustAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		req := httptest.NewRequest(http.MethodPost, "/api/catalog/reload", nil)
		req.Header.Set("Authorization", "Bearer ")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}
