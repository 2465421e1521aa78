package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/e2etest"
	"github.com/myrjola/fitplan/internal/planner"
	"github.com/myrjola/fitplan/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

func coreCatalog(version string) []byte {
	return fmt.Appendf(nil, `
version: %q
muscle_groups: [core]
defaults:
  beginner: {min_reps: 8, max_reps: 10, rest: 60}
  intermediate: {min_reps: 8, max_reps: 10, rest: 60}
  advanced: {min_reps: 8, max_reps: 10, rest: 60}
exercises:
  - {id: crunch, name: Crunch, muscle_groups: [core], met: 3, universal: true}
`, version)
}

func Test_application_catalogAdmin(t *testing.T) {
	server := startTestServer(t)
	ctx := t.Context()
	anonymous := server.Client()
	admin := anonymous.WithHeader("Authorization", "Bearer "+testAdminToken)

	defaultCatalog, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	activeVersion := func(t *testing.T) string {
		t.Helper()
		var resp catalogResponse
		if _, err = anonymous.GetJSON(ctx, "/api/catalog", &resp); err != nil {
			t.Fatalf("GetJSON() error = %v", err)
		}
		return resp.Version
	}

	put := func(t *testing.T, version string, document []byte) (int, catalogErrorResponse) {
		t.Helper()
		resp, err := admin.Do(ctx, http.MethodPut, "/api/catalog/"+version, "application/yaml", document)
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		var body catalogErrorResponse
		status, err := e2etest.DecodeJSON(resp, &body)
		if err != nil {
			t.Fatalf("decode error = %v", err)
		}
		return status, body
	}

	if got := activeVersion(t); got != defaultCatalog.Version() {
		t.Fatalf("seeded version = %q, want %q", got, defaultCatalog.Version())
	}

	t.Run("requires admin token", func(t *testing.T) {
		resp, err := anonymous.Do(ctx, http.MethodPut, "/api/catalog/core-1", "application/yaml", coreCatalog("core-1"))
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
		}
	})

	t.Run("rejects integrity problems", func(t *testing.T) {
		status, body := put(t, "broken", []byte(`
version: broken
exercises:
  - {id: crunch, name: Crunch, muscle_groups: [core], met: 0}
`))
		if status != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", status, http.StatusUnprocessableEntity)
		}
		if len(body.Problems) == 0 {
			t.Error("expected problems to be listed")
		}
		if got := activeVersion(t); got != defaultCatalog.Version() {
			t.Errorf("active version = %q, want the previous %q", got, defaultCatalog.Version())
		}
	})

	t.Run("imports and swaps engine", func(t *testing.T) {
		if status, body := put(t, "core-1", coreCatalog("core-1")); status != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %+v", status, http.StatusCreated, body)
		}
		if got := activeVersion(t); got != "core-1" {
			t.Fatalf("active version = %q, want %q", got, "core-1")
		}

		var plan planResponse
		status, err := anonymous.PostJSON(ctx, "/api/plans", planner.RawProfile{
			Goal:           "general-fitness",
			Level:          "beginner",
			Equipment:      nil,
			WorkoutMinutes: 20,
			WeightKg:       60,
			DaysPerWeek:    nil,
		}, &plan)
		if err != nil || status != http.StatusCreated {
			t.Fatalf("PostJSON() status = %d, error = %v", status, err)
		}
		if plan.CatalogVersion != "core-1" {
			t.Errorf("plan catalog version = %q, want %q", plan.CatalogVersion, "core-1")
		}
	})

	t.Run("conflicting contents", func(t *testing.T) {
		status, _ := put(t, "core-1", append(coreCatalog("core-1"), []byte("# changed\n")...))
		if status != http.StatusConflict {
			t.Errorf("status = %d, want %d", status, http.StatusConflict)
		}
	})

	t.Run("version mismatch", func(t *testing.T) {
		status, _ := put(t, "core-2", coreCatalog("core-3"))
		if status != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d", status, http.StatusUnprocessableEntity)
		}
	})

	t.Run("activates previous version", func(t *testing.T) {
		resp, err := admin.Do(ctx, http.MethodPost, "/api/catalog/"+defaultCatalog.Version()+"/activate", "", nil)
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if got := activeVersion(t); got != defaultCatalog.Version() {
			t.Errorf("active version = %q, want %q", got, defaultCatalog.Version())
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		resp, err := admin.Do(ctx, http.MethodPost, "/api/catalog/nope/activate", "", nil)
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("reloads active version", func(t *testing.T) {
		// Activate directly in the database to simulate another process changing the store.
		if _, err = server.DB().ExecContext(ctx, `UPDATE catalog_versions SET active = 0 WHERE active = 1`); err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		if _, err = server.DB().ExecContext(ctx,
			`UPDATE catalog_versions SET active = 1 WHERE version = 'core-1'`); err != nil {
			t.Fatalf("activate: %v", err)
		}

		var resp catalogResponse
		status, err := admin.PostJSON(ctx, "/api/catalog/reload", nil, &resp)
		if err != nil {
			t.Fatalf("PostJSON() error = %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("status = %d, want %d", status, http.StatusOK)
		}
		if resp.Version != "core-1" {
			t.Errorf("version = %q, want %q", resp.Version, "core-1")
		}
	})

	t.Run("lists versions", func(t *testing.T) {
		var versions []sqlite.CatalogVersion
		status, err := admin.GetJSON(ctx, "/api/catalog/versions", &versions)
		if err != nil || status != http.StatusOK {
			t.Fatalf("GetJSON() status = %d, error = %v", status, err)
		}
		var got []string
		for _, v := range versions {
			got = append(got, v.Version)
		}
		if diff := cmp.Diff([]string{defaultCatalog.Version(), "core-1"}, got); diff != "" {
			t.Errorf("versions mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("concurrent activations keep store and engine in sync", func(t *testing.T) {
		versions := []string{defaultCatalog.Version(), "core-1"}
		var g errgroup.Group
		for i := range 20 {
			g.Go(func() error {
				resp, err := admin.Do(ctx, http.MethodPost, "/api/catalog/"+versions[i%2]+"/activate", "", nil)
				if err != nil {
					return err
				}
				if err = resp.Body.Close(); err != nil {
					return err
				}
				if resp.StatusCode != http.StatusOK {
					return fmt.Errorf("activate %s: status %d", versions[i%2], resp.StatusCode)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("activate: %v", err)
		}

		var stored []sqlite.CatalogVersion
		if status, err := admin.GetJSON(ctx, "/api/catalog/versions", &stored); err != nil || status != http.StatusOK {
			t.Fatalf("GetJSON() status = %d, error = %v", status, err)
		}
		var active []string
		for _, v := range stored {
			if v.Active {
				active = append(active, v.Version)
			}
		}
		if diff := cmp.Diff([]string{activeVersion(t)}, active); diff != "" {
			t.Errorf("stored active version differs from the served one (-served +stored):\n%s", diff)
		}
	})
}
