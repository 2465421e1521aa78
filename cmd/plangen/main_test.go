package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitplan/internal/planner"
	"github.com/myrjola/fitplan/internal/testhelpers"
)

const profilesDocument = `
- name: alice
  goal: muscle-gain
  level: beginner
  workout_minutes: 30
  weight_kg: 70
- goal: fat-loss
  level: advanced
  equipment: [dumbbells, Jump Rope]
  workout_minutes: 45
  weight_kg: 82.5
  days_per_week: 3
- name: mallory
  goal: get-swole
  level: beginner
  workout_minutes: 30
  weight_kg: 70
`

func Test_run(t *testing.T) {
	logger := testhelpers.Logger(t)

	var stdout bytes.Buffer
	if err := run(t.Context(), logger, []string{"-concurrency", "2"}, strings.NewReader(profilesDocument),
		&stdout); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var results []batchResult
	if err := json.Unmarshal(stdout.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}

	var names []string
	for _, r := range results {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"alice", "profile-2", "mallory"}, names); diff != "" {
		t.Fatalf("result order mismatch (-want +got):\n%s", diff)
	}

	if results[0].Plan == nil || len(results[0].Plan.Days) != 3 {
		t.Errorf("alice: expected 3 day plan, got %+v", results[0])
	}
	if results[1].Plan == nil || results[1].Plan.DaysPerWeek != 3 {
		t.Errorf("profile-2: expected the days_per_week override, got %+v", results[1])
	}
	if diff := cmp.Diff([]planner.FieldError{{Field: planner.FieldGoal, Reason: ""}}, results[2].Errors,
		cmp.Comparer(func(a, b planner.FieldError) bool { return a.Field == b.Field })); diff != "" {
		t.Errorf("mallory errors mismatch (-want +got):\n%s", diff)
	}
	if results[2].Plan != nil {
		t.Error("mallory: expected no plan")
	}
}

func Test_run_errors(t *testing.T) {
	dir := t.TempDir()
	brokenCatalog := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(brokenCatalog, []byte("version: \"1\"\nexercises: []\n"), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		stdin   string
		wantErr error
	}{
		{name: "empty input", args: nil, stdin: "", wantErr: ErrNoProfiles},
		{name: "empty list", args: nil, stdin: "[]", wantErr: ErrNoProfiles},
		{name: "unknown flag", args: []string{"-verbose"}, stdin: profilesDocument, wantErr: nil},
		{name: "unknown profile field", args: nil, stdin: "- goal: endurance\n  height_cm: 180\n", wantErr: nil},
		{name: "broken catalog", args: []string{"-catalog", brokenCatalog}, stdin: profilesDocument, wantErr: nil},
		{name: "missing profiles file", args: []string{filepath.Join(dir, "missing.yaml")}, stdin: "", wantErr: os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := testhelpers.Logger(t)
			var stdout bytes.Buffer
			err := run(t.Context(), logger, tt.args, strings.NewReader(tt.stdin), &stdout)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("run() error = %v, want %v", err, tt.wantErr)
			}
			if stdout.Len() != 0 {
				t.Errorf("expected no output, got %s", stdout.String())
			}
		})
	}
}
