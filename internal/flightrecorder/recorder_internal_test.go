package flightrecorder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/myrjola/fitplan/internal/testhelpers"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := New(Config{
		Logger:    testhelpers.Logger(t),
		Directory: filepath.Join(t.TempDir(), "traces"),
		MinAge:    0,
		MaxBytes:  0,
		Cooldown:  time.Minute,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err = r.Start(t.Context()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { r.Stop(t.Context()) })
	return r
}

func TestNew_invalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing logger", cfg: Config{Logger: nil, Directory: t.TempDir()}},
		{name: "missing directory", cfg: Config{Logger: testhelpers.Logger(t), Directory: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want %v", err, ErrInvalidConfig)
			}
		})
	}
}

func TestRecorder_Capture(t *testing.T) {
	r := newTestRecorder(t)
	now := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	path := r.Capture(t.Context(), "timeout")
	if path == "" {
		t.Fatal("expected a trace file")
	}
	if got, want := filepath.Base(path), "timeout-20261001-083000.trace"; got != want {
		t.Errorf("file name = %q, want %q", got, want)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty trace file, stat error = %v", err)
	}

	now = now.Add(30 * time.Second)
	if path = r.Capture(t.Context(), "slow-plan"); path != "" {
		t.Errorf("expected cooldown to skip capture, got %s", path)
	}

	now = now.Add(time.Minute)
	path = r.Capture(t.Context(), "slow-plan")
	if !strings.HasPrefix(filepath.Base(path), "slow-plan-") {
		t.Errorf("expected capture after cooldown, got %q", path)
	}
}
