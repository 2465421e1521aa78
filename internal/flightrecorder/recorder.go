// Package flightrecorder keeps a rolling execution trace in memory and writes it to disk when a request
// misses its deadline or plan generation is slower than expected.
package flightrecorder

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"

	"github.com/myrjola/fitplan/internal/errors"
)

const (
	defaultMinAge   = 2 * time.Minute
	defaultMaxBytes = 32 * 1024 * 1024
	defaultCooldown = 15 * time.Minute
)

var ErrInvalidConfig = errors.NewSentinel("invalid flight recorder config")

type Config struct {
	Logger *slog.Logger
	// Directory receives the trace files. It is created when missing.
	Directory string
	// MinAge is how far back the in-memory trace reaches. Zero uses the default.
	MinAge time.Duration
	// MaxBytes caps the in-memory trace. Zero uses the default.
	MaxBytes uint64
	// Cooldown is the minimum time between two captures. Zero uses the default.
	Cooldown time.Duration
}

type Recorder struct {
	logger    *slog.Logger
	recorder  *trace.FlightRecorder
	directory string
	cooldown  time.Duration
	now       func() time.Time
	// lastCapture holds the Unix nanoseconds of the last capture.
	lastCapture atomic.Int64
}

func New(cfg Config) (*Recorder, error) {
	if cfg.Logger == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "logger is required")
	}
	if cfg.Directory == "" {
		return nil, errors.Wrap(ErrInvalidConfig, "directory is required")
	}
	if err := os.MkdirAll(cfg.Directory, 0o750); err != nil {
		return nil, errors.Wrap(err, "create traces directory", slog.String("directory", cfg.Directory))
	}

	minAge := cmp.Or(cfg.MinAge, defaultMinAge)
	maxBytes := cmp.Or(cfg.MaxBytes, defaultMaxBytes)

	return &Recorder{
		logger: cfg.Logger,
		recorder: trace.NewFlightRecorder(trace.FlightRecorderConfig{
			MinAge:   minAge,
			MaxBytes: maxBytes,
		}),
		directory:   cfg.Directory,
		cooldown:    cmp.Or(cfg.Cooldown, defaultCooldown),
		now:         time.Now,
		lastCapture: atomic.Int64{},
	}, nil
}

func (r *Recorder) Start(ctx context.Context) error {
	if err := r.recorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("directory", r.directory), slog.Duration("cooldown", r.cooldown))
	return nil
}

func (r *Recorder) Stop(ctx context.Context) {
	r.recorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// Capture writes the recorded trace to a file named after reason and returns its path.
// It returns an empty path when a capture happened within the cooldown or writing failed.
func (r *Recorder) Capture(ctx context.Context, reason string) string {
	now := r.now()
	last := r.lastCapture.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "trace capture in cooldown", slog.String("reason", reason))
		return ""
	}
	// A concurrent capture won the race.
	if !r.lastCapture.CompareAndSwap(last, now.UnixNano()) {
		return ""
	}

	path := filepath.Join(r.directory, fmt.Sprintf("%s-%s.trace", reason, now.UTC().Format("20060102-150405")))
	written, err := r.writeTrace(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to capture trace", errors.SlogError(err))
		return ""
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace",
		slog.String("reason", reason), slog.String("file", path), slog.Int64("bytes", written))
	return path
}

func (r *Recorder) writeTrace(path string) (_ int64, err error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(err, "create trace file", slog.String("file", path))
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "close trace file", slog.String("file", path)))
		}
	}()

	written, err := r.recorder.WriteTo(file)
	if err != nil {
		return written, errors.Wrap(err, "write trace", slog.String("file", path))
	}
	return written, nil
}
