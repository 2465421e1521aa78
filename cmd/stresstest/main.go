package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/e2etest"
	"github.com/myrjola/fitplan/internal/logging"
	"github.com/myrjola/fitplan/internal/planner"
	"github.com/myrjola/fitplan/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	requestTimeout          = 5 * time.Second
	maxConcurrentOperations = 20
	rounds                  = 5
	successRateThreshold    = 99.0
	expectedArgsCount       = 2
	percentageMultiplier    = 100
)

// profiles returns every goal and level combination with a spread of budgets and equipment.
func profiles() []planner.RawProfile {
	equipment := [][]string{
		nil,
		{"dumbbells", "bench"},
		{"barbell", "bench", "pull-up-bar", "cable-machine"},
	}
	var ps []planner.RawProfile
	for _, goal := range planner.Goals() {
		for _, level := range catalog.Levels() {
			for i, minutes := range []int{10, 30, 60, 120} {
				ps = append(ps, planner.RawProfile{
					Goal:           string(goal),
					Level:          string(level),
					Equipment:      equipment[i%len(equipment)],
					WorkoutMinutes: minutes,
					WeightKg:       55 + float64(15*i), //nolint:mnd // varied body weight.
					DaysPerWeek:    nil,
				})
			}
		}
	}
	return ps
}

type result struct {
	latency time.Duration
	status  int
}

// GeneratePlans posts every profile rounds times with bounded concurrency and collects the results.
func GeneratePlans(ctx context.Context, client *e2etest.Client, logger *slog.Logger) ([]result, error) {
	var (
		mu       sync.Mutex
		results  []result
		failures atomic.Int64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	for round := range rounds {
		for _, p := range profiles() {
			g.Go(func() error {
				reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
				defer cancel()

				start := time.Now()
				status, err := client.PostJSON(reqCtx, "/api/plans", p, nil)
				if err != nil {
					failures.Add(1)
					// Log individual failures but don't stop the entire test.
					logger.LogAttrs(reqCtx, slog.LevelWarn, "request failed",
						slog.Int("round", round), slog.String("goal", p.Goal), slog.Any("error", err))
					return nil
				}
				mu.Lock()
				results = append(results, result{latency: time.Since(start), status: status})
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate plans: %w", err)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "requests finished",
		slog.Int("completed", len(results)), slog.Int64("transport_failures", failures.Load()))
	return results, nil
}

// Summarize logs the success rate and latency percentiles and fails below the success threshold.
func Summarize(ctx context.Context, results []result, total int, logger *slog.Logger) error {
	if total == 0 {
		return errors.New("no requests")
	}
	latencies := make([]time.Duration, 0, len(results))
	successes := 0
	for _, r := range results {
		latencies = append(latencies, r.latency)
		if r.status == http.StatusCreated {
			successes++
		}
	}
	slices.Sort(latencies)
	percentile := func(p int) time.Duration {
		if len(latencies) == 0 {
			return 0
		}
		return latencies[(len(latencies)-1)*p/percentageMultiplier]
	}

	successRate := float64(successes) / float64(total) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "load test completed",
		slog.Int("successful", successes),
		slog.Int("total", total),
		slog.Float64("success_rate", successRate),
		slog.Duration("p50", percentile(50)), //nolint:mnd // median
		slog.Duration("p95", percentile(95)), //nolint:mnd // 95th percentile
		slog.Duration("max", percentile(percentageMultiplier)))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client := e2etest.NewClient(url)
	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	results, err := GeneratePlans(ctx, client, logger)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test aborted", slog.Any("error", err))
		os.Exit(1)
	}
	if err = Summarize(ctx, results, rounds*len(profiles()), logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)))
}
