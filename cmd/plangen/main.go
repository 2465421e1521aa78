// Command plangen generates workout plans for a batch of profiles read from a YAML file.
//
// Usage:
//
//	plangen [-catalog catalog.yaml] [-policy policy.yaml] [-concurrency 8] [profiles.yaml]
//
// Profiles are read from standard input when no file is given. The plans are written to standard output as a
// JSON array in input order.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/errors"
	"github.com/myrjola/fitplan/internal/logging"
	"github.com/myrjola/fitplan/internal/planner"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// batchProfile is one entry of the profiles document.
type batchProfile struct {
	Name               string `yaml:"name"`
	planner.RawProfile `yaml:",inline"`
}

type batchResult struct {
	Name   string               `json:"name"`
	Plan   *planner.Plan        `json:"plan,omitempty"`
	Errors []planner.FieldError `json:"errors,omitempty"`
}

var ErrNoProfiles = errors.NewSentinel("no profiles")

// parseProfiles decodes the YAML profiles document and names unnamed profiles by position.
func parseProfiles(data []byte) ([]batchProfile, error) {
	var profiles []batchProfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&profiles); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoProfiles
		}
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}
	for i := range profiles {
		if profiles[i].Name == "" {
			profiles[i].Name = fmt.Sprintf("profile-%d", i+1)
		}
	}
	return profiles, nil
}

// generate runs the engine for every profile with at most concurrency goroutines.
// Invalid profiles are reported in their result and do not stop the batch.
func generate(ctx context.Context, engine *planner.Engine, profiles []batchProfile, concurrency int,
	logger *slog.Logger) ([]batchResult, error) {
	results := make([]batchResult, len(profiles))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))

	for i, p := range profiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("generate %s: %w", p.Name, err)
			}
			result := batchResult{Name: p.Name, Plan: nil, Errors: nil}
			plan, err := engine.GeneratePlan(p.RawProfile)
			var validationErr *planner.ValidationError
			switch {
			case errors.As(err, &validationErr):
				result.Errors = validationErr.Fields
				logger.LogAttrs(ctx, slog.LevelWarn, "invalid profile",
					slog.String("name", p.Name), slog.String("reason", validationErr.Error()))
			case err != nil:
				return errors.Wrap(err, "generate plan", slog.String("name", p.Name))
			default:
				result.Plan = &plan
				if degraded := plan.DegradedDays(); len(degraded) > 0 {
					logger.LogAttrs(ctx, slog.LevelWarn, "plan has degraded days",
						slog.String("name", p.Name), slog.Any("days", degraded))
				}
			}
			// Each goroutine owns its slot.
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // errors are annotated inside the group.
	}
	return results, nil
}

func run(ctx context.Context, logger *slog.Logger, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("plangen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		catalogPath = fs.String("catalog", "", "catalog YAML document, defaults to the built-in catalog")
		policyPath  = fs.String("policy", "", "policy YAML document overriding the default policy")
		concurrency = fs.Int("concurrency", runtime.GOMAXPROCS(0), "maximum number of plans generated at once")
	)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parse flags")
	}

	var (
		c   *catalog.Catalog
		err error
	)
	if *catalogPath != "" {
		c, err = catalog.LoadFile(*catalogPath)
	} else {
		c, err = catalog.Default()
	}
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	policy := planner.DefaultPolicy()
	if *policyPath != "" {
		if policy, err = planner.LoadPolicy(*policyPath); err != nil {
			return errors.Wrap(err, "load policy")
		}
	}

	engine, err := planner.New(c, policy)
	if err != nil {
		return errors.Wrap(err, "new engine")
	}

	var data []byte
	switch fs.NArg() {
	case 0:
		data, err = io.ReadAll(stdin)
	case 1:
		data, err = os.ReadFile(fs.Arg(0))
	default:
		return errors.New("expected at most one profiles file", slog.Int("args", fs.NArg()))
	}
	if err != nil {
		return errors.Wrap(err, "read profiles")
	}
	profiles, err := parseProfiles(data)
	if err != nil {
		return errors.Wrap(err, "parse profiles")
	}

	ctx = logging.WithAttrs(ctx, slog.String("catalogVersion", c.Version()))
	results, err := generate(ctx, engine, profiles, *concurrency, logger)
	if err != nil {
		return err
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "generated plans", slog.Int("profiles", len(profiles)))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err = enc.Encode(results); err != nil {
		return errors.Wrap(err, "encode plans")
	}
	return nil
}

func main() {
	ctx := context.Background()
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	})))
	if err := run(ctx, logger, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "plangen failed", errors.SlogError(err))
		os.Exit(1)
	}
}
