package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/fitplan/internal/e2etest"
	"github.com/myrjola/fitplan/internal/logging"
	"github.com/myrjola/fitplan/internal/testhelpers"
)

type catalogInfo struct {
	Version   string `json:"version"`
	Exercises int    `json:"exercises"`
}

type planInfo struct {
	Name           string            `json:"name"`
	CatalogVersion string            `json:"catalog_version"`
	Days           []json.RawMessage `json:"days"`
}

// TestGeneratePlan checks that the served catalog produces a plan for a bodyweight beginner.
func TestGeneratePlan(client *e2etest.Client) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var info catalogInfo
	status, err := client.GetJSON(ctx, "/api/catalog", &info)
	if err != nil {
		return "", fmt.Errorf("get catalog: %w", err)
	}
	if status != http.StatusOK || info.Exercises == 0 {
		return "", fmt.Errorf("unexpected catalog response: status %d, %d exercises", status, info.Exercises)
	}

	var plan planInfo
	status, err = client.PostJSON(ctx, "/api/plans", map[string]any{
		"goal":            "general-fitness",
		"level":           "beginner",
		"equipment":       []string{},
		"workout_minutes": 30,
		"weight_kg":       70,
	}, &plan)
	if err != nil {
		return "", fmt.Errorf("generate plan: %w", err)
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("generate plan: unexpected status %d", status)
	}
	if plan.CatalogVersion != info.Version || len(plan.Days) == 0 {
		return "", fmt.Errorf("unexpected plan %q from catalog %q with %d days",
			plan.Name, plan.CatalogVersion, len(plan.Days))
	}
	return plan.Name, nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
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
	name, err := TestGeneratePlan(client)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error generating plan", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌",
		slog.String("plan", name), slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
