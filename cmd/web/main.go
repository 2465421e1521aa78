package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/envstruct"
	"github.com/myrjola/fitplan/internal/errors"
	"github.com/myrjola/fitplan/internal/flightrecorder"
	"github.com/myrjola/fitplan/internal/logging"
	"github.com/myrjola/fitplan/internal/planner"
	"github.com/myrjola/fitplan/internal/sqlite"
	"github.com/yuin/goldmark"
)

type application struct {
	logger   *slog.Logger
	engine   *planner.Reloadable
	store    *sqlite.CatalogStore
	policy   planner.Policy
	markdown goldmark.Markdown
	// recorder is nil when trace capturing is disabled.
	recorder *flightrecorder.Recorder
	// adminToken guards the catalog endpoints. Empty disables them.
	adminToken    string
	slowThreshold time.Duration
	// activateMu keeps the active version in the store and the served engine in step.
	activateMu sync.Mutex
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"FITPLAN_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"FITPLAN_SQLITE_URL" envDefault:"./fitplan.sqlite3"`
	// AdminToken is the bearer token required by the catalog management endpoints.
	AdminToken string `env:"FITPLAN_ADMIN_TOKEN" envDefault:""`
	// PolicyPath optionally points to a YAML file overriding the default planning policy.
	PolicyPath string `env:"FITPLAN_POLICY_PATH" envDefault:""`
	// CatalogPath optionally points to the catalog document seeded into an empty database.
	CatalogPath string `env:"FITPLAN_CATALOG_PATH" envDefault:""`
	// TracesDirectory enables the flight recorder when set.
	TracesDirectory string `env:"FITPLAN_TRACES_DIRECTORY" envDefault:""`
	// SlowRequestThreshold is the request duration after which a trace is captured.
	SlowRequestThreshold time.Duration `env:"FITPLAN_SLOW_REQUEST_THRESHOLD" envDefault:"500ms"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	policy := planner.DefaultPolicy()
	if cfg.PolicyPath != "" {
		if policy, err = planner.LoadPolicy(cfg.PolicyPath); err != nil {
			return errors.Wrap(err, "load policy", slog.String("path", cfg.PolicyPath))
		}
	}

	seed := catalog.DefaultDocument()
	if cfg.CatalogPath != "" {
		if seed, err = os.ReadFile(cfg.CatalogPath); err != nil {
			return errors.Wrap(err, "read seed catalog", slog.String("path", cfg.CatalogPath))
		}
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	store := sqlite.NewCatalogStore(db)
	active, err := store.EnsureActive(ctx, seed)
	if err != nil {
		return errors.Wrap(err, "load active catalog")
	}
	engine, err := planner.New(active, policy)
	if err != nil {
		return errors.Wrap(err, "new engine", slog.String("catalogVersion", active.Version()))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "engine ready",
		slog.String("catalogVersion", active.Version()), slog.Int("exercises", active.Len()))

	var recorder *flightrecorder.Recorder
	if cfg.TracesDirectory != "" {
		if recorder, err = flightrecorder.New(flightrecorder.Config{
			Logger:    logger,
			Directory: cfg.TracesDirectory,
			MinAge:    0,
			MaxBytes:  0,
			Cooldown:  0,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop(context.WithoutCancel(ctx))
	}

	app := application{
		logger:        logger,
		engine:        planner.NewReloadable(engine),
		store:         store,
		policy:        policy,
		markdown:      goldmark.New(),
		recorder:      recorder,
		adminToken:    cfg.AdminToken,
		slowThreshold: cfg.SlowRequestThreshold,
		activateMu:    sync.Mutex{},
	}
	if app.adminToken == "" {
		logger.LogAttrs(ctx, slog.LevelInfo, "catalog management disabled, FITPLAN_ADMIN_TOKEN is not set")
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
