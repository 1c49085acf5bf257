// Package app wires configuration, storage and the engine into one value
// shared by the server and the local client.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/meltforce/vizofit/internal/analysis"
	"github.com/meltforce/vizofit/internal/config"
	"github.com/meltforce/vizofit/internal/imaging"
	"github.com/meltforce/vizofit/internal/locale"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/session"
	"github.com/meltforce/vizofit/internal/settings"
	"github.com/meltforce/vizofit/internal/storage"
	"go.uber.org/multierr"
)

// App is one opened store with the engine on top of it.
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Routines *storage.Routines
	Activity *storage.Activity
	Settings *settings.Manager
	Engine   *session.Orchestrator

	closers []io.Closer
}

// Options override collaborators, mostly for tests.
type Options struct {
	Analyzer analysis.Analyzer
	// Probe reports the system language on first run. Defaults to
	// locale.Probe.
	Probe func() string
}

// Open connects the configured store, loads settings and builds the engine.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger, opts Options) (*App, error) {
	backend := storage.Backend{Driver: cfg.Store.Driver, Path: cfg.Store.Path}
	if cfg.Store.Driver == config.DriverPostgres {
		backend.DSN = cfg.Store.Database.DSN()
		if err := storage.RunMigrations(backend.DSN, cfg.Store.Migrations); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")
	}

	kv, err := storage.Open(ctx, backend)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	a := &App{Config: cfg, Log: log, closers: []io.Closer{kv}}

	a.Settings = settings.NewManager(storage.NewSettingsStore(kv, log), log)
	probe := opts.Probe
	if probe == nil {
		probe = locale.Probe
	}
	if err := a.Settings.Load(ctx, probe); err != nil {
		return nil, multierr.Append(err, a.Close())
	}

	a.Routines = storage.NewRoutines(kv, log)
	a.Routines.FormatDate = locale.DateFormatter(func() string { return a.Settings.Get().Language })
	a.Activity = storage.NewActivity(kv, cfg.Activity.LogCap, log)

	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer, err = newAnalyzer(ctx, cfg.Analysis, log)
		if err != nil {
			return nil, multierr.Append(err, a.Close())
		}
	}

	a.Engine = session.New(session.Deps{
		Analyzer:   analyzer,
		Compressor: imaging.NewJPEG(log),
		Routines:   a.Routines,
		Activity:   a.Activity,
		Settings:   a.Settings,
		Preview: session.Preview{
			MaxDimension: cfg.Preview.MaxDimension,
			Quality:      cfg.Preview.Quality,
		},
	}, log)

	log.Info("store opened", "driver", cfg.Store.Driver, "language", a.Settings.Get().Language)
	return a, nil
}

// AddCloser registers c to be closed with the app.
func (a *App) AddCloser(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Close releases everything the app opened, newest first.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i].Close())
	}
	a.closers = nil
	return err
}

// newAnalyzer builds the Gemini analyzer. Without an API key the app still
// opens; every analysis then fails with a readable message.
func newAnalyzer(ctx context.Context, cfg config.AnalysisConfig, log *slog.Logger) (analysis.Analyzer, error) {
	g, err := analysis.NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.Timeout, log)
	if errors.Is(err, analysis.ErrMissingAPIKey) {
		log.Warn("analysis api key not configured, equipment analysis disabled")
		return analysis.AnalyzerFunc(func(context.Context, analysis.Request) (*models.WorkoutRoutine, error) {
			return nil, &analysis.Error{Message: "Equipment analysis is not configured.", Err: err}
		}), nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
