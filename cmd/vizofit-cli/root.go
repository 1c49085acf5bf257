package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/meltforce/vizofit/internal/analysis"
	"github.com/meltforce/vizofit/internal/app"
	"github.com/meltforce/vizofit/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var (
	configPath string
	dbPath     string
	verbose    bool

	// analyzerOverride replaces the configured analyzer in tests.
	analyzerOverride analysis.Analyzer
)

var rootCmd = &cobra.Command{
	Use:           "vizofit",
	Short:         "vizofit turns photos of gym equipment into workout routines",
	Long:          "vizofit analyzes equipment photos into routines, keeps a local library of them, and runs timed training sessions from your terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite store (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		p, err := app.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	_, statErr := os.Stat(path)

	cfg, err := config.LoadOptional(path)
	if err != nil {
		return nil, err
	}
	switch {
	case dbPath != "":
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.Path = dbPath
	case errors.Is(statErr, fs.ErrNotExist) && cfg.Store.Driver == config.DriverSQLite && os.Getenv("VIZOFIT_STORE_PATH") == "":
		p, err := app.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.Store.Path = p
	}
	return cfg, nil
}

// withApp opens the store for one command and closes it afterwards.
func withApp(cmd *cobra.Command, run func(*app.App) error) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var console = cmd.ErrOrStderr()
	if !verbose {
		console = nil
	}
	log, logCloser, err := app.NewLogger(cfg.Log, console)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, logCloser.Close()) }()

	a, err := app.Open(cmd.Context(), cfg, log, app.Options{Analyzer: analyzerOverride})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.Close()) }()

	return run(a)
}
