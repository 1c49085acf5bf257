package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meltforce/vizofit/internal/analysis"
	"github.com/meltforce/vizofit/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "vizofit.db")
	return cfg
}

// TestOpenWiresEngine opens a sqlite store and checks the first-run
// language probe and the disabled analyzer.
func TestOpenWiresEngine(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, sqliteConfig(t), discardLogger(), Options{Probe: func() string { return "de" }})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if got := a.Settings.Get().Language; got != "de" {
		t.Errorf("language = %q, want de", got)
	}

	_, err = a.Engine.Analyze(ctx, []byte{0xff, 0xd8, 0xff})
	var ae *analysis.Error
	if !errors.As(err, &ae) || !errors.Is(err, analysis.ErrMissingAPIKey) {
		t.Errorf("Analyze without key = %v", err)
	}
}

// TestOpenPersistsAcrossReopen verifies the settings and library survive a
// close and reopen of the same file.
func TestOpenPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	a, err := Open(ctx, cfg, discardLogger(), Options{Probe: func() string { return "fr" }})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Settings.Upgrade(ctx); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := Open(ctx, cfg, discardLogger(), Options{Probe: func() string { return "en" }})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	s := b.Settings.Get()
	if s.Language != "fr" || !s.IsPro {
		t.Errorf("settings after reopen = %+v", s)
	}
}

type failingCloser struct{ err error }

func (f failingCloser) Close() error { return f.err }

// TestCloseCombinesErrors verifies every closer runs and errors are joined.
func TestCloseCombinesErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory
	a, err := Open(context.Background(), cfg, discardLogger(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	a.AddCloser(failingCloser{errors.New("first")})
	a.AddCloser(failingCloser{errors.New("second")})

	err = a.Close()
	if err == nil || !strings.Contains(err.Error(), "first") || !strings.Contains(err.Error(), "second") {
		t.Errorf("Close = %v, want both errors", err)
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken") }

// TestCombinedWriterKeepsWriting verifies a failing writer does not stop
// the others.
func TestCombinedWriterKeepsWriting(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewCombinedWriter(brokenWriter{}, &buf).Write([]byte("hello"))
	if n != 5 || err == nil {
		t.Errorf("Write = %d, %v", n, err)
	}
	if buf.String() != "hello" {
		t.Errorf("buffer = %q", buf.String())
	}
}

// TestNewLoggerFile verifies records reach the rotating file and console.
func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vizofit.log")
	var console bytes.Buffer
	log, closer, err := NewLogger(config.LogConfig{Level: "warn", File: path}, &console)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("dropped")
	log.Warn("kept", "k", "v")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "kept") || strings.Contains(string(data), "dropped") {
		t.Errorf("log file = %q", data)
	}
	if !strings.Contains(console.String(), "kept") {
		t.Errorf("console = %q", console.String())
	}

	if _, _, err := NewLogger(config.LogConfig{Level: "chatty"}, nil); err == nil {
		t.Error("expected error for bad level")
	}
}
