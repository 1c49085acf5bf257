package app

import (
	"io"
	"log/slog"

	"github.com/meltforce/vizofit/internal/config"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// CombinedWriter writes to every writer even when one of them fails.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	ok := false
	for _, w := range cw.Writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Combine(err, werr)
			continue
		}
		ok = true
	}
	if ok {
		return len(p), err
	}
	return 0, err
}

// NewLogger builds the process logger. With log.file set, records go to a
// rotating file and, when console is non-nil, to console as well. The
// returned closer releases the file.
func NewLogger(cfg config.LogConfig, console io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	out := console
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  50, // megabytes
			Compress: true,
		}
		closer = file
		out = file
		if console != nil {
			out = NewCombinedWriter(console, file)
		}
	}
	if out == nil {
		out = io.Discard
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
