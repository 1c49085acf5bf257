package storage

import (
	"context"
	"errors"
	"fmt"
)

// Collection keys. Each logical collection is one JSON document.
const (
	KeySavedWorkouts = "saved_workouts"
	KeyActivityLogs  = "activity_logs"
	KeyUserSettings  = "user_settings"
)

// ErrNotFound is returned when an id does not exist in a collection.
var ErrNotFound = errors.New("not found")

// KV is the local key-value store behind every collection. Get reports
// false when the key has never been written.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend selects a KV implementation.
type Backend struct {
	Driver string // "sqlite", "postgres" or "memory"
	Path   string // sqlite file
	DSN    string // postgres connection string
}

// Open opens the configured backend. Postgres migrations are not applied
// here; call RunMigrations first.
func Open(ctx context.Context, b Backend) (KV, error) {
	switch b.Driver {
	case "sqlite", "":
		return OpenSQLite(ctx, b.Path)
	case "postgres":
		return OpenPostgres(ctx, b.DSN)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", b.Driver)
}
