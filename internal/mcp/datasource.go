package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/meltforce/vizofit/internal/activity"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/session"
	"github.com/meltforce/vizofit/internal/storage"
)

// DataSource abstracts the engine for MCP tools. Local (in-process) and
// HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListRoutines(ctx context.Context, query string) ([]models.SavedWorkout, error)
	GetRoutine(ctx context.Context, id string, level int, system models.UnitSystem) (*session.Display, error)
	GetActivity(ctx context.Context, limit int) (*activity.Report, error)
}

// Local reads straight from the engine in this process.
type Local struct {
	Engine   *session.Orchestrator
	Routines *storage.Routines
	Activity *storage.Activity
	// Lock serializes access with other transports. Nil means no locking.
	Lock sync.Locker
	Now  func() time.Time
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func (l *Local) lock() func() {
	if l.Lock == nil {
		return func() {}
	}
	l.Lock.Lock()
	return l.Lock.Unlock
}

func (l *Local) ListRoutines(ctx context.Context, query string) ([]models.SavedWorkout, error) {
	defer l.lock()()
	return l.Routines.SortedView(ctx, query)
}

// GetRoutine opens a saved routine at level. An empty system uses the
// user's setting.
func (l *Local) GetRoutine(ctx context.Context, id string, level int, system models.UnitSystem) (*session.Display, error) {
	defer l.lock()()
	v, err := l.Engine.OpenSaved(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := v.SetIntensity(level); err != nil {
		return nil, err
	}
	var d session.Display
	if system == "" {
		d = v.Display()
	} else {
		d = v.DisplayIn(system)
	}
	return &d, nil
}

func (l *Local) GetActivity(ctx context.Context, limit int) (*activity.Report, error) {
	unlock := l.lock()
	logs, err := l.Activity.List(ctx)
	unlock()
	if err != nil {
		return nil, err
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	r := activity.NewReport(logs, now(), limit)
	return &r, nil
}
