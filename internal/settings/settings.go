// Package settings owns the process-wide UserSettings. There is exactly one
// Manager per process and Update is the only way to change settings.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meltforce/vizofit/internal/locale"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/storage"
)

// ErrInvalid is returned for a Change carrying an unknown enum value.
var ErrInvalid = errors.New("invalid setting")

// Change is a partial update. Nil fields are left as they are.
type Change struct {
	Units      *models.UnitSystem `json:"units,omitempty"`
	IsMuted    *bool              `json:"isMuted,omitempty"`
	Language   *string            `json:"language,omitempty"`
	Appearance *models.Appearance `json:"appearance,omitempty"`
	IsPro      *bool              `json:"isPro,omitempty"`
}

// Manager is the canonical owner of UserSettings.
type Manager struct {
	store *storage.SettingsStore
	log   *slog.Logger

	mu        sync.RWMutex
	current   models.UserSettings
	listeners []func(models.UserSettings)
}

// NewManager creates a manager holding defaults for the default language
// until Load is called.
func NewManager(store *storage.SettingsStore, log *slog.Logger) *Manager {
	return &Manager{
		store:   store,
		log:     log,
		current: models.DefaultSettings(locale.Default),
	}
}

// Load reads persisted settings. When nothing is persisted the language is
// taken from probe (usually locale.Probe) and the defaults are written back.
func (m *Manager) Load(ctx context.Context, probe func() string) error {
	lang := locale.Default
	if probe != nil {
		lang = probe()
	}
	loaded, found, err := m.store.Load(ctx, models.DefaultSettings(lang), locale.IsSupported)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	m.mu.Lock()
	m.current = loaded
	m.mu.Unlock()

	if !found {
		if err := m.store.Save(ctx, loaded); err != nil {
			m.log.Warn("failed to persist default settings", "error", err)
		}
	}
	m.log.Debug("settings loaded", "units", loaded.Units, "language", loaded.Language, "persisted", found)
	m.notify(loaded)
	return nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() models.UserSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Entitled reports whether premium features are unlocked.
func (m *Manager) Entitled() bool {
	return m.Get().IsPro
}

// Update applies c, persists the result and notifies listeners. An invalid
// value rejects the whole change.
func (m *Manager) Update(ctx context.Context, c Change) (models.UserSettings, error) {
	if err := c.validate(); err != nil {
		return m.Get(), err
	}

	m.mu.Lock()
	next := m.current
	if c.Units != nil {
		next.Units = *c.Units
	}
	if c.IsMuted != nil {
		next.IsMuted = *c.IsMuted
	}
	if c.Language != nil {
		next.Language = *c.Language
	}
	if c.Appearance != nil {
		next.Appearance = *c.Appearance
	}
	if c.IsPro != nil {
		next.IsPro = *c.IsPro
	}
	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Unlock()
		return m.Get(), fmt.Errorf("saving settings: %w", err)
	}
	m.current = next
	m.mu.Unlock()

	m.notify(next)
	return next, nil
}

// Upgrade unlocks premium features.
func (m *Manager) Upgrade(ctx context.Context) (models.UserSettings, error) {
	on := true
	return m.Update(ctx, Change{IsPro: &on})
}

// OnChange registers fn to be called with the new settings after every
// successful Load or Update.
func (m *Manager) OnChange(fn func(models.UserSettings)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) notify(s models.UserSettings) {
	m.mu.RLock()
	ls := append([]func(models.UserSettings){}, m.listeners...)
	m.mu.RUnlock()
	for _, fn := range ls {
		fn(s)
	}
}

func (c Change) validate() error {
	if c.Units != nil && !c.Units.Valid() {
		return fmt.Errorf("%w: units %q", ErrInvalid, *c.Units)
	}
	if c.Appearance != nil && !c.Appearance.Valid() {
		return fmt.Errorf("%w: appearance %q", ErrInvalid, *c.Appearance)
	}
	if c.Language != nil && !locale.IsSupported(*c.Language) {
		return fmt.Errorf("%w: language %q", ErrInvalid, *c.Language)
	}
	return nil
}
