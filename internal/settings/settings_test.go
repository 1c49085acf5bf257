package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/storage"
)

func newManager(t *testing.T, kv storage.KV) *Manager {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(storage.NewSettingsStore(kv, log), log)
}

// TestLoadProbesLanguageWhenEmpty verifies the system probe seeds a fresh
// install and the defaults are persisted.
func TestLoadProbesLanguageWhenEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	m := newManager(t, kv)

	if err := m.Load(ctx, func() string { return "fr" }); err != nil {
		t.Fatal(err)
	}
	if got := m.Get(); got.Language != "fr" || got.Units != models.Metric {
		t.Errorf("settings = %+v", got)
	}
	if _, ok, _ := kv.Get(ctx, storage.KeyUserSettings); !ok {
		t.Error("defaults were not persisted")
	}
}

// TestUpdatePersistsEveryChange verifies a second manager sees the change.
func TestUpdatePersistsEveryChange(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	m := newManager(t, kv)
	m.Load(ctx, nil)

	imperial := models.Imperial
	muted := true
	if _, err := m.Update(ctx, Change{Units: &imperial, IsMuted: &muted}); err != nil {
		t.Fatal(err)
	}

	other := newManager(t, kv)
	other.Load(ctx, func() string { return "de" })
	got := other.Get()
	if got.Units != models.Imperial || !got.IsMuted || got.Language != "en" {
		t.Errorf("reloaded settings = %+v", got)
	}
}

// TestUpdateRejectsInvalid leaves settings unchanged on a bad value.
func TestUpdateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, storage.NewMemory())
	m.Load(ctx, nil)
	before := m.Get()

	bad := "tlh"
	muted := true
	_, err := m.Update(ctx, Change{Language: &bad, IsMuted: &muted})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if m.Get() != before {
		t.Error("settings changed after rejected update")
	}
}

// TestUpgradeAndListeners verifies Upgrade sets IsPro and notifies.
func TestUpgradeAndListeners(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, storage.NewMemory())
	var seen []models.UserSettings
	m.OnChange(func(s models.UserSettings) { seen = append(seen, s) })

	m.Load(ctx, nil)
	if m.Entitled() {
		t.Fatal("fresh install should not be entitled")
	}
	if _, err := m.Upgrade(ctx); err != nil {
		t.Fatal(err)
	}
	if !m.Entitled() {
		t.Error("Upgrade did not set IsPro")
	}
	if len(seen) != 2 || !seen[1].IsPro {
		t.Errorf("listener calls = %+v", seen)
	}
}
