package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/meltforce/vizofit/internal/models"
)

// storedSettings is the persisted shape with every field optional, so an
// older or partial document decodes without losing the fields it has.
type storedSettings struct {
	Units      *models.UnitSystem `json:"units"`
	IsMuted    *bool              `json:"isMuted"`
	Language   *string            `json:"language"`
	Appearance *models.Appearance `json:"appearance"`
	IsPro      *bool              `json:"isPro"`
}

// SettingsStore persists the single UserSettings document.
type SettingsStore struct {
	kv  KV
	log *slog.Logger
}

// NewSettingsStore creates a settings store over kv.
func NewSettingsStore(kv KV, log *slog.Logger) *SettingsStore {
	return &SettingsStore{kv: kv, log: log}
}

// Load returns the persisted settings, taking each missing or invalid field
// from defaults. found is false when nothing usable was persisted.
func (s *SettingsStore) Load(ctx context.Context, defaults models.UserSettings, validLanguage func(string) bool) (settings models.UserSettings, found bool, err error) {
	raw, ok, err := s.kv.Get(ctx, KeyUserSettings)
	if err != nil {
		return defaults, false, err
	}
	if !ok {
		return defaults, false, nil
	}
	var in storedSettings
	if err := json.Unmarshal(raw, &in); err != nil {
		s.log.Warn("user settings unreadable, using defaults", "error", err)
		return defaults, false, nil
	}

	out := defaults
	if in.Units != nil && in.Units.Valid() {
		out.Units = *in.Units
	}
	if in.IsMuted != nil {
		out.IsMuted = *in.IsMuted
	}
	if in.Language != nil && (validLanguage == nil || validLanguage(*in.Language)) {
		out.Language = *in.Language
	}
	if in.Appearance != nil && in.Appearance.Valid() {
		out.Appearance = *in.Appearance
	}
	if in.IsPro != nil {
		out.IsPro = *in.IsPro
	}
	return out, true, nil
}

// Save overwrites the persisted settings.
func (s *SettingsStore) Save(ctx context.Context, settings models.UserSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding user settings: %w", err)
	}
	if err := s.kv.Put(ctx, KeyUserSettings, data); err != nil {
		return fmt.Errorf("writing user settings: %w", err)
	}
	return nil
}
