package storage

import (
	"context"
	"testing"

	"github.com/meltforce/vizofit/internal/models"
)

func onlyEnglishOrGerman(code string) bool { return code == "en" || code == "de" }

// TestSettingsLoadFieldByField verifies partial and invalid fields fall back
// to defaults one at a time.
func TestSettingsLoadFieldByField(t *testing.T) {
	ctx := context.Background()
	defaults := models.DefaultSettings("en")

	tests := []struct {
		name      string
		stored    string
		want      models.UserSettings
		wantFound bool
	}{
		{
			name:   "nothing stored",
			want:   defaults,
		},
		{
			name:      "partial",
			stored:    `{"units":"imperial","isPro":true}`,
			want:      models.UserSettings{Units: models.Imperial, Language: "en", Appearance: models.AppearanceSystem, IsPro: true},
			wantFound: true,
		},
		{
			name:      "invalid values",
			stored:    `{"units":"furlongs","appearance":"neon","language":"tlh","isMuted":true}`,
			want:      models.UserSettings{Units: models.Metric, Language: "en", Appearance: models.AppearanceSystem, IsMuted: true},
			wantFound: true,
		},
		{
			name:      "full",
			stored:    `{"units":"metric","isMuted":false,"language":"de","appearance":"dark","isPro":false}`,
			want:      models.UserSettings{Units: models.Metric, Language: "de", Appearance: models.AppearanceDark},
			wantFound: true,
		},
		{
			name:   "corrupt",
			stored: `[1,2`,
			want:   defaults,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemory()
			if tt.stored != "" {
				kv.Put(ctx, KeyUserSettings, []byte(tt.stored))
			}
			got, found, err := NewSettingsStore(kv, discardLogger()).Load(ctx, defaults, onlyEnglishOrGerman)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("settings = %+v, want %+v", got, tt.want)
			}
			if found != tt.wantFound {
				t.Errorf("found = %v, want %v", found, tt.wantFound)
			}
		})
	}
}

// TestSettingsSaveLoad round-trips a full settings value.
func TestSettingsSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewSettingsStore(NewMemory(), discardLogger())
	in := models.UserSettings{Units: models.Imperial, IsMuted: true, Language: "de", Appearance: models.AppearanceLight, IsPro: true}
	if err := s.Save(ctx, in); err != nil {
		t.Fatal(err)
	}
	got, found, err := s.Load(ctx, models.DefaultSettings("en"), nil)
	if err != nil || !found || got != in {
		t.Errorf("Load = %+v, %v, %v", got, found, err)
	}
}
