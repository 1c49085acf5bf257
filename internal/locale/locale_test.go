package locale

import (
	"testing"
	"time"
)

// TestMatch maps common locale spellings onto supported codes.
func TestMatch(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"en-US", "en"},
		{"de_DE.UTF-8", "de"},
		{"pt-BR", "pt"},
		{"fr_CA", "fr"},
		{"ru", "ru"},
		{"ar-EG", "ar"},
		{"ja-JP", "en"},
		{"C", "en"},
		{"", "en"},
		{"not a locale", "en"},
	}
	for _, tt := range tests {
		if got := Match(tt.in); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestProbeEnvPrecedence verifies LC_ALL wins over LANG.
func TestProbeEnvPrecedence(t *testing.T) {
	env := map[string]string{"LC_ALL": "es_ES.UTF-8", "LANG": "de_DE.UTF-8"}
	if got := ProbeEnv(func(k string) string { return env[k] }); got != "es" {
		t.Errorf("got %q, want es", got)
	}
	if got := ProbeEnv(func(string) string { return "" }); got != Default {
		t.Errorf("empty env = %q, want %q", got, Default)
	}
}

// TestFormatDate renders one date in several languages.
func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	tests := map[string]string{
		"en": "3/7/2025",
		"de": "7.3.2025",
		"fr": "07/03/2025",
		"ru": "07.03.2025",
		"xx": "3/7/2025",
	}
	for code, want := range tests {
		if got := FormatDate(d, code); got != want {
			t.Errorf("FormatDate(%s) = %q, want %q", code, got, want)
		}
	}
}
