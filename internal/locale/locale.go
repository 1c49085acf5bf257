// Package locale knows the supported UI languages, probes the system
// language and renders dates the way each language expects.
package locale

import (
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Default is used when the system language is unsupported.
const Default = "en"

// Language is one supported UI language.
type Language struct {
	Code string
	Name string // English name, used in analysis prompts
	RTL  bool

	tag        language.Tag
	dateLayout string
}

// Supported lists every UI language, default first.
var Supported = []Language{
	{Code: "en", Name: "English", tag: language.English, dateLayout: "1/2/2006"},
	{Code: "es", Name: "Spanish", tag: language.Spanish, dateLayout: "2/1/2006"},
	{Code: "fr", Name: "French", tag: language.French, dateLayout: "02/01/2006"},
	{Code: "de", Name: "German", tag: language.German, dateLayout: "2.1.2006"},
	{Code: "pt", Name: "Portuguese", tag: language.Portuguese, dateLayout: "02/01/2006"},
	{Code: "ru", Name: "Russian", tag: language.Russian, dateLayout: "02.01.2006"},
	{Code: "hi", Name: "Hindi", tag: language.Hindi, dateLayout: "2/1/2006"},
	{Code: "ar", Name: "Arabic", tag: language.Arabic, dateLayout: "2/1/2006"},
}

var matcher = language.NewMatcher(tags())

func tags() []language.Tag {
	out := make([]language.Tag, len(Supported))
	for i, l := range Supported {
		out[i] = l.tag
	}
	return out
}

// Lookup returns the supported language with the given code.
func Lookup(code string) (Language, bool) {
	for _, l := range Supported {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// IsSupported reports whether code is a supported language code.
func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// Match maps an arbitrary BCP 47 or POSIX locale string ("pt-BR",
// "de_DE.UTF-8") to a supported language code, falling back to Default.
func Match(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")
	if raw == "" || raw == "C" || raw == "POSIX" {
		return Default
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return Default
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default
	}
	return Supported[idx].Code
}

// Probe reads the process locale from LC_ALL, LC_MESSAGES or LANG.
func Probe() string {
	return ProbeEnv(os.Getenv)
}

// ProbeEnv is Probe with an injectable environment lookup.
func ProbeEnv(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(key); v != "" {
			return Match(v)
		}
	}
	return Default
}

// FormatDate renders t as a short numeric date for the language code.
func FormatDate(t time.Time, code string) string {
	l, ok := Lookup(code)
	if !ok {
		l = Supported[0]
	}
	return t.Format(l.dateLayout)
}

// DateFormatter returns a FormatDate closure bound to a language lookup,
// for components that render dates with the current settings.
func DateFormatter(code func() string) func(time.Time) string {
	return func(t time.Time) string {
		return FormatDate(t, code())
	}
}
