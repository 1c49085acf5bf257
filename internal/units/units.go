// Package units parses and formats exercise magnitude-strings such as
// "12 reps", "30 sec" or "10kg". Every function here degrades to a safe
// default on unparseable input; none of them return errors.
package units

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/meltforce/vizofit/internal/models"
)

// KgToLb is the fixed kilogram to pound conversion factor.
const KgToLb = 2.20462

var (
	// numberRe is the single definition of "a number" inside a magnitude-string.
	numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

	kgRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:kilograms|kilogram|kgs|kg)\b`)
	lbRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:pounds|pound|lbs|lb)\b`)

	// durationRe matches one "<n> <unit>" pair at the start of its input. A
	// bare "m" is not a minute token: "400 m" in a reps field is a distance.
	durationRe = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*(minutes|minute|mins|min|seconds|second|secs|sec|s)\b`)
	// timeWordRe finds a spelled-out time unit anywhere ("30-45 sec").
	timeWordRe = regexp.MustCompile(`(?i)\b(minutes|minute|mins|min|seconds|second|secs|sec)\b`)

	digitWordRe = regexp.MustCompile(`(\d+)([a-z/]+)`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// display substitutions, applied in order on lower-cased text
var labelRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\bper arm\b`), "/arm"},
	{regexp.MustCompile(`\bper leg\b`), "/leg"},
	{regexp.MustCompile(`\bper side\b`), "/side"},
	{regexp.MustCompile(`\brepetitions\b`), "reps"},
	{regexp.MustCompile(`\bseconds?\b`), "s"},
	{regexp.MustCompile(`\bminutes?\b`), "m"},
	{regexp.MustCompile(`\s*\bsets?\b`), ""},
	{regexp.MustCompile(`\s*\breps?\b`), ""},
}

// ParseSystem maps free text to a unit system, defaulting to metric.
func ParseSystem(s string) models.UnitSystem {
	if strings.EqualFold(strings.TrimSpace(s), string(models.Imperial)) {
		return models.Imperial
	}
	return models.Metric
}

// ParseLeadingNumber returns the first numeric token of value, or 0.
func ParseLeadingNumber(value string) float64 {
	m := numberRe.FindString(value)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return n
}

// ReplaceLeadingNumber rewrites the first numeric token of value with the
// result of fn. Text without a number is returned unchanged.
func ReplaceLeadingNumber(value string, fn func(float64) string) string {
	loc := numberRe.FindStringIndex(value)
	if loc == nil {
		return value
	}
	n, err := strconv.ParseFloat(value[loc[0]:loc[1]], 64)
	if err != nil {
		return value
	}
	return value[:loc[0]] + fn(n) + value[loc[1]:]
}

// FormatNumber renders n without trailing zeros ("6", "2.5").
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ParseDurationSeconds returns the number of seconds encoded in value and
// true, or false when value carries no time unit. A false result means the
// field is a rep count rather than a timed set. The leading number is the
// duration: it is timed when its own unit is a time unit ("45s"), or when
// the text spells out one ("30-45 sec" is 30). Pairs directly following a
// timed leading token are summed, so "1 min 30 sec" yields 90.
func ParseDurationSeconds(value string) (int, bool) {
	loc := numberRe.FindStringIndex(value)
	if loc == nil {
		return 0, false
	}
	rest := value[loc[0]:]

	var total float64
	timed := false
	for {
		m := durationRe.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		n, err := strconv.ParseFloat(rest[m[2]:m[3]], 64)
		if err != nil {
			break
		}
		total += n * unitSeconds(rest[m[4]:m[5]])
		timed = true
		rest = rest[m[1]:]
	}

	if !timed {
		word := timeWordRe.FindString(value)
		if word == "" {
			return 0, false
		}
		total = ParseLeadingNumber(value) * unitSeconds(word)
	}
	return int(math.Round(min(total, maxDurationSeconds))), true
}

// maxDurationSeconds caps parsed durations so the int conversion cannot
// overflow on absurd digit runs.
const maxDurationSeconds = math.MaxInt32

func unitSeconds(unit string) float64 {
	if strings.HasPrefix(strings.ToLower(unit), "min") {
		return 60
	}
	return 1
}

// ConvertMagnitude converts every kilogram or pound token in value into the
// target system. Text already in the target system, or without a weight
// token, is returned unchanged.
func ConvertMagnitude(value string, target models.UnitSystem) string {
	if value == "" {
		return ""
	}
	switch target {
	case models.Imperial:
		return kgRe.ReplaceAllStringFunc(value, func(tok string) string {
			n := parseGroup(kgRe, tok)
			return renderWeight(n*KgToLb) + " lbs"
		})
	case models.Metric:
		return lbRe.ReplaceAllStringFunc(value, func(tok string) string {
			n := parseGroup(lbRe, tok)
			return renderWeight(n/KgToLb) + " kg"
		})
	}
	return value
}

// FormatForDisplay converts value into the user's unit system and rewrites
// it into a terse lower-case label ("12 reps per arm" -> "12 /arm").
// Applying it to its own output returns the same string.
func FormatForDisplay(value string, system models.UnitSystem) string {
	text := value
	for range maxFormatPasses {
		next := formatPass(text, system)
		if next == text {
			break
		}
		text = next
	}
	return text
}

// maxFormatPasses bounds the fixpoint loop in FormatForDisplay. Real
// inputs settle after one or two passes.
const maxFormatPasses = 8

func formatPass(value string, system models.UnitSystem) string {
	if value == "" {
		return ""
	}
	text := digitWordRe.ReplaceAllString(strings.ToLower(value), "$1 $2")
	for _, rule := range labelRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	text = digitWordRe.ReplaceAllString(text, "$1 $2")
	return ConvertMagnitude(text, system)
}

func parseGroup(re *regexp.Regexp, tok string) float64 {
	m := re.FindStringSubmatch(tok)
	if len(m) < 2 {
		return 0
	}
	n, _ := strconv.ParseFloat(m[1], 64)
	return n
}

// renderWeight keeps one decimal below 10 and rounds to an integer above.
func renderWeight(n float64) string {
	if n < 10 {
		return strconv.FormatFloat(n, 'f', 1, 64)
	}
	return strconv.Itoa(int(math.Round(n)))
}
