// Package matcher decides whether two equipment names refer to the same
// equipment.
package matcher

import (
	"strings"
	"unicode"

	"github.com/meltforce/vizofit/internal/models"
)

// MinOverlap is the share of the shorter name's words that must appear in
// the longer one for a word-overlap match.
const MinOverlap = 0.70

// IsSimilar reports whether a and b likely name the same equipment.
// Generic bodyweight names only match exactly.
func IsSimilar(a, b string) bool {
	n1, n2 := normalize(a), normalize(b)
	if n1 == "" || n2 == "" {
		return false
	}

	if isBodyweight(n1) && isBodyweight(n2) {
		return n1 == n2
	}
	if n1 == n2 {
		return true
	}
	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return true
	}

	w1, w2 := words(n1), words(n2)
	if len(w1) == 0 || len(w2) == 0 {
		return false
	}
	set2 := make(map[string]struct{}, len(w2))
	for _, w := range w2 {
		set2[w] = struct{}{}
	}
	common := 0
	for _, w := range w1 {
		if _, ok := set2[w]; ok {
			common++
		}
	}
	ratio := float64(common) / float64(min(len(w1), len(w2)))
	return ratio >= MinOverlap
}

// FindMatch returns the first saved workout whose equipment name is similar
// to name.
func FindMatch(name string, saved []models.SavedWorkout) (models.SavedWorkout, bool) {
	for _, s := range saved {
		if IsSimilar(name, s.Routine.EquipmentName) {
			return s, true
		}
	}
	return models.SavedWorkout{}, false
}

func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			return r
		}
		return -1
	}, strings.ToLower(s))
	return strings.TrimSpace(s)
}

func isBodyweight(n string) bool {
	return strings.Contains(n, "bodyweight") || strings.Contains(n, "body weight")
}

// words keeps tokens longer than two characters.
func words(n string) []string {
	var out []string
	for _, w := range strings.Fields(n) {
		if len([]rune(w)) > 2 {
			out = append(out, w)
		}
	}
	return out
}
