// Package intensity derives scaled views of a routine at one of five fixed
// levels and owns the entitlement check for the premium levels.
package intensity

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/units"
)

// DefaultLevel is the baseline level (multiplier 1.0).
const DefaultLevel = 3

const (
	minScaled = 1
	maxScaled = 9999
)

var (
	// ErrUpgradeRequired is returned when a premium level is selected
	// without entitlement. Callers route it to an upgrade prompt.
	ErrUpgradeRequired = errors.New("intensity level requires pro")

	// ErrUnknownLevel is returned for ids outside the level table.
	ErrUnknownLevel = errors.New("unknown intensity level")
)

// Level is one row of the fixed intensity table.
type Level struct {
	ID         int     `json:"id"`
	Multiplier float64 `json:"multiplier"`
	Label      string  `json:"label"`
	Premium    bool    `json:"premium"`
}

// Levels is ordered by id.
var Levels = []Level{
	{ID: 1, Multiplier: 0.5, Label: "LITE"},
	{ID: 2, Multiplier: 0.75, Label: "LOW"},
	{ID: 3, Multiplier: 1.0, Label: "MID"},
	{ID: 4, Multiplier: 1.25, Label: "HIGH", Premium: true},
	{ID: 5, Multiplier: 1.5, Label: "MAX", Premium: true},
}

// Lookup returns the level with the given id.
func Lookup(id int) (Level, bool) {
	for _, l := range Levels {
		if l.ID == id {
			return l, true
		}
	}
	return Level{}, false
}

// Authorize is the single capability check for selecting a level.
// A nil result means the caller may switch to id.
func Authorize(id int, entitled bool) error {
	l, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownLevel, id)
	}
	if l.Premium && !entitled {
		return fmt.Errorf("%w: level %s", ErrUpgradeRequired, l.Label)
	}
	return nil
}

// DeriveScaled returns baseline scaled to the given level. At multiplier 1.0
// (and for unknown ids) the baseline pointer itself is returned, so edits
// made through the result always land on the true baseline. Otherwise the
// result is a fresh copy and baseline is not modified.
func DeriveScaled(baseline *models.WorkoutRoutine, id int) *models.WorkoutRoutine {
	l, ok := Lookup(id)
	if baseline == nil || !ok || l.Multiplier == 1 {
		return baseline
	}
	out := baseline.Clone()
	for i := range out.Exercises {
		ex := &out.Exercises[i]
		ex.Sets = scale(ex.Sets, l.Multiplier)
		ex.Reps = scale(ex.Reps, l.Multiplier)
		if ex.Weight != "" && !IsBodyweight(ex.Weight) {
			ex.Weight = scale(ex.Weight, l.Multiplier)
		}
	}
	return out
}

// IsBodyweight reports whether a weight field is the bodyweight sentinel.
func IsBodyweight(weight string) bool {
	return strings.EqualFold(strings.TrimSpace(weight), "bodyweight")
}

func scale(value string, mult float64) string {
	return units.ReplaceLeadingNumber(value, func(n float64) string {
		v := math.Round(n * mult)
		v = math.Max(minScaled, math.Min(maxScaled, v))
		return units.FormatNumber(v)
	})
}

// Direction describes how a level change moved relative to the previous level.
type Direction int

const (
	Same Direction = iota
	Up
	Down
)

// Selector holds the active level for one routine view. The zero value is
// not usable; call NewSelector.
type Selector struct {
	active int
}

// NewSelector starts at DefaultLevel.
func NewSelector() *Selector {
	return &Selector{active: DefaultLevel}
}

// Active returns the active level id.
func (s *Selector) Active() int { return s.active }

// Level returns the active level row.
func (s *Selector) Level() Level {
	l, _ := Lookup(s.active)
	return l
}

// Select switches to id after consulting Authorize. On any error the active
// level is left unchanged.
func (s *Selector) Select(id int, entitled bool) (Direction, error) {
	if err := Authorize(id, entitled); err != nil {
		return Same, err
	}
	prev := s.active
	s.active = id
	switch {
	case id > prev:
		return Up, nil
	case id < prev:
		return Down, nil
	}
	return Same, nil
}

// Reset returns the selector to DefaultLevel.
func (s *Selector) Reset() { s.active = DefaultLevel }
