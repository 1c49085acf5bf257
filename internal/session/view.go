package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meltforce/vizofit/internal/intensity"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/training"
	"github.com/meltforce/vizofit/internal/units"
)

var (
	// ErrNotEditing is returned by edit operations outside an edit session.
	ErrNotEditing = errors.New("routine is not being edited")
	// ErrExerciseIndex is returned for an out-of-range exercise index.
	ErrExerciseIndex = errors.New("exercise index out of range")
)

// Field names an editable exercise field.
type Field string

const (
	FieldName         Field = "name"
	FieldSets         Field = "sets"
	FieldReps         Field = "reps"
	FieldRest         Field = "rest"
	FieldWeight       Field = "weight"
	FieldInstructions Field = "instructions"
)

// DisplayExercise is an exercise with magnitudes formatted for the user's
// unit system.
type DisplayExercise struct {
	Name         string `json:"name"`
	Sets         string `json:"sets"`
	Reps         string `json:"reps"`
	Rest         string `json:"rest"`
	Weight       string `json:"weight,omitempty"`
	Instructions string `json:"instructions"`
}

// Display is the read-only state of a routine view.
type Display struct {
	Routine          *models.WorkoutRoutine `json:"routine"`
	Exercises        []DisplayExercise      `json:"exercises"`
	Level            intensity.Level        `json:"level"`
	SavedID          string                 `json:"savedId,omitempty"`
	Favorited        bool                   `json:"favorited"`
	Editing          bool                   `json:"editing"`
	LanguageMismatch bool                   `json:"languageMismatch"`
}

// View is one open routine: a disposable baseline copy, the active
// intensity level and the routine's library state. Edits always land on the
// baseline, never on a scaled derivative.
type View struct {
	o        *Orchestrator
	baseline *models.WorkoutRoutine
	image    []byte
	level    *intensity.Selector

	savedID   string
	favorited bool
	editing   bool
}

// Open creates a view over a copy of routine. When savedID names a library
// entry its favorite flag is loaded.
func (o *Orchestrator) Open(ctx context.Context, routine *models.WorkoutRoutine, savedID string, image []byte) *View {
	v := &View{
		o:        o,
		baseline: routine.Clone(),
		image:    image,
		level:    intensity.NewSelector(),
		savedID:  savedID,
	}
	if savedID != "" {
		entry, err := o.deps.Routines.Get(ctx, savedID)
		if err != nil {
			o.log.Warn("saved routine not found, opening unsaved", "id", savedID, "error", err)
			v.savedID = ""
		} else {
			v.favorited = entry.IsFavorited
		}
	}
	return v
}

// OpenSaved opens a library entry by id.
func (o *Orchestrator) OpenSaved(ctx context.Context, id string) (*View, error) {
	entry, err := o.deps.Routines.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var image []byte
	if entry.ImagePreview != nil {
		if b, err := DecodeDataURL(*entry.ImagePreview); err == nil {
			image = b
		}
	}
	v := &View{
		o:         o,
		baseline:  entry.Routine.Clone(),
		image:     image,
		level:     intensity.NewSelector(),
		savedID:   entry.ID,
		favorited: entry.IsFavorited,
	}
	return v, nil
}

// Current returns the routine at the active intensity level.
func (v *View) Current() *models.WorkoutRoutine {
	return intensity.DeriveScaled(v.baseline, v.level.Active())
}

// Baseline returns a copy of the unscaled routine.
func (v *View) Baseline() *models.WorkoutRoutine { return v.baseline.Clone() }

// SavedID returns the library id, empty when unsaved.
func (v *View) SavedID() string { return v.savedID }

// Display renders the current state for the user's settings.
func (v *View) Display() Display {
	return v.DisplayIn(v.o.deps.Settings.Get().Units)
}

// DisplayIn renders the current state in the given unit system.
func (v *View) DisplayIn(system models.UnitSystem) Display {
	cur := v.Current().Clone()
	d := Display{
		Routine:          cur,
		Exercises:        make([]DisplayExercise, len(cur.Exercises)),
		Level:            v.level.Level(),
		SavedID:          v.savedID,
		Favorited:        v.favorited,
		Editing:          v.editing,
		LanguageMismatch: v.LanguageMismatch(),
	}
	for i, ex := range cur.Exercises {
		d.Exercises[i] = DisplayExercise{
			Name:         ex.Name,
			Sets:         units.FormatForDisplay(ex.Sets, system),
			Reps:         units.FormatForDisplay(ex.Reps, system),
			Rest:         units.FormatForDisplay(ex.Rest, system),
			Weight:       units.FormatForDisplay(ex.Weight, system),
			Instructions: ex.Instructions,
		}
	}
	return d
}

// LanguageMismatch reports whether the routine was generated in a language
// other than the current one.
func (v *View) LanguageMismatch() bool {
	gen := v.baseline.GeneratedLanguage
	return gen != "" && gen != v.o.deps.Settings.Get().Language
}

// SetIntensity switches the active level. Premium levels without
// entitlement return intensity.ErrUpgradeRequired and change nothing.
// Switching never touches the library.
func (v *View) SetIntensity(id int) (intensity.Direction, error) {
	return v.level.Select(id, v.o.deps.Settings.Entitled())
}

// BeginEdit starts an edit session on the baseline.
func (v *View) BeginEdit() { v.editing = true }

// Rename sets the equipment name.
func (v *View) Rename(name string) error {
	if !v.editing {
		return ErrNotEditing
	}
	v.baseline.EquipmentName = name
	return nil
}

// UpdateExercise sets one field of exercise i.
func (v *View) UpdateExercise(i int, f Field, value string) error {
	if !v.editing {
		return ErrNotEditing
	}
	if i < 0 || i >= len(v.baseline.Exercises) {
		return fmt.Errorf("%w: %d", ErrExerciseIndex, i)
	}
	ex := &v.baseline.Exercises[i]
	switch f {
	case FieldName:
		ex.Name = value
	case FieldSets:
		ex.Sets = value
	case FieldReps:
		ex.Reps = value
	case FieldRest:
		ex.Rest = value
	case FieldWeight:
		ex.Weight = value
	case FieldInstructions:
		ex.Instructions = value
	default:
		return fmt.Errorf("unknown exercise field %q", f)
	}
	return nil
}

// MoveExercise moves exercise from to position to.
func (v *View) MoveExercise(from, to int) error {
	if !v.editing {
		return ErrNotEditing
	}
	n := len(v.baseline.Exercises)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: %d -> %d", ErrExerciseIndex, from, to)
	}
	if from == to {
		return nil
	}
	ex := v.baseline.Exercises
	item := ex[from]
	if from < to {
		copy(ex[from:to], ex[from+1:to+1])
	} else {
		copy(ex[to+1:from+1], ex[to:from])
	}
	ex[to] = item
	return nil
}

// CommitEdit ends the edit session and, when the routine is saved, writes
// the baseline to the library.
func (v *View) CommitEdit(ctx context.Context) error {
	if !v.editing {
		return ErrNotEditing
	}
	v.editing = false
	if v.savedID == "" {
		return nil
	}
	if _, err := v.o.CommitEdit(ctx, v.savedID, v.baseline); err != nil {
		return err
	}
	return nil
}

// ToggleFavorite flips the favorite flag. Unsaved routines only change the
// local flag.
func (v *View) ToggleFavorite(ctx context.Context) (bool, error) {
	if v.savedID == "" {
		v.favorited = !v.favorited
		return v.favorited, nil
	}
	entry, err := v.o.ToggleFavorite(ctx, v.savedID)
	if err != nil {
		return v.favorited, err
	}
	v.favorited = entry.IsFavorited
	return v.favorited, nil
}

// ToggleSave removes a saved routine, or saves the current (scaled) routine.
func (v *View) ToggleSave(ctx context.Context) (string, error) {
	id, err := v.o.OnToggleSave(ctx, v.savedID, v.Current(), v.image)
	if err != nil {
		return v.savedID, err
	}
	v.savedID = id
	if id == "" {
		v.favorited = false
	}
	return id, nil
}

// StartTraining starts a training machine over the current routine. When
// the finished session is closed the completion is recorded before
// opts.OnComplete runs.
func (v *View) StartTraining(ctx context.Context, opts training.Options, log *slog.Logger) (*training.Machine, error) {
	routine := v.Current().Clone()
	savedID := v.savedID
	next := opts.OnComplete
	opts.OnComplete = func() {
		if _, err := v.o.OnWorkoutComplete(ctx, routine, savedID); err != nil {
			v.o.log.Warn("failed to record workout", "error", err)
		}
		if next != nil {
			next()
		}
	}
	if opts.Cue != nil {
		opts.Cue = training.Mutable{Cue: opts.Cue, Muted: func() bool { return v.o.deps.Settings.Get().IsMuted }}
	}
	m := training.New(routine.Exercises, opts, log)
	if err := m.Start(); err != nil {
		return nil, err
	}
	return m, nil
}
