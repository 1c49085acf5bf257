// Package session coordinates analysis results, duplicate detection,
// conflict resolution, saving and workout completion.
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/meltforce/vizofit/internal/analysis"
	"github.com/meltforce/vizofit/internal/imaging"
	"github.com/meltforce/vizofit/internal/matcher"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/settings"
	"github.com/meltforce/vizofit/internal/storage"
)

var (
	// ErrNoConflict is returned by Resolve when nothing is staged.
	ErrNoConflict = errors.New("no pending conflict")
	// ErrNotSaved is returned by CommitEdit for a routine without a saved id.
	ErrNotSaved = errors.New("routine is not saved")
	// ErrAnalysisInProgress is returned when a second analysis starts
	// before the first one returned.
	ErrAnalysisInProgress = errors.New("analysis already in progress")
)

// Resolution is the user's answer to a staged conflict.
type Resolution string

const (
	UpdateExisting Resolution = "update"
	SaveAsNew      Resolution = "new"
	Discard        Resolution = "cancel"
)

// Conflict is a staged decision between an incoming routine and the saved
// entry it matched.
type Conflict struct {
	Existing models.SavedWorkout   `json:"existing"`
	Incoming *models.WorkoutRoutine `json:"incoming"`
	image    []byte
}

// Outcome is the result of taking in an analyzed routine. SavedID is empty
// when the routine was not (or could not be) persisted.
type Outcome struct {
	Routine  *models.WorkoutRoutine `json:"routine"`
	SavedID  string                 `json:"savedId,omitempty"`
	Conflict *Conflict              `json:"conflict,omitempty"`
}

// Preview controls how stored image previews are compressed.
type Preview struct {
	MaxDimension int
	Quality      int
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Analyzer   analysis.Analyzer
	Compressor imaging.Compressor
	Routines   *storage.Routines
	Activity   *storage.Activity
	Settings   *settings.Manager
	Preview    Preview
}

// Orchestrator is the glue between analysis, the library and training.
type Orchestrator struct {
	deps Deps
	log  *slog.Logger

	analyzing atomic.Bool
	pending   *Conflict
}

// New creates an orchestrator.
func New(deps Deps, log *slog.Logger) *Orchestrator {
	if deps.Compressor == nil {
		deps.Compressor = imaging.Passthrough{}
	}
	if deps.Preview.MaxDimension <= 0 {
		deps.Preview.MaxDimension = imaging.DefaultMaxDimension
	}
	if deps.Preview.Quality <= 0 {
		deps.Preview.Quality = imaging.DefaultQuality
	}
	return &Orchestrator{deps: deps, log: log}
}

// Analyze runs the analyzer with the current unit and language settings and
// feeds the result to OnAnalysisResult. Any failure is an *analysis.Error.
func (o *Orchestrator) Analyze(ctx context.Context, image []byte) (Outcome, error) {
	if !o.analyzing.CompareAndSwap(false, true) {
		return Outcome{}, ErrAnalysisInProgress
	}
	defer o.analyzing.Store(false)

	o.pending = nil
	s := o.deps.Settings.Get()
	routine, err := o.deps.Analyzer.Analyze(ctx, analysis.Request{
		Image:    image,
		MIMEType: http.DetectContentType(image),
		Units:    s.Units,
		Language: s.Language,
	})
	if err != nil {
		var ae *analysis.Error
		if !errors.As(err, &ae) {
			ae = &analysis.Error{Message: analysis.Message(err), Err: err}
		}
		return Outcome{}, ae
	}
	if routine == nil {
		return Outcome{}, &analysis.Error{Message: analysis.FallbackMessage}
	}
	return o.OnAnalysisResult(ctx, routine, image), nil
}

// Analyzing reports whether an analysis is outstanding.
func (o *Orchestrator) Analyzing() bool { return o.analyzing.Load() }

// OnAnalysisResult checks routine against the library. Without a similar
// entry it is saved right away; a failed save is logged and the routine is
// still returned. With a similar entry nothing is saved and a Conflict is
// staged for Resolve. Any previously staged conflict is dropped.
func (o *Orchestrator) OnAnalysisResult(ctx context.Context, routine *models.WorkoutRoutine, image []byte) Outcome {
	o.pending = nil
	out := Outcome{Routine: routine}

	saved, err := o.deps.Routines.List(ctx)
	if err != nil {
		o.log.Warn("library unavailable, routine not saved", "error", err)
		return out
	}
	if existing, ok := matcher.FindMatch(routine.EquipmentName, saved); ok {
		o.pending = &Conflict{Existing: existing, Incoming: routine.Clone(), image: image}
		out.Conflict = o.pending
		o.log.Info("similar routine already saved", "incoming", routine.EquipmentName, "existing_id", existing.ID)
		return out
	}

	entry, err := o.deps.Routines.UpsertNew(ctx, routine, o.preview(image))
	if err != nil {
		o.log.Warn("auto-save failed", "equipment", routine.EquipmentName, "error", err)
		return out
	}
	out.SavedID = entry.ID
	return out
}

// Pending returns the staged conflict, if any.
func (o *Orchestrator) Pending() *Conflict { return o.pending }

// Resolve applies the user's decision to the staged conflict.
func (o *Orchestrator) Resolve(ctx context.Context, r Resolution) (Outcome, error) {
	c := o.pending
	if c == nil {
		return Outcome{}, ErrNoConflict
	}

	out := Outcome{Routine: c.Incoming}
	switch r {
	case UpdateExisting:
		entry, err := o.deps.Routines.UpdateExisting(ctx, c.Existing.ID, c.Incoming, storage.UpdateOptions{
			ImagePreview: o.preview(c.image),
		})
		if err != nil {
			return Outcome{}, fmt.Errorf("updating %s: %w", c.Existing.ID, err)
		}
		out.SavedID = entry.ID
	case SaveAsNew:
		entry, err := o.deps.Routines.UpsertNew(ctx, c.Incoming, o.preview(c.image))
		if err != nil {
			return Outcome{}, fmt.Errorf("saving new routine: %w", err)
		}
		out.SavedID = entry.ID
	case Discard:
	default:
		return Outcome{}, fmt.Errorf("unknown resolution %q", r)
	}

	o.pending = nil
	o.log.Info("conflict resolved", "resolution", r, "saved_id", out.SavedID)
	return out, nil
}

// OnWorkoutComplete records exactly one activity entry. It never saves the
// routine, even when savedID is empty.
func (o *Orchestrator) OnWorkoutComplete(ctx context.Context, routine *models.WorkoutRoutine, savedID string) (models.ActivityLog, error) {
	entry, err := o.deps.Activity.Append(ctx, routine.EquipmentName, routine.EstimatedDuration)
	if err != nil {
		return models.ActivityLog{}, fmt.Errorf("recording workout: %w", err)
	}
	o.log.Info("workout completed", "equipment", routine.EquipmentName, "saved_id", savedID)
	return entry, nil
}

// OnToggleSave deletes the saved entry when savedID is set, otherwise saves
// routine and returns the new id.
func (o *Orchestrator) OnToggleSave(ctx context.Context, savedID string, routine *models.WorkoutRoutine, image []byte) (string, error) {
	if savedID != "" {
		if err := o.deps.Routines.Remove(ctx, savedID); err != nil {
			return savedID, fmt.Errorf("removing %s: %w", savedID, err)
		}
		return "", nil
	}
	entry, err := o.deps.Routines.UpsertNew(ctx, routine, o.preview(image))
	if err != nil {
		return "", fmt.Errorf("saving routine: %w", err)
	}
	return entry.ID, nil
}

// CommitEdit writes an edited baseline over its saved entry.
func (o *Orchestrator) CommitEdit(ctx context.Context, savedID string, routine *models.WorkoutRoutine) (models.SavedWorkout, error) {
	if savedID == "" {
		return models.SavedWorkout{}, ErrNotSaved
	}
	return o.deps.Routines.UpdateExisting(ctx, savedID, routine, storage.UpdateOptions{})
}

// ToggleFavorite flips the favorite flag of a saved entry.
func (o *Orchestrator) ToggleFavorite(ctx context.Context, savedID string) (models.SavedWorkout, error) {
	if savedID == "" {
		return models.SavedWorkout{}, ErrNotSaved
	}
	return o.deps.Routines.ToggleFavorite(ctx, savedID)
}

// preview compresses image into a data URL. Compression problems fall back
// to the original bytes inside the compressor.
func (o *Orchestrator) preview(image []byte) *string {
	if len(image) == 0 {
		return nil
	}
	data := o.deps.Compressor.Compress(image, o.deps.Preview.MaxDimension, o.deps.Preview.Quality)
	url := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	return &url
}

// DecodeDataURL extracts the bytes of a base64 data URL, or decodes plain
// base64 when there is no prefix.
func DecodeDataURL(s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		_, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, errors.New("malformed data url")
		}
		s = payload
	}
	return base64.StdEncoding.DecodeString(s)
}
