package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/vizofit/internal/models"
)

// Routines is the saved-workout library. The persisted collection is the
// only long-lived owner of a SavedWorkout: everything going in or coming
// out is a fresh copy.
type Routines struct {
	kv  KV
	log *slog.Logger

	// Now and FormatDate default to time.Now and a short ISO date.
	Now        func() time.Time
	FormatDate func(time.Time) string
}

// NewRoutines creates a library over kv.
func NewRoutines(kv KV, log *slog.Logger) *Routines {
	return &Routines{
		kv:         kv,
		log:        log,
		Now:        time.Now,
		FormatDate: func(t time.Time) string { return t.Format(time.DateOnly) },
	}
}

var errNilRoutine = errors.New("nil routine")

// UpdateOptions carries optional overrides for UpdateExisting. Nil fields
// keep the stored value.
type UpdateOptions struct {
	ImagePreview *string
	Favorited    *bool
}

// List returns every saved workout in raw (newest-first insertion) order.
// A corrupt collection reads as empty.
func (r *Routines) List(ctx context.Context) ([]models.SavedWorkout, error) {
	raw, ok, err := r.kv.Get(ctx, KeySavedWorkouts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.SavedWorkout{}, nil
	}
	var list []models.SavedWorkout
	if err := json.Unmarshal(raw, &list); err != nil {
		r.log.Warn("saved workouts unreadable, treating as empty", "error", err)
		return []models.SavedWorkout{}, nil
	}
	if list == nil {
		list = []models.SavedWorkout{}
	}
	return list, nil
}

// Get returns the saved workout with the given id.
func (r *Routines) Get(ctx context.Context, id string) (models.SavedWorkout, error) {
	list, err := r.List(ctx)
	if err != nil {
		return models.SavedWorkout{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return models.SavedWorkout{}, fmt.Errorf("saved workout %s: %w", id, ErrNotFound)
	}
	return list[i], nil
}

// UpsertNew stores a copy of routine under a fresh id and prepends it.
func (r *Routines) UpsertNew(ctx context.Context, routine *models.WorkoutRoutine, imagePreview *string) (models.SavedWorkout, error) {
	if routine == nil {
		return models.SavedWorkout{}, errNilRoutine
	}
	list, err := r.List(ctx)
	if err != nil {
		return models.SavedWorkout{}, err
	}
	now := r.Now()
	entry := models.SavedWorkout{
		ID:           r.nextID(list, now),
		Date:         r.FormatDate(now),
		Routine:      *routine.Clone(),
		ImagePreview: copyString(imagePreview),
	}
	list = append([]models.SavedWorkout{entry}, list...)
	if err := r.write(ctx, list); err != nil {
		return models.SavedWorkout{}, err
	}
	r.log.Debug("saved workout created", "id", entry.ID, "equipment", entry.Routine.EquipmentName)
	return entry.Clone(), nil
}

// UpdateExisting replaces the routine of entry id in place and refreshes
// its date. The id and favorite state are preserved unless opts override
// them.
func (r *Routines) UpdateExisting(ctx context.Context, id string, routine *models.WorkoutRoutine, opts UpdateOptions) (models.SavedWorkout, error) {
	if routine == nil {
		return models.SavedWorkout{}, errNilRoutine
	}
	list, err := r.List(ctx)
	if err != nil {
		return models.SavedWorkout{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return models.SavedWorkout{}, fmt.Errorf("saved workout %s: %w", id, ErrNotFound)
	}
	e := &list[i]
	e.Routine = *routine.Clone()
	e.Date = r.FormatDate(r.Now())
	if opts.ImagePreview != nil {
		e.ImagePreview = copyString(opts.ImagePreview)
	}
	if opts.Favorited != nil {
		r.setFavorite(e, *opts.Favorited)
	}
	if err := r.write(ctx, list); err != nil {
		return models.SavedWorkout{}, err
	}
	return e.Clone(), nil
}

// Remove deletes entry id.
func (r *Routines) Remove(ctx context.Context, id string) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	i := indexOf(list, id)
	if i < 0 {
		return fmt.Errorf("saved workout %s: %w", id, ErrNotFound)
	}
	return r.write(ctx, slices.Delete(list, i, i+1))
}

// ToggleFavorite flips the favorite flag of entry id.
func (r *Routines) ToggleFavorite(ctx context.Context, id string) (models.SavedWorkout, error) {
	list, err := r.List(ctx)
	if err != nil {
		return models.SavedWorkout{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return models.SavedWorkout{}, fmt.Errorf("saved workout %s: %w", id, ErrNotFound)
	}
	r.setFavorite(&list[i], !list[i].IsFavorited)
	if err := r.write(ctx, list); err != nil {
		return models.SavedWorkout{}, err
	}
	return list[i].Clone(), nil
}

// SortedView filters by a case-insensitive substring of the equipment name
// and orders favorites first (newest favorite first), then the rest by id
// descending.
func (r *Routines) SortedView(ctx context.Context, query string) ([]models.SavedWorkout, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.SavedWorkout, 0, len(list))
	for _, s := range list {
		if q == "" || strings.Contains(strings.ToLower(s.Routine.EquipmentName), q) {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, compareLibrary)
	return out, nil
}

func compareLibrary(a, b models.SavedWorkout) int {
	if a.IsFavorited != b.IsFavorited {
		if a.IsFavorited {
			return -1
		}
		return 1
	}
	if a.IsFavorited {
		if c := favoritedAt(b).Compare(favoritedAt(a)); c != 0 {
			return c
		}
	}
	return cmp.Compare(b.ID, a.ID)
}

func favoritedAt(s models.SavedWorkout) time.Time {
	if s.FavoritedAt == nil {
		return time.Time{}
	}
	return *s.FavoritedAt
}

func (r *Routines) setFavorite(e *models.SavedWorkout, on bool) {
	e.IsFavorited = on
	if on {
		at := r.Now().UTC()
		e.FavoritedAt = &at
	} else {
		e.FavoritedAt = nil
	}
}

// nextID derives a sortable id from the creation time: 13 zero-padded
// unix-millisecond digits. Ids never go backwards relative to the newest
// stored entry, even when the clock does.
func (r *Routines) nextID(list []models.SavedWorkout, now time.Time) string {
	ms := now.UnixMilli()
	for _, s := range list {
		if n, err := strconv.ParseInt(s.ID, 10, 64); err == nil && n >= ms {
			ms = n + 1
		}
	}
	return fmt.Sprintf("%013d", ms)
}

func (r *Routines) write(ctx context.Context, list []models.SavedWorkout) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding saved workouts: %w", err)
	}
	if err := r.kv.Put(ctx, KeySavedWorkouts, data); err != nil {
		return fmt.Errorf("writing saved workouts: %w", err)
	}
	return nil
}

func indexOf(list []models.SavedWorkout, id string) int {
	return slices.IndexFunc(list, func(s models.SavedWorkout) bool { return s.ID == id })
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
