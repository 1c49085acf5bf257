package models

import "time"

// Exercise is one entry of a routine. Sets, Reps, Rest and Weight are
// magnitude-strings: free text with a leading number and an optional unit
// ("3", "12 reps", "30 sec", "10kg"). Reps may encode a count, a duration
// or a distance.
type Exercise struct {
	Name         string `json:"name"`
	Sets         string `json:"sets"`
	Reps         string `json:"reps"`
	Rest         string `json:"rest"`
	Weight       string `json:"weight,omitempty"`
	Instructions string `json:"instructions"`
}

// WorkoutRoutine is the structured routine returned by the analysis service.
// EquipmentName is the identity key used for duplicate detection.
type WorkoutRoutine struct {
	EquipmentName        string     `json:"equipmentName"`
	EquipmentDescription string     `json:"equipmentDescription"`
	TargetMuscles        []string   `json:"targetMuscles"`
	Exercises            []Exercise `json:"exercises"`
	SafetyTips           []string   `json:"safetyTips"`
	EstimatedDuration    string     `json:"estimatedDuration"`
	SuggestedIntensity   string     `json:"suggestedIntensity,omitempty"`
	GeneratedLanguage    string     `json:"generatedLanguage,omitempty"`
	DebugRawResponse     string     `json:"debugRawResponse,omitempty"`
}

// Clone returns a deep copy. Nothing in the copy shares backing arrays
// with r, so the result can be stored while r keeps being edited.
func (r *WorkoutRoutine) Clone() *WorkoutRoutine {
	if r == nil {
		return nil
	}
	c := *r
	c.TargetMuscles = cloneStrings(r.TargetMuscles)
	c.SafetyTips = cloneStrings(r.SafetyTips)
	if r.Exercises != nil {
		c.Exercises = make([]Exercise, len(r.Exercises))
		copy(c.Exercises, r.Exercises)
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// SavedWorkout is one entry of the persisted library.
type SavedWorkout struct {
	ID           string         `json:"id"`
	Date         string         `json:"date"`
	Routine      WorkoutRoutine `json:"routine"`
	ImagePreview *string        `json:"imagePreview"`
	IsFavorited  bool           `json:"isFavorited,omitempty"`
	FavoritedAt  *time.Time     `json:"favoritedAt,omitempty"`
}

// Clone returns a deep copy of the saved entry.
func (s SavedWorkout) Clone() SavedWorkout {
	c := s
	c.Routine = *s.Routine.Clone()
	if s.ImagePreview != nil {
		p := *s.ImagePreview
		c.ImagePreview = &p
	}
	if s.FavoritedAt != nil {
		t := *s.FavoritedAt
		c.FavoritedAt = &t
	}
	return c
}

// ActivityLog records one completed workout. Entries are never mutated.
type ActivityLog struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	EquipmentName string    `json:"equipmentName"`
	Duration      string    `json:"duration,omitempty"`
}
