package intensity

import (
	"errors"
	"reflect"
	"testing"

	"github.com/meltforce/vizofit/internal/models"
)

func baseline() *models.WorkoutRoutine {
	return &models.WorkoutRoutine{
		EquipmentName: "Kettlebell",
		Exercises: []models.Exercise{
			{Name: "Swing", Sets: "3", Reps: "12 reps", Rest: "60 sec", Weight: "16kg", Instructions: "Hinge 2 times"},
			{Name: "Plank", Sets: "2", Reps: "30 sec", Rest: "45 sec", Weight: "Bodyweight"},
			{Name: "Walk", Sets: "1", Reps: "until tired", Rest: "none"},
		},
	}
}

// TestDeriveScaledIdentity verifies level 3 returns the baseline pointer itself.
func TestDeriveScaledIdentity(t *testing.T) {
	b := baseline()
	if got := DeriveScaled(b, DefaultLevel); got != b {
		t.Fatal("level 3 should return the baseline unchanged")
	}
	if got := DeriveScaled(b, 42); got != b {
		t.Fatal("unknown level should return the baseline unchanged")
	}
}

// TestDeriveScaledMultiplies checks sets/reps/weight scale and the rest stays put.
func TestDeriveScaledMultiplies(t *testing.T) {
	b := baseline()
	orig := b.Clone()

	high := DeriveScaled(b, 5)
	ex := high.Exercises[0]
	if ex.Sets != "5" || ex.Reps != "18 reps" || ex.Weight != "24kg" {
		t.Errorf("MAX swing = %+v", ex)
	}
	if ex.Rest != "60 sec" || ex.Instructions != "Hinge 2 times" {
		t.Errorf("rest/instructions were scaled: %+v", ex)
	}
	if high.Exercises[1].Weight != "Bodyweight" {
		t.Errorf("bodyweight scaled: %q", high.Exercises[1].Weight)
	}
	if high.Exercises[1].Reps != "45 sec" {
		t.Errorf("timed reps = %q, want 45 sec", high.Exercises[1].Reps)
	}
	if high.Exercises[2].Reps != "until tired" {
		t.Errorf("non-numeric reps changed: %q", high.Exercises[2].Reps)
	}

	if !reflect.DeepEqual(b, orig) {
		t.Error("baseline was mutated by DeriveScaled")
	}
}

// TestDeriveScaledClamps verifies results never drop below 1.
func TestDeriveScaledClamps(t *testing.T) {
	b := &models.WorkoutRoutine{Exercises: []models.Exercise{{Sets: "1", Reps: "0 reps", Weight: "1kg"}}}
	lite := DeriveScaled(b, 1)
	ex := lite.Exercises[0]
	if ex.Sets != "1" || ex.Reps != "1 reps" || ex.Weight != "1kg" {
		t.Errorf("LITE clamp = %+v", ex)
	}

	big := &models.WorkoutRoutine{Exercises: []models.Exercise{{Sets: "9000"}}}
	if got := DeriveScaled(big, 5).Exercises[0].Sets; got != "9999" {
		t.Errorf("upper clamp = %q", got)
	}
}

// TestAuthorize covers the entitlement gate.
func TestAuthorize(t *testing.T) {
	tests := []struct {
		id       int
		entitled bool
		want     error
	}{
		{1, false, nil},
		{3, false, nil},
		{4, false, ErrUpgradeRequired},
		{5, false, ErrUpgradeRequired},
		{5, true, nil},
		{0, true, ErrUnknownLevel},
	}
	for _, tt := range tests {
		err := Authorize(tt.id, tt.entitled)
		if tt.want == nil && err != nil {
			t.Errorf("Authorize(%d, %v) = %v", tt.id, tt.entitled, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("Authorize(%d, %v) = %v, want %v", tt.id, tt.entitled, err, tt.want)
		}
	}
}

// TestSelectGatedWithoutPro leaves the level and displayed numbers untouched.
func TestSelectGatedWithoutPro(t *testing.T) {
	s := NewSelector()
	if _, err := s.Select(2, false); err != nil {
		t.Fatal(err)
	}
	b := baseline()
	before := DeriveScaled(b, s.Active())

	dir, err := s.Select(4, false)
	if !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("err = %v, want ErrUpgradeRequired", err)
	}
	if dir != Same {
		t.Errorf("direction = %v, want Same", dir)
	}
	if s.Active() != 2 {
		t.Errorf("active = %d, want 2", s.Active())
	}
	after := DeriveScaled(b, s.Active())
	if !reflect.DeepEqual(before, after) {
		t.Error("displayed routine changed after a denied selection")
	}
}

// TestSelectDirection reports up and down moves.
func TestSelectDirection(t *testing.T) {
	s := NewSelector()
	if dir, _ := s.Select(5, true); dir != Up {
		t.Errorf("3->5 = %v, want Up", dir)
	}
	if dir, _ := s.Select(1, true); dir != Down {
		t.Errorf("5->1 = %v, want Down", dir)
	}
	if dir, _ := s.Select(1, true); dir != Same {
		t.Errorf("1->1 = %v, want Same", dir)
	}
	s.Reset()
	if s.Level().Label != "MID" {
		t.Errorf("reset level = %q", s.Level().Label)
	}
}
