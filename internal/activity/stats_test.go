package activity

import (
	"reflect"
	"testing"
	"time"

	"github.com/meltforce/vizofit/internal/models"
)

func logsAt(times ...time.Time) []models.ActivityLog {
	out := make([]models.ActivityLog, len(times))
	for i, t := range times {
		out[i] = models.ActivityLog{ID: string(rune('a' + i)), Date: t, EquipmentName: "Bench"}
	}
	return out
}

func day(d int, hour int) time.Time {
	return time.Date(2025, 3, d, hour, 0, 0, 0, time.UTC)
}

// TestStreak covers streaks ending today, ending yesterday and broken ones.
func TestStreak(t *testing.T) {
	now := day(10, 18)
	tests := []struct {
		name string
		logs []models.ActivityLog
		want int
	}{
		{"empty", nil, 0},
		{"today only", logsAt(day(10, 7)), 1},
		{"ending today", logsAt(day(10, 7), day(9, 7), day(9, 20), day(8, 7)), 3},
		{"ending yesterday", logsAt(day(9, 7), day(8, 7)), 2},
		{"gap", logsAt(day(10, 7), day(8, 7)), 1},
		{"stale", logsAt(day(7, 7), day(6, 7)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(tt.logs, now); got != tt.want {
				t.Errorf("Streak = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestGrade checks the sessions-per-month thresholds.
func TestGrade(t *testing.T) {
	feb := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	many := func(n int) []models.ActivityLog { return make([]models.ActivityLog, n) }
	tests := []struct {
		n    int
		want Consistency
	}{
		{0, ConsistencyNone},
		{8, ConsistencyActive},
		{9, ConsistencyGood},
		{30, ConsistencyGood},
		{31, ConsistencyElite},
	}
	for _, tt := range tests {
		if got := Grade(many(tt.n), feb); got != tt.want {
			t.Errorf("Grade(%d logs in Feb) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

// TestDayCounts buckets by day and ignores other years.
func TestDayCounts(t *testing.T) {
	logs := logsAt(day(1, 8), day(1, 19), day(2, 8), time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC))
	got := DayCounts(logs, 2025, time.UTC)
	want := map[string]int{"2025-03-01": 2, "2025-03-02": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DayCounts = %v, want %v", got, want)
	}
	if Heat(7) != 3 || Heat(0) != 0 || Heat(2) != 2 {
		t.Error("Heat thresholds wrong")
	}
}

// TestSummarize assembles the view model.
func TestSummarize(t *testing.T) {
	now := day(2, 12)
	s := Summarize(logsAt(day(2, 8), day(1, 8)), now)
	if s.Total != 2 || s.Streak != 2 || s.Year != 2025 || s.Consistency != ConsistencyActive {
		t.Errorf("summary = %+v", s)
	}
	if days := ActiveDays(logsAt(day(1, 8), day(2, 8), day(1, 9)), time.UTC); !reflect.DeepEqual(days, []string{"2025-03-02", "2025-03-01"}) {
		t.Errorf("ActiveDays = %v", days)
	}
}

// TestNewReport checks the limit keeps the newest entries while the summary
// still counts every log.
func TestNewReport(t *testing.T) {
	now := day(10, 18)
	logs := logsAt(day(10, 9), day(9, 9), day(8, 9), day(1, 9))

	r := NewReport(logs, now, 2)
	if len(r.Logs) != 2 || r.Logs[0].ID != "a" || r.Logs[1].ID != "b" {
		t.Errorf("logs = %+v, want the two newest", r.Logs)
	}
	if r.Summary.Total != 4 || r.Summary.Streak != 3 {
		t.Errorf("summary = %+v, want total 4 streak 3", r.Summary)
	}

	if all := NewReport(logs, now, 0); len(all.Logs) != 4 {
		t.Errorf("limit 0 kept %d logs, want 4", len(all.Logs))
	}
	if empty := NewReport(nil, now, 5); empty.Logs == nil {
		t.Error("empty report should carry a non-nil slice")
	}
}
