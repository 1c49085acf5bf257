// Package activity computes calendar statistics over the activity log.
package activity

import (
	"slices"
	"time"

	"github.com/meltforce/vizofit/internal/models"
)

// Consistency grades how regularly the user trains this year.
type Consistency string

const (
	ConsistencyNone   Consistency = "none"
	ConsistencyActive Consistency = "active"
	ConsistencyGood   Consistency = "good"
	ConsistencyElite  Consistency = "elite"
)

const dayLayout = "2006-01-02"

// Summary is everything the activity view shows.
type Summary struct {
	Total       int            `json:"total"`
	Streak      int            `json:"streak"`
	Consistency Consistency    `json:"consistency"`
	Year        int            `json:"year"`
	Days        map[string]int `json:"days"`
}

// Summarize computes a Summary relative to now. Days are bucketed in now's
// location.
func Summarize(logs []models.ActivityLog, now time.Time) Summary {
	return Summary{
		Total:       len(logs),
		Streak:      Streak(logs, now),
		Consistency: Grade(logs, now),
		Year:        now.Year(),
		Days:        DayCounts(logs, now.Year(), now.Location()),
	}
}

// Streak counts consecutive active days ending today or yesterday.
func Streak(logs []models.ActivityLog, now time.Time) int {
	if len(logs) == 0 {
		return 0
	}
	loc := now.Location()
	seen := make(map[string]bool)
	for _, l := range logs {
		seen[l.Date.In(loc).Format(dayLayout)] = true
	}

	day := startOfDay(now)
	if !seen[day.Format(dayLayout)] {
		day = day.AddDate(0, 0, -1)
		if !seen[day.Format(dayLayout)] {
			return 0
		}
	}
	n := 0
	for seen[day.Format(dayLayout)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// Grade rates sessions per elapsed month of the current year: more than 15
// is elite, more than 4 good, anything else active.
func Grade(logs []models.ActivityLog, now time.Time) Consistency {
	if len(logs) == 0 {
		return ConsistencyNone
	}
	perMonth := float64(len(logs)) / float64(now.Month())
	switch {
	case perMonth > 15:
		return ConsistencyElite
	case perMonth > 4:
		return ConsistencyGood
	}
	return ConsistencyActive
}

// DayCounts returns the number of sessions per YYYY-MM-DD day of year.
func DayCounts(logs []models.ActivityLog, year int, loc *time.Location) map[string]int {
	out := make(map[string]int)
	for _, l := range logs {
		d := l.Date.In(loc)
		if d.Year() == year {
			out[d.Format(dayLayout)]++
		}
	}
	return out
}

// Heat maps a day's session count onto the four calendar shades.
func Heat(count int) int {
	return min(max(count, 0), 3)
}

// ActiveDays returns the distinct active days, newest first.
func ActiveDays(logs []models.ActivityLog, loc *time.Location) []string {
	seen := make(map[string]bool)
	var days []string
	for _, l := range logs {
		d := l.Date.In(loc).Format(dayLayout)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	slices.Sort(days)
	slices.Reverse(days)
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Report pairs the most recent logs with the Summary over all of them.
type Report struct {
	Logs    []models.ActivityLog `json:"logs"`
	Summary Summary              `json:"summary"`
}

// NewReport summarizes logs and keeps the newest limit entries (all when
// limit <= 0). Logs are expected newest first.
func NewReport(logs []models.ActivityLog, now time.Time, limit int) Report {
	r := Report{Logs: logs, Summary: Summarize(logs, now)}
	if limit > 0 && len(r.Logs) > limit {
		r.Logs = r.Logs[:limit]
	}
	if r.Logs == nil {
		r.Logs = []models.ActivityLog{}
	}
	return r
}
