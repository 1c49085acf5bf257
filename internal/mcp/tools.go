package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/vizofit/internal/intensity"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/storage"
	"github.com/meltforce/vizofit/internal/units"
)

// recentActivity is how many log entries get_activity_summary returns.
const recentActivity = 10

// routineSummary is one library row as returned by list_saved_workouts.
type routineSummary struct {
	ID                string   `json:"id"`
	EquipmentName     string   `json:"equipment_name"`
	Date              string   `json:"date"`
	Favorited         bool     `json:"favorited"`
	Exercises         int      `json:"exercises"`
	TargetMuscles     []string `json:"target_muscles,omitempty"`
	EstimatedDuration string   `json:"estimated_duration,omitempty"`
}

func summarize(list []models.SavedWorkout) []routineSummary {
	out := make([]routineSummary, 0, len(list))
	for _, s := range list {
		out = append(out, routineSummary{
			ID:                s.ID,
			EquipmentName:     s.Routine.EquipmentName,
			Date:              s.Date,
			Favorited:         s.IsFavorited,
			Exercises:         len(s.Routine.Exercises),
			TargetMuscles:     s.Routine.TargetMuscles,
			EstimatedDuration: s.Routine.EstimatedDuration,
		})
	}
	return out
}

// --- Tool definitions ---

var toolListSavedWorkouts = mcp.NewTool("list_saved_workouts",
	mcp.WithDescription("List saved equipment routines, favorites first, newest next. Returns id, equipment name, save date and exercise count."),
	mcp.WithString("query", mcp.Description("Case-insensitive filter on the equipment name.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one saved routine with its exercises scaled to an intensity level (1 LITE, 2 LOW, 3 MID, 4 HIGH, 5 MAX) and formatted for a unit system. Levels 4 and 5 require Pro."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Routine id from list_saved_workouts.")),
	mcp.WithNumber("intensity", mcp.Description("Intensity level 1-5. Defaults to 3.")),
	mcp.WithString("units", mcp.Description("Unit system for weights. Defaults to the user's setting."), mcp.Enum("metric", "imperial")),
)

var toolGetActivitySummary = mcp.NewTool("get_activity_summary",
	mcp.WithDescription("Summarize completed workouts: total, current streak in days, consistency grade, per-day counts for this year and the most recent entries."),
)

// --- Tool handlers ---

func (h *handlers) listSavedWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.ds.ListRoutines(ctx, req.GetString("query", ""))
	if err != nil {
		h.log.Error("mcp list_saved_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"routines": summarize(list)})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	level := req.GetInt("intensity", intensity.DefaultLevel)
	var system models.UnitSystem
	if u := req.GetString("units", ""); u != "" {
		system = units.ParseSystem(u)
	}

	d, err := h.ds.GetRoutine(ctx, id, level, system)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("no saved routine with id %s", id)), nil
	case errors.Is(err, intensity.ErrUpgradeRequired):
		return mcp.NewToolResultError(fmt.Sprintf("intensity %d requires Vizofit Pro", level)), nil
	case errors.Is(err, intensity.ErrUnknownLevel):
		return mcp.NewToolResultError("intensity must be between 1 and 5"), nil
	case err != nil:
		h.log.Error("mcp get_workout", "id", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(d)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getActivitySummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.ds.GetActivity(ctx, recentActivity)
	if err != nil {
		h.log.Error("mcp get_activity_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(report)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
