package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/vizofit/internal/models"
)

// DefaultActivityCap bounds the persisted activity log.
const DefaultActivityCap = 300

// Activity is the append-only workout completion log, newest first and
// never longer than its cap.
type Activity struct {
	kv  KV
	cap int
	log *slog.Logger

	Now func() time.Time
}

// NewActivity creates an activity log over kv. A non-positive limit uses
// DefaultActivityCap.
func NewActivity(kv KV, limit int, log *slog.Logger) *Activity {
	if limit <= 0 {
		limit = DefaultActivityCap
	}
	return &Activity{kv: kv, cap: limit, log: log, Now: time.Now}
}

// Cap returns the maximum number of retained entries.
func (a *Activity) Cap() int { return a.cap }

// List returns the log, newest first. A corrupt log reads as empty.
func (a *Activity) List(ctx context.Context) ([]models.ActivityLog, error) {
	raw, ok, err := a.kv.Get(ctx, KeyActivityLogs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.ActivityLog{}, nil
	}
	var logs []models.ActivityLog
	if err := json.Unmarshal(raw, &logs); err != nil {
		a.log.Warn("activity log unreadable, treating as empty", "error", err)
		return []models.ActivityLog{}, nil
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}
	return logs, nil
}

// Append records one completed workout and prunes the log to its cap,
// dropping the oldest entries.
func (a *Activity) Append(ctx context.Context, equipmentName, duration string) (models.ActivityLog, error) {
	logs, err := a.List(ctx)
	if err != nil {
		return models.ActivityLog{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return models.ActivityLog{}, fmt.Errorf("generating activity id: %w", err)
	}
	entry := models.ActivityLog{
		ID:            id.String(),
		Date:          a.Now().UTC(),
		EquipmentName: equipmentName,
		Duration:      duration,
	}
	logs = append([]models.ActivityLog{entry}, logs...)
	if len(logs) > a.cap {
		logs = logs[:a.cap]
	}

	data, err := json.Marshal(logs)
	if err != nil {
		return models.ActivityLog{}, fmt.Errorf("encoding activity log: %w", err)
	}
	if err := a.kv.Put(ctx, KeyActivityLogs, data); err != nil {
		return models.ActivityLog{}, fmt.Errorf("writing activity log: %w", err)
	}
	return entry, nil
}
