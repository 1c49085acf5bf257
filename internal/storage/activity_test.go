package storage

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// TestActivityCap verifies appending past the cap keeps exactly the most
// recent cap entries, newest first.
func TestActivityCap(t *testing.T) {
	ctx := context.Background()
	a := NewActivity(NewMemory(), 5, discardLogger())
	a.Now = fakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	for i := range 12 {
		if _, err := a.Append(ctx, fmt.Sprintf("eq-%02d", i), "20 min"); err != nil {
			t.Fatal(err)
		}
		logs, _ := a.List(ctx)
		if len(logs) > a.Cap() {
			t.Fatalf("log length %d exceeds cap %d", len(logs), a.Cap())
		}
	}

	logs, _ := a.List(ctx)
	if len(logs) != 5 {
		t.Fatalf("len = %d, want 5", len(logs))
	}
	for i, l := range logs {
		want := fmt.Sprintf("eq-%02d", 11-i)
		if l.EquipmentName != want {
			t.Errorf("logs[%d] = %q, want %q", i, l.EquipmentName, want)
		}
	}
}

// TestActivityDefaults covers the default cap and unique ids.
func TestActivityDefaults(t *testing.T) {
	ctx := context.Background()
	a := NewActivity(NewMemory(), 0, discardLogger())
	if a.Cap() != DefaultActivityCap {
		t.Errorf("cap = %d, want %d", a.Cap(), DefaultActivityCap)
	}
	x, _ := a.Append(ctx, "A", "")
	y, _ := a.Append(ctx, "B", "")
	if x.ID == "" || x.ID == y.ID {
		t.Errorf("ids not unique: %q %q", x.ID, y.ID)
	}
}

// TestActivityCorrupt reads a corrupt log as empty.
func TestActivityCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	kv.Put(ctx, KeyActivityLogs, []byte(`"oops`))
	logs, err := NewActivity(kv, 3, discardLogger()).List(ctx)
	if err != nil || len(logs) != 0 {
		t.Errorf("List = %v, %v", logs, err)
	}
}
