package audit

import (
	"context"
	"testing"
	"time"

	"luna-guard/internal/storage"

	"go.uber.org/zap"
)

func TestLogPersistsAndNotifies(t *testing.T) {
	store, err := storage.New(storage.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("storage init: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := NewLogger(store, zap.NewNop())
	var notified []storage.AuditLog
	logger.SetNotifier(func(_ context.Context, entry storage.AuditLog) {
		notified = append(notified, entry)
	})

	ctx := context.Background()
	logger.Log(ctx, EventActionFailed, "g1", "u1", "timeout: missing permissions")

	if len(notified) != 1 || notified[0].Event != string(EventActionFailed) {
		t.Fatalf("expected one notification, got %+v", notified)
	}
	logs, err := store.ListAuditLogs(ctx, "g1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Level != LevelWarn || logs[0].UserID != "u1" {
		t.Fatalf("unexpected audit logs %+v", logs)
	}
}

func TestAutomodActionsAreNotMirrored(t *testing.T) {
	logger := NewLogger(nil, zap.NewNop())
	var notified []storage.AuditLog
	logger.SetNotifier(func(_ context.Context, entry storage.AuditLog) {
		notified = append(notified, entry)
	})

	ctx := context.Background()
	logger.LogLevel(ctx, LevelCrit, EventAutomodAction, "g1", "u1", "action=kick")
	logger.Log(ctx, EventConfigChange, "", "", "global")
	if len(notified) != 0 {
		t.Fatalf("nothing should be mirrored, got %+v", notified)
	}

	logger.Log(ctx, EventCountReset, "g1", "u1", "reset by mod")
	if len(notified) != 1 || notified[0].Level != LevelInfo {
		t.Fatalf("expected one info entry, got %+v", notified)
	}
}

func TestEventLevels(t *testing.T) {
	cases := map[Event]string{
		EventAutomodAction: LevelInfo,
		EventActionFailed:  LevelWarn,
		EventConfigChange:  LevelInfo,
		EventCountReset:    LevelInfo,
	}
	for event, want := range cases {
		if got := event.Level(); got != want {
			t.Fatalf("%s: expected %s, got %s", event, want, got)
		}
	}
}

func TestLogWithoutStore(t *testing.T) {
	logger := NewLogger(nil, zap.NewNop())
	logger.Log(context.Background(), EventConfigChange, "g1", "", "caps_percentage=80")
}
