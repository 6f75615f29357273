package analytics

import (
	"context"
	"testing"
	"time"

	"luna-guard/internal/storage"
)

func TestReport(t *testing.T) {
	store, err := storage.New(storage.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	now := time.Now()
	for i, entry := range []storage.ViolationEntry{
		{CaseID: "1", GuildID: "g1", UserID: "u1", Type: "spam_detection", Action: "warn", Count: 1},
		{CaseID: "2", GuildID: "g1", UserID: "u1", Type: "spam_detection", Action: "timeout 5m", Count: 2},
		{CaseID: "3", GuildID: "g1", UserID: "u2", Type: "caps_filter", Action: "warn", Count: 1},
		{CaseID: "4", GuildID: "g2", UserID: "u3", Type: "caps_filter", Action: "warn", Count: 1},
	} {
		entry.CreatedAt = now.Add(-time.Duration(i) * time.Minute)
		if err := store.AddViolation(ctx, entry); err != nil {
			t.Fatalf("add violation: %v", err)
		}
	}

	report, err := New(store).Report(ctx, "g1", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 3 || report.Users != 2 {
		t.Fatalf("unexpected totals %+v", report)
	}
	if report.ByType["spam_detection"] != 2 || report.ByAction["warn"] != 2 {
		t.Fatalf("unexpected breakdown %+v", report)
	}
	if report.Top.UserID != "u1" || report.Top.Count != 2 {
		t.Fatalf("unexpected top offender %+v", report.Top)
	}
	if keys := Keys(report.ByType); keys[0] != "spam_detection" {
		t.Fatalf("unexpected key order %v", keys)
	}
}
