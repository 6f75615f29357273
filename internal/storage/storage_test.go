package storage

import (
	"context"
	"testing"
	"time"

	"luna-guard/internal/automod"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestUpsertGuildSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings := GuildSettings{GuildID: "g1", LogChannel: "c1", Language: "fr"}
	if err := store.UpsertGuildSettings(ctx, settings); err != nil {
		t.Fatalf("upsert guild settings: %v", err)
	}

	settings.LogChannel = "c2"
	if err := store.UpsertGuildSettings(ctx, settings); err != nil {
		t.Fatalf("update guild settings: %v", err)
	}

	got, err := store.GetGuildSettings(ctx, "g1", GuildSettings{Language: "en"})
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if got.LogChannel != "c2" || got.Language != "fr" {
		t.Fatalf("unexpected settings %+v", got)
	}

	fresh, err := store.GetGuildSettings(ctx, "g2", GuildSettings{Language: "en"})
	if err != nil {
		t.Fatalf("get missing guild: %v", err)
	}
	if fresh.GuildID != "g2" || fresh.Language != "en" {
		t.Fatalf("expected defaults, got %+v", fresh)
	}
}

func TestMigrateTwice(t *testing.T) {
	store := newTestStore(t)
	if err := store.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestAutomodConfigRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg, found, err := store.AutomodConfig(ctx, "g1")
	if err != nil {
		t.Fatalf("automod config: %v", err)
	}
	if found || len(cfg.Features) != 0 || len(cfg.Words) != 0 {
		t.Fatalf("expected empty config, got %+v found=%v", cfg, found)
	}

	if err := store.SetFeature(ctx, "g1", automod.FeatureCapsFilter, false); err != nil {
		t.Fatalf("set feature: %v", err)
	}
	if err := store.SetFeature(ctx, "g1", automod.FeatureCapsFilter, true); err != nil {
		t.Fatalf("update feature: %v", err)
	}
	if err := store.SetFeature(ctx, "g1", automod.FeatureScamDetection, false); err != nil {
		t.Fatalf("set feature: %v", err)
	}
	if err := store.SetThreshold(ctx, "g1", automod.ThresholdCaps, 85.5); err != nil {
		t.Fatalf("set threshold: %v", err)
	}
	if err := store.SetLogChannel(ctx, "g1", "log-1"); err != nil {
		t.Fatalf("set log channel: %v", err)
	}

	cfg, found, err = store.AutomodConfig(ctx, "g1")
	if err != nil {
		t.Fatalf("automod config: %v", err)
	}
	if !found {
		t.Fatalf("expected guild to be found")
	}
	if !cfg.Features[automod.FeatureCapsFilter] || cfg.Features[automod.FeatureScamDetection] {
		t.Fatalf("unexpected features %+v", cfg.Features)
	}
	if cfg.Thresholds[automod.ThresholdCaps] != 85.5 {
		t.Fatalf("unexpected thresholds %+v", cfg.Thresholds)
	}
	if cfg.LogChannelID != "log-1" {
		t.Fatalf("unexpected log channel %q", cfg.LogChannelID)
	}
}

func TestFilterWords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, word := range []string{"Spoiler", "leak"} {
		added, err := store.AddFilterWord(ctx, "g1", word)
		if err != nil || !added {
			t.Fatalf("add %q: %v %v", word, added, err)
		}
	}
	added, err := store.AddFilterWord(ctx, "g1", "SPOILER")
	if err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	if added {
		t.Fatalf("duplicate ignoring case must not be added")
	}

	words, err := store.ListFilterWords(ctx, "g1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(words) != 2 || words[0] != "Spoiler" || words[1] != "leak" {
		t.Fatalf("unexpected words %v", words)
	}

	removed, err := store.RemoveFilterWord(ctx, "g1", "spoiler")
	if err != nil || !removed {
		t.Fatalf("remove: %v %v", removed, err)
	}
	removed, _ = store.RemoveFilterWord(ctx, "g1", "spoiler")
	if removed {
		t.Fatalf("second remove should report false")
	}
}

func TestAuditLogs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	old := AuditLog{GuildID: "g1", UserID: "u1", Level: "INFO", Event: "automod_action", Details: "old", CreatedAt: now.AddDate(0, 0, -40)}
	recent := AuditLog{GuildID: "g1", UserID: "u1", Level: "WARN", Event: "automod_action", Details: "recent", CreatedAt: now}
	for _, entry := range []AuditLog{old, recent} {
		if err := store.AddAuditLog(ctx, entry); err != nil {
			t.Fatalf("add audit log: %v", err)
		}
	}

	logs, err := store.ListAuditLogs(ctx, "g1", now.AddDate(0, 0, -60))
	if err != nil || len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d (%v)", len(logs), err)
	}
	if logs[0].Details != "recent" {
		t.Fatalf("expected newest first, got %q", logs[0].Details)
	}

	if err := store.CleanupAuditLogs(ctx, 30); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	logs, _ = store.ListAuditLogs(ctx, "g1", now.AddDate(0, 0, -60))
	if len(logs) != 1 {
		t.Fatalf("expected 1 log after cleanup, got %d", len(logs))
	}
}

func TestViolationHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	entries := []ViolationEntry{
		{CaseID: "a", GuildID: "g1", UserID: "u1", Type: automod.FeatureSpamDetection, Action: "warn", Count: 1, CreatedAt: now.Add(-2 * time.Hour)},
		{CaseID: "b", GuildID: "g1", UserID: "u1", Type: automod.FeatureCapsFilter, Action: "timeout", Count: 2, CreatedAt: now.Add(-time.Hour)},
		{CaseID: "c", GuildID: "g1", UserID: "u2", Type: automod.FeatureCapsFilter, Action: "warn", Count: 1, CreatedAt: now.AddDate(0, 0, -45)},
	}
	for _, entry := range entries {
		if err := store.AddViolation(ctx, entry); err != nil {
			t.Fatalf("add violation: %v", err)
		}
	}

	history, err := store.ListUserViolations(ctx, "g1", "u1", 1)
	if err != nil {
		t.Fatalf("list user violations: %v", err)
	}
	if len(history) != 1 || history[0].CaseID != "b" {
		t.Fatalf("unexpected history %+v", history)
	}

	since, err := store.ListViolationsSince(ctx, "g1", now.AddDate(0, 0, -1))
	if err != nil || len(since) != 2 {
		t.Fatalf("expected 2 recent violations, got %d (%v)", len(since), err)
	}

	if err := store.CleanupViolations(ctx, 30); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if left, _ := store.ListUserViolations(ctx, "g1", "u2", 10); len(left) != 0 {
		t.Fatalf("expected old violation to be removed")
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("unexpected rebind %q", got)
	}
	lite := &Store{driver: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite query must stay untouched, got %q", got)
	}
}
