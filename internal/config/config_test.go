package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DISCORD_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without token")
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
discord_token: from-file
database:
  driver: PostgreSQL
  dsn: postgres://luna@localhost/luna
escalation:
  scope: global
  decay_hours: 12
automod:
  thresholds:
    spam_threshold: 7
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("MUTE_ROLE_NAME", "Silenced")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DiscordToken != "from-file" {
		t.Fatalf("unexpected token %q", cfg.DiscordToken)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.Database.Driver)
	}
	if cfg.Escalation.Scope != ScopeGlobal || cfg.Escalation.DecayHours != 12 {
		t.Fatalf("unexpected escalation config %+v", cfg.Escalation)
	}
	if cfg.Escalation.MuteRoleName != "Silenced" {
		t.Fatalf("expected env override, got %q", cfg.Escalation.MuteRoleName)
	}
	if cfg.Automod.Thresholds["spam_threshold"] != 7 {
		t.Fatalf("expected spam_threshold override")
	}
	if len(cfg.Escalation.Tiers) != 5 {
		t.Fatalf("expected default tiers, got %d", len(cfg.Escalation.Tiers))
	}
}

func TestValidateTiers(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.Escalation.Tiers = []TierConfig{{MinCount: 2, Action: "warn"}, {MinCount: 2, Action: "kick"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for non ascending tiers")
	}

	cfg.Escalation.Tiers = []TierConfig{{MinCount: 1, Action: "timeout"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for timeout without duration")
	}

	cfg.Escalation.Tiers = []TierConfig{{MinCount: 1, Action: "ban"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}
