package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken    string           `yaml:"discord_token"`
	CommandPrefix   string           `yaml:"command_prefix"`
	PrefixCommands  []string         `yaml:"prefix_commands"`
	LogLevel        string           `yaml:"log_level"`
	DefaultLanguage string           `yaml:"default_language"`
	RetentionDays   int              `yaml:"retention_days"`
	RetentionCron   string           `yaml:"retention_cron"`
	Database        DatabaseConfig   `yaml:"database"`
	Redis           RedisConfig      `yaml:"redis"`
	Health          HealthConfig     `yaml:"health"`
	Automod         AutomodConfig    `yaml:"automod"`
	Escalation      EscalationConfig `yaml:"escalation"`
	Notifications   NotifyConfig     `yaml:"notifications"`
	Workers         WorkerConfig     `yaml:"workers"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// AutomodConfig holds bot-wide defaults. Guild overrides stored in the
// database are layered on top of these.
type AutomodConfig struct {
	Features        map[string]bool    `yaml:"features"`
	Thresholds      map[string]float64 `yaml:"thresholds"`
	TrackerCapacity int                `yaml:"tracker_capacity"`
	ConfigCacheTTL  int                `yaml:"config_cache_seconds"`
}

type EscalationConfig struct {
	Scope        string       `yaml:"scope"`
	DecayHours   int          `yaml:"decay_hours"`
	MuteRoleName string       `yaml:"mute_role_name"`
	Tiers        []TierConfig `yaml:"tiers"`
}

type TierConfig struct {
	MinCount        int    `yaml:"min_count"`
	Action          string `yaml:"action"`
	DurationMinutes int    `yaml:"duration_minutes"`
}

type NotifyConfig struct {
	NoticeEnabled   bool        `yaml:"notice_enabled"`
	NoticePerMinute int         `yaml:"notice_per_minute"`
	AuditToChannel  bool        `yaml:"audit_to_channel"`
	EmbedColors     EmbedColors `yaml:"embed_colors"`
}

type EmbedColors struct {
	Action  int `yaml:"action"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
}

const (
	ScopeGuild  = "guild"
	ScopeGlobal = "global"
)

func DefaultConfig() Config {
	return Config{
		CommandPrefix:   "!",
		PrefixCommands:  []string{"help", "ping", "rank", "balance", "play", "skip", "queue", "roll"},
		LogLevel:        "info",
		DefaultLanguage: "en",
		RetentionDays:   30,
		RetentionCron:   "@every 6h",
		Database:        DatabaseConfig{Driver: "sqlite", DSN: "/data/luna.db"},
		Health:          HealthConfig{Enabled: false, Addr: ":8080"},
		Automod: AutomodConfig{
			TrackerCapacity: 50000,
			ConfigCacheTTL:  60,
		},
		Escalation: EscalationConfig{
			Scope:        ScopeGuild,
			DecayHours:   24,
			MuteRoleName: "Muted",
			Tiers:        DefaultTiers(),
		},
		Notifications: NotifyConfig{
			NoticeEnabled:   true,
			NoticePerMinute: 10,
			AuditToChannel:  true,
			EmbedColors: EmbedColors{
				Action:  0xF59E0B,
				Warning: 0xEF4444,
				Error:   0xF97316,
			},
		},
		Workers: WorkerConfig{Concurrency: 8},
	}
}

func DefaultTiers() []TierConfig {
	return []TierConfig{
		{MinCount: 1, Action: "warn"},
		{MinCount: 2, Action: "timeout", DurationMinutes: 5},
		{MinCount: 3, Action: "timeout", DurationMinutes: 60},
		{MinCount: 4, Action: "mute"},
		{MinCount: 5, Action: "kick"},
	}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	cfg.Database.Driver = normalizeDriver(cfg.Database.Driver)
	cfg.Escalation.Scope = normalizeScope(cfg.Escalation.Scope)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Escalation.DecayHours <= 0 {
		return errors.New("escalation.decay_hours must be positive")
	}
	if len(c.Escalation.Tiers) == 0 {
		return errors.New("escalation.tiers must not be empty")
	}
	last := 0
	for i, tier := range c.Escalation.Tiers {
		if tier.MinCount <= last {
			return fmt.Errorf("escalation.tiers[%d]: min_count must be ascending and positive", i)
		}
		last = tier.MinCount
		switch tier.Action {
		case "warn", "mute", "kick":
		case "timeout":
			if tier.DurationMinutes <= 0 {
				return fmt.Errorf("escalation.tiers[%d]: timeout needs duration_minutes", i)
			}
		default:
			return fmt.Errorf("escalation.tiers[%d]: unknown action %q", i, tier.Action)
		}
	}
	return nil
}

func (c EscalationConfig) DecayWindow() time.Duration {
	return time.Duration(c.DecayHours) * time.Hour
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.CommandPrefix = envString("COMMAND_PREFIX", cfg.CommandPrefix)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.DefaultLanguage = envString("DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	cfg.RetentionDays = envInt("RETENTION_DAYS", cfg.RetentionDays)
	cfg.RetentionCron = envString("RETENTION_CRON", cfg.RetentionCron)
	cfg.Database.Driver = envString("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = envString("DATABASE_DSN", cfg.Database.DSN)
	cfg.Redis.URL = envString("REDIS_URL", cfg.Redis.URL)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Escalation.Scope = envString("ESCALATION_SCOPE", cfg.Escalation.Scope)
	cfg.Escalation.DecayHours = envInt("ESCALATION_DECAY_HOURS", cfg.Escalation.DecayHours)
	cfg.Escalation.MuteRoleName = envString("MUTE_ROLE_NAME", cfg.Escalation.MuteRoleName)
	cfg.Notifications.NoticeEnabled = envBool("NOTICE_ENABLED", cfg.Notifications.NoticeEnabled)
	cfg.Notifications.NoticePerMinute = envInt("NOTICE_PER_MINUTE", cfg.Notifications.NoticePerMinute)
	cfg.Notifications.AuditToChannel = envBool("AUDIT_TO_CHANNEL", cfg.Notifications.AuditToChannel)
	cfg.Notifications.EmbedColors.Action = envInt("EMBED_COLOR_ACTION", cfg.Notifications.EmbedColors.Action)
	cfg.Notifications.EmbedColors.Warning = envInt("EMBED_COLOR_WARNING", cfg.Notifications.EmbedColors.Warning)
	cfg.Notifications.EmbedColors.Error = envInt("EMBED_COLOR_ERROR", cfg.Notifications.EmbedColors.Error)
	cfg.Workers.Concurrency = envInt("WORKER_CONCURRENCY", cfg.Workers.Concurrency)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}

func normalizeDriver(value string) string {
	switch strings.ToLower(value) {
	case "postgres", "postgresql", "pgx":
		return "postgres"
	default:
		return "sqlite"
	}
}

func normalizeScope(value string) string {
	if strings.ToLower(value) == ScopeGlobal {
		return ScopeGlobal
	}
	return ScopeGuild
}
