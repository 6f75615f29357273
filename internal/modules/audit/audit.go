package audit

import (
	"context"
	"time"

	"luna-guard/internal/storage"

	"go.uber.org/zap"
)

const (
	LevelInfo = "INFO"
	LevelWarn = "WARN"
	LevelCrit = "CRIT"
)

// Event names one kind of automod audit entry.
type Event string

const (
	EventAutomodAction Event = "automod_action"
	EventActionFailed  Event = "action_failed"
	EventConfigChange  Event = "config_change"
	EventCountReset    Event = "violations_reset"
)

// Level is the default severity of an event. Automod actions override it
// per tier.
func (e Event) Level() string {
	if e == EventActionFailed {
		return LevelWarn
	}
	return LevelInfo
}

// Mirrored reports whether the entry belongs in the guild log channel.
// Automod actions already post their own log embed.
func (e Event) Mirrored() bool {
	return e != EventAutomodAction
}

type Logger struct {
	store  *storage.Store
	logger *zap.Logger
	notify func(context.Context, storage.AuditLog)
}

// NewLogger accepts a nil store, in which case entries are only logged.
func NewLogger(store *storage.Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger}
}

// SetNotifier mirrors entries to the guild log channel.
func (l *Logger) SetNotifier(notify func(context.Context, storage.AuditLog)) {
	l.notify = notify
}

// Log records an event at its default level.
func (l *Logger) Log(ctx context.Context, event Event, guildID, userID, details string) {
	l.LogLevel(ctx, event.Level(), event, guildID, userID, details)
}

func (l *Logger) LogLevel(ctx context.Context, level string, event Event, guildID, userID, details string) {
	entry := storage.AuditLog{
		GuildID:   guildID,
		UserID:    userID,
		Level:     level,
		Event:     string(event),
		Details:   details,
		CreatedAt: time.Now(),
	}
	if l.store != nil {
		if err := l.store.AddAuditLog(ctx, entry); err != nil {
			l.logger.Warn("audit persist failed", zap.String("guild_id", guildID), zap.String("event", entry.Event), zap.Error(err))
		}
	}
	if l.notify != nil && guildID != "" && event.Mirrored() {
		l.notify(ctx, entry)
	}
	l.logger.Info("audit",
		zap.String("level", level),
		zap.String("event", entry.Event),
		zap.String("guild_id", guildID),
		zap.String("user_id", userID),
		zap.String("details", details),
	)
}
