package violation

import (
	"context"
	"time"

	"luna-guard/internal/config"
)

// Record is a user's running violation count within the decay window.
type Record struct {
	Count  int
	LastAt time.Time
}

// Store keeps violation counters. Record must apply decay and increment
// atomically: if the previous violation is older than the decay window the
// count restarts at zero before the increment.
type Store interface {
	Record(ctx context.Context, guildID, userID string) (Record, error)
	Get(ctx context.Context, guildID, userID string) (Record, error)
	Reset(ctx context.Context, guildID, userID string) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Options are shared by every store implementation.
type Options struct {
	Scope       string
	DecayWindow time.Duration
}

func OptionsFrom(cfg config.EscalationConfig) Options {
	return Options{Scope: cfg.Scope, DecayWindow: cfg.DecayWindow()}
}

func (o Options) key(guildID, userID string) string {
	if o.Scope == config.ScopeGlobal {
		return "*:" + userID
	}
	return guildID + ":" + userID
}

func (o Options) window() time.Duration {
	if o.DecayWindow <= 0 {
		return 24 * time.Hour
	}
	return o.DecayWindow
}

func expired(last, now time.Time, window time.Duration) bool {
	return !last.IsZero() && now.Sub(last) > window
}
