package escalation

import (
	"context"
	"fmt"
	"time"

	"luna-guard/internal/automod"
	"luna-guard/internal/metrics"
	"luna-guard/internal/modules/audit"
	"luna-guard/internal/storage"
	"luna-guard/internal/violation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Enforcer performs moderation on the chat platform.
type Enforcer interface {
	GuildOwner(ctx context.Context, guildID string) (string, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error
	FindRole(ctx context.Context, guildID, name string) (roleID string, found bool, err error)
	AddRole(ctx context.Context, guildID, userID, roleID, reason string) error
	KickMember(ctx context.Context, guildID, userID, reason string) error
	SendNotice(ctx context.Context, channelID string, notice Notice) error
	SendLog(ctx context.Context, channelID string, notice Notice) error
}

// Runner schedules side effects away from the detection path.
type Runner interface {
	Go(name string, fn func(ctx context.Context) error)
}

type History interface {
	AddViolation(ctx context.Context, entry storage.ViolationEntry) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Incident is a verdict raised against one message.
type Incident struct {
	GuildID      string
	ChannelID    string
	MessageID    string
	UserID       string
	UserName     string
	LogChannelID string
	Verdict      automod.Verdict
	At           time.Time
}

// Notice is what the enforcer renders for the channel and the log channel.
type Notice struct {
	CaseID        string
	GuildID       string
	UserID        string
	UserName      string
	ViolationType string
	Description   string
	Tier          Tier
	Count         int
	At            time.Time
}

type Outcome struct {
	CaseID string
	Exempt bool
	Count  int
	Tier   Tier
}

type Engine struct {
	store    violation.Store
	tiers    Tiers
	enforcer Enforcer
	runner   Runner
	audit    *audit.Logger
	logger   *zap.Logger
	history  History
	muteRole string
	clock    Clock
}

func NewEngine(store violation.Store, tiers Tiers, enforcer Enforcer, runner Runner, auditLogger *audit.Logger, logger *zap.Logger) *Engine {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	return &Engine{
		store:    store,
		tiers:    tiers,
		enforcer: enforcer,
		runner:   runner,
		audit:    auditLogger,
		logger:   logger,
		muteRole: "Muted",
		clock:    realClock{},
	}
}

func (e *Engine) WithClock(clock Clock) {
	e.clock = clock
}

func (e *Engine) WithHistory(history History) {
	e.history = history
}

func (e *Engine) WithMuteRole(name string) {
	if name != "" {
		e.muteRole = name
	}
}

// Handle counts the violation, picks the tier and schedules enforcement.
// The count stands even if enforcement later fails.
func (e *Engine) Handle(ctx context.Context, inc Incident) (Outcome, error) {
	owner, err := e.enforcer.GuildOwner(ctx, inc.GuildID)
	if err != nil {
		// Without the owner id the exemption cannot be checked, so nothing is counted.
		e.logger.Warn("owner lookup failed, skipping enforcement", zap.String("guild_id", inc.GuildID), zap.Error(err))
		return Outcome{}, fmt.Errorf("owner lookup: %w", err)
	}
	if owner != "" && owner == inc.UserID {
		metrics.OwnerExemptions.Inc()
		e.logger.Debug("owner exempt from automod", zap.String("guild_id", inc.GuildID), zap.String("type", inc.Verdict.Type))
		return Outcome{Exempt: true}, nil
	}

	rec, err := e.store.Record(ctx, inc.GuildID, inc.UserID)
	if err != nil {
		return Outcome{}, fmt.Errorf("record violation: %w", err)
	}
	tier, ok := e.tiers.For(rec.Count)
	if !ok {
		tier = Tier{MinCount: 1, Action: ActionWarn}
	}
	if inc.At.IsZero() {
		inc.At = e.clock.Now()
	}

	out := Outcome{CaseID: uuid.NewString(), Count: rec.Count, Tier: tier}
	metrics.Actions.WithLabelValues(string(tier.Action)).Inc()

	e.runner.Go("enforce:"+out.CaseID, func(ctx context.Context) error {
		e.enforce(ctx, inc, out)
		return nil
	})
	return out, nil
}

// Reset clears a user's count on admin request.
func (e *Engine) Reset(ctx context.Context, guildID, userID, moderatorID string) error {
	if err := e.store.Reset(ctx, guildID, userID); err != nil {
		return fmt.Errorf("reset violations: %w", err)
	}
	e.audit.Log(ctx, audit.EventCountReset, guildID, userID, "reset by "+moderatorID)
	return nil
}

func (e *Engine) Violations(ctx context.Context, guildID, userID string) (violation.Record, error) {
	return e.store.Get(ctx, guildID, userID)
}

func (e *Engine) enforce(ctx context.Context, inc Incident, out Outcome) {
	reason := fmt.Sprintf("Automod: %s (violation #%d)", inc.Verdict.Type, out.Count)

	if err := e.enforcer.DeleteMessage(ctx, inc.ChannelID, inc.MessageID); err != nil {
		e.failed(ctx, inc, "delete", err)
	}

	switch out.Tier.Action {
	case ActionTimeout:
		until := e.clock.Now().Add(out.Tier.Duration)
		if err := e.enforcer.TimeoutMember(ctx, inc.GuildID, inc.UserID, until, reason); err != nil {
			e.failed(ctx, inc, "timeout", err)
		}
	case ActionMute:
		roleID, found, err := e.enforcer.FindRole(ctx, inc.GuildID, e.muteRole)
		switch {
		case err != nil:
			e.failed(ctx, inc, "mute", err)
		case !found:
			e.logger.Debug("mute role missing", zap.String("guild_id", inc.GuildID), zap.String("role", e.muteRole))
		default:
			if err := e.enforcer.AddRole(ctx, inc.GuildID, inc.UserID, roleID, reason); err != nil {
				e.failed(ctx, inc, "mute", err)
			}
		}
	case ActionKick:
		if err := e.enforcer.KickMember(ctx, inc.GuildID, inc.UserID, reason); err != nil {
			e.failed(ctx, inc, "kick", err)
		}
	}

	notice := Notice{
		CaseID:        out.CaseID,
		GuildID:       inc.GuildID,
		UserID:        inc.UserID,
		UserName:      inc.UserName,
		ViolationType: inc.Verdict.Type,
		Description:   inc.Verdict.Description,
		Tier:          out.Tier,
		Count:         out.Count,
		At:            inc.At,
	}
	if err := e.enforcer.SendNotice(ctx, inc.ChannelID, notice); err != nil {
		e.failed(ctx, inc, "notice", err)
	}
	if inc.LogChannelID != "" {
		if err := e.enforcer.SendLog(ctx, inc.LogChannelID, notice); err != nil {
			e.failed(ctx, inc, "log", err)
		}
	}

	level := audit.EventAutomodAction.Level()
	switch out.Tier.Action {
	case ActionMute:
		level = audit.LevelWarn
	case ActionKick:
		level = audit.LevelCrit
	}
	e.audit.LogLevel(ctx, level, audit.EventAutomodAction, inc.GuildID, inc.UserID,
		fmt.Sprintf("case=%s type=%s action=%s count=%d: %s", out.CaseID, inc.Verdict.Type, out.Tier.Label(), out.Count, inc.Verdict.Description))

	if e.history != nil {
		entry := storage.ViolationEntry{
			CaseID:      out.CaseID,
			GuildID:     inc.GuildID,
			UserID:      inc.UserID,
			Type:        inc.Verdict.Type,
			Description: inc.Verdict.Description,
			Action:      out.Tier.Label(),
			Count:       out.Count,
			CreatedAt:   inc.At,
		}
		if err := e.history.AddViolation(ctx, entry); err != nil {
			e.logger.Warn("violation history write failed", zap.String("case_id", out.CaseID), zap.Error(err))
		}
	}
}

func (e *Engine) failed(ctx context.Context, inc Incident, step string, err error) {
	metrics.ActionFailures.WithLabelValues(step).Inc()
	e.logger.Warn("automod action failed",
		zap.String("guild_id", inc.GuildID),
		zap.String("user_id", inc.UserID),
		zap.String("step", step),
		zap.Error(err),
	)
	e.audit.Log(ctx, audit.EventActionFailed, inc.GuildID, inc.UserID, step+": "+err.Error())
}
