package bot

import (
	"context"
	"fmt"
	"time"

	"luna-guard/internal/analytics"
	"luna-guard/internal/automod"
	"luna-guard/internal/config"
	"luna-guard/internal/escalation"
	"luna-guard/internal/metrics"
	"luna-guard/internal/modules/audit"
	"luna-guard/internal/storage"
	"luna-guard/internal/violation"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	configs   automod.ConfigSource
	audit     *audit.Logger
	analytics *analytics.Service
	session   *discordgo.Session
	bank      *automod.Bank
	defaults  automod.Defaults
	engine    *escalation.Engine
	guilds    *expirable.LRU[string, guildState]
	notices   *noticeLimiter
}

// guildState is the cached per-guild view used on the message path.
type guildState struct {
	automod  automod.GuildConfig
	language string
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, violations violation.Store, runner escalation.Runner, auditLogger *audit.Logger, analyticsEngine *analytics.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	tiers, err := escalation.TiersFrom(cfg.Escalation.Tiers)
	if err != nil {
		return nil, err
	}

	cacheTTL := time.Duration(cfg.Automod.ConfigCacheTTL) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		configs:   store,
		audit:     auditLogger,
		analytics: analyticsEngine,
		session:   session,
		defaults:  automod.NewDefaults(cfg.Automod.Features, cfg.Automod.Thresholds),
		guilds:    expirable.NewLRU[string, guildState](10000, nil, cacheTTL),
		notices:   newNoticeLimiter(cfg.Notifications.NoticePerMinute),
	}

	tracker := automod.NewTracker(cfg.Automod.TrackerCapacity, 10*time.Minute)
	b.bank = automod.NewBank(tracker, automod.NewCommandMatcher(cfg.CommandPrefix, cfg.PrefixCommands))

	b.engine = escalation.NewEngine(violations, tiers, &enforcer{bot: b}, runner, auditLogger, logger)
	b.engine.WithHistory(store)
	b.engine.WithMuteRole(cfg.Escalation.MuteRoleName)

	if b.audit != nil {
		b.audit.SetNotifier(func(ctx context.Context, entry storage.AuditLog) {
			if !b.cfg.Notifications.AuditToChannel {
				return
			}
			b.notifyAudit(ctx, entry)
		})
	}

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	return b.registerCommands()
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

// Ready reports whether the gateway connection is up.
func (b *Bot) Ready() bool {
	return b.session != nil && b.session.DataReady
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username), zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot || msg.GuildID == "" {
		return
	}
	if session.State != nil && session.State.User != nil && msg.Author.ID == session.State.User.ID {
		return
	}

	message := automod.FromDiscord(msg.Message)
	if !b.bank.Eligible(message) {
		return
	}

	ctx := context.Background()
	state := b.guildState(ctx, msg.GuildID)
	cfg := automod.Resolve(state.automod, b.defaults)

	start := time.Now()
	verdict, flagged := b.bank.Evaluate(message, cfg)
	metrics.MessagesEvaluated.Inc()
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	if !flagged {
		return
	}
	metrics.Verdicts.WithLabelValues(verdict.Type).Inc()

	out, err := b.engine.Handle(ctx, escalation.Incident{
		GuildID:      message.GuildID,
		ChannelID:    message.ChannelID,
		MessageID:    message.ID,
		UserID:       message.AuthorID,
		UserName:     message.AuthorName,
		LogChannelID: cfg.LogChannelID(),
		Verdict:      verdict,
		At:           message.Timestamp,
	})
	if err != nil {
		b.logger.Error("escalation failed", zap.String("guild_id", message.GuildID), zap.String("user_id", message.AuthorID), zap.Error(err))
		return
	}
	if out.Exempt {
		return
	}
	b.logger.Debug("automod violation",
		zap.String("guild_id", message.GuildID),
		zap.String("user_id", message.AuthorID),
		zap.String("type", verdict.Type),
		zap.String("action", out.Tier.Label()),
		zap.Int("count", out.Count),
		zap.String("case_id", out.CaseID),
	)
}

// guildState loads the guild configuration through the cache. Storage errors
// fall back to defaults so detection never stops.
func (b *Bot) guildState(ctx context.Context, guildID string) guildState {
	if state, ok := b.guilds.Get(guildID); ok {
		return state
	}

	state := guildState{automod: automod.GuildConfig{GuildID: guildID}, language: b.cfg.DefaultLanguage}
	cfg, _, err := b.configs.AutomodConfig(ctx, guildID)
	if err != nil {
		b.logger.Warn("automod config fallback", zap.String("guild_id", guildID), zap.Error(err))
		return state
	}
	state.automod = cfg

	settings, err := b.store.GetGuildSettings(ctx, guildID, storage.GuildSettings{Language: b.cfg.DefaultLanguage})
	if err != nil {
		b.logger.Warn("guild settings fallback", zap.String("guild_id", guildID), zap.Error(err))
	} else {
		state.language = settings.Language
	}

	b.guilds.Add(guildID, state)
	return state
}

func (b *Bot) invalidate(guildID string) {
	b.guilds.Remove(guildID)
}

func (b *Bot) language(ctx context.Context, guildID string) string {
	if guildID == "" {
		return b.cfg.DefaultLanguage
	}
	return b.guildState(ctx, guildID).language
}

// notifyAudit posts mirrored audit entries to the guild log channel.
func (b *Bot) notifyAudit(ctx context.Context, entry storage.AuditLog) {
	state := b.guildState(ctx, entry.GuildID)
	channelID := state.automod.LogChannelID
	if channelID == "" {
		return
	}
	embed := b.buildAuditEmbed(state.language, entry)
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Debug("audit mirror failed", zap.String("guild_id", entry.GuildID), zap.Error(err))
	}
}

func (b *Bot) guildOwner(guildID string) (string, error) {
	if b.session.State != nil {
		if guild, err := b.session.State.Guild(guildID); err == nil && guild != nil && guild.OwnerID != "" {
			return guild.OwnerID, nil
		}
	}
	guild, err := b.session.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("fetch guild %s: %w", guildID, err)
	}
	return guild.OwnerID, nil
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
	if err != nil {
		b.logger.Debug("interaction respond failed", zap.Error(err))
	}
}
