package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"luna-guard/internal/automod"
	"luna-guard/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type commandOptions []*discordgo.ApplicationCommandInteractionDataOption

func (o commandOptions) get(name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range o {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

func (o commandOptions) str(name string) string {
	if opt := o.get(name); opt != nil {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := interaction.ApplicationCommandData()
	if data.Name != commandName {
		return
	}

	ctx := context.Background()
	if interaction.GuildID == "" {
		b.respondEmbed(session, interaction, b.errorEmbed(b.cfg.DefaultLanguage, b.t(b.cfg.DefaultLanguage, "error_only_guild")), true)
		return
	}
	lang := b.language(ctx, interaction.GuildID)

	if !b.canManage(interaction) {
		b.respondEmbed(session, interaction, b.errorEmbed(lang, b.t(lang, "error_forbidden")), true)
		return
	}
	if len(data.Options) == 0 {
		b.respondEmbed(session, interaction, b.errorEmbed(lang, b.t(lang, "error_unknown")), true)
		return
	}

	sub := data.Options[0]
	options := commandOptions(sub.Options)
	switch sub.Name {
	case "status":
		b.handleStatus(ctx, session, interaction, lang)
	case "enable":
		b.handleFeature(ctx, session, interaction, lang, options.str("feature"), true)
	case "disable":
		b.handleFeature(ctx, session, interaction, lang, options.str("feature"), false)
	case "threshold":
		value := 0.0
		if opt := options.get("value"); opt != nil {
			value = opt.FloatValue()
		}
		b.handleThreshold(ctx, session, interaction, lang, options.str("name"), value)
	case "filter":
		if len(sub.Options) == 0 {
			b.respondEmbed(session, interaction, b.errorEmbed(lang, b.t(lang, "error_unknown")), true)
			return
		}
		action := sub.Options[0]
		b.handleFilter(ctx, session, interaction, lang, action.Name, commandOptions(action.Options).str("word"))
	case "logchannel":
		channelID := ""
		if opt := options.get("channel"); opt != nil {
			if channel := opt.ChannelValue(session); channel != nil {
				channelID = channel.ID
			}
		}
		b.handleLogChannel(ctx, session, interaction, lang, channelID)
	case "violations":
		b.handleViolations(ctx, session, interaction, lang, b.userOption(session, options))
	case "reset":
		b.handleReset(ctx, session, interaction, lang, b.userOption(session, options))
	case "report":
		b.handleReport(ctx, session, interaction, lang, options.str("period"))
	case "language":
		b.handleLanguage(ctx, session, interaction, options.str("value"))
	default:
		b.respondEmbed(session, interaction, b.errorEmbed(lang, b.t(lang, "error_unknown")), true)
	}
}

func (b *Bot) userOption(session *discordgo.Session, options commandOptions) string {
	opt := options.get("user")
	if opt == nil {
		return ""
	}
	if user := opt.UserValue(session); user != nil {
		return user.ID
	}
	return ""
}

// canManage accepts the guild owner and members holding Manage Server or
// Administrator.
func (b *Bot) canManage(interaction *discordgo.InteractionCreate) bool {
	member := interaction.Member
	if member == nil || member.User == nil {
		return false
	}
	const required = discordgo.PermissionManageServer | discordgo.PermissionAdministrator
	if member.Permissions&required != 0 {
		return true
	}
	if ownerID, err := b.guildOwner(interaction.GuildID); err == nil && ownerID == member.User.ID {
		return true
	}
	if b.session.State == nil {
		return false
	}
	guild, err := b.session.State.Guild(interaction.GuildID)
	if err != nil {
		return false
	}
	return memberPermissions(guild, member)&required != 0
}

func memberPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil {
		return 0
	}
	perms := int64(0)
	roles := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roles[role.ID] = role
		if role.ID == guild.ID {
			perms |= role.Permissions
		}
	}
	for _, roleID := range member.Roles {
		if role := roles[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	return perms
}

func interactionUserID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func (b *Bot) configChanged(ctx context.Context, interaction *discordgo.InteractionCreate, details string) {
	b.invalidate(interaction.GuildID)
	b.audit.Log(ctx, audit.EventConfigChange, interaction.GuildID, interactionUserID(interaction), details)
}

func (b *Bot) failCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, op string, err error) {
	b.logger.Warn("automod command failed", zap.String("guild_id", interaction.GuildID), zap.String("op", op), zap.Error(err))
	b.respondEmbed(session, interaction, b.errorEmbed(lang, b.t(lang, "error_failed")), true)
}

func (b *Bot) handleStatus(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang string) {
	state := b.guildState(ctx, interaction.GuildID)
	b.respondEmbed(session, interaction, b.buildStatusEmbed(lang, automod.Resolve(state.automod, b.defaults)), true)
}

func (b *Bot) handleFeature(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, name string, enabled bool) {
	feature, err := automod.NormalizeFeature(name)
	if err != nil {
		msg := fmt.Sprintf(b.t(lang, "error_unknown_feature"), strings.Join(automod.Features, ", "))
		b.respondEmbed(session, interaction, b.errorEmbed(lang, msg), true)
		return
	}
	if err := b.store.SetFeature(ctx, interaction.GuildID, feature, enabled); err != nil {
		b.failCommand(session, interaction, lang, "set_feature", err)
		return
	}
	key := "feature_disabled"
	if enabled {
		key = "feature_enabled"
	}
	b.configChanged(ctx, interaction, fmt.Sprintf("%s enabled=%t", feature, enabled))
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "feature_title"), fmt.Sprintf(b.t(lang, key), feature), b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func (b *Bot) handleThreshold(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, name string, value float64) {
	key, value, err := automod.ValidateThreshold(name, value)
	switch {
	case errors.Is(err, automod.ErrUnknownThreshold):
		msg := fmt.Sprintf(b.t(lang, "error_unknown_name"), strings.Join(automod.ThresholdNames(), ", "))
		b.respondEmbed(session, interaction, b.errorEmbed(lang, msg), true)
		return
	case errors.Is(err, automod.ErrOutOfRange):
		bounds, _ := automod.ThresholdRange(name)
		msg := fmt.Sprintf(b.t(lang, "error_out_of_range"), name, bounds.Min, bounds.Max)
		b.respondEmbed(session, interaction, b.errorEmbed(lang, msg), true)
		return
	case err != nil:
		b.failCommand(session, interaction, lang, "validate_threshold", err)
		return
	}
	if err := b.store.SetThreshold(ctx, interaction.GuildID, key, value); err != nil {
		b.failCommand(session, interaction, lang, "set_threshold", err)
		return
	}
	b.configChanged(ctx, interaction, fmt.Sprintf("%s=%s", key, formatValue(value)))
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "threshold_title"), fmt.Sprintf(b.t(lang, "threshold_updated"), key, formatValue(value)), b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func (b *Bot) handleFilter(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, action, word string) {
	title := b.t(lang, "filter_title")
	switch action {
	case "list":
		words, err := b.store.ListFilterWords(ctx, interaction.GuildID)
		if err != nil {
			b.failCommand(session, interaction, lang, "list_words", err)
			return
		}
		b.respondEmbed(session, interaction, b.buildWordsEmbed(lang, words), true)
	case "add":
		if word == "" {
			b.respondEmbed(session, interaction, b.errorEmbed(lang, b.t(lang, "error_unknown")), true)
			return
		}
		added, err := b.store.AddFilterWord(ctx, interaction.GuildID, word)
		if err != nil {
			b.failCommand(session, interaction, lang, "add_word", err)
			return
		}
		if !added {
			b.respondEmbed(session, interaction, b.commandEmbed(title, b.t(lang, "filter_exists"), b.cfg.Notifications.EmbedColors.Warning, nil), true)
			return
		}
		b.configChanged(ctx, interaction, "filter word added")
		b.respondEmbed(session, interaction, b.commandEmbed(title, b.t(lang, "filter_added"), b.cfg.Notifications.EmbedColors.Action, nil), true)
	case "remove":
		removed, err := b.store.RemoveFilterWord(ctx, interaction.GuildID, word)
		if err != nil {
			b.failCommand(session, interaction, lang, "remove_word", err)
			return
		}
		if !removed {
			b.respondEmbed(session, interaction, b.commandEmbed(title, b.t(lang, "filter_missing"), b.cfg.Notifications.EmbedColors.Warning, nil), true)
			return
		}
		b.configChanged(ctx, interaction, "filter word removed")
		b.respondEmbed(session, interaction, b.commandEmbed(title, b.t(lang, "filter_removed"), b.cfg.Notifications.EmbedColors.Action, nil), true)
	default:
		b.respondEmbed(session, interaction, b.errorEmbed(lang, b.t(lang, "error_unknown")), true)
	}
}

func (b *Bot) handleLogChannel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, channelID string) {
	if err := b.store.SetLogChannel(ctx, interaction.GuildID, channelID); err != nil {
		b.failCommand(session, interaction, lang, "set_log_channel", err)
		return
	}
	b.configChanged(ctx, interaction, "log channel="+fallback(channelID, "none"))
	description := b.t(lang, "logchannel_cleared")
	if channelID != "" {
		description = fmt.Sprintf(b.t(lang, "logchannel_updated"), channelID)
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "logchannel_title"), description, b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func (b *Bot) handleViolations(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, userID string) {
	if userID == "" {
		b.respondEmbed(session, interaction, b.errorEmbed(lang, b.t(lang, "error_missing_user")), true)
		return
	}
	record, err := b.engine.Violations(ctx, interaction.GuildID, userID)
	if err != nil {
		b.failCommand(session, interaction, lang, "get_violations", err)
		return
	}
	history, err := b.store.ListUserViolations(ctx, interaction.GuildID, userID, 5)
	if err != nil {
		b.logger.Warn("violation history unavailable", zap.String("guild_id", interaction.GuildID), zap.Error(err))
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_user"), Value: "<@" + userID + ">", Inline: true},
		{Name: b.t(lang, "field_count"), Value: fmt.Sprintf("%d", record.Count), Inline: true},
	}
	if !record.LastAt.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   b.t(lang, "field_last"),
			Value:  fmt.Sprintf("<t:%d:R>", record.LastAt.Unix()),
			Inline: true,
		})
	}
	if len(history) > 0 {
		lines := make([]string, 0, len(history))
		for _, entry := range history {
			lines = append(lines, fmt.Sprintf("`%s` %s, %s <t:%d:R>", shortCase(entry.CaseID), b.typeLabel(lang, entry.Type), entry.Action, entry.CreatedAt.Unix()))
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_history"), Value: truncate(strings.Join(lines, "\n"), 1024)})
	}
	description := ""
	if record.Count == 0 {
		description = b.t(lang, "violations_none")
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "violations_title"), description, b.cfg.Notifications.EmbedColors.Action, fields), true)
}

func (b *Bot) handleReset(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, userID string) {
	if userID == "" {
		b.respondEmbed(session, interaction, b.errorEmbed(lang, b.t(lang, "error_missing_user")), true)
		return
	}
	if err := b.engine.Reset(ctx, interaction.GuildID, userID, interactionUserID(interaction)); err != nil {
		b.failCommand(session, interaction, lang, "reset_violations", err)
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "reset_title"), fmt.Sprintf(b.t(lang, "reset_done"), userID), b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func (b *Bot) handleReport(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, lang, period string) {
	since := time.Now().Add(-reportWindow(period))
	report, err := b.analytics.Report(ctx, interaction.GuildID, since)
	if err != nil {
		b.failCommand(session, interaction, lang, "report", err)
		return
	}
	b.respondEmbed(session, interaction, b.buildReportEmbed(lang, report), true)
}

func (b *Bot) handleLanguage(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, value string) {
	lang := normalizeLang(value)
	if err := b.store.SetLanguage(ctx, interaction.GuildID, lang); err != nil {
		b.failCommand(session, interaction, lang, "set_language", err)
		return
	}
	b.configChanged(ctx, interaction, "language="+lang)
	b.respondEmbed(session, interaction, b.commandEmbed(b.t(lang, "language_title"), b.t(lang, "language_updated"), b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func reportWindow(period string) time.Duration {
	if period == "week" {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

func shortCase(caseID string) string {
	if len(caseID) > 8 {
		return caseID[:8]
	}
	return caseID
}
