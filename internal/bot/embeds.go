package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"luna-guard/internal/analytics"
	"luna-guard/internal/automod"
	"luna-guard/internal/escalation"
	"luna-guard/internal/modules/audit"
	"luna-guard/internal/storage"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) embedFooter(lang string) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: b.t(lang, "footer_brand")}
}

func (b *Bot) typeLabel(lang, violationType string) string {
	label := b.t(lang, "type_"+violationType)
	if label == "type_"+violationType {
		return violationType
	}
	return label
}

func (b *Bot) actionLabel(lang string, tier escalation.Tier) string {
	switch tier.Action {
	case escalation.ActionWarn:
		return b.t(lang, "action_warn")
	case escalation.ActionTimeout:
		return fmt.Sprintf(b.t(lang, "action_timeout"), strings.TrimPrefix(tier.Label(), "timeout "))
	case escalation.ActionMute:
		return b.t(lang, "action_mute")
	case escalation.ActionKick:
		return b.t(lang, "action_kick")
	default:
		return string(tier.Action)
	}
}

func (b *Bot) actionColor(tier escalation.Tier) int {
	if tier.Action == escalation.ActionWarn {
		return b.cfg.Notifications.EmbedColors.Action
	}
	return b.cfg.Notifications.EmbedColors.Warning
}

// buildNoticeEmbed is the public notice. It always shows the intended action.
func (b *Bot) buildNoticeEmbed(lang string, notice escalation.Notice) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       b.t(lang, "notice_title"),
		Description: fmt.Sprintf(b.t(lang, "notice_desc"), notice.UserID),
		Color:       b.actionColor(notice.Tier),
		Footer:      &discordgo.MessageEmbedFooter{Text: b.t(lang, "footer_brand") + " | " + b.t(lang, "field_case") + " " + shortCase(notice.CaseID)},
		Timestamp:   notice.At.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: b.t(lang, "field_type"), Value: b.typeLabel(lang, notice.ViolationType), Inline: true},
			{Name: b.t(lang, "field_action"), Value: b.actionLabel(lang, notice.Tier), Inline: true},
			{Name: b.t(lang, "field_count"), Value: strconv.Itoa(notice.Count), Inline: true},
			{Name: b.t(lang, "field_reason"), Value: fallback(notice.Description, "-"), Inline: false},
		},
	}
}

func (b *Bot) buildLogEmbed(lang string, notice escalation.Notice) *discordgo.MessageEmbed {
	user := "<@" + notice.UserID + ">"
	if notice.UserName != "" {
		user += " (" + notice.UserName + ")"
	}
	return &discordgo.MessageEmbed{
		Title:     b.t(lang, "log_title"),
		Color:     b.actionColor(notice.Tier),
		Footer:    &discordgo.MessageEmbedFooter{Text: b.t(lang, "field_case") + " " + notice.CaseID},
		Timestamp: notice.At.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: b.t(lang, "field_user"), Value: user, Inline: true},
			{Name: b.t(lang, "field_type"), Value: b.typeLabel(lang, notice.ViolationType), Inline: true},
			{Name: b.t(lang, "field_action"), Value: b.actionLabel(lang, notice.Tier), Inline: true},
			{Name: b.t(lang, "field_count"), Value: strconv.Itoa(notice.Count), Inline: true},
			{Name: b.t(lang, "field_reason"), Value: fallback(notice.Description, "-"), Inline: false},
		},
	}
}

func (b *Bot) buildAuditEmbed(lang string, entry storage.AuditLog) *discordgo.MessageEmbed {
	userValue := "<@" + entry.UserID + ">"
	if entry.UserID == "" {
		userValue = b.t(lang, "value_system")
	}
	color := b.cfg.Notifications.EmbedColors.Action
	if entry.Level != audit.LevelInfo {
		color = b.cfg.Notifications.EmbedColors.Error
	}
	return &discordgo.MessageEmbed{
		Title:     b.t(lang, "audit_title"),
		Color:     color,
		Footer:    b.embedFooter(lang),
		Timestamp: entry.CreatedAt.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: b.t(lang, "field_event"), Value: b.auditEventLabel(lang, entry.Event), Inline: true},
			{Name: b.t(lang, "field_level"), Value: entry.Level, Inline: true},
			{Name: b.t(lang, "field_user"), Value: userValue, Inline: true},
			{Name: b.t(lang, "field_details"), Value: truncate(fallback(entry.Details, "-"), 1024), Inline: false},
		},
	}
}

func (b *Bot) auditEventLabel(lang, event string) string {
	switch audit.Event(event) {
	case audit.EventActionFailed:
		return b.t(lang, "event_action_failed")
	case audit.EventConfigChange:
		return b.t(lang, "event_config_change")
	case audit.EventCountReset:
		return b.t(lang, "event_reset")
	default:
		return event
	}
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func (b *Bot) errorEmbed(lang, description string) *discordgo.MessageEmbed {
	return b.commandEmbed(b.t(lang, "error_title"), description, b.cfg.Notifications.EmbedColors.Error, nil)
}

func (b *Bot) buildStatusEmbed(lang string, cfg automod.Resolved) *discordgo.MessageEmbed {
	var features []string
	for _, feature := range automod.Features {
		state := b.t(lang, "value_off")
		if cfg.Enabled(feature) {
			state = b.t(lang, "value_on")
		}
		features = append(features, fmt.Sprintf("`%s` %s", feature, state))
	}
	var thresholds []string
	for _, name := range automod.ThresholdNames() {
		thresholds = append(thresholds, fmt.Sprintf("`%s` %s", name, formatValue(cfg.Threshold(name))))
	}
	channel := b.t(lang, "value_not_set")
	if cfg.LogChannelID() != "" {
		channel = "<#" + cfg.LogChannelID() + ">"
	}
	return b.commandEmbed(b.t(lang, "status_title"), "", b.cfg.Notifications.EmbedColors.Action, []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_features"), Value: strings.Join(features, "\n"), Inline: true},
		{Name: b.t(lang, "field_thresholds"), Value: strings.Join(thresholds, "\n"), Inline: true},
		{Name: b.t(lang, "field_channel"), Value: channel, Inline: false},
		{Name: b.t(lang, "field_words"), Value: strconv.Itoa(len(cfg.Words())), Inline: true},
	})
}

func (b *Bot) buildReportEmbed(lang string, report analytics.Report) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: b.t(lang, "field_total"), Value: strconv.Itoa(report.Total), Inline: true},
		{Name: b.t(lang, "field_users"), Value: strconv.Itoa(report.Users), Inline: true},
	}
	if report.Top.UserID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   b.t(lang, "field_top"),
			Value:  fmt.Sprintf("<@%s> (%d)", report.Top.UserID, report.Top.Count),
			Inline: true,
		})
	}
	if len(report.ByType) > 0 {
		var lines []string
		for _, key := range analytics.Keys(report.ByType) {
			lines = append(lines, fmt.Sprintf("%s: %d", b.typeLabel(lang, key), report.ByType[key]))
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_by_type"), Value: strings.Join(lines, "\n")})
	}
	if len(report.ByAction) > 0 {
		var lines []string
		for _, key := range analytics.Keys(report.ByAction) {
			lines = append(lines, fmt.Sprintf("%s: %d", key, report.ByAction[key]))
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: b.t(lang, "field_by_action"), Value: strings.Join(lines, "\n")})
	}
	description := fmt.Sprintf(b.t(lang, "report_desc"), report.Since.Format("2006-01-02 15:04"))
	return b.commandEmbed(b.t(lang, "report_title"), description, b.cfg.Notifications.EmbedColors.Action, fields)
}

func (b *Bot) buildWordsEmbed(lang string, words []string) *discordgo.MessageEmbed {
	if len(words) == 0 {
		return b.commandEmbed(b.t(lang, "filter_title"), b.t(lang, "filter_empty"), b.cfg.Notifications.EmbedColors.Action, nil)
	}
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	return b.commandEmbed(b.t(lang, "filter_title"), "||"+truncate(strings.Join(sorted, ", "), 3990)+"||", b.cfg.Notifications.EmbedColors.Action, nil)
}

func formatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}
