package bot

import (
	"context"
	"strings"
	"time"

	"luna-guard/internal/escalation"

	"github.com/bwmarrin/discordgo"
)

// enforcer applies escalation decisions through the Discord session.
type enforcer struct {
	bot *Bot
}

func (e *enforcer) GuildOwner(ctx context.Context, guildID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.bot.guildOwner(guildID)
}

func (e *enforcer) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.bot.session.ChannelMessageDelete(channelID, messageID)
}

func (e *enforcer) TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.bot.session.GuildMemberTimeout(guildID, userID, &until)
}

func (e *enforcer) FindRole(ctx context.Context, guildID, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var roles []*discordgo.Role
	if guild, err := e.bot.session.State.Guild(guildID); err == nil && guild != nil {
		roles = guild.Roles
	}
	if len(roles) == 0 {
		fetched, err := e.bot.session.GuildRoles(guildID)
		if err != nil {
			return "", false, err
		}
		roles = fetched
	}
	for _, role := range roles {
		if role != nil && strings.EqualFold(role.Name, name) {
			return role.ID, true, nil
		}
	}
	return "", false, nil
}

func (e *enforcer) AddRole(ctx context.Context, guildID, userID, roleID, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.bot.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (e *enforcer) KickMember(ctx context.Context, guildID, userID, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.bot.session.GuildMemberDeleteWithReason(guildID, userID, reason)
}

// SendNotice posts the public notice. Only warnings can be muted by config or
// dropped by the channel budget.
func (e *enforcer) SendNotice(ctx context.Context, channelID string, notice escalation.Notice) error {
	if !e.bot.noticeAllowed(channelID, notice.Tier) {
		return nil
	}
	lang := e.bot.language(ctx, notice.GuildID)
	_, err := e.bot.session.ChannelMessageSendEmbed(channelID, e.bot.buildNoticeEmbed(lang, notice))
	return err
}

func (e *enforcer) SendLog(ctx context.Context, channelID string, notice escalation.Notice) error {
	lang := e.bot.language(ctx, notice.GuildID)
	_, err := e.bot.session.ChannelMessageSendEmbed(channelID, e.bot.buildLogEmbed(lang, notice))
	return err
}
