package automod

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Message is the platform-independent view of an incoming guild message.
type Message struct {
	ID           string
	GuildID      string
	ChannelID    string
	AuthorID     string
	AuthorName   string
	AuthorBot    bool
	Content      string
	Attachments  int
	Mentions     []string
	RoleMentions []string
	Timestamp    time.Time
}

func FromDiscord(msg *discordgo.Message) Message {
	out := Message{
		ID:           msg.ID,
		GuildID:      msg.GuildID,
		ChannelID:    msg.ChannelID,
		Content:      msg.Content,
		Attachments:  len(msg.Attachments),
		RoleMentions: msg.MentionRoles,
		Timestamp:    msg.Timestamp,
	}
	if msg.Author != nil {
		out.AuthorID = msg.Author.ID
		out.AuthorName = msg.Author.Username
		out.AuthorBot = msg.Author.Bot
	}
	for _, user := range msg.Mentions {
		if user != nil {
			out.Mentions = append(out.Mentions, user.ID)
		}
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}
	return out
}
