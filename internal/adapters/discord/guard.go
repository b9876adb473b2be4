package discord

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const guardNoticeTTL = 10 * time.Second

// violatesVerifyChannel reports chatter that is not a verification command.
func violatesVerifyChannel(content string) bool {
	content = strings.TrimSpace(content)
	return !strings.HasPrefix(content, "/verify") && !strings.HasPrefix(content, "/confirmverify")
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if b.cfg.VerifyChannelID == "" || m.ChannelID != b.cfg.VerifyChannelID {
		return
	}
	if !violatesVerifyChannel(m.Content) {
		return
	}
	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		b.logger.Warn("verify channel message not removed",
			"module", "discord.guard",
			"layer", "adapter",
			"operation", "delete_message",
			"outcome", "failure",
			"channel_id", m.ChannelID,
			"error", mapRESTError("delete message", err),
		)
		return
	}
	dm, err := s.UserChannelCreate(m.Author.ID)
	if err != nil {
		return
	}
	notice, err := s.ChannelMessageSend(dm.ID, "⚠️ Please only use `/verify` or `/confirmverify` in #"+b.cfg.VerifyChannelName+".")
	if err != nil {
		return
	}
	time.AfterFunc(guardNoticeTTL, func() {
		_ = s.ChannelMessageDelete(dm.ID, notice.ID)
	})
}
