package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/viralforge/campaign-bot/internal/domain"
	"github.com/viralforge/campaign-bot/internal/ports"
)

const (
	messageLimit     = 2000
	bulkDeleteLimit  = 100
	bulkDeleteMaxAge = 14 * 24 * time.Hour
	maxPurgeRounds   = 50
)

const ticketPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

// Community implements ports.Community on a live gateway session.
type Community struct {
	session *discordgo.Session
	logger  *slog.Logger
	nowFn   func() time.Time
}

var _ ports.Community = (*Community)(nil)

func NewCommunity(session *discordgo.Session, logger *slog.Logger) *Community {
	if logger == nil {
		logger = slog.Default()
	}
	return &Community{session: session, logger: logger, nowFn: time.Now}
}

func (c *Community) GrantRole(ctx context.Context, guildID, userID, roleName string) error {
	roleID, err := c.LookupRole(ctx, guildID, roleName)
	if err != nil {
		return err
	}
	return mapRESTError("grant role", c.session.GuildMemberRoleAdd(guildID, userID, roleID))
}

func (c *Community) LookupRole(_ context.Context, guildID, roleName string) (string, error) {
	roles, err := c.guildRoles(guildID)
	if err != nil {
		return "", err
	}
	if id, ok := findRoleID(roles, roleName); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: role %q", domain.ErrNotFound, roleName)
}

func (c *Community) FindChannelByName(_ context.Context, guildID, name string) (string, bool, error) {
	channels, err := c.session.GuildChannels(guildID)
	if err != nil {
		return "", false, mapRESTError("list channels", err)
	}
	for _, ch := range channels {
		if strings.EqualFold(ch.Name, name) {
			return ch.ID, true, nil
		}
	}
	return "", false, nil
}

func (c *Community) CreateRestrictedChannel(_ context.Context, guildID, name string, grants []ports.AccessGrant) (string, error) {
	ch, err := c.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: buildOverwrites(guildID, grants),
	})
	if err != nil {
		return "", mapRESTError("create channel", err)
	}
	return ch.ID, nil
}

// PurgeChannel deletes every message, bulk-deleting what the API allows.
func (c *Community) PurgeChannel(_ context.Context, channelID string) error {
	for round := 0; round < maxPurgeRounds; round++ {
		msgs, err := c.session.ChannelMessages(channelID, bulkDeleteLimit, "", "", "")
		if err != nil {
			return mapRESTError("list messages", err)
		}
		if len(msgs) == 0 {
			return nil
		}
		bulk, single := partitionForDelete(msgs, c.nowFn())
		for _, batch := range bulk {
			if err := c.session.ChannelMessagesBulkDelete(channelID, batch); err != nil {
				return mapRESTError("bulk delete", err)
			}
		}
		for _, id := range single {
			if err := c.session.ChannelMessageDelete(channelID, id); err != nil {
				return mapRESTError("delete message", err)
			}
		}
	}
	c.logger.Warn("purge stopped before channel was empty",
		"module", "discord.community",
		"layer", "adapter",
		"operation", "purge_channel",
		"outcome", "partial",
		"channel_id", channelID,
	)
	return nil
}

func (c *Community) PostMessage(_ context.Context, channelID, content string) error {
	for _, chunk := range splitMessage(content, messageLimit) {
		if _, err := c.session.ChannelMessageSend(channelID, chunk); err != nil {
			return mapRESTError("send message", err)
		}
	}
	return nil
}

// roleNames maps role ids to names for a guild.
func (c *Community) roleNames(guildID string) (map[string]string, error) {
	roles, err := c.guildRoles(guildID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(roles))
	for _, r := range roles {
		out[r.ID] = r.Name
	}
	return out, nil
}

func (c *Community) guildRoles(guildID string) ([]*discordgo.Role, error) {
	if c.session.State != nil {
		if g, err := c.session.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
			return g.Roles, nil
		}
	}
	roles, err := c.session.GuildRoles(guildID)
	if err != nil {
		return nil, mapRESTError("list roles", err)
	}
	return roles, nil
}

func findRoleID(roles []*discordgo.Role, name string) (string, bool) {
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r.Name), strings.TrimSpace(name)) {
			return r.ID, true
		}
	}
	return "", false
}

// buildOverwrites hides the channel from @everyone (whose role id equals the
// guild id) and opens it to each grant.
func buildOverwrites(guildID string, grants []ports.AccessGrant) []*discordgo.PermissionOverwrite {
	out := []*discordgo.PermissionOverwrite{{
		ID:   guildID,
		Type: discordgo.PermissionOverwriteTypeRole,
		Deny: discordgo.PermissionViewChannel,
	}}
	for _, g := range grants {
		switch {
		case g.UserID != "":
			out = append(out, &discordgo.PermissionOverwrite{ID: g.UserID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketPermissions})
		case g.RoleID != "":
			out = append(out, &discordgo.PermissionOverwrite{ID: g.RoleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: ticketPermissions})
		}
	}
	return out
}

// partitionForDelete splits messages into bulk-deletable batches and ones
// that must go one at a time (too old, or a lone message).
func partitionForDelete(msgs []*discordgo.Message, now time.Time) (bulk [][]string, single []string) {
	recent := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if now.Sub(m.Timestamp) < bulkDeleteMaxAge-time.Minute {
			recent = append(recent, m.ID)
		} else {
			single = append(single, m.ID)
		}
	}
	for len(recent) >= 2 {
		n := len(recent)
		if n > bulkDeleteLimit {
			n = bulkDeleteLimit
		}
		bulk = append(bulk, recent[:n])
		recent = recent[n:]
	}
	return bulk, append(single, recent...)
}

// splitMessage breaks content on line boundaries to fit Discord's limit.
func splitMessage(content string, limit int) []string {
	if len([]rune(content)) <= limit {
		return []string{content}
	}
	var out []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, line := range strings.SplitAfter(content, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			out = append(out, string(runes[:limit]))
			runes = runes[limit:]
		}
		if curLen+len(runes) > limit {
			flush()
		}
		cur.WriteString(string(runes))
		curLen += len(runes)
	}
	flush()
	return out
}
