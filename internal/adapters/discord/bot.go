package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/viralforge/campaign-bot/internal/application"
)

type Config struct {
	Token             string
	GuildIDs          []string
	VerifyChannelID   string
	VerifyChannelName string
	AdminRole         string
	TeamRole          string
	CommandTimeout    time.Duration
}

type Bot struct {
	session   *discordgo.Session
	community *Community
	service   *application.Service
	cfg       Config
	logger    *slog.Logger
	baseCtx   context.Context
}

func NewSession(token string) (*discordgo.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("discord bot token is empty")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	return s, nil
}

func NewBot(logger *slog.Logger, session *discordgo.Session, community *Community, service *application.Service, cfg Config) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.VerifyChannelName == "" {
		cfg.VerifyChannelName = "get-verified"
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 30 * time.Second
	}
	return &Bot{session: session, community: community, service: service, cfg: cfg, logger: logger, baseCtx: context.Background()}
}

// Open connects to the gateway and registers the slash commands.
func (b *Bot) Open(ctx context.Context) error {
	b.baseCtx = ctx
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(b.onMessage)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	appID := b.session.State.User.ID
	guilds := b.cfg.GuildIDs
	if len(guilds) == 0 {
		guilds = []string{""}
	}
	for _, guildID := range guilds {
		if _, err := b.session.ApplicationCommandBulkOverwrite(appID, guildID, commandDefinitions()); err != nil {
			return fmt.Errorf("register commands for guild %q: %w", guildID, err)
		}
	}
	b.logger.InfoContext(ctx, "discord bot connected",
		"module", "discord.bot",
		"layer", "adapter",
		"operation", "open",
		"outcome", "success",
		"user", b.session.State.User.Username,
		"command_scopes", len(guilds),
	)
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		b.logFailure("defer_interaction", data.Name, err)
		return
	}

	ctx, cancel := context.WithTimeout(b.baseCtx, b.cfg.CommandTimeout)
	defer cancel()

	var out reply
	if i.GuildID == "" {
		out = reply{private: "❌ This command can only be used in a server."}
	} else {
		out = b.execute(ctx, b.actorFrom(s, i), data.Name, optionMap(data.Options))
	}

	chunks := splitMessage(out.private, messageLimit)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &chunks[0]}); err != nil {
		b.logFailure("edit_response", data.Name, err)
	}
	for _, chunk := range chunks[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: chunk, Flags: discordgo.MessageFlagsEphemeral}); err != nil {
			b.logFailure("followup", data.Name, err)
			break
		}
	}
	if out.public != "" {
		if _, err := s.ChannelMessageSend(i.ChannelID, out.public); err != nil {
			b.logFailure("announce", data.Name, err)
		}
	}
}

func (b *Bot) actorFrom(s *discordgo.Session, i *discordgo.InteractionCreate) application.Actor {
	actor := application.Actor{GuildID: i.GuildID, RequestID: i.ID}
	user := i.User
	var roleIDs []string
	var perms int64
	if i.Member != nil {
		user = i.Member.User
		roleIDs = i.Member.Roles
		perms = i.Member.Permissions
	}
	if user != nil {
		actor.UserID = user.ID
		actor.Username = user.Username
		actor.Mention = user.Mention()
	}
	if g, err := s.State.Guild(i.GuildID); err == nil {
		actor.GuildName = g.Name
	} else if g, err := s.Guild(i.GuildID); err == nil {
		actor.GuildName = g.Name
	}

	var names map[string]string
	if b.community != nil && len(roleIDs) > 0 {
		if n, err := b.community.roleNames(i.GuildID); err == nil {
			names = n
		}
	}
	actor.IsAdmin, actor.IsTeam = classifyMember(perms, roleIDs, names, b.cfg.AdminRole, b.cfg.TeamRole)
	return actor
}

// classifyMember treats the Administrator permission or the admin role as
// admin, and the team role as reviewer.
func classifyMember(perms int64, roleIDs []string, roleNames map[string]string, adminRole, teamRole string) (isAdmin, isTeam bool) {
	isAdmin = perms&discordgo.PermissionAdministrator != 0
	for _, id := range roleIDs {
		name := strings.TrimSpace(roleNames[id])
		if name == "" {
			continue
		}
		if adminRole != "" && strings.EqualFold(name, adminRole) {
			isAdmin = true
		}
		if teamRole != "" && strings.EqualFold(name, teamRole) {
			isTeam = true
		}
	}
	return isAdmin, isTeam
}

func (b *Bot) logFailure(operation, command string, err error) {
	b.logger.Error("discord interaction failed",
		"module", "discord.bot",
		"layer", "adapter",
		"operation", operation,
		"outcome", "failure",
		"command", command,
		"error", err,
	)
}
