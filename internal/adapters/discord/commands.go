package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/viralforge/campaign-bot/internal/application"
	"github.com/viralforge/campaign-bot/internal/domain"
)

const (
	cmdVerify         = "verify"
	cmdConfirmVerify  = "confirmverify"
	cmdSubmitVideo    = "submitvideo"
	cmdCheckViews     = "checkviews"
	cmdAllSubmissions = "allsubmissions"
	cmdForceUpdate    = "forceupdate"
	cmdRequestPayout  = "requestpayout"
)

func platformOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "platform",
		Description: "tiktok or youtube",
		Required:    true,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "TikTok", Value: string(domain.PlatformTikTok)},
			{Name: "YouTube", Value: string(domain.PlatformYouTube)},
		},
	}
}

func stringOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: cmdVerify, Description: "Start verifying your TikTok or YouTube account.", Options: []*discordgo.ApplicationCommandOption{platformOption(), stringOption("username", "Your account username")}},
		{Name: cmdConfirmVerify, Description: "Confirm verification once the code is in your bio.", Options: []*discordgo.ApplicationCommandOption{platformOption(), stringOption("username", "Your account username")}},
		{Name: cmdSubmitVideo, Description: "Submit a video for view tracking in this campaign.", Options: []*discordgo.ApplicationCommandOption{platformOption(), stringOption("video_url", "Link to the video")}},
		{Name: cmdCheckViews, Description: "Check the current views of your submitted video."},
		{Name: cmdAllSubmissions, Description: "View all submitted videos across campaigns (admin & server team only)."},
		{Name: cmdForceUpdate, Description: "Manually update the leaderboards (admin only)."},
		{Name: cmdRequestPayout, Description: "Request a payout for your tracked video."},
	}
}

// reply carries the ephemeral answer and an optional public announcement.
type reply struct {
	private string
	public  string
}

func (b *Bot) execute(ctx context.Context, actor application.Actor, command string, opts map[string]string) reply {
	switch command {
	case cmdVerify:
		req, err := b.service.BeginVerification(ctx, actor, opts["platform"], opts["username"])
		if err != nil {
			return reply{private: replyForError(command, err)}
		}
		return reply{private: fmt.Sprintf(
			"🔍 %s, to verify your %s account:\n1️⃣ Add the code `%s` to your **bio** or latest post.\n2️⃣ Reply here when done with `/confirmverify %s %s`.",
			actor.Mention, req.Platform.Label(), req.Code, req.Platform, req.Username,
		)}
	case cmdConfirmVerify:
		res, err := b.service.ConfirmVerification(ctx, actor, opts["platform"], opts["username"])
		if err != nil {
			return reply{private: replyForError(command, err)}
		}
		if !res.RoleGranted {
			return reply{private: fmt.Sprintf("⚠️ Your account is verified, but the '%s' role could not be assigned. Please ask an admin to check the role exists.", b.service.Config().VerifiedRole)}
		}
		return reply{private: "✅ Verification complete!", public: fmt.Sprintf("✅ %s is now **Verified**!", actor.Mention)}
	case cmdSubmitVideo:
		row, err := b.service.SubmitVideo(ctx, actor, opts["platform"], opts["video_url"])
		if err != nil {
			return reply{private: replyForError(command, err)}
		}
		return reply{private: fmt.Sprintf("✅ %s, your video has been submitted for tracking in **%s**!\n📊 Initial Views: **%d**", actor.Mention, row.CampaignName, row.InitialViews)}
	case cmdCheckViews:
		row, err := b.service.RefreshViews(ctx, actor)
		if err != nil {
			return reply{private: replyForError(command, err)}
		}
		return reply{private: fmt.Sprintf("📊 Your video has **%d** views on %s!\n🔗 [View Video](%s)", row.LatestViews, row.Platform.Label(), row.VideoURL)}
	case cmdAllSubmissions:
		groups, err := b.service.AllSubmissions(ctx, actor)
		if err != nil {
			return reply{private: replyForError(command, err)}
		}
		return reply{private: formatAllSubmissions(groups)}
	case cmdForceUpdate:
		report, err := b.service.ForceUpdate(ctx, actor)
		if err != nil {
			return reply{private: replyForError(command, err)}
		}
		if len(report.Failures) > 0 {
			return reply{private: fmt.Sprintf("⚠️ Leaderboards updated, but %d channel(s) failed. Check the bot logs.", len(report.Failures))}
		}
		return reply{private: "✅ Leaderboards updated!"}
	case cmdRequestPayout:
		ticket, err := b.service.RequestPayout(ctx, actor)
		if err != nil {
			return reply{private: replyForError(command, err)}
		}
		return reply{private: fmt.Sprintf("✅ Your payout request has been opened in <#%s>!", ticket.ChannelID)}
	default:
		return reply{private: "❌ Unknown command."}
	}
}

func formatAllSubmissions(groups []application.CampaignSubmissions) string {
	if len(groups) == 0 {
		return "❌ No video submissions found."
	}
	var b strings.Builder
	b.WriteString("**📊 All Submitted Videos by Campaign:**\n\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "**🎯 %s:**\n", g.CampaignName)
		for _, s := range g.Submissions {
			fmt.Fprintf(&b, "- 🔗 [%s](%s) on **%s**\n", s.VideoURL, s.VideoURL, s.Platform.Label())
		}
		b.WriteString("\n")
	}
	return b.String()
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	out := make(map[string]string, len(opts))
	for _, o := range opts {
		if o == nil || o.Value == nil {
			continue
		}
		out[o.Name] = fmt.Sprint(o.Value)
	}
	return out
}
