package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/viralforge/campaign-bot/internal/contracts"
	"github.com/viralforge/campaign-bot/internal/domain"
)

const globalCampaignKey = "global"

// publishGuard lets the timer and a manual trigger share one publish run.
type publishGuard struct {
	group singleflight.Group
}

func (s *Service) PublishLeaderboards(ctx context.Context) (PublishReport, error) {
	v, err, _ := s.publisher.group.Do("leaderboards", func() (any, error) {
		return s.publishOnce(ctx)
	})
	if err != nil {
		return PublishReport{}, err
	}
	return v.(PublishReport), nil
}

func (s *Service) ForceUpdate(ctx context.Context, actor Actor) (PublishReport, error) {
	if err := requireUser(actor); err != nil {
		return PublishReport{}, err
	}
	if !actor.IsAdmin {
		return PublishReport{}, domain.ErrForbidden
	}
	return s.PublishLeaderboards(ctx)
}

func (s *Service) Leaderboard(ctx context.Context, campaignID string) ([]domain.LeaderboardEntry, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, fmt.Errorf("%w: campaign id is required", domain.ErrInvalidInput)
	}
	rows, err := s.submissions.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if _, ok := s.campaigns[campaignID]; !ok {
			return nil, domain.ErrNotFound
		}
	}
	return s.rank(rows), nil
}

func (s *Service) GlobalLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	rows, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.rank(rows), nil
}

func (s *Service) rank(rows []domain.VideoSubmission) []domain.LeaderboardEntry {
	entries := domain.RankSubmissions(rows, s.cfg.LeaderboardSize)
	for i := range entries {
		entries[i].CampaignName = s.campaignName(entries[i].CampaignID, entries[i].CampaignName)
	}
	return entries
}

func (s *Service) publishOnce(ctx context.Context) (PublishReport, error) {
	report := PublishReport{Failures: map[string]string{}}
	if s.community == nil {
		return report, fmt.Errorf("%w: community collaborator not configured", domain.ErrInvalidInput)
	}
	for _, campaign := range s.cfg.Campaigns {
		if strings.TrimSpace(campaign.LeaderboardChannelID) == "" {
			continue
		}
		rows, err := s.submissions.ListByCampaign(ctx, campaign.ID)
		if err != nil {
			s.recordPublishFailure(ctx, &report, campaign.ID, campaign.LeaderboardChannelID, "list_submissions", err)
			continue
		}
		entries := s.rank(rows)
		name := campaign.Name
		if name == "" && len(rows) > 0 {
			name = rows[0].CampaignName
		}
		s.publishChannel(ctx, &report, campaign.ID, campaign.LeaderboardChannelID, entries, domain.FormatCampaignLeaderboard(name, entries))
	}

	if channelID := strings.TrimSpace(s.cfg.GlobalLeaderboardChannelID); channelID != "" {
		entries, err := s.GlobalLeaderboard(ctx)
		if err != nil {
			s.recordPublishFailure(ctx, &report, globalCampaignKey, channelID, "list_submissions", err)
		} else {
			s.publishChannel(ctx, &report, globalCampaignKey, channelID, entries, domain.FormatGlobalLeaderboard(entries))
		}
	}

	slog.Default().InfoContext(ctx, "leaderboards published",
		"module", "application",
		"layer", "application",
		"operation", "publish_leaderboards",
		"outcome", publishOutcome(report),
		"posted", len(report.Posted),
		"skipped", len(report.Skipped),
		"failed", len(report.Failures),
	)
	return report, nil
}

// publishChannel purges then posts. A purge failure still attempts the post;
// an empty board is purged but not posted.
func (s *Service) publishChannel(ctx context.Context, report *PublishReport, campaignID, channelID string, entries []domain.LeaderboardEntry, content string) {
	if err := s.community.PurgeChannel(ctx, channelID); err != nil {
		s.recordPublishFailure(ctx, report, campaignID, channelID, "purge_channel", err)
	}
	if len(entries) == 0 {
		report.Skipped = append(report.Skipped, campaignID)
		return
	}
	if err := s.community.PostMessage(ctx, channelID, content); err != nil {
		s.recordPublishFailure(ctx, report, campaignID, channelID, "post_message", err)
		return
	}
	report.Posted = append(report.Posted, channelID)
	s.emit(ctx, domain.EventLeaderboardPublished, "", contracts.LeaderboardPublishedPayload{
		CampaignID:  campaignID,
		ChannelID:   channelID,
		Entries:     len(entries),
		PublishedAt: formatTime(s.nowFn()),
	}, campaignID)
}

func (s *Service) recordPublishFailure(ctx context.Context, report *PublishReport, campaignID, channelID, operation string, err error) {
	if prev, ok := report.Failures[channelID]; ok {
		report.Failures[channelID] = prev + "; " + operation + ": " + err.Error()
	} else {
		report.Failures[channelID] = operation + ": " + err.Error()
	}
	slog.Default().ErrorContext(ctx, "leaderboard channel update failed",
		"module", "application",
		"layer", "application",
		"operation", operation,
		"outcome", "failure",
		"campaign_id", campaignID,
		"channel_id", channelID,
		"error", err,
	)
}

func publishOutcome(r PublishReport) string {
	if len(r.Failures) > 0 {
		return "partial"
	}
	return "success"
}
