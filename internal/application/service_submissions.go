package application

import (
	"context"
	"errors"
	"sort"

	"github.com/viralforge/campaign-bot/internal/contracts"
	"github.com/viralforge/campaign-bot/internal/domain"
)

func (s *Service) SubmitVideo(ctx context.Context, actor Actor, platform, videoURL string) (domain.VideoSubmission, error) {
	if err := requireUser(actor); err != nil {
		return domain.VideoSubmission{}, err
	}
	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return domain.VideoSubmission{}, err
	}
	if _, err := s.platformClient(p); err != nil {
		return domain.VideoSubmission{}, err
	}
	videoURL, err = domain.ValidateVideoURL(videoURL)
	if err != nil {
		return domain.VideoSubmission{}, err
	}

	unlock := s.locks.Lock(actor.UserID)
	defer unlock()

	views := s.fetchViews(ctx, p, videoURL)
	campaign := s.campaignFor(actor)
	now := s.nowFn()
	row := domain.VideoSubmission{
		UserID:       actor.UserID,
		Username:     actor.Username,
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		Platform:     p,
		VideoURL:     videoURL,
		SubmittedAt:  now,
		InitialViews: views,
		LatestViews:  views,
		RefreshedAt:  now,
	}
	if err := s.submissions.Put(ctx, row); err != nil {
		return domain.VideoSubmission{}, err
	}
	s.emit(ctx, domain.EventSubmissionRecorded, actor.RequestID, contracts.SubmissionRecordedPayload{
		UserID:       row.UserID,
		CampaignID:   row.CampaignID,
		Platform:     string(row.Platform),
		VideoURL:     row.VideoURL,
		InitialViews: row.InitialViews,
		SubmittedAt:  formatTime(row.SubmittedAt),
	}, row.UserID)
	return row, nil
}

func (s *Service) RefreshViews(ctx context.Context, actor Actor) (domain.VideoSubmission, error) {
	if err := requireUser(actor); err != nil {
		return domain.VideoSubmission{}, err
	}

	unlock := s.locks.Lock(actor.UserID)
	defer unlock()

	row, err := s.submissions.Get(ctx, actor.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.VideoSubmission{}, domain.ErrNoSubmission
	}
	if err != nil {
		return domain.VideoSubmission{}, err
	}
	if err := s.allow(ctx, "checkviews", actor.UserID); err != nil {
		return domain.VideoSubmission{}, err
	}
	row.LatestViews = s.fetchViews(ctx, row.Platform, row.VideoURL)
	row.RefreshedAt = s.nowFn()
	if err := s.submissions.Put(ctx, row); err != nil {
		return domain.VideoSubmission{}, err
	}
	s.emit(ctx, domain.EventSubmissionViewsRefresh, actor.RequestID, contracts.SubmissionViewsRefreshedPayload{
		UserID:      row.UserID,
		CampaignID:  row.CampaignID,
		LatestViews: row.LatestViews,
		RefreshedAt: formatTime(row.RefreshedAt),
	}, row.UserID)
	return row, nil
}

func (s *Service) ListByCampaign(ctx context.Context, campaignID string) ([]domain.VideoSubmission, error) {
	return s.submissions.ListByCampaign(ctx, campaignID)
}

// AllSubmissions groups every tracked video by campaign for reviewers.
func (s *Service) AllSubmissions(ctx context.Context, actor Actor) ([]CampaignSubmissions, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !actor.IsTeam {
		return nil, domain.ErrForbidden
	}
	rows, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byCampaign := map[string]*CampaignSubmissions{}
	for _, row := range rows {
		group, ok := byCampaign[row.CampaignID]
		if !ok {
			group = &CampaignSubmissions{CampaignID: row.CampaignID, CampaignName: s.campaignName(row.CampaignID, row.CampaignName)}
			byCampaign[row.CampaignID] = group
		}
		group.Submissions = append(group.Submissions, row)
	}
	out := make([]CampaignSubmissions, 0, len(byCampaign))
	for _, group := range byCampaign {
		sort.SliceStable(group.Submissions, func(i, j int) bool {
			return group.Submissions[i].SubmittedAt.Before(group.Submissions[j].SubmittedAt)
		})
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CampaignName != out[j].CampaignName {
			return out[i].CampaignName < out[j].CampaignName
		}
		return out[i].CampaignID < out[j].CampaignID
	})
	return out, nil
}
