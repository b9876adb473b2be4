package domain

import (
	"fmt"
	"sort"
	"strings"
)

const DefaultLeaderboardSize = 10

type Campaign struct {
	ID                   string
	Name                 string
	LeaderboardChannelID string
}

type LeaderboardEntry struct {
	Rank         int
	UserID       string
	Username     string
	CampaignID   string
	CampaignName string
	Platform     Platform
	VideoURL     string
	Views        int64
}

// RankSubmissions orders by latest views desc, then earliest submission,
// then user id, and keeps the first limit entries.
func RankSubmissions(rows []VideoSubmission, limit int) []LeaderboardEntry {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	sorted := make([]VideoSubmission, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.LatestViews != b.LatestViews {
			return a.LatestViews > b.LatestViews
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.UserID < b.UserID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]LeaderboardEntry, 0, len(sorted))
	for i, row := range sorted {
		out = append(out, LeaderboardEntry{
			Rank:         i + 1,
			UserID:       row.UserID,
			Username:     row.Username,
			CampaignID:   row.CampaignID,
			CampaignName: row.CampaignName,
			Platform:     row.Platform,
			VideoURL:     row.VideoURL,
			Views:        row.LatestViews,
		})
	}
	return out
}

func FormatCampaignLeaderboard(campaignName string, entries []LeaderboardEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**📊 %s Leaderboard (Top Videos):**\n\n", campaignName)
	for _, e := range entries {
		writeEntryLine(&b, e)
	}
	return b.String()
}

func FormatGlobalLeaderboard(entries []LeaderboardEntry) string {
	var b strings.Builder
	b.WriteString("**🌎 Global Leaderboard (Top Videos Across All Campaigns):**\n\n")
	for _, e := range entries {
		writeEntryLine(&b, e)
		fmt.Fprintf(&b, "🎯 Campaign: **%s**\n", e.CampaignName)
	}
	return b.String()
}

func writeEntryLine(b *strings.Builder, e LeaderboardEntry) {
	fmt.Fprintf(b, "**#%d** - [%s](%s) on **%s** - **%d Views**\n", e.Rank, e.VideoURL, e.VideoURL, e.Platform.Label(), e.Views)
}
