package domain

const (
	EventVerificationRequested  = "campaign_bot.verification.requested"
	EventVerificationConfirmed  = "campaign_bot.verification.confirmed"
	EventSubmissionRecorded     = "campaign_bot.submission.recorded"
	EventSubmissionViewsRefresh = "campaign_bot.submission.views_refreshed"
	EventPayoutRequested        = "campaign_bot.payout.requested"
	EventLeaderboardPublished   = "campaign_bot.leaderboard.published"
)

func IsCanonicalEmittedEvent(eventType string) bool {
	switch eventType {
	case EventVerificationRequested, EventVerificationConfirmed, EventSubmissionRecorded,
		EventSubmissionViewsRefresh, EventPayoutRequested, EventLeaderboardPublished:
		return true
	default:
		return false
	}
}

func CanonicalPartitionKeyPath(eventType string) string {
	if eventType == EventLeaderboardPublished {
		return "data.campaign_id"
	}
	if IsCanonicalEmittedEvent(eventType) {
		return "data.user_id"
	}
	return ""
}
