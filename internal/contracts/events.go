package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type VerificationRequestedPayload struct {
	UserID      string `json:"user_id"`
	Platform    string `json:"platform"`
	Username    string `json:"username"`
	RequestedAt string `json:"requested_at"`
	ExpiresAt   string `json:"expires_at"`
}

type VerificationConfirmedPayload struct {
	UserID      string `json:"user_id"`
	Platform    string `json:"platform"`
	Username    string `json:"username"`
	RoleGranted bool   `json:"role_granted"`
	ConfirmedAt string `json:"confirmed_at"`
}

type SubmissionRecordedPayload struct {
	UserID       string `json:"user_id"`
	CampaignID   string `json:"campaign_id"`
	Platform     string `json:"platform"`
	VideoURL     string `json:"video_url"`
	InitialViews int64  `json:"initial_views"`
	SubmittedAt  string `json:"submitted_at"`
}

type SubmissionViewsRefreshedPayload struct {
	UserID      string `json:"user_id"`
	CampaignID  string `json:"campaign_id"`
	LatestViews int64  `json:"latest_views"`
	RefreshedAt string `json:"refreshed_at"`
}

type PayoutRequestedPayload struct {
	TicketID    string `json:"ticket_id"`
	UserID      string `json:"user_id"`
	CampaignID  string `json:"campaign_id"`
	Views       int64  `json:"views"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
	ChannelID   string `json:"channel_id"`
	RequestedAt string `json:"requested_at"`
}

type LeaderboardPublishedPayload struct {
	CampaignID  string `json:"campaign_id"`
	ChannelID   string `json:"channel_id"`
	Entries     int    `json:"entries"`
	PublishedAt string `json:"published_at"`
}
