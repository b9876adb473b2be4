package contracts

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

type LeaderboardEntryResponse struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Platform     string `json:"platform"`
	VideoURL     string `json:"video_url"`
	Views        int64  `json:"views"`
}

type LeaderboardResponse struct {
	CampaignID   string                     `json:"campaign_id,omitempty"`
	CampaignName string                     `json:"campaign_name,omitempty"`
	Entries      []LeaderboardEntryResponse `json:"entries"`
}

type PublishReportResponse struct {
	Posted   []string          `json:"posted"`
	Skipped  []string          `json:"skipped"`
	Failures map[string]string `json:"failures,omitempty"`
}
