package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/viralforge/campaign-bot/internal/domain"
	"github.com/viralforge/campaign-bot/internal/ports"
)

type CampaignConfig struct {
	ID                   string
	Name                 string
	LeaderboardChannelID string
	PayoutRate           decimal.NullDecimal
}

type Config struct {
	ServiceName                string
	Campaigns                  []CampaignConfig
	GlobalLeaderboardChannelID string
	DefaultPayoutRate          decimal.Decimal
	LeaderboardSize            int
	VerifiedRole               string
	TeamRole                   string
	AdminRole                  string
	VerificationTTL            time.Duration
	TicketRetention            time.Duration
	FetchTimeout               time.Duration
	CommandRateLimit           int
	CommandRateWindow          time.Duration
}

// Actor is the member invoking a command and the guild it came from.
type Actor struct {
	UserID    string
	Username  string
	Mention   string
	GuildID   string
	GuildName string
	IsAdmin   bool
	IsTeam    bool
	RequestID string
}

type VerifiedResult struct {
	Request     domain.VerificationRequest
	RoleGranted bool
	RoleWarning string
}

type CampaignSubmissions struct {
	CampaignID   string
	CampaignName string
	Submissions  []domain.VideoSubmission
}

type PublishReport struct {
	Posted   []string
	Skipped  []string
	Failures map[string]string
}

type Service struct {
	cfg Config

	verifications ports.VerificationRepository
	submissions   ports.SubmissionRepository
	tickets       ports.TicketRepository
	outbox        ports.OutboxRepository

	platforms map[domain.Platform]ports.PlatformClient
	community ports.Community
	limiter   ports.RateLimiter

	campaigns map[string]CampaignConfig
	locks     *keyedMutex
	publisher publishGuard
	nowFn     func() time.Time
}

type Dependencies struct {
	Config Config

	Verifications ports.VerificationRepository
	Submissions   ports.SubmissionRepository
	Tickets       ports.TicketRepository
	Outbox        ports.OutboxRepository

	Platforms   map[domain.Platform]ports.PlatformClient
	Community   ports.Community
	RateLimiter ports.RateLimiter
}
