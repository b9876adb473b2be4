package application

import (
	"strings"
	"time"

	"github.com/viralforge/campaign-bot/internal/domain"
)

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "campaign-bot"
	}
	if cfg.DefaultPayoutRate.IsZero() {
		cfg.DefaultPayoutRate = domain.DefaultPayoutRate
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = domain.DefaultLeaderboardSize
	}
	if cfg.VerifiedRole == "" {
		cfg.VerifiedRole = "Verified"
	}
	if cfg.TeamRole == "" {
		cfg.TeamRole = "server team"
	}
	if cfg.AdminRole == "" {
		cfg.AdminRole = "admin"
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}
	if cfg.TicketRetention <= 0 {
		cfg.TicketRetention = 30 * 24 * time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.CommandRateLimit <= 0 {
		cfg.CommandRateLimit = 5
	}
	if cfg.CommandRateWindow <= 0 {
		cfg.CommandRateWindow = time.Minute
	}
	campaigns := make(map[string]CampaignConfig, len(cfg.Campaigns))
	for _, c := range cfg.Campaigns {
		campaigns[strings.TrimSpace(c.ID)] = c
	}
	return &Service{
		cfg:           cfg,
		verifications: deps.Verifications,
		submissions:   deps.Submissions,
		tickets:       deps.Tickets,
		outbox:        deps.Outbox,
		platforms:     deps.Platforms,
		community:     deps.Community,
		limiter:       deps.RateLimiter,
		campaigns:     campaigns,
		locks:         newKeyedMutex(),
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Config() Config { return s.cfg }

// campaignFor resolves the campaign an actor's guild belongs to. Guilds
// without configuration still track submissions under their own id.
func (s *Service) campaignFor(actor Actor) CampaignConfig {
	id := strings.TrimSpace(actor.GuildID)
	if c, ok := s.campaigns[id]; ok {
		if c.Name == "" {
			c.Name = actor.GuildName
		}
		return c
	}
	return CampaignConfig{ID: id, Name: actor.GuildName}
}

func (s *Service) campaignName(id, fallback string) string {
	if c, ok := s.campaigns[id]; ok && c.Name != "" {
		return c.Name
	}
	return fallback
}

func mentionFor(actor Actor) string {
	if actor.Mention != "" {
		return actor.Mention
	}
	return "@" + actor.Username
}

func requireUser(actor Actor) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return domain.ErrUnauthorized
	}
	return nil
}
