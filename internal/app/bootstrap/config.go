package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/viralforge/campaign-bot/internal/application"
	"github.com/viralforge/campaign-bot/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string
	HTTPPort  int
	GRPCPort  int

	DiscordToken      string
	DiscordGuildIDs   []string
	VerifyChannelID   string
	VerifyChannelName string
	CommandTimeout    time.Duration

	TikAPIKey     string
	TikAPIBaseURL string
	YouTubeAPIKey string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string

	AdminJWTSecret string
	AdminJWTIssuer string

	Campaigns                  []application.CampaignConfig
	GlobalLeaderboardChannelID string
	LeaderboardSize            int
	PublishInterval            time.Duration
	PublishOnStart             bool
	SweepInterval              time.Duration

	DefaultPayoutRate decimal.Decimal
	TicketRetention   time.Duration

	VerifiedRole      string
	TeamRole          string
	AdminRole         string
	VerificationTTL   time.Duration
	FetchTimeout      time.Duration
	CommandRateLimit  int
	CommandRateWindow time.Duration

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

type campaignFile struct {
	ID                   string `yaml:"id"`
	Name                 string `yaml:"name"`
	LeaderboardChannelID string `yaml:"leaderboard_channel_id"`
	PayoutRate           string `yaml:"payout_rate"`
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		TikAPIBaseURL string   `yaml:"tikapi_base_url"`
		RedisURL      string   `yaml:"redis_url"`
		KafkaBrokers  []string `yaml:"kafka_brokers"`
		KafkaTopic    string   `yaml:"kafka_topic"`
	} `yaml:"dependencies"`
	Discord struct {
		GuildIDs              []string `yaml:"guild_ids"`
		VerifyChannelID       string   `yaml:"verify_channel_id"`
		VerifyChannelName     string   `yaml:"verify_channel_name"`
		CommandTimeoutSeconds int      `yaml:"command_timeout_seconds"`
		VerifiedRole          string   `yaml:"verified_role"`
		TeamRole              string   `yaml:"team_role"`
		AdminRole             string   `yaml:"admin_role"`
		RateLimitPerMinute    int      `yaml:"rate_limit_per_minute"`
	} `yaml:"discord"`
	Campaigns    []campaignFile `yaml:"campaigns"`
	Leaderboards struct {
		GlobalChannelID        string `yaml:"global_channel_id"`
		Size                   int    `yaml:"size"`
		PublishIntervalSeconds int    `yaml:"publish_interval_seconds"`
		PublishOnStart         *bool  `yaml:"publish_on_start"`
		SweepIntervalSeconds   int    `yaml:"sweep_interval_seconds"`
	} `yaml:"leaderboards"`
	Payouts struct {
		DefaultRate   string `yaml:"default_rate"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"payouts"`
	Verification struct {
		TTLHours            int `yaml:"ttl_hours"`
		FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`
	} `yaml:"verification"`
	Outbox struct {
		PollIntervalMillis int `yaml:"poll_interval_ms"`
		BatchSize          int `yaml:"batch_size"`
	} `yaml:"outbox"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "campaign-bot",
		HTTPPort:           8080,
		GRPCPort:           9090,
		VerifyChannelName:  "get-verified",
		CommandTimeout:     30 * time.Second,
		TikAPIBaseURL:      "https://api.tikapi.io",
		KafkaTopic:         "campaign-bot.events",
		AdminJWTIssuer:     "campaign-bot",
		LeaderboardSize:    domain.DefaultLeaderboardSize,
		PublishInterval:    time.Hour,
		PublishOnStart:     true,
		SweepInterval:      15 * time.Minute,
		DefaultPayoutRate:  domain.DefaultPayoutRate,
		TicketRetention:    30 * 24 * time.Hour,
		VerifiedRole:       "Verified",
		TeamRole:           "server team",
		AdminRole:          "admin",
		VerificationTTL:    24 * time.Hour,
		FetchTimeout:       10 * time.Second,
		CommandRateLimit:   5,
		CommandRateWindow:  time.Minute,
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
	}

	if raw, err := os.ReadFile(path); err == nil {
		var f configFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		if err := applyFile(&cfg, f); err != nil {
			return Config{}, err
		}
	}

	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.DiscordToken = strings.TrimSpace(os.Getenv("DISCORD_BOT_TOKEN"))
	cfg.DiscordGuildIDs = envCSV("DISCORD_GUILD_IDS", cfg.DiscordGuildIDs)
	cfg.VerifyChannelID = envOrDefault("VERIFY_CHANNEL_ID", cfg.VerifyChannelID)
	cfg.TikAPIKey = strings.TrimSpace(os.Getenv("TIKAPI_KEY"))
	cfg.TikAPIBaseURL = envOrDefault("TIKAPI_BASE_URL", cfg.TikAPIBaseURL)
	cfg.YouTubeAPIKey = strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY"))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = envOrDefault("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.AdminJWTSecret = strings.TrimSpace(os.Getenv("ADMIN_JWT_SECRET"))
	cfg.AdminJWTIssuer = envOrDefault("ADMIN_JWT_ISSUER", cfg.AdminJWTIssuer)
	cfg.GlobalLeaderboardChannelID = envOrDefault("GLOBAL_LEADERBOARD_CHANNEL_ID", cfg.GlobalLeaderboardChannelID)
	cfg.PublishInterval = envSeconds("PUBLISH_INTERVAL_SECONDS", cfg.PublishInterval)
	cfg.PublishOnStart = envBool("PUBLISH_ON_START", cfg.PublishOnStart)
	cfg.SweepInterval = envSeconds("SWEEP_INTERVAL_SECONDS", cfg.SweepInterval)
	cfg.CommandRateLimit = envInt("COMMAND_RATE_LIMIT_PER_MINUTE", cfg.CommandRateLimit)
	if raw := strings.TrimSpace(os.Getenv("DEFAULT_PAYOUT_RATE")); raw != "" {
		rate, err := parseRate("DEFAULT_PAYOUT_RATE", raw)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultPayoutRate = rate
	}
	if raw := strings.TrimSpace(os.Getenv("CAMPAIGN_LEADERBOARD_CHANNELS")); raw != "" {
		campaigns, err := parseCampaignChannels(raw, cfg.Campaigns)
		if err != nil {
			return Config{}, err
		}
		cfg.Campaigns = campaigns
	}
	return cfg, nil
}

func applyFile(cfg *Config, f configFile) error {
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Dependencies.TikAPIBaseURL != "" {
		cfg.TikAPIBaseURL = f.Dependencies.TikAPIBaseURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
	}
	if f.Dependencies.KafkaTopic != "" {
		cfg.KafkaTopic = f.Dependencies.KafkaTopic
	}

	if len(f.Discord.GuildIDs) > 0 {
		cfg.DiscordGuildIDs = trimNonEmpty(f.Discord.GuildIDs)
	}
	if f.Discord.VerifyChannelID != "" {
		cfg.VerifyChannelID = f.Discord.VerifyChannelID
	}
	if f.Discord.VerifyChannelName != "" {
		cfg.VerifyChannelName = f.Discord.VerifyChannelName
	}
	if f.Discord.CommandTimeoutSeconds > 0 {
		cfg.CommandTimeout = time.Duration(f.Discord.CommandTimeoutSeconds) * time.Second
	}
	if f.Discord.VerifiedRole != "" {
		cfg.VerifiedRole = f.Discord.VerifiedRole
	}
	if f.Discord.TeamRole != "" {
		cfg.TeamRole = f.Discord.TeamRole
	}
	if f.Discord.AdminRole != "" {
		cfg.AdminRole = f.Discord.AdminRole
	}
	if f.Discord.RateLimitPerMinute > 0 {
		cfg.CommandRateLimit = f.Discord.RateLimitPerMinute
	}

	for i, c := range f.Campaigns {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return fmt.Errorf("campaigns[%d].id is required", i)
		}
		campaign := application.CampaignConfig{
			ID:                   id,
			Name:                 strings.TrimSpace(c.Name),
			LeaderboardChannelID: strings.TrimSpace(c.LeaderboardChannelID),
		}
		if strings.TrimSpace(c.PayoutRate) != "" {
			rate, err := parseRate(fmt.Sprintf("campaigns[%d].payout_rate", i), c.PayoutRate)
			if err != nil {
				return err
			}
			campaign.PayoutRate = decimal.NewNullDecimal(rate)
		}
		cfg.Campaigns = append(cfg.Campaigns, campaign)
	}

	if f.Leaderboards.GlobalChannelID != "" {
		cfg.GlobalLeaderboardChannelID = f.Leaderboards.GlobalChannelID
	}
	if f.Leaderboards.Size > 0 {
		cfg.LeaderboardSize = f.Leaderboards.Size
	}
	if f.Leaderboards.PublishIntervalSeconds > 0 {
		cfg.PublishInterval = time.Duration(f.Leaderboards.PublishIntervalSeconds) * time.Second
	}
	if f.Leaderboards.PublishOnStart != nil {
		cfg.PublishOnStart = *f.Leaderboards.PublishOnStart
	}
	if f.Leaderboards.SweepIntervalSeconds > 0 {
		cfg.SweepInterval = time.Duration(f.Leaderboards.SweepIntervalSeconds) * time.Second
	}

	if strings.TrimSpace(f.Payouts.DefaultRate) != "" {
		rate, err := parseRate("payouts.default_rate", f.Payouts.DefaultRate)
		if err != nil {
			return err
		}
		cfg.DefaultPayoutRate = rate
	}
	if f.Payouts.RetentionDays > 0 {
		cfg.TicketRetention = time.Duration(f.Payouts.RetentionDays) * 24 * time.Hour
	}
	if f.Verification.TTLHours > 0 {
		cfg.VerificationTTL = time.Duration(f.Verification.TTLHours) * time.Hour
	}
	if f.Verification.FetchTimeoutSeconds > 0 {
		cfg.FetchTimeout = time.Duration(f.Verification.FetchTimeoutSeconds) * time.Second
	}
	if f.Outbox.PollIntervalMillis > 0 {
		cfg.OutboxPollInterval = time.Duration(f.Outbox.PollIntervalMillis) * time.Millisecond
	}
	if f.Outbox.BatchSize > 0 {
		cfg.OutboxBatchSize = f.Outbox.BatchSize
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.ServiceID == "" {
		return errors.New("service.id is required")
	}
	if cfg.DiscordToken == "" {
		return errors.New("DISCORD_BOT_TOKEN is required")
	}
	if cfg.HTTPPort <= 0 {
		return errors.New("service.http_port must be positive")
	}
	if cfg.GRPCPort <= 0 {
		return errors.New("service.grpc_port must be positive")
	}
	if !cfg.DefaultPayoutRate.IsPositive() {
		return errors.New("payouts.default_rate must be positive")
	}
	seen := make(map[string]struct{}, len(cfg.Campaigns))
	for _, c := range cfg.Campaigns {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("campaign %q is configured twice", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

func (c Config) applicationConfig() application.Config {
	return application.Config{
		ServiceName:                c.ServiceID,
		Campaigns:                  c.Campaigns,
		GlobalLeaderboardChannelID: c.GlobalLeaderboardChannelID,
		DefaultPayoutRate:          c.DefaultPayoutRate,
		LeaderboardSize:            c.LeaderboardSize,
		VerifiedRole:               c.VerifiedRole,
		TeamRole:                   c.TeamRole,
		AdminRole:                  c.AdminRole,
		VerificationTTL:            c.VerificationTTL,
		TicketRetention:            c.TicketRetention,
		FetchTimeout:               c.FetchTimeout,
		CommandRateLimit:           c.CommandRateLimit,
		CommandRateWindow:          c.CommandRateWindow,
	}
}

func parseRate(field, raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: invalid decimal %q: %w", field, raw, err)
	}
	if !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%s must be positive", field)
	}
	return rate, nil
}

// parseCampaignChannels reads "guildID=channelID" pairs. Known campaigns get
// their channel replaced; unknown ids are appended.
func parseCampaignChannels(raw string, existing []application.CampaignConfig) ([]application.CampaignConfig, error) {
	out := append([]application.CampaignConfig(nil), existing...)
	index := make(map[string]int, len(out))
	for i, c := range out {
		index[c.ID] = i
	}
	for _, pair := range trimNonEmpty(strings.Split(raw, ",")) {
		id, channel, ok := strings.Cut(pair, "=")
		id, channel = strings.TrimSpace(id), strings.TrimSpace(channel)
		if !ok || id == "" || channel == "" {
			return nil, fmt.Errorf("CAMPAIGN_LEADERBOARD_CHANNELS: malformed pair %q", pair)
		}
		if i, found := index[id]; found {
			out[i].LeaderboardChannelID = channel
			continue
		}
		index[id] = len(out)
		out = append(out, application.CampaignConfig{ID: id, LeaderboardChannelID: channel})
	}
	return out, nil
}

func envOrDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envSeconds(name string, fallback time.Duration) time.Duration {
	if v := envInt(name, 0); v > 0 {
		return time.Duration(v) * time.Second
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
