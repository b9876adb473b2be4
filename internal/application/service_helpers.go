package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viralforge/campaign-bot/internal/domain"
	"github.com/viralforge/campaign-bot/internal/ports"
)

func (s *Service) platformClient(p domain.Platform) (ports.PlatformClient, error) {
	client, ok := s.platforms[p]
	if !ok || client == nil {
		return nil, fmt.Errorf("%w: no client configured for %s", domain.ErrInvalidPlatform, p)
	}
	return client, nil
}

func (s *Service) fetchBio(ctx context.Context, p domain.Platform, username string) (string, error) {
	client, err := s.platformClient(p)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	bio, err := client.FetchBio(ctx, username)
	if err != nil {
		return "", fmt.Errorf("%w: %s bio for %s: %v", domain.ErrExternalFetch, p, username, err)
	}
	return bio, nil
}

// fetchViews degrades every failure to zero views.
func (s *Service) fetchViews(ctx context.Context, p domain.Platform, videoURL string) int64 {
	client, err := s.platformClient(p)
	if err != nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	views, err := client.FetchViewCount(ctx, videoURL)
	if err != nil || views < 0 {
		slog.Default().WarnContext(ctx, "view count fetch degraded to zero",
			"module", "application",
			"layer", "application",
			"operation", "fetch_views",
			"outcome", "degraded",
			"platform", string(p),
			"video_url", videoURL,
			"error", err,
		)
		return 0
	}
	return views
}

// allow fails open when the limiter backend is unavailable.
func (s *Service) allow(ctx context.Context, operation, userID string) error {
	if s.limiter == nil {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, operation+":"+userID, s.cfg.CommandRateLimit, s.cfg.CommandRateWindow)
	if err != nil {
		slog.Default().WarnContext(ctx, "rate-limit state unavailable",
			"module", "application",
			"layer", "application",
			"operation", "rate_limit",
			"outcome", "warning",
			"key", operation+":"+userID,
			"error", err,
		)
		return nil
	}
	if !ok {
		return domain.ErrRateLimited
	}
	return nil
}
