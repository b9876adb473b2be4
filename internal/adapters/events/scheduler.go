package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/viralforge/campaign-bot/internal/application"
)

type publishSweeper interface {
	PublishLeaderboards(ctx context.Context) (application.PublishReport, error)
	SweepExpired(ctx context.Context) (application.SweepResult, error)
}

// LeaderboardScheduler republishes leaderboards on a fixed interval and runs
// the housekeeping sweep on its own cadence.
type LeaderboardScheduler struct {
	logger          *slog.Logger
	service         publishSweeper
	publishInterval time.Duration
	sweepInterval   time.Duration
	publishOnStart  bool
}

func NewLeaderboardScheduler(logger *slog.Logger, service publishSweeper, publishInterval, sweepInterval time.Duration, publishOnStart bool) *LeaderboardScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if publishInterval <= 0 {
		publishInterval = time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = 15 * time.Minute
	}
	return &LeaderboardScheduler{
		logger:          logger,
		service:         service,
		publishInterval: publishInterval,
		sweepInterval:   sweepInterval,
		publishOnStart:  publishOnStart,
	}
}

func (s *LeaderboardScheduler) Run(ctx context.Context) error {
	publishTicker := time.NewTicker(s.publishInterval)
	defer publishTicker.Stop()
	sweepTicker := time.NewTicker(s.sweepInterval)
	defer sweepTicker.Stop()

	if s.publishOnStart {
		s.publish(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-publishTicker.C:
			s.publish(ctx)
		case <-sweepTicker.C:
			if _, err := s.service.SweepExpired(ctx); err != nil {
				s.logger.ErrorContext(ctx, "housekeeping sweep failed",
					"module", "events.scheduler",
					"layer", "adapter",
					"operation", "sweep_expired",
					"outcome", "failure",
					"error", err,
				)
			}
		}
	}
}

func (s *LeaderboardScheduler) publish(ctx context.Context) {
	if _, err := s.service.PublishLeaderboards(ctx); err != nil {
		s.logger.ErrorContext(ctx, "leaderboard cycle failed",
			"module", "events.scheduler",
			"layer", "adapter",
			"operation", "publish_leaderboards",
			"outcome", "failure",
			"error", err,
		)
	}
}
