package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"github.com/viralforge/campaign-bot/internal/adapters/cache"
	discordadapter "github.com/viralforge/campaign-bot/internal/adapters/discord"
	eventadapter "github.com/viralforge/campaign-bot/internal/adapters/events"
	httpadapter "github.com/viralforge/campaign-bot/internal/adapters/http"
	"github.com/viralforge/campaign-bot/internal/adapters/memory"
	"github.com/viralforge/campaign-bot/internal/adapters/tiktok"
	"github.com/viralforge/campaign-bot/internal/adapters/youtube"
	"github.com/viralforge/campaign-bot/internal/application"
	"github.com/viralforge/campaign-bot/internal/domain"
	"github.com/viralforge/campaign-bot/internal/ports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	bot        *discordadapter.Bot
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	healthSrv  *health.Server
	outbox     *eventadapter.OutboxWorker
	scheduler  *eventadapter.LeaderboardScheduler
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var closers []io.Closer
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}

	repos := memory.NewRepositories()

	limiter := ports.RateLimiter(cache.NewMemoryRateLimiter())
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, connErr := cache.Connect(ctx, cfg.RedisURL)
		if connErr == nil {
			connErr = client.Ping(ctx).Err()
			if connErr != nil {
				_ = client.Close()
			}
		}
		if connErr != nil {
			logger.WarnContext(ctx, "redis rate limiter disabled, using in-process limiter", "error", connErr)
		} else {
			redisClient = client
			limiter = cache.NewRedisRateLimiter(client, cfg.ServiceID+":ratelimit:")
			closers = append(closers, client)
		}
	}

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{"*": cfg.KafkaTopic})
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}
	}

	platforms := map[domain.Platform]ports.PlatformClient{
		domain.PlatformTikTok: tiktok.NewClient(cfg.TikAPIKey, tiktok.WithBaseURL(cfg.TikAPIBaseURL)),
	}
	if cfg.YouTubeAPIKey != "" {
		yt, ytErr := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
		if ytErr != nil {
			closeAll()
			return nil, ytErr
		}
		platforms[domain.PlatformYouTube] = yt
	} else {
		logger.WarnContext(ctx, "YOUTUBE_API_KEY not set, youtube verification disabled")
	}

	session, err := discordadapter.NewSession(cfg.DiscordToken)
	if err != nil {
		closeAll()
		return nil, err
	}
	community := discordadapter.NewCommunity(session, logger)

	appCfg := cfg.applicationConfig()
	service := application.NewService(application.Dependencies{
		Config:        appCfg,
		Verifications: repos.Verifications,
		Submissions:   repos.Submissions,
		Tickets:       repos.Tickets,
		Outbox:        repos.Outbox,
		Platforms:     platforms,
		Community:     community,
		RateLimiter:   limiter,
	})

	bot := discordadapter.NewBot(logger, session, community, service, discordadapter.Config{
		Token:             cfg.DiscordToken,
		GuildIDs:          cfg.DiscordGuildIDs,
		VerifyChannelID:   cfg.VerifyChannelID,
		VerifyChannelName: cfg.VerifyChannelName,
		AdminRole:         cfg.AdminRole,
		TeamRole:          cfg.TeamRole,
		CommandTimeout:    cfg.CommandTimeout,
	})

	var verifier *httpadapter.AdminTokenVerifier
	if cfg.AdminJWTSecret != "" {
		verifier, err = httpadapter.NewAdminTokenVerifier(cfg.AdminJWTSecret, cfg.AdminJWTIssuer)
		if err != nil {
			closeAll()
			return nil, err
		}
	} else {
		logger.WarnContext(ctx, "ADMIN_JWT_SECRET not set, leaderboard refresh endpoint disabled")
	}
	handler := httpadapter.NewHandler(service, verifier, readiness(session, redisClient))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		closeAll()
		return nil, err
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		bot:        bot,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		healthSrv:  healthSrv,
		outbox:     eventadapter.NewOutboxWorker(logger, repos.Outbox, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize),
		scheduler:  eventadapter.NewLeaderboardScheduler(logger, service, cfg.PublishInterval, cfg.SweepInterval, cfg.PublishOnStart),
		cleanupFn: func(context.Context) {
			_ = bot.Close()
			closeAll()
		},
	}, nil
}

// Run connects the bot and serves until SIGINT/SIGTERM or a component fails.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.bot.Open(ctx); err != nil {
		r.cleanupFn(context.Background())
		return err
	}

	errCh := make(chan error, 4)
	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := r.outbox.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	r.logger.InfoContext(ctx, "campaign bot running",
		"http_port", r.cfg.HTTPPort,
		"grpc_port", r.cfg.GRPCPort,
		"campaigns", len(r.cfg.Campaigns),
	)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", runErr)
	}
	stop()

	r.healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return runErr
}

func readiness(session *discordgo.Session, redisClient *redis.Client) httpadapter.ReadinessFunc {
	return func(ctx context.Context) error {
		if !session.DataReady {
			return errors.New("discord gateway not ready")
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
		}
		return nil
	}
}
