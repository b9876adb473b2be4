package events

import (
	"context"
	"log/slog"

	"github.com/tidwall/gjson"
)

// LoggingPublisher writes each outbox envelope to the log instead of a
// broker. It is the default when no Kafka brokers are configured.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{logger: logger.With("module", "events.log_sink", "layer", "adapter")}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	env := gjson.GetManyBytes(payload, "event_id", "data.user_id", "data.campaign_id")
	fields := []any{
		"operation", "publish_event",
		"outcome", "success",
		"event_type", eventType,
		"event_id", env[0].String(),
		"partition_key", partitionKey,
		"payload_bytes", len(payload),
	}
	if userID := env[1].String(); userID != "" {
		fields = append(fields, "user_id", userID)
	}
	if campaignID := env[2].String(); campaignID != "" {
		fields = append(fields, "campaign_id", campaignID)
	}
	p.logger.InfoContext(ctx, "campaign event recorded", fields...)
	return nil
}
