package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/campaign-bot/internal/contracts"
	"github.com/viralforge/campaign-bot/internal/domain"
	"github.com/viralforge/campaign-bot/internal/ports"
)

func (s *Service) enqueueDomainEvent(ctx context.Context, eventType, traceID string, data any, partitionKey string, now time.Time) error {
	if s.outbox == nil {
		return nil
	}
	if !domain.IsCanonicalEmittedEvent(eventType) {
		return fmt.Errorf("%w: unsupported event type %s", domain.ErrInvalidInput, eventType)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrInvalidInput, eventType, err)
	}
	if strings.TrimSpace(traceID) == "" {
		traceID = uuid.NewString()
	}
	env := contracts.EventEnvelope{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		OccurredAt:       now,
		PartitionKeyPath: domain.CanonicalPartitionKeyPath(eventType),
		PartitionKey:     partitionKey,
		SourceService:    s.cfg.ServiceName,
		TraceID:          traceID,
		SchemaVersion:    "v1",
		Data:             b,
	}
	return s.outbox.Enqueue(ctx, ports.OutboxRecord{
		RecordID:     uuid.NewString(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Envelope:     env,
		CreatedAt:    now,
	})
}

// emit never fails the command that produced the event.
func (s *Service) emit(ctx context.Context, eventType, traceID string, data any, partitionKey string) {
	if err := s.enqueueDomainEvent(ctx, eventType, traceID, data, partitionKey, s.nowFn()); err != nil {
		slog.Default().WarnContext(ctx, "event enqueue failed",
			"module", "application",
			"layer", "application",
			"operation", "enqueue_event",
			"outcome", "warning",
			"event_type", eventType,
			"error", err,
		)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
