package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/viralforge/campaign-bot/internal/ports"
)

type OutboxWorker struct {
	logger      *slog.Logger
	outbox      ports.OutboxRepository
	publisher   ports.EventPublisher
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewOutboxWorker(logger *slog.Logger, outbox ports.OutboxRepository, publisher ports.EventPublisher, interval time.Duration, batchSize int) *OutboxWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxWorker{
		logger: logger, outbox: outbox, publisher: publisher, interval: interval, batchSize: batchSize, maxAttempts: 5,
	}
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "outbox iteration failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "process_once",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *OutboxWorker) processOnce(ctx context.Context) error {
	records, err := w.outbox.ListPending(ctx, w.batchSize)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, rec := range records {
		payload, err := json.Marshal(rec.Envelope)
		if err == nil {
			err = w.publisher.Publish(ctx, rec.EventType, payload, rec.PartitionKey)
		}
		if err == nil {
			_ = w.outbox.MarkSent(ctx, rec.RecordID, now)
			continue
		}
		if rec.Attempts+1 >= w.maxAttempts {
			w.logger.ErrorContext(ctx, "outbox record dropped",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "publish",
				"outcome", "dropped",
				"event_type", rec.EventType,
				"record_id", rec.RecordID,
				"error", err,
			)
			_ = w.outbox.MarkSent(ctx, rec.RecordID, now)
			continue
		}
		_ = w.outbox.MarkFailed(ctx, rec.RecordID, err.Error(), now)
	}
	return nil
}
