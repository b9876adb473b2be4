package ports

import (
	"context"
	"time"

	"github.com/viralforge/campaign-bot/internal/contracts"
	"github.com/viralforge/campaign-bot/internal/domain"
)

type VerificationRepository interface {
	Get(ctx context.Context, userID string) (domain.VerificationRequest, error)
	Put(ctx context.Context, row domain.VerificationRequest) error
	Delete(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type SubmissionRepository interface {
	Get(ctx context.Context, userID string) (domain.VideoSubmission, error)
	Put(ctx context.Context, row domain.VideoSubmission) error
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.VideoSubmission, error)
	ListAll(ctx context.Context) ([]domain.VideoSubmission, error)
}

type TicketRepository interface {
	Get(ctx context.Context, userID string) (domain.PayoutTicket, error)
	Put(ctx context.Context, row domain.PayoutTicket) error
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type OutboxRecord struct {
	RecordID     string
	EventType    string
	PartitionKey string
	Envelope     contracts.EventEnvelope
	CreatedAt    time.Time
	Attempts     int
	LastError    string
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, record OutboxRecord) error
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, recordID string, at time.Time) error
	MarkFailed(ctx context.Context, recordID, reason string, at time.Time) error
}
