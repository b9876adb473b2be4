package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viralforge/campaign-bot/internal/domain"
	"github.com/viralforge/campaign-bot/internal/ports"
)

type Repositories struct {
	Verifications *VerificationRepository
	Submissions   *SubmissionRepository
	Tickets       *TicketRepository
	Outbox        *OutboxRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Verifications: &VerificationRepository{rows: map[string]domain.VerificationRequest{}},
		Submissions:   &SubmissionRepository{rows: map[string]domain.VideoSubmission{}},
		Tickets:       &TicketRepository{rows: map[string]domain.PayoutTicket{}},
		Outbox:        &OutboxRepository{rows: map[string]ports.OutboxRecord{}},
	}
}

func key(userID string) string { return strings.TrimSpace(userID) }

type VerificationRepository struct {
	mu   sync.Mutex
	rows map[string]domain.VerificationRequest
}

func (r *VerificationRepository) Get(_ context.Context, userID string) (domain.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key(userID)]
	if !ok {
		return domain.VerificationRequest{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *VerificationRepository) Put(_ context.Context, row domain.VerificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[key(row.UserID)] = row
	return nil
}

func (r *VerificationRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, key(userID))
	return nil
}

func (r *VerificationRepository) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, row := range r.rows {
		if row.Expired(now) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *VerificationRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type SubmissionRepository struct {
	mu   sync.Mutex
	rows map[string]domain.VideoSubmission
}

func (r *SubmissionRepository) Get(_ context.Context, userID string) (domain.VideoSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key(userID)]
	if !ok {
		return domain.VideoSubmission{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *SubmissionRepository) Put(_ context.Context, row domain.VideoSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[key(row.UserID)] = row
	return nil
}

func (r *SubmissionRepository) ListByCampaign(_ context.Context, campaignID string) ([]domain.VideoSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.VideoSubmission, 0)
	for _, row := range r.rows {
		if row.CampaignID == campaignID {
			out = append(out, row)
		}
	}
	sortSubmissions(out)
	return out, nil
}

func (r *SubmissionRepository) ListAll(_ context.Context) ([]domain.VideoSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.VideoSubmission, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	sortSubmissions(out)
	return out, nil
}

func sortSubmissions(rows []domain.VideoSubmission) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].SubmittedAt.Equal(rows[j].SubmittedAt) {
			return rows[i].SubmittedAt.Before(rows[j].SubmittedAt)
		}
		return rows[i].UserID < rows[j].UserID
	})
}

type TicketRepository struct {
	mu   sync.Mutex
	rows map[string]domain.PayoutTicket
}

func (r *TicketRepository) Get(_ context.Context, userID string) (domain.PayoutTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key(userID)]
	if !ok {
		return domain.PayoutTicket{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *TicketRepository) Put(_ context.Context, row domain.PayoutTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[key(row.UserID)] = row
	return nil
}

func (r *TicketRepository) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, row := range r.rows {
		if row.CreatedAt.Before(cutoff) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

type OutboxRepository struct {
	mu    sync.Mutex
	rows  map[string]ports.OutboxRecord
	order []string
}

func (r *OutboxRepository) Enqueue(_ context.Context, record ports.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[record.RecordID]; ok {
		return nil
	}
	r.rows[record.RecordID] = record
	r.order = append(r.order, record.RecordID)
	return nil
}

func (r *OutboxRepository) ListPending(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := make([]ports.OutboxRecord, 0, limit)
	for _, id := range r.order {
		if len(out) == limit {
			break
		}
		out = append(out, r.rows[id])
	}
	return out, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, recordID string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[recordID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, recordID)
	for i, id := range r.order {
		if id == recordID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(_ context.Context, recordID, reason string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	row.Attempts++
	row.LastError = reason
	r.rows[recordID] = row
	return nil
}
