package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/viralforge/campaign-bot/internal/domain"
)

func TestBeginVerificationOverwritesPendingRequest(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	ctx := context.Background()
	actor := actorIn("42", "g1")
	if _, err := h.svc.BeginVerification(ctx, actor, "tiktok", "first"); err != nil {
		t.Fatalf("first BeginVerification: %v", err)
	}
	second, err := h.svc.BeginVerification(ctx, actor, "YouTube", "@second")
	if err != nil {
		t.Fatalf("second BeginVerification: %v", err)
	}
	if second.Code != "42-YOUTUBE" || second.Username != "second" {
		t.Fatalf("unexpected request: %+v", second)
	}
	stored, err := h.repos.Verifications.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Platform != domain.PlatformYouTube || h.repos.Verifications.Len() != 1 {
		t.Fatalf("expected only the second request, got %+v (len=%d)", stored, h.repos.Verifications.Len())
	}
}

func TestInvalidPlatformLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	ctx := context.Background()
	actor := actorIn("7", "g1")
	if _, err := h.svc.BeginVerification(ctx, actor, "twitch", "someone"); !errors.Is(err, domain.ErrInvalidPlatform) {
		t.Fatalf("expected ErrInvalidPlatform from verify, got %v", err)
	}
	if _, err := h.svc.SubmitVideo(ctx, actor, "twitch", "https://twitch.tv/x"); !errors.Is(err, domain.ErrInvalidPlatform) {
		t.Fatalf("expected ErrInvalidPlatform from submit, got %v", err)
	}
	if h.repos.Verifications.Len() != 0 {
		t.Fatalf("expected no verification stored")
	}
	if _, err := h.repos.Submissions.Get(ctx, "7"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no submission stored, got %v", err)
	}
	pending, _ := h.repos.Outbox.ListPending(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected no events, got %d", len(pending))
	}
}

func TestUnconfiguredPlatformRejectedBeforeState(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	delete(h.svc.platforms, domain.PlatformYouTube)
	ctx := context.Background()
	actor := actorIn("8", "g1")
	if _, err := h.svc.BeginVerification(ctx, actor, "youtube", "someone"); !errors.Is(err, domain.ErrInvalidPlatform) {
		t.Fatalf("expected ErrInvalidPlatform from verify, got %v", err)
	}
	if _, err := h.svc.SubmitVideo(ctx, actor, "youtube", "https://youtu.be/a"); !errors.Is(err, domain.ErrInvalidPlatform) {
		t.Fatalf("expected ErrInvalidPlatform from submit, got %v", err)
	}
	if h.repos.Verifications.Len() != 0 {
		t.Fatalf("expected no verification stored")
	}
	if _, err := h.repos.Submissions.Get(ctx, "8"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no submission stored, got %v", err)
	}
	if _, err := h.svc.BeginVerification(ctx, actor, "tiktok", "someone"); err != nil {
		t.Fatalf("configured platform should still work: %v", err)
	}
}

func TestConfirmVerificationWithoutRequest(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	_, err := h.svc.ConfirmVerification(context.Background(), actorIn("42", "g1"), "tiktok", "clipper")
	if !errors.Is(err, domain.ErrNoPendingRequest) {
		t.Fatalf("expected ErrNoPendingRequest, got %v", err)
	}
}

func TestConfirmVerificationMatchesCodeCaseInsensitively(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	ctx := context.Background()
	actor := actorIn("42", "g1")
	if _, err := h.svc.BeginVerification(ctx, actor, "tiktok", "clipper"); err != nil {
		t.Fatalf("BeginVerification: %v", err)
	}

	h.tiktok.bio = "hello world"
	if _, err := h.svc.ConfirmVerification(ctx, actor, "tiktok", "clipper"); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
	if h.repos.Verifications.Len() != 1 {
		t.Fatalf("request must survive a failed match")
	}

	h.tiktok.bio = "hey! 42-tiktok rocks"
	res, err := h.svc.ConfirmVerification(ctx, actor, "tiktok", "clipper")
	if err != nil {
		t.Fatalf("ConfirmVerification: %v", err)
	}
	if !res.RoleGranted || res.RoleWarning != "" {
		t.Fatalf("expected role granted, got %+v", res)
	}
	if h.repos.Verifications.Len() != 0 {
		t.Fatalf("request must be consumed on success")
	}
	if _, err := h.svc.ConfirmVerification(ctx, actor, "tiktok", "clipper"); !errors.Is(err, domain.ErrNoPendingRequest) {
		t.Fatalf("confirmation must be single use, got %v", err)
	}
}

func TestConfirmVerificationFetchFailureKeepsRequest(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	ctx := context.Background()
	actor := actorIn("42", "g1")
	_, _ = h.svc.BeginVerification(ctx, actor, "youtube", "channel")
	h.youtube.bioErr = errors.New("quota exceeded")

	if _, err := h.svc.ConfirmVerification(ctx, actor, "youtube", "channel"); !errors.Is(err, domain.ErrExternalFetch) {
		t.Fatalf("expected ErrExternalFetch, got %v", err)
	}
	if h.repos.Verifications.Len() != 1 {
		t.Fatalf("request must survive a fetch failure")
	}
}

func TestConfirmVerificationMissingRoleStillVerifies(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{VerifiedRole: "Certified"})
	ctx := context.Background()
	actor := actorIn("42", "g1")
	_, _ = h.svc.BeginVerification(ctx, actor, "tiktok", "clipper")
	h.tiktok.bio = "42-TIKTOK"

	res, err := h.svc.ConfirmVerification(ctx, actor, "tiktok", "clipper")
	if err != nil {
		t.Fatalf("ConfirmVerification: %v", err)
	}
	if res.RoleGranted || res.RoleWarning == "" {
		t.Fatalf("expected role warning, got %+v", res)
	}
	if h.repos.Verifications.Len() != 0 {
		t.Fatalf("request must be consumed even without the role")
	}
}

func TestConfirmVerificationExpiredRequest(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{VerificationTTL: time.Hour})
	ctx := context.Background()
	actor := actorIn("42", "g1")
	_, _ = h.svc.BeginVerification(ctx, actor, "tiktok", "clipper")
	h.tiktok.bio = "42-TIKTOK"
	h.clock.Advance(2 * time.Hour)

	if _, err := h.svc.ConfirmVerification(ctx, actor, "tiktok", "clipper"); !errors.Is(err, domain.ErrNoPendingRequest) {
		t.Fatalf("expected ErrNoPendingRequest for expired request, got %v", err)
	}
	if h.repos.Verifications.Len() != 0 {
		t.Fatalf("expired request should be removed")
	}
}

func TestConfirmVerificationRateLimited(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{CommandRateLimit: 1})
	ctx := context.Background()
	actor := actorIn("42", "g1")
	_, _ = h.svc.BeginVerification(ctx, actor, "tiktok", "clipper")
	h.tiktok.bio = "nothing here"

	if _, err := h.svc.ConfirmVerification(ctx, actor, "tiktok", "clipper"); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
	if _, err := h.svc.ConfirmVerification(ctx, actor, "tiktok", "clipper"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestConfirmVerificationRateLimiterUnavailableFailsOpen(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	h.limiter.err = errors.New("redis down")
	ctx := context.Background()
	actor := actorIn("42", "g1")
	_, _ = h.svc.BeginVerification(ctx, actor, "tiktok", "clipper")
	h.tiktok.bio = "42-tiktok"

	if _, err := h.svc.ConfirmVerification(ctx, actor, "tiktok", "clipper"); err != nil {
		t.Fatalf("expected success with limiter down, got %v", err)
	}
}

func TestConcurrentConfirmationsConsumeOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	ctx := context.Background()
	actor := actorIn("42", "g1")
	_, _ = h.svc.BeginVerification(ctx, actor, "tiktok", "clipper")
	h.tiktok.bio = "42-tiktok"
	h.tiktok.bioDelay = 10 * time.Millisecond

	var wg sync.WaitGroup
	results := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.ConfirmVerification(ctx, actor, "tiktok", "clipper")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrNoPendingRequest):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful confirmation, got %d", successes)
	}
	if got := len(h.community.granted); got != 1 {
		t.Fatalf("expected one role grant, got %d", got)
	}
}

func TestSweepExpiredRemovesStaleRecords(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{VerificationTTL: time.Hour, TicketRetention: 24 * time.Hour})
	ctx := context.Background()
	_, _ = h.svc.BeginVerification(ctx, actorIn("1", "g1"), "tiktok", "a")
	_ = h.repos.Tickets.Put(ctx, domain.PayoutTicket{UserID: "1", CreatedAt: h.clock.Now()})
	h.clock.Advance(48 * time.Hour)
	_, _ = h.svc.BeginVerification(ctx, actorIn("2", "g1"), "tiktok", "b")

	res, err := h.svc.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if res.ExpiredVerifications != 1 || res.PrunedTickets != 1 {
		t.Fatalf("unexpected sweep result: %+v", res)
	}
	if h.repos.Verifications.Len() != 1 {
		t.Fatalf("fresh request must survive the sweep")
	}
}

func TestKeyedMutexReleasesIdleKeys(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	if k.size() != 2 {
		t.Fatalf("expected two held keys")
	}
	unlockA()
	unlockB()
	if k.size() != 0 {
		t.Fatalf("expected idle keys to be released, got %d", k.size())
	}
}
