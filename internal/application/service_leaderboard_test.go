package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/viralforge/campaign-bot/internal/domain"
)

func TestPublishCampaignTopTenAndSkipsEmptyCampaign(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{Campaigns: []CampaignConfig{
		{ID: "c1", Name: "Alpha", LeaderboardChannelID: "lb-1"},
		{ID: "c2", Name: "Empty", LeaderboardChannelID: "lb-2"},
	}})
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		url := fmt.Sprintf("https://youtu.be/v%02d", i)
		h.youtube.setViews(url, int64(i*10))
		if _, err := h.svc.SubmitVideo(ctx, actorIn(fmt.Sprintf("u%02d", i), "c1"), "youtube", url); err != nil {
			t.Fatalf("SubmitVideo: %v", err)
		}
	}

	report, err := h.svc.PublishLeaderboards(ctx)
	if err != nil {
		t.Fatalf("PublishLeaderboards: %v", err)
	}
	posts := h.community.postsTo("lb-1")
	if len(posts) != 1 {
		t.Fatalf("expected one campaign post, got %d", len(posts))
	}
	content := posts[0].content
	if !strings.Contains(content, "**#1** - [https://youtu.be/v14]") || !strings.Contains(content, "**#10**") || strings.Contains(content, "**#11**") {
		t.Fatalf("unexpected leaderboard content: %q", content)
	}
	if !strings.Contains(content, "**140 Views**") || strings.Contains(content, "**40 Views**") {
		t.Fatalf("expected top 10 by views: %q", content)
	}
	if len(h.community.postsTo("lb-2")) != 0 {
		t.Fatalf("empty campaign must not be posted")
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "c2" {
		t.Fatalf("expected c2 skipped, got %+v", report)
	}

	entries, err := h.svc.Leaderboard(ctx, "c1")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 10 || entries[0].Views != 140 || entries[9].Views != 50 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestGlobalLeaderboardMergesCampaigns(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{
		Campaigns: []CampaignConfig{
			{ID: "A", Name: "Alpha", LeaderboardChannelID: "lb-a"},
			{ID: "B", Name: "Beta", LeaderboardChannelID: "lb-b"},
		},
		GlobalLeaderboardChannelID: "global",
	})
	ctx := context.Background()
	submit := func(user, guild, url string, views int64) {
		h.youtube.setViews(url, views)
		if _, err := h.svc.SubmitVideo(ctx, actorIn(user, guild), "youtube", url); err != nil {
			t.Fatalf("SubmitVideo: %v", err)
		}
	}
	submit("1", "A", "https://youtu.be/a1", 100)
	submit("2", "A", "https://youtu.be/a2", 50)
	submit("3", "B", "https://youtu.be/b1", 80)

	entries, err := h.svc.GlobalLeaderboard(ctx)
	if err != nil {
		t.Fatalf("GlobalLeaderboard: %v", err)
	}
	want := []struct {
		views    int64
		campaign string
	}{{100, "Alpha"}, {80, "Beta"}, {50, "Alpha"}}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, w := range want {
		if entries[i].Views != w.views || entries[i].CampaignName != w.campaign {
			t.Fatalf("entry %d: got %+v, want %+v", i, entries[i], w)
		}
	}

	if _, err := h.svc.PublishLeaderboards(ctx); err != nil {
		t.Fatalf("PublishLeaderboards: %v", err)
	}
	global := h.community.postsTo("global")
	if len(global) != 1 || !strings.Contains(global[0].content, "🎯 Campaign: **Beta**") {
		t.Fatalf("unexpected global post: %+v", global)
	}
}

func TestPublishContinuesAfterChannelFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{
		Campaigns: []CampaignConfig{
			{ID: "A", Name: "Alpha", LeaderboardChannelID: "lb-a"},
			{ID: "B", Name: "Beta", LeaderboardChannelID: "lb-b"},
		},
		GlobalLeaderboardChannelID: "global",
	})
	ctx := context.Background()
	_, _ = h.svc.SubmitVideo(ctx, actorIn("1", "A"), "youtube", "https://youtu.be/a1")
	_, _ = h.svc.SubmitVideo(ctx, actorIn("2", "B"), "youtube", "https://youtu.be/b1")
	h.community.purgeErr["lb-a"] = domain.ErrPermission
	h.community.postErr["lb-a"] = domain.ErrPermission

	report, err := h.svc.PublishLeaderboards(ctx)
	if err != nil {
		t.Fatalf("PublishLeaderboards: %v", err)
	}
	if _, ok := report.Failures["lb-a"]; !ok {
		t.Fatalf("expected lb-a failure recorded: %+v", report)
	}
	if len(h.community.postsTo("lb-b")) != 1 || len(h.community.postsTo("global")) != 1 {
		t.Fatalf("other channels must still be published")
	}
}

func TestPublishSingleInFlight(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{
		Campaigns:                  []CampaignConfig{{ID: "A", Name: "Alpha", LeaderboardChannelID: "lb-a"}},
		GlobalLeaderboardChannelID: "global",
	})
	ctx := context.Background()
	_, _ = h.svc.SubmitVideo(ctx, actorIn("1", "A"), "youtube", "https://youtu.be/a1")

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h.community.onPurge = func() {
		once.Do(func() { close(started) })
		<-release
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = h.svc.PublishLeaderboards(ctx)
	}()
	<-started
	admin := actorIn("9", "A")
	admin.IsAdmin = true
	go func() {
		defer wg.Done()
		_, _ = h.svc.ForceUpdate(ctx, admin)
	}()
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := h.community.purgeCount(); got != 2 {
		t.Fatalf("expected one purge per channel, got %d", got)
	}
}

func TestForceUpdateRequiresAdmin(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	actor := actorIn("1", "g1")
	actor.IsTeam = true
	if _, err := h.svc.ForceUpdate(context.Background(), actor); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLeaderboardUnknownCampaign(t *testing.T) {
	t.Parallel()

	h := newHarness(Config{})
	if _, err := h.svc.Leaderboard(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
