package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"tiktok", " TikTok ", "YOUTUBE"} {
		if _, err := ParsePlatform(raw); err != nil {
			t.Fatalf("expected %q to parse, got %v", raw, err)
		}
	}
	if _, err := ParsePlatform("twitch"); !errors.Is(err, ErrInvalidPlatform) {
		t.Fatalf("expected ErrInvalidPlatform, got %v", err)
	}
}

func TestVerificationCodeAndMatch(t *testing.T) {
	t.Parallel()

	code := VerificationCode("42", PlatformTikTok)
	if code != "42-TIKTOK" {
		t.Fatalf("unexpected code %q", code)
	}
	if !BioContainsCode("  clips daily | 42-tiktok  ", code) {
		t.Fatalf("expected case-insensitive match")
	}
	if BioContainsCode("clips daily", code) {
		t.Fatalf("expected no match")
	}
	if BioContainsCode("anything", "  ") {
		t.Fatalf("empty code must never match")
	}
}

func TestVerificationRequestExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	req := VerificationRequest{ExpiresAt: now.Add(time.Minute)}
	if req.Expired(now) {
		t.Fatalf("request should still be live")
	}
	if !req.Expired(now.Add(time.Minute)) {
		t.Fatalf("request should be expired at its deadline")
	}
	if (VerificationRequest{}).Expired(now) {
		t.Fatalf("zero deadline never expires")
	}
}

func TestTikTokVideoID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://www.tiktok.com/@user/video/7301234567890123456":           "7301234567890123456",
		"https://www.tiktok.com/@user/video/7301234567890123456?is_from=x": "7301234567890123456",
		"https://www.tiktok.com/@user/video/abc":                           "",
		"https://www.tiktok.com/@user":                                     "",
	}
	for in, want := range cases {
		if got := TikTokVideoID(in); got != want {
			t.Fatalf("TikTokVideoID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestYouTubeVideoID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":   "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=3":              "dQw4w9WgXcQ",
		"https://youtube.com/shorts/abcDEF12345":        "abcDEF12345",
		"https://m.youtube.com/embed/abcDEF12345/extra": "abcDEF12345",
		"https://example.com/watch?v=nope":              "",
	}
	for in, want := range cases {
		if got := YouTubeVideoID(in); got != want {
			t.Fatalf("YouTubeVideoID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateVideoURL(t *testing.T) {
	t.Parallel()

	if _, err := ValidateVideoURL("https://youtu.be/x"); err != nil {
		t.Fatalf("expected valid url, got %v", err)
	}
	for _, raw := range []string{"", "not a url", "ftp://host/file"} {
		if _, err := ValidateVideoURL(raw); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", raw, err)
		}
	}
}

func TestRankSubmissionsOrderAndLimit(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []VideoSubmission{
		{UserID: "c", LatestViews: 50, SubmittedAt: base},
		{UserID: "b", LatestViews: 80, SubmittedAt: base.Add(time.Hour)},
		{UserID: "a", LatestViews: 80, SubmittedAt: base.Add(2 * time.Hour)},
		{UserID: "e", LatestViews: 80, SubmittedAt: base.Add(time.Hour)},
		{UserID: "d", LatestViews: 100, SubmittedAt: base},
	}
	got := RankSubmissions(rows, 4)
	want := []string{"d", "b", "e", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].UserID != id || got[i].Rank != i+1 {
			t.Fatalf("position %d: got %+v, want user %s", i, got[i], id)
		}
	}
}

func TestFormatLeaderboards(t *testing.T) {
	t.Parallel()

	entries := []LeaderboardEntry{{Rank: 1, VideoURL: "https://youtu.be/x", Platform: PlatformYouTube, Views: 100, CampaignName: "Alpha"}}
	campaign := FormatCampaignLeaderboard("Alpha", entries)
	if !strings.HasPrefix(campaign, "**📊 Alpha Leaderboard (Top Videos):**\n\n") {
		t.Fatalf("unexpected header: %q", campaign)
	}
	if !strings.Contains(campaign, "**#1** - [https://youtu.be/x](https://youtu.be/x) on **YouTube** - **100 Views**") {
		t.Fatalf("unexpected entry line: %q", campaign)
	}
	global := FormatGlobalLeaderboard(entries)
	if !strings.Contains(global, "🎯 Campaign: **Alpha**") {
		t.Fatalf("expected campaign attribution: %q", global)
	}
}

func TestPayoutAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		views int64
		rate  string
		want  string
	}{
		{1000, "0.001", "1.00"},
		{5000, "0.001", "5.00"},
		{1234, "0.0025", "3.09"},
		{0, "0.5", "0.00"},
	}
	for _, tc := range cases {
		got := PayoutAmount(tc.views, decimal.RequireFromString(tc.rate)).StringFixed(2)
		if got != tc.want {
			t.Fatalf("PayoutAmount(%d, %s) = %s, want %s", tc.views, tc.rate, got, tc.want)
		}
	}
}

func TestTicketChannelNameAndMessage(t *testing.T) {
	t.Parallel()

	if got := TicketChannelName(" ClipKing "); got != "payout-clipking" {
		t.Fatalf("unexpected channel name %q", got)
	}
	msg := FormatTicketMessage(PayoutTicket{Username: "ClipKing", Views: 5000, Amount: decimal.RequireFromString("5"), CampaignName: "Alpha"}, "<@1>")
	for _, want := range []string{"<@1>", "**Views:** 5000", "$5.00", "/approvepayout @ClipKing", "/closepayout @ClipKing"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("ticket message missing %q: %q", want, msg)
		}
	}
}
