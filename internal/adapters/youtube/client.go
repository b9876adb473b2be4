package youtube

import (
	"context"
	"fmt"
	"strings"

	"github.com/viralforge/campaign-bot/internal/domain"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// Client reads channel descriptions and video statistics from the YouTube
// Data API v3.
type Client struct {
	svc *yt.Service
}

func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is not configured")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// FetchBio resolves a legacy username first and falls back to the @handle.
func (c *Client) FetchBio(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: youtube username is empty", domain.ErrInvalidInput)
	}
	if !strings.HasPrefix(username, "@") {
		resp, err := c.svc.Channels.List([]string{"snippet"}).ForUsername(username).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("youtube channels.list forUsername: %w", err)
		}
		if desc, ok := firstDescription(resp); ok {
			return desc, nil
		}
	}
	resp, err := c.svc.Channels.List([]string{"snippet"}).ForHandle(strings.TrimPrefix(username, "@")).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("youtube channels.list forHandle: %w", err)
	}
	if desc, ok := firstDescription(resp); ok {
		return desc, nil
	}
	return "", fmt.Errorf("%w: youtube channel %q", domain.ErrNotFound, username)
}

func (c *Client) FetchViewCount(ctx context.Context, videoURL string) (int64, error) {
	id := domain.YouTubeVideoID(videoURL)
	if id == "" {
		return 0, nil
	}
	resp, err := c.svc.Videos.List([]string{"statistics"}).Id(id).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("youtube videos.list: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Statistics == nil {
		return 0, fmt.Errorf("%w: youtube video %q", domain.ErrNotFound, id)
	}
	return int64(resp.Items[0].Statistics.ViewCount), nil
}

func firstDescription(resp *yt.ChannelListResponse) (string, bool) {
	if resp == nil || len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", false
	}
	return resp.Items[0].Snippet.Description, true
}
