package tiktok

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/viralforge/campaign-bot/internal/domain"
)

const DefaultBaseURL = "https://api.tikapi.io"

// Client talks to the TikAPI public endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchBio(ctx context.Context, username string) (string, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return "", fmt.Errorf("%w: tiktok username is empty", domain.ErrInvalidInput)
	}
	body, err := c.get(ctx, "/public/check", url.Values{"username": {username}})
	if err != nil {
		return "", err
	}
	sig := gjson.GetBytes(body, "userInfo.user.signature")
	if !sig.Exists() {
		return "", fmt.Errorf("tiktok profile %q has no signature field", username)
	}
	return sig.String(), nil
}

// FetchViewCount returns 0 without calling out when the URL has no numeric
// video id.
func (c *Client) FetchViewCount(ctx context.Context, videoURL string) (int64, error) {
	id := domain.TikTokVideoID(videoURL)
	if id == "" {
		return 0, nil
	}
	body, err := c.get(ctx, "/public/video", url.Values{"id": {id}})
	if err != nil {
		return 0, err
	}
	return gjson.GetBytes(body, "data.video.stats.playCount").Int(), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, errors.New("tikapi key is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tikapi %s returned %d: %s", path, resp.StatusCode, gjson.GetBytes(body, "message").String())
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("tikapi %s returned invalid json", path)
	}
	return body, nil
}
