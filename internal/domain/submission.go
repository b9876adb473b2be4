package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type VideoSubmission struct {
	UserID       string
	Username     string
	CampaignID   string
	CampaignName string
	Platform     Platform
	VideoURL     string
	SubmittedAt  time.Time
	InitialViews int64
	LatestViews  int64
	RefreshedAt  time.Time
}

func ValidateVideoURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: video url is required", ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: video url must be an http(s) link", ErrInvalidInput)
	}
	return raw, nil
}

// TikTokVideoID returns the numeric id after "/video/", or "" when the URL
// carries none.
func TikTokVideoID(videoURL string) string {
	_, rest, ok := strings.Cut(videoURL, "/video/")
	if !ok {
		return ""
	}
	if i := strings.IndexAny(rest, "?#/"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return ""
	}
	if _, err := strconv.ParseUint(rest, 10, 64); err != nil {
		return ""
	}
	return rest
}

// YouTubeVideoID understands watch, youtu.be, shorts and embed links.
func YouTubeVideoID(videoURL string) string {
	u, err := url.Parse(strings.TrimSpace(videoURL))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	path := strings.Trim(u.Path, "/")
	switch host {
	case "youtu.be":
		id, _, _ := strings.Cut(path, "/")
		return id
	case "youtube.com", "music.youtube.com":
		if path == "watch" {
			return u.Query().Get("v")
		}
		for _, prefix := range []string{"shorts/", "embed/", "live/"} {
			if strings.HasPrefix(path, prefix) {
				id, _, _ := strings.Cut(strings.TrimPrefix(path, prefix), "/")
				return id
			}
		}
	}
	return ""
}
