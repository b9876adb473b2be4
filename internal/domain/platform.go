package domain

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformTikTok  Platform = "tiktok"
	PlatformYouTube Platform = "youtube"
)

var platformLabels = map[Platform]string{
	PlatformTikTok:  "TikTok",
	PlatformYouTube: "YouTube",
}

// ParsePlatform accepts any casing and surrounding whitespace.
func ParsePlatform(raw string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := platformLabels[p]; !ok {
		return "", fmt.Errorf("%w: %q (use tiktok or youtube)", ErrInvalidPlatform, raw)
	}
	return p, nil
}

func SupportedPlatforms() []Platform {
	return []Platform{PlatformTikTok, PlatformYouTube}
}

func (p Platform) Label() string {
	if label, ok := platformLabels[p]; ok {
		return label
	}
	return string(p)
}

func (p Platform) String() string { return string(p) }
