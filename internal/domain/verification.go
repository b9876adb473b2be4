package domain

import (
	"strings"
	"time"
)

type VerificationRequest struct {
	UserID      string
	Platform    Platform
	Username    string
	Code        string
	RequestedAt time.Time
	ExpiresAt   time.Time
}

// VerificationCode is deterministic in (userID, platform).
func VerificationCode(userID string, platform Platform) string {
	return strings.TrimSpace(userID) + "-" + strings.ToUpper(string(platform))
}

// BioContainsCode reports whether the profile text carries the code,
// ignoring case and surrounding whitespace on both sides.
func BioContainsCode(bio, code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return false
	}
	return strings.Contains(strings.ToLower(strings.TrimSpace(bio)), code)
}

func (r VerificationRequest) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}
