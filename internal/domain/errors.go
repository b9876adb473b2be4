package domain

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidPlatform  = errors.New("invalid platform")
	ErrNoPendingRequest = errors.New("no pending verification request")
	ErrCodeNotFound     = errors.New("verification code not found in profile")
	ErrNoSubmission     = errors.New("no video submission")
	ErrDuplicateTicket  = errors.New("payout ticket already open")
	ErrChannelCreation  = errors.New("payout channel creation failed")
	ErrExternalFetch    = errors.New("external fetch failed")
	ErrPermission       = errors.New("insufficient bot permissions")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limit exceeded")
)
