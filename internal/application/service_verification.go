package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/viralforge/campaign-bot/internal/contracts"
	"github.com/viralforge/campaign-bot/internal/domain"
)

func (s *Service) BeginVerification(ctx context.Context, actor Actor, platform, username string) (domain.VerificationRequest, error) {
	if err := requireUser(actor); err != nil {
		return domain.VerificationRequest{}, err
	}
	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return domain.VerificationRequest{}, err
	}
	if _, err := s.platformClient(p); err != nil {
		return domain.VerificationRequest{}, err
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return domain.VerificationRequest{}, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(actor.UserID)
	defer unlock()

	now := s.nowFn()
	req := domain.VerificationRequest{
		UserID:      actor.UserID,
		Platform:    p,
		Username:    username,
		Code:        domain.VerificationCode(actor.UserID, p),
		RequestedAt: now,
		ExpiresAt:   now.Add(s.cfg.VerificationTTL),
	}
	if err := s.verifications.Put(ctx, req); err != nil {
		return domain.VerificationRequest{}, err
	}
	s.emit(ctx, domain.EventVerificationRequested, actor.RequestID, contracts.VerificationRequestedPayload{
		UserID:      req.UserID,
		Platform:    string(req.Platform),
		Username:    req.Username,
		RequestedAt: formatTime(req.RequestedAt),
		ExpiresAt:   formatTime(req.ExpiresAt),
	}, req.UserID)
	return req, nil
}

// ConfirmVerification checks the claimed profile for the pending code. The
// request survives fetch and match failures so the user can retry.
func (s *Service) ConfirmVerification(ctx context.Context, actor Actor, platform, username string) (VerifiedResult, error) {
	if err := requireUser(actor); err != nil {
		return VerifiedResult{}, err
	}

	unlock := s.locks.Lock(actor.UserID)
	defer unlock()

	req, err := s.verifications.Get(ctx, actor.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return VerifiedResult{}, domain.ErrNoPendingRequest
	}
	if err != nil {
		return VerifiedResult{}, err
	}
	if req.Expired(s.nowFn()) {
		_ = s.verifications.Delete(ctx, actor.UserID)
		return VerifiedResult{}, fmt.Errorf("%w: request expired, run /verify again", domain.ErrNoPendingRequest)
	}

	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return VerifiedResult{}, err
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		username = req.Username
	}
	if err := s.allow(ctx, "confirmverify", actor.UserID); err != nil {
		return VerifiedResult{}, err
	}

	bio, err := s.fetchBio(ctx, p, username)
	if err != nil {
		return VerifiedResult{}, err
	}
	if !domain.BioContainsCode(bio, req.Code) {
		return VerifiedResult{}, domain.ErrCodeNotFound
	}

	out := VerifiedResult{Request: req}
	if s.community != nil {
		if err := s.community.GrantRole(ctx, actor.GuildID, actor.UserID, s.cfg.VerifiedRole); err != nil {
			out.RoleWarning = fmt.Sprintf("verified, but the %q role could not be assigned", s.cfg.VerifiedRole)
			slog.Default().WarnContext(ctx, "verified role not granted",
				"module", "application",
				"layer", "application",
				"operation", "confirm_verification",
				"outcome", "warning",
				"user_id", actor.UserID,
				"role", s.cfg.VerifiedRole,
				"error", err,
			)
		} else {
			out.RoleGranted = true
		}
	}
	if err := s.verifications.Delete(ctx, actor.UserID); err != nil {
		return VerifiedResult{}, err
	}
	s.emit(ctx, domain.EventVerificationConfirmed, actor.RequestID, contracts.VerificationConfirmedPayload{
		UserID:      actor.UserID,
		Platform:    string(p),
		Username:    username,
		RoleGranted: out.RoleGranted,
		ConfirmedAt: formatTime(s.nowFn()),
	}, actor.UserID)
	return out, nil
}
