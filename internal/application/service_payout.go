package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viralforge/campaign-bot/internal/contracts"
	"github.com/viralforge/campaign-bot/internal/domain"
	"github.com/viralforge/campaign-bot/internal/ports"
)

func (s *Service) RequestPayout(ctx context.Context, actor Actor) (domain.PayoutTicket, error) {
	if err := requireUser(actor); err != nil {
		return domain.PayoutTicket{}, err
	}
	if s.community == nil {
		return domain.PayoutTicket{}, fmt.Errorf("%w: community collaborator not configured", domain.ErrChannelCreation)
	}

	unlock := s.locks.Lock(actor.UserID)
	defer unlock()

	sub, err := s.submissions.Get(ctx, actor.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.PayoutTicket{}, domain.ErrNoSubmission
	}
	if err != nil {
		return domain.PayoutTicket{}, err
	}

	username := actor.Username
	if username == "" {
		username = sub.Username
	}
	channelName := domain.TicketChannelName(username)
	if _, exists, err := s.community.FindChannelByName(ctx, actor.GuildID, channelName); err != nil {
		return domain.PayoutTicket{}, fmt.Errorf("%w: %w", domain.ErrChannelCreation, err)
	} else if exists {
		return domain.PayoutTicket{}, domain.ErrDuplicateTicket
	}

	rate := s.payoutRate(sub.CampaignID)
	ticket := domain.PayoutTicket{
		TicketID:     uuid.NewString(),
		UserID:       actor.UserID,
		Username:     username,
		CampaignID:   sub.CampaignID,
		CampaignName: s.campaignName(sub.CampaignID, sub.CampaignName),
		Views:        sub.LatestViews,
		Rate:         rate,
		Amount:       domain.PayoutAmount(sub.LatestViews, rate),
		Status:       domain.TicketStatusPending,
		ChannelName:  channelName,
		CreatedAt:    s.nowFn(),
	}

	grants := []ports.AccessGrant{{UserID: actor.UserID}}
	for _, roleName := range []string{s.cfg.TeamRole, s.cfg.AdminRole} {
		roleID, err := s.community.LookupRole(ctx, actor.GuildID, roleName)
		if err != nil {
			slog.Default().WarnContext(ctx, "payout reviewer role unavailable",
				"module", "application",
				"layer", "application",
				"operation", "request_payout",
				"outcome", "warning",
				"role", roleName,
				"error", err,
			)
			continue
		}
		grants = append(grants, ports.AccessGrant{RoleID: roleID})
	}

	channelID, err := s.community.CreateRestrictedChannel(ctx, actor.GuildID, channelName, grants)
	if err != nil {
		return domain.PayoutTicket{}, fmt.Errorf("%w: %w", domain.ErrChannelCreation, err)
	}
	ticket.ChannelID = channelID
	if err := s.tickets.Put(ctx, ticket); err != nil {
		return domain.PayoutTicket{}, err
	}

	if err := s.community.PostMessage(ctx, channelID, domain.FormatTicketMessage(ticket, mentionFor(actor))); err != nil {
		slog.Default().ErrorContext(ctx, "payout ticket summary not posted",
			"module", "application",
			"layer", "application",
			"operation", "request_payout",
			"outcome", "failure",
			"channel_id", channelID,
			"error", err,
		)
	}
	s.emit(ctx, domain.EventPayoutRequested, actor.RequestID, contracts.PayoutRequestedPayload{
		TicketID:    ticket.TicketID,
		UserID:      ticket.UserID,
		CampaignID:  ticket.CampaignID,
		Views:       ticket.Views,
		Rate:        ticket.Rate.String(),
		Amount:      ticket.Amount.StringFixed(2),
		ChannelID:   ticket.ChannelID,
		RequestedAt: formatTime(ticket.CreatedAt),
	}, ticket.UserID)
	return ticket, nil
}

func (s *Service) payoutRate(campaignID string) decimal.Decimal {
	if c, ok := s.campaigns[campaignID]; ok && c.PayoutRate.Valid {
		return c.PayoutRate.Decimal
	}
	return s.cfg.DefaultPayoutRate
}
