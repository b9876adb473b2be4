package application

import (
	"context"
	"log/slog"
)

type SweepResult struct {
	ExpiredVerifications int
	PrunedTickets        int
}

// SweepExpired drops stale verification requests and old ticket records.
func (s *Service) SweepExpired(ctx context.Context) (SweepResult, error) {
	now := s.nowFn()
	var out SweepResult
	n, err := s.verifications.DeleteExpired(ctx, now)
	if err != nil {
		return out, err
	}
	out.ExpiredVerifications = n
	if s.tickets != nil {
		n, err = s.tickets.DeleteCreatedBefore(ctx, now.Add(-s.cfg.TicketRetention))
		if err != nil {
			return out, err
		}
		out.PrunedTickets = n
	}
	if out.ExpiredVerifications > 0 || out.PrunedTickets > 0 {
		slog.Default().InfoContext(ctx, "housekeeping sweep",
			"module", "application",
			"layer", "application",
			"operation", "sweep_expired",
			"outcome", "success",
			"expired_verifications", out.ExpiredVerifications,
			"pruned_tickets", out.PrunedTickets,
		)
	}
	return out, nil
}
