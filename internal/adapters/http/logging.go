package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func apiLogger() *slog.Logger {
	return slog.Default().With(
		"module", "leaderboard_api",
		"layer", "adapter",
	)
}

// requestFields tags a log line with the route and any campaign or admin it
// concerns.
func requestFields(r *http.Request) []any {
	fields := []any{"request_id", requestIDFromContext(r.Context())}
	if route := chi.RouteContext(r.Context()); route != nil && route.RoutePattern() != "" {
		fields = append(fields, "route", route.RoutePattern())
	}
	if campaignID := chi.URLParam(r, "campaign_id"); campaignID != "" {
		fields = append(fields, "campaign_id", campaignID)
	}
	if subject := subjectFromContext(r.Context()); subject != "" {
		fields = append(fields, "admin_subject", subject)
	}
	return fields
}

func logRequestFailure(r *http.Request, operation string, statusCode int, code string, err error) {
	fields := append([]any{
		"operation", operation,
		"outcome", "failure",
		"status_code", statusCode,
		"error_code", code,
	}, requestFields(r)...)
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	logAt(r.Context(), statusCode, "leaderboard api call failed", fields)
}

func logAt(ctx context.Context, statusCode int, msg string, fields []any) {
	switch {
	case statusCode >= 500:
		apiLogger().ErrorContext(ctx, msg, fields...)
	case statusCode >= 400:
		apiLogger().WarnContext(ctx, msg, fields...)
	default:
		apiLogger().InfoContext(ctx, msg, fields...)
	}
}
