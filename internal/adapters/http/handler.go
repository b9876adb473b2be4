package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/campaign-bot/internal/application"
	"github.com/viralforge/campaign-bot/internal/contracts"
	"github.com/viralforge/campaign-bot/internal/domain"
)

// ReadinessFunc reports whether the gateway session and backing stores are up.
type ReadinessFunc func(ctx context.Context) error

// operatorActorID stands in for admin tokens that carry no subject.
const operatorActorID = "http-operator"

type Handler struct {
	service  *application.Service
	verifier *AdminTokenVerifier
	ready    ReadinessFunc
}

func NewHandler(service *application.Service, verifier *AdminTokenVerifier, ready ReadinessFunc) *Handler {
	return &Handler{service: service, verifier: verifier, ready: ready}
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logRequestFailure(r, "readiness", http.StatusServiceUnavailable, "not_ready", err)
			writeError(w, http.StatusServiceUnavailable, "not_ready", err.Error(), requestIDFromContext(r.Context()))
			return
		}
	}
	writeSuccess(w, http.StatusOK, "ready", nil)
}

func (h *Handler) globalLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GlobalLeaderboard(r.Context())
	if err != nil {
		h.fail(w, r, "global_leaderboard", err)
		return
	}
	writeSuccess(w, http.StatusOK, "", contracts.LeaderboardResponse{Entries: toEntryResponses(entries)})
}

func (h *Handler) campaignLeaderboard(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaign_id")
	entries, err := h.service.Leaderboard(r.Context(), campaignID)
	if err != nil {
		h.fail(w, r, "campaign_leaderboard", err)
		return
	}
	resp := contracts.LeaderboardResponse{CampaignID: campaignID, Entries: toEntryResponses(entries)}
	if len(entries) > 0 {
		resp.CampaignName = entries[0].CampaignName
	}
	writeSuccess(w, http.StatusOK, "", resp)
}

func (h *Handler) refreshLeaderboards(w http.ResponseWriter, r *http.Request) {
	userID := subjectFromContext(r.Context())
	if userID == "" {
		userID = operatorActorID
	}
	actor := application.Actor{
		UserID:    userID,
		IsAdmin:   true,
		RequestID: requestIDFromContext(r.Context()),
	}
	report, err := h.service.ForceUpdate(r.Context(), actor)
	if err != nil {
		h.fail(w, r, "refresh_leaderboards", err)
		return
	}
	resp := contracts.PublishReportResponse{Posted: report.Posted, Skipped: report.Skipped, Failures: report.Failures}
	if resp.Posted == nil {
		resp.Posted = []string{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []string{}
	}
	writeSuccess(w, http.StatusOK, "leaderboards refreshed", resp)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, code, message := mapDomainError(err)
	logRequestFailure(r, operation, status, code, err)
	writeError(w, status, code, message, requestIDFromContext(r.Context()))
}

func toEntryResponses(entries []domain.LeaderboardEntry) []contracts.LeaderboardEntryResponse {
	out := make([]contracts.LeaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, contracts.LeaderboardEntryResponse{
			Rank:         e.Rank,
			UserID:       e.UserID,
			Username:     e.Username,
			CampaignID:   e.CampaignID,
			CampaignName: e.CampaignName,
			Platform:     string(e.Platform),
			VideoURL:     e.VideoURL,
			Views:        e.Views,
		})
	}
	return out
}
