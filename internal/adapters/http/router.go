package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok", nil) })
	r.Get("/readyz", handler.readiness)

	r.Route("/v1/leaderboards", func(r chi.Router) {
		r.Get("/", handler.globalLeaderboard)
		r.Get("/{campaign_id}", handler.campaignLeaderboard)
		r.Group(func(r chi.Router) {
			r.Use(handler.adminMiddleware)
			r.Post("/refresh", handler.refreshLeaderboards)
		})
	})
	return r
}
