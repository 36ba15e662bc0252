package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wildbutton/api"
)

func SetupRouter(h *api.Handler, signingSecret string) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.HandleRoot)
	r.Get("/health", h.HandleHealthCheck)

	r.Get("/install", h.HandleSlackInstall)
	r.Get("/auth", h.HandleSlackOAuthCallback)

	r.Group(func(r chi.Router) {
		r.Use(api.VerifySlackSignature(signingSecret))
		r.Post("/commands", h.HandleSlackCommand)
		r.Post("/interactive", h.HandleInteractive)
		r.Post("/events", h.HandleSlackEvents)
	})

	return r
}
