package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/chefknight/internal/wikiservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *wikiservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Repository status and sync.
	r.Get("/status", h.Status)
	r.Post("/pull", h.Pull)
	r.Post("/push", h.Push)
	r.Get("/history", h.History)

	// Content.
	r.Get("/categories", h.Categories)
	r.Get("/content/{category}", h.ListDocuments)
	r.Get("/content/{category}/{stem}", h.GetDocument)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
