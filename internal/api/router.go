package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/codemark/codemark/internal/noteservice"
	"github.com/codemark/codemark/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls Bearer token enforcement. broker, if non-nil, powers
// mutation events and is mounted as the SSE endpoint at GET /events.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Post("/notes/{id}/move", h.MoveNote)
	r.Get("/notes/{id}/backlinks", h.Backlinks)
	r.Get("/notes/{id}/children", h.Children)
	r.Get("/notes/{id}/related", h.Related)

	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)
	r.Get("/orphans", h.Orphans)
	r.Get("/popular", h.Popular)
	r.Get("/project", h.Project)

	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
