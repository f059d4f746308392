// Package api exposes the library store over HTTP: read endpoints for the
// article listings and a single mutate endpoint dispatching named mutations.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lindylearn/library-store/internal/sqlite"
	"github.com/lindylearn/library-store/pkg/types"
)

// Store is the backend surface the HTTP layer needs.
type Store interface {
	Query(fn func(tx types.ReadTransaction) error) error
	Mutate(name string, args json.RawMessage) error
	PendingMutations() ([]sqlite.Mutation, error)
	Version() (int64, error)
}

// NewRouter creates the HTTP router over the given store.
func NewRouter(store Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{store: store}

	r.Route("/articles", func(r chi.Router) {
		r.Get("/recent", h.listRecent)
		r.Get("/queue", h.listQueue)
		r.Get("/favorites", h.listFavorites)
		r.Get("/{id}", h.getArticle)
	})
	r.Route("/topics", func(r chi.Router) {
		r.Get("/", h.listTopics)
		r.Get("/{id}/articles", h.listTopicArticles)
	})
	r.Get("/progress", h.getProgress)
	r.Get("/sync/pending", h.listPending)
	r.Post("/mutate", h.mutate)

	return r
}

// writeJSON writes v with a 200 status.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// writeError maps store errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidSort),
		errors.Is(err, types.ErrUnknownName):
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
