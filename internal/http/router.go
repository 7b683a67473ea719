// Package http wires the API routes and request middleware.
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ragserver/internal/handlers"
	"ragserver/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Assistant handlers.Assistant
	Documents handlers.DocumentService
	Search    handlers.SearchService
	Tools     service.ToolConnector

	PingDatabase func(ctx context.Context) error
	LLMAvailable func(ctx context.Context) bool
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	chat := handlers.NewChatHandler(deps.Assistant, deps.Tools)
	documents := handlers.NewDocumentsHandler(deps.Documents)
	search := handlers.NewSearchHandler(deps.Search)
	health := handlers.NewHealthHandler(deps.PingDatabase, deps.LLMAvailable)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat/message", chat.Message)
		r.Get("/chat/tools", chat.Tools)

		r.Post("/documents/upload", documents.Upload)
		r.Get("/documents", documents.List)
		r.Get("/documents/{title}/versions", documents.Versions)
		r.Delete("/documents/{id}", documents.Delete)

		r.Post("/search", search.Search)
		r.Delete("/search/cache", search.InvalidateCache)

		r.Get("/health", health.Check)
	})

	return r
}
