package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leadforge/leadforge/internal/api"
	"github.com/leadforge/leadforge/internal/api/handlers"
	"github.com/leadforge/leadforge/internal/api/middleware"
)

type RouterConfig struct {
	APIToken         string
	LeadHandler      *handlers.LeadHandler
	KnowledgeHandler *handlers.KnowledgeHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 25 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.APIToken))

		r.Route("/leads", func(r chi.Router) {
			r.Post("/analyze", cfg.LeadHandler.Analyze)
			r.Post("/analyze/bulk", cfg.LeadHandler.AnalyzeBulk)
			r.Get("/", cfg.LeadHandler.List)
			r.Get("/stats", cfg.LeadHandler.Stats)
			r.Get("/{id}", cfg.LeadHandler.Get)
			r.Delete("/{id}", cfg.LeadHandler.Delete)
		})

		r.Route("/analyses", func(r chi.Router) {
			r.Get("/", cfg.LeadHandler.ListAnalyses)
			r.Get("/{id}", cfg.LeadHandler.GetAnalysis)
		})

		r.Route("/knowledge", func(r chi.Router) {
			r.Post("/documents", cfg.KnowledgeHandler.Upload)
			r.Get("/documents", cfg.KnowledgeHandler.List)
			r.Get("/documents/{id}", cfg.KnowledgeHandler.Get)
			r.Delete("/documents/{id}", cfg.KnowledgeHandler.Delete)
			r.Post("/search", cfg.KnowledgeHandler.Search)
			r.Get("/stats", cfg.KnowledgeHandler.Stats)
		})
	})

	return r
}
