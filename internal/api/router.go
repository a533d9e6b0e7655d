package api

import (
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig holds settings for the API router.
// Passed from main.go so the router can configure CORS and auth from env vars.
type RouterConfig struct {
	// BackendAPIKey is the key that must be provided in X-API-Key or Authorization: Bearer <key>.
	// If empty, auth middleware is skipped (development mode).
	BackendAPIKey string

	// CorsAllowedOrigins is a comma-separated list of allowed origins.
	// If empty, defaults to "*" (development mode).
	CorsAllowedOrigins string
}

func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (applied to all routes including /health)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// CORS: restrict origins when configured, otherwise allow all (dev mode)
	allowedOrigins := []string{"*"}
	if cfg.CorsAllowedOrigins != "" {
		origins := strings.Split(cfg.CorsAllowedOrigins, ",")
		trimmed := make([]string, 0, len(origins))
		for _, o := range origins {
			if s := strings.TrimSpace(o); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			allowedOrigins = trimmed
		}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check — public, no auth required
	r.Get("/health", h.Health)

	// API routes — protected by API key auth
	r.Route("/v1", func(r chi.Router) {
		// Apply auth middleware only to /v1 routes
		if cfg.BackendAPIKey != "" {
			r.Use(APIKeyAuth(cfg.BackendAPIKey))
		}

		// Projects
		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
		r.Get("/projects/{id}", h.GetProject)
		r.Delete("/projects/{id}", h.DeleteProject)
		r.Post("/projects/{id}/open", h.OpenProject)
		r.Post("/projects/{id}/close", h.CloseProject)

		// Editor state — requires an open session
		r.Get("/projects/{id}/scenes", h.GetScenes)
		r.Post("/projects/{id}/scenes", h.AddScene)
		r.Patch("/projects/{id}/scenes/{sceneId}", h.UpdateScene)
		r.Delete("/projects/{id}/scenes/{sceneId}", h.RemoveScene)
		r.Post("/projects/{id}/scenes/{sceneId}/duplicate", h.DuplicateScene)
		r.Post("/projects/{id}/scenes/{sceneId}/move", h.MoveScene)
		r.Post("/projects/{id}/scenes/{sceneId}/split", h.SplitScene)
		r.Post("/projects/{id}/select", h.SelectScene)

		// History
		r.Get("/projects/{id}/history", h.GetHistory)
		r.Post("/projects/{id}/undo", h.Undo)
		r.Post("/projects/{id}/redo", h.Redo)
		r.Post("/projects/{id}/history/{index}", h.JumpToHistory)
		r.Delete("/projects/{id}/history/{index}", h.DeleteHistoryEntry)
		r.Delete("/projects/{id}/history", h.ClearHistory)

		// Workspace
		r.Get("/workspace/last-project", h.GetLastProject)
		r.Get("/workspace/layout", h.GetLayout)
		r.Put("/workspace/layout", h.SaveLayout)

		// Validation
		r.Get("/projects/{id}/validation", h.GetValidation)
		r.Post("/projects/{id}/validation/fix", h.AutoFix)

		// Preview
		r.Get("/projects/{id}/preview/frame", h.PreviewFrame)

		// Export
		r.Post("/projects/{id}/export", h.StartExport)
		r.Get("/exports/{jobId}/status", h.ExportStatus)
		r.Delete("/exports/{jobId}", h.CancelExport)
		r.Get("/exports/{jobId}/download", h.ExportDownload)
		r.Get("/render/health", h.RenderHealth)
	})

	return r
}
