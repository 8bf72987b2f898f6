package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/or4cl3/forge/internal/api/handlers"
	"github.com/or4cl3/forge/internal/api/middleware"
	"github.com/or4cl3/forge/internal/config"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.StudioExtractor)
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Studio", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.Catalog)

		// Workspaces (live editing sessions)
		r.Route("/workspaces", func(r chi.Router) {
			r.Get("/", h.ListWorkspaces)
			r.Post("/", h.CreateWorkspace)
			r.Route("/{workspaceId}", func(r chi.Router) {
				r.Get("/", h.GetWorkspace)
				r.Delete("/", h.DeleteWorkspace)

				r.Put("/kind", h.SetKind)
				r.Patch("/config", h.PatchConfig)
				r.Post("/config/toggle", h.ToggleSet)
				r.Patch("/websearch", h.PatchWebSearch)

				r.Get("/status", h.GetStatus)
				r.Put("/biosignal", h.PutBioSignal)

				r.Post("/describe", h.Describe)
				r.Post("/synthesize", h.Synthesize)
				r.Get("/events", h.WorkspaceEvents)

				r.Post("/narrative", h.StreamNarrative)
				r.Post("/simulate", h.StreamSimulation)
				r.Post("/dilemma", h.RunDilemma)

				r.Get("/export", h.ExportConfig)
				r.Post("/import", h.ImportConfig)
			})
		})

		// Assets (the gallery)
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.ListAssets)
			r.Post("/", h.SaveAsset)
			r.Route("/{assetName}", func(r chi.Router) {
				r.Get("/", h.GetAsset)
				r.Delete("/", h.DeleteAsset)
				r.Post("/load", h.LoadAssetVersion)

				r.Route("/versions", func(r chi.Router) {
					r.Get("/", h.ListAssetVersions)
					r.Get("/{version}", h.GetAssetVersion)
				})
			})
		})

		// Studio settings
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.PutSettings)
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "forge-server",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
			"service": "forge-server",
		})
	}
}
