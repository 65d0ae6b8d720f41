package api

import (
	"net/http"

	"github.com/dom/broadcast-overlay/internal/api/handlers"
	"github.com/dom/broadcast-overlay/internal/api/middleware"
	"github.com/dom/broadcast-overlay/internal/assets"
	"github.com/dom/broadcast-overlay/internal/config"
	"github.com/dom/broadcast-overlay/internal/repository"
	"github.com/dom/broadcast-overlay/internal/store"
	"github.com/dom/broadcast-overlay/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(st *store.Store, hub *websocket.Hub, cache *assets.Cache, repos *repository.Repositories, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	stateHandler := handlers.NewStateHandler(st)
	assetHandler := handlers.NewAssetHandler(cache)
	presetHandler := handlers.NewPresetHandler(repos.Preset, st)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// State pull fallback and bulk replace
		r.Route("/state", func(r chi.Router) {
			r.Get("/", stateHandler.Get)
			r.Put("/", stateHandler.Replace)
			r.Post("/reset", stateHandler.Reset)
		})

		// Asset uploads and serving
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", assetHandler.List)
			r.Post("/{slot}", assetHandler.Upload)
			r.Get("/{slot}/content", assetHandler.Content)
			r.Delete("/{slot}", assetHandler.Delete)
		})

		// Named state presets
		r.Route("/presets", func(r chi.Router) {
			r.Get("/", presetHandler.List)
			r.Post("/", presetHandler.Create)
			r.Post("/{id}/apply", presetHandler.Apply)
			r.Delete("/{id}", presetHandler.Delete)
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
