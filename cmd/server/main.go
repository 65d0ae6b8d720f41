package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/broadcast-overlay/internal/api"
	"github.com/dom/broadcast-overlay/internal/assets"
	"github.com/dom/broadcast-overlay/internal/config"
	"github.com/dom/broadcast-overlay/internal/repository"
	"github.com/dom/broadcast-overlay/internal/repository/memory"
	"github.com/dom/broadcast-overlay/internal/repository/postgres"
	"github.com/dom/broadcast-overlay/internal/store"
	"github.com/dom/broadcast-overlay/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize repositories. Without a database the server still runs,
	// holding state in memory only; it is the operator's choice to trade
	// restart durability away.
	var repos *repository.Repositories
	if cfg.DatabaseURL != "" {
		db, err := postgres.NewConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		repos = postgres.NewRepositories(db)
	} else {
		log.Println("DATABASE_URL not set, running with in-memory persistence")
		repos = memory.NewRepositories()
	}

	ctx := context.Background()

	// Initialize state store
	st := store.New(repos.State)
	st.LoadOrInit(ctx)

	// Initialize asset metadata cache
	cache := assets.NewCache(repos.Asset, cfg.MaxAssetBytes)
	cache.Load(ctx)

	// Initialize WebSocket hub and wire it to store mutations
	hub := websocket.NewHub(st)
	st.SetListener(hub)
	go hub.Run()

	// Initialize router
	router := api.NewRouter(st, hub, cache, repos, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	hub.Stop()

	log.Println("Server stopped")
}
