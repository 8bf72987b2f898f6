// Package server provides the public entry point for initializing the
// Forge server: store selection, generation service selection, the
// workspace manager, and the HTTP router, wired from environment
// configuration.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/or4cl3/forge/internal/api"
	"github.com/or4cl3/forge/internal/api/handlers"
	"github.com/or4cl3/forge/internal/config"
	"github.com/or4cl3/forge/internal/gensvc"
	"github.com/or4cl3/forge/internal/store"
	"github.com/or4cl3/forge/internal/telemetry"
	"github.com/or4cl3/forge/internal/workspace"
)

// Server holds the initialized Forge components.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the asset/settings store selected by configuration.
	Store store.Store

	// Workspaces is the live workspace manager.
	Workspaces *workspace.Manager

	// Janitor closes idle workspaces; start it with a cancellable
	// context.
	Janitor *workspace.Janitor

	// Gen is the generation service (Gemini, or the offline fake when
	// no API key is configured).
	Gen gensvc.Service

	// Config is the loaded server configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the server with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	dataStore, err := newStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	gen, err := newGenService(ctx, cfg.Generate)
	if err != nil {
		dataStore.Close()
		return nil, fmt.Errorf("init generation service: %w", err)
	}
	log.Info().Str("service", gen.Name()).Msg("Generation service initialized")

	ws := workspace.NewManager(gen, cfg.Generate.Debounce, log.Logger)
	janitor := workspace.NewJanitor(ws, cfg.Workspace.SweepInterval, cfg.Workspace.IdleTTL)

	h := handlers.New(dataStore, ws, gen)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Workspaces:   ws,
		Janitor:      janitor,
		Gen:          gen,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

// Close releases everything the server owns, in dependency order.
func (s *Server) Close() {
	s.Workspaces.Close()
	if err := s.Gen.Close(); err != nil {
		log.Warn().Err(err).Msg("Generation service close failed")
	}
	if err := s.Store.Close(); err != nil {
		log.Warn().Err(err).Msg("Store close failed")
	}
}

func newStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		s, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.DBPath).Msg("SQLite store initialized")
		return s, nil
	case "memory", "":
		s := store.NewMemoryStore(cfg.DataDir)
		log.Info().Str("dir", cfg.DataDir).Msg("In-memory store initialized")
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func newGenService(ctx context.Context, cfg config.GenerateConfig) (gensvc.Service, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, using deterministic offline generation")
		return gensvc.NewFake(), nil
	}
	return gensvc.NewGemini(ctx, cfg.APIKey, cfg.Model, log.Logger)
}
