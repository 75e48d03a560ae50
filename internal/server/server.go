// Package server wires the data store, provider registry, and playground
// manager behind the promptdeck HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/auth"
	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/home"
	"github.com/promptdeck/promptdeck/internal/ingest"
	"github.com/promptdeck/promptdeck/internal/playground"
	"github.com/promptdeck/promptdeck/internal/providers"
	"github.com/promptdeck/promptdeck/internal/server/endpoints"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// Server is the main promptdeck HTTP server. It owns the data store
// lifecycle: opened on Start, flushed state lives in the home directory.
type Server struct {
	httpServer *http.Server
	registry   *providers.Registry
	configMgr  *config.Manager
	home       *home.Dir
	logger     *slog.Logger

	transcriber playground.Transcriber

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8180)
	Port string
	// Home is the promptdeck home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
	// Transcriber optionally enables dictation for playground sessions
	Transcriber playground.Transcriber
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8180"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		dir, err := home.New("")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.Home = dir
	}

	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	s := &Server{
		registry:    registry,
		configMgr:   cfg.ConfigManager,
		home:        cfg.Home,
		logger:      cfg.Logger,
		transcriber: cfg.Transcriber,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:     s.withServices(mux),
		ReadTimeout: 30 * time.Second,
		// Playground runs stream for as long as the upstream generates;
		// no write timeout.
		IdleTimeout: 120 * time.Second,
	}

	return s, nil
}

// Start opens the data store and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.home.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to create home directory: %w", err)
	}

	fileCfg := config.DefaultConfig()
	if s.configMgr != nil {
		fileCfg = s.configMgr.Get()
	}

	dataPath := fileCfg.Store.Path
	if dataPath == "" {
		dataPath = s.home.DataPath()
	}

	s.logger.Info("opening data store", "path", dataPath)
	data, err := store.Open(store.Config{
		Path:   dataPath,
		Logger: s.logger,
		Seed:   fileCfg.Store.Seed,
	})
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to open data store: %w", err)
	}

	settings := config.NewSettingsStore(data)
	if err := config.SeedDefaults(settings, s.logger); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to seed default settings: %w", err)
	}

	// The settings store is authoritative for provider config. The config
	// file contributes entries only where the store has none, so runtime
	// edits through the settings API survive restarts and hot reloads.
	s.seedProvidersFromConfig(settings, fileCfg)
	s.reloadRegistry(settings)

	if s.configMgr != nil {
		s.configMgr.OnChange(func(c *config.Config) {
			s.seedProvidersFromConfig(settings, c)
			s.reloadRegistry(settings)
			s.logger.Info("provider registry reloaded from config")
		})
	}

	authSvc := auth.NewService(auth.Config{Store: data, Logger: s.logger})
	ingestSvc := ingest.NewService(s.logger)

	sessions := playground.NewManager(playground.ManagerConfig{
		Registry:        s.registry,
		Logger:          s.logger,
		DefaultProvider: fileCfg.Defaults.Provider,
		DefaultModel:    fileCfg.Defaults.Model,
		Transcriber:     s.transcriber,
	})

	s.services = &svcctx.Services{
		Store:       data,
		Auth:        authSvc,
		Ingest:      ingestSvc,
		Registry:    s.registry,
		Sessions:    sessions,
		ConfigStore: settings,
		Logger:      s.logger,
		Home:        s.home,
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// seedProvidersFromConfig fills settings entries for providers the config
// file declares but the store does not yet know about. Existing entries
// are never overwritten.
func (s *Server) seedProvidersFromConfig(settings config.Store, cfg *config.Config) {
	for name, p := range cfg.Providers {
		entries := map[string]any{
			"type":     p.Type,
			"api_key":  p.APIKey,
			"base_url": p.BaseURL,
			"model":    p.Model,
			"enabled":  p.Enabled,
		}
		for field, value := range entries {
			if str, ok := value.(string); ok && str == "" {
				continue
			}
			key := "providers." + name + "." + field
			existing, err := settings.Get(key)
			if err != nil || existing != nil {
				continue
			}
			if err := settings.Set(key, value, ""); err != nil {
				s.logger.Warn("failed to seed provider setting", "key", key, "error", err)
			}
		}
	}
}

// reloadRegistry rebuilds the provider registry from the settings store.
func (s *Server) reloadRegistry(settings config.Store) {
	cfg, err := config.StoreToProviderRegistryConfig(settings)
	if err != nil {
		s.logger.Warn("failed to build provider config from settings", "error", err)
		return
	}
	s.registry.Reload(cfg)
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	// Close live sessions so in-flight generations are cancelled.
	if s.services != nil && s.services.Sessions != nil {
		for _, id := range s.services.Sessions.List() {
			s.services.Sessions.Delete(id)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the data store is open.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
