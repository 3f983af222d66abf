// pkg/server/app/app.go

// Package app wires the HTTP server, the scan watcher and signal handling
// into one lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vulntor/scanlens/pkg/config"
	"github.com/vulntor/scanlens/pkg/server/api"
	"github.com/vulntor/scanlens/pkg/server/httpx"
)

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 30 * time.Second

// App orchestrates the server runtime components:
// - HTTP server (API + metrics)
// - Background scan watcher
// - Lifecycle management
type App struct {
	HTTP   *http.Server
	Ready  *atomic.Bool
	Config config.ServerConfig
	Deps   *Deps

	mu       sync.Mutex
	listener net.Listener
}

// New creates and configures a new server application.
func New(ctx context.Context, cfg config.ServerConfig, deps *Deps) (*App, error) {
	if deps == nil {
		return nil, errors.New("app: nil deps")
	}
	deps.Logger.Info().Msg("Initializing server application")

	apiCfg := api.DefaultConfig()
	if cfg.WriteTimeout > 0 && cfg.WriteTimeout < apiCfg.HandlerTimeout {
		apiCfg.HandlerTimeout = cfg.WriteTimeout
	}
	if err := apiCfg.Validate(); err != nil {
		return nil, err
	}

	// Prepare API dependencies
	ready := &atomic.Bool{}
	apiDeps := &api.Deps{
		Summaries: deps.Summaries,
		Config:    apiCfg,
		Ready:     ready,
	}

	var observer httpx.RequestObserver
	if deps.Metrics != nil {
		apiDeps.Metrics = deps.Metrics.Handler()
		observer = deps.Metrics
	}

	// Create router with all endpoints mounted
	router := httpx.NewRouter(cfg, apiDeps)

	if cfg.APIEnabled {
		deps.Logger.Info().Msg("API endpoints enabled")
	} else {
		deps.Logger.Warn().Msg("API endpoints disabled")
	}
	if !cfg.MetricsEnabled || deps.Metrics == nil {
		deps.Logger.Warn().Msg("Metrics endpoint disabled")
	}

	// Create HTTP server with middleware
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Addr, strconv.Itoa(cfg.Port)),
		Handler:           httpx.Chain(observer, router),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	return &App{
		HTTP:   httpServer,
		Ready:  ready,
		Config: cfg,
		Deps:   deps,
	}, nil
}

// Addr returns the bound listen address once Run has started listening,
// or the configured address before that.
func (a *App) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.HTTP.Addr
}

// Run starts the server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.HTTP.Addr, err)
	}
	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	a.Deps.Logger.Info().
		Str("addr", ln.Addr().String()).
		Bool("api", a.Config.APIEnabled).
		Bool("metrics", a.Config.MetricsEnabled).
		Bool("watch", a.Deps.Watcher != nil).
		Msg("Starting scanlens server")

	// Start HTTP server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := a.HTTP.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	sigCtx, stopSignals := context.WithCancel(ctx)
	defer stopSignals()
	a.listenSignals(sigCtx)

	// Start the background watcher
	watchErr := make(chan error, 1)
	watchDone := make(chan struct{})
	if a.Deps.Watcher != nil {
		go func() {
			defer close(watchDone)
			if err := a.Deps.Watcher.Start(sigCtx); err != nil && !errors.Is(err, context.Canceled) {
				watchErr <- fmt.Errorf("scan watcher failed: %w", err)
			}
		}()
	} else {
		close(watchDone)
	}

	// Mark as ready
	a.Ready.Store(true)
	a.Deps.Logger.Info().Msg("Server is ready and accepting connections")

	// Wait for shutdown signal or component error
	var runErr error
	select {
	case <-ctx.Done():
		a.Deps.Logger.Info().Msg("Shutdown signal received")
	case runErr = <-serverErr:
		a.Deps.Logger.Error().Err(runErr).Msg("Server error")
	case runErr = <-watchErr:
		a.Deps.Logger.Error().Err(runErr).Msg("Watcher error")
	}

	stopSignals()
	<-watchDone

	// Graceful shutdown
	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown performs graceful shutdown of all components.
func (a *App) shutdown() error {
	a.Deps.Logger.Info().Msg("Initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Mark as not ready
	a.Ready.Store(false)

	var errs []error

	// Shutdown HTTP server
	a.Deps.Logger.Info().Msg("Shutting down HTTP server...")
	if err := a.HTTP.Shutdown(shutdownCtx); err != nil {
		a.Deps.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
		errs = append(errs, err)
	} else {
		a.Deps.Logger.Info().Msg("HTTP server stopped")
	}

	if a.Deps.Watcher != nil {
		if err := a.Deps.Watcher.Close(); err != nil {
			a.Deps.Logger.Error().Err(err).Msg("Watcher close failed")
			errs = append(errs, err)
		}
	}

	// Close storage backend
	if a.Deps.Store != nil {
		a.Deps.Logger.Info().Msg("Closing blob store...")
		if err := a.Deps.Store.Close(); err != nil {
			a.Deps.Logger.Error().Err(err).Msg("Blob store close failed")
			errs = append(errs, err)
		}
	}

	a.Deps.Logger.Info().Msg("Server shutdown complete")
	return errors.Join(errs...)
}
