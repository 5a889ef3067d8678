// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the gateway server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"llmgateway/config"
	"llmgateway/internal/httpclient"
	"llmgateway/internal/observability"
	"llmgateway/internal/providers/anthropic"
	"llmgateway/internal/server"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests to drain.
const ShutdownTimeout = 30 * time.Second

// App represents the main application with all its dependencies.
type App struct {
	config *config.Config
	server *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a new App from loaded configuration.
// The caller must call Shutdown to stop the server.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is required")
	}

	app := &App{config: cfg}

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.HTTP.Timeout
	client := anthropic.New(clientCfg)
	if cfg.Anthropic.BaseURL != "" {
		client.SetBaseURL(cfg.Anthropic.BaseURL)
	}

	serverCfg := &server.Config{
		APIKey:          cfg.Anthropic.APIKey,
		MasterKey:       cfg.Server.MasterKey,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
		BodySizeLimit:   cfg.Server.BodySizeLimit,
	}

	if cfg.Metrics.Enabled {
		hooks := observability.NewPrometheusHooks(nil)
		client.SetHooks(hooks)
		serverCfg.MetricsHandler = hooks.Handler()
	}

	app.logStartupInfo()
	app.server = server.New(client, serverCfg)

	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server
}

// Start starts the HTTP server and blocks until it stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Run serves on addr until ctx is cancelled, then shuts the server down and
// returns once in-flight requests have drained or ShutdownTimeout has passed.
func (a *App) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	if err := a.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Addr returns the address the server is listening on, or nil before it starts.
func (a *App) Addr() net.Addr {
	if a.server == nil {
		return nil
	}
	return a.server.ListenerAddr()
}

// Shutdown gracefully stops the server. Calling it more than once is a no-op.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			return fmt.Errorf("server shutdown: %w", err)
		}
	}

	slog.Info("application shutdown complete")
	return nil
}

func (a *App) logStartupInfo() {
	cfg := a.config

	if cfg.Anthropic.APIKey == "" {
		slog.Warn("ANTHROPIC_API_KEY not set - /ai/chat will answer with a configuration error")
	}

	if cfg.Server.MasterKey == "" {
		slog.Warn("SECURITY WARNING: GATEWAY_MASTER_KEY not set - /ai/chat is unauthenticated",
			"recommendation", "set GATEWAY_MASTER_KEY environment variable to secure this gateway")
	} else {
		slog.Info("authentication enabled", "mode", "master_key")
	}

	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}

	if cfg.HTTP.Timeout == 0 {
		slog.Info("upstream calls have no timeout")
	} else {
		slog.Info("upstream timeout configured", "timeout", cfg.HTTP.Timeout)
	}
}
