// ABOUTME: Gateway host that assembles the orchestrator behind an HTTP server
// ABOUTME: Manages proxies, console mounting, health endpoints, and lifecycle

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/2389/triage-gateway/internal/config"
	"github.com/2389/triage-gateway/internal/console"
	"github.com/2389/triage-gateway/internal/intent"
	"github.com/2389/triage-gateway/internal/orchestrator"
	"github.com/2389/triage-gateway/internal/proxy"
	"github.com/2389/triage-gateway/internal/synthesis"
)

const (
	// readyCheckTimeout bounds each specialist ping on /health/ready
	readyCheckTimeout = 2 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests
	shutdownTimeout = 5 * time.Second
)

// queryRunner executes one triage query end to end. It always returns
// a response; failures are reported inside it.
type queryRunner interface {
	Handle(ctx context.Context, text string) *synthesis.FinalResponse
}

// healthTarget is a named dependency checked by the readiness endpoint
type healthTarget struct {
	name  string
	check func(ctx context.Context) error
}

// Gateway hosts the query API, the web console, and health endpoints.
type Gateway struct {
	config     *config.Config
	runner     queryRunner
	targets    []healthTarget
	httpServer *http.Server
	logger     *slog.Logger
}

// New assembles a gateway from configuration: specialist proxies, the
// intent classifier, the orchestrator, and the HTTP surface.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	customerData, err := proxy.NewCustomerDataProxy(proxy.Config{
		Endpoint: cfg.Specialists.CustomerData.Endpoint,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating customer-data proxy: %w", err)
	}

	support, err := proxy.NewSupportProxy(proxy.Config{
		Endpoint: cfg.Specialists.Support.Endpoint,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating support proxy: %w", err)
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Classifier:    intent.NewClassifier(logger),
		CustomerData:  customerData,
		Support:       support,
		Synthesizer:   synthesis.NewSynthesizer(logger),
		MaxConcurrent: cfg.Orchestrator.MaxConcurrent,
		TaskTimeout:   cfg.Orchestrator.TaskTimeout,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}

	targets := []healthTarget{
		{name: "customer-data", check: customerData.Health},
		{name: "support", check: support.Health},
	}

	return newWithRunner(cfg, orch, targets, logger)
}

// newWithRunner wires the HTTP surface around an existing runner.
// Split from New so tests can substitute the orchestrator.
func newWithRunner(cfg *config.Config, runner queryRunner, targets []healthTarget, logger *slog.Logger) (*Gateway, error) {
	gw := &Gateway{
		config:  cfg,
		runner:  runner,
		targets: targets,
		logger:  logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)
	mux.HandleFunc("/api/query", gw.handleQuery)

	if !cfg.Gateway.DisableConsole {
		ui, err := console.New(runner, logger)
		if err != nil {
			return nil, fmt.Errorf("creating console: %w", err)
		}
		ui.RegisterRoutes(mux)
		gw.logger.Info("web console enabled at /")
	}

	gw.httpServer = &http.Server{
		Addr:              cfg.Gateway.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Gateway.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.config.Gateway.HTTPAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// The run context is already canceled by the time shutdown starts.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server, waiting for in-flight requests.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")
	if err := g.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "triage-gateway",
	})
}

// handleReady pings every specialist and reports which ones are down.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	failing := make(map[string]string)
	for _, target := range g.targets {
		if err := target.check(ctx); err != nil {
			g.logger.Warn("readiness check failed", "specialist", target.name, "error", err)
			failing[target.name] = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if len(failing) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "degraded",
			"failing": failing,
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
}
