// ABOUTME: Entry point for the triage specialist agents
// ABOUTME: Runs the customer-data or support agent behind an a2a server

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/2389/triage-gateway/internal/a2a"
	"github.com/2389/triage-gateway/internal/config"
	"github.com/2389/triage-gateway/internal/specialist"
	"github.com/2389/triage-gateway/internal/toolgate"
)

// loadConfig resolves configuration for this invocation.
// Priority: TRIAGE_CONFIG env var > ./triage.yaml > XDG_CONFIG_HOME/triage/triage.yaml
// (~/.config fallback) > built-in defaults.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("TRIAGE_CONFIG"); path != "" {
		return config.Load(path)
	}

	for _, path := range []string{"triage.yaml", xdgConfigPath()} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return config.Load(path)
		}
	}

	return config.Default(), nil
}

// xdgConfigPath returns the user-level config file location.
func xdgConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "triage", "triage.yaml")
}

func main() {
	role := flag.String("role", "", "specialist role: customer-data or support")
	addr := flag.String("addr", "", "listen address (overrides config)")
	tools := flag.String("tools", "", "tool service endpoint (overrides config, customer-data only)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *role, *addr, *tools); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, role, addrOverride, toolsOverride string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	var agent a2a.Agent
	var addr string

	switch role {
	case "customer-data":
		endpoint := cfg.Tools.Endpoint
		if toolsOverride != "" {
			endpoint = toolsOverride
		}

		toolsClient, err := toolgate.NewClient(toolgate.Config{
			Endpoint: endpoint,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("creating tool client: %w", err)
		}

		agent, err = specialist.NewCustomerDataAgent(specialist.CustomerDataConfig{
			Tools:   toolsClient,
			BaseURL: cfg.Specialists.CustomerData.Endpoint,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("creating customer-data agent: %w", err)
		}
		addr = cfg.Specialists.CustomerData.HTTPAddr

	case "support":
		agent = specialist.NewSupportAgent(specialist.SupportConfig{
			BaseURL: cfg.Specialists.Support.Endpoint,
			Logger:  logger,
		})
		addr = cfg.Specialists.Support.HTTPAddr

	case "":
		return errors.New("-role is required (customer-data or support)")

	default:
		return fmt.Errorf("unknown role %q (want customer-data or support)", role)
	}

	if addrOverride != "" {
		addr = addrOverride
	}

	server, err := a2a.NewServer(agent, logger)
	if err != nil {
		return fmt.Errorf("creating agent server: %w", err)
	}

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	logger.Info("starting specialist",
		"agent", agent.Card().Name,
		"role", role,
		"http_addr", addr,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serveHTTP(ctx, httpServer, logger)
}

// serveHTTP runs the server until the context is canceled, then drains
// in-flight requests with a bounded shutdown.
func serveHTTP(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("context canceled, initiating shutdown")
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
