// ABOUTME: Entry point for the triage-tools data service
// ABOUTME: Serves the customer database tools and seeds demo fixtures

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

	"github.com/2389/triage-gateway/internal/config"
	"github.com/2389/triage-gateway/internal/store"
	"github.com/2389/triage-gateway/internal/toolserver"
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
	if len(os.Args) < 2 {
		fmt.Println("Usage: triage-tools <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                Start the tool service")
		fmt.Println("  init [-fixtures F]   Create and seed the customer database")
		fmt.Println("  health               Check tool service health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	s, err := store.Open(cfg.Tools.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	customers, tickets, err := s.Counts(ctx)
	if err != nil {
		return fmt.Errorf("checking database: %w", err)
	}
	if customers == 0 {
		logger.Warn("database is empty, run 'triage-tools init' to seed fixtures",
			"path", cfg.Tools.DatabasePath)
	}

	srv, err := toolserver.NewServer(toolserver.Config{Store: s, Logger: logger})
	if err != nil {
		return fmt.Errorf("creating tool server: %w", err)
	}

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	logger.Info("starting triage-tools",
		"http_addr", cfg.Tools.HTTPAddr,
		"database", cfg.Tools.DatabasePath,
		"customers", customers,
		"tickets", tickets,
	)

	httpServer := &http.Server{
		Addr:              cfg.Tools.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serveHTTP(ctx, httpServer, logger)
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	fixturesPath := fs.String("fixtures", "", "path to a TOML fixtures file (defaults to the built-in seed data)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The flag beats the config file, the config file beats the built-in set.
	path := *fixturesPath
	if path == "" {
		path = cfg.Tools.FixturesPath
	}

	var fx *store.Fixtures
	if path != "" {
		fx, err = store.LoadFixtures(path)
		if err != nil {
			return fmt.Errorf("loading fixtures: %w", err)
		}
	} else {
		fx, err = store.DefaultFixtures()
		if err != nil {
			return fmt.Errorf("loading built-in fixtures: %w", err)
		}
	}

	s, err := store.Open(cfg.Tools.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	if err := s.Seed(ctx, fx); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	customers, tickets, err := s.Counts(ctx)
	if err != nil {
		return fmt.Errorf("verifying seed: %w", err)
	}

	fmt.Printf("seeded %d customers and %d tickets into %s\n", customers, tickets, cfg.Tools.DatabasePath)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := cfg.Tools.Endpoint + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
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
