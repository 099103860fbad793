// ABOUTME: Entry point for the triage-gateway server
// ABOUTME: Hosts the query API and web console, plus CLI query and demo commands

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/triage-gateway/internal/config"
	"github.com/2389/triage-gateway/internal/gateway"
	"github.com/2389/triage-gateway/internal/synthesis"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _        _
 | |_ _ __(_) __ _  __ _  ___
 | __| '__| |/ _' |/ _' |/ _ \
 | |_| |  | | (_| | (_| |  __/
  \__|_|  |_|\__,_|\__, |\___|
                   |___/
          g a t e w a y
`

// loadConfig resolves configuration for this invocation.
// Priority: TRIAGE_CONFIG env var > ./triage.yaml > XDG_CONFIG_HOME/triage/triage.yaml
// (~/.config fallback) > built-in defaults.
func loadConfig() (*config.Config, string, error) {
	if path := os.Getenv("TRIAGE_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	for _, path := range []string{"triage.yaml", xdgConfigPath()} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			cfg, err := config.Load(path)
			return cfg, path, err
		}
	}

	return config.Default(), "(defaults)", nil
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
		fmt.Println("Usage: triage-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve        Start the gateway server")
		fmt.Println("  ask <text>   Run one query against a running gateway")
		fmt.Println("  scenarios    Run the five demo scenarios")
		fmt.Println("  health       Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "ask":
		err = runAsk(ctx, os.Args[2:])
	case "scenarios":
		err = runScenarios(ctx)
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
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, configPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:        %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:          %s\n", cfg.Gateway.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Customer data: %s\n", cfg.Specialists.CustomerData.Endpoint)
	green.Print("    ▶ ")
	fmt.Printf("Support:       %s\n", cfg.Specialists.Support.Endpoint)

	fmt.Println()

	logger.Info("starting triage-gateway",
		"config", configPath,
		"http_addr", cfg.Gateway.HTTPAddr,
	)

	// Create and run gateway
	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
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

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runAsk(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: triage-gateway ask <text>")
	}
	text := strings.Join(args, " ")

	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resp, err := submitQuery(ctx, cfg.Gateway.HTTPAddr, text)
	if err != nil {
		return err
	}

	printResponse(resp)
	return nil
}

// scenarios are the five demo queries run against a live gateway.
var scenarios = []struct {
	name  string
	query string
}{
	{"Simple Query", "Get customer information for ID 5"},
	{"Coordinated Query", "I'm customer 5 and need help upgrading my account"},
	{"Complex Query", "Show me all active customers who have open tickets"},
	{"Escalation", "I've been charged twice, please refund immediately!"},
	{"Multi-Intent", "Update my email to new@email.com and show my ticket history"},
}

func runScenarios(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	header := color.New(color.FgCyan, color.Bold)
	failed := 0

	for i, sc := range scenarios {
		header.Printf("=== Scenario %d: %s ===\n", i+1, sc.name)
		fmt.Printf("Query: %s\n\n", sc.query)

		resp, err := submitQuery(ctx, cfg.Gateway.HTTPAddr, sc.query)
		if err != nil {
			color.New(color.FgRed).Printf("failed: %v\n\n", err)
			failed++
			continue
		}

		printResponse(resp)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(scenarios))
	}
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Make HTTP request to health endpoint with context
	url := fmt.Sprintf("http://%s/health", cfg.Gateway.HTTPAddr)
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

// submitQuery posts one query to a running gateway and decodes the result.
func submitQuery(ctx context.Context, addr, text string) (*synthesis.FinalResponse, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("http://%s/api/query", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("query failed: status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out synthesis.FinalResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &out, nil
}

// printResponse renders a synthesized response with colored section headers.
func printResponse(resp *synthesis.FinalResponse) {
	gray := color.New(color.FgHiBlack)
	gray.Printf("%s  %s\n\n", resp.QueryID, resp.GeneratedAt.Format(time.RFC3339))

	if resp.Escalated {
		red := color.New(color.FgRed, color.Bold)
		red.Printf("ESCALATED (%s): %s\n\n", resp.EscalationPriority, resp.EscalationReason)
	}

	for _, section := range resp.Sections {
		if section.Failed {
			color.New(color.FgYellow, color.Bold).Println(section.Title)
		} else {
			color.New(color.FgCyan, color.Bold).Println(section.Title)
		}
		fmt.Println(section.Body)
		fmt.Println()
	}
}
