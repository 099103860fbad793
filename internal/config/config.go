// ABOUTME: Configuration loading and parsing for triage-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete triage-gateway configuration.
// One file covers all three binaries; each reads the sections it needs.
type Config struct {
	Gateway      GatewayConfig      `yaml:"gateway"`
	Tools        ToolsConfig        `yaml:"tools"`
	Specialists  SpecialistsConfig  `yaml:"specialists"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// GatewayConfig holds the public HTTP surface of the gateway binary
type GatewayConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	// DisableConsole turns off the browser UI, leaving only the JSON API
	DisableConsole bool `yaml:"disable_console"`
}

// ToolsConfig holds the tool service listen address, the endpoint other
// processes use to reach it, and the backing database.
type ToolsConfig struct {
	HTTPAddr     string `yaml:"http_addr"`
	Endpoint     string `yaml:"endpoint"`
	DatabasePath string `yaml:"database_path"`
	// FixturesPath optionally overrides the built-in seed fixtures
	// when initializing the database. TOML format.
	FixturesPath string `yaml:"fixtures_path"`
}

// SpecialistsConfig holds one entry per specialist agent
type SpecialistsConfig struct {
	CustomerData SpecialistConfig `yaml:"customer_data"`
	Support      SpecialistConfig `yaml:"support"`
}

// SpecialistConfig holds a specialist's listen address and the endpoint
// the gateway uses to reach it. They differ when the specialist binds
// a wildcard address or sits behind a proxy.
type SpecialistConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	Endpoint string `yaml:"endpoint"`
}

// OrchestratorConfig tunes query execution
type OrchestratorConfig struct {
	// MaxConcurrent caps how many specialist calls run at once.
	// Zero means the orchestrator's built-in default.
	MaxConcurrent int `yaml:"max_concurrent"`

	// TaskTimeout bounds each specialist call (parsed from TaskTimeoutRaw)
	TaskTimeout    time.Duration `yaml:"-"`
	TaskTimeoutRaw string        `yaml:"task_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns a configuration wired for a single-host demo: every
// process on localhost, database in the working directory. All three
// binaries run without a config file on these values.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			HTTPAddr: "localhost:8080",
		},
		Tools: ToolsConfig{
			HTTPAddr:     "localhost:5000",
			Endpoint:     "http://localhost:5000",
			DatabasePath: "triage.db",
		},
		Specialists: SpecialistsConfig{
			CustomerData: SpecialistConfig{
				HTTPAddr: "localhost:10030",
				Endpoint: "http://localhost:10030",
			},
			Support: SpecialistConfig{
				HTTPAddr: "localhost:10031",
				Endpoint: "http://localhost:10031",
			},
		},
		Orchestrator: OrchestratorConfig{
			MaxConcurrent:  4,
			TaskTimeout:    10 * time.Second,
			TaskTimeoutRaw: "10s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Gateway.HTTPAddr == "" {
		return fmt.Errorf("gateway.http_addr is required")
	}

	if c.Tools.HTTPAddr == "" {
		return fmt.Errorf("tools.http_addr is required")
	}
	if c.Tools.Endpoint == "" {
		return fmt.Errorf("tools.endpoint is required")
	}
	if c.Tools.DatabasePath == "" {
		return fmt.Errorf("tools.database_path is required")
	}

	if c.Specialists.CustomerData.HTTPAddr == "" {
		return fmt.Errorf("specialists.customer_data.http_addr is required")
	}
	if c.Specialists.CustomerData.Endpoint == "" {
		return fmt.Errorf("specialists.customer_data.endpoint is required")
	}
	if c.Specialists.Support.HTTPAddr == "" {
		return fmt.Errorf("specialists.support.http_addr is required")
	}
	if c.Specialists.Support.Endpoint == "" {
		return fmt.Errorf("specialists.support.endpoint is required")
	}

	if c.Orchestrator.MaxConcurrent < 0 {
		return fmt.Errorf("orchestrator.max_concurrent must not be negative")
	}
	if c.Orchestrator.TaskTimeout < 0 {
		return fmt.Errorf("orchestrator.task_timeout must not be negative")
	}

	if c.Logging.Level != "" {
		switch c.Logging.Level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
		}
	}
	if c.Logging.Format != "" {
		switch c.Logging.Format {
		case "text", "json":
		default:
			return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Orchestrator.TaskTimeoutRaw != "" {
		cfg.Orchestrator.TaskTimeout, err = time.ParseDuration(cfg.Orchestrator.TaskTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing task_timeout %q: %w", cfg.Orchestrator.TaskTimeoutRaw, err)
		}
	}

	return nil
}
