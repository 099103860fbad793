// Package config handles configuration loading for triage-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. A single file describes the whole deployment; the gateway,
// the tool service, and the specialist binaries each read the sections
// they need, so one file can be shared across all three.
//
// When no file is given, Default() supplies a complete single-host
// layout with every process on localhost.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	tools:
//	  database_path: "${TRIAGE_DB_PATH}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	orchestrator:
//	  task_timeout: "10s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Gateway HTTP surface:
//
//	gateway:
//	  http_addr: "localhost:8080"
//	  disable_console: false              # browser UI on by default
//
// Tool service:
//
//	tools:
//	  http_addr: "localhost:5000"
//	  endpoint: "http://localhost:5000"   # how other processes reach it
//	  database_path: "triage.db"
//	  fixtures_path: ""                   # optional seed data override (TOML)
//
// Specialist agents:
//
//	specialists:
//	  customer_data:
//	    http_addr: "localhost:10030"
//	    endpoint: "http://localhost:10030"
//	  support:
//	    http_addr: "localhost:10031"
//	    endpoint: "http://localhost:10031"
//
// Orchestrator tuning:
//
//	orchestrator:
//	  max_concurrent: 4
//	  task_timeout: "10s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load from a path, or fall back to the demo defaults:
//
//	cfg, err := config.Load("/etc/triage/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := config.Default()
package config
