// Package gateway assembles the triage-gateway server components.
//
// # Overview
//
// The gateway package is the central coordinator of the gateway binary.
// It builds the specialist proxies, the intent classifier, the
// orchestrator, and the synthesizer from configuration, then hosts them
// behind a single HTTP server together with the web console.
//
// # HTTP API
//
//   - POST /api/query - Run a triage query, returns the synthesized response
//   - GET /health - Liveness check
//   - GET /health/ready - Readiness check (pings both specialists)
//   - GET / - Web console (unless disabled in config)
//
// POST /api/query returns 200 even when parts of the query failed; the
// response carries labeled failure notes instead. 400 is reserved for
// request bodies that cannot be used at all.
//
// # Lifecycle
//
// Run starts the HTTP server and blocks until the context is canceled,
// then drains in-flight requests with a bounded graceful shutdown.
package gateway
