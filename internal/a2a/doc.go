// Package a2a implements the transport between the orchestrator and its
// specialist agents: JSON-RPC 2.0 over HTTP POST to /a2a with a single
// tasks/send method, plus the discovery card at
// /.well-known/a2a-agent-card.json and a health endpoint.
//
// The package is transport only. Task parameters travel as raw JSON and
// are interpreted by the specialist behind the server; domain errors are
// surfaced as structured JSON-RPC faults.
package a2a
