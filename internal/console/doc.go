// Package console provides the browser interface for the triage gateway.
//
// It serves a single form page at / and handles submissions at
// /console/query. Submitted text runs through the orchestrator like any
// API query; the synthesized markdown is converted to HTML with
// goldmark and rendered inline on the page.
//
// Templates are embedded using go:embed for single-binary deployment.
// The console carries no session state; every submission is an
// independent query.
package console
