// ABOUTME: Tests for the query API endpoint
// ABOUTME: Covers request validation, response encoding, and console mounting

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/triage-gateway/internal/config"
	"github.com/2389/triage-gateway/internal/synthesis"
)

type stubRunner struct {
	resp     *synthesis.FinalResponse
	lastText string
	calls    int
}

func (s *stubRunner) Handle(_ context.Context, text string) *synthesis.FinalResponse {
	s.calls++
	s.lastText = text
	return s.resp
}

func okResponse() *synthesis.FinalResponse {
	return &synthesis.FinalResponse{
		QueryID:     "q-api-test",
		Query:       "Get customer information for ID 5",
		GeneratedAt: time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC),
		Sections: []synthesis.Section{
			{Title: "Customer Record", Body: "Name: Charlie Brown (id 5)"},
		},
		Text: "### Customer Record\n\nName: Charlie Brown (id 5)",
	}
}

func newTestGateway(t *testing.T, runner queryRunner, opts ...func(*config.Config)) http.Handler {
	t.Helper()

	cfg := config.Default()
	for _, opt := range opts {
		opt(cfg)
	}

	gw, err := newWithRunner(cfg, runner, nil, testLogger())
	require.NoError(t, err)
	return gw.httpServer.Handler
}

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	runner := &stubRunner{resp: okResponse()}
	handler := newTestGateway(t, runner)

	rec := postJSON(handler, "/api/query", `{"text": "Get customer information for ID 5"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Get customer information for ID 5", runner.lastText)

	var resp synthesis.FinalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "q-api-test", resp.QueryID)
	require.Len(t, resp.Sections, 1)
	assert.Equal(t, "Customer Record", resp.Sections[0].Title)
	assert.Contains(t, resp.Text, "Charlie Brown")
}

func TestQueryRequiresText(t *testing.T) {
	runner := &stubRunner{resp: okResponse()}
	handler := newTestGateway(t, runner)

	rec := postJSON(handler, "/api/query", `{"text": "   "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text is required")
	assert.Zero(t, runner.calls, "blank queries must not reach the orchestrator")
}

func TestQueryRejectsInvalidJSON(t *testing.T) {
	runner := &stubRunner{resp: okResponse()}
	handler := newTestGateway(t, runner)

	rec := postJSON(handler, "/api/query", `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON body")
	assert.Zero(t, runner.calls)
}

func TestQueryMethodNotAllowed(t *testing.T) {
	handler := newTestGateway(t, &stubRunner{resp: okResponse()})

	req := httptest.NewRequest(http.MethodGet, "/api/query", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDegradedQueryStillReturns200(t *testing.T) {
	resp := &synthesis.FinalResponse{
		QueryID: "q-degraded",
		Sections: []synthesis.Section{
			{Title: "Partial Failure", Body: "fetch_customer failed: specialist call timed out", Failed: true},
		},
		Text: "### Partial Failure\n\nfetch_customer failed: specialist call timed out",
	}
	handler := newTestGateway(t, &stubRunner{resp: resp})

	rec := postJSON(handler, "/api/query", `{"text": "Get customer information for ID 5"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Partial Failure")
}

func TestConsoleMountedByDefault(t *testing.T) {
	handler := newTestGateway(t, &stubRunner{resp: okResponse()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<form")
}

func TestConsoleCanBeDisabled(t *testing.T) {
	handler := newTestGateway(t, &stubRunner{resp: okResponse()}, func(c *config.Config) {
		c.Gateway.DisableConsole = true
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
