// ABOUTME: Tests for the web console handlers and template
// ABOUTME: Covers form rendering, markdown conversion, and input validation

package console

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

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

func newTestConsole(t *testing.T, resp *synthesis.FinalResponse) (*http.ServeMux, *stubRunner) {
	t.Helper()

	runner := &stubRunner{resp: resp}
	c, err := New(runner, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	mux := http.NewServeMux()
	c.RegisterRoutes(mux)
	return mux, runner
}

func postQuery(mux *http.ServeMux, query string) *httptest.ResponseRecorder {
	form := url.Values{"query": {query}}
	req := httptest.NewRequest(http.MethodPost, "/console/query", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestConsoleTemplateParse(t *testing.T) {
	_, err := template.ParseFS(templateFS, "templates/console.html")
	if err != nil {
		t.Fatalf("failed to parse console.html: %v", err)
	}
}

func TestNew_RequiresRunner(t *testing.T) {
	_, err := New(nil, nil)
	if err == nil {
		t.Fatal("New() expected error for nil runner, got nil")
	}
}

func TestIndexServesForm(t *testing.T) {
	mux, _ := newTestConsole(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<form method=\"post\" action=\"/console/query\">") {
		t.Error("index page is missing the query form")
	}
	if !strings.Contains(body, "name=\"query\"") {
		t.Error("index page is missing the query field")
	}
}

func TestIndexUnknownPath(t *testing.T) {
	mux, _ := newTestConsole(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestQueryRendersMarkdown(t *testing.T) {
	resp := &synthesis.FinalResponse{
		QueryID:     "q-test-1",
		Query:       "Get customer information for ID 5",
		GeneratedAt: time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC),
		Sections: []synthesis.Section{
			{Title: "Customer Record", Body: "Name: Charlie Brown (id 5)"},
		},
		Text: "### Customer Record\n\nName: Charlie Brown (id 5)",
	}
	mux, runner := newTestConsole(t, resp)

	rec := postQuery(mux, "Get customer information for ID 5")

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /console/query status = %d, want %d", rec.Code, http.StatusOK)
	}
	if runner.lastText != "Get customer information for ID 5" {
		t.Errorf("runner received %q, want the submitted query", runner.lastText)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "<h3>Customer Record</h3>") {
		t.Error("response markdown heading was not converted to HTML")
	}
	if !strings.Contains(body, "Charlie Brown") {
		t.Error("response body is missing the section content")
	}
	if !strings.Contains(body, "q-test-1") {
		t.Error("response is missing the query id")
	}
}

func TestQueryShowsEscalationBadge(t *testing.T) {
	resp := &synthesis.FinalResponse{
		QueryID:            "q-test-2",
		GeneratedAt:        time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC),
		Escalated:          true,
		EscalationPriority: "high",
		EscalationReason:   "refund request",
		Text:               "**ESCALATION NOTICE** (high priority): refund request. This request is being handled ahead of the normal queue.",
	}
	mux, _ := newTestConsole(t, resp)

	rec := postQuery(mux, "I want a refund")

	body := rec.Body.String()
	if !strings.Contains(body, "<strong>ESCALATION NOTICE</strong>") {
		t.Error("escalation banner was not converted to HTML")
	}
	if !strings.Contains(body, "escalated: high") {
		t.Error("escalation badge is missing")
	}
	if !strings.Contains(body, "response escalated") {
		t.Error("response section is missing the escalated class")
	}
}

func TestQueryRequiresText(t *testing.T) {
	mux, runner := newTestConsole(t, nil)

	rec := postQuery(mux, "   ")

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /console/query status = %d, want %d", rec.Code, http.StatusOK)
	}
	if runner.calls != 0 {
		t.Errorf("runner was called %d times for empty input, want 0", runner.calls)
	}
	if !strings.Contains(rec.Body.String(), "Enter a request to triage.") {
		t.Error("empty submission did not surface the validation message")
	}
}

func TestQueryMethodNotAllowed(t *testing.T) {
	mux, _ := newTestConsole(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/console/query", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /console/query status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
