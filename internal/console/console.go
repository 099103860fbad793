// ABOUTME: Web console serving a browser form for submitting triage queries
// ABOUTME: Renders synthesized markdown responses as HTML via goldmark

package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/2389/triage-gateway/internal/synthesis"
)

const pageTitle = "Triage Console"

// QueryRunner executes one triage query end to end. Handle always
// returns a response; failures are reported inside it.
type QueryRunner interface {
	Handle(ctx context.Context, text string) *synthesis.FinalResponse
}

// Console serves the browser UI on top of a query runner.
type Console struct {
	runner QueryRunner
	logger *slog.Logger
	tmpl   *template.Template
}

// New creates a console backed by the given runner.
func New(runner QueryRunner, logger *slog.Logger) (*Console, error) {
	if runner == nil {
		return nil, errors.New("query runner is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/console.html")
	if err != nil {
		return nil, fmt.Errorf("parsing console template: %w", err)
	}
	return &Console{
		runner: runner,
		logger: logger.With("component", "console"),
		tmpl:   tmpl,
	}, nil
}

// RegisterRoutes attaches the console pages to a mux.
func (c *Console) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", c.handleIndex)
	mux.HandleFunc("/console/query", c.handleQuery)
}

// pageData holds data for the console page
type pageData struct {
	Title  string
	Query  string
	Error  string
	Result *resultData
}

// resultData holds one rendered response
type resultData struct {
	QueryID   string
	Generated string
	Escalated bool
	Priority  string
	HTML      template.HTML
}

func (c *Console) handleIndex(w http.ResponseWriter, r *http.Request) {
	// The root pattern matches everything; anything but "/" is a miss.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c.render(w, pageData{Title: pageTitle})
}

func (c *Console) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		c.render(w, pageData{Title: pageTitle, Error: "Enter a request to triage."})
		return
	}

	resp := c.runner.Handle(r.Context(), query)
	c.logger.Info("console query handled",
		"query_id", resp.QueryID,
		"sections", len(resp.Sections),
		"escalated", resp.Escalated)

	c.render(w, pageData{
		Title:  pageTitle,
		Query:  query,
		Result: c.buildResult(resp),
	})
}

// buildResult converts the synthesized markdown into HTML for the page.
func (c *Console) buildResult(resp *synthesis.FinalResponse) *resultData {
	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(resp.Text), &htmlBuf); err != nil {
		c.logger.Error("failed to convert markdown", "query_id", resp.QueryID, "error", err)
		htmlBuf.Reset()
		htmlBuf.WriteString("<p>Failed to render the response.</p>")
	}

	return &resultData{
		QueryID:   resp.QueryID,
		Generated: resp.GeneratedAt.Format(time.RFC1123),
		Escalated: resp.Escalated,
		Priority:  resp.EscalationPriority,
		HTML:      template.HTML(htmlBuf.String()),
	}
}

func (c *Console) render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.tmpl.Execute(w, data); err != nil {
		c.logger.Error("failed to render console page", "error", err)
	}
}
