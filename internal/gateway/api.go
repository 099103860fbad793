// ABOUTME: HTTP API handlers for submitting triage queries
// ABOUTME: Provides the POST /api/query endpoint consumed by clients and the CLI

package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// QueryRequest is the JSON request body for POST /api/query.
type QueryRequest struct {
	Text string `json:"text"`
}

// handleQuery handles POST /api/query requests. The body carries the
// raw query text; the response is the full synthesized result. Degraded
// and failed queries still return 200 with failure notes inside; 400 is
// reserved for unusable request bodies.
func (g *Gateway) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := parseQueryRequest(r.Body)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := g.runner.Handle(r.Context(), req.Text)
	g.logger.Info("api query handled",
		"query_id", resp.QueryID,
		"sections", len(resp.Sections),
		"escalated", resp.Escalated)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// parseQueryRequest parses and validates a QueryRequest from the given reader.
// Returns an error if the JSON is invalid or the text field is blank.
func parseQueryRequest(r io.Reader) (*QueryRequest, error) {
	var req QueryRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("text is required")
	}

	return &req, nil
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
