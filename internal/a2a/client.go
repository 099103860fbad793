// ABOUTME: Client half of the agent-to-agent protocol.
// ABOUTME: Sends task requests and fetches agent cards and health state.

package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/2389/triage-gateway/internal/jsonrpc"
)

// Client talks to one specialist agent.
type Client struct {
	rpc        *jsonrpc.Client
	cardURL    string
	healthURL  string
	httpClient *http.Client
}

// NewClient builds a client for the specialist at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimSuffix(baseURL, "/")
	return &Client{
		rpc:        jsonrpc.NewClient(base+TaskPath, timeout),
		cardURL:    base + AgentCardPath,
		healthURL:  base + "/health",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SendTask submits one task and returns the raw typed result. Structured
// faults come back as *jsonrpc.Error; transport failures as plain errors.
func (c *Client) SendTask(ctx context.Context, req *TaskRequest) (json.RawMessage, error) {
	return c.rpc.Call(ctx, MethodSendTask, req)
}

// AgentCard fetches the specialist's discovery document.
func (c *Client) AgentCard(ctx context.Context) (*AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cardURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating card request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching agent card: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching agent card: unexpected status %d", resp.StatusCode)
	}

	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("decoding agent card: %w", err)
	}
	return &card, nil
}

// Health checks the specialist's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("creating health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: unexpected status %d", resp.StatusCode)
	}
	return nil
}
