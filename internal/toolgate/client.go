// ABOUTME: Typed client for the tool service's five customer/ticket operations.
// ABOUTME: Handles JSON-RPC call framing, payload decoding, and error mapping.

package toolgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/triage-gateway/internal/jsonrpc"
)

// DefaultTimeout is the transport ceiling when Config.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the tool service client.
type Config struct {
	// Endpoint is the tool service base URL, e.g. "http://localhost:5000".
	Endpoint string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Client is a typed client for the tool service.
type Client struct {
	rpc        *jsonrpc.Client
	healthURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a tool service client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimSuffix(cfg.Endpoint, "/")
	return &Client{
		rpc:        jsonrpc.NewClient(base+"/mcp", timeout),
		healthURL:  base + "/health",
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// GetCustomer fetches one customer record by id.
func (c *Client) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	var res GetCustomerResult
	if err := c.callTool(ctx, ToolGetCustomer, GetCustomerArgs{CustomerID: customerID}, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, failureError(res.Envelope)
	}
	if res.Customer == nil {
		return nil, fmt.Errorf("%s: missing customer in payload", ToolGetCustomer)
	}
	return res.Customer, nil
}

// ListCustomers returns customers filtered by status, ordered by id.
// An empty status and zero limit leave the server defaults in effect.
func (c *Client) ListCustomers(ctx context.Context, status string, limit int) ([]Customer, error) {
	var res ListCustomersResult
	args := ListCustomersArgs{Status: status, Limit: limit}
	if err := c.callTool(ctx, ToolListCustomers, args, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, failureError(res.Envelope)
	}
	return res.Customers, nil
}

// UpdateCustomer writes the given fields and returns the list actually updated.
func (c *Client) UpdateCustomer(ctx context.Context, customerID int64, fields map[string]string) ([]string, error) {
	var res UpdateCustomerResult
	args := UpdateCustomerArgs{CustomerID: customerID, Data: fields}
	if err := c.callTool(ctx, ToolUpdateCustomer, args, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, failureError(res.Envelope)
	}
	return res.UpdatedFields, nil
}

// CreateTicket opens a support ticket and returns its id.
func (c *Client) CreateTicket(ctx context.Context, customerID int64, issue, priority string) (int64, error) {
	var res CreateTicketResult
	args := CreateTicketArgs{CustomerID: customerID, Issue: issue, Priority: priority}
	if err := c.callTool(ctx, ToolCreateTicket, args, &res); err != nil {
		return 0, err
	}
	if !res.Success {
		return 0, failureError(res.Envelope)
	}
	return res.TicketID, nil
}

// GetCustomerHistory returns a customer's tickets, newest first.
func (c *Client) GetCustomerHistory(ctx context.Context, customerID int64) ([]Ticket, error) {
	var res CustomerHistoryResult
	if err := c.callTool(ctx, ToolGetCustomerHistory, CustomerHistoryArgs{CustomerID: customerID}, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, failureError(res.Envelope)
	}
	return res.Tickets, nil
}

// ListTools fetches the tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	raw, err := c.rpc.Call(ctx, "tools/list", nil)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}
	var result ListToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding tools/list result: %w", err)
	}
	return result.Tools, nil
}

// Health checks the tool service health endpoint.
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

// callTool invokes one tool and decodes its text payload into out.
func (c *Client) callTool(ctx context.Context, name string, args, out any) error {
	params := CallToolParams{Name: name}
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("marshaling %s arguments: %w", name, err)
		}
		params.Arguments = data
	}

	raw, err := c.rpc.Call(ctx, "tools/call", params)
	if err != nil {
		return fmt.Errorf("calling %s: %w", name, err)
	}

	var result CallToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("decoding %s result: %w", name, err)
	}
	if len(result.Content) == 0 {
		return fmt.Errorf("%s: empty tool result", name)
	}

	if err := json.Unmarshal([]byte(result.Content[0].Text), out); err != nil {
		return fmt.Errorf("decoding %s payload: %w", name, err)
	}
	return nil
}

// failureError maps a failure envelope onto the matching sentinel error.
// Servers that omit the machine code fall back to message sniffing.
func failureError(env Envelope) error {
	msg := env.Error
	if msg == "" {
		msg = "unknown failure"
	}
	switch env.Code {
	case CodeNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case CodeInvalidField:
		return fmt.Errorf("%w: %s", ErrInvalidField, msg)
	case CodeInvalidPriority:
		return fmt.Errorf("%w: %s", ErrInvalidPriority, msg)
	case CodeInvalidStatus:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, msg)
	}
	if strings.Contains(strings.ToLower(msg), "not found") {
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return errors.New(msg)
}
