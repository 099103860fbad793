// ABOUTME: JSON-RPC 2.0 framing shared by the tool service and the agent transport.
// ABOUTME: Defines request/response/error types, standard codes, and read/write helpers.

package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Version is the JSON-RPC protocol version carried on every message.
const Version = "2.0"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// Standard JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response. Result is kept raw so both
// the client side (decode into typed results) and the server side (encode
// pre-marshaled results) share one type.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object. It implements the error
// interface so remote faults can travel through ordinary error returns.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

// NewRequest builds a request with a fresh uuid id and marshaled params.
func NewRequest(method string, params any) (*Request, error) {
	req := &Request{
		JSONRPC: Version,
		ID:      json.RawMessage(strconv.Quote(uuid.New().String())),
		Method:  method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshaling params: %w", err)
		}
		req.Params = data
	}
	return req, nil
}

// ReadRequest reads and validates a request from an HTTP body.
// A non-nil *Error return maps directly onto a JSON-RPC error response.
func ReadRequest(body io.Reader) (*Request, *Error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxRequestBodySize+1))
	if err != nil {
		return nil, &Error{Code: CodeParseError, Message: "failed to read request body"}
	}
	if int64(len(data)) > MaxRequestBodySize {
		return nil, &Error{Code: CodeInvalidRequest, Message: "request body too large"}
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &Error{Code: CodeParseError, Message: "invalid JSON"}
	}
	if req.JSONRPC != Version {
		return nil, &Error{Code: CodeInvalidRequest, Message: "invalid JSON-RPC version"}
	}
	return &req, nil
}

// WriteResult writes a successful JSON-RPC response.
func WriteResult(w http.ResponseWriter, id json.RawMessage, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	resp := Response{JSONRPC: Version, ID: id, Result: data}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// WriteError writes a JSON-RPC error response.
func WriteError(w http.ResponseWriter, id json.RawMessage, code int, message string, data any) error {
	resp := Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// Client posts JSON-RPC requests to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint. The timeout is a
// transport-level ceiling; callers pass per-call deadlines via context.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the endpoint URL this client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call sends one request and returns the raw result. Remote faults come
// back as a *Error; transport failures keep their underlying error so
// callers can distinguish timeouts from connection failures.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req, err := NewRequest(method, params)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, MaxRequestBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", httpResp.StatusCode, err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}
