// ABOUTME: JSON-RPC server exposing the customer store as callable tools.
// ABOUTME: Validates arguments, applies defaults, and maps errors to envelopes.

package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/2389/triage-gateway/internal/jsonrpc"
	"github.com/2389/triage-gateway/internal/store"
	"github.com/2389/triage-gateway/internal/toolgate"
)

// Config holds the dependencies for the tool server.
type Config struct {
	Store  *store.Store
	Logger *slog.Logger
}

// Server handles tools/list and tools/call requests against the store.
type Server struct {
	store  *store.Store
	logger *slog.Logger
}

// NewServer creates a tool server from the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: cfg.Store, logger: logger.With("component", "toolserver")}, nil
}

// RegisterRoutes attaches the JSON-RPC and health endpoints to a mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/mcp", s.handleRPC)
	mux.HandleFunc("/health", s.handleHealth)
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, rpcErr := jsonrpc.ReadRequest(r.Body)
	if rpcErr != nil {
		jsonrpc.WriteError(w, nil, rpcErr.Code, rpcErr.Message, nil)
		return
	}

	switch req.Method {
	case "tools/list":
		jsonrpc.WriteResult(w, req.ID, toolgate.ListToolsResult{Tools: toolCatalog})
	case "tools/call":
		s.handleCallTool(r.Context(), w, req)
	default:
		jsonrpc.WriteError(w, req.ID, jsonrpc.CodeMethodNotFound, "unknown method: "+req.Method, nil)
	}
}

func (s *Server) handleCallTool(ctx context.Context, w http.ResponseWriter, req *jsonrpc.Request) {
	var params toolgate.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpc.WriteError(w, req.ID, jsonrpc.CodeInvalidParams, "invalid tool call params: "+err.Error(), nil)
		return
	}

	s.logger.Debug("tool call", "tool", params.Name)

	payload, err := s.callTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, errUnknownTool) {
			jsonrpc.WriteError(w, req.ID, jsonrpc.CodeMethodNotFound, err.Error(), nil)
			return
		}
		if env, ok := failureEnvelope(err); ok {
			s.writeToolPayload(w, req.ID, env)
			return
		}
		s.logger.Error("tool execution failed", "tool", params.Name, "error", err)
		jsonrpc.WriteError(w, req.ID, jsonrpc.CodeInternalError, "tool execution failed: "+err.Error(), nil)
		return
	}

	s.writeToolPayload(w, req.ID, payload)
}

var errUnknownTool = errors.New("unknown tool")

// callTool dispatches one tool invocation and returns its result payload.
func (s *Server) callTool(ctx context.Context, name string, rawArgs json.RawMessage) (any, error) {
	switch name {
	case toolgate.ToolGetCustomer:
		var args toolgate.GetCustomerArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		if err := requirePositiveID(args.CustomerID); err != nil {
			return nil, err
		}
		customer, err := s.store.GetCustomer(ctx, args.CustomerID)
		if err != nil {
			return nil, err
		}
		return toolgate.GetCustomerResult{
			Envelope: toolgate.Envelope{Success: true},
			Customer: customer,
		}, nil

	case toolgate.ToolListCustomers:
		var args toolgate.ListCustomersArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		status := args.Status
		if status == "" {
			status = toolgate.StatusActive
		}
		limit := args.Limit
		if limit <= 0 {
			limit = toolgate.DefaultListLimit
		}
		customers, err := s.store.ListCustomers(ctx, status, limit)
		if err != nil {
			return nil, err
		}
		return toolgate.ListCustomersResult{
			Envelope:  toolgate.Envelope{Success: true},
			Count:     len(customers),
			Customers: customers,
		}, nil

	case toolgate.ToolUpdateCustomer:
		var args toolgate.UpdateCustomerArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		if err := requirePositiveID(args.CustomerID); err != nil {
			return nil, err
		}
		updated, err := s.store.UpdateCustomer(ctx, args.CustomerID, args.Data)
		if err != nil {
			return nil, err
		}
		return toolgate.UpdateCustomerResult{
			Envelope:      toolgate.Envelope{Success: true},
			CustomerID:    args.CustomerID,
			UpdatedFields: updated,
		}, nil

	case toolgate.ToolCreateTicket:
		var args toolgate.CreateTicketArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		if err := requirePositiveID(args.CustomerID); err != nil {
			return nil, err
		}
		if args.Issue == "" {
			return nil, fmt.Errorf("%w: issue is required", toolgate.ErrInvalidField)
		}
		priority := args.Priority
		if priority == "" {
			priority = toolgate.PriorityMedium
		}
		ticketID, err := s.store.CreateTicket(ctx, args.CustomerID, args.Issue, priority)
		if err != nil {
			return nil, err
		}
		return toolgate.CreateTicketResult{
			Envelope:   toolgate.Envelope{Success: true},
			TicketID:   ticketID,
			CustomerID: args.CustomerID,
			Issue:      args.Issue,
			Priority:   priority,
			Status:     toolgate.TicketOpen,
		}, nil

	case toolgate.ToolGetCustomerHistory:
		var args toolgate.CustomerHistoryArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		if err := requirePositiveID(args.CustomerID); err != nil {
			return nil, err
		}
		tickets, err := s.store.GetCustomerHistory(ctx, args.CustomerID)
		if err != nil {
			return nil, err
		}
		return toolgate.CustomerHistoryResult{
			Envelope:    toolgate.Envelope{Success: true},
			CustomerID:  args.CustomerID,
			TicketCount: len(tickets),
			Tickets:     tickets,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
}

func decodeArgs(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decoding arguments: %v", toolgate.ErrInvalidField, err)
	}
	return nil
}

func requirePositiveID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: customer_id must be a positive integer", toolgate.ErrInvalidField)
	}
	return nil
}

// failureEnvelope maps domain sentinels onto a failure envelope. The
// second return is false for errors that should surface as internal
// JSON-RPC errors instead.
func failureEnvelope(err error) (toolgate.Envelope, bool) {
	var code string
	switch {
	case errors.Is(err, toolgate.ErrNotFound):
		code = toolgate.CodeNotFound
	case errors.Is(err, toolgate.ErrInvalidField):
		code = toolgate.CodeInvalidField
	case errors.Is(err, toolgate.ErrInvalidPriority):
		code = toolgate.CodeInvalidPriority
	case errors.Is(err, toolgate.ErrInvalidStatus):
		code = toolgate.CodeInvalidStatus
	default:
		return toolgate.Envelope{}, false
	}
	return toolgate.Envelope{Success: false, Error: err.Error(), Code: code}, true
}

// writeToolPayload wraps a payload in the tool result content envelope.
func (s *Server) writeToolPayload(w http.ResponseWriter, id json.RawMessage, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal tool payload", "error", err)
		jsonrpc.WriteError(w, id, jsonrpc.CodeInternalError, "encoding tool result", nil)
		return
	}
	result := toolgate.CallToolResult{
		Content: []toolgate.Content{{Type: "text", Text: string(data)}},
	}
	if err := jsonrpc.WriteResult(w, id, result); err != nil {
		s.logger.Error("failed to write tool result", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"server":  "triage-tools",
		"version": "1.0",
	})
}
