// ABOUTME: HTTP server half of the agent-to-agent protocol.
// ABOUTME: Routes tasks/send calls into an Agent and serves its card and health.

package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/2389/triage-gateway/internal/jsonrpc"
)

// Agent is the specialist behind a server: it describes itself and
// executes tasks. Execute returns the result to serialize, or an error;
// a *jsonrpc.Error is forwarded as-is, anything else becomes a
// CodeTaskFailed fault.
type Agent interface {
	Card() AgentCard
	Execute(ctx context.Context, req *TaskRequest) (any, error)
}

// Server exposes one Agent over the a2a protocol.
type Server struct {
	agent  Agent
	logger *slog.Logger
}

// NewServer wraps an agent. A nil logger falls back to the default.
func NewServer(agent Agent, logger *slog.Logger) (*Server, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{agent: agent, logger: logger}, nil
}

// RegisterRoutes attaches the protocol endpoints to a mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(TaskPath, s.handleTask)
	mux.HandleFunc(AgentCardPath, s.handleCard)
	mux.HandleFunc("/health", s.handleHealth)
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, rpcErr := jsonrpc.ReadRequest(r.Body)
	if rpcErr != nil {
		s.writeError(w, nil, rpcErr)
		return
	}

	if req.Method != MethodSendTask {
		s.writeError(w, req.ID, &jsonrpc.Error{
			Code:    jsonrpc.CodeMethodNotFound,
			Message: "unknown method: " + req.Method,
		})
		return
	}

	var task TaskRequest
	if err := json.Unmarshal(req.Params, &task); err != nil {
		s.writeError(w, req.ID, &jsonrpc.Error{
			Code:    jsonrpc.CodeInvalidParams,
			Message: "invalid task request: " + err.Error(),
		})
		return
	}
	if task.TaskID == "" || task.Operation == "" {
		s.writeError(w, req.ID, &jsonrpc.Error{
			Code:    jsonrpc.CodeInvalidParams,
			Message: "task_id and operation are required",
		})
		return
	}

	s.logger.Debug("task received", "task_id", task.TaskID, "operation", task.Operation)

	result, err := s.agent.Execute(r.Context(), &task)
	if err != nil {
		var fault *jsonrpc.Error
		if !errors.As(err, &fault) {
			fault = &jsonrpc.Error{Code: CodeTaskFailed, Message: err.Error()}
		}
		s.logger.Debug("task failed",
			"task_id", task.TaskID,
			"operation", task.Operation,
			"code", fault.Code,
			"error", fault.Message)
		s.writeError(w, req.ID, fault)
		return
	}

	if err := jsonrpc.WriteResult(w, req.ID, result); err != nil {
		s.logger.Error("failed to write task result", "task_id", task.TaskID, "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, id json.RawMessage, fault *jsonrpc.Error) {
	if err := jsonrpc.WriteError(w, id, fault.Code, fault.Message, fault.Data); err != nil {
		s.logger.Error("failed to write task fault", "error", err)
	}
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.agent.Card()); err != nil {
		s.logger.Error("failed to write agent card", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"agent":  s.agent.Card().Name,
	})
}
