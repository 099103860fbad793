// ABOUTME: Wire types for the agent-to-agent protocol.
// ABOUTME: Task requests, agent cards, and fault code constants.

package a2a

import (
	"encoding/json"
	"fmt"

	"github.com/2389/triage-gateway/internal/jsonrpc"
)

const (
	// MethodSendTask is the single JSON-RPC method specialists accept.
	MethodSendTask = "tasks/send"

	// TaskPath is the JSON-RPC endpoint path on every specialist.
	TaskPath = "/a2a"

	// AgentCardPath is the well-known discovery document path.
	AgentCardPath = "/.well-known/a2a-agent-card.json"

	// TransportName identifies the preferred transport in agent cards.
	TransportName = "jsonrpc"
)

// Fault codes carried in structured task faults. CodeTaskFailed covers
// execution failures with no more specific code; the rest mirror HTTP
// status semantics so they read the same in logs on both sides.
const (
	CodeTaskFailed = -32000
	CodeBadRequest = 400
	CodeNotFound   = 404
)

// TaskRequest is the params object of a tasks/send call. Params is raw
// JSON whose shape is agreed between the sending proxy and the receiving
// specialist.
type TaskRequest struct {
	TaskID    string          `json:"task_id"`
	Operation string          `json:"operation"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// AgentCard is the discovery document a specialist serves.
type AgentCard struct {
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	URL                string       `json:"url"`
	Version            string       `json:"version"`
	PreferredTransport string       `json:"preferred_transport"`
	Capabilities       Capabilities `json:"capabilities"`
	Skills             []AgentSkill `json:"skills"`
}

// Capabilities flags what the agent's transport supports.
type Capabilities struct {
	Streaming bool `json:"streaming"`
}

// AgentSkill describes one operation an agent advertises.
type AgentSkill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Fault builds a structured task fault carrying the given code, for
// specialists to return from Execute.
func Fault(code int, format string, args ...any) *jsonrpc.Error {
	return &jsonrpc.Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
