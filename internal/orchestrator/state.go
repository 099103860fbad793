// ABOUTME: Query lifecycle states and the per-query execution record.
// ABOUTME: Transitions are logged so a query's path is reconstructable.

package orchestrator

import (
	"log/slog"

	"github.com/2389/triage-gateway/internal/dispatch"
	"github.com/2389/triage-gateway/internal/intent"
)

// State names a stage in the query lifecycle.
type State string

const (
	StateReceived     State = "received"
	StateClassified   State = "classified"
	StateDispatching  State = "dispatching"
	StateAwaiting     State = "awaiting"
	StateSynthesizing State = "synthesizing"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// execution is the mutable record of one query moving through the
// lifecycle. It lives on the loop goroutine only.
type execution struct {
	query   *intent.Query
	cls     *intent.Classification
	graph   *dispatch.Graph
	results []dispatch.PartialResult
	state   State
	logger  *slog.Logger
}

func newExecution(q *intent.Query, logger *slog.Logger) *execution {
	return &execution{
		query:  q,
		state:  StateReceived,
		logger: logger.With("query_id", q.ID),
	}
}

// transition moves the execution to a new state, logging the step with
// any extra attributes.
func (e *execution) transition(to State, attrs ...any) {
	args := append([]any{"from", string(e.state), "to", string(to)}, attrs...)
	e.logger.Debug("state transition", args...)
	e.state = to
}
