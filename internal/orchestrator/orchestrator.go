// ABOUTME: The orchestration loop: bounded fan-out over the task graph,
// ABOUTME: runtime expansion, context injection, and result collection.

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/triage-gateway/internal/dispatch"
	"github.com/2389/triage-gateway/internal/intent"
	"github.com/2389/triage-gateway/internal/proxy"
	"github.com/2389/triage-gateway/internal/synthesis"
)

const (
	// DefaultMaxConcurrent bounds how many tasks run at once.
	DefaultMaxConcurrent = 4

	// DefaultTaskTimeout bounds one specialist call.
	DefaultTaskTimeout = 10 * time.Second
)

// Config wires an orchestrator. Classifier, both invokers, and the
// synthesizer are required.
type Config struct {
	Classifier   *intent.Classifier
	CustomerData proxy.Invoker
	Support      proxy.Invoker
	Synthesizer  *synthesis.Synthesizer

	// MaxConcurrent bounds parallel tasks; zero means
	// DefaultMaxConcurrent.
	MaxConcurrent int

	// TaskTimeout bounds each task's specialist call; zero means
	// DefaultTaskTimeout.
	TaskTimeout time.Duration

	Logger *slog.Logger
}

// Orchestrator drives queries through the lifecycle. It is stateless
// between queries and safe for concurrent Handle calls; each call builds
// its own execution record.
type Orchestrator struct {
	classifier    *intent.Classifier
	customerData  proxy.Invoker
	support       proxy.Invoker
	synthesizer   *synthesis.Synthesizer
	maxConcurrent int
	taskTimeout   time.Duration
	logger        *slog.Logger
}

// New creates an orchestrator from the config.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if cfg.CustomerData == nil {
		return nil, fmt.Errorf("customer-data invoker is required")
	}
	if cfg.Support == nil {
		return nil, fmt.Errorf("support invoker is required")
	}
	if cfg.Synthesizer == nil {
		return nil, fmt.Errorf("synthesizer is required")
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	taskTimeout := cfg.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = DefaultTaskTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		classifier:    cfg.Classifier,
		customerData:  cfg.CustomerData,
		support:       cfg.Support,
		synthesizer:   cfg.Synthesizer,
		maxConcurrent: maxConcurrent,
		taskTimeout:   taskTimeout,
		logger:        logger.With("component", "orchestrator"),
	}, nil
}

// Handle answers one query. It never returns an error: classification
// misses produce a clarification response, and task failures are folded
// into the synthesized answer.
func (o *Orchestrator) Handle(ctx context.Context, text string) *synthesis.FinalResponse {
	q := intent.NewQuery(text)
	exec := newExecution(q, o.logger)
	exec.logger.Info("query received", "text", text)

	cls, err := o.classifier.Classify(q)
	if err != nil {
		exec.logger.Warn("classification failed", "error", err)
		exec.transition(StateFailed)
		return o.synthesizer.Clarification(q)
	}
	exec.cls = cls
	exec.transition(StateClassified, "intents", len(cls.Intents), "escalated", cls.Escalated())

	exec.graph = o.buildPlan(q, cls)
	exec.transition(StateDispatching, "tasks", exec.graph.Len())

	o.run(ctx, exec)

	exec.transition(StateSynthesizing, "results", len(exec.results))
	resp := o.synthesizer.Synthesize(q, cls, exec.results)
	exec.transition(StateCompleted, "sections", len(resp.Sections))
	exec.logger.Info("query completed",
		"sections", len(resp.Sections),
		"escalated", resp.Escalated,
		"tasks", len(exec.results))
	return resp
}

// outcome is one worker's report back to the loop.
type outcome struct {
	task    *dispatch.Task
	payload *dispatch.Payload
	err     error
}

// run executes the task graph. Only this loop touches the graph and the
// result list; workers are limited to the remote call itself.
func (o *Orchestrator) run(ctx context.Context, exec *execution) {
	outcomes := make(chan outcome)
	running := 0

	dispatchReady := func() {
		for _, task := range exec.graph.Ready() {
			if running >= o.maxConcurrent {
				break
			}
			exec.graph.MarkDispatched(task.ID)
			running++
			exec.logger.Debug("task dispatched",
				"task_id", task.ID,
				"operation", task.Op,
				"target", task.Target,
				"escalated", task.Escalated())
			go o.invoke(ctx, task, outcomes)
		}
		if exec.graph.Unresolved() > 0 {
			exec.transition(StateAwaiting, "pending", exec.graph.Unresolved(), "running", running)
		}
	}

	dispatchReady()
	for exec.graph.Unresolved() > 0 {
		if running == 0 {
			// Every remaining task is blocked; resolution on failure
			// makes this unreachable unless the graph is malformed.
			exec.logger.Error("task graph stalled", "unresolved", exec.graph.Unresolved())
			return
		}
		out := <-outcomes
		running--
		o.resolve(exec, out)
		dispatchReady()
	}
}

// invoke runs on a worker goroutine: one specialist call under the task
// timeout, then exactly one outcome send.
func (o *Orchestrator) invoke(ctx context.Context, task *dispatch.Task, outcomes chan<- outcome) {
	taskCtx, cancel := context.WithTimeout(ctx, o.taskTimeout)
	defer cancel()

	invoker := o.customerData
	if task.Target == dispatch.TargetSupport {
		invoker = o.support
	}
	payload, err := invoker.Invoke(taskCtx, task)
	outcomes <- outcome{task: task, payload: payload, err: err}
}

// resolve records one outcome and applies its side effects: filter
// expansion, critical-path collapse, and customer context injection.
func (o *Orchestrator) resolve(exec *execution, out outcome) {
	task := out.task
	exec.graph.MarkResolved(task.ID)

	result := dispatch.PartialResult{
		TaskID:      task.ID,
		IntentIndex: task.IntentIndex,
		Op:          task.Op,
		Target:      task.Target,
		Payload:     out.payload,
		Err:         out.err,
	}

	kind := exec.cls.Intents[task.IntentIndex].Kind
	filterRoot := kind == intent.KindComplexFilter && task.Op == dispatch.OpListCustomers

	switch {
	case filterRoot && out.err != nil:
		// The list is the root of the filter branch; its dependents are
		// never created.
		result.Err = &dispatch.CriticalPathError{Op: task.Op, Err: out.err}
		exec.logger.Warn("critical path failure",
			"task_id", task.ID,
			"operation", task.Op,
			"error", out.err)

	case filterRoot:
		o.expandFilter(exec, task, out.payload)

	case kind == intent.KindComplexFilter && task.Op == dispatch.OpFetchHistory:
		result.CustomerID = task.Params.CustomerID

	case task.Op == dispatch.OpFetchCustomer && out.err == nil:
		o.injectCustomer(exec, task, out.payload)
	}

	if out.err != nil {
		exec.logger.Warn("task failed", "task_id", task.ID, "operation", task.Op, "error", out.err)
	} else {
		exec.logger.Debug("task completed", "task_id", task.ID, "operation", task.Op)
	}
	exec.results = append(exec.results, result)
}

// expandFilter grows the graph with one history fetch per listed
// customer. Adding them only after the list resolved is what enforces
// the dispatch ordering for the filter branch.
func (o *Orchestrator) expandFilter(exec *execution, root *dispatch.Task, payload *dispatch.Payload) {
	for _, c := range payload.Customers {
		child := &dispatch.Task{
			ID:          fmt.Sprintf("%s-customer-%d", root.ID, c.ID),
			IntentIndex: root.IntentIndex,
			Target:      dispatch.TargetCustomerData,
			Op:          dispatch.OpFetchHistory,
			Params:      dispatch.Params{CustomerID: c.ID},
			Priority:    root.Priority,
		}
		if err := exec.graph.Add(child); err != nil {
			exec.logger.Error("failed to expand filter task", "task_id", child.ID, "error", err)
		}
	}
	exec.logger.Debug("filter expanded",
		"task_id", root.ID,
		"history_fetches", len(payload.Customers))
}

// injectCustomer attaches a successfully fetched customer record to any
// support task waiting on the fetch, so advice can address the customer
// by name.
func (o *Orchestrator) injectCustomer(exec *execution, fetched *dispatch.Task, payload *dispatch.Payload) {
	if payload == nil || payload.Customer == nil {
		return
	}
	customer := payload.Customer
	for _, id := range exec.graph.Dependents(fetched.ID) {
		dep := exec.graph.Task(id)
		if dep.Op == dispatch.OpSupport && dep.Params.Customer == nil {
			dep.Params.Customer = customer
			exec.logger.Debug("customer context attached",
				"task_id", dep.ID,
				"customer_id", customer.ID)
		}
	}
}
