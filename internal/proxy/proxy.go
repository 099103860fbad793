// ABOUTME: Customer-data and support proxies translating tasks to A2A calls.
// ABOUTME: Inputs are validated before any network traffic leaves the gateway.

package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/triage-gateway/internal/a2a"
	"github.com/2389/triage-gateway/internal/dispatch"
	"github.com/2389/triage-gateway/internal/toolgate"
)

// DefaultTimeout is the transport-level ceiling for specialist calls.
// Per-task deadlines arrive via context and are expected to fire first.
const DefaultTimeout = 30 * time.Second

// Invoker is the orchestrator's view of a specialist.
type Invoker interface {
	Invoke(ctx context.Context, task *dispatch.Task) (*dispatch.Payload, error)
}

// Config configures a specialist proxy.
type Config struct {
	// Endpoint is the specialist's base URL.
	Endpoint string

	// Timeout bounds each call at the HTTP client; zero means
	// DefaultTimeout.
	Timeout time.Duration

	Logger *slog.Logger
}

func (c Config) client(component string) (*a2a.Client, *slog.Logger, error) {
	if c.Endpoint == "" {
		return nil, nil, fmt.Errorf("endpoint is required")
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return a2a.NewClient(c.Endpoint, timeout), logger.With("component", component), nil
}

// CustomerDataProxy fronts the customer-data specialist.
type CustomerDataProxy struct {
	agent  *a2a.Client
	logger *slog.Logger
}

// NewCustomerDataProxy creates a proxy for the customer-data endpoint.
func NewCustomerDataProxy(cfg Config) (*CustomerDataProxy, error) {
	agent, logger, err := cfg.client("customer-data-proxy")
	if err != nil {
		return nil, err
	}
	return &CustomerDataProxy{agent: agent, logger: logger}, nil
}

// Invoke validates the task, sends it, and normalizes the outcome.
func (p *CustomerDataProxy) Invoke(ctx context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
	if err := validateDataTask(task); err != nil {
		p.logger.Warn("rejected task before dispatch", "task_id", task.ID, "operation", task.Op, "error", err)
		return nil, err
	}
	return send(ctx, p.agent, p.logger, task)
}

// Health pings the specialist's liveness endpoint.
func (p *CustomerDataProxy) Health(ctx context.Context) error {
	return p.agent.Health(ctx)
}

// validateDataTask enforces the customer-data parameter rules. Anything
// rejected here never generates network traffic.
func validateDataTask(task *dispatch.Task) *Error {
	needsID := func() *Error {
		if task.Params.CustomerID <= 0 {
			return badRequest("customer id must be a positive integer, got %d", task.Params.CustomerID)
		}
		return nil
	}

	switch task.Op {
	case dispatch.OpFetchCustomer, dispatch.OpFetchHistory:
		return needsID()

	case dispatch.OpListCustomers:
		return nil

	case dispatch.OpUpdateCustomer:
		if err := needsID(); err != nil {
			return err
		}
		if len(task.Params.Fields) == 0 {
			return badRequest("update requires at least one field")
		}
		for name := range task.Params.Fields {
			if !toolgate.UpdatableField(name) {
				return badRequest("field %q is not updatable", name)
			}
		}
		return nil

	case dispatch.OpCreateTicket:
		if err := needsID(); err != nil {
			return err
		}
		if p := task.Params.TicketPriority; p != "" && !toolgate.ValidPriority(p) {
			return badRequest("priority must be low, medium, or high, got %q", p)
		}
		return nil
	}
	return badRequest("operation %q is not supported by the customer-data specialist", task.Op)
}

// SupportProxy fronts the support specialist.
type SupportProxy struct {
	agent  *a2a.Client
	logger *slog.Logger
}

// NewSupportProxy creates a proxy for the support endpoint.
func NewSupportProxy(cfg Config) (*SupportProxy, error) {
	agent, logger, err := cfg.client("support-proxy")
	if err != nil {
		return nil, err
	}
	return &SupportProxy{agent: agent, logger: logger}, nil
}

// Invoke validates the task, sends it, and normalizes the outcome.
func (p *SupportProxy) Invoke(ctx context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
	if task.Op != dispatch.OpSupport {
		return nil, badRequest("operation %q is not supported by the support specialist", task.Op)
	}
	if task.Params.Query == "" {
		return nil, badRequest("support task requires query text")
	}
	return send(ctx, p.agent, p.logger, task)
}

// Health pings the specialist's liveness endpoint.
func (p *SupportProxy) Health(ctx context.Context) error {
	return p.agent.Health(ctx)
}

// send performs the A2A round trip shared by both proxies.
func send(ctx context.Context, agent *a2a.Client, logger *slog.Logger, task *dispatch.Task) (*dispatch.Payload, error) {
	params, err := json.Marshal(task.Params)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Message: fmt.Sprintf("marshaling task params: %v", err)}
	}

	start := time.Now()
	raw, err := agent.SendTask(ctx, &a2a.TaskRequest{
		TaskID:    task.ID,
		Operation: string(task.Op),
		Params:    params,
	})
	if err != nil {
		norm := normalizeError(err)
		logger.Warn("specialist call failed",
			"task_id", task.ID,
			"operation", task.Op,
			"kind", norm.Kind,
			"duration", time.Since(start),
			"error", norm.Message)
		return nil, norm
	}

	var payload dispatch.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &Error{Kind: KindUnreachable, Message: fmt.Sprintf("decoding specialist result: %v", err)}
	}
	logger.Debug("specialist call completed",
		"task_id", task.ID,
		"operation", task.Op,
		"payload_kind", payload.Kind,
		"duration", time.Since(start))
	return &payload, nil
}
