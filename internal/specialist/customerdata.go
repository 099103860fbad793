// ABOUTME: Customer-data agent translating A2A task operations into tool calls.
// ABOUTME: Maps tool-gateway failures onto structured task faults.

package specialist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/triage-gateway/internal/a2a"
	"github.com/2389/triage-gateway/internal/dispatch"
	"github.com/2389/triage-gateway/internal/jsonrpc"
	"github.com/2389/triage-gateway/internal/toolgate"
)

// CustomerDataConfig configures the customer-data agent.
type CustomerDataConfig struct {
	// Tools is the client for the tool gateway backing every operation.
	Tools *toolgate.Client

	// BaseURL is the externally reachable address advertised in the
	// agent card.
	BaseURL string

	Logger *slog.Logger
}

// CustomerDataAgent executes customer database operations. It holds no
// state of its own; every operation is a pass-through to the tool gateway
// with the result shaped into a dispatch payload.
type CustomerDataAgent struct {
	tools   *toolgate.Client
	baseURL string
	logger  *slog.Logger
}

// NewCustomerDataAgent creates the agent. The tool client is required.
func NewCustomerDataAgent(cfg CustomerDataConfig) (*CustomerDataAgent, error) {
	if cfg.Tools == nil {
		return nil, fmt.Errorf("tool client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerDataAgent{
		tools:   cfg.Tools,
		baseURL: cfg.BaseURL,
		logger:  logger.With("component", "customer-data-agent"),
	}, nil
}

// Card returns the agent's discovery document.
func (a *CustomerDataAgent) Card() a2a.AgentCard {
	return a2a.AgentCard{
		Name:               "Customer Data Agent",
		Description:        "Accesses the customer database via the tool gateway for data operations",
		URL:                a.baseURL,
		Version:            "1.0",
		PreferredTransport: a2a.TransportName,
		Skills: []a2a.AgentSkill{
			{
				ID:          "customer_data_operations",
				Name:        "Customer Data Operations",
				Description: "Retrieve, update, and manage customer records and tickets",
			},
		},
	}
}

// Execute runs one task operation against the tool gateway.
func (a *CustomerDataAgent) Execute(ctx context.Context, task *a2a.TaskRequest) (any, error) {
	var p dispatch.Params
	if len(task.Params) > 0 {
		if err := json.Unmarshal(task.Params, &p); err != nil {
			return nil, a2a.Fault(jsonrpc.CodeInvalidParams, "malformed task params: %v", err)
		}
	}

	op := dispatch.Operation(task.Operation)
	a.logger.Debug("executing task", "task_id", task.TaskID, "operation", task.Operation)

	payload, err := a.run(ctx, op, &p)
	if err != nil {
		a.logger.Warn("task failed", "task_id", task.TaskID, "operation", task.Operation, "error", err)
		return nil, faultFromToolError(err)
	}
	return payload, nil
}

func (a *CustomerDataAgent) run(ctx context.Context, op dispatch.Operation, p *dispatch.Params) (*dispatch.Payload, error) {
	switch op {
	case dispatch.OpFetchCustomer:
		customer, err := a.tools.GetCustomer(ctx, p.CustomerID)
		if err != nil {
			return nil, err
		}
		return &dispatch.Payload{Kind: dispatch.PayloadCustomer, Customer: customer}, nil

	case dispatch.OpListCustomers:
		customers, err := a.tools.ListCustomers(ctx, p.StatusFilter, p.Limit)
		if err != nil {
			return nil, err
		}
		return &dispatch.Payload{Kind: dispatch.PayloadCustomerList, Customers: customers}, nil

	case dispatch.OpUpdateCustomer:
		updated, err := a.tools.UpdateCustomer(ctx, p.CustomerID, p.Fields)
		if err != nil {
			return nil, err
		}
		return &dispatch.Payload{Kind: dispatch.PayloadUpdate, UpdatedFields: updated}, nil

	case dispatch.OpCreateTicket:
		ticketID, err := a.tools.CreateTicket(ctx, p.CustomerID, p.Issue, p.TicketPriority)
		if err != nil {
			return nil, err
		}
		return &dispatch.Payload{Kind: dispatch.PayloadTicketCreated, TicketID: ticketID}, nil

	case dispatch.OpFetchHistory:
		tickets, err := a.tools.GetCustomerHistory(ctx, p.CustomerID)
		if err != nil {
			return nil, err
		}
		return &dispatch.Payload{Kind: dispatch.PayloadTickets, Tickets: tickets}, nil
	}
	return nil, a2a.Fault(a2a.CodeBadRequest, "unsupported operation %q", op)
}

// faultFromToolError converts tool-gateway sentinel failures into
// structured faults so callers see a machine-readable code. Anything else
// passes through and is reported as a generic task failure.
func faultFromToolError(err error) error {
	switch {
	case errors.Is(err, toolgate.ErrNotFound):
		return a2a.Fault(a2a.CodeNotFound, "%v", err)
	case errors.Is(err, toolgate.ErrInvalidField),
		errors.Is(err, toolgate.ErrInvalidPriority),
		errors.Is(err, toolgate.ErrInvalidStatus):
		return a2a.Fault(a2a.CodeBadRequest, "%v", err)
	}
	return err
}
