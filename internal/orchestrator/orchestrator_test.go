// ABOUTME: Tests for the orchestration loop using fake specialist invokers.
// ABOUTME: Covers fan-out, escalation ordering, expansion, and failure policy.

package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/triage-gateway/internal/dispatch"
	"github.com/2389/triage-gateway/internal/intent"
	"github.com/2389/triage-gateway/internal/proxy"
	"github.com/2389/triage-gateway/internal/synthesis"
	"github.com/2389/triage-gateway/internal/toolgate"
)

// fakeInvoker records every task it sees and answers via its handler.
// Recording is mutex-guarded because tasks arrive from worker goroutines.
type fakeInvoker struct {
	mu      sync.Mutex
	calls   []dispatch.Task
	handler func(ctx context.Context, task *dispatch.Task) (*dispatch.Payload, error)
}

func (f *fakeInvoker) Invoke(ctx context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, *task)
	f.mu.Unlock()
	if f.handler == nil {
		return nil, &proxy.Error{Kind: proxy.KindUnreachable, Message: "no handler installed"}
	}
	return f.handler(ctx, task)
}

func (f *fakeInvoker) recorded() []dispatch.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dispatch.Task(nil), f.calls...)
}

func newTestOrchestrator(t *testing.T, data, support *fakeInvoker, opts ...func(*Config)) *Orchestrator {
	t.Helper()
	cfg := Config{
		Classifier:   intent.NewClassifier(nil),
		CustomerData: data,
		Support:      support,
		Synthesizer:  synthesis.NewSynthesizer(nil),
		TaskTimeout:  time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	orch, err := New(cfg)
	require.NoError(t, err)
	return orch
}

func advicePayload(text string) *dispatch.Payload {
	return &dispatch.Payload{Kind: dispatch.PayloadAdvice, Advice: &dispatch.Advice{Text: text}}
}

func TestNewValidatesConfig(t *testing.T) {
	base := Config{
		Classifier:   intent.NewClassifier(nil),
		CustomerData: &fakeInvoker{},
		Support:      &fakeInvoker{},
		Synthesizer:  synthesis.NewSynthesizer(nil),
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing classifier", func(c *Config) { c.Classifier = nil }},
		{"missing customer data", func(c *Config) { c.CustomerData = nil }},
		{"missing support", func(c *Config) { c.Support = nil }},
		{"missing synthesizer", func(c *Config) { c.Synthesizer = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			_, err := New(cfg)
			require.Error(t, err)
		})
	}
}

func TestHandleFetchCustomer(t *testing.T) {
	data := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		return &dispatch.Payload{Kind: dispatch.PayloadCustomer, Customer: &toolgate.Customer{
			ID: 5, Name: "Charlie Brown", Email: "charlie.brown@email.com", Status: "active",
		}}, nil
	}}
	orch := newTestOrchestrator(t, data, &fakeInvoker{})

	resp := orch.Handle(context.Background(), "Get customer information for ID 5")

	require.Len(t, resp.Sections, 1)
	assert.Equal(t, "Customer Record", resp.Sections[0].Title)
	assert.Contains(t, resp.Sections[0].Body, "Charlie Brown (id 5)")
	assert.False(t, resp.Escalated)

	calls := data.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, dispatch.OpFetchCustomer, calls[0].Op)
	assert.Equal(t, int64(5), calls[0].Params.CustomerID)
}

func TestHandleEscalatedSupport(t *testing.T) {
	support := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		return advicePayload("A refund request has been logged for review."), nil
	}}
	orch := newTestOrchestrator(t, &fakeInvoker{}, support)

	resp := orch.Handle(context.Background(), "I've been charged twice, please refund immediately!")

	assert.True(t, resp.Escalated)
	assert.Equal(t, "high", resp.EscalationPriority)
	assert.Equal(t, "refund request", resp.EscalationReason)
	assert.True(t, strings.HasPrefix(resp.Text, "**ESCALATION NOTICE**"), resp.Text)

	calls := support.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, dispatch.OpSupport, calls[0].Op)
	assert.True(t, calls[0].Escalated())
	require.NotNil(t, calls[0].Params.Escalation)
	assert.Equal(t, "refund request", calls[0].Params.Escalation.Reason)
}

func TestHandleMultiIntentKeepsOrder(t *testing.T) {
	data := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		switch task.Op {
		case dispatch.OpUpdateCustomer:
			return &dispatch.Payload{Kind: dispatch.PayloadUpdate, UpdatedFields: []string{"email"}}, nil
		case dispatch.OpFetchHistory:
			return &dispatch.Payload{Kind: dispatch.PayloadTickets}, nil
		}
		t.Errorf("unexpected operation %s", task.Op)
		return nil, &proxy.Error{Kind: proxy.KindUnreachable, Message: "unexpected"}
	}}
	orch := newTestOrchestrator(t, data, &fakeInvoker{})

	resp := orch.Handle(context.Background(), "Update my email to new@email.com and show my ticket history")

	require.Len(t, resp.Sections, 2)
	assert.Equal(t, "Update Confirmation", resp.Sections[0].Title)
	assert.Contains(t, resp.Sections[1].Title, "Ticket History")
	require.Len(t, data.recorded(), 2)
}

func TestHandleClarificationWhenNothingMatches(t *testing.T) {
	data := &fakeInvoker{}
	support := &fakeInvoker{}
	orch := newTestOrchestrator(t, data, support)

	resp := orch.Handle(context.Background(), "What is the weather today?")

	require.Len(t, resp.Sections, 1)
	assert.Equal(t, "Clarification Needed", resp.Sections[0].Title)
	assert.Empty(t, data.recorded())
	assert.Empty(t, support.recorded())
}

// filterDataHandler answers the combined-filter flow: a fixed customer
// list, then per-customer histories.
func filterDataHandler(customers []toolgate.Customer, histories map[int64][]toolgate.Ticket, fail map[int64]error) func(context.Context, *dispatch.Task) (*dispatch.Payload, error) {
	return func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		switch task.Op {
		case dispatch.OpListCustomers:
			return &dispatch.Payload{Kind: dispatch.PayloadCustomerList, Customers: customers}, nil
		case dispatch.OpFetchHistory:
			if err, ok := fail[task.Params.CustomerID]; ok {
				return nil, err
			}
			return &dispatch.Payload{Kind: dispatch.PayloadTickets, Tickets: histories[task.Params.CustomerID]}, nil
		}
		return nil, &proxy.Error{Kind: proxy.KindUnreachable, Message: "unexpected operation"}
	}
}

func TestComplexFilterExpandsAfterList(t *testing.T) {
	customers := []toolgate.Customer{
		{ID: 1, Name: "Alice Johnson", Email: "alice.johnson@email.com", Status: "active"},
		{ID: 2, Name: "Bob Smith", Email: "bob.smith@email.com", Status: "active"},
		{ID: 3, Name: "Carol White", Email: "carol.white@email.com", Status: "active"},
	}
	histories := map[int64][]toolgate.Ticket{
		1: {{ID: 5, CustomerID: 1, Issue: "Account upgrade inquiry", Status: "resolved", Priority: "medium"}},
		2: {{ID: 6, CustomerID: 2, Issue: "Charged twice for subscription", Status: "open", Priority: "high"}},
		3: {},
	}
	data := &fakeInvoker{handler: filterDataHandler(customers, histories, nil)}
	orch := newTestOrchestrator(t, data, &fakeInvoker{})

	resp := orch.Handle(context.Background(), "Show me all active customers who have open tickets")

	require.Len(t, resp.Sections, 1)
	body := resp.Sections[0].Body
	assert.Contains(t, body, "Bob Smith (id 2)")
	assert.NotContains(t, body, "Alice Johnson")
	assert.NotContains(t, body, "Carol White")

	// The list resolves before any history fetch is dispatched.
	calls := data.recorded()
	require.Len(t, calls, 4)
	assert.Equal(t, dispatch.OpListCustomers, calls[0].Op)
	seen := map[int64]bool{}
	for _, call := range calls[1:] {
		assert.Equal(t, dispatch.OpFetchHistory, call.Op)
		seen[call.Params.CustomerID] = true
	}
	assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true}, seen)
}

func TestComplexFilterCriticalPathStopsChildren(t *testing.T) {
	data := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		return nil, &proxy.Error{Kind: proxy.KindUnreachable, Message: "connection refused"}
	}}
	orch := newTestOrchestrator(t, data, &fakeInvoker{})

	resp := orch.Handle(context.Background(), "Show me all customers who have open tickets")

	require.Len(t, resp.Sections, 1)
	assert.True(t, resp.Sections[0].Failed)
	assert.Equal(t, "Unable To Complete", resp.Sections[0].Title)
	assert.Contains(t, resp.Sections[0].Body, "connection refused")

	// Only the list task ever reached the specialist.
	require.Len(t, data.recorded(), 1)
}

func TestComplexFilterPartialHistoryFailure(t *testing.T) {
	var customers []toolgate.Customer
	names := []string{"Alice Johnson", "Bob Smith", "Carol White", "David Brown", "Charlie Brown"}
	for i, name := range names {
		customers = append(customers, toolgate.Customer{
			ID: int64(i + 1), Name: name, Email: "x@email.com", Status: "active",
		})
	}
	histories := map[int64][]toolgate.Ticket{
		2: {{ID: 6, CustomerID: 2, Issue: "Charged twice for subscription", Status: "open", Priority: "high"}},
		5: {{ID: 13, CustomerID: 5, Issue: "Mobile app crashes on startup", Status: "open", Priority: "medium"}},
	}
	fail := map[int64]error{4: &proxy.Error{Kind: proxy.KindTimeout, Message: "specialist call timed out"}}
	data := &fakeInvoker{handler: filterDataHandler(customers, histories, fail)}
	orch := newTestOrchestrator(t, data, &fakeInvoker{})

	resp := orch.Handle(context.Background(), "Show me all active customers who have open tickets")

	require.Len(t, resp.Sections, 1)
	body := resp.Sections[0].Body
	assert.Contains(t, body, "David Brown (id 4): ticket history unavailable: specialist call timed out")
	assert.Contains(t, body, "Bob Smith (id 2)")
	assert.Contains(t, body, "Charlie Brown (id 5)")
	assert.NotContains(t, body, "Alice Johnson")
	assert.Contains(t, body, "2 with at least one open ticket")
}

func TestEscalatedSupportDispatchesFirst(t *testing.T) {
	var order []dispatch.Operation
	var mu sync.Mutex
	record := func(op dispatch.Operation) {
		mu.Lock()
		order = append(order, op)
		mu.Unlock()
	}

	data := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		record(task.Op)
		return &dispatch.Payload{Kind: dispatch.PayloadTicketCreated, TicketID: 16}, nil
	}}
	support := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		record(task.Op)
		return advicePayload("Handled ahead of the queue."), nil
	}}
	orch := newTestOrchestrator(t, data, support, func(c *Config) { c.MaxConcurrent = 1 })

	resp := orch.Handle(context.Background(), "This is urgent, please create a ticket for customer 3: the dashboard is down")

	require.True(t, resp.Escalated)
	require.Len(t, order, 2)
	assert.Equal(t, dispatch.OpSupport, order[0], "escalated support must dispatch before normal tasks")
	assert.Equal(t, dispatch.OpCreateTicket, order[1])
}

func TestSupportWaitsForCustomerContext(t *testing.T) {
	data := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		return &dispatch.Payload{Kind: dispatch.PayloadCustomer, Customer: &toolgate.Customer{
			ID: 5, Name: "Charlie Brown", Email: "charlie.brown@email.com", Status: "active",
		}}, nil
	}}
	support := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		return advicePayload("Thanks for reaching out, Charlie Brown."), nil
	}}
	orch := newTestOrchestrator(t, data, support)

	resp := orch.Handle(context.Background(), "Get customer information for ID 5 and help me with my subscription")

	require.Len(t, resp.Sections, 2)
	calls := support.recorded()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Params.Customer, "support task should carry the fetched customer")
	assert.Equal(t, "Charlie Brown", calls[0].Params.Customer.Name)
}

func TestSupportStillRunsWhenFetchFails(t *testing.T) {
	data := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		return nil, &proxy.Error{Kind: proxy.KindRemoteFault, Code: 404, Message: "customer 999 not found"}
	}}
	support := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		return advicePayload("Thanks for reaching out."), nil
	}}
	orch := newTestOrchestrator(t, data, support)

	resp := orch.Handle(context.Background(), "Get customer information for ID 999 and help me with my subscription")

	require.Len(t, resp.Sections, 2)
	assert.True(t, resp.Sections[0].Failed)
	assert.Contains(t, resp.Sections[0].Body, "fetch_customer failed")
	assert.Equal(t, "Support Guidance", resp.Sections[1].Title)

	calls := support.recorded()
	require.Len(t, calls, 1)
	assert.Nil(t, calls[0].Params.Customer)
}

func TestWorstCaseIsAllFailureNotes(t *testing.T) {
	orch := newTestOrchestrator(t, &fakeInvoker{}, &fakeInvoker{})

	resp := orch.Handle(context.Background(), "Update my email to new@email.com and show my ticket history")

	require.NotNil(t, resp)
	require.Len(t, resp.Sections, 2)
	for _, s := range resp.Sections {
		assert.True(t, s.Failed)
	}
}

func TestTaskContextCarriesDeadline(t *testing.T) {
	var hadDeadline bool
	data := &fakeInvoker{handler: func(ctx context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		_, hadDeadline = ctx.Deadline()
		return &dispatch.Payload{Kind: dispatch.PayloadCustomer, Customer: &toolgate.Customer{ID: 5, Name: "Charlie Brown"}}, nil
	}}
	orch := newTestOrchestrator(t, data, &fakeInvoker{}, func(c *Config) { c.TaskTimeout = 50 * time.Millisecond })

	orch.Handle(context.Background(), "Get customer information for ID 5")

	assert.True(t, hadDeadline, "task context must carry the task timeout")
}

func TestHandleTextIsRepeatable(t *testing.T) {
	data := &fakeInvoker{handler: func(_ context.Context, task *dispatch.Task) (*dispatch.Payload, error) {
		return &dispatch.Payload{Kind: dispatch.PayloadCustomer, Customer: &toolgate.Customer{
			ID: 5, Name: "Charlie Brown", Email: "charlie.brown@email.com", Status: "active",
		}}, nil
	}}
	orch := newTestOrchestrator(t, data, &fakeInvoker{})

	first := orch.Handle(context.Background(), "Get customer information for ID 5")
	second := orch.Handle(context.Background(), "Get customer information for ID 5")

	assert.Equal(t, first.Text, second.Text)
	assert.NotEqual(t, first.QueryID, second.QueryID)
}
