// ABOUTME: Task, target, and parameter types for specialist dispatch.
// ABOUTME: One task is one operation routed to one specialist.

package dispatch

import "github.com/2389/triage-gateway/internal/toolgate"

// Target names the specialist a task is routed to.
type Target string

const (
	TargetCustomerData Target = "customer-data"
	TargetSupport      Target = "support"
)

// Operation names the work a specialist performs for a task.
type Operation string

const (
	OpFetchCustomer  Operation = "fetch_customer"
	OpListCustomers  Operation = "list_customers"
	OpUpdateCustomer Operation = "update_customer"
	OpCreateTicket   Operation = "create_ticket"
	OpFetchHistory   Operation = "fetch_history"
	OpSupport        Operation = "support_advice"
)

// TaskPriority separates escalated work from the normal queue.
type TaskPriority string

const (
	PriorityNormal    TaskPriority = "normal"
	PriorityEscalated TaskPriority = "escalated"
)

// Escalation carries the severity and reason attached to an escalated
// query, so specialists see why the work was prioritized.
type Escalation struct {
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// Params holds every operation parameter a task can carry; the task's
// Operation decides which fields are meaningful.
type Params struct {
	CustomerID     int64             `json:"customer_id,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
	StatusFilter   string            `json:"status_filter,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	Issue          string            `json:"issue,omitempty"`
	TicketPriority string            `json:"ticket_priority,omitempty"`
	Query          string            `json:"query,omitempty"`

	// Escalation is set on support tasks for escalated queries.
	Escalation *Escalation `json:"escalation,omitempty"`

	// Customer is resolved context injected after a prerequisite fetch
	// completes; nil when the fetch failed or never ran.
	Customer *toolgate.Customer `json:"customer,omitempty"`
}

// Task is one unit of work bound to a specialist. IntentIndex records the
// position of the originating intent in classification order, which fixes
// where the task's result appears in the final response.
type Task struct {
	ID          string
	IntentIndex int
	Target      Target
	Op          Operation
	Params      Params
	DependsOn   []string
	Priority    TaskPriority
}

// Escalated reports whether the task runs ahead of the normal queue.
func (t *Task) Escalated() bool {
	return t.Priority == PriorityEscalated
}
