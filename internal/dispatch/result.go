// ABOUTME: Partial results and the closed payload variant specialists return.
// ABOUTME: Also defines the critical-path error for collapsed task branches.

package dispatch

import (
	"fmt"

	"github.com/2389/triage-gateway/internal/toolgate"
)

// PayloadKind tags which field of a Payload is populated.
type PayloadKind string

const (
	PayloadCustomer      PayloadKind = "customer"
	PayloadCustomerList  PayloadKind = "customer_list"
	PayloadTickets       PayloadKind = "tickets"
	PayloadTicketCreated PayloadKind = "ticket_created"
	PayloadUpdate        PayloadKind = "update"
	PayloadAdvice        PayloadKind = "advice"
)

// Advice is the support specialist's answer for one query.
type Advice struct {
	Text                string `json:"text"`
	RecommendedPriority string `json:"recommended_priority,omitempty"`
}

// Payload is the closed set of result shapes a specialist can return.
// Exactly one field matching Kind is populated, which forces exhaustive
// handling when results are rendered.
type Payload struct {
	Kind PayloadKind `json:"kind"`

	Customer      *toolgate.Customer  `json:"customer,omitempty"`
	Customers     []toolgate.Customer `json:"customers,omitempty"`
	Tickets       []toolgate.Ticket   `json:"tickets,omitempty"`
	TicketID      int64               `json:"ticket_id,omitempty"`
	UpdatedFields []string            `json:"updated_fields,omitempty"`
	Advice        *Advice             `json:"advice,omitempty"`
}

// PartialResult is the outcome of one task: a payload on success, an
// error on failure, never both. Results are append-only per query.
type PartialResult struct {
	TaskID      string
	IntentIndex int
	Op          Operation
	Target      Target

	// CustomerID scopes the result when the task was expanded from a
	// combined filter, one history fetch per listed customer. Zero for
	// all other tasks.
	CustomerID int64

	Payload *Payload
	Err     error
}

// Failed reports whether the task produced an error instead of a payload.
func (r *PartialResult) Failed() bool {
	return r.Err != nil
}

// CriticalPathError marks a branch whose prerequisite failed, so the
// dependent work could never be created.
type CriticalPathError struct {
	// Op is the prerequisite operation that failed.
	Op  Operation
	Err error
}

func (e *CriticalPathError) Error() string {
	return fmt.Sprintf("critical path failure: %s: %v", e.Op, e.Err)
}

func (e *CriticalPathError) Unwrap() error {
	return e.Err
}
