// ABOUTME: Wire types for the tool service protocol: value objects, tool names,
// ABOUTME: call envelopes, and the failure codes shared by client and server.

package toolgate

import (
	"encoding/json"
	"errors"
)

// Tool names exposed by the tool service.
const (
	ToolGetCustomer        = "get_customer"
	ToolListCustomers      = "list_customers"
	ToolUpdateCustomer     = "update_customer"
	ToolCreateTicket       = "create_ticket"
	ToolGetCustomerHistory = "get_customer_history"
)

// Customer status values.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Ticket status values.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
)

// Ticket priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// DefaultListLimit is applied by the server when list_customers gets no limit.
const DefaultListLimit = 100

// ValidPriority reports whether p is a recognized ticket priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ValidStatus reports whether s is a recognized customer status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusDisabled
}

// UpdatableFields lists the customer fields update_customer accepts.
var UpdatableFields = []string{"name", "email", "phone", "status"}

// UpdatableField reports whether name can be written through update_customer.
func UpdatableField(name string) bool {
	for _, f := range UpdatableFields {
		if f == name {
			return true
		}
	}
	return false
}

// Customer is the read-only customer record returned by the tool service.
// Timestamps stay in the store's string form so responses render identically
// across runs.
type Customer struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Ticket is the read-only support ticket record returned by the tool service.
type Ticket struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	Issue      string `json:"issue"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// ToolInfo describes one tool in the tools/list catalog.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ListToolsResult is the result for tools/list.
type ListToolsResult struct {
	Tools []ToolInfo `json:"tools"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is the result for tools/call.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content is one content item in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Failure codes carried in the success envelope when Success is false.
const (
	CodeNotFound        = "not_found"
	CodeInvalidField    = "invalid_field"
	CodeInvalidPriority = "invalid_priority"
	CodeInvalidStatus   = "invalid_status"
)

// Sentinel errors the client maps failure envelopes onto.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidField    = errors.New("invalid field")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
)

// Envelope is the success/failure wrapper inside every tool payload.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// GetCustomerResult is the payload for get_customer.
type GetCustomerResult struct {
	Envelope
	Customer *Customer `json:"customer,omitempty"`
}

// ListCustomersResult is the payload for list_customers.
type ListCustomersResult struct {
	Envelope
	Count     int        `json:"count"`
	Customers []Customer `json:"customers,omitempty"`
}

// UpdateCustomerResult is the payload for update_customer.
type UpdateCustomerResult struct {
	Envelope
	CustomerID    int64    `json:"customer_id,omitempty"`
	UpdatedFields []string `json:"updated_fields,omitempty"`
}

// CreateTicketResult is the payload for create_ticket.
type CreateTicketResult struct {
	Envelope
	TicketID   int64  `json:"ticket_id,omitempty"`
	CustomerID int64  `json:"customer_id,omitempty"`
	Issue      string `json:"issue,omitempty"`
	Priority   string `json:"priority,omitempty"`
	Status     string `json:"status,omitempty"`
}

// CustomerHistoryResult is the payload for get_customer_history.
type CustomerHistoryResult struct {
	Envelope
	CustomerID  int64    `json:"customer_id,omitempty"`
	TicketCount int      `json:"ticket_count"`
	Tickets     []Ticket `json:"tickets,omitempty"`
}

// Argument shapes for tools/call.

// GetCustomerArgs are the arguments for get_customer.
type GetCustomerArgs struct {
	CustomerID int64 `json:"customer_id"`
}

// ListCustomersArgs are the arguments for list_customers.
type ListCustomersArgs struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// UpdateCustomerArgs are the arguments for update_customer.
type UpdateCustomerArgs struct {
	CustomerID int64             `json:"customer_id"`
	Data       map[string]string `json:"data"`
}

// CreateTicketArgs are the arguments for create_ticket.
type CreateTicketArgs struct {
	CustomerID int64  `json:"customer_id"`
	Issue      string `json:"issue"`
	Priority   string `json:"priority,omitempty"`
}

// CustomerHistoryArgs are the arguments for get_customer_history.
type CustomerHistoryArgs struct {
	CustomerID int64 `json:"customer_id"`
}
