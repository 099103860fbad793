// ABOUTME: Core types for classified queries: Query, Intent, Classification.
// ABOUTME: Defines intent kinds, escalation priorities, and the no-match error.

package intent

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoIntentMatched reports that no classification rule fired for a query.
var ErrNoIntentMatched = errors.New("no intent matched")

// Kind identifies one class of customer request.
type Kind string

const (
	KindFetchCustomer  Kind = "fetch_customer"
	KindListCustomers  Kind = "list_customers"
	KindUpdateCustomer Kind = "update_customer"
	KindCreateTicket   Kind = "create_ticket"
	KindFetchHistory   Kind = "fetch_history"
	KindComplexFilter  Kind = "complex_filter"
	KindSupport        Kind = "support"
)

// Priority is an escalation severity level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// rank orders priorities so higher-severity triggers win.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Query is one inbound customer request. The text views are computed once
// at construction and reused by every rule.
type Query struct {
	ID         string
	Text       string
	ReceivedAt time.Time

	// normalized is lowercase with punctuation collapsed to spaces, for
	// keyword and phrase predicates.
	normalized string
	// lowered is the lowercase original, for extractors that need
	// punctuation preserved (email addresses, phone numbers).
	lowered string
}

// NewQuery wraps raw query text with an id and the derived text views.
func NewQuery(text string) *Query {
	return &Query{
		ID:         uuid.NewString(),
		Text:       text,
		ReceivedAt: time.Now().UTC(),
		normalized: normalize(text),
		lowered:    strings.ToLower(text),
	}
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// normalize lowercases text, replaces punctuation runs with single spaces,
// and trims the result.
func normalize(text string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(text), " "))
}

// Intent is one classified request with its extracted entities. Kind
// selects which entity fields are meaningful.
type Intent struct {
	Kind Kind

	// CustomerID is zero when the query named no id. Downstream input
	// validation decides whether that is an error for the operation.
	CustomerID int64

	// Fields holds field/value pairs for update requests.
	Fields map[string]string

	// StatusFilter and Limit narrow customer listings.
	StatusFilter string
	Limit        int

	// Issue and TicketPriority describe a ticket to create.
	Issue          string
	TicketPriority string

	// Query carries the raw text for support requests.
	Query string
}

// EscalationFlag marks a query that needs priority handling. It is
// detected independently of intent matching and never cleared once set.
type EscalationFlag struct {
	Priority Priority
	Reason   string
}

// Classification is the ordered outcome of classifying one query.
type Classification struct {
	// Intents holds every fired intent in rule-evaluation order. The
	// multi-intent case is simply len(Intents) > 1.
	Intents []Intent

	// Escalation is nil unless an escalation trigger fired.
	Escalation *EscalationFlag
}

// Escalated reports whether the query carries an escalation flag.
func (c *Classification) Escalated() bool {
	return c.Escalation != nil
}
