// ABOUTME: The rule-driven classifier that maps queries to ordered intents.
// ABOUTME: Runs escalation detection first, then the fixed rule table.

package intent

import (
	"fmt"
	"log/slog"
)

// Rule names, used for suppression and logging.
const (
	ruleComplexFilter  = "complex-filter"
	ruleUpdateCustomer = "update-customer"
	ruleCreateTicket   = "create-ticket"
	ruleFetchHistory   = "fetch-history"
	ruleListCustomers  = "list-customers"
	ruleFetchCustomer  = "fetch-customer"
	ruleSupport        = "support"
)

// rule pairs a predicate with an entity extractor. A rule fires only when
// the predicate matches and the extractor succeeds.
type rule struct {
	name    string
	match   func(q *Query, esc *EscalationFlag) bool
	extract func(q *Query, esc *EscalationFlag) (Intent, bool)
}

// rules is the fixed evaluation order. Every rule that fires contributes
// one intent, in this order.
var rules = []rule{
	{ruleComplexFilter, matchComplexFilter, extractComplexFilter},
	{ruleUpdateCustomer, matchUpdateCustomer, extractUpdateCustomer},
	{ruleCreateTicket, matchCreateTicket, extractCreateTicket},
	{ruleFetchHistory, matchFetchHistory, extractFetchHistory},
	{ruleListCustomers, matchListCustomers, extractListCustomers},
	{ruleFetchCustomer, matchFetchCustomer, extractFetchCustomer},
	{ruleSupport, matchSupport, extractSupport},
}

// escalationTrigger binds a keyword set to a severity and reason. Earlier
// triggers win the reason when several fire at the same severity.
type escalationTrigger struct {
	priority Priority
	reason   string
	keywords []string
}

var escalationTriggers = []escalationTrigger{
	{PriorityHigh, "refund request", []string{"refund", "refunded", "money back"}},
	{PriorityHigh, "billing dispute", []string{"charged", "charge", "billing", "overcharged", "double charged"}},
	{PriorityHigh, "urgent request", []string{"urgent", "urgently", "immediately", "asap", "emergency", "right away"}},
	{PriorityHigh, "account security", []string{"security", "hacked", "breach", "unauthorized", "compromised"}},
	{PriorityHigh, "data loss", []string{"data loss", "lost my data", "lost data", "deleted my data"}},
	{PriorityMedium, "customer dissatisfaction", []string{"complaint", "frustrated", "unacceptable", "escalate", "disappointed"}},
}

// Classifier evaluates the rule table against incoming queries.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier builds a classifier. A nil logger falls back to the
// default logger.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Classify runs escalation detection and the rule table over one query.
// It returns ErrNoIntentMatched (wrapping the original text) when nothing
// fires.
func (c *Classifier) Classify(q *Query) (*Classification, error) {
	esc := detectEscalation(q)

	var intents []Intent
	complexFired := false
	idConsumed := false
	for _, r := range rules {
		// The combined filter subsumes the standalone listing and
		// history rules for the same query.
		if complexFired && (r.name == ruleListCustomers || r.name == ruleFetchHistory) {
			continue
		}
		// An id claimed by an update, ticket, or history intent does not
		// also trigger a standalone record fetch.
		if idConsumed && r.name == ruleFetchCustomer {
			continue
		}
		if !r.match(q, esc) {
			continue
		}
		it, ok := r.extract(q, esc)
		if !ok {
			continue
		}
		intents = append(intents, it)
		switch r.name {
		case ruleComplexFilter:
			complexFired = true
		case ruleUpdateCustomer, ruleCreateTicket, ruleFetchHistory:
			idConsumed = true
		}
	}

	if len(intents) == 0 {
		c.logger.Debug("no intent matched", "query_id", q.ID, "text", q.Text)
		return nil, fmt.Errorf("%w: %q", ErrNoIntentMatched, q.Text)
	}

	c.logger.Debug("query classified",
		"query_id", q.ID,
		"intents", len(intents),
		"escalated", esc != nil)
	return &Classification{Intents: intents, Escalation: esc}, nil
}

// detectEscalation scans the trigger table and keeps the highest-severity
// hit. It runs before and independently of the intent rules.
func detectEscalation(q *Query) *EscalationFlag {
	var flag *EscalationFlag
	for _, t := range escalationTriggers {
		if !hasWord(q, t.keywords...) {
			continue
		}
		if flag == nil || t.priority.rank() > flag.Priority.rank() {
			flag = &EscalationFlag{Priority: t.priority, Reason: t.reason}
		}
	}
	return flag
}

func matchComplexFilter(q *Query, _ *EscalationFlag) bool {
	return hasWord(q, "customers") && hasWord(q, "open") && hasWord(q, "ticket", "tickets")
}

func extractComplexFilter(q *Query, _ *EscalationFlag) (Intent, bool) {
	return Intent{Kind: KindComplexFilter, StatusFilter: extractStatusFilter(q)}, true
}

func matchUpdateCustomer(q *Query, _ *EscalationFlag) bool {
	return hasWord(q, "update", "change", "modify", "correct", "set") ||
		hasWord(q, "activate", "deactivate", "disable", "enable", "reactivate", "suspend")
}

func extractUpdateCustomer(q *Query, _ *EscalationFlag) (Intent, bool) {
	fields := extractUpdateFields(q)
	if len(fields) == 0 {
		return Intent{}, false
	}
	return Intent{
		Kind:       KindUpdateCustomer,
		CustomerID: extractCustomerID(q),
		Fields:     fields,
	}, true
}

var ticketPhrases = []string{
	"create a ticket", "open a ticket", "file a ticket",
	"raise a ticket", "submit a ticket", "new ticket",
}

func matchCreateTicket(q *Query, _ *EscalationFlag) bool {
	for _, phrase := range ticketPhrases {
		if hasWord(q, phrase) {
			return true
		}
	}
	return false
}

func extractCreateTicket(q *Query, _ *EscalationFlag) (Intent, bool) {
	return Intent{
		Kind:           KindCreateTicket,
		CustomerID:     extractCustomerID(q),
		Issue:          q.Text,
		TicketPriority: extractTicketPriority(q),
	}, true
}

func matchFetchHistory(q *Query, _ *EscalationFlag) bool {
	return hasWord(q, "history", "past tickets", "previous tickets", "my tickets")
}

func extractFetchHistory(q *Query, _ *EscalationFlag) (Intent, bool) {
	return Intent{Kind: KindFetchHistory, CustomerID: extractCustomerID(q)}, true
}

func matchListCustomers(q *Query, _ *EscalationFlag) bool {
	return hasWord(q, "customers") && hasWord(q, "list", "all", "show", "every", "display")
}

func extractListCustomers(q *Query, _ *EscalationFlag) (Intent, bool) {
	return Intent{
		Kind:         KindListCustomers,
		StatusFilter: extractStatusFilter(q),
		Limit:        extractLimit(q),
	}, true
}

func matchFetchCustomer(q *Query, _ *EscalationFlag) bool {
	// The id patterns only match next to customer/id/account vocabulary,
	// so an extractable id is the whole predicate.
	return extractCustomerID(q) > 0
}

func extractFetchCustomer(q *Query, _ *EscalationFlag) (Intent, bool) {
	id := extractCustomerID(q)
	if id <= 0 {
		return Intent{}, false
	}
	return Intent{Kind: KindFetchCustomer, CustomerID: id}, true
}

var supportVocabulary = []string{
	"help", "support", "question", "upgrade", "cancel", "cancellation",
	"subscription", "plan", "complaint", "refund", "charged", "charge",
	"billing", "invoice", "payment", "problem", "trouble", "not working",
	"broken", "unable", "crash", "crashes", "bug", "login", "password",
}

func matchSupport(q *Query, esc *EscalationFlag) bool {
	return esc != nil || hasWord(q, supportVocabulary...)
}

func extractSupport(q *Query, _ *EscalationFlag) (Intent, bool) {
	return Intent{Kind: KindSupport, Query: q.Text}, true
}
