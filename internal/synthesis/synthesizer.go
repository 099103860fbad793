// ABOUTME: Synthesizer merging partial results into a FinalResponse.
// ABOUTME: Type-specific formatters, failure notes, and the filter join.

package synthesis

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/2389/triage-gateway/internal/dispatch"
	"github.com/2389/triage-gateway/internal/intent"
	"github.com/2389/triage-gateway/internal/proxy"
	"github.com/2389/triage-gateway/internal/toolgate"
)

// Synthesizer renders classified queries and their results. It holds no
// per-query state; one instance serves every query.
type Synthesizer struct {
	logger *slog.Logger
}

// NewSynthesizer creates a synthesizer. A nil logger falls back to the
// default.
func NewSynthesizer(logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{logger: logger.With("component", "synthesizer")}
}

// Synthesize merges the results of one query. Results may arrive in any
// order; sections come out in classification order regardless.
func (s *Synthesizer) Synthesize(q *intent.Query, cls *intent.Classification, results []dispatch.PartialResult) *FinalResponse {
	resp := &FinalResponse{
		QueryID:     q.ID,
		Query:       q.Text,
		GeneratedAt: time.Now().UTC(),
	}

	banner := ""
	if cls.Escalated() {
		resp.Escalated = true
		resp.EscalationPriority = string(cls.Escalation.Priority)
		resp.EscalationReason = cls.Escalation.Reason
		banner = escalationBanner(resp.EscalationPriority, resp.EscalationReason)
	}

	grouped := make(map[int][]*dispatch.PartialResult)
	for i := range results {
		r := &results[i]
		grouped[r.IntentIndex] = append(grouped[r.IntentIndex], r)
	}

	for idx, it := range cls.Intents {
		group := grouped[idx]
		if it.Kind == intent.KindComplexFilter {
			resp.Sections = append(resp.Sections, s.filterSection(it, group))
			continue
		}
		if len(group) == 0 {
			resp.Sections = append(resp.Sections, Section{
				Title:  "Partial Failure",
				Body:   fmt.Sprintf("no result was recorded for %s", it.Kind),
				Failed: true,
			})
			continue
		}
		for _, r := range group {
			resp.Sections = append(resp.Sections, s.resultSection(it, r))
		}
	}

	resp.Text = composeText(banner, resp.Sections)
	s.logger.Debug("response synthesized",
		"query_id", q.ID,
		"sections", len(resp.Sections),
		"escalated", resp.Escalated)
	return resp
}

// Clarification builds the response for a query no rule matched. No
// tasks were dispatched, so the single section explains what the system
// can do.
func (s *Synthesizer) Clarification(q *intent.Query) *FinalResponse {
	section := Section{
		Title: "Clarification Needed",
		Body: "The request could not be matched to a supported operation. " +
			"Supported requests include fetching a customer by id, listing customers, " +
			"updating contact details, creating a support ticket, and showing ticket history.",
	}
	return &FinalResponse{
		QueryID:     q.ID,
		Query:       q.Text,
		GeneratedAt: time.Now().UTC(),
		Sections:    []Section{section},
		Text:        composeText("", []Section{section}),
	}
}

// resultSection renders one non-filter result and attaches its payload.
func (s *Synthesizer) resultSection(it intent.Intent, r *dispatch.PartialResult) Section {
	if r.Failed() {
		return failureSection(r.Op, r.Err)
	}

	var sec Section
	switch r.Payload.Kind {
	case dispatch.PayloadCustomer:
		sec = customerSection(r.Payload.Customer)
	case dispatch.PayloadCustomerList:
		sec = customerListSection(r.Payload.Customers)
	case dispatch.PayloadUpdate:
		sec = updateSection(it.CustomerID, r.Payload.UpdatedFields)
	case dispatch.PayloadTicketCreated:
		sec = ticketCreatedSection(it, r.Payload.TicketID)
	case dispatch.PayloadTickets:
		sec = historySection(it.CustomerID, r.Payload.Tickets)
	case dispatch.PayloadAdvice:
		sec = adviceSection(r.Payload.Advice)
	default:
		return Section{
			Title:  "Partial Failure",
			Body:   fmt.Sprintf("%s returned an unrecognized payload", r.Op),
			Failed: true,
		}
	}
	sec.Payload = r.Payload
	return sec
}

func customerSection(c *toolgate.Customer) Section {
	lines := []string{
		fmt.Sprintf("Name: %s (id %d)", c.Name, c.ID),
		fmt.Sprintf("Email: %s", c.Email),
	}
	if c.Phone != "" {
		lines = append(lines, fmt.Sprintf("Phone: %s", c.Phone))
	}
	lines = append(lines, fmt.Sprintf("Status: %s", c.Status))
	return Section{Title: "Customer Record", Body: strings.Join(lines, "\n")}
}

func customerListSection(customers []toolgate.Customer) Section {
	if len(customers) == 0 {
		return Section{Title: "Customer List", Body: "No customers matched the filter."}
	}
	lines := make([]string, 0, len(customers))
	for _, c := range customers {
		lines = append(lines, fmt.Sprintf("- %s (id %d) <%s> [%s]", c.Name, c.ID, c.Email, c.Status))
	}
	return Section{Title: "Customer List", Body: strings.Join(lines, "\n")}
}

func updateSection(customerID int64, fields []string) Section {
	return Section{
		Title: "Update Confirmation",
		Body:  fmt.Sprintf("Customer %d updated: %s.", customerID, strings.Join(fields, ", ")),
	}
}

func ticketCreatedSection(it intent.Intent, ticketID int64) Section {
	priority := it.TicketPriority
	if priority == "" {
		priority = toolgate.PriorityMedium
	}
	return Section{
		Title: "Ticket Created",
		Body:  fmt.Sprintf("Ticket %d opened for customer %d with %s priority.", ticketID, it.CustomerID, priority),
	}
}

func historySection(customerID int64, tickets []toolgate.Ticket) Section {
	title := fmt.Sprintf("Ticket History for Customer %d", customerID)
	if len(tickets) == 0 {
		return Section{Title: title, Body: "No tickets on file."}
	}
	lines := make([]string, 0, len(tickets))
	for _, t := range tickets {
		lines = append(lines, ticketLine(t))
	}
	return Section{Title: title, Body: strings.Join(lines, "\n")}
}

func ticketLine(t toolgate.Ticket) string {
	line := fmt.Sprintf("- ticket %d [%s, %s]: %s", t.ID, t.Status, t.Priority, t.Issue)
	if t.CreatedAt != "" {
		line += fmt.Sprintf(" (%s)", t.CreatedAt)
	}
	return line
}

func adviceSection(a *dispatch.Advice) Section {
	body := a.Text
	if a.RecommendedPriority != "" {
		body += fmt.Sprintf("\n\nRecommended ticket priority: %s.", a.RecommendedPriority)
	}
	return Section{Title: "Support Guidance", Body: body}
}

// failureSection renders one failed task as a labeled note.
func failureSection(op dispatch.Operation, err error) Section {
	var cpe *dispatch.CriticalPathError
	if errors.As(err, &cpe) {
		return Section{
			Title:  "Unable To Complete",
			Body:   fmt.Sprintf("The request depends on %s, which failed: %s.", cpe.Op, failureMessage(cpe.Err)),
			Failed: true,
		}
	}
	return Section{
		Title:  "Partial Failure",
		Body:   fmt.Sprintf("%s failed: %s", op, failureMessage(err)),
		Failed: true,
	}
}

// failureMessage strips the transport classification off proxy errors so
// notes read as plain sentences; everything else renders verbatim.
func failureMessage(err error) string {
	var pe *proxy.Error
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}

// filterSection joins a combined-filter group: the customer list result
// plus one history result per listed customer, reduced by the open-ticket
// predicate.
func (s *Synthesizer) filterSection(it intent.Intent, group []*dispatch.PartialResult) Section {
	var list *dispatch.PartialResult
	histories := make(map[int64]*dispatch.PartialResult)
	for _, r := range group {
		switch r.Op {
		case dispatch.OpListCustomers:
			list = r
		case dispatch.OpFetchHistory:
			histories[r.CustomerID] = r
		}
	}

	title := "Customers With Open Tickets"
	if list == nil {
		return Section{Title: title, Body: "No customer list was recorded for this filter.", Failed: true}
	}
	if list.Failed() {
		return failureSection(list.Op, list.Err)
	}

	status := it.StatusFilter
	if status == "" {
		status = toolgate.StatusActive
	}

	customers := append([]toolgate.Customer(nil), list.Payload.Customers...)
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	if len(customers) == 0 {
		return Section{
			Title:   title,
			Body:    fmt.Sprintf("No %s customers found to check.", status),
			Payload: &dispatch.Payload{Kind: dispatch.PayloadCustomerList},
		}
	}

	var matched []toolgate.Customer
	var lines []string
	for _, c := range customers {
		hr := histories[c.ID]
		switch {
		case hr == nil:
			lines = append(lines, fmt.Sprintf("- %s (id %d): ticket history was not retrieved", c.Name, c.ID))
		case hr.Failed():
			lines = append(lines, fmt.Sprintf("- %s (id %d): ticket history unavailable: %s", c.Name, c.ID, failureMessage(hr.Err)))
		default:
			open := openTickets(hr.Payload.Tickets)
			if len(open) == 0 {
				continue
			}
			matched = append(matched, c)
			lines = append(lines, fmt.Sprintf("- %s (id %d) <%s>:", c.Name, c.ID, c.Email))
			for _, t := range open {
				lines = append(lines, "  "+ticketLine(t))
			}
		}
	}

	// The section's payload is the reduced list, not the raw one.
	payload := &dispatch.Payload{Kind: dispatch.PayloadCustomerList, Customers: matched}
	header := fmt.Sprintf("Checked %d %s customer(s); %d with at least one open ticket.", len(customers), status, len(matched))
	if len(lines) == 0 {
		return Section{Title: title, Body: header, Payload: payload}
	}
	return Section{Title: title, Body: header + "\n" + strings.Join(lines, "\n"), Payload: payload}
}

func openTickets(tickets []toolgate.Ticket) []toolgate.Ticket {
	var open []toolgate.Ticket
	for _, t := range tickets {
		if t.Status == toolgate.TicketOpen {
			open = append(open, t)
		}
	}
	return open
}
