// ABOUTME: FinalResponse and Section types plus the text assembly rules.
// ABOUTME: Text is markdown built from the banner and ordered sections.

package synthesis

import (
	"fmt"
	"strings"
	"time"

	"github.com/2389/triage-gateway/internal/dispatch"
)

// FinalResponse is the one answer a query produces. Text is assembled
// from the structured fields; GeneratedAt is the only field that varies
// between identical runs.
type FinalResponse struct {
	QueryID     string    `json:"query_id"`
	Query       string    `json:"query"`
	GeneratedAt time.Time `json:"generated_at"`

	Escalated          bool   `json:"escalated"`
	EscalationPriority string `json:"escalation_priority,omitempty"`
	EscalationReason   string `json:"escalation_reason,omitempty"`

	Sections []Section `json:"sections"`
	Text     string    `json:"text"`
}

// Section is one rendered block of the response. Payload carries the
// structured result behind the rendered body for programmatic consumers;
// failure sections have none. For a combined filter it holds the reduced
// customer list, not the raw one.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`

	// Failed marks sections that report a failure instead of a result.
	Failed bool `json:"failed,omitempty"`

	Payload *dispatch.Payload `json:"payload,omitempty"`
}

// composeText renders the banner and sections as markdown. The layout is
// fixed: banner, then each section as a level-3 heading over its body.
func composeText(banner string, sections []Section) string {
	parts := make([]string, 0, len(sections)+1)
	if banner != "" {
		parts = append(parts, banner)
	}
	for _, s := range sections {
		parts = append(parts, fmt.Sprintf("### %s\n\n%s", s.Title, s.Body))
	}
	return strings.Join(parts, "\n\n")
}

// escalationBanner renders the notice that leads every escalated
// response.
func escalationBanner(priority, reason string) string {
	return fmt.Sprintf("**ESCALATION NOTICE** (%s priority): %s. This request is being handled ahead of the normal queue.",
		priority, reason)
}
