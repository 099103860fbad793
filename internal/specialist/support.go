// ABOUTME: Support agent composing deterministic advisory text for queries.
// ABOUTME: Advice is a pure function of query, customer context, and escalation.

package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/2389/triage-gateway/internal/a2a"
	"github.com/2389/triage-gateway/internal/dispatch"
	"github.com/2389/triage-gateway/internal/jsonrpc"
	"github.com/2389/triage-gateway/internal/toolgate"
)

// SupportConfig configures the support agent.
type SupportConfig struct {
	// BaseURL is the externally reachable address advertised in the
	// agent card.
	BaseURL string

	Logger *slog.Logger
}

// SupportAgent answers general service queries with advisory text. It
// needs no database access; everything it says is derived from the task
// parameters it receives.
type SupportAgent struct {
	baseURL string
	logger  *slog.Logger
}

// NewSupportAgent creates the agent.
func NewSupportAgent(cfg SupportConfig) *SupportAgent {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SupportAgent{
		baseURL: cfg.BaseURL,
		logger:  logger.With("component", "support-agent"),
	}
}

// Card returns the agent's discovery document.
func (a *SupportAgent) Card() a2a.AgentCard {
	return a2a.AgentCard{
		Name:               "Support Agent",
		Description:        "Handles customer support queries and provides solutions",
		URL:                a.baseURL,
		Version:            "1.0",
		PreferredTransport: a2a.TransportName,
		Skills: []a2a.AgentSkill{
			{
				ID:          "customer_support",
				Name:        "Customer Support",
				Description: "Provide support guidance and handle escalated requests",
			},
		},
	}
}

// Execute answers one support task.
func (a *SupportAgent) Execute(ctx context.Context, task *a2a.TaskRequest) (any, error) {
	if op := dispatch.Operation(task.Operation); op != dispatch.OpSupport {
		return nil, a2a.Fault(a2a.CodeBadRequest, "unsupported operation %q", task.Operation)
	}

	var p dispatch.Params
	if len(task.Params) > 0 {
		if err := json.Unmarshal(task.Params, &p); err != nil {
			return nil, a2a.Fault(jsonrpc.CodeInvalidParams, "malformed task params: %v", err)
		}
	}
	if strings.TrimSpace(p.Query) == "" {
		return nil, a2a.Fault(jsonrpc.CodeInvalidParams, "support task requires query text")
	}

	advice := composeAdvice(p.Query, p.Customer, p.Escalation)
	a.logger.Debug("composed advice",
		"task_id", task.TaskID,
		"escalated", p.Escalation != nil,
		"has_customer_context", p.Customer != nil)

	return &dispatch.Payload{Kind: dispatch.PayloadAdvice, Advice: &advice}, nil
}

// guidanceTopic maps query vocabulary to a canned guidance sentence.
// Topics are checked in order and the first hit wins, so more specific
// subjects (refunds, security) sit above the broad ones.
type guidanceTopic struct {
	terms    []string
	guidance string
}

var guidanceTopics = []guidanceTopic{
	{
		terms:    []string{"refund", "refunded", "money back"},
		guidance: "A refund request has been logged for review. Approved refunds are returned to the original payment method within 5 to 7 business days.",
	},
	{
		terms:    []string{"charged", "charge", "billing", "invoice", "overcharged", "payment"},
		guidance: "The billing team will audit the recent charges on the account and reverse any that are incorrect.",
	},
	{
		terms:    []string{"security", "hacked", "breach", "unauthorized", "compromised"},
		guidance: "The account has been flagged for a security review. Resetting the password now and enabling two-factor authentication will block further access.",
	},
	{
		terms:    []string{"data loss", "lost data", "deleted"},
		guidance: "Recovery will start from the most recent backup of the account data. Most restores complete within one business day.",
	},
	{
		terms:    []string{"login", "password", "locked"},
		guidance: "A password reset from the sign-in page resolves most access problems. If the reset email does not arrive, check the spam folder before retrying.",
	},
	{
		terms:    []string{"cancel", "cancellation"},
		guidance: "Cancellation can be completed from the account settings page. Service stays active until the end of the current billing period.",
	},
	{
		terms:    []string{"upgrade", "subscription", "plan"},
		guidance: "Current plan options are listed on the account page, and an upgrade takes effect immediately after checkout.",
	},
	{
		terms:    []string{"crash", "crashes", "bug", "broken", "error", "not working"},
		guidance: "Updating to the latest version and restarting clears most known faults. If the problem continues, include reproduction steps so engineering can trace it.",
	},
}

const fallbackGuidance = "The request has been noted and a support agent will follow up with next steps."

var supportNonWord = regexp.MustCompile(`[^a-z0-9]+`)

// composeAdvice builds the advisory answer for one query. The output
// depends only on the three inputs, never on the clock or any state.
func composeAdvice(query string, customer *toolgate.Customer, esc *dispatch.Escalation) dispatch.Advice {
	parts := make([]string, 0, 3)

	if customer != nil {
		parts = append(parts, fmt.Sprintf("Thanks for reaching out, %s.", customer.Name))
	} else {
		parts = append(parts, "Thanks for reaching out.")
	}

	parts = append(parts, topicGuidance(query))

	advice := dispatch.Advice{}
	if esc != nil {
		parts = append(parts, fmt.Sprintf(
			"This request has been escalated as a %s and is being handled at %s priority.",
			esc.Reason, esc.Priority))
		advice.RecommendedPriority = esc.Priority
	}

	advice.Text = strings.Join(parts, " ")
	return advice
}

func topicGuidance(query string) string {
	padded := " " + supportNonWord.ReplaceAllString(strings.ToLower(query), " ") + " "
	for _, topic := range guidanceTopics {
		for _, term := range topic.terms {
			if strings.Contains(padded, " "+term+" ") {
				return topic.guidance
			}
		}
	}
	return fallbackGuidance
}
