// ABOUTME: Entity extractors shared by the classification rules.
// ABOUTME: Pulls customer ids, emails, phones, names, statuses, and limits from query text.

package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	phonePattern  = regexp.MustCompile(`\+?[0-9][0-9 ().-]{5,}[0-9]`)
	namePattern   = regexp.MustCompile(`(?i)name to ([A-Za-z][A-Za-z .'-]+)`)
	statusPattern = regexp.MustCompile(`status to (active|disabled)`)
	limitPattern  = regexp.MustCompile(`(?:first|top) ([0-9]+)`)

	customerIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bcustomer (?:id |number )?([0-9]+)`),
		regexp.MustCompile(`\bid ([0-9]+)`),
		regexp.MustCompile(`\baccount (?:id |number )?([0-9]+)`),
		regexp.MustCompile(`\buser ([0-9]+)`),
	}
)

// hasWord reports whether any of the given words or phrases appears in the
// normalized text as whole tokens.
func hasWord(q *Query, words ...string) bool {
	padded := " " + q.normalized + " "
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

// extractCustomerID returns the first customer id named in the query, or
// zero when none is present.
func extractCustomerID(q *Query) int64 {
	for _, p := range customerIDPatterns {
		m := p.FindStringSubmatch(q.normalized)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		return id
	}
	return 0
}

// extractUpdateFields collects the field/value pairs an update request
// names. An empty map means the update rule must not fire.
func extractUpdateFields(q *Query) map[string]string {
	fields := make(map[string]string)

	if email := emailPattern.FindString(q.lowered); email != "" {
		fields["email"] = email
	}

	if hasWord(q, "phone") {
		if phone := phonePattern.FindString(q.lowered); phone != "" {
			fields["phone"] = strings.TrimSpace(phone)
		}
	}

	if m := statusPattern.FindStringSubmatch(q.normalized); m != nil {
		fields["status"] = m[1]
	} else if hasWord(q, "deactivate", "disable", "suspend") {
		fields["status"] = "disabled"
	} else if hasWord(q, "activate", "reactivate", "enable") {
		fields["status"] = "active"
	}

	// Match against the original text so the captured name keeps its case.
	if m := namePattern.FindStringSubmatch(q.Text); m != nil {
		name := strings.TrimSpace(m[1])
		if i := strings.Index(strings.ToLower(name), " and "); i >= 0 {
			name = name[:i]
		}
		if name != "" {
			fields["name"] = name
		}
	}

	return fields
}

// extractStatusFilter maps status vocabulary onto a listing filter. Empty
// means no explicit filter, leaving the server default in effect.
func extractStatusFilter(q *Query) string {
	if hasWord(q, "disabled", "inactive", "deactivated") {
		return "disabled"
	}
	if hasWord(q, "active") {
		return "active"
	}
	return ""
}

// extractLimit returns an explicit listing limit ("first 3", "top 10"),
// or zero when the query names none.
func extractLimit(q *Query) int {
	m := limitPattern.FindStringSubmatch(q.normalized)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// extractTicketPriority infers a ticket priority from urgency vocabulary,
// defaulting to medium.
func extractTicketPriority(q *Query) string {
	if hasWord(q, "urgent", "critical", "emergency") || strings.Contains(q.normalized, "high priority") {
		return "high"
	}
	if hasWord(q, "minor", "trivial") || strings.Contains(q.normalized, "low priority") {
		return "low"
	}
	return "medium"
}
