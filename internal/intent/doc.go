// Package intent turns raw customer queries into ordered, typed intents.
//
// Classification is deterministic. Each rule pairs a predicate over a
// normalized view of the query text with an entity extractor; rules are
// evaluated in a fixed order and every rule that fires contributes one
// intent, so a single query can yield several intents ("update my email
// and show my history"). A rule whose extractor finds nothing does not
// fire and evaluation falls through to the next rule.
//
// # Escalation
//
// Escalation keywords (refunds, billing disputes, urgency, account
// security, data loss) are detected independently of the intent rules.
// They attach an EscalationFlag to the classification instead of
// replacing the matched intents, and the flag alone is enough to route
// the query to the support specialist.
//
// # Rule Order
//
// The filter rule that pairs customers with open tickets runs first and
// suppresses the standalone list and history rules, since it subsumes
// both. Update precedes history so that combined queries keep their
// natural order. A customer id claimed by an update, ticket, or history
// intent is consumed; the standalone fetch rule only fires for ids no
// earlier rule claimed, so "deactivate customer 4" updates without also
// fetching while "I'm customer 5 and need help" fetches the record that
// gives the support request its context. The support rule runs last as
// the catch-all for support vocabulary and escalated queries.
package intent
