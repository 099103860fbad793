// Package specialist implements the two agents behind the gateway's
// proxies: the customer-data agent, which translates task operations into
// tool-gateway calls against the support database, and the support agent,
// which composes advisory text for general service queries.
//
// Both agents satisfy [a2a.Agent] and are served by [a2a.Server]. Task
// parameters and result payloads use the shapes in the dispatch package,
// so the gateway side and the specialist side agree on the wire contract
// by construction.
//
// The support agent is deliberately deterministic: its advice is a pure
// function of the query text, the optional resolved customer record, and
// the escalation flag. Identical inputs produce identical advice.
package specialist
