// Package synthesis merges the partial results of one query into a single
// user-facing response.
//
// Sections are emitted in classification order, with the escalation
// banner ahead of everything when the query was escalated. Failed tasks
// become labeled failure notes naming the operation; they are never
// silently dropped. Combined-filter groups are joined here, never at
// dispatch time: the customer list and the per-customer histories are
// matched up and reduced by the open-ticket predicate, and a history
// failure turns into a per-customer note inside the section.
//
// # Determinism
//
// Rendered text depends only on the query text, the classification, and
// the payloads. GeneratedAt is the single non-deterministic field and is
// never embedded in Text, so identical inputs produce identical text.
package synthesis
