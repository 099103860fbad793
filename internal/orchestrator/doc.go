// Package orchestrator sequences one query from free text to a final
// response: classify, plan a task graph, fan tasks out to the specialist
// proxies under a concurrency bound, collect partial results, and hand
// everything to the synthesizer.
//
// A single loop goroutine owns the graph and the result list; worker
// goroutines only perform the remote call and report back on a channel,
// so no mutable state is shared. Escalated tasks leave the ready queue
// first. A combined-filter query grows the graph at runtime: when its
// customer list resolves, one history fetch per listed customer is added,
// which is also what guarantees no history fetch ever precedes its list.
//
// Failures never abort a query. Each failed task is recorded alongside
// the successes, and the caller always receives a response; the worst
// case is a response consisting entirely of failure notes.
package orchestrator
