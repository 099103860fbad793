// Package dispatch defines the unit of work flowing through the
// orchestrator: tasks bound to a specialist target, the dependency graph
// that gates their execution, and the typed partial results they produce.
//
// A Graph is built per query and owned by one orchestration loop; it is
// not safe for concurrent use. Dependencies unblock on resolution,
// success or failure alike, so a failed prerequisite still releases its
// dependents. The one exception is handled above this package: tasks
// that cannot exist without their prerequisite's output are only created
// once that output arrives.
package dispatch
