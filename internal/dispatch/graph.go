// ABOUTME: Dependency graph gating which tasks are eligible to run.
// ABOUTME: Tracks dispatch and resolution state with deterministic ordering.

package dispatch

import "fmt"

// Graph holds one query's tasks and their dependency edges. Dependencies
// must be added before their dependents, which keeps the graph acyclic by
// construction. A Graph is owned by a single orchestration loop and is
// not safe for concurrent use.
type Graph struct {
	tasks      map[string]*Task
	order      []string
	dispatched map[string]bool
	resolved   map[string]bool
}

// NewGraph creates an empty task graph.
func NewGraph() *Graph {
	return &Graph{
		tasks:      make(map[string]*Task),
		dispatched: make(map[string]bool),
		resolved:   make(map[string]bool),
	}
}

// Add registers a task. It rejects duplicate ids and dependencies on
// tasks not yet in the graph.
func (g *Graph) Add(t *Task) error {
	if _, exists := g.tasks[t.ID]; exists {
		return fmt.Errorf("duplicate task id %s", t.ID)
	}
	for _, dep := range t.DependsOn {
		if _, exists := g.tasks[dep]; !exists {
			return fmt.Errorf("task %s depends on unknown task %s", t.ID, dep)
		}
	}
	g.tasks[t.ID] = t
	g.order = append(g.order, t.ID)
	return nil
}

// Task returns the task for an id, or nil.
func (g *Graph) Task(id string) *Task {
	return g.tasks[id]
}

// Ready returns tasks eligible to run: not yet dispatched, with every
// dependency resolved. Escalated tasks come first; within each priority
// class, insertion order is preserved.
func (g *Graph) Ready() []*Task {
	var escalated, normal []*Task
	for _, id := range g.order {
		if g.dispatched[id] || g.resolved[id] {
			continue
		}
		t := g.tasks[id]
		if !g.depsResolved(t) {
			continue
		}
		if t.Escalated() {
			escalated = append(escalated, t)
		} else {
			normal = append(normal, t)
		}
	}
	return append(escalated, normal...)
}

func (g *Graph) depsResolved(t *Task) bool {
	for _, dep := range t.DependsOn {
		if !g.resolved[dep] {
			return false
		}
	}
	return true
}

// MarkDispatched records that a task was handed to a worker, removing it
// from the ready set.
func (g *Graph) MarkDispatched(id string) {
	g.dispatched[id] = true
}

// MarkResolved records that a task finished, successfully or not.
// Resolution is what unblocks dependents.
func (g *Graph) MarkResolved(id string) {
	g.resolved[id] = true
}

// Resolved reports whether a task has finished.
func (g *Graph) Resolved(id string) bool {
	return g.resolved[id]
}

// Dependents returns the ids of tasks that depend on the given task, in
// insertion order.
func (g *Graph) Dependents(id string) []string {
	var out []string
	for _, candidate := range g.order {
		for _, dep := range g.tasks[candidate].DependsOn {
			if dep == id {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

// Unresolved returns how many tasks have not finished yet.
func (g *Graph) Unresolved() int {
	return len(g.order) - len(g.resolved)
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}
