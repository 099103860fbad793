// ABOUTME: Tests for the task dependency graph.
// ABOUTME: Covers ready ordering, escalation precedence, and resolution semantics.

package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTask(t *testing.T, g *Graph, task *Task) {
	t.Helper()
	require.NoError(t, g.Add(task))
}

func readyIDs(g *Graph) []string {
	var ids []string
	for _, task := range g.Ready() {
		ids = append(ids, task.ID)
	}
	return ids
}

func TestGraphAddRejectsDuplicates(t *testing.T) {
	g := NewGraph()
	addTask(t, g, &Task{ID: "task-1"})

	err := g.Add(&Task{ID: "task-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestGraphAddRejectsUnknownDependency(t *testing.T) {
	g := NewGraph()

	err := g.Add(&Task{ID: "task-1", DependsOn: []string{"missing"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task")
}

func TestGraphReadyPreservesInsertionOrder(t *testing.T) {
	g := NewGraph()
	addTask(t, g, &Task{ID: "task-1"})
	addTask(t, g, &Task{ID: "task-2"})
	addTask(t, g, &Task{ID: "task-3"})

	assert.Equal(t, []string{"task-1", "task-2", "task-3"}, readyIDs(g))
}

func TestGraphReadyEscalatedFirst(t *testing.T) {
	g := NewGraph()
	addTask(t, g, &Task{ID: "task-1"})
	addTask(t, g, &Task{ID: "task-2", Priority: PriorityEscalated})
	addTask(t, g, &Task{ID: "task-3"})

	assert.Equal(t, []string{"task-2", "task-1", "task-3"}, readyIDs(g))
}

func TestGraphReadyExcludesDispatched(t *testing.T) {
	g := NewGraph()
	addTask(t, g, &Task{ID: "task-1"})
	addTask(t, g, &Task{ID: "task-2"})

	g.MarkDispatched("task-1")
	assert.Equal(t, []string{"task-2"}, readyIDs(g))
}

func TestGraphDependencyGating(t *testing.T) {
	g := NewGraph()
	addTask(t, g, &Task{ID: "task-1"})
	addTask(t, g, &Task{ID: "task-2", DependsOn: []string{"task-1"}})

	assert.Equal(t, []string{"task-1"}, readyIDs(g))

	g.MarkDispatched("task-1")
	assert.Empty(t, readyIDs(g))

	// Resolution, not dispatch, is what releases dependents.
	g.MarkResolved("task-1")
	assert.Equal(t, []string{"task-2"}, readyIDs(g))
}

func TestGraphResolutionReleasesRegardlessOfOutcome(t *testing.T) {
	// The graph does not distinguish success from failure; a failed
	// prerequisite still unblocks its dependents.
	g := NewGraph()
	addTask(t, g, &Task{ID: "fetch"})
	addTask(t, g, &Task{ID: "advise", DependsOn: []string{"fetch"}})

	g.MarkDispatched("fetch")
	g.MarkResolved("fetch")

	assert.True(t, g.Resolved("fetch"))
	assert.Equal(t, []string{"advise"}, readyIDs(g))
}

func TestGraphDependents(t *testing.T) {
	g := NewGraph()
	addTask(t, g, &Task{ID: "task-1"})
	addTask(t, g, &Task{ID: "task-2", DependsOn: []string{"task-1"}})
	addTask(t, g, &Task{ID: "task-3", DependsOn: []string{"task-1"}})
	addTask(t, g, &Task{ID: "task-4"})

	assert.Equal(t, []string{"task-2", "task-3"}, g.Dependents("task-1"))
	assert.Empty(t, g.Dependents("task-4"))
}

func TestGraphUnresolvedCount(t *testing.T) {
	g := NewGraph()
	addTask(t, g, &Task{ID: "task-1"})
	addTask(t, g, &Task{ID: "task-2"})

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 2, g.Unresolved())

	g.MarkResolved("task-1")
	assert.Equal(t, 1, g.Unresolved())

	g.MarkResolved("task-2")
	assert.Zero(t, g.Unresolved())
}

func TestTaskEscalated(t *testing.T) {
	assert.False(t, (&Task{Priority: PriorityNormal}).Escalated())
	assert.True(t, (&Task{Priority: PriorityEscalated}).Escalated())
}
