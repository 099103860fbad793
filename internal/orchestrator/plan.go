// ABOUTME: Builds the task graph for a classified query.
// ABOUTME: Maps each intent to a task and wires the support soft dependency.

package orchestrator

import (
	"fmt"

	"github.com/2389/triage-gateway/internal/dispatch"
	"github.com/2389/triage-gateway/internal/intent"
)

// taskID names tasks by their position in classification order.
func taskID(intentIndex int) string {
	return fmt.Sprintf("task-%d", intentIndex+1)
}

// buildPlan turns a classification into the initial task graph. A
// combined filter contributes only its customer-list root here; history
// fetches are added once the list resolves. A support task gated on a
// customer fetch runs after it either way, so resolved customer context
// can be attached when the fetch succeeds.
func (o *Orchestrator) buildPlan(q *intent.Query, cls *intent.Classification) *dispatch.Graph {
	graph := dispatch.NewGraph()

	var esc *dispatch.Escalation
	if cls.Escalated() {
		esc = &dispatch.Escalation{
			Priority: string(cls.Escalation.Priority),
			Reason:   cls.Escalation.Reason,
		}
	}

	firstFetch := ""
	for idx, it := range cls.Intents {
		task := &dispatch.Task{
			ID:          taskID(idx),
			IntentIndex: idx,
			Target:      dispatch.TargetCustomerData,
			Priority:    dispatch.PriorityNormal,
		}

		switch it.Kind {
		case intent.KindFetchCustomer:
			task.Op = dispatch.OpFetchCustomer
			task.Params = dispatch.Params{CustomerID: it.CustomerID}
			if firstFetch == "" {
				firstFetch = task.ID
			}

		case intent.KindListCustomers:
			task.Op = dispatch.OpListCustomers
			task.Params = dispatch.Params{StatusFilter: it.StatusFilter, Limit: it.Limit}

		case intent.KindComplexFilter:
			task.Op = dispatch.OpListCustomers
			task.Params = dispatch.Params{StatusFilter: it.StatusFilter}

		case intent.KindUpdateCustomer:
			task.Op = dispatch.OpUpdateCustomer
			task.Params = dispatch.Params{CustomerID: it.CustomerID, Fields: it.Fields}

		case intent.KindCreateTicket:
			task.Op = dispatch.OpCreateTicket
			task.Params = dispatch.Params{
				CustomerID:     it.CustomerID,
				Issue:          it.Issue,
				TicketPriority: it.TicketPriority,
			}

		case intent.KindFetchHistory:
			task.Op = dispatch.OpFetchHistory
			task.Params = dispatch.Params{CustomerID: it.CustomerID}

		case intent.KindSupport:
			task.Target = dispatch.TargetSupport
			task.Op = dispatch.OpSupport
			task.Params = dispatch.Params{Query: q.Text, Escalation: esc}
			if cls.Escalated() {
				task.Priority = dispatch.PriorityEscalated
			}
			if firstFetch != "" {
				task.DependsOn = []string{firstFetch}
			}

		default:
			o.logger.Error("intent kind has no task mapping", "query_id", q.ID, "kind", it.Kind)
			continue
		}

		if err := graph.Add(task); err != nil {
			o.logger.Error("failed to add task to plan", "query_id", q.ID, "task_id", task.ID, "error", err)
		}
	}
	return graph
}
