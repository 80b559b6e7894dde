package windowing

import "github.com/petasbytes/dimensional-agent/memory"

// Stats summarizes one window preparation. Total counts included groups only;
// OverBudgetNewest is set when the newest group alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns the newest suffix of msgs that fits within budget
// without splitting a group. A budget <= 0, or a newest group larger than the
// budget, yields an empty window.
func PrepareSendWindow(msgs []memory.Message, budget int, c TokenCounter) ([]memory.Message, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}
	groups := GroupMessages(msgs)

	if budget <= 0 {
		return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	total, included := 0, 0
	start := len(groups)
	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], msgs)
		if included == 0 && cost > budget {
			debugf("reason=over_budget_newest_group budget=%d cost=%d", budget, cost)
			return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
		}
		if total+cost > budget {
			break
		}
		total += cost
		included++
		start = gi
	}

	return msgs[groups[start].Start:], Stats{
		Total:          total,
		Budget:         budget,
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
}
