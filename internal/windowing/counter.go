package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/dimensional-agent/internal/textstats"
	"github.com/petasbytes/dimensional-agent/memory"
)

// TokenCounter estimates the input-token cost of messages and groups.
type TokenCounter interface {
	CountMessage(m memory.Message) int
	CountGroup(g Group, all []memory.Message) int
}

// HeuristicCounter counts runes plus a fixed overhead per content part:
//   - message text: runes of Text + overhead (also when empty)
//   - tool call: runes of name and raw arguments + overhead
//
// The count is deterministic; changing it requires updating the guard test.
type HeuristicCounter struct{}

const partOverhead = 4

func (HeuristicCounter) CountMessage(m memory.Message) int {
	total := textstats.CountFeatures(m.Text).Runes + partOverhead
	for _, c := range m.ToolCalls {
		total += utf8.RuneCountInString(c.Name) + utf8.RuneCount(c.Arguments) + partOverhead
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []memory.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}
