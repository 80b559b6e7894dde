package windowing

import (
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/petasbytes/dimensional-agent/memory"
)

type GroupKind int

const (
	GroupSingleton GroupKind = iota
	// GroupToolTurn is an assistant message with tool calls plus the tool
	// messages answering every one of them.
	GroupToolTurn
)

// Group is the span [Start, End) of the original slice.
type Group struct {
	Kind  GroupKind
	Start int
	End   int
}

// GroupMessages partitions msgs into contiguous groups. A tool turn forms only
// when the assistant message is immediately followed by tool messages whose
// call IDs match its calls exactly; anything else falls back to singletons.
func GroupMessages(msgs []memory.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		m := msgs[i]
		if m.Role == memory.RoleAssistant && len(m.ToolCalls) > 0 {
			end, reason := toolTurnEnd(msgs, i)
			if reason == "" {
				groups = append(groups, Group{Kind: GroupToolTurn, Start: i, End: end})
				i = end
				continue
			}
			debugf("singleton tool turn: reason=%s idx=%d", reason, i)
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

// toolTurnEnd returns the exclusive end of the tool turn starting at i, or a
// non-empty reason why msgs[i] cannot open one.
func toolTurnEnd(msgs []memory.Message, i int) (int, string) {
	want := make(map[string]struct{}, len(msgs[i].ToolCalls))
	for _, c := range msgs[i].ToolCalls {
		want[c.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(want))
	j := i + 1
	for ; j < len(msgs) && msgs[j].Role == memory.RoleTool; j++ {
		id := msgs[j].ToolCallID
		if _, ok := want[id]; !ok {
			return 0, "extra_results"
		}
		if _, dup := seen[id]; dup {
			return 0, "duplicate_result"
		}
		seen[id] = struct{}{}
	}
	switch {
	case j == i+1:
		return 0, "not_followed_by_results"
	case len(seen) != len(want):
		return 0, "missing_results"
	}
	return j, ""
}

func debugf(format string, args ...any) {
	if misc.Truthy(os.Getenv("DEBUG_WINDOW")) {
		ancli.Noticef("[windowing] "+format+"\n", args...)
	}
}
