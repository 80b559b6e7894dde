package windowing_test

import (
	"encoding/json"

	"github.com/petasbytes/dimensional-agent/internal/windowing"
	"github.com/petasbytes/dimensional-agent/memory"
)

// H is a human message.
func H(text string) memory.Message { return memory.Human(text) }

// A is an assistant message requesting echo once per id, with empty args.
func A(text string, ids ...string) memory.Message {
	calls := make([]memory.ToolCall, len(ids))
	for i, id := range ids {
		calls[i] = memory.ToolCall{ID: id, Name: "echo", Arguments: json.RawMessage(`{}`)}
	}
	return memory.Assistant(text, calls...)
}

// R is an echo tool result for id.
func R(id, text string) memory.Message { return memory.ToolResult(id, "echo", text, false) }

func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func single(i int) windowing.Group {
	return windowing.Group{Kind: windowing.GroupSingleton, Start: i, End: i + 1}
}

func turn(start, end int) windowing.Group {
	return windowing.Group{Kind: windowing.GroupToolTurn, Start: start, End: end}
}
