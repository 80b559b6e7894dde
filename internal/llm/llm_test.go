package llm_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/petasbytes/dimensional-agent/internal/llm"
	"github.com/petasbytes/dimensional-agent/memory"
)

func TestNewReply_Variant(t *testing.T) {
	if _, ok := llm.NewReply("hi", nil).(llm.PlainReply); !ok {
		t.Fatal("no calls should yield PlainReply")
	}
	calls := []memory.ToolCall{{ID: "c1", Name: "echo", Arguments: json.RawMessage(`{}`)}}
	r, ok := llm.NewReply("", calls).(llm.ToolCallsRequested)
	if !ok || len(r.Calls) != 1 {
		t.Fatalf("expected ToolCallsRequested, got %#v", r)
	}
}

func TestAssistantMessage(t *testing.T) {
	m := llm.AssistantMessage(llm.PlainReply{Content: "done"})
	if m.Role != memory.RoleAssistant || m.Text != "done" || len(m.ToolCalls) != 0 {
		t.Fatalf("plain: %+v", m)
	}
	m = llm.AssistantMessage(llm.ToolCallsRequested{
		Content: "calling",
		Calls:   []memory.ToolCall{{ID: "a", Name: "echo"}, {ID: "b", Name: "echo"}},
	})
	if m.Text != "calling" || len(m.ToolCalls) != 2 || m.ToolCalls[1].ID != "b" {
		t.Fatalf("tool calls: %+v", m)
	}
}

func TestChatModelFunc(t *testing.T) {
	var seen llm.Request
	model := llm.ChatModelFunc(func(_ context.Context, req llm.Request) (llm.Reply, error) {
		seen = req
		return llm.PlainReply{Content: "ok"}, nil
	})
	r, err := model.Invoke(context.Background(), llm.Request{System: "sys"})
	if err != nil || r.Text() != "ok" || seen.System != "sys" {
		t.Fatalf("got %v %v %+v", r, err, seen)
	}
}
