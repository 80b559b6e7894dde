package runner_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/dimensional-agent/internal/llm"
	"github.com/petasbytes/dimensional-agent/internal/telemetry"
	"github.com/petasbytes/dimensional-agent/memory"
)

// scripted replays replies in order and records every request.
type scripted struct {
	replies  []llm.Reply
	err      error
	requests []llm.Request
}

func (s *scripted) Invoke(_ context.Context, req llm.Request) (llm.Reply, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.requests) > len(s.replies) {
		return nil, errors.New("scripted model exhausted")
	}
	return s.replies[len(s.requests)-1], nil
}

func plain(text string) llm.Reply { return llm.PlainReply{Content: text} }

func call(id, name, args string) memory.ToolCall {
	return memory.ToolCall{ID: id, Name: name, Arguments: json.RawMessage(args)}
}

func callsReply(calls ...memory.ToolCall) llm.Reply {
	return llm.ToolCallsRequested{Calls: calls}
}

func echoCall(id, input string) memory.ToolCall {
	b, _ := json.Marshal(map[string]string{"input": input})
	return call(id, "echo", string(b))
}

func roles(msgs []memory.Message) string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.Role)
	}
	return strings.Join(out, ",")
}

func newSink(t *testing.T) (*telemetry.Sink, string) {
	t.Helper()
	dir := t.TempDir()
	return telemetry.NewSink(dir, true), dir
}

func readEvents(t *testing.T, dir string) []map[string]any {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, telemetry.EventsFile))
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	var out []map[string]any
	s := bufio.NewScanner(f)
	for s.Scan() {
		var m map[string]any
		if err := json.Unmarshal(s.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func eventsNamed(evs []map[string]any, name string) []map[string]any {
	var out []map[string]any
	for _, e := range evs {
		if e["event"] == name {
			out = append(out, e)
		}
	}
	return out
}
