// Package llm is the provider-neutral chat boundary used by the runner.
package llm

import (
	"context"

	"github.com/petasbytes/dimensional-agent/memory"
	"github.com/petasbytes/dimensional-agent/tools"
)

// Request is one chat completion request.
type Request struct {
	System   string
	Messages []memory.Message
	Tools    []tools.ToolDefinition
}

// ChatModel sends a request to a hosted model and returns its reply.
type ChatModel interface {
	Invoke(ctx context.Context, req Request) (Reply, error)
}

// ChatModelFunc adapts a function to ChatModel.
type ChatModelFunc func(ctx context.Context, req Request) (Reply, error)

func (f ChatModelFunc) Invoke(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}

// Reply is either PlainReply or ToolCallsRequested.
type Reply interface {
	isReply()
	// Text is the assistant's free-form text, possibly empty.
	Text() string
}

// PlainReply ends the conversation.
type PlainReply struct {
	Content string
}

// ToolCallsRequested asks the driver to run Calls, in order, and continue.
type ToolCallsRequested struct {
	Content string
	Calls   []memory.ToolCall
}

func (PlainReply) isReply()         {}
func (ToolCallsRequested) isReply() {}

func (r PlainReply) Text() string         { return r.Content }
func (r ToolCallsRequested) Text() string { return r.Content }

// NewReply returns ToolCallsRequested when calls is non-empty, else PlainReply.
func NewReply(text string, calls []memory.ToolCall) Reply {
	if len(calls) == 0 {
		return PlainReply{Content: text}
	}
	return ToolCallsRequested{Content: text, Calls: calls}
}

// AssistantMessage converts a reply into the history entry appended after it.
func AssistantMessage(r Reply) memory.Message {
	switch v := r.(type) {
	case ToolCallsRequested:
		return memory.Assistant(v.Content, v.Calls...)
	case PlainReply:
		return memory.Assistant(v.Content)
	default:
		return memory.Assistant("")
	}
}
