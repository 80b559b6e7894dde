package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/petasbytes/dimensional-agent/internal/graph"
	"github.com/petasbytes/dimensional-agent/internal/llm"
	"github.com/petasbytes/dimensional-agent/internal/telemetry"
	"github.com/petasbytes/dimensional-agent/internal/textstats"
	"github.com/petasbytes/dimensional-agent/internal/windowing"
	"github.com/petasbytes/dimensional-agent/memory"
	"github.com/petasbytes/dimensional-agent/tools"
)

const (
	NodeLLMCall = "llm_call"
	NodeTools   = "tool_node"
)

const DefaultMaxLLMCalls = 10

var (
	// ErrMaxLLMCalls stops a run whose model keeps requesting tools.
	ErrMaxLLMCalls = errors.New("max LLM calls reached")
	// ErrWindowOverBudget means the newest message group alone exceeds the token budget.
	ErrWindowOverBudget = errors.New("newest message group exceeds token budget")
)

// Config is everything one run needs. It is built explicitly by the caller.
type Config struct {
	Model        llm.ChatModel
	Tools        *tools.Registry
	SystemPrompt string
	// MaxLLMCalls <= 0 means DefaultMaxLLMCalls.
	MaxLLMCalls int
	// TokenBudget > 0 windows the history sent with each call.
	TokenBudget int
	// Counter defaults to windowing.HeuristicCounter.
	Counter   windowing.TokenCounter
	Telemetry *telemetry.Sink
	// OnMessage, when set, sees every message as it is appended.
	OnMessage func(memory.Message)
}

// State is the graph state. Messages is append-only.
type State struct {
	Messages []memory.Message
	LLMCalls int
	// Last is the reply of the most recent llm_call.
	Last llm.Reply
}

type Runner struct {
	cfg   Config
	graph *graph.Compiled[State]
}

func New(cfg Config) (*Runner, error) {
	if cfg.Model == nil {
		return nil, errors.New("runner: chat model is required")
	}
	if cfg.MaxLLMCalls <= 0 {
		cfg.MaxLLMCalls = DefaultMaxLLMCalls
	}
	if cfg.Counter == nil {
		cfg.Counter = windowing.HeuristicCounter{}
	}
	r := &Runner{cfg: cfg}
	g, err := graph.New[State]().
		AddNode(NodeLLMCall, r.llmCall).
		AddNode(NodeTools, r.toolNode).
		AddEdge(graph.START, NodeLLMCall).
		AddConditionalEdges(NodeLLMCall, route, NodeTools, graph.END).
		AddEdge(NodeTools, NodeLLMCall).
		// Each LLM call may be followed by one tool step, plus one spare.
		Compile(graph.CompileOptions{StepLimit: 2*cfg.MaxLLMCalls + 1})
	if err != nil {
		return nil, err
	}
	r.graph = g
	return r, nil
}

// Graph exposes the compiled graph, e.g. for rendering.
func (r *Runner) Graph() *graph.Compiled[State] { return r.graph }

// Run starts from input and returns the final state. On error the state
// holds every message appended before the failure.
func (r *Runner) Run(ctx context.Context, input ...memory.Message) (State, error) {
	runID, ok := telemetry.RunIDFromContext(ctx)
	if !ok {
		runID = telemetry.NewRunID()
		ctx = telemetry.WithRunID(ctx, runID)
	}
	state := State{Messages: make([]memory.Message, 0, len(input)+4)}
	for _, m := range input {
		state = r.appendMessage(state, m)
	}
	if len(input) > 0 {
		r.cfg.Telemetry.EmitPromptFeatures(ctx, r.cfg.SystemPrompt, input[len(input)-1].Text)
	}

	start := time.Now()
	state, err := r.graph.Invoke(ctx, state)
	fields := map[string]any{
		"run_id":      runID,
		"llm_calls":   state.LLMCalls,
		"messages":    len(state.Messages),
		"duration_ms": time.Since(start).Milliseconds(),
		"error":       nil,
	}
	if err != nil {
		fields["error"] = errorKind(err)
	}
	r.cfg.Telemetry.Emit("run_complete", fields)
	return state, err
}

func route(s State) string {
	if _, ok := s.Last.(llm.ToolCallsRequested); ok {
		return NodeTools
	}
	return graph.END
}

func (r *Runner) appendMessage(s State, m memory.Message) State {
	s.Messages = append(s.Messages, m)
	if r.cfg.OnMessage != nil {
		r.cfg.OnMessage(m)
	}
	return s
}

func (r *Runner) llmCall(ctx context.Context, s State) (State, error) {
	runID, _ := telemetry.RunIDFromContext(ctx)
	window := s.Messages
	if r.cfg.TokenBudget > 0 {
		var stats windowing.Stats
		window, stats = windowing.PrepareSendWindow(s.Messages, r.cfg.TokenBudget, r.cfg.Counter)
		r.cfg.Telemetry.Emit("window_prepared", map[string]any{
			"run_id":             runID,
			"budget":             stats.Budget,
			"total_estimated":    stats.Total,
			"included_groups":    stats.IncludedGroups,
			"skipped_groups":     stats.SkippedGroups,
			"over_budget_newest": stats.OverBudgetNewest,
		})
		if stats.OverBudgetNewest {
			return s, fmt.Errorf("%w (%d)", ErrWindowOverBudget, r.cfg.TokenBudget)
		}
	}

	req := llm.Request{
		System:   r.cfg.SystemPrompt,
		Messages: window,
		Tools:    r.cfg.Tools.Definitions(),
	}
	start := time.Now()
	reply, err := r.cfg.Model.Invoke(ctx, req)
	if err != nil {
		r.cfg.Telemetry.Emit("llm_call", map[string]any{
			"run_id":      runID,
			"call":        s.LLMCalls + 1,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       "provider error",
		})
		return s, fmt.Errorf("llm call %d: %w", s.LLMCalls+1, err)
	}
	reply = withCallIDs(reply)
	s.LLMCalls++

	numCalls := 0
	if tc, ok := reply.(llm.ToolCallsRequested); ok {
		numCalls = len(tc.Calls)
	}
	r.cfg.Telemetry.Emit("llm_call", map[string]any{
		"run_id":      runID,
		"call":        s.LLMCalls,
		"duration_ms": time.Since(start).Milliseconds(),
		"sent":        len(window),
		"tool_calls":  numCalls,
		"reply":       textstats.CountFeatures(reply.Text()),
		"error":       nil,
	})

	s.Last = reply
	return r.appendMessage(s, llm.AssistantMessage(reply)), nil
}

// withCallIDs fills in missing call IDs so every tool result can reference one.
func withCallIDs(reply llm.Reply) llm.Reply {
	tc, ok := reply.(llm.ToolCallsRequested)
	if !ok {
		return reply
	}
	calls := make([]memory.ToolCall, len(tc.Calls))
	for i, c := range tc.Calls {
		if c.ID == "" {
			c.ID = "call_" + uuid.NewString()
		}
		calls[i] = c
	}
	tc.Calls = calls
	return tc
}

func (r *Runner) toolNode(ctx context.Context, s State) (State, error) {
	tc, ok := s.Last.(llm.ToolCallsRequested)
	if !ok {
		return s, nil
	}
	if s.LLMCalls >= r.cfg.MaxLLMCalls {
		return s, fmt.Errorf("%w (%d)", ErrMaxLLMCalls, r.cfg.MaxLLMCalls)
	}
	for _, call := range tc.Calls {
		def, err := r.cfg.Tools.Lookup(call.Name)
		if err != nil {
			r.emitToolExec(ctx, call, 0, 0, "tool not found")
			return s, err
		}
		s = r.appendMessage(s, r.execTool(ctx, def, call))
	}
	return s, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrMaxLLMCalls):
		return "max_llm_calls"
	case errors.Is(err, ErrWindowOverBudget):
		return "window_over_budget"
	case errors.Is(err, tools.ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, graph.ErrStepLimit):
		return "step_limit"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
