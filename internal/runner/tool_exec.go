package runner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/petasbytes/dimensional-agent/internal/telemetry"
	"github.com/petasbytes/dimensional-agent/memory"
	"github.com/petasbytes/dimensional-agent/tools"
	"github.com/tidwall/gjson"
)

// execTool runs one call. Invalid arguments and handler errors become error
// tool results for the model rather than failing the run.
func (r *Runner) execTool(ctx context.Context, def tools.ToolDefinition, call memory.ToolCall) memory.Message {
	input := call.Arguments
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	start := time.Now()
	if !gjson.ValidBytes(input) {
		r.emitToolExec(ctx, call, time.Since(start), 0, "invalid arguments")
		return memory.ToolResult(call.ID, call.Name, "invalid tool arguments: not valid JSON", true)
	}
	out, err := def.Function(input)
	if err != nil {
		// Telemetry gets a generic string; the model gets the detail.
		r.emitToolExec(ctx, call, time.Since(start), 0, "tool error")
		return memory.ToolResult(call.ID, call.Name, err.Error(), true)
	}
	r.emitToolExec(ctx, call, time.Since(start), len(out), "")
	return memory.ToolResult(call.ID, call.Name, out, false)
}

func (r *Runner) emitToolExec(ctx context.Context, call memory.ToolCall, d time.Duration, outSize int, errStr string) {
	runID, _ := telemetry.RunIDFromContext(ctx)
	fields := map[string]any{
		"run_id":      runID,
		"tool_name":   call.Name,
		"call_id":     call.ID,
		"duration_ms": d.Milliseconds(),
		"input_size":  len(call.Arguments),
		"output_size": outSize,
		"error":       nil,
	}
	if errStr != "" {
		fields["error"] = errStr
	}
	r.cfg.Telemetry.Emit("tool_exec", fields)
}
