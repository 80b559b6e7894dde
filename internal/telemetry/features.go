package telemetry

import (
	"context"

	"github.com/petasbytes/dimensional-agent/internal/textstats"
)

const featuresVersion = "1"

// EmitPromptFeatures records text features of the system prompt, the
// opening human message and their sum.
func (s *Sink) EmitPromptFeatures(ctx context.Context, system, user string) {
	if !s.Enabled() {
		return
	}
	runID, _ := RunIDFromContext(ctx)
	sys, usr := textstats.CountFeatures(system), textstats.CountFeatures(user)
	s.Emit("prompt_features", map[string]any{
		"run_id":           runID,
		"features_version": featuresVersion,
		"system":           sys,
		"user":             usr,
		"total":            sys.Add(usr),
	})
}
