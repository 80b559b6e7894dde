// Package windowing trims conversation history to an input-token budget.
//
// Messages are grouped into atomic units before trimming: an assistant turn
// that requested tools travels together with all of its tool results, so a
// window never sends a tool call without its answer or vice versa. Groups are
// kept newest first until the budget is used up.
package windowing
