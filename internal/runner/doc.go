// Package runner drives one conversation through the agent graph.
//
// Graph:
//
//	__start__ -> llm_call -> (tool_node -> llm_call)* -> __end__
//
// Invariants:
//   - LLMCalls grows by exactly one per model invocation, never per tool.
//   - Tool calls run in reply order; each appends exactly one tool message,
//     and all of them are appended before the next llm_call.
//   - The only way to END is a reply without tool calls.
package runner
