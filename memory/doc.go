// Package memory holds the conversation of one run.
//
// Model:
//   - A conversation is an append-only, chronological list of Messages.
//   - Assistant messages may carry tool calls; each call is answered by exactly
//     one tool message referencing the call ID, in call order.
//   - Transcripts persist as JSON or YAML, chosen by file extension.
package memory
