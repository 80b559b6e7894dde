// Package tools defines tool contracts and implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - echo: returns its input prefixed with "Echo: ".
//   - Registry: explicit, per-run set of tools looked up by name.
package tools
