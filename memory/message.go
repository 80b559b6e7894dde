package memory

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "ai"
	RoleTool      Role = "tool"
)

// ToolCall is a request from the model to run a named tool.
type ToolCall struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Arguments json.RawMessage `json:"args,omitempty" yaml:"args,omitempty"`
}

// MarshalYAML renders Arguments as a YAML mapping instead of raw bytes.
func (c ToolCall) MarshalYAML() (any, error) {
	out := struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
		Args any    `yaml:"args,omitempty"`
	}{ID: c.ID, Name: c.Name}
	if len(c.Arguments) > 0 {
		if err := json.Unmarshal(c.Arguments, &out.Args); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *ToolCall) UnmarshalYAML(node *yaml.Node) error {
	var in struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
		Args any    `yaml:"args"`
	}
	if err := node.Decode(&in); err != nil {
		return err
	}
	c.ID, c.Name, c.Arguments = in.ID, in.Name, nil
	if in.Args != nil {
		b, err := json.Marshal(in.Args)
		if err != nil {
			return err
		}
		c.Arguments = b
	}
	return nil
}

type Message struct {
	Role       Role       `json:"role" yaml:"role"`
	Text       string     `json:"text,omitempty" yaml:"text,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty" yaml:"tool_call_id,omitempty"`
	// Name is the tool that produced a tool message.
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	IsError bool   `json:"is_error,omitempty" yaml:"is_error,omitempty"`
}

func Human(text string) Message {
	return Message{Role: RoleHuman, Text: text}
}

func Assistant(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Text: text, ToolCalls: calls}
}

func ToolResult(callID, toolName, content string, isError bool) Message {
	return Message{Role: RoleTool, Text: content, ToolCallID: callID, Name: toolName, IsError: isError}
}
