package tools

import (
	"errors"
	"fmt"
)

// ErrUnknownTool is returned by Lookup for names not in the registry.
var ErrUnknownTool = errors.New("unknown tool")

// Registry holds the tools available to one run, in registration order.
type Registry struct {
	defs   []ToolDefinition
	byName map[string]int
}

// NewRegistry rejects empty and duplicate names.
func NewRegistry(defs ...ToolDefinition) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, errors.New("tool name must not be empty")
		}
		if d.Function == nil {
			return nil, fmt.Errorf("tool %q has no handler", d.Name)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", d.Name)
		}
		r.byName[d.Name] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r, nil
}

// Default returns a registry holding only the echo tool.
func Default() *Registry {
	r, err := NewRegistry(EchoDefinition)
	if err != nil {
		panic(err)
	}
	return r
}

// Definitions returns the tools in registration order. A nil registry has none.
func (r *Registry) Definitions() []ToolDefinition {
	if r == nil {
		return nil
	}
	out := make([]ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

func (r *Registry) Lookup(name string) (ToolDefinition, error) {
	if r != nil {
		if i, ok := r.byName[name]; ok {
			return r.defs[i], nil
		}
	}
	return ToolDefinition{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}
