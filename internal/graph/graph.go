// Package graph runs a small state machine of named nodes.
//
// A graph starts at START, follows static or conditional edges after each
// node, and stops on reaching END. Nodes take and return the whole state.
package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	START = "__start__"
	END   = "__end__"
)

// DefaultStepLimit bounds node executions per Invoke.
const DefaultStepLimit = 25

var (
	ErrStepLimit   = errors.New("graph step limit reached")
	ErrUnknownNode = errors.New("unknown node")
)

// Node transforms the state.
type Node[S any] func(ctx context.Context, state S) (S, error)

// Router picks the next node from the state produced by the node it follows.
type Router[S any] func(state S) string

type branch[S any] struct {
	route   Router[S]
	targets []string
}

// Graph is a builder; Compile turns it into a runnable Compiled graph.
type Graph[S any] struct {
	order    []string
	nodes    map[string]Node[S]
	edges    map[string]string
	branches map[string]branch[S]
	errs     []error
}

func New[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:    map[string]Node[S]{},
		edges:    map[string]string{},
		branches: map[string]branch[S]{},
	}
}

func (g *Graph[S]) AddNode(name string, fn Node[S]) *Graph[S] {
	switch {
	case name == "" || name == START || name == END:
		g.errs = append(g.errs, fmt.Errorf("invalid node name %q", name))
	case fn == nil:
		g.errs = append(g.errs, fmt.Errorf("node %q has no function", name))
	default:
		if _, dup := g.nodes[name]; dup {
			g.errs = append(g.errs, fmt.Errorf("duplicate node %q", name))
			break
		}
		g.nodes[name] = fn
		g.order = append(g.order, name)
	}
	return g
}

// AddEdge adds the unconditional transition from → to.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	if g.hasOutgoing(from) {
		g.errs = append(g.errs, fmt.Errorf("node %q already has an outgoing edge", from))
		return g
	}
	g.edges[from] = to
	return g
}

// AddConditionalEdges routes from → router(state). targets lists every
// value the router may return; it is checked at compile time and drawn by
// Mermaid.
func (g *Graph[S]) AddConditionalEdges(from string, router Router[S], targets ...string) *Graph[S] {
	switch {
	case router == nil:
		g.errs = append(g.errs, fmt.Errorf("conditional edge from %q has no router", from))
	case len(targets) == 0:
		g.errs = append(g.errs, fmt.Errorf("conditional edge from %q lists no targets", from))
	case g.hasOutgoing(from):
		g.errs = append(g.errs, fmt.Errorf("node %q already has an outgoing edge", from))
	default:
		g.branches[from] = branch[S]{route: router, targets: targets}
	}
	return g
}

func (g *Graph[S]) hasOutgoing(from string) bool {
	_, e := g.edges[from]
	_, b := g.branches[from]
	return e || b
}

type CompileOptions struct {
	// StepLimit caps node executions per Invoke; <= 0 means DefaultStepLimit.
	StepLimit int
}

// Compiled is an immutable, validated graph.
type Compiled[S any] struct {
	g         *Graph[S]
	stepLimit int
}

// Compile checks that START has an edge, every edge endpoint exists and every
// node has an outgoing edge. All problems are reported together.
func (g *Graph[S]) Compile(opts CompileOptions) (*Compiled[S], error) {
	errs := slices.Clone(g.errs)
	known := func(name string) bool {
		_, ok := g.nodes[name]
		return ok || name == END
	}
	if !g.hasOutgoing(START) {
		errs = append(errs, errors.New("no edge from START"))
	}
	for from, to := range g.edges {
		if from != START && !known(from) {
			errs = append(errs, fmt.Errorf("edge from %w %q", ErrUnknownNode, from))
		}
		if !known(to) {
			errs = append(errs, fmt.Errorf("edge to %w %q", ErrUnknownNode, to))
		}
	}
	for from, b := range g.branches {
		if from != START && !known(from) {
			errs = append(errs, fmt.Errorf("conditional edge from %w %q", ErrUnknownNode, from))
		}
		for _, to := range b.targets {
			if !known(to) {
				errs = append(errs, fmt.Errorf("conditional edge to %w %q", ErrUnknownNode, to))
			}
		}
	}
	for _, name := range g.order {
		if !g.hasOutgoing(name) {
			errs = append(errs, fmt.Errorf("node %q has no outgoing edge", name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("compile graph: %w", err)
	}
	limit := opts.StepLimit
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	return &Compiled[S]{g: g, stepLimit: limit}, nil
}

// Invoke runs the graph from START until END. It stops early on a node
// error, context cancellation, an undeclared route or the step limit; the
// state reached so far is returned alongside the error.
func (c *Compiled[S]) Invoke(ctx context.Context, state S) (S, error) {
	current := START
	steps := 0
	for {
		next, err := c.next(current, state)
		if err != nil {
			return state, err
		}
		if next == END {
			return state, nil
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}
		if steps >= c.stepLimit {
			return state, fmt.Errorf("%w (%d) before %q", ErrStepLimit, c.stepLimit, next)
		}
		steps++
		state, err = c.g.nodes[next](ctx, state)
		if err != nil {
			return state, fmt.Errorf("node %q: %w", next, err)
		}
		current = next
	}
}

func (c *Compiled[S]) next(from string, state S) (string, error) {
	if to, ok := c.g.edges[from]; ok {
		return to, nil
	}
	b := c.g.branches[from]
	to := b.route(state)
	if !slices.Contains(b.targets, to) {
		return "", fmt.Errorf("route from %q to %w %q", from, ErrUnknownNode, to)
	}
	return to, nil
}

// Nodes returns the node names in insertion order.
func (c *Compiled[S]) Nodes() []string { return slices.Clone(c.g.order) }

// Mermaid renders the graph as a Mermaid flowchart. Conditional edges are
// dotted.
func (c *Compiled[S]) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD;\n")
	fmt.Fprintf(&b, "\t%s([%s]):::first\n", START, START)
	for _, n := range c.g.order {
		fmt.Fprintf(&b, "\t%s(%s)\n", n, n)
	}
	fmt.Fprintf(&b, "\t%s([%s]):::last\n", END, END)
	for _, from := range append([]string{START}, c.g.order...) {
		if to, ok := c.g.edges[from]; ok {
			fmt.Fprintf(&b, "\t%s --> %s;\n", from, to)
		}
		if br, ok := c.g.branches[from]; ok {
			for _, to := range br.targets {
				fmt.Fprintf(&b, "\t%s -.-> %s;\n", from, to)
			}
		}
	}
	b.WriteString("\tclassDef default fill:#f2f0ff,line-height:1.2\n")
	b.WriteString("\tclassDef first fill-opacity:0\n")
	b.WriteString("\tclassDef last fill:#bfb6fc\n")
	return b.String()
}
