package graph_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/petasbytes/dimensional-agent/internal/graph"
)

type counter struct {
	Visits []string
	N      int
}

func visit(name string) graph.Node[counter] {
	return func(_ context.Context, s counter) (counter, error) {
		s.Visits = append(s.Visits, name)
		s.N++
		return s, nil
	}
}

func TestInvoke_Linear(t *testing.T) {
	c, err := graph.New[counter]().
		AddNode("a", visit("a")).
		AddNode("b", visit("b")).
		AddEdge(graph.START, "a").
		AddEdge("a", "b").
		AddEdge("b", graph.END).
		Compile(graph.CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := c.Invoke(context.Background(), counter{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	testboil.FailTestIfDiff(t, strings.Join(got.Visits, ","), "a,b")
}

func loop(limit int) *graph.Graph[counter] {
	return graph.New[counter]().
		AddNode("work", visit("work")).
		AddNode("side", visit("side")).
		AddEdge(graph.START, "work").
		AddConditionalEdges("work", func(s counter) string {
			if s.N >= limit {
				return graph.END
			}
			return "side"
		}, "side", graph.END).
		AddEdge("side", "work")
}

func TestInvoke_ConditionalLoop(t *testing.T) {
	c, err := loop(5).Compile(graph.CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := c.Invoke(context.Background(), counter{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	testboil.FailTestIfDiff(t, strings.Join(got.Visits, ","), "work,side,work,side,work")
}

func TestInvoke_StepLimit(t *testing.T) {
	c, err := loop(1000).Compile(graph.CompileOptions{StepLimit: 4})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := c.Invoke(context.Background(), counter{})
	if !errors.Is(err, graph.ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
	if got.N != 4 {
		t.Fatalf("expected state after 4 steps, got %d", got.N)
	}
}

func TestInvoke_UndeclaredRoute(t *testing.T) {
	c, err := graph.New[counter]().
		AddNode("a", visit("a")).
		AddEdge(graph.START, "a").
		AddConditionalEdges("a", func(counter) string { return "nowhere" }, graph.END).
		Compile(graph.CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := c.Invoke(context.Background(), counter{}); !errors.Is(err, graph.ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestInvoke_NodeErrorStops(t *testing.T) {
	boom := errors.New("boom")
	c, err := graph.New[counter]().
		AddNode("a", visit("a")).
		AddNode("fail", func(_ context.Context, s counter) (counter, error) { return s, boom }).
		AddEdge(graph.START, "a").
		AddEdge("a", "fail").
		AddEdge("fail", graph.END).
		Compile(graph.CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := c.Invoke(context.Background(), counter{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	testboil.AssertStringContains(t, err.Error(), `node "fail"`)
	if got.N != 1 {
		t.Fatalf("expected partial state, got %+v", got)
	}
}

func TestInvoke_CanceledContext(t *testing.T) {
	c, err := loop(3).Compile(graph.CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Invoke(ctx, counter{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		g    *graph.Graph[counter]
		want string
	}{
		{"no start", graph.New[counter]().AddNode("a", visit("a")).AddEdge("a", graph.END), "no edge from START"},
		{"unknown target", graph.New[counter]().AddEdge(graph.START, "ghost"), "unknown node"},
		{"dangling node", graph.New[counter]().AddNode("a", visit("a")).AddEdge(graph.START, "a"), `"a" has no outgoing edge`},
		{"duplicate node", graph.New[counter]().AddNode("a", visit("a")).AddNode("a", visit("a")).AddEdge(graph.START, "a").AddEdge("a", graph.END), "duplicate node"},
		{"reserved name", graph.New[counter]().AddNode(graph.END, visit("x")).AddEdge(graph.START, graph.END), "invalid node name"},
		{"two outgoing", graph.New[counter]().AddNode("a", visit("a")).AddEdge(graph.START, "a").AddEdge("a", graph.END).AddEdge("a", "a"), "already has an outgoing edge"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.g.Compile(graph.CompileOptions{})
			if err == nil {
				t.Fatal("expected compile error")
			}
			testboil.AssertStringContains(t, err.Error(), tt.want)
		})
	}
}

func TestMermaid(t *testing.T) {
	c, err := loop(1).Compile(graph.CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out := c.Mermaid()
	for _, want := range []string{
		"graph TD;",
		"__start__([__start__]):::first",
		"__end__([__end__]):::last",
		"__start__ --> work;",
		"work -.-> side;",
		"work -.-> __end__;",
		"side --> work;",
	} {
		testboil.AssertStringContains(t, out, want)
	}
	testboil.FailTestIfDiff(t, strings.Join(c.Nodes(), ","), "work,side")
}
