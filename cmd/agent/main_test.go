package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/petasbytes/dimensional-agent/memory"
	"github.com/petasbytes/dimensional-agent/specs"
)

const testModels = "../../specs/testdata/models"

func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()
	var status int
	out := testboil.CaptureStdout(t, func(t *testing.T) {
		status = run(args)
	})
	return out, status
}

// copyModel copies the test1 inputs into a fresh models root.
func copyModel(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{specs.SchemaFile, specs.MetricsFile} {
		b, err := os.ReadFile(filepath.Join(testModels, "test1", f))
		if err != nil {
			t.Fatalf("read fixture: %v", err)
		}
		dst := filepath.Join(root, "test1", f)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(dst, b, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestList_PrintsModelsSorted(t *testing.T) {
	out, status := runCLI(t, "list", "--models-dir", testModels)
	testboil.FailTestIfDiff(t, status, 0)
	testboil.FailTestIfDiff(t, out, "list_columns\nno_metrics\nno_tables\ntest1\n")
}

func TestGraph_PrintsMermaid(t *testing.T) {
	out, status := runCLI(t, "graph")
	testboil.FailTestIfDiff(t, status, 0)
	testboil.AssertStringContains(t, out, "graph TD;")
	testboil.AssertStringContains(t, out, "__start__ --> llm_call;")
	testboil.AssertStringContains(t, out, "llm_call -.-> tool_node;")
}

func TestValidate_Summary(t *testing.T) {
	out, status := runCLI(t, "validate", "--models-dir", testModels, "--model", "test1")
	testboil.FailTestIfDiff(t, status, 0)
	testboil.AssertStringContains(t, out, "model test1: 3 tables")
	testboil.AssertStringContains(t, out, "4 metrics")
	testboil.AssertStringContains(t, out, "orders (raw)")
}

func TestValidate_ModelFromEnv(t *testing.T) {
	t.Setenv("DIMAGENT_MODELS_DIR", testModels)
	t.Setenv("DIMAGENT_MODEL", "no_metrics")
	_, status := runCLI(t, "validate")
	testboil.FailTestIfDiff(t, status, 1)
}

func TestValidate_RejectsListColumns(t *testing.T) {
	_, status := runCLI(t, "validate", "--models-dir", testModels, "--model", "list_columns")
	testboil.FailTestIfDiff(t, status, 1)
}

func TestTranscript_PrettyPrints(t *testing.T) {
	p := filepath.Join(t.TempDir(), "run.yaml")
	msgs := []memory.Message{
		memory.Human("Test the tool with input 'Hello World'"),
		memory.Assistant("", memory.ToolCall{ID: "call_1", Name: "echo", Arguments: json.RawMessage(`{"input":"Hello World"}`)}),
		memory.ToolResult("call_1", "echo", "Echo: Hello World", false),
		memory.Assistant("The tool returned: Echo: Hello World"),
	}
	if err := memory.SaveTranscript(p, msgs); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}

	out, status := runCLI(t, "transcript", p)
	testboil.FailTestIfDiff(t, status, 0)
	testboil.AssertStringContains(t, out, "Human Message")
	testboil.AssertStringContains(t, out, "Echo: Hello World")
	if strings.Index(out, "Tool Message") > strings.LastIndex(out, "Ai Message") {
		t.Fatalf("messages out of order:\n%s", out)
	}
}

func TestTranscript_MissingFile(t *testing.T) {
	_, status := runCLI(t, "transcript", filepath.Join(t.TempDir(), "nope.json"))
	testboil.FailTestIfDiff(t, status, 1)
}

func TestRun_RequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, status := runCLI(t, "run", "--no-model")
	testboil.FailTestIfDiff(t, status, 1)
}

func TestRun_SaveModelConflictsWithNoModel(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	_, status := runCLI(t, "run", "--no-model", "--save-model")
	testboil.FailTestIfDiff(t, status, 1)
}

// fakeMessagesAPI answers the first request with an echo tool call and every
// later one with finalText.
type fakeMessagesAPI struct {
	mu        sync.Mutex
	finalText string
	bodies    []string
}

func (f *fakeMessagesAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.bodies = append(f.bodies, string(b))
	n := len(f.bodies)
	f.mu.Unlock()

	content := []map[string]any{{"type": "text", "text": f.finalText}}
	stop := "end_turn"
	if n == 1 {
		content = []map[string]any{{"type": "tool_use", "id": "toolu_1", "name": "echo", "input": map[string]any{"input": "Hello World"}}}
		stop = "tool_use"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id": "msg_" + string(rune('0'+n)), "type": "message", "role": "assistant", "model": "claude-3-7-sonnet-latest",
		"content": content, "stop_reason": stop,
		"usage": map[string]any{"input_tokens": 1, "output_tokens": 1},
	})
}

func newFakeAPI(t *testing.T, finalText string) *fakeMessagesAPI {
	t.Helper()
	api := &fakeMessagesAPI{finalText: finalText}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("DIMAGENT_LLM_BASE_URL", srv.URL)
	t.Setenv("DIMAGENT_LLM_MAX_RETRIES", "0")
	return api
}

func TestRun_NoModelEchoRoundTrip(t *testing.T) {
	api := newFakeAPI(t, "The tool returned: Echo: Hello World")
	tr := filepath.Join(t.TempDir(), "transcript.json")

	out, status := runCLI(t, "run", "--no-model", "--transcript", tr)
	testboil.FailTestIfDiff(t, status, 0)
	testboil.FailTestIfDiff(t, len(api.bodies), 2)
	testboil.AssertStringContains(t, out, "Test the tool with input 'Hello World'")
	testboil.AssertStringContains(t, out, "Echo: Hello World")
	testboil.AssertStringContains(t, api.bodies[0], "You are a helpful assistant tasked with asking questions.")
	testboil.AssertStringContains(t, api.bodies[1], "tool_result")
	testboil.AssertStringContains(t, api.bodies[1], "toolu_1")

	msgs, err := memory.LoadTranscript(tr)
	if err != nil {
		t.Fatalf("LoadTranscript: %v", err)
	}
	testboil.FailTestIfDiff(t, len(msgs), 4)
	testboil.FailTestIfDiff(t, msgs[2].Role, memory.RoleTool)
	testboil.FailTestIfDiff(t, msgs[2].Text, "Echo: Hello World")
}

func TestRun_SaveModelWritesOutputs(t *testing.T) {
	fence := "```"
	answer := "Here is the model.\n\n" + fence + "json\n" +
		`{"fact_tables":[{"name":"fct_orders","type":"fact","columns":{"order_id":"int","net_revenue":"float"}}],` +
		`"dimension_tables":[{"name":"dim_customer","type":"dimension","columns":{"customer_id":"int"}}],` +
		`"relationships":{"fct_orders":["dim_customer"]}}` + "\n" + fence
	api := newFakeAPI(t, answer)
	root := copyModel(t)

	_, status := runCLI(t, "run", "--models-dir", root, "--model", "test1", "--save-model")
	testboil.FailTestIfDiff(t, status, 0)
	testboil.AssertStringContains(t, api.bodies[0], "You're provided with the raw data schema below:")
	testboil.AssertStringContains(t, api.bodies[0], "Provide the dimensional model for this data.")

	b, err := os.ReadFile(filepath.Join(root, "test1", "outputs", "dimensional_model.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var dm specs.DimensionalModel
	if err := dm.UnmarshalJSON(b); err != nil {
		t.Fatalf("output does not decode: %v", err)
	}
	testboil.FailTestIfDiff(t, dm.FactTables[0].Name, "fct_orders")
	testboil.FailTestIfDiff(t, dm.FactTables[0].ColumnList()[1].Name, "net_revenue")
}

func TestRun_SaveModelWithoutJSONFails(t *testing.T) {
	newFakeAPI(t, "I cannot help with that.")
	root := copyModel(t)

	_, status := runCLI(t, "run", "--models-dir", root, "--save-model")
	testboil.FailTestIfDiff(t, status, 1)
	if _, err := os.Stat(filepath.Join(root, "test1", "outputs")); !os.IsNotExist(err) {
		t.Fatal("no output expected when the reply has no model")
	}
}

func TestRun_MissingTablesNeverCallsModel(t *testing.T) {
	api := newFakeAPI(t, "unused")
	args := []string{"run", "--models-dir", testModels, "--model", "no_tables"}

	_, status := runCLI(t, args...)
	testboil.FailTestIfDiff(t, status, 1)

	root := newRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if !errors.Is(err, specs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	testboil.FailTestIfDiff(t, len(api.bodies), 0)
}
