// Package provider implements llm.ChatModel on the Anthropic Messages API.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/petasbytes/dimensional-agent/internal/llm"
	"github.com/petasbytes/dimensional-agent/memory"
	"github.com/petasbytes/dimensional-agent/tools"
)

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest
const APIVersion = "2023-06-01"

const (
	DefaultMaxTokens  = 1024
	DefaultMaxRetries = 2
	DefaultTimeout    = 60 * time.Second
)

// ClientOptions configures the SDK client. The SDK reads ANTHROPIC_API_KEY
// when APIKey is empty, and retries connection errors, 408, 409, 429 and 5xx
// with exponential backoff up to MaxRetries times.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewAnthropicClient(o ClientOptions) *anthropic.Client {
	opts := []option.RequestOption{option.WithMaxRetries(o.MaxRetries)}
	if o.APIKey != "" {
		opts = append(opts, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(o.Timeout))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	c := anthropic.NewClient(opts...)
	return &c
}

type ChatOptions struct {
	Model       anthropic.Model
	MaxTokens   int64
	Temperature float64
}

// Chat is an llm.ChatModel backed by one client and fixed sampling options.
type Chat struct {
	client *anthropic.Client
	opts   ChatOptions
}

// NewChat fills zero Model and MaxTokens with the defaults. Temperature 0 is
// sent as is.
func NewChat(client *anthropic.Client, opts ChatOptions) *Chat {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	return &Chat{client: client, opts: opts}
}

func (c *Chat) Invoke(ctx context.Context, req llm.Request) (llm.Reply, error) {
	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		Messages:    ToParams(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = toolParams(req.Tools)
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.Okf("anthropic request: model=%s messages=%d tools=%d\n", params.Model, len(params.Messages), len(params.Tools))
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}
	return FromMessage(msg), nil
}

func toolParams(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, t := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// ToParams converts history to SDK messages. Consecutive tool messages become
// one user message of tool_result blocks; assistant messages with neither
// text nor tool calls are dropped since the API rejects empty content.
func ToParams(msgs []memory.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	var results []anthropic.ContentBlockParamUnion
	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}
	for _, m := range msgs {
		switch m.Role {
		case memory.RoleTool:
			results = append(results, anthropic.NewToolResultBlock(m.ToolCallID, m.Text, m.IsError))
		case memory.RoleAssistant:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if m.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Text))
			}
			for _, tc := range m.ToolCalls {
				args := tc.Arguments
				if len(args) == 0 {
					args = json.RawMessage(`{}`)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, args, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		default:
			flush()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		}
	}
	flush()
	return out
}

// FromMessage joins text blocks with newlines and maps tool_use blocks to
// tool calls in order.
func FromMessage(msg *anthropic.Message) llm.Reply {
	var texts []string
	var calls []memory.ToolCall
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			if v.Text != "" {
				texts = append(texts, v.Text)
			}
		case anthropic.ToolUseBlock:
			raw := v.JSON.Input.Raw()
			if raw == "" {
				raw = "{}"
			}
			calls = append(calls, memory.ToolCall{ID: v.ID, Name: v.Name, Arguments: json.RawMessage(raw)})
		}
	}
	return llm.NewReply(strings.Join(texts, "\n"), calls)
}
