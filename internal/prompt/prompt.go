// Package prompt builds the system prompts sent with every LLM call.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/petasbytes/dimensional-agent/specs"
)

// DefaultSystemPrompt is used when no model inputs are loaded.
const DefaultSystemPrompt = "You are a helpful assistant tasked with asking questions."

const (
	intro = "You are an expert data engineer and architect and your goal is to design a dimensional model " +
		"with facts and dimension tables from a set of raw input tables and target business metrics.\n\n"
	schemaLead  = "You're provided with the raw data schema below:\n\n"
	metricsLead = "And the following metrics to be calculated from the dimensional model:\n\n"
	request     = "Please provide a dimensional model with fact and dimension tables, their columns, and relationships."
)

// BuildSystemPrompt embeds the 2-space indented JSON of schema and metrics.
func BuildSystemPrompt(schema specs.RawSchemaSpecs, metrics specs.MetricsSpecs) (string, error) {
	s, err := specs.MarshalIndent(schema)
	if err != nil {
		return "", fmt.Errorf("serialize schema: %w", err)
	}
	m, err := specs.MarshalIndent(metrics)
	if err != nil {
		return "", fmt.Errorf("serialize metrics: %w", err)
	}
	var b strings.Builder
	b.WriteString(intro)
	b.WriteString(schemaLead)
	b.WriteString(s)
	b.WriteString("\n\n")
	b.WriteString(metricsLead)
	b.WriteString(m)
	b.WriteString("\n\n")
	b.WriteString(request)
	return b.String(), nil
}

// ForModel is BuildSystemPrompt over a loaded model.
func ForModel(m specs.Model) (string, error) {
	return BuildSystemPrompt(m.Schema, m.Metrics)
}

// AnswerSchema is the JSON Schema of a DimensionalModel answer.
func AnswerSchema() (string, error) {
	r := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	b, err := json.MarshalIndent(r.Reflect(&specs.DimensionalModel{}), "", "  ")
	if err != nil {
		return "", fmt.Errorf("reflect answer schema: %w", err)
	}
	return string(b), nil
}

// WithAnswerSchema asks for the answer as a fenced JSON block matching
// AnswerSchema, so it can be extracted with specs.ExtractDimensionalModel.
func WithAnswerSchema(system string) (string, error) {
	schema, err := AnswerSchema()
	if err != nil {
		return "", err
	}
	return system + "\n\nReturn the dimensional model as a single ```json fenced block that validates against this JSON Schema:\n\n" + schema, nil
}
