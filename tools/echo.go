package tools

import (
	"encoding/json"
	"fmt"
)

const EchoName = "echo"

type EchoInput struct {
	Input string `json:"input" jsonschema_description:"Text to echo back."`
}

var EchoDefinition = ToolDefinition{
	Name:        EchoName,
	Description: "Echo the input back, prefixed with 'Echo: '. Use it to test tool calling.",
	InputSchema: EchoInputSchema,
	Function:    Echo,
}

var EchoInputSchema = GenerateSchema[EchoInput]()

func Echo(input json.RawMessage) (string, error) {
	var in EchoInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("decode echo input: %w", err)
	}
	return "Echo: " + in.Input, nil
}
