package specs

import (
	"bytes"
	"encoding/json"
)

// MarshalIndent renders v with a two-space indent and without HTML escaping,
// so SQL formulas such as "a > b" stay readable inside prompts.
func MarshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
