package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the transcript encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks YAML for .yaml/.yml paths and JSON otherwise.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// EncodeTranscript renders msgs in the given format.
func EncodeTranscript(msgs []Message, f Format) ([]byte, error) {
	if msgs == nil {
		msgs = []Message{}
	}
	if f == FormatYAML {
		return yaml.Marshal(msgs)
	}
	return json.MarshalIndent(msgs, "", " ")
}

// DecodeTranscript parses a transcript in the given format.
func DecodeTranscript(b []byte, f Format) ([]Message, error) {
	var msgs []Message
	var err error
	if f == FormatYAML {
		err = yaml.Unmarshal(b, &msgs)
	} else {
		err = json.Unmarshal(b, &msgs)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s transcript: %w", f, err)
	}
	return msgs, nil
}

// LoadTranscript reads a transcript file. A missing file yields nil, nil.
func LoadTranscript(path string) ([]Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return DecodeTranscript(b, FormatFor(path))
}

// SaveTranscript writes msgs to path in the format implied by its extension.
func SaveTranscript(path string, msgs []Message) error {
	b, err := EncodeTranscript(msgs, FormatFor(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
