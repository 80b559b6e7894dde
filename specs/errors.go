package specs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation matches every decode or validation failure of an input record.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound matches a missing model input file.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports the offending field as a dotted path,
// e.g. "tables[2].columns.order_id".
type ValidationError struct {
	Path string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "validation: " + e.Msg
	}
	return fmt.Sprintf("validation: %s: %s", e.Path, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func missing(field string) error {
	return &ValidationError{Path: field, Msg: "field required"}
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Path: field, Msg: fmt.Sprintf(format, args...)}
}

// within prefixes the path of a nested validation error. Non-validation errors
// (syntax or type errors from encoding/json) are converted.
func within(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &ValidationError{Path: joinPath(prefix, ve.Path), Msg: ve.Msg}
	}
	return fromJSON(prefix, err)
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	case strings.HasPrefix(path, "["):
		return prefix + path
	default:
		return prefix + "." + path
	}
}

func fromJSON(prefix string, err error) error {
	var (
		syn *json.SyntaxError
		typ *json.UnmarshalTypeError
		ve  *ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return within(prefix, ve)
	case errors.As(err, &syn):
		return &ValidationError{Path: prefix, Msg: fmt.Sprintf("malformed JSON at offset %d: %v", syn.Offset, syn)}
	case errors.As(err, &typ):
		return &ValidationError{Path: joinPath(prefix, typ.Field), Msg: fmt.Sprintf("expected %s, got %s", typ.Type, typ.Value)}
	default:
		return &ValidationError{Path: prefix, Msg: err.Error()}
	}
}

// decodeObject decodes a JSON object into v, mapping encoding/json failures
// to validation errors. null and non-object inputs are rejected.
func decodeObject(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return invalid("", "expected a JSON object")
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fromJSON("", err)
	}
	return nil
}

// decodeList decodes a required JSON array of objects, delegating each element
// to decode with an indexed path.
func decodeList[T any](field string, raw json.RawMessage, decode func([]byte, *T) error) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, missing(field)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, invalid(field, "expected a list")
	}
	out := make([]T, len(items))
	for i, item := range items {
		if err := decode(item, &out[i]); err != nil {
			return nil, within(indexed(field, i), err)
		}
	}
	return out, nil
}

func indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
