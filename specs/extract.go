package specs

import (
	"errors"
	"strings"
)

// ErrNoModelFound is returned when a reply carries no JSON object.
var ErrNoModelFound = errors.New("no dimensional model found in reply")

// ExtractDimensionalModel decodes the first fenced ```json block of text, or
// failing that the outermost {...} span, as a validated DimensionalModel.
func ExtractDimensionalModel(text string) (DimensionalModel, error) {
	candidate, ok := fencedJSON(text)
	if !ok {
		start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return DimensionalModel{}, ErrNoModelFound
		}
		candidate = text[start : end+1]
	}
	var m DimensionalModel
	if err := m.UnmarshalJSON([]byte(candidate)); err != nil {
		return DimensionalModel{}, err
	}
	return m, nil
}

func fencedJSON(text string) (string, bool) {
	const fence = "```"
	open := strings.Index(text, fence+"json")
	if open < 0 {
		return "", false
	}
	body := text[open+len(fence)+len("json"):]
	end := strings.Index(body, fence)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(body[:end]), true
}
