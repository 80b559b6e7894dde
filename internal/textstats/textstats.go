// Package textstats derives size features from prompt and message text.
package textstats

import (
	"strings"
	"unicode/utf8"
)

// RunesPerToken is the rough rune-to-token ratio used by EstimateTokens.
const RunesPerToken = 4

type Features struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// CountFeatures measures s. Words split on Unicode whitespace; an empty string
// has zero lines, otherwise lines are 1 plus the number of '\n'.
func CountFeatures(s string) Features {
	f := Features{Bytes: len(s), Runes: utf8.RuneCountInString(s), Words: len(strings.Fields(s))}
	if s != "" {
		f.Lines = 1 + strings.Count(s, "\n")
	}
	return f
}

// Add returns the field-wise sum of f and o.
func (f Features) Add(o Features) Features {
	return Features{
		Bytes: f.Bytes + o.Bytes,
		Runes: f.Runes + o.Runes,
		Words: f.Words + o.Words,
		Lines: f.Lines + o.Lines,
	}
}

// EstimateTokens rounds runes up to whole tokens.
func EstimateTokens(s string) int {
	r := utf8.RuneCountInString(s)
	return (r + RunesPerToken - 1) / RunesPerToken
}
