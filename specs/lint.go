package specs

import "fmt"

// Lint returns non-fatal findings about the loaded inputs.
func (m Model) Lint() []string {
	var out []string
	seen := make(map[string]bool, len(m.Schema.Tables))
	for _, t := range m.Schema.Tables {
		if seen[t.Name] {
			out = append(out, fmt.Sprintf("table %s is declared more than once", t.Name))
		}
		seen[t.Name] = true
		if t.Columns == nil || t.Columns.Len() == 0 {
			out = append(out, fmt.Sprintf("table %s has no columns", t.Name))
		}
		if t.Type != TableRaw {
			out = append(out, fmt.Sprintf("input table %s has type %q, expected %q", t.Name, t.Type, TableRaw))
		}
	}
	for _, mt := range m.Metrics.Metrics {
		if mt.Formula == "" {
			out = append(out, fmt.Sprintf("metric %s has no formula", mt.Name))
		}
	}
	return out
}
