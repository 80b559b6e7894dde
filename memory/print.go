package memory

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

const bannerWidth = 80

func (r Role) title() string {
	switch r {
	case RoleHuman:
		return "Human Message"
	case RoleAssistant:
		return "Ai Message"
	case RoleTool:
		return "Tool Message"
	default:
		return strings.ToUpper(string(r[:1])) + string(r[1:]) + " Message"
	}
}

// banner centers " title " in a line of '=' of bannerWidth runes; an odd
// remainder goes to the right-hand side.
func banner(title string) string {
	padded := " " + title + " "
	side := (bannerWidth - len(padded)) / 2
	if side < 0 {
		side = 0
	}
	right := side
	if len(padded)%2 == 1 {
		right++
	}
	return strings.Repeat("=", side) + padded + strings.Repeat("=", right)
}

// PrettyPrint writes one message as a titled block.
func PrettyPrint(w io.Writer, m Message) error {
	var b strings.Builder
	b.WriteString(banner(m.Role.title()))
	b.WriteString("\n")
	if m.Role == RoleTool && m.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", m.Name)
	}
	b.WriteString("\n")
	b.WriteString(m.Text)
	if len(m.ToolCalls) > 0 {
		if m.Text != "" {
			b.WriteString("\n")
		}
		b.WriteString("Tool Calls:\n")
		for _, c := range m.ToolCalls {
			fmt.Fprintf(&b, "  %s (%s)\n", c.Name, c.ID)
			fmt.Fprintf(&b, " Call ID: %s\n", c.ID)
			writeArgs(&b, c.Arguments)
		}
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeArgs(b *strings.Builder, args []byte) {
	b.WriteString("  Args:\n")
	parsed := gjson.ParseBytes(args)
	if !parsed.IsObject() {
		if len(args) > 0 {
			fmt.Fprintf(b, "    %s\n", args)
		}
		return
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		fmt.Fprintf(b, "    %s: %s\n", key.String(), value.String())
		return true
	})
}

// PrintTranscript writes every message in chronological order.
func PrintTranscript(w io.Writer, msgs []Message) error {
	for _, m := range msgs {
		if err := PrettyPrint(w, m); err != nil {
			return err
		}
	}
	return nil
}
