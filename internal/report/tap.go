package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/viewcheck/internal/harness"
)

// TAPFormatter writes TAP version 13.
type TAPFormatter struct{}

func (f *TAPFormatter) Format(w io.Writer, r *harness.Report) error {
	fmt.Fprintf(w, "TAP version 13\n")
	fmt.Fprintf(w, "1..%d\n", r.Total)

	for i := range r.Cases {
		c := &r.Cases[i]
		n := i + 1

		if c.Pass() {
			fmt.Fprintf(w, "ok %d - %s\n", n, tapDescription(c.Name))
			continue
		}

		fmt.Fprintf(w, "not ok %d - %s\n", n, tapDescription(c.Name))
		lines := failureLines(c)
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(w, "  ---\n")
		fmt.Fprintf(w, "  state: %s\n", c.State)
		fmt.Fprintf(w, "  failures:\n")
		for _, l := range lines {
			fmt.Fprintf(w, "    - %s\n", escapeYAML(l))
		}
		fmt.Fprintf(w, "  ...\n")
	}
	return nil
}

// tapDescription escapes # so a case name is never read as a directive.
func tapDescription(name string) string {
	name = strings.ReplaceAll(name, `\`, `\\`)
	return strings.ReplaceAll(name, "#", `\#`)
}

// escapeYAML quotes s when it contains characters YAML would interpret.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		s = strings.ReplaceAll(s, "\n", `\n`)
		return `"` + s + `"`
	}
	return s
}
