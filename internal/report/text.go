package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/viewcheck/internal/harness"
)

// TextFormatter writes a human-readable summary.
type TextFormatter struct {
	NoColor bool
	Verbose bool
}

func (f *TextFormatter) Format(w io.Writer, r *harness.Report) error {
	green := f.paint(color.FgGreen)
	red := f.paint(color.FgRed)
	yellow := f.paint(color.FgYellow)
	cyan := f.paint(color.FgCyan)
	bold := f.paint(color.Bold)

	fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("Running: %s (%s)", r.Suite, r.Snapshot)))
	if f.Verbose {
		fmt.Fprintf(w, "  digest %s\n", r.Digest)
	}
	fmt.Fprintln(w)

	for i := range r.Cases {
		c := &r.Cases[i]
		switch c.State {
		case harness.StatePassed:
			fmt.Fprintf(w, "  %s %s %s\n", green("✓"), c.Name, cyan(fmt.Sprintf("(%dms)", c.Duration.Milliseconds())))
		case harness.StatePending:
			fmt.Fprintf(w, "  %s %s\n", yellow("-"), c.Name)
		default:
			fmt.Fprintf(w, "  %s %s %s\n", red("✗"), c.Name, cyan(fmt.Sprintf("(%dms)", c.Duration.Milliseconds())))
		}

		if f.Verbose {
			for _, chk := range c.Checks {
				mark := green("✓")
				if !chk.Passed {
					mark = red("✗")
				}
				fmt.Fprintf(w, "      %s %s\n", mark, chk.Label)
			}
		}

		if c.Error != "" {
			fmt.Fprintf(w, "    %s %s\n", red("→"), c.Error)
		}
		if chk, ok := c.Failure(); ok {
			fmt.Fprintf(w, "    %s %s\n", red("→"), chk.Label)
			fmt.Fprintf(w, "      Expected: %s\n", chk.Expected)
			fmt.Fprintf(w, "      Actual:   %s\n", chk.Actual)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, "Cases: ")
	if r.Passed > 0 {
		fmt.Fprintf(w, "%s, ", green(fmt.Sprintf("%d passed", r.Passed)))
	}
	if r.Failed > 0 {
		fmt.Fprintf(w, "%s, ", red(fmt.Sprintf("%d failed", r.Failed)))
	}
	fmt.Fprintf(w, "%d total\n", r.Total)
	fmt.Fprintf(w, "Time:  %dms\n", r.Duration.Milliseconds())
	return nil
}

// paint returns a sprint func for attr. Without NoColor, fatih/color decides
// from the terminal.
func (f *TextFormatter) paint(attr color.Attribute) func(a ...interface{}) string {
	c := color.New(attr)
	if f.NoColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}
