// Package report renders harness reports in standard test-reporting formats.
//
// Supported formats:
//   - text: human-readable terminal output, colored unless disabled
//   - json: the report itself, wrapped in the CLI response envelope
//   - junit: JUnit XML for CI systems
//   - tap: Test Anything Protocol version 13
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/viewcheck/internal/harness"
)

// Format names.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJUnit = "junit"
	FormatTAP   = "tap"
)

// Formats lists every supported format.
var Formats = []string{FormatText, FormatJSON, FormatJUnit, FormatTAP}

// Formatter writes a report to w.
type Formatter interface {
	Format(w io.Writer, r *harness.Report) error
}

// Options configures formatter construction.
type Options struct {
	NoColor bool
	Verbose bool
}

// New returns the formatter for a format name.
func New(format string, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return &TextFormatter{NoColor: opts.NoColor, Verbose: opts.Verbose}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatJUnit:
		return &JUnitFormatter{}, nil
	case FormatTAP:
		return &TAPFormatter{}, nil
	default:
		return nil, fmt.Errorf("invalid format %q: must be one of %v", format, Formats)
	}
}

// IsValid reports whether format names a supported format.
func IsValid(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// failureLines flattens a failed case into single-line diagnostics.
func failureLines(c *harness.CaseResult) []string {
	var lines []string
	if c.Error != "" {
		lines = append(lines, c.Error)
	}
	if chk, ok := c.Failure(); ok {
		lines = append(lines, fmt.Sprintf("%s: expected %s, got %s", chk.Label, chk.Expected, chk.Actual))
	}
	return lines
}
