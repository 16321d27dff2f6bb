package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/viewcheck/internal/dom"
)

// ElementInfo is what inspect reports for one element. ID is empty for
// <body>.
type ElementInfo struct {
	ID    string            `json:"id"`
	Found bool              `json:"found"`
	Tag   string            `json:"tag,omitempty"`
	Class string            `json:"class,omitempty"`
	Style []dom.Declaration `json:"style,omitempty"`
	Text  string            `json:"text,omitempty"`
}

// InspectResult holds the elements looked up in one snapshot.
type InspectResult struct {
	Snapshot string        `json:"snapshot"`
	Digest   string        `json:"digest"`
	Elements []ElementInfo `json:"elements"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var body bool

	cmd := &cobra.Command{
		Use:   "inspect <snapshot> [id]...",
		Short: "Show elements of a snapshot by id",
		Long: `Parse a snapshot and print tag, class, inline style and text of the
elements with the given ids. With no ids, or with --body, the <body> element
is shown as well.

Exits 1 if any id is not found.

Examples:
  viewcheck inspect public/index.html clock battery-level
  viewcheck inspect public/index.html --body --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], args[1:], body || len(args) == 1, cmd)
		},
	}

	cmd.Flags().BoolVar(&body, "body", false, "include the <body> element")

	return cmd
}

func runInspect(opts *RootOptions, path string, ids []string, withBody bool, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd.OutOrStdout())
	logger := opts.logger(cmd.ErrOrStderr())

	src, err := loadSnapshot(path, logger)
	if err != nil {
		return formatter.fail(ExitCommandError, snapshotErrorCode(err), "failed to load snapshot", err)
	}

	doc, err := dom.Parse(src.Markup())
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to parse snapshot", err)
	}

	result := InspectResult{Snapshot: src.Path(), Digest: src.Digest()}
	if withBody {
		el, ok := doc.Body()
		result.Elements = append(result.Elements, describeElement("", el, ok))
	}
	var missing []string
	for _, id := range ids {
		el, ok := doc.ElementByID(id)
		if !ok {
			missing = append(missing, id)
		}
		result.Elements = append(result.Elements, describeElement(id, el, ok))
	}

	if formatter.JSON() {
		if len(missing) == 0 {
			return formatter.Success(result)
		}
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeMissing,
				Message: fmt.Sprintf("element(s) not found: %s", strings.Join(missing, ", ")),
			},
		}); err != nil {
			return err
		}
	} else {
		writeElements(cmd, result)
	}

	if len(missing) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("element(s) not found: %s", strings.Join(missing, ", ")))
	}
	return nil
}

func describeElement(key string, el dom.Element, ok bool) ElementInfo {
	if !ok {
		return ElementInfo{ID: key}
	}
	return ElementInfo{
		ID:    key,
		Found: true,
		Tag:   el.Tag(),
		Class: el.ClassName(),
		Style: el.StyleDeclarations(),
		Text:  el.Text(),
	}
}

func writeElements(cmd *cobra.Command, result InspectResult) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n", result.Snapshot, result.Digest)

	for _, el := range result.Elements {
		name := "#" + el.ID
		if el.ID == "" {
			name = "<body>"
		}
		if !el.Found {
			fmt.Fprintf(w, "\n✗ %s not found\n", name)
			continue
		}

		fmt.Fprintf(w, "\n%s <%s>\n", name, el.Tag)
		if el.Class != "" {
			fmt.Fprintf(w, "  class: %s\n", el.Class)
		}
		for _, d := range el.Style {
			important := ""
			if d.Important {
				important = " !important"
			}
			fmt.Fprintf(w, "  style: %s: %s%s\n", d.Property, d.Value, important)
		}
		if el.Text != "" {
			fmt.Fprintf(w, "  text:  %s\n", el.Text)
		}
	}
}
