package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/viewcheck/internal/harness"
)

// SuiteSummary describes one valid suite.
type SuiteSummary struct {
	File   string `json:"file"`
	Name   string `json:"name"`
	Cases  int    `json:"cases"`
	Checks int    `json:"checks"`
}

// ValidationError is one suite file that failed to load.
type ValidationError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Suites []SuiteSummary    `json:"suites"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite|dir>...",
		Short: "Validate suite files without running them",
		Long: `Validate YAML and CUE suite files without loading a snapshot.

Directories are searched recursively for .yaml, .yml and .cue files.
Checks syntax, unknown fields, check types and their required fields.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd.OutOrStdout())
	logger := opts.logger(cmd.ErrOrStderr())

	var files []string
	for _, p := range paths {
		found, err := findSuiteFiles(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("suite path not found: %s", p), nil)
			}
			return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to find suites", err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, "no suite files found", nil)
	}

	result := ValidationResult{Valid: true, Suites: []SuiteSummary{}}
	for _, f := range files {
		logger.Debug("validating suite", "file", f)
		suite, err := harness.LoadSuite(f)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{File: f, Message: suiteErrorMessage(err)})
			continue
		}
		result.Suites = append(result.Suites, summarize(f, suite))
	}

	if formatter.JSON() {
		if result.Valid {
			return formatter.Success(result)
		}
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeInvalidSuite,
				Message: result.Errors[0].Message,
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	w := formatter.Writer
	for _, s := range result.Suites {
		fmt.Fprintf(w, "✓ %s (%s: %d cases, %d checks)\n", s.File, s.Name, s.Cases, s.Checks)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s\n  %s\n", e.File, e.Message)
	}

	if !result.Valid {
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	fmt.Fprintln(w, "✓ All suites valid")
	return nil
}

// findSuiteFiles returns path itself when it is a file, or every suite file
// below it when it is a directory, skipping hidden entries.
func findSuiteFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// Dot-files and dot-dirs (.viewcheck.yaml, .git) are never suites
		if p != path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".yaml", ".yml", ".cue":
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func summarize(file string, s *harness.Suite) SuiteSummary {
	sum := SuiteSummary{File: file, Name: s.Name, Cases: len(s.Cases)}
	for _, c := range s.Cases {
		sum.Checks += len(c.Checks)
	}
	return sum
}

// suiteErrorMessage drops the path prefix SuiteError adds, since results are
// already keyed by file.
func suiteErrorMessage(err error) string {
	var suiteErr *harness.SuiteError
	if errors.As(err, &suiteErr) && suiteErr.Err != nil {
		return suiteErr.Err.Error()
	}
	return err.Error()
}
