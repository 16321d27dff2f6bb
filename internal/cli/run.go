package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/viewcheck/internal/harness"
	"github.com/roach88/viewcheck/internal/report"
	"github.com/roach88/viewcheck/internal/snapshot"
	"github.com/roach88/viewcheck/internal/store"
	"github.com/roach88/viewcheck/public"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Suite   string // suite file (.yaml, .yml, .cue)
	Filter  string // case filter (glob pattern)
	Workers int
	History string // SQLite run history database
	NoColor bool

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator

	// Clock allows overriding the harness clock (for testing).
	Clock harness.Clock
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [snapshot]",
		Short: "Run a suite against a snapshot",
		Long: `Run suite checks against a static HTML snapshot.

The snapshot defaults to the suite's snapshot field, then the project file,
then public/index.html. Without --suite the built-in Mini View suite runs.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (snapshot not found, invalid suite, etc.)

Examples:
  viewcheck run
  viewcheck run ./build/index.html --suite suites/mini_view.yaml
  viewcheck run --filter "hides*" --format tap
  viewcheck run --history .viewcheck/history.db --format junit > report.xml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runSuite(opts, path, cmd)
		},
	}

	addSuiteFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.History, "history", "", "record the run in this SQLite database")

	return cmd
}

// addSuiteFlags registers the flags shared by run and watch.
func addSuiteFlags(cmd *cobra.Command, opts *RunOptions) {
	cmd.Flags().StringVarP(&opts.Suite, "suite", "s", "", "suite file (.yaml, .yml, .cue)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter cases by glob pattern")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "cases to run at once")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
}

// merge fills unset flags from the project config.
func (o *RunOptions) merge() {
	cfg := o.config()
	if o.Suite == "" {
		o.Suite = cfg.Suite
	}
	if o.Filter == "" {
		o.Filter = cfg.Filter
	}
	if o.Workers == 0 {
		o.Workers = cfg.Workers
	}
	if o.History == "" {
		o.History = cfg.History
	}
	o.NoColor = o.NoColor || cfg.NoColor
}

func runSuite(opts *RunOptions, snapshotArg string, cmd *cobra.Command) error {
	opts.merge()
	logger := opts.logger(cmd.ErrOrStderr())

	r, err := executeRun(cmd.Context(), opts, snapshotArg, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}

	if opts.History != "" {
		if err := recordRun(cmd.Context(), opts, r, logger); err != nil {
			return err
		}
	}

	return resultError(r)
}

// executeRun loads the suite and snapshot, runs the harness, and writes the
// report to w. Load problems come back as ExitCommandError.
func executeRun(ctx context.Context, opts *RunOptions, snapshotArg string, w io.Writer, logger *slog.Logger) (*harness.Report, error) {
	formatter := opts.formatter(w)

	suite, err := loadSuite(opts.Suite)
	if err != nil {
		return nil, formatter.fail(ExitCommandError, ErrCodeInvalidSuite, "failed to load suite", err)
	}

	// The built-in suite names the default path; let the project config win over it
	suiteSnapshot := suite.Snapshot
	if opts.Suite == "" {
		suiteSnapshot = ""
	}
	src, err := loadSnapshot(resolveSnapshotPath(snapshotArg, suiteSnapshot, opts.config().Snapshot), logger)
	if err != nil {
		return nil, formatter.fail(ExitCommandError, snapshotErrorCode(err), "failed to load snapshot", err)
	}

	runOpts := []harness.Option{
		harness.WithLogger(logger),
		harness.WithFilter(opts.Filter),
		harness.WithWorkers(opts.Workers),
	}
	if opts.Clock != nil {
		runOpts = append(runOpts, harness.WithClock(opts.Clock))
	}

	r, err := harness.Run(ctx, src, suite, runOpts...)
	if err != nil {
		return nil, formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to run suite", err)
	}

	f, err := report.New(opts.Format, report.Options{NoColor: opts.NoColor, Verbose: opts.Verbose})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create formatter", err)
	}
	if err := f.Format(w, r); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to write report", err)
	}
	return r, nil
}

// recordRun writes the report to the history database.
func recordRun(ctx context.Context, opts *RunOptions, r *harness.Report, logger *slog.Logger) error {
	st, err := store.Open(opts.History)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	id := gen.Generate()

	if err := st.WriteRun(ctx, id, r); err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	logger.Info("run recorded", "id", id, "db", opts.History)
	return nil
}

// resultError maps a report to the command's exit status.
func resultError(r *harness.Report) error {
	if r.Pass() {
		return nil
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", r.Failed))
}

// loadSuite loads a suite file, or returns the built-in suite for "".
func loadSuite(path string) (*harness.Suite, error) {
	if path == "" {
		return harness.MiniViewSuite(), nil
	}
	return harness.LoadSuite(path)
}

// resolveSnapshotPath picks the snapshot: explicit argument, then the suite's
// own snapshot, then the project config, then public/index.html.
func resolveSnapshotPath(arg, fromSuite, configured string) string {
	switch {
	case arg != "":
		return arg
	case fromSuite != "":
		return fromSuite
	case configured != "":
		return configured
	default:
		return public.IndexPath
	}
}

// loadSnapshot reads the snapshot at path. The default path falls back to
// the embedded copy when it does not exist on disk.
func loadSnapshot(path string, logger *slog.Logger) (*snapshot.Source, error) {
	src, err := snapshot.Load(path)
	if err == nil {
		logger.Debug("snapshot loaded", "path", path, "bytes", src.Len(), "digest", src.Digest())
		return src, nil
	}
	if path == public.IndexPath && errors.Is(err, snapshot.ErrNotFound) {
		logger.Debug("using embedded snapshot", "path", path)
		return snapshot.Default(), nil
	}
	return nil, err
}

func snapshotErrorCode(err error) string {
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, snapshot.ErrRead):
		return ErrCodeRead
	default:
		return ErrCodeGeneric
	}
}
