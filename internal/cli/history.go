package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/viewcheck/internal/config"
	"github.com/roach88/viewcheck/internal/report"
	"github.com/roach88/viewcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Digest   string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs or show one run's report",
		Long: `List runs recorded with "run --history", most recent first, or print
the full report of one run in the selected --format.

Examples:
  viewcheck history --db .viewcheck/history.db
  viewcheck history --db .viewcheck/history.db --limit 5 --format json
  viewcheck history --db .viewcheck/history.db 0190c1f2-... --format tap`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(opts, args[0], cmd)
			}
			return runHistoryList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the history database (default: history from the project file)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Digest, "digest", "", "only runs against this snapshot digest")

	return cmd
}

// openHistory opens an existing history database.
func (o *HistoryOptions) openHistory() (*store.Store, error) {
	path := o.Database
	if path == "" {
		path = o.config().History
	}
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no history database: use --db or set history in "+config.DefaultFile)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runHistoryList(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd.OutOrStdout())

	st, err := opts.openHistory()
	if err != nil {
		_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
		return err
	}
	defer st.Close()

	var runs []store.Run
	if opts.Digest != "" {
		runs, err = st.ListRunsByDigest(cmd.Context(), opts.Digest)
		if err == nil && opts.Limit > 0 && len(runs) > opts.Limit {
			runs = runs[:opts.Limit]
		}
	} else {
		runs, err = st.ListRuns(cmd.Context(), opts.Limit)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, "failed to list runs", err)
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}

	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSUITE\tRESULT\tDURATION\tSNAPSHOT")
	for _, r := range runs {
		result := fmt.Sprintf("%d/%d passed", r.Passed, r.Total)
		if !r.Pass() {
			result = fmt.Sprintf("%d/%d failed", r.Failed, r.Total)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%dms\t%s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Suite,
			result,
			r.Duration.Milliseconds(),
			r.Snapshot,
		)
	}
	return tw.Flush()
}

func runHistoryShow(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd.OutOrStdout())

	st, err := opts.openHistory()
	if err != nil {
		_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
		return err
	}
	defer st.Close()

	r, err := st.ReadReport(cmd.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", id), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, "failed to read run", err)
	}

	f, err := report.New(opts.Format, report.Options{NoColor: opts.config().NoColor, Verbose: opts.Verbose})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create formatter", err)
	}
	return f.Format(cmd.OutOrStdout(), r)
}
