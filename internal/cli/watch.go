package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// DefaultDebounce is how long watch waits after the last change before
// re-running.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	RunOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RunOptions: RunOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "watch [snapshot]",
		Short: "Re-run the suite whenever the snapshot or suite changes",
		Long: `Run the suite once, then again each time the snapshot or suite file is
written. Bursts of writes are collapsed into one run.

Stops on Ctrl-C.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runWatch(opts, path, cmd)
		},
	}

	addSuiteFlags(cmd, &opts.RunOptions)
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", DefaultDebounce, "quiet period before re-running")

	return cmd
}

func runWatch(opts *WatchOptions, snapshotArg string, cmd *cobra.Command) error {
	opts.merge()
	logger := opts.logger(cmd.ErrOrStderr())
	out := cmd.OutOrStdout()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets, err := watchTargets(&opts.RunOptions, snapshotArg)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create file watcher", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for target := range targets {
		dir := filepath.Dir(target)
		if watchedDirs[dir] {
			continue
		}
		// Watch directories so editors that replace files are still seen
		if err := watcher.Add(dir); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to watch %s", dir), err)
		}
		watchedDirs[dir] = true
		logger.Debug("watching", "dir", dir)
	}

	rerun := func() {
		// Errors were already reported; keep watching
		if _, err := executeRun(ctx, &opts.RunOptions, snapshotArg, out, logger); err != nil {
			logger.Warn("run failed", "error", err)
		}
		if !opts.formatter(out).JSON() {
			fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")
		}
	}

	rerun()
	return watchLoop(ctx, watcher.Events, watcher.Errors, targets, opts.Debounce, rerun, logger)
}

// watchTargets returns the absolute paths whose changes trigger a run.
func watchTargets(opts *RunOptions, snapshotArg string) (map[string]bool, error) {
	suite, err := loadSuite(opts.Suite)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load suite", err)
	}

	suiteSnapshot := suite.Snapshot
	if opts.Suite == "" {
		suiteSnapshot = ""
	}
	paths := []string{resolveSnapshotPath(snapshotArg, suiteSnapshot, opts.config().Snapshot)}
	if opts.Suite != "" {
		paths = append(paths, opts.Suite)
	}

	targets := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to resolve path", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("cannot watch %s", p), err)
		}
		targets[abs] = true
	}
	return targets, nil
}

// watchLoop calls rerun once events for targets have been quiet for
// debounce. Runs happen on the loop goroutine, so they never overlap.
func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	targets map[string]bool,
	debounce time.Duration,
	rerun func(),
	logger *slog.Logger,
) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !isTargetChange(event, targets) {
				continue
			}
			logger.Debug("file changed", "path", event.Name, "op", event.Op.String())

			// Debounce: restart the quiet period on each event
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Stop()
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			rerun()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

func isTargetChange(event fsnotify.Event, targets map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return targets[name]
}
