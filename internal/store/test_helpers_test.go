package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/viewcheck/internal/harness"
	"github.com/roach88/viewcheck/internal/snapshot"
	"github.com/roach88/viewcheck/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestReport runs the built-in suite against the embedded snapshot
// with a deterministic clock.
func createTestReport(t *testing.T) *harness.Report {
	t.Helper()
	r, err := harness.Run(context.Background(), snapshot.Default(), harness.MiniViewSuite(),
		harness.WithClock(testutil.NewStepClock(time.Millisecond)))
	if err != nil {
		t.Fatalf("harness.Run() failed: %v", err)
	}
	return r
}

// createSummaryReport builds a report with no cases, started at the given offset
// from testutil.Epoch.
func createSummaryReport(suite, digest string, offset time.Duration, failed int) *harness.Report {
	return &harness.Report{
		Suite:     suite,
		Snapshot:  "public/index.html",
		Digest:    digest,
		StartedAt: testutil.Epoch.Add(offset),
		Duration:  3 * time.Millisecond,
		Passed:    2 - failed,
		Failed:    failed,
		Total:     2,
	}
}
