package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/viewcheck/internal/config"
	"github.com/roach88/viewcheck/internal/harness"
	"github.com/roach88/viewcheck/internal/store"
	"github.com/roach88/viewcheck/internal/testutil"
)

// runWith calls runSuite directly so tests can inject a clock and ID generator.
func runWith(t *testing.T, opts *RunOptions, snapshotArg string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	err := runSuite(opts, snapshotArg, cmd)
	return buf.String(), err
}

func newRunOptions(format string) *RunOptions {
	return &RunOptions{
		RootOptions: &RootOptions{Format: format},
		Clock:       testutil.NewStepClock(time.Millisecond),
		NoColor:     true,
	}
}

func TestRun_DefaultSnapshotPasses(t *testing.T) {
	isolate(t)

	out, err := runWith(t, newRunOptions("text"), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Running: mini_view (public/index.html)")
	assert.Contains(t, out, "renders the Mini View elements by default")
	assert.Contains(t, out, "hides the history in the Mini View")
	assert.Contains(t, out, "Cases: 2 passed, 2 total")
}

func TestRun_DefaultSnapshotFromDisk(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "public/index.html", fullViewMarkup)

	out, err := runWith(t, newRunOptions("tap"), "")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "not ok 1 - renders the Mini View elements by default")
	assert.Contains(t, out, "not ok 2 - hides the history in the Mini View")
}

func TestRun_FailingSnapshotExitsOne(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "full.html", fullViewMarkup)

	out, err := runWith(t, newRunOptions("text"), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 case(s) failed")
	assert.Contains(t, out, `Expected: "mini-view"`)
	assert.Contains(t, out, `Actual:   "full-view"`)
}

func TestRun_MissingSnapshotExitsTwo(t *testing.T) {
	isolate(t)

	out, err := runWith(t, newRunOptions("text"), "does-not-exist.html")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NOT_FOUND]")
}

func TestRun_MissingSnapshotJSON(t *testing.T) {
	isolate(t)

	out, err := runWith(t, newRunOptions("json"), "does-not-exist.html")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestRun_JSONReport(t *testing.T) {
	isolate(t)

	out, err := runWith(t, newRunOptions("json"), "")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   harness.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Passed)
	assert.Equal(t, 5*time.Millisecond, resp.Data.Duration)
}

func TestRun_SuiteFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "snap/widget.html", fullViewMarkup)
	suite := writeFile(t, dir, "suites/clock.yaml", `
name: clock
snapshot: ../snap/widget.html
cases:
  - name: shows the clock
    checks:
      - type: text_equals
        id: clock
        expect: "10:42"
  - name: shows the full view
    checks:
      - type: has_class
        expect: full-view
`)

	opts := newRunOptions("tap")
	opts.Suite = suite
	out, err := runWith(t, opts, "")
	require.NoError(t, err)
	assert.Contains(t, out, "1..2")
	assert.Contains(t, out, "ok 1 - shows the clock")
	assert.Contains(t, out, "ok 2 - shows the full view")
}

func TestRun_InvalidSuiteExitsTwo(t *testing.T) {
	dir := isolate(t)
	suite := writeFile(t, dir, "bad.yaml", "name: bad\ncases: []\n")

	opts := newRunOptions("text")
	opts.Suite = suite
	out, err := runWith(t, opts, "")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_INVALID_SUITE]")
}

func TestRun_Filter(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "full.html", fullViewMarkup)

	opts := newRunOptions("tap")
	opts.Filter = "renders*"
	out, err := runWith(t, opts, path)
	require.Error(t, err)
	assert.Contains(t, out, "1..1")
	assert.NotContains(t, out, "hides the history")
}

func TestRun_BadFilterExitsTwo(t *testing.T) {
	isolate(t)

	opts := newRunOptions("text")
	opts.Filter = "[unterminated"
	_, err := runWith(t, opts, "")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_ConfigFillsUnsetFlags(t *testing.T) {
	dir := isolate(t)
	snap := writeFile(t, dir, "full.html", fullViewMarkup)

	opts := newRunOptions("tap")
	cfg := config.Default()
	cfg.Snapshot = snap
	cfg.Filter = "hides*"
	cfg.Workers = 2
	opts.Config = cfg
	out, err := runWith(t, opts, "")
	require.Error(t, err)
	assert.Equal(t, 2, opts.Workers)
	assert.Contains(t, out, "not ok 1 - hides the history in the Mini View")
}

func TestRun_RecordsHistory(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "history.db")

	opts := newRunOptions("text")
	opts.History = db
	opts.IDGenerator = testutil.NewSequentialIDs("run")
	_, err := runWith(t, opts, "")
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.ReadReport(context.Background(), "run-0001")
	require.NoError(t, err)
	assert.Equal(t, "mini_view", got.Suite)
	assert.True(t, testutil.Epoch.Equal(got.StartedAt))
	assert.True(t, got.Pass())
}

func TestRun_HistoryDefaultsToUUIDv7(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "history.db")

	opts := newRunOptions("text")
	opts.History = db
	_, err := runWith(t, opts, "")
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	id, err := uuid.Parse(runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestRun_FailingRunStillRecorded(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "history.db")
	snap := writeFile(t, dir, "full.html", fullViewMarkup)

	opts := newRunOptions("text")
	opts.History = db
	opts.IDGenerator = testutil.NewSequentialIDs("run")
	_, err := runWith(t, opts, snap)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	r, err := st.ReadRun(context.Background(), "run-0001")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Failed)
}

func TestRun_ThroughRootCommand(t *testing.T) {
	isolate(t)

	stdout, _, err := executeRoot(t, "--format", "junit", "run")
	require.NoError(t, err)
	assert.Contains(t, stdout, `<testsuite name="mini_view"`)
}

func TestResolveSnapshotPath(t *testing.T) {
	tests := []struct {
		name       string
		arg        string
		fromSuite  string
		configured string
		want       string
	}{
		{"argument wins", "a.html", "s.html", "c.html", "a.html"},
		{"suite next", "", "s.html", "c.html", "s.html"},
		{"config next", "", "", "c.html", "c.html"},
		{"default", "", "", "", "public/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveSnapshotPath(tt.arg, tt.fromSuite, tt.configured))
		})
	}
}
