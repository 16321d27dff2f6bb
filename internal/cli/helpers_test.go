package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fullViewMarkup renders the Full View: wrong body class, history visible.
const fullViewMarkup = `<!DOCTYPE html>
<html><body class="full-view">
<span id="custom-id">Posto 12</span><span id="clock">10:42</span>
<div id="battery-level">87%</div>
<section id="full-view-only" style="display: block"></section>
</body></html>`

// isolate runs the test in an empty directory with no viewcheck environment,
// so neither a project file nor the host's variables leak in.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"SNAPSHOT", "SUITE", "FILTER", "FORMAT", "HISTORY", "WORKERS", "NO_COLOR"} {
		t.Setenv("VIEWCHECK_"+k, "")
	}
	t.Setenv("NO_COLOR", "")
	dir := t.TempDir()
	chdir(t, dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// executeRoot runs the full command tree with args.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// syncBuffer is a bytes.Buffer safe for a writer and reader on different
// goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
