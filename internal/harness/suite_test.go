package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSuite_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeSuite(t, dir, "mini.yaml", `
name: mini_view
description: "Default rendering"
snapshot: ../public/index.html
cases:
  - name: renders the Mini View elements by default
    checks:
      - type: class_equals
        expect: mini-view
      - type: present
        id: clock
  - name: hides the history in the Mini View
    checks:
      - type: style_equals
        id: full-view-only
        property: display
        expect: none
`)

	suite, err := LoadSuite(path)
	require.NoError(t, err)

	assert.Equal(t, "mini_view", suite.Name)
	assert.Equal(t, filepath.Join(dir, "..", "public", "index.html"), suite.Snapshot)
	require.Len(t, suite.Cases, 2)
	assert.Len(t, suite.Cases[0].Checks, 2)
	assert.Equal(t, "display", suite.Cases[1].Checks[0].Property)
}

func TestLoadSuite_CUE(t *testing.T) {
	dir := t.TempDir()
	path := writeSuite(t, dir, "mini.cue", `
name: "mini_view"
cases: [{
	name: "hides the history in the Mini View"
	checks: [{
		type:     "style_equals"
		id:       "full-view-only"
		property: "display"
		expect:   "none"
	}]
}]
`)

	suite, err := LoadSuite(path)
	require.NoError(t, err)

	assert.Equal(t, "mini_view", suite.Name)
	require.Len(t, suite.Cases, 1)
	assert.Equal(t, Check{Type: CheckStyleEquals, ID: "full-view-only", Property: "display", Expect: "none"}, suite.Cases[0].Checks[0])
}

func TestLoadSuite_CUEConstraintConflict(t *testing.T) {
	dir := t.TempDir()
	path := writeSuite(t, dir, "bad.cue", `
name: "a" & "b"
cases: []
`)

	_, err := LoadSuite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUE")
}

func TestLoadSuite_MissingFile(t *testing.T) {
	_, err := LoadSuite(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var suiteErr *SuiteError
	require.True(t, errors.As(err, &suiteErr))
	assert.Contains(t, err.Error(), "failed to read suite file")
}

func TestLoadSuite_UnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeSuite(t, dir, "typo.yaml", `
name: typo
case:
  - name: x
`)

	_, err := LoadSuite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadSuite_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeSuite(t, dir, "suite.json", `{}`)

	_, err := LoadSuite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported suite format")
}

func TestValidateSuite(t *testing.T) {
	valid := func() *Suite {
		return &Suite{
			Name: "s",
			Cases: []Case{{
				Name:   "c",
				Checks: []Check{{Type: CheckPresent, ID: "clock"}},
			}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *Suite)
		wantErr string
	}{
		{"valid", func(s *Suite) {}, ""},
		{"missing name", func(s *Suite) { s.Name = "" }, "name is required"},
		{"no cases", func(s *Suite) { s.Cases = nil }, "cases list is required"},
		{"unnamed case", func(s *Suite) { s.Cases[0].Name = "" }, "cases[0]: name is required"},
		{"duplicate case", func(s *Suite) { s.Cases = append(s.Cases, s.Cases[0]) }, "duplicate case name"},
		{"no checks", func(s *Suite) { s.Cases[0].Checks = nil }, "checks list is required"},
		{"missing type", func(s *Suite) { s.Cases[0].Checks[0].Type = "" }, "type is required"},
		{"unknown type", func(s *Suite) { s.Cases[0].Checks[0].Type = "visible" }, `unknown check type "visible"`},
		{"present without id", func(s *Suite) { s.Cases[0].Checks[0].ID = "" }, "id is required for present"},
		{"style without property", func(s *Suite) {
			s.Cases[0].Checks[0] = Check{Type: CheckStyleEquals, ID: "x", Expect: "none"}
		}, "property is required"},
		{"attr without attribute", func(s *Suite) {
			s.Cases[0].Checks[0] = Check{Type: CheckAttrEquals, ID: "x"}
		}, "attribute is required"},
		{"has_class without expect", func(s *Suite) {
			s.Cases[0].Checks[0] = Check{Type: CheckHasClass}
		}, "expect is required for has_class"},
		{"class_equals on body with empty expect", func(s *Suite) {
			s.Cases[0].Checks[0] = Check{Type: CheckClassEquals}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := ValidateSuite(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMiniViewSuite_IsValid(t *testing.T) {
	suite := MiniViewSuite()
	require.NoError(t, ValidateSuite(suite))
	assert.Len(t, suite.Cases, 2)
	assert.Equal(t, "public/index.html", suite.Snapshot)
}

func TestShippedSuites_MatchBuiltin(t *testing.T) {
	builtin := MiniViewSuite()

	for _, name := range []string{"mini_view.yaml", "mini_view.cue"} {
		t.Run(name, func(t *testing.T) {
			suite, err := LoadSuite(filepath.Join("..", "..", "suites", name))
			require.NoError(t, err)

			assert.Equal(t, builtin.Name, suite.Name)
			assert.Equal(t, builtin.Cases, suite.Cases)
			assert.Equal(t, filepath.Join("..", "..", "public", "index.html"), suite.Snapshot)
		})
	}
}
