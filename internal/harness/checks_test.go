package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/viewcheck/internal/dom"
)

const checksMarkup = `<body class="mini-view">
  <span id="clock" title="Hora">10:42</span>
  <span id="custom-id"> 4021 </span>
  <section id="full-view-only" style="display:none"></section>
  <section id="shown" style="display: block"></section>
</body>`

func parseForChecks(t *testing.T) dom.DocumentQuery {
	t.Helper()
	doc, err := dom.Parse(checksMarkup)
	require.NoError(t, err)
	return doc
}

func TestEvaluateCheck_ClassEqualsBody(t *testing.T) {
	doc := parseForChecks(t)

	res := EvaluateCheck(doc, Check{Type: CheckClassEquals, Expect: "mini-view"})
	assert.True(t, res.Passed)
	assert.Equal(t, "class_equals body", res.Label)
	assert.Equal(t, `"mini-view"`, res.Actual)
}

func TestEvaluateCheck_ClassEqualsMismatch(t *testing.T) {
	doc := parseForChecks(t)

	res := EvaluateCheck(doc, Check{Type: CheckClassEquals, Expect: "full-view"})
	assert.False(t, res.Passed)
	assert.Equal(t, `"full-view"`, res.Expected)
	assert.Equal(t, `"mini-view"`, res.Actual)
}

func TestEvaluateCheck_HasClass(t *testing.T) {
	doc := parseForChecks(t)

	assert.True(t, EvaluateCheck(doc, Check{Type: CheckHasClass, Expect: "mini-view"}).Passed)
	assert.False(t, EvaluateCheck(doc, Check{Type: CheckHasClass, Expect: "mini"}).Passed)
}

func TestEvaluateCheck_Present(t *testing.T) {
	doc := parseForChecks(t)

	res := EvaluateCheck(doc, Check{Type: CheckPresent, ID: "clock"})
	assert.True(t, res.Passed)
	assert.Equal(t, `<span id="clock">`, res.Actual)
}

func TestEvaluateCheck_PresentMissing(t *testing.T) {
	doc := parseForChecks(t)

	res := EvaluateCheck(doc, Check{Type: CheckPresent, ID: "battery-level"})
	assert.False(t, res.Passed)
	assert.Equal(t, "element #battery-level present", res.Expected)
	assert.Equal(t, "not found", res.Actual)
}

func TestEvaluateCheck_Absent(t *testing.T) {
	doc := parseForChecks(t)

	assert.True(t, EvaluateCheck(doc, Check{Type: CheckAbsent, ID: "history"}).Passed)

	res := EvaluateCheck(doc, Check{Type: CheckAbsent, ID: "clock"})
	assert.False(t, res.Passed)
	assert.Equal(t, `<span id="clock">`, res.Actual)
}

func TestEvaluateCheck_StyleEquals(t *testing.T) {
	doc := parseForChecks(t)

	res := EvaluateCheck(doc, Check{Type: CheckStyleEquals, ID: "full-view-only", Property: "display", Expect: "none"})
	assert.True(t, res.Passed)
	assert.Equal(t, "style_equals #full-view-only display", res.Label)

	res = EvaluateCheck(doc, Check{Type: CheckStyleEquals, ID: "shown", Property: "display", Expect: "none"})
	assert.False(t, res.Passed)
	assert.Equal(t, `"block"`, res.Actual)
}

func TestEvaluateCheck_StyleOnMissingElement(t *testing.T) {
	doc := parseForChecks(t)

	res := EvaluateCheck(doc, Check{Type: CheckStyleEquals, ID: "nope", Property: "display", Expect: "none"})
	assert.False(t, res.Passed)
	assert.Equal(t, "element #nope not found", res.Actual)
}

func TestEvaluateCheck_AttrEquals(t *testing.T) {
	doc := parseForChecks(t)

	res := EvaluateCheck(doc, Check{Type: CheckAttrEquals, ID: "clock", Attribute: "title", Expect: "Hora"})
	assert.True(t, res.Passed)
	assert.Equal(t, "attr_equals #clock title", res.Label)

	res = EvaluateCheck(doc, Check{Type: CheckAttrEquals, ID: "clock", Attribute: "lang", Expect: "pt"})
	assert.False(t, res.Passed)
	assert.Equal(t, `attribute "lang" not set`, res.Actual)
}

func TestEvaluateCheck_TextEquals(t *testing.T) {
	doc := parseForChecks(t)

	assert.True(t, EvaluateCheck(doc, Check{Type: CheckTextEquals, ID: "custom-id", Expect: "4021"}).Passed)
	assert.False(t, EvaluateCheck(doc, Check{Type: CheckTextEquals, ID: "clock", Expect: "--:--"}).Passed)
}

func TestEvaluateCheck_CustomLabel(t *testing.T) {
	doc := parseForChecks(t)

	res := EvaluateCheck(doc, Check{Type: CheckPresent, ID: "clock", Label: "clock is rendered"})
	assert.Equal(t, "clock is rendered", res.Label)
}

func TestCheckResult_Err(t *testing.T) {
	doc := parseForChecks(t)

	ok := EvaluateCheck(doc, Check{Type: CheckPresent, ID: "clock"})
	assert.NoError(t, ok.Err())

	failed := EvaluateCheck(doc, Check{Type: CheckPresent, ID: "missing"})
	err := failed.Err()
	require.Error(t, err)

	var assertErr *AssertionError
	require.True(t, errors.As(err, &assertErr))
	assert.Equal(t, CheckPresent, assertErr.Type)
	assert.Contains(t, err.Error(), "Assertion failed: present #missing")
	assert.Contains(t, err.Error(), "Expected: element #missing present")
	assert.Contains(t, err.Error(), "Actual: not found")
}
