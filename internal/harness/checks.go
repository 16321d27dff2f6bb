package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/viewcheck/internal/dom"
)

// AssertionError is returned when a check fails.
// It names the check and carries expected and observed values.
type AssertionError struct {
	Type     string // Check type for categorization
	Label    string // Which check failed
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Label)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func newAssertionError(r CheckResult) *AssertionError {
	return &AssertionError{
		Type:     r.Type,
		Label:    r.Label,
		Expected: r.Expected,
		Actual:   r.Actual,
	}
}

// Err returns the failure as an *AssertionError, or nil if the check passed.
func (r CheckResult) Err() error {
	if r.Passed {
		return nil
	}
	return newAssertionError(r)
}

// CheckLabel returns the check's label, generating one from its fields when
// none was given.
func CheckLabel(c Check) string {
	if c.Label != "" {
		return c.Label
	}
	target := targetName(c.ID)
	switch c.Type {
	case CheckStyleEquals:
		return fmt.Sprintf("%s %s %s", c.Type, target, c.Property)
	case CheckAttrEquals:
		return fmt.Sprintf("%s %s %s", c.Type, target, c.Attribute)
	default:
		return fmt.Sprintf("%s %s", c.Type, target)
	}
}

func targetName(id string) string {
	if id == "" {
		return "body"
	}
	return "#" + id
}

// EvaluateCheck runs one check against a document.
func EvaluateCheck(doc dom.DocumentQuery, c Check) CheckResult {
	res := CheckResult{
		Label: CheckLabel(c),
		Type:  c.Type,
	}

	switch c.Type {
	case CheckPresent:
		res.Expected = fmt.Sprintf("element %s present", targetName(c.ID))
		if el, ok := doc.ElementByID(c.ID); ok {
			res.Passed = true
			res.Actual = describe(el)
		} else {
			res.Actual = "not found"
		}
		return res

	case CheckAbsent:
		res.Expected = fmt.Sprintf("no element %s", targetName(c.ID))
		if el, ok := doc.ElementByID(c.ID); ok {
			res.Actual = describe(el)
		} else {
			res.Passed = true
			res.Actual = "not found"
		}
		return res
	}

	el, ok := lookup(doc, c.ID)
	if !ok {
		res.Expected = expectedValue(c)
		res.Actual = fmt.Sprintf("element %s not found", targetName(c.ID))
		return res
	}

	switch c.Type {
	case CheckClassEquals:
		res.Expected = fmt.Sprintf("%q", c.Expect)
		observed := el.ClassName()
		res.Actual = fmt.Sprintf("%q", observed)
		res.Passed = observed == c.Expect

	case CheckHasClass:
		res.Expected = expectedValue(c)
		res.Actual = fmt.Sprintf("class list %q", el.ClassList())
		res.Passed = el.HasClass(c.Expect)

	case CheckStyleEquals:
		res.Expected = fmt.Sprintf("%q", c.Expect)
		observed := el.Style(c.Property)
		res.Actual = fmt.Sprintf("%q", observed)
		res.Passed = observed == c.Expect

	case CheckAttrEquals:
		res.Expected = fmt.Sprintf("%q", c.Expect)
		observed, present := el.Attr(c.Attribute)
		if !present {
			res.Actual = fmt.Sprintf("attribute %q not set", c.Attribute)
			break
		}
		res.Actual = fmt.Sprintf("%q", observed)
		res.Passed = observed == c.Expect

	case CheckTextEquals:
		res.Expected = fmt.Sprintf("%q", c.Expect)
		observed := el.Text()
		res.Actual = fmt.Sprintf("%q", observed)
		res.Passed = observed == c.Expect

	default:
		res.Expected = "a known check type"
		res.Actual = fmt.Sprintf("unknown check type %q", c.Type)
	}

	return res
}

// lookup resolves a check target. An empty id means <body>.
func lookup(doc dom.DocumentQuery, id string) (dom.Element, bool) {
	if id == "" {
		return doc.Body()
	}
	return doc.ElementByID(id)
}

func expectedValue(c Check) string {
	if c.Type == CheckHasClass {
		return fmt.Sprintf("class list containing %q", c.Expect)
	}
	return fmt.Sprintf("%q", c.Expect)
}

func describe(el dom.Element) string {
	if id := el.ID(); id != "" {
		return fmt.Sprintf("<%s id=%q>", el.Tag(), id)
	}
	return fmt.Sprintf("<%s>", el.Tag())
}
