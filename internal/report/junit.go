package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/viewcheck/internal/harness"
)

// JUnit XML structures

// JUnitTestSuites is the root element.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite is one harness suite.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitProperty is a name/value pair attached to a suite.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// JUnitTestCase is one harness case.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure is a failed check.
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitError is a case that could not evaluate its checks.
type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
}

// JUnitFormatter writes JUnit XML.
type JUnitFormatter struct{}

func (f *JUnitFormatter) Format(w io.Writer, r *harness.Report) error {
	suite := JUnitTestSuite{
		Name:      r.Suite,
		Tests:     r.Total,
		Time:      r.Duration.Seconds(),
		Timestamp: r.StartedAt.UTC().Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "snapshot", Value: r.Snapshot},
			{Name: "digest", Value: r.Digest},
		},
		TestCases: make([]JUnitTestCase, 0, len(r.Cases)),
	}

	for i := range r.Cases {
		c := &r.Cases[i]
		tc := JUnitTestCase{
			Name:      c.Name,
			ClassName: r.Suite,
			Time:      c.Duration.Seconds(),
		}

		switch {
		case c.Pass():
		case c.Error != "":
			suite.Errors++
			tc.Error = &JUnitError{Message: c.Error, Type: "Error"}
		default:
			suite.Failures++
			var content strings.Builder
			for _, l := range failureLines(c) {
				fmt.Fprintln(&content, l)
			}
			msg := "Assertion failed"
			if chk, ok := c.Failure(); ok {
				msg = "Assertion failed: " + chk.Label
			}
			tc.Failure = &JUnitFailure{
				Message: msg,
				Type:    "AssertionError",
				Content: content.String(),
			}
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	suites := JUnitTestSuites{
		Name:       "viewcheck",
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}

	fmt.Fprintf(w, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return fmt.Errorf("encode junit: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}
