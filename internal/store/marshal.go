package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/viewcheck/internal/harness"
)

// marshalChecks converts check results to JSON TEXT for storage.
func marshalChecks(checks []harness.CheckResult) (string, error) {
	if checks == nil {
		checks = []harness.CheckResult{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // labels and actual values contain markup
	if err := enc.Encode(checks); err != nil {
		return "", fmt.Errorf("marshal checks: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalChecks parses JSON TEXT back into check results.
func unmarshalChecks(data string) ([]harness.CheckResult, error) {
	checks := []harness.CheckResult{}
	if data == "" {
		return checks, nil
	}
	if err := json.Unmarshal([]byte(data), &checks); err != nil {
		return nil, fmt.Errorf("unmarshal checks: %w", err)
	}
	return checks, nil
}
