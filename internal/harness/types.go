package harness

import "time"

// CaseState tracks where a case is in its lifecycle.
type CaseState string

const (
	StatePending CaseState = "pending"
	StateRunning CaseState = "running"
	StatePassed  CaseState = "passed"
	StateFailed  CaseState = "failed"
)

// Terminal reports whether the state is final.
func (s CaseState) Terminal() bool {
	return s == StatePassed || s == StateFailed
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Label    string `json:"label"`
	Type     string `json:"type"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	State       CaseState     `json:"state"`
	Checks      []CheckResult `json:"checks"`

	// Error is set when the case could not evaluate its checks at all
	// (unparseable snapshot, cancelled before start).
	Error string `json:"error,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// Pass reports whether the case passed.
func (c *CaseResult) Pass() bool {
	return c.State == StatePassed
}

// Failure returns the first failing check, if any.
func (c *CaseResult) Failure() (CheckResult, bool) {
	for _, chk := range c.Checks {
		if !chk.Passed {
			return chk, true
		}
	}
	return CheckResult{}, false
}

// Errors returns human-readable diagnostics for a failed case.
// Empty if the case passed.
func (c *CaseResult) Errors() []string {
	var errs []string
	if c.Error != "" {
		errs = append(errs, c.Error)
	}
	if chk, ok := c.Failure(); ok {
		errs = append(errs, newAssertionError(chk).Error())
	}
	return errs
}

// Report is the outcome of running a suite against a snapshot.
type Report struct {
	Suite     string        `json:"suite"`
	Snapshot  string        `json:"snapshot"`
	Digest    string        `json:"digest"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	Cases []CaseResult `json:"cases"`

	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// Pass reports whether every case passed.
func (r *Report) Pass() bool {
	return r.Failed == 0
}

// tally recomputes the counters from Cases.
func (r *Report) tally() {
	r.Passed, r.Failed = 0, 0
	for i := range r.Cases {
		if r.Cases[i].Pass() {
			r.Passed++
		} else {
			r.Failed++
		}
	}
	r.Total = len(r.Cases)
}
