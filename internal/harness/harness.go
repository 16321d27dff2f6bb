package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/roach88/viewcheck/internal/dom"
	"github.com/roach88/viewcheck/internal/snapshot"
)

// Clock supplies wall time for case durations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a run.
type Option func(*Harness)

// WithParser substitutes the document parser.
func WithParser(p dom.Parser) Option {
	return func(h *Harness) { h.parse = p }
}

// WithClock substitutes the clock used for timestamps and durations.
func WithClock(c Clock) Option {
	return func(h *Harness) { h.clock = c }
}

// WithLogger sets the logger. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithFilter keeps only cases whose name matches the glob pattern.
func WithFilter(pattern string) Option {
	return func(h *Harness) { h.filter = pattern }
}

// WithWorkers runs up to n cases at once. Values below 2 run sequentially.
func WithWorkers(n int) Option {
	return func(h *Harness) { h.workers = n }
}

// Harness is the suite execution engine.
// It holds only read-only inputs, so cases can run on any goroutine.
type Harness struct {
	src     *snapshot.Source
	parse   dom.Parser
	clock   Clock
	logger  *slog.Logger
	filter  string
	workers int
}

// Run executes a suite against a snapshot and returns the report.
//
// The returned error covers problems with the run itself (nil source,
// invalid suite, bad filter pattern). Failing checks are never errors; they
// are recorded in the report.
//
// Execution flow:
// 1. Validate the suite and select cases
// 2. For each case: parse a fresh document, evaluate checks in order,
// stop at the first failure
// 3. Tally results in suite order
func Run(ctx context.Context, src *snapshot.Source, suite *Suite, opts ...Option) (*Report, error) {
	if src == nil {
		return nil, fmt.Errorf("no snapshot source")
	}
	if suite == nil {
		return nil, fmt.Errorf("no suite")
	}
	if err := ValidateSuite(suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}

	h := &Harness{
		src:     src,
		parse:   dom.Parse,
		clock:   systemClock{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: 1,
	}
	for _, opt := range opts {
		opt(h)
	}

	cases, err := h.selectCases(suite.Cases)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Suite:     suite.Name,
		Snapshot:  src.Path(),
		Digest:    src.Digest(),
		StartedAt: h.clock.Now(),
		Cases:     make([]CaseResult, len(cases)),
	}

	h.logger.Info("suite started",
		"suite", suite.Name,
		"snapshot", src.Path(),
		"digest", src.Digest(),
		"cases", len(cases),
	)

	if h.workers > 1 && len(cases) > 1 {
		h.runParallel(ctx, cases, report.Cases)
	} else {
		for i, c := range cases {
			report.Cases[i] = h.runCase(ctx, c)
		}
	}

	report.Duration = h.clock.Now().Sub(report.StartedAt)
	report.tally()

	h.logger.Info("suite finished",
		"suite", suite.Name,
		"passed", report.Passed,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

// selectCases applies the name filter, preserving suite order.
func (h *Harness) selectCases(all []Case) ([]Case, error) {
	if h.filter == "" {
		return all, nil
	}
	if _, err := path.Match(h.filter, ""); err != nil {
		return nil, fmt.Errorf("invalid filter pattern %q: %w", h.filter, err)
	}

	var selected []Case
	for _, c := range all {
		if ok, _ := path.Match(h.filter, c.Name); ok {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

// runParallel fans cases out to a bounded worker pool. Each result is written
// to its own slot, so the report keeps suite order.
func (h *Harness) runParallel(ctx context.Context, cases []Case, out []CaseResult) {
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < h.workers && w < len(cases); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = h.runCase(ctx, cases[i])
			}
		}()
	}

	for i := range cases {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// runCase parses a fresh document and evaluates the case's checks in order.
func (h *Harness) runCase(ctx context.Context, c Case) CaseResult {
	res := CaseResult{
		Name:        c.Name,
		Description: c.Description,
		State:       StatePending,
		Checks:      []CheckResult{},
	}

	if err := ctx.Err(); err != nil {
		res.Error = fmt.Sprintf("not run: %v", err)
		h.logger.Warn("case skipped", "case", c.Name, "error", err)
		return res
	}

	res.State = StateRunning
	start := h.clock.Now()

	doc, err := h.parse(h.src.Markup())
	if err != nil {
		res.State = StateFailed
		res.Error = fmt.Sprintf("parse snapshot: %v", err)
		res.Duration = h.clock.Now().Sub(start)
		h.logger.Error("case failed to parse snapshot", "case", c.Name, "error", err)
		return res
	}

	for _, chk := range c.Checks {
		result := EvaluateCheck(doc, chk)
		res.Checks = append(res.Checks, result)
		if !result.Passed {
			res.State = StateFailed
			h.logger.Debug("check failed",
				"case", c.Name,
				"check", result.Label,
				"expected", result.Expected,
				"actual", result.Actual,
			)
			break
		}
	}
	if res.State == StateRunning {
		res.State = StatePassed
	}

	res.Duration = h.clock.Now().Sub(start)
	h.logger.Debug("case finished",
		"case", c.Name,
		"state", res.State,
		"checks", len(res.Checks),
	)
	return res
}
