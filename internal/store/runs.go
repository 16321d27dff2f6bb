package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/viewcheck/internal/harness"
)

// Run is the summary row of one recorded harness run.
type Run struct {
	ID        string        `json:"id"`
	Suite     string        `json:"suite"`
	Snapshot  string        `json:"snapshot"`
	Digest    string        `json:"digest"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Total     int           `json:"total"`
}

// Pass reports whether every case of the run passed.
func (r Run) Pass() bool {
	return r.Failed == 0
}

// WriteRun records a report under id. The run and its cases are written in one
// transaction. Writing the same id twice is a no-op.
func (s *Store) WriteRun(ctx context.Context, id string, r *harness.Report) error {
	if id == "" {
		return fmt.Errorf("write run: empty id")
	}
	if r == nil {
		return fmt.Errorf("write run: nil report")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, suite, snapshot, digest, started_at, duration_ns, passed, failed, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		r.Suite,
		r.Snapshot,
		r.Digest,
		r.StartedAt.UTC().UnixNano(),
		int64(r.Duration),
		r.Passed,
		r.Failed,
		r.Total,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if n == 0 {
		// Already recorded
		return nil
	}

	for i := range r.Cases {
		c := &r.Cases[i]
		checksJSON, err := marshalChecks(c.Checks)
		if err != nil {
			return fmt.Errorf("write run: case %q: %w", c.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO case_results
			(run_id, position, name, description, state, error, checks, duration_ns)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			id,
			i,
			c.Name,
			c.Description,
			string(c.State),
			c.Error,
			checksJSON,
			int64(c.Duration),
		)
		if err != nil {
			return fmt.Errorf("write run: case %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, suite, snapshot, digest, started_at, duration_ns, passed, failed, total
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return collectRuns(rows)
}

// ListRunsByDigest returns the runs recorded against one snapshot digest,
// most recent first.
func (s *Store) ListRunsByDigest(ctx context.Context, digest string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, suite, snapshot, digest, started_at, duration_ns, passed, failed, total
		FROM runs
		WHERE digest = ?
		ORDER BY started_at DESC, id COLLATE BINARY DESC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("query runs by digest: %w", err)
	}
	return collectRuns(rows)
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, suite, snapshot, digest, started_at, duration_ns, passed, failed, total
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

// ReadReport rebuilds the full report of a recorded run.
// Returns sql.ErrNoRows if the run does not exist.
func (s *Store) ReadReport(ctx context.Context, id string) (*harness.Report, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, description, state, error, checks, duration_ns
		FROM case_results
		WHERE run_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query case results: %w", err)
	}
	defer rows.Close()

	report := &harness.Report{
		Suite:     run.Suite,
		Snapshot:  run.Snapshot,
		Digest:    run.Digest,
		StartedAt: run.StartedAt,
		Duration:  run.Duration,
		Cases:     []harness.CaseResult{},
		Passed:    run.Passed,
		Failed:    run.Failed,
		Total:     run.Total,
	}

	for rows.Next() {
		var (
			c          harness.CaseResult
			state      string
			checksJSON string
			durationNS int64
		)
		if err := rows.Scan(&c.Name, &c.Description, &state, &c.Error, &checksJSON, &durationNS); err != nil {
			return nil, fmt.Errorf("scan case result: %w", err)
		}
		c.State = harness.CaseState(state)
		c.Duration = time.Duration(durationNS)
		if c.Checks, err = unmarshalChecks(checksJSON); err != nil {
			return nil, fmt.Errorf("case %q: %w", c.Name, err)
		}
		report.Cases = append(report.Cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case results: %w", err)
	}

	return report, nil
}

// DeleteRun removes a run and its case results. Deleting a missing run is
// not an error.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r          Run
		startedNS  int64
		durationNS int64
	)
	err := row.Scan(&r.ID, &r.Suite, &r.Snapshot, &r.Digest, &startedNS, &durationNS, &r.Passed, &r.Failed, &r.Total)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.StartedAt = time.Unix(0, startedNS).UTC()
	r.Duration = time.Duration(durationNS)
	return r, nil
}

func collectRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
