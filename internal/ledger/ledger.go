// Package ledger records capture runs and per-job outcomes in SQLite so that
// failed images can be found and re-rendered after a batch.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/mazecapture/internal/capture"
	"github.com/banshee-data/mazecapture/internal/monitoring"
	"github.com/banshee-data/mazecapture/internal/rig"
)

// DefaultPath is the ledger file used when none is given.
const DefaultPath = "capture.db"

// ErrRunNotFound is returned when a run ID is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// Ledger is a capture.Recorder backed by SQLite.
type Ledger struct {
	db   *sql.DB
	logf func(format string, v ...interface{})
}

var _ capture.Recorder = (*Ledger)(nil)

// Open opens or creates the ledger at path and migrates it to the latest
// schema.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; the orchestrator is sequential anyway.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	l := &Ledger{db: db, logf: monitoring.Prefixed("ledger")}
	if err := l.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	version, _, err := l.MigrateVersion()
	if err != nil {
		db.Close()
		return nil, err
	}
	l.logf("opened %s (schema version %d)", path, version)
	return l, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// StartRun implements capture.Recorder.
func (l *Ledger) StartRun(runID, prefix string, started time.Time, total int) error {
	_, err := l.db.Exec(`
		INSERT INTO capture_runs (run_id, prefix, started_unix, total)
		VALUES (?, ?, ?, ?)
	`, runID, prefix, toUnix(started), total)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	return nil
}

// RecordJob implements capture.Recorder. Recording the same job twice
// replaces the earlier row.
func (l *Ledger) RecordJob(runID string, outcome capture.JobOutcome) error {
	job := outcome.Job
	var errText sql.NullString
	if outcome.Err != nil {
		errText = sql.NullString{String: outcome.Err.Error(), Valid: true}
	}

	_, err := l.db.Exec(`
		INSERT OR REPLACE INTO capture_jobs (
			run_id, seq, path, grid_x, grid_y, direction, eye,
			pos_x, pos_y, pos_z, look_x, look_y, look_z,
			started_unix, duration_ms, overwrote, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID, job.Seq, job.Path, job.Cell.X, job.Cell.Y, job.Direction.String(), job.Eye.String(),
		job.Pose.Position.X, job.Pose.Position.Y, job.Pose.Position.Z,
		job.Pose.Look.X, job.Pose.Look.Y, job.Pose.Look.Z,
		toUnix(outcome.Started), float64(outcome.Duration)/float64(time.Millisecond), outcome.Overwrote, errText,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job %d of run %s: %w", job.Seq, runID, err)
	}
	return nil
}

// FinishRun implements capture.Recorder.
func (l *Ledger) FinishRun(runID string, report capture.Report) error {
	res, err := l.db.Exec(`
		UPDATE capture_runs
		SET finished_unix = ?, succeeded = ?, failed = ?, overwritten = ?
		WHERE run_id = ?
	`, toUnix(report.Finished), len(report.Succeeded), len(report.Failed), report.Overwritten, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RunSummary is the stored record of one run.
type RunSummary struct {
	RunID       string
	Prefix      string
	Started     time.Time
	Finished    time.Time // zero while the run is in progress or if it crashed
	Total       int
	Succeeded   int
	Failed      int
	Overwritten int
	Recorded    int // job rows written
}

// Complete reports whether the run finished and recorded every job.
func (s RunSummary) Complete() bool {
	return !s.Finished.IsZero() && s.Recorded == s.Total
}

// RunSummary returns the stored summary of runID.
func (l *Ledger) RunSummary(runID string) (RunSummary, error) {
	var (
		s        RunSummary
		started  float64
		finished sql.NullFloat64
	)
	err := l.db.QueryRow(`
		SELECT r.run_id, r.prefix, r.started_unix, r.finished_unix,
		       r.total, r.succeeded, r.failed, r.overwritten,
		       (SELECT COUNT(*) FROM capture_jobs j WHERE j.run_id = r.run_id)
		FROM capture_runs r
		WHERE r.run_id = ?
	`, runID).Scan(&s.RunID, &s.Prefix, &started, &finished,
		&s.Total, &s.Succeeded, &s.Failed, &s.Overwritten, &s.Recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to query run %s: %w", runID, err)
	}

	s.Started = fromUnix(started)
	if finished.Valid {
		s.Finished = fromUnix(finished.Float64)
	}
	return s, nil
}

// LatestRun returns the most recently started run for prefix.
func (l *Ledger) LatestRun(prefix string) (RunSummary, error) {
	var runID string
	err := l.db.QueryRow(`
		SELECT run_id FROM capture_runs
		WHERE prefix = ?
		ORDER BY started_unix DESC
		LIMIT 1
	`, prefix).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("%w: no runs for prefix %s", ErrRunNotFound, prefix)
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to query runs for %s: %w", prefix, err)
	}
	return l.RunSummary(runID)
}

// JobRecord is a stored job outcome.
type JobRecord struct {
	Seq       int
	Path      string
	Cell      rig.GridPosition
	Direction rig.Direction
	Eye       rig.Eye
	Duration  time.Duration
	Overwrote bool
	Error     string
}

// FailedJobs returns the failed jobs of runID in job order.
func (l *Ledger) FailedJobs(runID string) ([]JobRecord, error) {
	rows, err := l.db.Query(`
		SELECT seq, path, grid_x, grid_y, direction, eye, duration_ms, overwrote, error
		FROM capture_jobs
		WHERE run_id = ? AND error IS NOT NULL
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed jobs: %w", err)
	}
	defer rows.Close()

	var out []JobRecord
	for rows.Next() {
		var (
			rec        JobRecord
			dir, eye   string
			durationMS float64
		)
		if err := rows.Scan(&rec.Seq, &rec.Path, &rec.Cell.X, &rec.Cell.Y, &dir, &eye,
			&durationMS, &rec.Overwrote, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		if err := rec.Direction.UnmarshalText([]byte(dir)); err != nil {
			return nil, fmt.Errorf("job %d: %w", rec.Seq, err)
		}
		if err := rec.Eye.UnmarshalText([]byte(eye)); err != nil {
			return nil, fmt.Errorf("job %d: %w", rec.Seq, err)
		}
		rec.Duration = time.Duration(durationMS * float64(time.Millisecond))
		out = append(out, rec)
	}
	return out, rows.Err()
}

func toUnix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func fromUnix(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e6))*1e3).UTC()
}
