package run

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	project      TEXT NOT NULL,
	total_steps  INTEGER NOT NULL,
	status       TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS checkpoints (
	checkpoint_id TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	step          INTEGER NOT NULL,
	dir           TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS evaluations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	step          INTEGER NOT NULL,
	percent       INTEGER NOT NULL,
	metric_name   TEXT NOT NULL,
	metric_value  REAL NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_checkpoints_run_step ON checkpoints(run_id, step);
CREATE INDEX IF NOT EXISTS idx_evaluations_run ON evaluations(run_id, metric_name);
`

// #endregion schema

// #region errors
// ErrNotFound is returned when a run, checkpoint, or evaluation is absent.
var ErrNotFound = errors.New("not found")

// #endregion errors

// #region store
// Store manages runs, checkpoints, and evaluations in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. runlog).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region create-run
// CreateRun registers a new run in status "running".
func (s *Store) CreateRun(project string, totalSteps int) (Record, error) {
	if totalSteps <= 0 {
		return Record{}, fmt.Errorf("create run: total steps must be positive, got %d", totalSteps)
	}
	rec := Record{
		RunID:      uuid.New().String(),
		Project:    project,
		TotalSteps: totalSteps,
		Status:     StatusRunning,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, project, total_steps, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Project, rec.TotalSteps, rec.Status, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// #endregion create-run

// #region get-run
// GetRun retrieves a run by ID.
func (s *Store) GetRun(runID string) (Record, error) {
	var rec Record
	var createdStr string
	err := s.db.QueryRow(
		`SELECT run_id, project, total_steps, status, created_at FROM runs WHERE run_id = ?`, runID,
	).Scan(&rec.RunID, &rec.Project, &rec.TotalSteps, &rec.Status, &createdStr)
	if err == sql.ErrNoRows {
		return Record{}, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT run_id, project, total_steps, status, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var createdStr string
		if err := rows.Scan(&rec.RunID, &rec.Project, &rec.TotalSteps, &rec.Status, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion get-run

// #region finish-run
// FinishRun moves a run out of "running".
func (s *Store) FinishRun(runID, status string) error {
	if status != StatusFinished && status != StatusFailed {
		return fmt.Errorf("finish run: invalid terminal status %q", status)
	}
	res, err := s.db.Exec(`UPDATE runs SET status = ? WHERE run_id = ?`, status, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// #endregion finish-run

// #region checkpoints
// RegisterCheckpoint records a saved adapter directory for a run step.
func (s *Store) RegisterCheckpoint(runID string, step int, dir string) (Checkpoint, error) {
	cp := Checkpoint{
		CheckpointID: uuid.New().String(),
		RunID:        runID,
		Step:         step,
		Dir:          dir,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO checkpoints (checkpoint_id, run_id, step, dir, created_at) VALUES (?, ?, ?, ?, ?)`,
		cp.CheckpointID, cp.RunID, cp.Step, cp.Dir, cp.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("insert checkpoint: %w", err)
	}
	return cp, nil
}

// CheckpointAtStep returns the checkpoint registered at or before step,
// preferring the latest one.
func (s *Store) CheckpointAtStep(runID string, step int) (Checkpoint, error) {
	var cp Checkpoint
	var createdStr string
	err := s.db.QueryRow(
		`SELECT checkpoint_id, run_id, step, dir, created_at
		 FROM checkpoints WHERE run_id = ? AND step <= ?
		 ORDER BY step DESC LIMIT 1`, runID, step,
	).Scan(&cp.CheckpointID, &cp.RunID, &cp.Step, &cp.Dir, &createdStr)
	if err == sql.ErrNoRows {
		return Checkpoint{}, fmt.Errorf("checkpoint for run %s at step %d: %w", runID, step, ErrNotFound)
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("get checkpoint: %w", err)
	}
	cp.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return cp, nil
}

// ListCheckpoints returns all checkpoints of a run in step order.
func (s *Store) ListCheckpoints(runID string) ([]Checkpoint, error) {
	rows, err := s.db.Query(
		`SELECT checkpoint_id, run_id, step, dir, created_at
		 FROM checkpoints WHERE run_id = ? ORDER BY step ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		var createdStr string
		if err := rows.Scan(&cp.CheckpointID, &cp.RunID, &cp.Step, &cp.Dir, &createdStr); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		cp.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, cp)
	}
	return out, rows.Err()
}

// #endregion checkpoints

// #region evaluations
// RecordEvaluation appends one evaluation metric sample.
func (s *Store) RecordEvaluation(ev Evaluation) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO evaluations (run_id, step, percent, metric_name, metric_value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.Step, ev.Percent, ev.MetricName, ev.MetricValue,
		ev.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// BestEvaluation returns the evaluation with the lowest value for the
// named metric. Loss-type metrics are the only ones recorded today, so
// lower is better.
func (s *Store) BestEvaluation(runID, metricName string) (Evaluation, error) {
	var ev Evaluation
	var createdStr string
	err := s.db.QueryRow(
		`SELECT run_id, step, percent, metric_name, metric_value, created_at
		 FROM evaluations WHERE run_id = ? AND metric_name = ?
		 ORDER BY metric_value ASC, step ASC LIMIT 1`, runID, metricName,
	).Scan(&ev.RunID, &ev.Step, &ev.Percent, &ev.MetricName, &ev.MetricValue, &createdStr)
	if err == sql.ErrNoRows {
		return Evaluation{}, fmt.Errorf("evaluations for run %s metric %s: %w", runID, metricName, ErrNotFound)
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("best evaluation: %w", err)
	}
	ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return ev, nil
}

// ListEvaluations returns all evaluation samples of a run in step order.
func (s *Store) ListEvaluations(runID string) ([]Evaluation, error) {
	rows, err := s.db.Query(
		`SELECT run_id, step, percent, metric_name, metric_value, created_at
		 FROM evaluations WHERE run_id = ? ORDER BY step ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		var ev Evaluation
		var createdStr string
		if err := rows.Scan(&ev.RunID, &ev.Step, &ev.Percent, &ev.MetricName, &ev.MetricValue, &createdStr); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// #endregion evaluations
