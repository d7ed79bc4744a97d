package runlog

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS run_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	step        INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	detail      TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id, id);
`

// #endregion schema

// #region init
// Init creates the run_events table on the shared database.
func Init(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate run events: %w", err)
	}
	return nil
}

// #endregion init

// #region log-event
// LogEvent appends one entry to the run event log.
func LogEvent(db *sql.DB, ev Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO run_events (run_id, step, kind, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		ev.RunID,
		ev.Step,
		ev.Kind,
		nullIfEmpty(ev.Detail),
		ev.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// #endregion log-event

// #region list-events
// ListEvents returns a run's events in insertion order.
func ListEvents(db *sql.DB, runID string) ([]Event, error) {
	rows, err := db.Query(
		`SELECT run_id, step, kind, detail, created_at FROM run_events WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var detail sql.NullString
		var createdStr string
		if err := rows.Scan(&ev.RunID, &ev.Step, &ev.Kind, &detail, &createdStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if detail.Valid {
			ev.Detail = detail.String
		}
		ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// #endregion list-events

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
