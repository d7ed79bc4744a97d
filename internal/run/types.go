package run

import "time"

// #region run-record
// Record is one fine-tuning run tracked by the registry.
type Record struct {
	RunID      string
	Project    string
	TotalSteps int
	Status     string // "running" | "finished" | "failed"
	CreatedAt  time.Time
}

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// #endregion run-record

// #region checkpoint-record
// Checkpoint is a saved adapter directory registered for a run.
type Checkpoint struct {
	CheckpointID string
	RunID        string
	Step         int
	Dir          string
	CreatedAt    time.Time
}

// #endregion checkpoint-record

// #region evaluation-record
// Evaluation is one recorded evaluation pass.
type Evaluation struct {
	RunID       string
	Step        int
	Percent     int
	MetricName  string
	MetricValue float64
	CreatedAt   time.Time
}

// #endregion evaluation-record
