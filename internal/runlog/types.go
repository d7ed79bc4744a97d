package runlog

import "time"

// #region event
// Event is one row in the training event log.
type Event struct {
	RunID     string
	Step      int
	Kind      string // "step" | "evaluate" | "save" | "train_end" | "error"
	Detail    string
	CreatedAt time.Time
}

// Event kinds.
const (
	KindStep     = "step"
	KindEvaluate = "evaluate"
	KindSave     = "save"
	KindTrainEnd = "train_end"
	KindError    = "error"
)

// #endregion event
