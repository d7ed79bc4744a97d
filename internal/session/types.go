package session

import (
	"context"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/trainer"
)

// #region bridge
// Bridge is the trainer surface the session needs. *trainer.Client
// satisfies it; tests inject fakes.
type Bridge interface {
	StartRun(ctx context.Context, project, datasetURI, baseModel string) (trainer.StartResult, error)
	NextStep(ctx context.Context, trainerRunID string) (trainer.StepResult, error)
	Evaluate(ctx context.Context, trainerRunID string) (map[string]float64, error)
	SaveAdapter(ctx context.Context, trainerRunID, dir string) (string, error)
	LoadAdapter(ctx context.Context, trainerRunID, dir string) error
}

// #endregion bridge

// #region config
// Config holds the knobs for one supervised fine-tuning session.
type Config struct {
	Project    string
	DatasetURI string
	BaseModel  string
	SaveSteps  int    // checkpoint save interval in steps
	BestMetric string // metric used to pick the best checkpoint
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		SaveSteps:  100,
		BestMetric: "eval_loss",
	}
}

// #endregion config
