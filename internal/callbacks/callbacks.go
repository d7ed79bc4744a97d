package callbacks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/run"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/stepgate"
)

// #region evaluate-every-percent
// EvaluateEveryPercent requests an evaluation pass the first time each
// integer percent of training progress is reached. The gate is owned here
// and lives for exactly one run; construct a fresh callback per run.
type EvaluateEveryPercent struct {
	Base
	gate *stepgate.Gate
}

// NewEvaluateEveryPercent returns the callback with a freshly seeded gate.
func NewEvaluateEveryPercent() *EvaluateEveryPercent {
	return &EvaluateEveryPercent{gate: stepgate.New()}
}

// OnStepBegin flags an evaluation when a new percent milestone is crossed.
func (c *EvaluateEveryPercent) OnStepBegin(_ context.Context, s State, ctl *Control) error {
	fire, err := c.gate.ShouldEvaluate(s.Step, s.TotalSteps)
	if err != nil {
		return fmt.Errorf("evaluate-every-percent at step %d: %w", s.Step, err)
	}
	if fire {
		ctl.ShouldEvaluate = true
	}
	return nil
}

// #endregion evaluate-every-percent

// #region save-every-steps
// SaveEverySteps requests a checkpoint save every N steps.
type SaveEverySteps struct {
	Base
	N int
}

// OnStepBegin flags a save on every Nth step after the first.
func (c *SaveEverySteps) OnStepBegin(_ context.Context, s State, ctl *Control) error {
	if c.N <= 0 {
		return fmt.Errorf("save-every-steps: interval must be positive, got %d", c.N)
	}
	if s.Step > 0 && s.Step%c.N == 0 {
		ctl.ShouldSave = true
	}
	return nil
}

// #endregion save-every-steps

// #region save-adapter
// SaveAdapter saves adapter weights into checkpoint-<step> under the run's
// output directory and registers the checkpoint.
type SaveAdapter struct {
	Base
	saver    AdapterSaver
	registry *run.Store
}

// NewSaveAdapter wires the save-adapter callback.
func NewSaveAdapter(saver AdapterSaver, registry *run.Store) *SaveAdapter {
	return &SaveAdapter{saver: saver, registry: registry}
}

// CheckpointDir derives the checkpoint directory for a step.
func CheckpointDir(outputDir string, step int) string {
	return filepath.Join(outputDir, fmt.Sprintf("checkpoint-%d", step))
}

// OnSave performs the save and records it.
func (c *SaveAdapter) OnSave(ctx context.Context, s State) error {
	dir := CheckpointDir(s.OutputDir, s.Step)
	path, err := c.saver.SaveAdapter(ctx, s.TrainerRunID, dir)
	if err != nil {
		return fmt.Errorf("save adapter at step %d: %w", s.Step, err)
	}
	if _, err := c.registry.RegisterCheckpoint(s.RunID, s.Step, path); err != nil {
		return fmt.Errorf("register checkpoint at step %d: %w", s.Step, err)
	}
	return nil
}

// #endregion save-adapter

// #region load-best-adapter
// LoadBestAdapter finds the checkpoint covering the best recorded
// evaluation and asks the trainer to load it when training ends.
type LoadBestAdapter struct {
	Base
	loader   AdapterLoader
	registry *run.Store
	metric   string
}

// DefaultBestMetric is the metric LoadBestAdapter ranks checkpoints by.
const DefaultBestMetric = "eval_loss"

// NewLoadBestAdapter wires the load-best callback. Empty metric falls back
// to DefaultBestMetric.
func NewLoadBestAdapter(loader AdapterLoader, registry *run.Store, metric string) *LoadBestAdapter {
	if metric == "" {
		metric = DefaultBestMetric
	}
	return &LoadBestAdapter{loader: loader, registry: registry, metric: metric}
}

// OnTrainEnd resolves the best evaluation's checkpoint and loads it. A run
// with no evaluations or no checkpoints keeps the final weights.
func (c *LoadBestAdapter) OnTrainEnd(ctx context.Context, s State) error {
	best, err := c.registry.BestEvaluation(s.RunID, c.metric)
	if errors.Is(err, run.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load best adapter: %w", err)
	}

	cp, err := c.registry.CheckpointAtStep(s.RunID, best.Step)
	if errors.Is(err, run.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load best adapter: %w", err)
	}

	if err := c.loader.LoadAdapter(ctx, s.TrainerRunID, cp.Dir); err != nil {
		return fmt.Errorf("load best adapter from %s: %w", cp.Dir, err)
	}
	return nil
}

// #endregion load-best-adapter
