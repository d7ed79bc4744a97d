package session

import (
	"context"
	"fmt"
	"os"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/callbacks"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/run"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/runlog"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/stepgate"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/trainer"
)

// #region session-struct
// Session supervises one fine-tuning run: it drives the trainer step by
// step, consults the lifecycle callbacks, and records evaluations,
// checkpoints, and events in the registry.
type Session struct {
	bridge   Bridge
	registry *run.Store
	cfg      Config
	cbs      []callbacks.Callback
	enabled  bool
}

// New wires a session with the standard callback set: evaluate on every
// new percent, save every cfg.SaveSteps, register saved adapters, and load
// the best one at the end.
// Kill switch: set CALLBACKS_ENABLED=false to run unsupervised.
func New(bridge Bridge, registry *run.Store, cfg Config) *Session {
	enabled := true
	if v := os.Getenv("CALLBACKS_ENABLED"); v == "false" {
		enabled = false
	}
	return &Session{
		bridge:   bridge,
		registry: registry,
		cfg:      cfg,
		cbs: []callbacks.Callback{
			callbacks.NewEvaluateEveryPercent(),
			&callbacks.SaveEverySteps{N: cfg.SaveSteps},
			callbacks.NewSaveAdapter(bridge, registry),
			callbacks.NewLoadBestAdapter(bridge, registry, cfg.BestMetric),
		},
		enabled: enabled,
	}
}

// #endregion session-struct

// #region run
// Run executes the whole session and returns the registry record of the
// finished run. A failure mid-run marks the run failed before returning.
func (s *Session) Run(ctx context.Context) (run.Record, error) {
	if err := runlog.Init(s.registry.DB()); err != nil {
		return run.Record{}, err
	}

	start, err := s.bridge.StartRun(ctx, s.cfg.Project, s.cfg.DatasetURI, s.cfg.BaseModel)
	if err != nil {
		return run.Record{}, fmt.Errorf("start run: %w", err)
	}

	rec, err := s.registry.CreateRun(s.cfg.Project, start.TotalSteps)
	if err != nil {
		return run.Record{}, err
	}

	if err := s.loop(ctx, rec, start); err != nil {
		s.fail(rec, err)
		return run.Record{}, fmt.Errorf("run %s: %w", rec.RunID, err)
	}

	if err := s.registry.FinishRun(rec.RunID, run.StatusFinished); err != nil {
		return run.Record{}, err
	}
	return s.registry.GetRun(rec.RunID)
}

func (s *Session) loop(ctx context.Context, rec run.Record, start trainer.StartResult) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := s.bridge.NextStep(ctx, start.TrainerRunID)
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}

		state := callbacks.State{
			RunID:        rec.RunID,
			TrainerRunID: start.TrainerRunID,
			Step:         res.Step,
			TotalSteps:   res.TotalSteps,
			Loss:         res.Loss,
			OutputDir:    start.OutputDir,
		}

		var ctl callbacks.Control
		if s.enabled {
			for _, cb := range s.cbs {
				if err := cb.OnStepBegin(ctx, state, &ctl); err != nil {
					return err
				}
			}
		}

		if ctl.ShouldEvaluate {
			if err := s.evaluate(ctx, state); err != nil {
				return err
			}
		}

		if ctl.ShouldSave {
			for _, cb := range s.cbs {
				if err := cb.OnSave(ctx, state); err != nil {
					return err
				}
			}
			if err := runlog.LogEvent(s.registry.DB(), runlog.Event{
				RunID: rec.RunID, Step: state.Step, Kind: runlog.KindSave,
				Detail: callbacks.CheckpointDir(state.OutputDir, state.Step),
			}); err != nil {
				return err
			}
		}

		if res.Done || ctl.ShouldStop {
			if s.enabled {
				for _, cb := range s.cbs {
					if err := cb.OnTrainEnd(ctx, state); err != nil {
						return err
					}
				}
			}
			return runlog.LogEvent(s.registry.DB(), runlog.Event{
				RunID: rec.RunID, Step: state.Step, Kind: runlog.KindTrainEnd,
			})
		}
	}
}

func (s *Session) evaluate(ctx context.Context, state callbacks.State) error {
	metrics, err := s.bridge.Evaluate(ctx, state.TrainerRunID)
	if err != nil {
		return fmt.Errorf("evaluate at step %d: %w", state.Step, err)
	}

	percent := stepgate.Percent(state.Step, state.TotalSteps)
	for name, value := range metrics {
		err := s.registry.RecordEvaluation(run.Evaluation{
			RunID:       state.RunID,
			Step:        state.Step,
			Percent:     percent,
			MetricName:  name,
			MetricValue: value,
		})
		if err != nil {
			return err
		}
	}
	return runlog.LogEvent(s.registry.DB(), runlog.Event{
		RunID: state.RunID, Step: state.Step, Kind: runlog.KindEvaluate,
		Detail: fmt.Sprintf("percent=%d", percent),
	})
}

func (s *Session) fail(rec run.Record, cause error) {
	// Best effort: the original error is what the caller needs to see.
	_ = runlog.LogEvent(s.registry.DB(), runlog.Event{
		RunID: rec.RunID, Kind: runlog.KindError, Detail: cause.Error(),
	})
	_ = s.registry.FinishRun(rec.RunID, run.StatusFailed)
}

// #endregion run
