package callbacks

import "context"

// #region state
// State is the per-step snapshot handed to every callback. It is supplied
// by the session loop each step and never owned by a callback.
type State struct {
	RunID        string // registry run id
	TrainerRunID string // trainer-side run id
	Step         int
	TotalSteps   int
	Loss         float64
	OutputDir    string
}

// #endregion state

// #region control
// Control collects the decisions callbacks make for the current step. The
// session loop acts on it after all callbacks have seen the step.
type Control struct {
	ShouldEvaluate bool
	ShouldSave     bool
	ShouldStop     bool
}

// #endregion control

// #region callback-interface
// Callback hooks into the training lifecycle.
type Callback interface {
	// OnStepBegin runs before the step executes and may set Control flags.
	OnStepBegin(ctx context.Context, s State, ctl *Control) error
	// OnSave runs when the session saves a checkpoint for this step.
	OnSave(ctx context.Context, s State) error
	// OnTrainEnd runs once after the final step.
	OnTrainEnd(ctx context.Context, s State) error
}

// Base is a no-op Callback for embedding.
type Base struct{}

func (Base) OnStepBegin(context.Context, State, *Control) error { return nil }
func (Base) OnSave(context.Context, State) error                { return nil }
func (Base) OnTrainEnd(context.Context, State) error            { return nil }

// #endregion callback-interface

// #region bridge-interfaces
// AdapterSaver abstracts the save-adapter RPC so callbacks can be tested
// without a trainer connection.
type AdapterSaver interface {
	SaveAdapter(ctx context.Context, trainerRunID, dir string) (string, error)
}

// AdapterLoader abstracts the load-adapter RPC.
type AdapterLoader interface {
	LoadAdapter(ctx context.Context, trainerRunID, dir string) error
}

// #endregion bridge-interfaces
