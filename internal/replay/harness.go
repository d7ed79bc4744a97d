package replay

import (
	"context"
	"fmt"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/callbacks"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/stepgate"
)

// #region types
// StepResult captures the gate decision for one replayed step.
type StepResult struct {
	Step      int
	Percent   int
	Evaluated bool
}

// Summary aggregates a replay run and its mismatches against the
// fixture's expectations.
type Summary struct {
	TotalSteps int
	Evaluated  int
	Results    []StepResult
	Mismatches []string
}

// Passed reports whether the replay matched every expectation.
func (s *Summary) Passed() bool {
	return len(s.Mismatches) == 0
}

// #endregion types

// #region replay
// Replay runs the fixture's step sequence through a fresh
// evaluate-every-percent callback and checks the triggers against the
// fixture's expectations. Operates entirely in-memory.
func Replay(f *Fixture) (*Summary, error) {
	cb := callbacks.NewEvaluateEveryPercent()
	ctx := context.Background()

	expected := make(map[int]int, len(f.Expected))
	for _, e := range f.Expected {
		expected[e.Step] = e.Percent
	}
	// A step number may repeat in the sequence; only its first occurrence
	// can trigger, so each expectation is consumed at most once.
	consumed := make(map[int]bool, len(f.Expected))

	summary := &Summary{TotalSteps: len(f.Steps)}
	for _, fs := range f.Steps {
		state := callbacks.State{
			Step:       fs.Step,
			TotalSteps: f.TotalSteps,
			Loss:       fs.Loss,
		}
		var ctl callbacks.Control
		if err := cb.OnStepBegin(ctx, state, &ctl); err != nil {
			return nil, fmt.Errorf("replay step %d: %w", fs.Step, err)
		}

		res := StepResult{
			Step:      fs.Step,
			Percent:   stepgate.Percent(fs.Step, f.TotalSteps),
			Evaluated: ctl.ShouldEvaluate,
		}
		summary.Results = append(summary.Results, res)
		if res.Evaluated {
			summary.Evaluated++
		}

		wantPercent, wantEval := expected[fs.Step]
		if wantEval && consumed[fs.Step] {
			wantEval = false
		}
		if wantEval && res.Evaluated {
			consumed[fs.Step] = true
		}
		if wantEval && !res.Evaluated {
			summary.Mismatches = append(summary.Mismatches,
				fmt.Sprintf("step %d: expected evaluation at percent %d, none triggered", fs.Step, wantPercent))
		}
		if !wantEval && res.Evaluated {
			summary.Mismatches = append(summary.Mismatches,
				fmt.Sprintf("step %d: unexpected evaluation at percent %d", fs.Step, res.Percent))
		}
		if wantEval && res.Evaluated && wantPercent != res.Percent {
			summary.Mismatches = append(summary.Mismatches,
				fmt.Sprintf("step %d: expected percent %d, got %d", fs.Step, wantPercent, res.Percent))
		}
	}
	return summary, nil
}

// #endregion replay
