package stepgate

import (
	"errors"
	"fmt"
)

// #region errors
// ErrInvalidTotalSteps is returned when a caller supplies a non-positive
// total step count.
var ErrInvalidTotalSteps = errors.New("total steps must be positive")

// #endregion errors

// #region gate
// Gate decides, once per training step, whether a new integer percent of
// training progress has been crossed and an evaluation pass should run.
// Each percent in [0,100] triggers at most once per run. The gate owns its
// milestone set; construct one per run and discard it afterward.
type Gate struct {
	done map[int]bool
}

// New returns a gate seeded with percent 0 already marked done, so the
// first step of a run does not trigger a duplicate evaluation at start.
func New() *Gate {
	return &Gate{done: map[int]bool{0: true}}
}

// Percent converts step progress to an integer percent in [0,100].
// Integer floor arithmetic keeps the result deterministic across
// platforms; over-run and negative steps clamp to the bounds.
// totalSteps must be positive.
func Percent(currentStep, totalSteps int) int {
	p := 100 * currentStep / totalSteps
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ShouldEvaluate reports whether currentStep crosses a percent milestone
// not seen before in this run. It records the milestone on a true result.
func (g *Gate) ShouldEvaluate(currentStep, totalSteps int) (bool, error) {
	if totalSteps <= 0 {
		return false, fmt.Errorf("step gate: %w (got %d)", ErrInvalidTotalSteps, totalSteps)
	}

	percent := Percent(currentStep, totalSteps)
	if g.done[percent] {
		return false, nil
	}
	g.done[percent] = true
	return true, nil
}

// Milestones returns the percents recorded so far, unordered.
func (g *Gate) Milestones() []int {
	out := make([]int, 0, len(g.done))
	for p := range g.done {
		out = append(out, p)
	}
	return out
}

// #endregion gate
