package replay

import (
	"encoding/json"
	"fmt"
	"os"
)

// #region fixture-types
// Fixture is the top-level JSON structure for a replay fixture: a recorded
// (or hand-written) step sequence plus the evaluation triggers it must
// produce.
type Fixture struct {
	Description string        `json:"description"`
	TotalSteps  int           `json:"total_steps"`
	Steps       []FixtureStep `json:"steps"`
	Expected    []Expectation `json:"expected"`
}

// FixtureStep is one recorded training step.
type FixtureStep struct {
	Step int     `json:"step"`
	Loss float64 `json:"loss,omitempty"`
}

// Expectation names a step that must trigger an evaluation and the percent
// milestone it crosses.
type Expectation struct {
	Step    int `json:"step"`
	Percent int `json:"percent"`
}

// #endregion fixture-types

// #region fixture-loader
// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.TotalSteps <= 0 {
		return nil, fmt.Errorf("fixture %s: total_steps must be positive", path)
	}
	return &f, nil
}

// WriteFixture serializes a fixture to disk, indented for hand editing.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader
