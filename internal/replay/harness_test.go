package replay

import (
	"path/filepath"
	"testing"
)

// #region replay-tests

func sequentialFixture(totalSteps int) *Fixture {
	f := &Fixture{
		Description: "sequential run",
		TotalSteps:  totalSteps,
	}
	for step := 0; step <= totalSteps; step++ {
		f.Steps = append(f.Steps, FixtureStep{Step: step})
	}
	return f
}

func TestReplayHundredStepRun(t *testing.T) {
	f := sequentialFixture(100)
	for step := 1; step <= 100; step++ {
		f.Expected = append(f.Expected, Expectation{Step: step, Percent: step})
	}

	summary, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !summary.Passed() {
		t.Fatalf("expected clean replay, mismatches: %v", summary.Mismatches)
	}
	if summary.Evaluated != 100 {
		t.Fatalf("expected 100 evaluations, got %d", summary.Evaluated)
	}
}

func TestReplayThreeStepRun(t *testing.T) {
	f := sequentialFixture(3)
	f.Expected = []Expectation{
		{Step: 1, Percent: 33},
		{Step: 2, Percent: 66},
		{Step: 3, Percent: 100},
	}

	summary, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !summary.Passed() {
		t.Fatalf("expected clean replay, mismatches: %v", summary.Mismatches)
	}
	if summary.Results[0].Evaluated {
		t.Fatal("step 0 must not evaluate")
	}
}

func TestReplayRepeatedStepSuppressed(t *testing.T) {
	f := &Fixture{
		Description: "repeated step",
		TotalSteps:  10,
		Steps: []FixtureStep{
			{Step: 5}, {Step: 5}, {Step: 5},
		},
		Expected: []Expectation{{Step: 5, Percent: 50}},
	}

	summary, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !summary.Passed() {
		t.Fatalf("expected clean replay, mismatches: %v", summary.Mismatches)
	}
	if summary.Evaluated != 1 {
		t.Fatalf("repeated step must evaluate once, got %d", summary.Evaluated)
	}
}

func TestReplayDetectsMismatch(t *testing.T) {
	f := &Fixture{
		Description: "wrong expectation",
		TotalSteps:  10,
		Steps:       []FixtureStep{{Step: 0}},
		Expected:    []Expectation{{Step: 0, Percent: 0}},
	}

	summary, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.Passed() {
		t.Fatal("step 0 cannot evaluate, the fixture must fail")
	}
}

func TestReplayInvalidTotalSteps(t *testing.T) {
	f := &Fixture{TotalSteps: 0, Steps: []FixtureStep{{Step: 1}}}
	if _, err := Replay(f); err == nil {
		t.Fatal("expected error for zero total steps")
	}
}

func TestFixtureRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	f := sequentialFixture(3)
	f.Expected = []Expectation{{Step: 1, Percent: 33}}

	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	got, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if got.TotalSteps != 3 || len(got.Steps) != 4 || len(got.Expected) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadFixtureRejectsBadTotal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := WriteFixture(path, &Fixture{TotalSteps: 0}); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for fixture without total_steps")
	}
}

// #endregion replay-tests
