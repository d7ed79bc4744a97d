package run

import (
	"errors"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := tempStore(t)

	rec, err := s.CreateRun("imdb-sentiment", 500)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if rec.RunID == "" {
		t.Fatal("expected non-empty run ID")
	}
	if rec.Status != StatusRunning {
		t.Fatalf("expected running status, got %s", rec.Status)
	}

	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Project != "imdb-sentiment" || got.TotalSteps != 500 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateRunRejectsNonPositiveSteps(t *testing.T) {
	s := tempStore(t)
	if _, err := s.CreateRun("p", 0); err == nil {
		t.Fatal("expected error for zero total steps")
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := tempStore(t)
	_, err := s.GetRun("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFinishRun(t *testing.T) {
	s := tempStore(t)
	rec, err := s.CreateRun("p", 10)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := s.FinishRun(rec.RunID, StatusFinished); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusFinished {
		t.Fatalf("expected finished, got %s", got.Status)
	}
	if err := s.FinishRun(rec.RunID, "paused"); err == nil {
		t.Fatal("expected error for invalid terminal status")
	}
	if err := s.FinishRun("missing", StatusFailed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckpointRegistration(t *testing.T) {
	s := tempStore(t)
	rec, err := s.CreateRun("p", 100)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	for _, step := range []int{10, 20, 30} {
		if _, err := s.RegisterCheckpoint(rec.RunID, step, "/tmp/out/checkpoint-10"); err != nil {
			t.Fatalf("RegisterCheckpoint step %d: %v", step, err)
		}
	}

	cp, err := s.CheckpointAtStep(rec.RunID, 25)
	if err != nil {
		t.Fatalf("CheckpointAtStep: %v", err)
	}
	if cp.Step != 20 {
		t.Fatalf("expected checkpoint at step 20, got %d", cp.Step)
	}

	if _, err := s.CheckpointAtStep(rec.RunID, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first checkpoint, got %v", err)
	}

	all, err := s.ListCheckpoints(rec.RunID)
	if err != nil {
		t.Fatalf("ListCheckpoints: %v", err)
	}
	if len(all) != 3 || all[0].Step != 10 || all[2].Step != 30 {
		t.Fatalf("unexpected checkpoint list: %+v", all)
	}
}

func TestEvaluationsAndBest(t *testing.T) {
	s := tempStore(t)
	rec, err := s.CreateRun("p", 100)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	samples := []struct {
		step  int
		value float64
	}{
		{10, 1.9},
		{50, 0.7},
		{90, 1.1},
	}
	for _, smp := range samples {
		err := s.RecordEvaluation(Evaluation{
			RunID:       rec.RunID,
			Step:        smp.step,
			Percent:     smp.step,
			MetricName:  "eval_loss",
			MetricValue: smp.value,
		})
		if err != nil {
			t.Fatalf("RecordEvaluation: %v", err)
		}
	}

	best, err := s.BestEvaluation(rec.RunID, "eval_loss")
	if err != nil {
		t.Fatalf("BestEvaluation: %v", err)
	}
	if best.Step != 50 || best.MetricValue != 0.7 {
		t.Fatalf("expected best at step 50 value 0.7, got %+v", best)
	}

	if _, err := s.BestEvaluation(rec.RunID, "accuracy"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown metric, got %v", err)
	}

	all, err := s.ListEvaluations(rec.RunID)
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(all) != 3 || all[1].Step != 50 {
		t.Fatalf("unexpected evaluation list: %+v", all)
	}
}

func TestListRunsOrdering(t *testing.T) {
	s := tempStore(t)
	first, err := s.CreateRun("first", 10)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	second, err := s.CreateRun("second", 10)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != second.RunID || runs[1].RunID != first.RunID {
		t.Fatal("expected most recent run first")
	}
}
