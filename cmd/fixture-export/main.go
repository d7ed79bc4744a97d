package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/replay"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/run"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to runs.db")
	runID := flag.String("run", "", "run to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *runID == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/runs.db --run id --out path/to/fixture.json")
		os.Exit(2)
	}

	if err := export(*dbPath, *runID, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

// export rebuilds a replay fixture from a recorded run: its evaluation
// steps become both the step sequence and the expected triggers. Each
// recorded evaluation crossed a fresh milestone in the original run, so a
// fresh gate must fire at exactly the same steps.
func export(dbPath, runID, outPath string) error {
	registry, err := run.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer registry.Close()

	rec, err := registry.GetRun(runID)
	if err != nil {
		return err
	}
	evals, err := registry.ListEvaluations(runID)
	if err != nil {
		return err
	}
	if len(evals) == 0 {
		return fmt.Errorf("run %s has no evaluations to export", runID)
	}

	fixture := &replay.Fixture{
		Description: fmt.Sprintf("exported from run %s (%s)", rec.RunID, rec.Project),
		TotalSteps:  rec.TotalSteps,
	}
	seen := make(map[int]bool)
	for _, ev := range evals {
		if seen[ev.Step] {
			// Multiple metrics per evaluation pass share a step.
			continue
		}
		seen[ev.Step] = true
		fixture.Steps = append(fixture.Steps, replay.FixtureStep{Step: ev.Step})
		fixture.Expected = append(fixture.Expected, replay.Expectation{Step: ev.Step, Percent: ev.Percent})
	}

	if err := replay.WriteFixture(outPath, fixture); err != nil {
		return err
	}
	fmt.Printf("exported %d steps from run %s to %s\n", len(fixture.Steps), runID, outPath)
	return nil
}

// #endregion export
