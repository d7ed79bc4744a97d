package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/run"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/runlog"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to runs.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/runs.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	registry, err := run.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer registry.Close()

	if *runID != "" {
		err = runDetailMode(registry, *runID, *jsonOut)
	} else {
		err = runListMode(registry, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID      string `json:"run_id"`
	Project    string `json:"project"`
	TotalSteps int    `json:"total_steps"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func runListMode(registry *run.Store, last int, jsonOut bool) error {
	runs, err := registry.ListRuns(last)
	if err != nil {
		return err
	}

	rows := make([]listRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, listRow{
			RunID:      r.RunID,
			Project:    r.Project,
			TotalSteps: r.TotalSteps,
			Status:     r.Status,
			CreatedAt:  r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(rows)
	}

	fmt.Printf("%-36s  %-20s  %8s  %-8s  %s\n", "RUN", "PROJECT", "STEPS", "STATUS", "CREATED")
	for _, row := range rows {
		fmt.Printf("%-36s  %-20s  %8d  %-8s  %s\n",
			row.RunID, row.Project, row.TotalSteps, row.Status, row.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detail struct {
	Run         run.Record       `json:"run"`
	Checkpoints []run.Checkpoint `json:"checkpoints"`
	Evaluations []run.Evaluation `json:"evaluations"`
	Best        *run.Evaluation  `json:"best,omitempty"`
	Events      []runlog.Event   `json:"events"`
}

func runDetailMode(registry *run.Store, runID string, jsonOut bool) error {
	rec, err := registry.GetRun(runID)
	if err != nil {
		return err
	}
	cps, err := registry.ListCheckpoints(runID)
	if err != nil {
		return err
	}
	evals, err := registry.ListEvaluations(runID)
	if err != nil {
		return err
	}
	events, err := runlog.ListEvents(registry.DB(), runID)
	if err != nil {
		return err
	}

	d := detail{Run: rec, Checkpoints: cps, Evaluations: evals, Events: events}
	best, err := registry.BestEvaluation(runID, "eval_loss")
	if err == nil {
		d.Best = &best
	} else if !errors.Is(err, run.ErrNotFound) {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(d)
	}

	fmt.Printf("run %s\n", rec.RunID)
	fmt.Printf("  project:     %s\n", rec.Project)
	fmt.Printf("  total steps: %d\n", rec.TotalSteps)
	fmt.Printf("  status:      %s\n", rec.Status)
	fmt.Printf("  created:     %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))

	fmt.Printf("\ncheckpoints (%d):\n", len(cps))
	for _, cp := range cps {
		fmt.Printf("  step %6d  %s\n", cp.Step, cp.Dir)
	}

	fmt.Printf("\nevaluations (%d):\n", len(evals))
	for _, ev := range evals {
		marker := ""
		if d.Best != nil && ev.Step == d.Best.Step && ev.MetricName == d.Best.MetricName {
			marker = "  <- best"
		}
		fmt.Printf("  step %6d  %3d%%  %s=%.4f%s\n", ev.Step, ev.Percent, ev.MetricName, ev.MetricValue, marker)
	}

	fmt.Printf("\nevents (%d):\n", len(events))
	for _, ev := range events {
		detailStr := ""
		if ev.Detail != "" {
			detailStr = "  " + ev.Detail
		}
		fmt.Printf("  step %6d  %-10s%s\n", ev.Step, ev.Kind, detailStr)
	}
	return nil
}

// #endregion detail-mode
