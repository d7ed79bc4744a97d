package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/run"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/session"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/trainer"
)

// #region main
func main() {
	project := flag.String("project", "", "project name")
	datasetURI := flag.String("dataset-uri", "", "s3 uri of the prepared dataset")
	baseModel := flag.String("base-model", "", "base model identifier")
	saveSteps := flag.Int("save-steps", 100, "checkpoint save interval in steps")
	bestMetric := flag.String("best-metric", "eval_loss", "metric ranking the best checkpoint")
	flag.Parse()

	if *project == "" || *datasetURI == "" || *baseModel == "" {
		fmt.Fprintln(os.Stderr, "usage: controller --project name --dataset-uri s3://... --base-model id [flags]")
		os.Exit(2)
	}

	dbPath := envOr("RUNS_DB", "runs.db")
	trainerAddr := envOr("TRAINER_ADDR", "localhost:50051")

	registry, err := run.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open registry: %v", err)
	}
	defer registry.Close()

	bridge, err := trainer.NewClient(trainerAddr)
	if err != nil {
		log.Fatalf("failed to connect to trainer at %s: %v", trainerAddr, err)
	}
	defer bridge.Close()

	cfg := session.Config{
		Project:    *project,
		DatasetURI: *datasetURI,
		BaseModel:  *baseModel,
		SaveSteps:  *saveSteps,
		BestMetric: *bestMetric,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("supervising run: project=%s model=%s trainer=%s db=%s", *project, *baseModel, trainerAddr, dbPath)
	rec, err := session.New(bridge, registry, cfg).Run(ctx)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}
	log.Printf("run %s finished: %d steps, status=%s", rec.RunID, rec.TotalSteps, rec.Status)
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
