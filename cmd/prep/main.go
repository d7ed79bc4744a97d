package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/dataset"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/hub"
	"github.com/tunesmith-ml/tunesmith/go-controller/internal/preprocessor"
)

// #region main

func main() {
	task := flag.String("task", "text_classification",
		"task type: text_classification | regression | seq2seq | llm")
	trainPath := flag.String("train", "", "path to train CSV")
	validPath := flag.String("valid", "", "path to validation CSV (optional)")
	project := flag.String("project", "", "project name")
	textCol := flag.String("text-column", "", "text column name")
	labelCol := flag.String("label-column", "", "label/target column name")
	promptCol := flag.String("prompt-column", "", "prompt column (llm only)")
	rejectedCol := flag.String("rejected-text-column", "", "rejected text column (llm only)")
	classLabel := flag.Bool("class-label", false, "encode labels as class codes")
	testSize := flag.Float64("test-size", 0.2, "validation share when splitting")
	seed := flag.Int64("seed", 42, "split shuffle seed")
	dryRun := flag.Bool("dry-run", false, "prepare only, skip upload")
	flag.Parse()

	if *trainPath == "" || *project == "" {
		fmt.Fprintln(os.Stderr, "usage: prep --task T --train data.csv --project name [flags]")
		os.Exit(2)
	}

	bucket := envOr("HUB_BUCKET", "tunesmith-datasets")
	username := envOr("HUB_USERNAME", "default")

	if err := run(*task, *trainPath, *validPath, *project, prepFlags{
		textCol:     *textCol,
		labelCol:    *labelCol,
		promptCol:   *promptCol,
		rejectedCol: *rejectedCol,
		classLabel:  *classLabel,
		testSize:    *testSize,
		seed:        *seed,
		dryRun:      *dryRun,
		bucket:      bucket,
		username:    username,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

type prepFlags struct {
	textCol     string
	labelCol    string
	promptCol   string
	rejectedCol string
	classLabel  bool
	testSize    float64
	seed        int64
	dryRun      bool
	bucket      string
	username    string
}

func run(task, trainPath, validPath, project string, f prepFlags) error {
	train, err := loadCSV(trainPath)
	if err != nil {
		return err
	}
	var valid *dataset.Table
	if validPath != "" {
		valid, err = loadCSV(validPath)
		if err != nil {
			return err
		}
	}

	res, err := prepare(task, train, valid, f)
	if err != nil {
		return err
	}
	log.Printf("prepared %s: train=%d rows, validation=%d rows", project, res.Train.NumRows(), res.Valid.NumRows())
	if res.ClassNames != nil {
		log.Printf("class labels: %v", res.ClassNames)
	}

	if f.dryRun {
		log.Println("dry run, skipping upload")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := hub.NewClient(ctx, f.bucket, f.username)
	if err != nil {
		return err
	}
	uri, err := client.PushSplits(ctx, project, res.Train, res.Valid)
	if err != nil {
		return err
	}
	log.Printf("pushed dataset to %s", uri)
	return nil
}

func prepare(task string, train, valid *dataset.Table, f prepFlags) (preprocessor.Result, error) {
	cfg := preprocessor.Config{
		TextColumn:          f.textCol,
		LabelColumn:         f.labelCol,
		TestSize:            f.testSize,
		Seed:                f.seed,
		ConvertToClassLabel: f.classLabel,
	}

	switch task {
	case "text_classification":
		p, err := preprocessor.NewTextClassification(train, valid, cfg)
		if err != nil {
			return preprocessor.Result{}, err
		}
		return p.Prepare()
	case "regression":
		p, err := preprocessor.NewSingleColumnRegression(train, valid, cfg)
		if err != nil {
			return preprocessor.Result{}, err
		}
		return p.Prepare()
	case "seq2seq":
		p, err := preprocessor.NewSeq2Seq(train, valid, cfg)
		if err != nil {
			return preprocessor.Result{}, err
		}
		return p.Prepare()
	case "llm":
		p, err := preprocessor.NewLLM(train, valid, preprocessor.LLMConfig{
			TextColumn:         f.textCol,
			PromptColumn:       f.promptCol,
			RejectedTextColumn: f.rejectedCol,
		})
		if err != nil {
			return preprocessor.Result{}, err
		}
		return p.Prepare()
	default:
		return preprocessor.Result{}, fmt.Errorf("unknown task %q", task)
	}
}

func loadCSV(path string) (*dataset.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	t, err := dataset.FromCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// #endregion run

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
